// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by Trigger when rebuilds are requested faster
// than the configured rate.
var ErrRateLimited = errors.New("index rebuild rate limited")

// IndexRebuilder rebuilds the corpus index from the current catalog.
// Satisfied by *recommend.Engine.
type IndexRebuilder interface {
	RebuildIndex(ctx context.Context) error
}

// IndexServiceConfig holds configuration for the index service.
type IndexServiceConfig struct {
	// Schedule decides when periodic rebuilds run. Use ParseSchedule.
	Schedule cron.Schedule

	// RebuildOnStartup builds the index as soon as the service starts.
	RebuildOnStartup bool

	// BuildTimeout bounds each rebuild. Default: 5m
	BuildTimeout time.Duration

	// TriggerRate and TriggerBurst throttle Trigger (events per second).
	TriggerRate  float64
	TriggerBurst int
}

// ParseSchedule parses a standard five-field cron spec or a descriptor
// such as "@hourly" or "@every 15m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse rebuild schedule %q: %w", spec, err)
	}
	return sched, nil
}

// IndexService keeps the corpus index fresh under suture supervision.
type IndexService struct {
	engine  IndexRebuilder
	config  IndexServiceConfig
	limiter *rate.Limiter
	trigger chan struct{}
	logger  zerolog.Logger
	name    string

	rebuilds atomic.Int64
	failures atomic.Int64
}

// NewIndexService creates a new index service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndexService(engine IndexRebuilder, cfg IndexServiceConfig, logger zerolog.Logger) (*IndexService, error) {
	if engine == nil {
		return nil, errors.New("index service: engine is required")
	}
	if cfg.Schedule == nil {
		return nil, errors.New("index service: schedule is required")
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 5 * time.Minute
	}
	if cfg.TriggerBurst < 1 {
		cfg.TriggerBurst = 1
	}
	limit := rate.Limit(cfg.TriggerRate)
	if cfg.TriggerRate <= 0 {
		limit = rate.Inf
	}

	return &IndexService{
		engine:  engine,
		config:  cfg,
		limiter: rate.NewLimiter(limit, cfg.TriggerBurst),
		trigger: make(chan struct{}, 1),
		logger:  logger.With().Str("service", "index").Logger(),
		name:    "index-service",
	}, nil
}

// Serve implements the suture.Service interface.
func (s *IndexService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("rebuild_on_startup", s.config.RebuildOnStartup).
		Time("next_rebuild", s.config.Schedule.Next(time.Now())).
		Msg("index service starting")

	if s.config.RebuildOnStartup {
		if err := s.rebuild(ctx, "startup"); err != nil {
			s.logger.Warn().Err(err).Msg("initial index build failed (will retry on schedule)")
		}
	}

	timer := time.NewTimer(time.Until(s.config.Schedule.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("index service shutting down")
			return ctx.Err()

		case <-timer.C:
			if err := s.rebuild(ctx, "schedule"); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled index rebuild failed")
			}
			timer.Reset(time.Until(s.config.Schedule.Next(time.Now())))

		case <-s.trigger:
			if err := s.rebuild(ctx, "trigger"); err != nil {
				s.logger.Warn().Err(err).Msg("triggered index rebuild failed")
			}
		}
	}
}

// Trigger requests an out-of-schedule rebuild. Requests made while one is
// already pending are coalesced.
func (s *IndexService) Trigger() error {
	if !s.limiter.Allow() {
		return ErrRateLimited
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Rebuilds returns the number of completed and failed rebuilds.
func (s *IndexService) Rebuilds() (completed, failed int64) {
	return s.rebuilds.Load(), s.failures.Load()
}

func (s *IndexService) rebuild(ctx context.Context, reason string) error {
	buildCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Debug().Str("reason", reason).Msg("starting index rebuild")

	if err := s.engine.RebuildIndex(buildCtx); err != nil {
		s.failures.Add(1)
		return err
	}

	s.rebuilds.Add(1)
	s.logger.Info().
		Str("reason", reason).
		Dur("duration", time.Since(start)).
		Msg("index rebuild complete")
	return nil
}

// String returns the service name for logging.
func (s *IndexService) String() string {
	return s.name
}
