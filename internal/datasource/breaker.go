// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/courserank/internal/metrics"
	"github.com/tomtom215/courserank/internal/models"
)

// GuardOptions configures Guarded.
type GuardOptions struct {
	// Timeout bounds each call. Zero disables the per-call deadline.
	Timeout time.Duration

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval is the closed-state window after which counts reset.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// MinRequests and FailureRatio decide when to trip.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultGuardOptions mirrors the datasource config defaults.
func DefaultGuardOptions() GuardOptions {
	return GuardOptions{
		Timeout:      5 * time.Second,
		MaxRequests:  1,
		Interval:     time.Minute,
		OpenTimeout:  30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// Guarded wraps a Source with a per-call timeout and a circuit breaker.
// Failures come back wrapping models.ErrUpstreamUnavailable so the engine
// never mistakes an outage for an empty history.
//
// The breaker uses wall-clock time for its interval and open timeout.
// Tests that need to observe recovery should use short durations.
type Guarded struct {
	src     Source
	cb      *gobreaker.CircuitBreaker[interface{}]
	name    string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGuarded wraps src.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGuarded(src Source, opts GuardOptions, logger zerolog.Logger) *Guarded {
	name := "datasource-" + src.Name()
	logger = logger.With().Str("component", "datasource").Str("breaker", name).Logger()

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	minRequests := opts.MinRequests
	ratio := opts.FailureRatio
	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// Domain answers are not outages.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, models.ErrUnknownLearner) ||
				errors.Is(err, models.ErrInvalidArgument) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &Guarded{
		src:     src,
		cb:      cb,
		name:    name,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Name implements Source.
func (g *Guarded) Name() string { return g.src.Name() }

// Close implements Source.
func (g *Guarded) Close() error { return g.src.Close() }

// State returns the breaker state name.
func (g *Guarded) State() string { return stateToString(g.cb.State()) }

// Courses implements Source.
func (g *Guarded) Courses(ctx context.Context) ([]models.Course, error) {
	return castResult[[]models.Course](g.execute(ctx, "courses", func(ctx context.Context) (interface{}, error) {
		return g.src.Courses(ctx)
	}))
}

// Interactions implements Source.
func (g *Guarded) Interactions(ctx context.Context, learnerID string) ([]models.Interaction, error) {
	return castResult[[]models.Interaction](g.execute(ctx, "interactions", func(ctx context.Context) (interface{}, error) {
		return g.src.Interactions(ctx, learnerID)
	}))
}

// PopularCourses implements Source.
func (g *Guarded) PopularCourses(ctx context.Context, limit int) ([]string, error) {
	return castResult[[]string](g.execute(ctx, "popularity", func(ctx context.Context) (interface{}, error) {
		return g.src.PopularCourses(ctx, limit)
	}))
}

// execute runs fn under the breaker and deadline and classifies the error.
func (g *Guarded) execute(ctx context.Context, op string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	metrics.RecordDatasourceQuery(g.src.Name(), op, time.Since(start), err)

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
		g.logger.Warn().Err(err).Str("operation", op).Msg("request rejected")
		return nil, fmt.Errorf("%s %s: %w: %w", g.src.Name(), op, models.ErrUpstreamUnavailable, err)
	case errors.Is(err, models.ErrUnknownLearner), errors.Is(err, models.ErrInvalidArgument):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
		return nil, err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
		return nil, fmt.Errorf("%s %s: %w: %w", g.src.Name(), op, models.ErrUpstreamUnavailable, err)
	}
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
