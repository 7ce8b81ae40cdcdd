// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/courserank/internal/config"
	"github.com/tomtom215/courserank/internal/datasource"
	"github.com/tomtom215/courserank/internal/logging"
	"github.com/tomtom215/courserank/internal/recommend"
	"github.com/tomtom215/courserank/internal/recommend/corpus"
	"github.com/tomtom215/courserank/internal/recommend/factor"
	"github.com/tomtom215/courserank/internal/recommend/rules"
	"github.com/tomtom215/courserank/internal/recommend/storage"
)

// app holds the wired engine and the resources it owns.
type app struct {
	cfg    *config.Config
	source *datasource.Guarded
	engine *recommend.Engine
	logger zerolog.Logger
}

// newApp opens the datasource, loads the factor model when configured
// and constructs the engine. The corpus index is not built here.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.WithComponent("app")

	source, err := datasource.Open(ctx, &cfg.Datasource, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("open datasource: %w", err)
	}

	deps := recommend.Dependencies{
		Catalog:      source,
		Interactions: source,
		Popularity:   source,
	}

	if cfg.Model.Dir != "" {
		scorer, err := loadScorer(ctx, &cfg.Model, logger)
		if err != nil {
			_ = source.Close()
			return nil, err
		}
		deps.Scorer = scorer
	} else {
		logger.Info().Msg("model.dir not set, collaborative scoring disabled")
	}

	if cfg.Recommend.CandidateFilter != "" {
		filter, err := rules.Compile(cfg.Recommend.CandidateFilter)
		if err != nil {
			_ = source.Close()
			return nil, err
		}
		deps.Filter = filter
		logger.Info().Str("filter", filter.String()).Msg("candidate filter enabled")
	}

	engine, err := recommend.NewEngine(&recommend.Config{
		ContentWeight:       cfg.Recommend.ContentWeight,
		CollaborativeWeight: cfg.Recommend.CollaborativeWeight,
		Index: corpus.Options{
			Fields:         cfg.Index.Fields,
			MinTokenLength: cfg.Index.MinTokenLength,
			Workers:        cfg.Index.Workers,
		},
	}, deps, logging.Logger())
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}

	return &app{cfg: cfg, source: source, engine: engine, logger: logger}, nil
}

// loadScorer reads the latest factor artifact and its identifier mapping.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func loadScorer(ctx context.Context, cfg *config.ModelConfig, logger zerolog.Logger) (*factor.Scorer, error) {
	store, err := storage.NewStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	var artifact factor.Artifact
	meta, err := store.Load(ctx, cfg.Name, 0, &artifact)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.Name, err)
	}
	model, err := artifact.Model()
	if err != nil {
		return nil, fmt.Errorf("model %s v%d: %w", cfg.Name, meta.Version, err)
	}

	mapping, err := factor.LoadMapping(cfg.MappingPath)
	if err != nil {
		return nil, err
	}
	// Out-of-range rows score as unknown entities; surface them early.
	if err := mapping.CheckBounds(model.LearnerRows(), model.CourseRows()); err != nil {
		logger.Warn().Err(err).Str("mapping", cfg.MappingPath).Msg("mapping references rows outside the model")
	}

	scorer, err := factor.NewScorer(model, mapping)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("model", cfg.Name).
		Int("version", meta.Version).
		Int("factors", model.Factors()).
		Int("learners", model.LearnerRows()).
		Int("courses", model.CourseRows()).
		Str("checksum", meta.Checksum).
		Msg("factor model loaded")
	return scorer, nil
}

func (a *app) Close() {
	if err := a.source.Close(); err != nil {
		a.logger.Error().Err(err).Msg("error closing datasource")
	}
}

// withApp loads configuration, builds the app, optionally builds the
// index, and runs fn.
func withApp(ctx context.Context, configPath string, buildIndex bool, fn func(*app) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if buildIndex {
		buildCtx, cancel := context.WithTimeout(ctx, cfg.Index.BuildTimeout)
		defer cancel()
		if err := a.engine.RebuildIndex(buildCtx); err != nil {
			return fmt.Errorf("build index: %w", err)
		}
	}
	return fn(a)
}
