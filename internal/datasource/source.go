// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package datasource

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/courserank/internal/config"
	"github.com/tomtom215/courserank/internal/models"
)

// Source is a complete read-side collaborator set.
type Source interface {
	Name() string
	Courses(ctx context.Context) ([]models.Course, error)
	Interactions(ctx context.Context, learnerID string) ([]models.Interaction, error)
	PopularCourses(ctx context.Context, limit int) ([]string, error)
	Close() error
}

// Seeder accepts catalog and interaction writes. Used to load fixtures.
type Seeder interface {
	PutCourse(ctx context.Context, c models.Course) error
	AddLearner(ctx context.Context, learnerID string) error
	PutInteraction(ctx context.Context, in models.Interaction) error
}

// Open creates the configured driver, seeds it from cfg.CatalogFile when
// set, and wraps it with Guarded.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg *config.DatasourceConfig, logger zerolog.Logger) (*Guarded, error) {
	var (
		src Source
		err error
	)
	switch cfg.Driver {
	case "memory":
		src = NewMemory()
	case "sqlite":
		src, err = OpenSQLite(ctx, cfg.SQLitePath)
	case "redis":
		src, err = OpenRedis(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	default:
		err = fmt.Errorf("unknown datasource driver %q: %w", cfg.Driver, models.ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CatalogFile != "" {
		seeder, ok := src.(Seeder)
		if !ok {
			_ = src.Close()
			return nil, fmt.Errorf("driver %s cannot be seeded: %w", src.Name(), models.ErrInvalidArgument)
		}
		file, err := LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			_ = src.Close()
			return nil, err
		}
		if err := file.Seed(ctx, seeder); err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("seed %s from %s: %w", src.Name(), cfg.CatalogFile, err)
		}
		logger.Info().
			Str("driver", src.Name()).
			Str("file", cfg.CatalogFile).
			Int("courses", len(file.Courses)).
			Int("learners", len(file.Learners)).
			Msg("datasource seeded from catalog file")
	}

	return NewGuarded(src, GuardOptions{
		Timeout:      cfg.Timeout,
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		OpenTimeout:  cfg.Breaker.Timeout,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	}, logger), nil
}
