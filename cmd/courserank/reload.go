// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package main

import (
	"context"
	"errors"
	"os"

	"github.com/tomtom215/courserank/internal/config"
	"github.com/tomtom215/courserank/internal/logging"
	"github.com/tomtom215/courserank/internal/supervisor/services"
)

// watchReload handles reload signals until ctx is done. Each signal
// re-reads the configuration, applies its log level and requests an
// index rebuild. A rejected trigger is logged and otherwise ignored.
func watchReload(ctx context.Context, signals <-chan os.Signal, configPath string, trigger func() error) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			logger := logging.WithComponent("reload")
			logger.Info().Str("signal", sig.String()).Msg("reload requested")

			if cfg, err := config.Load(configPath); err != nil {
				logger.Warn().Err(err).Msg("configuration reload failed, keeping current settings")
			} else {
				logging.SetLevelString(cfg.Logging.Level)
				logging.Debug().Str("level", cfg.Logging.Level).Msg("log level applied")
			}

			switch err := trigger(); {
			case errors.Is(err, services.ErrRateLimited):
				logger.Warn().Msg("index rebuild rate limited, try again later")
			case err != nil:
				logger.Warn().Err(err).Msg("index rebuild trigger failed")
			default:
				logger.Info().Msg("index rebuild triggered")
			}
		}
	}
}
