// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package logging provides the zerolog-based structured logger used across CourseRank.
//
// A single global logger is configured once at startup with Init and then
// reached through package-level accessors or component-scoped children:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("index_version", v).Msg("Index published")
//
//	logger := logging.WithComponent("recommend")
//	logger.Debug().Int("candidates", n).Msg("Scoring candidates")
//
// Request-scoped logging carries a request ID through context.Context:
//
//	ctx = logging.ContextWithNewRequestID(ctx)
//	logging.Ctx(ctx).Info().Msg("Recommendation served")
//
// Libraries that speak log/slog (the suture supervisor event hook) are bridged
// into zerolog through SlogHandler.
//
// Always terminate an event chain with Msg or Send; an unterminated chain is
// never written.
package logging
