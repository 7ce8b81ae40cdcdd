// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/courserank/internal/models"
)

// Error kinds returned by the engine.
var (
	ErrNotFound            = models.ErrNotFound
	ErrUnknownLearner      = models.ErrUnknownLearner
	ErrUnknownEntity       = models.ErrUnknownEntity
	ErrInvalidArgument     = models.ErrInvalidArgument
	ErrUpstreamUnavailable = models.ErrUpstreamUnavailable
	ErrEmptyCatalog        = models.ErrEmptyCatalog
	ErrIndexNotReady       = models.ErrIndexNotReady
)

// outcome maps an error to the metrics outcome label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnknownLearner):
		return "unknown_learner"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIndexNotReady):
		return "not_ready"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// upstream marks a collaborator failure as ErrUpstreamUnavailable unless it
// already carries a more specific kind.
func upstream(op string, err error) error {
	for _, kind := range []error{ErrUnknownLearner, ErrUpstreamUnavailable, ErrIndexNotReady, ErrInvalidArgument} {
		if errors.Is(err, kind) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}
