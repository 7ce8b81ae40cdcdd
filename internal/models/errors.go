// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package models

import "errors"

// Error kinds. Wrap with fmt.Errorf("...: %w", ErrX) and match with errors.Is.
var (
	// ErrNotFound: a course identifier is absent from the current index.
	ErrNotFound = errors.New("not found")

	// ErrUnknownLearner: the interaction store has no record of the learner.
	ErrUnknownLearner = errors.New("unknown learner")

	// ErrUnknownEntity: the factor model has no row for a learner or course.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidArgument: a malformed identifier or argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable: an external collaborator failed or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrEmptyCatalog: no course had indexable text.
	ErrEmptyCatalog = errors.New("empty catalog")

	// ErrIndexNotReady: no corpus index has been published yet.
	ErrIndexNotReady = errors.New("index not ready")
)
