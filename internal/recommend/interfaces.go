// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package recommend

import (
	"context"

	"github.com/tomtom215/courserank/internal/models"
)

// CatalogProvider returns a full snapshot of the course catalog.
type CatalogProvider interface {
	Courses(ctx context.Context) ([]models.Course, error)
}

// InteractionProvider returns a learner's interactions. Implementations
// return an error wrapping ErrUnknownLearner for learners they have never
// seen and an empty slice for known learners without interactions.
type InteractionProvider interface {
	Interactions(ctx context.Context, learnerID string) ([]models.Interaction, error)
}

// PopularityProvider returns course IDs in descending popularity, at most limit.
type PopularityProvider interface {
	PopularCourses(ctx context.Context, limit int) ([]string, error)
}

// CollaborativeScorer scores a learner/course pair. ErrUnknownEntity means
// the model has no row for one of them.
type CollaborativeScorer interface {
	Score(learnerID, courseID string) (float64, error)
}

// CandidateFilter decides whether a course may be recommended.
type CandidateFilter interface {
	Allow(course models.Course) (bool, error)
}
