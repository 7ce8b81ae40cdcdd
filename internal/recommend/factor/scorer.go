// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package factor

import (
	"fmt"

	"github.com/tomtom215/courserank/internal/models"
)

// Scorer scores learner/course identifier pairs against a Model.
type Scorer struct {
	model   *Model
	mapping Mapping
}

// NewScorer binds a model to its identifier mapping.
func NewScorer(model *Model, mapping Mapping) (*Scorer, error) {
	if model == nil || mapping == nil {
		return nil, fmt.Errorf("model and mapping are required: %w", models.ErrInvalidArgument)
	}
	return &Scorer{model: model, mapping: mapping}, nil
}

// Model returns the underlying model.
func (s *Scorer) Model() *Model {
	return s.model
}

// Score returns the collaborative score for the pair. Unmapped identifiers
// and rows the model does not have yield models.ErrUnknownEntity.
func (s *Scorer) Score(learnerID, courseID string) (float64, error) {
	lr, ok := s.mapping.LearnerRow(learnerID)
	if !ok {
		return 0, fmt.Errorf("learner %q: %w", learnerID, models.ErrUnknownEntity)
	}
	cr, ok := s.mapping.CourseRow(courseID)
	if !ok {
		return 0, fmt.Errorf("course %q: %w", courseID, models.ErrUnknownEntity)
	}
	return s.model.ScoreRows(lr, cr)
}
