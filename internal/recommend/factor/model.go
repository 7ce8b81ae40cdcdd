// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package factor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/courserank/internal/models"
)

// Combiner names how a learner row and a course row become a score.
type Combiner string

// Supported combiners.
const (
	CombinerLinear Combiner = "linear"
	CombinerDot    Combiner = "dot"
)

// Model is an immutable latent factor model. Safe for concurrent use.
type Model struct {
	learners *mat.Dense
	courses  *mat.Dense
	combiner Combiner
	weights  []float64
	bias     float64
}

// NewModel validates shapes and builds a model. The linear combiner needs
// exactly 2F weights; the dot combiner ignores weights.
func NewModel(learners, courses *mat.Dense, combiner Combiner, weights []float64, bias float64) (*Model, error) {
	if learners == nil || courses == nil {
		return nil, fmt.Errorf("factor tables are required: %w", models.ErrInvalidArgument)
	}
	_, lf := learners.Dims()
	_, cf := courses.Dims()
	if lf != cf {
		return nil, fmt.Errorf("factor width mismatch: learners %d, courses %d: %w", lf, cf, models.ErrInvalidArgument)
	}

	if !finite(learners.RawMatrix().Data) || !finite(courses.RawMatrix().Data) || !finite(weights) || !finite([]float64{bias}) {
		return nil, fmt.Errorf("factor model contains NaN or Inf: %w", models.ErrInvalidArgument)
	}

	m := &Model{learners: learners, courses: courses, combiner: combiner, bias: bias}
	switch combiner {
	case CombinerLinear:
		if len(weights) != 2*lf {
			return nil, fmt.Errorf("linear combiner needs %d weights, got %d: %w", 2*lf, len(weights), models.ErrInvalidArgument)
		}
		m.weights = append([]float64(nil), weights...)
	case CombinerDot:
	default:
		return nil, fmt.Errorf("unknown combiner %q: %w", combiner, models.ErrInvalidArgument)
	}
	return m, nil
}

// Factors returns the factor width F.
func (m *Model) Factors() int {
	_, f := m.learners.Dims()
	return f
}

// LearnerRows returns the number of learner rows.
func (m *Model) LearnerRows() int {
	r, _ := m.learners.Dims()
	return r
}

// CourseRows returns the number of course rows.
func (m *Model) CourseRows() int {
	r, _ := m.courses.Dims()
	return r
}

// Combiner returns the combiner kind.
func (m *Model) Combiner() Combiner {
	return m.combiner
}

// ScoreRows scores a learner row against a course row. It is pure and
// deterministic; out-of-range rows return models.ErrUnknownEntity.
func (m *Model) ScoreRows(learnerRow, courseRow int) (float64, error) {
	if learnerRow < 0 || learnerRow >= m.LearnerRows() {
		return 0, fmt.Errorf("learner row %d: %w", learnerRow, models.ErrUnknownEntity)
	}
	if courseRow < 0 || courseRow >= m.CourseRows() {
		return 0, fmt.Errorf("course row %d: %w", courseRow, models.ErrUnknownEntity)
	}

	u := m.learners.RawRowView(learnerRow)
	c := m.courses.RawRowView(courseRow)
	if m.combiner == CombinerDot {
		return floats.Dot(u, c) + m.bias, nil
	}
	f := len(u)
	return floats.Dot(m.weights[:f], u) + floats.Dot(m.weights[f:], c) + m.bias, nil
}

// finite reports whether every value is neither NaN nor infinite.
func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
