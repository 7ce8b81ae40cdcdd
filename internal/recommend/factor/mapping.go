// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package factor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/courserank/internal/models"
)

// Mapping resolves identifiers to factor table rows.
type Mapping interface {
	LearnerRow(learnerID string) (int, bool)
	CourseRow(courseID string) (int, bool)
}

// StaticMapping is a Mapping loaded once, typically written out alongside
// the trained model.
//
//	learners:
//	  learner-17: 0
//	courses:
//	  algebra: 0
//	  painting: 1
type StaticMapping struct {
	Learners map[string]int `yaml:"learners"`
	Courses  map[string]int `yaml:"courses"`
}

// LearnerRow implements Mapping.
func (m *StaticMapping) LearnerRow(learnerID string) (int, bool) {
	row, ok := m.Learners[learnerID]
	return row, ok
}

// CourseRow implements Mapping.
func (m *StaticMapping) CourseRow(courseID string) (int, bool) {
	row, ok := m.Courses[courseID]
	return row, ok
}

// CheckBounds verifies every mapped row exists in a model of the given size.
func (m *StaticMapping) CheckBounds(learnerRows, courseRows int) error {
	for id, row := range m.Learners {
		if row < 0 || row >= learnerRows {
			return fmt.Errorf("learner %q maps to row %d outside [0,%d): %w", id, row, learnerRows, models.ErrInvalidArgument)
		}
	}
	for id, row := range m.Courses {
		if row < 0 || row >= courseRows {
			return fmt.Errorf("course %q maps to row %d outside [0,%d): %w", id, row, courseRows, models.ErrInvalidArgument)
		}
	}
	return nil
}

// LoadMapping reads a YAML mapping file.
func LoadMapping(path string) (*StaticMapping, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes YAML mapping content.
func ParseMapping(data []byte) (*StaticMapping, error) {
	m := &StaticMapping{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if m.Learners == nil {
		m.Learners = map[string]int{}
	}
	if m.Courses == nil {
		m.Courses = map[string]int{}
	}
	return m, nil
}
