// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package datasource

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/courserank/internal/models"
)

// CatalogFile is the YAML fixture format:
//
//	courses:
//	  - id: algebra-1
//	    title: Algebra I
//	    description: Linear equations and inequalities
//	    topics: [math]
//	    enrollment_count: 120
//	learners:
//	  ada:
//	    - course_id: algebra-1
//	      completion: 0.8
//	      updated_at: 2026-01-02T15:04:05Z
//	  newbie: []
type CatalogFile struct {
	Courses  []models.Course                 `yaml:"courses"`
	Learners map[string][]models.Interaction `yaml:"learners"`
}

// LoadCatalogFile reads and parses a catalog fixture.
func LoadCatalogFile(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseCatalogFile(data)
}

// ParseCatalogFile parses catalog fixture YAML.
func ParseCatalogFile(data []byte) (*CatalogFile, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w: %w", models.ErrInvalidArgument, err)
	}
	seen := make(map[string]bool, len(f.Courses))
	for _, c := range f.Courses {
		if !models.ValidID(c.ID) {
			return nil, fmt.Errorf("catalog file: course id %q: %w", c.ID, models.ErrInvalidArgument)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("catalog file: duplicate course %q: %w", c.ID, models.ErrInvalidArgument)
		}
		seen[c.ID] = true
	}
	for learnerID, list := range f.Learners {
		for _, in := range list {
			if !models.ValidCompletion(in.Completion) {
				return nil, fmt.Errorf("catalog file: learner %q course %q completion %v outside [0,1]: %w",
					learnerID, in.CourseID, in.Completion, models.ErrInvalidArgument)
			}
		}
	}
	return &f, nil
}

// Seed writes every course, learner and interaction into dst.
func (f *CatalogFile) Seed(ctx context.Context, dst Seeder) error {
	for _, c := range f.Courses {
		if err := dst.PutCourse(ctx, c); err != nil {
			return err
		}
	}
	for learnerID, list := range f.Learners {
		if err := dst.AddLearner(ctx, learnerID); err != nil {
			return err
		}
		for _, in := range list {
			in.LearnerID = learnerID
			if err := dst.PutInteraction(ctx, in); err != nil {
				return err
			}
		}
	}
	return nil
}
