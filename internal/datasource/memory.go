// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/courserank/internal/models"
)

// Memory is an in-process Source. Learners become known on their first
// interaction or through AddLearner.
type Memory struct {
	mu           sync.RWMutex
	courses      map[string]models.Course
	interactions map[string][]models.Interaction
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		courses:      make(map[string]models.Course),
		interactions: make(map[string][]models.Interaction),
	}
}

// Name implements Source.
func (m *Memory) Name() string { return "memory" }

// Close implements Source.
func (m *Memory) Close() error { return nil }

// PutCourse inserts or replaces a course.
func (m *Memory) PutCourse(_ context.Context, c models.Course) error {
	if !models.ValidID(c.ID) {
		return fmt.Errorf("course id %q: %w", c.ID, models.ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	return nil
}

// AddLearner registers a learner with no interactions.
func (m *Memory) AddLearner(_ context.Context, learnerID string) error {
	if !models.ValidID(learnerID) {
		return fmt.Errorf("learner id %q: %w", learnerID, models.ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interactions[learnerID]; !ok {
		m.interactions[learnerID] = []models.Interaction{}
	}
	return nil
}

// PutInteraction records an interaction, replacing an older one for the
// same course.
func (m *Memory) PutInteraction(_ context.Context, in models.Interaction) error {
	if !models.ValidID(in.LearnerID) || !models.ValidID(in.CourseID) {
		return fmt.Errorf("interaction %q/%q: %w", in.LearnerID, in.CourseID, models.ErrInvalidArgument)
	}
	if !models.ValidCompletion(in.Completion) {
		return fmt.Errorf("interaction %q/%q completion %v outside [0,1]: %w", in.LearnerID, in.CourseID, in.Completion, models.ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.interactions[in.LearnerID]
	for i := range list {
		if list[i].CourseID == in.CourseID {
			if in.UpdatedAt.Before(list[i].UpdatedAt) {
				return nil
			}
			list[i] = in
			return nil
		}
	}
	m.interactions[in.LearnerID] = append(list, in)
	return nil
}

// Courses returns the catalog ordered by course ID.
func (m *Memory) Courses(_ context.Context) ([]models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Interactions returns a copy of the learner's interactions.
func (m *Memory) Interactions(_ context.Context, learnerID string) ([]models.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.interactions[learnerID]
	if !ok {
		return nil, fmt.Errorf("learner %q: %w", learnerID, models.ErrUnknownLearner)
	}
	out := make([]models.Interaction, len(list))
	copy(out, list)
	return out, nil
}

// PopularCourses orders by enrollment descending, then course ID.
func (m *Memory) PopularCourses(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	courses, _ := m.Courses(ctx)
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].EnrollmentCount > courses[j].EnrollmentCount
	})
	if len(courses) > limit {
		courses = courses[:limit]
	}
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	return ids, nil
}
