// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package models

import (
	"sort"
	"strings"
	"time"
)

// Course is a catalog entry.
type Course struct {
	// ID uniquely identifies the course across the catalog.
	ID string `json:"id" yaml:"id" msgpack:"id"`

	// Title is the display title.
	Title string `json:"title" yaml:"title" msgpack:"title"`

	// Description is free text; it is the default source of index terms.
	Description string `json:"description" yaml:"description" msgpack:"description"`

	// Topics are curated subject tags.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty" msgpack:"topics,omitempty"`

	// EnrollmentCount is the number of learners enrolled; it drives the
	// popularity ordering used for cold start.
	EnrollmentCount int `json:"enrollment_count" yaml:"enrollment_count" msgpack:"enrollment_count"`
}

// Interaction records one learner's engagement with one course.
type Interaction struct {
	LearnerID string `json:"learner_id" yaml:"learner_id"`
	CourseID  string `json:"course_id" yaml:"course_id"`

	// Completion is the progress fraction in [0, 1].
	Completion float64 `json:"completion" yaml:"completion"`

	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Recommendation is a ranked course.
type Recommendation struct {
	CourseID string  `json:"course_id"`
	Score    float64 `json:"score"`

	// Content and Collaborative are the unweighted components of Score.
	// Both are zero for popularity and similar-items results.
	Content       float64 `json:"content,omitempty"`
	Collaborative float64 `json:"collaborative,omitempty"`
}

// ValidID reports whether id is usable as a learner or course identifier.
func ValidID(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.ContainsAny(id, "\x00\n\r")
}

// ValidCompletion reports whether c is a progress fraction in [0, 1].
// NaN is rejected.
func ValidCompletion(c float64) bool {
	return c >= 0 && c <= 1
}

// SortRecommendations orders recs by descending score, breaking ties by
// ascending course ID.
func SortRecommendations(recs []Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].CourseID < recs[j].CourseID
	})
}

// EngagedSet collapses interactions into the set of engaged course IDs.
// Duplicate (learner, course) rows resolve most-recent-wins; every
// surviving interaction counts as engagement regardless of completion.
func EngagedSet(interactions []Interaction) map[string]Interaction {
	engaged := make(map[string]Interaction, len(interactions))
	for _, in := range interactions {
		if in.CourseID == "" {
			continue
		}
		prev, ok := engaged[in.CourseID]
		if !ok || in.UpdatedAt.After(prev.UpdatedAt) {
			engaged[in.CourseID] = in
		}
	}
	return engaged
}
