// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package recommend

import (
	"context"
	"sort"

	"github.com/tomtom215/courserank/internal/recommend/corpus"
)

// CatalogPopularity ranks the indexed catalog by enrollment count,
// descending, ties broken by ascending course ID.
type CatalogPopularity struct {
	index *corpus.Holder
}

// NewCatalogPopularity creates a popularity provider over the published index.
func NewCatalogPopularity(index *corpus.Holder) *CatalogPopularity {
	return &CatalogPopularity{index: index}
}

// PopularCourses returns up to limit course IDs.
func (p *CatalogPopularity) PopularCourses(_ context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	idx, err := p.index.Current()
	if err != nil {
		return nil, err
	}

	courses := idx.Courses()
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].EnrollmentCount != courses[j].EnrollmentCount {
			return courses[i].EnrollmentCount > courses[j].EnrollmentCount
		}
		return courses[i].ID < courses[j].ID
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
