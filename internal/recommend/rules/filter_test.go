// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package rules

import (
	"errors"
	"testing"

	"github.com/tomtom215/courserank/internal/models"
)

func TestFilter_Allow(t *testing.T) {
	t.Parallel()

	algebra := models.Course{ID: "algebra", Title: "Intro to Algebra", Topics: []string{"math"}, EnrollmentCount: 120}
	retired := models.Course{ID: "latin", Title: "Latin", Topics: []string{"language", "retired"}, EnrollmentCount: 4}
	bare := models.Course{ID: "bare"}

	tests := []struct {
		name   string
		expr   string
		course models.Course
		want   bool
	}{
		{"enrollment threshold pass", "course.enrollment >= 25", algebra, true},
		{"enrollment threshold fail", "course.enrollment >= 25", retired, false},
		{"topic exclusion", `!("retired" in course.topics)`, retired, false},
		{"topic exclusion nil topics", `!("retired" in course.topics)`, bare, true},
		{"string function", `course.title.startsWith("Intro")`, algebra, true},
		{"id match", `course.id == "latin"`, retired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.expr, err)
			}
			got, err := f.Allow(tt.course)
			if err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Allow(%s) = %v, want %v", tt.course.ID, got, tt.want)
			}
		})
	}
}

func TestCompile_Rejects(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "   ", "course.enrollment >=", `"just a string"`, "1 + 2"} {
		if _, err := Compile(expr); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("Compile(%q) error = %v, want ErrInvalidArgument", expr, err)
		}
	}
}

func TestFilter_NonBoolAtRuntime(t *testing.T) {
	t.Parallel()

	f, err := Compile("course.title")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := f.Allow(models.Course{ID: "x", Title: "t"}); err == nil {
		t.Error("expected error for non-bool result")
	}
	if f.String() != "course.title" {
		t.Errorf("String() = %q", f.String())
	}
}

func TestFilter_MissingField(t *testing.T) {
	t.Parallel()

	f, err := Compile("course.price > 10")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := f.Allow(models.Course{ID: "x"}); err == nil {
		t.Error("expected error for unknown field")
	}
}
