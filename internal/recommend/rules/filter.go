// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package rules evaluates course eligibility expressions written in CEL.
//
// An expression sees one variable, course, with these fields:
//
//	course.id          string
//	course.title       string
//	course.description string
//	course.topics      list(string)
//	course.enrollment  int
//
// Examples:
//
//	course.enrollment >= 25
//	!("retired" in course.topics)
//	course.title.startsWith("Intro") || course.enrollment > 1000
package rules

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/courserank/internal/models"
)

// Filter is a compiled eligibility expression. Safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. An empty expression is rejected;
// callers skip filtering instead of compiling "true".
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty candidate filter: %w", models.ErrInvalidArgument)
	}

	env, err := cel.NewEnv(cel.Variable("course", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile candidate filter %q: %v: %w", expr, issues.Err(), models.ErrInvalidArgument)
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("candidate filter %q returns %s, want bool: %w", expr, out, models.ErrInvalidArgument)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program candidate filter: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Allow reports whether the course passes the filter.
//
//nolint:gocritic // models.Course passed by value to keep the filter read-only
func (f *Filter) Allow(course models.Course) (bool, error) {
	topics := course.Topics
	if topics == nil {
		topics = []string{}
	}
	out, _, err := f.prg.Eval(map[string]interface{}{
		"course": map[string]interface{}{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"topics":      topics,
			"enrollment":  int64(course.EnrollmentCount),
		},
	})
	if err != nil {
		return false, fmt.Errorf("evaluate candidate filter for %q: %w", course.ID, err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("candidate filter returned %T, want bool", out.Value())
	}
	return allowed, nil
}
