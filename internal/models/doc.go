// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

/*
Package models defines the data structures and error kinds shared by the
CourseRank packages.

Key Components:

  - Course: a catalog entry, the unit the corpus index is built over
  - Interaction: one learner's engagement with one course
  - Recommendation: a ranked course with its fused and component scores
  - Sentinel errors: the error taxonomy callers match with errors.Is

These types carry no behavior beyond small helpers so every layer
(datasources, corpus index, factor scorer, engine) can depend on them
without import cycles.
*/
package models
