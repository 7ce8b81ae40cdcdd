// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package datasource provides the catalog, interaction and popularity
// collaborators the recommendation engine reads from.
//
// Drivers:
//   - memory: in-process maps, optionally seeded from a YAML catalog file
//   - sqlite: embedded database (modernc.org/sqlite, no cgo)
//   - redis: hashes for courses and interactions, a sorted set for popularity
//
// Every driver is wrapped by Guarded, which applies a per-call timeout and a
// circuit breaker (sony/gobreaker) and converts transport failures into
// models.ErrUpstreamUnavailable. models.ErrUnknownLearner passes through
// untouched and does not count against the breaker.
package datasource
