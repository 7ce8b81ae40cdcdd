// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package factor scores learner/course pairs with a pre-trained latent factor model.
//
// A Model holds two factor tables of equal width, one row per learner and
// one per course, and a combiner turning a pair of rows into a score:
//
//	linear: w[:F]·learner + w[F:]·course + bias   (projection of the concatenated pair)
//	dot:    learner·course + bias
//
// Models are trained elsewhere and loaded once as a msgpack Artifact; there
// is no update path. Identifiers never map to rows by numeric conversion:
// a Mapping collaborator resolves them, and any miss or out-of-range row
// surfaces as models.ErrUnknownEntity so callers can degrade gracefully.
package factor
