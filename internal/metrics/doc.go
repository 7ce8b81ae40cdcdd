// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package metrics declares the Prometheus collectors exported by CourseRank.
//
// Collectors are package-level and registered on the default registry via
// promauto. Callers use the Record* helpers rather than touching label sets
// directly:
//
//	start := time.Now()
//	recs, err := engine.Recommend(ctx, learnerID, 10)
//	metrics.RecordRecommendRequest("recommend", "hybrid", outcome, time.Since(start))
//
// Metric families:
//   - recommend_*: request volume, latency, degraded collaborative scores
//   - corpus_index_*: index builds, size and published version
//   - datasource_*: collaborator query latency and errors
//   - circuit_breaker_*: breaker state per collaborator
package metrics
