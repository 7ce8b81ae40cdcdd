// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation requests
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"operation", "path", "outcome"}, // path: "cold_start", "hybrid", "similar"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	RecommendDegradedScores = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_degraded_scores_total",
			Help: "Collaborative scores replaced by zero because the learner or course has no factor row",
		},
	)

	// Corpus index
	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpus_index_builds_total",
			Help: "Total number of corpus index builds",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "corpus_index_build_duration_seconds",
			Help:    "Duration of corpus index builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	IndexCourses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_index_courses",
			Help: "Number of courses in the published corpus index",
		},
	)

	IndexVocabulary = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_index_vocabulary_size",
			Help: "Number of distinct terms in the published corpus index",
		},
	)

	IndexVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_index_version",
			Help: "Version counter of the published corpus index",
		},
	)

	// Collaborator queries
	DatasourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datasource_query_duration_seconds",
			Help:    "Duration of catalog, interaction and popularity queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	DatasourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasource_query_errors_total",
			Help: "Total number of failed collaborator queries",
		},
		[]string{"store", "operation"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordRecommendRequest records one recommendation query.
func RecordRecommendRequest(operation, path, outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(operation, path, outcome).Inc()
	RecommendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDegradedScores adds n zero-substituted collaborative scores.
func RecordDegradedScores(n int) {
	if n > 0 {
		RecommendDegradedScores.Add(float64(n))
	}
}

// RecordIndexBuild records an index build attempt. Size gauges only move
// on success since a failed build leaves the previous index published.
func RecordIndexBuild(duration time.Duration, courses, vocabulary int, version uint64, err error) {
	IndexBuildDuration.Observe(duration.Seconds())
	if err != nil {
		IndexBuilds.WithLabelValues("failure").Inc()
		return
	}
	IndexBuilds.WithLabelValues("success").Inc()
	IndexCourses.Set(float64(courses))
	IndexVocabulary.Set(float64(vocabulary))
	IndexVersion.Set(float64(version))
}

// RecordDatasourceQuery records a collaborator query.
func RecordDatasourceQuery(store, operation string, duration time.Duration, err error) {
	DatasourceDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		DatasourceErrors.WithLabelValues(store, operation).Inc()
	}
}
