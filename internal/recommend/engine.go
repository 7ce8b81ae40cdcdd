// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/courserank/internal/logging"
	"github.com/tomtom215/courserank/internal/metrics"
	"github.com/tomtom215/courserank/internal/models"
	"github.com/tomtom215/courserank/internal/recommend/corpus"
)

// Ranking paths, used as the "path" metrics label.
const (
	PathColdStart = "cold_start"
	PathHybrid    = "hybrid"
	PathSimilar   = "similar"
	pathNone      = "none"
)

// Dependencies are the engine's external collaborators. Catalog and
// Interactions are required. Popularity defaults to the catalog's
// enrollment ordering. Scorer and Filter are optional; without a scorer the
// collaborative term is always zero.
type Dependencies struct {
	Catalog      CatalogProvider
	Interactions InteractionProvider
	Popularity   PopularityProvider
	Scorer       CollaborativeScorer
	Filter       CandidateFilter
}

// Engine is the hybrid recommendation engine.
type Engine struct {
	config *Config
	deps   Dependencies
	index  *corpus.Holder
	logger zerolog.Logger

	requestCount  atomic.Int64
	errorCount    atomic.Int64
	degradedCount atomic.Int64
	coldStarts    atomic.Int64
}

// NewEngine creates an engine. The corpus index starts empty; call
// RebuildIndex before serving hybrid or similar-items requests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog provider is required: %w", ErrInvalidArgument)
	}
	if deps.Interactions == nil {
		return nil, fmt.Errorf("interaction provider is required: %w", ErrInvalidArgument)
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		index:  corpus.NewHolder(cfg.Index, logger),
	}
	if deps.Popularity == nil {
		deps.Popularity = NewCatalogPopularity(e.index)
	}
	e.deps = deps
	return e, nil
}

// Recommend ranks courses the learner has not engaged with. A learner with
// no interactions gets the popularity ordering. limit <= 0 returns an empty
// list without consulting any collaborator.
func (e *Engine) Recommend(ctx context.Context, learnerID string, limit int) (recs []models.Recommendation, err error) {
	start := time.Now()
	path := pathNone
	e.requestCount.Add(1)
	defer func() { e.finish("recommend", path, start, err) }()

	if !models.ValidID(learnerID) {
		return nil, fmt.Errorf("learner id %q: %w", learnerID, ErrInvalidArgument)
	}
	if limit <= 0 {
		return []models.Recommendation{}, nil
	}

	interactions, err := e.deps.Interactions.Interactions(ctx, learnerID)
	if err != nil {
		return nil, upstream(fmt.Sprintf("interactions for learner %q", learnerID), err)
	}

	engaged := models.EngagedSet(interactions)
	if len(engaged) == 0 {
		path = PathColdStart
		e.coldStarts.Add(1)
		return e.coldStart(ctx, limit)
	}

	path = PathHybrid
	return e.hybrid(ctx, learnerID, engaged, limit)
}

// coldStart returns the popularity ordering truncated to limit. Scores
// descend linearly from 1 so callers can still sort on them.
func (e *Engine) coldStart(ctx context.Context, limit int) ([]models.Recommendation, error) {
	ids, err := e.deps.Popularity.PopularCourses(ctx, limit)
	if err != nil {
		return nil, upstream("popularity ranking", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	n := float64(len(ids))
	recs := make([]models.Recommendation, len(ids))
	for i, id := range ids {
		recs[i] = models.Recommendation{CourseID: id, Score: (n - float64(i)) / n}
	}
	return recs, nil
}

func (e *Engine) hybrid(ctx context.Context, learnerID string, engaged map[string]models.Interaction, limit int) ([]models.Recommendation, error) {
	idx, err := e.index.Current()
	if err != nil {
		return nil, err
	}

	// Engaged courses missing from the index cannot contribute similarity.
	rows := make([]int, 0, len(engaged))
	for id := range engaged {
		if i, ok := idx.Position(id); ok {
			rows = append(rows, i)
		}
	}

	wc, wf := e.config.ContentWeight, e.config.CollaborativeWeight
	recs := make([]models.Recommendation, 0, idx.Len())
	degraded := 0

	for j := 0; j < idx.Len(); j++ {
		if j%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		course := idx.CourseAt(j)
		if _, seen := engaged[course.ID]; seen {
			continue
		}
		if e.deps.Filter != nil {
			ok, err := e.deps.Filter.Allow(course)
			if err != nil {
				return nil, fmt.Errorf("candidate filter: %w", err)
			}
			if !ok {
				continue
			}
		}

		content := 0.0
		if len(rows) > 0 {
			for _, i := range rows {
				content += idx.SimilarityAt(i, j)
			}
			content /= float64(len(rows))
		}

		collaborative := 0.0
		if e.deps.Scorer != nil {
			collaborative, err = e.deps.Scorer.Score(learnerID, course.ID)
			switch {
			case errors.Is(err, ErrUnknownEntity):
				collaborative = 0
				degraded++
			case err != nil:
				return nil, fmt.Errorf("collaborative score for %q: %w", course.ID, err)
			case math.IsNaN(collaborative) || math.IsInf(collaborative, 0):
				// A non-finite score would break the ranking order.
				collaborative = 0
				degraded++
			}
		}

		recs = append(recs, models.Recommendation{
			CourseID:      course.ID,
			Score:         wc*content + wf*collaborative,
			Content:       content,
			Collaborative: collaborative,
		})
	}

	if degraded > 0 {
		e.degradedCount.Add(int64(degraded))
		metrics.RecordDegradedScores(degraded)
		logger := logging.Scoped(ctx, e.logger)
		logger.Debug().
			Str("learner_id", learnerID).
			Int("degraded", degraded).
			Int("candidates", len(recs)).
			Msg("collaborative score unavailable, using content only")
	}

	models.SortRecommendations(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Similar returns up to limit courses most similar to courseID.
func (e *Engine) Similar(ctx context.Context, courseID string, limit int) (recs []models.Recommendation, err error) {
	start := time.Now()
	e.requestCount.Add(1)
	defer func() { e.finish("similar", PathSimilar, start, err) }()

	if !models.ValidID(courseID) {
		return nil, fmt.Errorf("course id %q: %w", courseID, ErrInvalidArgument)
	}
	if limit <= 0 {
		return []models.Recommendation{}, nil
	}

	idx, err := e.index.Current()
	if err != nil {
		return nil, err
	}
	return idx.TopKSimilar(courseID, limit)
}

// Course returns an indexed course record.
func (e *Engine) Course(_ context.Context, courseID string) (models.Course, error) {
	if !models.ValidID(courseID) {
		return models.Course{}, fmt.Errorf("course id %q: %w", courseID, ErrInvalidArgument)
	}
	idx, err := e.index.Current()
	if err != nil {
		return models.Course{}, err
	}
	return idx.Course(courseID)
}

// RebuildIndex fetches the catalog and replaces the corpus index. On any
// failure the previously published index keeps serving.
func (e *Engine) RebuildIndex(ctx context.Context) error {
	logger := logging.Scoped(ctx, e.logger)

	courses, err := e.deps.Catalog.Courses(ctx)
	if err != nil {
		err = upstream("catalog snapshot", err)
		logger.Warn().Err(err).Msg("catalog fetch failed, keeping previous index")
		return err
	}
	if _, err := e.index.Rebuild(ctx, courses); err != nil {
		return err
	}
	return nil
}

// Status is a point-in-time snapshot of engine state.
type Status struct {
	IndexReady           bool      `json:"index_ready"`
	IndexVersion         uint64    `json:"index_version"`
	IndexCourses         int       `json:"index_courses"`
	IndexVocabulary      int       `json:"index_vocabulary"`
	IndexBuiltAt         time.Time `json:"index_built_at,omitempty"`
	CollaborativeEnabled bool      `json:"collaborative_enabled"`
	FilterEnabled        bool      `json:"filter_enabled"`
	ContentWeight        float64   `json:"content_weight"`
	CollaborativeWeight  float64   `json:"collaborative_weight"`
	Requests             int64     `json:"requests"`
	Errors               int64     `json:"errors"`
	ColdStarts           int64     `json:"cold_starts"`
	DegradedScores       int64     `json:"degraded_scores"`
}

// Status reports index and request counters.
func (e *Engine) Status() Status {
	s := Status{
		CollaborativeEnabled: e.deps.Scorer != nil,
		FilterEnabled:        e.deps.Filter != nil,
		ContentWeight:        e.config.ContentWeight,
		CollaborativeWeight:  e.config.CollaborativeWeight,
		Requests:             e.requestCount.Load(),
		Errors:               e.errorCount.Load(),
		ColdStarts:           e.coldStarts.Load(),
		DegradedScores:       e.degradedCount.Load(),
	}
	if idx, err := e.index.Current(); err == nil {
		s.IndexReady = true
		s.IndexVersion = idx.Version()
		s.IndexCourses = idx.Len()
		s.IndexVocabulary = idx.VocabularySize()
		s.IndexBuiltAt = idx.BuiltAt()
	}
	return s
}

func (e *Engine) finish(operation, path string, start time.Time, err error) {
	metrics.RecordRecommendRequest(operation, path, outcome(err), time.Since(start))
	if err == nil {
		return
	}
	e.errorCount.Add(1)
	if errors.Is(err, ErrUpstreamUnavailable) {
		e.logger.Warn().Err(err).Str("operation", operation).Msg("collaborator unavailable")
	}
}
