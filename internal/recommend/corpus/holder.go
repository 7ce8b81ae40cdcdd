// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/courserank/internal/metrics"
	"github.com/tomtom215/courserank/internal/models"
)

// Holder publishes the current Index. Readers load the pointer without
// locking and keep whatever snapshot they loaded for the rest of their work.
// Rebuilds run one at a time and replace the snapshot only on success.
type Holder struct {
	current atomic.Pointer[Index]
	version atomic.Uint64

	buildMu sync.Mutex
	opts    Options
	logger  zerolog.Logger
}

// NewHolder creates an empty holder. Current fails until the first
// successful Rebuild.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHolder(opts Options, logger zerolog.Logger) *Holder {
	return &Holder{
		opts:   opts,
		logger: logger.With().Str("component", "corpus").Logger(),
	}
}

// Current returns the published index or models.ErrIndexNotReady.
func (h *Holder) Current() (*Index, error) {
	idx := h.current.Load()
	if idx == nil {
		return nil, models.ErrIndexNotReady
	}
	return idx, nil
}

// Rebuild builds a fresh index from courses and publishes it. On failure the
// previously published index, if any, stays in place and the error is returned.
func (h *Holder) Rebuild(ctx context.Context, courses []models.Course) (*Index, error) {
	h.buildMu.Lock()
	defer h.buildMu.Unlock()

	start := time.Now()
	idx, err := Build(ctx, courses, h.opts)
	if err != nil {
		metrics.RecordIndexBuild(time.Since(start), 0, 0, 0, err)
		h.logger.Warn().Err(err).
			Int("courses", len(courses)).
			Uint64("serving_version", h.version.Load()).
			Msg("index rebuild failed, keeping previous index")
		return nil, fmt.Errorf("rebuild corpus index: %w", err)
	}

	h.publish(idx)
	metrics.RecordIndexBuild(time.Since(start), idx.Len(), idx.VocabularySize(), idx.version, nil)
	h.logger.Info().
		Uint64("version", idx.version).
		Int("courses", idx.Len()).
		Int("vocabulary", idx.VocabularySize()).
		Dur("duration", time.Since(start)).
		Msg("index published")
	return idx, nil
}

// publish must be called with buildMu held.
func (h *Holder) publish(idx *Index) {
	idx.version = h.version.Add(1)
	h.current.Store(idx)
}
