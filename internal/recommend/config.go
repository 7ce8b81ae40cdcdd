// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/courserank/internal/recommend/corpus"
)

// Config holds engine configuration.
type Config struct {
	// ContentWeight scales the mean content similarity. Default: 0.7
	ContentWeight float64 `json:"content_weight"`

	// CollaborativeWeight scales the latent factor score. Default: 0.3
	CollaborativeWeight float64 `json:"collaborative_weight"`

	// Index controls corpus index construction.
	Index corpus.Options `json:"index"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ContentWeight:       0.7,
		CollaborativeWeight: 0.3,
		Index: corpus.Options{
			Fields:         []string{corpus.FieldDescription},
			MinTokenLength: 2,
		},
	}
}

// Validate checks the weights.
func (c *Config) Validate() error {
	for name, w := range map[string]float64{
		"content_weight":       c.ContentWeight,
		"collaborative_weight": c.CollaborativeWeight,
	} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%s must be a finite non-negative number, got %v: %w", name, w, ErrInvalidArgument)
		}
	}
	if c.ContentWeight == 0 && c.CollaborativeWeight == 0 {
		return fmt.Errorf("at least one weight must be positive: %w", ErrInvalidArgument)
	}
	return nil
}
