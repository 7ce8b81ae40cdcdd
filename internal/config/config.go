// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/courserank/internal/validation"
)

// Config is the complete CourseRank configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Index      IndexConfig      `koanf:"index"`
	Model      ModelConfig      `koanf:"model"`
	Datasource DatasourceConfig `koanf:"datasource"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// LoggingConfig mirrors logging.Config for the loadable fields.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig tunes scoring.
//
// Environment Variables:
//   - COURSERANK_CONTENT_WEIGHT (default: 0.7)
//   - COURSERANK_COLLABORATIVE_WEIGHT (default: 0.3)
//   - COURSERANK_CANDIDATE_FILTER: CEL expression over `course` (default: none)
type RecommendConfig struct {
	ContentWeight       float64 `koanf:"content_weight" validate:"gte=0"`
	CollaborativeWeight float64 `koanf:"collaborative_weight" validate:"gte=0"`

	// CandidateFilter is an optional CEL boolean expression; courses for
	// which it evaluates false are never recommended on the hybrid path.
	CandidateFilter string `koanf:"candidate_filter"`
}

// IndexConfig controls corpus index construction and refresh.
type IndexConfig struct {
	// Fields lists which course fields feed the TF-IDF vectorizer.
	Fields []string `koanf:"fields" validate:"min=1,dive,oneof=title description topics"`

	MinTokenLength int `koanf:"min_token_length" validate:"gte=1,lte=32"`

	// Workers bounds parallel similarity computation; 0 means GOMAXPROCS.
	Workers int `koanf:"workers" validate:"gte=0,lte=256"`

	RebuildSchedule  string        `koanf:"rebuild_schedule" validate:"required,cron"`
	RebuildOnStartup bool          `koanf:"rebuild_on_startup"`
	BuildTimeout     time.Duration `koanf:"build_timeout" validate:"gt=0"`

	// TriggerRate and TriggerBurst throttle on-demand rebuilds (per second).
	TriggerRate  float64 `koanf:"trigger_rate" validate:"gt=0"`
	TriggerBurst int     `koanf:"trigger_burst" validate:"gte=1"`
}

// ModelConfig locates the trained latent factor model.
type ModelConfig struct {
	// Dir holds versioned model artifacts. Empty disables collaborative scoring.
	Dir string `koanf:"dir"`

	// Name is the artifact name inside Dir.
	Name string `koanf:"name" validate:"required"`

	// MappingPath is the YAML file mapping learner and course identifiers
	// to factor table rows. Required when Dir is set.
	MappingPath string `koanf:"mapping_path" validate:"required_with=Dir"`
}

// DatasourceConfig selects where catalog and interaction data come from.
type DatasourceConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite redis"`

	SQLitePath string `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`

	RedisAddr      string `koanf:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db" validate:"gte=0"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// CatalogFile seeds the catalog from YAML for the memory and redis drivers.
	CatalogFile string `koanf:"catalog_file"`

	// Timeout bounds every collaborator call made through the breaker.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of each collaborator.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// SupervisorConfig configures the suture supervisor tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	// ListenAddr is the address for the metrics listener. Empty disables it.
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
	Path       string `koanf:"path" validate:"startswith=/"`
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if c.Recommend.ContentWeight == 0 && c.Recommend.CollaborativeWeight == 0 {
		return errors.New("recommend.content_weight and recommend.collaborative_weight cannot both be zero")
	}
	if c.Datasource.Driver == "memory" && c.Datasource.CatalogFile == "" {
		return fmt.Errorf("datasource.catalog_file is required for driver %q", c.Datasource.Driver)
	}
	return nil
}
