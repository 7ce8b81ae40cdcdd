// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in priority order.
var DefaultConfigPaths = []string{
	"courserank.yaml",
	"courserank.yml",
	"/etc/courserank/config.yaml",
	"/etc/courserank/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			ContentWeight:       0.7,
			CollaborativeWeight: 0.3,
		},
		Index: IndexConfig{
			Fields:           []string{"description"},
			MinTokenLength:   2,
			Workers:          0,
			RebuildSchedule:  "@every 15m",
			RebuildOnStartup: true,
			BuildTimeout:     5 * time.Minute,
			TriggerRate:      1.0 / 30.0,
			TriggerBurst:     1,
		},
		Model: ModelConfig{
			Name: "course_factors",
		},
		Datasource: DatasourceConfig{
			Driver:         "sqlite",
			SQLitePath:     "courserank.db",
			RedisKeyPrefix: "courserank:",
			Timeout:        5 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:  1,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  5,
				FailureRatio: 0.6,
			},
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, then validates it. An empty path triggers the
// CONFIG_PATH / DefaultConfigPaths search.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("COURSERANK_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"index.fields",
}

// processSliceFields splits comma-separated environment values into lists.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"content_weight":       "recommend.content_weight",
	"collaborative_weight": "recommend.collaborative_weight",
	"candidate_filter":     "recommend.candidate_filter",

	"index_fields":           "index.fields",
	"index_min_token_length": "index.min_token_length",
	"index_workers":          "index.workers",
	"index_rebuild_schedule": "index.rebuild_schedule",
	"index_rebuild_startup":  "index.rebuild_on_startup",
	"index_build_timeout":    "index.build_timeout",
	"index_trigger_rate":     "index.trigger_rate",
	"index_trigger_burst":    "index.trigger_burst",

	"model_dir":          "model.dir",
	"model_name":         "model.name",
	"model_mapping_path": "model.mapping_path",

	"datasource_driver":  "datasource.driver",
	"sqlite_path":        "datasource.sqlite_path",
	"redis_addr":         "datasource.redis_addr",
	"redis_password":     "datasource.redis_password",
	"redis_db":           "datasource.redis_db",
	"redis_key_prefix":   "datasource.redis_key_prefix",
	"catalog_file":       "datasource.catalog_file",
	"datasource_timeout": "datasource.timeout",

	"breaker_max_requests":  "datasource.breaker.max_requests",
	"breaker_interval":      "datasource.breaker.interval",
	"breaker_timeout":       "datasource.breaker.timeout",
	"breaker_min_requests":  "datasource.breaker.min_requests",
	"breaker_failure_ratio": "datasource.breaker.failure_ratio",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

	"metrics_listen_addr": "metrics.listen_addr",
	"metrics_path":        "metrics.path",
}

// envTransformFunc maps COURSERANK_* variables to config keys.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "COURSERANK_"))
	return envMappings[key]
}
