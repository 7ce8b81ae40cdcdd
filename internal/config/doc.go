// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package config loads CourseRank configuration with Koanf.
//
// Sources are layered, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. A YAML file: the explicit path, then CONFIG_PATH, then DefaultConfigPaths
//  3. Environment variables listed in envMappings (COURSERANK_*)
//
// The merged result is validated with struct tags through the validation
// package plus a few cross-field checks.
//
// Example config.yaml:
//
//	recommend:
//	  content_weight: 0.7
//	  collaborative_weight: 0.3
//	  candidate_filter: "course.enrollment >= 10"
//	index:
//	  rebuild_schedule: "@every 15m"
//	datasource:
//	  driver: sqlite
//	  sqlite_path: /data/courserank.db
package config
