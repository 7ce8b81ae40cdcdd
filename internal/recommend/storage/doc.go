// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package storage persists versioned model artifacts on local disk.
//
// Each artifact is msgpack-encoded, gzip-compressed and checksummed:
//
//	filename: {name}_v{version}.msgpack.gz
//
//	structure (msgpack):
//	  - Metadata (ModelMetadata, including the SHA-256 of the raw payload)
//	  - CompressedData (gzip of the msgpack-encoded artifact)
//
// Loading verifies the checksum before decoding, so a truncated or corrupted
// file never produces a half-populated model.
//
// Usage:
//
//	store, err := storage.NewStore("/data/models")
//	var artifact factor.Artifact
//	meta, err := store.Load(ctx, "course_factors", 0, &artifact) // 0 = latest
//	model, err := artifact.Model()
//
// Writes go to a temporary file renamed into place, so readers never see a
// partially written artifact.
package storage
