// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const fileSuffix = ".msgpack.gz"

// ErrNoModel is returned when no artifact exists for a name.
var ErrNoModel = errors.New("no model found")

// ModelMetadata describes a stored artifact.
type ModelMetadata struct {
	Name    string `json:"name" msgpack:"name"`
	Version int    `json:"version" msgpack:"version"`

	TrainedAt time.Time `json:"trained_at" msgpack:"trained_at"`
	SavedAt   time.Time `json:"saved_at" msgpack:"saved_at"`

	LearnerCount int `json:"learner_count" msgpack:"learner_count"`
	CourseCount  int `json:"course_count" msgpack:"course_count"`
	Factors      int `json:"factors" msgpack:"factors"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum  string `json:"checksum" msgpack:"checksum"`
	SizeBytes int64  `json:"size_bytes" msgpack:"size_bytes"`
}

type storedFile struct {
	Metadata       ModelMetadata `msgpack:"metadata"`
	CompressedData []byte        `msgpack:"compressed_data"`
}

// Store manages artifacts under one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per artifact name
	versions map[string]int
}

// NewStore opens (creating if needed) a store at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	s := &Store{baseDir: baseDir, versions: make(map[string]int)}
	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

func (s *Store) scanModels() error {
	found, err := s.listVersions()
	if err != nil {
		return err
	}
	for name, versions := range found {
		s.versions[name] = versions[0]
	}
	return nil
}

// listVersions returns every version per name, newest first.
func (s *Store) listVersions() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		name, version := parseModelFilename(strings.TrimSuffix(entry.Name(), fileSuffix))
		if name == "" {
			continue
		}
		found[name] = append(found[name], version)
	}
	for _, versions := range found {
		sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	}
	return found, nil
}

// parseModelFilename splits "course_factors_v3" into ("course_factors", 3).
func parseModelFilename(base string) (string, int) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0
	}
	return base[:idx], version
}

// Save stores data under name and version. The payload is msgpack-encoded.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data interface{}, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || version <= 0 {
		return fmt.Errorf("invalid model name %q or version %d", name, version)
	}

	raw, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	file, err := msgpack.Marshal(storedFile{Metadata: meta, CompressedData: compressed.Bytes()})
	if err != nil {
		return fmt.Errorf("encode model file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.modelPath(name, version)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, file, 0o640); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("publish model file: %w", err)
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}
	return nil
}

// Load decodes the artifact into target. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, name string, version int, target interface{}) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		if version, ok = s.versions[name]; !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrNoModel)
		}
	}

	sf, err := s.readFile(name, version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close after full read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := msgpack.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &sf.Metadata, nil
}

func (s *Store) readFile(name string, version int) (*storedFile, error) {
	data, err := os.ReadFile(s.modelPath(name, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s v%d: %w", name, version, ErrNoModel)
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	var sf storedFile
	if err := msgpack.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// GetLatestVersion returns the latest version number for name.
func (s *Store) GetLatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns metadata for the latest version of every artifact,
// ordered by name.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ModelMetadata, 0, len(s.versions))
	for name, version := range s.versions {
		sf, err := s.readFile(name, version)
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Prune removes all but the newest keepVersions versions of name.
// It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keepVersions < 1 {
		keepVersions = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.listVersions()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}
	versions := found[name]
	removed := 0
	for i := keepVersions; i < len(versions); i++ {
		if err := os.Remove(s.modelPath(name, versions[i])); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileSuffix))
}
