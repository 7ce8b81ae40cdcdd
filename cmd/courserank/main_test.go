// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/courserank/internal/logging"
	"github.com/tomtom215/courserank/internal/models"
	"github.com/tomtom215/courserank/internal/recommend/factor"
	"github.com/tomtom215/courserank/internal/supervisor/services"
)

const testCatalog = `
courses:
  - id: C1
    title: Intro to Algebra
    description: intro to algebra
    enrollment_count: 10
  - id: C2
    title: Advanced Algebra
    description: advanced algebra
    enrollment_count: 30
  - id: C3
    title: Intro to Painting
    description: intro to painting
    enrollment_count: 20
learners:
  L:
    - course_id: C1
      completion: 1
      updated_at: 2026-03-01T10:00:00Z
  newbie: []
`

// writeTestConfig creates a memory-driver config and returns its path.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(catalog, []byte(testCatalog), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := "logging:\n  level: error\ndatasource:\n  driver: memory\n  catalog_file: " + catalog + "\n" + extra
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runJSON(t *testing.T, args []string, out interface{}) error {
	t.Helper()
	var stdout bytes.Buffer
	if err := run(context.Background(), args, &stdout, io.Discard); err != nil {
		return err
	}
	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		t.Fatalf("decode output %q: %v", stdout.String(), err)
	}
	return nil
}

func TestRun_Usage(t *testing.T) {
	var stderr bytes.Buffer
	if err := run(context.Background(), nil, io.Discard, &stderr); !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
	if !strings.Contains(stderr.String(), "recommend") {
		t.Errorf("usage output missing commands: %q", stderr.String())
	}
	if err := run(context.Background(), []string{"frobnicate"}, io.Discard, io.Discard); exitCode(err) != 2 {
		t.Errorf("unknown command exit code = %d, want 2", exitCode(err))
	}
}

func TestRun_Recommend(t *testing.T) {
	path := writeTestConfig(t, "")

	var out recommendOutput
	if err := runJSON(t, []string{"recommend", "-config", path, "-learner", "L", "-limit", "2"}, &out); err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if len(out.Recommendations) != 2 || out.Recommendations[0].CourseID != "C2" || out.Recommendations[1].CourseID != "C3" {
		t.Errorf("recommendations = %+v, want [C2 C3]", out.Recommendations)
	}
	if out.RequestID == "" {
		t.Error("request_id missing")
	}
}

func TestRun_RecommendColdStart(t *testing.T) {
	path := writeTestConfig(t, "")

	var out recommendOutput
	if err := runJSON(t, []string{"recommend", "-config", path, "-learner", "newbie", "-limit", "2"}, &out); err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if len(out.Recommendations) != 2 || out.Recommendations[0].CourseID != "C2" || out.Recommendations[1].CourseID != "C3" {
		t.Errorf("recommendations = %+v, want popularity order [C2 C3]", out.Recommendations)
	}
}

func TestRun_Errors(t *testing.T) {
	path := writeTestConfig(t, "")

	err := run(context.Background(), []string{"recommend", "-config", path, "-learner", "ghost"}, io.Discard, io.Discard)
	if !errors.Is(err, models.ErrUnknownLearner) {
		t.Errorf("recommend unknown learner error = %v, want ErrUnknownLearner", err)
	}
	err = run(context.Background(), []string{"similar", "-config", path, "-course", "C9"}, io.Discard, io.Discard)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("similar unknown course error = %v, want ErrNotFound", err)
	}
}

func TestRun_SimilarAndCourse(t *testing.T) {
	path := writeTestConfig(t, "")

	var out recommendOutput
	if err := runJSON(t, []string{"similar", "-config", path, "-course", "C1", "-limit", "5"}, &out); err != nil {
		t.Fatalf("similar error = %v", err)
	}
	if len(out.Recommendations) != 2 {
		t.Errorf("similar returned %d results, want 2", len(out.Recommendations))
	}

	var course models.Course
	if err := runJSON(t, []string{"course", "-config", path, "-course", "C3"}, &course); err != nil {
		t.Fatalf("course error = %v", err)
	}
	if course.Title != "Intro to Painting" {
		t.Errorf("course title = %q", course.Title)
	}
}

func TestRun_ImportModelAndRecommend(t *testing.T) {
	dir := t.TempDir()
	mapping := filepath.Join(dir, "mapping.yaml")
	if err := os.WriteFile(mapping, []byte("learners:\n  L: 0\ncourses:\n  C2: 0\n  C3: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	path := writeTestConfig(t, "model:\n  dir: "+filepath.Join(dir, "models")+"\n  mapping_path: "+mapping+"\n")

	// C3 gets a strong collaborative score, C2 none.
	model, err := factor.NewModel(
		mat.NewDense(1, 2, []float64{1, 0}),
		mat.NewDense(2, 2, []float64{0, 0, 10, 0}),
		factor.CombinerDot, nil, 0,
	)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	artifactPath := filepath.Join(dir, "artifact.msgpack")
	f, err := os.Create(artifactPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := factor.NewArtifact(model).Encode(f); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_ = f.Close()

	var imported struct {
		Version int `json:"version"`
	}
	if err := runJSON(t, []string{"import-model", "-config", path, "-file", artifactPath}, &imported); err != nil {
		t.Fatalf("import-model error = %v", err)
	}
	if imported.Version != 1 {
		t.Errorf("imported version = %d, want 1", imported.Version)
	}

	var listed []map[string]interface{}
	if err := runJSON(t, []string{"models", "-config", path}, &listed); err != nil {
		t.Fatalf("models error = %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("models listed %d artifacts, want 1", len(listed))
	}

	var out recommendOutput
	if err := runJSON(t, []string{"recommend", "-config", path, "-learner", "L", "-limit", "2"}, &out); err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if len(out.Recommendations) != 2 || out.Recommendations[0].CourseID != "C3" {
		t.Errorf("recommendations = %+v, want C3 first", out.Recommendations)
	}
	if out.Recommendations[0].Collaborative != 10 {
		t.Errorf("C3 collaborative = %v, want 10", out.Recommendations[0].Collaborative)
	}
}

func TestRun_Status(t *testing.T) {
	path := writeTestConfig(t, "")

	var out struct {
		Engine struct {
			IndexReady   bool `json:"index_ready"`
			IndexCourses int  `json:"index_courses"`
		} `json:"engine"`
		Datasource string `json:"datasource"`
		Breaker    string `json:"breaker"`
	}
	if err := runJSON(t, []string{"status", "-config", path}, &out); err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !out.Engine.IndexReady || out.Engine.IndexCourses != 3 {
		t.Errorf("status engine = %+v", out.Engine)
	}
	if out.Datasource != "memory" || out.Breaker != "closed" {
		t.Errorf("status datasource = %q breaker = %q", out.Datasource, out.Breaker)
	}
}

func TestWatchReload(t *testing.T) {
	defer logging.SetLevelString("info")
	path := writeTestConfig(t, "")
	if err := os.WriteFile(path, []byte(strings.Replace(mustRead(t, path), "level: error", "level: debug", 1)), 0o600); err != nil {
		t.Fatal(err)
	}

	triggered := make(chan struct{}, 2)
	results := []error{nil, services.ErrRateLimited}
	trigger := func() error {
		err := results[0]
		results = results[1:]
		triggered <- struct{}{}
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		watchReload(ctx, signals, path, trigger)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		signals <- syscall.SIGHUP
		select {
		case <-triggered:
		case <-time.After(time.Second):
			t.Fatalf("reload %d did not trigger a rebuild", i+1)
		}
	}
	if got := zerolog.GlobalLevel(); got != zerolog.DebugLevel {
		t.Errorf("global level = %v, want debug after reload", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("watchReload did not return after cancellation")
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
