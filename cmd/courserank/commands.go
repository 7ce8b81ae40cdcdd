// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/courserank/internal/logging"
	"github.com/tomtom215/courserank/internal/models"
	"github.com/tomtom215/courserank/internal/recommend/factor"
	"github.com/tomtom215/courserank/internal/recommend/storage"
	"github.com/tomtom215/courserank/internal/supervisor"
	"github.com/tomtom215/courserank/internal/supervisor/services"
)

// recommendOutput is the JSON shape printed by recommend and similar.
type recommendOutput struct {
	RequestID       string                  `json:"request_id"`
	LearnerID       string                  `json:"learner_id,omitempty"`
	CourseID        string                  `json:"course_id,omitempty"`
	Limit           int                     `json:"limit"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

func runRecommend(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath, learnerID string
	var limit int
	fs := newFlagSet("recommend", &configPath)
	fs.StringVar(&learnerID, "learner", "", "learner identifier")
	fs.IntVar(&limit, "limit", 10, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withApp(ctx, configPath, true, func(a *app) error {
		ctx := logging.ContextWithLogger(logging.ContextWithNewRequestID(ctx), logging.WithComponent("cli"))
		recs, err := a.engine.Recommend(ctx, learnerID, limit)
		if err != nil {
			return err
		}
		logging.Ctx(ctx).Debug().
			Str("learner_id", learnerID).
			Int("results", len(recs)).
			Msg("recommendations served")
		return writeJSON(stdout, recommendOutput{
			RequestID:       logging.RequestIDFromContext(ctx),
			LearnerID:       learnerID,
			Limit:           limit,
			Recommendations: recs,
		})
	})
}

func runSimilar(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath, courseID string
	var limit int
	fs := newFlagSet("similar", &configPath)
	fs.StringVar(&courseID, "course", "", "course identifier")
	fs.IntVar(&limit, "limit", 10, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withApp(ctx, configPath, true, func(a *app) error {
		ctx := logging.ContextWithLogger(logging.ContextWithNewRequestID(ctx), logging.WithComponent("cli"))
		recs, err := a.engine.Similar(ctx, courseID, limit)
		if err != nil {
			return err
		}
		logging.Ctx(ctx).Debug().
			Str("course_id", courseID).
			Int("results", len(recs)).
			Msg("similar courses served")
		return writeJSON(stdout, recommendOutput{
			RequestID:       logging.RequestIDFromContext(ctx),
			CourseID:        courseID,
			Limit:           limit,
			Recommendations: recs,
		})
	})
}

func runCourse(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath, courseID string
	fs := newFlagSet("course", &configPath)
	fs.StringVar(&courseID, "course", "", "course identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withApp(ctx, configPath, true, func(a *app) error {
		course, err := a.engine.Course(ctx, courseID)
		if err != nil {
			return err
		}
		return writeJSON(stdout, course)
	})
}

func runStatus(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("status", &configPath)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withApp(ctx, configPath, true, func(a *app) error {
		return writeJSON(stdout, struct {
			Engine     interface{} `json:"engine"`
			Datasource string      `json:"datasource"`
			Breaker    string      `json:"breaker"`
		}{
			Engine:     a.engine.Status(),
			Datasource: a.source.Name(),
			Breaker:    a.source.State(),
		})
	})
}

func runModels(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("models", &configPath)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Model.Dir == "" {
		return fmt.Errorf("model.dir is not configured: %w", models.ErrInvalidArgument)
	}
	store, err := storage.NewStore(cfg.Model.Dir)
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}
	list, err := store.ListModels(ctx)
	if err != nil {
		return err
	}
	return writeJSON(stdout, list)
}

// runImportModel stores a raw msgpack factor artifact as the next version.
func runImportModel(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath, file, trainedAt string
	var keep int
	fs := newFlagSet("import-model", &configPath)
	fs.StringVar(&file, "file", "", "msgpack-encoded factor artifact")
	fs.StringVar(&trainedAt, "trained-at", "", "training time, RFC 3339 (default: now)")
	fs.IntVar(&keep, "keep", 5, "versions to retain after import, 0 keeps all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		return fmt.Errorf("-file is required: %w", errUsage)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Model.Dir == "" {
		return fmt.Errorf("model.dir is not configured: %w", models.ErrInvalidArgument)
	}

	trained := time.Now().UTC()
	if trainedAt != "" {
		if trained, err = time.Parse(time.RFC3339, trainedAt); err != nil {
			return fmt.Errorf("parse -trained-at: %w", err)
		}
	}

	f, err := os.Open(file) //nolint:gosec // operator-supplied path
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	artifact, err := factor.DecodeArtifact(f)
	if err != nil {
		return err
	}
	model, err := artifact.Model()
	if err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.Model.Dir)
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}
	version := 1
	if latest, ok := store.GetLatestVersion(cfg.Model.Name); ok {
		version = latest + 1
	}

	meta := storage.ModelMetadata{
		TrainedAt:    trained,
		LearnerCount: model.LearnerRows(),
		CourseCount:  model.CourseRows(),
		Factors:      model.Factors(),
	}
	if err := store.Save(ctx, cfg.Model.Name, version, artifact, meta); err != nil {
		return err
	}

	pruned := 0
	if keep > 0 {
		if pruned, err = store.Prune(ctx, cfg.Model.Name, keep); err != nil {
			return err
		}
	}

	logging.Info().
		Str("model", cfg.Model.Name).
		Int("version", version).
		Int("pruned", pruned).
		Msg("factor model imported")
	return writeJSON(stdout, struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
		Pruned  int    `json:"pruned"`
	}{cfg.Model.Name, version, pruned})
}

func runServe(ctx context.Context, args []string, _ io.Writer) error {
	var configPath string
	fs := newFlagSet("serve", &configPath)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	logging.Info().
		Str("datasource", a.source.Name()).
		Float64("content_weight", cfg.Recommend.ContentWeight).
		Float64("collaborative_weight", cfg.Recommend.CollaborativeWeight).
		Str("rebuild_schedule", cfg.Index.RebuildSchedule).
		Msg("Starting CourseRank with supervisor tree")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	schedule, err := services.ParseSchedule(cfg.Index.RebuildSchedule)
	if err != nil {
		return err
	}
	indexService, err := services.NewIndexService(a.engine, services.IndexServiceConfig{
		Schedule:         schedule,
		RebuildOnStartup: cfg.Index.RebuildOnStartup,
		BuildTimeout:     cfg.Index.BuildTimeout,
		TriggerRate:      cfg.Index.TriggerRate,
		TriggerBurst:     cfg.Index.TriggerBurst,
	}, logging.Logger())
	if err != nil {
		return err
	}
	tree.AddIndexService(indexService)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go watchReload(ctx, hup, configPath, indexService.Trigger)

	if cfg.Metrics.ListenAddr != "" {
		server := services.NewMetricsServer(cfg.Metrics.ListenAddr, cfg.Metrics.Path)
		tree.AddOpsService(services.NewHTTPServerService("metrics-server", server, cfg.Supervisor.ShutdownTimeout))
		logging.Info().
			Str("addr", cfg.Metrics.ListenAddr).
			Str("path", cfg.Metrics.Path).
			Msg("metrics listener enabled")
	}

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("services did not stop within shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("CourseRank stopped")
	return nil
}
