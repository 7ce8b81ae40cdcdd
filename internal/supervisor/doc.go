// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

/*
Package supervisor provides process supervision for CourseRank using suture v4.

The serve command runs its long-lived work under a two-layer tree:

	RootSupervisor ("courserank")
	├── IndexSupervisor ("index-layer")
	│   └── IndexService
	└── OpsSupervisor ("ops-layer")
	    └── HTTPServerService "metrics-server" (if metrics.listen_addr is set)

Crashed services are restarted with suture's failure decay and backoff.
Supervisor events are logged through sutureslog, which writes to a
log/slog logger; logging.NewSlogLogger bridges that to zerolog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureDecay:     cfg.Supervisor.FailureDecay,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	tree.AddIndexService(indexService)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services return ctx.Err() on cancellation and suture.ErrDoNotRestart for
permanent completion.
*/
package supervisor
