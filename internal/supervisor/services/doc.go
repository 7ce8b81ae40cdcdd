// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

/*
Package services provides suture.Service wrappers for CourseRank components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer so suture can name it in log output.

# Available Services

Index Service (IndexService):
  - Rebuilds the corpus index on startup and on a cron schedule
  - Accepts rate-limited on-demand rebuild triggers
  - A failed rebuild is logged; the previous index keeps serving

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Used for the Prometheus metrics endpoint (NewMetricsServer)

# Example

	idx, err := services.NewIndexService(engine, services.IndexServiceConfig{
	    Schedule:         schedule,
	    RebuildOnStartup: true,
	    BuildTimeout:     5 * time.Minute,
	    TriggerRate:      1.0 / 30,
	    TriggerBurst:     1,
	}, logger)
	tree.AddIndexService(idx)
*/
package services
