// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package main is the entry point for the courserank command.
//
// # Commands
//
//	courserank serve                      run the index service and metrics listener
//	                                      (SIGHUP reloads the log level and rebuilds the index)
//	courserank recommend -learner ID      rank courses for a learner
//	courserank similar -course ID         list courses similar to a course
//	courserank course -course ID          show one indexed course
//	courserank status                     build the index and print engine status
//	courserank models                     list stored factor model artifacts
//	courserank import-model -file PATH    store a factor model artifact
//
// Every command accepts -config PATH. Without it the configuration is
// read from CONFIG_PATH or the default search paths, then overridden by
// COURSERANK_* environment variables.
//
// One-shot commands print JSON to stdout and logs to stderr.
//
// # Example
//
//	export COURSERANK_DATASOURCE_DRIVER=memory
//	export COURSERANK_CATALOG_FILE=./catalog.yaml
//	courserank recommend -learner ada -limit 5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/courserank/internal/config"
	"github.com/tomtom215/courserank/internal/logging"
)

// command is one CLI subcommand.
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string, stdout io.Writer) error
}

var commands = []command{
	{"serve", "run the index service and metrics listener", runServe},
	{"recommend", "rank courses for a learner", runRecommend},
	{"similar", "list courses similar to a course", runSimilar},
	{"course", "show one indexed course", runCourse},
	{"status", "build the index and print engine status", runStatus},
	{"models", "list stored factor model artifacts", runModels},
	{"import-model", "store a factor model artifact", runImportModel},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logging.Err(err).Msg("courserank failed")
		stop()
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], stdout)
		}
	}
	printUsage(stderr)
	return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
}

var errUsage = errors.New("usage")

func exitCode(err error) int {
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		return 2
	}
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: courserank <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-13s %s\n", c.name, c.usage)
	}
}

// newFlagSet returns a flag set with the shared -config flag.
func newFlagSet(name string, configPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(configPath, "config", "", "path to config file")
	return fs
}

// loadConfig loads configuration and initializes the global logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
