// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Command recommend builds the recommendation artifacts in-process and prints
// the hybrid recommendations for one user and seed title.
//
//	recommend -movies movies.csv -ratings ratings.csv -user 1 -title "Toy Story (1995)"
//
// Flags override the values loaded from -config (or the usual config file
// and environment lookup). Logs go to stderr; results go to stdout.
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

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/config"
	movielens_import "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/pipeline"
	"github.com/tomtom215/marquee/internal/recommend/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the parsed command line flags.
type options struct {
	configPath    string
	moviesPath    string
	ratingsPath   string
	userID        int
	title         string
	k             int
	weightContent float64
	weightCollab  float64
	useSnapshots  bool
	logLevel      string

	// set records which flags were given explicitly.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.moviesPath, "movies", "", "path to movies.csv (overrides MOVIES_PATH)")
	fs.StringVar(&opts.ratingsPath, "ratings", "", "path to ratings.csv (overrides RATINGS_PATH)")
	fs.IntVar(&opts.userID, "user", 1, "user id to recommend for")
	fs.StringVar(&opts.title, "title", "", "seed movie title, e.g. \"Toy Story (1995)\"")
	fs.IntVar(&opts.k, "k", 0, "candidates per source (0 uses the configured default)")
	fs.Float64Var(&opts.weightContent, "weight-content", 0, "content similarity weight (default from config)")
	fs.Float64Var(&opts.weightCollab, "weight-collab", 0, "collaborative weight (default from config)")
	fs.BoolVar(&opts.useSnapshots, "snapshots", false, "restore and save model snapshots in the configured store")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.title == "" {
		return nil, errors.New("-title is required")
	}
	if opts.k < 0 {
		return nil, errors.New("-k must not be negative")
	}
	return opts, nil
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadFromPath(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.set["movies"] {
		cfg.Data.MoviesPath = opts.moviesPath
	}
	if opts.set["ratings"] {
		cfg.Data.RatingsPath = opts.ratingsPath
	}
	if opts.set["weight-content"] {
		cfg.Recommend.WeightContent = opts.weightContent
	}
	if opts.set["weight-collab"] {
		cfg.Recommend.WeightCollab = opts.weightCollab
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "recommend: %v\n", err)
		return 2
	}

	if !logging.ValidLevel(opts.logLevel) {
		fmt.Fprintf(stderr, "recommend: invalid -log-level %q\n", opts.logLevel)
		return 2
	}
	logging.Init(logging.Config{Level: opts.logLevel, Format: "console", Output: stderr})
	logger := logging.WithComponent("cli")

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "recommend: %v\n", err)
		return 1
	}

	items, err := recommendOnce(ctx, cfg, opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "recommend: %v\n", err)
		return 1
	}

	if err := printRecommendations(stdout, opts.userID, opts.title, items); err != nil {
		fmt.Fprintf(stderr, "recommend: %v\n", err)
		return 1
	}
	return 0
}

// recommendOnce runs the full pipeline and answers a single request.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func recommendOnce(ctx context.Context, cfg *config.Config, opts *options, logger zerolog.Logger) ([]recommend.ScoredItem, error) {
	reader, err := movielens_import.NewReader(logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	reader.SetQueryTimeout(cfg.Data.QueryTimeout)

	var store *storage.Store
	if opts.useSnapshots && cfg.Storage.Enabled {
		store, err = storage.Open(storage.Config{Path: cfg.Storage.Path, InMemory: cfg.Storage.InMemory}, logger)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
	}

	engineCfg := cfg.Recommend.EngineConfig()
	// Nothing is repeated in a single run.
	engineCfg.Cache.Enabled = false

	builder, err := pipeline.NewBuilder(engineCfg, reader, pipeline.Options{
		MoviesPath:   cfg.Data.MoviesPath,
		RatingsPath:  cfg.Data.RatingsPath,
		Store:        store,
		KeepVersions: cfg.Storage.KeepVersions,
	}, logger)
	if err != nil {
		return nil, err
	}
	artifacts, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, err
	}
	if err := engine.Publish(artifacts); err != nil {
		return nil, err
	}

	if artifacts.Evaluation != nil {
		logger.Info().
			Float64("rmse", artifacts.Evaluation.RMSE).
			Float64("mae", artifacts.Evaluation.MAE).
			Msg("holdout evaluation")
	}

	resp, err := engine.Recommend(ctx, recommend.Request{
		UserID:    opts.userID,
		SeedTitle: opts.title,
		K:         opts.k,
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// printRecommendations writes items in the console format:
//
//	Top Hybrid Recommendations for User 1 based on 'Toy Story (1995)':
//	1. Toy Story 2 (1999) (Score: 2.35)
func printRecommendations(w io.Writer, userID int, title string, items []recommend.ScoredItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No recommendations found for this user.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Top Hybrid Recommendations for User %d based on '%s':\n", userID, title); err != nil {
		return err
	}
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "%d. %s (Score: %.2f)\n", i+1, item.Title, item.Score); err != nil {
			return err
		}
	}
	return nil
}
