// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/config"
	movielens_import "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/pipeline"
	"github.com/tomtom215/marquee/internal/recommend/storage"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

// RecommendComponents holds everything the API and the rebuild service share.
type RecommendComponents struct {
	Engine  *recommend.Engine
	Builder *pipeline.Builder
	Reader  *movielens_import.Reader
	Store   *storage.Store
}

// Close releases the DuckDB reader and the snapshot store.
func (c *RecommendComponents) Close(logger zerolog.Logger) {
	if c.Reader != nil {
		if err := c.Reader.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing dataset reader")
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing snapshot store")
		}
	}
}

// initRecommend wires the reader, snapshot store, engine and builder, then
// builds and publishes the first generation. The server does not start
// without it.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	c := &RecommendComponents{}

	reader, err := movielens_import.NewReader(logger)
	if err != nil {
		return nil, fmt.Errorf("open dataset reader: %w", err)
	}
	reader.SetQueryTimeout(cfg.Data.QueryTimeout)
	c.Reader = reader

	if cfg.Storage.Enabled {
		store, err := storage.Open(storage.Config{
			Path:     cfg.Storage.Path,
			InMemory: cfg.Storage.InMemory,
		}, logger)
		if err != nil {
			c.Close(logger)
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		c.Store = store
		logger.Info().
			Str("path", cfg.Storage.Path).
			Bool("in_memory", cfg.Storage.InMemory).
			Int("keep_versions", cfg.Storage.KeepVersions).
			Msg("snapshot store opened")
	} else {
		logger.Info().Msg("snapshot store disabled (STORAGE_ENABLED=false), model trains on every start")
	}

	engineCfg := cfg.Recommend.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		c.Close(logger)
		return nil, fmt.Errorf("create engine: %w", err)
	}
	c.Engine = engine

	builder, err := pipeline.NewBuilder(engineCfg, reader, pipeline.Options{
		MoviesPath:   cfg.Data.MoviesPath,
		RatingsPath:  cfg.Data.RatingsPath,
		Store:        c.Store,
		KeepVersions: cfg.Storage.KeepVersions,
	}, logger)
	if err != nil {
		c.Close(logger)
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	c.Builder = builder

	logger.Info().
		Str("movies", cfg.Data.MoviesPath).
		Str("ratings", cfg.Data.RatingsPath).
		Float64("weight_content", engineCfg.Weights.Content).
		Float64("weight_collab", engineCfg.Weights.Collaborative).
		Int("factors", engineCfg.SVD.Factors).
		Int("epochs", engineCfg.SVD.Epochs).
		Msg("building initial artifacts")

	artifacts, err := builder.Build(ctx)
	if err != nil {
		c.Close(logger)
		return nil, fmt.Errorf("initial build: %w", err)
	}
	if err := engine.Publish(artifacts); err != nil {
		c.Close(logger)
		return nil, fmt.Errorf("publish initial artifacts: %w", err)
	}

	return c, nil
}

// addRebuildService supervises periodic rebuilds when an interval is set.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func addRebuildService(tree *supervisor.SupervisorTree, c *RecommendComponents, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.Recommend.RebuildInterval <= 0 {
		logger.Info().Msg("rebuild service disabled (RECOMMEND_REBUILD_INTERVAL=0)")
		return nil
	}

	var fingerprint string
	if current := c.Engine.Current(); current != nil {
		fingerprint = current.Fingerprint
	}

	svc, err := services.NewRebuildService(c.Builder, c.Engine, services.RebuildServiceConfig{
		Interval:    cfg.Recommend.RebuildInterval,
		Fingerprint: fingerprint,
	}, logger)
	if err != nil {
		return err
	}
	tree.AddModelService(svc)
	logger.Info().Dur("interval", cfg.Recommend.RebuildInterval).Msg("rebuild service added to supervisor tree")
	return nil
}
