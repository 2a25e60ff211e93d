// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	movielens_import "github.com/tomtom215/marquee/internal/import"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/algorithms"
	"github.com/tomtom215/marquee/internal/recommend/storage"
)

// ModelName is the storage name SVD snapshots are saved under.
const ModelName = "svd"

// DefaultKeepVersions is how many snapshots survive a prune when Options
// leaves KeepVersions unset.
const DefaultKeepVersions = 3

// DatasetLoader reads the movie and rating files into a dataset.
// *movielens_import.Reader implements it.
type DatasetLoader interface {
	Load(ctx context.Context, moviesPath, ratingsPath string, scale recommend.RatingScale) (*movielens_import.Dataset, error)
}

// Options configures a Builder.
type Options struct {
	MoviesPath  string
	RatingsPath string

	// Store holds SVD snapshots. Nil disables restore and save.
	Store *storage.Store

	// KeepVersions bounds the snapshots kept after each save.
	KeepVersions int
}

// Builder turns the input files into a publishable generation of
// recommendation artifacts.
type Builder struct {
	config *recommend.Config
	loader DatasetLoader
	opts   Options
	logger zerolog.Logger
}

// NewBuilder creates a builder. cfg is cloned.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(cfg *recommend.Config, loader DatasetLoader, opts Options, logger zerolog.Logger) (*Builder, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if loader == nil {
		return nil, errors.New("pipeline: nil dataset loader")
	}
	if opts.MoviesPath == "" || opts.RatingsPath == "" {
		return nil, errors.New("pipeline: movies and ratings paths are required")
	}
	if opts.KeepVersions <= 0 {
		opts.KeepVersions = DefaultKeepVersions
	}

	return &Builder{
		config: cfg.Clone(),
		loader: loader,
		opts:   opts,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Fingerprint returns the current fingerprint of the input files without
// reading them.
func (b *Builder) Fingerprint() (string, error) {
	return movielens_import.Fingerprint(b.opts.MoviesPath, b.opts.RatingsPath)
}

// Build loads the dataset and builds artifacts from it.
func (b *Builder) Build(ctx context.Context) (*recommend.Artifacts, error) {
	ds, err := b.loader.Load(ctx, b.opts.MoviesPath, b.opts.RatingsPath, b.config.Scale)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return b.BuildFrom(ctx, ds)
}

// BuildFrom builds the similarity index and the rating model for an
// already loaded dataset. The two run concurrently.
func (b *Builder) BuildFrom(ctx context.Context, ds *movielens_import.Dataset) (*recommend.Artifacts, error) {
	if ds == nil || ds.Corpus == nil || ds.Table == nil {
		return nil, errors.New("pipeline: incomplete dataset")
	}

	start := time.Now()
	index := algorithms.NewSimilarityIndex(b.logger)
	var fit *fitResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buildStart := time.Now()
		if err := index.Build(gctx, ds.Corpus); err != nil {
			return fmt.Errorf("build similarity index: %w", err)
		}
		metrics.RecordSimilarityBuild(time.Since(buildStart), index.Profiles())
		return nil
	})
	g.Go(func() error {
		var err error
		fit, err = b.fitModel(gctx, ds)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Info().
		Str("fingerprint", ds.Fingerprint).
		Int("items", ds.Corpus.Len()).
		Int("ratings", ds.Table.Len()).
		Bool("restored", fit.restored).
		Dur("duration", time.Since(start)).
		Msg("artifacts built")

	return &recommend.Artifacts{
		Corpus:      ds.Corpus,
		Table:       ds.Table,
		Similarity:  index,
		Predictor:   fit.model,
		Evaluation:  fit.evaluation,
		Fingerprint: ds.Fingerprint,
		Restored:    fit.restored,
		TrainedAt:   fit.trainedAt,
	}, nil
}

type fitResult struct {
	model      *algorithms.SVD
	evaluation *recommend.Evaluation
	restored   bool
	trainedAt  time.Time
}

// snapshotInputs is everything besides the dataset that changes a trained model.
type snapshotInputs struct {
	SVD          algorithms.SVDConfig
	TestFraction float64
}

// fitModel restores a snapshot matching the dataset and configuration, or
// trains a new model and saves it.
func (b *Builder) fitModel(ctx context.Context, ds *movielens_import.Dataset) (*fitResult, error) {
	svdCfg := algorithms.SVDConfigFrom(b.config)
	configHash, err := storage.HashConfig(snapshotInputs{SVD: svdCfg, TestFraction: b.config.Evaluation.TestFraction})
	if err != nil {
		return nil, err
	}
	key := storage.SnapshotKey(ds.Fingerprint, configHash)

	if b.opts.Store != nil {
		if res, ok := b.restore(ctx, svdCfg, key, ds); ok {
			return res, nil
		}
	}

	model := algorithms.NewSVD(svdCfg, b.logger)
	train, test := algorithms.TrainTestSplit(ds.Table.Ratings(), b.config.Evaluation.TestFraction, b.config.Seed)

	start := time.Now()
	if err := model.Train(ctx, ds.Table, train); err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	duration := time.Since(start)
	metrics.RecordTraining(duration, false)

	res := &fitResult{model: model, trainedAt: time.Now()}
	if len(test) > 0 {
		eval := algorithms.Evaluate(model, test)
		eval.TrainSize = len(train)
		res.evaluation = &eval
		b.logger.Info().
			Float64("rmse", eval.RMSE).
			Float64("mae", eval.MAE).
			Int("train_size", eval.TrainSize).
			Int("test_size", eval.TestSize).
			Msg("model evaluated")
	}

	if b.opts.Store != nil {
		b.save(ctx, model, key, configHash, ds, res, duration)
	}
	return res, nil
}

// restore loads the snapshot stored under key. Any failure falls back to
// training.
func (b *Builder) restore(ctx context.Context, svdCfg algorithms.SVDConfig, key string, ds *movielens_import.Dataset) (*fitResult, bool) {
	start := time.Now()

	var snap algorithms.SVDSnapshot
	meta, err := b.opts.Store.Load(ctx, ModelName, key, &snap)
	if err != nil {
		if !errors.Is(err, storage.ErrModelNotFound) {
			b.logger.Warn().Err(err).Str("key", key).Msg("snapshot load failed, retraining")
		}
		return nil, false
	}

	model := algorithms.NewSVD(svdCfg, b.logger)
	if err := model.Restore(&snap, ds.Table); err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("snapshot rejected, retraining")
		return nil, false
	}
	metrics.RecordTraining(time.Since(start), true)

	res := &fitResult{model: model, restored: true, trainedAt: meta.TrainedAt}
	if meta.RMSE > 0 || meta.MAE > 0 {
		res.evaluation = &recommend.Evaluation{
			RMSE:      meta.RMSE,
			MAE:       meta.MAE,
			TrainSize: snap.TrainSize,
			TestSize:  ds.Table.Len() - snap.TrainSize,
		}
	}

	b.logger.Info().
		Str("key", key).
		Int("version", meta.Version).
		Time("trained_at", meta.TrainedAt).
		Msg("model restored from snapshot")
	return res, true
}

// save persists a trained model and prunes old snapshots. Failures are
// logged; the trained model is still served.
func (b *Builder) save(ctx context.Context, model *algorithms.SVD, key, configHash string, ds *movielens_import.Dataset, res *fitResult, duration time.Duration) {
	snap, err := model.Snapshot()
	if err != nil {
		b.logger.Warn().Err(err).Msg("snapshot failed")
		return
	}

	meta := storage.ModelMetadata{
		Fingerprint:        ds.Fingerprint,
		ConfigHash:         configHash,
		TrainedAt:          res.trainedAt,
		RatingCount:        model.TrainSize(),
		ItemCount:          ds.Corpus.Len(),
		UserCount:          ds.Table.UserCount(),
		TrainingDurationMS: duration.Milliseconds(),
	}
	if res.evaluation != nil {
		meta.RMSE = res.evaluation.RMSE
		meta.MAE = res.evaluation.MAE
	}

	if err := b.opts.Store.Save(ctx, ModelName, key, snap, meta); err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("snapshot save failed")
		return
	}
	if removed, err := b.opts.Store.Prune(ctx, ModelName, b.opts.KeepVersions); err != nil {
		b.logger.Warn().Err(err).Msg("snapshot prune failed")
	} else if removed > 0 {
		b.logger.Debug().Int("removed", removed).Msg("old snapshots pruned")
	}
}
