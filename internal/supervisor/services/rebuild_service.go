// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// DefaultBuildTimeout bounds a single rebuild.
const DefaultBuildTimeout = 30 * time.Minute

// ArtifactBuilder produces a new generation of artifacts.
// *pipeline.Builder implements it.
type ArtifactBuilder interface {
	// Fingerprint identifies the current input files without reading them.
	Fingerprint() (string, error)

	// Build loads the inputs and builds a generation.
	Build(ctx context.Context) (*recommend.Artifacts, error)
}

// Publisher serves a generation. *recommend.Engine implements it.
type Publisher interface {
	Publish(a *recommend.Artifacts) error

	// PruneCache drops expired cached responses.
	PruneCache() int
}

// RebuildServiceConfig configures the rebuild service.
type RebuildServiceConfig struct {
	// Interval is how often the input fingerprint is checked. Required.
	Interval time.Duration

	// BuildTimeout bounds one rebuild. Default: DefaultBuildTimeout.
	BuildTimeout time.Duration

	// Fingerprint is the fingerprint of the generation already published,
	// if any. An empty value forces a build on the first check.
	Fingerprint string
}

// RebuildService polls the input files and rebuilds the served artifacts
// when their fingerprint changes. A failed rebuild leaves the previous
// generation in place and is retried on the next tick. Each tick also
// prunes expired response cache entries.
type RebuildService struct {
	builder   ArtifactBuilder
	publisher Publisher
	config    RebuildServiceConfig
	logger    zerolog.Logger
	name      string

	// published is only touched by the Serve goroutine.
	published string
}

// NewRebuildService creates a rebuild service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(builder ArtifactBuilder, publisher Publisher, cfg RebuildServiceConfig, logger zerolog.Logger) (*RebuildService, error) {
	if builder == nil || publisher == nil {
		return nil, errors.New("rebuild service requires a builder and a publisher")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("rebuild interval must be positive")
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	return &RebuildService{
		builder:   builder,
		publisher: publisher,
		config:    cfg,
		logger:    logger.With().Str("service", "rebuild").Logger(),
		name:      "rebuild-service",
		published: cfg.Fingerprint,
	}, nil
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Str("fingerprint", s.published).
		Msg("rebuild service starting")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.check(ctx)
			s.pruneCache()
		}
	}
}

// check rebuilds when the inputs changed since the last publish and
// reports the outcome.
func (s *RebuildService) check(ctx context.Context) string {
	fingerprint, err := s.builder.Fingerprint()
	if err != nil {
		s.logger.Warn().Err(err).Msg("cannot fingerprint input files")
		metrics.RecordRebuild(metrics.OutcomeError)
		return metrics.OutcomeError
	}
	if fingerprint == s.published {
		s.logger.Debug().Str("fingerprint", fingerprint).Msg("input files unchanged")
		metrics.RecordRebuild(metrics.OutcomeUnchanged)
		return metrics.OutcomeUnchanged
	}

	outcome := s.rebuild(ctx)
	metrics.RecordRebuild(outcome)
	return outcome
}

func (s *RebuildService) pruneCache() {
	if removed := s.publisher.PruneCache(); removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("expired cache entries pruned")
	}
}

func (s *RebuildService) rebuild(ctx context.Context) string {
	buildCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Str("previous", s.published).Msg("input files changed, rebuilding")

	artifacts, err := s.builder.Build(buildCtx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rebuild failed, keeping current generation")
		return metrics.OutcomeError
	}
	if err := s.publisher.Publish(artifacts); err != nil {
		s.logger.Error().Err(err).Msg("publish failed, keeping current generation")
		return metrics.OutcomeError
	}
	s.published = artifacts.Fingerprint

	s.logger.Info().
		Str("fingerprint", artifacts.Fingerprint).
		Bool("restored", artifacts.Restored).
		Dur("duration", time.Since(start)).
		Msg("rebuild complete")
	return metrics.OutcomeOK
}

// String returns the service name for logging.
func (s *RebuildService) String() string {
	return s.name
}
