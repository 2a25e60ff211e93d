// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights are the default blend applied when a request does not set its own.
	Weights HybridWeights `json:"weights"`

	// SVD contains latent factor model hyper-parameters.
	SVD SVDParams `json:"svd"`

	// Evaluation controls the held-out split.
	Evaluation EvaluationConfig `json:"evaluation"`

	// Scale bounds ratings and predictions.
	Scale RatingScale `json:"scale"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`

	// Seed is the random seed for the split and factor initialization.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// HybridWeights defines the contribution of each signal.
// Weights are not normalized; they need not sum to 1.0.
type HybridWeights struct {
	// Content scales genre similarity.
	// Default: 0.4.
	Content float64 `json:"content"`

	// Collaborative scales predicted ratings.
	// Default: 0.6.
	Collaborative float64 `json:"collaborative"`
}

// Validate checks that both weights are finite and non-negative.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w HybridWeights) Validate() error {
	if w.Content < 0 || w.Content != w.Content {
		return fmt.Errorf("weights.content must be non-negative, got %f", w.Content)
	}
	if w.Collaborative < 0 || w.Collaborative != w.Collaborative {
		return fmt.Errorf("weights.collaborative must be non-negative, got %f", w.Collaborative)
	}
	return nil
}

// SVDParams contains parameters for biased matrix factorization.
type SVDParams struct {
	// Factors is the latent dimension.
	// Default: 100.
	Factors int `json:"factors"`

	// Epochs is the number of SGD passes over the training set.
	// Default: 20.
	Epochs int `json:"epochs"`

	// InitMean is the mean of the normal factor initialization.
	// Default: 0.
	InitMean float64 `json:"init_mean"`

	// InitStdDev is the standard deviation of the factor initialization.
	// Default: 0.1.
	InitStdDev float64 `json:"init_std_dev"`

	// LearningRate is the SGD step size for biases and factors.
	// Default: 0.005.
	LearningRate float64 `json:"learning_rate"`

	// Regularization is the L2 penalty for biases and factors.
	// Default: 0.02.
	Regularization float64 `json:"regularization"`
}

// EvaluationConfig controls the train/test split.
type EvaluationConfig struct {
	// TestFraction is the share of ratings held out from training.
	// Default: 0.2.
	TestFraction float64 `json:"test_fraction"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the per-source count used when a request leaves K unset.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: HybridWeights{
			Content:       0.4,
			Collaborative: 0.6,
		},
		SVD: SVDParams{
			Factors:        100,
			Epochs:         20,
			InitMean:       0,
			InitStdDev:     0.1,
			LearningRate:   0.005,
			Regularization: 0.02,
		},
		Evaluation: EvaluationConfig{
			TestFraction: 0.2,
		},
		Scale: DefaultRatingScale,
		Limits: LimitsConfig{
			DefaultK: 5,
			MaxK:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if c.SVD.Factors < 1 {
		return fmt.Errorf("svd.factors must be positive, got %d", c.SVD.Factors)
	}
	if c.SVD.Epochs < 1 {
		return fmt.Errorf("svd.epochs must be positive, got %d", c.SVD.Epochs)
	}
	if c.SVD.InitStdDev < 0 {
		return fmt.Errorf("svd.init_std_dev must be non-negative, got %f", c.SVD.InitStdDev)
	}
	if c.SVD.LearningRate <= 0 {
		return fmt.Errorf("svd.learning_rate must be positive, got %f", c.SVD.LearningRate)
	}
	if c.SVD.Regularization < 0 {
		return fmt.Errorf("svd.regularization must be non-negative, got %f", c.SVD.Regularization)
	}

	if c.Evaluation.TestFraction < 0 || c.Evaluation.TestFraction >= 1 {
		return fmt.Errorf("evaluation.test_fraction must be in [0, 1), got %f", c.Evaluation.TestFraction)
	}

	if err := c.Scale.Validate(); err != nil {
		return err
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
