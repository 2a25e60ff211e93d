// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"math"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("hybrid weights", func(t *testing.T) {
		if cfg.Weights.Content != 0.4 || cfg.Weights.Collaborative != 0.6 {
			t.Errorf("Weights = %+v, want content 0.4 collaborative 0.6", cfg.Weights)
		}
	})

	t.Run("SVD hyper-parameters", func(t *testing.T) {
		want := SVDParams{
			Factors:        100,
			Epochs:         20,
			InitMean:       0,
			InitStdDev:     0.1,
			LearningRate:   0.005,
			Regularization: 0.02,
		}
		if cfg.SVD != want {
			t.Errorf("SVD = %+v, want %+v", cfg.SVD, want)
		}
	})

	t.Run("holdout fraction", func(t *testing.T) {
		if cfg.Evaluation.TestFraction != 0.2 {
			t.Errorf("Evaluation.TestFraction = %v, want 0.2", cfg.Evaluation.TestFraction)
		}
	})

	t.Run("limits", func(t *testing.T) {
		if cfg.Limits.DefaultK != 5 {
			t.Errorf("Limits.DefaultK = %d, want 5", cfg.Limits.DefaultK)
		}
		if cfg.Limits.MaxK < cfg.Limits.DefaultK {
			t.Errorf("Limits.MaxK = %d, want >= DefaultK (%d)", cfg.Limits.MaxK, cfg.Limits.DefaultK)
		}
	})

	t.Run("seed is set for determinism", func(t *testing.T) {
		if cfg.Seed != 42 {
			t.Errorf("Seed = %d, want 42", cfg.Seed)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{
			name:      "valid default config",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "weights need not sum to one",
			modify:    func(c *Config) { c.Weights = HybridWeights{Content: 2, Collaborative: 3} },
			wantError: false,
		},
		{
			name:      "zero weights allowed",
			modify:    func(c *Config) { c.Weights = HybridWeights{} },
			wantError: false,
		},
		{
			name:      "negative content weight",
			modify:    func(c *Config) { c.Weights.Content = -0.1 },
			wantError: true,
		},
		{
			name:      "NaN collaborative weight",
			modify:    func(c *Config) { c.Weights.Collaborative = math.NaN() },
			wantError: true,
		},
		{
			name:      "zero factors",
			modify:    func(c *Config) { c.SVD.Factors = 0 },
			wantError: true,
		},
		{
			name:      "zero epochs",
			modify:    func(c *Config) { c.SVD.Epochs = 0 },
			wantError: true,
		},
		{
			name:      "zero learning rate",
			modify:    func(c *Config) { c.SVD.LearningRate = 0 },
			wantError: true,
		},
		{
			name:      "negative regularization",
			modify:    func(c *Config) { c.SVD.Regularization = -0.01 },
			wantError: true,
		},
		{
			name:      "test fraction of one",
			modify:    func(c *Config) { c.Evaluation.TestFraction = 1 },
			wantError: true,
		},
		{
			name:      "inverted scale",
			modify:    func(c *Config) { c.Scale = RatingScale{Min: 5, Max: 1} },
			wantError: true,
		},
		{
			name:      "MaxK less than DefaultK",
			modify:    func(c *Config) { c.Limits.MaxK = 5; c.Limits.DefaultK = 10 },
			wantError: true,
		},
		{
			name:      "zero cache TTL while enabled",
			modify:    func(c *Config) { c.Cache.TTL = 0 },
			wantError: true,
		},
		{
			name:      "zero cache TTL while disabled",
			modify:    func(c *Config) { c.Cache.Enabled = false; c.Cache.TTL = 0 },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.Weights.Content = 0.9
	clone.Cache.TTL = time.Hour
	clone.SVD.Factors = 7

	if original.Weights.Content != 0.4 {
		t.Error("modifying clone affected original weights")
	}
	if original.Cache.TTL != 5*time.Minute {
		t.Error("modifying clone affected original cache TTL")
	}
	if original.SVD.Factors != 100 {
		t.Error("modifying clone affected original SVD params")
	}
}
