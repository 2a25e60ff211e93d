// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`

	// Timeout is applied to http.Server read and write timeouts.
	Timeout time.Duration `koanf:"timeout"`

	// RequestTimeout bounds the engine call made by each API handler.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// DataConfig locates the MovieLens input files.
type DataConfig struct {
	MoviesPath  string `koanf:"movies_path"`
	RatingsPath string `koanf:"ratings_path"`

	// QueryTimeout bounds each DuckDB query during import.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// RecommendConfig holds engine, model and rebuild settings.
type RecommendConfig struct {
	// Default hybrid weights.
	WeightContent float64 `koanf:"weight_content"`
	WeightCollab  float64 `koanf:"weight_collab"`

	DefaultK int `koanf:"default_k"`
	MaxK     int `koanf:"max_k"`

	// SVD hyper-parameters.
	Factors        int     `koanf:"factors"`
	Epochs         int     `koanf:"epochs"`
	InitMean       float64 `koanf:"init_mean"`
	InitStdDev     float64 `koanf:"init_std_dev"`
	LearningRate   float64 `koanf:"learning_rate"`
	Regularization float64 `koanf:"regularization"`

	// Rating scale used for clipping predictions.
	ScaleMin float64 `koanf:"scale_min"`
	ScaleMax float64 `koanf:"scale_max"`

	// TestFraction is the share of ratings held out for evaluation.
	TestFraction float64 `koanf:"test_fraction"`

	// Seed drives the split permutation and factor initialization.
	Seed int64 `koanf:"seed"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	// RebuildInterval is how often the input fingerprint is re-checked.
	// Zero disables the rebuild service.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`
}

// EngineConfig converts the flat koanf section into a recommend.Config.
//
//nolint:gocritic // hugeParam: value receiver keeps the conversion side-effect free
func (r RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Weights: recommend.HybridWeights{
			Content:       r.WeightContent,
			Collaborative: r.WeightCollab,
		},
		SVD: recommend.SVDParams{
			Factors:        r.Factors,
			Epochs:         r.Epochs,
			InitMean:       r.InitMean,
			InitStdDev:     r.InitStdDev,
			LearningRate:   r.LearningRate,
			Regularization: r.Regularization,
		},
		Evaluation: recommend.EvaluationConfig{
			TestFraction: r.TestFraction,
		},
		Scale: recommend.RatingScale{Min: r.ScaleMin, Max: r.ScaleMax},
		Limits: recommend.LimitsConfig{
			DefaultK: r.DefaultK,
			MaxK:     r.MaxK,
		},
		Cache: recommend.CacheConfig{
			Enabled:    r.CacheEnabled,
			TTL:        r.CacheTTL,
			MaxEntries: r.CacheMaxEntries,
		},
		Seed: r.Seed,
	}
}

// StorageConfig configures the BadgerDB model snapshot store.
type StorageConfig struct {
	// Enabled turns snapshot save/restore on.
	Enabled bool `koanf:"enabled"`

	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory keeps snapshots in memory only (lost on restart).
	InMemory bool `koanf:"in_memory"`

	// KeepVersions is how many snapshots are retained per model.
	KeepVersions int `koanf:"keep_versions"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}
