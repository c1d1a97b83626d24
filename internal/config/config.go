// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

// Package config provides layered configuration loading via Koanf v2.
//
// Precedence, highest first: environment variables, YAML config file,
// built-in defaults. See koanf.go for the environment variable mapping.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// Host is the HTTP listen address.
	Host string `koanf:"host"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout is the graceful shutdown deadline.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Empty disables cross-origin access.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the number of requests allowed per rate limit window.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window duration.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	// DefaultPageSize is used when a request omits the limit parameter.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps the limit parameter.
	MaxPageSize int `koanf:"max_page_size"`
}

// DataConfig holds data source and artifact storage settings.
type DataConfig struct {
	// RatingsPath is the CSV file with user_id,item_id,rating rows.
	RatingsPath string `koanf:"ratings_path"`

	// CatalogPath is the CSV file with item metadata.
	CatalogPath string `koanf:"catalog_path"`

	// ModelDir is the directory for persisted model artifacts.
	ModelDir string `koanf:"model_dir"`

	// KeepVersions is how many persisted artifact versions to retain.
	KeepVersions int `koanf:"keep_versions"`
}

// RecommendConfig holds the scoring and correlation parameters.
type RecommendConfig struct {
	// RatingScaleMax is the maximum value of the rating scale (e.g. 10).
	RatingScaleMax float64 `koanf:"rating_scale_max"`

	// MinCommonRaters is the minimum shared raters required for a
	// correlation entry to exist.
	MinCommonRaters int `koanf:"min_common_raters"`

	// MinItemRatings is the minimum total ratings an item needs to be
	// eligible as a recommendation candidate.
	MinItemRatings int `koanf:"min_item_ratings"`

	// HighRating is the inclusive lower bound of the liked branch.
	HighRating float64 `koanf:"high_rating"`

	// LowRating is the inclusive upper bound of the disliked branch.
	LowRating float64 `koanf:"low_rating"`

	// HighCorrelation is the correlation cutoff for the liked branch.
	HighCorrelation float64 `koanf:"high_correlation"`

	// LowCorrelation is the correlation cutoff for the disliked branch.
	LowCorrelation float64 `koanf:"low_correlation"`

	// Workers is the number of goroutines used for pairwise correlation.
	// 0 means runtime.NumCPU().
	Workers int `koanf:"workers"`
}

// TrainingConfig holds the background training schedule.
type TrainingConfig struct {
	// Interval is how often to retrain. 0 disables scheduled retraining.
	Interval time.Duration `koanf:"interval"`

	// OnStartup triggers a training run when the service starts and no
	// persisted model exists.
	OnStartup bool `koanf:"on_startup"`

	// Timeout bounds a single training run.
	Timeout time.Duration `koanf:"timeout"`

	// WatchInterval is how often the model watcher polls the artifact
	// store for a newer persisted version.
	WatchInterval time.Duration `koanf:"watch_interval"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads configuration from defaults, an optional config file and
// environment variables.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Data.ModelDir == "" {
		return fmt.Errorf("data.model_dir must not be empty")
	}
	if c.Data.KeepVersions < 1 {
		return fmt.Errorf("data.keep_versions must be at least 1, got %d", c.Data.KeepVersions)
	}
	if c.Recommend.RatingScaleMax <= 0 {
		return fmt.Errorf("recommend.rating_scale_max must be positive, got %g", c.Recommend.RatingScaleMax)
	}
	if c.Recommend.MinCommonRaters < 1 {
		return fmt.Errorf("recommend.min_common_raters must be at least 1, got %d", c.Recommend.MinCommonRaters)
	}
	if c.Recommend.MinItemRatings < 1 {
		return fmt.Errorf("recommend.min_item_ratings must be at least 1, got %d", c.Recommend.MinItemRatings)
	}
	if c.Recommend.LowRating >= c.Recommend.HighRating {
		return fmt.Errorf("recommend.low_rating (%g) must be below recommend.high_rating (%g)",
			c.Recommend.LowRating, c.Recommend.HighRating)
	}
	if c.Recommend.HighRating > c.Recommend.RatingScaleMax {
		return fmt.Errorf("recommend.high_rating (%g) exceeds rating scale max (%g)",
			c.Recommend.HighRating, c.Recommend.RatingScaleMax)
	}
	if c.Recommend.Workers < 0 {
		return fmt.Errorf("recommend.workers must not be negative, got %d", c.Recommend.Workers)
	}
	return nil
}
