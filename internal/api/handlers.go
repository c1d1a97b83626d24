// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package api

import (
	"context"
	"time"

	"github.com/lledoerik/recommender-system/internal/cache"
	"github.com/lledoerik/recommender-system/internal/recommend"
	"github.com/lledoerik/recommender-system/internal/recommend/storage"
)

// ModelProvider supplies the active serving model. Defined here so
// handlers depend on behavior, not on the concrete store.
type ModelProvider interface {
	Active() (*recommend.Model, time.Time, error)
}

// TrainingService is the training surface the model endpoints need.
type TrainingService interface {
	Train(ctx context.Context) error
	TrainingInProgress() bool
	Info() recommend.ModelInfo
	Versions(ctx context.Context) ([]storage.ArtifactMetadata, error)
}

// HandlersConfig carries the request-shaping defaults for the API.
type HandlersConfig struct {
	// DefaultLimit is the page size when the request omits one.
	DefaultLimit int

	// MaxLimit caps the requested page size.
	MaxLimit int

	// DefaultSeedRating is assumed when an ID-based request omits the
	// rating. Top of the request scale: an unqualified "more like this"
	// is treated as a liked seed.
	DefaultSeedRating float64

	// MaxAmbiguousMatches caps the candidate list in a 300 response.
	MaxAmbiguousMatches int

	// TrainTimeout bounds a triggered background training run.
	TrainTimeout time.Duration

	// PageCacheSize is the maximum number of memoized recommendation
	// pages. Zero selects the default.
	PageCacheSize int

	// PageCacheTTL bounds how long a memoized page may be served.
	PageCacheTTL time.Duration
}

// DefaultHandlersConfig returns the standard request-shaping defaults.
func DefaultHandlersConfig() HandlersConfig {
	return HandlersConfig{
		DefaultLimit:        10,
		MaxLimit:            100,
		DefaultSeedRating:   5,
		MaxAmbiguousMatches: 10,
		TrainTimeout:        30 * time.Minute,
		PageCacheSize:       1024,
		PageCacheTTL:        5 * time.Minute,
	}
}

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	models  ModelProvider
	trainer TrainingService
	scorer  *recommend.Scorer
	cfg     HandlersConfig

	// pages memoizes computed recommendation pages. Keys embed the
	// model version, so entries for a superseded model simply stop
	// being hit and age out via the TTL.
	pages *cache.LRU[*recommend.Page]
}

// NewHandlers creates the handler set.
func NewHandlers(models ModelProvider, trainer TrainingService, scorer *recommend.Scorer, cfg HandlersConfig) *Handlers {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.DefaultSeedRating <= 0 {
		cfg.DefaultSeedRating = 5
	}
	if cfg.MaxAmbiguousMatches <= 0 {
		cfg.MaxAmbiguousMatches = 10
	}
	if cfg.PageCacheSize <= 0 {
		cfg.PageCacheSize = 1024
	}
	if cfg.PageCacheTTL <= 0 {
		cfg.PageCacheTTL = 5 * time.Minute
	}
	return &Handlers{
		models:  models,
		trainer: trainer,
		scorer:  scorer,
		cfg:     cfg,
		pages:   cache.New[*recommend.Page](cfg.PageCacheSize, cfg.PageCacheTTL),
	}
}

// clampLimit applies the default and maximum page size.
func (h *Handlers) clampLimit(limit int) int {
	if limit <= 0 {
		return h.cfg.DefaultLimit
	}
	if limit > h.cfg.MaxLimit {
		return h.cfg.MaxLimit
	}
	return limit
}
