// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ModelReloader checks the artifact directory for a newer version and
// publishes it. Reports whether a swap happened.
type ModelReloader interface {
	CheckAndReload(ctx context.Context) (bool, error)
}

// WatcherService polls the on-disk artifact store so a model trained by
// another process (or left behind before a restart) gets picked up
// without redundant retraining.
type WatcherService struct {
	reloader ModelReloader
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewWatcherService creates the artifact watcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWatcherService(reloader ModelReloader, interval time.Duration, logger zerolog.Logger) *WatcherService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &WatcherService{
		reloader: reloader,
		interval: interval,
		logger:   logger.With().Str("service", "model-watcher").Logger(),
		name:     "model-watcher",
	}
}

// Serve implements suture.Service.
func (s *WatcherService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("model watcher starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model watcher shutting down")
			return ctx.Err()

		case <-ticker.C:
			swapped, err := s.reloader.CheckAndReload(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("model reload check failed")
				continue
			}
			if swapped {
				s.logger.Info().Msg("picked up newer model from disk")
			}
		}
	}
}

// String returns the service name for logging.
func (s *WatcherService) String() string {
	return s.name
}
