// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lledoerik/recommender-system/internal/recommend"
)

// ModelTrainer is the training surface the scheduler needs. Defined
// here to keep the service decoupled from the trainer's concrete type.
type ModelTrainer interface {
	Train(ctx context.Context) error
}

// TrainingServiceConfig holds configuration for the training scheduler.
type TrainingServiceConfig struct {
	// TrainOnStartup triggers a training run when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain the model.
	TrainInterval time.Duration

	// TrainTimeout bounds one training run.
	TrainTimeout time.Duration
}

// TrainingService runs periodic model training under supervision. A
// failed run is logged and retried on the next tick; a run already in
// flight (for example one triggered over the API) is not an error.
type TrainingService struct {
	trainer ModelTrainer
	config  TrainingServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewTrainingService creates the training scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(trainer ModelTrainer, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = 24 * time.Hour
	}
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &TrainingService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "training").Logger(),
		name:    "training-scheduler",
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("training scheduler starting")

	if s.config.TrainOnStartup {
		if err := s.train(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup training failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("training scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled training failed")
			}
		}
	}
}

func (s *TrainingService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	err := s.trainer.Train(trainCtx)
	if errors.Is(err, recommend.ErrTrainingInProgress) {
		s.logger.Debug().Msg("skipping scheduled run, training already in progress")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().Dur("duration", time.Since(start)).Msg("scheduled training complete")
	return nil
}

// String returns the service name for logging.
func (s *TrainingService) String() string {
	return s.name
}
