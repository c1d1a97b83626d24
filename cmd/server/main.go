// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

// Command server runs the recommendation service.
//
// Startup sequence:
//
//  1. Load configuration (defaults, optional YAML file, environment
//     variables; see internal/config).
//  2. Initialize structured logging.
//  3. Open the artifact store and attempt to reload the latest
//     persisted model, so a restart serves recommendations immediately
//     without retraining.
//  4. Wire the training pipeline (CSV provider, matrix builder,
//     correlation engine, trainer) and the HTTP API.
//  5. Start the supervisor tree: a model layer running the training
//     scheduler and the artifact watcher, and an API layer running the
//     HTTP server. Crashed services are restarted with backoff.
//
// The process shuts down gracefully on SIGINT or SIGTERM: the HTTP
// server drains in-flight requests and any running training is
// canceled.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lledoerik/recommender-system/internal/api"
	"github.com/lledoerik/recommender-system/internal/config"
	"github.com/lledoerik/recommender-system/internal/logging"
	"github.com/lledoerik/recommender-system/internal/recommend"
	"github.com/lledoerik/recommender-system/internal/recommend/dataset"
	"github.com/lledoerik/recommender-system/internal/recommend/storage"
	"github.com/lledoerik/recommender-system/internal/supervisor"
	"github.com/lledoerik/recommender-system/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("ratings", cfg.Data.RatingsPath).
		Str("catalog", cfg.Data.CatalogPath).
		Str("model_dir", cfg.Data.ModelDir).
		Msg("Starting recommender service")

	artifacts, err := storage.NewStore(cfg.Data.ModelDir)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Data.ModelDir).Msg("Failed to open artifact store")
	}

	provider := dataset.NewCSVProvider(cfg.Data.RatingsPath, cfg.Data.CatalogPath)
	models := recommend.NewModelStore()
	builder := recommend.NewMatrixBuilder(cfg.Recommend.RatingScaleMax)
	engine := recommend.NewCorrelationEngine(cfg.Recommend.MinCommonRaters, cfg.Recommend.Workers)
	trainer := recommend.NewTrainer(provider, artifacts, models, builder, engine,
		cfg.Recommend.RatingScaleMax, cfg.Data.KeepVersions)

	// Reload the newest persisted model before accepting traffic. A
	// missing artifact is not an error; the training scheduler will
	// build the first model.
	if loaded, err := trainer.CheckAndReload(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to reload persisted model, starting cold")
	} else if loaded {
		logging.Info().Int("version", models.ActiveVersion()).Msg("Persisted model loaded")
	} else {
		logging.Info().Msg("No persisted model found, starting cold")
	}

	scorer := recommend.NewScorer(recommend.ScoringConfig{
		HighRating:      cfg.Recommend.HighRating,
		LowRating:       cfg.Recommend.LowRating,
		HighCorrelation: cfg.Recommend.HighCorrelation,
		LowCorrelation:  cfg.Recommend.LowCorrelation,
		MinItemRatings:  cfg.Recommend.MinItemRatings,
	})

	handlers := api.NewHandlers(models, trainer, scorer, api.HandlersConfig{
		DefaultLimit: cfg.API.DefaultPageSize,
		MaxLimit:     cfg.API.MaxPageSize,
		TrainTimeout: cfg.Training.Timeout,
	})

	mwConfig := api.DefaultMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitDisabled
	middleware := api.NewMiddleware(mwConfig)

	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	router := api.NewRouter(handlers, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	trainingLogger := logging.WithComponent("training-scheduler")
	tree.AddModelService(services.NewTrainingService(trainer, services.TrainingServiceConfig{
		TrainOnStartup: cfg.Training.OnStartup && models.ActiveVersion() == 0,
		TrainInterval:  cfg.Training.Interval,
		TrainTimeout:   cfg.Training.Timeout,
	}, trainingLogger))

	watcherLogger := logging.WithComponent("model-watcher")
	tree.AddModelService(services.NewWatcherService(trainer, cfg.Training.WatchInterval, watcherLogger))

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Service stopped")
}
