// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lledoerik/recommender-system/internal/logging"
	"github.com/lledoerik/recommender-system/internal/metrics"
	"github.com/lledoerik/recommender-system/internal/recommend/storage"
)

// artifactName is the family name of correlation model files on disk.
const artifactName = "corr_matrix"

// DataProvider supplies training input. Ratings returns the parsed
// records plus the count of malformed source rows it skipped.
type DataProvider interface {
	Ratings(ctx context.Context) ([]RatingRecord, int, error)
	Catalog(ctx context.Context) ([]CatalogEntry, error)
}

// ModelInfo is the operational snapshot of the serving model.
type ModelInfo struct {
	Version            int       `json:"version"`
	LoadedAt           time.Time `json:"loaded_at"`
	NumItems           int       `json:"num_items"`
	NumUsers           int       `json:"num_users"`
	TrainingInProgress bool      `json:"training_in_progress"`
}

// artifactState is the gob-serializable form of a trained model,
// bundling the correlation artifact with its catalog so one file
// restores a complete serving model.
type artifactState struct {
	Version      int
	BuiltAt      time.Time
	ScaleMax     float64
	UserCount    int
	Items        []int
	Correlations map[int]map[int]float64
	Popularity   map[int]int
	MeanRatings  map[int]float64
	Catalog      []CatalogEntry
}

// Trainer runs full training passes and keeps the model store and the
// on-disk artifact history in sync. At most one training run executes
// at a time; concurrent triggers fail fast with ErrTrainingInProgress
// instead of queueing.
type Trainer struct {
	provider     DataProvider
	artifacts    *storage.Store
	models       *ModelStore
	builder      *MatrixBuilder
	engine       *CorrelationEngine
	keepVersions int
	scaleMax     float64

	training atomic.Bool
	logger   zerolog.Logger
}

// NewTrainer wires a trainer over the given provider, artifact store,
// and model store.
func NewTrainer(provider DataProvider, artifacts *storage.Store, models *ModelStore,
	builder *MatrixBuilder, engine *CorrelationEngine, scaleMax float64, keepVersions int,
) *Trainer {
	return &Trainer{
		provider:     provider,
		artifacts:    artifacts,
		models:       models,
		builder:      builder,
		engine:       engine,
		keepVersions: keepVersions,
		scaleMax:     scaleMax,
		logger:       logging.WithComponent("trainer"),
	}
}

// TrainingInProgress reports whether a run is currently active.
func (t *Trainer) TrainingInProgress() bool { return t.training.Load() }

// Info returns the serving-model snapshot for the model endpoint.
// Version 0 with a zero LoadedAt means no model is active yet.
func (t *Trainer) Info() ModelInfo {
	info := ModelInfo{TrainingInProgress: t.training.Load()}
	model, loadedAt, err := t.models.Active()
	if err != nil {
		return info
	}
	info.Version = model.Artifact.Version
	info.LoadedAt = loadedAt
	info.NumItems = len(model.Artifact.Items)
	info.NumUsers = model.Artifact.UserCount
	return info
}

// Versions lists stored artifact metadata, newest first.
func (t *Trainer) Versions(ctx context.Context) ([]storage.ArtifactMetadata, error) {
	return t.artifacts.List(ctx, artifactName)
}

// Train runs one full training pass: ingest ratings, build the matrix,
// compute correlations, publish the new model, and persist it. A
// failure at any stage leaves the previously active model serving.
func (t *Trainer) Train(ctx context.Context) error {
	if !t.training.CompareAndSwap(false, true) {
		metrics.RecordTrainingRejected()
		return ErrTrainingInProgress
	}
	defer t.training.Store(false)

	start := time.Now()
	err := t.train(ctx, start)
	metrics.RecordTraining(time.Since(start), err)
	if err != nil {
		t.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Training run failed")
		return fmt.Errorf("training run: %w", err)
	}
	return nil
}

func (t *Trainer) train(ctx context.Context, start time.Time) error {
	records, skipped, err := t.provider.Ratings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}

	matrix, stats := t.builder.Build(records)
	metrics.RecordsSkipped.Add(float64(skipped + stats.Skipped))

	artifact, err := t.engine.Build(ctx, matrix)
	if err != nil {
		return err
	}
	artifact.ScaleMax = t.scaleMax
	artifact.BuiltAt = time.Now()

	latest, _ := t.artifacts.LatestVersion(artifactName)
	if active := t.models.ActiveVersion(); active > latest {
		latest = active
	}
	artifact.Version = latest + 1

	entries, err := t.provider.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	entries = enrichCatalog(entries, artifact)
	catalog := NewCatalog(entries)

	model := &Model{Artifact: artifact, Catalog: catalog}
	if !t.models.Publish(model) {
		return fmt.Errorf("publish model v%d: a newer model is already active", artifact.Version)
	}

	meta := storage.ArtifactMetadata{
		TrainedAt:          artifact.BuiltAt,
		RatingCount:        matrix.RatingCount(),
		ItemCount:          len(artifact.Items),
		UserCount:          artifact.UserCount,
		TrainingDurationMS: time.Since(start).Milliseconds(),
	}
	state := artifactState{
		Version:      artifact.Version,
		BuiltAt:      artifact.BuiltAt,
		ScaleMax:     artifact.ScaleMax,
		UserCount:    artifact.UserCount,
		Items:        artifact.Items,
		Correlations: artifact.Correlations,
		Popularity:   artifact.Popularity,
		MeanRatings:  artifact.MeanRatings,
		Catalog:      entries,
	}
	if err := t.artifacts.Save(ctx, artifactName, artifact.Version, state, meta); err != nil {
		// The model is already serving; persistence failure only costs
		// restart durability.
		t.logger.Error().Err(err).Int("version", artifact.Version).Msg("Failed to persist trained model")
		return nil
	}
	if err := t.artifacts.Prune(ctx, artifactName, t.keepVersions); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to prune old model versions")
	}

	t.logger.Info().
		Int("version", artifact.Version).
		Int("items", len(artifact.Items)).
		Int("users", artifact.UserCount).
		Int("ratings", meta.RatingCount).
		Int("skipped", skipped+stats.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("Training run completed")
	return nil
}

// CheckAndReload loads the newest on-disk artifact if it is newer than
// the active model and publishes it. Used at startup and by the model
// watcher to pick up versions trained by another process. Reports
// whether a swap happened.
func (t *Trainer) CheckAndReload(ctx context.Context) (bool, error) {
	latest, ok := t.artifacts.LatestVersion(artifactName)
	if !ok || latest <= t.models.ActiveVersion() {
		return false, nil
	}

	var state artifactState
	if _, err := t.artifacts.Load(ctx, artifactName, latest, &state); err != nil {
		return false, fmt.Errorf("load artifact v%d: %w", latest, err)
	}

	artifact := &Artifact{
		Version:      state.Version,
		BuiltAt:      state.BuiltAt,
		ScaleMax:     state.ScaleMax,
		UserCount:    state.UserCount,
		Items:        state.Items,
		Correlations: state.Correlations,
		Popularity:   state.Popularity,
		MeanRatings:  state.MeanRatings,
	}
	model := &Model{Artifact: artifact, Catalog: NewCatalog(state.Catalog)}
	if !t.models.Publish(model) {
		return false, nil
	}
	t.logger.Info().Int("version", artifact.Version).Msg("Reloaded model from disk")
	return true, nil
}

// enrichCatalog fills per-item aggregates into catalog entries from the
// trained artifact so API responses can show them without a second
// lookup.
func enrichCatalog(entries []CatalogEntry, a *Artifact) []CatalogEntry {
	out := make([]CatalogEntry, len(entries))
	for i, e := range entries {
		if stats, ok := a.Stats(e.ID); ok {
			e.Popularity = stats.Popularity
			e.MeanRating = stats.MeanRating
		}
		out[i] = e
	}
	return out
}
