// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lledoerik/recommender-system/internal/recommend/storage"
)

// fakeProvider serves fixed training data, optionally blocking until
// released so tests can hold a run open.
type fakeProvider struct {
	records []RatingRecord
	entries []CatalogEntry
	err     error
	block   chan struct{}
}

func (p *fakeProvider) Ratings(ctx context.Context) ([]RatingRecord, int, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, 0, p.err
	}
	return p.records, 0, nil
}

func (p *fakeProvider) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return p.entries, nil
}

func trainingRecords() []RatingRecord {
	var records []RatingRecord
	// Five users rating three items, enough overlap for every pair.
	ratings := map[int][]float64{
		1: {2, 4, 6, 8, 10},
		2: {3, 5, 7, 9, 8},
		3: {9, 7, 5, 3, 1},
	}
	for item, vals := range ratings {
		for user, r := range vals {
			records = append(records, RatingRecord{UserID: user + 1, ItemID: item, Rating: r})
		}
	}
	return records
}

func newTestTrainer(t *testing.T, provider DataProvider) (*Trainer, *ModelStore, *storage.Store) {
	t.Helper()
	artifacts, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create artifact store: %v", err)
	}
	models := NewModelStore()
	trainer := NewTrainer(provider, artifacts, models,
		NewMatrixBuilder(10), NewCorrelationEngine(3, 2), 10, 3)
	return trainer, models, artifacts
}

func TestTrainerPublishesAndPersists(t *testing.T) {
	provider := &fakeProvider{
		records: trainingRecords(),
		entries: []CatalogEntry{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}, {ID: 3, Title: "Three"}},
	}
	trainer, models, artifacts := newTestTrainer(t, provider)

	if err := trainer.Train(context.Background()); err != nil {
		t.Fatalf("training failed: %v", err)
	}

	model, _, err := models.Active()
	if err != nil {
		t.Fatalf("expected active model, got %v", err)
	}
	if model.Artifact.Version != 1 {
		t.Errorf("expected version 1, got %d", model.Artifact.Version)
	}
	if model.Catalog.Len() != 3 {
		t.Errorf("expected 3 catalog entries, got %d", model.Catalog.Len())
	}
	// Catalog entries carry training aggregates.
	if e, _ := model.Catalog.ByID(1); e.Popularity != 5 {
		t.Errorf("expected enriched popularity 5, got %d", e.Popularity)
	}

	if v, ok := artifacts.LatestVersion("corr_matrix"); !ok || v != 1 {
		t.Errorf("expected stored artifact v1, got v%d (present=%v)", v, ok)
	}

	// A second run bumps the version.
	if err := trainer.Train(context.Background()); err != nil {
		t.Fatalf("second training failed: %v", err)
	}
	if models.ActiveVersion() != 2 {
		t.Errorf("expected version 2 after retrain, got %d", models.ActiveVersion())
	}
}

func TestTrainerRejectsConcurrentRuns(t *testing.T) {
	provider := &fakeProvider{
		records: trainingRecords(),
		entries: []CatalogEntry{{ID: 1, Title: "One"}},
		block:   make(chan struct{}),
	}
	trainer, _, _ := newTestTrainer(t, provider)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = trainer.Train(context.Background())
	}()

	// Wait for the first run to take the training flag.
	deadline := time.After(2 * time.Second)
	for !trainer.TrainingInProgress() {
		select {
		case <-deadline:
			t.Fatal("first training run never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := trainer.Train(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("expected ErrTrainingInProgress, got %v", err)
	}

	close(provider.block)
	wg.Wait()

	if trainer.TrainingInProgress() {
		t.Error("training flag must clear after the run completes")
	}
}

func TestTrainerFailureKeepsActiveModel(t *testing.T) {
	good := &fakeProvider{
		records: trainingRecords(),
		entries: []CatalogEntry{{ID: 1, Title: "One"}},
	}
	trainer, models, artifacts := newTestTrainer(t, good)
	if err := trainer.Train(context.Background()); err != nil {
		t.Fatalf("seed training failed: %v", err)
	}

	bad := &fakeProvider{err: errors.New("source unavailable")}
	failing := NewTrainer(bad, artifacts, models,
		NewMatrixBuilder(10), NewCorrelationEngine(3, 2), 10, 3)

	if err := failing.Train(context.Background()); err == nil {
		t.Fatal("expected training failure")
	}
	if models.ActiveVersion() != 1 {
		t.Errorf("failed run must not disturb the active model, version = %d", models.ActiveVersion())
	}
	if failing.TrainingInProgress() {
		t.Error("training flag must clear after a failed run")
	}
}

func TestTrainerEmptyInputFails(t *testing.T) {
	trainer, models, _ := newTestTrainer(t, &fakeProvider{})

	err := trainer.Train(context.Background())
	if !errors.Is(err, ErrEmptyMatrix) {
		t.Errorf("expected ErrEmptyMatrix, got %v", err)
	}
	if _, _, err := models.Active(); !errors.Is(err, ErrNotReady) {
		t.Error("failed first run must leave the store empty")
	}
}

func TestTrainerInfo(t *testing.T) {
	provider := &fakeProvider{
		records: trainingRecords(),
		entries: []CatalogEntry{{ID: 1, Title: "One"}},
	}
	trainer, _, _ := newTestTrainer(t, provider)

	info := trainer.Info()
	if info.Version != 0 || info.TrainingInProgress {
		t.Errorf("expected empty info before training, got %+v", info)
	}

	if err := trainer.Train(context.Background()); err != nil {
		t.Fatalf("training failed: %v", err)
	}

	info = trainer.Info()
	if info.Version != 1 || info.NumItems != 3 || info.NumUsers != 5 {
		t.Errorf("unexpected info after training: %+v", info)
	}
	if info.LoadedAt.IsZero() {
		t.Error("expected loaded_at to be set")
	}
}

func TestTrainerCheckAndReload(t *testing.T) {
	provider := &fakeProvider{
		records: trainingRecords(),
		entries: []CatalogEntry{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}},
	}

	dir := t.TempDir()
	writerStore, err := storage.NewStore(dir)
	if err != nil {
		t.Fatalf("create artifact store: %v", err)
	}
	writerModels := NewModelStore()
	writer := NewTrainer(provider, writerStore, writerModels,
		NewMatrixBuilder(10), NewCorrelationEngine(3, 2), 10, 3)
	if err := writer.Train(context.Background()); err != nil {
		t.Fatalf("training failed: %v", err)
	}

	// A second process over the same directory picks the artifact up.
	readerStore, err := storage.NewStore(dir)
	if err != nil {
		t.Fatalf("reopen artifact store: %v", err)
	}
	readerModels := NewModelStore()
	reader := NewTrainer(provider, readerStore, readerModels,
		NewMatrixBuilder(10), NewCorrelationEngine(3, 2), 10, 3)

	swapped, err := reader.CheckAndReload(context.Background())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !swapped {
		t.Fatal("expected reload to publish the stored model")
	}
	model, _, err := readerModels.Active()
	if err != nil {
		t.Fatalf("expected active model after reload, got %v", err)
	}
	if model.Artifact.Version != 1 || model.Catalog.Len() != 2 {
		t.Errorf("reloaded model mismatch: v%d, %d catalog entries",
			model.Artifact.Version, model.Catalog.Len())
	}

	// Nothing newer on disk: no swap.
	swapped, err = reader.CheckAndReload(context.Background())
	if err != nil {
		t.Fatalf("second reload failed: %v", err)
	}
	if swapped {
		t.Error("reload must be a no-op when the active model is current")
	}
}
