// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type testState struct {
	Items        []int
	Correlations map[int]map[int]float64
}

func sampleState() testState {
	return testState{
		Items: []int{1, 2, 3},
		Correlations: map[int]map[int]float64{
			1: {2: 0.8, 3: -0.4},
			2: {1: 0.8},
			3: {1: -0.4},
		},
	}
}

func TestStoreSaveLoadRoundtrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	state := sampleState()
	meta := ArtifactMetadata{
		TrainedAt:   time.Now(),
		RatingCount: 500,
		ItemCount:   3,
		UserCount:   42,
	}
	if err := s.Save(ctx, "corr_matrix", 1, state, meta); err != nil {
		t.Fatalf("save: %v", err)
	}

	var loaded testState
	got, err := s.Load(ctx, "corr_matrix", 1, &loaded)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, state) {
		t.Error("loaded state differs from saved state")
	}
	if got.Name != "corr_matrix" || got.Version != 1 {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.Checksum == "" || got.SizeBytes == 0 {
		t.Errorf("expected checksum and size to be populated: %+v", got)
	}
	if got.UserCount != 42 || got.RatingCount != 500 {
		t.Errorf("caller metadata lost: %+v", got)
	}
}

func TestStoreLoadLatestVersion(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		state := testState{Items: []int{v}}
		if err := s.Save(ctx, "corr_matrix", v, state, ArtifactMetadata{}); err != nil {
			t.Fatalf("save v%d: %v", v, err)
		}
	}

	if v, ok := s.LatestVersion("corr_matrix"); !ok || v != 3 {
		t.Errorf("expected latest version 3, got %d (present=%v)", v, ok)
	}

	// Version 0 loads the newest.
	var loaded testState
	meta, err := s.Load(ctx, "corr_matrix", 0, &loaded)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if meta.Version != 3 || len(loaded.Items) != 1 || loaded.Items[0] != 3 {
		t.Errorf("expected v3 payload, got meta %+v items %v", meta, loaded.Items)
	}
}

func TestStoreRediscoversOnOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := first.Save(ctx, "corr_matrix", 2, sampleState(), ArtifactMetadata{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if v, ok := reopened.LatestVersion("corr_matrix"); !ok || v != 2 {
		t.Errorf("expected rescanned version 2, got %d (present=%v)", v, ok)
	}
}

func TestStoreCorruptionDetected(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := s.Save(ctx, "corr_matrix", 1, sampleState(), ArtifactMetadata{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Truncate the file to corrupt it.
	path := filepath.Join(dir, "corr_matrix_v1.gob.gz")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat artifact: %v", err)
	}
	if err := os.Truncate(path, info.Size()/2); err != nil {
		t.Fatalf("truncate artifact: %v", err)
	}

	var loaded testState
	if _, err := s.Load(ctx, "corr_matrix", 1, &loaded); err == nil {
		t.Error("expected load of corrupted artifact to fail")
	}
}

func TestStorePrune(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	for v := 1; v <= 5; v++ {
		if err := s.Save(ctx, "corr_matrix", v, sampleState(), ArtifactMetadata{}); err != nil {
			t.Fatalf("save v%d: %v", v, err)
		}
	}
	if err := s.Prune(ctx, "corr_matrix", 2); err != nil {
		t.Fatalf("prune: %v", err)
	}

	metas, err := s.List(ctx, "corr_matrix")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 versions after prune, got %d", len(metas))
	}
	if metas[0].Version != 5 || metas[1].Version != 4 {
		t.Errorf("expected versions [5, 4], got [%d, %d]", metas[0].Version, metas[1].Version)
	}
}

func TestStoreDelete(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	for v := 1; v <= 2; v++ {
		if err := s.Save(ctx, "corr_matrix", v, sampleState(), ArtifactMetadata{}); err != nil {
			t.Fatalf("save v%d: %v", v, err)
		}
	}

	if err := s.Delete(ctx, "corr_matrix", 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v, ok := s.LatestVersion("corr_matrix"); !ok || v != 1 {
		t.Errorf("expected version tracking to fall back to 1, got %d (present=%v)", v, ok)
	}

	if err := s.Delete(ctx, "corr_matrix", 1); err != nil {
		t.Fatalf("delete last: %v", err)
	}
	if _, ok := s.LatestVersion("corr_matrix"); ok {
		t.Error("expected no versions after deleting everything")
	}
}

func TestParseArtifactFilename(t *testing.T) {
	tests := []struct {
		filename string
		name     string
		version  int
		ok       bool
	}{
		{"corr_matrix_v1.gob.gz", "corr_matrix", 1, true},
		{"corr_matrix_v12.gob.gz", "corr_matrix", 12, true},
		{"model_v3.gob.gz", "model", 3, true},
		{"corr_matrix.gob.gz", "", 0, false},
		{"corr_matrix_v1.gob", "", 0, false},
		{"corr_matrix_vX.gob.gz", "", 0, false},
		{"readme.txt", "", 0, false},
		{"_v1.gob.gz", "", 0, false},
	}
	for _, tt := range tests {
		name, version, ok := parseArtifactFilename(tt.filename)
		if name != tt.name || version != tt.version || ok != tt.ok {
			t.Errorf("parse(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.filename, name, version, ok, tt.name, tt.version, tt.ok)
		}
	}
}
