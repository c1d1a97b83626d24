// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"errors"
	"testing"
)

func modelWithVersion(v int) *Model {
	return &Model{
		Artifact: &Artifact{Version: v, Items: []int{1, 2}, Popularity: map[int]int{1: 10, 2: 20}},
		Catalog:  NewCatalog(nil),
	}
}

func TestModelStoreEmpty(t *testing.T) {
	s := NewModelStore()

	if _, _, err := s.Active(); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady before first publish, got %v", err)
	}
	if v := s.ActiveVersion(); v != 0 {
		t.Errorf("expected version 0 before first publish, got %d", v)
	}
}

func TestModelStorePublishSwap(t *testing.T) {
	s := NewModelStore()

	if !s.Publish(modelWithVersion(1)) {
		t.Fatal("first publish must succeed")
	}

	old, _, err := s.Active()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.Publish(modelWithVersion(2)) {
		t.Fatal("newer version must publish")
	}

	// The reference taken before the swap still points at the old
	// model; new lookups see the new one.
	if old.Artifact.Version != 1 {
		t.Errorf("held reference changed, version = %d", old.Artifact.Version)
	}
	current, _, err := s.Active()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Artifact.Version != 2 {
		t.Errorf("expected active version 2, got %d", current.Artifact.Version)
	}
}

func TestModelStoreRejectsStaleVersion(t *testing.T) {
	s := NewModelStore()
	s.Publish(modelWithVersion(3))

	if s.Publish(modelWithVersion(3)) {
		t.Error("same version must not republish")
	}
	if s.Publish(modelWithVersion(2)) {
		t.Error("older version must not publish")
	}
	if s.ActiveVersion() != 3 {
		t.Errorf("expected version 3 still active, got %d", s.ActiveVersion())
	}
}
