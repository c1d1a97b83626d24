// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"sync/atomic"
	"time"

	"github.com/lledoerik/recommender-system/internal/logging"
	"github.com/lledoerik/recommender-system/internal/metrics"
)

// Model bundles a trained artifact with the catalog it was trained
// alongside. Both are immutable; a request that took a model keeps it
// for its whole lifetime regardless of later publishes.
type Model struct {
	Artifact *Artifact
	Catalog  *Catalog
}

type activeModel struct {
	model    *Model
	loadedAt time.Time
}

// ModelStore holds the active model behind an atomic pointer. Publish
// swaps the reference in one step, so readers see either the old model
// or the new one, never a partial state.
type ModelStore struct {
	active atomic.Pointer[activeModel]
}

// NewModelStore returns an empty store. Until the first publish,
// Active returns ErrNotReady.
func NewModelStore() *ModelStore {
	return &ModelStore{}
}

// Active returns the current model and the time it was published.
// Before the first publish it returns ErrNotReady, which callers must
// keep distinct from a missing-item condition.
func (s *ModelStore) Active() (*Model, time.Time, error) {
	cur := s.active.Load()
	if cur == nil {
		return nil, time.Time{}, ErrNotReady
	}
	return cur.model, cur.loadedAt, nil
}

// ActiveVersion returns the active model version, or 0 when no model
// has been published.
func (s *ModelStore) ActiveVersion() int {
	cur := s.active.Load()
	if cur == nil {
		return 0
	}
	return cur.model.Artifact.Version
}

// Publish installs the model if its version is newer than the active
// one and reports whether the swap happened. Retried on contention so a
// concurrent publish of an older version can never clobber a newer one.
func (s *ModelStore) Publish(m *Model) bool {
	next := &activeModel{model: m, loadedAt: time.Now()}
	for {
		cur := s.active.Load()
		if cur != nil && cur.model.Artifact.Version >= m.Artifact.Version {
			return false
		}
		if s.active.CompareAndSwap(cur, next) {
			metrics.SetActiveModel(m.Artifact.Version, len(m.Artifact.Items), m.Artifact.UserCount)
			logging.Info().
				Int("version", m.Artifact.Version).
				Int("items", len(m.Artifact.Items)).
				Int("users", m.Artifact.UserCount).
				Msg("Model published")
			return true
		}
	}
}
