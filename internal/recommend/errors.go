// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import "errors"

var (
	// ErrNotReady indicates no model has been published yet. Callers
	// should surface this as a retryable service-unavailable condition,
	// not as a missing resource.
	ErrNotReady = errors.New("no trained model available")

	// ErrItemNotFound indicates the requested item ID is unknown to the
	// active model and catalog.
	ErrItemNotFound = errors.New("item not found")

	// ErrTrainingInProgress indicates a training run is already active.
	// At most one run executes at a time; concurrent triggers are
	// rejected rather than queued.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrEmptyMatrix indicates the ratings source produced no usable
	// ratings.
	ErrEmptyMatrix = errors.New("rating matrix is empty")

	// ErrTooFewItems indicates fewer than two items survived matrix
	// construction, so no pair can be correlated.
	ErrTooFewItems = errors.New("need at least two items to correlate")
)
