// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/lledoerik/recommender-system/internal/logging"
	"github.com/lledoerik/recommender-system/internal/recommend"
)

// GetModel handles GET /api/v1/model. The snapshot is always served:
// version 0 with training_in_progress true is how a client observes the
// initial cold start.
func (h *Handlers) GetModel(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.trainer.Info())
}

// TrainModel handles POST /api/v1/model/train. Training runs in the
// background; the handler answers 202 as soon as the run is started.
// A run already in flight answers 409, it is never queued.
func (h *Handlers) TrainModel(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.trainer.TrainingInProgress() {
		rw.Conflict("Training is already in progress")
		return
	}

	go func() {
		// Detached from the request context: the run outlives the
		// trigger call.
		ctx := context.Background()
		if h.cfg.TrainTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.cfg.TrainTimeout)
			defer cancel()
		}
		if err := h.trainer.Train(ctx); err != nil && !errors.Is(err, recommend.ErrTrainingInProgress) {
			logging.Error().Err(err).Msg("Triggered training run failed")
		}
	}()

	rw.Accepted(TrainingStartedResponse{Status: "training_started"})
}

// ModelVersions handles GET /api/v1/model/versions, listing the stored
// artifact history newest first.
func (h *Handlers) ModelVersions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	versions, err := h.trainer.Versions(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list model versions")
		rw.InternalError("Failed to list model versions")
		return
	}
	rw.Success(versions)
}
