// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// SearchCatalog handles GET /api/v1/catalog/search?q=...&limit=N.
func (h *Handlers) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := r.URL.Query().Get("q")
	if query == "" {
		rw.BadRequest("Query parameter 'q' is required")
		return
	}
	limit := h.clampLimit(queryInt(r, "limit", 0))

	model, _, err := h.models.Active()
	if err != nil {
		rw.ServiceNotReady("No trained model is available yet, retry shortly")
		return
	}

	rw.Success(model.Catalog.Search(query, limit))
}

// ListCatalogItems handles GET /api/v1/catalog/items with offset/limit
// pagination over the full catalog ordered by ID.
func (h *Handlers) ListCatalogItems(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	model, _, err := h.models.Active()
	if err != nil {
		rw.ServiceNotReady("No trained model is available yet, retry shortly")
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := h.clampLimit(queryInt(r, "limit", 0))
	entries := model.Catalog.Entries()
	total := len(entries)

	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	rw.SuccessWithPagination(entries[offset:end], &PaginationMeta{
		Total:   total,
		Count:   end - offset,
		Offset:  offset,
		Limit:   limit,
		HasMore: end < total,
	})
}

// GetCatalogItem handles GET /api/v1/catalog/items/{id}.
func (h *Handlers) GetCatalogItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		rw.BadRequest("Media ID must be a positive integer")
		return
	}

	model, _, err := h.models.Active()
	if err != nil {
		rw.ServiceNotReady("No trained model is available yet, retry shortly")
		return
	}

	entry, ok := model.Catalog.ByID(id)
	if !ok {
		rw.NotFound("Media not found")
		return
	}
	rw.Success(entry)
}

// Health handles GET /health. The service is alive as soon as the
// listener is up; model_loaded tells probes whether it can serve
// recommendations yet.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	info := h.trainer.Info()
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":       "ok",
		"model_loaded": info.Version > 0,
		"model":        info,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
