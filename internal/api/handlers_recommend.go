// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lledoerik/recommender-system/internal/metrics"
	"github.com/lledoerik/recommender-system/internal/recommend"
)

// Recommendations handles POST /api/v1/recommendations.
//
// The seed is selected by media_id, title, or seeds. media_id takes
// precedence over title when both are present; seeds cannot be combined
// with either. A title that matches several items returns 300 Multiple
// Choices with the candidates so the client can retry by ID. An unknown
// seed is 404; a request before the first model publish is 503 with a
// retryable code.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	start := time.Now()

	var req RecommendationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if len(req.Seeds) > 0 && (req.MediaID > 0 || req.Title != "") {
		rw.BadRequest("seeds cannot be combined with media_id or title")
		return
	}
	if len(req.Seeds) == 0 && req.MediaID <= 0 && req.Title == "" {
		rw.BadRequest("One of media_id, title, or seeds must be provided")
		return
	}
	if req.MediaID > 0 {
		// An explicit ID wins over a free-text title.
		req.Title = ""
	}

	model, _, err := h.models.Active()
	if err != nil {
		rw.ServiceNotReady("No trained model is available yet, retry shortly")
		return
	}

	limit := h.clampLimit(req.Limit)

	if len(req.Seeds) > 0 {
		h.recommendForSeeds(rw, model, &req, limit, start)
		return
	}

	seedID := req.MediaID
	rating := h.cfg.DefaultSeedRating
	var seedEntry *recommend.CatalogEntry

	if req.Title != "" {
		// Title requests carry no implicit opinion, so the rating is
		// mandatory.
		if req.Rating == nil {
			rw.BadRequest("rating is required when requesting by title")
			return
		}
		matches := model.Catalog.Resolve(req.Title)
		switch len(matches) {
		case 0:
			rw.NotFound("No media matched the given title")
			return
		case 1:
			seedID = matches[0].ID
		default:
			metrics.AmbiguousResolutions.Inc()
			if len(matches) > h.cfg.MaxAmbiguousMatches {
				matches = matches[:h.cfg.MaxAmbiguousMatches]
			}
			rw.MultipleChoices("Title matched multiple media, retry with a media_id",
				AmbiguousMatches{Query: req.Title, Matches: matches})
			return
		}
	}
	if req.Rating != nil {
		rating = *req.Rating
	}

	cacheKey := fmt.Sprintf("v%d:s%d:r%g:o%d:l%d",
		model.Artifact.Version, seedID, rating, req.Offset, limit)
	page, ok := h.pages.Get(cacheKey)
	if !ok {
		var err error
		page, err = h.scorer.Recommend(model.Artifact, seedID, rating, req.Offset, limit)
		if err != nil {
			if errors.Is(err, recommend.ErrItemNotFound) {
				rw.NotFound("Media not found in the trained model")
				return
			}
			rw.InternalError("Failed to compute recommendations")
			return
		}
		h.pages.Set(cacheKey, page)
	}

	if entry, ok := model.Catalog.ByID(seedID); ok {
		seedEntry = &entry
	}
	metrics.RecordRecommendation(page.Strategy, time.Since(start))
	rw.SuccessWithPagination(RecommendationResponse{
		Seed:     seedEntry,
		Strategy: page.Strategy,
		Items:    enrichItems(page.Items, model.Catalog),
	}, paginationMeta(page))
}

func (h *Handlers) recommendForSeeds(rw *ResponseWriter, model *recommend.Model, req *RecommendationRequest, limit int, start time.Time) {
	seeds := make([]recommend.SeedRating, len(req.Seeds))
	for i, s := range req.Seeds {
		seeds[i] = recommend.SeedRating{ItemID: s.MediaID, Rating: s.Rating}
	}

	page, err := h.scorer.RecommendForSeeds(model.Artifact, seeds, req.Offset, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrItemNotFound) {
			rw.NotFound("A seed media was not found in the trained model")
			return
		}
		rw.InternalError("Failed to compute recommendations")
		return
	}

	metrics.RecordRecommendation(page.Strategy, time.Since(start))
	rw.SuccessWithPagination(RecommendationResponse{
		Strategy: page.Strategy,
		Items:    enrichItems(page.Items, model.Catalog),
	}, paginationMeta(page))
}

// enrichItems joins scored items with catalog metadata. Items missing
// from the catalog keep their ID and scores; metadata is best effort.
func enrichItems(scored []recommend.ScoredItem, catalog *recommend.Catalog) []RecommendationItem {
	items := make([]RecommendationItem, len(scored))
	for i, s := range scored {
		item := RecommendationItem{
			MediaID:     s.ItemID,
			Score:       s.Score,
			Correlation: s.Correlation,
			Popularity:  s.Popularity,
			MeanRating:  s.MeanRating,
		}
		if entry, ok := catalog.ByID(s.ItemID); ok {
			item.Title = entry.Title
			item.Genre = entry.Genre
			item.MediaType = entry.MediaType
		}
		items[i] = item
	}
	return items
}

func paginationMeta(page *recommend.Page) *PaginationMeta {
	return &PaginationMeta{
		Total:   page.Total,
		Count:   len(page.Items),
		Offset:  page.Offset,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}
}
