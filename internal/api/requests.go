// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/lledoerik/recommender-system/internal/recommend"
	"github.com/lledoerik/recommender-system/internal/validation"
)

// RecommendationRequest is the body of POST /api/v1/recommendations.
// Exactly one of MediaID, Title, or Seeds selects the seed; Rating is
// the requester's opinion of the seed on the 1-5 scale and picks the
// scoring branch. Rating is required with Title, defaults to the top of
// the scale with MediaID, and is carried per seed in Seeds.
type RecommendationRequest struct {
	// MediaID is the seed item ID.
	MediaID int `json:"media_id,omitempty" validate:"omitempty,gt=0"`

	// Title is a free-text seed title to resolve.
	Title string `json:"title,omitempty" validate:"omitempty,min=1,max=500"`

	// Rating is the requester's rating of the seed.
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,gt=0,lte=5"`

	// Seeds lists several rated seeds for a blended request.
	Seeds []SeedRequest `json:"seeds,omitempty" validate:"omitempty,max=20,dive"`

	// Offset is the pagination offset into the ranked list.
	Offset int `json:"offset,omitempty" validate:"omitempty,gte=0"`

	// Limit is the page size.
	Limit int `json:"limit,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// SeedRequest is one rated seed in a multi-seed request.
type SeedRequest struct {
	MediaID int     `json:"media_id" validate:"required,gt=0"`
	Rating  float64 `json:"rating" validate:"required,gt=0,lte=5"`
}

// RecommendationItem is one ranked entry in a recommendation response,
// the scored result enriched with catalog metadata when available.
type RecommendationItem struct {
	MediaID     int     `json:"media_id"`
	Title       string  `json:"title,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	MediaType   string  `json:"media_type,omitempty"`
	Score       float64 `json:"score"`
	Correlation float64 `json:"correlation"`
	Popularity  int     `json:"popularity"`
	MeanRating  float64 `json:"mean_rating"`
}

// RecommendationResponse is the data payload of a recommendation page.
// The seed is serialized as "source": the item the recommendations are
// derived from.
type RecommendationResponse struct {
	Seed     *recommend.CatalogEntry `json:"source,omitempty"`
	Strategy string                  `json:"strategy"`
	Items    []RecommendationItem    `json:"recommendations"`
}

// AmbiguousMatches is the 300 Multiple Choices payload listing the
// candidate items a free-text query resolved to.
type AmbiguousMatches struct {
	Query   string                   `json:"query"`
	Matches []recommend.CatalogEntry `json:"matches"`
}

// TrainingStartedResponse is the 202 payload of a train trigger.
type TrainingStartedResponse struct {
	Status string `json:"status"`
}

// decodeAndValidate decodes a JSON request body into target and runs
// struct validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	rw := NewResponseWriter(w, r)

	if r.Body == nil {
		rw.BadRequest("Request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		rw.BadRequest("Invalid JSON in request body")
		return false
	}
	if verr := validation.ValidateStruct(target); verr != nil {
		rw.ValidationError("Request validation failed", verr.ToAPIError())
		return false
	}
	return true
}
