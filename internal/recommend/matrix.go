// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"math"

	"github.com/lledoerik/recommender-system/internal/logging"
)

// BuildStats summarizes a matrix construction pass.
type BuildStats struct {
	// Total is the number of input records seen.
	Total int

	// Skipped counts records dropped for being unrated, malformed, or
	// out of scale.
	Skipped int

	// Deduped counts records that overwrote an earlier rating for the
	// same (user, item) pair.
	Deduped int
}

// MatrixBuilder turns raw rating records into a deduplicated
// RatingMatrix. Duplicate (user, item) pairs resolve last-seen-wins in
// input order, so a rebuilt matrix from the same input is always
// identical.
type MatrixBuilder struct {
	scaleMax float64
}

// NewMatrixBuilder returns a builder that accepts ratings in
// (0, scaleMax].
func NewMatrixBuilder(scaleMax float64) *MatrixBuilder {
	return &MatrixBuilder{scaleMax: scaleMax}
}

// Build consumes records in order and produces the rating matrix.
// Invalid records are skipped and counted, never fatal; validity of one
// record never depends on another.
func (b *MatrixBuilder) Build(records []RatingRecord) (*RatingMatrix, BuildStats) {
	stats := BuildStats{Total: len(records)}
	items := make(map[int]map[int]float64)
	users := make(map[int]struct{})

	for _, r := range records {
		if !b.valid(r) {
			stats.Skipped++
			continue
		}
		vec, ok := items[r.ItemID]
		if !ok {
			vec = make(map[int]float64)
			items[r.ItemID] = vec
		}
		if _, dup := vec[r.UserID]; dup {
			stats.Deduped++
		}
		vec[r.UserID] = r.Rating
		users[r.UserID] = struct{}{}
	}

	if stats.Skipped > 0 || stats.Deduped > 0 {
		logging.Debug().
			Int("total", stats.Total).
			Int("skipped", stats.Skipped).
			Int("deduped", stats.Deduped).
			Msg("Rating matrix built with dropped records")
	}

	return &RatingMatrix{ItemVectors: items, UserCount: len(users)}, stats
}

func (b *MatrixBuilder) valid(r RatingRecord) bool {
	if r.UserID <= 0 || r.ItemID <= 0 {
		return false
	}
	if r.Rating == SentinelNoRating {
		return false
	}
	if math.IsNaN(r.Rating) || math.IsInf(r.Rating, 0) {
		return false
	}
	if r.Rating <= 0 || r.Rating > b.scaleMax {
		return false
	}
	return true
}
