// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import "time"

// SentinelNoRating marks a row where the user interacted with an item but
// never rated it. Such rows carry no preference signal and are dropped
// during matrix construction.
const SentinelNoRating = -1

// RatingRecord is a single (user, item, rating) observation as parsed
// from the ratings source.
type RatingRecord struct {
	// UserID identifies the rater. Must be positive.
	UserID int

	// ItemID identifies the rated item. Must be positive.
	ItemID int

	// Rating is the observed rating value on the configured scale, or
	// SentinelNoRating when the user left the item unrated.
	Rating float64
}

// RatingMatrix is the deduplicated sparse user-item rating matrix,
// stored item-major so correlation lookups touch one map per item.
type RatingMatrix struct {
	// ItemVectors maps item ID to that item's rating vector keyed by
	// user ID. Each (user, item) cell holds the last valid rating seen
	// for that pair in input order.
	ItemVectors map[int]map[int]float64

	// UserCount is the number of distinct users with at least one
	// retained rating.
	UserCount int
}

// RatingCount returns the total number of retained ratings.
func (m *RatingMatrix) RatingCount() int {
	n := 0
	for _, vec := range m.ItemVectors {
		n += len(vec)
	}
	return n
}

// ItemStats carries the per-item aggregates computed during training and
// consumed by the scoring branches.
type ItemStats struct {
	// Popularity is the number of users who rated the item.
	Popularity int

	// MeanRating is the item's mean rating on the training scale.
	MeanRating float64
}

// Artifact is the immutable output of a training run. All maps are
// read-only after Build returns; serving goroutines share a single
// artifact without locking.
type Artifact struct {
	// Version is the monotonically increasing model version.
	Version int

	// BuiltAt is the wall-clock completion time of the training run.
	BuiltAt time.Time

	// ScaleMax is the maximum of the rating scale the matrix was built
	// on, used to normalize mean ratings during scoring.
	ScaleMax float64

	// UserCount is the number of distinct raters in the source matrix.
	UserCount int

	// Items lists every item ID present in the matrix, ascending.
	Items []int

	// Correlations holds the pairwise Pearson coefficients. Both
	// directions of each retained pair are stored; a missing inner key
	// means the pair had too few common raters or zero variance.
	Correlations map[int]map[int]float64

	// Popularity maps item ID to its rater count.
	Popularity map[int]int

	// MeanRatings maps item ID to its mean rating.
	MeanRatings map[int]float64
}

// Correlation returns the coefficient between two items and whether the
// pair is present in the model. Absence is meaningful: the pair had
// fewer common raters than the support threshold.
func (a *Artifact) Correlation(i, j int) (float64, bool) {
	row, ok := a.Correlations[i]
	if !ok {
		return 0, false
	}
	c, ok := row[j]
	return c, ok
}

// HasItem reports whether the item appeared in the training matrix.
func (a *Artifact) HasItem(id int) bool {
	_, ok := a.Popularity[id]
	return ok
}

// Stats returns the per-item aggregates for a trained item.
func (a *Artifact) Stats(id int) (ItemStats, bool) {
	pop, ok := a.Popularity[id]
	if !ok {
		return ItemStats{}, false
	}
	return ItemStats{Popularity: pop, MeanRating: a.MeanRatings[id]}, true
}
