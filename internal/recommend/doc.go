// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

// Package recommend implements the recommendation core: rating matrix
// construction, pairwise Pearson correlation with a minimum-support
// threshold, catalog title resolution, rating-dependent scoring branches,
// and the versioned model store used for atomic hot swaps.
//
// The training path (MatrixBuilder -> CorrelationEngine -> Trainer) runs
// in the background and never blocks serving. The serving path (Scorer,
// Catalog) is read-only against the artifact snapshot taken from the
// ModelStore at request start.
package recommend
