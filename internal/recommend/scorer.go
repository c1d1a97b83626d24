// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"sort"
)

// ScoringConfig holds the thresholds that select and shape the scoring
// branch for a request.
type ScoringConfig struct {
	// HighRating is the inclusive lower bound classifying a seed rating
	// as positive preference.
	HighRating float64

	// LowRating is the inclusive upper bound classifying a seed rating
	// as negative preference.
	LowRating float64

	// HighCorrelation is the exclusive lower bound a pair must exceed
	// to qualify as similar in the high branch.
	HighCorrelation float64

	// LowCorrelation is the exclusive upper bound a pair must stay
	// under to qualify as dissimilar in the low branch.
	LowCorrelation float64

	// MinItemRatings is the popularity floor; items rated by fewer
	// users are never recommended.
	MinItemRatings int
}

// ScoredItem is one ranked recommendation.
type ScoredItem struct {
	ItemID      int     `json:"item_id"`
	Score       float64 `json:"score"`
	Correlation float64 `json:"correlation"`
	Popularity  int     `json:"popularity"`
	MeanRating  float64 `json:"mean_rating"`
}

// Page is one window of a ranked recommendation list.
type Page struct {
	Items    []ScoredItem
	Total    int
	Offset   int
	Limit    int
	HasMore  bool
	Strategy string
}

// Strategy is one scoring branch. Accepts filters a candidate by its
// correlation to the seed; Score ranks an accepted candidate.
type Strategy interface {
	// Name identifies the branch in responses and metrics.
	Name() string

	// Accepts reports whether a candidate with the given correlation
	// qualifies. present is false when the pair is absent from the
	// model for lack of common raters.
	Accepts(corr float64, present bool) bool

	// Score computes the ranking score for an accepted candidate.
	Score(corr float64, stats ItemStats, scaleMax float64, maxPop int) float64
}

// highStrategy recommends items similar to a liked seed. Only strongly
// correlated pairs qualify, and similarity dominates the score with a
// small quality tiebreaker.
type highStrategy struct{ cfg ScoringConfig }

func (highStrategy) Name() string { return "similar" }

func (s highStrategy) Accepts(corr float64, present bool) bool {
	return present && corr > s.cfg.HighCorrelation
}

func (highStrategy) Score(corr float64, stats ItemStats, scaleMax float64, _ int) float64 {
	return corr*0.9 + (stats.MeanRating/scaleMax)*0.1
}

// lowStrategy steers away from a disliked seed toward broadly liked
// items that do not resemble it. Only pairs with a computed weak
// correlation qualify; an absent pair is unknown, not dissimilar.
type lowStrategy struct{ cfg ScoringConfig }

func (lowStrategy) Name() string { return "alternative" }

func (s lowStrategy) Accepts(corr float64, present bool) bool {
	return present && corr < s.cfg.LowCorrelation
}

func (lowStrategy) Score(_ float64, stats ItemStats, scaleMax float64, maxPop int) float64 {
	popTerm := 0.0
	if maxPop > 0 {
		popTerm = float64(stats.Popularity) / float64(maxPop)
	}
	return (stats.MeanRating/scaleMax)*0.6 + popTerm*0.4
}

// mediumStrategy blends similarity and item quality for a lukewarm
// seed. Any computed correlation qualifies regardless of sign; the
// weight on similarity grows linearly with the seed rating, so the
// blend leans toward quality near the low bound and toward similarity
// near the high bound.
type mediumStrategy struct {
	cfg    ScoringConfig
	rating float64
}

func (mediumStrategy) Name() string { return "blended" }

func (mediumStrategy) Accepts(_ float64, present bool) bool { return present }

func (s mediumStrategy) Score(corr float64, stats ItemStats, scaleMax float64, _ int) float64 {
	w := (s.rating - s.cfg.LowRating) / (s.cfg.HighRating - s.cfg.LowRating)
	corrPos := (corr + 1) / 2
	return w*corrPos + (1-w)*(stats.MeanRating/scaleMax)
}

// SelectStrategy maps a seed rating to its scoring branch. The mapping
// is pure: the same rating always selects the same branch.
func SelectStrategy(cfg ScoringConfig, rating float64) Strategy {
	switch {
	case rating >= cfg.HighRating:
		return highStrategy{cfg: cfg}
	case rating <= cfg.LowRating:
		return lowStrategy{cfg: cfg}
	default:
		return mediumStrategy{cfg: cfg, rating: rating}
	}
}

// SeedRating pairs a seed item with the requester's rating of it, for
// multi-seed requests.
type SeedRating struct {
	ItemID int
	Rating float64
}

// Scorer produces ranked recommendation pages from a trained artifact.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer returns a scorer with the given branch thresholds.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Recommend ranks every qualifying candidate for the seed under the
// branch selected by rating, then returns the [offset, offset+limit)
// window. An empty candidate set is a successful empty page, not an
// error; only an unknown seed fails.
func (s *Scorer) Recommend(a *Artifact, seedID int, rating float64, offset, limit int) (*Page, error) {
	if !a.HasItem(seedID) {
		return nil, ErrItemNotFound
	}
	strategy := SelectStrategy(s.cfg, rating)
	scored := s.scoreCandidates(a, seedID, strategy)
	return paginate(scored, offset, limit, strategy.Name()), nil
}

// RecommendForSeeds ranks candidates against several rated seeds at
// once. Each seed contributes through its own branch; a candidate's
// score is the rating-weighted mean of its per-seed scores, so strong
// opinions move the blend more than lukewarm ones. Seeds themselves are
// never candidates. Every seed must be known to the model.
func (s *Scorer) RecommendForSeeds(a *Artifact, seeds []SeedRating, offset, limit int) (*Page, error) {
	seedSet := make(map[int]struct{}, len(seeds))
	for _, seed := range seeds {
		if !a.HasItem(seed.ItemID) {
			return nil, ErrItemNotFound
		}
		seedSet[seed.ItemID] = struct{}{}
	}

	type accum struct {
		score  float64
		weight float64
		corr   float64
	}
	acc := make(map[int]*accum)

	for _, seed := range seeds {
		strategy := SelectStrategy(s.cfg, seed.Rating)
		weight := seed.Rating / s.cfg.HighRating
		if weight <= 0 {
			weight = 1 / s.cfg.HighRating
		}
		accepted, maxPop := s.acceptCandidates(a, seed.ItemID, strategy, seedSet)
		for _, c := range accepted {
			sc := strategy.Score(c.corr, c.stats, a.ScaleMax, maxPop)
			cell, ok := acc[c.id]
			if !ok {
				cell = &accum{}
				acc[c.id] = cell
			}
			cell.score += sc * weight
			cell.weight += weight
			if c.corr > cell.corr {
				cell.corr = c.corr
			}
		}
	}

	scored := make([]ScoredItem, 0, len(acc))
	for id, cell := range acc {
		stats, _ := a.Stats(id)
		scored = append(scored, ScoredItem{
			ItemID:      id,
			Score:       cell.score / cell.weight,
			Correlation: cell.corr,
			Popularity:  stats.Popularity,
			MeanRating:  stats.MeanRating,
		})
	}
	sortScored(scored)
	return paginate(scored, offset, limit, "multi_seed"), nil
}

// candidate is an accepted item awaiting scoring. Acceptance and
// scoring are separate passes because the low branch normalizes by the
// maximum popularity within the accepted set, which is only known once
// filtering is done.
type candidate struct {
	id    int
	corr  float64
	stats ItemStats
}

func (s *Scorer) acceptCandidates(a *Artifact, seedID int, strategy Strategy, exclude map[int]struct{}) ([]candidate, int) {
	accepted := make([]candidate, 0, len(a.Items))
	maxPop := 0
	for _, cand := range a.Items {
		if cand == seedID {
			continue
		}
		if _, skip := exclude[cand]; skip {
			continue
		}
		stats, _ := a.Stats(cand)
		if stats.Popularity < s.cfg.MinItemRatings {
			continue
		}
		corr, present := a.Correlation(seedID, cand)
		if !strategy.Accepts(corr, present) {
			continue
		}
		accepted = append(accepted, candidate{id: cand, corr: corr, stats: stats})
		if stats.Popularity > maxPop {
			maxPop = stats.Popularity
		}
	}
	return accepted, maxPop
}

func (s *Scorer) scoreCandidates(a *Artifact, seedID int, strategy Strategy) []ScoredItem {
	accepted, maxPop := s.acceptCandidates(a, seedID, strategy, nil)
	scored := make([]ScoredItem, 0, len(accepted))
	for _, c := range accepted {
		scored = append(scored, ScoredItem{
			ItemID:      c.id,
			Score:       strategy.Score(c.corr, c.stats, a.ScaleMax, maxPop),
			Correlation: c.corr,
			Popularity:  c.stats.Popularity,
			MeanRating:  c.stats.MeanRating,
		})
	}
	sortScored(scored)
	return scored
}

// sortScored orders by score descending, popularity descending, then
// item ID ascending so equal scores still rank deterministically.
func sortScored(items []ScoredItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ItemID < b.ItemID
	})
}

func paginate(scored []ScoredItem, offset, limit int, strategy string) *Page {
	total := len(scored)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return &Page{
		Items:    scored[offset:end],
		Total:    total,
		Offset:   offset,
		Limit:    limit,
		HasMore:  end < total,
		Strategy: strategy,
	}
}
