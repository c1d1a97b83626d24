// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lledoerik/recommender-system/internal/logging"
	"github.com/lledoerik/recommender-system/internal/metrics"
)

// CorrelationEngine computes the pairwise item-item Pearson correlation
// model from a rating matrix. Computation is chunked across a worker
// pool; each worker owns a contiguous range of anchor items and covers
// pairs (i, j) with j > i, so every pair is computed exactly once and
// stored in both directions.
type CorrelationEngine struct {
	minCommonRaters int
	workers         int
	logger          zerolog.Logger
}

// NewCorrelationEngine returns an engine with the given support
// threshold. workers <= 0 selects GOMAXPROCS.
func NewCorrelationEngine(minCommonRaters, workers int) *CorrelationEngine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CorrelationEngine{
		minCommonRaters: minCommonRaters,
		workers:         workers,
		logger:          logging.WithComponent("correlation"),
	}
}

// Build computes the correlation model and per-item aggregates for the
// given matrix. A pair with fewer than the configured number of common
// raters is absent from the result, not stored as zero. The only fatal
// inputs are an empty matrix and a single-item matrix.
func (e *CorrelationEngine) Build(ctx context.Context, m *RatingMatrix) (*Artifact, error) {
	if m == nil || len(m.ItemVectors) == 0 {
		return nil, ErrEmptyMatrix
	}
	if len(m.ItemVectors) < 2 {
		return nil, ErrTooFewItems
	}

	items := make([]int, 0, len(m.ItemVectors))
	for id := range m.ItemVectors {
		items = append(items, id)
	}
	sort.Ints(items)

	artifact := &Artifact{
		ScaleMax:     0, // set by the trainer
		UserCount:    m.UserCount,
		Items:        items,
		Correlations: make(map[int]map[int]float64, len(items)),
		Popularity:   make(map[int]int, len(items)),
		MeanRatings:  make(map[int]float64, len(items)),
	}
	for _, id := range items {
		vec := m.ItemVectors[id]
		artifact.Popularity[id] = len(vec)
		sum := 0.0
		for _, r := range vec {
			sum += r
		}
		artifact.MeanRatings[id] = sum / float64(len(vec))
	}

	start := time.Now()
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		computed int64
	)
	chunkSize := (len(items) + e.workers - 1) / e.workers

	for w := 0; w < e.workers; w++ {
		lo := w * chunkSize
		if lo >= len(items) {
			break
		}
		hi := lo + chunkSize
		if hi > len(items) {
			hi = len(items)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			local := make(map[int]map[int]float64)
			var pairs int64
			for i := lo; i < hi; i++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				a := items[i]
				for j := i + 1; j < len(items); j++ {
					b := items[j]
					corr, ok := e.pearson(m.ItemVectors[a], m.ItemVectors[b])
					if !ok {
						continue
					}
					if local[a] == nil {
						local[a] = make(map[int]float64)
					}
					local[a][b] = corr
					pairs++
				}
			}
			mu.Lock()
			for a, row := range local {
				for b, corr := range row {
					if artifact.Correlations[a] == nil {
						artifact.Correlations[a] = make(map[int]float64)
					}
					if artifact.Correlations[b] == nil {
						artifact.Correlations[b] = make(map[int]float64)
					}
					artifact.Correlations[a][b] = corr
					artifact.Correlations[b][a] = corr
				}
			}
			computed += pairs
			mu.Unlock()
		}(lo, hi)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.TrainingPairsComputed.Add(float64(computed))
	e.logger.Info().
		Int("items", len(items)).
		Int("users", m.UserCount).
		Int64("pairs_retained", computed).
		Int("workers", e.workers).
		Dur("elapsed", time.Since(start)).
		Msg("Correlation model built")

	return artifact, nil
}

// pearson computes the Pearson coefficient over the users common to both
// vectors. Returns ok=false when the common-rater count is below the
// support threshold or either restricted vector has zero variance.
func (e *CorrelationEngine) pearson(a, b map[int]float64) (float64, bool) {
	// Iterate the smaller vector for the intersection.
	if len(b) < len(a) {
		a, b = b, a
	}
	var (
		n            int
		sumA, sumB   float64
		sumAA, sumBB float64
		sumAB        float64
	)
	for user, ra := range a {
		rb, ok := b[user]
		if !ok {
			continue
		}
		n++
		sumA += ra
		sumB += rb
		sumAA += ra * ra
		sumBB += rb * rb
		sumAB += ra * rb
	}
	if n < e.minCommonRaters {
		return 0, false
	}

	fn := float64(n)
	cov := sumAB - sumA*sumB/fn
	varA := sumAA - sumA*sumA/fn
	varB := sumBB - sumB*sumB/fn
	if varA <= 0 || varB <= 0 {
		return 0, false
	}
	corr := cov / math.Sqrt(varA*varB)
	// Guard against floating-point drift past the valid range.
	if corr > 1 {
		corr = 1
	} else if corr < -1 {
		corr = -1
	}
	return corr, true
}
