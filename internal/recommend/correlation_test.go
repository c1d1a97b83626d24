// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
)

// matrixFrom builds a RatingMatrix from item -> user -> rating literals.
func matrixFrom(items map[int]map[int]float64) *RatingMatrix {
	users := make(map[int]struct{})
	for _, vec := range items {
		for u := range vec {
			users[u] = struct{}{}
		}
	}
	return &RatingMatrix{ItemVectors: items, UserCount: len(users)}
}

func TestCorrelationSymmetry(t *testing.T) {
	m := matrixFrom(map[int]map[int]float64{
		1: {1: 2, 2: 4, 3: 6, 4: 5},
		2: {1: 3, 2: 5, 3: 7, 4: 4},
		3: {1: 9, 2: 1, 3: 5, 4: 6},
	})
	engine := NewCorrelationEngine(3, 2)

	a, err := engine.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, i := range a.Items {
		for _, j := range a.Items {
			cij, okIJ := a.Correlation(i, j)
			cji, okJI := a.Correlation(j, i)
			if okIJ != okJI {
				t.Fatalf("presence asymmetry for pair (%d, %d)", i, j)
			}
			if okIJ && cij != cji {
				t.Errorf("corr(%d,%d)=%v but corr(%d,%d)=%v", i, j, cij, j, i, cji)
			}
		}
	}
}

func TestCorrelationWithinBounds(t *testing.T) {
	m := matrixFrom(map[int]map[int]float64{
		1: {1: 1, 2: 2, 3: 3, 4: 4, 5: 5},
		2: {1: 2, 2: 4, 3: 6, 4: 8, 5: 10},
		3: {1: 5, 2: 4, 3: 3, 4: 2, 5: 1},
		4: {1: 7, 2: 2, 3: 9, 4: 1, 5: 5},
	})
	engine := NewCorrelationEngine(3, 4)

	a, err := engine.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, row := range a.Correlations {
		for j, c := range row {
			if c < -1 || c > 1 || math.IsNaN(c) {
				t.Errorf("corr(%d,%d)=%v outside [-1, 1]", i, j, c)
			}
		}
	}

	// Items 1 and 2 are perfectly linearly related; 1 and 3 perfectly
	// inverse.
	if c, ok := a.Correlation(1, 2); !ok || math.Abs(c-1) > 1e-9 {
		t.Errorf("expected corr(1,2)=1, got %v (present=%v)", c, ok)
	}
	if c, ok := a.Correlation(1, 3); !ok || math.Abs(c+1) > 1e-9 {
		t.Errorf("expected corr(1,3)=-1, got %v (present=%v)", c, ok)
	}
}

func TestCorrelationBelowSupportThresholdAbsent(t *testing.T) {
	// Items 1 and 2 share only two raters; threshold is three.
	m := matrixFrom(map[int]map[int]float64{
		1: {1: 2, 2: 8, 5: 3, 6: 4},
		2: {1: 3, 2: 7, 7: 9, 8: 1},
		3: {1: 4, 2: 2, 5: 6, 7: 8},
	})
	engine := NewCorrelationEngine(3, 1)

	a, err := engine.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c, ok := a.Correlation(1, 2); ok {
		t.Errorf("pair with 2 common raters must be absent, got %v", c)
	}
	// Absence must be distinguishable from a zero coefficient.
	if _, ok := a.Correlation(1, 2); ok {
		t.Error("absent pair reported as present")
	}
}

func TestCorrelationZeroVarianceAbsent(t *testing.T) {
	// Item 1 has constant ratings across the common raters.
	m := matrixFrom(map[int]map[int]float64{
		1: {1: 5, 2: 5, 3: 5},
		2: {1: 2, 2: 6, 3: 9},
	})
	engine := NewCorrelationEngine(3, 1)

	a, err := engine.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.Correlation(1, 2); ok {
		t.Error("zero-variance pair must be absent from the model")
	}
}

func TestCorrelationRejectsDegenerateInput(t *testing.T) {
	engine := NewCorrelationEngine(3, 2)

	if _, err := engine.Build(context.Background(), matrixFrom(nil)); !errors.Is(err, ErrEmptyMatrix) {
		t.Errorf("expected ErrEmptyMatrix, got %v", err)
	}
	if _, err := engine.Build(context.Background(), nil); !errors.Is(err, ErrEmptyMatrix) {
		t.Errorf("expected ErrEmptyMatrix for nil matrix, got %v", err)
	}

	single := matrixFrom(map[int]map[int]float64{1: {1: 5, 2: 6}})
	if _, err := engine.Build(context.Background(), single); !errors.Is(err, ErrTooFewItems) {
		t.Errorf("expected ErrTooFewItems, got %v", err)
	}
}

func TestCorrelationAggregates(t *testing.T) {
	m := matrixFrom(map[int]map[int]float64{
		1: {1: 2, 2: 4, 3: 6},
		2: {1: 8, 2: 10},
	})
	engine := NewCorrelationEngine(2, 1)

	a, err := engine.Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, ok := a.Stats(1)
	if !ok || stats.Popularity != 3 || stats.MeanRating != 4 {
		t.Errorf("item 1 stats = %+v (present=%v), want popularity 3 mean 4", stats, ok)
	}
	stats, ok = a.Stats(2)
	if !ok || stats.Popularity != 2 || stats.MeanRating != 9 {
		t.Errorf("item 2 stats = %+v (present=%v), want popularity 2 mean 9", stats, ok)
	}
	if _, ok := a.Stats(99); ok {
		t.Error("stats for unknown item must report absence")
	}
	if a.UserCount != 3 {
		t.Errorf("expected 3 users, got %d", a.UserCount)
	}
}

func TestCorrelationDeterministicAcrossWorkerCounts(t *testing.T) {
	m := matrixFrom(map[int]map[int]float64{
		1: {1: 1, 2: 2, 3: 3, 4: 4},
		2: {1: 4, 2: 3, 3: 2, 4: 1},
		3: {1: 2, 2: 2, 3: 5, 4: 7},
		4: {1: 9, 2: 8, 3: 1, 4: 3},
	})

	one, err := NewCorrelationEngine(3, 1).Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	many, err := NewCorrelationEngine(3, 8).Build(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, i := range one.Items {
		for _, j := range one.Items {
			c1, ok1 := one.Correlation(i, j)
			c2, ok2 := many.Correlation(i, j)
			if ok1 != ok2 || c1 != c2 {
				t.Errorf("pair (%d,%d) differs across worker counts: (%v,%v) vs (%v,%v)",
					i, j, c1, ok1, c2, ok2)
			}
		}
	}
}
