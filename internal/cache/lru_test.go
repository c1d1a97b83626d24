// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	t.Parallel()

	c := New[int](4, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %d, %v, want 2, true", v, ok)
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Fatalf("after overwrite Get(a) = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New[string](3, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Touch a so b becomes the oldest.
	c.Get("a")

	c.Set("d", "4")

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("expected %s to survive eviction", key)
		}
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	t.Parallel()

	c := New[int](4, 10*time.Millisecond)
	c.Set("a", 1)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after TTL expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, Len = %d", c.Len())
	}
}

func TestLRUDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Fatal("Delete(a) = false, want true")
	}
	if c.Delete("a") {
		t.Fatal("second Delete(a) = true, want false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestLRUStats(t *testing.T) {
	t.Parallel()

	c := New[int](4, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Fatalf("Stats = %d, %d, %d, want 2, 1, 1", hits, misses, size)
	}
}

func TestLRUConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int](64, time.Minute)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%100)
				c.Set(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Fatalf("Len = %d exceeds capacity 64", c.Len())
	}
}
