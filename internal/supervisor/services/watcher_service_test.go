// Recommender System - Item-Item Collaborative Filtering for Media Titles
// Copyright 2026 Erik Lledo (lledoerik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lledoerik/recommender-system

package services

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lledoerik/recommender-system/internal/logging"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (c *countingReloader) CheckAndReload(ctx context.Context) (bool, error) {
	n := c.calls.Add(1)
	if c.err != nil {
		return false, c.err
	}
	return n == 1, nil
}

func TestWatcherServicePolls(t *testing.T) {
	reloader := &countingReloader{}
	svc := NewWatcherService(reloader, 20*time.Millisecond, logging.NewTestLogger(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for reloader.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 poll calls, saw %d", reloader.calls.Load())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestWatcherServiceSurvivesReloadErrors(t *testing.T) {
	reloader := &countingReloader{err: errors.New("corrupt artifact")}
	svc := NewWatcherService(reloader, 20*time.Millisecond, logging.NewTestLogger(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for reloader.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected polling to continue after errors, saw %d calls", reloader.calls.Load())
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
}
