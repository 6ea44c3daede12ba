// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingRefresher struct {
	calls atomic.Int64
}

func (c *countingRefresher) Refresh(_ context.Context) {
	c.calls.Add(1)
}

func TestRefreshServiceRunsOnSchedule(t *testing.T) {
	refresher := &countingRefresher{}
	svc := NewRefreshService(refresher, RefreshServiceConfig{
		Interval:     20 * time.Millisecond,
		BuildTimeout: time.Second,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve() error = %v, want context deadline", err)
	}
	if got := refresher.calls.Load(); got < 2 {
		t.Errorf("refresh calls = %d, want at least 2", got)
	}
}

func TestRefreshServiceStopsOnCancel(t *testing.T) {
	svc := NewRefreshService(&countingRefresher{}, RefreshServiceConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestRefreshServiceDefaults(t *testing.T) {
	svc := NewRefreshService(&countingRefresher{}, RefreshServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h default", svc.config.Interval)
	}
	if svc.config.BuildTimeout <= 0 {
		t.Errorf("BuildTimeout = %v, want positive default", svc.config.BuildTimeout)
	}
}

func TestRefreshServiceName(t *testing.T) {
	svc := NewRefreshService(&countingRefresher{}, RefreshServiceConfig{}, zerolog.Nop())
	if svc.String() != "refresh-service" {
		t.Errorf("String() = %s", svc.String())
	}
}
