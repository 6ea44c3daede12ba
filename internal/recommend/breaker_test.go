// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

func TestBreakerStorePassesThrough(t *testing.T) {
	inner := &fakeStore{trending: []string{"t1", "t2"}}
	s := NewBreakerStore(inner, BreakerConfig{}, zerolog.Nop())

	got, err := s.TrendingProducts(context.Background(), time.Now(), 10)
	if err != nil {
		t.Fatalf("TrendingProducts() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Errorf("TrendingProducts() = %v, want [t1 t2]", got)
	}
}

func TestBreakerStoreOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &fakeStore{failTrending: errStoreDown}
	s := NewBreakerStore(inner, BreakerConfig{FailureThreshold: 3, Timeout: time.Hour}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := s.TrendingProducts(context.Background(), time.Now(), 10); !errors.Is(err, errStoreDown) {
			t.Fatalf("call %d: error = %v, want %v", i, err, errStoreDown)
		}
	}

	_, err := s.TrendingProducts(context.Background(), time.Now(), 10)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error = %v, want %v after threshold trips", err, gobreaker.ErrOpenState)
	}

	// Open breaker fails fast without touching the store again.
	inner.failTrending = nil
	if _, err := s.TrendingProducts(context.Background(), time.Now(), 10); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want %v while open", err, gobreaker.ErrOpenState)
	}
}

func TestBreakerStoreSharedAcrossQueries(t *testing.T) {
	inner := &fakeStore{failTrending: errStoreDown, random: []string{"r1"}}
	s := NewBreakerStore(inner, BreakerConfig{FailureThreshold: 2, Timeout: time.Hour}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, _ = s.TrendingProducts(context.Background(), time.Now(), 10)
	}

	// The same breaker guards every query, so an unrelated healthy query
	// also fails fast once the threshold trips.
	if _, err := s.RandomEnabledProducts(context.Background(), 10); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("RandomEnabledProducts() error = %v, want %v", err, gobreaker.ErrOpenState)
	}
}
