// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker guarding catalog queries.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func (c *BreakerConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = "catalog-store"
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = 3
	}
	if c.Interval == 0 {
		c.Interval = time.Minute
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
}

// BreakerStore wraps a Store with a shared circuit breaker. When the
// database misbehaves repeatedly, the breaker opens and queries fail fast
// with gobreaker.ErrOpenState instead of piling up on a sick connection
// pool; the engine's fallback chain then serves from the cached model.
type BreakerStore struct {
	inner   Store
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerStore(inner Store, cfg BreakerConfig, logger zerolog.Logger) *BreakerStore {
	cfg.applyDefaults()
	log := logger.With().Str("component", "breaker-store").Logger()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  log,
	}
}

func execute[T any](s *BreakerStore, fn func() (T, error)) (T, error) {
	out, err := s.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

func (s *BreakerStore) PurchaseAggregates(ctx context.Context, since time.Time) ([]PurchaseAggregate, error) {
	return execute(s, func() ([]PurchaseAggregate, error) {
		return s.inner.PurchaseAggregates(ctx, since)
	})
}

func (s *BreakerStore) RecentEnabledProducts(ctx context.Context, limit int) ([]ProductRef, error) {
	return execute(s, func() ([]ProductRef, error) {
		return s.inner.RecentEnabledProducts(ctx, limit)
	})
}

func (s *BreakerStore) RandomEnabledProducts(ctx context.Context, limit int) ([]string, error) {
	return execute(s, func() ([]string, error) {
		return s.inner.RandomEnabledProducts(ctx, limit)
	})
}

func (s *BreakerStore) TrendingProducts(ctx context.Context, since time.Time, limit int) ([]string, error) {
	return execute(s, func() ([]string, error) {
		return s.inner.TrendingProducts(ctx, since, limit)
	})
}

func (s *BreakerStore) CategoriesForProducts(ctx context.Context, ids []string) ([]string, error) {
	return execute(s, func() ([]string, error) {
		return s.inner.CategoriesForProducts(ctx, ids)
	})
}

func (s *BreakerStore) RecentPurchasedCategories(ctx context.Context, userID string, limit int) ([]string, error) {
	return execute(s, func() ([]string, error) {
		return s.inner.RecentPurchasedCategories(ctx, userID, limit)
	})
}

func (s *BreakerStore) UserViews(ctx context.Context, userID string) ([]string, error) {
	return execute(s, func() ([]string, error) {
		return s.inner.UserViews(ctx, userID)
	})
}

func (s *BreakerStore) OverlappingUserViews(ctx context.Context, userID string) ([]UserViewSet, error) {
	return execute(s, func() ([]UserViewSet, error) {
		return s.inner.OverlappingUserViews(ctx, userID)
	})
}
