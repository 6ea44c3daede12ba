// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/venditio/venditio/internal/metrics"
)

// modelBuilder is the slice of Builder the cache needs.
type modelBuilder interface {
	Build(ctx context.Context) (*Model, error)
}

// snapshotLoader reads the durable artifact back after a build.
type snapshotLoader interface {
	Load() (*Model, error)
}

// ModelCache holds the process-wide popularity model snapshot. The current
// model is swapped atomically: readers calling Current during a Refresh
// observe either the old or the new model in full, never a mix.
type ModelCache struct {
	builder   modelBuilder
	snapshots snapshotLoader
	current   atomic.Pointer[Model]
	logger    zerolog.Logger
}

// NewModelCache creates a cache initialized with the empty model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelCache(builder modelBuilder, snapshots snapshotLoader, logger zerolog.Logger) *ModelCache {
	c := &ModelCache{
		builder:   builder,
		snapshots: snapshots,
		logger:    logger.With().Str("component", "model-cache").Logger(),
	}
	c.current.Store(EmptyModel())
	return c
}

// Current returns the latest snapshot without blocking. Never nil; before
// the first successful refresh it is the empty model.
func (c *ModelCache) Current() *Model {
	return c.current.Load()
}

// Refresh rebuilds the popularity model and swaps the in-memory snapshot.
// The swap happens only after the durable artifact is read back, so a
// build that claims success but leaves an unreadable snapshot keeps the
// previous model in memory. Refresh never returns an error: every failure
// mode degrades to keeping the old snapshot.
func (c *ModelCache) Refresh(ctx context.Context) {
	if _, err := c.builder.Build(ctx); err != nil {
		c.logger.Error().Err(err).Msg("model build failed, keeping previous snapshot")
		return
	}

	model, err := c.snapshots.Load()
	if err != nil {
		c.logger.Warn().Err(err).Msg("snapshot unreadable after build, keeping previous snapshot")
		return
	}

	c.current.Store(model)
	metrics.RecordModel(len(model.GlobalBestSellers), len(model.CategoryBestSellers))
	c.logger.Info().
		Int("global", len(model.GlobalBestSellers)).
		Int("categories", len(model.CategoryBestSellers)).
		Msg("model cache refreshed")
}
