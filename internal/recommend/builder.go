// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/venditio/venditio/internal/metrics"
)

// BuilderConfig holds the popularity model build settings.
type BuilderConfig struct {
	// WindowDays is the trailing purchase aggregation window.
	WindowDays int

	// GlobalTopN caps the global best-seller list.
	GlobalTopN int

	// CategoryTopN caps each per-category best-seller list.
	CategoryTopN int

	// ColdStartProducts is how many recently created products seed the
	// model when the purchase window is empty, each at uniform score 1.
	ColdStartProducts int
}

// applyDefaults fills zero values with the documented defaults.
func (c *BuilderConfig) applyDefaults() {
	if c.WindowDays <= 0 {
		c.WindowDays = 7
	}
	if c.GlobalTopN <= 0 {
		c.GlobalTopN = 20
	}
	if c.CategoryTopN <= 0 {
		c.CategoryTopN = 10
	}
	if c.ColdStartProducts <= 0 {
		c.ColdStartProducts = 50
	}
}

// Builder aggregates recent transactional data into a popularity model
// and persists it as the durable snapshot. It holds no mutable state and
// is safe to re-run concurrently with readers of an older model.
type Builder struct {
	source    CatalogSource
	snapshots *SnapshotStore
	cfg       BuilderConfig
	logger    zerolog.Logger

	// now is swappable for deterministic window tests.
	now func() time.Time
}

// NewBuilder creates a popularity model builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(source CatalogSource, snapshots *SnapshotStore, cfg BuilderConfig, logger zerolog.Logger) *Builder {
	cfg.applyDefaults()
	return &Builder{
		source:    source,
		snapshots: snapshots,
		cfg:       cfg,
		logger:    logger.With().Str("component", "builder").Logger(),
		now:       time.Now,
	}
}

// Build aggregates the trailing purchase window into a fresh model and
// writes it to the snapshot store. On any failure the prior snapshot is
// left in place and the error is returned for the caller to log; Build
// never publishes a partial artifact.
func (b *Builder) Build(ctx context.Context) (*Model, error) {
	start := b.now()
	since := start.AddDate(0, 0, -b.cfg.WindowDays)

	rows, err := b.source.PurchaseAggregates(ctx, since)
	if err != nil {
		metrics.ModelBuildFailures.Inc()
		return nil, fmt.Errorf("aggregate purchases: %w", err)
	}

	if len(rows) == 0 {
		b.logger.Info().
			Int("window_days", b.cfg.WindowDays).
			Msg("no purchases in window, seeding model from recent products")
		rows, err = b.coldStartRows(ctx)
		if err != nil {
			metrics.ModelBuildFailures.Inc()
			return nil, fmt.Errorf("cold-start products: %w", err)
		}
	}

	model := b.rank(rows)

	if err := b.snapshots.Save(model); err != nil {
		metrics.ModelBuildFailures.Inc()
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	metrics.ModelBuildDuration.Observe(b.now().Sub(start).Seconds())
	b.logger.Info().
		Int("products", len(rows)).
		Int("global", len(model.GlobalBestSellers)).
		Int("categories", len(model.CategoryBestSellers)).
		Dur("duration", b.now().Sub(start)).
		Msg("popularity model built")

	return model, nil
}

// coldStartRows turns the most recently created enabled products into
// uniform-score aggregates so the model is never empty for a cold catalog.
func (b *Builder) coldStartRows(ctx context.Context) ([]PurchaseAggregate, error) {
	refs, err := b.source.RecentEnabledProducts(ctx, b.cfg.ColdStartProducts)
	if err != nil {
		return nil, err
	}

	rows := make([]PurchaseAggregate, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, PurchaseAggregate{
			ProductID:  ref.ID,
			CategoryID: ref.CategoryID,
			Quantity:   1,
		})
	}
	return rows, nil
}

// rank sorts the working set and derives the capped global and
// per-category rankings. Ties on score break by product ID ascending so
// rebuilds over unchanged data are byte-identical.
func (b *Builder) rank(rows []PurchaseAggregate) *Model {
	sorted := make([]PurchaseAggregate, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Quantity != sorted[j].Quantity {
			return sorted[i].Quantity > sorted[j].Quantity
		}
		return sorted[i].ProductID < sorted[j].ProductID
	})

	model := EmptyModel()
	for _, row := range sorted {
		if len(model.GlobalBestSellers) < b.cfg.GlobalTopN {
			model.GlobalBestSellers = append(model.GlobalBestSellers, row.ProductID)
		}
		if row.CategoryID == "" {
			continue
		}
		if cat := model.CategoryBestSellers[row.CategoryID]; len(cat) < b.cfg.CategoryTopN {
			model.CategoryBestSellers[row.CategoryID] = append(cat, row.ProductID)
		}
	}

	return model
}
