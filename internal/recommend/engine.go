// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/venditio/venditio/internal/metrics"
)

// EngineConfig holds the per-request strategy settings.
type EngineConfig struct {
	// WindowDays is the trailing window for the trending signal.
	WindowDays int

	// DefaultLimit is the result size when a request passes limit <= 0.
	DefaultLimit int

	// MaxLimit caps the requested result size.
	MaxLimit int

	// SimilarUsers is how many nearest neighbours feed the
	// user-collaborative strategy.
	SimilarUsers int

	// PurchaseCategories is how many recent purchase categories seed the
	// purchase-based strategy.
	PurchaseCategories int
}

func (c *EngineConfig) applyDefaults() {
	if c.WindowDays <= 0 {
		c.WindowDays = 7
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 8
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 50
	}
	if c.SimilarUsers <= 0 {
		c.SimilarUsers = 3
	}
	if c.PurchaseCategories <= 0 {
		c.PurchaseCategories = 3
	}
}

// Engine exposes the per-scenario recommendation strategies. Every
// strategy is an ordered list of candidate-generation steps evaluated
// lazily until the deduplicated result reaches the requested limit or the
// list is exhausted. Strategies never fail: store errors cascade to the
// next step, and an exhausted list yields a short (possibly empty) result.
//
// Engine is stateless apart from its injected collaborators and is safe
// for concurrent use.
type Engine struct {
	store  Store
	cache  *ModelCache
	cfg    EngineConfig
	logger zerolog.Logger

	// now is swappable for deterministic window tests.
	now func() time.Time
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store Store, cache *ModelCache, cfg EngineConfig, logger zerolog.Logger) *Engine {
	cfg.applyDefaults()
	return &Engine{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger.With().Str("component", "engine").Logger(),
		now:    time.Now,
	}
}

// step is one candidate-generation layer of a strategy's fallback chain.
type step struct {
	// name labels the step in logs and fallback metrics.
	name string

	// rescue steps run only while the accumulated result is still empty;
	// fill steps run whenever space remains.
	rescue bool

	// fetch produces candidates. need is the remaining space in the
	// result; steps may return more, the collector truncates.
	fetch func(ctx context.Context, need int) ([]string, error)
}

// collector accumulates candidates with first-seen dedup and a hard cap.
type collector struct {
	limit int
	seen  map[string]struct{}
	ids   []string
}

func newCollector(limit int) *collector {
	return &collector{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
		ids:   make([]string, 0, limit),
	}
}

func (c *collector) full() bool { return len(c.ids) >= c.limit }

// add appends unseen IDs until the collector is full.
func (c *collector) add(ids []string) {
	for _, id := range ids {
		if c.full() {
			return
		}
		if _, dup := c.seen[id]; dup {
			continue
		}
		c.seen[id] = struct{}{}
		c.ids = append(c.ids, id)
	}
}

// clampLimit applies the default and the cap to a requested result size.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		return e.cfg.MaxLimit
	}
	return limit
}

// run evaluates a strategy's step list. Store failures are logged and
// absorbed; the next step answers instead.
func (e *Engine) run(ctx context.Context, strategy string, limit int, steps []step) []string {
	metrics.StrategyRequests.WithLabelValues(strategy).Inc()

	c := newCollector(limit)
	for i, st := range steps {
		if c.full() {
			break
		}
		if st.rescue && len(c.ids) > 0 {
			continue
		}

		ids, err := st.fetch(ctx, limit-len(c.ids))
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("strategy", strategy).
				Str("step", st.name).
				Msg("candidate step failed, cascading")
			metrics.StoreErrors.WithLabelValues(st.name).Inc()
			continue
		}

		if i > 0 && len(ids) > 0 {
			metrics.StrategyFallbacks.WithLabelValues(strategy, st.name).Inc()
		}
		c.add(ids)
	}

	if len(c.ids) < limit {
		metrics.StrategyShortfalls.WithLabelValues(strategy).Inc()
	}

	return c.ids
}

// BestSellers returns the cached global best-seller ranking, falling back
// to a random sample of enabled products when the model is empty.
func (e *Engine) BestSellers(ctx context.Context, limit int) []string {
	limit = e.clampLimit(limit)
	return e.run(ctx, "best_sellers", limit, []step{
		{name: "model_global", fetch: e.fetchModelGlobal},
		{name: "random_sample", rescue: true, fetch: e.fetchRandom},
	})
}

// Trending ranks enabled products by distinct view events in the trailing
// window. Shortfall is padded with a random sample; with the store down
// the cached model answers instead.
func (e *Engine) Trending(ctx context.Context, limit int) []string {
	limit = e.clampLimit(limit)
	return e.run(ctx, "trending", limit, e.trendingSteps())
}

// trendingSteps is the shared trending fallback chain.
func (e *Engine) trendingSteps() []step {
	return []step{
		{name: "trending_window", fetch: e.fetchTrending},
		{name: "random_sample", fetch: e.fetchRandom},
		{name: "model_global", rescue: true, fetch: e.fetchModelGlobal},
	}
}

// PurchaseBased recommends best-sellers from the categories of the user's
// most recent purchases, most recent category first. Users without
// purchase history get the trending chain.
func (e *Engine) PurchaseBased(ctx context.Context, userID string, limit int) []string {
	limit = e.clampLimit(limit)

	purchased := step{
		name: "purchase_categories",
		fetch: func(ctx context.Context, _ int) ([]string, error) {
			cats, err := e.store.RecentPurchasedCategories(ctx, userID, e.cfg.PurchaseCategories)
			if err != nil {
				return nil, err
			}
			return e.categoryBestSellers(cats, nil), nil
		},
	}

	return e.run(ctx, "purchase_based", limit, []step{purchased, e.trendingRescue()})
}

// HistoryBased recommends best-sellers from the categories of the given
// viewed products, excluding the products themselves. An empty history or
// a fruitless category lookup cascades to the trending chain. Work is
// bounded: accumulation stops once twice the requested limit is gathered.
func (e *Engine) HistoryBased(ctx context.Context, viewedIDs []string, limit int) []string {
	limit = e.clampLimit(limit)

	viewed := SetOf(viewedIDs)
	history := step{
		name: "history_categories",
		fetch: func(ctx context.Context, _ int) ([]string, error) {
			if len(viewedIDs) == 0 {
				return nil, nil
			}
			cats, err := e.store.CategoriesForProducts(ctx, viewedIDs)
			if err != nil {
				return nil, err
			}
			return e.categoryBestSellersBounded(cats, viewed, 2*limit), nil
		},
	}

	return e.run(ctx, "history_based", limit, []step{history, e.trendingRescue()})
}

// UserCollaborative recommends what the user's nearest neighbours viewed.
// Neighbours are the top-K users by Jaccard similarity over view sets;
// their products are unioned in aggregation order, the requester's own
// views excluded. Shortfall is backfilled from trending, still excluding
// the requester's views; a user with no history or no neighbours gets the
// plain trending chain.
func (e *Engine) UserCollaborative(ctx context.Context, userID string, limit int) []string {
	limit = e.clampLimit(limit)

	var ownViews map[string]struct{}

	neighbours := step{
		name: "similar_users",
		fetch: func(ctx context.Context, _ int) ([]string, error) {
			views, err := e.store.UserViews(ctx, userID)
			if err != nil {
				return nil, err
			}
			if len(views) == 0 {
				return nil, nil
			}

			others, err := e.store.OverlappingUserViews(ctx, userID)
			if err != nil {
				return nil, err
			}

			viewSet := SetOf(views)
			union := e.neighbourUnion(viewSet, others)
			if union == nil {
				return nil, nil
			}

			// Backfill below must keep excluding the requester's views.
			ownViews = viewSet
			return union, nil
		},
	}

	backfill := step{
		name: "trending_backfill",
		fetch: func(ctx context.Context, need int) ([]string, error) {
			if ownViews == nil {
				// No view history or no neighbours: plain trending.
				return e.Trending(ctx, need), nil
			}
			candidates := e.Trending(ctx, 2*limit)
			kept := make([]string, 0, len(candidates))
			for _, id := range candidates {
				if _, own := ownViews[id]; own {
					continue
				}
				kept = append(kept, id)
			}
			return kept, nil
		},
	}

	return e.run(ctx, "user_collaborative", limit, []step{neighbours, backfill})
}

// neighbourUnion ranks candidate users by similarity to viewSet, keeps the
// top SimilarUsers, and unions their views excluding the requester's own.
// Ties on similarity break by user ID ascending; with the store returning
// users in that order, a stable sort keeps rebuild order deterministic.
// Returns nil when no candidate shares anything.
func (e *Engine) neighbourUnion(viewSet map[string]struct{}, others []UserViewSet) []string {
	type scored struct {
		views []string
		sim   float64
	}

	candidates := make([]scored, 0, len(others))
	for _, other := range others {
		sim := Jaccard(viewSet, SetOf(other.ProductIDs))
		if sim > 0 {
			candidates = append(candidates, scored{views: other.ProductIDs, sim: sim})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})
	if len(candidates) > e.cfg.SimilarUsers {
		candidates = candidates[:e.cfg.SimilarUsers]
	}

	union := make([]string, 0, len(candidates)*4)
	for _, cand := range candidates {
		for _, id := range cand.views {
			if _, own := viewSet[id]; own {
				continue
			}
			union = append(union, id)
		}
	}
	return union
}

// categoryBestSellers concatenates the cached per-category rankings in the
// given category order, skipping excluded products.
func (e *Engine) categoryBestSellers(categories []string, exclude map[string]struct{}) []string {
	return e.categoryBestSellersBounded(categories, exclude, 0)
}

// categoryBestSellersBounded is categoryBestSellers with an optional raw
// accumulation bound (0 = unbounded).
func (e *Engine) categoryBestSellersBounded(categories []string, exclude map[string]struct{}, bound int) []string {
	model := e.cache.Current()

	out := make([]string, 0, 16)
	for _, cat := range categories {
		for _, id := range model.CategoryBestSellers[cat] {
			if _, skip := exclude[id]; skip {
				continue
			}
			out = append(out, id)
		}
		if bound > 0 && len(out) >= bound {
			break
		}
	}
	return out
}

// fetchModelGlobal reads the cached global best-seller list.
func (e *Engine) fetchModelGlobal(_ context.Context, _ int) ([]string, error) {
	return e.cache.Current().GlobalBestSellers, nil
}

// fetchRandom samples enabled products.
func (e *Engine) fetchRandom(ctx context.Context, need int) ([]string, error) {
	return e.store.RandomEnabledProducts(ctx, need)
}

// fetchTrending ranks by distinct views over the trailing window.
func (e *Engine) fetchTrending(ctx context.Context, need int) ([]string, error) {
	since := e.now().AddDate(0, 0, -e.cfg.WindowDays)
	return e.store.TrendingProducts(ctx, since, need)
}

// trendingRescue wraps the whole Trending strategy as a rescue step, so a
// strategy whose primary signal produced nothing at all falls through to
// trending with its own padding intact.
func (e *Engine) trendingRescue() step {
	return step{
		name:   "trending",
		rescue: true,
		fetch: func(ctx context.Context, need int) ([]string, error) {
			return e.Trending(ctx, need), nil
		},
	}
}
