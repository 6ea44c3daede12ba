// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"time"
)

// Model is the rebuildable popularity artifact. It is immutable once
// published: the builder replaces it wholesale on every rebuild and the
// cache swaps the pointer atomically, so readers never observe a mix of
// two builds.
type Model struct {
	// GlobalBestSellers is the catalog-wide best-seller ranking,
	// score-descending, at most the configured global cap.
	GlobalBestSellers []string `json:"global_best_sellers"`

	// CategoryBestSellers maps a category ID to its best-seller ranking,
	// score-descending, at most the configured per-category cap. Products
	// without a category never appear here.
	CategoryBestSellers map[string][]string `json:"category_best_sellers"`
}

// EmptyModel returns a model with no rankings. The cache holds one before
// the first successful build.
func EmptyModel() *Model {
	return &Model{
		GlobalBestSellers:   []string{},
		CategoryBestSellers: map[string][]string{},
	}
}

// IsEmpty reports whether the model carries no rankings at all.
func (m *Model) IsEmpty() bool {
	return len(m.GlobalBestSellers) == 0 && len(m.CategoryBestSellers) == 0
}

// PurchaseAggregate is one product's summed purchase quantity over the
// trailing window. CategoryID is empty for uncategorized products.
type PurchaseAggregate struct {
	ProductID  string
	CategoryID string
	Quantity   int64
}

// ProductRef identifies a product and its (possibly empty) category.
type ProductRef struct {
	ID         string
	CategoryID string
}

// UserViewSet is one user's viewed products, in view-recency order as
// returned by the store.
type UserViewSet struct {
	UserID     string
	ProductIDs []string
}

// CatalogSource is the narrow query contract the popularity model builder
// consumes.
type CatalogSource interface {
	// PurchaseAggregates sums purchased quantity per (product, category)
	// for enabled products with orders at or after since.
	PurchaseAggregates(ctx context.Context, since time.Time) ([]PurchaseAggregate, error)

	// RecentEnabledProducts returns the most recently created enabled
	// products, newest first.
	RecentEnabledProducts(ctx context.Context, limit int) ([]ProductRef, error)
}

// Store is the query contract the recommendation strategies consume.
// Implemented by the database package; wrapped by BreakerStore in
// production wiring.
type Store interface {
	CatalogSource

	// RandomEnabledProducts returns up to limit enabled product IDs in
	// random order.
	RandomEnabledProducts(ctx context.Context, limit int) ([]string, error)

	// TrendingProducts ranks enabled products by distinct view events at
	// or after since, most viewed first.
	TrendingProducts(ctx context.Context, since time.Time, limit int) ([]string, error)

	// CategoriesForProducts returns the distinct category IDs of the given
	// products, ordered by first appearance in ids. Uncategorized products
	// contribute nothing.
	CategoriesForProducts(ctx context.Context, ids []string) ([]string, error)

	// RecentPurchasedCategories returns the distinct categories of the
	// user's purchased products, most recent order first.
	RecentPurchasedCategories(ctx context.Context, userID string, limit int) ([]string, error)

	// UserViews returns every product the user has viewed, most recent
	// first.
	UserViews(ctx context.Context, userID string) ([]string, error)

	// OverlappingUserViews returns the view sets of every other user who
	// shares at least one viewed product with userID, in ascending user ID
	// order.
	OverlappingUserViews(ctx context.Context, userID string) ([]UserViewSet, error)
}
