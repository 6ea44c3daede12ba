// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/venditio/venditio/internal/recommend"
)

// PurchaseAggregates sums quantities per enabled product over orders placed
// at or after since. Products with no purchases in the window are absent.
func (db *DB) PurchaseAggregates(ctx context.Context, since time.Time) ([]recommend.PurchaseAggregate, error) {
	query := `
		SELECT
			p.product_id,
			COALESCE(p.category_id, '') AS category_id,
			SUM(oi.quantity) AS total_quantity
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		WHERE o.order_date >= ?
		  AND p.enabled
		GROUP BY p.product_id, p.category_id
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query purchase aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []recommend.PurchaseAggregate
	for rows.Next() {
		var agg recommend.PurchaseAggregate
		if err := rows.Scan(&agg.ProductID, &agg.CategoryID, &agg.Quantity); err != nil {
			return nil, fmt.Errorf("scan purchase aggregate: %w", err)
		}
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase aggregates: %w", err)
	}

	return aggregates, nil
}

// RecentEnabledProducts returns the most recently created enabled products.
func (db *DB) RecentEnabledProducts(ctx context.Context, limit int) ([]recommend.ProductRef, error) {
	query := `
		SELECT product_id, COALESCE(category_id, '')
		FROM products
		WHERE enabled
		ORDER BY created_at DESC, product_id
		LIMIT ?
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent products: %w", err)
	}
	defer rows.Close()

	var refs []recommend.ProductRef
	for rows.Next() {
		var ref recommend.ProductRef
		if err := rows.Scan(&ref.ID, &ref.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent products: %w", err)
	}

	return refs, nil
}

// RandomEnabledProducts samples enabled products without ordering bias.
func (db *DB) RandomEnabledProducts(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT product_id
		FROM products
		WHERE enabled
		ORDER BY random()
		LIMIT ?
	`
	return db.queryProductIDs(ctx, "random products", query, limit)
}

// TrendingProducts returns product IDs ranked by distinct view events at or
// after since. Ties break by product ID so repeated calls agree.
func (db *DB) TrendingProducts(ctx context.Context, since time.Time, limit int) ([]string, error) {
	query := `
		SELECT v.product_id
		FROM product_views v
		JOIN products p ON p.product_id = v.product_id
		WHERE v.viewed_at >= ?
		  AND p.enabled
		GROUP BY v.product_id
		ORDER BY COUNT(*) DESC, v.product_id
		LIMIT ?
	`
	return db.queryProductIDs(ctx, "trending products", query, since, limit)
}

// CategoriesForProducts resolves the distinct categories of the given
// products, ordered by each category's first appearance in ids.
func (db *DB) CategoriesForProducts(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	query := fmt.Sprintf(`
		SELECT product_id, COALESCE(category_id, '')
		FROM products
		WHERE product_id IN (%s)
	`, placeholders[:len(placeholders)-1])

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query product categories: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[string]string, len(ids))
	for rows.Next() {
		var productID, categoryID string
		if err := rows.Scan(&productID, &categoryID); err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		byProduct[productID] = categoryID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product categories: %w", err)
	}

	// Order by first appearance in the caller's id list, not by the
	// database's result order.
	var categories []string
	seen := make(map[string]struct{})
	for _, id := range ids {
		cat := byProduct[id]
		if cat == "" {
			continue
		}
		if _, dup := seen[cat]; dup {
			continue
		}
		seen[cat] = struct{}{}
		categories = append(categories, cat)
	}

	return categories, nil
}

// RecentPurchasedCategories returns the distinct categories of a user's
// purchases, most recent order first.
func (db *DB) RecentPurchasedCategories(ctx context.Context, userID string, limit int) ([]string, error) {
	query := `
		SELECT p.category_id
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		JOIN products p ON p.product_id = oi.product_id
		WHERE o.user_id = ?
		  AND p.category_id IS NOT NULL
		  AND p.category_id <> ''
		GROUP BY p.category_id
		ORDER BY MAX(o.order_date) DESC, p.category_id
		LIMIT ?
	`
	return db.queryProductIDs(ctx, "purchased categories", query, userID, limit)
}

func (db *DB) queryProductIDs(ctx context.Context, what, query string, args ...any) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}

	return ids, nil
}

// UpsertProduct inserts or updates a catalog product. Used by the seed
// path and tests; catalog writes normally arrive from the commerce system.
func (db *DB) UpsertProduct(ctx context.Context, id, categoryID, name string, enabled bool, createdAt time.Time) error {
	query := `
		INSERT INTO products (product_id, category_id, name, enabled, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (product_id) DO UPDATE SET
			category_id = excluded.category_id,
			name = excluded.name,
			enabled = excluded.enabled
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var category sql.NullString
	if categoryID != "" {
		category = sql.NullString{String: categoryID, Valid: true}
	}

	if _, err := db.conn.ExecContext(ctx, query, id, category, name, enabled, createdAt); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// InsertOrder records an order and its line items in one transaction.
func (db *DB) InsertOrder(ctx context.Context, orderID, userID string, orderDate time.Time, items map[string]int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (order_id, user_id, order_date) VALUES (?, ?, ?)`,
		orderID, userID, orderDate); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for productID, quantity := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity) VALUES (?, ?, ?)`,
			orderID, productID, quantity); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}
