// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/venditio/venditio/internal/metrics"
	"github.com/venditio/venditio/internal/recommend"
)

// UpsertView records that a user viewed a product. A repeat view refreshes
// the timestamp; the (user, product) pair stays unique.
func (db *DB) UpsertView(ctx context.Context, userID, productID string) error {
	query := `
		INSERT INTO product_views (user_id, product_id, viewed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			viewed_at = excluded.viewed_at
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, query, userID, productID, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert product view: %w", err)
	}

	metrics.ViewUpserts.Inc()
	return nil
}

// UpsertViews records a batch of views for one user in a single
// transaction, deduplicating repeated product IDs within the batch.
func (db *DB) UpsertViews(ctx context.Context, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin view transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(productIDs))
	for _, productID := range productIDs {
		if _, dup := seen[productID]; dup {
			continue
		}
		seen[productID] = struct{}{}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_views (user_id, product_id, viewed_at)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, product_id) DO UPDATE SET
				viewed_at = excluded.viewed_at
		`, userID, productID, now); err != nil {
			return fmt.Errorf("upsert product view: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit views: %w", err)
	}

	metrics.ViewUpserts.Add(float64(len(seen)))
	return nil
}

// UserViews returns the product IDs a user has viewed, most recent first.
func (db *DB) UserViews(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT product_id
		FROM product_views
		WHERE user_id = ?
		ORDER BY viewed_at DESC, product_id
	`
	return db.queryProductIDs(ctx, "user views", query, userID)
}

// UserHistory returns up to limit of a user's most recently viewed
// product IDs.
func (db *DB) UserHistory(ctx context.Context, userID string, limit int) ([]string, error) {
	query := `
		SELECT product_id
		FROM product_views
		WHERE user_id = ?
		ORDER BY viewed_at DESC, product_id
		LIMIT ?
	`
	return db.queryProductIDs(ctx, "user history", query, userID, limit)
}

// OverlappingUserViews returns the full view sets of every other user who
// shares at least one viewed product with userID, in ascending user ID
// order so downstream similarity ranking is reproducible.
func (db *DB) OverlappingUserViews(ctx context.Context, userID string) ([]recommend.UserViewSet, error) {
	query := `
		SELECT v.user_id, v.product_id
		FROM product_views v
		WHERE v.user_id <> ?
		  AND v.user_id IN (
			SELECT DISTINCT other.user_id
			FROM product_views other
			JOIN product_views mine ON mine.product_id = other.product_id
			WHERE mine.user_id = ?
			  AND other.user_id <> ?
		  )
		ORDER BY v.user_id, v.viewed_at DESC, v.product_id
	`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query overlapping views: %w", err)
	}
	defer rows.Close()

	var sets []recommend.UserViewSet
	for rows.Next() {
		var uid, productID string
		if err := rows.Scan(&uid, &productID); err != nil {
			return nil, fmt.Errorf("scan overlapping view: %w", err)
		}
		if len(sets) == 0 || sets[len(sets)-1].UserID != uid {
			sets = append(sets, recommend.UserViewSet{UserID: uid})
		}
		last := &sets[len(sets)-1]
		last.ProductIDs = append(last.ProductIDs, productID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overlapping views: %w", err)
	}

	return sets, nil
}
