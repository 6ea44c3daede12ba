// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

// Package recommend implements the recommendation core: the popularity
// model builder, the in-memory model cache, the Jaccard similarity scorer,
// and the per-scenario recommendation strategies.
//
// The package depends on the storage layer only through the Store and
// CatalogSource interfaces, so tests substitute fakes and the database
// package stays free of recommendation logic.
//
// Strategies never return errors. Store failures are absorbed at the
// strategy boundary and answered by the next fallback signal; a degraded
// recommendation is preferred to a failed request.
package recommend
