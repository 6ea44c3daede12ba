// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

// Package metrics provides Prometheus instrumentation for the
// recommendation service: strategy throughput, fallback depth, model
// build timing, and HTTP latency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation strategy metrics

	StrategyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_requests_total",
			Help: "Total recommendation requests per strategy",
		},
		[]string{"strategy"},
	)

	StrategyFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_fallbacks_total",
			Help: "Candidate steps that cascaded to a weaker signal, per strategy",
		},
		[]string{"strategy", "step"},
	)

	StrategyShortfalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_shortfalls_total",
			Help: "Responses returned below the requested limit after all fallbacks",
		},
		[]string{"strategy"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_store_errors_total",
			Help: "Store query failures absorbed at the strategy boundary",
		},
		[]string{"query"},
	)

	// Popularity model metrics

	ModelBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_model_build_duration_seconds",
			Help:    "Duration of popularity model builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelBuildFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_model_build_failures_total",
			Help: "Popularity model builds that failed and left the cache untouched",
		},
	)

	ModelGlobalSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_global_best_sellers",
			Help: "Products in the cached global best-seller list",
		},
	)

	ModelCategoryCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_categories",
			Help: "Categories with a best-seller list in the cached model",
		},
	)

	ModelRefreshTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful model cache refresh",
		},
	)

	// View tracking metrics

	ViewUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_view_upserts_total",
			Help: "View events upserted (including timestamp refreshes)",
		},
	)

	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(duration.Seconds())
}

// RecordModel updates the model gauges after a successful refresh.
func RecordModel(globalLen, categories int) {
	ModelGlobalSize.Set(float64(globalLen))
	ModelCategoryCount.Set(float64(categories))
	ModelRefreshTime.SetToCurrentTime()
}
