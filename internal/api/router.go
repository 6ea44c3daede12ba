// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

// Package api provides HTTP routing and handlers using the Chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venditio/venditio/internal/config"
	"github.com/venditio/venditio/internal/metrics"
)

// NewRouter assembles the full route tree.
func NewRouter(handler *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/", handler.Root)
	r.Get("/healthz", handler.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimitReqs > 0 {
			window := cfg.RateLimitWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(cfg.RateLimitReqs, window))
		}
		r.Use(prometheusMiddleware)

		r.Route("/tracking", func(r chi.Router) {
			r.Post("/view", handler.TrackView)
			r.Post("/sync", handler.SyncHistory)
			r.Get("/history/{userID}", handler.UserHistory)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/best-sellers", handler.BestSellers)
			r.Get("/trending", handler.Trending)
			r.Get("/purchase-based/{userID}", handler.PurchaseBased)
			r.Post("/by-history", handler.HistoryBased)
			r.Get("/user-collaborative/{userID}", handler.UserCollaborative)
		})
	})

	return r
}

// prometheusMiddleware records request durations labeled by the Chi route
// pattern rather than the raw path, keeping label cardinality bounded.
func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.Status(), time.Since(start))
	})
}
