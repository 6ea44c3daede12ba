// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

// Package main is the entry point for the Venditio recommendation server.
//
// Venditio serves product recommendations for an e-commerce catalog. A
// popularity model is rebuilt on a fixed schedule from recent purchase
// data, persisted as a JSON snapshot, and served from memory; five
// recommendation strategies layer personalized signals on top of it with
// cascading fallbacks, so the API always answers even when the database
// is degraded.
//
// The server initializes in order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Database: embedded DuckDB with schema bootstrap
//  4. Popularity model: synchronous first build before serving traffic
//  5. Supervisor tree: periodic model refresh + HTTP server under suture
//
// Shutdown is graceful on SIGINT and SIGTERM: the server stops accepting
// connections, drains in-flight requests, and closes the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/venditio/venditio/internal/api"
	"github.com/venditio/venditio/internal/config"
	"github.com/venditio/venditio/internal/database"
	"github.com/venditio/venditio/internal/logging"
	"github.com/venditio/venditio/internal/recommend"
	"github.com/venditio/venditio/internal/supervisor"
	"github.com/venditio/venditio/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("database", cfg.Database.Path).
		Msg("Starting Venditio")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === DATABASE ===

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	// === POPULARITY MODEL ===

	snapshots, err := recommend.NewSnapshotStore(cfg.Recommend.SnapshotPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to prepare snapshot store")
	}

	builder := recommend.NewBuilder(db, snapshots, recommend.BuilderConfig{
		WindowDays:        cfg.Recommend.WindowDays,
		GlobalTopN:        cfg.Recommend.GlobalTopN,
		CategoryTopN:      cfg.Recommend.CategoryTopN,
		ColdStartProducts: cfg.Recommend.ColdStartProducts,
	}, logger)

	cache := recommend.NewModelCache(builder, snapshots, logger)

	// The first refresh runs synchronously so the process never serves
	// from an empty model when the catalog has data. A failure here is
	// not fatal: the engine degrades to live queries until the next
	// scheduled rebuild.
	bootCtx, bootCancel := context.WithTimeout(ctx, cfg.Recommend.BuildTimeout)
	cache.Refresh(bootCtx)
	bootCancel()

	// === RECOMMENDATION ENGINE ===

	store := recommend.NewBreakerStore(db, recommend.BreakerConfig{}, logger)
	engine := recommend.NewEngine(store, cache, recommend.EngineConfig{
		WindowDays:   cfg.Recommend.WindowDays,
		DefaultLimit: cfg.Recommend.DefaultLimit,
		MaxLimit:     cfg.Recommend.MaxLimit,
		SimilarUsers: cfg.Recommend.SimilarUsers,
	}, logger)

	// === HTTP SERVER ===

	handler := api.NewHandler(db, engine, db, api.HandlerConfig{
		DefaultLimit: cfg.Recommend.DefaultLimit,
		MaxLimit:     cfg.Recommend.MaxLimit,
	})
	router := api.NewRouter(handler, &cfg.Server)

	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  2 * timeout,
	}

	// === SUPERVISOR TREE ===

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddCoreService(services.NewRefreshService(cache, services.RefreshServiceConfig{
		Interval:     cfg.Recommend.RebuildInterval,
		BuildTimeout: cfg.Recommend.BuildTimeout,
	}, logger))

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Venditio stopped gracefully")
}
