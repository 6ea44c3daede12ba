// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

// Package services provides suture service wrappers for application components.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ModelRefresher rebuilds the popularity model and swaps it into memory.
// Refresh absorbs its own failures; a failed cycle keeps the prior model.
type ModelRefresher interface {
	Refresh(ctx context.Context)
}

// RefreshServiceConfig holds the rebuild schedule.
type RefreshServiceConfig struct {
	// Interval between rebuilds. Zero means the 24h default.
	Interval time.Duration

	// BuildTimeout bounds a single rebuild cycle.
	BuildTimeout time.Duration
}

// RefreshService runs the periodic popularity model rebuild under
// supervision. The boot-time synchronous refresh happens in main before
// the tree starts, so this service only owns the recurring schedule.
type RefreshService struct {
	cache  ModelRefresher
	config RefreshServiceConfig
	logger zerolog.Logger
	name   string
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(cache ModelRefresher, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 5 * time.Minute
	}
	return &RefreshService{
		cache:  cache,
		config: cfg,
		logger: logger.With().Str("service", "refresh").Logger(),
		name:   "refresh-service",
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Msg("model refresh service running")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	s.cache.Refresh(refreshCtx)
	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("scheduled model refresh complete")
}

// String returns the service name for logging.
func (s *RefreshService) String() string {
	return s.name
}
