// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

// Package config loads and validates the Venditio server configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (DATABASE_PATH, RECOMMEND_REBUILD_INTERVAL, ...)
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the server.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds settings for the embedded DuckDB store.
type DatabaseConfig struct {
	// Path is the database file location. Created on first start.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory caps DuckDB memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`

	// Timeout bounds request read and write.
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	// 0 disables rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// RecommendConfig holds the recommendation core settings.
//
// Environment variables:
//   - RECOMMEND_WINDOW_DAYS: trailing aggregation window (default: 7)
//   - RECOMMEND_REBUILD_INTERVAL: popularity model rebuild cadence (default: 24h)
//   - RECOMMEND_SNAPSHOT_PATH: durable model snapshot location
//   - RECOMMEND_DEFAULT_LIMIT: default result size per request (default: 8)
type RecommendConfig struct {
	// WindowDays is the trailing window for purchase and view aggregation.
	WindowDays int `koanf:"window_days" validate:"min=1"`

	// RebuildInterval is how often the popularity model is rebuilt.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`

	// BuildTimeout bounds a single model build.
	BuildTimeout time.Duration `koanf:"build_timeout"`

	// SnapshotPath is where the popularity model document is persisted.
	SnapshotPath string `koanf:"snapshot_path" validate:"required"`

	// GlobalTopN caps the global best-seller list.
	GlobalTopN int `koanf:"global_top_n" validate:"min=1"`

	// CategoryTopN caps each per-category best-seller list.
	CategoryTopN int `koanf:"category_top_n" validate:"min=1"`

	// ColdStartProducts is how many recent products seed the model when
	// the purchase window is empty.
	ColdStartProducts int `koanf:"cold_start_products" validate:"min=1"`

	// DefaultLimit is the result size when a request omits one.
	DefaultLimit int `koanf:"default_limit" validate:"min=1"`

	// MaxLimit caps the requested result size.
	MaxLimit int `koanf:"max_limit" validate:"min=1"`

	// SimilarUsers is how many nearest neighbours feed the
	// user-collaborative strategy.
	SimilarUsers int `koanf:"similar_users" validate:"min=1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// validate is shared; validator.New is relatively costly.
var validate = validator.New()

// Validate checks the configuration for consistency. It is called by Load
// but exported so hand-built configs in tests can opt in.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Recommend.DefaultLimit > c.Recommend.MaxLimit {
		return fmt.Errorf("recommend.default_limit %d exceeds recommend.max_limit %d",
			c.Recommend.DefaultLimit, c.Recommend.MaxLimit)
	}
	if c.Recommend.RebuildInterval < time.Minute {
		return fmt.Errorf("recommend.rebuild_interval %s is below the 1m floor", c.Recommend.RebuildInterval)
	}

	return nil
}
