// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if cfg.Recommend.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", cfg.Recommend.WindowDays)
	}
	if cfg.Recommend.RebuildInterval != 24*time.Hour {
		t.Errorf("RebuildInterval = %v, want 24h", cfg.Recommend.RebuildInterval)
	}
	if cfg.Recommend.GlobalTopN != 20 || cfg.Recommend.CategoryTopN != 10 {
		t.Errorf("top-N caps = %d/%d, want 20/10", cfg.Recommend.GlobalTopN, cfg.Recommend.CategoryTopN)
	}
	if cfg.Recommend.DefaultLimit != 8 {
		t.Errorf("DefaultLimit = %d, want 8", cfg.Recommend.DefaultLimit)
	}
	if cfg.Recommend.SimilarUsers != 3 {
		t.Errorf("SimilarUsers = %d, want 3", cfg.Recommend.SimilarUsers)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "empty database path",
			mutate: func(c *Config) { c.Database.Path = "" },
		},
		{
			name:   "port out of range",
			mutate: func(c *Config) { c.Server.Port = 70000 },
		},
		{
			name:   "default limit above max",
			mutate: func(c *Config) { c.Recommend.DefaultLimit = 100; c.Recommend.MaxLimit = 8 },
		},
		{
			name:   "rebuild interval below floor",
			mutate: func(c *Config) { c.Recommend.RebuildInterval = time.Second },
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DATABASE_PATH", "database.path"},
		{"SERVER_RATE_LIMIT_REQS", "server.rate_limit_reqs"},
		{"RECOMMEND_REBUILD_INTERVAL", "recommend.rebuild_interval"},
		{"LOGGING_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	yaml := `
recommend:
  window_days: 14
  snapshot_path: ` + filepath.Join(dir, "model.json") + `
database:
  path: ` + filepath.Join(dir, "test.duckdb") + `
`
	if err := os.WriteFile(configFile, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, configFile)
	t.Setenv("RECOMMEND_DEFAULT_LIMIT", "12")
	t.Setenv("SERVER_CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// File overrides default
	if cfg.Recommend.WindowDays != 14 {
		t.Errorf("WindowDays = %d, want 14 (from file)", cfg.Recommend.WindowDays)
	}
	// Env overrides file and default
	if cfg.Recommend.DefaultLimit != 12 {
		t.Errorf("DefaultLimit = %d, want 12 (from env)", cfg.Recommend.DefaultLimit)
	}
	// Untouched defaults survive
	if cfg.Recommend.GlobalTopN != 20 {
		t.Errorf("GlobalTopN = %d, want 20 (default)", cfg.Recommend.GlobalTopN)
	}
	// Comma-separated env slice
	want := []string{"https://shop.example.com", "https://admin.example.com"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}
