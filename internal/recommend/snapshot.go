// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ErrNoSnapshot is returned by SnapshotStore.Load when no snapshot exists.
// A missing snapshot is the valid cold-start state, not a failure.
var ErrNoSnapshot = errors.New("no popularity model snapshot")

// SnapshotStore persists the popularity model as a single JSON document,
// overwritten wholesale on every successful build. Writes go through a
// temp file and rename so a crash mid-write never leaves a torn document.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a snapshot store at path. The parent directory
// is created if missing.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create snapshot directory %s: %w", dir, err)
		}
	}
	return &SnapshotStore{path: path}, nil
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save serializes the model and replaces any prior snapshot.
func (s *SnapshotStore) Save(m *Model) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil { //nolint:gosec // snapshot is not sensitive
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot back. Returns ErrNoSnapshot when the file does
// not exist, and a wrapped error when it exists but cannot be decoded.
func (s *SnapshotStore) Load() (*Model, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	m := EmptyModel()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	// A document missing either field decodes to nil; normalize so
	// readers never see nil slices or maps.
	if m.GlobalBestSellers == nil {
		m.GlobalBestSellers = []string{}
	}
	if m.CategoryBestSellers == nil {
		m.CategoryBestSellers = map[string][]string{}
	}

	return m, nil
}
