// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "model.json"))
	if err != nil {
		t.Fatal(err)
	}

	m := &Model{
		GlobalBestSellers: []string{"p1", "p2", "p3"},
		CategoryBestSellers: map[string][]string{
			"c1": {"p1", "p2"},
			"c2": {"p3"},
		},
	}

	if err := store.Save(m); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(got.GlobalBestSellers) != 3 || got.GlobalBestSellers[0] != "p1" {
		t.Errorf("GlobalBestSellers = %v", got.GlobalBestSellers)
	}
	if len(got.CategoryBestSellers["c1"]) != 2 {
		t.Errorf("CategoryBestSellers[c1] = %v", got.CategoryBestSellers["c1"])
	}
}

func TestSnapshotDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	store, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(EmptyModel()); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Exactly the two top-level fields of the snapshot contract.
	doc := string(raw)
	if !strings.Contains(doc, `"global_best_sellers"`) {
		t.Errorf("document missing global_best_sellers: %s", doc)
	}
	if !strings.Contains(doc, `"category_best_sellers"`) {
		t.Errorf("document missing category_best_sellers: %s", doc)
	}
}

func TestSnapshotLoadMissing(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load() error = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshotLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o640); err != nil {
		t.Fatal(err)
	}

	store, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil || errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load() error = %v, want decode failure", err)
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "model.json"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(&Model{GlobalBestSellers: []string{"old"}, CategoryBestSellers: map[string][]string{}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&Model{GlobalBestSellers: []string{"new"}, CategoryBestSellers: map[string][]string{}}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.GlobalBestSellers) != 1 || got.GlobalBestSellers[0] != "new" {
		t.Errorf("GlobalBestSellers = %v, want [new]", got.GlobalBestSellers)
	}
}

func TestSnapshotNormalizesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o640); err != nil {
		t.Fatal(err)
	}

	store, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.GlobalBestSellers == nil || got.CategoryBestSellers == nil {
		t.Error("Load() returned nil collections for empty document")
	}
}
