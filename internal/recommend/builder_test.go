// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func tempSnapshots(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := NewSnapshotStore(filepath.Join(t.TempDir(), "popularity_model.json"))
	if err != nil {
		t.Fatalf("NewSnapshotStore() error = %v", err)
	}
	return s
}

func TestBuildRanksByQuantity(t *testing.T) {
	source := &fakeStore{
		aggregates: []PurchaseAggregate{
			{ProductID: "p3", CategoryID: "c2", Quantity: 1},
			{ProductID: "p1", CategoryID: "c1", Quantity: 10},
			{ProductID: "p2", CategoryID: "c1", Quantity: 5},
			{ProductID: "p5", CategoryID: "c2", Quantity: 1},
			{ProductID: "p4", CategoryID: "c2", Quantity: 7},
		},
	}
	b := NewBuilder(source, tempSnapshots(t), BuilderConfig{GlobalTopN: 3, CategoryTopN: 2}, zerolog.Nop())

	model, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if want := []string{"p1", "p4", "p2"}; !reflect.DeepEqual(model.GlobalBestSellers, want) {
		t.Errorf("GlobalBestSellers = %v, want %v", model.GlobalBestSellers, want)
	}
	wantCats := map[string][]string{
		"c1": {"p1", "p2"},
		"c2": {"p4", "p3"}, // p3 before p5: equal quantity breaks ties by product ID
	}
	if !reflect.DeepEqual(model.CategoryBestSellers, wantCats) {
		t.Errorf("CategoryBestSellers = %v, want %v", model.CategoryBestSellers, wantCats)
	}
}

func TestBuildTwoCategoryCatalog(t *testing.T) {
	// Five products across two categories, three with purchases in the
	// window: the global ranking follows quantity and unpurchased
	// products stay out of the model entirely.
	source := &fakeStore{
		aggregates: []PurchaseAggregate{
			{ProductID: "P1", CategoryID: "C1", Quantity: 5},
			{ProductID: "P2", CategoryID: "C1", Quantity: 3},
			{ProductID: "P4", CategoryID: "C2", Quantity: 1},
		},
	}
	b := NewBuilder(source, tempSnapshots(t), BuilderConfig{}, zerolog.Nop())

	model, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if want := []string{"P1", "P2", "P4"}; !reflect.DeepEqual(model.GlobalBestSellers, want) {
		t.Errorf("GlobalBestSellers = %v, want %v", model.GlobalBestSellers, want)
	}
	wantCats := map[string][]string{
		"C1": {"P1", "P2"},
		"C2": {"P4"},
	}
	if !reflect.DeepEqual(model.CategoryBestSellers, wantCats) {
		t.Errorf("CategoryBestSellers = %v, want %v", model.CategoryBestSellers, wantCats)
	}
}

func TestBuildTieBreakIsDeterministic(t *testing.T) {
	source := &fakeStore{
		aggregates: []PurchaseAggregate{
			{ProductID: "pb", CategoryID: "c1", Quantity: 4},
			{ProductID: "pa", CategoryID: "c1", Quantity: 4},
			{ProductID: "pc", CategoryID: "c1", Quantity: 4},
		},
	}
	b := NewBuilder(source, tempSnapshots(t), BuilderConfig{}, zerolog.Nop())

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []string{"pa", "pb", "pc"}
	if !reflect.DeepEqual(first.GlobalBestSellers, want) {
		t.Errorf("GlobalBestSellers = %v, want %v", first.GlobalBestSellers, want)
	}

	// Re-running over the same rows yields an identical model.
	second, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() second run error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat build differs: %v vs %v", first, second)
	}
}

func TestBuildColdStartSeedsFromRecentProducts(t *testing.T) {
	source := &fakeStore{
		recent: []ProductRef{
			{ID: "p2", CategoryID: "c1"},
			{ID: "p1", CategoryID: "c1"},
			{ID: "p3", CategoryID: ""},
		},
	}
	b := NewBuilder(source, tempSnapshots(t), BuilderConfig{}, zerolog.Nop())

	model, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Uniform score, so product-ID order; uncategorized products appear
	// globally but never in a category list.
	if want := []string{"p1", "p2", "p3"}; !reflect.DeepEqual(model.GlobalBestSellers, want) {
		t.Errorf("GlobalBestSellers = %v, want %v", model.GlobalBestSellers, want)
	}
	if want := map[string][]string{"c1": {"p1", "p2"}}; !reflect.DeepEqual(model.CategoryBestSellers, want) {
		t.Errorf("CategoryBestSellers = %v, want %v", model.CategoryBestSellers, want)
	}
}

func TestBuildEmptyCatalogYieldsEmptyModel(t *testing.T) {
	b := NewBuilder(&fakeStore{}, tempSnapshots(t), BuilderConfig{}, zerolog.Nop())

	model, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !model.IsEmpty() {
		t.Errorf("model = %v, want empty", model)
	}
}

func TestBuildSourceFailureLeavesSnapshotIntact(t *testing.T) {
	snapshots := tempSnapshots(t)
	prior := &Model{GlobalBestSellers: []string{"old"}, CategoryBestSellers: map[string][]string{}}
	if err := snapshots.Save(prior); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	b := NewBuilder(&fakeStore{failAggregates: errStoreDown}, snapshots, BuilderConfig{}, zerolog.Nop())
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("Build() error = nil, want aggregate failure")
	}

	loaded, err := snapshots.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, prior) {
		t.Errorf("snapshot = %v, want prior model untouched", loaded)
	}
}

func TestBuildPersistsSnapshot(t *testing.T) {
	snapshots := tempSnapshots(t)
	source := &fakeStore{
		aggregates: []PurchaseAggregate{{ProductID: "p1", CategoryID: "c1", Quantity: 2}},
	}
	b := NewBuilder(source, snapshots, BuilderConfig{}, zerolog.Nop())

	built, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	loaded, err := snapshots.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(built, loaded) {
		t.Errorf("snapshot = %v, want %v", loaded, built)
	}
}

func TestBuildWindowBoundary(t *testing.T) {
	var gotSince time.Time
	source := &windowStore{fakeStore: &fakeStore{}, observe: func(since time.Time) { gotSince = since }}

	b := NewBuilder(source, tempSnapshots(t), BuilderConfig{WindowDays: 7}, zerolog.Nop())
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := fixed.AddDate(0, 0, -7); !gotSince.Equal(want) {
		t.Errorf("since = %v, want %v", gotSince, want)
	}
}

type windowStore struct {
	*fakeStore
	observe func(since time.Time)
}

func (w *windowStore) PurchaseAggregates(ctx context.Context, since time.Time) ([]PurchaseAggregate, error) {
	w.observe(since)
	return w.fakeStore.PurchaseAggregates(ctx, since)
}
