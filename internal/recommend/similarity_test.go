// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package recommend

import (
	"math"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{
			name: "identical non-empty sets",
			a:    []string{"p1", "p2", "p3"},
			b:    []string{"p1", "p2", "p3"},
			want: 1.0,
		},
		{
			name: "disjoint sets",
			a:    []string{"p1", "p2"},
			b:    []string{"p3", "p4"},
			want: 0.0,
		},
		{
			name: "partial overlap",
			a:    []string{"p1", "p2"},
			b:    []string{"p1", "p2", "p3"},
			want: 2.0 / 3.0,
		},
		{
			name: "single common element",
			a:    []string{"p1"},
			b:    []string{"p1", "p2", "p3", "p4"},
			want: 0.25,
		},
		{
			name: "left empty",
			a:    nil,
			b:    []string{"p1"},
			want: 0.0,
		},
		{
			name: "right empty",
			a:    []string{"p1"},
			b:    nil,
			want: 0.0,
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(SetOf(tt.a), SetOf(tt.b))
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}

			// Symmetry
			rev := Jaccard(SetOf(tt.b), SetOf(tt.a))
			if got != rev {
				t.Errorf("Jaccard not symmetric: %v vs %v", got, rev)
			}

			// Range
			if got < 0 || got > 1 {
				t.Errorf("Jaccard() = %v, outside [0,1]", got)
			}
		})
	}
}

func TestSetOfDeduplicates(t *testing.T) {
	set := SetOf([]string{"p1", "p1", "p2"})
	if len(set) != 2 {
		t.Errorf("SetOf() size = %d, want 2", len(set))
	}
}
