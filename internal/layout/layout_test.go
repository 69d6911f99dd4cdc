// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package layout

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/galleryctl/internal/gallery"
)

func nfts(ids ...string) []gallery.Nft {
	out := make([]gallery.Nft, len(ids))
	for i, id := range ids {
		out[i] = gallery.Nft{ID: id}
	}
	return out
}

func TestResolveColumns(t *testing.T) {
	for n := MinColumns; n <= MaxColumns; n++ {
		assert.Equal(t, n, ResolveColumns(n, DefaultColumns))
	}
	for _, n := range []int{-1, 0, 6, 100} {
		assert.Equal(t, DefaultColumns, ResolveColumns(n, DefaultColumns), "columns=%d", n)
	}
}

func TestResolveColumnsValue(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want int
	}{
		{"int", 4, 4},
		{"int64", int64(2), 2},
		{"integral float", 5.0, 5},
		{"fraction", 2.5, DefaultColumns},
		{"json number", json.Number("1"), 1},
		{"json fraction", json.Number("1.5"), DefaultColumns},
		{"string", "4", DefaultColumns},
		{"nil", nil, DefaultColumns},
		{"too large", 6, DefaultColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColumnsValue(tt.v, DefaultColumns))
		})
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: 2, Max: 4}
	assert.Equal(t, 2, b.Clamp(0))
	assert.Equal(t, 4, b.Clamp(9))
	assert.Equal(t, 3, b.Clamp(3))
	assert.Equal(t, 7, b.Resolve(5, 7))
}

func TestInterleaveWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		positions []int
		want      []string
	}{
		{"single", []string{"A", "B", "C"}, []int{1}, []string{"A", "blank-0", "B", "C"}},
		{"none", []string{"A", "B"}, nil, []string{"A", "B"}},
		{"front", []string{"A", "B"}, []int{0}, []string{"blank-0", "A", "B"}},
		{"end", []string{"A", "B"}, []int{2}, []string{"A", "B", "blank-0"}},
		{"beyond end", []string{"A", "B"}, []int{7, 5}, []string{"A", "B", "blank-0", "blank-1"}},
		{"negative", []string{"A"}, []int{-3}, []string{"blank-0", "A"}},
		{"unsorted and repeated", []string{"A", "B", "C"}, []int{2, 1, 1}, []string{"A", "blank-0", "blank-1", "B", "blank-2", "C"}},
		{"empty collection", nil, []int{0, 3}, []string{"blank-0", "blank-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gallery.IDs(InterleaveWhitespace(nfts(tt.ids...), tt.positions))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("InterleaveWhitespace() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInterleaveWhitespace_Idempotent(t *testing.T) {
	in := nfts("A", "B", "C", "D")
	positions := []int{3, 0, 9, 2}

	first := InterleaveWhitespace(in, positions)
	again := InterleaveWhitespace(in, positions)
	assert.Equal(t, first, again)

	// Re-applying to its own output, placeholders treated as non-items.
	split, splitPositions := SplitWhitespace(first)
	assert.Equal(t, in, split)
	assert.Equal(t, []int{0, 2, 3, 4}, splitPositions)
	assert.Equal(t, first, InterleaveWhitespace(split, splitPositions))
}

func TestSplitWhitespace_Empty(t *testing.T) {
	n, p := SplitWhitespace(nil)
	assert.Empty(t, n)
	assert.Equal(t, []int{}, p)
}

func TestItemsForDisplay(t *testing.T) {
	c := gallery.Collection{
		Nfts:   nfts("A", "B"),
		Layout: gallery.Layout{Columns: 9, Whitespace: []int{1}},
	}

	assert.Equal(t, []string{"A", "blank-0", "B"}, gallery.IDs(ItemsForDisplay(c, Grid)))
	assert.Equal(t, []string{"A", "B"}, gallery.IDs(ItemsForDisplay(c, List)))
	assert.Equal(t, DefaultColumns, Columns(c, Grid))
	assert.Equal(t, 1, Columns(c, List))

	m, err := ParseDisplayMode("list")
	require.NoError(t, err)
	assert.Equal(t, List, m)
	assert.Equal(t, "list", m.String())
	_, err = ParseDisplayMode("mosaic")
	assert.Error(t, err)
}
