// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package layout computes how a collection is laid out: the column count and
// the placement of whitespace blocks among its nfts. Everything here is pure.
package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/staranto/galleryctl/internal/gallery"
)

const (
	MinColumns     = 1
	MaxColumns     = 5
	DefaultColumns = 3
)

// Bounds is an inclusive column range.
type Bounds struct {
	Min int
	Max int
}

var DefaultBounds = Bounds{Min: MinColumns, Max: MaxColumns}

func (b Bounds) Contains(n int) bool { return n >= b.Min && n <= b.Max }

func (b Bounds) Clamp(n int) int { return min(max(n, b.Min), b.Max) }

// Resolve returns requested when it is in range, else def.
func (b Bounds) Resolve(requested, def int) int {
	if b.Contains(requested) {
		return requested
	}
	return def
}

// ResolveColumns applies DefaultBounds.
func ResolveColumns(requested, def int) int {
	return DefaultBounds.Resolve(requested, def)
}

// ResolveColumnsValue is ResolveColumns for an untyped value, as decoded from
// JSON or YAML. Non-integers resolve to def.
func ResolveColumnsValue(v any, def int) int {
	n, ok := asInt(v)
	if !ok {
		return def
	}
	return ResolveColumns(n, def)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

// WhitespaceID names the n-th whitespace block of a sequence.
func WhitespaceID(n int) string { return fmt.Sprintf("blank-%d", n) }

// InterleaveWhitespace inserts a whitespace block before the nft at each
// position. Positions index the nfts slice, not the result; positions past
// the end append, negative ones prepend. Block ids depend only on the inputs.
func InterleaveWhitespace(nfts []gallery.Nft, positions []int) []gallery.Item {
	sorted := normalize(positions, len(nfts))
	items := make([]gallery.Item, 0, len(nfts)+len(sorted))

	w := 0
	for i := 0; i <= len(nfts); i++ {
		for w < len(sorted) && sorted[w] == i {
			items = append(items, gallery.WhitespaceBlock{ID: WhitespaceID(w)})
			w++
		}
		if i < len(nfts) {
			items = append(items, nfts[i])
		}
	}
	return items
}

// SplitWhitespace is the inverse of InterleaveWhitespace: it returns the nfts
// in order and, for each whitespace block, the number of nfts before it.
func SplitWhitespace(items []gallery.Item) ([]gallery.Nft, []int) {
	nfts := make([]gallery.Nft, 0, len(items))
	positions := []int{}
	for _, it := range items {
		switch v := it.(type) {
		case gallery.Nft:
			nfts = append(nfts, v)
		case *gallery.Nft:
			nfts = append(nfts, *v)
		default:
			positions = append(positions, len(nfts))
		}
	}
	return nfts, positions
}

func normalize(positions []int, n int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = min(max(p, 0), n)
	}
	slices.Sort(out)
	return out
}

// DisplayMode is how a collection is shown.
type DisplayMode int

const (
	Grid DisplayMode = iota
	List
)

func (m DisplayMode) String() string {
	if m == List {
		return "list"
	}
	return "grid"
}

// ParseDisplayMode accepts "grid" and "list".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "", "grid":
		return Grid, nil
	case "list":
		return List, nil
	default:
		return Grid, fmt.Errorf("invalid display mode %q", s)
	}
}

// ItemsForDisplay returns what to show for c. List mode never shows
// whitespace, whatever the layout says.
func ItemsForDisplay(c gallery.Collection, mode DisplayMode) []gallery.Item {
	if mode == List {
		return gallery.NftItems(c.Nfts)
	}
	return InterleaveWhitespace(c.Nfts, c.Layout.Whitespace)
}

// Columns is the column count to render c with.
func Columns(c gallery.Collection, mode DisplayMode) int {
	if mode == List {
		return 1
	}
	return ResolveColumns(c.Layout.Columns, DefaultColumns)
}
