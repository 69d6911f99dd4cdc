// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package organizer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/layout"
)

type fakeUpdater struct {
	err   error
	calls int
	id    string
	draft Draft
}

func (f *fakeUpdater) UpdateCollectionNfts(_ context.Context, id string, d Draft) error {
	f.calls++
	f.id = id
	f.draft = d
	return f.err
}

func seq() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ws-%d", n)
	}
}

func collection() gallery.Collection {
	return gallery.Collection{
		ID: "c1",
		Nfts: []gallery.Nft{
			{ID: "A"}, {ID: "B"}, {ID: "C"},
		},
		Layout: gallery.Layout{Columns: 4, Whitespace: []int{1}},
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"B", "C", "A", "D"}},
		{"backward", 3, 1, []string{"A", "D", "B", "C"}},
		{"same", 1, 1, []string{"A", "B", "C", "D"}},
		{"clamp high", 0, 99, []string{"B", "C", "D", "A"}},
		{"clamp low", 2, -5, []string{"C", "A", "B", "D"}},
		{"bad from", 7, 0, []string{"A", "B", "C", "D"}},
	}

	in := []string{"A", "B", "C", "D"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Move(in, tt.from, tt.to)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Move() mismatch (-want +got):\n%s", diff)
			}
		})
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, in, "input is not modified")
	assert.Empty(t, Move([]int{}, 0, 0))
}

func TestNewForCollection(t *testing.T) {
	o := NewForCollection(collection())
	assert.Equal(t, Staging, o.State())
	assert.Equal(t, "c1", o.CollectionID())
	assert.Equal(t, 4, o.Columns())
	assert.Equal(t, []string{"A", "blank-0", "B", "C"}, gallery.IDs(o.Items()))
	assert.Equal(t, gallery.Layout{Columns: 4, Whitespace: []int{1}}, o.Layout())

	c := collection()
	c.Layout.Columns = 0
	assert.Equal(t, layout.DefaultColumns, NewForCollection(c).Columns())
}

func TestNew(t *testing.T) {
	o := New(WithIDGenerator(seq()))
	assert.Equal(t, Empty, o.State())
	assert.Equal(t, layout.DefaultColumns, o.Columns())
	assert.Empty(t, o.Items())

	require.NoError(t, o.Stage(gallery.Nft{ID: "A"}))
	assert.Equal(t, Staging, o.State())

	err := o.Stage(gallery.Nft{ID: "A"})
	assert.ErrorIs(t, err, ErrDuplicateItem)
	assert.Len(t, o.Items(), 1)
}

func TestStageWhitespace(t *testing.T) {
	o := NewForCollection(collection(), WithIDGenerator(seq()))

	id, err := o.StageWhitespace(0)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", id)

	_, err = o.StageWhitespace(100)
	require.NoError(t, err)

	assert.Equal(t, []string{"ws-1", "A", "blank-0", "B", "C", "ws-2"}, gallery.IDs(o.Items()))
	assert.Equal(t, []int{0, 1, 3}, o.Layout().Whitespace)

	dup := NewForCollection(collection(), WithIDGenerator(func() string { return "blank-0" }))
	_, err = dup.StageWhitespace(0)
	assert.ErrorIs(t, err, ErrDuplicateItem)
}

func TestUnstageAndReorder(t *testing.T) {
	o := NewForCollection(collection())

	require.NoError(t, o.Reorder("C", 0))
	assert.Equal(t, []string{"C", "A", "blank-0", "B"}, gallery.IDs(o.Items()))

	require.NoError(t, o.Reorder("C", 42))
	assert.Equal(t, []string{"A", "blank-0", "B", "C"}, gallery.IDs(o.Items()))

	require.NoError(t, o.Unstage("blank-0"))
	assert.Equal(t, []string{"A", "B", "C"}, gallery.IDs(o.Items()))
	assert.Equal(t, []int{}, o.Layout().Whitespace)

	assert.ErrorIs(t, o.Unstage("Z"), ErrItemNotFound)
	assert.ErrorIs(t, o.Reorder("Z", 0), ErrItemNotFound)
}

func TestColumns(t *testing.T) {
	c := collection()
	c.Layout.Columns = 1
	o := NewForCollection(c)

	assert.False(t, o.CanDecrement())
	assert.False(t, o.DecrementColumns())
	assert.Equal(t, 1, o.Columns())

	for range 10 {
		o.IncrementColumns()
	}
	assert.Equal(t, layout.MaxColumns, o.Columns())
	assert.False(t, o.CanIncrement())
	assert.False(t, o.IncrementColumns())
	assert.Equal(t, layout.MaxColumns, o.Columns())

	assert.True(t, o.DecrementColumns())
	assert.Equal(t, 4, o.Columns())

	require.NoError(t, o.SetColumns(2))
	assert.Equal(t, 2, o.Columns())
	assert.ErrorIs(t, o.SetColumns(6), ErrInvalidColumns)
	assert.ErrorIs(t, o.SetColumns(0), ErrInvalidColumns)

	narrow := New(WithBounds(layout.Bounds{Min: 1, Max: 2}))
	assert.Equal(t, 2, narrow.Columns(), "default is clamped to the bounds")
}

func TestCommit_EditMode(t *testing.T) {
	u := &fakeUpdater{err: errors.New("server error")}
	o := NewForCollection(collection(), WithUpdater(u))
	require.NoError(t, o.Reorder("C", 0))

	err := o.Commit(context.Background())
	assert.EqualError(t, err, "server error")
	assert.Equal(t, Staging, o.State(), "failed commit is retryable")

	u.err = nil
	require.NoError(t, o.Commit(context.Background()))
	assert.Equal(t, Committed, o.State())
	assert.Equal(t, 2, u.calls)
	assert.Equal(t, "c1", u.id)
	assert.Equal(t, []string{"C", "A", "B"}, u.draft.NftIDs())
	assert.Equal(t, gallery.Layout{Columns: 4, Whitespace: []int{2}}, u.draft.Layout)

	assert.ErrorIs(t, o.Stage(gallery.Nft{ID: "D"}), ErrNotEditable)
	assert.ErrorIs(t, o.Commit(context.Background()), ErrNotEditable)
	assert.False(t, o.IncrementColumns())
}

func TestCommit_CreateMode(t *testing.T) {
	var got Draft
	var seen State
	var o *Organizer
	o = New(WithCreateFlow(func(_ context.Context, d Draft) error {
		got = d
		seen = o.State()
		return nil
	}))
	require.NoError(t, o.Stage(gallery.Nft{ID: "A"}))
	_, err := o.StageWhitespace(1)
	require.NoError(t, err)

	require.NoError(t, o.Commit(context.Background()))
	assert.Equal(t, Committing, seen)
	assert.Equal(t, Committed, o.State())
	assert.Equal(t, []string{"A"}, got.NftIDs())
	assert.Equal(t, []int{1}, got.Layout.Whitespace)
}

func TestCommit_Missing(t *testing.T) {
	assert.ErrorIs(t, NewForCollection(collection()).Commit(context.Background()), ErrNoUpdater)
	assert.ErrorIs(t, New().Commit(context.Background()), ErrNoCreateFlow)
}

func TestDiscard(t *testing.T) {
	o := NewForCollection(collection())
	require.NoError(t, o.Discard())
	assert.Equal(t, Discarded, o.State())
	assert.Equal(t, "discarded", o.State().String())
	assert.ErrorIs(t, o.Discard(), ErrNotEditable)
	assert.ErrorIs(t, o.Reorder("A", 1), ErrNotEditable)
}
