// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package organizer holds the staged arrangement of a collection while it is
// being edited or created. It has a single caller and no locking.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/layout"
)

type State int

const (
	Empty State = iota
	Staging
	Committing
	Committed
	Discarded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Staging:
		return "staging"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrDuplicateItem  = errors.New("item already staged")
	ErrItemNotFound   = errors.New("item not staged")
	ErrNotEditable    = errors.New("organizer is no longer editable")
	ErrInvalidColumns = errors.New("columns out of range")
	ErrNoUpdater      = errors.New("no collection updater configured")
	ErrNoCreateFlow   = errors.New("no create flow configured")
)

// Draft is the staged state handed to whoever persists it.
type Draft struct {
	Nfts   []gallery.Nft
	Layout gallery.Layout
}

// NftIDs returns the ids of the staged nfts in order.
func (d Draft) NftIDs() []string {
	ids := make([]string, len(d.Nfts))
	for i, n := range d.Nfts {
		ids[i] = n.ID
	}
	return ids
}

// Updater saves an existing collection.
type Updater interface {
	UpdateCollectionNfts(ctx context.Context, collectionID string, d Draft) error
}

// CreateFlow takes over a new collection. It decides how, and whether, the
// draft is persisted.
type CreateFlow func(ctx context.Context, d Draft) error

type Organizer struct {
	state        State
	collectionID string
	items        []gallery.Item
	columns      int

	bounds  layout.Bounds
	updater Updater
	create  CreateFlow
	newID   func() string
}

type Option func(*Organizer)

func WithBounds(b layout.Bounds) Option { return func(o *Organizer) { o.bounds = b } }

func WithUpdater(u Updater) Option { return func(o *Organizer) { o.updater = u } }

func WithCreateFlow(f CreateFlow) Option { return func(o *Organizer) { o.create = f } }

// WithIDGenerator sets how new whitespace blocks are named.
func WithIDGenerator(fn func() string) Option { return func(o *Organizer) { o.newID = fn } }

func newOrganizer(opts []Option) *Organizer {
	o := &Organizer{
		bounds:  layout.DefaultBounds,
		columns: layout.DefaultColumns,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.columns = o.bounds.Clamp(o.columns)
	return o
}

// New starts an empty organizer for a collection that does not exist yet.
func New(opts ...Option) *Organizer {
	return newOrganizer(opts)
}

// NewForCollection seeds an organizer with c's items and layout.
func NewForCollection(c gallery.Collection, opts ...Option) *Organizer {
	o := newOrganizer(opts)
	o.collectionID = c.ID
	o.items = layout.InterleaveWhitespace(c.Nfts, c.Layout.Whitespace)
	o.columns = o.bounds.Resolve(c.Layout.Columns, o.bounds.Clamp(layout.DefaultColumns))
	o.state = Staging
	return o
}

func (o *Organizer) State() State { return o.state }

// CollectionID is empty in create mode.
func (o *Organizer) CollectionID() string { return o.collectionID }

func (o *Organizer) Columns() int { return o.columns }

// Items returns a copy of the staged sequence.
func (o *Organizer) Items() []gallery.Item { return slices.Clone(o.items) }

// Index returns the position of id, or -1.
func (o *Organizer) Index(id string) int {
	return slices.IndexFunc(o.items, func(it gallery.Item) bool { return it.ItemID() == id })
}

// Layout derives the layout from the staged sequence.
func (o *Organizer) Layout() gallery.Layout {
	_, positions := layout.SplitWhitespace(o.items)
	return gallery.Layout{Columns: o.columns, Whitespace: positions}
}

func (o *Organizer) Draft() Draft {
	nfts, positions := layout.SplitWhitespace(o.items)
	return Draft{Nfts: nfts, Layout: gallery.Layout{Columns: o.columns, Whitespace: positions}}
}

func (o *Organizer) editable() error {
	if o.state != Empty && o.state != Staging {
		return fmt.Errorf("%w: %s", ErrNotEditable, o.state)
	}
	return nil
}

// Stage appends item.
func (o *Organizer) Stage(item gallery.Item) error {
	if err := o.editable(); err != nil {
		return err
	}
	if o.Index(item.ItemID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ItemID())
	}
	o.items = append(o.items, item)
	o.state = Staging
	return nil
}

// StageWhitespace inserts a new whitespace block at index, clamped to the
// sequence, and returns its id.
func (o *Organizer) StageWhitespace(index int) (string, error) {
	if err := o.editable(); err != nil {
		return "", err
	}
	block := gallery.WhitespaceBlock{ID: o.newID()}
	if o.Index(block.ID) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateItem, block.ID)
	}
	index = min(max(index, 0), len(o.items))
	o.items = slices.Insert(o.items, index, gallery.Item(block))
	o.state = Staging
	return block.ID, nil
}

func (o *Organizer) Unstage(id string) error {
	if err := o.editable(); err != nil {
		return err
	}
	i := o.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	o.items = slices.Delete(o.items, i, i+1)
	return nil
}

// Reorder moves id to newIndex, clamped to the sequence.
func (o *Organizer) Reorder(id string, newIndex int) error {
	if err := o.editable(); err != nil {
		return err
	}
	i := o.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	o.items = Move(o.items, i, newIndex)
	return nil
}

// Move returns a copy of seq with the element at from moved to to. The
// relative order of every other element is kept. to is clamped; an invalid
// from returns an unchanged copy.
func Move[T any](seq []T, from, to int) []T {
	out := slices.Clone(seq)
	if from < 0 || from >= len(out) {
		return out
	}
	to = min(max(to, 0), len(out)-1)
	if from == to {
		return out
	}
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

func (o *Organizer) CanIncrement() bool { return o.editable() == nil && o.columns < o.bounds.Max }

func (o *Organizer) CanDecrement() bool { return o.editable() == nil && o.columns > o.bounds.Min }

// IncrementColumns adds a column. It reports false and does nothing at the
// upper bound.
func (o *Organizer) IncrementColumns() bool {
	if !o.CanIncrement() {
		return false
	}
	o.columns++
	return true
}

// DecrementColumns removes a column. It reports false and does nothing at the
// lower bound.
func (o *Organizer) DecrementColumns() bool {
	if !o.CanDecrement() {
		return false
	}
	o.columns--
	return true
}

// SetColumns sets the column count directly.
func (o *Organizer) SetColumns(n int) error {
	if err := o.editable(); err != nil {
		return err
	}
	if !o.bounds.Contains(n) {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidColumns, n, o.bounds.Min, o.bounds.Max)
	}
	o.columns = n
	return nil
}

// Commit persists the staged state. An existing collection is saved through
// the Updater; a new one is handed to the CreateFlow. On failure the
// organizer returns to Staging so the commit can be retried.
func (o *Organizer) Commit(ctx context.Context) error {
	if err := o.editable(); err != nil {
		return err
	}

	draft := o.Draft()
	var commit func() error
	switch {
	case o.collectionID != "" && o.updater == nil:
		return ErrNoUpdater
	case o.collectionID != "":
		commit = func() error { return o.updater.UpdateCollectionNfts(ctx, o.collectionID, draft) }
	case o.create == nil:
		return ErrNoCreateFlow
	default:
		commit = func() error { return o.create(ctx, draft) }
	}

	o.state = Committing
	if err := commit(); err != nil {
		o.state = Staging
		log.WithError(err).WithField("collection", o.collectionID).Debug("commit failed")
		return err
	}
	o.state = Committed
	log.WithFields(log.Fields{
		"collection": o.collectionID,
		"nfts":       len(draft.Nfts),
		"columns":    draft.Layout.Columns,
	}).Info("collection committed")
	return nil
}

// Discard abandons the session.
func (o *Organizer) Discard() error {
	if err := o.editable(); err != nil {
		return err
	}
	o.state = Discarded
	return nil
}
