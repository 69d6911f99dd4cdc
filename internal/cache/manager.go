// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/galleryctl/internal/storage"
)

// Manager owns the in-memory entry map and its durable copy. Only Flush
// writes to storage.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]Entry
	store   storage.Storage
	reset   bool
}

// NewManager returns an empty manager backed by store. A nil store keeps the
// cache in memory only.
func NewManager(store storage.Storage) *Manager {
	return &Manager{
		entries: make(map[string]Entry),
		store:   store,
	}
}

// Load replaces the in-memory map with the durable copy. Missing or
// malformed data leaves the map empty; nothing is returned to the caller.
func (m *Manager) Load(ctx context.Context) {
	entries := make(map[string]Entry)
	defer func() {
		m.mu.Lock()
		m.entries = entries
		m.mu.Unlock()
	}()

	if m.store == nil {
		return
	}

	raw, ok, err := m.store.GetItem(ctx, StorageKey)
	if err != nil {
		log.WithError(err).Warn("failed to read app cache, starting empty")
		return
	}
	if !ok || len(raw) == 0 {
		log.Debug("no app cache in storage")
		return
	}

	var pairs [][]json.RawMessage
	if err := json.Unmarshal(raw, &pairs); err != nil {
		log.WithError(err).Warn("malformed app cache, starting empty")
		return
	}

	for _, pair := range pairs {
		if len(pair) != 2 {
			continue
		}
		var key string
		var entry Entry
		if err := json.Unmarshal(pair[0], &key); err != nil {
			continue
		}
		if err := json.Unmarshal(pair[1], &entry); err != nil {
			continue
		}
		entries[key] = entry
	}

	log.WithField("entries", len(entries)).Debug("app cache loaded")
}

// Flush writes every persistable entry to storage. It does nothing after
// Reset. Failures are logged and swallowed.
func (m *Manager) Flush(ctx context.Context) {
	m.mu.RLock()
	if m.reset || m.store == nil {
		m.mu.RUnlock()
		log.Debug("app cache flush skipped")
		return
	}

	keys := make([]string, 0, len(m.entries))
	for k, e := range m.entries {
		if !Persistable(k) || e.Oversized {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]any, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]any{k, m.entries[k]})
	}
	m.mu.RUnlock()

	raw, err := json.Marshal(pairs)
	if err != nil {
		log.WithError(err).Warn("failed to encode app cache")
		return
	}

	if err := m.store.SetItem(ctx, StorageKey, raw); err != nil {
		log.WithError(err).Warn("failed to write app cache")
		return
	}

	log.WithFields(log.Fields{
		"entries": len(pairs),
		"size":    humanize.Bytes(uint64(len(raw))),
	}).Debug("app cache flushed")
}

// Reset empties the cache, removes the durable copy and disables Flush for
// the rest of the process.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	m.entries = make(map[string]Entry)
	m.reset = true
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	if err := m.store.RemoveItem(ctx, StorageKey); err != nil {
		log.WithError(err).Warn("failed to remove app cache")
	}
}

// IsReset reports whether Reset has been called.
func (m *Manager) IsReset() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reset
}

func (m *Manager) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *Manager) Set(key string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// DeleteFunc removes every key for which match returns true, along with its
// in-flight and error markers, and returns the number of keys removed.
func (m *Manager) DeleteFunc(match func(key string) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k := range m.entries {
		base := strings.TrimPrefix(strings.TrimPrefix(k, InflightPrefix), ErrorPrefix)
		if match(base) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Keys returns all keys, markers included, sorted.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
