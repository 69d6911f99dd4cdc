// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"strings"
	"time"
)

// Reserved key markers.
const (
	// InflightPrefix tags a request that has been issued but not resolved.
	InflightPrefix = "$req$"
	// ErrorPrefix tags the last error seen for a key.
	ErrorPrefix = "$err$"
	// CurrentUserPath is never persisted. A stale or empty current-user
	// response must not survive a restart, since the server answers 204 when
	// the session cookie is invalid.
	CurrentUserPath = "/users/get/current"
)

// StorageKey is the single durable item holding the whole cache.
const StorageKey = "app-cache"

// Entry is a cached response.
type Entry struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"ts"`
	// Oversized marks a sentinel left in place of a payload that was too
	// large to keep. A sentinel is a miss for readers.
	Oversized bool   `json:"oversized,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Age is how long ago the entry was written.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Usable reports whether the entry holds data a reader can be served.
func (e Entry) Usable() bool {
	return !e.Oversized && e.Error == ""
}

func InflightKey(key string) string { return InflightPrefix + key }

func ErrorKey(key string) string { return ErrorPrefix + key }

// Persistable reports whether key may be written to durable storage.
func Persistable(key string) bool {
	return !strings.Contains(key, InflightPrefix) &&
		!strings.Contains(key, ErrorPrefix) &&
		!strings.Contains(key, CurrentUserPath)
}
