// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swr

import (
	"net/url"
	"strings"

	"github.com/staranto/galleryctl/internal/fetcher"
)

// Key identifies a read. Action labels errors and is not part of the cache
// key.
type Key struct {
	Path   string
	Action fetcher.Action
	Params map[string]string
}

// NewKey is a shorthand for a key with a single query parameter.
func NewKey(path string, action fetcher.Action, name, value string) Key {
	return Key{Path: path, Action: action, Params: map[string]string{name: value}}
}

// String is the cache key and request path: Path plus the encoded, sorted
// query parameters.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Path
	}
	v := url.Values{}
	for name, value := range k.Params {
		v.Set(name, value)
	}
	sep := "?"
	if strings.Contains(k.Path, "?") {
		sep = "&"
	}
	return k.Path + sep + v.Encode()
}

// MatchContains returns a matcher for cache keys containing any of substrs.
func MatchContains(substrs ...string) func(string) bool {
	return func(key string) bool {
		for _, s := range substrs {
			if strings.Contains(key, s) {
				return true
			}
		}
		return false
	}
}

// MatchPrefix returns a matcher for cache keys starting with prefix.
func MatchPrefix(prefix string) func(string) bool {
	return func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}
}
