// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"

	"github.com/staranto/galleryctl/internal/cacheutil"
)

// fileSubdir keeps storage items apart from anything else in the cache dir.
var fileSubdir = []string{"kv"}

// File stores each item as a file under the galleryctl cache directory. It
// honors GALLERY_CACHE and GALLERY_CACHE_DIR through cacheutil; when caching
// is disabled reads miss and writes are dropped.
type File struct{}

func NewFile() *File { return &File{} }

func (f *File) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := cacheutil.Read(fileSubdir, key)
	if !ok {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (f *File) SetItem(_ context.Context, key string, value []byte) error {
	return cacheutil.Write(fileSubdir, key, value)
}

func (f *File) RemoveItem(_ context.Context, key string) error {
	return cacheutil.Remove(fileSubdir, key)
}

func (f *File) Close() error { return nil }
