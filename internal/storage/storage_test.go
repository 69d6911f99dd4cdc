// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the common contract against any driver.
func exercise(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, "app-cache")
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should miss")

	require.NoError(t, s.SetItem(ctx, "app-cache", []byte(`[["k1",{"data":1}]]`)))
	got, ok, err := s.GetItem(ctx, "app-cache")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[["k1",{"data":1}]]`, string(got))

	require.NoError(t, s.SetItem(ctx, "app-cache", []byte(`[]`)))
	got, _, err = s.GetItem(ctx, "app-cache")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "set overwrites")

	require.NoError(t, s.RemoveItem(ctx, "app-cache"))
	_, ok, err = s.GetItem(ctx, "app-cache")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.RemoveItem(ctx, "app-cache"), "removing a missing key")
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exercise(t, s)
}

func TestFile(t *testing.T) {
	t.Setenv("GALLERY_CACHE_DIR", t.TempDir())
	t.Setenv("GALLERY_CACHE", "")
	s := NewFile()
	defer s.Close()
	exercise(t, s)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "app-cache.db"))
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestSQLite_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GALLERY_CACHE_DIR", dir)

	s, err := OpenSQLite(context.Background(), "")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetItem(context.Background(), "k", []byte("v")))
	assert.FileExists(t, filepath.Join(dir, "app-cache.db"))
}

func TestNew(t *testing.T) {
	t.Setenv("GALLERY_CACHE_DIR", t.TempDir())

	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr error
	}{
		{name: "default is file", opts: Options{}, want: &File{}},
		{name: "memory", opts: Options{Driver: DriverMemory}, want: &Memory{}},
		{name: "sqlite", opts: Options{Driver: DriverSQLite, SQLitePath: ":memory:"}, want: &SQLite{}},
		{name: "unknown", opts: Options{Driver: "floppy"}, wantErr: ErrUnknownStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(context.Background(), tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: DriverS3})
	assert.Error(t, err)
}
