// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/galleryctl/internal/config"
)

func TestMangleArguments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "galleryctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collection:
  defaults:
    - --output json
  grid:
    - --mode grid
    - -t
`), 0o600))
	t.Setenv("GALLERY_CFG", path)
	_, err := config.Load()
	require.NoError(t, err)
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults inserted after the command",
			args: []string{"galleryctl", "collection", "c1"},
			want: []string{"galleryctl", "collection", "--output", "json", "c1"},
		},
		{
			name: "named set replaces the marker",
			args: []string{"galleryctl", "collection", "c1", "@grid", "--list"},
			want: []string{"galleryctl", "collection", "c1", "--mode", "grid", "-t", "--list"},
		},
		{
			name: "unknown set adds nothing",
			args: []string{"galleryctl", "collection", "@nope", "c1"},
			want: []string{"galleryctl", "collection", "c1"},
		},
		{
			name: "no sets for command",
			args: []string{"galleryctl", "user", "alice"},
			want: []string{"galleryctl", "user", "alice"},
		},
		{
			name: "help wins",
			args: []string{"galleryctl", "collection", "c1", "-h"},
			want: []string{"galleryctl", "collection", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}
