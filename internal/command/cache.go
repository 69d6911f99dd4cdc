// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/galleryctl/internal/cache"
	"github.com/staranto/galleryctl/internal/cacheutil"
	"github.com/staranto/galleryctl/internal/meta"
)

// cacheRow describes one cache entry.
type cacheRow struct {
	Key       string `json:"key"`
	Bytes     int    `json:"bytes"`
	Size      string `json:"size"`
	Age       string `json:"age"`
	Timestamp string `json:"ts"`
	Oversized bool   `json:"oversized"`
	Error     string `json:"error,omitempty"`
}

func cacheRows(m *cache.Manager, now time.Time) []cacheRow {
	keys := m.Keys()
	sort.Strings(keys)

	rows := make([]cacheRow, 0, len(keys))
	for _, k := range keys {
		e, ok := m.Get(k)
		if !ok {
			continue
		}
		rows = append(rows, cacheRow{
			Key:       k,
			Bytes:     len(e.Data),
			Size:      humanize.Bytes(uint64(len(e.Data))),
			Age:       humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Oversized: e.Oversized,
			Error:     e.Error,
		})
	}
	return rows
}

// fileRow describes one file under the cache directory.
type fileRow struct {
	Path     string `json:"path"`
	Size     string `json:"size"`
	Modified string `json:"modified"`
}

// CacheShowCommandAction lists what the cache holds.
func CacheShowCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("files") {
		files, err := cacheutil.List()
		if err != nil {
			return err
		}
		rows := make([]fileRow, 0, len(files))
		for _, f := range files {
			rows = append(rows, fileRow{
				Path:     f.Path,
				Size:     humanize.Bytes(uint64(f.Size)),
				Modified: humanize.Time(f.ModTime),
			})
		}
		return Emit(rows, BuildAttrs(cmd, "path", "size", "modified"), cmd, "")
	}

	runner := &QueryActionRunner{
		CommandName:  "cache",
		DefaultAttrs: []string{"key", "size", "age", "oversized", "!bytes", "!error"},
		FetchFn: func(_ context.Context, _ *cli.Command, rt *Runtime) (any, error) {
			return cacheRows(rt.Cache, time.Now()), nil
		},
	}
	return runner.Run(ctx, cmd)
}

// CachePurgeCommandAction drops entries. With --match only matching keys go;
// with --hours, cache files older than that are removed from disk.
func CachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := Writer(cmd)
	if hours := cmd.Int("hours"); hours > 0 {
		if err := cacheutil.Purge(hours); err != nil {
			return err
		}
		fmt.Fprintf(w, "removed cache files older than %d hours\n", hours)
		return nil
	}

	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	match := cmd.String("match")
	n := rt.Client.Invalidate(func(key string) bool {
		return match == "" || strings.Contains(key, match)
	})
	fmt.Fprintf(w, "removed %d entries\n", n)
	return nil
}

// CacheNukeCommandAction empties the cache and its durable copy. Nothing is
// written back on exit.
func CacheNukeCommandAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	n := rt.Cache.Len()
	rt.Cache.Reset(ctx)
	fmt.Fprintf(Writer(cmd), "nuked %d entries\n", n)
	return nil
}

// CacheCommandBuilder constructs the "cache" command and its subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	show := (&QueryCommandBuilder{
		Name:      "show",
		Usage:     "list cached entries",
		UsageText: `galleryctl cache show [--files] [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "files",
				Usage: "list the files under the cache directory instead",
			},
		},
		Action: CacheShowCommandAction,
		Meta:   meta,
	}).Build()

	purge := (&QueryCommandBuilder{
		Name:      "purge",
		Usage:     "drop cached entries",
		UsageText: `galleryctl cache purge [--match text | --hours n]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "match",
				Usage: "only drop keys containing this text",
			},
			&cli.IntFlag{
				Name:  "hours",
				Usage: "remove cache files older than this many hours",
			},
		},
		Action: CachePurgeCommandAction,
		Meta:   meta,
	}).Build()

	nuke := (&QueryCommandBuilder{
		Name:      "nuke",
		Usage:     "empty the cache and its stored copy",
		UsageText: `galleryctl cache nuke`,
		Action:    CacheNukeCommandAction,
		Meta:      meta,
	}).Build()

	return &cli.Command{
		Name:     "cache",
		Usage:    "inspect and clear the local cache",
		Metadata: map[string]any{"meta": meta},
		Commands: []*cli.Command{show, purge, nuke},
	}
}
