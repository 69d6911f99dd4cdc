// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swr

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/galleryctl/internal/cache"
)

// EnsureLatestPath is always revalidated by the default chain. The gallery
// listing is what users expect to see updated after editing.
const EnsureLatestPath = "/galleries/user_get"

// EnsureLatest flags matching reads for revalidation.
func EnsureLatest(match func(key string) bool) Middleware {
	return func(next Hook) Hook {
		return func(ctx context.Context, req Request) Result {
			if match != nil && match(req.Key.String()) {
				req.Revalidate = true
			}
			return next(ctx, req)
		}
	}
}

// SuppressOversizedAssets keeps payloads larger than threshold out of the
// cache. The entry is replaced by an oversized sentinel, which readers treat
// as a miss and Flush never writes. The caller still gets the data.
// Revalidated results pass through the same check.
//
// The client's own base hook never stores an oversized payload in the first
// place; this stage covers hooks that do.
func SuppressOversizedAssets(m *cache.Manager, threshold uint64) Middleware {
	return suppressOversized(m, threshold, goDetached)
}

// spawner runs fn in the background and reports whether it started.
type spawner func(fn func(ctx context.Context)) bool

func goDetached(fn func(ctx context.Context)) bool {
	go fn(context.Background())
	return true
}

func suppressOversized(m *cache.Manager, threshold uint64, spawn spawner) Middleware {
	return func(next Hook) Hook {
		return func(ctx context.Context, req Request) Result {
			return suppress(m, threshold, spawn, req.Key.String(), next(ctx, req))
		}
	}
}

func oversized(threshold uint64, data []byte) bool {
	return threshold > 0 && uint64(len(data)) > threshold
}

func markOversized(m *cache.Manager, threshold uint64, key string, size int) {
	if e, ok := m.Get(key); ok && e.Oversized {
		return
	}
	m.Set(key, cache.Entry{Oversized: true, Timestamp: time.Now()})
	log.WithFields(log.Fields{
		"endpoint":  key,
		"size":      humanize.Bytes(uint64(size)),
		"threshold": humanize.Bytes(threshold),
	}).Info("oversized response not cached")
}

func suppress(m *cache.Manager, threshold uint64, spawn spawner, key string, res Result) Result {
	if res.Err == nil && oversized(threshold, res.Data) {
		markOversized(m, threshold, key, len(res.Data))
	}

	if res.Revalidated != nil {
		in := res.Revalidated
		out := make(chan Result, 1)
		started := spawn(func(context.Context) {
			defer close(out)
			if r, ok := <-in; ok {
				out <- suppress(m, threshold, spawn, key, r)
			}
		})
		if started {
			res.Revalidated = out
		}
	}
	return res
}

// DefaultStages is EnsureLatest innermost and SuppressOversizedAssets
// outermost, so size suppression also sees forced revalidations.
func DefaultStages(m *cache.Manager, opts Options) []Stage {
	return defaultStages(m, opts, goDetached)
}

func defaultStages(m *cache.Manager, opts Options, spawn spawner) []Stage {
	match := opts.AlwaysRevalidate
	if match == nil {
		match = MatchContains(EnsureLatestPath)
	}
	return []Stage{
		{Name: "ensure-latest", Wrap: EnsureLatest(match)},
		{Name: "suppress-oversized-assets", Wrap: suppressOversized(m, opts.OversizedThreshold, spawn)},
	}
}
