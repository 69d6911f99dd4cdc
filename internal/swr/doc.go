// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package swr is the request pipeline between callers and the API. Reads go
// through a chain of hooks around a cache-aware base hook that serves fresh
// entries from the cache manager, serves stale ones while revalidating in the
// background, and deduplicates identical requests. The Client ties the chain
// to periodic and reconnect-driven revalidation.
package swr
