// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swr

import "time"

const (
	DefaultRefreshInterval    = 5 * time.Minute
	DefaultDedupInterval      = 2 * time.Second
	DefaultSlowThreshold      = 3 * time.Second
	DefaultOversizedThreshold = 1_000_000
)

// Options tune a Client. Zero values take the defaults.
type Options struct {
	// RefreshInterval is both the background revalidation period and the age
	// after which an entry is served stale.
	RefreshInterval time.Duration
	// DedupInterval is how long after a request starts that another request
	// for the same key reuses its result instead of hitting the network.
	DedupInterval time.Duration
	// SlowThreshold is how long a request may run before OnSlow fires.
	SlowThreshold time.Duration
	// OversizedThreshold is the largest payload, in bytes, kept in the cache.
	OversizedThreshold uint64

	// AlwaysRevalidate matches keys that are refetched on every read.
	AlwaysRevalidate func(key string) bool
	// OnSlow receives the cache key of a slow request.
	OnSlow func(key string)
	// OnUnauthorized is called when the API answers 401.
	OnUnauthorized func()

	// Stages replaces DefaultStages.
	Stages []Stage
}

func (o Options) withDefaults() Options {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.DedupInterval <= 0 {
		o.DedupInterval = DefaultDedupInterval
	}
	if o.SlowThreshold <= 0 {
		o.SlowThreshold = DefaultSlowThreshold
	}
	if o.OversizedThreshold == 0 {
		o.OversizedThreshold = DefaultOversizedThreshold
	}
	return o
}
