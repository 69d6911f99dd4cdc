// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swr

import (
	"context"
	"encoding/json"
)

// Request is one read through the chain.
type Request struct {
	Key Key
	// Revalidate asks the base hook to refetch even when a fresh entry
	// exists. The cached value is still returned right away.
	Revalidate bool
}

// Result is what a hook yields. When the cached value was served while a
// refetch runs, Revalidated receives the refetched result once and is then
// closed.
type Result struct {
	Data        json.RawMessage
	Err         error
	Revalidated <-chan Result
}

// Hook performs a read.
type Hook func(ctx context.Context, req Request) Result

// Middleware wraps a hook.
type Middleware func(next Hook) Hook

// Stage is a named middleware.
type Stage struct {
	Name string
	Wrap Middleware
}

// Chain wraps base with stages. The first stage is innermost, the last one
// sees every result last.
func Chain(base Hook, stages ...Stage) Hook {
	h := base
	for _, s := range stages {
		h = s.Wrap(h)
	}
	return h
}
