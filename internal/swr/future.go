// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swr

import (
	"context"
	"encoding/json"
	"sync"
)

// Future is a read in progress. The first resolution may be a cached value;
// Latest waits for a background revalidation as well.
type Future struct {
	done    chan struct{}
	settled chan struct{}

	mu     sync.Mutex
	first  Result
	latest Result
}

func newFuture() *Future {
	return &Future{
		done:    make(chan struct{}),
		settled: make(chan struct{}),
	}
}

func (f *Future) resolve(r Result) {
	f.mu.Lock()
	f.first = Result{Data: r.Data, Err: r.Err}
	f.latest = f.first
	f.mu.Unlock()
	close(f.done)
}

// settle records the revalidated result. A failed revalidation keeps the
// first value.
func (f *Future) settle(r *Result) {
	if r != nil && r.Err == nil {
		f.mu.Lock()
		f.latest = Result{Data: r.Data}
		f.mu.Unlock()
	}
	close(f.settled)
}

// Done is closed at the first resolution.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the first resolution.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.first.Data, f.first.Err
}

// Latest blocks until any revalidation has finished and returns the freshest
// value.
func (f *Future) Latest(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.settled:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest.Data, f.latest.Err
}
