// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package swr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/galleryctl/internal/cache"
	"github.com/staranto/galleryctl/internal/fetcher"
)

// ErrClosed is returned for work requested after Close.
var ErrClosed = errors.New("client closed")

// revalidateLimit bounds concurrent refetches in RevalidateAll.
const revalidateLimit = 4

// Fetcher is the network side of the client.
type Fetcher interface {
	Fetch(ctx context.Context, path string, action fetcher.Action, p fetcher.Params) (json.RawMessage, error)
}

type recent struct {
	at   time.Time
	data json.RawMessage
	err  error
}

// Client is the read/write facade over the cache and the fetcher.
type Client struct {
	cache   *cache.Manager
	fetcher Fetcher
	opts    Options
	hook    Hook
	group   singleflight.Group
	now     func() time.Time

	mu     sync.Mutex
	recent map[string]recent
	seen   map[string]Key
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// New returns a client reading through m and f.
func New(m *cache.Manager, f Fetcher, opts Options) *Client {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cache:   m,
		fetcher: f,
		opts:    opts,
		now:     time.Now,
		recent:  make(map[string]recent),
		seen:    make(map[string]Key),
		ctx:     ctx,
		cancel:  cancel,
	}

	stages := opts.Stages
	if stages == nil {
		stages = defaultStages(m, opts, c.goBackground)
	}
	c.hook = Chain(c.base, stages...)
	return c
}

// Cache returns the manager behind the client.
func (c *Client) Cache() *cache.Manager { return c.cache }

// Lookup returns a fresh cached value without touching the network.
func (c *Client) Lookup(key Key) (json.RawMessage, bool) {
	e, ok := c.cache.Get(key.String())
	if !ok || !e.Usable() || e.Age(c.now()) >= c.opts.RefreshInterval {
		return nil, false
	}
	return e.Data, true
}

// Get reads key through the chain and returns the first resolution. A
// background revalidation, if any, still updates the cache.
func (c *Client) Get(ctx context.Context, key Key) (json.RawMessage, error) {
	res := c.hook(ctx, Request{Key: key})
	return res.Data, res.Err
}

// GetAs decodes the result of Get into T. A null or empty body yields the
// zero value.
func GetAs[T any](ctx context.Context, c *Client, key Key) (T, error) {
	var v T
	data, err := c.Get(ctx, key)
	if err != nil || len(data) == 0 {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return v, nil
}

// GetLatestAs is GetAs for reads that must not settle for a cached value
// when a revalidation is under way. It waits for the refetch and decodes the
// freshest result.
func GetLatestAs[T any](ctx context.Context, c *Client, key Key) (T, error) {
	var v T
	data, err := c.GetAsync(ctx, key).Latest(ctx)
	if err != nil || len(data) == 0 {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return v, nil
}

// GetAsync starts a read and returns immediately.
func (c *Client) GetAsync(ctx context.Context, key Key) *Future {
	f := newFuture()
	started := c.goBackground(func(bg context.Context) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(bg, cancel)
		defer stop()

		res := c.hook(ctx, Request{Key: key})
		f.resolve(res)
		if res.Revalidated == nil {
			f.settle(nil)
			return
		}
		select {
		case r, ok := <-res.Revalidated:
			if ok {
				f.settle(&r)
			} else {
				f.settle(nil)
			}
		case <-ctx.Done():
			f.settle(nil)
		}
	})
	if !started {
		f.resolve(Result{Err: ErrClosed})
		f.settle(nil)
	}
	return f
}

// Post sends a mutation. Nothing is cached; follow with Mutate or Invalidate.
func (c *Client) Post(ctx context.Context, path string, action fetcher.Action, body any) (json.RawMessage, error) {
	if body == nil {
		body = struct{}{}
	}
	return c.fetcher.Fetch(ctx, path, action, fetcher.Params{
		Body:           body,
		OnUnauthorized: c.opts.OnUnauthorized,
	})
}

// Mutate replaces the cached value of key.
func (c *Client) Mutate(key Key, data json.RawMessage) {
	k := key.String()
	c.cache.Set(k, cache.Entry{Data: data, Timestamp: c.now()})
	c.cache.Delete(cache.ErrorKey(k))
	c.mu.Lock()
	delete(c.recent, k)
	c.mu.Unlock()
}

// Invalidate drops every cache entry whose key matches, so the next read
// goes to the network.
func (c *Client) Invalidate(match func(key string) bool) int {
	n := c.cache.DeleteFunc(match)
	c.mu.Lock()
	for k := range c.recent {
		if match(k) {
			delete(c.recent, k)
		}
	}
	c.mu.Unlock()
	return n
}

// Forget stops periodic revalidation of key.
func (c *Client) Forget(key Key) {
	c.mu.Lock()
	delete(c.seen, key.String())
	c.mu.Unlock()
}

// Keys returns the keys read this session, sorted by cache key.
func (c *Client) Keys() []Key {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.seen))
	for _, k := range c.seen {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Start begins revalidating every key read this session once per
// RefreshInterval. Calling it again has no effect.
func (c *Client) Start() {
	c.startOnce.Do(func() {
		c.goBackground(func(ctx context.Context) {
			ticker := time.NewTicker(c.opts.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := c.RevalidateAll(ctx); err != nil {
						log.WithError(err).Debug("periodic revalidation incomplete")
					}
				}
			}
		})
	})
}

// Reconnect revalidates everything after connectivity returns.
func (c *Client) Reconnect(ctx context.Context) error {
	log.Info("connection restored, revalidating")
	return c.RevalidateAll(ctx)
}

// WatchConnectivity polls probe every interval and calls Reconnect when it
// succeeds after having failed.
func (c *Client) WatchConnectivity(probe func(context.Context) error, interval time.Duration) {
	c.goBackground(func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		online := true
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			err := probe(ctx)
			switch {
			case err != nil && online:
				online = false
				log.WithError(err).Warn("connection lost")
			case err == nil && !online:
				online = true
				if err := c.Reconnect(ctx); err != nil {
					log.WithError(err).Debug("reconnect revalidation incomplete")
				}
			}
		}
	})
}

// RevalidateAll refetches every key read this session and waits for the
// results. The first error is returned after all keys have been tried.
func (c *Client) RevalidateAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(revalidateLimit)
	for _, key := range c.Keys() {
		g.Go(func() error {
			res := c.hook(ctx, Request{Key: key, Revalidate: true})
			if res.Revalidated != nil {
				select {
				case r, ok := <-res.Revalidated:
					if ok {
						res = r
					}
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if res.Err != nil {
				log.WithError(res.Err).WithField("endpoint", key.String()).Debug("revalidation failed")
			}
			return res.Err
		})
	}
	return g.Wait()
}

// Close stops background work and waits for it to finish.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.cancel()
		c.wg.Wait()
	})
}

// goBackground runs fn on a tracked goroutine with the client's context. It
// reports false once the client is closed.
func (c *Client) goBackground(fn func(ctx context.Context)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
	return true
}

// base is the cache-aware hook at the bottom of every chain.
func (c *Client) base(ctx context.Context, req Request) Result {
	k := req.Key.String()
	c.remember(req.Key)

	e, ok := c.cache.Get(k)
	if !ok || !e.Usable() {
		data, err := c.fetch(ctx, req.Key)
		return Result{Data: data, Err: err}
	}

	now := c.now()
	fresh := e.Age(now) < c.opts.RefreshInterval
	if (fresh && !req.Revalidate) || c.deduped(k, now) {
		return Result{Data: e.Data}
	}

	ch := make(chan Result, 1)
	started := c.goBackground(func(ctx context.Context) {
		defer close(ch)
		data, err := c.fetch(ctx, req.Key)
		ch <- Result{Data: data, Err: err}
	})
	if !started {
		return Result{Data: e.Data}
	}
	return Result{Data: e.Data, Revalidated: ch}
}

func (c *Client) remember(key Key) {
	c.mu.Lock()
	c.seen[key.String()] = key
	c.mu.Unlock()
}

func (c *Client) recentResult(k string, now time.Time) (recent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.recent[k]
	if !ok || now.Sub(r.at) >= c.opts.DedupInterval {
		return recent{}, false
	}
	return r, true
}

// pruneRecent drops results whose dedup window has passed. c.mu must be
// held.
func (c *Client) pruneRecent(now time.Time) {
	for k, r := range c.recent {
		if now.Sub(r.at) >= c.opts.DedupInterval {
			delete(c.recent, k)
		}
	}
}

func (c *Client) deduped(k string, now time.Time) bool {
	_, ok := c.recentResult(k, now)
	return ok
}

// fetch joins an in-flight request for the same key, or reuses the result of
// one started within the dedup window, before going to the network.
func (c *Client) fetch(ctx context.Context, key Key) (json.RawMessage, error) {
	k := key.String()
	v, err, _ := c.group.Do(k, func() (any, error) {
		if r, ok := c.recentResult(k, c.now()); ok {
			return r.data, r.err
		}
		return c.doFetch(ctx, key)
	})
	data, _ := v.(json.RawMessage)
	return data, err
}

func (c *Client) doFetch(ctx context.Context, key Key) (json.RawMessage, error) {
	k := key.String()
	start := c.now()
	c.cache.Set(cache.InflightKey(k), cache.Entry{Timestamp: start})

	timer := time.AfterFunc(c.opts.SlowThreshold, func() { c.slow(k) })
	data, err := c.fetcher.Fetch(ctx, k, key.Action, fetcher.Params{OnUnauthorized: c.opts.OnUnauthorized})
	timer.Stop()

	c.cache.Delete(cache.InflightKey(k))
	now := c.now()

	c.mu.Lock()
	c.pruneRecent(now)
	c.recent[k] = recent{at: start, data: data, err: err}
	c.mu.Unlock()

	if err != nil {
		c.cache.Set(cache.ErrorKey(k), cache.Entry{Error: err.Error(), Timestamp: now})
		return nil, err
	}
	c.cache.Delete(cache.ErrorKey(k))
	if oversized(c.opts.OversizedThreshold, data) {
		markOversized(c.cache, c.opts.OversizedThreshold, k, len(data))
		return data, nil
	}
	c.cache.Set(k, cache.Entry{Data: data, Timestamp: now})
	return data, nil
}

func (c *Client) slow(k string) {
	log.WithFields(log.Fields{
		"endpoint":  k,
		"threshold": c.opts.SlowThreshold.String(),
	}).Warn("slow request")
	if c.opts.OnSlow != nil {
		c.opts.OnSlow(k)
	}
}
