// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:4000"

// APIPrefix is the versioned segment between the base URL and a relative
// path.
const APIPrefix = "/glry/v1"

// Params are the optional parts of a request.
type Params struct {
	// Body switches the request to POST and is sent as JSON.
	Body any
	// Headers are added to the request as-is.
	Headers map[string]string
	// OnUnauthorized is called once, before the error is returned, when the
	// response status is 401. It runs on the requesting goroutine, so Fetch
	// does not return until it does.
	OnUnauthorized func()
}

// Fetcher issues API requests. It keeps cookies across requests and does no
// caching or deduplication.
type Fetcher struct {
	baseURL string
	client  *http.Client
	mu      sync.Mutex
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the pooled client. A cookie jar is attached if the
// client has none.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// New returns a Fetcher for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) (*Fetcher, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	f := &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client.Jar == nil {
		if err := f.ResetCookies(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// BaseURL returns the configured base URL.
func (f *Fetcher) BaseURL() string { return f.baseURL }

// ResetCookies drops every cookie held for the session. Requests already in
// flight keep the old jar.
func (f *Fetcher) ResetCookies() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	f.mu.Lock()
	c := *f.client
	c.Jar = jar
	f.client = &c
	f.mu.Unlock()
	return nil
}

// SetSession seeds the jar with the cookies of an existing session, given
// in Cookie header form ("name=value; other=value"). They are sent with
// every request to the API host until ResetCookies drops them.
func (f *Fetcher) SetSession(header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", f.baseURL, err)
	}

	f.mu.Lock()
	jar := f.client.Jar
	f.mu.Unlock()
	jar.SetCookies(u, cookies)
	log.WithField("cookies", len(cookies)).Debug("session cookies loaded")
	return nil
}

// Ping reports whether the API host answers at all. Any HTTP response counts.
func (f *Fetcher) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	f.mu.Lock()
	client := f.client
	f.mu.Unlock()

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// URL resolves path against the API. Absolute URLs are returned unchanged.
func (f *Fetcher) URL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() && u.Host != "" {
		return path
	}
	return f.baseURL + APIPrefix + path
}

// Fetch performs one request and returns the JSON body. A successful
// response without a JSON body yields nil data and no error.
func (f *Fetcher) Fetch(ctx context.Context, path string, action Action, p Params) (json.RawMessage, error) {
	method := http.MethodGet
	var body io.Reader
	if p.Body != nil {
		raw, err := json.Marshal(p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		method = http.MethodPost
		body = bytes.NewReader(raw)
	}

	target := f.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	f.mu.Lock()
	client := f.client
	f.mu.Unlock()

	log.Debugf("%s %s", method, target)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrNetwork, err)
	}
	raw = bytes.TrimSpace(raw)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok {
		// Some successful responses (updates, 204) carry no JSON.
		if len(raw) == 0 || !json.Valid(raw) {
			if len(raw) > 0 {
				log.WithField("status", resp.StatusCode).Debugf("unparseable body from %s treated as empty", target)
			}
			return nil, nil
		}
		return json.RawMessage(raw), nil
	}

	if resp.StatusCode == http.StatusUnauthorized && p.OnUnauthorized != nil {
		p.OnUnauthorized()
	}

	message := DefaultErrorMessage
	if json.Valid(raw) {
		if m := gjson.GetBytes(raw, "error"); m.Exists() && m.String() != "" {
			message = m.String()
		}
	}

	log.WithFields(log.Fields{
		"status": resp.StatusCode,
		"action": string(action),
	}).Debugf("request failed: %s", message)

	return nil, &APIError{
		Message:    message,
		Action:     action,
		StatusCode: resp.StatusCode,
	}
}
