// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package auth clears the local session when the API stops accepting it.
package auth

import (
	"strings"
	"sync/atomic"

	"github.com/apex/log"

	"github.com/staranto/galleryctl/internal/cache"
)

// CookieResetter drops stored credentials.
type CookieResetter interface {
	ResetCookies() error
}

// Session is the collaborator that handles 401 responses.
type Session struct {
	cache   *cache.Manager
	cookies CookieResetter
	cleared atomic.Int64
}

func NewSession(m *cache.Manager, cookies CookieResetter) *Session {
	return &Session{cache: m, cookies: cookies}
}

// HandleUnauthorized forgets the current user and the cookies that
// identified them. It is safe to call concurrently and more than once.
func (s *Session) HandleUnauthorized() {
	if s.cookies != nil {
		if err := s.cookies.ResetCookies(); err != nil {
			log.WithError(err).Warn("failed to reset cookies")
		}
	}

	n := 0
	if s.cache != nil {
		n = s.cache.DeleteFunc(func(key string) bool {
			return strings.Contains(key, cache.CurrentUserPath)
		})
	}
	s.cleared.Add(1)

	log.WithField("removed", n).Info("session cleared after unauthorized response")
}

// Cleared returns how many times the session has been cleared.
func (s *Session) Cleared() int {
	return int(s.cleared.Load())
}
