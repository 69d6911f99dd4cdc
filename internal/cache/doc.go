// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache holds the process-wide response cache. The Manager keeps
// entries in memory for reads and writes, hydrates them from durable storage
// on Load and writes the persistable subset back on Flush.
package cache
