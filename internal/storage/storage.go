// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
)

// Storage is a durable string-keyed store of byte values.
type Storage interface {
	// GetItem returns the value for key. The bool is false when the key is
	// absent; that is not an error.
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by New.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

var ErrUnknownStorage = errors.New("unknown storage driver")

// Options selects and configures a driver.
type Options struct {
	Driver string

	// sqlite
	SQLitePath string

	// s3
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Profile  string
	S3Endpoint string

	// redis
	RedisURL string
}

// New opens the driver named in opts. An empty driver means file.
func New(ctx context.Context, opts Options) (Storage, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFile
	}
	log.Debugf("opening %s storage", driver)

	switch driver {
	case DriverFile:
		return NewFile(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	case DriverS3:
		return NewS3(ctx, opts)
	case DriverRedis:
		return NewRedis(ctx, opts.RedisURL)
	case DriverMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownStorage, driver)
}
