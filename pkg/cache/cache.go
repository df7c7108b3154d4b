// Package cache provides byte-level caching for provider lookups and
// computed display elements.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: shared cache for long-running servers
//   - [NewNullCache]: disables caching
//
// # Keys
//
// A [Keyer] builds every key so lookups and element results cannot collide.
// Wrap a keyer with [NewScopedKeyer] to isolate several databases sharing
// one redis instance.
//
// # Retries
//
// Transient failures are wrapped with [Retryable] and repeated by a
// [Backoff]. All other errors are returned immediately.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A zero TTL stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per artifact type.
const (
	TTLLookup   = 7 * 24 * time.Hour
	TTLElements = 24 * time.Hour
)

// NewNullCache returns a cache that stores nothing. Every Get is a miss.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
