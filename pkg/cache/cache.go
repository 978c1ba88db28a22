// Package cache provides byte-level caching of fetched networks and
// rendered artifacts. Backends share the Cache interface: a no-op
// NullCache, a file-based FileCache for CLI usage, and a Redis-backed
// RedisCache for multi-instance server deployments.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value and true on a hit. A miss is
	// (nil, false, nil); errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
