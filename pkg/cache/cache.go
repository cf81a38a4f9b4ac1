// Package cache provides pluggable byte-level caching backends.
//
// Three implementations are available:
//   - file: Directory-backed cache for CLI usage (default)
//   - null: No-op cache for testing or --no-cache runs
//   - redis: Redis-backed cache for shared environments
//
// All backends store opaque byte slices with an optional TTL. Higher-level
// packages (see pkg/integrations) layer JSON marshaling and key namespacing
// on top.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
