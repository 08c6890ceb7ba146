// Package cache stores layout results and rendered artifacts between runs.
//
// A [Cache] is a byte store with per-entry TTL. Backends:
//
//   - [FileCache]: one JSON file per entry under the user cache directory,
//     for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] from content hashes, so identical graph
// snapshots laid out with identical options hit the same entry regardless of
// where they came from.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLLayout is how long a computed layout stays valid. Layouts depend only
	// on the snapshot and options, so a long TTL is safe.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact stays valid.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a key/value byte store with expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// WithTTL returns a cache that stores every entry with ttl instead of the
// lifetime requested by the caller. A non-positive ttl returns c unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return ttlCache{Cache: c, ttl: ttl}
}

type ttlCache struct {
	Cache
	ttl time.Duration
}

func (c ttlCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}
