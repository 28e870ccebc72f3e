// Package cache stores layout results so that laying out an unchanged
// diagram with unchanged options is a lookup instead of a computation.
//
// # Backends
//
//   - [NullCache]: never stores anything; used when caching is disabled
//   - [FileCache]: one JSON file per entry under a directory; the CLI default
//   - [RedisCache]: shared cache for several API server instances
//
// [Open] picks the backend from a [config.CacheConfig].
//
// # Keys
//
// Keys are derived by a [Keyer] from the hash of the diagram document and
// every option that influences the result, so a cache hit is always safe
// to apply. [ScopedKeyer] prefixes keys to share one backend between
// tenants or deployments.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/bpmnlayout/pkg/config"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is
	// a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return NewNullCache(), nil
	case config.CacheFile:
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheRedis:
		c, err := NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// NullCache misses on every Get and discards every Set. Open returns it
// for the "none" backend.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
