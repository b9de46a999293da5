// Package resultcache optionally memoizes server.Query results so that an
// identical (from, to, departure, graph-revision) lookup during the same
// server lifetime (or across processes sharing a Redis instance) skips the
// Dijkstra search entirely. The live capacity graph is never serialized
// here — only already-computed server.Result values.
package resultcache

import (
	"context"
	"errors"
	"time"
)

// Backend selects which Cache implementation New constructs.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrKeyNotFound is returned when a requested key is absent or expired.
var ErrKeyNotFound = errors.New("resultcache: key not found")

// ErrCacheClosed is returned when an operation runs against a closed cache.
var ErrCacheClosed = errors.New("resultcache: cache is closed")

// Cache is the narrow byte-oriented store both backends implement. Callers
// serialize domain values (QueryCache does this for server.Result) before
// calling Set, and deserialize after Get.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Close() error
}

// Options configures New.
type Options struct {
	Backend    string
	DefaultTTL time.Duration

	MaxEntries      int
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions returns sensible defaults for a memory-backed cache.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      50000,
		CleanupInterval: time.Minute,
		RedisDB:         0,
		RedisPoolSize:   10,
	}
}

// New builds a Cache from opts, defaulting to an in-memory cache for an
// empty or unrecognized backend name.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	case BackendMemory, "":
		return NewMemoryCache(opts), nil
	default:
		return NewMemoryCache(opts), nil
	}
}
