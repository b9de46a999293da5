package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roadrouter/internal/apperror"
	"roadrouter/internal/capgraph"
)

// CachedResult is the JSON-serializable projection of a server.Result.
// It mirrors the fields query.go's caller needs to reconstruct a Result
// without importing the server package here (resultcache must stay a leaf
// dependency the server package can itself import for its own query-path
// short-circuit).
type CachedResult struct {
	Found      bool              `json:"found"`
	DistanceMs int64             `json:"distance_ms"`
	Nodes      []capgraph.NodeID `json:"nodes,omitempty"`
	Edges      []capgraph.EdgeID `json:"edges,omitempty"`
	Departures []int64           `json:"departures_ms,omitempty"`
	ComputedAt time.Time         `json:"computed_at"`
}

// QueryCache specializes Cache for (from, to, departure, graph-revision)
// query memoization, mirroring the teacher's pkg/cache.SolverCache.
type QueryCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewQueryCache wraps cache with a query-result-shaped Get/Set API.
func NewQueryCache(cache Cache, defaultTTL time.Duration) *QueryCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &QueryCache{cache: cache, defaultTTL: defaultTTL}
}

// BuildKey derives the cache key for one query. graphRevision must change
// whenever the capacity graph has been mutated (e.g. after an
// IncreaseWeights call or a recustomization), so a stale cached path is
// never served.
func BuildKey(from, to capgraph.NodeID, departureMs int64, graphRevision uint64) string {
	return fmt.Sprintf("query:%d:%d:%d:%d", from, to, departureMs, graphRevision)
}

// Get returns the cached result for key, or ErrKeyNotFound.
func (qc *QueryCache) Get(ctx context.Context, key string) (*CachedResult, error) {
	data, err := qc.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var result CachedResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = qc.cache.Delete(ctx, key)
		return nil, ErrKeyNotFound
	}
	return &result, nil
}

// Set stores result under key with the cache's default TTL.
func (qc *QueryCache) Set(ctx context.Context, key string, result *CachedResult) error {
	result.ComputedAt = time.Now()
	data, err := json.Marshal(result)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeResultCacheIO, "marshaling cached query result")
	}
	return qc.cache.Set(ctx, key, data, qc.defaultTTL)
}

// Close releases the underlying cache's resources.
func (qc *QueryCache) Close() error {
	return qc.cache.Close()
}
