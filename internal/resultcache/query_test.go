package resultcache

import (
	"context"
	"testing"
	"time"

	"roadrouter/internal/capgraph"
)

func TestQueryCache_SetGetRoundTrip(t *testing.T) {
	backing := NewMemoryCache(nil)
	defer backing.Close()

	qc := NewQueryCache(backing, time.Minute)
	ctx := context.Background()

	key := BuildKey(capgraph.NodeID(0), capgraph.NodeID(2), 1000, 7)
	want := &CachedResult{
		Found:      true,
		DistanceMs: 20,
		Nodes:      []capgraph.NodeID{0, 1, 2},
		Edges:      []capgraph.EdgeID{0, 2},
		Departures: []int64{0, 10},
	}

	if err := qc.Set(ctx, key, want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := qc.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Found != want.Found || got.DistanceMs != want.DistanceMs {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Nodes) != len(want.Nodes) {
		t.Errorf("expected %d nodes, got %d", len(want.Nodes), len(got.Nodes))
	}
}

func TestQueryCache_GetMiss(t *testing.T) {
	backing := NewMemoryCache(nil)
	defer backing.Close()

	qc := NewQueryCache(backing, time.Minute)
	if _, err := qc.Get(context.Background(), "nope"); err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestBuildKey_DiffersByGraphRevision(t *testing.T) {
	k1 := BuildKey(0, 2, 1000, 1)
	k2 := BuildKey(0, 2, 1000, 2)
	if k1 == k2 {
		t.Errorf("expected keys to differ across graph revisions, both were %s", k1)
	}
}
