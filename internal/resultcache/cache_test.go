package resultcache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache(&Options{DefaultTTL: time.Minute, MaxEntries: 100})
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("expected v, got %s", got)
	}
}

func TestMemoryCache_GetNotFound(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	if _, err := cache.Get(context.Background(), "missing"); err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(&Options{DefaultTTL: time.Millisecond, MaxEntries: 10})
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := cache.Get(ctx, "k"); err != ErrKeyNotFound {
		t.Errorf("expected expired key to report ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := NewMemoryCache(nil)
	defer cache.Close()

	ctx := context.Background()
	cache.Set(ctx, "query:1:2:0:1", []byte("a"), 0)
	cache.Set(ctx, "query:1:2:0:2", []byte("b"), 0)
	cache.Set(ctx, "other:x", []byte("c"), 0)

	n, err := cache.DeleteByPrefix(ctx, "query:")
	if err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deletions, got %d", n)
	}

	if _, err := cache.Get(ctx, "other:x"); err != nil {
		t.Errorf("unrelated key should survive, got %v", err)
	}
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	cache := NewMemoryCache(&Options{MaxEntries: 2})
	defer cache.Close()

	ctx := context.Background()
	cache.Set(ctx, "a", []byte("1"), 0)
	cache.Set(ctx, "b", []byte("2"), 0)
	cache.Set(ctx, "c", []byte("3"), 0)

	count := 0
	for _, k := range []string{"a", "b", "c"} {
		if _, err := cache.Get(ctx, k); err == nil {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected exactly 2 surviving entries after eviction, got %d", count)
	}
}

func TestMemoryCache_ClosedRejectsOperations(t *testing.T) {
	cache := NewMemoryCache(nil)
	cache.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "k", []byte("v"), 0); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
}

func TestNew_DefaultsToMemoryBackend(t *testing.T) {
	c, err := New(&Options{Backend: ""})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected *MemoryCache for empty backend, got %T", c)
	}
}
