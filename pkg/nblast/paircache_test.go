package nblast

import (
	"testing"
	"time"
)

func TestPairCacheGetMiss(t *testing.T) {
	c := NewPairCache(10, 0)
	if _, ok := c.Get(0, 1, false, false); ok {
		t.Fatal("Get on empty cache should miss")
	}
}

func TestPairCachePutGet(t *testing.T) {
	c := NewPairCache(10, 0)
	c.Put(0, 1, false, false, 42.0)
	got, ok := c.Get(0, 1, false, false)
	if !ok || !almostEqual(got, 42.0, 1e-9) {
		t.Fatalf("Get = %v, %v, want 42.0, true", got, ok)
	}
}

func TestPairCacheDistinguishesOptions(t *testing.T) {
	c := NewPairCache(10, 0)
	c.Put(0, 1, false, false, 1.0)
	if _, ok := c.Get(0, 1, true, false); ok {
		t.Fatal("Get with different normalized flag should miss")
	}
}

func TestPairCacheEvictsLRU(t *testing.T) {
	c := NewPairCache(2, 0)
	c.Put(0, 1, false, false, 1.0)
	c.Put(0, 2, false, false, 2.0)
	c.Put(0, 3, false, false, 3.0) // evicts (0,1), the least recently used

	if _, ok := c.Get(0, 1, false, false); ok {
		t.Fatal("expected (0,1) to be evicted")
	}
	if _, ok := c.Get(0, 2, false, false); !ok {
		t.Fatal("expected (0,2) to survive")
	}
	if _, ok := c.Get(0, 3, false, false); !ok {
		t.Fatal("expected (0,3) to survive")
	}
}

func TestPairCacheRecentlyUsedSurvivesEviction(t *testing.T) {
	c := NewPairCache(2, 0)
	c.Put(0, 1, false, false, 1.0)
	c.Put(0, 2, false, false, 2.0)
	c.Get(0, 1, false, false) // touch (0,1), making (0,2) the LRU entry
	c.Put(0, 3, false, false, 3.0)

	if _, ok := c.Get(0, 2, false, false); ok {
		t.Fatal("expected (0,2) to be evicted after being passed over")
	}
	if _, ok := c.Get(0, 1, false, false); !ok {
		t.Fatal("expected recently-touched (0,1) to survive")
	}
}

func TestPairCacheTTLExpiry(t *testing.T) {
	c := NewPairCache(10, time.Nanosecond)
	c.Put(0, 1, false, false, 1.0)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get(0, 1, false, false); ok {
		t.Fatal("expected entry to expire past its TTL")
	}
}

func TestPairCacheInvalidate(t *testing.T) {
	c := NewPairCache(10, 0)
	c.Put(0, 1, false, false, 1.0)
	c.Put(1, 2, false, false, 2.0)
	c.Put(2, 3, false, false, 3.0)

	c.Invalidate(1)

	if _, ok := c.Get(0, 1, false, false); ok {
		t.Fatal("expected (0,1) invalidated: 1 is the target")
	}
	if _, ok := c.Get(1, 2, false, false); ok {
		t.Fatal("expected (1,2) invalidated: 1 is the query")
	}
	if _, ok := c.Get(2, 3, false, false); !ok {
		t.Fatal("expected (2,3) to survive invalidation of 1")
	}
}

func TestPairCacheStats(t *testing.T) {
	c := NewPairCache(10, 0)
	c.Put(0, 1, false, false, 1.0)
	c.Get(0, 1, false, false) // hit
	c.Get(0, 2, false, false) // miss

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("Stats = %+v, want 1 hit 1 miss", stats)
	}
	if !almostEqual(stats.HitRate, 0.5, 1e-9) {
		t.Fatalf("HitRate = %v, want 0.5", stats.HitRate)
	}
}

func TestCachedArenaCachesAcrossCalls(t *testing.T) {
	arena, idxA, idxB := newTestArena(t)
	cached := NewCachedArena(arena, 10, 0)

	got1, ok := cached.Query(idxA, idxB, false, false)
	if !ok {
		t.Fatal("Query ok=false")
	}
	got2, ok := cached.Query(idxA, idxB, false, false)
	if !ok {
		t.Fatal("Query ok=false")
	}
	if !almostEqual(got1, got2, 1e-9) {
		t.Fatalf("cached query mismatch: %v vs %v", got1, got2)
	}
	stats := cached.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("CacheStats = %+v, want 1 hit 1 miss", stats)
	}
}
