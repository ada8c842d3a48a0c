package nblast

import (
	"container/list"
	"sync"
	"time"
)

// PairCache is an LRU, optionally TTL-bounded cache of pairwise scores,
// keyed by (query, target, normalized, symmetric). The arena itself only
// caches self-hits, since those are needed O(N^2) times during
// normalization and are trivial to recompute; a PairCache additionally
// caches full query/target pairs, for callers who repeat the same
// comparisons (e.g. an interactive UI re-querying after a filter change).
type PairCache struct {
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	cache map[pairCacheKey]*list.Element
	order *list.List

	hits   int64
	misses int64
}

type pairCacheKey struct {
	q, t                 NeuronIndex
	normalized, symmetric bool
}

type pairCacheEntry struct {
	key       pairCacheKey
	score     float64
	expiresAt time.Time
}

// PairCacheStats reports cache hit/miss performance.
type PairCacheStats struct {
	Hits    int64
	Misses  int64
	Size    int
	HitRate float64
}

// NewPairCache creates a pairwise-score cache. ttl == 0 means entries never
// expire on their own (only LRU eviction past capacity applies).
func NewPairCache(capacity int, ttl time.Duration) *PairCache {
	return &PairCache{
		capacity: capacity,
		ttl:      ttl,
		cache:    make(map[pairCacheKey]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached score for the given pair and options, if present
// and unexpired.
func (c *PairCache) Get(q, t NeuronIndex, normalized, symmetric bool) (float64, bool) {
	key := pairCacheKey{q, t, normalized, symmetric}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		c.misses++
		return 0, false
	}
	entry := elem.Value.(*pairCacheEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return 0, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return entry.score, true
}

// Put stores score for the given pair and options, evicting the least
// recently used entry if the cache is over capacity.
func (c *PairCache) Put(q, t NeuronIndex, normalized, symmetric bool, score float64) {
	key := pairCacheKey{q, t, normalized, symmetric}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if elem, ok := c.cache[key]; ok {
		entry := elem.Value.(*pairCacheEntry)
		entry.score = score
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	entry := &pairCacheEntry{key: key, score: score, expiresAt: expiresAt}
	elem := c.order.PushFront(entry)
	c.cache[key] = elem

	if c.capacity > 0 && c.order.Len() > c.capacity {
		c.removeLocked(c.order.Back())
	}
}

// Invalidate drops every cache entry involving idx, as either query or
// target. Callers should invalidate after mutating an arena in ways that
// change a neuron's identity (the base Arena never does, since neurons are
// immutable after insertion, but an extension that supports replace/delete
// would need this).
func (c *PairCache) Invalidate(idx NeuronIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.cache {
		if key.q == idx || key.t == idx {
			c.removeLocked(elem)
		}
	}
}

// Stats reports current cache performance.
func (c *PairCache) Stats() PairCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return PairCacheStats{Hits: c.hits, Misses: c.misses, Size: c.order.Len(), HitRate: rate}
}

func (c *PairCache) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	entry := elem.Value.(*pairCacheEntry)
	delete(c.cache, entry.key)
}

// CachedArena wraps an Arena with a PairCache on its Query path. Batch and
// AllVsAll already reuse the symmetric half within a single call;
// CachedArena additionally reuses results *across* calls.
type CachedArena struct {
	*Arena
	cache *PairCache
}

// NewCachedArena wraps arena with a pairwise-score cache of the given
// capacity and TTL.
func NewCachedArena(arena *Arena, capacity int, ttl time.Duration) *CachedArena {
	return &CachedArena{Arena: arena, cache: NewPairCache(capacity, ttl)}
}

// Query answers from the pairwise cache when possible, otherwise delegates
// to the wrapped Arena and populates the cache.
func (c *CachedArena) Query(qIdx, tIdx NeuronIndex, normalized, symmetric bool) (float64, bool) {
	if score, ok := c.cache.Get(qIdx, tIdx, normalized, symmetric); ok {
		return score, true
	}
	score, ok := c.Arena.Query(qIdx, tIdx, normalized, symmetric)
	if ok {
		c.cache.Put(qIdx, tIdx, normalized, symmetric, score)
	}
	return score, ok
}

// CacheStats reports the wrapped PairCache's performance.
func (c *CachedArena) CacheStats() PairCacheStats {
	return c.cache.Stats()
}
