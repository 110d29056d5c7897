package similarity

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// cachedVector records a lookup result; found=false caches a known absence
type cachedVector struct {
	vec   []float32
	found bool
}

// lruShard is a thread-safe least-recently-used cache with a maximum size
type lruShard struct {
	maxSize int
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
}

type cacheEntry struct {
	key   string
	value cachedVector
}

func newLRUShard(maxSize int) *lruShard {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &lruShard{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *lruShard) get(key string) (cachedVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return cachedVector{}, false
}

func (c *lruShard) set(key string, value cachedVector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = elem

	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

func (c *lruShard) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// VectorCache is a lazily filled, sharded LRU of embedding lookups keyed by term.
//
// Concurrency: Get and Put are individually safe. Callers do a non-atomic
// get-then-put; two goroutines racing on the same term both fetch the same
// vector and the second Put overwrites the first with an identical value.
type VectorCache struct {
	shards []*lruShard
}

// NewVectorCache creates a cache with the given shard count and per-shard capacity
func NewVectorCache(shards, perShard int) *VectorCache {
	if shards <= 0 {
		shards = 1
	}
	c := &VectorCache{shards: make([]*lruShard, shards)}
	for i := range c.shards {
		c.shards[i] = newLRUShard(perShard)
	}
	return c
}

func (c *VectorCache) shard(term string) *lruShard {
	return c.shards[xxhash.Sum64String(term)%uint64(len(c.shards))]
}

// Get returns the cached vector, whether the term was known to the store, and whether it was cached at all
func (c *VectorCache) Get(term string) (vec []float32, found bool, cached bool) {
	v, ok := c.shard(term).get(term)
	return v.vec, v.found, ok
}

// Put records a lookup result. A nil vector with found=false caches an absence.
func (c *VectorCache) Put(term string, vec []float32, found bool) {
	c.shard(term).set(term, cachedVector{vec: vec, found: found})
}

// Len returns the number of cached terms across shards
func (c *VectorCache) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}
