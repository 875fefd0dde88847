package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a size bounded cache whose entries also expire after a TTL.
type LRUCache[K comparable, T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[K]*list.Element
	lru     *list.List
	now     func() time.Time

	hits   int64
	misses int64
}

type cacheItem[K comparable, T any] struct {
	key       K
	data      T
	expiresAt time.Time
}

// Stats reports cache usage counters.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewLRUCache creates a new LRU cache with TTL. A maxSize below 1 is raised to 1.
func NewLRUCache[K comparable, T any](maxSize int, ttl time.Duration) *LRUCache[K, T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[K, T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[K]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache
func (c *LRUCache[K, T]) Get(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	item := elem.Value.(*cacheItem[K, T])
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return zero, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	return item.data, true
}

// Set stores a value in the cache
func (c *LRUCache[K, T]) Set(key K, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[K, T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete removes a key from the cache
func (c *LRUCache[K, T]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[K, T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[K, T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[K, T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[K, T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of items in the cache
func (c *LRUCache[K, T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[K, T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.items)}
}
