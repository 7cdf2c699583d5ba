// Package cache provides a small in-memory TTL cache for memoizing
// provider responses. Expiry is lazy: entries are checked on read, and
// a full capacity triggers eviction of the oldest entry on write.
package cache

import (
	"strings"
	"sync"
	"time"

	"stockscope/observability"
)

// DefaultTTL matches the 5-minute freshness window of the search path.
const DefaultTTL = 300 * time.Second

// DefaultCapacity bounds the cache so sustained unique-query load
// cannot grow the map without limit.
const DefaultCapacity = 512

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is a bounded, TTL-based key/value store. Keys are case
// normalized (upper-cased) so "aapl" and "AAPL" share an entry.
//
// Concurrent identical requests may both miss and both fetch; the last
// Put wins. That race is accepted.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	name     string

	now func() time.Time
}

// New creates a cache with the given TTL and capacity. The name labels
// hit/miss metrics.
func New(name string, ttl time.Duration, capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]entry, capacity),
		ttl:      ttl,
		capacity: capacity,
		name:     name,
		now:      time.Now,
	}
}

// Get returns the cached value for key if it is still within TTL.
func (c *Cache) Get(key string) (any, bool) {
	key = normalize(key)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		observability.GetMetrics().RecordCacheMiss(c.name)
		return nil, false
	}

	observability.GetMetrics().RecordCacheHit(c.name)
	return e.value, true
}

// Put stores a value for key, evicting the oldest entry if the cache
// is at capacity.
func (c *Cache) Put(key string, value any) {
	key = normalize(key)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked(now)
	}
	c.entries[key] = entry{value: value, storedAt: now}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldestLocked drops expired entries first; if none have expired
// it removes the entry with the oldest storedAt. Caller holds mu.
func (c *Cache) evictOldestLocked(now time.Time) {
	var oldestKey string
	var oldestAt time.Time

	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.storedAt
		}
	}

	if len(c.entries) >= c.capacity && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
