// Package cache provides a bounded, expiring key/value cache.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxItems bounds a cache created with a non-positive size.
const DefaultMaxItems = 1024

type entry[V any] struct {
	value    V
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a size-bounded LRU whose entries expire after a per-entry TTL.
// An entry is valid while now - storedAt < ttl. Safe for concurrent use;
// concurrent writers for the same key are last-writer-wins.
type Cache[K comparable, V any] struct {
	items *lru.Cache[K, entry[V]]
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache holding at most maxItems entries.
func New[K comparable, V any](maxItems int, opts ...Option) *Cache[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	// lru.New only fails for a non-positive size.
	items, _ := lru.New[K, entry[V]](maxItems)
	return &Cache[K, V]{items: items, now: o.now}
}

// Get returns the value for key if present and not expired. Expired
// entries are evicted on access.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	e, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		c.items.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl is a no-op.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.items.Add(key, entry[V]{value: value, storedAt: c.now(), ttl: ttl})
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.items.Remove(key)
}

// Len returns the number of stored entries, including expired ones not
// yet evicted.
func (c *Cache[K, V]) Len() int {
	return c.items.Len()
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	c.items.Purge()
}
