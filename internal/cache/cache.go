package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock returns the current time. Injected so tests can control expiry.
type Clock func() time.Time

// FetchFunc produces a value on cache miss.
type FetchFunc func(ctx context.Context) (interface{}, error)

// Cache is a time-bounded memoization layer keyed by (subject,
// parameters) strings. An entry is valid while now - fetchedAt <= TTL.
// Expired entries are lazily replaced on the next read; InvalidateAll
// drops everything at once. The cache exclusively owns entry lifetime:
// values are replaced wholesale, never mutated in place.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   Clock
	group   singleflight.Group
}

type entry struct {
	value     interface{}
	fetchedAt time.Time
}

// New creates a Cache. A nil clock uses time.Now.
func New(clock Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// GetOrFetch returns the cached value for key when it is younger than
// ttl; otherwise it invokes fn, stores the result with the current
// timestamp and returns it. Concurrent calls for the same key collapse
// into a single fn invocation so an expired hot key cannot trigger an
// upstream request storm. Errors are returned to every waiter and are
// never cached.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fn FetchFunc) (interface{}, error) {
	if v, ok := c.lookup(key, ttl); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another flight may have refreshed the key while we waited.
		if v, ok := c.lookup(key, ttl); ok {
			return v, nil
		}

		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{value: value, fetchedAt: c.clock()}
		c.mu.Unlock()

		return value, nil
	})
	return v, err
}

// lookup returns the value when a live entry exists.
func (c *Cache) lookup(key string, ttl time.Duration) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(e.fetchedAt) > ttl {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll clears every entry immediately.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, live or expired.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
