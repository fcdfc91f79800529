package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// SimpleCache is a map-backed cache with optional concurrency safety. Cleanup is
// lazy, through PurgeExpired or the Janitor loop.
type SimpleCache[K comparable, V any] struct {
	// nil means the cache is not goroutine-safe.
	muPtr *sync.RWMutex

	items      map[K]entry[V]
	defaultTTL time.Duration
}

type Options struct {
	// ConcurrencySafe guards every operation with a RWMutex.
	ConcurrencySafe bool

	// DefaultTTL applies to entries stored without an explicit ttl.
	DefaultTTL time.Duration
}

func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	return &SimpleCache[K, V]{
		muPtr:      mu,
		items:      make(map[K]entry[V]),
		defaultTTL: opts.DefaultTTL,
	}
}

func (c *SimpleCache[K, V]) lockR() func() {
	if c.muPtr == nil {
		return func() {}
	}
	c.muPtr.RLock()
	return c.muPtr.RUnlock
}

func (c *SimpleCache[K, V]) lockW() func() {
	if c.muPtr == nil {
		return func() {}
	}
	c.muPtr.Lock()
	return c.muPtr.Unlock
}

// now is swapped in tests.
var now = time.Now

func (e entry[V]) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

func (c *SimpleCache[K, V]) expiry(ttl time.Duration, at time.Time) time.Time {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return at.Add(ttl)
}

func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	unlock := c.lockR()
	defer unlock()

	var zero V
	e, ok := c.items[key]
	if !ok || e.expired(now()) {
		return zero, false
	}
	return e.value, true
}

func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	unlock := c.lockW()
	defer unlock()

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.expiry(ttl, now()),
	}
}

func (c *SimpleCache[K, V]) GetOrSet(key K, create func() V) V {
	unlock := c.lockW()
	defer unlock()

	ts := now()
	e, ok := c.items[key]
	if !ok || e.expired(ts) {
		e = entry[V]{value: create()}
	}
	e.expiresAt = c.expiry(0, ts)
	c.items[key] = e
	return e.value
}

func (c *SimpleCache[K, V]) Delete(key K) {
	unlock := c.lockW()
	defer unlock()
	delete(c.items, key)
}

func (c *SimpleCache[K, V]) Len() int {
	unlock := c.lockR()
	defer unlock()
	ts := now()
	count := 0
	for _, e := range c.items {
		if !e.expired(ts) {
			count++
		}
	}
	return count
}

// PurgeExpired removes expired entries and reports how many were dropped.
func (c *SimpleCache[K, V]) PurgeExpired() int {
	unlock := c.lockW()
	defer unlock()
	ts := now()
	purged := 0
	for k, e := range c.items {
		if e.expired(ts) {
			delete(c.items, k)
			purged++
		}
	}
	return purged
}

// Janitor purges expired entries every interval until ctx is done.
func (c *SimpleCache[K, V]) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.PurgeExpired()
		}
	}
}

var _ Cache[any, any] = (*SimpleCache[any, any])(nil)
