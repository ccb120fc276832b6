// Package cache is a small in-process cache with per-entry TTL and tag
// based invalidation. Concurrent misses on the same key share a single
// computation.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Observer is notified about cache lookups.
type Observer interface {
	Hit(key string)
	Miss(key string)
}

type nopObserver struct{}

func (nopObserver) Hit(string)  {}
func (nopObserver) Miss(string) {}

type entry struct {
	value     any
	expiresAt time.Time
	tags      []string
}

// Cache stores computed values until they expire or one of their tags is invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	byTag   map[string]map[string]struct{}
	// gen is bumped on every invalidation; a computation that started
	// under an older generation is returned but not stored.
	gen uint64

	group    singleflight.Group
	now      func() time.Time
	observer Observer
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithObserver reports hits and misses to o.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]entry),
		byTag:    make(map[string]map[string]struct{}),
		now:      time.Now,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result for ttl under the given tags and returns it. Errors are not cached.
func GetOrCompute[V any](ctx context.Context, c *Cache, key string, ttl time.Duration, tags []string, compute func(context.Context) (V, error)) (V, error) {
	var zero V

	if v, ok := c.lookup(key); ok {
		c.observer.Hit(key)
		typed, ok := v.(V)
		if !ok {
			return zero, fmt.Errorf("cache: entry %q holds %T", key, v)
		}
		return typed, nil
	}
	c.observer.Miss(key)

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	flightKey := fmt.Sprintf("%s#%d", key, gen)
	// Coalesced callers share this compute, so it ignores the first caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		value, err := compute(shared)
		if err != nil {
			return nil, err
		}
		c.store(key, value, ttl, tags, gen)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	typed, _ := v.(V)
	return typed, nil
}

// Invalidate drops every entry stored with tag.
func (c *Cache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for key := range c.byTag[tag] {
		c.removeLocked(key)
	}
	delete(c.byTag, tag)
}

// Len returns the number of live and expired-but-unswept entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any, ttl time.Duration, tags []string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || ttl <= 0 {
		return
	}
	c.removeLocked(key)
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl), tags: tags}
	for _, tag := range tags {
		keys, ok := c.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (c *Cache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, tag := range e.tags {
		if keys, ok := c.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
}
