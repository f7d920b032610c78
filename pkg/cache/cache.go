// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry wraps a value with its store time for TTL expiry and access time
// for eviction.
type entry[V any] struct {
	value      V
	storedAt   time.Time
	lastAccess time.Time
}

// Cache is a small concurrent cache for upstream fetches.
//
// Features:
//   - Optional TTL: entries expire a fixed duration after they were stored
//   - Optional max size: least recently accessed entry is evicted
//   - Load: misses call the load function once per key no matter how many
//     callers are waiting
//
// Usage:
//
//	c := cache.New[string, []byte](
//	    cache.WithExpiry[string, []byte](time.Hour),
//	    cache.WithLoadFunc(fetch),
//	)
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]

	// Max size (0 = unlimited)
	maxSize int

	// TTL expiry (0 = no expiry)
	expiry time.Duration

	staleOnError bool

	loadFunc func(ctx context.Context, key K) (V, error)
	group    singleflight.Group

	now func() time.Time
}

// Option configures a Cache
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxSize sets the maximum number of entries.
func WithMaxSize[K comparable, V any](maxSize int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxSize = maxSize
	}
}

// WithExpiry sets the TTL for cache entries.
func WithExpiry[K comparable, V any](expiry time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.expiry = expiry
	}
}

// WithLoadFunc sets the function Load calls on a miss.
func WithLoadFunc[K comparable, V any](loadFunc func(ctx context.Context, key K) (V, error)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.loadFunc = loadFunc
	}
}

// WithStaleOnError makes Load return an expired entry when the load
// function fails.
func WithStaleOnError[K comparable, V any]() Option[K, V] {
	return func(c *Cache[K, V]) {
		c.staleOnError = true
	}
}

// New creates a new Cache with the given options.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[K, V]) expired(e *entry[V], now time.Time) bool {
	return c.expiry > 0 && now.Sub(e.storedAt) > c.expiry
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok || c.expired(e, now) {
		var zero V
		return zero, false
	}
	e.lastAccess = now
	return e.value, true
}

// Set stores value under key, evicting if the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[key]; !ok && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked(now)
	}
	c.entries[key] = &entry[V]{value: value, storedAt: now, lastAccess: now}
}

// evictLocked drops expired entries, or the least recently accessed one if
// none have expired. Caller holds c.mu.
func (c *Cache[K, V]) evictLocked(now time.Time) {
	var (
		oldestKey K
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			continue
		}
		if !found || e.lastAccess.Before(oldest) {
			oldestKey, oldest, found = k, e.lastAccess, true
		}
	}
	if found && len(c.entries) >= c.maxSize {
		delete(c.entries, oldestKey)
	}
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load returns the cached value for key, calling the load function on a
// miss. Concurrent misses for the same key share one call.
//
// The shared call runs detached from the caller's cancellation so one
// departing caller cannot fail the others; the load function must bound
// its own duration. A caller whose ctx ends stops waiting with ctx.Err().
func (c *Cache[K, V]) Load(ctx context.Context, key K) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.loadFunc == nil {
		return zero, fmt.Errorf("cache: no load function for %v", key)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprint(key), func() (any, error) {
		v, err := c.loadFunc(loadCtx, key)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	if res.Err != nil {
		if c.staleOnError {
			if stale, ok := c.stale(key); ok {
				return stale, nil
			}
		}
		return zero, res.Err
	}
	return res.Val.(V), nil
}

func (c *Cache[K, V]) stale(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}
