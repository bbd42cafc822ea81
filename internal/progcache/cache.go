// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package progcache

import "sync"

// ReleaseFunc is invoked for every entry that leaves the cache.
type ReleaseFunc[K comparable, V any] func(key K, value V)

// Cache is a bounded LRU of compiled programs.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	order    lruList[K]
	capacity int
	release  ReleaseFunc[K, V]

	hits   uint64
	misses uint64
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache holding at most capacity entries.
// A capacity of 0 means unlimited. release may be nil.
func New[K comparable, V any](capacity int, release ReleaseFunc[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: capacity,
		release:  release,
	}
}

// Get returns the cached value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.touch(e.node)
	return e.value, true
}

// GetOrCreate returns the cached value or calls create under the lock
// and stores its result. A failed create caches nothing.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.hits++
		c.order.touch(e.node)
		return e.value, nil
	}
	c.misses++

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = &entry[K, V]{value: v, node: c.order.pushFront(key)}
	c.evict()
	return v, nil
}

// Delete removes key and hands its value to the release callback.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.unlink(e.node)
	delete(c.entries, key)
	c.releaseLocked(key, e.value)
	return true
}

// Clear releases every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		key, ok := c.order.popBack()
		if !ok {
			break
		}
		e := c.entries[key]
		delete(c.entries, key)
		c.releaseLocked(key, e.value)
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats contains cache statistics.
type Stats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Capacity: c.capacity, Hits: c.hits, Misses: c.misses}
}

// evict drops least recently used entries until the cache fits.
// Caller must hold c.mu.
func (c *Cache[K, V]) evict() {
	if c.capacity <= 0 {
		return
	}
	for len(c.entries) > c.capacity {
		key, ok := c.order.popBack()
		if !ok {
			return
		}
		e := c.entries[key]
		delete(c.entries, key)
		c.releaseLocked(key, e.value)
	}
}

func (c *Cache[K, V]) releaseLocked(key K, v V) {
	if c.release != nil {
		c.release(key, v)
	}
}
