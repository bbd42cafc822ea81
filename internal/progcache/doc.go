// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package progcache caches compiled shader programs by source digest.
//
// A backend compiles the same WGSL many times when a graph is rebuilt or
// when a compound filter reuses a pass. The cache keeps the most recently
// used programs and hands evicted ones to a release callback so the
// backend can destroy the underlying GPU module.
//
//	c := progcache.New[uint64, *module](64, func(k uint64, m *module) { m.destroy() })
//	m, err := c.GetOrCreate(digest, compile)
//
// Cache is safe for concurrent use and must not be copied after creation.
package progcache
