// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"sort"
	"sync"
)

// Factory creates a new backend instance.
type Factory func() Backend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// A backend registered under an existing name replaces it.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a new backend instance by name, or nil if the name is not
// registered.
func Get(name string) Backend {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority
// (wgpu, then software), or the first registered one.
// Returns nil if no backends are registered.
func Default() Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				return b
			}
		}
	}

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if b := backends[name](); b != nil {
			return b
		}
	}
	return nil
}

// InitDefault returns the default backend, already initialized.
func InitDefault() (Backend, error) {
	return InitNamed("")
}

// InitNamed returns the named backend (the default one for an empty name),
// already initialized.
func InitNamed(name string) (Backend, error) {
	var b Backend
	if name == "" {
		b = Default()
	} else {
		b = Get(name)
	}
	if b == nil {
		return nil, ErrBackendNotAvailable
	}
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}
