// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"sort"
	"sync"

	"github.com/gogpu/ggfx/pipeline"
)

// Factory builds a node from its description. spec.Path is already
// resolved, and opts carry the size and format it names.
type Factory func(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a node type available to descriptions, replacing any
// factory already registered under the name.
func Register(typ string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[typ] = f
}

// Unregister removes a node type.
func Unregister(typ string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, typ)
}

// IsRegistered reports whether typ can be used in a description.
func IsRegistered(typ string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[typ]
	return ok
}

// Types returns the registered node types in sorted order.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func lookup(typ string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[typ]
	return f, ok
}
