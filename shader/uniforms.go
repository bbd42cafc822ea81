// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import "sort"

// Uniforms is a name to value table pushed into a pass before it runs.
// Scalars are stored as one-element vectors.
type Uniforms map[string][]float32

// Set stores a copy of values under name.
func (u *Uniforms) Set(name string, values ...float32) {
	if *u == nil {
		*u = make(Uniforms)
	}
	(*u)[name] = append([]float32(nil), values...)
}

// Float returns the first component of name, or def when it is unset.
func (u Uniforms) Float(name string, def float32) float32 {
	if v := u[name]; len(v) > 0 {
		return v[0]
	}
	return def
}

// Vec returns the stored vector for name (nil when unset).
func (u Uniforms) Vec(name string) []float32 {
	return u[name]
}

// Names returns the uniform names in sorted order.
func (u Uniforms) Names() []string {
	names := make([]string, 0, len(u))
	for k := range u {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (u Uniforms) Clone() Uniforms {
	if u == nil {
		return nil
	}
	out := make(Uniforms, len(u))
	for k, v := range u {
		out[k] = append([]float32(nil), v...)
	}
	return out
}

// Merge returns a copy of u overlaid with the entries of o.
func (u Uniforms) Merge(o Uniforms) Uniforms {
	out := u.Clone()
	if out == nil {
		out = make(Uniforms, len(o))
	}
	for k, v := range o {
		out[k] = append([]float32(nil), v...)
	}
	return out
}
