// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"math"
)

// Params holds the type-specific settings of a node. Values come from
// the YAML or TOML decoder, so numbers may be int, int64 or float64.
type Params map[string]any

// Float returns the number stored under name, or def when it is absent.
func (p Params) Float(name string, def float32) (float32, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	f, ok := number(v)
	if !ok {
		return 0, fmt.Errorf("%w: param %q is %T, want a number", ErrInvalid, name, v)
	}
	return float32(f), nil
}

// Int returns the integer stored under name, or def when it is absent.
func (p Params) Int(name string, def int) (int, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	f, ok := number(v)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: param %q is %v, want an integer", ErrInvalid, name, v)
	}
	return int(f), nil
}

// Bool returns the boolean stored under name, or def when it is absent.
func (p Params) Bool(name string, def bool) (bool, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: param %q is %T, want a boolean", ErrInvalid, name, v)
	}
	return b, nil
}

// Text returns the string stored under name, or def when it is absent.
func (p Params) Text(name, def string) (string, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: param %q is %T, want a string", ErrInvalid, name, v)
	}
	return s, nil
}

// Floats returns the list of numbers stored under name, or nil.
func (p Params) Floats(name string) ([]float32, error) {
	v, ok := p[name]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: param %q is %T, want a list", ErrInvalid, name, v)
	}
	out := make([]float32, len(list))
	for i, item := range list {
		f, ok := number(item)
		if !ok {
			return nil, fmt.Errorf("%w: param %q[%d] is %T, want a number", ErrInvalid, name, i, item)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
