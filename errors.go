// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggfx

import "errors"

// Error taxonomy shared by every ggfx package.
var (
	// ErrResourceExhausted is returned when a render target cannot be
	// allocated, either because the device is out of memory or because the
	// pool budget is spent.
	ErrResourceExhausted = errors.New("ggfx: resource exhausted")

	// ErrShaderCompile is returned when a pass fails to build, link or execute.
	ErrShaderCompile = errors.New("ggfx: shader compile error")

	// ErrCycleDetected is returned when an edge would make a node consume
	// its own output.
	ErrCycleDetected = errors.New("ggfx: cycle detected")

	// ErrArityViolation is returned for wiring that does not match a node's
	// declared input or output arity.
	ErrArityViolation = errors.New("ggfx: arity violation")

	// ErrInvalidState is returned on caller contract violations such as a
	// double release or rendering a node that is not ready.
	ErrInvalidState = errors.New("ggfx: invalid state")
)
