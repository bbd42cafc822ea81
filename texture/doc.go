// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture pools offscreen render targets.
//
// Every intermediate result in a filter graph lives in a render target of
// known width, height and format. Allocating one per pass per frame is
// expensive on a GPU, so the Pool keeps released targets on free lists
// keyed by that triple and hands them out again.
//
// Targets are referred to by Handle, a slot index plus a generation. The
// generation changes every time a slot is checked out, so a handle kept
// after Release is rejected rather than silently aliasing a texture that
// now belongs to another pass.
//
//	pool := texture.New(b, texture.Options{BudgetBytes: 64 << 20})
//	h, err := pool.Acquire(1920, 1080, ggfx.FormatRGBA8)
//	...
//	err = pool.Release(h)
package texture
