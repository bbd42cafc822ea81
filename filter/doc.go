// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package filter provides the built-in filter nodes: identity, the colour
// matrix family, invert, grayscale, sepia, N-input blending, and the
// two-pass Gaussian and bilateral blurs.
//
// Every filter is an ordinary pipeline node (a *pipeline.Pass or a
// *pipeline.Compound) configured with a shader source and uniforms, so it
// can be connected, nested in compounds and retuned between frames like
// any other node.
//
// Each source carries WGSL for GPU backends and a Go kernel for the
// software backend. The WGSL passes share one binding layout:
//
//	@binding(0) input0: texture_2d<f32>
//	@binding(1) output: texture_storage_2d<rgba8unorm, write>
//	@binding(2) params: uniform block (when the pass has uniforms)
//	@binding(3) input1: texture_2d<f32> (two-input passes)
package filter
