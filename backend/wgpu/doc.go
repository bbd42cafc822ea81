// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements the rendering backend on top of the gogpu/wgpu
// hardware abstraction layer.
//
// Render targets are real hal textures with a sampled view. Programs are
// WGSL compiled to SPIR-V by naga and loaded as hal shader modules; modules
// are shared between programs with identical source.
//
// A pass with WGSL writing an RGBA8 target is dispatched as a compute
// shader in 8x8 workgroups. Its bind group follows one convention: input 0
// at binding 0, the storage output at 1, the packed Params uniform block at
// 2 and input k > 0 at binding k+2. Pipelines are cached per module and
// input count. The result stays on the device; Download and host passes
// that sample it read it back through a staging buffer.
//
// Other passes run their reference kernel against a host mirror of each
// target and write the result with the queue. The noop device executes no
// shaders, so NewNoop runs every pass this way by default.
//
// The backend binds to a device in one of three ways:
//
//	b := wgpu.New(device, queue)             // explicit hal objects
//	b, err := wgpu.NewFromProvider(provider) // HalDevice()/HalQueue() provider
//	b := wgpu.NewNoop()                      // headless noop device
//
// NewNoop is registered as backend.BackendNoop. A host that owns a device
// calls RegisterDevice to make it the backend.BackendWGPU default.
package wgpu
