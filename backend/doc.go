// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend provides the pluggable device abstraction behind the
// texture pool and filter passes.
//
// A [Backend] allocates render targets, compiles [shader.Source] programs
// and executes one pass at a time. Two implementations ship with ggfx:
//
//   - backend/software: host-memory targets, kernels run on the CPU
//   - backend/wgpu: textures and shader modules on a gogpu/wgpu HAL device
//
// # Backend Registration
//
// Backends register a factory from an init function and are selected at
// runtime by name:
//
//	import _ "github.com/gogpu/ggfx/backend/software"
//
//	b := backend.Get(backend.BackendSoftware)
//
// Use [Default] to get the best available backend and [InitDefault] to get
// one that is already initialized.
package backend
