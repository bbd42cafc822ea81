// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader describes the programs run by filter passes.
//
// A [Source] carries two equivalent descriptions of one pass: WGSL compute
// code for GPU backends and a reference [Kernel] that CPU backends execute
// directly. Backends compile a Source into their own program object; WGSL
// is compiled to SPIR-V with naga through [Compile].
//
// Uniform values travel as a name to value table ([Uniforms]); the pass
// kernel decides what the names mean.
package shader
