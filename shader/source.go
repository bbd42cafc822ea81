// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"
	"hash/fnv"

	"github.com/gogpu/ggfx"
)

// DefaultEntryPoint is the WGSL entry point used when Source.EntryPoint is empty.
const DefaultEntryPoint = "main"

// WorkgroupSize is the square workgroup edge used by the built-in WGSL passes.
const WorkgroupSize = 8

// Kernel computes rows [y0, y1) of dst from the input frames.
//
// Kernels may read any row of any input but must only write their own rows
// of dst: backends are free to split one pass into bands and run them in
// parallel. Inputs may differ in size from dst; sampling is the kernel's
// responsibility.
type Kernel func(dst *ggfx.Frame, src []*ggfx.Frame, u Uniforms, y0, y1 int) error

// Source describes one shader pass.
type Source struct {
	// Name identifies the program in logs and errors.
	Name string

	// WGSL is the compute shader source. Optional for CPU-only passes.
	WGSL string

	// EntryPoint is the WGSL entry point, DefaultEntryPoint if empty.
	EntryPoint string

	// Inputs is the number of input textures the pass samples.
	Inputs int

	// Kernel is the reference implementation executed by CPU backends.
	Kernel Kernel

	// Serial asks backends to run the kernel over all rows at once.
	Serial bool

	// Pack serializes uniforms for the WGSL Params block at binding 2.
	// Nil means the shader declares no parameters.
	Pack PackFunc
}

// Entry returns the effective entry point.
func (s Source) Entry() string {
	if s.EntryPoint == "" {
		return DefaultEntryPoint
	}
	return s.EntryPoint
}

// UniformBytes returns the uniform buffer contents for one dispatch.
func (s Source) UniformBytes(u Uniforms) ([]byte, error) {
	if s.Pack == nil {
		return (&Packer{}).Bytes(), nil
	}
	b, err := s.Pack(u)
	if err != nil {
		return nil, fmt.Errorf("program %q: pack uniforms: %w", s.Name, err)
	}
	p := Packer{buf: b}
	return p.Bytes(), nil
}

// Validate checks that the source can be compiled by at least one backend.
func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: program has no name", ggfx.ErrShaderCompile)
	}
	if s.Inputs < 0 {
		return fmt.Errorf("%w: program %q declares %d inputs", ggfx.ErrShaderCompile, s.Name, s.Inputs)
	}
	if s.Kernel == nil && s.WGSL == "" {
		return fmt.Errorf("%w: program %q has neither WGSL nor kernel", ggfx.ErrShaderCompile, s.Name)
	}
	return nil
}

// Digest returns an FNV-1a hash of the WGSL text and entry point.
// Two sources with the same digest compile to the same module.
func (s Source) Digest() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Entry()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(s.WGSL))
	return h.Sum64()
}
