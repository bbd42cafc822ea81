// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/shader"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU backend.
	BackendSoftware = "software"

	// BackendWGPU is the name of the gogpu/wgpu HAL backend bound to a
	// host-provided device.
	BackendWGPU = "wgpu"

	// BackendNoop is the headless wgpu backend on the HAL noop device.
	BackendNoop = "wgpu-noop"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrForeignResource is returned when a target or program created by
	// another backend is passed in.
	ErrForeignResource = errors.New("backend: resource belongs to another backend")
)

// Target is an offscreen render target: a framebuffer the device can draw
// into and later sample as a texture.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() ggfx.Format

	// SizeBytes returns the device memory held by the target.
	SizeBytes() int64
}

// Program is a compiled shader pass.
type Program interface {
	// Name returns the source name the program was compiled from.
	Name() string

	// Inputs returns the number of input textures the program samples.
	Inputs() int
}

// Backend is a rendering device.
//
// Backends are driven from a single goroutine (the one that owns the
// graphics context); implementations need not be safe for concurrent use
// unless they say so.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init initializes the backend. It must be called before any other
	// method except Name.
	Init() error

	// Close releases all backend resources.
	Close()

	// NewTarget allocates a render target. Out-of-memory conditions wrap
	// ggfx.ErrResourceExhausted.
	NewTarget(width, height int, format ggfx.Format) (Target, error)

	// DestroyTarget frees a render target.
	DestroyTarget(t Target)

	// Compile builds a program. Failures wrap ggfx.ErrShaderCompile.
	Compile(src shader.Source) (Program, error)

	// DestroyProgram frees a program.
	DestroyProgram(p Program)

	// Run executes one pass of p, sampling inputs and writing dst.
	// Execution failures wrap ggfx.ErrShaderCompile.
	Run(p Program, dst Target, inputs []Target, u shader.Uniforms) error

	// Upload copies a frame into a target of the same size. The frame is
	// converted to the target format when they differ.
	Upload(dst Target, f *ggfx.Frame) error

	// Download reads the target back into a new frame in the target format.
	Download(src Target) (*ggfx.Frame, error)
}

// TargetBytes returns the memory a width x height target of format needs.
func TargetBytes(width, height int, format ggfx.Format) int64 {
	return int64(width) * int64(height) * int64(format.BytesPerPixel())
}
