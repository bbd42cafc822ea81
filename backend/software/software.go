// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides a CPU rendering backend.
//
// Targets live in host memory and passes run the reference kernel of their
// shader.Source, split into row bands across a worker pool. The backend is
// always available and is the fallback when no GPU device is bound.
package software

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/internal/parallel"
	"github.com/gogpu/ggfx/shader"
)

func init() {
	backend.Register(backend.BackendSoftware, func() backend.Backend {
		return New()
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithWorkers sets the number of kernel workers. Zero uses GOMAXPROCS,
// one runs every pass on the calling goroutine.
func WithWorkers(n int) Option {
	return func(b *Backend) {
		b.workerCount = n
	}
}

// WithMemoryLimit caps the bytes held by live targets. NewTarget fails with
// ggfx.ErrResourceExhausted beyond the limit. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(b *Backend) {
		if bytes > 0 {
			b.memoryLimit = bytes
		}
	}
}

// WithWGSLValidation makes Compile run sources that carry WGSL through the
// naga front end, so shader errors surface on the CPU path too.
func WithWGSLValidation(enabled bool) Option {
	return func(b *Backend) {
		b.validateWGSL = enabled
	}
}

// Backend is the CPU implementation of backend.Backend.
type Backend struct {
	workerCount  int
	memoryLimit  int64
	validateWGSL bool

	workers     *parallel.WorkerPool
	initialized bool

	memoryUsed int64
	targets    int
	programs   int
}

// New creates a software backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns backend.BackendSoftware.
func (b *Backend) Name() string {
	return backend.BackendSoftware
}

// Init starts the worker pool.
func (b *Backend) Init() error {
	if b.initialized {
		return nil
	}
	if b.workerCount != 1 {
		b.workers = parallel.NewWorkerPool(b.workerCount)
	}
	b.initialized = true
	ggfx.Logger().Info("software backend initialized",
		"workers", b.Workers(), "memory_limit", b.memoryLimit)
	return nil
}

// Close stops the worker pool. Targets created before Close stay readable.
func (b *Backend) Close() {
	if b.workers != nil {
		b.workers.Close()
		b.workers = nil
	}
	b.initialized = false
}

// Workers returns the number of goroutines kernels are split across.
func (b *Backend) Workers() int {
	if b.workers == nil {
		return 1
	}
	return b.workers.Workers()
}

// MemoryUsed returns the bytes held by live targets.
func (b *Backend) MemoryUsed() int64 {
	return b.memoryUsed
}

// LiveTargets returns the number of targets not yet destroyed.
func (b *Backend) LiveTargets() int {
	return b.targets
}

// LivePrograms returns the number of programs not yet destroyed.
func (b *Backend) LivePrograms() int {
	return b.programs
}

// NewTarget allocates a host-memory target.
func (b *Backend) NewTarget(width, height int, format ggfx.Format) (backend.Target, error) {
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", ggfx.ErrInvalidState, width, height)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: target format %s", ggfx.ErrInvalidState, format)
	}
	size := backend.TargetBytes(width, height, format)
	if b.memoryLimit > 0 && b.memoryUsed+size > b.memoryLimit {
		return nil, fmt.Errorf("%w: %dx%d %s needs %d bytes, %d of %d in use",
			ggfx.ErrResourceExhausted, width, height, format, size, b.memoryUsed, b.memoryLimit)
	}
	b.memoryUsed += size
	b.targets++
	return &target{
		owner:  b,
		frame:  ggfx.NewFrame(width, height, format),
		width:  width,
		height: height,
		format: format,
	}, nil
}

// DestroyTarget frees t. Foreign or already destroyed targets are ignored.
func (b *Backend) DestroyTarget(t backend.Target) {
	st, ok := t.(*target)
	if !ok || st.owner != b || st.frame == nil {
		return
	}
	b.memoryUsed -= st.SizeBytes()
	b.targets--
	st.frame = nil
}

// Compile checks the source and wraps it as a program. Sources without a
// kernel cannot run on the CPU.
func (b *Backend) Compile(src shader.Source) (backend.Program, error) {
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if src.Kernel == nil {
		return nil, fmt.Errorf("%w: program %q has no CPU kernel", ggfx.ErrShaderCompile, src.Name)
	}
	if b.validateWGSL && src.WGSL != "" {
		if _, err := shader.Compile(src.WGSL); err != nil {
			return nil, fmt.Errorf("program %q: %w", src.Name, err)
		}
	}
	b.programs++
	return &program{owner: b, src: src}, nil
}

// DestroyProgram releases p.
func (b *Backend) DestroyProgram(p backend.Program) {
	sp, ok := p.(*program)
	if !ok || sp.owner != b || sp.destroyed {
		return
	}
	sp.destroyed = true
	b.programs--
}

// Run executes p into dst.
func (b *Backend) Run(p backend.Program, dst backend.Target, inputs []backend.Target, u shader.Uniforms) error {
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	sp, ok := p.(*program)
	if !ok || sp.owner != b {
		return backend.ErrForeignResource
	}
	if sp.destroyed {
		return fmt.Errorf("%w: program %q was destroyed", ggfx.ErrInvalidState, sp.src.Name)
	}
	out, err := b.frameOf(dst)
	if err != nil {
		return err
	}
	if err := backend.CheckInputs(p, dst, inputs); err != nil {
		return err
	}
	frames := make([]*ggfx.Frame, len(inputs))
	for i, in := range inputs {
		if frames[i], err = b.frameOf(in); err != nil {
			return err
		}
	}
	return backend.ExecKernel(b.workers, sp.src, out, frames, u)
}

// Upload copies f into dst, converting the pixel format if needed.
func (b *Backend) Upload(dst backend.Target, f *ggfx.Frame) error {
	out, err := b.frameOf(dst)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Width != out.Width || f.Height != out.Height {
		return fmt.Errorf("%w: upload %dx%d into %dx%d target",
			ggfx.ErrInvalidState, f.Width, f.Height, out.Width, out.Height)
	}
	if f.Format != out.Format {
		f = f.Convert(out.Format)
	}
	return out.CopyFrom(f)
}

// Download returns a copy of the target contents.
func (b *Backend) Download(src backend.Target) (*ggfx.Frame, error) {
	f, err := b.frameOf(src)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

func (b *Backend) frameOf(t backend.Target) (*ggfx.Frame, error) {
	st, ok := t.(*target)
	if !ok || st.owner != b {
		return nil, backend.ErrForeignResource
	}
	if st.frame == nil {
		return nil, fmt.Errorf("%w: target was destroyed", ggfx.ErrInvalidState)
	}
	return st.frame, nil
}

// target is a host-memory render target. Geometry outlives the pixels so
// a destroyed target still reports its size.
type target struct {
	owner  *Backend
	frame  *ggfx.Frame
	width  int
	height int
	format ggfx.Format
}

func (t *target) Width() int          { return t.width }
func (t *target) Height() int         { return t.height }
func (t *target) Format() ggfx.Format { return t.format }
func (t *target) SizeBytes() int64    { return backend.TargetBytes(t.width, t.height, t.format) }

type program struct {
	owner     *Backend
	src       shader.Source
	destroyed bool
}

func (p *program) Name() string { return p.src.Name }
func (p *program) Inputs() int  { return p.src.Inputs }

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Target  = (*target)(nil)
	_ backend.Program = (*program)(nil)
)
