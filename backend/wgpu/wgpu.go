// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/internal/parallel"
	"github.com/gogpu/ggfx/internal/progcache"
	"github.com/gogpu/ggfx/shader"
)

// DefaultModuleCacheSize is the number of shader modules kept alive.
const DefaultModuleCacheSize = 64

// ErrNoDevice is returned by NewFromProvider when the provider does not
// expose usable hal objects.
var ErrNoDevice = errors.New("wgpu: provider does not expose a hal device")

func init() {
	backend.Register(backend.BackendNoop, func() backend.Backend {
		return NewNoop()
	})
}

// RegisterDevice registers device and queue as the backend.BackendWGPU
// backend, which backend.Default prefers over the software one.
func RegisterDevice(device hal.Device, queue hal.Queue) {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return New(device, queue)
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithHostExecution selects where passes run. With host set, every pass
// runs its reference kernel on host mirrors and the result is written to
// the texture; otherwise passes with WGSL writing RGBA8 targets are
// dispatched as compute shaders.
func WithHostExecution(host bool) Option {
	return func(b *Backend) {
		b.host = host
	}
}

// Backend renders into hal textures.
type Backend struct {
	name   string
	device hal.Device
	queue  hal.Queue
	host   bool

	// open acquires the device during Init for backends that own it.
	open    func() (hal.Device, hal.Queue, func(), error)
	release func()

	workers   *parallel.WorkerPool
	modules   *progcache.Cache[uint64, hal.ShaderModule]
	layouts   map[int]*passLayout
	pipelines map[pipelineKey]hal.ComputePipeline

	initialized bool
	memoryUsed  int64
	targets     int
	dispatches  int
	readbacks   int
}

// New creates a backend bound to an existing device. The caller keeps
// ownership of the device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) *Backend {
	b := &Backend{name: backend.BackendWGPU, device: device, queue: queue}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromProvider creates a backend from a provider exposing
// HalDevice() any and HalQueue() any, such as a gogpu window context.
func NewFromProvider(provider any, opts ...Option) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoDevice)
	}
	return New(device, queue, opts...), nil
}

// NewNoop creates a backend that opens its own headless noop device on
// Init. The noop device executes no shaders, so passes run on the host
// unless WithHostExecution(false) is given.
func NewNoop(opts ...Option) *Backend {
	b := &Backend{name: backend.BackendNoop, open: openNoop, host: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func openNoop() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("%w: noop instance has no adapter", backend.ErrBackendNotAvailable)
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open noop device: %w", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

// Name returns backend.BackendWGPU or backend.BackendNoop.
func (b *Backend) Name() string {
	return b.name
}

// Init opens the device if the backend owns it and starts the kernel workers.
func (b *Backend) Init() error {
	if b.initialized {
		return nil
	}
	if b.open != nil {
		device, queue, release, err := b.open()
		if err != nil {
			return err
		}
		b.device, b.queue, b.release = device, queue, release
	}
	if b.device == nil || b.queue == nil {
		return fmt.Errorf("%w: no device bound", backend.ErrBackendNotAvailable)
	}
	b.workers = parallel.NewWorkerPool(0)
	b.modules = progcache.New[uint64, hal.ShaderModule](DefaultModuleCacheSize, func(_ uint64, m hal.ShaderModule) {
		b.device.DestroyShaderModule(m)
	})
	b.layouts = make(map[int]*passLayout)
	b.pipelines = make(map[pipelineKey]hal.ComputePipeline)
	b.initialized = true
	ggfx.Logger().Info("wgpu backend initialized",
		"backend", b.name, "workers", b.workers.Workers(), "host", b.host)
	return nil
}

// Close destroys cached pipelines and shader modules and, for owned
// devices, the device.
// Targets must be destroyed before Close.
func (b *Backend) Close() {
	if !b.initialized {
		return
	}
	if b.targets > 0 {
		ggfx.Logger().Warn("wgpu backend closed with live targets", "targets", b.targets)
	}
	b.destroyPipelines()
	b.modules.Clear()
	b.workers.Close()
	if b.release != nil {
		b.release()
		b.release = nil
		b.device, b.queue = nil, nil
	}
	b.initialized = false
}

// MemoryUsed returns the texture bytes held by live targets.
func (b *Backend) MemoryUsed() int64 {
	return b.memoryUsed
}

// LiveTargets returns the number of targets not yet destroyed.
func (b *Backend) LiveTargets() int {
	return b.targets
}

// CachedModules returns the number of shader modules currently alive.
func (b *Backend) CachedModules() int {
	if b.modules == nil {
		return 0
	}
	return b.modules.Len()
}

// CachedPipelines returns the number of compute pipelines currently alive.
func (b *Backend) CachedPipelines() int {
	return len(b.pipelines)
}

// Dispatches returns the number of passes run as compute shaders.
func (b *Backend) Dispatches() int {
	return b.dispatches
}

// Readbacks returns the number of texture to host copies performed.
func (b *Backend) Readbacks() int {
	return b.readbacks
}

// NewTarget creates a texture and its view. RGBA8 targets can also be
// written as storage textures.
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

	gpuFormat := format.GPUFormat()
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment |
		gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if format == ggfx.FormatRGBA8 {
		usage |= gputypes.TextureUsageStorageBinding
	}
	label := fmt.Sprintf("ggfx_target_%dx%d_%s", width, height, format)
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gpuFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create texture %s: %w", ggfx.ErrResourceExhausted, label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gpuFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("%w: create view %s: %w", ggfx.ErrResourceExhausted, label, err)
	}

	t := &target{
		owner:  b,
		tex:    tex,
		view:   view,
		mirror: ggfx.NewFrame(width, height, format),
		width:  width,
		height: height,
		format: format,
	}
	b.memoryUsed += t.SizeBytes()
	b.targets++
	return t, nil
}

// DestroyTarget destroys the texture and view of t.
func (b *Backend) DestroyTarget(t backend.Target) {
	wt, ok := t.(*target)
	if !ok || wt.owner != b || wt.tex == nil {
		return
	}
	b.device.DestroyTextureView(wt.view)
	b.device.DestroyTexture(wt.tex)
	wt.tex, wt.view, wt.mirror = nil, nil, nil
	b.memoryUsed -= wt.SizeBytes()
	b.targets--
}

// Compile validates src, compiles its WGSL with naga and loads the module.
// Sources with the same WGSL share one module. A source without WGSL runs
// on its kernel alone.
func (b *Backend) Compile(src shader.Source) (backend.Program, error) {
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if src.Kernel == nil {
		return nil, fmt.Errorf("%w: program %q has no kernel for host execution", ggfx.ErrShaderCompile, src.Name)
	}
	p := &program{owner: b, src: src}
	if src.WGSL == "" {
		return p, nil
	}

	digest := src.Digest()
	_, err := b.modules.GetOrCreate(digest, func() (hal.ShaderModule, error) {
		words, err := shader.Compile(src.WGSL)
		if err != nil {
			return nil, err
		}
		m, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  src.Name,
			Source: hal.ShaderSource{SPIRV: words},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create module: %w", ggfx.ErrShaderCompile, err)
		}
		ggfx.Logger().Debug("shader module created", "program", src.Name, "words", len(words))
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", src.Name, err)
	}
	p.digest = digest
	p.hasModule = true
	return p, nil
}

// DestroyProgram forgets p. Its shader module stays cached for other
// programs with the same source until evicted or Close.
func (b *Backend) DestroyProgram(p backend.Program) {
	if wp, ok := p.(*program); ok && wp.owner == b {
		wp.destroyed = true
	}
}

// Run dispatches p as a compute shader when it has a module and dst is
// RGBA8. Otherwise the kernel runs on the host mirrors and the result is
// written to dst.
func (b *Backend) Run(p backend.Program, dst backend.Target, inputs []backend.Target, u shader.Uniforms) error {
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	wp, ok := p.(*program)
	if !ok || wp.owner != b {
		return backend.ErrForeignResource
	}
	if wp.destroyed {
		return fmt.Errorf("%w: program %q was destroyed", ggfx.ErrInvalidState, wp.src.Name)
	}
	out, err := b.targetOf(dst)
	if err != nil {
		return err
	}
	if err := backend.CheckInputs(p, dst, inputs); err != nil {
		return err
	}
	ins := make([]*target, len(inputs))
	for i, in := range inputs {
		t, err := b.targetOf(in)
		if err != nil {
			return err
		}
		ins[i] = t
	}
	if b.canDispatch(wp, out) {
		return b.dispatch(wp, out, ins, u)
	}

	if err := b.sync(ins...); err != nil {
		return err
	}
	frames := make([]*ggfx.Frame, len(ins))
	for i, t := range ins {
		frames[i] = t.mirror
	}
	if err := backend.ExecKernel(b.workers, wp.src, out.mirror, frames, u); err != nil {
		return err
	}
	return b.flush(out)
}

// Upload copies f into the mirror of dst and writes it to the texture.
func (b *Backend) Upload(dst backend.Target, f *ggfx.Frame) error {
	t, err := b.targetOf(dst)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Width != t.width || f.Height != t.height {
		return fmt.Errorf("%w: upload %dx%d into %dx%d target",
			ggfx.ErrInvalidState, f.Width, f.Height, t.width, t.height)
	}
	if f.Format != t.format {
		f = f.Convert(t.format)
	}
	if err := t.mirror.CopyFrom(f); err != nil {
		return err
	}
	return b.flush(t)
}

// Download returns a copy of the target contents, reading the texture
// back when a dispatch wrote it last.
func (b *Backend) Download(src backend.Target) (*ggfx.Frame, error) {
	t, err := b.targetOf(src)
	if err != nil {
		return nil, err
	}
	if err := b.sync(t); err != nil {
		return nil, err
	}
	return t.mirror.Clone(), nil
}

// flush writes the host mirror of t to its texture.
func (b *Backend) flush(t *target) error {
	m := t.mirror
	err := b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
		},
		m.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(m.Stride),
			RowsPerImage: uint32(m.Height),
		},
		&hal.Extent3D{Width: uint32(m.Width), Height: uint32(m.Height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("upload %dx%d %s: %w", m.Width, m.Height, m.Format, err)
	}
	// The queue transitions the texture itself and leaves it sampleable.
	t.usage = gputypes.TextureUsageTextureBinding
	t.stale = false
	return nil
}

func (b *Backend) targetOf(t backend.Target) (*target, error) {
	wt, ok := t.(*target)
	if !ok || wt.owner != b {
		return nil, backend.ErrForeignResource
	}
	if wt.tex == nil {
		return nil, fmt.Errorf("%w: target was destroyed", ggfx.ErrInvalidState)
	}
	return wt, nil
}
