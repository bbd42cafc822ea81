// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/shader"
)

// Bind group slots shared by every pass shader. Input 0 sits at binding 0;
// input k > 0 at binding k+2.
const (
	bindingOutput   = 1
	bindingUniforms = 2
)

// rowAlign is the BytesPerRow alignment of texture to buffer copies.
const rowAlign = 256

// passLayout is the bind group and pipeline layout for one input count.
type passLayout struct {
	group    hal.BindGroupLayout
	pipeline hal.PipelineLayout
}

type pipelineKey struct {
	digest uint64
	inputs int
}

func inputBinding(i int) uint32 {
	if i == 0 {
		return 0
	}
	return uint32(i + bindingUniforms)
}

// layoutFor returns the cached layout for passes sampling n inputs.
func (b *Backend) layoutFor(n int) (*passLayout, error) {
	if l, ok := b.layouts[n]; ok {
		return l, nil
	}
	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    bindingOutput,
			Visibility: gputypes.ShaderStageCompute,
			StorageTexture: &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessWriteOnly,
				Format:        gputypes.TextureFormatRGBA8Unorm,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    bindingUniforms,
			Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: shader.UniformAlign,
			},
		},
	}
	for i := range n {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    inputBinding(i),
			Visibility: gputypes.ShaderStageCompute,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}

	label := fmt.Sprintf("ggfx_pass_%d_inputs", n)
	group, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %s: %w", label, err)
	}
	pl, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: []hal.BindGroupLayout{group},
	})
	if err != nil {
		b.device.DestroyBindGroupLayout(group)
		return nil, fmt.Errorf("create pipeline layout %s: %w", label, err)
	}
	l := &passLayout{group: group, pipeline: pl}
	b.layouts[n] = l
	return l, nil
}

// pipelineFor returns the compute pipeline of p, creating it on first use.
func (b *Backend) pipelineFor(p *program, layout *passLayout) (hal.ComputePipeline, error) {
	key := pipelineKey{digest: p.digest, inputs: p.src.Inputs}
	if cp, ok := b.pipelines[key]; ok {
		return cp, nil
	}
	module, ok := p.module()
	if !ok {
		return nil, fmt.Errorf("%w: program %q has no shader module", ggfx.ErrShaderCompile, p.src.Name)
	}
	cp, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  p.src.Name,
		Layout: layout.pipeline,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: p.src.Entry(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: program %q: create pipeline: %w", ggfx.ErrShaderCompile, p.src.Name, err)
	}
	b.pipelines[key] = cp
	ggfx.Logger().Debug("compute pipeline created", "program", p.src.Name, "inputs", p.src.Inputs)
	return cp, nil
}

// destroyPipelines releases every cached pipeline and layout.
func (b *Backend) destroyPipelines() {
	for k, cp := range b.pipelines {
		b.device.DestroyComputePipeline(cp)
		delete(b.pipelines, k)
	}
	for n, l := range b.layouts {
		b.device.DestroyPipelineLayout(l.pipeline)
		b.device.DestroyBindGroupLayout(l.group)
		delete(b.layouts, n)
	}
}

// canDispatch reports whether p can run as a compute shader into out.
func (b *Backend) canDispatch(p *program, out *target) bool {
	return !b.host && p.hasModule && out.format == ggfx.FormatRGBA8
}

// dispatch runs p as a compute shader writing out. The result stays on the
// device until a readback.
func (b *Backend) dispatch(p *program, out *target, inputs []*target, u shader.Uniforms) error {
	params, err := p.src.UniformBytes(u)
	if err != nil {
		return err
	}
	layout, err := b.layoutFor(len(inputs))
	if err != nil {
		return err
	}
	cp, err := b.pipelineFor(p, layout)
	if err != nil {
		return err
	}

	ubuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.src.Name + "_params",
		Size:  uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: uniform buffer: %w", ggfx.ErrResourceExhausted, err)
	}
	defer b.device.DestroyBuffer(ubuf)
	if err := b.queue.WriteBuffer(ubuf, 0, params); err != nil {
		return fmt.Errorf("program %q: write uniforms: %w", p.src.Name, err)
	}

	entries := []gputypes.BindGroupEntry{
		{Binding: bindingOutput, Resource: gputypes.TextureViewBinding{TextureView: out.view.NativeHandle()}},
		{Binding: bindingUniforms, Resource: gputypes.BufferBinding{Buffer: ubuf.NativeHandle(), Size: uint64(len(params))}},
	}
	for i, in := range inputs {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  inputBinding(i),
			Resource: gputypes.TextureViewBinding{TextureView: in.view.NativeHandle()},
		})
	}
	group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.src.Name,
		Layout:  layout.group,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("program %q: create bind group: %w", p.src.Name, err)
	}
	defer b.device.DestroyBindGroup(group)

	barriers := make([]hal.TextureBarrier, 0, len(inputs)+1)
	for _, in := range inputs {
		barriers = appendBarrier(barriers, in, gputypes.TextureUsageTextureBinding)
	}
	barriers = appendBarrier(barriers, out, gputypes.TextureUsageStorageBinding)

	groupsX := (out.width + shader.WorkgroupSize - 1) / shader.WorkgroupSize
	groupsY := (out.height + shader.WorkgroupSize - 1) / shader.WorkgroupSize
	err = b.submit(p.src.Name, func(enc hal.CommandEncoder) {
		if len(barriers) > 0 {
			enc.TransitionTextures(barriers)
		}
		pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: p.src.Name})
		pass.SetPipeline(cp)
		pass.SetBindGroup(0, group, nil)
		pass.Dispatch(uint32(groupsX), uint32(groupsY), 1)
		pass.End()
	})
	if err != nil {
		return fmt.Errorf("program %q: %w", p.src.Name, err)
	}
	out.stale = true
	b.dispatches++
	return nil
}

// readback copies the texture of t into its host mirror.
func (b *Backend) readback(t *target) error {
	m := t.mirror
	rowBytes := m.Width * m.Format.BytesPerPixel()
	padded := (rowBytes + rowAlign - 1) / rowAlign * rowAlign
	size := uint64(padded * m.Height)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ggfx_readback",
		Size:  size,
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("%w: readback buffer: %w", ggfx.ErrResourceExhausted, err)
	}
	defer b.device.DestroyBuffer(staging)

	var barriers []hal.TextureBarrier
	barriers = appendBarrier(barriers, t, gputypes.TextureUsageCopySrc)
	err = b.submit("ggfx_readback", func(enc hal.CommandEncoder) {
		if len(barriers) > 0 {
			enc.TransitionTextures(barriers)
		}
		enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{
				BytesPerRow:  uint32(padded),
				RowsPerImage: uint32(m.Height),
			},
			TextureBase: hal.ImageCopyTexture{
				Texture: t.tex,
				Aspect:  gputypes.TextureAspectAll,
			},
			Size: hal.Extent3D{Width: uint32(m.Width), Height: uint32(m.Height), DepthOrArrayLayers: 1},
		}})
	})
	if err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	mapping, err := b.device.MapBuffer(staging, 0, size)
	if err != nil {
		return fmt.Errorf("readback: map: %w", err)
	}
	data := unsafe.Slice((*byte)(mapping.Ptr), size)
	for y := range m.Height {
		copy(m.Pix[y*m.Stride:y*m.Stride+rowBytes], data[y*padded:])
	}
	if err := b.device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("readback: unmap: %w", err)
	}
	t.stale = false
	b.readbacks++
	return nil
}

// sync brings the mirrors of ts up to date with their textures.
func (b *Backend) sync(ts ...*target) error {
	for _, t := range ts {
		if t.stale {
			if err := b.readback(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// submit records one command buffer with record, submits it and waits
// for the queue to drain.
func (b *Backend) submit(label string, record func(hal.CommandEncoder)) error {
	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	defer enc.Destroy()
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	record(enc)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmd)
	if _, err := b.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := b.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

// appendBarrier transitions t to usage unless it is already there.
func appendBarrier(barriers []hal.TextureBarrier, t *target, usage gputypes.TextureUsage) []hal.TextureBarrier {
	if t.usage == usage {
		return barriers
	}
	barriers = append(barriers, hal.TextureBarrier{
		Texture: t.tex,
		Range: hal.TextureRange{
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		},
		Usage: hal.TextureUsageTransition{OldUsage: t.usage, NewUsage: usage},
	})
	t.usage = usage
	return barriers
}
