// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/shader"
)

// target is a hal texture plus a host copy used by uploads, readbacks and
// host-executed passes.
type target struct {
	owner  *Backend
	tex    hal.Texture
	view   hal.TextureView
	mirror *ggfx.Frame

	// usage is the state the last barrier left the texture in.
	usage gputypes.TextureUsage
	// stale is set when a dispatch wrote the texture after the mirror.
	stale bool

	width  int
	height int
	format ggfx.Format
}

func (t *target) Width() int          { return t.width }
func (t *target) Height() int         { return t.height }
func (t *target) Format() ggfx.Format { return t.format }
func (t *target) SizeBytes() int64    { return backend.TargetBytes(t.width, t.height, t.format) }

// Texture returns the hal texture behind a target created by this package,
// or nil.
func Texture(t backend.Target) hal.Texture {
	if wt, ok := t.(*target); ok {
		return wt.tex
	}
	return nil
}

// TextureView returns the sampled view of a target created by this
// package, or nil.
func TextureView(t backend.Target) hal.TextureView {
	if wt, ok := t.(*target); ok {
		return wt.view
	}
	return nil
}

type program struct {
	owner     *Backend
	src       shader.Source
	digest    uint64
	hasModule bool
	destroyed bool
}

func (p *program) Name() string { return p.src.Name }
func (p *program) Inputs() int  { return p.src.Inputs }

// module returns the cached shader module of p, if it has WGSL.
func (p *program) module() (hal.ShaderModule, bool) {
	if !p.hasModule {
		return nil, false
	}
	return p.owner.modules.Get(p.digest)
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Target  = (*target)(nil)
	_ backend.Program = (*program)(nil)
)
