// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/shader"
	"github.com/gogpu/ggfx/texture"
)

// Pass runs one shader program over its inputs.
//
// The program is compiled on the first render and recompiled only if the
// pool moves to another backend.
type Pass struct {
	nodeBase

	src      shader.Source
	program  backend.Program
	compiled backend.Backend
}

// NewPass creates a pass for src. The pass has src.Inputs input slots.
func NewPass(id string, src shader.Source, opts ...NodeOption) (*Pass, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	p := &Pass{src: src}
	p.init(id, src.Inputs, opts)
	return p, nil
}

// OutputArity returns 1.
func (p *Pass) OutputArity() int { return 1 }

// Source returns the shader source of the pass.
func (p *Pass) Source() shader.Source { return p.src }

// Render runs the program into a freshly acquired target. The target is
// released again if the program fails.
func (p *Pass) Render(rc *RenderContext) (texture.Handle, error) {
	if !p.IsReady() {
		return texture.Handle{}, fmt.Errorf("%w: pass %q has unbound inputs", ggfx.ErrInvalidState, p.id)
	}
	prog, err := p.compile(rc.Backend())
	if err != nil {
		return texture.Handle{}, err
	}
	inputs, err := p.targets(rc.Pool)
	if err != nil {
		return texture.Handle{}, err
	}
	h, dst, err := rc.acquire(p.format)
	if err != nil {
		return texture.Handle{}, err
	}
	if err := rc.Backend().Run(prog, dst, inputs, p.Uniforms()); err != nil {
		_ = rc.Pool.Release(h)
		return texture.Handle{}, err
	}
	return h, nil
}

func (p *Pass) compile(b backend.Backend) (backend.Program, error) {
	if p.program != nil && p.compiled == b {
		return p.program, nil
	}
	if p.program != nil {
		p.compiled.DestroyProgram(p.program)
		p.program, p.compiled = nil, nil
	}
	prog, err := b.Compile(p.src)
	if err != nil {
		return nil, err
	}
	ggfx.Logger().Debug("pipeline: compiled pass", "node", p.id, "program", p.src.Name, "backend", b.Name())
	p.program, p.compiled = prog, b
	return prog, nil
}

// Close destroys the compiled program.
func (p *Pass) Close() error {
	if p.program != nil {
		p.compiled.DestroyProgram(p.program)
		p.program, p.compiled = nil, nil
	}
	return nil
}
