// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"sync"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/shader"
	"github.com/gogpu/ggfx/texture"
)

// Node is a vertex of the render graph.
//
// The set of node kinds is closed: *Source, *Pass, *Compound and *Sink.
type Node interface {
	// ID returns the unique node identifier.
	ID() string

	// InputArity returns the number of input slots.
	InputArity() int

	// OutputArity returns the number of outputs (1, or 0 for sinks).
	OutputArity() int

	// BindInput binds the texture feeding input slot. It fails with
	// ggfx.ErrArityViolation when slot is out of range.
	BindInput(slot int, h texture.Handle) error

	// IsReady reports whether every input slot is bound (for sources:
	// whether a frame has been pushed).
	IsReady() bool

	// Render executes the node into a texture acquired from rc.Pool and
	// returns it. Sinks return the zero Handle.
	Render(rc *RenderContext) (texture.Handle, error)

	// Close releases the compiled program of the node.
	Close() error

	base() *nodeBase
	resolveSize(pool *texture.Pool) (width, height int, err error)
}

// RenderContext carries what a node needs to render one frame.
type RenderContext struct {
	// Pool provides render targets.
	Pool *texture.Pool

	// Width and Height are the resolved output size of the node.
	Width  int
	Height int
}

// Backend returns the device the pool allocates on.
func (rc *RenderContext) Backend() backend.Backend {
	return rc.Pool.Backend()
}

// acquire checks out the output target of n.
func (rc *RenderContext) acquire(format ggfx.Format) (texture.Handle, backend.Target, error) {
	h, err := rc.Pool.Acquire(rc.Width, rc.Height, format)
	if err != nil {
		return texture.Handle{}, nil, err
	}
	t, err := rc.Pool.Target(h)
	if err != nil {
		_ = rc.Pool.Release(h)
		return texture.Handle{}, nil, err
	}
	return h, t, nil
}

// SizePolicy decides the output size of a node.
type SizePolicy struct {
	fixed  bool
	width  int
	height int
}

// InheritFirstInput sizes the output like the texture bound to input 0.
var InheritFirstInput = SizePolicy{}

// Fixed sizes the output to width x height.
func Fixed(width, height int) SizePolicy {
	return SizePolicy{fixed: true, width: width, height: height}
}

// IsFixed reports whether the policy ignores the inputs.
func (p SizePolicy) IsFixed() bool {
	return p.fixed
}

// Size returns the fixed size, or 0, 0 for InheritFirstInput.
func (p SizePolicy) Size() (width, height int) {
	return p.width, p.height
}

// String returns "inherit" or "WxH".
func (p SizePolicy) String() string {
	if !p.fixed {
		return "inherit"
	}
	return fmt.Sprintf("%dx%d", p.width, p.height)
}

// NodeOption configures a node.
type NodeOption func(*nodeBase)

// WithSize gives the node a fixed output size.
func WithSize(width, height int) NodeOption {
	return func(b *nodeBase) {
		b.policy = Fixed(width, height)
	}
}

// WithSizePolicy sets the output size policy.
func WithSizePolicy(p SizePolicy) NodeOption {
	return func(b *nodeBase) {
		b.policy = p
	}
}

// WithFormat sets the output pixel format (RGBA8 by default).
func WithFormat(f ggfx.Format) NodeOption {
	return func(b *nodeBase) {
		b.format = f
	}
}

// WithUniforms sets initial uniform values.
func WithUniforms(u shader.Uniforms) NodeOption {
	return func(b *nodeBase) {
		b.uniforms = b.uniforms.Merge(u)
	}
}

// nodeBase holds the state every node kind shares.
type nodeBase struct {
	id     string
	inputs []texture.Handle
	policy SizePolicy
	format ggfx.Format

	mu       sync.Mutex
	uniforms shader.Uniforms
}

func (b *nodeBase) init(id string, arity int, opts []NodeOption) {
	b.id = id
	b.inputs = make([]texture.Handle, arity)
	for _, opt := range opts {
		opt(b)
	}
}

func (b *nodeBase) base() *nodeBase { return b }

// ID returns the node identifier.
func (b *nodeBase) ID() string { return b.id }

// InputArity returns the number of input slots.
func (b *nodeBase) InputArity() int { return len(b.inputs) }

// Policy returns the output size policy.
func (b *nodeBase) Policy() SizePolicy { return b.policy }

// Format returns the output pixel format.
func (b *nodeBase) Format() ggfx.Format { return b.format }

// BindInput binds h to slot.
func (b *nodeBase) BindInput(slot int, h texture.Handle) error {
	if slot < 0 || slot >= len(b.inputs) {
		return fmt.Errorf("%w: %q has %d inputs, got slot %d",
			ggfx.ErrArityViolation, b.id, len(b.inputs), slot)
	}
	b.inputs[slot] = h
	return nil
}

// IsReady reports whether every slot is bound.
func (b *nodeBase) IsReady() bool {
	for _, h := range b.inputs {
		if !h.IsValid() {
			return false
		}
	}
	return true
}

// SetUniform stores a uniform value used from the next frame on.
func (b *nodeBase) SetUniform(name string, values ...float32) {
	b.mu.Lock()
	b.uniforms.Set(name, values...)
	b.mu.Unlock()
}

// Uniforms returns a copy of the current uniform table.
func (b *nodeBase) Uniforms() shader.Uniforms {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uniforms.Clone()
}

func (b *nodeBase) unbind() {
	for i := range b.inputs {
		b.inputs[i] = texture.Handle{}
	}
}

// targets resolves the bound inputs.
func (b *nodeBase) targets(pool *texture.Pool) ([]backend.Target, error) {
	out := make([]backend.Target, len(b.inputs))
	for i, h := range b.inputs {
		t, err := pool.Target(h)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// resolveSize applies the size policy to the bound inputs.
func (b *nodeBase) resolveSize(pool *texture.Pool) (int, int, error) {
	if b.policy.fixed {
		if b.policy.width <= 0 || b.policy.height <= 0 {
			return 0, 0, fmt.Errorf("%w: fixed size %s", ggfx.ErrInvalidState, b.policy)
		}
		return b.policy.width, b.policy.height, nil
	}
	if len(b.inputs) == 0 {
		return 0, 0, fmt.Errorf("%w: %q has no input to inherit its size from", ggfx.ErrInvalidState, b.id)
	}
	k, err := pool.Key(b.inputs[0])
	if err != nil {
		return 0, 0, err
	}
	return k.Width, k.Height, nil
}
