// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/shader"
	"github.com/gogpu/ggfx/texture"
)

// Compound is a multi-pass filter that behaves as one node.
//
// It owns a private graph whose input proxies stand for its input slots.
// Rendering drives the private graph on the outer pool: the outer input
// textures are borrowed, intermediates are released before Render
// returns, and only the designated output stays checked out. Arity,
// sizing and failure behave exactly as for a Pass.
type Compound struct {
	nodeBase

	graph   *Graph
	proxies []*inputProxy
	output  string
	plan    *plan
}

// CompoundBuilder assembles the private graph of a Compound.
type CompoundBuilder struct {
	c *Compound
}

// NewCompound creates a compound with the given number of inputs and
// populates its private graph with build.
//
// build must set an output with SetOutput and feed every input slot of the
// nodes it adds. Sources and sinks cannot be added. Uniforms passed
// WithUniforms are applied to every inner node.
func NewCompound(id string, inputs int, build func(*CompoundBuilder) error, opts ...NodeOption) (*Compound, error) {
	if inputs < 0 {
		return nil, fmt.Errorf("%w: compound %q with %d inputs", ggfx.ErrArityViolation, id, inputs)
	}
	c := &Compound{graph: NewGraph()}
	c.init(id, inputs, opts)

	for i := range inputs {
		p := &inputProxy{index: i}
		p.init(fmt.Sprintf("input%d", i), 0, nil)
		if err := c.graph.AddNode(p); err != nil {
			return nil, err
		}
		c.proxies = append(c.proxies, p)
	}

	if err := build(&CompoundBuilder{c: c}); err != nil {
		_ = c.graph.Close()
		return nil, fmt.Errorf("compound %q: %w", id, err)
	}
	if err := c.validate(); err != nil {
		_ = c.graph.Close()
		return nil, fmt.Errorf("compound %q: %w", id, err)
	}

	out, _ := c.graph.Node(c.output)
	c.format = out.base().format
	if len(c.uniforms) > 0 {
		for _, name := range c.uniforms.Names() {
			c.SetUniform(name, c.uniforms[name]...)
		}
	}
	return c, nil
}

// NewTwoPass creates a compound of two chained passes, the usual shape of
// a separable filter. first samples the compound inputs; second samples
// the single intermediate texture first produced.
func NewTwoPass(id string, first, second shader.Source, opts ...NodeOption) (*Compound, error) {
	if second.Inputs != 1 {
		return nil, fmt.Errorf("%w: second pass of %q must sample 1 input, has %d",
			ggfx.ErrArityViolation, id, second.Inputs)
	}
	return NewCompound(id, first.Inputs, func(b *CompoundBuilder) error {
		p0, err := NewPass("pass0", first, WithFormat(b.Format()))
		if err != nil {
			return err
		}
		p1, err := NewPass("pass1", second, WithFormat(b.Format()))
		if err != nil {
			return err
		}
		if err := b.Add(p0); err != nil {
			return err
		}
		if err := b.Add(p1); err != nil {
			return err
		}
		for i := range first.Inputs {
			if err := b.Connect(b.Input(i), 0, p0, i); err != nil {
				return err
			}
		}
		if err := b.Connect(p0, 0, p1, 0); err != nil {
			return err
		}
		return b.SetOutput(p1)
	}, opts...)
}

// Input returns the proxy standing for input slot i, or nil.
func (b *CompoundBuilder) Input(i int) Node {
	if i < 0 || i >= len(b.c.proxies) {
		return nil
	}
	return b.c.proxies[i]
}

// Format returns the output format requested for the compound.
func (b *CompoundBuilder) Format() ggfx.Format {
	return b.c.format
}

// Add inserts a pass or nested compound.
func (b *CompoundBuilder) Add(n Node) error {
	switch n.(type) {
	case *Pass, *Compound:
		return b.c.graph.AddNode(n)
	default:
		return fmt.Errorf("%w: compound cannot contain %T", ggfx.ErrInvalidState, n)
	}
}

// Connect links two nodes of the private graph.
func (b *CompoundBuilder) Connect(producer Node, output int, consumer Node, input int) error {
	if producer == nil || consumer == nil {
		return fmt.Errorf("%w: connect with nil node", ggfx.ErrArityViolation)
	}
	return b.c.graph.Connect(producer.ID(), output, consumer.ID(), input)
}

// SetOutput designates the node whose texture the compound returns.
func (b *CompoundBuilder) SetOutput(n Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil output", ggfx.ErrInvalidState)
	}
	if _, ok := n.(*inputProxy); ok {
		return fmt.Errorf("%w: output cannot be a compound input", ggfx.ErrInvalidState)
	}
	if got, ok := b.c.graph.Node(n.ID()); !ok || got != n {
		return fmt.Errorf("%w: output %q is not part of the compound", ggfx.ErrInvalidState, n.ID())
	}
	b.c.output = n.ID()
	return nil
}

func (c *Compound) validate() error {
	if c.output == "" {
		return fmt.Errorf("%w: no output set", ggfx.ErrInvalidState)
	}
	if _, err := c.graph.TopologicalOrder(); err != nil {
		return err
	}
	for _, n := range c.graph.Nodes() {
		fed := len(c.graph.Producers(n.ID()))
		if fed != n.InputArity() {
			return fmt.Errorf("%w: %q has %d of %d inputs connected",
				ggfx.ErrArityViolation, n.ID(), fed, n.InputArity())
		}
	}
	return nil
}

// OutputArity returns 1.
func (c *Compound) OutputArity() int { return 1 }

// Graph returns the private graph, for inspection only.
func (c *Compound) Graph() *Graph { return c.graph }

// Output returns the ID of the inner node whose texture is returned.
func (c *Compound) Output() string { return c.output }

// Pass returns the inner pass with the given ID.
func (c *Compound) Pass(id string) (*Pass, bool) {
	n, ok := c.graph.Node(id)
	if !ok {
		return nil, false
	}
	p, ok := n.(*Pass)
	return p, ok
}

// SetUniform sets a uniform on every inner node.
func (c *Compound) SetUniform(name string, values ...float32) {
	c.nodeBase.SetUniform(name, values...)
	for _, n := range c.graph.Nodes() {
		switch inner := n.(type) {
		case *Pass:
			inner.SetUniform(name, values...)
		case *Compound:
			inner.SetUniform(name, values...)
		}
	}
}

// Render drives the private graph on rc.Pool and returns the output
// texture. The output takes the size resolved for the compound.
func (c *Compound) Render(rc *RenderContext) (texture.Handle, error) {
	if !c.IsReady() {
		return texture.Handle{}, fmt.Errorf("%w: compound %q has unbound inputs", ggfx.ErrInvalidState, c.id)
	}
	for i, p := range c.proxies {
		p.handle = c.inputs[i]
	}
	defer func() {
		for _, p := range c.proxies {
			p.handle = texture.Handle{}
		}
	}()

	p, err := c.graph.begin(c.plan)
	if err != nil {
		return texture.Handle{}, err
	}
	defer c.graph.end()
	c.plan = p

	run := newFrameRun(rc.Pool, p)
	run.keep = c.output
	run.keepSize = &[2]int{rc.Width, rc.Height}
	return run.execute()
}

// Close closes every inner node.
func (c *Compound) Close() error {
	return c.graph.Close()
}

// inputProxy stands for a compound input inside the private graph. Its
// output is the outer texture, borrowed for the duration of one render.
type inputProxy struct {
	nodeBase

	index  int
	handle texture.Handle
}

func (p *inputProxy) OutputArity() int { return 1 }

func (p *inputProxy) IsReady() bool { return p.handle.IsValid() }

func (p *inputProxy) Render(*RenderContext) (texture.Handle, error) {
	if !p.handle.IsValid() {
		return texture.Handle{}, fmt.Errorf("%w: compound input %d is unbound", ggfx.ErrInvalidState, p.index)
	}
	return p.handle, nil
}

func (p *inputProxy) Close() error { return nil }

func (p *inputProxy) resolveSize(pool *texture.Pool) (int, int, error) {
	k, err := pool.Key(p.handle)
	if err != nil {
		return 0, 0, err
	}
	return k.Width, k.Height, nil
}
