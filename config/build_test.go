// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/sink"
)

func mustParse(t *testing.T, doc string) *Config {
	t.Helper()
	c, err := Parse([]byte(doc), YAML)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBuildAndRun(t *testing.T) {
	c := mustParse(t, `
backend: software
workers: 2
nodes:
  - {id: a, type: source}
  - {id: b, type: source}
  - {id: dim, type: brightness, params: {factor: 0.5}}
  - {id: mix, type: blend, params: {mode: add}}
  - {id: out, type: recorder, params: {order: bgra}}
edges:
  - {from: a, to: dim}
  - {from: dim, to: mix}
  - {from: b, to: mix, input: 1}
  - {from: mix, to: out}
`)
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	order, err := p.Graph.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, n := range order {
		ids = append(ids, n.ID())
	}
	if got := len(ids); got != 5 || ids[0] != "a" || ids[4] != "out" {
		t.Errorf("order = %v", ids)
	}
	if p.Types["mix"] != "blend" || len(p.Inputs) != 0 {
		t.Errorf("Types = %v, Inputs = %v", p.Types, p.Inputs)
	}
	if sinks := p.Sinks(); len(sinks) != 1 || sinks[0].ChannelOrder() != ggfx.ChannelOrderBGRA {
		t.Fatalf("sinks = %v", sinks)
	}

	b, err := c.OpenBackend()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	r := pipeline.NewRenderer(p.Graph, c.NewPool(b))

	frame := func(v uint8) *ggfx.Frame {
		f := ggfx.NewFrame(3, 3, ggfx.FormatRGBA8)
		f.Fill(color.RGBA{v, v, v, 255})
		return f
	}
	if err := r.PushFrame("a", frame(200)); err != nil {
		t.Fatal(err)
	}
	if err := r.PushFrame("b", frame(20)); err != nil {
		t.Fatal(err)
	}
	if err := r.Drive(); err != nil {
		t.Fatal(err)
	}

	consumer, ok := p.Consumer("out")
	if !ok {
		t.Fatal("no consumer for out")
	}
	rec := consumer.(*sink.Recorder)
	if rec.Len() != 1 {
		t.Fatalf("recorded %d frames", rec.Len())
	}
	got := rec.Frames()[0]
	if got.Format != ggfx.FormatBGRA8 {
		t.Errorf("format = %v", got.Format)
	}
	if red, _, _, a := got.RGBA(1, 1); red < 118 || red > 122 || a != 255 {
		t.Errorf("pixel red = %d alpha = %d, want about 120", red, a)
	}
}

func TestBuildAllTypes(t *testing.T) {
	c := mustParse(t, `
nodes:
  - {id: in, type: source, size: [4, 4], format: bgra8}
  - {id: id, type: identity}
  - {id: inv, type: invert}
  - {id: gray, type: grayscale}
  - {id: sep, type: sepia}
  - {id: con, type: contrast, params: {factor: 1.2}}
  - {id: sat, type: saturation}
  - {id: hue, type: hue, params: {degrees: 45}}
  - {id: op, type: opacity, params: {factor: 0.5}}
  - {id: tint, type: tint, params: {r: 255, amount: 0.2}}
  - {id: cm, type: colormatrix, params: {matrix: [1,0,0,0,0, 0,1,0,0,0, 0,0,1,0,0, 0,0,0,1,0]}}
  - {id: g, type: gaussian, params: {sigma: 0.8}}
  - {id: bi, type: bilateral, params: {distance_normalization: 4, texel_spacing: 2}}
  - {id: bl, type: blend, params: {mode: screen, inputs: 3}}
  - {id: out, type: latest}
  - {id: drop, type: discard}
`)
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if p.Graph.Len() != len(c.Nodes) {
		t.Errorf("graph has %d nodes, want %d", p.Graph.Len(), len(c.Nodes))
	}
	n, _ := p.Graph.Node("bl")
	if n.InputArity() != 3 {
		t.Errorf("blend arity = %d", n.InputArity())
	}
	n, _ = p.Graph.Node("in")
	if src := n.(*pipeline.Source); src.Format() != ggfx.FormatBGRA8 || !src.Policy().IsFixed() {
		t.Errorf("source format %v policy %v", src.Format(), src.Policy())
	}
	n, _ = p.Graph.Node("bi")
	if got := n.(*pipeline.Compound).Uniforms().Float("texelSpacing", 0); got != 2 {
		t.Errorf("texel spacing = %v", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"cycle", `
nodes: [{id: a, type: invert}, {id: b, type: invert}]
edges: [{from: a, to: b}, {from: b, to: a}]`, ggfx.ErrCycleDetected},
		{"input index", `
nodes: [{id: a, type: source}, {id: b, type: invert}]
edges: [{from: a, to: b, input: 1}]`, ggfx.ErrArityViolation},
		{"bad param type", `
nodes: [{id: a, type: gaussian, params: {sigma: wide}}]`, ErrInvalid},
		{"sigma range", `
nodes: [{id: a, type: gaussian, params: {sigma: 1000}}]`, ggfx.ErrInvalidState},
		{"short matrix", `
nodes: [{id: a, type: colormatrix, params: {matrix: [1, 2]}}]`, ErrInvalid},
		{"bad blend mode", `
nodes: [{id: a, type: blend, params: {mode: burn}}]`, ggfx.ErrInvalidState},
		{"file without path", `
nodes: [{id: a, type: file}]`, ErrInvalid},
		{"file extension", `
nodes: [{id: a, type: file, path: out.gif}]`, sink.ErrUnsupportedFormat},
		{"bad order", `
nodes: [{id: a, type: latest, params: {order: argb}}]`, ggfx.ErrInvalidState},
		{"bad format", `
nodes: [{id: a, type: source, format: rgb565}]`, ggfx.ErrInvalidState},
		{"tint range", `
nodes: [{id: a, type: tint, params: {g: 300}}]`, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustParse(t, tt.doc)
			if _, err := c.Build(); !errors.Is(err, tt.want) {
				t.Errorf("Build = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	Register("custom", func(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
		return pipeline.NewSource(spec.ID, opts...), nil
	})
	defer Unregister("custom")

	found := false
	for _, typ := range Types() {
		found = found || typ == "custom"
	}
	if !found || !IsRegistered("custom") {
		t.Fatal("custom type not registered")
	}
	c := mustParse(t, "nodes: [{id: x, type: custom}]")
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Close()

	Unregister("custom")
	if _, err := Parse([]byte("nodes: [{id: x, type: custom}]"), YAML); !errors.Is(err, ErrInvalid) {
		t.Errorf("Parse after Unregister = %v", err)
	}
}
