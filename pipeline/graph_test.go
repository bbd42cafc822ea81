// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/texture"
)

func ids(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestTopologicalOrder(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g,
		NewSink("out", &recorder{}, ggfx.ChannelOrderRGBA),
		mustPass(t, "mix", sumSource()),
		mustPass(t, "b", identitySource()),
		mustPass(t, "a", identitySource()),
		NewSource("src"),
	)
	mustConnect(t, g, "src", 0, "a", 0)
	mustConnect(t, g, "src", 0, "b", 0)
	mustConnect(t, g, "a", 0, "mix", 0)
	mustConnect(t, g, "b", 0, "mix", 1)
	mustConnect(t, g, "mix", 0, "out", 0)

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	// a and b become ready together; b was added first.
	want := []string{"src", "b", "a", "mix", "out"}
	if got := ids(order); !reflect.DeepEqual(got, want) {
		t.Errorf("TopologicalOrder() = %v, want %v", got, want)
	}

	pos := make(map[string]int)
	for i, n := range order {
		pos[n.ID()] = i
	}
	for _, e := range g.Edges() {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("edge %s violates order", e)
		}
	}
}

func TestConnectRejectsCycles(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g,
		mustPass(t, "a", identitySource()),
		mustPass(t, "b", sumSource()),
		mustPass(t, "c", sumSource()),
	)
	mustConnect(t, g, "a", 0, "b", 0)
	mustConnect(t, g, "b", 0, "c", 0)

	edges, version := g.Edges(), g.Version()
	tests := []struct {
		name     string
		from, to string
		in       int
	}{
		{"back edge to root", "c", "a", 0},
		{"back edge one hop", "c", "b", 1},
		{"self loop", "c", "c", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Connect(tt.from, 0, tt.to, tt.in)
			if !errors.Is(err, ggfx.ErrCycleDetected) {
				t.Fatalf("Connect() = %v, want ErrCycleDetected", err)
			}
			if !reflect.DeepEqual(g.Edges(), edges) || g.Version() != version {
				t.Error("failed Connect changed the graph")
			}
		})
	}
	if _, err := g.TopologicalOrder(); err != nil {
		t.Errorf("TopologicalOrder() after rejected cycles = %v", err)
	}
	// A diamond is not a cycle.
	mustConnect(t, g, "a", 0, "c", 1)
}

func TestConnectArity(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g,
		NewSource("src"),
		mustPass(t, "p", identitySource()),
		NewSink("out", &recorder{}, ggfx.ChannelOrderRGBA),
	)
	mustConnect(t, g, "src", 0, "p", 0)

	tests := []struct {
		name    string
		from    string
		out     int
		to      string
		in      int
		wantErr error
	}{
		{"output out of range", "src", 1, "out", 0, ggfx.ErrArityViolation},
		{"negative output", "src", -1, "out", 0, ggfx.ErrArityViolation},
		{"input out of range", "p", 0, "out", 1, ggfx.ErrArityViolation},
		{"slot already fed", "src", 0, "p", 0, ggfx.ErrArityViolation},
		{"sink has no output", "out", 0, "p", 0, ggfx.ErrArityViolation},
		{"source has no input", "p", 0, "src", 0, ggfx.ErrArityViolation},
		{"unknown producer", "nope", 0, "out", 0, ggfx.ErrInvalidState},
		{"unknown consumer", "p", 0, "nope", 0, ggfx.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Version()
			if err := g.Connect(tt.from, tt.out, tt.to, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("Connect() = %v, want %v", err, tt.wantErr)
			}
			if g.Version() != v {
				t.Error("failed Connect bumped the version")
			}
		})
	}
}

func TestAddRemoveDisconnect(t *testing.T) {
	g := NewGraph()
	src := NewSource("src")
	mustAdd(t, g, src, mustPass(t, "p", identitySource()), mustPass(t, "q", identitySource()))

	if err := g.AddNode(NewSource("src")); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("duplicate AddNode() = %v, want ErrInvalidState", err)
	}
	if err := g.AddNode(NewSource("")); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("AddNode(empty id) = %v, want ErrInvalidState", err)
	}

	mustConnect(t, g, "src", 0, "p", 0)
	mustConnect(t, g, "p", 0, "q", 0)
	if got := g.Consumers("src"); len(got) != 1 || got[0].To != "p" {
		t.Errorf("Consumers(src) = %v", got)
	}
	if got := g.Producers("q"); len(got) != 1 || got[0].From != "p" {
		t.Errorf("Producers(q) = %v", got)
	}

	if err := g.Disconnect("src", "q"); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("Disconnect(no edge) = %v, want ErrInvalidState", err)
	}
	if err := g.Disconnect("p", "q"); err != nil {
		t.Fatalf("Disconnect() = %v", err)
	}
	if len(g.Edges()) != 1 {
		t.Errorf("Edges() = %v after Disconnect", g.Edges())
	}

	if err := g.RemoveNode("p"); err != nil {
		t.Fatal(err)
	}
	if len(g.Edges()) != 0 || g.Len() != 2 {
		t.Errorf("RemoveNode left edges %v, %d nodes", g.Edges(), g.Len())
	}
	if err := g.RemoveNode("p"); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("RemoveNode(missing) = %v, want ErrInvalidState", err)
	}
	if got := ids(g.Nodes()); !reflect.DeepEqual(got, []string{"src", "q"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if n, ok := g.Node("src"); !ok || n != src {
		t.Error("Node(src) lookup failed")
	}
}

func TestBindInputArity(t *testing.T) {
	p := mustPass(t, "p", sumSource())
	for _, slot := range []int{-1, 2, 7} {
		if err := p.BindInput(slot, texture.Handle{}); !errors.Is(err, ggfx.ErrArityViolation) {
			t.Errorf("BindInput(%d) = %v, want ErrArityViolation", slot, err)
		}
	}
	if p.IsReady() {
		t.Error("pass with unbound inputs reports ready")
	}
	if err := NewSink("s", &recorder{}, ggfx.ChannelOrderRGBA).BindInput(1, texture.Handle{}); !errors.Is(err, ggfx.ErrArityViolation) {
		t.Errorf("Sink.BindInput(1) = %v, want ErrArityViolation", err)
	}
}

func TestNewPassRejectsInvalidSource(t *testing.T) {
	if _, err := NewPass("p", identitySource()); err != nil {
		t.Fatal(err)
	}
	bad := identitySource()
	bad.Kernel = nil
	if _, err := NewPass("p", bad); !errors.Is(err, ggfx.ErrShaderCompile) {
		t.Errorf("NewPass(no kernel, no WGSL) = %v, want ErrShaderCompile", err)
	}
}

func TestSizePolicy(t *testing.T) {
	if InheritFirstInput.IsFixed() || InheritFirstInput.String() != "inherit" {
		t.Errorf("InheritFirstInput = %v", InheritFirstInput)
	}
	p := Fixed(3, 2)
	if w, h := p.Size(); !p.IsFixed() || w != 3 || h != 2 || p.String() != "3x2" {
		t.Errorf("Fixed(3, 2) = %v", p)
	}
}
