// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend/software"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/texture"
)

func newPool(t *testing.T) *texture.Pool {
	t.Helper()
	b := software.New(software.WithWorkers(2))
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Close)
	return texture.New(b, texture.Options{})
}

// render runs n once over inputs and returns the sink output.
func render(t *testing.T, n pipeline.Node, inputs ...*ggfx.Frame) *ggfx.Frame {
	t.Helper()
	out, err := tryRender(t, n, inputs...)
	if err != nil {
		t.Fatalf("render %q: %v", n.ID(), err)
	}
	return out
}

func tryRender(t *testing.T, n pipeline.Node, inputs ...*ggfx.Frame) (*ggfx.Frame, error) {
	t.Helper()
	pool := newPool(t)
	g := pipeline.NewGraph()
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}
	for i := range inputs {
		id := fmt.Sprintf("in%d", i)
		if err := g.AddNode(pipeline.NewSource(id)); err != nil {
			t.Fatal(err)
		}
		if err := g.Connect(id, 0, n.ID(), i); err != nil {
			t.Fatal(err)
		}
	}
	var out *ggfx.Frame
	sink := pipeline.NewSink("out", pipeline.ConsumerFunc(func(f *ggfx.Frame) error {
		out = f
		return nil
	}), ggfx.ChannelOrderRGBA)
	if err := g.AddNode(sink); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(n.ID(), 0, "out", 0); err != nil {
		t.Fatal(err)
	}

	r := pipeline.NewRenderer(g, pool)
	for i, in := range inputs {
		if err := r.PushFrame(fmt.Sprintf("in%d", i), in); err != nil {
			t.Fatal(err)
		}
	}
	err := r.Drive()
	if pool.CheckedOut() != 0 {
		t.Errorf("%d targets still checked out", pool.CheckedOut())
	}
	return out, err
}

func solid(w, h int, c color.RGBA) *ggfx.Frame {
	f := ggfx.NewFrame(w, h, ggfx.FormatRGBA8)
	f.Fill(c)
	return f
}

// near reports whether every channel of got is within tol of want.
func near(got, want color.RGBA, tol int) bool {
	d := func(a, b uint8) bool {
		v := int(a) - int(b)
		return v >= -tol && v <= tol
	}
	return d(got.R, want.R) && d(got.G, want.G) && d(got.B, want.B) && d(got.A, want.A)
}

func pixel(f *ggfx.Frame, x, y int) color.RGBA {
	r, g, b, a := f.RGBA(x, y)
	return color.RGBA{r, g, b, a}
}
