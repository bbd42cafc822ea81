// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend/software"
	"github.com/gogpu/ggfx/shader"
	"github.com/gogpu/ggfx/texture"
)

var errKernel = errors.New("kernel fault")

func newPool(t *testing.T, opts texture.Options) *texture.Pool {
	t.Helper()
	b := software.New(software.WithWorkers(1))
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Close)
	return texture.New(b, opts)
}

// mapKernel builds a one-input kernel applying fn to every pixel, sampling
// the input with nearest filtering when sizes differ.
func mapKernel(fn func(r, g, b, a uint8) (uint8, uint8, uint8, uint8)) shader.Kernel {
	return func(dst *ggfx.Frame, src []*ggfx.Frame, _ shader.Uniforms, y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				r, g, b, a := fn(shader.Nearest(src[0], x, y, dst.Width, dst.Height))
				dst.SetRGBA(x, y, r, g, b, a)
			}
		}
		return nil
	}
}

func identitySource() shader.Source {
	return shader.Source{Name: "identity", Inputs: 1, Kernel: mapKernel(
		func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) { return r, g, b, a })}
}

// addRedSource adds k to the red channel, saturating.
func addRedSource(k int) shader.Source {
	return shader.Source{Name: "add-red", Inputs: 1, Kernel: mapKernel(
		func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
			return shader.ClampByte(float32(int(r) + k)), g, b, a
		})}
}

// doubleRedSource doubles the red channel, saturating.
func doubleRedSource() shader.Source {
	return shader.Source{Name: "double-red", Inputs: 1, Kernel: mapKernel(
		func(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
			return shader.ClampByte(float32(r) * 2), g, b, a
		})}
}

// sumSource adds two inputs channel by channel.
func sumSource() shader.Source {
	return shader.Source{Name: "sum", Inputs: 2, Kernel: func(dst *ggfx.Frame, src []*ggfx.Frame, _ shader.Uniforms, y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				r0, g0, b0, a0 := src[0].RGBA(x, y)
				r1, g1, b1, a1 := src[1].RGBA(x, y)
				dst.SetRGBA(x, y,
					shader.ClampByte(float32(r0)+float32(r1)),
					shader.ClampByte(float32(g0)+float32(g1)),
					shader.ClampByte(float32(b0)+float32(b1)),
					shader.ClampByte(float32(a0)+float32(a1)))
			}
		}
		return nil
	}}
}

// scaleRedSource multiplies red by the "gain" uniform.
func scaleRedSource() shader.Source {
	return shader.Source{Name: "scale-red", Inputs: 1, Kernel: func(dst *ggfx.Frame, src []*ggfx.Frame, u shader.Uniforms, y0, y1 int) error {
		gain := u.Float("gain", 1)
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				r, g, b, a := src[0].RGBA(x, y)
				dst.SetRGBA(x, y, shader.ClampByte(float32(r)*gain), g, b, a)
			}
		}
		return nil
	}}
}

func failingSource() shader.Source {
	return shader.Source{Name: "failing", Inputs: 1, Kernel: func(*ggfx.Frame, []*ggfx.Frame, shader.Uniforms, int, int) error {
		return errKernel
	}}
}

func mustPass(t *testing.T, id string, src shader.Source, opts ...NodeOption) *Pass {
	t.Helper()
	p, err := NewPass(id, src, opts...)
	if err != nil {
		t.Fatalf("NewPass(%q) = %v", id, err)
	}
	return p
}

func mustAdd(t *testing.T, g *Graph, nodes ...Node) {
	t.Helper()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%q) = %v", n.ID(), err)
		}
	}
}

func mustConnect(t *testing.T, g *Graph, from string, out int, to string, in int) {
	t.Helper()
	if err := g.Connect(from, out, to, in); err != nil {
		t.Fatalf("Connect(%s:%d -> %s:%d) = %v", from, out, to, in, err)
	}
}

// recorder collects consumed frames.
type recorder struct {
	mu     sync.Mutex
	frames []*ggfx.Frame
	err    error
}

func (r *recorder) Consume(f *ggfx.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) last() *ggfx.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// gradient returns a w x h frame whose pixels are all distinct.
func gradient(w, h int) *ggfx.Frame {
	f := ggfx.NewFrame(w, h, ggfx.FormatRGBA8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGBA(x, y, uint8(x*16), uint8(y*16), uint8(x+y), 255)
		}
	}
	return f
}
