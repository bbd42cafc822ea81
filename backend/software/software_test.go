// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/shader"
)

func newBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b := New(opts...)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

// addKernel writes src[0] + src[1] per channel, saturating.
func addKernel(dst *ggfx.Frame, src []*ggfx.Frame, _ shader.Uniforms, y0, y1 int) error {
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
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendSoftware) {
		t.Fatal("software backend not registered")
	}
	b := backend.Get(backend.BackendSoftware)
	if b == nil || b.Name() != backend.BackendSoftware {
		t.Fatalf("Get() = %v", b)
	}
}

func TestNotInitialized(t *testing.T) {
	b := New()
	if _, err := b.NewTarget(4, 4, ggfx.FormatRGBA8); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("NewTarget() error = %v, want ErrNotInitialized", err)
	}
	if _, err := b.Compile(shader.Source{Name: "x", Kernel: addKernel}); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("Compile() error = %v, want ErrNotInitialized", err)
	}
}

func TestUploadRunDownload(t *testing.T) {
	for _, workers := range []int{1, 4} {
		b := newBackend(t, WithWorkers(workers))

		const w, h = 8, 40
		a, err := b.NewTarget(w, h, ggfx.FormatRGBA8)
		if err != nil {
			t.Fatal(err)
		}
		c, _ := b.NewTarget(w, h, ggfx.FormatRGBA8)
		dst, _ := b.NewTarget(w, h, ggfx.FormatRGBA8)

		fa := ggfx.NewFrame(w, h, ggfx.FormatRGBA8)
		fa.Fill(color.RGBA{10, 20, 30, 100})
		fc := ggfx.NewFrame(w, h, ggfx.FormatBGRA8)
		fc.Fill(color.RGBA{1, 2, 3, 200})
		if err := b.Upload(a, fa); err != nil {
			t.Fatal(err)
		}
		if err := b.Upload(c, fc); err != nil {
			t.Fatal(err)
		}

		p, err := b.Compile(shader.Source{Name: "add", Inputs: 2, Kernel: addKernel})
		if err != nil {
			t.Fatal(err)
		}
		if err := b.Run(p, dst, []backend.Target{a, c}, nil); err != nil {
			t.Fatalf("Run() = %v", err)
		}
		out, err := b.Download(dst)
		if err != nil {
			t.Fatal(err)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bb, al := out.RGBA(x, y)
				if r != 11 || g != 22 || bb != 33 || al != 255 {
					t.Fatalf("workers=%d pixel (%d,%d) = %d,%d,%d,%d", workers, x, y, r, g, bb, al)
				}
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	b := newBackend(t)
	dst, _ := b.NewTarget(2, 2, ggfx.FormatRGBA8)
	in, _ := b.NewTarget(2, 2, ggfx.FormatRGBA8)

	fail := errors.New("bad uniform")
	failing, _ := b.Compile(shader.Source{Name: "fail", Inputs: 1,
		Kernel: func(*ggfx.Frame, []*ggfx.Frame, shader.Uniforms, int, int) error { return fail }})
	panicking, _ := b.Compile(shader.Source{Name: "panic", Inputs: 1,
		Kernel: func(*ggfx.Frame, []*ggfx.Frame, shader.Uniforms, int, int) error { panic("index out of range") }})

	tests := []struct {
		name   string
		p      backend.Program
		inputs []backend.Target
		want   error
	}{
		{"kernel error", failing, []backend.Target{in}, ggfx.ErrShaderCompile},
		{"kernel panic", panicking, []backend.Target{in}, ggfx.ErrShaderCompile},
		{"too few inputs", failing, nil, ggfx.ErrArityViolation},
		{"aliased output", failing, []backend.Target{dst}, ggfx.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Run(tt.p, dst, tt.inputs, nil); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}

	other := newBackend(t)
	foreign, _ := other.NewTarget(2, 2, ggfx.FormatRGBA8)
	if err := b.Run(failing, foreign, []backend.Target{in}, nil); !errors.Is(err, backend.ErrForeignResource) {
		t.Errorf("Run(foreign) error = %v, want ErrForeignResource", err)
	}
}

func TestCompileErrors(t *testing.T) {
	b := newBackend(t)
	tests := []struct {
		name string
		src  shader.Source
	}{
		{"no name", shader.Source{Kernel: addKernel}},
		{"wgsl only", shader.Source{Name: "gpu", WGSL: "@compute @workgroup_size(1) fn main() {}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Compile(tt.src); !errors.Is(err, ggfx.ErrShaderCompile) {
				t.Errorf("Compile() error = %v, want ErrShaderCompile", err)
			}
		})
	}

	v := newBackend(t, WithWGSLValidation(true))
	_, err := v.Compile(shader.Source{Name: "broken", WGSL: "fn main( {", Kernel: addKernel})
	if !errors.Is(err, ggfx.ErrShaderCompile) {
		t.Errorf("Compile(invalid WGSL) error = %v, want ErrShaderCompile", err)
	}
}

func TestMemoryLimit(t *testing.T) {
	b := newBackend(t, WithMemoryLimit(2*4*4*4))

	t1, err := b.NewTarget(4, 4, ggfx.FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.NewTarget(4, 4, ggfx.FormatRGBA8); err != nil {
		t.Fatal(err)
	}
	if _, err := b.NewTarget(4, 4, ggfx.FormatRGBA8); !errors.Is(err, ggfx.ErrResourceExhausted) {
		t.Fatalf("third NewTarget() error = %v, want ErrResourceExhausted", err)
	}

	b.DestroyTarget(t1)
	b.DestroyTarget(t1)
	if b.MemoryUsed() != 64 || b.LiveTargets() != 1 {
		t.Errorf("after destroy: used=%d live=%d", b.MemoryUsed(), b.LiveTargets())
	}
	if t1.Width() != 4 || t1.SizeBytes() != 64 {
		t.Errorf("destroyed target geometry = %dx? %d bytes", t1.Width(), t1.SizeBytes())
	}
	if _, err := b.Download(t1); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("Download(destroyed) error = %v, want ErrInvalidState", err)
	}
	if _, err := b.NewTarget(4, 4, ggfx.FormatRGBA8); err != nil {
		t.Errorf("NewTarget after destroy = %v", err)
	}
}

func TestUploadSizeMismatch(t *testing.T) {
	b := newBackend(t)
	dst, _ := b.NewTarget(4, 4, ggfx.FormatR8)
	if err := b.Upload(dst, ggfx.NewFrame(3, 4, ggfx.FormatRGBA8)); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("Upload() error = %v, want ErrInvalidState", err)
	}

	f := ggfx.NewFrame(4, 4, ggfx.FormatRGBA8)
	f.Fill(color.RGBA{255, 255, 255, 255})
	if err := b.Upload(dst, f); err != nil {
		t.Fatal(err)
	}
	out, _ := b.Download(dst)
	if out.Format != ggfx.FormatR8 || out.Pix[0] != 255 {
		t.Errorf("R8 download = %s %v", out.Format, out.Pix[:1])
	}
}
