// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"embed"
	"image"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/shader"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// wgsl returns the embedded shader text for name.
func wgsl(name string) string {
	b, err := shaderFS.ReadFile("shaders/" + name + ".wgsl")
	if err != nil {
		panic("filter: missing shader " + name)
	}
	return string(b)
}

// Tunable is implemented by nodes whose uniforms can be changed between
// frames. Both *pipeline.Pass and *pipeline.Compound satisfy it.
type Tunable interface {
	SetUniform(name string, values ...float32)
}

// Identity copies its input. It is the cheapest way to rescale or
// reformat a texture.
func Identity(id string, opts ...pipeline.NodeOption) (*pipeline.Pass, error) {
	return pipeline.NewPass(id, IdentitySource(), opts...)
}

// IdentitySource returns the shader source used by Identity.
func IdentitySource() shader.Source {
	return shader.Source{
		Name:   "identity",
		WGSL:   wgsl("identity"),
		Inputs: 1,
		Kernel: pointKernel(func(r, g, b, a uint8, _ shader.Uniforms) (uint8, uint8, uint8, uint8) {
			return r, g, b, a
		}),
	}
}

// pointFunc maps one straight-alpha pixel to another.
type pointFunc func(r, g, b, a uint8, u shader.Uniforms) (uint8, uint8, uint8, uint8)

// pointKernel builds a one-input kernel that applies fn to each pixel,
// sampling the input with nearest filtering when sizes differ.
func pointKernel(fn pointFunc) shader.Kernel {
	return func(dst *ggfx.Frame, src []*ggfx.Frame, u shader.Uniforms, y0, y1 int) error {
		in := src[0]
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				r, g, b, a := shader.Nearest(in, x, y, dst.Width, dst.Height)
				r, g, b, a = fn(r, g, b, a, u)
				dst.SetRGBA(x, y, r, g, b, a)
			}
		}
		return nil
	}
}

// imageOf returns src as an *image.RGBA the size of dst.
func imageOf(src, dst *ggfx.Frame) *image.RGBA {
	if src.Width != dst.Width || src.Height != dst.Height {
		src = src.Resize(dst.Width, dst.Height)
	}
	return src.Image()
}

// storeRows writes rows [y0, y1) of img into dst. Gray images take their
// alpha from alpha, which must have the size of dst.
func storeRows(dst *ggfx.Frame, img image.Image, alpha *image.RGBA, y0, y1 int) {
	switch m := img.(type) {
	case *image.RGBA:
		for y := y0; y < y1; y++ {
			row := m.Pix[y*m.Stride:]
			for x := 0; x < dst.Width; x++ {
				p := row[x*4 : x*4+4]
				dst.SetRGBA(x, y, p[0], p[1], p[2], p[3])
			}
		}
	case *image.Gray:
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				v := m.Pix[y*m.Stride+x]
				dst.SetRGBA(x, y, v, v, v, alpha.Pix[y*alpha.Stride+x*4+3])
			}
		}
	default:
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.Width; x++ {
				r, g, b, a := img.At(x, y).RGBA()
				dst.SetRGBA(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
			}
		}
	}
}

// sampleAt reads src at the position matching destination pixel (x, y),
// offset by (dx, dy) source texels, with clamp-to-edge addressing.
func sampleAt(src, dst *ggfx.Frame, x, y, dx, dy int) (r, g, b, a uint8) {
	sx, sy := x, y
	if src.Width != dst.Width || src.Height != dst.Height {
		sx = x * src.Width / dst.Width
		sy = y * src.Height / dst.Height
	}
	return shader.Clamped(src, sx+dx, sy+dy)
}

// direction reads the "direction" uniform as an integer texel step.
// Horizontal is the default.
func direction(u shader.Uniforms) (dx, dy int) {
	v := u.Vec("direction")
	if len(v) < 2 {
		return 1, 0
	}
	return int(v[0]), int(v[1])
}

// Sources returns the shader source of every built-in pass in a stable
// order.
func Sources() []shader.Source {
	return []shader.Source{
		IdentitySource(),
		ColorMatrixSource(),
		InvertSource(),
		GrayscaleSource(),
		SepiaSource(),
		BlendSource(),
		GaussianSource(),
		BilateralSource(),
	}
}
