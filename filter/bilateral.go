// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"fmt"
	"math"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/shader"
)

// Bilateral blur uniforms and their defaults.
const (
	DistanceNormalizationUniform = "distanceNormalization"
	TexelSpacingUniform          = "texelSpacing"

	DefaultDistanceNormalization = 8
	DefaultTexelSpacing          = 1
)

// bilateralWeights are the spatial weights by distance from the centre tap.
var bilateralWeights = [5]float32{0.18, 0.15, 0.12, 0.09, 0.05}

// BilateralBlur creates an edge-preserving two-pass blur over nine taps
// per direction. A sample's weight falls linearly with its RGBA distance
// from the centre colour, scaled by distanceNormalization; at a scaled
// distance of 1 the sample is ignored. Zero gives a plain weighted blur.
func BilateralBlur(id string, distanceNormalization float32, opts ...pipeline.NodeOption) (*pipeline.Compound, error) {
	if distanceNormalization < 0 {
		return nil, fmt.Errorf("%w: bilateral %q distance normalization %g is negative",
			ggfx.ErrInvalidState, id, distanceNormalization)
	}
	c, err := pipeline.NewTwoPass(id, BilateralSource(), BilateralSource(), opts...)
	if err != nil {
		return nil, err
	}
	setDirections(c)
	c.SetUniform(DistanceNormalizationUniform, distanceNormalization)
	if _, ok := c.Uniforms()[TexelSpacingUniform]; !ok {
		c.SetUniform(TexelSpacingUniform, DefaultTexelSpacing)
	}
	return c, nil
}

// BilateralSource returns one direction of the bilateral blur.
func BilateralSource() shader.Source {
	return shader.Source{
		Name:   "bilateral",
		WGSL:   wgsl("bilateral"),
		Inputs: 1,
		Kernel: bilateralKernel,
		Pack: func(u shader.Uniforms) ([]byte, error) {
			dx, dy := direction(u)
			var p shader.Packer
			p.F32(float32(dx), float32(dy))
			p.F32(u.Float(TexelSpacingUniform, DefaultTexelSpacing))
			p.F32(u.Float(DistanceNormalizationUniform, DefaultDistanceNormalization))
			return p.Bytes(), nil
		},
	}
}

func bilateralKernel(dst *ggfx.Frame, src []*ggfx.Frame, u shader.Uniforms, y0, y1 int) error {
	norm := u.Float(DistanceNormalizationUniform, DefaultDistanceNormalization)
	spacing := float64(u.Float(TexelSpacingUniform, DefaultTexelSpacing))
	dx, dy := direction(u)

	var offsets [9]int
	for i := range offsets {
		offsets[i] = int(math.Round(float64(i-4) * spacing))
	}

	in := src[0]
	for y := y0; y < y1; y++ {
		for x := 0; x < dst.Width; x++ {
			centre := unit(sampleAt(in, dst, x, y, 0, 0))
			w0 := bilateralWeights[0]
			total := w0
			sum := [4]float32{centre[0] * w0, centre[1] * w0, centre[2] * w0, centre[3] * w0}
			for i, off := range offsets {
				if i == 4 {
					continue
				}
				s := unit(sampleAt(in, dst, x, y, off*dx, off*dy))
				d := min(distance(centre, s)*norm, 1)
				w := bilateralWeights[abs(i-4)] * (1 - d)
				total += w
				for c := range sum {
					sum[c] += s[c] * w
				}
			}
			dst.SetRGBA(x, y,
				shader.ClampByte(sum[0]/total*255),
				shader.ClampByte(sum[1]/total*255),
				shader.ClampByte(sum[2]/total*255),
				shader.ClampByte(sum[3]/total*255))
		}
	}
	return nil
}

func unit(r, g, b, a uint8) [4]float32 {
	return [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

func distance(p, q [4]float32) float32 {
	var sum float32
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
