// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/shader"
)

// Uniform names shared by the two-pass blurs.
const (
	DirectionUniform = "direction"
	SigmaUniform     = "sigma"
	RadiusUniform    = "radius"
	WeightsUniform   = "weights"
)

// GaussianBlur creates a separable Gaussian blur: a horizontal pass into
// one intermediate texture followed by a vertical pass.
func GaussianBlur(id string, sigma float32, opts ...pipeline.NodeOption) (*pipeline.Compound, error) {
	if sigma < 0 || sigma > MaxSigma {
		return nil, fmt.Errorf("%w: blur %q sigma %g outside [0, %d]", ggfx.ErrInvalidState, id, sigma, MaxSigma)
	}
	c, err := pipeline.NewTwoPass(id, GaussianSource(), GaussianSource(), opts...)
	if err != nil {
		return nil, err
	}
	setDirections(c)
	SetSigma(c, sigma)
	return c, nil
}

// SetSigma retunes a Gaussian blur. Sigma is clamped to [0, MaxSigma].
// The kernel radius and weights are stored alongside for GPU backends.
func SetSigma(n Tunable, sigma float32) {
	sigma = min(max(sigma, 0), MaxSigma)
	weights := CachedGaussianKernel(float64(sigma))
	n.SetUniform(SigmaUniform, sigma)
	n.SetUniform(RadiusUniform, float32(len(weights)/2))
	n.SetUniform(WeightsUniform, weights...)
}

// setDirections points pass0 of a two-pass compound along x and pass1
// along y.
func setDirections(c *pipeline.Compound) {
	if p, ok := c.Pass("pass0"); ok {
		p.SetUniform(DirectionUniform, 1, 0)
	}
	if p, ok := c.Pass("pass1"); ok {
		p.SetUniform(DirectionUniform, 0, 1)
	}
}

// GaussianSource returns one direction of the Gaussian blur. The
// direction uniform selects the axis.
func GaussianSource() shader.Source {
	return shader.Source{
		Name:   "gaussian",
		WGSL:   wgsl("gaussian"),
		Inputs: 1,
		Kernel: gaussianKernel,
		Pack:   packGaussian,
	}
}

// gaussianWeightSlots is the capacity of the WGSL weights array.
const gaussianWeightSlots = 64 * 4

func packGaussian(u shader.Uniforms) ([]byte, error) {
	weights := CachedGaussianKernel(float64(u.Float(SigmaUniform, 0)))
	if len(weights) > gaussianWeightSlots {
		return nil, fmt.Errorf("%w: %d gaussian taps exceed %d", ggfx.ErrInvalidState, len(weights), gaussianWeightSlots)
	}
	dx, dy := direction(u)
	var p shader.Packer
	p.F32(float32(dx), float32(dy)).I32(int32(len(weights) / 2)).I32(0)
	p.F32(weights...)
	p.F32(make([]float32, gaussianWeightSlots-len(weights))...)
	return p.Bytes(), nil
}

func gaussianKernel(dst *ggfx.Frame, src []*ggfx.Frame, u shader.Uniforms, y0, y1 int) error {
	weights := CachedGaussianKernel(float64(u.Float(SigmaUniform, 0)))
	half := len(weights) / 2
	dx, dy := direction(u)
	in := src[0]
	for y := y0; y < y1; y++ {
		for x := 0; x < dst.Width; x++ {
			var sr, sg, sb, sa float32
			for i, w := range weights {
				off := i - half
				r, g, b, a := sampleAt(in, dst, x, y, off*dx, off*dy)
				sr += w * float32(r)
				sg += w * float32(g)
				sb += w * float32(b)
				sa += w * float32(a)
			}
			dst.SetRGBA(x, y, shader.ClampByte(sr), shader.ClampByte(sg), shader.ClampByte(sb), shader.ClampByte(sa))
		}
	}
	return nil
}
