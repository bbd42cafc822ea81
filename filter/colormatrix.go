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

// Matrix is a 4x5 colour matrix in row-major order:
//
//	R' = m[0]*R  + m[1]*G  + m[2]*B  + m[3]*A  + m[4]
//	G' = m[5]*R  + m[6]*G  + m[7]*B  + m[8]*A  + m[9]
//	B' = m[10]*R + m[11]*G + m[12]*B + m[13]*A + m[14]
//	A' = m[15]*R + m[16]*G + m[17]*B + m[18]*A + m[19]
//
// Channels are straight-alpha values in [0, 255]; the fifth column is a
// bias in the same range.
type Matrix [20]float32

// MatrixUniform is the uniform holding the 20 matrix coefficients.
const MatrixUniform = "matrix"

// IdentityMatrix leaves colours unchanged.
func IdentityMatrix() Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// BrightnessMatrix scales RGB by factor: 0 is black, 1 unchanged.
func BrightnessMatrix(factor float32) Matrix {
	return Matrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales RGB around mid grey: 0 is flat grey, 1 unchanged.
func ContrastMatrix(factor float32) Matrix {
	offset := 128 * (1 - factor)
	return Matrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix blends between Rec. 709 luma (0) and the input (1).
// Values above 1 oversaturate.
func SaturationMatrix(factor float32) Matrix {
	const lr, lg, lb = 0.2126, 0.7152, 0.0722
	inv := 1 - factor
	return Matrix{
		lr*inv + factor, lg * inv, lb * inv, 0, 0,
		lr * inv, lg*inv + factor, lb * inv, 0, 0,
		lr * inv, lg * inv, lb*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// HueRotateMatrix rotates hue by degrees around the luma axis.
func HueRotateMatrix(degrees float32) Matrix {
	const lr, lg, lb = 0.213, 0.715, 0.072
	rad := float64(degrees) * math.Pi / 180
	c := float32(math.Cos(rad))
	s := float32(math.Sin(rad))
	return Matrix{
		lr + c*(1-lr) - s*lr, lg - c*lg - s*lg, lb - c*lb + s*(1-lb), 0, 0,
		lr - c*lr + s*0.143, lg + c*(1-lg) + s*0.140, lb - c*lb - s*0.283, 0, 0,
		lr - c*lr - s*(1-lr), lg - c*lg + s*lg, lb + c*(1-lb) + s*lb, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// OpacityMatrix multiplies alpha by factor.
func OpacityMatrix(factor float32) Matrix {
	m := IdentityMatrix()
	m[18] = factor
	return m
}

// TintMatrix mixes every pixel towards c by amount in [0, 1].
func TintMatrix(r, g, b uint8, amount float32) Matrix {
	inv := 1 - amount
	return Matrix{
		inv, 0, 0, 0, float32(r) * amount,
		0, inv, 0, 0, float32(g) * amount,
		0, 0, inv, 0, float32(b) * amount,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix that applies m first and next second.
func (m Matrix) Then(next Matrix) Matrix {
	var out Matrix
	for row := range 4 {
		for col := range 4 {
			var sum float32
			for k := range 4 {
				sum += next[row*5+k] * m[k*5+col]
			}
			out[row*5+col] = sum
		}
		out[row*5+4] = next[row*5+0]*m[4] + next[row*5+1]*m[9] +
			next[row*5+2]*m[14] + next[row*5+3]*m[19] + next[row*5+4]
	}
	return out
}

// Apply transforms one straight-alpha pixel.
func (m *Matrix) Apply(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
	fr, fg, fb, fa := float32(r), float32(g), float32(b), float32(a)
	return shader.ClampByte(m[0]*fr + m[1]*fg + m[2]*fb + m[3]*fa + m[4]),
		shader.ClampByte(m[5]*fr + m[6]*fg + m[7]*fb + m[8]*fa + m[9]),
		shader.ClampByte(m[10]*fr + m[11]*fg + m[12]*fb + m[13]*fa + m[14]),
		shader.ClampByte(m[15]*fr + m[16]*fg + m[17]*fb + m[18]*fa + m[19])
}

// ColorMatrix creates a pass applying m to every pixel. The matrix can be
// replaced between frames with SetMatrix.
func ColorMatrix(id string, m Matrix, opts ...pipeline.NodeOption) (*pipeline.Pass, error) {
	p, err := pipeline.NewPass(id, ColorMatrixSource(), opts...)
	if err != nil {
		return nil, err
	}
	SetMatrix(p, m)
	return p, nil
}

// SetMatrix stores m in the matrix uniform of n.
func SetMatrix(n Tunable, m Matrix) {
	n.SetUniform(MatrixUniform, m[:]...)
}

// ColorMatrixSource returns the shader source used by ColorMatrix.
// A pass without the matrix uniform fails with ErrInvalidState.
func ColorMatrixSource() shader.Source {
	return shader.Source{
		Name:   "color-matrix",
		WGSL:   wgsl("colormatrix"),
		Inputs: 1,
		Kernel: func(dst *ggfx.Frame, src []*ggfx.Frame, u shader.Uniforms, y0, y1 int) error {
			v := u.Vec(MatrixUniform)
			if len(v) != len(Matrix{}) {
				return fmt.Errorf("%w: %s uniform has %d values, want %d",
					ggfx.ErrInvalidState, MatrixUniform, len(v), len(Matrix{}))
			}
			var m Matrix
			copy(m[:], v)
			return pointKernel(func(r, g, b, a uint8, _ shader.Uniforms) (uint8, uint8, uint8, uint8) {
				return m.Apply(r, g, b, a)
			})(dst, src, u, y0, y1)
		},
		Pack: packColorMatrix,
	}
}

// packColorMatrix splits the matrix into the four coefficient rows and
// the bias column of the WGSL Params block.
func packColorMatrix(u shader.Uniforms) ([]byte, error) {
	v := u.Vec(MatrixUniform)
	if len(v) != len(Matrix{}) {
		return nil, fmt.Errorf("%w: %s uniform has %d values, want %d",
			ggfx.ErrInvalidState, MatrixUniform, len(v), len(Matrix{}))
	}
	var p shader.Packer
	for row := range 4 {
		p.F32(v[row*5 : row*5+4]...)
	}
	p.F32(v[4], v[9], v[14], v[19])
	return p.Bytes(), nil
}
