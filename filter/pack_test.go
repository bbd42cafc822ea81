// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/shader"
)

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestSourcesPackDeclaredParams(t *testing.T) {
	for _, src := range Sources() {
		hasParams := strings.Contains(src.WGSL, "var<uniform> params")
		if hasParams != (src.Pack != nil) {
			t.Errorf("%s: WGSL params=%v, Pack set=%v", src.Name, hasParams, src.Pack != nil)
		}
	}
}

func TestPackColorMatrix(t *testing.T) {
	m := ContrastMatrix(0.5)
	b, err := ColorMatrixSource().UniformBytes(shader.Uniforms{MatrixUniform: m[:]})
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 80 {
		t.Fatalf("len = %d, want 80", len(b))
	}
	if got := floatAt(b, 0); got != 0.5 {
		t.Errorf("rows[0].x = %g, want 0.5", got)
	}
	if got := floatAt(b, 4+1); got != 0.5 {
		t.Errorf("rows[1].y = %g, want 0.5", got)
	}
	for i, want := range []float32{64, 64, 64, 0} {
		if got := floatAt(b, 16+i); got != want {
			t.Errorf("bias[%d] = %g, want %g", i, got, want)
		}
	}

	_, err = ColorMatrixSource().UniformBytes(shader.Uniforms{MatrixUniform: {1, 2}})
	if !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("short matrix error = %v, want ErrInvalidState", err)
	}
}

func TestPackGaussian(t *testing.T) {
	u := shader.Uniforms{SigmaUniform: {2}, DirectionUniform: {0, 1}}
	b, err := GaussianSource().UniformBytes(u)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 16+gaussianWeightSlots*4 {
		t.Fatalf("len = %d, want %d", len(b), 16+gaussianWeightSlots*4)
	}
	if floatAt(b, 0) != 0 || floatAt(b, 1) != 1 {
		t.Errorf("direction = %g,%g, want 0,1", floatAt(b, 0), floatAt(b, 1))
	}
	weights := CachedGaussianKernel(2)
	if got := int32(binary.LittleEndian.Uint32(b[8:])); got != int32(len(weights)/2) {
		t.Errorf("radius = %d, want %d", got, len(weights)/2)
	}
	for i, w := range weights {
		if got := floatAt(b, 4+i); got != w {
			t.Fatalf("weight[%d] = %g, want %g", i, got, w)
		}
	}

	if _, err := GaussianSource().UniformBytes(shader.Uniforms{SigmaUniform: {MaxSigma}}); err != nil {
		t.Errorf("MaxSigma does not fit: %v", err)
	}
}

func TestPackBlendAndBilateral(t *testing.T) {
	b, err := BlendSource().UniformBytes(shader.Uniforms{ModeUniform: {float32(BlendScreen)}})
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(b); got != uint32(BlendScreen) {
		t.Errorf("mode = %d, want %d", got, BlendScreen)
	}
	if _, err := BlendSource().UniformBytes(shader.Uniforms{ModeUniform: {99}}); !errors.Is(err, ggfx.ErrInvalidState) {
		t.Errorf("invalid mode error = %v, want ErrInvalidState", err)
	}

	b, err = BilateralSource().UniformBytes(shader.Uniforms{DirectionUniform: {1, 0}, DistanceNormalizationUniform: {4}})
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{1, 0, DefaultTexelSpacing, 4}
	for i, w := range want {
		if got := floatAt(b, i); got != w {
			t.Errorf("params[%d] = %g, want %g", i, got, w)
		}
	}
}
