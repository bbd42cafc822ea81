// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/shader"
)

// Invert replaces each colour channel c with 255-c. Alpha is kept.
func Invert(id string, opts ...pipeline.NodeOption) (*pipeline.Pass, error) {
	return pipeline.NewPass(id, InvertSource(), opts...)
}

// Grayscale replaces RGB with the weighted sum 0.3R + 0.6G + 0.1B.
func Grayscale(id string, opts ...pipeline.NodeOption) (*pipeline.Pass, error) {
	return pipeline.NewPass(id, GrayscaleSource(), opts...)
}

// Sepia applies the classic sepia tone matrix.
func Sepia(id string, opts ...pipeline.NodeOption) (*pipeline.Pass, error) {
	return pipeline.NewPass(id, SepiaSource(), opts...)
}

// InvertSource returns the shader source used by Invert.
func InvertSource() shader.Source {
	return effectSource("invert", func(img image.Image) image.Image { return effect.Invert(img) })
}

// GrayscaleSource returns the shader source used by Grayscale.
func GrayscaleSource() shader.Source {
	return effectSource("grayscale", func(img image.Image) image.Image { return effect.Grayscale(img) })
}

// SepiaSource returns the shader source used by Sepia.
func SepiaSource() shader.Source {
	return effectSource("sepia", func(img image.Image) image.Image { return effect.Sepia(img) })
}

// effectSource wraps a whole-image effect as a one-input pass. The effect
// parallelizes internally, so the pass is marked serial.
func effectSource(name string, fn func(image.Image) image.Image) shader.Source {
	return shader.Source{
		Name:   name,
		WGSL:   wgsl(name),
		Inputs: 1,
		Serial: true,
		Kernel: func(dst *ggfx.Frame, src []*ggfx.Frame, _ shader.Uniforms, y0, y1 int) error {
			in := imageOf(src[0], dst)
			storeRows(dst, fn(in), in, y0, y1)
			return nil
		},
	}
}
