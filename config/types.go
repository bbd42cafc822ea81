// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/filter"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/sink"
)

func init() {
	Register("source", func(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
		return pipeline.NewSource(spec.ID, opts...), nil
	})

	for typ, build := range map[string]func(string, ...pipeline.NodeOption) (*pipeline.Pass, error){
		"identity":  filter.Identity,
		"invert":    filter.Invert,
		"grayscale": filter.Grayscale,
		"sepia":     filter.Sepia,
	} {
		Register(typ, func(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
			return asNode(build(spec.ID, opts...))
		})
	}

	for typ, matrix := range matrixTypes {
		Register(typ, func(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
			m, err := matrix(spec.Params)
			if err != nil {
				return nil, err
			}
			return asNode(filter.ColorMatrix(spec.ID, m, opts...))
		})
	}

	Register("blend", newBlend)
	Register("gaussian", newGaussian)
	Register("bilateral", newBilateral)

	Register("file", newFileSink)
	Register("recorder", func(spec NodeSpec, _ []pipeline.NodeOption) (pipeline.Node, error) {
		limit, err := spec.Params.Int("limit", 0)
		if err != nil {
			return nil, err
		}
		return newSink(spec, sink.NewRecorder(limit))
	})
	Register("latest", func(spec NodeSpec, _ []pipeline.NodeOption) (pipeline.Node, error) {
		return newSink(spec, sink.NewLatest())
	})
	Register("discard", func(spec NodeSpec, _ []pipeline.NodeOption) (pipeline.Node, error) {
		return newSink(spec, sink.Func(func(*ggfx.Frame) error { return nil }))
	})
}

var matrixTypes = map[string]func(Params) (filter.Matrix, error){
	"brightness": scalarMatrix("factor", 1, filter.BrightnessMatrix),
	"contrast":   scalarMatrix("factor", 1, filter.ContrastMatrix),
	"saturation": scalarMatrix("factor", 1, filter.SaturationMatrix),
	"opacity":    scalarMatrix("factor", 1, filter.OpacityMatrix),
	"hue":        scalarMatrix("degrees", 0, filter.HueRotateMatrix),
	"tint": func(p Params) (filter.Matrix, error) {
		var rgb [3]int
		for i, name := range []string{"r", "g", "b"} {
			v, err := p.Int(name, 0)
			if err != nil {
				return filter.Matrix{}, err
			}
			if v < 0 || v > 255 {
				return filter.Matrix{}, fmt.Errorf("%w: tint %s=%d outside [0, 255]", ErrInvalid, name, v)
			}
			rgb[i] = v
		}
		amount, err := p.Float("amount", 0.5)
		if err != nil {
			return filter.Matrix{}, err
		}
		return filter.TintMatrix(uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2]), amount), nil
	},
	"colormatrix": func(p Params) (filter.Matrix, error) {
		v, err := p.Floats("matrix")
		if err != nil {
			return filter.Matrix{}, err
		}
		var m filter.Matrix
		if len(v) != len(m) {
			return m, fmt.Errorf("%w: matrix has %d values, want %d", ErrInvalid, len(v), len(m))
		}
		copy(m[:], v)
		return m, nil
	},
}

func scalarMatrix(name string, def float32, fn func(float32) filter.Matrix) func(Params) (filter.Matrix, error) {
	return func(p Params) (filter.Matrix, error) {
		v, err := p.Float(name, def)
		if err != nil {
			return filter.Matrix{}, err
		}
		return fn(v), nil
	}
}

func newBlend(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
	name, err := spec.Params.Text("mode", "normal")
	if err != nil {
		return nil, err
	}
	mode, err := filter.ParseBlendMode(name)
	if err != nil {
		return nil, err
	}
	inputs, err := spec.Params.Int("inputs", 2)
	if err != nil {
		return nil, err
	}
	return filter.Blend(spec.ID, mode, inputs, opts...)
}

func newGaussian(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
	sigma, err := spec.Params.Float("sigma", 1)
	if err != nil {
		return nil, err
	}
	return asNode(filter.GaussianBlur(spec.ID, sigma, opts...))
}

func newBilateral(spec NodeSpec, opts []pipeline.NodeOption) (pipeline.Node, error) {
	norm, err := spec.Params.Float("distance_normalization", filter.DefaultDistanceNormalization)
	if err != nil {
		return nil, err
	}
	spacing, err := spec.Params.Float("texel_spacing", filter.DefaultTexelSpacing)
	if err != nil {
		return nil, err
	}
	c, err := filter.BilateralBlur(spec.ID, norm, opts...)
	if err != nil {
		return nil, err
	}
	c.SetUniform(filter.TexelSpacingUniform, spacing)
	return c, nil
}

func newFileSink(spec NodeSpec, _ []pipeline.NodeOption) (pipeline.Node, error) {
	if spec.Path == "" {
		return nil, fmt.Errorf("%w: file sink %q has no path", ErrInvalid, spec.ID)
	}
	increment, err := spec.Params.Bool("increment", false)
	if err != nil {
		return nil, err
	}
	quality, err := spec.Params.Int("quality", sink.DefaultJPEGQuality)
	if err != nil {
		return nil, err
	}
	fw, err := sink.NewFile(spec.Path, sink.WithIncrement(increment), sink.WithQuality(quality))
	if err != nil {
		return nil, err
	}
	return newSink(spec, fw)
}

// asNode keeps a failed constructor from yielding a typed nil node.
func asNode[T pipeline.Node](n T, err error) (pipeline.Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}

// newSink wraps c in a sink node using the "order" param.
func newSink(spec NodeSpec, c pipeline.Consumer) (pipeline.Node, error) {
	name, err := spec.Params.Text("order", "rgba")
	if err != nil {
		return nil, err
	}
	order, err := ggfx.ParseChannelOrder(name)
	if err != nil {
		return nil, err
	}
	return pipeline.NewSink(spec.ID, c, order), nil
}
