// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/blend"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/shader"
)

// BlendMode selects how a foreground is combined with a background.
type BlendMode int

// Blend modes. The values match the mode uniform of the WGSL shader.
const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendDifference
	BlendSubtract
)

// ModeUniform is the uniform holding the blend mode.
const ModeUniform = "mode"

var blendModes = [...]struct {
	name string
	fn   func(bg, fg image.Image) *image.RGBA
}{
	BlendNormal:     {"normal", blend.Normal},
	BlendAdd:        {"add", blend.Add},
	BlendMultiply:   {"multiply", blend.Multiply},
	BlendScreen:     {"screen", blend.Screen},
	BlendOverlay:    {"overlay", blend.Overlay},
	BlendDarken:     {"darken", blend.Darken},
	BlendLighten:    {"lighten", blend.Lighten},
	BlendDifference: {"difference", blend.Difference},
	BlendSubtract:   {"subtract", blend.Subtract},
}

// String returns the lower-case mode name.
func (m BlendMode) String() string {
	if m.Valid() {
		return blendModes[m].name
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// Valid reports whether m is a known mode.
func (m BlendMode) Valid() bool {
	return m >= 0 && int(m) < len(blendModes)
}

// ParseBlendMode converts a mode name, case-insensitively.
func ParseBlendMode(name string) (BlendMode, error) {
	for i, bm := range blendModes {
		if strings.EqualFold(name, bm.name) {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown blend mode %q", ggfx.ErrInvalidState, name)
}

// Blend combines inputs front to back: input 0 is the background and each
// following input is blended over the result so far.
//
// Two inputs produce a single *pipeline.Pass. More inputs produce a
// *pipeline.Compound chaining inputs-1 two-input passes named blend0,
// blend1 and so on.
func Blend(id string, mode BlendMode, inputs int, opts ...pipeline.NodeOption) (pipeline.Node, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: blend %q: %s", ggfx.ErrInvalidState, id, mode)
	}
	if inputs < 2 {
		return nil, fmt.Errorf("%w: blend %q needs at least 2 inputs, got %d",
			ggfx.ErrArityViolation, id, inputs)
	}
	if inputs == 2 {
		p, err := pipeline.NewPass(id, BlendSource(), opts...)
		if err != nil {
			return nil, err
		}
		SetBlendMode(p, mode)
		return p, nil
	}

	c, err := pipeline.NewCompound(id, inputs, func(b *pipeline.CompoundBuilder) error {
		var prev pipeline.Node = b.Input(0)
		for i := 1; i < inputs; i++ {
			p, err := pipeline.NewPass(fmt.Sprintf("blend%d", i-1), BlendSource(), pipeline.WithFormat(b.Format()))
			if err != nil {
				return err
			}
			if err := b.Add(p); err != nil {
				return err
			}
			if err := b.Connect(prev, 0, p, 0); err != nil {
				return err
			}
			if err := b.Connect(b.Input(i), 0, p, 1); err != nil {
				return err
			}
			prev = p
		}
		return b.SetOutput(prev)
	}, opts...)
	if err != nil {
		return nil, err
	}
	SetBlendMode(c, mode)
	return c, nil
}

// SetBlendMode stores mode in the mode uniform of n.
func SetBlendMode(n Tunable, mode BlendMode) {
	n.SetUniform(ModeUniform, float32(mode))
}

// BlendSource returns the two-input shader source used by Blend.
func BlendSource() shader.Source {
	return shader.Source{
		Name:   "blend",
		WGSL:   wgsl("blend"),
		Inputs: 2,
		Serial: true,
		Kernel: func(dst *ggfx.Frame, src []*ggfx.Frame, u shader.Uniforms, y0, y1 int) error {
			mode := BlendMode(u.Float(ModeUniform, float32(BlendNormal)))
			if !mode.Valid() {
				return fmt.Errorf("%w: %s", ggfx.ErrInvalidState, mode)
			}
			bg := imageOf(src[0], dst)
			fg := imageOf(src[1], dst)
			storeRows(dst, blendModes[mode].fn(bg, fg), nil, y0, y1)
			return nil
		},
		Pack: func(u shader.Uniforms) ([]byte, error) {
			mode := BlendMode(u.Float(ModeUniform, float32(BlendNormal)))
			if !mode.Valid() {
				return nil, fmt.Errorf("%w: %s", ggfx.ErrInvalidState, mode)
			}
			return (&shader.Packer{}).U32(uint32(mode)).Bytes(), nil
		},
	}
}
