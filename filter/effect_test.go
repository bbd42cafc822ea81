// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"image/color"
	"testing"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/pipeline"
)

func TestIdentity(t *testing.T) {
	in := ggfx.NewFrame(5, 3, ggfx.FormatRGBA8)
	for y := range 3 {
		for x := range 5 {
			in.SetRGBA(x, y, uint8(x*40), uint8(y*80), uint8(x+y), 200)
		}
	}
	p, err := Identity("copy")
	if err != nil {
		t.Fatal(err)
	}
	if out := render(t, p, in); !out.Equal(in) {
		t.Errorf("identity changed the frame")
	}
}

func TestEffects(t *testing.T) {
	tests := []struct {
		name  string
		build func(string, ...pipeline.NodeOption) (*pipeline.Pass, error)
		in    color.RGBA
		check func(t *testing.T, got color.RGBA)
	}{
		{
			name:  "invert",
			build: Invert,
			in:    color.RGBA{10, 20, 30, 200},
			check: func(t *testing.T, got color.RGBA) {
				if want := (color.RGBA{245, 235, 225, 200}); got != want {
					t.Errorf("got %v, want %v", got, want)
				}
			},
		},
		{
			name:  "grayscale keeps grey",
			build: Grayscale,
			in:    color.RGBA{100, 100, 100, 180},
			check: func(t *testing.T, got color.RGBA) {
				if !near(got, color.RGBA{100, 100, 100, 180}, 1) {
					t.Errorf("got %v", got)
				}
			},
		},
		{
			name:  "grayscale weights",
			build: Grayscale,
			in:    color.RGBA{255, 0, 0, 255},
			check: func(t *testing.T, got color.RGBA) {
				if got.R != got.G || got.G != got.B || !near(got, color.RGBA{77, 77, 77, 255}, 1) {
					t.Errorf("got %v, want about 0.3 red as grey", got)
				}
			},
		},
		{
			name:  "sepia",
			build: Sepia,
			in:    color.RGBA{100, 100, 100, 255},
			check: func(t *testing.T, got color.RGBA) {
				if !near(got, color.RGBA{135, 120, 94, 255}, 1) {
					t.Errorf("got %v", got)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			out := render(t, p, solid(4, 4, tt.in))
			tt.check(t, pixel(out, 3, 2))
		})
	}
}

func TestEffectRescales(t *testing.T) {
	p, err := Invert("inv", pipeline.WithSize(2, 3))
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, p, solid(8, 8, color.RGBA{0, 0, 0, 255}))
	if out.Width != 2 || out.Height != 3 {
		t.Fatalf("output %v, want 2x3", out)
	}
	if got := pixel(out, 1, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel = %v", got)
	}
}
