// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggfx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Frame is a CPU-resident pixel buffer: the unit that enters the graph at a
// source and leaves it at a sink.
//
// Rows are tightly packed unless Stride says otherwise. A Frame is not safe
// for concurrent mutation.
type Frame struct {
	Width  int
	Height int
	Stride int
	Format Format
	Pix    []byte
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height int, format Format) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := width * format.BytesPerPixel()
	return &Frame{
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
		Pix:    make([]byte, stride*height),
	}
}

// FromImage converts any image into an RGBA8 frame.
// *image.RGBA inputs with a zero origin are copied without conversion.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy(), FormatRGBA8)
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		for y := 0; y < f.Height; y++ {
			copy(f.Row(y), rgba.Pix[y*rgba.Stride:y*rgba.Stride+f.Stride])
		}
		return f
	}
	draw.Draw(f.rgbaView(), f.Bounds(), img, b.Min, draw.Src)
	return f
}

// Validate checks that the buffer is large enough for the declared geometry.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidState)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidState, f.Width, f.Height)
	}
	if !f.Format.Valid() {
		return fmt.Errorf("%w: frame format %s", ErrInvalidState, f.Format)
	}
	row := f.Width * f.Format.BytesPerPixel()
	if f.Stride < row {
		return fmt.Errorf("%w: stride %d shorter than row %d", ErrInvalidState, f.Stride, row)
	}
	if len(f.Pix) < f.Stride*(f.Height-1)+row {
		return fmt.Errorf("%w: pixel buffer too small for %dx%d %s", ErrInvalidState, f.Width, f.Height, f.Format)
	}
	return nil
}

// Bounds returns the frame rectangle with a zero origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Row returns the packed bytes of row y.
func (f *Frame) Row(y int) []byte {
	off := y * f.Stride
	return f.Pix[off : off+f.Width*f.Format.BytesPerPixel()]
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (f *Frame) PixOffset(x, y int) int {
	return y*f.Stride + x*f.Format.BytesPerPixel()
}

// RGBA returns the pixel at (x, y) in R, G, B, A order regardless of format.
// Out-of-range coordinates return transparent black.
func (f *Frame) RGBA(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, 0, 0, 0
	}
	i := f.PixOffset(x, y)
	switch f.Format {
	case FormatBGRA8:
		return f.Pix[i+2], f.Pix[i+1], f.Pix[i], f.Pix[i+3]
	case FormatR8:
		v := f.Pix[i]
		return v, v, v, 0xff
	default:
		return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
	}
}

// SetRGBA stores a pixel given in R, G, B, A order. R8 frames keep the
// Rec. 709 luma of the colour. Out-of-range coordinates are ignored.
func (f *Frame) SetRGBA(x, y int, r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := f.PixOffset(x, y)
	switch f.Format {
	case FormatBGRA8:
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = b, g, r, a
	case FormatR8:
		f.Pix[i] = luma(r, g, b)
	default:
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = r, g, b, a
	}
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c color.RGBA) {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}
}

// Clone returns a deep, tightly packed copy.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.Width, f.Height, f.Format)
	for y := 0; y < f.Height; y++ {
		copy(out.Row(y), f.Row(y))
	}
	return out
}

// CopyFrom copies src into f. Both frames must have the same size and
// format.
func (f *Frame) CopyFrom(src *Frame) error {
	if src.Width != f.Width || src.Height != f.Height || src.Format != f.Format {
		return fmt.Errorf("%w: copy %dx%d %s into %dx%d %s", ErrInvalidState,
			src.Width, src.Height, src.Format, f.Width, f.Height, f.Format)
	}
	for y := 0; y < f.Height; y++ {
		copy(f.Row(y), src.Row(y))
	}
	return nil
}

// Convert returns a copy of f in the requested format.
func (f *Frame) Convert(format Format) *Frame {
	if format == f.Format {
		return f.Clone()
	}
	out := NewFrame(f.Width, f.Height, format)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b, a := f.RGBA(x, y)
			out.SetRGBA(x, y, r, g, b, a)
		}
	}
	return out
}

// Resize returns a copy scaled to width x height with bilinear filtering.
// A frame that already has the requested size is cloned.
func (f *Frame) Resize(width, height int) *Frame {
	if width == f.Width && height == f.Height {
		return f.Clone()
	}
	src := f.Convert(FormatRGBA8)
	dst := NewFrame(width, height, FormatRGBA8)
	draw.BiLinear.Scale(dst.rgbaView(), dst.Bounds(), src.rgbaView(), src.Bounds(), draw.Src, nil)
	if f.Format != FormatRGBA8 {
		return dst.Convert(f.Format)
	}
	return dst
}

// Image returns the frame as an *image.RGBA. RGBA8 frames share memory with
// the result; other formats are converted.
func (f *Frame) Image() *image.RGBA {
	if f.Format == FormatRGBA8 {
		return f.rgbaView()
	}
	return f.Convert(FormatRGBA8).rgbaView()
}

// Equal reports whether both frames have the same geometry, format and
// pixel bytes. Stride padding is ignored.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Width != o.Width || f.Height != o.Height || f.Format != o.Format {
		return false
	}
	for y := 0; y < f.Height; y++ {
		if !bytes.Equal(f.Row(y), o.Row(y)) {
			return false
		}
	}
	return true
}

// String describes the frame geometry.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame[%dx%d %s]", f.Width, f.Height, f.Format)
}

func (f *Frame) rgbaView() *image.RGBA {
	return &image.RGBA{Pix: f.Pix, Stride: f.Stride, Rect: f.Bounds()}
}

// luma computes Rec. 709 luma with integer weights.
func luma(r, g, b uint8) uint8 {
	return uint8((2126*uint32(r) + 7152*uint32(g) + 722*uint32(b) + 5000) / 10000)
}
