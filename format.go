// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggfx

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Format is the pixel format of a frame or render target.
type Format uint8

const (
	// FormatRGBA8 is 8-bit RGBA laid out like image.RGBA. It is the default format.
	FormatRGBA8 Format = iota

	// FormatBGRA8 is 8-bit BGRA, the usual surface presentation order.
	FormatBGRA8

	// FormatR8 is a single 8-bit channel, used for masks and luminance.
	FormatR8
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f Format) BytesPerPixel() int {
	if f == FormatR8 {
		return 1
	}
	return 4
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f <= FormatR8
}

// GPUFormat converts to the WebGPU texture format.
func (f Format) GPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatBGRA8:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatR8:
		return gputypes.TextureFormatR8Unorm
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// ParseFormat returns the format with the given name (case-sensitive,
// as printed by String).
func ParseFormat(name string) (Format, error) {
	for _, f := range []Format{FormatRGBA8, FormatBGRA8, FormatR8} {
		if f.String() == name {
			return f, nil
		}
	}
	return FormatRGBA8, fmt.Errorf("%w: unknown pixel format %q", ErrInvalidState, name)
}

// ChannelOrder is the byte order a sink hands pixels over in.
//
// Readback from a render target always produces the target's own format;
// collaborators that expect another layout (bitmap APIs commonly want
// BGRA) declare it at the sink boundary instead of swapping bytes ad hoc.
type ChannelOrder uint8

const (
	// ChannelOrderRGBA delivers R, G, B, A bytes.
	ChannelOrderRGBA ChannelOrder = iota

	// ChannelOrderBGRA delivers B, G, R, A bytes (red and blue swapped).
	ChannelOrderBGRA
)

// Format returns the four-channel format matching the order.
func (o ChannelOrder) Format() Format {
	if o == ChannelOrderBGRA {
		return FormatBGRA8
	}
	return FormatRGBA8
}

// ParseChannelOrder accepts "rgba" or "bgra" in any case. An empty name
// selects RGBA.
func ParseChannelOrder(name string) (ChannelOrder, error) {
	switch strings.ToUpper(name) {
	case "", "RGBA":
		return ChannelOrderRGBA, nil
	case "BGRA":
		return ChannelOrderBGRA, nil
	}
	return ChannelOrderRGBA, fmt.Errorf("%w: unknown channel order %q", ErrInvalidState, name)
}

// String returns "RGBA" or "BGRA".
func (o ChannelOrder) String() string {
	if o == ChannelOrderBGRA {
		return "BGRA"
	}
	return "RGBA"
}
