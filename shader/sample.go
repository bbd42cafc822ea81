// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import "github.com/gogpu/ggfx"

// Clamped reads pixel (x, y) of src with clamp-to-edge addressing.
func Clamped(src *ggfx.Frame, x, y int) (r, g, b, a uint8) {
	if x < 0 {
		x = 0
	} else if x >= src.Width {
		x = src.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= src.Height {
		y = src.Height - 1
	}
	return src.RGBA(x, y)
}

// Nearest samples src at the position of destination pixel (x, y) in a
// dstW x dstH target, using nearest-neighbour filtering. When the sizes
// match it reads (x, y) directly.
func Nearest(src *ggfx.Frame, x, y, dstW, dstH int) (r, g, b, a uint8) {
	if src.Width == dstW && src.Height == dstH {
		return src.RGBA(x, y)
	}
	sx := x * src.Width / dstW
	sy := y * src.Height / dstH
	return Clamped(src, sx, sy)
}

// ClampByte rounds v to the nearest integer in [0, 255].
func ClampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
