// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"fmt"

	"github.com/gogpu/ggfx"
)

// Key groups interchangeable targets.
type Key struct {
	Width  int
	Height int
	Format ggfx.Format
}

// String returns "WxH FORMAT".
func (k Key) String() string {
	return fmt.Sprintf("%dx%d %s", k.Width, k.Height, k.Format)
}

// Handle refers to a checked-out render target. The zero Handle is invalid.
type Handle struct {
	slot uint32 // index+1 into Pool.slots
	gen  uint32
}

// IsValid reports whether h was returned by Acquire. It does not say
// whether h is still checked out; Pool methods check that.
func (h Handle) IsValid() bool {
	return h.slot != 0
}

// Generation returns the checkout generation of h.
func (h Handle) Generation() uint32 {
	return h.gen
}

// String returns "tex#slot.gen".
func (h Handle) String() string {
	if !h.IsValid() {
		return "tex#invalid"
	}
	return fmt.Sprintf("tex#%d.%d", h.slot, h.gen)
}
