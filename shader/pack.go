// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"encoding/binary"
	"math"
)

// UniformAlign is the size granularity of a WGSL uniform buffer.
const UniformAlign = 16

// PackFunc lays out uniforms as the bytes of a pass's WGSL Params block.
type PackFunc func(u Uniforms) ([]byte, error)

// Packer appends little-endian values in WGSL uniform layout.
type Packer struct {
	buf []byte
}

// F32 appends each value as a 32-bit float.
func (p *Packer) F32(values ...float32) *Packer {
	for _, v := range values {
		p.buf = binary.LittleEndian.AppendUint32(p.buf, math.Float32bits(v))
	}
	return p
}

// U32 appends v as a 32-bit unsigned integer.
func (p *Packer) U32(v uint32) *Packer {
	p.buf = binary.LittleEndian.AppendUint32(p.buf, v)
	return p
}

// I32 appends v as a 32-bit signed integer.
func (p *Packer) I32(v int32) *Packer {
	//nolint:gosec // bit-cast for GPU buffer serialization
	return p.U32(uint32(v))
}

// Align pads with zeros to the next multiple of n bytes.
func (p *Packer) Align(n int) *Packer {
	for len(p.buf)%n != 0 {
		p.buf = append(p.buf, 0)
	}
	return p
}

// Len returns the number of bytes packed so far.
func (p *Packer) Len() int {
	return len(p.buf)
}

// Bytes returns the packed block padded to UniformAlign. An empty block
// still occupies UniformAlign bytes so a buffer can always be bound.
func (p *Packer) Bytes() []byte {
	if len(p.buf) == 0 {
		return make([]byte, UniformAlign)
	}
	p.Align(UniformAlign)
	return p.buf
}
