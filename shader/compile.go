// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Compile compiles WGSL source to SPIR-V words.
// Every failure wraps ggfx.ErrShaderCompile.
func Compile(wgsl string) ([]uint32, error) {
	if wgsl == "" {
		return nil, fmt.Errorf("%w: empty WGSL source", ggfx.ErrShaderCompile)
	}

	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ggfx.ErrShaderCompile, err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: malformed SPIR-V (%d bytes)", ggfx.ErrShaderCompile, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad SPIR-V magic 0x%08X", ggfx.ErrShaderCompile, words[0])
	}
	return words, nil
}
