// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/internal/parallel"
	"github.com/gogpu/ggfx/shader"
)

// MinBandRows is the smallest row band a pass is split into.
const MinBandRows = 16

// ExecKernel runs the reference kernel of src over dst. Unless src.Serial
// is set, rows are split into bands executed on workers (nil means run on
// the calling goroutine). A kernel error or panic is reported as
// ggfx.ErrShaderCompile.
func ExecKernel(workers *parallel.WorkerPool, src shader.Source, dst *ggfx.Frame, in []*ggfx.Frame, u shader.Uniforms) error {
	if src.Kernel == nil {
		return fmt.Errorf("%w: program %q has no kernel", ggfx.ErrShaderCompile, src.Name)
	}
	band := func(y0, y1 int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: program %q panicked: %v", ggfx.ErrShaderCompile, src.Name, r)
			}
		}()
		if kerr := src.Kernel(dst, in, u, y0, y1); kerr != nil {
			return fmt.Errorf("%w: program %q: %w", ggfx.ErrShaderCompile, src.Name, kerr)
		}
		return nil
	}
	if src.Serial || workers == nil || !workers.IsRunning() {
		return band(0, dst.Height)
	}
	return workers.Rows(dst.Height, MinBandRows, band)
}

// CheckInputs verifies that a pass receives as many inputs as it samples and
// that dst is not one of them.
func CheckInputs(p Program, dst Target, inputs []Target) error {
	if len(inputs) != p.Inputs() {
		return fmt.Errorf("%w: program %q samples %d inputs, got %d",
			ggfx.ErrArityViolation, p.Name(), p.Inputs(), len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return fmt.Errorf("%w: program %q input %d is unbound", ggfx.ErrInvalidState, p.Name(), i)
		}
		if in == dst {
			return fmt.Errorf("%w: program %q reads and writes the same target", ggfx.ErrInvalidState, p.Name())
		}
	}
	return nil
}
