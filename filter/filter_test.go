// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"strings"
	"testing"

	"github.com/gogpu/ggfx/shader"
)

func TestSourcesAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, src := range Sources() {
		if err := src.Validate(); err != nil {
			t.Errorf("%s: %v", src.Name, err)
		}
		if seen[src.Name] {
			t.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if src.Kernel == nil {
			t.Errorf("%s has no CPU kernel", src.Name)
		}
		if !strings.Contains(src.WGSL, "fn "+src.Entry()) {
			t.Errorf("%s WGSL has no %s entry point", src.Name, src.Entry())
		}
	}
}

func TestSourcesCompile(t *testing.T) {
	for _, src := range Sources() {
		t.Run(src.Name, func(t *testing.T) {
			words, err := shader.Compile(src.WGSL)
			if err != nil {
				t.Skipf("naga cannot compile %s yet: %v", src.Name, err)
			}
			if len(words) == 0 || words[0] != 0x07230203 {
				t.Errorf("output is not SPIR-V")
			}
		})
	}
}
