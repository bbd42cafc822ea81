// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"math"

	"github.com/gogpu/ggfx/internal/progcache"
)

// MaxSigma is the largest Gaussian sigma the blur filters accept. It keeps
// the kernel within the 256 weights of the WGSL uniform block.
const MaxSigma = 42

// GaussianKernel returns a normalized 1D Gaussian kernel for sigma.
//
// The kernel has 2*ceil(3*sigma)+1 taps, covering three standard
// deviations. A sigma <= 0 yields the identity kernel [1].
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, half*2+1)

	twoSigmaSq := 2 * sigma * sigma
	var sum float64
	vals := make([]float64, len(kernel))
	for i := range vals {
		x := float64(i - half)
		vals[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += vals[i]
	}
	for i, v := range vals {
		kernel[i] = float32(v / sum)
	}
	return kernel
}

// kernels holds recently used Gaussian kernels keyed by sigma*100.
var kernels = progcache.New[int, []float32](64, nil)

// CachedGaussianKernel is GaussianKernel with an LRU cache in front. Sigma
// is quantized to 0.01. The returned slice must not be modified.
func CachedGaussianKernel(sigma float64) []float32 {
	key := int(math.Round(sigma * 100))
	k, _ := kernels.GetOrCreate(key, func() ([]float32, error) {
		return GaussianKernel(float64(key) / 100), nil
	})
	return k
}

// KernelRadius returns the number of taps on each side of the centre of
// the kernel for sigma.
func KernelRadius(sigma float64) int {
	if sigma <= 0 {
		return 0
	}
	return int(math.Ceil(sigma * 3))
}
