package imaging

import (
	"math"
	"sync"
)

// GaussianKernel returns a normalized 1D Gaussian kernel with standard
// deviation sigma. The kernel has 2*ceil(3*sigma)+1 taps. For sigma <= 0 it
// is the identity kernel [1].
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, 2*half+1)

	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// kernelCache memoizes Gaussian kernels by sigma quantized to 0.01.
type kernelCache struct {
	mu      sync.RWMutex
	kernels map[int][]float32
	maxLen  int
}

var gaussianKernels = &kernelCache{kernels: make(map[int][]float32), maxLen: 64}

// get returns the cached kernel for sigma. Callers must not modify it.
func (c *kernelCache) get(sigma float64) []float32 {
	key := int(sigma * 100)

	c.mu.RLock()
	k, ok := c.kernels[key]
	c.mu.RUnlock()
	if ok {
		return k
	}

	k = GaussianKernel(float64(key) / 100)
	c.mu.Lock()
	if len(c.kernels) >= c.maxLen {
		clear(c.kernels)
	}
	c.kernels[key] = k
	c.mu.Unlock()
	return k
}
