package pixbuf

import (
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// Option configures a Configuration during creation.
//
// Example:
//
//	cfg, err := pixbuf.NewConfiguration(
//		pixbuf.WithMaxDegreeOfParallelism(4),
//		pixbuf.WithMemoryAllocator(memory.NewSimpleAllocator()),
//	)
type Option func(*Configuration)

// WithMemoryAllocator sets the allocator for image buffers and scratch space.
func WithMemoryAllocator(a memory.Allocator) Option {
	return func(c *Configuration) {
		c.allocator = a
	}
}

// WithMaxDegreeOfParallelism caps the number of tasks per pass. Use
// parallel.Unbounded to lift the cap.
func WithMaxDegreeOfParallelism(n int) Option {
	return func(c *Configuration) {
		c.maxDegree = n
	}
}

// WithMinimumPixelsPerTask sets the smallest amount of work worth a task.
func WithMinimumPixelsPerTask(n int) Option {
	return func(c *Configuration) {
		c.minPixels = n
	}
}

// WithPreferContiguousImageBuffers makes AllocateBuffer2D request a single
// block for every image. Useful for interop with code that needs one slice,
// at the cost of failing earlier on very large images.
func WithPreferContiguousImageBuffers(prefer bool) Option {
	return func(c *Configuration) {
		c.preferContiguous = prefer
	}
}

// WithWorkerPool runs row bands on p instead of fresh goroutines.
// The caller keeps ownership of p and closes it after the last pass.
func WithWorkerPool(p *parallel.WorkerPool) Option {
	return func(c *Configuration) {
		c.pool = p
	}
}
