package pixbuf

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// Configuration selects the allocator and parallelism used by image code.
// A Configuration is immutable once created and safe for concurrent use.
type Configuration struct {
	allocator        memory.Allocator
	maxDegree        int
	minPixels        int
	preferContiguous bool
	pool             *parallel.WorkerPool
}

// NewConfiguration returns a configuration with a new pooling allocator,
// GOMAXPROCS parallelism and parallel.DefaultMinimumPixelsPerTask, modified
// by opts.
func NewConfiguration(opts ...Option) (*Configuration, error) {
	return newDefaults().apply(opts)
}

func newDefaults() *Configuration {
	return &Configuration{
		allocator: memory.NewPoolingAllocator(memory.PoolingOptions{}),
		maxDegree: runtime.GOMAXPROCS(0),
		minPixels: parallel.DefaultMinimumPixelsPerTask,
	}
}

// With returns a copy of c modified by opts. The copy shares c's allocator
// unless opts replace it.
func (c *Configuration) With(opts ...Option) (*Configuration, error) {
	cp := *c
	return cp.apply(opts)
}

func (c *Configuration) apply(opts []Option) (*Configuration, error) {
	for _, opt := range opts {
		opt(c)
	}
	if c.allocator == nil {
		return nil, fmt.Errorf("%w: nil allocator", ErrInvalidArgument)
	}
	if c.maxDegree <= 0 && c.maxDegree != parallel.Unbounded {
		return nil, fmt.Errorf("%w: max degree of parallelism %d", ErrInvalidArgument, c.maxDegree)
	}
	if c.minPixels <= 0 {
		return nil, fmt.Errorf("%w: minimum pixels per task %d", ErrInvalidArgument, c.minPixels)
	}
	return c, nil
}

// MemoryAllocator returns the allocator.
func (c *Configuration) MemoryAllocator() memory.Allocator { return c.allocator }

// MaxDegreeOfParallelism returns the task cap, or parallel.Unbounded.
func (c *Configuration) MaxDegreeOfParallelism() int { return c.maxDegree }

// MinimumPixelsPerTask returns the work granularity.
func (c *Configuration) MinimumPixelsPerTask() int { return c.minPixels }

// PreferContiguousImageBuffers reports whether images are allocated as one
// block.
func (c *Configuration) PreferContiguousImageBuffers() bool { return c.preferContiguous }

// Executor returns the configured worker pool, or nil for the default
// goroutine executor.
func (c *Configuration) Executor() parallel.Executor {
	if c.pool == nil {
		return nil
	}
	return c.pool
}

// ExecutionSettings returns the parallel settings described by c.
func (c *Configuration) ExecutionSettings() (parallel.Settings, error) {
	return parallel.SettingsFromConfig(c)
}

// ReleaseRetainedResources drains the allocator's pools. Call it only after
// every buffer allocated through c has been disposed.
func (c *Configuration) ReleaseRetainedResources() {
	c.allocator.ReleaseRetainedResources()
}

var (
	defaultConfig atomic.Pointer[Configuration]
	defaultOnce   sync.Once
)

// Default returns the process-wide configuration. It is created on first use
// with NewConfiguration's defaults.
func Default() *Configuration {
	defaultOnce.Do(func() {
		defaultConfig.CompareAndSwap(nil, newDefaults())
	})
	return defaultConfig.Load()
}

// SetDefault replaces the process-wide configuration and returns the previous
// one. A nil cfg installs a fresh default. The previous allocator still holds
// its pooled memory; release it with ReleaseRetainedResources once its
// buffers are disposed.
func SetDefault(cfg *Configuration) *Configuration {
	if cfg == nil {
		cfg = newDefaults()
	}
	prev := Default()
	for !defaultConfig.CompareAndSwap(prev, cfg) {
		prev = defaultConfig.Load()
	}
	logger.Load().Info("pixbuf: default configuration replaced",
		"max_degree", cfg.maxDegree, "min_pixels", cfg.minPixels,
		"allocator", fmt.Sprintf("%T", cfg.allocator))
	return prev
}

// orDefault returns c, or the process-wide configuration when c is nil.
func orDefault(c *Configuration) *Configuration {
	if c == nil {
		return Default()
	}
	return c
}
