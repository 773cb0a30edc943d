package memory

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Pooling defaults.
const (
	// DefaultSharedPoolThreshold is the largest request served from the
	// power-of-two size class pools.
	DefaultSharedPoolThreshold = 1 << 20

	// DefaultPoolCapacity is the number of bytes of uniform blocks retained
	// between allocations.
	DefaultPoolCapacity = 256 << 20

	// minSizeClass is the smallest shared size class in bytes.
	minSizeClass = 64
)

// PoolingOptions configures a PoolingAllocator. Zero fields take defaults.
type PoolingOptions struct {
	// BlockSize is the size in bytes of each uniform pooled block and the
	// preferred block size of discontiguous groups.
	BlockSize int

	// SharedPoolThreshold is the largest request served from size class
	// pools. Larger requests up to BlockSize use uniform blocks.
	SharedPoolThreshold int

	// PoolCapacity is the number of bytes of uniform blocks kept for reuse.
	PoolCapacity int

	// MaxContiguousBytes is the single-allocation ceiling.
	MaxContiguousBytes int

	// MaxTotalBytes caps one logical allocation. Zero means unlimited.
	MaxTotalBytes int

	// Fallback serves contiguous requests larger than BlockSize.
	// Defaults to a SimpleAllocator with the same limits.
	Fallback Allocator
}

// PoolStats is a snapshot of PoolingAllocator activity.
type PoolStats struct {
	// Hits counts requests served from pooled memory.
	Hits uint64

	// Misses counts pooled-tier requests that had to allocate.
	Misses uint64

	// Unpooled counts requests forwarded to the fallback allocator.
	Unpooled uint64

	// RetainedBlocks is the number of uniform blocks on the free list.
	RetainedBlocks int

	// RetainedBytes is RetainedBlocks times the block size.
	RetainedBytes int
}

// PoolingAllocator recycles memory to avoid repeated large allocations.
//
// Requests up to SharedPoolThreshold are rounded to a power-of-two size class
// and served from per-class sync.Pools. Requests up to BlockSize are served
// from a bounded free list of uniform blocks. Anything larger is forwarded to
// the fallback allocator and not pooled.
//
// Thread safety: all methods are safe for concurrent use. The free list is
// the only lock and is held for O(1) work.
type PoolingAllocator struct {
	limits    Limits
	threshold int
	shared    atomic.Pointer[sizeClassPools]
	uniform   *slabPool
	fallback  Allocator
	counters  poolCounters
}

// poolCounters keeps hot counters off the allocator's read-mostly fields.
type poolCounters struct {
	_        cpu.CacheLinePad
	hits     atomic.Uint64
	misses   atomic.Uint64
	unpooled atomic.Uint64
	_        cpu.CacheLinePad
}

// NewPoolingAllocator creates a pooling allocator.
func NewPoolingAllocator(opts PoolingOptions) *PoolingAllocator {
	limits := Limits{
		BlockCapacity:      opts.BlockSize,
		MaxContiguousBytes: opts.MaxContiguousBytes,
		MaxTotalBytes:      opts.MaxTotalBytes,
	}.withDefaults()

	threshold := opts.SharedPoolThreshold
	if threshold <= 0 {
		threshold = DefaultSharedPoolThreshold
	}
	threshold = min(threshold, limits.BlockCapacity)

	capacity := opts.PoolCapacity
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewSimpleAllocatorWithLimits(limits)
	}

	a := &PoolingAllocator{
		limits:    limits,
		threshold: threshold,
		uniform:   newSlabPool(limits.BlockCapacity, capacity/limits.BlockCapacity),
		fallback:  fallback,
	}
	a.shared.Store(&sizeClassPools{})
	return a
}

// AllocateBytes returns n bytes, reusing pooled memory when possible.
// With AllocationClean reused memory is zeroed; with AllocationNone it may
// hold data from a previous use.
func (a *PoolingAllocator) AllocateBytes(n int, opts AllocationOptions) (RawBuffer, error) {
	if err := a.limits.check(n); err != nil {
		return nil, err
	}
	switch {
	case n == 0:
		return &heapBuffer{b: []byte{}}, nil
	case n <= a.threshold:
		pool := a.shared.Load().pool(sizeClassFor(n))
		return a.take(pool, n, opts), nil
	case n <= a.limits.BlockCapacity:
		return a.take(a.uniform, n, opts), nil
	default:
		a.counters.unpooled.Add(1)
		if logger.Debug() {
			logger.Load().Debug("memory: unpooled allocation", "bytes", n)
		}
		return a.fallback.AllocateBytes(n, opts)
	}
}

// take pops a slab from home or allocates a fresh one.
func (a *PoolingAllocator) take(home slabHome, n int, opts AllocationOptions) RawBuffer {
	s := home.get()
	if s == nil {
		a.counters.misses.Add(1)
		s = &slab{b: heapBytes(home.slabSize())}
	} else {
		a.counters.hits.Add(1)
		if opts == AllocationClean {
			clear(s.b[:n])
		}
	}
	return &pooledBuffer{b: s.b[:n], s: s, home: home}
}

// Limits returns the allocator's limits.
func (a *PoolingAllocator) Limits() Limits {
	return a.limits
}

// ReleaseRetainedResources drops every pooled slab and the fallback's
// retained memory. Call it only after all buffers from this allocator have
// been disposed.
func (a *PoolingAllocator) ReleaseRetainedResources() {
	a.shared.Store(&sizeClassPools{})
	dropped := a.uniform.drain()
	a.fallback.ReleaseRetainedResources()
	logger.Load().Debug("memory: pool drained", "uniformBlocks", dropped)
}

// Stats returns a snapshot of the allocator's counters.
func (a *PoolingAllocator) Stats() PoolStats {
	retained := a.uniform.retained()
	return PoolStats{
		Hits:           a.counters.hits.Load(),
		Misses:         a.counters.misses.Load(),
		Unpooled:       a.counters.unpooled.Load(),
		RetainedBlocks: retained,
		RetainedBytes:  retained * a.limits.BlockCapacity,
	}
}

// sizeClassFor rounds n up to a power of two, at least minSizeClass.
func sizeClassFor(n int) int {
	if n <= minSizeClass {
		return minSizeClass
	}
	return 1 << bits.Len(uint(n-1)) //nolint:gosec // n > minSizeClass
}

// slab is one pooled allocation at its full class size.
type slab struct {
	b []byte
}

// slabHome is where a pooled buffer returns on release.
type slabHome interface {
	get() *slab
	put(*slab)
	slabSize() int
}

// pooledBuffer is a RawBuffer backed by a slab.
type pooledBuffer struct {
	b    []byte
	s    *slab
	home slabHome
}

func (p *pooledBuffer) Bytes() []byte { return p.b }

func (p *pooledBuffer) Release() {
	if p.s == nil {
		return
	}
	p.home.put(p.s)
	p.s, p.b, p.home = nil, nil, nil
}

// sizeClassPools is one generation of shared pools. Draining swaps in a new
// generation; slabs returned to an old generation are left to the GC.
type sizeClassPools struct {
	// pools maps class size to *classPool.
	pools sync.Map
}

// pool gets or creates the pool for one size class.
func (p *sizeClassPools) pool(class int) *classPool {
	if pool, ok := p.pools.Load(class); ok {
		return pool.(*classPool)
	}
	// Try to store; if another goroutine beat us, use theirs
	actual, _ := p.pools.LoadOrStore(class, &classPool{size: class})
	return actual.(*classPool)
}

// classPool holds slabs of exactly size bytes.
type classPool struct {
	pool sync.Pool
	size int
}

func (c *classPool) get() *slab {
	s, _ := c.pool.Get().(*slab)
	return s
}

func (c *classPool) put(s *slab) { c.pool.Put(s) }
func (c *classPool) slabSize() int { return c.size }

// slabPool is a bounded free list of uniform slabs.
type slabPool struct {
	mu      sync.Mutex
	free    []*slab
	size    int
	maxSize int // max slabs retained
}

func newSlabPool(size, maxRetained int) *slabPool {
	return &slabPool{size: size, maxSize: max(maxRetained, 0)}
}

func (p *slabPool) slabSize() int { return p.size }

func (p *slabPool) get() *slab {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.free)
	if n == 0 {
		return nil
	}
	s := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	return s
}

// put returns a slab. If the list is at capacity the slab is discarded.
func (p *slabPool) put(s *slab) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.maxSize {
		return
	}
	p.free = append(p.free, s)
}

// drain empties the free list and returns how many slabs were dropped.
func (p *slabPool) drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.free)
	p.free = nil
	return n
}

func (p *slabPool) retained() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
