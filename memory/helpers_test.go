package memory

import (
	"errors"
	"sync"
	"sync/atomic"
)

var errInjected = errors.New("injected allocation failure")

// countingAllocator wraps SimpleAllocator, tracks outstanding buffers and
// can be told to fail after a number of successful allocations.
type countingAllocator struct {
	inner       *SimpleAllocator
	allocations atomic.Int64
	outstanding atomic.Int64
	drained     atomic.Int64
	failAfter   int64 // 0 = never fail

	mu    sync.Mutex
	sizes []int
}

func newCountingAllocator(limits Limits) *countingAllocator {
	return &countingAllocator{inner: NewSimpleAllocatorWithLimits(limits)}
}

func (c *countingAllocator) AllocateBytes(n int, opts AllocationOptions) (RawBuffer, error) {
	if c.failAfter > 0 && c.allocations.Load() >= c.failAfter {
		return nil, errInjected
	}
	raw, err := c.inner.AllocateBytes(n, opts)
	if err != nil {
		return nil, err
	}
	c.allocations.Add(1)
	c.outstanding.Add(1)
	c.mu.Lock()
	c.sizes = append(c.sizes, n)
	c.mu.Unlock()
	return &countedBuffer{RawBuffer: raw, owner: c}, nil
}

func (c *countingAllocator) Limits() Limits { return c.inner.Limits() }

func (c *countingAllocator) ReleaseRetainedResources() { c.drained.Add(1) }

type countedBuffer struct {
	RawBuffer
	owner *countingAllocator
}

func (b *countedBuffer) Release() {
	b.owner.outstanding.Add(-1)
	b.RawBuffer.Release()
}

// fillSequence writes 0, 1, 2, ... across every element of g.
func fillSequence(g Group[int32]) {
	for off, span := range g.segs().Spans() {
		for i := range span {
			span[i] = int32(off + i)
		}
	}
}
