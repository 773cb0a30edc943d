package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/gogpu/pixbuf/memory"
)

// countingAllocator counts scratch allocations and releases.
type countingAllocator struct {
	memory.Allocator
	allocations atomic.Int32
	outstanding atomic.Int32
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{Allocator: memory.NewSimpleAllocator()}
}

func (a *countingAllocator) AllocateBytes(n int, opts memory.AllocationOptions) (memory.RawBuffer, error) {
	raw, err := a.Allocator.AllocateBytes(n, opts)
	if err != nil {
		return nil, err
	}
	a.allocations.Add(1)
	a.outstanding.Add(1)
	return &countedBuffer{RawBuffer: raw, owner: a}, nil
}

type countedBuffer struct {
	memory.RawBuffer
	owner    *countingAllocator
	released atomic.Bool
}

func (b *countedBuffer) Release() {
	if b.released.CompareAndSwap(false, true) {
		b.owner.outstanding.Add(-1)
	}
	b.RawBuffer.Release()
}

func mustSettings(t testing.TB, maxDegree, minPixels int, alloc memory.Allocator) Settings {
	t.Helper()
	if alloc == nil {
		alloc = memory.NewSimpleAllocator()
	}
	s, err := NewSettings(maxDegree, minPixels, alloc)
	if err != nil {
		t.Fatalf("NewSettings(%d, %d): %v", maxDegree, minPixels, err)
	}
	return s
}

// visitCounter records how often each row of a rectangle is visited.
type visitCounter struct {
	top    int
	counts []atomic.Int32
}

func newVisitCounter(r Rect) *visitCounter {
	return &visitCounter{top: r.Top(), counts: make([]atomic.Int32, r.Height)}
}

func (v *visitCounter) Invoke(y int) { v.counts[y-v.top].Add(1) }

func (v *visitCounter) check(t *testing.T) {
	t.Helper()
	for i := range v.counts {
		if n := v.counts[i].Load(); n != 1 {
			t.Errorf("row %d visited %d times, want 1", v.top+i, n)
		}
	}
}

func defaultParallelism() int { return runtime.GOMAXPROCS(0) }
