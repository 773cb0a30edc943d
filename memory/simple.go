package memory

// SimpleAllocator hands every request straight to the Go heap.
// Nothing is pooled; released memory is left to the garbage collector.
type SimpleAllocator struct {
	limits Limits
}

// NewSimpleAllocator creates a pass-through allocator with default limits.
func NewSimpleAllocator() *SimpleAllocator {
	return NewSimpleAllocatorWithLimits(Limits{})
}

// NewSimpleAllocatorWithLimits creates a pass-through allocator. Zero fields
// of limits take package defaults.
func NewSimpleAllocatorWithLimits(limits Limits) *SimpleAllocator {
	return &SimpleAllocator{limits: limits.withDefaults()}
}

// AllocateBytes allocates n zeroed bytes.
func (a *SimpleAllocator) AllocateBytes(n int, _ AllocationOptions) (RawBuffer, error) {
	if err := a.limits.check(n); err != nil {
		return nil, err
	}
	return &heapBuffer{b: heapBytes(n)}, nil
}

// Limits returns the allocator's limits.
func (a *SimpleAllocator) Limits() Limits {
	return a.limits
}

// ReleaseRetainedResources is a no-op; SimpleAllocator retains nothing.
func (a *SimpleAllocator) ReleaseRetainedResources() {}

// heapBuffer is garbage-collected memory with no pool behind it.
type heapBuffer struct {
	b []byte
}

func (h *heapBuffer) Bytes() []byte { return h.b }
func (h *heapBuffer) Release()      { h.b = nil }
