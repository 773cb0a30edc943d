package memory

// UnmanagedAllocator serves every request from memory outside the Go heap.
// On Linux and macOS each buffer is an anonymous private mapping that is
// unmapped on release; elsewhere it falls back to the Go heap.
//
// Mapped memory is not scanned or moved by the garbage collector and is
// always zero-filled, so both AllocationOptions behave the same. Using a
// span after its block is released faults instead of reading stale data.
type UnmanagedAllocator struct {
	limits Limits
}

// NewUnmanagedAllocator creates an unmanaged allocator. Zero fields of
// limits take package defaults.
func NewUnmanagedAllocator(limits Limits) *UnmanagedAllocator {
	return &UnmanagedAllocator{limits: limits.withDefaults()}
}

// AllocateBytes maps n bytes.
func (a *UnmanagedAllocator) AllocateBytes(n int, _ AllocationOptions) (RawBuffer, error) {
	if err := a.limits.check(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return &heapBuffer{b: []byte{}}, nil
	}
	return mapAnonymous(n)
}

// Limits returns the allocator's limits.
func (a *UnmanagedAllocator) Limits() Limits {
	return a.limits
}

// ReleaseRetainedResources is a no-op; mappings are returned on release.
func (a *UnmanagedAllocator) ReleaseRetainedResources() {}
