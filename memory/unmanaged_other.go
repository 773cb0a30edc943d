//go:build !linux && !darwin

package memory

// mapAnonymous falls back to the Go heap where mmap is not available.
func mapAnonymous(n int) (RawBuffer, error) {
	return &heapBuffer{b: heapBytes(n)}, nil
}
