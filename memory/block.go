package memory

import "sync/atomic"

// Block is one contiguous, owned region of T. Its length is fixed at
// creation. Release returns the memory to its allocator exactly once.
type Block[T any] struct {
	span     []T
	release  func()
	released atomic.Bool
}

// OwnBlock takes ownership of caller-provided memory. release, if not nil,
// runs once when the block is released.
func OwnBlock[T any](mem []T, release func()) *Block[T] {
	return &Block[T]{span: mem, release: release}
}

// Span returns the block's elements, or nil after Release.
func (b *Block[T]) Span() []T {
	if b.released.Load() {
		return nil
	}
	return b.span
}

// Len returns the number of elements in the block.
func (b *Block[T]) Len() int {
	return len(b.span)
}

// Released reports whether Release has been called.
func (b *Block[T]) Released() bool {
	return b.released.Load()
}

// Release returns the block's memory. A second call returns
// ErrAlreadyReleased and has no other effect.
func (b *Block[T]) Release() error {
	if !b.released.CompareAndSwap(false, true) {
		logger.Load().Warn("memory: block released twice", "length", len(b.span))
		return ErrAlreadyReleased
	}
	if b.release != nil {
		b.release()
	}
	return nil
}
