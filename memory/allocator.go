package memory

import (
	"fmt"
	"math"
)

// Default allocator limits.
const (
	// DefaultBlockCapacity is the preferred size in bytes of one block in a
	// discontiguous group.
	DefaultBlockCapacity = 4 << 20

	// DefaultMaxContiguousBytes is the largest single allocation accepted.
	DefaultMaxContiguousBytes = math.MaxInt32
)

// AllocationOptions selects the initial content of allocated memory.
type AllocationOptions uint8

const (
	// AllocationNone allows the memory to hold stale data. Use it on
	// write-before-read paths such as decoding.
	AllocationNone AllocationOptions = iota

	// AllocationClean guarantees zero-filled memory.
	AllocationClean
)

// String returns a string representation of the options.
func (o AllocationOptions) String() string {
	switch o {
	case AllocationNone:
		return "None"
	case AllocationClean:
		return "Clean"
	default:
		return "Unknown"
	}
}

// RawBuffer is owned, untyped memory issued by an Allocator.
// Release must be called exactly once; Bytes must not be used afterwards.
type RawBuffer interface {
	Bytes() []byte
	Release()
}

// Limits describes the sizes an Allocator is willing to hand out.
type Limits struct {
	// BlockCapacity is the preferred byte size of one block when a large
	// buffer is split into a group.
	BlockCapacity int

	// MaxContiguousBytes is the ceiling for one contiguous allocation.
	MaxContiguousBytes int

	// MaxTotalBytes caps a single logical allocation, across all of its
	// blocks. Zero means unlimited.
	MaxTotalBytes int
}

// withDefaults fills zero fields with package defaults.
func (l Limits) withDefaults() Limits {
	if l.BlockCapacity <= 0 {
		l.BlockCapacity = DefaultBlockCapacity
	}
	if l.MaxContiguousBytes <= 0 {
		l.MaxContiguousBytes = DefaultMaxContiguousBytes
	}
	if l.BlockCapacity > l.MaxContiguousBytes {
		l.BlockCapacity = l.MaxContiguousBytes
	}
	if l.MaxTotalBytes < 0 {
		l.MaxTotalBytes = 0
	}
	return l
}

// check validates a contiguous request of n bytes against the limits.
func (l Limits) check(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("%w: negative size %d", ErrInvalidArgument, n)
	case l.MaxTotalBytes > 0 && n > l.MaxTotalBytes:
		return fmt.Errorf("%w: %d bytes exceeds allocation limit of %d", ErrOutOfMemory, n, l.MaxTotalBytes)
	case n > l.MaxContiguousBytes:
		return fmt.Errorf("%w: %d bytes exceeds contiguous limit of %d", ErrOutOfMemory, n, l.MaxContiguousBytes)
	}
	return nil
}

// Allocator issues raw memory. Implementations must be safe for concurrent use.
//
// Allocators are created once per configuration and live for the lifetime of
// the process, or until replaced. ReleaseRetainedResources drops pooled but
// unused memory; call it only after every buffer created by the allocator
// has been disposed.
type Allocator interface {
	// AllocateBytes returns a buffer of exactly n bytes, 8-byte aligned.
	AllocateBytes(n int, opts AllocationOptions) (RawBuffer, error)

	// Limits reports the allocator's block size and ceilings.
	Limits() Limits

	// ReleaseRetainedResources drains pooled memory.
	ReleaseRetainedResources()
}

// Allocate issues one contiguous block of length elements of T.
func Allocate[T any](a Allocator, length int, opts AllocationOptions) (*Block[T], error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil allocator", ErrInvalidArgument)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidArgument, length)
	}
	info, err := elementOf[T]()
	if err != nil {
		return nil, err
	}
	n, ok := mulInt(length, info.size)
	if !ok {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrInvalidSize, length, info.size)
	}
	return allocateBlock[T](a, length, n, info, opts)
}

// allocateBlock requests n bytes from a and types them as length elements.
func allocateBlock[T any](a Allocator, length, n int, info elementInfo, opts AllocationOptions) (*Block[T], error) {
	raw, err := a.AllocateBytes(n, opts)
	if err != nil {
		return nil, err
	}
	b := raw.Bytes()
	if len(b) < n {
		raw.Release()
		return nil, fmt.Errorf("%w: allocator returned %d bytes, want %d", ErrOutOfMemory, len(b), n)
	}
	span, err := castBytes[T](b, length, info)
	if err != nil {
		raw.Release()
		return nil, err
	}
	return &Block[T]{span: span, release: raw.Release}, nil
}

// AllocateGroup issues totalLength elements of T as one or more blocks.
//
// A single block is used when the request fits the allocator's block
// capacity. Larger requests are a single block when preferContiguous is set
// (failing with ErrOutOfMemory above the contiguous ceiling), otherwise a
// group of equal blocks whose length is a multiple of alignment.
func AllocateGroup[T any](a Allocator, totalLength, alignment int, preferContiguous bool, opts AllocationOptions) (*OwnedGroup[T], error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil allocator", ErrInvalidArgument)
	}
	if totalLength < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidArgument, totalLength)
	}
	if alignment < 1 {
		alignment = 1
	}
	info, err := elementOf[T]()
	if err != nil {
		return nil, err
	}
	totalBytes, ok := mulInt(totalLength, info.size)
	if !ok {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrInvalidSize, totalLength, info.size)
	}

	lim := a.Limits().withDefaults()
	if lim.MaxTotalBytes > 0 && totalBytes > lim.MaxTotalBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds allocation limit of %d", ErrOutOfMemory, totalBytes, lim.MaxTotalBytes)
	}

	if totalBytes <= lim.BlockCapacity || preferContiguous {
		if totalBytes > lim.MaxContiguousBytes {
			return nil, fmt.Errorf("%w: contiguous buffer of %d bytes exceeds limit of %d",
				ErrOutOfMemory, totalBytes, lim.MaxContiguousBytes)
		}
		blk, err := allocateBlock[T](a, totalLength, totalBytes, info, opts)
		if err != nil {
			return nil, err
		}
		return newOwnedGroup([]*Block[T]{blk}), nil
	}

	blockLen := max(lim.BlockCapacity/info.size, 1)
	blockLen -= blockLen % alignment
	if blockLen == 0 {
		// One aligned unit is larger than the preferred capacity.
		blockLen = alignment
	}
	if blockLen*info.size > lim.MaxContiguousBytes {
		return nil, fmt.Errorf("%w: aligned block of %d elements exceeds contiguous limit",
			ErrOutOfMemory, blockLen)
	}

	count := (totalLength + blockLen - 1) / blockLen
	blocks := make([]*Block[T], 0, count)
	for remaining := totalLength; remaining > 0; remaining -= blockLen {
		n := min(blockLen, remaining)
		blk, err := allocateBlock[T](a, n, n*info.size, info, opts)
		if err != nil {
			for _, b := range blocks {
				_ = b.Release()
			}
			return nil, err
		}
		blocks = append(blocks, blk)
	}

	if logger.Debug() {
		logger.Load().Debug("memory: discontiguous group allocated",
			"elements", totalLength, "blocks", count, "blockLength", blockLen)
	}
	return newOwnedGroup(blocks), nil
}

// Allocate2D issues a width x height buffer of T.
// Rows never straddle blocks of a discontiguous buffer.
func Allocate2D[T any](a Allocator, width, height int, preferContiguous bool, opts AllocationOptions) (*Buffer2D[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	total, ok := mulInt(width, height)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrInvalidSize, width, height)
	}
	g, err := AllocateGroup[T](a, total, width, preferContiguous, opts)
	if err != nil {
		return nil, err
	}
	buf, err := NewBuffer2D[T](g, width, height)
	if err != nil {
		_ = g.Release()
		return nil, err
	}
	return buf, nil
}
