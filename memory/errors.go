package memory

import (
	"errors"
	"fmt"
)

// Errors returned by allocators, groups and buffers.
var (
	// ErrInvalidArgument is returned for non-positive dimensions, negative
	// lengths and nil allocators.
	ErrInvalidArgument = errors.New("memory: invalid argument")

	// ErrOutOfMemory is returned when an allocator cannot satisfy a request,
	// including contiguous requests above the single-allocation ceiling.
	ErrOutOfMemory = errors.New("memory: out of memory")

	// ErrInvalidSize is returned when a requested size overflows the
	// addressable element or byte count.
	ErrInvalidSize = errors.New("memory: invalid size")

	// ErrIndexOutOfRange is returned by checked row and element accessors.
	ErrIndexOutOfRange = errors.New("memory: index out of range")

	// ErrUseAfterRelease is returned when memory is touched after release.
	ErrUseAfterRelease = errors.New("memory: use after release")

	// ErrAlreadyReleased is returned by Block.Release on the second call.
	ErrAlreadyReleased = fmt.Errorf("%w: block already released", ErrUseAfterRelease)

	// ErrBufferInUse is returned by structural mutations while a processing
	// scope is open.
	ErrBufferInUse = fmt.Errorf("%w: buffer has open processing scopes", ErrUseAfterRelease)

	// ErrIncompatibleBuffers is returned when two buffers cannot be copied or
	// swapped into each other.
	ErrIncompatibleBuffers = errors.New("memory: incompatible buffers")

	// ErrUnsupportedElement is returned for element types that hold pointers
	// or have zero size.
	ErrUnsupportedElement = errors.New("memory: unsupported element type")
)
