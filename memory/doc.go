// Package memory implements the pixel-buffer memory model for pixbuf.
//
// # Overview
//
// Every decoder, encoder and processor works on memory obtained here:
//
//   - [Allocator] issues raw, owned byte buffers. [PoolingAllocator] recycles
//     them, [SimpleAllocator] delegates to the Go heap, and
//     [UnmanagedAllocator] maps anonymous memory outside the Go heap.
//   - [Block] is one contiguous, typed, owned region, released exactly once.
//   - [OwnedGroup] and [BorrowedGroup] are ordered sequences of blocks that form
//     one logical buffer. Owned groups release their blocks; borrowed groups
//     view memory the caller keeps alive.
//   - [Buffer2D] is a width x height grid of elements backed by a group.
//
// # Element Types
//
// Buffers hold plain-data element types: numbers, arrays and structs of them.
// Types containing pointers, strings, slices, maps, channels, functions or
// interfaces are rejected with [ErrUnsupportedElement], because buffers may
// live in recycled or unmanaged memory that the garbage collector does not scan.
//
// # Discontiguous Buffers
//
// Large 2D buffers may be split into several equally sized blocks. Block
// lengths are a multiple of the row width, so a row never straddles two
// blocks and [Buffer2D.Row] always returns a single slice.
//
// # Processing Scopes
//
// Parallel passes share one buffer between many goroutines. Call
// [Buffer2D.BeginProcessing] before fanning out and [Scope.End] afterwards;
// disposal and [SwapOrCopy] fail with [ErrBufferInUse] while any scope is open.
package memory
