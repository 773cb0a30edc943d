package memory

import (
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
)

// Group is one logical buffer made of one or more blocks. Every block except
// possibly the last has BlockLength elements.
//
// Group is implemented by *OwnedGroup, which releases its blocks, and
// *BorrowedGroup, which views memory owned by someone else.
type Group[T any] interface {
	// TotalLength returns the number of elements across all blocks.
	TotalLength() int

	// BlockLength returns the length of every block but the last.
	BlockLength() int

	// Count returns the number of blocks.
	Count() int

	// Block returns block i.
	Block(i int) []T

	// IsOwner reports whether the group releases its memory.
	IsOwner() bool

	segs() *segments[T]
}

// segments is the layout shared by owned and borrowed groups.
type segments[T any] struct {
	blocks   [][]T
	blockLen int
	total    int
	scopes   scopeCounter
}

func (s *segments[T]) segs() *segments[T] { return s }

// init sets the layout from blocks. All blocks but the last must have the
// same length.
func (s *segments[T]) init(blocks [][]T) error {
	total := 0
	blockLen := 0
	for i, b := range blocks {
		switch {
		case i == 0:
			blockLen = len(b)
		case i < len(blocks)-1 && len(b) != blockLen:
			return fmt.Errorf("%w: block %d has length %d, want %d", ErrInvalidArgument, i, len(b), blockLen)
		case len(b) > blockLen:
			return fmt.Errorf("%w: last block longer than block length %d", ErrInvalidArgument, blockLen)
		}
		total += len(b)
	}
	s.blocks = blocks
	s.blockLen = blockLen
	s.total = total
	return nil
}

// TotalLength returns the number of elements across all blocks.
func (s *segments[T]) TotalLength() int { return s.total }

// BlockLength returns the length of every block but the last.
func (s *segments[T]) BlockLength() int { return s.blockLen }

// Count returns the number of blocks.
func (s *segments[T]) Count() int { return len(s.blocks) }

// Block returns block i.
func (s *segments[T]) Block(i int) []T { return s.blocks[i] }

// IsContiguous reports whether the group is a single block.
func (s *segments[T]) IsContiguous() bool { return len(s.blocks) <= 1 }

// Locate translates a logical offset into a block index and an offset
// within that block.
func (s *segments[T]) Locate(offset int) (block, index int) {
	if s.blockLen == 0 {
		return 0, 0
	}
	return offset / s.blockLen, offset % s.blockLen
}

// At returns the element at a logical offset.
func (s *segments[T]) At(offset int) (T, error) {
	if offset < 0 || offset >= s.total {
		var zero T
		return zero, fmt.Errorf("%w: offset %d of %d", ErrIndexOutOfRange, offset, s.total)
	}
	b, i := s.Locate(offset)
	return s.blocks[b][i], nil
}

// Set stores v at a logical offset.
func (s *segments[T]) Set(offset int, v T) error {
	if offset < 0 || offset >= s.total {
		return fmt.Errorf("%w: offset %d of %d", ErrIndexOutOfRange, offset, s.total)
	}
	b, i := s.Locate(offset)
	s.blocks[b][i] = v
	return nil
}

// Spans iterates over the blocks in order, yielding each block's logical
// start offset and its elements.
func (s *segments[T]) Spans() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		off := 0
		for _, b := range s.blocks {
			if !yield(off, b) {
				return
			}
			off += len(b)
		}
	}
}

// Fill sets every element to v.
func (s *segments[T]) Fill(v T) {
	for _, b := range s.blocks {
		for i := range b {
			b[i] = v
		}
	}
}

// Clear sets every element to its zero value.
func (s *segments[T]) Clear() {
	for _, b := range s.blocks {
		clear(b)
	}
}

// CopyTo copies every element into dst, which must have the same total
// length. The block layouts may differ.
func (s *segments[T]) CopyTo(dst Group[T]) error {
	d := dst.segs()
	if d.total != s.total {
		return fmt.Errorf("%w: copy %d elements into %d", ErrIncompatibleBuffers, s.total, d.total)
	}
	walkPairs(s, d, s.total, func(src, dst []T) { copy(dst, src) })
	return nil
}

// BeginProcessing opens a processing scope on the group.
func (s *segments[T]) BeginProcessing() *Scope {
	return s.scopes.begin()
}

// InUse reports whether any processing scope is open.
func (s *segments[T]) InUse() bool {
	return s.scopes.inUse()
}

// walkPairs visits the first n elements of two groups as pairs of equally
// long spans, advancing through whichever block ends first.
func walkPairs[S, D any](src *segments[S], dst *segments[D], n int, fn func(src []S, dst []D)) {
	si, so := 0, 0
	di, do := 0, 0
	for n > 0 {
		sb := src.blocks[si][so:]
		db := dst.blocks[di][do:]
		k := min(len(sb), len(db), n)
		if k > 0 {
			fn(sb[:k], db[:k])
		}
		n -= k
		so += k
		do += k
		if so == len(src.blocks[si]) {
			si, so = si+1, 0
		}
		if do == len(dst.blocks[di]) {
			di, do = di+1, 0
		}
	}
}

// TransformTo applies fn to matching span pairs of src and dst, which must
// have the same total length. Each call receives spans of equal length.
// Used for element conversion between differently blocked buffers.
func TransformTo[S, D any](src Group[S], dst Group[D], fn func(src []S, dst []D)) error {
	s, d := src.segs(), dst.segs()
	if s.total != d.total {
		return fmt.Errorf("%w: transform %d elements into %d", ErrIncompatibleBuffers, s.total, d.total)
	}
	walkPairs(s, d, s.total, fn)
	return nil
}

// SwapContents exchanges the elements of two groups of equal total length.
func SwapContents[T any](a, b Group[T]) error {
	sa, sb := a.segs(), b.segs()
	if sa.total != sb.total {
		return fmt.Errorf("%w: swap %d elements with %d", ErrIncompatibleBuffers, sa.total, sb.total)
	}
	swapElements(sa, sb, sa.total)
	return nil
}

// swapElements exchanges the first n elements of two groups.
func swapElements[T any](a, b *segments[T], n int) {
	walkPairs(a, b, n, func(x, y []T) {
		for i := range x {
			x[i], y[i] = y[i], x[i]
		}
	})
}

// BorrowedGroup views memory owned by the caller. It never releases it; the
// caller keeps the memory valid for the group's lifetime.
type BorrowedGroup[T any] struct {
	segments[T]
}

// Wrap views a single externally owned region as a group. No allocation
// or copy occurs.
func Wrap[T any](mem []T) *BorrowedGroup[T] {
	g := &BorrowedGroup[T]{}
	g.blocks = [][]T{mem}
	g.blockLen = len(mem)
	g.total = len(mem)
	return g
}

// WrapBlocks views several externally owned regions as one group. All
// regions but the last must have the same length.
func WrapBlocks[T any](mem ...[]T) (*BorrowedGroup[T], error) {
	g := &BorrowedGroup[T]{}
	if err := g.init(mem); err != nil {
		return nil, err
	}
	return g, nil
}

// IsOwner returns false.
func (g *BorrowedGroup[T]) IsOwner() bool { return false }

// OwnedGroup owns its blocks and releases them on Release.
type OwnedGroup[T any] struct {
	segments[T]
	owners   []*Block[T]
	released atomic.Bool
}

func newOwnedGroup[T any](blocks []*Block[T]) *OwnedGroup[T] {
	g := &OwnedGroup[T]{owners: blocks}
	spans := make([][]T, len(blocks))
	for i, b := range blocks {
		spans[i] = b.span
	}
	g.blocks = spans
	g.blockLen = 0
	if len(spans) > 0 {
		g.blockLen = len(spans[0])
	}
	for _, s := range spans {
		g.total += len(s)
	}
	return g
}

// WrapBlock takes ownership of b. The group releases b when it is released.
func WrapBlock[T any](b *Block[T]) *OwnedGroup[T] {
	return newOwnedGroup([]*Block[T]{b})
}

// IsOwner returns true.
func (g *OwnedGroup[T]) IsOwner() bool { return true }

// Released reports whether the group has been released.
func (g *OwnedGroup[T]) Released() bool { return g.released.Load() }

// Release returns every block to its allocator. It fails with
// ErrBufferInUse while a processing scope is open; once it succeeds further
// calls are no-ops.
func (g *OwnedGroup[T]) Release() error {
	if g.scopes.inUse() {
		logger.Load().Warn("memory: release of group with open processing scopes",
			"elements", g.total)
		return ErrBufferInUse
	}
	if !g.released.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	for _, b := range g.owners {
		if err := b.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	g.owners = nil
	g.blocks = nil
	g.blockLen = 0
	g.total = 0
	return errors.Join(errs...)
}
