package memory

import (
	"fmt"
	"image"
	"sync/atomic"
)

// Buffer2D is a width x height grid of elements backed by a Group.
// Row y occupies logical offsets [y*width, (y+1)*width) of the group and
// always lies within a single block.
//
// Thread safety: goroutines may read and write disjoint rows concurrently.
// Dispose and SwapOrCopy require that no other goroutine uses the buffer;
// open a processing scope around parallel passes to have that checked.
type Buffer2D[T any] struct {
	group    Group[T]
	width    int
	height   int
	disposed atomic.Bool
}

// NewBuffer2D creates a buffer over g. The group must hold at least
// width*height elements, and a discontiguous group's block length must be a
// multiple of width.
func NewBuffer2D[T any](g Group[T], width, height int) (*Buffer2D[T], error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil group", ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	if err := checkLayout(g, width, height); err != nil {
		return nil, err
	}
	return &Buffer2D[T]{group: g, width: width, height: height}, nil
}

// checkLayout validates that g can back a width x height grid.
func checkLayout[T any](g Group[T], width, height int) error {
	total, ok := mulInt(width, height)
	if !ok {
		return fmt.Errorf("%w: %dx%d overflows", ErrInvalidSize, width, height)
	}
	if total > g.TotalLength() {
		return fmt.Errorf("%w: %dx%d needs %d elements, group has %d",
			ErrInvalidArgument, width, height, total, g.TotalLength())
	}
	if g.Count() > 1 && g.BlockLength()%width != 0 {
		return fmt.Errorf("%w: block length %d is not a multiple of width %d",
			ErrInvalidArgument, g.BlockLength(), width)
	}
	return nil
}

// WrapMemory creates a non-owning buffer over mem. Writes through the buffer
// are visible in mem and vice versa. The caller keeps mem alive.
func WrapMemory[T any](mem []T, width, height int) (*Buffer2D[T], error) {
	if _, err := elementOf[T](); err != nil {
		return nil, err
	}
	return NewBuffer2D[T](Wrap(mem), width, height)
}

// WrapMemoryOwner creates a buffer that owns b and releases it on Dispose.
// If an error is returned, ownership stays with the caller.
func WrapMemoryOwner[T any](b *Block[T], width, height int) (*Buffer2D[T], error) {
	if b == nil || b.Released() {
		return nil, fmt.Errorf("%w: block is nil or released", ErrInvalidArgument)
	}
	return NewBuffer2D[T](WrapBlock(b), width, height)
}

// Width returns the number of elements per row.
func (b *Buffer2D[T]) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer2D[T]) Height() int { return b.height }

// Bounds returns the buffer's extent with its origin at (0, 0).
func (b *Buffer2D[T]) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Group returns the backing group.
func (b *Buffer2D[T]) Group() Group[T] { return b.group }

// IsOwner reports whether Dispose releases the backing memory.
func (b *Buffer2D[T]) IsOwner() bool { return b.group.IsOwner() }

// Row returns row y. It fails with ErrIndexOutOfRange when y is outside
// [0, Height) and with ErrUseAfterRelease after Dispose.
func (b *Buffer2D[T]) Row(y int) ([]T, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if y < 0 || y >= b.height {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, y, b.height)
	}
	return b.DangerousRow(y), nil
}

// live fails with ErrUseAfterRelease once the buffer is disposed or its
// group has been released directly.
func (b *Buffer2D[T]) live() error {
	if b.disposed.Load() || len(b.group.segs().blocks) == 0 {
		return ErrUseAfterRelease
	}
	return nil
}

// DangerousRow returns row y without validating y or the buffer state.
// Intended for inner loops where 0 <= y < Height is already established.
func (b *Buffer2D[T]) DangerousRow(y int) []T {
	s := b.group.segs()
	off := y * b.width
	if len(s.blocks) == 1 {
		return s.blocks[0][off : off+b.width]
	}
	blk, i := off/s.blockLen, off%s.blockLen
	return s.blocks[blk][i : i+b.width]
}

// At returns the element at (x, y).
func (b *Buffer2D[T]) At(x, y int) (T, error) {
	if x < 0 || x >= b.width {
		var zero T
		return zero, fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, x, b.width)
	}
	row, err := b.Row(y)
	if err != nil {
		var zero T
		return zero, err
	}
	return row[x], nil
}

// Set stores v at (x, y).
func (b *Buffer2D[T]) Set(x, y int, v T) error {
	if x < 0 || x >= b.width {
		return fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, x, b.width)
	}
	row, err := b.Row(y)
	if err != nil {
		return err
	}
	row[x] = v
	return nil
}

// Contiguous returns all width*height elements as one slice when the buffer
// is backed by a single block.
func (b *Buffer2D[T]) Contiguous() ([]T, bool) {
	s := b.group.segs()
	if len(s.blocks) != 1 {
		return nil, false
	}
	return s.blocks[0][:b.width*b.height], true
}

// Fill sets every element to v.
func (b *Buffer2D[T]) Fill(v T) { b.group.segs().Fill(v) }

// Clear sets every element to its zero value.
func (b *Buffer2D[T]) Clear() { b.group.segs().Clear() }

// CopyTo copies the buffer into dst, which must have the same dimensions.
func (b *Buffer2D[T]) CopyTo(dst *Buffer2D[T]) error {
	if err := b.live(); err != nil {
		return err
	}
	if err := dst.live(); err != nil {
		return err
	}
	if b.width != dst.width || b.height != dst.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrIncompatibleBuffers, b.width, b.height, dst.width, dst.height)
	}
	walkPairs(b.group.segs(), dst.group.segs(), b.width*b.height, func(src, dst []T) { copy(dst, src) })
	return nil
}

// Transform2D applies fn to matching span pairs of src and dst, which must
// have the same dimensions. Only the width*height elements of each buffer
// are visited; the block layouts may differ.
func Transform2D[S, D any](src *Buffer2D[S], dst *Buffer2D[D], fn func(src []S, dst []D)) error {
	if err := src.live(); err != nil {
		return err
	}
	if err := dst.live(); err != nil {
		return err
	}
	if src.width != dst.width || src.height != dst.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrIncompatibleBuffers, src.width, src.height, dst.width, dst.height)
	}
	walkPairs(src.group.segs(), dst.group.segs(), src.width*src.height, fn)
	return nil
}

// Clone copies the buffer into a new one allocated from a.
func (b *Buffer2D[T]) Clone(a Allocator) (*Buffer2D[T], error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	dst, err := Allocate2D[T](a, b.width, b.height, false, AllocationNone)
	if err != nil {
		return nil, err
	}
	if err := b.CopyTo(dst); err != nil {
		_ = dst.Dispose()
		return nil, err
	}
	return dst, nil
}

// BeginProcessing opens a processing scope on the backing group.
func (b *Buffer2D[T]) BeginProcessing() *Scope {
	return b.group.segs().BeginProcessing()
}

// Disposed reports whether Dispose has completed.
func (b *Buffer2D[T]) Disposed() bool { return b.disposed.Load() }

// Dispose releases owned memory. Borrowed memory is left to the caller.
// Dispose fails with ErrBufferInUse while a processing scope is open;
// otherwise it is idempotent.
func (b *Buffer2D[T]) Dispose() error {
	if b.group.segs().InUse() {
		return ErrBufferInUse
	}
	if !b.disposed.CompareAndSwap(false, true) {
		return nil
	}
	if og, ok := b.group.(*OwnedGroup[T]); ok {
		return og.Release()
	}
	return nil
}

// SwapOrCopy exchanges the contents and dimensions of a and b.
//
// When both buffers own their memory, the groups themselves are exchanged in
// O(1) and swapped is true. Otherwise the elements are exchanged one by one,
// which requires equal areas and layouts that accept each other's width.
func SwapOrCopy[T any](a, b *Buffer2D[T]) (swapped bool, err error) {
	if a == b {
		return false, nil
	}
	if err := a.live(); err != nil {
		return false, err
	}
	if err := b.live(); err != nil {
		return false, err
	}
	if a.group.segs().InUse() || b.group.segs().InUse() {
		return false, ErrBufferInUse
	}

	if a.group.IsOwner() && b.group.IsOwner() {
		a.group, b.group = b.group, a.group
		a.width, b.width = b.width, a.width
		a.height, b.height = b.height, a.height
		return true, nil
	}

	area := a.width * a.height
	if area != b.width*b.height {
		return false, fmt.Errorf("%w: %dx%d and %dx%d", ErrIncompatibleBuffers, a.width, a.height, b.width, b.height)
	}
	if err := checkLayout(a.group, b.width, b.height); err != nil {
		return false, fmt.Errorf("%w: %w", ErrIncompatibleBuffers, err)
	}
	if err := checkLayout(b.group, a.width, a.height); err != nil {
		return false, fmt.Errorf("%w: %w", ErrIncompatibleBuffers, err)
	}
	swapElements(a.group.segs(), b.group.segs(), area)
	a.width, b.width = b.width, a.width
	a.height, b.height = b.height, a.height
	return false, nil
}
