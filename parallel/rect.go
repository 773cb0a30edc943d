package parallel

import (
	"fmt"
	"image"
	"iter"
)

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y          int
	Width, Height int
}

// RectOf converts an image.Rectangle.
func RectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Left returns the first column.
func (r Rect) Left() int { return r.X }

// Right returns one past the last column.
func (r Rect) Right() int { return r.X + r.Width }

// Top returns the first row.
func (r Rect) Top() int { return r.Y }

// Bottom returns one past the last row.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Area returns Width*Height.
func (r Rect) Area() int { return r.Width * r.Height }

// Empty reports whether the rectangle has no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)+%dx%d", r.X, r.Y, r.Width, r.Height)
}

// RowInterval is the half-open row range [Min, Max) handled by one task.
// Intervals are produced by the iterate functions only.
type RowInterval struct {
	min, max int
}

// Min returns the first row of the interval.
func (ri RowInterval) Min() int { return ri.min }

// Max returns one past the last row of the interval.
func (ri RowInterval) Max() int { return ri.max }

// Height returns the number of rows.
func (ri RowInterval) Height() int { return ri.max - ri.min }

// Rect returns the rectangle covering the interval's rows between x and
// x+width.
func (ri RowInterval) Rect(x, width int) Rect {
	return Rect{X: x, Y: ri.min, Width: width, Height: ri.max - ri.min}
}

// All yields the row indices of the interval in order.
func (ri RowInterval) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for y := ri.min; y < ri.max; y++ {
			if !yield(y) {
				return
			}
		}
	}
}

func (ri RowInterval) String() string {
	return fmt.Sprintf("[%d, %d)", ri.min, ri.max)
}
