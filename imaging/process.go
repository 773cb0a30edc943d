package imaging

import (
	"image"

	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

type invertRows struct {
	buf *memory.Buffer2D[RGBA32]
}

// Invoke inverts the color channels of row y. Colors are premultiplied, so
// each channel is mirrored within [0, A].
func (op invertRows) Invoke(y int) {
	row := op.buf.DangerousRow(y)
	for i, p := range row {
		row[i] = RGBA32{R: p.A - p.R, G: p.A - p.G, B: p.A - p.B, A: p.A}
	}
}

// Invert replaces every pixel of buf with its color negative, keeping alpha.
func Invert(cfg *pixbuf.Configuration, buf *memory.Buffer2D[RGBA32]) error {
	s, err := settingsFor(cfg)
	if err != nil {
		return err
	}
	scope := buf.BeginProcessing()
	defer scope.End()
	return parallel.IterateRows(parallel.RectOf(buf.Bounds()), s, invertRows{buf})
}

type fillRows[T any] struct {
	buf    *memory.Buffer2D[T]
	x0, x1 int
	value  T
}

func (op fillRows[T]) Invoke(rows parallel.RowInterval) {
	for y := range rows.All() {
		row := op.buf.DangerousRow(y)[op.x0:op.x1]
		for i := range row {
			row[i] = op.value
		}
	}
}

// FillRect sets every pixel of buf inside r to value. r is clipped to the
// buffer; an r outside the buffer is a no-op.
func FillRect[T any](cfg *pixbuf.Configuration, buf *memory.Buffer2D[T], r image.Rectangle, value T) error {
	r = r.Intersect(buf.Bounds())
	if r.Empty() {
		return nil
	}
	s, err := settingsFor(cfg)
	if err != nil {
		return err
	}
	scope := buf.BeginProcessing()
	defer scope.End()
	return parallel.IterateRowIntervals(parallel.RectOf(r), s, fillRows[T]{
		buf:   buf,
		x0:    r.Min.X,
		x1:    r.Max.X,
		value: value,
	})
}
