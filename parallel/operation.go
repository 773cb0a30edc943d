package parallel

// RowOperation processes one row per call.
type RowOperation interface {
	Invoke(y int)
}

// RowIntervalOperation processes a contiguous band of rows per call.
type RowIntervalOperation interface {
	Invoke(rows RowInterval)
}

// RowOperationWithBuffer is a RowOperation that needs scratch space.
// RequiredBufferLength is called once per pass with the processed rectangle.
type RowOperationWithBuffer[B any] interface {
	RequiredBufferLength(bounds Rect) int
	Invoke(y int, buf []B)
}

// RowIntervalOperationWithBuffer is a RowIntervalOperation that needs
// scratch space.
type RowIntervalOperationWithBuffer[B any] interface {
	RequiredBufferLength(bounds Rect) int
	Invoke(rows RowInterval, buf []B)
}

// RowFunc adapts a function to RowOperation.
type RowFunc func(y int)

// Invoke calls f(y).
func (f RowFunc) Invoke(y int) { f(y) }

// RowIntervalFunc adapts a function to RowIntervalOperation.
type RowIntervalFunc func(rows RowInterval)

// Invoke calls f(rows).
func (f RowIntervalFunc) Invoke(rows RowInterval) { f(rows) }

// BufferedRowFunc adapts a pair of functions to RowOperationWithBuffer.
type BufferedRowFunc[B any] struct {
	// BufferLength returns the scratch length for bounds. Nil means the
	// rectangle's width.
	BufferLength func(bounds Rect) int
	Func         func(y int, buf []B)
}

// RequiredBufferLength implements RowOperationWithBuffer.
func (f BufferedRowFunc[B]) RequiredBufferLength(bounds Rect) int {
	if f.BufferLength == nil {
		return bounds.Width
	}
	return f.BufferLength(bounds)
}

// Invoke calls f.Func(y, buf).
func (f BufferedRowFunc[B]) Invoke(y int, buf []B) { f.Func(y, buf) }

// BufferedRowIntervalFunc adapts a pair of functions to
// RowIntervalOperationWithBuffer.
type BufferedRowIntervalFunc[B any] struct {
	// BufferLength returns the scratch length for bounds. Nil means the
	// rectangle's width.
	BufferLength func(bounds Rect) int
	Func         func(rows RowInterval, buf []B)
}

// RequiredBufferLength implements RowIntervalOperationWithBuffer.
func (f BufferedRowIntervalFunc[B]) RequiredBufferLength(bounds Rect) int {
	if f.BufferLength == nil {
		return bounds.Width
	}
	return f.BufferLength(bounds)
}

// Invoke calls f.Func(rows, buf).
func (f BufferedRowIntervalFunc[B]) Invoke(rows RowInterval, buf []B) { f.Func(rows, buf) }

// eachRow runs a RowOperation over a band.
type eachRow[Op RowOperation] struct{ op Op }

func (w eachRow[Op]) Invoke(rows RowInterval) {
	for y := rows.min; y < rows.max; y++ {
		w.op.Invoke(y)
	}
}

// eachBufferedRow runs a RowOperationWithBuffer over a band, reusing buf.
type eachBufferedRow[B any, Op RowOperationWithBuffer[B]] struct{ op Op }

func (w eachBufferedRow[B, Op]) RequiredBufferLength(bounds Rect) int {
	return w.op.RequiredBufferLength(bounds)
}

func (w eachBufferedRow[B, Op]) Invoke(rows RowInterval, buf []B) {
	for y := rows.min; y < rows.max; y++ {
		w.op.Invoke(y, buf)
	}
}
