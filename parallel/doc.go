// Package parallel drives per-row image operations across goroutines.
//
// A processing pass is described by a [Rect], a [Settings] value and an
// operation. The rectangle is cut into contiguous row bands, one per task,
// and each task invokes the operation for its own rows only. Bands never
// overlap, so operations may write their rows of a shared
// [memory.Buffer2D] without locking.
//
// # Scheduling
//
// For a rectangle of width w and height h:
//
//	maxSteps     = ceil(w*h / MinimumPixelsPerTask)
//	numSteps     = min(MaxDegreeOfParallelism, maxSteps)
//	verticalStep = ceil(h / numSteps)
//
// With one step the operation runs inline on the calling goroutine. With more,
// task i handles rows [top+i*verticalStep, min(top+(i+1)*verticalStep, bottom))
// and tasks that would start past the bottom are not dispatched. [Plan]
// exposes the computed schedule.
//
// # Operation shapes
//
// Per-row operations implement [RowOperation]; per-band operations implement
// [RowIntervalOperation] and can amortize setup across the rows of a band.
// The WithBuffer variants additionally receive a scratch slice allocated once
// per task from the settings' allocator and released when the task ends.
//
// The iterate functions are generic over the operation type, so a value-type
// operation struct is called directly from the row loop. Plain functions can
// be adapted with [RowFunc], [RowIntervalFunc], [BufferedRowFunc] and
// [BufferedRowIntervalFunc].
//
// # Errors
//
// Invalid rectangles and settings fail with [ErrInvalidArgument] before any
// work is scheduled. Scratch allocation failures and panics inside tasks are
// returned to the caller; a panic is reported as a [*PanicError]. When
// several tasks fail, the first error wins. Nothing is retried and there is
// no cancellation: an operation that needs it checks its own context between
// rows.
package parallel
