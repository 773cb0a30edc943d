package parallel

import (
	"fmt"

	"github.com/gogpu/pixbuf/memory"
)

// IterateRows calls op.Invoke once for every row in [r.Top(), r.Bottom()).
// It blocks until all rows are processed.
func IterateRows[Op RowOperation](r Rect, s Settings, op Op) error {
	return IterateRowIntervals(r, s, eachRow[Op]{op})
}

// IterateRowIntervals calls op.Invoke once per band, covering every row of r
// exactly once. It blocks until all bands are processed.
func IterateRowIntervals[Op RowIntervalOperation](r Rect, s Settings, op Op) error {
	p, err := Plan(r, s)
	if err != nil {
		return err
	}
	return execute(p, s, func(i int) error {
		op.Invoke(p.Interval(i))
		return nil
	})
}

// IterateRowsWithBuffer is IterateRows for operations that need scratch
// space. Each task allocates one buffer of op.RequiredBufferLength(r)
// elements and reuses it for all of its rows.
func IterateRowsWithBuffer[B any, Op RowOperationWithBuffer[B]](r Rect, s Settings, op Op) error {
	return IterateRowIntervalsWithBuffer[B](r, s, eachBufferedRow[B, Op]{op})
}

// IterateRowIntervalsWithBuffer is IterateRowIntervals for operations that
// need scratch space. Each task allocates one buffer of
// op.RequiredBufferLength(r) elements from the settings' allocator before its
// band and releases it afterwards. The buffer's contents are unspecified.
func IterateRowIntervalsWithBuffer[B any, Op RowIntervalOperationWithBuffer[B]](r Rect, s Settings, op Op) error {
	p, err := Plan(r, s)
	if err != nil {
		return err
	}
	n := op.RequiredBufferLength(r)
	if n < 0 {
		return fmt.Errorf("%w: required buffer length %d", ErrInvalidArgument, n)
	}
	alloc := s.MemoryAllocator()
	return execute(p, s, func(i int) error {
		buf, err := memory.Allocate[B](alloc, n, memory.AllocationNone)
		if err != nil {
			return err
		}
		defer func() { _ = buf.Release() }()
		op.Invoke(p.Interval(i), buf.Span())
		return nil
	})
}

// execute runs task for every band of p, inline when there is one step.
func execute(p Schedule, s Settings, task func(int) error) error {
	if p.Steps == 1 {
		return runTask(task, 0)
	}
	if logger.Debug() {
		logger.Load().Debug("parallel: dispatching bands",
			"rect", p.Rect.String(), "steps", p.Steps, "tasks", p.Tasks(),
			"rows_per_task", p.VerticalStep)
	}
	return s.Executor().Run(p.Tasks(), task)
}
