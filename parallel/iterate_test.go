package parallel

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/gogpu/pixbuf/memory"
)

func executors(t *testing.T) map[string]Executor {
	pool := NewWorkerPool(4)
	t.Cleanup(pool.Close)
	return map[string]Executor{
		"go":     GoExecutor{},
		"pool":   pool,
		"serial": SerialExecutor{},
	}
}

// =============================================================================
// Partition completeness
// =============================================================================

func TestIterateRows_VisitsEveryRowOnce(t *testing.T) {
	rects := []Rect{
		{Width: 1, Height: 1},
		{Width: 10, Height: 1},
		{Width: 7, Height: 13},
		{X: 5, Y: 17, Width: 33, Height: 101},
		{Width: 1, Height: 500},
		{Width: 4000, Height: 3},
	}
	degrees := []int{1, 2, 3, 8, 64, Unbounded}
	granularity := []int{1, 4, 100, 4096}

	for name, exec := range executors(t) {
		for _, r := range rects {
			for _, d := range degrees {
				for _, m := range granularity {
					s := mustSettings(t, d, m, nil).WithExecutor(exec)
					t.Run(fmt.Sprintf("%s/%v/%d/%d", name, r, d, m), func(t *testing.T) {
						v := newVisitCounter(r)
						if err := IterateRows(r, s, v); err != nil {
							t.Fatal(err)
						}
						v.check(t)
					})
				}
			}
		}
	}
}

func TestIterateRowIntervals_BandsTileRect(t *testing.T) {
	r := Rect{Y: 10, Width: 16, Height: 37}
	s := mustSettings(t, 6, 16, nil)

	var calls atomic.Int32
	v := newVisitCounter(r)
	err := IterateRowIntervals(r, s, RowIntervalFunc(func(rows RowInterval) {
		calls.Add(1)
		for y := range rows.All() {
			v.Invoke(y)
		}
	}))
	if err != nil {
		t.Fatal(err)
	}
	v.check(t)

	p, _ := Plan(r, s)
	if int(calls.Load()) != p.Tasks() {
		t.Errorf("operation called %d times, want %d", calls.Load(), p.Tasks())
	}
}

// =============================================================================
// Single-step and multi-step equivalence
// =============================================================================

type gradientOp struct {
	buf *memory.Buffer2D[uint32]
}

func (op gradientOp) Invoke(y int) {
	row := op.buf.DangerousRow(y)
	for x := range row {
		row[x] = uint32(x*x+y*7919) ^ uint32(y<<16)
	}
}

func TestIterateRows_SingleAndMultiStepMatch(t *testing.T) {
	alloc := memory.NewSimpleAllocator()
	const w, h = 123, 77
	r := Rect{Width: w, Height: h}

	serial, _ := memory.Allocate2D[uint32](alloc, w, h, false, memory.AllocationClean)
	wide, _ := memory.Allocate2D[uint32](alloc, w, h, false, memory.AllocationClean)

	if err := IterateRows(r, mustSettings(t, 1, 1, alloc), gradientOp{serial}); err != nil {
		t.Fatal(err)
	}
	if err := IterateRows(r, mustSettings(t, 64, 1, alloc), gradientOp{wide}); err != nil {
		t.Fatal(err)
	}
	for y := range h {
		if !slices.Equal(serial.DangerousRow(y), wide.DangerousRow(y)) {
			t.Fatalf("row %d differs between single-step and multi-step", y)
		}
	}
}

// =============================================================================
// Scratch buffers
// =============================================================================

func TestIterateRowsWithBuffer_Length(t *testing.T) {
	for _, d := range []int{1, 4, Unbounded} {
		t.Run(fmt.Sprint(d), func(t *testing.T) {
			r := Rect{X: 4, Width: 37, Height: 50}
			var short atomic.Int32
			op := BufferedRowFunc[float32]{
				Func: func(y int, buf []float32) {
					if len(buf) < r.Width {
						short.Add(1)
					}
					for i := range buf {
						buf[i] = float32(y)
					}
				},
			}
			if err := IterateRowsWithBuffer[float32](r, mustSettings(t, d, 64, nil), op); err != nil {
				t.Fatal(err)
			}
			if short.Load() != 0 {
				t.Errorf("%d invocations got a buffer shorter than %d", short.Load(), r.Width)
			}
		})
	}
}

func TestIterateRowIntervalsWithBuffer_OneBufferPerTask(t *testing.T) {
	tests := []struct {
		name      string
		maxDegree int
		minPixels int
	}{
		{"single step", 1, 1},
		{"granularity forces one step", 16, 1 << 20},
		{"multi step", 4, 1},
		{"unbounded", Unbounded, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := newCountingAllocator()
			s := mustSettings(t, tt.maxDegree, tt.minPixels, alloc)
			r := Rect{Width: 32, Height: 29}

			var calls atomic.Int32
			op := BufferedRowIntervalFunc[int64]{
				BufferLength: func(bounds Rect) int { return 2 * bounds.Width },
				Func: func(rows RowInterval, buf []int64) {
					calls.Add(1)
					if len(buf) != 64 {
						t.Errorf("len(buf) = %d, want 64", len(buf))
					}
				},
			}
			if err := IterateRowIntervalsWithBuffer[int64](r, s, op); err != nil {
				t.Fatal(err)
			}

			p, _ := Plan(r, s)
			if got := alloc.allocations.Load(); int(got) != p.Tasks() || got != calls.Load() {
				t.Errorf("allocations = %d, calls = %d, tasks = %d", got, calls.Load(), p.Tasks())
			}
			if p.Steps == 1 && alloc.allocations.Load() != 1 {
				t.Errorf("single-step path allocated %d buffers, want 1", alloc.allocations.Load())
			}
			if n := alloc.outstanding.Load(); n != 0 {
				t.Errorf("%d scratch buffers not released", n)
			}
		})
	}
}

func TestIterateRowsWithBuffer_ReusesBufferWithinTask(t *testing.T) {
	r := Rect{Width: 8, Height: 8}
	var firstPtr atomic.Pointer[byte]
	var distinct atomic.Int32
	op := BufferedRowFunc[byte]{
		Func: func(y int, buf []byte) {
			if !firstPtr.CompareAndSwap(nil, &buf[0]) && firstPtr.Load() != &buf[0] {
				distinct.Add(1)
			}
		},
	}
	if err := IterateRowsWithBuffer[byte](r, mustSettings(t, 1, 1, nil), op); err != nil {
		t.Fatal(err)
	}
	if distinct.Load() != 0 {
		t.Error("single task saw more than one scratch buffer")
	}
}

func TestIterateWithBuffer_AllocationFailure(t *testing.T) {
	alloc := memory.NewSimpleAllocatorWithLimits(memory.Limits{MaxTotalBytes: 16})
	r := Rect{Width: 100, Height: 100}

	var calls atomic.Int32
	op := BufferedRowFunc[float32]{Func: func(int, []float32) { calls.Add(1) }}

	for _, d := range []int{1, 8} {
		err := IterateRowsWithBuffer[float32](r, mustSettings(t, d, 1, alloc), op)
		if !errors.Is(err, memory.ErrOutOfMemory) {
			t.Errorf("degree %d: err = %v, want ErrOutOfMemory", d, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("operation ran %d times without a buffer", calls.Load())
	}
}

func TestIterateWithBuffer_NegativeLength(t *testing.T) {
	op := BufferedRowFunc[byte]{
		BufferLength: func(Rect) int { return -1 },
		Func:         func(int, []byte) { t.Error("operation should not run") },
	}
	err := IterateRowsWithBuffer[byte](Rect{Width: 4, Height: 4}, mustSettings(t, 2, 1, nil), op)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestIterate_InvalidRect(t *testing.T) {
	s := mustSettings(t, 4, 1, nil)
	called := false
	op := RowFunc(func(int) { called = true })
	for _, r := range []Rect{{Width: 0, Height: 3}, {Width: 3, Height: -1}} {
		if err := IterateRows(r, s, op); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("IterateRows(%v): err = %v", r, err)
		}
		if err := IterateRowIntervals(r, s, RowIntervalFunc(func(RowInterval) { called = true })); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("IterateRowIntervals(%v): err = %v", r, err)
		}
	}
	if called {
		t.Error("operation ran for an invalid rectangle")
	}
}

func TestIterate_PanicIsReturned(t *testing.T) {
	for _, d := range []int{1, 8} {
		for name, exec := range executors(t) {
			t.Run(fmt.Sprintf("%s/%d", name, d), func(t *testing.T) {
				s := mustSettings(t, d, 1, nil).WithExecutor(exec)
				err := IterateRows(Rect{Width: 4, Height: 16}, s, RowFunc(func(y int) {
					if y == 5 {
						panic("boom")
					}
				}))
				var pe *PanicError
				if !errors.As(err, &pe) {
					t.Fatalf("err = %v, want *PanicError", err)
				}
				if pe.Value != "boom" || len(pe.Stack) == 0 {
					t.Errorf("PanicError = %v, stack %d bytes", pe.Value, len(pe.Stack))
				}
			})
		}
	}
}

func TestPanicError_Unwrap(t *testing.T) {
	sentinel := errors.New("inner")
	err := runTask(func(int) error { panic(sentinel) }, 0)
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want to wrap the panic error", err)
	}
}

// =============================================================================
// Scenario
// =============================================================================

func TestIterateRows_WritesRowIndex(t *testing.T) {
	alloc := memory.NewPoolingAllocator(memory.PoolingOptions{})
	buf, err := memory.Allocate2D[uint32](alloc, 10, 1, false, memory.AllocationClean)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Dispose()

	s := mustSettings(t, defaultParallelism(), 4, alloc)
	scope := buf.BeginProcessing()
	err = IterateRows(RectOf(buf.Bounds()), s, RowFunc(func(y int) {
		row := buf.DangerousRow(y)
		for x := range row {
			row[x] = uint32(y)
		}
	}))
	scope.End()
	if err != nil {
		t.Fatal(err)
	}
	for y := range buf.Height() {
		row, _ := buf.Row(y)
		for x, v := range row {
			if v != uint32(y) {
				t.Errorf("(%d,%d) = %d, want %d", x, y, v, y)
			}
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkIterateRows(b *testing.B) {
	alloc := memory.NewSimpleAllocator()
	buf, _ := memory.Allocate2D[uint32](alloc, 1920, 1080, false, memory.AllocationNone)
	r := RectOf(buf.Bounds())
	for _, d := range []int{1, defaultParallelism()} {
		s := mustSettings(b, d, DefaultMinimumPixelsPerTask, alloc)
		b.Run(fmt.Sprint(d), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = IterateRows(r, s, gradientOp{buf})
			}
		})
	}
}
