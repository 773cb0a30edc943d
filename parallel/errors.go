package parallel

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gogpu/pixbuf/memory"
)

var (
	// ErrInvalidArgument is returned for empty rectangles and invalid
	// settings. It is the same sentinel as memory.ErrInvalidArgument.
	ErrInvalidArgument = memory.ErrInvalidArgument

	// ErrPoolClosed is returned when work is submitted to a closed WorkerPool.
	ErrPoolClosed = errors.New("parallel: worker pool closed")
)

// PanicError reports a panic raised by an operation running on a task.
type PanicError struct {
	// Value is the value passed to panic.
	Value any

	// Stack is the panicking goroutine's stack trace.
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: task panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// runTask calls task(i), converting a panic into a *PanicError.
func runTask(task func(int) error, i int) (err error) {
	defer func() {
		if v := recover(); v != nil {
			logger.Load().Warn("parallel: recovered panic in task",
				"task", i, "panic", v)
			err = newPanicError(v)
		}
	}()
	return task(i)
}
