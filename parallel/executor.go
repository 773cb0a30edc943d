package parallel

import "golang.org/x/sync/errgroup"

// Executor runs n independent tasks and blocks until all of them finish.
// Run returns the first non-nil error returned by a task; a panicking task
// is reported as a *PanicError.
type Executor interface {
	Run(n int, task func(i int) error) error
}

// GoExecutor starts one goroutine per task.
type GoExecutor struct{}

// Run implements Executor.
func (GoExecutor) Run(n int, task func(i int) error) error {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return runTask(task, 0)
	}
	var g errgroup.Group
	for i := range n {
		g.Go(func() error { return runTask(task, i) })
	}
	return g.Wait()
}

// SerialExecutor runs tasks one after another on the calling goroutine.
// Results are identical to a parallel executor; it is meant for debugging
// and for callers that are already inside a parallel region.
type SerialExecutor struct{}

// Run implements Executor. It stops at the first failing task.
func (SerialExecutor) Run(n int, task func(i int) error) error {
	for i := range n {
		if err := runTask(task, i); err != nil {
			return err
		}
	}
	return nil
}
