package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestExecutors_RunAllTasks(t *testing.T) {
	for name, exec := range executors(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []int{0, 1, 2, 17, 200} {
				seen := make([]atomic.Int32, n)
				if err := exec.Run(n, func(i int) error {
					seen[i].Add(1)
					return nil
				}); err != nil {
					t.Fatalf("n=%d: %v", n, err)
				}
				for i := range seen {
					if seen[i].Load() != 1 {
						t.Fatalf("n=%d: task %d ran %d times", n, i, seen[i].Load())
					}
				}
			}
		})
	}
}

func TestExecutors_FirstError(t *testing.T) {
	errTask := errors.New("task failed")
	for name, exec := range executors(t) {
		t.Run(name, func(t *testing.T) {
			err := exec.Run(10, func(i int) error {
				if i%3 == 1 {
					return errTask
				}
				return nil
			})
			if !errors.Is(err, errTask) {
				t.Errorf("err = %v, want %v", err, errTask)
			}
		})
	}
}

func TestSerialExecutor_StopsAtFirstError(t *testing.T) {
	var ran atomic.Int32
	errStop := errors.New("stop")
	err := SerialExecutor{}.Run(10, func(i int) error {
		ran.Add(1)
		if i == 3 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) || ran.Load() != 4 {
		t.Errorf("err = %v, ran = %d; want stop after 4", err, ran.Load())
	}
}
