package parallel

import (
	"fmt"
	"math"

	"github.com/gogpu/pixbuf/memory"
)

const (
	// Unbounded lifts the cap on tasks per pass. The task count is still
	// limited by MinimumPixelsPerTask.
	Unbounded = -1

	// DefaultMinimumPixelsPerTask is the work granularity used when none is
	// configured.
	DefaultMinimumPixelsPerTask = 4096
)

// Settings is the parallelism and granularity policy for one pass.
// Settings values are immutable; the With and Multiply methods return copies.
// The zero value is invalid; use NewSettings or SettingsFromConfig.
type Settings struct {
	maxDegree int
	minPixels int
	alloc     memory.Allocator
	exec      Executor
}

// NewSettings returns settings that run at most maxDegree tasks (or
// Unbounded), giving each task at least minPixels pixels, and allocating
// scratch buffers from alloc.
func NewSettings(maxDegree, minPixels int, alloc memory.Allocator) (Settings, error) {
	if maxDegree <= 0 && maxDegree != Unbounded {
		return Settings{}, fmt.Errorf("%w: max degree of parallelism %d", ErrInvalidArgument, maxDegree)
	}
	if minPixels <= 0 {
		return Settings{}, fmt.Errorf("%w: minimum pixels per task %d", ErrInvalidArgument, minPixels)
	}
	if alloc == nil {
		return Settings{}, fmt.Errorf("%w: nil allocator", ErrInvalidArgument)
	}
	return Settings{maxDegree: maxDegree, minPixels: minPixels, alloc: alloc}, nil
}

// Config is the part of a configuration that settings are derived from.
//
// A Config may also implement MinimumPixelsPerTask() int to set the
// granularity and Executor() Executor to choose where tasks run.
type Config interface {
	MaxDegreeOfParallelism() int
	MemoryAllocator() memory.Allocator
}

type granularityConfig interface {
	MinimumPixelsPerTask() int
}

type executorConfig interface {
	Executor() Executor
}

// SettingsFromConfig derives settings from cfg. The granularity is
// DefaultMinimumPixelsPerTask unless cfg provides one.
func SettingsFromConfig(cfg Config) (Settings, error) {
	if cfg == nil {
		return Settings{}, fmt.Errorf("%w: nil configuration", ErrInvalidArgument)
	}
	minPixels := DefaultMinimumPixelsPerTask
	if gc, ok := cfg.(granularityConfig); ok {
		minPixels = gc.MinimumPixelsPerTask()
	}
	s, err := NewSettings(cfg.MaxDegreeOfParallelism(), minPixels, cfg.MemoryAllocator())
	if err != nil {
		return Settings{}, err
	}
	if ec, ok := cfg.(executorConfig); ok {
		s.exec = ec.Executor()
	}
	return s, nil
}

// MaxDegreeOfParallelism returns the task cap, or Unbounded.
func (s Settings) MaxDegreeOfParallelism() int { return s.maxDegree }

// MinimumPixelsPerTask returns the work granularity.
func (s Settings) MinimumPixelsPerTask() int { return s.minPixels }

// MemoryAllocator returns the allocator used for scratch buffers.
func (s Settings) MemoryAllocator() memory.Allocator { return s.alloc }

// Executor returns the executor tasks run on. GoExecutor is the default.
func (s Settings) Executor() Executor {
	if s.exec == nil {
		return GoExecutor{}
	}
	return s.exec
}

// WithExecutor returns a copy of s that runs tasks on e. A nil e restores
// the default.
func (s Settings) WithExecutor(e Executor) Settings {
	s.exec = e
	return s
}

// WithMaxDegreeOfParallelism returns a copy of s with a different task cap.
func (s Settings) WithMaxDegreeOfParallelism(maxDegree int) (Settings, error) {
	if maxDegree <= 0 && maxDegree != Unbounded {
		return s, fmt.Errorf("%w: max degree of parallelism %d", ErrInvalidArgument, maxDegree)
	}
	s.maxDegree = maxDegree
	return s, nil
}

// MultiplyMinimumPixelsPerTask returns a copy of s whose granularity is m
// times larger, saturating at math.MaxInt. Operations that are expensive per
// pixel use a smaller multiplier than cheap ones.
func (s Settings) MultiplyMinimumPixelsPerTask(m int) (Settings, error) {
	if m <= 0 {
		return s, fmt.Errorf("%w: multiplier %d", ErrInvalidArgument, m)
	}
	if s.minPixels > math.MaxInt/m {
		s.minPixels = math.MaxInt
	} else {
		s.minPixels *= m
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.minPixels <= 0 || (s.maxDegree <= 0 && s.maxDegree != Unbounded) {
		return fmt.Errorf("%w: uninitialized settings", ErrInvalidArgument)
	}
	return nil
}

func (s Settings) String() string {
	degree := fmt.Sprint(s.maxDegree)
	if s.maxDegree == Unbounded {
		degree = "unbounded"
	}
	return fmt.Sprintf("Settings{maxDegree: %s, minPixels: %d}", degree, s.minPixels)
}
