package memory

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// scopeCounter counts open processing scopes. Padded so that bands
// beginning and ending scopes do not share a cache line with span headers.
type scopeCounter struct {
	_ cpu.CacheLinePad
	n atomic.Int64
	_ cpu.CacheLinePad
}

func (c *scopeCounter) inUse() bool { return c.n.Load() > 0 }

// Scope marks a buffer as being processed. While any scope is open, Release,
// Dispose and SwapOrCopy fail with ErrBufferInUse.
//
// Typical use:
//
//	scope := buf.BeginProcessing()
//	defer scope.End()
type Scope struct {
	c     *scopeCounter
	ended atomic.Bool
}

func (c *scopeCounter) begin() *Scope {
	c.n.Add(1)
	return &Scope{c: c}
}

// End closes the scope. Calling End more than once has no effect.
func (s *Scope) End() {
	if s == nil || !s.ended.CompareAndSwap(false, true) {
		return
	}
	s.c.n.Add(-1)
}
