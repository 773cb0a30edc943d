//go:build linux || darwin

package memory

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// mapAnonymous maps n bytes rounded up to whole pages.
func mapAnonymous(n int) (RawBuffer, error) {
	page := unix.Getpagesize()
	size := (n + page - 1) / page * page
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrOutOfMemory, size, err)
	}
	return &mappedBuffer{mem: mem, b: mem[:n]}, nil
}

// mappedBuffer owns one anonymous mapping.
type mappedBuffer struct {
	mem []byte
	b   []byte
}

func (m *mappedBuffer) Bytes() []byte { return m.b }

func (m *mappedBuffer) Release() {
	if m.mem == nil {
		return
	}
	err := unix.Munmap(m.mem)
	// Treat double-unmap as no-op.
	if err != nil && !errors.Is(err, unix.EINVAL) {
		logger.Load().Warn("memory: munmap failed", "bytes", len(m.mem), "error", err)
	}
	m.mem, m.b = nil, nil
}
