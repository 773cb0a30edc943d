package pixbuf

import "github.com/gogpu/pixbuf/memory"

// AllocateBuffer2D allocates a width x height buffer from cfg's allocator,
// honoring its contiguity preference. A nil cfg means Default().
func AllocateBuffer2D[T any](cfg *Configuration, width, height int, opts memory.AllocationOptions) (*memory.Buffer2D[T], error) {
	cfg = orDefault(cfg)
	return memory.Allocate2D[T](cfg.allocator, width, height, cfg.preferContiguous, opts)
}

// WrapMemory wraps caller-owned memory as a width x height buffer without
// copying. Disposing the buffer leaves mem untouched.
func WrapMemory[T any](mem []T, width, height int) (*memory.Buffer2D[T], error) {
	return memory.WrapMemory(mem, width, height)
}

// WrapMemoryOwner wraps b as a width x height buffer that releases b on
// Dispose.
func WrapMemoryOwner[T any](b *memory.Block[T], width, height int) (*memory.Buffer2D[T], error) {
	return memory.WrapMemoryOwner(b, width, height)
}
