// Package pixbuf provides pooled pixel buffers and a parallel row engine for
// image processing in Go.
//
// # Overview
//
// Image codecs and processors spend most of their time allocating large
// pixel buffers and walking them row by row. pixbuf covers both halves:
//
//   - memory: allocators (pooling, heap, mmap), owned and borrowed memory
//     groups, and Buffer2D, a width x height grid whose rows may live in
//     separate blocks.
//   - parallel: execution settings and the row iterator that partitions a
//     rectangle into bands and runs them across goroutines.
//   - imaging: pixel types and processors built on the two packages above.
//
// This package ties them together with a Configuration that selects the
// allocator and the degree of parallelism for a whole program.
//
// # Quick Start
//
//	import "github.com/gogpu/pixbuf"
//
//	cfg := pixbuf.Default()
//	buf, err := pixbuf.AllocateBuffer2D[uint32](cfg, 1920, 1080, memory.AllocationClean)
//	if err != nil {
//		return err
//	}
//	defer buf.Dispose()
//
//	settings, _ := cfg.ExecutionSettings()
//	err = parallel.IterateRows(parallel.RectOf(buf.Bounds()), settings,
//		parallel.RowFunc(func(y int) {
//			row := buf.DangerousRow(y)
//			for x := range row {
//				row[x] = uint32(y)
//			}
//		}))
//
// # Default configuration
//
// Default returns a process-wide Configuration backed by a pooling allocator
// and GOMAXPROCS parallelism. SetDefault replaces it. The old allocator keeps
// its pooled memory until ReleaseRetainedResources is called on it, which is
// safe only once every buffer it issued has been disposed.
//
// # Logging
//
// pixbuf is silent by default. SetLogger installs a log/slog logger for this
// package and all sub-packages.
package pixbuf

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
