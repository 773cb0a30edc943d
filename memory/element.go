package memory

import (
	"fmt"
	"math"
	"math/bits"
	"reflect"
	"sync"
	"unsafe"
)

// elementInfo caches the validation result for one element type.
type elementInfo struct {
	size  int
	align uintptr
	err   error
}

// elementInfos maps reflect.Type to elementInfo.
var elementInfos sync.Map

// elementOf validates T and returns its size and alignment.
// The reflection walk runs once per type.
func elementOf[T any]() (elementInfo, error) {
	t := reflect.TypeFor[T]()
	if v, ok := elementInfos.Load(t); ok {
		info := v.(elementInfo)
		return info, info.err
	}

	var zero T
	info := elementInfo{
		size:  int(unsafe.Sizeof(zero)),
		align: unsafe.Alignof(zero),
	}
	switch {
	case info.size == 0:
		info.err = fmt.Errorf("%w: %v has zero size", ErrUnsupportedElement, t)
	case hasPointers(t):
		info.err = fmt.Errorf("%w: %v contains pointers", ErrUnsupportedElement, t)
	}

	actual, _ := elementInfos.LoadOrStore(t, info)
	info = actual.(elementInfo)
	return info, info.err
}

// hasPointers reports whether values of t reference garbage-collected memory.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// ElementSize returns the size in bytes of one T, or an error if T cannot be
// stored in pixbuf buffers.
func ElementSize[T any]() (int, error) {
	info, err := elementOf[T]()
	if err != nil {
		return 0, err
	}
	return info.size, nil
}

// mulInt multiplies two non-negative ints, reporting overflow.
func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b)) //nolint:gosec // both operands are non-negative
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// heapBytes allocates n zeroed bytes from the Go heap, 8-byte aligned.
func heapBytes(n int) []byte {
	if n == 0 {
		return []byte{}
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}

// castBytes reinterprets b as a []T of the given length.
// The caller guarantees len(b) >= length*info.size.
func castBytes[T any](b []byte, length int, info elementInfo) ([]T, error) {
	if length == 0 {
		return []T{}, nil
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	if uintptr(p)%info.align != 0 {
		return nil, fmt.Errorf("%w: buffer at %p is not %d-byte aligned", ErrInvalidArgument, p, info.align)
	}
	return unsafe.Slice((*T)(p), length), nil
}

// AsBytes returns the bytes backing s without copying.
// T must be a plain-data type accepted by [ElementSize]; the result aliases s.
func AsBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}
