package imaging

import (
	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// GaussianBlur returns a blurred copy of src. The blur is separable: a
// horizontal pass into a float buffer followed by a vertical pass, each run
// band-parallel. Edges are extended. A sigma <= 0 leaves that axis
// unblurred.
func GaussianBlur(cfg *pixbuf.Configuration, src *memory.Buffer2D[RGBA32], sigmaX, sigmaY float64) (*memory.Buffer2D[RGBA32], error) {
	s, err := settingsFor(cfg)
	if err != nil {
		return nil, err
	}
	w, h := src.Width(), src.Height()
	r := parallel.RectOf(src.Bounds())

	tmp, err := allocate[[4]float32](cfg, w, h)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tmp.Dispose() }()
	dst, err := allocate[RGBA32](cfg, w, h)
	if err != nil {
		return nil, err
	}

	srcScope := src.BeginProcessing()
	err = parallel.IterateRows(r, s, horizontalBlur{src: src, dst: tmp, kernel: gaussianKernels.get(sigmaX)})
	srcScope.End()
	if err == nil {
		scope := tmp.BeginProcessing()
		err = parallel.IterateRowIntervalsWithBuffer[[4]float32](r, s, verticalBlur{
			src:    tmp,
			dst:    dst,
			kernel: gaussianKernels.get(sigmaY),
		})
		scope.End()
	}
	if err != nil {
		_ = dst.Dispose()
		return nil, err
	}
	return dst, nil
}

type horizontalBlur struct {
	src    *memory.Buffer2D[RGBA32]
	dst    *memory.Buffer2D[[4]float32]
	kernel []float32
}

func (op horizontalBlur) Invoke(y int) {
	in := op.src.DangerousRow(y)
	out := op.dst.DangerousRow(y)
	half := len(op.kernel) / 2
	last := len(in) - 1
	for x := range out {
		var acc [4]float32
		for k, wt := range op.kernel {
			p := in[min(max(x+k-half, 0), last)]
			acc[0] += float32(p.R) * wt
			acc[1] += float32(p.G) * wt
			acc[2] += float32(p.B) * wt
			acc[3] += float32(p.A) * wt
		}
		out[x] = acc
	}
}

// verticalBlur accumulates whole rows into the scratch buffer, so each
// source row is read sequentially.
type verticalBlur struct {
	src    *memory.Buffer2D[[4]float32]
	dst    *memory.Buffer2D[RGBA32]
	kernel []float32
}

func (op verticalBlur) RequiredBufferLength(bounds parallel.Rect) int {
	return bounds.Width
}

func (op verticalBlur) Invoke(rows parallel.RowInterval, acc [][4]float32) {
	half := len(op.kernel) / 2
	last := op.src.Height() - 1
	for y := range rows.All() {
		clear(acc)
		for k, wt := range op.kernel {
			in := op.src.DangerousRow(min(max(y+k-half, 0), last))
			for x, p := range in {
				acc[x][0] += p[0] * wt
				acc[x][1] += p[1] * wt
				acc[x][2] += p[2] * wt
				acc[x][3] += p[3] * wt
			}
		}
		out := op.dst.DangerousRow(y)
		for x, a := range acc[:len(out)] {
			out[x] = RGBA32{
				R: clampUint8(a[0]),
				G: clampUint8(a[1]),
				B: clampUint8(a[2]),
				A: clampUint8(a[3]),
			}
		}
	}
}

func clampUint8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
