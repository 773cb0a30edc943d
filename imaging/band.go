package imaging

import (
	"image"

	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// bandRenderer fills each row band of dst by drawing into a scratch
// *image.RGBA covering exactly that band, then copying the rows out.
type bandRenderer struct {
	dst     *memory.Buffer2D[RGBA32]
	maxRows int
	clear   bool
	render  func(band *image.RGBA)
}

func (op bandRenderer) RequiredBufferLength(bounds parallel.Rect) int {
	return bounds.Width * 4 * op.maxRows
}

func (op bandRenderer) Invoke(rows parallel.RowInterval, scratch []byte) {
	w := op.dst.Width()
	stride := w * 4
	pix := scratch[:rows.Height()*stride]
	if op.clear {
		clear(pix)
	}
	op.render(&image.RGBA{
		Pix:    pix,
		Stride: stride,
		Rect:   image.Rect(0, rows.Min(), w, rows.Max()),
	})
	for y := range rows.All() {
		off := (y - rows.Min()) * stride
		copy(memory.AsBytes(op.dst.DangerousRow(y)), pix[off:off+stride])
	}
}

// renderBands runs render over every band of dst in parallel. When clear is
// set, each band starts transparent; otherwise render must cover every pixel.
func renderBands(cfg *pixbuf.Configuration, dst *memory.Buffer2D[RGBA32], clear bool, render func(*image.RGBA)) error {
	s, err := settingsFor(cfg)
	if err != nil {
		return err
	}
	r := parallel.RectOf(dst.Bounds())
	plan, err := parallel.Plan(r, s)
	if err != nil {
		return err
	}
	scope := dst.BeginProcessing()
	defer scope.End()
	return parallel.IterateRowIntervalsWithBuffer[byte](r, s, bandRenderer{
		dst:     dst,
		maxRows: plan.VerticalStep,
		clear:   clear,
		render:  render,
	})
}

func settingsFor(cfg *pixbuf.Configuration) (parallel.Settings, error) {
	if cfg == nil {
		cfg = pixbuf.Default()
	}
	return cfg.ExecutionSettings()
}

// allocate creates an uninitialized image from cfg.
func allocate[T any](cfg *pixbuf.Configuration, width, height int) (*memory.Buffer2D[T], error) {
	return pixbuf.AllocateBuffer2D[T](cfg, width, height, memory.AllocationNone)
}
