package imaging

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// FromImage copies img into a new RGBA32 buffer allocated from cfg. Pixel
// (x, y) of the result is img.At(Min.X+x, Min.Y+y) of img's bounds.
func FromImage(cfg *pixbuf.Configuration, img image.Image) (*memory.Buffer2D[RGBA32], error) {
	b := img.Bounds()
	dst, err := allocate[RGBA32](cfg, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if src, ok := img.(*image.RGBA); ok {
		err = copyFromRGBA(cfg, dst, src)
	} else {
		err = renderBands(cfg, dst, false, func(band *image.RGBA) {
			draw.Copy(band, image.Point{}, img, b, draw.Src, nil)
		})
	}
	if err != nil {
		_ = dst.Dispose()
		return nil, err
	}
	return dst, nil
}

type rgbaRowCopy struct {
	dst *memory.Buffer2D[RGBA32]
	src *image.RGBA
}

func (op rgbaRowCopy) Invoke(y int) {
	origin := op.src.Rect.Min
	off := op.src.PixOffset(origin.X, origin.Y+y)
	row := memory.AsBytes(op.dst.DangerousRow(y))
	copy(row, op.src.Pix[off:off+len(row)])
}

func copyFromRGBA(cfg *pixbuf.Configuration, dst *memory.Buffer2D[RGBA32], src *image.RGBA) error {
	s, err := settingsFor(cfg)
	if err != nil {
		return err
	}
	s, err = s.MultiplyMinimumPixelsPerTask(4)
	if err != nil {
		return err
	}
	return parallel.IterateRows(parallel.RectOf(dst.Bounds()), s, rgbaRowCopy{dst, src})
}

type rgbaRowExport struct {
	dst *image.RGBA
	src *memory.Buffer2D[RGBA32]
}

func (op rgbaRowExport) Invoke(y int) {
	row := memory.AsBytes(op.src.DangerousRow(y))
	off := y * op.dst.Stride
	copy(op.dst.Pix[off:off+len(row)], row)
}

// ToRGBA copies buf into a new *image.RGBA with the same bounds.
func ToRGBA(cfg *pixbuf.Configuration, buf *memory.Buffer2D[RGBA32]) (*image.RGBA, error) {
	s, err := settingsFor(cfg)
	if err != nil {
		return nil, err
	}
	if s, err = s.MultiplyMinimumPixelsPerTask(4); err != nil {
		return nil, err
	}
	img := image.NewRGBA(buf.Bounds())
	scope := buf.BeginProcessing()
	defer scope.End()
	if err := parallel.IterateRows(parallel.RectOf(buf.Bounds()), s, rgbaRowExport{img, buf}); err != nil {
		return nil, err
	}
	return img, nil
}

type luminanceRows struct {
	dst *memory.Buffer2D[L8]
	src *memory.Buffer2D[RGBA32]
}

func (op luminanceRows) Invoke(y int) {
	out := op.dst.DangerousRow(y)
	for x, p := range op.src.DangerousRow(y) {
		out[x] = p.Luminance()
	}
}

// Luminance converts src to a new L8 buffer allocated from cfg.
func Luminance(cfg *pixbuf.Configuration, src *memory.Buffer2D[RGBA32]) (*memory.Buffer2D[L8], error) {
	s, err := settingsFor(cfg)
	if err != nil {
		return nil, err
	}
	dst, err := allocate[L8](cfg, src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	scope := src.BeginProcessing()
	defer scope.End()
	if err := parallel.IterateRows(parallel.RectOf(src.Bounds()), s, luminanceRows{dst, src}); err != nil {
		_ = dst.Dispose()
		return nil, err
	}
	return dst, nil
}

// SwizzleRGBAToBGRA writes src into dst with blue and red exchanged. The two
// buffers must have the same dimensions; their block layouts may differ.
func SwizzleRGBAToBGRA(src *memory.Buffer2D[RGBA32], dst *memory.Buffer2D[BGRA32]) error {
	return memory.Transform2D(src, dst, func(s []RGBA32, d []BGRA32) {
		for i, p := range s {
			d[i] = p.BGRA()
		}
	})
}

// SwizzleBGRAToRGBA is the inverse of SwizzleRGBAToBGRA.
func SwizzleBGRAToRGBA(src *memory.Buffer2D[BGRA32], dst *memory.Buffer2D[RGBA32]) error {
	return memory.Transform2D(src, dst, func(s []BGRA32, d []RGBA32) {
		for i, p := range s {
			d[i] = p.RGBA32()
		}
	})
}
