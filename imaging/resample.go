package imaging

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
)

// Scale resamples src to a new width x height buffer using interp, for
// example draw.NearestNeighbor, draw.ApproxBiLinear or draw.CatmullRom.
func Scale(cfg *pixbuf.Configuration, src *memory.Buffer2D[RGBA32], width, height int, interp draw.Interpolator) (*memory.Buffer2D[RGBA32], error) {
	if interp == nil {
		return nil, fmt.Errorf("%w: nil interpolator", pixbuf.ErrInvalidArgument)
	}
	dst, err := allocate[RGBA32](cfg, width, height)
	if err != nil {
		return nil, err
	}
	srcImg, dr := rgbaImage(src), dst.Bounds()

	scope := src.BeginProcessing()
	err = renderBands(cfg, dst, false, func(band *image.RGBA) {
		interp.Scale(band, dr, srcImg, src.Bounds(), draw.Src, nil)
	})
	scope.End()
	if err != nil {
		_ = dst.Dispose()
		return nil, err
	}
	return dst, nil
}

// Resize resamples buf in place to width x height. An owning buffer takes
// over the resampled memory; a borrowed buffer receives a copy and must
// already hold width*height pixels in a compatible layout.
func Resize(cfg *pixbuf.Configuration, buf *memory.Buffer2D[RGBA32], width, height int, interp draw.Interpolator) error {
	scaled, err := Scale(cfg, buf, width, height, interp)
	if err != nil {
		return err
	}
	if _, err := memory.SwapOrCopy(buf, scaled); err != nil {
		_ = scaled.Dispose()
		return err
	}
	// scaled now holds buf's previous pixels.
	return scaled.Dispose()
}

// Transform renders src through the affine map m (source to destination
// coordinates) into a new width x height buffer. Pixels not covered by the
// transformed source are transparent.
func Transform(cfg *pixbuf.Configuration, src *memory.Buffer2D[RGBA32], width, height int, m f64.Aff3, interp draw.Interpolator) (*memory.Buffer2D[RGBA32], error) {
	if interp == nil {
		return nil, fmt.Errorf("%w: nil interpolator", pixbuf.ErrInvalidArgument)
	}
	dst, err := allocate[RGBA32](cfg, width, height)
	if err != nil {
		return nil, err
	}
	srcImg := rgbaImage(src)

	scope := src.BeginProcessing()
	err = renderBands(cfg, dst, true, func(band *image.RGBA) {
		interp.Transform(band, m, srcImg, src.Bounds(), draw.Src, nil)
	})
	scope.End()
	if err != nil {
		_ = dst.Dispose()
		return nil, err
	}
	return dst, nil
}

// Translate returns the affine map that moves points by (dx, dy).
func Translate(dx, dy float64) f64.Aff3 {
	return f64.Aff3{1, 0, dx, 0, 1, dy}
}

// ScaleAbout returns the affine map that scales by (sx, sy) around (cx, cy).
func ScaleAbout(sx, sy, cx, cy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, cx - sx*cx, 0, sy, cy - sy*cy}
}
