package imaging

import (
	"image"
	"image/color"

	"github.com/gogpu/pixbuf/memory"
)

// View presents an RGBA32 buffer as a draw.Image. Reads and writes go
// straight to the buffer. Coordinates outside Bounds read as transparent
// and are ignored on write.
type View struct {
	buf  *memory.Buffer2D[RGBA32]
	rect image.Rectangle
}

// NewView returns a view of the whole buffer.
func NewView(buf *memory.Buffer2D[RGBA32]) *View {
	return &View{buf: buf, rect: buf.Bounds()}
}

// ColorModel implements the image.Image interface.
func (v *View) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements the image.Image interface.
func (v *View) Bounds() image.Rectangle {
	return v.rect
}

// At implements the image.Image interface.
func (v *View) At(x, y int) color.Color {
	return v.RGBA32At(x, y)
}

// RGBA32At returns the pixel at (x, y) without boxing it in an interface.
func (v *View) RGBA32At(x, y int) RGBA32 {
	if !(image.Point{X: x, Y: y}.In(v.rect)) {
		return RGBA32{}
	}
	return v.buf.DangerousRow(y)[x]
}

// Set implements the draw.Image interface.
func (v *View) Set(x, y int, c color.Color) {
	v.SetRGBA32(x, y, RGBA32Of(c))
}

// SetRGBA32 stores p at (x, y).
func (v *View) SetRGBA32(x, y int, p RGBA32) {
	if !(image.Point{X: x, Y: y}.In(v.rect)) {
		return
	}
	v.buf.DangerousRow(y)[x] = p
}

// SubImage returns a view of the part of v inside r. The result shares
// pixels with v.
func (v *View) SubImage(r image.Rectangle) image.Image {
	return &View{buf: v.buf, rect: r.Intersect(v.rect)}
}

// rgbaImage returns buf as an image.Image, aliasing its memory as an
// *image.RGBA when the buffer is a single block.
func rgbaImage(buf *memory.Buffer2D[RGBA32]) image.Image {
	if pix, ok := buf.Contiguous(); ok {
		return &image.RGBA{
			Pix:    memory.AsBytes(pix),
			Stride: buf.Width() * 4,
			Rect:   buf.Bounds(),
		}
	}
	return NewView(buf)
}
