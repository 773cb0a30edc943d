package imaging

import "image/color"

// RGBA32 is an 8-bit alpha-premultiplied pixel with the same memory layout
// as one pixel of image.RGBA.Pix.
type RGBA32 struct {
	R, G, B, A uint8
}

// RGBA implements color.Color.
func (p RGBA32) RGBA() (r, g, b, a uint32) {
	return color.RGBA(p).RGBA()
}

// BGRA returns p with its color channels reordered.
func (p RGBA32) BGRA() BGRA32 {
	return BGRA32{B: p.B, G: p.G, R: p.R, A: p.A}
}

// Luminance returns the gray level of p, weighted like color.GrayModel.
func (p RGBA32) Luminance() L8 {
	r, g, b := uint32(p.R)*0x101, uint32(p.G)*0x101, uint32(p.B)*0x101
	return L8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}

// RGBA32Of converts any color to RGBA32.
func RGBA32Of(c color.Color) RGBA32 {
	return RGBA32(color.RGBAModel.Convert(c).(color.RGBA))
}

// BGRA32 is RGBA32 with blue and red exchanged, the layout of most display
// surfaces.
type BGRA32 struct {
	B, G, R, A uint8
}

// RGBA implements color.Color.
func (p BGRA32) RGBA() (r, g, b, a uint32) {
	return p.RGBA32().RGBA()
}

// RGBA32 returns p with its color channels reordered.
func (p BGRA32) RGBA32() RGBA32 {
	return RGBA32{R: p.R, G: p.G, B: p.B, A: p.A}
}

// L8 is an 8-bit luminance pixel.
type L8 uint8

// RGBA implements color.Color.
func (p L8) RGBA() (r, g, b, a uint32) {
	return color.Gray{Y: uint8(p)}.RGBA()
}
