package imaging

import (
	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// ColorMatrix is a 4x5 row-major color transform applied to straight-alpha
// channel values in [0, 255]:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
type ColorMatrix [20]float32

// IdentityMatrix leaves colors unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// BrightnessMatrix scales color channels by factor; 1 is unchanged.
func BrightnessMatrix(factor float32) ColorMatrix {
	return ColorMatrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales color channels around mid-gray; 1 is unchanged.
func ContrastMatrix(factor float32) ColorMatrix {
	offset := 128 * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix blends between gray (0) and the original colors (1)
// using Rec. 709 luminance weights.
func SaturationMatrix(factor float32) ColorMatrix {
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)
	inv := 1 - factor
	return ColorMatrix{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SepiaMatrix applies a sepia tone.
func SepiaMatrix() ColorMatrix {
	return ColorMatrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// OpacityMatrix multiplies alpha by factor.
func OpacityMatrix(factor float32) ColorMatrix {
	m := IdentityMatrix()
	m[18] = factor
	return m
}

// apply transforms one premultiplied pixel.
func (m *ColorMatrix) apply(p RGBA32) RGBA32 {
	a := float32(p.A)
	var r, g, b float32
	if a > 0 {
		r = float32(p.R) * 255 / a
		g = float32(p.G) * 255 / a
		b = float32(p.B) * 255 / a
	}

	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]

	na = min(max(na, 0), 255)
	scale := na / 255
	return RGBA32{
		R: clampUint8(min(nr, 255) * scale),
		G: clampUint8(min(ng, 255) * scale),
		B: clampUint8(min(nb, 255) * scale),
		A: clampUint8(na),
	}
}

type colorMatrixRows struct {
	buf *memory.Buffer2D[RGBA32]
	m   ColorMatrix
}

func (op *colorMatrixRows) Invoke(y int) {
	row := op.buf.DangerousRow(y)
	for i, p := range row {
		row[i] = op.m.apply(p)
	}
}

// ApplyColorMatrix transforms every pixel of buf in place.
func ApplyColorMatrix(cfg *pixbuf.Configuration, buf *memory.Buffer2D[RGBA32], m ColorMatrix) error {
	s, err := settingsFor(cfg)
	if err != nil {
		return err
	}
	scope := buf.BeginProcessing()
	defer scope.End()
	return parallel.IterateRows(parallel.RectOf(buf.Bounds()), s, &colorMatrixRows{buf: buf, m: m})
}
