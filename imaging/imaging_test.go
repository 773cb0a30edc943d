package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/memory"
)

// =============================================================================
// Helpers
// =============================================================================

func testConfig(t testing.TB, opts ...pixbuf.Option) *pixbuf.Configuration {
	t.Helper()
	base := []pixbuf.Option{
		pixbuf.WithMemoryAllocator(memory.NewSimpleAllocator()),
		pixbuf.WithMinimumPixelsPerTask(64),
		pixbuf.WithMaxDegreeOfParallelism(8),
	}
	cfg, err := pixbuf.NewConfiguration(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func serialConfig(t testing.TB) *pixbuf.Configuration {
	return testConfig(t, pixbuf.WithMaxDegreeOfParallelism(1))
}

// splitConfig allocates images as several blocks of 16 pixels.
func splitConfig(t testing.TB) *pixbuf.Configuration {
	return testConfig(t, pixbuf.WithMemoryAllocator(
		memory.NewSimpleAllocatorWithLimits(memory.Limits{BlockCapacity: 64})))
}

func noiseImage(w, h int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint8(rng.IntN(256))
		img.Pix[i+0] = uint8(rng.IntN(int(a) + 1))
		img.Pix[i+1] = uint8(rng.IntN(int(a) + 1))
		img.Pix[i+2] = uint8(rng.IntN(int(a) + 1))
		img.Pix[i+3] = a
	}
	return img
}

func mustFromImage(t testing.TB, cfg *pixbuf.Configuration, img image.Image) *memory.Buffer2D[RGBA32] {
	t.Helper()
	buf, err := FromImage(cfg, img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	t.Cleanup(func() { _ = buf.Dispose() })
	return buf
}

func mustToRGBA(t testing.TB, cfg *pixbuf.Configuration, buf *memory.Buffer2D[RGBA32]) *image.RGBA {
	t.Helper()
	img, err := ToRGBA(cfg, buf)
	if err != nil {
		t.Fatalf("ToRGBA: %v", err)
	}
	return img
}

func equalRGBA(t *testing.T, name string, got, want *image.RGBA) {
	t.Helper()
	if got.Rect != want.Rect {
		t.Fatalf("%s: bounds %v, want %v", name, got.Rect, want.Rect)
	}
	if !bytes.Equal(got.Pix, want.Pix) {
		for i := range got.Pix {
			if got.Pix[i] != want.Pix[i] {
				px := i / 4
				t.Fatalf("%s: first difference at pixel (%d,%d) channel %d: %d, want %d",
					name, px%got.Rect.Dx(), px/got.Rect.Dx(), i%4, got.Pix[i], want.Pix[i])
			}
		}
	}
}

// =============================================================================
// Pixels
// =============================================================================

func TestPixelConversions(t *testing.T) {
	p := RGBA32{R: 10, G: 20, B: 30, A: 200}
	if got := p.BGRA(); got != (BGRA32{B: 30, G: 20, R: 10, A: 200}) {
		t.Errorf("BGRA() = %+v", got)
	}
	if p.BGRA().RGBA32() != p {
		t.Error("BGRA round trip changed the pixel")
	}

	r1, g1, b1, a1 := p.RGBA()
	r2, g2, b2, a2 := p.BGRA().RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
		t.Error("RGBA32 and BGRA32 disagree on color")
	}

	for _, c := range []color.RGBA{{0, 0, 0, 255}, {255, 255, 255, 255}, {255, 0, 0, 255}, {12, 200, 99, 255}} {
		want := color.GrayModel.Convert(c).(color.Gray).Y
		if got := RGBA32(c).Luminance(); uint8(got) != want {
			t.Errorf("Luminance(%v) = %d, want %d", c, got, want)
		}
	}

	if got := RGBA32Of(color.NRGBA{R: 255, A: 128}); got != (RGBA32{R: 128, A: 128}) {
		t.Errorf("RGBA32Of(NRGBA) = %+v", got)
	}
	if _, _, _, a := L8(7).RGBA(); a != 0xffff {
		t.Error("L8 should be opaque")
	}
}

// =============================================================================
// Interop
// =============================================================================

func TestFromImageToRGBA_RoundTrip(t *testing.T) {
	for name, cfg := range map[string]*pixbuf.Configuration{
		"serial": serialConfig(t),
		"banded": testConfig(t),
		"split":  splitConfig(t),
	} {
		t.Run(name, func(t *testing.T) {
			src := noiseImage(37, 23, 1)
			buf := mustFromImage(t, cfg, src)
			if buf.Width() != 37 || buf.Height() != 23 {
				t.Fatalf("size %dx%d", buf.Width(), buf.Height())
			}
			equalRGBA(t, "round trip", mustToRGBA(t, cfg, buf), src)
		})
	}
}

func TestFromImage_OffsetAndGenericSources(t *testing.T) {
	cfg := testConfig(t)
	full := noiseImage(40, 30, 2)
	sub := full.SubImage(image.Rect(5, 7, 29, 30)).(*image.RGBA)

	buf := mustFromImage(t, cfg, sub)
	if v, _ := buf.At(0, 0); v != RGBA32(full.RGBAAt(5, 7)) {
		t.Errorf("(0,0) = %+v, want %+v", v, full.RGBAAt(5, 7))
	}

	// An NRGBA source goes through draw.Copy.
	nrgba := image.NewNRGBA(image.Rect(-3, 2, 17, 14))
	for y := nrgba.Rect.Min.Y; y < nrgba.Rect.Max.Y; y++ {
		for x := nrgba.Rect.Min.X; x < nrgba.Rect.Max.X; x++ {
			nrgba.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 9), G: uint8(y * 13), B: 77, A: uint8(100 + x + y)})
		}
	}
	got := mustFromImage(t, splitConfig(t), nrgba)
	for y := range got.Height() {
		for x := range got.Width() {
			want := RGBA32Of(nrgba.At(nrgba.Rect.Min.X+x, nrgba.Rect.Min.Y+y))
			if v, _ := got.At(x, y); v != want {
				t.Fatalf("(%d,%d) = %+v, want %+v", x, y, v, want)
			}
		}
	}
}

func TestLuminance(t *testing.T) {
	cfg := testConfig(t)
	src := noiseImage(19, 11, 3)
	buf := mustFromImage(t, cfg, src)

	gray, err := Luminance(cfg, buf)
	if err != nil {
		t.Fatal(err)
	}
	defer gray.Dispose()
	for y := range gray.Height() {
		for x, v := range gray.DangerousRow(y) {
			if want := RGBA32(src.RGBAAt(x, y)).Luminance(); v != want {
				t.Fatalf("(%d,%d) = %d, want %d", x, y, v, want)
			}
		}
	}
}

func TestSwizzle_DifferentBlockLayouts(t *testing.T) {
	src := mustFromImage(t, splitConfig(t), noiseImage(16, 9, 4)) // 9 blocks
	dst, err := pixbuf.AllocateBuffer2D[BGRA32](testConfig(t), 16, 9, memory.AllocationNone)
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Dispose()
	if src.Group().Count() == dst.Group().Count() {
		t.Fatalf("layouts should differ: %d and %d blocks", src.Group().Count(), dst.Group().Count())
	}

	if err := SwizzleRGBAToBGRA(src, dst); err != nil {
		t.Fatal(err)
	}
	for y := range 9 {
		for x := range 16 {
			s, _ := src.At(x, y)
			d, _ := dst.At(x, y)
			if d != s.BGRA() {
				t.Fatalf("(%d,%d) = %+v, want %+v", x, y, d, s.BGRA())
			}
		}
	}

	back, _ := memory.Allocate2D[RGBA32](memory.NewSimpleAllocator(), 16, 9, false, memory.AllocationNone)
	if err := SwizzleBGRAToRGBA(dst, back); err != nil {
		t.Fatal(err)
	}
	equalRGBA(t, "swizzle round trip", mustToRGBA(t, nil, back), mustToRGBA(t, nil, src))

	small, _ := memory.WrapMemory(make([]BGRA32, 10), 5, 2)
	if err := SwizzleRGBAToBGRA(src, small); !errors.Is(err, memory.ErrIncompatibleBuffers) {
		t.Errorf("size mismatch: err = %v", err)
	}
}

func TestSwizzle_Dimensions(t *testing.T) {
	mem := make([]RGBA32, 20)
	for i := range mem {
		mem[i] = RGBA32{R: uint8(i), G: 1, B: 200, A: 255}
	}
	src, err := memory.WrapMemory(mem, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := pixbuf.AllocateBuffer2D[BGRA32](testConfig(t), 4, 4, memory.AllocationClean)
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Dispose()

	// src's memory is longer than its 16 pixels.
	if err := SwizzleRGBAToBGRA(src, dst); err != nil {
		t.Fatalf("same dimensions: %v", err)
	}
	if d, _ := dst.At(3, 3); d != (BGRA32{B: 200, G: 1, R: 15, A: 255}) {
		t.Errorf("At(3,3) = %+v", d)
	}

	tall, _ := memory.WrapMemory(make([]RGBA32, 16), 2, 8)
	if err := SwizzleRGBAToBGRA(tall, dst); !errors.Is(err, memory.ErrIncompatibleBuffers) {
		t.Errorf("2x8 into 4x4: err = %v, want ErrIncompatibleBuffers", err)
	}

	gone, _ := pixbuf.AllocateBuffer2D[RGBA32](testConfig(t), 4, 4, memory.AllocationClean)
	_ = gone.Dispose()
	if err := SwizzleBGRAToRGBA(dst, gone); !errors.Is(err, memory.ErrUseAfterRelease) {
		t.Errorf("disposed dst: err = %v, want ErrUseAfterRelease", err)
	}
}

// =============================================================================
// Processors
// =============================================================================

func TestInvert(t *testing.T) {
	cfg := testConfig(t)
	src := noiseImage(30, 30, 5)
	buf := mustFromImage(t, cfg, src)

	if err := Invert(cfg, buf); err != nil {
		t.Fatal(err)
	}
	p, _ := buf.At(3, 4)
	o := src.RGBAAt(3, 4)
	if p != (RGBA32{R: o.A - o.R, G: o.A - o.G, B: o.A - o.B, A: o.A}) {
		t.Errorf("inverted pixel = %+v from %+v", p, o)
	}

	if err := Invert(cfg, buf); err != nil {
		t.Fatal(err)
	}
	equalRGBA(t, "double invert", mustToRGBA(t, cfg, buf), src)
}

func TestFillRect(t *testing.T) {
	cfg := splitConfig(t)
	buf, err := pixbuf.AllocateBuffer2D[L8](cfg, 16, 12, memory.AllocationClean)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Dispose()

	if err := FillRect(cfg, buf, image.Rect(4, 3, 40, 9), L8(200)); err != nil {
		t.Fatal(err)
	}
	for y := range 12 {
		for x := range 16 {
			want := L8(0)
			if x >= 4 && y >= 3 && y < 9 {
				want = 200
			}
			if v, _ := buf.At(x, y); v != want {
				t.Fatalf("(%d,%d) = %d, want %d", x, y, v, want)
			}
		}
	}

	if err := FillRect(cfg, buf, image.Rect(100, 100, 120, 120), L8(1)); err != nil {
		t.Errorf("outside rect: %v", err)
	}
}

func TestDisposeDuringScopeFails(t *testing.T) {
	buf := mustFromImage(t, testConfig(t), noiseImage(8, 8, 6))
	scope := buf.BeginProcessing()
	if err := buf.Dispose(); !errors.Is(err, memory.ErrBufferInUse) {
		t.Errorf("err = %v, want ErrBufferInUse", err)
	}
	scope.End()
}

// =============================================================================
// View
// =============================================================================

func TestView(t *testing.T) {
	buf, _ := memory.WrapMemory(make([]RGBA32, 12), 4, 3)
	v := NewView(buf)

	if v.Bounds() != image.Rect(0, 0, 4, 3) || v.ColorModel() != color.RGBAModel {
		t.Fatal("unexpected bounds or model")
	}
	v.Set(1, 2, color.RGBA{R: 1, G: 2, B: 3, A: 4})
	if got, _ := buf.At(1, 2); got != (RGBA32{1, 2, 3, 4}) {
		t.Errorf("Set did not reach the buffer: %+v", got)
	}
	v.Set(9, 9, color.White)
	if v.RGBA32At(-1, 0) != (RGBA32{}) {
		t.Error("out of bounds read should be transparent")
	}

	sub := v.SubImage(image.Rect(1, 1, 10, 10))
	if sub.Bounds() != image.Rect(1, 1, 4, 3) {
		t.Errorf("SubImage bounds = %v", sub.Bounds())
	}
	if c := sub.At(1, 2).(RGBA32); c != (RGBA32{1, 2, 3, 4}) {
		t.Errorf("SubImage does not share pixels: %+v", c)
	}
	if sub.At(0, 0).(RGBA32) != (RGBA32{}) {
		t.Error("SubImage read outside its bounds")
	}
}
