// Package imaging contains pixel types and whole-image operations built on
// the memory and parallel packages.
//
// Images are *memory.Buffer2D values of RGBA32, BGRA32 or L8 pixels. Every
// operation takes a *pixbuf.Configuration (nil means pixbuf.Default()) that
// supplies the allocator for results and scratch space and the parallelism
// policy for the row passes.
//
// Resampling delegates to golang.org/x/image/draw. Each row band renders its
// own destination rows into a scratch *image.RGBA, so any draw.Interpolator
// can be used band-parallel. Kernel interpolators (draw.BiLinear,
// draw.CatmullRom) repeat their horizontal pass in every band; pass a
// configuration with a larger MinimumPixelsPerTask when that dominates.
package imaging
