// Command pixbench runs a small image pipeline on the pixbuf row engine and
// reports per-stage timings.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"golang.org/x/image/draw"

	"github.com/gogpu/pixbuf"
	"github.com/gogpu/pixbuf/imaging"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/metrics"
	"github.com/gogpu/pixbuf/parallel"
)

func main() {
	var (
		width      = flag.Int("width", 1920, "image width")
		height     = flag.Int("height", 1080, "image height")
		workers    = flag.Int("workers", 0, "max degree of parallelism (0 = GOMAXPROCS, -1 = unbounded)")
		minPixels  = flag.Int("min-pixels", parallel.DefaultMinimumPixelsPerTask, "minimum pixels per task")
		allocator  = flag.String("allocator", "pooling", "allocator: pooling, simple or unmanaged")
		contiguous = flag.Bool("contiguous", false, "allocate every image as one block")
		usePool    = flag.Bool("pool", false, "run bands on a persistent worker pool")
		iterations = flag.Int("n", 10, "pipeline iterations")
		output     = flag.String("output", "", "write the last result as PNG")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		pixbuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	alloc, err := newAllocator(*allocator)
	if err != nil {
		log.Fatal(err)
	}
	opts := []pixbuf.Option{
		pixbuf.WithMemoryAllocator(alloc),
		pixbuf.WithMinimumPixelsPerTask(*minPixels),
		pixbuf.WithPreferContiguousImageBuffers(*contiguous),
	}
	if *workers != 0 {
		opts = append(opts, pixbuf.WithMaxDegreeOfParallelism(*workers))
	}
	exporter := metrics.NewExporter("pixbench", nil)
	if st, ok := alloc.(metrics.AllocatorStatistics); ok {
		exporter.AddAllocator(*allocator, st)
	}
	if *usePool {
		pool := parallel.NewWorkerPool(max(*workers, 0))
		defer pool.Close()
		opts = append(opts, pixbuf.WithWorkerPool(pool))
		exporter.AddWorkerPool("bands", pool)
	}
	cfg, err := pixbuf.NewConfiguration(opts...)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var t timings
	for i := range *iterations {
		last := i == *iterations-1
		if err := run(cfg, *width, *height, &t, last, *output); err != nil {
			log.Fatalf("Iteration %d: %v", i, err)
		}
	}
	t.report(*iterations)

	reg := prometheus.NewRegistry()
	reg.MustRegister(exporter)
	families, err := reg.Gather()
	if err != nil {
		log.Fatalf("Gather metrics: %v", err)
	}
	printMetrics(families)
	cfg.ReleaseRetainedResources()
}

func newAllocator(name string) (memory.Allocator, error) {
	switch name {
	case "pooling":
		return memory.NewPoolingAllocator(memory.PoolingOptions{}), nil
	case "simple":
		return memory.NewSimpleAllocator(), nil
	case "unmanaged":
		return memory.NewUnmanagedAllocator(memory.Limits{}), nil
	}
	return nil, fmt.Errorf("unknown allocator %q", name)
}

// printMetrics logs one line per sample.
func printMetrics(families []*dto.MetricFamily) {
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			v := m.GetGauge().GetValue()
			if mf.GetType() == dto.MetricType_COUNTER {
				v = m.GetCounter().GetValue()
			}
			log.Printf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), v)
		}
	}
}

type timings struct {
	fill, invert, scale, blur, export time.Duration
}

func (t *timings) report(n int) {
	avg := func(d time.Duration) time.Duration { return d / time.Duration(max(n, 1)) }
	log.Printf("fill %v, invert %v, scale %v, blur %v, export %v (average of %d)",
		avg(t.fill), avg(t.invert), avg(t.scale), avg(t.blur), avg(t.export), n)
}

func run(cfg *pixbuf.Configuration, w, h int, t *timings, last bool, output string) error {
	buf, err := pixbuf.AllocateBuffer2D[imaging.RGBA32](cfg, w, h, memory.AllocationNone)
	if err != nil {
		return err
	}
	defer func() { _ = buf.Dispose() }()

	settings, err := cfg.ExecutionSettings()
	if err != nil {
		return err
	}

	start := time.Now()
	err = parallel.IterateRows(parallel.RectOf(buf.Bounds()), settings, gradient{buf})
	if err != nil {
		return err
	}
	t.fill += time.Since(start)

	start = time.Now()
	if err := imaging.Invert(cfg, buf); err != nil {
		return err
	}
	t.invert += time.Since(start)

	start = time.Now()
	small, err := imaging.Scale(cfg, buf, max(w/2, 1), max(h/2, 1), draw.ApproxBiLinear)
	if err != nil {
		return err
	}
	defer func() { _ = small.Dispose() }()
	t.scale += time.Since(start)

	start = time.Now()
	blurred, err := imaging.GaussianBlur(cfg, small, 2, 2)
	if err != nil {
		return err
	}
	defer func() { _ = blurred.Dispose() }()
	t.blur += time.Since(start)

	start = time.Now()
	img, err := imaging.ToRGBA(cfg, blurred)
	if err != nil {
		return err
	}
	t.export += time.Since(start)

	if !last || output == "" {
		return nil
	}
	f, err := os.Create(output) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	log.Printf("Result saved to %s (%dx%d)", output, img.Rect.Dx(), img.Rect.Dy())
	return nil
}

// gradient writes an opaque diagonal gradient.
type gradient struct {
	buf *memory.Buffer2D[imaging.RGBA32]
}

func (g gradient) Invoke(y int) {
	row := g.buf.DangerousRow(y)
	w, h := len(row), g.buf.Height()
	for x := range row {
		row[x] = imaging.RGBA32{
			R: uint8(255 * x / w),
			G: uint8(255 * y / h),
			B: uint8(255 * (x + y) / (w + h)),
			A: 255,
		}
	}
}
