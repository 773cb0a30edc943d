// Package metrics exports allocator and worker pool statistics to
// Prometheus.
//
// An Exporter is a prometheus.Collector: it reads the current statistics of
// every source when scraped and keeps no state of its own.
//
//	e := metrics.NewExporter("pixbuf", nil)
//	e.AddAllocator("default", alloc)
//	e.AddWorkerPool("render", pool)
//	prometheus.MustRegister(e)
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

// AllocatorStatistics is implemented by allocators that keep pool counters,
// such as *memory.PoolingAllocator.
type AllocatorStatistics interface {
	Stats() memory.PoolStats
}

type namedAllocator struct {
	name  string
	stats AllocatorStatistics
}

type namedPool struct {
	name string
	pool *parallel.WorkerPool
}

// Exporter collects statistics from allocators and worker pools.
// Sources may be added at any time, including after registration.
type Exporter struct {
	mu         sync.RWMutex
	allocators []namedAllocator
	pools      []namedPool

	hits           *prometheus.Desc
	misses         *prometheus.Desc
	unpooled       *prometheus.Desc
	retainedBlocks *prometheus.Desc
	retainedBytes  *prometheus.Desc
	workers        *prometheus.Desc
	queuedWork     *prometheus.Desc
	running        *prometheus.Desc
}

// NewExporter creates an exporter whose metric names start with namespace.
// labels are attached to every metric as constant labels.
func NewExporter(namespace string, labels prometheus.Labels) *Exporter {
	allocDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "allocator", name),
			help,
			[]string{"allocator"},
			labels,
		)
	}
	poolDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker_pool", name),
			help,
			[]string{"pool"},
			labels,
		)
	}
	return &Exporter{
		hits:           allocDesc("hits_total", "Count of allocations served from pooled memory"),
		misses:         allocDesc("misses_total", "Count of pooled-tier allocations that had to allocate fresh memory"),
		unpooled:       allocDesc("unpooled_total", "Count of allocations forwarded to the fallback allocator"),
		retainedBlocks: allocDesc("retained_blocks", "Gauge of uniform blocks kept for reuse"),
		retainedBytes:  allocDesc("retained_bytes", "Gauge of bytes held by retained uniform blocks"),
		workers:        poolDesc("workers", "Number of worker goroutines"),
		queuedWork:     poolDesc("queued_tasks", "Gauge of tasks waiting in worker queues"),
		running:        poolDesc("running", "1 if the pool accepts work, 0 after Close"),
	}
}

// AddAllocator exports the counters of a under the given name.
func (e *Exporter) AddAllocator(name string, a AllocatorStatistics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.allocators = append(e.allocators, namedAllocator{name: name, stats: a})
}

// AddWorkerPool exports the state of p under the given name.
func (e *Exporter) AddWorkerPool(name string, p *parallel.WorkerPool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pools = append(e.pools, namedPool{name: name, pool: p})
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.hits
	ch <- e.misses
	ch <- e.unpooled
	ch <- e.retainedBlocks
	ch <- e.retainedBytes
	ch <- e.workers
	ch <- e.queuedWork
	ch <- e.running
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, a := range e.allocators {
		e.collectAllocator(ch, a)
	}
	for _, p := range e.pools {
		e.collectPool(ch, p)
	}
}

func (e *Exporter) collectAllocator(ch chan<- prometheus.Metric, a namedAllocator) {
	st := a.stats.Stats()
	ch <- prometheus.MustNewConstMetric(e.hits, prometheus.CounterValue, float64(st.Hits), a.name)
	ch <- prometheus.MustNewConstMetric(e.misses, prometheus.CounterValue, float64(st.Misses), a.name)
	ch <- prometheus.MustNewConstMetric(e.unpooled, prometheus.CounterValue, float64(st.Unpooled), a.name)
	ch <- prometheus.MustNewConstMetric(e.retainedBlocks, prometheus.GaugeValue, float64(st.RetainedBlocks), a.name)
	ch <- prometheus.MustNewConstMetric(e.retainedBytes, prometheus.GaugeValue, float64(st.RetainedBytes), a.name)
}

func (e *Exporter) collectPool(ch chan<- prometheus.Metric, p namedPool) {
	running := 0.0
	if p.pool.IsRunning() {
		running = 1
	}
	ch <- prometheus.MustNewConstMetric(e.workers, prometheus.GaugeValue, float64(p.pool.Workers()), p.name)
	ch <- prometheus.MustNewConstMetric(e.queuedWork, prometheus.GaugeValue, float64(p.pool.QueuedWork()), p.name)
	ch <- prometheus.MustNewConstMetric(e.running, prometheus.GaugeValue, running, p.name)
}
