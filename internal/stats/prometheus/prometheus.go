// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/treecache/internal/stats"
)

// help describes the metrics the cache emits. Unknown names use the name
// itself as help text.
var help = map[string]string{
	stats.MetricItems:           "Number of items currently held by the cache.",
	stats.MetricUsedItems:       "Number of cached items marked used in the current cycle.",
	stats.MetricAdds:            "Items accepted by Add.",
	stats.MetricAddsRejected:    "Items rejected by Add (duplicate, full or misplaced).",
	stats.MetricRemoves:         "Items dropped by explicit Remove, including descendants.",
	stats.MetricEvictions:       "Items reclaimed by unload passes.",
	stats.MetricUnloadPasses:    "Unload passes run.",
	stats.MetricUnloadShortfall: "Items an unload pass wanted to reclaim but could not.",
	stats.MetricUnloadEvicted:   "Items reclaimed per unload pass.",

	stats.MetricTraceCacheHits:   "Trace reads served from the trace cache.",
	stats.MetricTraceCacheMisses: "Trace reads that went to the underlying store.",
	stats.MetricTraceCacheSize:   "Traces held by the trace cache.",
}

// evictedBuckets covers passes from a single item up to a few thousand.
var evictedBuckets = prometheus.ExponentialBuckets(1, 2, 12)

// Collector implements stats.Collector using Prometheus metrics.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: helpFor(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: helpFor(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		buckets := prometheus.DefBuckets
		if name == stats.MetricUnloadEvicted {
			buckets = evictedBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    helpFor(name),
			Buckets: buckets,
		})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric registered under name, creating and
// registering it on first use. A metric already present in the registry is
// reused; if registration fails otherwise the new metric still works but is
// not exported.
func getOrCreate[M prometheus.Collector](c *Collector, m map[string]M, name string, create func() M) M {
	c.mu.RLock()
	metric, ok := m[name]
	c.mu.RUnlock()
	if ok {
		return metric
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if metric, ok = m[name]; ok {
		return metric
	}

	metric = create()
	if err := c.registry.Register(metric); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				metric = existing
			}
		}
	}
	m[name] = metric
	return metric
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
