// Package stats provides a unified interface for collecting cache metrics.
package stats

// Metric names used throughout the library.
const (
	// Occupancy gauges.
	MetricItems     = "treecache_items"
	MetricUsedItems = "treecache_used_items"

	// Mutation counters.
	MetricAdds         = "treecache_adds_total"
	MetricAddsRejected = "treecache_adds_rejected_total"
	MetricRemoves      = "treecache_removes_total"

	// Eviction metrics.
	MetricEvictions       = "treecache_evictions_total"
	MetricUnloadPasses    = "treecache_unload_passes_total"
	MetricUnloadShortfall = "treecache_unload_shortfall_total"
	MetricUnloadEvicted   = "treecache_unload_evicted"

	// Trace store cache metrics.
	MetricTraceCacheHits   = "treecache_trace_cache_hits_total"
	MetricTraceCacheMisses = "treecache_trace_cache_misses_total"
	MetricTraceCacheSize   = "treecache_trace_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
