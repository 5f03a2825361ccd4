// Package cachedstore wraps a trace store with an LRU cache of decoded
// traces.
package cachedstore

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/treecache/internal/stats"
	"github.com/discochess/treecache/internal/trace"
	"github.com/discochess/treecache/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // Current number of entries
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Store wraps another Store with caching.
type Store struct {
	underlying tracestore.Store
	cache      *lru.Cache[string, []trace.Frame]
	collector  stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cached store holding up to capacity decoded traces.
// The collector is optional; if nil, a no-op collector is used.
func New(underlying tracestore.Store, capacity int, collector stats.Collector) (*Store, error) {
	cache, err := lru.New[string, []trace.Frame](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Store{
		underlying: underlying,
		cache:      cache,
		collector:  collector,
	}, nil
}

// ReadTrace reads a trace, checking the cache first. Callers receive a deep
// copy they may modify.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]trace.Frame, error) {
	if frames, ok := s.cache.Get(name); ok {
		s.hits.Add(1)
		s.collector.IncCounter(stats.MetricTraceCacheHits, 1)
		return trace.Clone(frames), nil
	}
	s.misses.Add(1)
	s.collector.IncCounter(stats.MetricTraceCacheMisses, 1)

	frames, err := s.underlying.ReadTrace(ctx, name)
	if err != nil {
		return nil, err
	}

	s.cache.Add(name, trace.Clone(frames))
	s.collector.SetGauge(stats.MetricTraceCacheSize, int64(s.cache.Len()))
	return frames, nil
}

// WriteTrace writes through to the underlying store and drops any cached
// copy.
func (s *Store) WriteTrace(ctx context.Context, name string, frames []trace.Frame) error {
	s.cache.Remove(name)
	return s.underlying.WriteTrace(ctx, name, frames)
}

// List lists the underlying store.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.underlying.List(ctx)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	s.cache.Purge()
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Size:   s.cache.Len(),
	}
}
