package simulation

import (
	"github.com/discochess/treecache"
	"github.com/discochess/treecache/internal/tile"
)

// CacheConfig sizes the replayed caches.
type CacheConfig struct {
	Capacity         int
	TargetOccupancy  int
	EvictionFraction float64
}

// DefaultCacheConfig returns the cache's default sizing.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Capacity:         treecache.DefaultCapacity,
		TargetOccupancy:  treecache.DefaultTargetOccupancy,
		EvictionFraction: treecache.DefaultEvictionFraction,
	}
}

// TreeStrategy replays frames against a treecache.Cache. Visible tiles and
// their ancestors are marked used each frame, and one coalesced unload pass
// runs at the end of the frame before usage is reset.
type TreeStrategy struct {
	cache *treecache.Cache[tile.ID]
	queue *treecache.Queue

	// Counters for the frame in progress; callbacks write into them.
	frame FrameResult
}

// Compile-time check that TreeStrategy implements Strategy.
var _ Strategy = (*TreeStrategy)(nil)

// NewTreeStrategy creates a tree strategy. Extra options are applied after
// the sizing from cfg.
func NewTreeStrategy(cfg CacheConfig, opts ...treecache.Option) (*TreeStrategy, error) {
	s := &TreeStrategy{queue: treecache.NewQueue()}

	all := []treecache.Option{
		treecache.WithCapacity(cfg.Capacity),
		treecache.WithTargetOccupancy(cfg.TargetOccupancy),
		treecache.WithEvictionFraction(cfg.EvictionFraction),
		treecache.WithQueue(s.queue),
	}
	cache, err := treecache.NewComparable(tile.ID.Parent, append(all, opts...)...)
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

// TreeFactory returns a Factory building tree strategies.
func TreeFactory(cfg CacheConfig, opts ...treecache.Option) Factory {
	return func() (Strategy, error) {
		return NewTreeStrategy(cfg, opts...)
	}
}

// Name returns "tree".
func (s *TreeStrategy) Name() string { return "tree" }

// Len returns the number of cached tiles.
func (s *TreeStrategy) Len() int { return s.cache.Len() }

// Cache exposes the underlying cache.
func (s *TreeStrategy) Cache() *treecache.Cache[tile.ID] { return s.cache }

// Frame implements Strategy.
func (s *TreeStrategy) Frame(visible []tile.ID) FrameResult {
	s.frame = FrameResult{}

	for _, id := range visible {
		s.frame.Requests++
		if s.cache.Has(id) {
			s.frame.Hits++
			s.cache.MarkUsed(id)
			continue
		}
		if s.load(id) {
			s.cache.MarkUsed(id)
		}
	}

	s.cache.ScheduleUnload(true)
	s.queue.RunPending()

	return s.frame
}

// load adds id and any missing ancestors. A full cache gets one immediate
// unload pass before giving up.
func (s *TreeStrategy) load(id tile.ID) bool {
	for _, p := range path(id) {
		if s.cache.Has(p) {
			continue
		}
		if !s.add(p) {
			s.frame.Rejected++
			return false
		}
		s.frame.Loads++
	}
	return true
}

func (s *TreeStrategy) add(id tile.ID) bool {
	if s.cache.Add(id, s.onEvict) {
		return true
	}
	if !s.cache.IsFull() || s.cache.UnloadUnusedContent() == 0 {
		return false
	}
	return s.cache.Add(id, s.onEvict)
}

func (s *TreeStrategy) onEvict(tile.ID) {
	s.frame.Evictions++
}
