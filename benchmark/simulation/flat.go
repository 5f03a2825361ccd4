package simulation

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/treecache/internal/tile"
)

// FlatStrategy replays frames against a plain LRU that knows nothing about
// the tile hierarchy. It serves as the baseline: it may evict a parent while
// its children stay resident.
type FlatStrategy struct {
	cache   *lru.Cache[tile.ID, struct{}]
	evicted []tile.ID
}

// Compile-time check that FlatStrategy implements Strategy.
var _ Strategy = (*FlatStrategy)(nil)

// NewFlatStrategy creates a flat LRU strategy holding up to capacity tiles.
func NewFlatStrategy(capacity int) (*FlatStrategy, error) {
	s := &FlatStrategy{}
	cache, err := lru.NewWithEvict(capacity, func(id tile.ID, _ struct{}) {
		s.evicted = append(s.evicted, id)
	})
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

// FlatFactory returns a Factory building flat strategies.
func FlatFactory(capacity int) Factory {
	return func() (Strategy, error) {
		return NewFlatStrategy(capacity)
	}
}

// Name returns "flat".
func (s *FlatStrategy) Name() string { return "flat" }

// Len returns the number of cached tiles.
func (s *FlatStrategy) Len() int { return s.cache.Len() }

// Frame implements Strategy.
func (s *FlatStrategy) Frame(visible []tile.ID) FrameResult {
	var r FrameResult
	for _, id := range visible {
		r.Requests++
		if _, ok := s.cache.Get(id); ok {
			r.Hits++
		}
		for _, p := range path(id) {
			if _, ok := s.cache.Get(p); ok {
				continue
			}
			s.cache.Add(p, struct{}{})
			r.Loads++
		}
	}

	r.Evictions = len(s.evicted)
	for _, id := range s.evicted {
		if s.hasChild(id) {
			r.OrphanEvictions++
		}
	}
	s.evicted = s.evicted[:0]
	return r
}

func (s *FlatStrategy) hasChild(id tile.ID) bool {
	if id.Level >= tile.MaxLevel {
		return false
	}
	for _, c := range id.Children() {
		if s.cache.Contains(c) {
			return true
		}
	}
	return false
}
