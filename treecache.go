// Package treecache provides a usage-aware LRU cache for items arranged in a
// parent/child hierarchy, such as the tiles of a streamed tile tree.
//
// Items are added under their parent, marked used once per cycle by the
// caller (marking an item also pins its ancestors), and reclaimed by unload
// passes that only ever remove unused leaves, oldest first. An item is never
// evicted while any of its descendants are cached.
//
// Example usage:
//
//	queue := treecache.NewQueue()
//	cache, err := treecache.NewComparable(parentOf,
//	    treecache.WithCapacity(800),
//	    treecache.WithTargetOccupancy(600),
//	    treecache.WithQueue(queue),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Each frame:
//	cache.Add(id, release)
//	cache.MarkUsed(id)
//	cache.ScheduleUnload(true)
//	queue.RunPending()
//
// A Cache is not safe for concurrent use; all calls, including the tasks it
// submits to its queue, must run on one goroutine.
package treecache

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/treecache/internal/hierarchy"
	"github.com/discochess/treecache/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrDuplicate indicates an equivalent item is already cached.
	ErrDuplicate = errors.New("treecache: item already cached")

	// ErrFull indicates the cache is at capacity.
	ErrFull = errors.New("treecache: cache is full")

	// ErrInvalidConfig indicates an option value out of range.
	ErrInvalidConfig = errors.New("treecache: invalid configuration")

	// ErrNoEqual indicates New was called without an equivalence function.
	ErrNoEqual = errors.New("treecache: no equivalence function provided")

	// ErrParentNotFound indicates the item's parent is not cached.
	ErrParentNotFound = hierarchy.ErrParentNotFound

	// ErrRootExists indicates a parentless item was added to a non-empty cache.
	ErrRootExists = hierarchy.ErrRootExists
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Size      int   // Items currently cached.
	Used      int   // Items currently in use.
	Capacity  int   // Configured ceiling.
	Adds      int64 // Successful adds.
	Rejected  int64 // Failed adds.
	Removed   int64 // Items dropped by Remove, descendants included.
	Evicted   int64 // Items reclaimed by unload passes.
	Passes    int64 // Unload passes run.
	Shortfall int64 // Items passes wanted but could not reclaim.
}

// Occupancy returns Size as a percentage of Capacity.
func (s Stats) Occupancy() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Capacity) * 100
}

// Cache is a hierarchical usage-aware cache of T.
type Cache[T any] struct {
	store  *hierarchy.Store[*record[T]]
	parent func(T) (T, bool)

	capacity         int
	targetOccupancy  int
	evictionFraction float64
	disposeOnRemove  bool

	usedCount int
	clock     uint64

	queue         TaskQueue
	unloadPending bool

	collector stats.Collector
	logger    *zap.Logger
	counters  Stats
}

// New creates a cache using equal for item identity and parent to locate
// each item's parent. parent may be nil, in which case every item is added
// as the root.
func New[T any](equal func(a, b T) bool, parent func(T) (T, bool), opts ...Option) (*Cache[T], error) {
	if equal == nil {
		return nil, ErrNoEqual
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	cfg.resolve()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.queue == nil {
		cfg.queue = NewQueue()
	}
	if cfg.stats == nil {
		cfg.stats = stats.NewNoop()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	c := &Cache[T]{
		store: hierarchy.New(func(a, b *record[T]) bool {
			return equal(a.item, b.item)
		}),
		parent:           parent,
		capacity:         cfg.capacity,
		targetOccupancy:  cfg.targetOccupancy,
		evictionFraction: cfg.evictionFraction,
		disposeOnRemove:  cfg.disposeOnRemove,
		queue:            cfg.queue,
		collector:        cfg.stats,
		logger:           cfg.logger,
	}

	c.logger.Debug("cache initialized",
		zap.Int("capacity", c.capacity),
		zap.Int("targetOccupancy", c.targetOccupancy),
		zap.Float64("evictionFraction", c.evictionFraction),
	)

	return c, nil
}

// NewComparable creates a cache for a comparable item type using == for
// identity.
func NewComparable[T comparable](parent func(T) (T, bool), opts ...Option) (*Cache[T], error) {
	return New(func(a, b T) bool { return a == b }, parent, opts...)
}

// Len returns the number of cached items.
func (c *Cache[T]) Len() int {
	return c.store.Len()
}

// UsedCount returns the number of cached items currently in use.
func (c *Cache[T]) UsedCount() int {
	return c.usedCount
}

// Capacity returns the configured item ceiling.
func (c *Cache[T]) Capacity() int {
	return c.capacity
}

// TargetOccupancy returns the item count unload passes reduce toward.
func (c *Cache[T]) TargetOccupancy() int {
	return c.targetOccupancy
}

// Queue returns the task queue unload passes are scheduled on.
func (c *Cache[T]) Queue() TaskQueue {
	return c.queue
}

// IsFull reports whether the cache holds Capacity items.
func (c *Cache[T]) IsFull() bool {
	return c.store.Len() >= c.capacity
}

// Has reports whether an item equivalent to item is cached.
func (c *Cache[T]) Has(item T) bool {
	return c.lookup(item) != nil
}

// State returns the usage state of item, or false if it is not cached.
func (c *Cache[T]) State(item T) (State, bool) {
	n := c.lookup(item)
	if n == nil {
		return 0, false
	}
	rec := n.Value()
	if rec.state == StateStale && n.IsLeaf() {
		return StateEvictable, true
	}
	return rec.state, true
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[T]) Stats() Stats {
	s := c.counters
	s.Size = c.store.Len()
	s.Used = c.usedCount
	s.Capacity = c.capacity
	return s
}

// Add caches item under its parent. It returns false, leaving the cache
// unchanged, if an equivalent item is cached, the cache is full, or the
// item cannot be placed in the hierarchy. onEvict is called once when the
// item is reclaimed by an unload pass.
//
// A new item starts in use so it cannot be evicted before the next reset.
func (c *Cache[T]) Add(item T, onEvict func(T)) bool {
	return c.Insert(item, onEvict) == nil
}

// Insert is Add reporting why an item was rejected: ErrDuplicate, ErrFull,
// ErrParentNotFound or ErrRootExists.
func (c *Cache[T]) Insert(item T, onEvict func(T)) error {
	if err := c.insert(item, onEvict); err != nil {
		c.counters.Rejected++
		c.collector.IncCounter(stats.MetricAddsRejected, 1)
		return err
	}
	c.counters.Adds++
	c.collector.IncCounter(stats.MetricAdds, 1)
	c.reportOccupancy()
	return nil
}

func (c *Cache[T]) insert(item T, onEvict func(T)) error {
	if c.Has(item) {
		return ErrDuplicate
	}
	if c.IsFull() {
		return ErrFull
	}

	c.clock++
	rec := &record[T]{
		item:       item,
		state:      StateFresh,
		lastAccess: c.clock,
		onEvict:    onEvict,
	}

	var err error
	if p, ok := c.parentOf(item); ok {
		err = c.store.InsertUnder(rec, &record[T]{item: p})
	} else {
		err = c.store.Insert(rec)
	}
	if err != nil {
		c.logger.Warn("item not placed in hierarchy", zap.Error(err))
		return err
	}

	c.usedCount++
	return nil
}

// Remove drops item and all of its descendants. It returns whether item was
// cached. Disposal callbacks of removed items are discarded without being
// called unless the cache was built WithDisposeOnRemove(true).
func (c *Cache[T]) Remove(item T) bool {
	n := c.lookup(item)
	if n == nil {
		return false
	}

	var records []*record[T]
	used := 0
	removed := c.store.RemoveNode(n, func(rec *record[T]) {
		if rec.state.InUse() {
			used++
		}
		records = append(records, rec)
	})
	c.usedCount -= used

	// Callbacks run once the subtree is detached so they may call back
	// into the cache.
	for _, rec := range records {
		if c.disposeOnRemove {
			rec.dispose()
		}
		rec.onEvict = nil
	}

	c.counters.Removed += int64(removed)
	c.collector.IncCounter(stats.MetricRemoves, int64(removed))
	c.reportOccupancy()
	return true
}

// MarkUsed marks item and every ancestor up to the root as used and
// refreshes their access time. It is a no-op if item is not cached.
func (c *Cache[T]) MarkUsed(item T) {
	n := c.lookup(item)
	if n == nil {
		return
	}

	c.clock++
	for ; n != nil; n = n.Parent() {
		if n.Value().markUsed(c.clock) {
			c.usedCount++
		}
	}
}

// MarkUnused marks item and all of its descendants unused. Ancestors keep
// their state. It is a no-op if item is not cached.
func (c *Cache[T]) MarkUnused(item T) {
	n := c.lookup(item)
	if n == nil {
		return
	}

	n.Walk(func(d *hierarchy.Node[*record[T]]) {
		if d.Value().markStale() {
			c.usedCount--
		}
	})
}

// MarkAllUnused marks every cached item unused.
func (c *Cache[T]) MarkAllUnused() {
	c.store.Traverse(func(n *hierarchy.Node[*record[T]]) {
		n.Value().markStale()
	})
	c.usedCount = 0
	c.collector.SetGauge(stats.MetricUsedItems, 0)
}

func (c *Cache[T]) lookup(item T) *hierarchy.Node[*record[T]] {
	return c.store.Search(&record[T]{item: item})
}

func (c *Cache[T]) parentOf(item T) (T, bool) {
	if c.parent == nil {
		var zero T
		return zero, false
	}
	return c.parent(item)
}

func (c *Cache[T]) reportOccupancy() {
	c.collector.SetGauge(stats.MetricItems, int64(c.store.Len()))
	c.collector.SetGauge(stats.MetricUsedItems, int64(c.usedCount))
}

// String summarizes the cache occupancy.
func (c *Cache[T]) String() string {
	return fmt.Sprintf("treecache{size=%d used=%d capacity=%d}", c.store.Len(), c.usedCount, c.capacity)
}
