package treecache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/treecache/internal/stats"
)

// Defaults sized for a tile tree driven once per rendered frame.
const (
	DefaultCapacity         = 800
	DefaultTargetOccupancy  = 600
	DefaultEvictionFraction = 0.05
)

// Option configures a Cache.
type Option interface {
	apply(*options)
}

// options holds the cache configuration.
type options struct {
	capacity         int
	targetOccupancy  int
	targetSet        bool
	evictionFraction float64
	disposeOnRemove  bool
	queue            TaskQueue
	stats            stats.Collector
	logger           *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		capacity:         DefaultCapacity,
		evictionFraction: DefaultEvictionFraction,
		stats:            stats.NewNoop(),
		logger:           zap.NewNop(),
	}
}

// TargetFor returns the target occupancy used for a capacity when none is
// set: three quarters of it, as with the 800/600 defaults.
func TargetFor(capacity int) int {
	return capacity * DefaultTargetOccupancy / DefaultCapacity
}

// resolve fills in values derived from other options.
func (o *options) resolve() {
	if !o.targetSet {
		o.targetOccupancy = TargetFor(o.capacity)
	}
}

// validate checks the numeric configuration.
func (o *options) validate() error {
	if o.capacity < 1 {
		return fmt.Errorf("%w: capacity %d must be at least 1", ErrInvalidConfig, o.capacity)
	}
	if o.targetOccupancy < 0 || o.targetOccupancy > o.capacity {
		return fmt.Errorf("%w: target occupancy %d must be in [0, %d]",
			ErrInvalidConfig, o.targetOccupancy, o.capacity)
	}
	if !(o.evictionFraction > 0 && o.evictionFraction <= 1) {
		return fmt.Errorf("%w: eviction fraction %v must be in (0, 1]",
			ErrInvalidConfig, o.evictionFraction)
	}
	return nil
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithCapacity sets the hard ceiling on the number of cached items.
// Default is 800.
func WithCapacity(n int) Option {
	return optionFunc(func(o *options) {
		o.capacity = n
	})
}

// WithTargetOccupancy sets the item count an unload pass reduces toward.
// Default is three quarters of the capacity (600 for the default capacity).
func WithTargetOccupancy(n int) Option {
	return optionFunc(func(o *options) {
		o.targetOccupancy = n
		o.targetSet = true
	})
}

// WithEvictionFraction sets the fraction of the target (or of the unused
// excess, whichever is larger) reclaimed by a single unload pass.
// Must be in (0, 1]. Default is 0.05.
func WithEvictionFraction(f float64) Option {
	return optionFunc(func(o *options) {
		o.evictionFraction = f
	})
}

// WithDisposeOnRemove makes Remove invoke the disposal callback of every
// removed item. By default Remove leaves disposal to the caller.
func WithDisposeOnRemove(dispose bool) Option {
	return optionFunc(func(o *options) {
		o.disposeOnRemove = dispose
	})
}

// WithQueue sets the task queue ScheduleUnload submits to.
// If not set, the cache creates its own Queue; see Cache.Queue.
func WithQueue(q TaskQueue) Option {
	return optionFunc(func(o *options) {
		o.queue = q
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
