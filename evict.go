package treecache

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/discochess/treecache/internal/hierarchy"
	"github.com/discochess/treecache/internal/stats"
)

// evictionQuota returns how many items one unload pass tries to reclaim.
//
// The quota is the larger of a fixed fraction of the target (so small caches
// still make progress) and the same fraction of the unused items above the
// target (so an over-budget cache sheds faster), capped at the number of
// unused items.
func evictionQuota(size, used, target int, fraction float64) int {
	unused := size - used
	if unused <= 0 {
		return 0
	}
	excess := size - target
	unusedExcess := min(excess, unused)
	quota := max(float64(target)*fraction, float64(unusedExcess)*fraction)
	return int(math.Ceil(min(quota, float64(unused))))
}

// candidate is an unused leaf found by a collection round.
type candidate[T any] struct {
	node       *hierarchy.Node[*record[T]]
	lastAccess uint64
}

// UnloadUnusedContent runs one unload pass: unused leaves are removed oldest
// first, re-collecting as parents become leaves, until the pass quota is met
// or nothing evictable remains. Each reclaimed item's disposal callback is
// called once. It returns the number of items reclaimed.
func (c *Cache[T]) UnloadUnusedContent() int {
	if c.store.Len() == 0 {
		return 0
	}

	toEvict := evictionQuota(c.store.Len(), c.usedCount, c.targetOccupancy, c.evictionFraction)
	evicted := 0

	for evicted < toEvict && c.store.Len() > c.usedCount {
		candidates := c.collectCandidates()
		if len(candidates) == 0 {
			break
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].lastAccess < candidates[j].lastAccess
		})

		round := evicted
		for _, cand := range candidates {
			if evicted == toEvict {
				break
			}
			// Disposal callbacks may have re-marked or removed a later
			// candidate. Removal goes by node so an equivalent item added
			// since the round was collected is never taken in its place.
			n := cand.node
			if n.Value().state.InUse() || !n.IsLeaf() || c.store.RemoveNode(n, nil) == 0 {
				continue
			}
			evicted++
			n.Value().dispose()
		}
		if evicted == round {
			break
		}
	}

	c.counters.Passes++
	c.counters.Evicted += int64(evicted)
	c.collector.IncCounter(stats.MetricUnloadPasses, 1)
	c.collector.IncCounter(stats.MetricEvictions, int64(evicted))
	c.collector.ObserveHistogram(stats.MetricUnloadEvicted, float64(evicted))
	if short := toEvict - evicted; short > 0 {
		c.counters.Shortfall += int64(short)
		c.collector.IncCounter(stats.MetricUnloadShortfall, int64(short))
	}
	c.reportOccupancy()

	c.logger.Debug("unload pass finished",
		zap.Int("quota", toEvict),
		zap.Int("evicted", evicted),
		zap.Int("size", c.store.Len()),
		zap.Int("used", c.usedCount),
	)

	return evicted
}

// collectCandidates returns every unused leaf in pre-order.
func (c *Cache[T]) collectCandidates() []candidate[T] {
	var out []candidate[T]
	c.store.Traverse(func(n *hierarchy.Node[*record[T]]) {
		rec := n.Value()
		if n.IsLeaf() && !rec.state.InUse() {
			out = append(out, candidate[T]{node: n, lastAccess: rec.lastAccess})
		}
	})
	return out
}
