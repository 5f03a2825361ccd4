// Package treecachefx provides an fx module for a tile cache driven by a
// cooperative task queue.
package treecachefx

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/treecache"
	"github.com/discochess/treecache/internal/stats"
	"github.com/discochess/treecache/internal/stats/logger"
	promstats "github.com/discochess/treecache/internal/stats/prometheus"
	"github.com/discochess/treecache/internal/tile"
)

// Config holds configuration for the tile cache. Zero fields take the
// cache defaults.
type Config struct {
	Capacity int

	// TargetOccupancy defaults to three quarters of Capacity (see
	// treecache.TargetFor), so a zero target cannot be requested here.
	TargetOccupancy int

	EvictionFraction float64

	// DisposeOnRemove makes Remove call disposal callbacks.
	DisposeOnRemove bool
}

// Module provides a *treecache.Cache[tile.ID], the *treecache.Queue it
// schedules unload passes on, and the stats.Collector it reports to.
// Requires a *zap.Logger. A Config and a prometheus.Registerer are used
// when provided.
var Module = fx.Module("treecache",
	fx.Provide(
		newQueue,
		newStatsCollector,
		newCache,
	),
)

func newQueue() *treecache.Queue {
	return treecache.NewQueue()
}

// StatsParams holds dependencies for the stats collector.
type StatsParams struct {
	fx.In

	Logger     *zap.Logger
	Registerer prometheus.Registerer `optional:"true"`
}

func newStatsCollector(p StatsParams) stats.Collector {
	c := stats.Multi{logger.New(p.Logger.Named("treecache.stats"))}
	if p.Registerer != nil {
		c = append(c, promstats.New(p.Registerer))
	}
	return c
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Config    Config `optional:"true"`
	Logger    *zap.Logger
	Collector stats.Collector
	Queue     *treecache.Queue
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache.
type Result struct {
	fx.Out

	Cache *treecache.Cache[tile.ID]
}

func newCache(p Params) (Result, error) {
	opts := []treecache.Option{
		treecache.WithQueue(p.Queue),
		treecache.WithStats(p.Collector),
		treecache.WithLogger(p.Logger.Named("treecache")),
		treecache.WithDisposeOnRemove(p.Config.DisposeOnRemove),
	}
	if p.Config.Capacity > 0 {
		opts = append(opts, treecache.WithCapacity(p.Config.Capacity))
	}
	if p.Config.TargetOccupancy > 0 {
		opts = append(opts, treecache.WithTargetOccupancy(p.Config.TargetOccupancy))
	}
	if p.Config.EvictionFraction > 0 {
		opts = append(opts, treecache.WithEvictionFraction(p.Config.EvictionFraction))
	}

	cache, err := treecache.NewComparable(tile.ID.Parent, opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Let queued unload passes finish so disposal callbacks run.
			ran := p.Queue.RunPending()
			s := cache.Stats()
			p.Logger.Info("tile cache stopped",
				zap.Int("pendingTasks", ran),
				zap.Int("size", s.Size),
				zap.Int64("evicted", s.Evicted),
				zap.Int64("passes", s.Passes),
			)
			return nil
		},
	})

	return Result{Cache: cache}, nil
}
