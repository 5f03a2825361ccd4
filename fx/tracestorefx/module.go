// Package tracestorefx provides an fx module for a trace store opened from
// a location string, fronted by an LRU of decoded traces.
package tracestorefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/stats"
	"github.com/discochess/treecache/internal/tracestore"
	"github.com/discochess/treecache/internal/tracestore/cachedstore"
	"github.com/discochess/treecache/internal/tracestore/urlstore"
)

// DefaultCacheSize is the number of decoded traces kept when Config leaves
// CacheSize unset.
const DefaultCacheSize = 64

// Config holds configuration for the trace store.
type Config struct {
	// Location is a directory, gs://bucket/prefix, s3://bucket/prefix or mem://.
	Location string

	// Codec names the trace compression: "zst", "gz" or "none".
	Codec string

	// CacheSize is the number of decoded traces to keep. Negative disables
	// the cache.
	CacheSize int

	S3Region   string
	S3Endpoint string
}

// Module provides a tracestore.Store. Requires a Config and a *zap.Logger;
// a stats.Collector is used when provided.
var Module = fx.Module("tracestore",
	fx.Provide(newStore),
)

// Params holds dependencies for opening the store.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Result holds the provided store.
type Result struct {
	fx.Out

	Store tracestore.Store
}

func newStore(p Params) (Result, error) {
	c, err := codec.ByName(p.Config.Codec)
	if err != nil {
		return Result{}, err
	}

	store, err := urlstore.Open(context.Background(), p.Config.Location, c, urlstore.Options{
		Region:   p.Config.S3Region,
		Endpoint: p.Config.S3Endpoint,
	})
	if err != nil {
		return Result{}, err
	}

	size := p.Config.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cached, err := cachedstore.New(store, size, p.Collector)
		if err != nil {
			store.Close()
			return Result{}, err
		}
		store = cached
	}

	log := p.Logger.Named("tracestore")
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if cached, ok := store.(*cachedstore.Store); ok {
				s := cached.Stats()
				log.Info("trace cache stats",
					zap.Int64("hits", s.Hits),
					zap.Int64("misses", s.Misses),
					zap.Float64("hitRate", s.HitRate()),
				)
			}
			return store.Close()
		},
	})

	return Result{Store: store}, nil
}
