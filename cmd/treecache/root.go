package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/tracestore"
	"github.com/discochess/treecache/internal/tracestore/urlstore"
)

var (
	// Global flags.
	storeLocation string
	codecName     string
	s3Region      string
	s3Endpoint    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "treecache",
	Short: "Replay camera traces against a hierarchical tile cache",
	Long: `treecache records camera traces over a quadtree tile pyramid and replays
them against the usage-aware tile cache, optionally side by side with a
flat LRU baseline.

Traces live in a trace store: a local directory, gs://bucket/prefix,
s3://bucket/prefix or mem:// for a throwaway in-memory store.

Examples:
  # Record a synthetic trace
  treecache trace record orbit --frames 2000 --seed 7

  # Replay it and print cache metrics
  treecache simulate orbit --metrics

  # Compare the tile cache against a flat LRU at several capacities
  treecache bench --capacities 200,400,800 --format markdown`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeLocation, "store", "s", "./traces", "trace store location")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "zst", "trace compression: zst, gz or none")
	rootCmd.PersistentFlags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// stores")
	rootCmd.PersistentFlags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom endpoint for S3-compatible stores")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger returns a development logger when verbose, else a production one.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func selectedCodec() (codec.Codec, error) {
	return codec.ByName(codecName)
}

func openStore(ctx context.Context) (tracestore.Store, error) {
	c, err := selectedCodec()
	if err != nil {
		return nil, err
	}
	st, err := urlstore.Open(ctx, storeLocation, c, urlstore.Options{
		Region:   s3Region,
		Endpoint: s3Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("opening trace store %q: %w", storeLocation, err)
	}
	return st, nil
}
