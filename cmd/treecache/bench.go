package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/treecache/benchmark/analysis"
	"github.com/discochess/treecache/benchmark/reporting"
	"github.com/discochess/treecache/benchmark/simulation"
	"github.com/discochess/treecache/internal/trace"
	"github.com/discochess/treecache/internal/tracestore"
	"github.com/discochess/treecache/internal/tracestore/cachedstore"
)

var benchCmd = &cobra.Command{
	Use:   "bench [TRACE...]",
	Short: "Compare the tile cache against a flat LRU",
	Long: `Replay traces against both the tile cache ("tree") and a flat LRU
("flat") of the same capacity, then compare tiles loaded per frame.

Without TRACE arguments every trace in the store is replayed. Passing
several capacities sweeps them; the target occupancy of each run is
capacity * --target-ratio.`,
	RunE: runBench,
}

var (
	benchCapacities  []int
	benchTargetRatio float64
	benchFraction    float64
	benchFormat      string
	benchOutput      string
	benchBootstrap   int
	benchConfidence  float64
	benchParallel    int
)

func init() {
	benchCmd.Flags().IntSliceVar(&benchCapacities, "capacities", []int{simulation.DefaultCacheConfig().Capacity}, "cache capacities to sweep")
	benchCmd.Flags().Float64Var(&benchTargetRatio, "target-ratio", 0.75, "target occupancy as a share of capacity")
	benchCmd.Flags().Float64Var(&benchFraction, "fraction", simulation.DefaultCacheConfig().EvictionFraction, "eviction fraction")
	benchCmd.Flags().StringVar(&benchFormat, "format", "text", "report format: text or markdown")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "", "write the report to a file instead of stdout")
	benchCmd.Flags().IntVar(&benchBootstrap, "bootstrap", 1000, "bootstrap iterations for confidence intervals")
	benchCmd.Flags().Float64Var(&benchConfidence, "confidence", 0.95, "confidence level")
	benchCmd.Flags().IntVar(&benchParallel, "parallel", 4, "traces loaded concurrently")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if benchFormat != "text" && benchFormat != "markdown" {
		return fmt.Errorf("unknown format %q", benchFormat)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	base, err := openStore(ctx)
	if err != nil {
		return err
	}
	// Each capacity in the sweep rereads every trace.
	st, err := cachedstore.New(base, 64, nil)
	if err != nil {
		base.Close()
		return err
	}
	defer st.Close()

	names := args
	if len(names) == 0 {
		if names, err = st.List(ctx); err != nil {
			return fmt.Errorf("listing traces: %w", err)
		}
	}
	if len(names) == 0 {
		return errors.New("no traces in store; record one with 'treecache trace record'")
	}

	var out io.Writer = cmd.OutOrStdout()
	if benchOutput != "" {
		f, err := os.Create(benchOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var md *reporting.MarkdownReport
	if benchFormat == "markdown" {
		md = reporting.NewMarkdownReport(out)
		md.WriteHeader("Tile Cache Benchmark")
	}

	for _, capacity := range benchCapacities {
		cfg := simulation.CacheConfig{
			Capacity:         capacity,
			TargetOccupancy:  int(float64(capacity) * benchTargetRatio),
			EvictionFraction: benchFraction,
		}

		start := time.Now()
		results, frames, err := benchCapacity(ctx, st, names, cfg)
		if err != nil {
			return err
		}
		log.Info("capacity replayed",
			zap.Int("capacity", capacity),
			zap.Int("traces", len(names)),
			zap.Int("frames", frames),
			zap.Duration("elapsed", time.Since(start)),
		)

		var comparisons []*analysis.StrategyComparison
		if multi := analysis.CompareAll(results, "tree", benchBootstrap, benchConfidence); multi != nil {
			comparisons = multi.Comparisons
		}

		if md == nil {
			fmt.Fprintf(out, "== capacity %d, target %d ==\n", cfg.Capacity, cfg.TargetOccupancy)
			if err := reporting.WriteText(out, results, comparisons); err != nil {
				return err
			}
			fmt.Fprintln(out)
			continue
		}

		md.WriteMethodology(reporting.Methodology{
			Traces:           names,
			Frames:           frames,
			Capacity:         cfg.Capacity,
			TargetOccupancy:  cfg.TargetOccupancy,
			EvictionFraction: cfg.EvictionFraction,
		})
		md.WriteSummaryTable(results)
		for _, comp := range comparisons {
			md.WriteComparison(comp)
		}
		for _, res := range results {
			md.WriteDistributionChart(res.StrategyName+" loads per frame", res.LoadsPerFrame)
		}
	}

	if md != nil {
		md.WriteFooter()
	}

	cs := st.Stats()
	log.Debug("trace cache", zap.Int64("hits", cs.Hits), zap.Int64("misses", cs.Misses))
	return nil
}

// benchCapacity replays every named trace against fresh tree and flat
// strategies sized by cfg. Results are merged per strategy across traces.
func benchCapacity(ctx context.Context, st tracestore.Store, names []string, cfg simulation.CacheConfig) ([]*simulation.Result, int, error) {
	traces := make([][]trace.Frame, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(benchParallel, 1))
	for i, name := range names {
		g.Go(func() error {
			frames, err := st.ReadTrace(gctx, name)
			if err != nil {
				return fmt.Errorf("reading trace %s: %w", name, err)
			}
			traces[i] = frames
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	sim := simulation.NewSimulator(
		simulation.TreeFactory(cfg),
		simulation.FlatFactory(cfg.Capacity),
	)

	var merged []*simulation.Result
	var total int
	for i, frames := range traces {
		results, err := sim.Run(ctx, frames)
		if err != nil {
			return nil, 0, fmt.Errorf("replaying %s: %w", names[i], err)
		}
		total += len(frames)
		if merged == nil {
			merged = results
			continue
		}
		for j, r := range results {
			merged[j].Merge(r)
		}
	}
	return merged, total, nil
}
