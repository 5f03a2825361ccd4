package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/treecache"
	"github.com/discochess/treecache/benchmark/simulation"
	"github.com/discochess/treecache/internal/stats"
	"github.com/discochess/treecache/internal/stats/logger"
	promstats "github.com/discochess/treecache/internal/stats/prometheus"
	"github.com/discochess/treecache/internal/trace"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [TRACE]",
	Short: "Replay a trace against the tile cache",
	Long: `Replay a stored trace frame by frame against the tile cache. Each frame
loads the visible tiles and their ancestors, marks them used, then runs one
coalesced unload pass before usage is reset.

Without a TRACE argument a synthetic trace is generated using the same
flags as 'trace record'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

var (
	cacheConfig  = simulation.DefaultCacheConfig()
	printMetrics bool
)

func addCacheFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&cacheConfig.Capacity, "capacity", cacheConfig.Capacity, "maximum number of cached tiles")
	cmd.Flags().IntVar(&cacheConfig.TargetOccupancy, "target", cacheConfig.TargetOccupancy, "occupancy unload passes aim for")
	cmd.Flags().Float64Var(&cacheConfig.EvictionFraction, "fraction", cacheConfig.EvictionFraction, "share of the target or excess reclaimed per pass")
}

// cacheConfigFor returns the cache flags of cmd. A capacity given without a
// target gets the target the cache itself would derive for it.
func cacheConfigFor(cmd *cobra.Command) simulation.CacheConfig {
	cfg := cacheConfig
	if cmd.Flags().Changed("capacity") && !cmd.Flags().Changed("target") {
		cfg.TargetOccupancy = treecache.TargetFor(cfg.Capacity)
	}
	return cfg
}

func init() {
	addCacheFlags(simulateCmd)
	addGenerateFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&printMetrics, "metrics", false, "print the cache's Prometheus metrics after the run")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	frames, source, err := loadFrames(cmd, args)
	if err != nil {
		return err
	}

	var collectors stats.Multi
	if verbose {
		collectors = append(collectors, logger.New(log.Named("stats")))
	}
	registry := prometheus.NewRegistry()
	if printMetrics {
		collectors = append(collectors, promstats.New(registry))
	}

	strategy, err := simulation.NewTreeStrategy(cacheConfigFor(cmd),
		treecache.WithLogger(log.Named("cache")),
		treecache.WithStats(collectors),
	)
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}

	start := time.Now()
	res, err := simulation.Replay(ctx, strategy, frames)
	if err != nil {
		return err
	}
	log.Info("replay finished",
		zap.String("trace", source),
		zap.Int("frames", res.Frames),
		zap.Duration("elapsed", time.Since(start)),
	)

	out := cmd.OutOrStdout()
	printReplay(out, res, strategy.Cache().Stats())

	if printMetrics {
		families, err := registry.Gather()
		if err != nil {
			return fmt.Errorf("gathering metrics: %w", err)
		}
		fmt.Fprintln(out)
		writeMetrics(out, families)
	}
	return nil
}

// loadFrames reads the named trace from the store, or generates one.
func loadFrames(cmd *cobra.Command, args []string) ([]trace.Frame, string, error) {
	if len(args) == 0 {
		return trace.Generate(genParams), fmt.Sprintf("generated(seed=%d)", genParams.Seed), nil
	}

	st, err := openStore(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	frames, err := st.ReadTrace(cmd.Context(), args[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading trace %s: %w", args[0], err)
	}
	return frames, args[0], nil
}

func printReplay(w io.Writer, res *simulation.Result, cs treecache.Stats) {
	m := simulation.ComputeMetrics(res)
	fmt.Fprintf(w, "Frames:            %d\n", m.Frames)
	fmt.Fprintf(w, "Hit rate:          %.1f%%\n", m.HitRate)
	fmt.Fprintf(w, "Loads per frame:   %.2f (median %.0f, p90 %.0f, max %d)\n",
		m.AvgLoadsPerFrame, m.MedianLoadsPerFrame, m.P90LoadsPerFrame, m.MaxLoadsPerFrame)
	fmt.Fprintf(w, "Evictions:         %d\n", m.Evictions)
	fmt.Fprintf(w, "Rejected loads:    %d\n", m.Rejected)
	fmt.Fprintf(w, "Peak resident:     %d / %d\n", m.PeakResident, cs.Capacity)
	fmt.Fprintf(w, "Final occupancy:   %.1f%%\n", cs.Occupancy())
	fmt.Fprintf(w, "Unload passes:     %d (shortfall %d)\n", cs.Passes, cs.Shortfall)
}

// writeMetrics prints gathered metric families as "name value" lines.
func writeMetrics(w io.Writer, families []*dto.MetricFamily) {
	slices.SortFunc(families, func(a, b *dto.MetricFamily) int {
		return strings.Compare(a.GetName(), b.GetName())
	})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				fmt.Fprintf(w, "%s %g\n", mf.GetName(), m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s_count %d\n", mf.GetName(), h.GetSampleCount())
				fmt.Fprintf(w, "%s_sum %g\n", mf.GetName(), h.GetSampleSum())
			}
		}
	}
}
