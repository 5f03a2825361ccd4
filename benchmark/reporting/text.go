package reporting

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/discochess/treecache/benchmark/analysis"
	"github.com/discochess/treecache/benchmark/simulation"
)

// WriteText writes a compact plain-text summary of results and comparisons.
func WriteText(w io.Writer, results []*simulation.Result, comparisons []*analysis.StrategyComparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tHIT RATE\tLOADS/FRAME\tP90\tEVICTIONS\tORPHANED\tREJECTED\tPEAK")
	for _, res := range results {
		m := simulation.ComputeMetrics(res)
		fmt.Fprintf(tw, "%s\t%.1f%%\t%.2f\t%.0f\t%d\t%d\t%d\t%d\n",
			res.StrategyName, m.HitRate, m.AvgLoadsPerFrame, m.P90LoadsPerFrame,
			m.Evictions, m.OrphanEvictions, m.Rejected, m.PeakResident)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, c := range comparisons {
		if _, err := fmt.Fprintf(w, "\n%s\n", c.Summary()); err != nil {
			return err
		}
	}
	return nil
}
