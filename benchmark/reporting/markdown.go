// Package reporting renders replay results as Markdown or plain text.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/discochess/treecache/benchmark/analysis"
	"github.com/discochess/treecache/benchmark/simulation"
)

// Methodology describes how a benchmark was run.
type Methodology struct {
	Traces           []string
	Frames           int
	Capacity         int
	TargetOccupancy  int
	EvictionFraction float64
}

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(m Methodology) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Traces:** %s\n", strings.Join(m.Traces, ", "))
	fmt.Fprintf(r.w, "- **Frames replayed:** %d\n", m.Frames)
	fmt.Fprintf(r.w, "- **Cache:** capacity %d, target occupancy %d, eviction fraction %.2f\n",
		m.Capacity, m.TargetOccupancy, m.EvictionFraction)
	fmt.Fprintln(r.w, "- **Metric:** Tiles loaded per frame (lower is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Mann-Whitney U (non-parametric), Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the summary comparison table.
func (r *MarkdownReport) WriteSummaryTable(results []*simulation.Result) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Strategy | Hit Rate | Avg Loads | P90 Loads | Evictions | Orphaned | Rejected | Peak Resident |")
	fmt.Fprintln(r.w, "|----------|----------|-----------|-----------|-----------|----------|----------|---------------|")

	for _, res := range results {
		m := simulation.ComputeMetrics(res)
		fmt.Fprintf(r.w, "| %s | %.1f%% | %.2f | %.0f | %d | %d | %d | %d |\n",
			res.StrategyName, m.HitRate, m.AvgLoadsPerFrame, m.P90LoadsPerFrame,
			m.Evictions, m.OrphanEvictions, m.Rejected, m.PeakResident)
	}
	fmt.Fprintln(r.w)
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.StrategyComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Strategy1, comp.Strategy2)

	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Strategy1+" | "+comp.Strategy2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Strategy1)+2)+"|"+strings.Repeat("-", len(comp.Strategy2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean | %.2f | %.2f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median | %.2f | %.2f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| P95 | %.2f | %.2f |\n", comp.Stats1.P95, comp.Stats2.P95)
	fmt.Fprintf(r.w, "| Std Dev | %.2f | %.2f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Max | %.0f | %.0f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.2f, %.2f]\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** loads significantly fewer tiles per frame than %s ",
			comp.Winner, otherStrategy(comp.Winner, comp.Strategy1, comp.Strategy2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between strategies (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherStrategy(winner, s1, s2 string) string {
	if winner == s1 {
		return s2
	}
	return s1
}

// WriteDistributionChart writes an ASCII histogram of per-frame values.
func (r *MarkdownReport) WriteDistributionChart(name string, data []int) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	buckets := makeHistogram(data, 10)
	maxCount := 0
	for _, b := range buckets {
		maxCount = max(maxCount, b.count)
	}

	const width = 40
	for _, b := range buckets {
		barLen := 0
		if maxCount > 0 {
			barLen = b.count * width / maxCount
		}
		fmt.Fprintf(r.w, "%4d-%4d │ %s %d\n", b.lo, b.hi, strings.Repeat("█", barLen), b.count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

type bucket struct {
	lo, hi int // inclusive bounds
	count  int
}

// makeHistogram splits [min, max] of data into at most n equal-width integer
// buckets.
func makeHistogram(data []int, n int) []bucket {
	if len(data) == 0 {
		return nil
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	span := hi - lo + 1
	n = min(n, span)
	size := (span + n - 1) / n

	out := make([]bucket, 0, n)
	for start := lo; start <= hi; start += size {
		out = append(out, bucket{lo: start, hi: min(start+size-1, hi)})
	}
	for _, v := range data {
		out[(v-lo)/size].count++
	}
	return out
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by treecache bench*")
}
