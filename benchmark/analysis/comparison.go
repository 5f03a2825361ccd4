package analysis

import (
	"fmt"

	"github.com/discochess/treecache/benchmark/simulation"
)

// StrategyComparison contains a full statistical comparison of per-frame
// tile loads between two strategies.
type StrategyComparison struct {
	Strategy1       string
	Strategy2       string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Name of strategy with fewer loads per frame, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// CompareStrategies performs a full statistical comparison between two
// replay results.
func CompareStrategies(
	result1, result2 *simulation.Result,
	bootstrapIterations int,
	confidence float64,
) *StrategyComparison {
	sample1 := intsToFloats(result1.LoadsPerFrame)
	sample2 := intsToFloats(result2.LoadsPerFrame)

	mw := MannWhitneyU(sample1, sample2)
	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	c := &StrategyComparison{
		Strategy1:   result1.StrategyName,
		Strategy2:   result2.StrategyName,
		Stats1:      stats1,
		Stats2:      stats2,
		MannWhitney: mw,
		EffectSize:  ComputeEffectSize(sample1, sample2),
		BootstrapCI: BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence, 1),
		Winner:      "tie",
	}

	switch {
	case stats1.Mean < stats2.Mean:
		c.Winner = result1.StrategyName
		c.WinnerConfident = mw.Significant
	case stats2.Mean < stats1.Mean:
		c.Winner = result2.StrategyName
		c.WinnerConfident = mw.Significant
	}
	return c
}

// Summary returns a human-readable summary of the comparison.
func (c *StrategyComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: mean=%.2f, median=%.2f, p95=%.2f, std=%.2f\n"+
			"  %s: mean=%.2f, median=%.2f, p95=%.2f, std=%.2f\n"+
			"  Difference: %.2f loads/frame (%.1f%%), %.0f%% CI [%.2f, %.2f]\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Strategy1, c.Strategy2,
		c.Strategy1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.P95, c.Stats1.StdDev,
		c.Strategy2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.P95, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.BootstrapCI.Confidence*100, c.BootstrapCI.LowerBound, c.BootstrapCI.UpperBound,
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func intsToFloats(ints []int) []float64 {
	floats := make([]float64, len(ints))
	for i, v := range ints {
		floats[i] = float64(v)
	}
	return floats
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiStrategyComparison compares multiple strategies against a baseline.
type MultiStrategyComparison struct {
	Baseline    string
	Comparisons []*StrategyComparison
}

// CompareAll compares every other result against the named baseline, in
// result order. It returns nil if no result has the baseline's name.
func CompareAll(
	results []*simulation.Result,
	baseline string,
	bootstrapIterations int,
	confidence float64,
) *MultiStrategyComparison {
	var base *simulation.Result
	for _, r := range results {
		if r.StrategyName == baseline {
			base = r
			break
		}
	}
	if base == nil {
		return nil
	}

	multi := &MultiStrategyComparison{Baseline: baseline}
	for _, r := range results {
		if r == base {
			continue
		}
		multi.Comparisons = append(multi.Comparisons, CompareStrategies(base, r, bootstrapIterations, confidence))
	}
	return multi
}
