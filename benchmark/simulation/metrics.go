package simulation

import "slices"

// Metrics contains computed metrics from a replay result.
type Metrics struct {
	// Core metrics.
	Frames           int
	HitRate          float64
	TotalLoads       int
	AvgLoadsPerFrame float64
	Evictions        int
	OrphanEvictions  int
	Rejected         int
	PeakResident     int

	// Distribution metrics.
	MedianLoadsPerFrame float64
	P90LoadsPerFrame    float64
	P99LoadsPerFrame    float64
	MinLoadsPerFrame    int
	MaxLoadsPerFrame    int

	// LoadConcentration is the Gini coefficient of per-frame loads: 0 when
	// every frame loads the same amount, approaching 1 when loading happens
	// in a few bursts.
	LoadConcentration float64
}

// ComputeMetrics computes detailed metrics from a replay result.
func ComputeMetrics(result *Result) *Metrics {
	m := &Metrics{
		Frames:           result.Frames,
		HitRate:          result.HitRate(),
		TotalLoads:       result.Totals.Loads,
		AvgLoadsPerFrame: result.AvgLoadsPerFrame(),
		Evictions:        result.Totals.Evictions,
		OrphanEvictions:  result.Totals.OrphanEvictions,
		Rejected:         result.Totals.Rejected,
		PeakResident:     result.PeakResident,
	}

	if len(result.LoadsPerFrame) > 0 {
		sorted := slices.Clone(result.LoadsPerFrame)
		slices.Sort(sorted)

		m.MinLoadsPerFrame = sorted[0]
		m.MaxLoadsPerFrame = sorted[len(sorted)-1]
		m.MedianLoadsPerFrame = percentile(sorted, 50)
		m.P90LoadsPerFrame = percentile(sorted, 90)
		m.P99LoadsPerFrame = percentile(sorted, 99)
		m.LoadConcentration = computeGini(sorted)
	}

	return m
}

func percentile(sorted []int, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return float64(sorted[idx])
}

// computeGini expects values sorted ascending.
func computeGini(sorted []int) float64 {
	if len(sorted) == 0 {
		return 0
	}

	n := float64(len(sorted))
	var sum, cumulativeSum float64
	for i, v := range sorted {
		sum += float64(v)
		cumulativeSum += float64(i+1) * float64(v)
	}

	if sum == 0 {
		return 0
	}
	return (2*cumulativeSum)/(n*sum) - (n+1)/n
}

// MetricsComparison holds the differences between two strategies.
type MetricsComparison struct {
	Strategy1 string
	Strategy2 string

	HitRateDiff      float64 // Positive means Strategy1 hits more often.
	LoadsDiff        float64 // Positive means Strategy1 loads more per frame.
	LoadsDiffPct     float64
	OrphansDiff      int
	PeakResidentDiff int
}

// Compare compares two metrics and returns the differences.
func Compare(m1, m2 *Metrics, name1, name2 string) *MetricsComparison {
	return &MetricsComparison{
		Strategy1:        name1,
		Strategy2:        name2,
		HitRateDiff:      m1.HitRate - m2.HitRate,
		LoadsDiff:        m1.AvgLoadsPerFrame - m2.AvgLoadsPerFrame,
		LoadsDiffPct:     safeDiffPct(m1.AvgLoadsPerFrame, m2.AvgLoadsPerFrame),
		OrphansDiff:      m1.OrphanEvictions - m2.OrphanEvictions,
		PeakResidentDiff: m1.PeakResident - m2.PeakResident,
	}
}

func safeDiffPct(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}
