package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/discochess/treecache/benchmark/analysis"
	"github.com/discochess/treecache/benchmark/simulation"
)

func testResults() []*simulation.Result {
	return []*simulation.Result{
		{
			StrategyName:  "tree",
			Frames:        4,
			Totals:        simulation.FrameResult{Requests: 8, Hits: 6, Loads: 4},
			LoadsPerFrame: []int{2, 1, 1, 0},
			PeakResident:  6,
		},
		{
			StrategyName:  "flat",
			Frames:        4,
			Totals:        simulation.FrameResult{Requests: 8, Hits: 4, Loads: 9, Evictions: 3, OrphanEvictions: 2},
			LoadsPerFrame: []int{3, 2, 2, 2},
			PeakResident:  6,
		},
	}
}

func TestMarkdownReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewMarkdownReport(&buf)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	results := testResults()
	r.WriteHeader("Tile Cache Benchmark")
	r.WriteMethodology(Methodology{Traces: []string{"orbit"}, Frames: 4, Capacity: 8, TargetOccupancy: 6, EvictionFraction: 0.05})
	r.WriteSummaryTable(results)
	r.WriteComparison(analysis.CompareStrategies(results[0], results[1], 100, 0.95))
	r.WriteDistributionChart("tree loads", results[0].LoadsPerFrame)
	r.WriteFooter()

	out := buf.String()
	for _, want := range []string{
		"# Tile Cache Benchmark",
		"Generated: 2026-01-02T03:04:05Z",
		"- **Traces:** orbit",
		"| tree | 75.0% | 1.00 |",
		"| flat | 50.0% | 2.25 |",
		"## tree vs flat",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestMakeHistogram(t *testing.T) {
	tests := []struct {
		name string
		data []int
		n    int
		want []bucket
	}{
		{"empty", nil, 10, nil},
		{"single value", []int{4, 4}, 10, []bucket{{lo: 4, hi: 4, count: 2}}},
		{
			name: "fewer values than buckets",
			data: []int{0, 1, 2, 2},
			n:    10,
			want: []bucket{{0, 0, 1}, {1, 1, 1}, {2, 2, 2}},
		},
		{
			name: "wide range",
			data: []int{0, 5, 9, 10, 19},
			n:    2,
			want: []bucket{{0, 9, 3}, {10, 19, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := makeHistogram(tt.data, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("makeHistogram() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("bucket %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	results := testResults()
	comps := []*analysis.StrategyComparison{analysis.CompareStrategies(results[1], results[0], 100, 0.95)}

	if err := WriteText(&buf, results, comps); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "STRATEGY") || !strings.Contains(out, "flat vs tree") {
		t.Errorf("WriteText() output:\n%s", out)
	}
}
