package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/discochess/treecache/internal/stats"
)

// family gathers reg and returns the metric family called name, or nil.
func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestNew_Registry(t *testing.T) {
	if c := New(nil); c.registry != prometheus.DefaultRegisterer {
		t.Error("New(nil) should use the default registerer")
	}

	reg := prometheus.NewRegistry()
	if c := New(reg); c.registry != reg {
		t.Error("New(reg) should use the supplied registry")
	}
}

func TestCollector_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricEvictions, 5)
	c.IncCounter(stats.MetricEvictions, 3)
	c.SetGauge(stats.MetricItems, 600)
	c.SetGauge(stats.MetricItems, 570)
	for _, v := range []float64{1, 30, 30} {
		c.ObserveHistogram(stats.MetricUnloadEvicted, v)
	}

	if f := family(t, reg, stats.MetricEvictions); f == nil {
		t.Errorf("%s not registered", stats.MetricEvictions)
	} else if got := f.GetMetric()[0].GetCounter().GetValue(); got != 8 {
		t.Errorf("evictions = %v, want 8", got)
	}

	if f := family(t, reg, stats.MetricItems); f == nil {
		t.Errorf("%s not registered", stats.MetricItems)
	} else if got := f.GetMetric()[0].GetGauge().GetValue(); got != 570 {
		t.Errorf("items = %v, want 570", got)
	}

	f := family(t, reg, stats.MetricUnloadEvicted)
	if f == nil {
		t.Fatalf("%s not registered", stats.MetricUnloadEvicted)
	}
	h := f.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 3 || h.GetSampleSum() != 61 {
		t.Errorf("histogram count/sum = %d/%v, want 3/61", h.GetSampleCount(), h.GetSampleSum())
	}
	if len(h.GetBucket()) != len(evictedBuckets) {
		t.Errorf("histogram has %d buckets, want %d", len(h.GetBucket()), len(evictedBuckets))
	}
}

func TestCollector_Help(t *testing.T) {
	tests := []struct {
		name     string
		wantHelp string
	}{
		{stats.MetricUnloadPasses, help[stats.MetricUnloadPasses]},
		{stats.MetricTraceCacheHits, help[stats.MetricTraceCacheHits]},
		{"custom_total", "custom_total"},
	}

	reg := prometheus.NewRegistry()
	c := New(reg)
	for _, tt := range tests {
		c.IncCounter(tt.name, 1)
	}

	for _, tt := range tests {
		f := family(t, reg, tt.name)
		if f == nil {
			t.Errorf("%s not registered", tt.name)
			continue
		}
		if f.GetHelp() != tt.wantHelp {
			t.Errorf("help for %s = %q, want %q", tt.name, f.GetHelp(), tt.wantHelp)
		}
	}
}

func TestCollector_DefaultBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.ObserveHistogram("frame_seconds", 0.02)

	f := family(t, reg, "frame_seconds")
	if f == nil {
		t.Fatal("frame_seconds not registered")
	}
	if got := len(f.GetMetric()[0].GetHistogram().GetBucket()); got != len(prometheus.DefBuckets) {
		t.Errorf("buckets = %d, want %d", got, len(prometheus.DefBuckets))
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.IncCounter(stats.MetricAdds, 1)
				c.SetGauge(stats.MetricUsedItems, int64(j))
				c.ObserveHistogram(stats.MetricUnloadEvicted, float64(j))
			}
		}()
	}
	wg.Wait()

	if f := family(t, reg, stats.MetricAdds); f == nil {
		t.Errorf("%s not registered", stats.MetricAdds)
	} else if got := f.GetMetric()[0].GetCounter().GetValue(); got != 400 {
		t.Errorf("adds = %v, want 400", got)
	}
	if f := family(t, reg, stats.MetricUnloadEvicted); f == nil {
		t.Errorf("%s not registered", stats.MetricUnloadEvicted)
	} else if got := f.GetMetric()[0].GetHistogram().GetSampleCount(); got != 400 {
		t.Errorf("histogram count = %d, want 400", got)
	}
}

func TestCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Two caches reporting into one registry share the series.
	a, b := New(reg), New(reg)
	a.IncCounter(stats.MetricRemoves, 2)
	b.IncCounter(stats.MetricRemoves, 5)

	f := family(t, reg, stats.MetricRemoves)
	if f == nil {
		t.Fatalf("%s not registered", stats.MetricRemoves)
	}
	if got := f.GetMetric()[0].GetCounter().GetValue(); got != 7 {
		t.Errorf("removes = %v, want 7", got)
	}
}
