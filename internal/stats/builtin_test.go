package stats

import "testing"

func TestMemory_Counters(t *testing.T) {
	m := NewMemory()
	m.IncCounter(MetricEvictions, 2)
	m.IncCounter(MetricEvictions, 3)

	if got := m.Counter(MetricEvictions); got != 5 {
		t.Errorf("Counter() = %d, want 5", got)
	}
	if got := m.Counter(MetricAdds); got != 0 {
		t.Errorf("Counter() for unknown metric = %d, want 0", got)
	}
}

func TestMemory_GaugeKeepsLatest(t *testing.T) {
	m := NewMemory()
	m.SetGauge(MetricItems, 10)
	m.SetGauge(MetricItems, 7)

	if got := m.Gauge(MetricItems); got != 7 {
		t.Errorf("Gauge() = %d, want 7", got)
	}
}

func TestMemory_Observations(t *testing.T) {
	m := NewMemory()
	m.ObserveHistogram(MetricUnloadEvicted, 1)
	m.ObserveHistogram(MetricUnloadEvicted, 4)

	got := m.Observations(MetricUnloadEvicted)
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("Observations() = %v, want [1 4]", got)
	}

	// The returned slice is a copy.
	got[0] = 99
	if m.Observations(MetricUnloadEvicted)[0] != 1 {
		t.Error("Observations() should return a copy")
	}
}

func TestMulti(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	m := Multi{a, NewNoop(), b}

	m.IncCounter(MetricAdds, 2)
	m.SetGauge(MetricItems, 4)
	m.ObserveHistogram(MetricUnloadEvicted, 1)

	for i, c := range []*Memory{a, b} {
		if c.Counter(MetricAdds) != 2 || c.Gauge(MetricItems) != 4 || len(c.Observations(MetricUnloadEvicted)) != 1 {
			t.Errorf("collector %d did not receive every metric", i)
		}
	}
}
