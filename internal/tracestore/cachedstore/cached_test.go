package cachedstore

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/treecache/internal/stats"
	"github.com/discochess/treecache/internal/tile"
	"github.com/discochess/treecache/internal/trace"
	"github.com/discochess/treecache/internal/tracestore"
	"github.com/discochess/treecache/internal/tracestore/memstore"
)

// countingStore counts reads that reach the underlying store.
type countingStore struct {
	*memstore.Store
	reads int
}

func (s *countingStore) ReadTrace(ctx context.Context, name string) ([]trace.Frame, error) {
	s.reads++
	return s.Store.ReadTrace(ctx, name)
}

func newUnderlying(t *testing.T) *countingStore {
	t.Helper()
	s := &countingStore{Store: memstore.New()}
	for _, name := range []string{"a", "b", "c"} {
		if err := s.WriteTrace(context.Background(), name, []trace.Frame{{Visible: []tile.ID{tile.Root}}}); err != nil {
			t.Fatalf("WriteTrace(%q) error = %v", name, err)
		}
	}
	return s
}

func TestStore_HitAndMiss(t *testing.T) {
	underlying := newUnderlying(t)
	collector := stats.NewMemory()
	s, err := New(underlying, 2, collector)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for range 3 {
		if _, err := s.ReadTrace(ctx, "a"); err != nil {
			t.Fatalf("ReadTrace() error = %v", err)
		}
	}

	if underlying.reads != 1 {
		t.Errorf("underlying reads = %d, want 1", underlying.reads)
	}
	got := s.Stats()
	if got.Hits != 2 || got.Misses != 1 || got.Size != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss, size 1", got)
	}
	if collector.Counter(stats.MetricTraceCacheHits) != 2 {
		t.Errorf("hits metric = %d, want 2", collector.Counter(stats.MetricTraceCacheHits))
	}
}

func TestStore_EvictsLeastRecent(t *testing.T) {
	underlying := newUnderlying(t)
	s, err := New(underlying, 2, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	s.ReadTrace(ctx, "a")
	s.ReadTrace(ctx, "b")
	s.ReadTrace(ctx, "a")
	s.ReadTrace(ctx, "c") // evicts b
	s.ReadTrace(ctx, "b")

	if underlying.reads != 4 {
		t.Errorf("underlying reads = %d, want 4", underlying.reads)
	}
}

func TestStore_WriteInvalidates(t *testing.T) {
	underlying := newUnderlying(t)
	s, err := New(underlying, 4, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	s.ReadTrace(ctx, "a")
	if err := s.WriteTrace(ctx, "a", []trace.Frame{{Index: 5}}); err != nil {
		t.Fatalf("WriteTrace() error = %v", err)
	}
	got, err := s.ReadTrace(ctx, "a")
	if err != nil {
		t.Fatalf("ReadTrace() error = %v", err)
	}
	if len(got) != 1 || got[0].Index != 5 {
		t.Errorf("ReadTrace() after write = %+v, want the new trace", got)
	}
}

func TestStore_NotFound(t *testing.T) {
	s, err := New(newUnderlying(t), 2, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.ReadTrace(context.Background(), "missing"); !errors.Is(err, tracestore.ErrNotFound) {
		t.Errorf("ReadTrace() error = %v, want ErrNotFound", err)
	}
	if s.Stats().Size != 0 {
		t.Error("a failed read must not be cached")
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	if _, err := New(memstore.New(), 0, nil); err == nil {
		t.Error("New() expected error for zero capacity")
	}
}

func TestStats_HitRate(t *testing.T) {
	tests := []struct {
		name     string
		hits     int64
		misses   int64
		expected float64
	}{
		{"no requests", 0, 0, 0},
		{"all hits", 10, 0, 100},
		{"all misses", 0, 10, 0},
		{"75% hit rate", 3, 1, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stats{Hits: tt.hits, Misses: tt.misses}
			if got := s.HitRate(); got != tt.expected {
				t.Errorf("HitRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStore_ReturnsDeepCopies(t *testing.T) {
	s, err := New(newUnderlying(t), 2, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	// The miss path and the hit path both hand out copies.
	for i := range 2 {
		got, err := s.ReadTrace(ctx, "a")
		if err != nil {
			t.Fatalf("ReadTrace() error = %v", err)
		}
		if got[0].Visible[0] != tile.Root {
			t.Fatalf("read %d: tile = %v, want %v", i, got[0].Visible[0], tile.Root)
		}
		got[0].Visible[0] = tile.ID{Level: 5}
	}

	got, err := s.ReadTrace(ctx, "a")
	if err != nil {
		t.Fatalf("ReadTrace() error = %v", err)
	}
	if got[0].Visible[0] != tile.Root {
		t.Errorf("cached tile = %v, want %v", got[0].Visible[0], tile.Root)
	}
}
