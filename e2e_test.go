//go:build e2e

package treecache_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/discochess/treecache/benchmark/simulation"
	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/tracestore/diskstore"
)

func TestE2E_RecordAndReplay(t *testing.T) {
	storeDir := filepath.Join(t.TempDir(), "traces")
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		t.Fatalf("Error creating store dir: %v", err)
	}

	// Step 1: Record a trace with the CLI.
	t.Log("Recording trace...")
	start := time.Now()
	cmd := exec.Command("go", "run", "./cmd/treecache",
		"--store", storeDir,
		"trace", "record", "e2e",
		"--frames", "2000",
		"--max-level", "14",
		"--seed", "42",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Error recording: %v", err)
	}
	t.Logf("   Recorded in %v", time.Since(start))

	// Step 2: Read it back.
	st, err := diskstore.New(storeDir, codec.Zstd())
	if err != nil {
		t.Fatalf("Error opening store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	frames, err := st.ReadTrace(ctx, "e2e")
	if err != nil {
		t.Fatalf("Error reading trace: %v", err)
	}
	if len(frames) != 2000 {
		t.Fatalf("frames = %d, want 2000", len(frames))
	}

	// Step 3: Replay against the tile cache.
	t.Log("Replaying...")
	cfg := simulation.CacheConfig{Capacity: 400, TargetOccupancy: 300, EvictionFraction: 0.05}
	tree, err := simulation.NewTreeStrategy(cfg)
	if err != nil {
		t.Fatalf("Error creating strategy: %v", err)
	}

	result, err := simulation.Replay(ctx, tree, frames)
	if err != nil {
		t.Fatalf("Error replaying: %v", err)
	}

	s := tree.Cache().Stats()
	t.Logf("   Hit rate: %.1f%%", result.HitRate())
	t.Logf("   Loads/frame: %.2f", result.AvgLoadsPerFrame())
	t.Logf("   Evicted: %d in %d passes", s.Evicted, s.Passes)

	if result.PeakResident > cfg.Capacity {
		t.Errorf("PeakResident = %d exceeds capacity %d", result.PeakResident, cfg.Capacity)
	}
	if result.Totals.OrphanEvictions != 0 {
		t.Errorf("OrphanEvictions = %d, want 0", result.Totals.OrphanEvictions)
	}
	if s.Passes == 0 {
		t.Error("no unload passes ran")
	}
}
