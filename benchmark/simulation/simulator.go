// Package simulation replays camera traces against caching strategies.
package simulation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/discochess/treecache/internal/trace"
)

// Simulator replays traces against a set of strategies.
type Simulator struct {
	factories []Factory
}

// NewSimulator creates a new Simulator with the given strategy factories.
func NewSimulator(factories ...Factory) *Simulator {
	return &Simulator{factories: factories}
}

// Result contains the outcome of replaying one trace with one strategy.
type Result struct {
	StrategyName string
	Frames       int
	Totals       FrameResult

	LoadsPerFrame     []int // Tiles fetched per frame, for statistical analysis.
	EvictionsPerFrame []int
	PeakResident      int
	FinalResident     int
}

// HitRate returns the share of visible-tile requests that were already
// resident, as a percentage.
func (r *Result) HitRate() float64 {
	if r.Totals.Requests == 0 {
		return 0
	}
	return float64(r.Totals.Hits) / float64(r.Totals.Requests) * 100
}

// AvgLoadsPerFrame returns the mean number of tiles fetched per frame.
func (r *Result) AvgLoadsPerFrame() float64 {
	if r.Frames == 0 {
		return 0
	}
	return float64(r.Totals.Loads) / float64(r.Frames)
}

// Merge folds o into r, as if o's frames had been replayed after r's.
// Both results must come from the same strategy.
func (r *Result) Merge(o *Result) {
	r.Frames += o.Frames
	r.Totals.add(o.Totals)
	r.LoadsPerFrame = append(r.LoadsPerFrame, o.LoadsPerFrame...)
	r.EvictionsPerFrame = append(r.EvictionsPerFrame, o.EvictionsPerFrame...)
	r.PeakResident = max(r.PeakResident, o.PeakResident)
	r.FinalResident = o.FinalResident
}

// Replay runs frames through a single strategy.
func Replay(ctx context.Context, s Strategy, frames []trace.Frame) (*Result, error) {
	res := &Result{
		StrategyName:      s.Name(),
		LoadsPerFrame:     make([]int, 0, len(frames)),
		EvictionsPerFrame: make([]int, 0, len(frames)),
	}

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fr := s.Frame(f.Visible)
		res.Frames++
		res.Totals.add(fr)
		res.LoadsPerFrame = append(res.LoadsPerFrame, fr.Loads)
		res.EvictionsPerFrame = append(res.EvictionsPerFrame, fr.Evictions)
		res.PeakResident = max(res.PeakResident, s.Len())
	}
	res.FinalResident = s.Len()
	return res, nil
}

// Run replays frames against a fresh instance of every strategy, each on
// its own goroutine. Results are returned in factory order.
func (s *Simulator) Run(ctx context.Context, frames []trace.Frame) ([]*Result, error) {
	results := make([]*Result, len(s.factories))

	g, ctx := errgroup.WithContext(ctx)
	for i, factory := range s.factories {
		g.Go(func() error {
			strategy, err := factory()
			if err != nil {
				return fmt.Errorf("building strategy %d: %w", i, err)
			}
			res, err := Replay(ctx, strategy, frames)
			if err != nil {
				return fmt.Errorf("replaying %s: %w", strategy.Name(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
