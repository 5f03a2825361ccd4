package simulation

import "github.com/discochess/treecache/internal/tile"

// Strategy is a caching policy replayed frame by frame against a trace.
// A Strategy is stateful and used by one goroutine.
type Strategy interface {
	// Name identifies the strategy in reports.
	Name() string

	// Frame requests every visible tile, loading missing tiles and their
	// missing ancestors, and returns what the frame cost.
	Frame(visible []tile.ID) FrameResult

	// Len returns the number of resident tiles.
	Len() int
}

// Factory builds a fresh Strategy for one replay.
type Factory func() (Strategy, error)

// FrameResult counts the work done for one frame.
type FrameResult struct {
	Requests int // Visible tiles requested.
	Hits     int // Visible tiles already resident.
	Loads    int // Tiles fetched, ancestors included.
	Rejected int // Tiles that could not be made resident.

	Evictions int
	// OrphanEvictions counts evicted tiles that had a resident child when
	// the frame ended.
	OrphanEvictions int
}

func (r *FrameResult) add(o FrameResult) {
	r.Requests += o.Requests
	r.Hits += o.Hits
	r.Loads += o.Loads
	r.Rejected += o.Rejected
	r.Evictions += o.Evictions
	r.OrphanEvictions += o.OrphanEvictions
}

// path returns the root-to-id chain of tiles, id included.
func path(id tile.ID) []tile.ID {
	return append(id.Ancestors(), id)
}
