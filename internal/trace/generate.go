package trace

import (
	"math"
	"math/rand/v2"

	"github.com/discochess/treecache/internal/tile"
)

// Params controls synthetic trace generation.
type Params struct {
	// Frames is the number of frames to generate.
	Frames int
	// MaxLevel is the deepest level the camera zooms to.
	MaxLevel uint8
	// Radius is how many tiles around the focus tile are visible in each
	// direction.
	Radius int
	// Pan scales the per-frame camera movement, in tiles at the current level.
	Pan float64
	// Zoom is the standard deviation of the per-frame level change.
	Zoom float64
	// Seed makes generation deterministic.
	Seed uint64
}

// DefaultParams returns parameters for a short panning and zooming session.
func DefaultParams() Params {
	return Params{
		Frames:   600,
		MaxLevel: 12,
		Radius:   2,
		Pan:      0.5,
		Zoom:     0.25,
		Seed:     1,
	}
}

// Generate produces a deterministic camera trace: the focus point drifts
// across the unit square while the zoom level wanders between 0 and
// MaxLevel. Each frame lists the tiles within Radius of the focus tile.
func Generate(p Params) []Frame {
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	x, y := rng.Float64(), rng.Float64()
	level := float64(p.MaxLevel) / 2

	frames := make([]Frame, 0, p.Frames)
	for i := range p.Frames {
		level = math.Max(0, math.Min(float64(p.MaxLevel), level+rng.NormFloat64()*p.Zoom))
		lv := uint8(math.Round(level))
		n := 1 << lv
		cell := 1 / float64(n)

		x = wrap(x + rng.NormFloat64()*cell*p.Pan)
		y = wrap(y + rng.NormFloat64()*cell*p.Pan)

		cx := min(int(x*float64(n)), n-1)
		cy := min(int(y*float64(n)), n-1)

		var visible []tile.ID
		for ty := cy - p.Radius; ty <= cy+p.Radius; ty++ {
			for tx := cx - p.Radius; tx <= cx+p.Radius; tx++ {
				if tx < 0 || ty < 0 || tx >= n || ty >= n {
					continue
				}
				visible = append(visible, tile.ID{Level: lv, X: uint32(tx), Y: uint32(ty)})
			}
		}
		frames = append(frames, Frame{Index: i, Visible: visible})
	}
	return frames
}

func wrap(v float64) float64 {
	return v - math.Floor(v)
}
