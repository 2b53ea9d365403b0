package abs

import "github.com/tracelayer/gridroute/pkg/geom"

// Segment is a maximal run of unused track on a single layer, rounded to the
// lattice points shared with neighboring layers so that both ends can accept
// a via.
type Segment struct {
	// Span covers the run on the lattice.
	Span PosSpan
	// TrackID is the ordinal of the track within its layer.
	TrackID int
	// LowerBoundary is set when the run reaches the low edge of the
	// routing region, UpperBoundary when it reaches the high edge.
	LowerBoundary bool
	UpperBoundary bool
}

// Segments returns the unused track segments of layer l, one entry per
// maximal run of empty cells. Runs are trimmed to the coarsest neighboring
// layer's pitch; runs too short to span a single trimmed interval are
// dropped.
func (r *Router) Segments(l Layer) []Segment {
	li := r.LayerInfo(l)
	dir := li.dir

	spacing := 1
	if int(l) > 0 {
		spacing = max(spacing, r.layers[l-1].gridSpace)
	}
	if int(l)+1 < len(r.layers) {
		spacing = max(spacing, r.layers[l+1].gridSpace)
	}

	points := li.numParallelGridPoints()
	minGrid := 0
	maxGrid := roundDown(points-1, spacing)

	var segments []Segment
	for i := 0; i < li.NumTracks(); i++ {
		tid := i * li.gridSpace
		emit := func(pMin, pMax int) {
			pMinR := roundUp(pMin, spacing)
			pMaxR := roundDown(pMax, spacing)
			if pMinR >= pMaxR {
				return
			}
			segments = append(segments, Segment{
				Span:          spanAlong(l, dir, pMinR, pMaxR, tid),
				TrackID:       i,
				LowerBoundary: pMinR <= minGrid,
				UpperBoundary: pMaxR >= maxGrid,
			})
		}
		runStart := -1
		for p := 0; p < points; p++ {
			tx, ty := p, tid
			if dir == geom.Vert {
				tx, ty = tid, p
			}
			if li.State(tx, ty).IsEmpty() {
				if runStart < 0 {
					runStart = p
				}
				continue
			}
			if runStart >= 0 {
				emit(runStart, p-1)
				runStart = -1
			}
		}
		if runStart >= 0 {
			emit(runStart, points-1)
		}
	}
	return segments
}

// roundUp rounds x up to the nearest multiple of grid.
func roundUp(x, grid int) int {
	return (x + grid - 1) / grid * grid
}

// roundDown rounds x down to the nearest multiple of grid.
func roundDown(x, grid int) int {
	return x / grid * grid
}
