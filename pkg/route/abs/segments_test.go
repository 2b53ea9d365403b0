package abs

import (
	"testing"

	"github.com/tracelayer/gridroute/pkg/geom"
)

// segmentRouter builds an 8x4 lattice with a fine horizontal layer under a
// coarse vertical one, so horizontal segments round to even x coordinates.
func segmentRouter() *Router {
	return NewRouter([]LayerConfig{
		{GridSpace: 1, Dir: geom.Horiz},
		{GridSpace: 2, Dir: geom.Vert},
	}, 8, 4)
}

func TestSegmentsEmptyLayer(t *testing.T) {
	r := segmentRouter()
	segments := r.Segments(0)
	if len(segments) != 4 {
		t.Fatalf("Segments(0) returned %d segments, want 4", len(segments))
	}
	for i, seg := range segments {
		if seg.TrackID != i {
			t.Errorf("segment %d has track id %d", i, seg.TrackID)
		}
		// Runs span the full lattice but round down to the last point
		// shared with the coarse layer above.
		want := PosSpan{Layer: 0, TxMin: 0, TxMax: 6, TyMin: i, TyMax: i}
		if seg.Span != want {
			t.Errorf("segment %d span = %+v, want %+v", i, seg.Span, want)
		}
		if !seg.LowerBoundary || !seg.UpperBoundary {
			t.Errorf("segment %d boundaries = (%v, %v), want both true",
				i, seg.LowerBoundary, seg.UpperBoundary)
		}
	}
}

func TestSegmentsSplitAroundBlock(t *testing.T) {
	r := segmentRouter()
	r.Block(Pos{Layer: 0, Tx: 3, Ty: 1})

	var track1 []Segment
	for _, seg := range r.Segments(0) {
		if seg.TrackID == 1 {
			track1 = append(track1, seg)
		}
	}
	if len(track1) != 2 {
		t.Fatalf("track 1 has %d segments, want 2", len(track1))
	}

	left, right := track1[0], track1[1]
	if want := (PosSpan{Layer: 0, TxMin: 0, TxMax: 2, TyMin: 1, TyMax: 1}); left.Span != want {
		t.Errorf("left segment span = %+v, want %+v", left.Span, want)
	}
	if !left.LowerBoundary || left.UpperBoundary {
		t.Errorf("left segment boundaries = (%v, %v), want (true, false)",
			left.LowerBoundary, left.UpperBoundary)
	}
	if want := (PosSpan{Layer: 0, TxMin: 4, TxMax: 6, TyMin: 1, TyMax: 1}); right.Span != want {
		t.Errorf("right segment span = %+v, want %+v", right.Span, want)
	}
	if right.LowerBoundary || !right.UpperBoundary {
		t.Errorf("right segment boundaries = (%v, %v), want (false, true)",
			right.LowerBoundary, right.UpperBoundary)
	}
}

func TestSegmentsDropShortRuns(t *testing.T) {
	r := segmentRouter()
	// Leave a single empty cell on track 2: too short to land a via.
	r.BlockSpan(PosSpan{Layer: 0, TxMin: 1, TxMax: 7, TyMin: 2, TyMax: 2})
	for _, seg := range r.Segments(0) {
		if seg.TrackID == 2 {
			t.Errorf("track 2 produced segment %+v, want none", seg)
		}
	}
}

func TestSegmentsCoarseLayer(t *testing.T) {
	r := segmentRouter()
	// Off-track blocks on the fine layer do not affect the coarse one.
	r.Block(Pos{Layer: 0, Tx: 3, Ty: 1})

	segments := r.Segments(1)
	if len(segments) != 4 {
		t.Fatalf("Segments(1) returned %d segments, want 4", len(segments))
	}
	// The coarse layer owns every second vertical track: x = 0, 2, 4, 6.
	for i, seg := range segments {
		want := PosSpan{Layer: 1, TxMin: 2 * i, TxMax: 2 * i, TyMin: 0, TyMax: 3}
		if seg.Span != want {
			t.Errorf("segment %d span = %+v, want %+v", i, seg.Span, want)
		}
	}
}

func TestSegmentsRespectOccupation(t *testing.T) {
	r := segmentRouter()
	n := r.GetUnusedNet()
	if err := r.OccupySpan(PosSpan{Layer: 0, TxMin: 0, TxMax: 7, TyMin: 3, TyMax: 3}, n); err != nil {
		t.Fatalf("OccupySpan() returned %v", err)
	}
	for _, seg := range r.Segments(0) {
		if seg.TrackID == 3 {
			t.Errorf("occupied track produced segment %+v, want none", seg)
		}
	}
}

func TestRounding(t *testing.T) {
	tests := []struct {
		x, grid  int
		up, down int
	}{
		{0, 4, 0, 0},
		{1, 4, 4, 0},
		{15, 4, 16, 12},
		{16, 4, 16, 16},
		{17, 4, 20, 16},
		{7, 1, 7, 7},
	}
	for _, tt := range tests {
		if got := roundUp(tt.x, tt.grid); got != tt.up {
			t.Errorf("roundUp(%d, %d) = %d, want %d", tt.x, tt.grid, got, tt.up)
		}
		if got := roundDown(tt.x, tt.grid); got != tt.down {
			t.Errorf("roundDown(%d, %d) = %d, want %d", tt.x, tt.grid, got, tt.down)
		}
	}
}
