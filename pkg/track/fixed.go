package track

import (
	"fmt"

	"github.com/tracelayer/gridroute/pkg/geom"
)

// Boundary describes the outermost lane of a fixed track set: either a
// spacing region or a (possibly half-width) track.
type Boundary uint8

const (
	BoundarySpace Boundary = iota
	BoundaryHalfSpace
	BoundaryTrack
	BoundaryHalfTrack
)

// numTracks returns how many indexable tracks the boundary contributes.
func (b Boundary) numTracks() int {
	switch b {
	case BoundaryTrack, BoundaryHalfTrack:
		return 1
	default:
		return 0
	}
}

// width returns the physical width the boundary occupies.
func (b Boundary) width(line, space int64) int64 {
	switch b {
	case BoundarySpace:
		return space
	case BoundaryHalfSpace:
		return space / 2
	case BoundaryTrack:
		return line
	default:
		return line / 2
	}
}

// CenteredTrackParams describes a fixed number of tracks centered within a
// span, with configurable boundary lanes and an alignment grid for the
// leftover margin.
type CenteredTrackParams struct {
	Line  int64
	Space int64
	Num   int
	Span  geom.Span
	Lower Boundary
	Upper Boundary
	Grid  int64
}

// FixedTracks is a finite set of tracks: optional boundary lanes around a
// run of interior tracks separated by Space.
type FixedTracks struct {
	Line           int64
	Space          int64
	BoundarySpace  int64
	InteriorTracks int
	Start          int64
	Lower          Boundary
	Upper          Boundary
	Sign           geom.Sign
}

// FromCenteredTracks computes the fixed track set that centers
// params.Num tracks within params.Span. The leftover margin is split
// evenly between the two boundary spacings and must land on params.Grid.
func FromCenteredTracks(params CenteredTrackParams) FixedTracks {
	lower := params.Lower.numTracks()
	upper := params.Upper.numTracks()
	if params.Num <= lower+upper {
		panic("track: centered track count must exceed the boundary tracks")
	}
	interior := params.Num - lower - upper

	margin := params.Span.Length() -
		params.Lower.width(params.Line, params.Space) -
		params.Upper.width(params.Line, params.Space) -
		params.Line*int64(interior) -
		params.Space*int64(interior-1)
	boundarySpace := margin / 2
	if boundarySpace%params.Grid != 0 {
		panic(fmt.Sprintf("track: boundary spacing %d is off grid for grid %d", boundarySpace, params.Grid))
	}

	return FixedTracks{
		Line:           params.Line,
		Space:          params.Space,
		BoundarySpace:  boundarySpace,
		InteriorTracks: interior,
		Start:          params.Span.Start,
		Lower:          params.Lower,
		Upper:          params.Upper,
		Sign:           geom.Pos,
	}
}

// Len returns the number of indexable tracks, boundary tracks included.
func (f FixedTracks) Len() int {
	return f.Lower.numTracks() + f.InteriorTracks + f.Upper.numTracks()
}

// Index returns the physical span of track i. Panics if i is out of range.
func (f FixedTracks) Index(i int) geom.Span {
	n := f.Len()
	if i < 0 || i >= n {
		panic(fmt.Sprintf("track: index %d out of bounds for %d tracks", i, n))
	}
	sgn := f.Sign.Int()
	lowerWidth := f.Lower.width(f.Line, f.Space)

	if i < f.Lower.numTracks() {
		return geom.NewSpan(f.Start, f.Start+sgn*lowerWidth)
	}
	i -= f.Lower.numTracks()

	if f.InteriorTracks == 0 {
		start := f.Start + sgn*(lowerWidth+2*f.BoundarySpace)
		return geom.NewSpan(start, start+sgn*f.Upper.width(f.Line, f.Space))
	}

	if i >= f.InteriorTracks {
		start := f.Start + sgn*(lowerWidth+f.BoundarySpace+
			(f.Line+f.Space)*int64(f.InteriorTracks-1)+f.Line+f.BoundarySpace)
		return geom.NewSpan(start, start+sgn*f.Upper.width(f.Line, f.Space))
	}

	start := f.Start + sgn*(lowerWidth+f.BoundarySpace+(f.Line+f.Space)*int64(i))
	return geom.NewSpan(start, start+sgn*f.Line)
}

// Spans returns the spans of all tracks in index order.
func (f FixedTracks) Spans() []geom.Span {
	out := make([]geom.Span, f.Len())
	for i := range out {
		out[i] = f.Index(i)
	}
	return out
}
