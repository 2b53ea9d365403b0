// Package track provides track generators for routing layers: evenly
// spaced lanes described by a line width, a spacing, a starting coordinate,
// and a growth direction.
//
// A track generator is a pure function library: it maps track indices to
// physical spans and physical coordinates back to track indices. The
// routing packages use it pervasively to translate between grid space and
// layout space.
package track

import "github.com/tracelayer/gridroute/pkg/geom"

// Locator selects a track relative to a coordinate. If the coordinate is
// already on the requested edge of a track, that track is selected.
type Locator uint8

const (
	// Nearest selects the track closest to the coordinate.
	Nearest Locator = iota
	// StartsBefore selects the nearest track starting at or before the
	// coordinate.
	StartsBefore
	// StartsAfter selects the nearest track starting at or beyond the
	// coordinate.
	StartsAfter
	// EndsBefore selects the nearest track ending at or before the
	// coordinate.
	EndsBefore
	// EndsAfter selects the nearest track ending at or beyond the
	// coordinate.
	EndsAfter
)

func (l Locator) String() string {
	switch l {
	case Nearest:
		return "nearest"
	case StartsBefore:
		return "starts-before"
	case StartsAfter:
		return "starts-after"
	case EndsBefore:
		return "ends-before"
	default:
		return "ends-after"
	}
}

// UniformTracks is an unbounded set of evenly spaced tracks. Track n
// occupies the span of width Line whose start is offset n pitches from
// Start, growing in the direction given by Sign.
type UniformTracks struct {
	Line  int64
	Space int64
	Start int64
	Sign  geom.Sign
}

// Pitch returns the center-to-center distance between adjacent tracks.
func (u UniformTracks) Pitch() int64 {
	return u.Line + u.Space
}

// Index returns the physical span of track n. Negative indices address
// tracks before Start.
func (u UniformTracks) Index(n int64) geom.Span {
	sgn := u.Sign.Int()
	start := u.Start + sgn*n*u.Pitch()
	return geom.NewSpan(start, start+sgn*u.Line)
}

// TrackAt returns the index of the track whose pitch cell contains pos.
func (u UniformTracks) TrackAt(pos int64) int64 {
	return (pos - u.Start) / u.Pitch()
}

// TrackWithLoc returns the index of the track selected by loc relative to
// pos.
func (u UniformTracks) TrackWithLoc(loc Locator, pos int64) int64 {
	switch loc {
	case Nearest:
		before := u.TrackWithLoc(StartsBefore, pos)
		after := u.TrackWithLoc(EndsAfter, pos)
		if u.Index(after).DistanceTo(pos) < u.Index(before).DistanceTo(pos) {
			return after
		}
		return before
	case StartsBefore:
		return u.TrackAt(pos)
	case StartsAfter:
		return (pos-u.Start-1)/u.Pitch() + 1
	case EndsBefore:
		return u.TrackWithLoc(StartsBefore, pos-u.Line)
	default: // EndsAfter
		return u.TrackWithLoc(StartsAfter, pos-u.Line)
	}
}
