package geom

import "fmt"

// Span is a closed interval on one axis. A well-formed span has
// Start <= Stop; [NewSpan] canonicalizes its arguments.
type Span struct {
	Start, Stop int64
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d]", s.Start, s.Stop)
}

// NewSpan returns the span between a and b, in either order.
func NewSpan(a, b int64) Span {
	if a > b {
		a, b = b, a
	}
	return Span{Start: a, Stop: b}
}

// SpanFromPoint returns the zero-length span at x.
func SpanFromPoint(x int64) Span {
	return Span{Start: x, Stop: x}
}

// SpanWithStartAndLength returns the span [start, start+length].
func SpanWithStartAndLength(start, length int64) Span {
	return Span{Start: start, Stop: start + length}
}

// SpanWithStopAndLength returns the span [stop-length, stop].
func SpanWithStopAndLength(stop, length int64) Span {
	return Span{Start: stop - length, Stop: stop}
}

// SpanWithPointAndLength returns a span of the given length anchored at
// point: for Pos, point is the stop; for Neg, point is the start.
func SpanWithPointAndLength(sign Sign, point, length int64) Span {
	if sign == Pos {
		return SpanWithStopAndLength(point, length)
	}
	return SpanWithStartAndLength(point, length)
}

// SpanFromCenter returns the span of the given even length centered on
// center. Panics if length is negative or odd.
func SpanFromCenter(center, length int64) Span {
	if length < 0 || length%2 != 0 {
		panic("geom: span length must be even and non-negative")
	}
	return Span{Start: center - length/2, Stop: center + length/2}
}

// SpanFromCenterGridded is like [SpanFromCenter] but snaps the start to the
// given grid. length must be a multiple of grid.
func SpanFromCenterGridded(center, length, grid int64) Span {
	if length < 0 || length%2 != 0 {
		panic("geom: span length must be even and non-negative")
	}
	if length%grid != 0 {
		panic("geom: span length must be a multiple of the grid")
	}
	start := SnapToGrid(center-length/2, grid)
	return Span{Start: start, Stop: start + length}
}

// Length returns Stop - Start.
func (s Span) Length() int64 {
	return s.Stop - s.Start
}

// Center returns the midpoint, rounded toward Start.
func (s Span) Center() int64 {
	return (s.Start + s.Stop) / 2
}

// Point returns the start for Neg and the stop for Pos.
func (s Span) Point(sign Sign) int64 {
	if sign == Pos {
		return s.Stop
	}
	return s.Start
}

// DistanceTo returns the distance from the closer endpoint to the point.
func (s Span) DistanceTo(point int64) int64 {
	d0 := abs64(point - s.Start)
	d1 := abs64(point - s.Stop)
	if d0 < d1 {
		return d0
	}
	return d1
}

// Intersects reports whether the two spans share at least one point.
func (s Span) Intersects(other Span) bool {
	return other.Stop >= s.Start && s.Stop >= other.Start
}

// Intersection returns the overlap of the two spans. ok is false when the
// spans are disjoint.
func (s Span) Intersection(other Span) (Span, bool) {
	if !s.Intersects(other) {
		return Span{}, false
	}
	return Span{Start: max(s.Start, other.Start), Stop: min(s.Stop, other.Stop)}, true
}

// Union returns the minimal span covering both spans.
func (s Span) Union(other Span) Span {
	return Span{Start: min(s.Start, other.Start), Stop: max(s.Stop, other.Stop)}
}

// AddPoint returns the minimal span covering s and the point.
func (s Span) AddPoint(pos int64) Span {
	return Span{Start: min(s.Start, pos), Stop: max(s.Stop, pos)}
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Union(other) == s
}

// ContainsPoint reports whether the point lies within s.
func (s Span) ContainsPoint(pos int64) bool {
	return pos >= s.Start && pos <= s.Stop
}

// Expand grows the span by amount on the given end.
func (s Span) Expand(sign Sign, amount int64) Span {
	if sign == Pos {
		return Span{Start: s.Start, Stop: s.Stop + amount}
	}
	return Span{Start: s.Start - amount, Stop: s.Stop}
}

// ExpandAll grows the span by amount on both ends.
func (s Span) ExpandAll(amount int64) Span {
	return Span{Start: s.Start - amount, Stop: s.Stop + amount}
}

// Shrink moves the given end inward by amount. Panics if the span is too
// short.
func (s Span) Shrink(sign Sign, amount int64) Span {
	if s.Length() < amount {
		panic("geom: cannot shrink span below zero length")
	}
	if sign == Pos {
		return Span{Start: s.Start, Stop: s.Stop - amount}
	}
	return Span{Start: s.Start + amount, Stop: s.Stop}
}

// ShrinkAll moves both ends inward by amount. Panics if the span is too
// short.
func (s Span) ShrinkAll(amount int64) Span {
	if s.Length() < 2*amount {
		panic("geom: cannot shrink span below zero length")
	}
	return Span{Start: s.Start + amount, Stop: s.Stop - amount}
}

// Translate shifts both ends by amount.
func (s Span) Translate(amount int64) Span {
	return Span{Start: s.Start + amount, Stop: s.Stop + amount}
}

// MinDistance returns the gap between the two spans, or 0 if they touch or
// overlap.
func (s Span) MinDistance(other Span) int64 {
	return max(0, s.Union(other).Length()-s.Length()-other.Length())
}

// MergeSpans returns the minimal span covering all the given spans. Panics
// on an empty slice.
func MergeSpans(spans []Span) Span {
	if len(spans) == 0 {
		panic("geom: MergeSpans requires at least one span")
	}
	out := spans[0]
	for _, sp := range spans[1:] {
		out = out.Union(sp)
	}
	return out
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
