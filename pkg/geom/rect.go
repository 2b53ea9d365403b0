package geom

import (
	"fmt"
	"slices"
)

// Rect is an axis-aligned rectangle, stored as its lower-left (Min) and
// upper-right (Max) corners. A well-formed rect has Min.X <= Max.X and
// Min.Y <= Max.Y; [NewRect] canonicalizes its arguments.
type Rect struct {
	Min, Max Point
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d)-(%d, %d)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// NewRect returns the rectangle spanned by the two points, in any order.
func NewRect(p0, p1 Point) Rect {
	return Rect{
		Min: Point{X: min(p0.X, p1.X), Y: min(p0.Y, p1.Y)},
		Max: Point{X: max(p0.X, p1.X), Y: max(p0.Y, p1.Y)},
	}
}

// RectFromSpans returns the rectangle with the given horizontal and
// vertical spans.
func RectFromSpans(h, v Span) Rect {
	return Rect{
		Min: Point{X: h.Start, Y: v.Start},
		Max: Point{X: h.Stop, Y: v.Stop},
	}
}

// RectFromDirSpans returns the rectangle whose span along dir is along and
// whose perpendicular span is across.
func RectFromDirSpans(dir Dir, along, across Span) Rect {
	if dir == Horiz {
		return RectFromSpans(along, across)
	}
	return RectFromSpans(across, along)
}

// RectFromPoint returns the zero-area rectangle at p.
func RectFromPoint(p Point) Rect {
	return Rect{Min: p, Max: p}
}

// Left returns the left x-coordinate.
func (r Rect) Left() int64 { return r.Min.X }

// Right returns the right x-coordinate.
func (r Rect) Right() int64 { return r.Max.X }

// Bottom returns the bottom y-coordinate.
func (r Rect) Bottom() int64 { return r.Min.Y }

// Top returns the top y-coordinate.
func (r Rect) Top() int64 { return r.Max.Y }

// HSpan returns the horizontal span.
func (r Rect) HSpan() Span { return Span{Start: r.Min.X, Stop: r.Max.X} }

// VSpan returns the vertical span.
func (r Rect) VSpan() Span { return Span{Start: r.Min.Y, Stop: r.Max.Y} }

// Span returns the rectangle's span along the given direction.
func (r Rect) Span(dir Dir) Span {
	if dir == Horiz {
		return r.HSpan()
	}
	return r.VSpan()
}

// WithHSpan replaces the horizontal span.
func (r Rect) WithHSpan(h Span) Rect {
	return RectFromSpans(h, r.VSpan())
}

// WithVSpan replaces the vertical span.
func (r Rect) WithVSpan(v Span) Rect {
	return RectFromSpans(r.HSpan(), v)
}

// WithSpan replaces the span along the given direction.
func (r Rect) WithSpan(dir Dir, s Span) Rect {
	if dir == Horiz {
		return r.WithHSpan(s)
	}
	return r.WithVSpan(s)
}

// Width returns the horizontal extent.
func (r Rect) Width() int64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() int64 { return r.Max.Y - r.Min.Y }

// Length returns the extent along the given direction.
func (r Rect) Length(dir Dir) int64 { return r.Span(dir).Length() }

// Area returns width times height.
func (r Rect) Area() int64 { return r.Width() * r.Height() }

// Center returns the center point, rounded toward Min.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// LongerDir returns the direction of the longer side, Vert when equal.
func (r Rect) LongerDir() Dir {
	if r.Width() > r.Height() {
		return Horiz
	}
	return Vert
}

// ShorterDir returns the direction of the shorter side.
func (r Rect) ShorterDir() Dir {
	return r.LongerDir().Other()
}

// Corner returns the named corner point.
func (r Rect) Corner(c Corner) Point {
	switch c {
	case LowerLeft:
		return r.Min
	case LowerRight:
		return Point{X: r.Max.X, Y: r.Min.Y}
	case UpperLeft:
		return Point{X: r.Min.X, Y: r.Max.Y}
	default:
		return r.Max
	}
}

// Side returns the coordinate of the named side.
func (r Rect) Side(side Side) int64 {
	switch side {
	case Top:
		return r.Max.Y
	case Bot:
		return r.Min.Y
	case Right:
		return r.Max.X
	default:
		return r.Min.X
	}
}

// Edge returns the named side as an [Edge].
func (r Rect) Edge(side Side) Edge {
	return Edge{Side: side, Coord: r.Side(side), Span: r.Span(side.EdgeDir())}
}

// Expand grows the rectangle by amount on all four sides.
func (r Rect) Expand(amount int64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - amount, Y: r.Min.Y - amount},
		Max: Point{X: r.Max.X + amount, Y: r.Max.Y + amount},
	}
}

// Shrink moves all four sides inward by amount. Panics if the rectangle is
// too small.
func (r Rect) Shrink(amount int64) Rect {
	if 2*amount > r.Width() || 2*amount > r.Height() {
		panic("geom: cannot shrink rect below zero size")
	}
	return Rect{
		Min: Point{X: r.Min.X + amount, Y: r.Min.Y + amount},
		Max: Point{X: r.Max.X - amount, Y: r.Max.Y - amount},
	}
}

// ExpandDir grows the rectangle by amount on both sides along dir.
func (r Rect) ExpandDir(dir Dir, amount int64) Rect {
	return r.WithSpan(dir, r.Span(dir).ExpandAll(amount))
}

// ExpandSide grows the rectangle by amount on a single side.
func (r Rect) ExpandSide(side Side, amount int64) Rect {
	return r.WithSpan(side.CoordDir(), r.Span(side.CoordDir()).Expand(side.Sign(), amount))
}

// Double grows the rectangle by a factor of 2 toward the given side.
// Sometimes useful for half-track geometry.
func (r Rect) Double(side Side) Rect {
	dir := side.CoordDir()
	sp := r.Span(dir)
	return r.WithSpan(dir, SpanWithPointAndLength(side.Sign().Other(), sp.Point(side.Sign().Other()), 2*sp.Length()))
}

// Union returns the minimal rectangle covering both rectangles.
func (r Rect) Union(other Rect) Rect {
	return RectFromSpans(r.HSpan().Union(other.HSpan()), r.VSpan().Union(other.VSpan()))
}

// Intersection returns the overlap of the two rectangles. ok is false when
// they are disjoint. A shared edge yields a zero-width or zero-height
// rectangle with ok true.
func (r Rect) Intersection(other Rect) (Rect, bool) {
	h, ok := r.HSpan().Intersection(other.HSpan())
	if !ok {
		return Rect{}, false
	}
	v, ok := r.VSpan().Intersection(other.VSpan())
	if !ok {
		return Rect{}, false
	}
	return RectFromSpans(h, v), true
}

// Overlaps reports whether the rectangles share at least one point.
func (r Rect) Overlaps(other Rect) bool {
	return r.HSpan().Intersects(other.HSpan()) && r.VSpan().Intersects(other.VSpan())
}

// Contains reports whether other lies entirely within r.
func (r Rect) Contains(other Rect) bool {
	return r.HSpan().Contains(other.HSpan()) && r.VSpan().Contains(other.VSpan())
}

// ContainsPoint reports whether p lies within r, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return r.HSpan().ContainsPoint(p.X) && r.VSpan().ContainsPoint(p.Y)
}

// InnerSpan returns the span between the inner two of the four edges of the
// two rectangles along dir.
func (r Rect) InnerSpan(other Rect, dir Dir) Span {
	e := r.sortedEdges(other, dir)
	return Span{Start: e[1], Stop: e[2]}
}

// OuterSpan returns the span between the outer two of the four edges of the
// two rectangles along dir.
func (r Rect) OuterSpan(other Rect, dir Dir) Span {
	e := r.sortedEdges(other, dir)
	return Span{Start: e[0], Stop: e[3]}
}

func (r Rect) sortedEdges(other Rect, dir Dir) [4]int64 {
	e := [4]int64{
		r.Span(dir).Start, r.Span(dir).Stop,
		other.Span(dir).Start, other.Span(dir).Stop,
	}
	slices.Sort(e[:])
	return e
}

// EdgeCloserTo returns the edge coordinate along dir closer to x.
func (r Rect) EdgeCloserTo(x int64, dir Dir) int64 {
	sp := r.Span(dir)
	if abs64(x-sp.Start) <= abs64(x-sp.Stop) {
		return sp.Start
	}
	return sp.Stop
}

// EdgeFartherFrom returns the edge coordinate along dir farther from x.
func (r Rect) EdgeFartherFrom(x int64, dir Dir) int64 {
	sp := r.Span(dir)
	if abs64(x-sp.Start) <= abs64(x-sp.Stop) {
		return sp.Stop
	}
	return sp.Start
}

// Translate shifts the rectangle by p.
func (r Rect) Translate(p Point) Rect {
	return Rect{Min: r.Min.Add(p), Max: r.Max.Add(p)}
}

// SnapToGrid snaps all corners to the given grid. The result may have zero
// area.
func (r Rect) SnapToGrid(grid int64) Rect {
	return NewRect(r.Min.SnapToGrid(grid), r.Max.SnapToGrid(grid))
}

// Edge is one edge of an axis-aligned rectangle: the side it belongs to,
// its coordinate along that side's axis, and its span along the
// perpendicular axis.
type Edge struct {
	Side  Side
	Coord int64
	Span  Span
}

// NormDir returns the direction perpendicular to the edge.
func (e Edge) NormDir() Dir {
	return e.Side.CoordDir()
}

// EdgeDir returns the direction parallel to the edge.
func (e Edge) EdgeDir() Dir {
	return e.Side.EdgeDir()
}

// WithSpan returns the edge with a replacement span.
func (e Edge) WithSpan(s Span) Edge {
	return Edge{Side: e.Side, Coord: e.Coord, Span: s}
}

// Offset returns the edge moved the given distance away from its
// rectangle: left edges move left, top edges move up, and so on.
func (e Edge) Offset(d int64) Edge {
	return Edge{Side: e.Side, Coord: e.Coord + e.Side.Sign().Int()*d, Span: e.Span}
}
