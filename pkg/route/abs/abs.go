// Package abs provides a greedy abstract router over a multi-layer track
// grid.
//
// The router sees the world as a stack of layers, each carrying wires in a
// single direction. Layer 0 defines the base grid: an nx-by-ny lattice of
// track intersections. Coarser layers run at an integer multiple of the base
// pitch (their grid space) and only own the lattice points whose cross
// coordinate is a multiple of that grid space.
//
// A position on the lattice is identified by (layer, tx, ty), where tx and ty
// count vertical and horizontal base tracks. Cells are Empty, Blocked, or
// Occupied by a net. Occupied cells belong to connection groups: maximal sets
// of positions known to be electrically connected. Routing for a net may
// travel through that net's own cells and may jump between members of a
// connection group, which lets a route reuse wiring placed by earlier routes
// of the same net.
//
// Routes are found by breadth-first search and are returned as a sequence of
// lattice steps. Callers translate steps into physical geometry; this package
// never deals in physical coordinates.
package abs

import "github.com/tracelayer/gridroute/pkg/geom"

// Layer indexes a routing layer, from 0 at the bottom of the stack.
type Layer int

// Net identifies a logical net. Values are allocated by [NetInfo] and are
// never reused.
type Net int

// ConnGroup identifies a set of positions known to be electrically connected.
type ConnGroup int

// Pos is a position on the routing lattice. Tx counts vertical base tracks
// (x coordinates) and Ty counts horizontal base tracks (y coordinates).
type Pos struct {
	Layer Layer
	Tx    int
	Ty    int
}

// Coord returns the lattice coordinate along d: Tx for [geom.Horiz] and Ty
// for [geom.Vert].
func (p Pos) Coord(d geom.Dir) int {
	if d == geom.Horiz {
		return p.Tx
	}
	return p.Ty
}

// WithCoord returns a copy of p with the coordinate along d replaced by v.
func (p Pos) WithCoord(d geom.Dir, v int) Pos {
	if d == geom.Horiz {
		p.Tx = v
	} else {
		p.Ty = v
	}
	return p
}

// Step is one element of a route. Jump marks a step that teleported through a
// connection group rather than moving to an adjacent lattice cell; the wiring
// between a jump step and its predecessor already exists.
type Step struct {
	Pos
	Jump bool
}

// Route is a sequence of lattice steps. Consecutive steps are adjacent on the
// lattice except across jumps.
type Route []Step

// PosSpan is a rectangular region of lattice positions on a single layer.
// Bounds are inclusive.
type PosSpan struct {
	Layer Layer
	TxMin int
	TxMax int
	TyMin int
	TyMax int
}

// SpanFromPos returns the single-position span covering p.
func SpanFromPos(p Pos) PosSpan {
	return PosSpan{Layer: p.Layer, TxMin: p.Tx, TxMax: p.Tx, TyMin: p.Ty, TyMax: p.Ty}
}

// Range returns the inclusive bounds of s along d.
func (s PosSpan) Range(d geom.Dir) (lo, hi int) {
	if d == geom.Horiz {
		return s.TxMin, s.TxMax
	}
	return s.TyMin, s.TyMax
}

// Contains reports whether p lies within s. The layer must match.
func (s PosSpan) Contains(p Pos) bool {
	return p.Layer == s.Layer &&
		p.Tx >= s.TxMin && p.Tx <= s.TxMax &&
		p.Ty >= s.TyMin && p.Ty <= s.TyMax
}

// spanAlong builds a span on layer l whose coordinate along d runs lo..hi and
// whose cross coordinate is fixed at cross.
func spanAlong(l Layer, d geom.Dir, lo, hi, cross int) PosSpan {
	if d == geom.Horiz {
		return PosSpan{Layer: l, TxMin: lo, TxMax: hi, TyMin: cross, TyMax: cross}
	}
	return PosSpan{Layer: l, TxMin: cross, TxMax: cross, TyMin: lo, TyMax: hi}
}
