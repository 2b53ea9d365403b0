// Package geom provides integer Manhattan geometry primitives for layout
// generation: points, 1-D spans, axis-aligned rectangles, and the
// direction/side/corner vocabulary the routing packages are written in.
//
// All coordinates are int64 layout-database units. Shapes are plain value
// types: operations return new values and never mutate their receivers.
//
// # Conventions
//
// A [Span] is a closed interval on one axis with Start <= Stop. A [Rect] is
// the product of a horizontal and a vertical span, stored as its lower-left
// and upper-right corners. Constructors canonicalize their arguments;
// struct literals are expected to already be in canonical form.
//
// # Directions and sides
//
// [Dir] distinguishes the two routing directions. [Side] names the four
// edges of a rectangle and converts to the direction/sign pair that moving
// toward that side corresponds to. [Sign] is the orientation along a single
// axis.
package geom

import "fmt"

// Dir is an axis direction in the plane.
type Dir uint8

const (
	// Horiz is the direction of increasing x.
	Horiz Dir = iota
	// Vert is the direction of increasing y.
	Vert
)

// Other returns the perpendicular direction.
func (d Dir) Other() Dir {
	if d == Horiz {
		return Vert
	}
	return Horiz
}

// Short returns a one-letter form, "h" or "v".
func (d Dir) Short() string {
	if d == Horiz {
		return "h"
	}
	return "v"
}

func (d Dir) String() string {
	if d == Horiz {
		return "horiz"
	}
	return "vert"
}

// MarshalText implements encoding.TextMarshaler.
func (d Dir) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts
// "horiz", "horizontal" or "h", and "vert", "vertical" or "v".
func (d *Dir) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horiz", "horizontal", "h":
		*d = Horiz
	case "vert", "vertical", "v":
		*d = Vert
	default:
		return fmt.Errorf("invalid direction %q", text)
	}
	return nil
}

// Sign is an orientation along a single axis.
type Sign uint8

const (
	// Pos points toward increasing coordinates.
	Pos Sign = iota
	// Neg points toward decreasing coordinates.
	Neg
)

// Other returns the opposite sign.
func (s Sign) Other() Sign {
	if s == Pos {
		return Neg
	}
	return Pos
}

// Int returns +1 for Pos and -1 for Neg.
func (s Sign) Int() int64 {
	if s == Pos {
		return 1
	}
	return -1
}

func (s Sign) String() string {
	if s == Pos {
		return "+"
	}
	return "-"
}

// Side is one of the four sides of an axis-aligned rectangle.
type Side uint8

const (
	Top Side = iota
	Right
	Bot
	Left
)

// AllSides lists the sides in declaration order.
var AllSides = [4]Side{Top, Right, Bot, Left}

// CoordDir returns the axis of the coordinate that locates this side.
// Top and bottom edges are y-coordinates (Vert); left and right edges are
// x-coordinates (Horiz).
func (s Side) CoordDir() Dir {
	switch s {
	case Top, Bot:
		return Vert
	default:
		return Horiz
	}
}

// EdgeDir returns the direction the side's edge runs in. Top and bottom
// edges are horizontal segments; left and right edges are vertical.
func (s Side) EdgeDir() Dir {
	return s.CoordDir().Other()
}

// Other returns the opposite side.
func (s Side) Other() Side {
	switch s {
	case Top:
		return Bot
	case Bot:
		return Top
	case Left:
		return Right
	default:
		return Left
	}
}

// Sign returns the sign of motion toward this side.
func (s Side) Sign() Sign {
	switch s {
	case Top, Right:
		return Pos
	default:
		return Neg
	}
}

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bot:
		return "bot"
	default:
		return "left"
	}
}

// SideWith returns the side reached by moving with the given sign along the
// given direction.
func SideWith(d Dir, sg Sign) Side {
	if d == Horiz {
		if sg == Pos {
			return Right
		}
		return Left
	}
	if sg == Pos {
		return Top
	}
	return Bot
}

// SidesOf returns the two sides that bound the given direction, negative
// side first.
func SidesOf(d Dir) [2]Side {
	if d == Horiz {
		return [2]Side{Left, Right}
	}
	return [2]Side{Bot, Top}
}

// Corner is one of the four corners of an axis-aligned rectangle.
type Corner uint8

const (
	LowerLeft Corner = iota
	LowerRight
	UpperLeft
	UpperRight
)

// AllCorners lists the corners in declaration order.
var AllCorners = [4]Corner{LowerLeft, LowerRight, UpperLeft, UpperRight}

// Side returns the side of the corner along the given direction: its x side
// for Horiz, its y side for Vert.
func (c Corner) Side(d Dir) Side {
	if d == Horiz {
		switch c {
		case LowerLeft, UpperLeft:
			return Left
		default:
			return Right
		}
	}
	switch c {
	case LowerLeft, LowerRight:
		return Bot
	default:
		return Top
	}
}

func (c Corner) String() string {
	switch c {
	case LowerLeft:
		return "lower-left"
	case LowerRight:
		return "lower-right"
	case UpperLeft:
		return "upper-left"
	default:
		return "upper-right"
	}
}

// Sides associates a value with each of the four sides.
type Sides[T any] struct {
	Top, Right, Bot, Left T
}

// UniformSides returns a Sides with the same value on every side.
func UniformSides[T any](v T) Sides[T] {
	return Sides[T]{Top: v, Right: v, Bot: v, Left: v}
}

// Get returns the value for the given side.
func (s Sides[T]) Get(side Side) T {
	switch side {
	case Top:
		return s.Top
	case Right:
		return s.Right
	case Bot:
		return s.Bot
	default:
		return s.Left
	}
}

// Set stores the value for the given side.
func (s *Sides[T]) Set(side Side, v T) {
	switch side {
	case Top:
		s.Top = v
	case Right:
		s.Right = v
	case Bot:
		s.Bot = v
	default:
		s.Left = v
	}
}

// SnapToGrid snaps pos to the nearest multiple of grid, rounding half-grid
// remainders down. grid must be positive; negative positions snap correctly.
func SnapToGrid(pos, grid int64) int64 {
	if grid <= 0 {
		panic("geom: grid must be positive")
	}
	rem := ((pos % grid) + grid) % grid
	if rem <= grid/2 {
		return pos - rem
	}
	return pos + grid - rem
}
