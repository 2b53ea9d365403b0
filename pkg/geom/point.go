package geom

import "fmt"

// Point is a point in two-dimensional layout space.
type Point struct {
	X, Y int64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int64) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// PointFromDirCoords builds a point from a coordinate along dir and a
// coordinate along the perpendicular axis.
func PointFromDirCoords(dir Dir, along, across int64) Point {
	if dir == Horiz {
		return Point{X: along, Y: across}
	}
	return Point{X: across, Y: along}
}

// Coord returns the point's coordinate along the given direction.
func (p Point) Coord(dir Dir) int64 {
	if dir == Horiz {
		return p.X
	}
	return p.Y
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// SnapToGrid snaps both coordinates to the nearest multiple of grid.
func (p Point) SnapToGrid(grid int64) Point {
	return Point{X: SnapToGrid(p.X, grid), Y: SnapToGrid(p.Y, grid)}
}

// SnapXToGrid snaps only the x-coordinate to the grid.
func (p Point) SnapXToGrid(grid int64) Point {
	return Point{X: SnapToGrid(p.X, grid), Y: p.Y}
}

// SnapYToGrid snaps only the y-coordinate to the grid.
func (p Point) SnapYToGrid(grid int64) Point {
	return Point{X: p.X, Y: SnapToGrid(p.Y, grid)}
}
