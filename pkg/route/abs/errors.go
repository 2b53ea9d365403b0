package abs

import "errors"

// Routing errors.
var (
	// ErrNoRouteFound indicates that the search exhausted every reachable
	// position without touching the destination.
	ErrNoRouteFound = errors.New("no route found")

	// ErrBlocked indicates an attempt to occupy a cell blocked for
	// another net.
	ErrBlocked = errors.New("location is blocked by another net")

	// ErrOccupied indicates an attempt to occupy a cell owned by another
	// net.
	ErrOccupied = errors.New("location is occupied by another net")
)
