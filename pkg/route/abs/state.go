package abs

// Kind enumerates the occupancy states of a lattice cell.
type Kind uint8

const (
	// Empty cells are available to any net.
	Empty Kind = iota
	// Occupied cells carry metal belonging to a net.
	Occupied
	// Blocked cells are reserved. A block may exempt a single net, which
	// may still route through or claim the cell.
	Blocked
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// State is the contents of a single lattice cell. The zero value is an empty
// cell.
//
// For Occupied cells, Net is the owning net, Group is the connection group,
// and Via marks cells where the route changes layers. For Blocked cells, Net
// names the exempt net when HasNet is set. The remaining fields are
// meaningless for other kinds.
type State struct {
	Kind   Kind
	Net    Net
	HasNet bool
	Via    bool
	Group  ConnGroup
}

// OccupiedState returns the state of a cell claimed by net in group.
func OccupiedState(net Net, group ConnGroup, via bool) State {
	return State{Kind: Occupied, Net: net, HasNet: true, Via: via, Group: group}
}

// BlockedState returns the state of a cell blocked for every net.
func BlockedState() State {
	return State{Kind: Blocked}
}

// BlockedForState returns the state of a cell blocked for every net except
// net.
func BlockedForState(net Net) State {
	return State{Kind: Blocked, Net: net, HasNet: true}
}

// IsEmpty reports whether the cell is empty.
func (s State) IsEmpty() bool { return s.Kind == Empty }

// IsOccupied reports whether the cell is occupied by some net.
func (s State) IsOccupied() bool { return s.Kind == Occupied }

// IsBlocked reports whether the cell is blocked.
func (s State) IsBlocked() bool { return s.Kind == Blocked }

// occupiedBy reports whether the cell is occupied by net.
func (s State) occupiedBy(net Net) bool {
	return s.Kind == Occupied && s.Net == net
}

// exemptFor reports whether the cell is blocked with an exemption for net.
func (s State) exemptFor(net Net) bool {
	return s.Kind == Blocked && s.HasNet && s.Net == net
}

// passable reports whether a route for net may travel through the cell.
func (s State) passable(net Net) bool {
	return s.Kind == Empty || s.occupiedBy(net) || s.exemptFor(net)
}
