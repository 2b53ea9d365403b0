package abs

import (
	"fmt"

	"github.com/tracelayer/gridroute/pkg/geom"
)

// LayerConfig describes one routing layer.
type LayerConfig struct {
	// GridSpace is the layer's track pitch as a multiple of the base
	// pitch. Must be at least 1; layer 0 should use 1.
	GridSpace int
	// Dir is the direction wires travel on this layer.
	Dir geom.Dir
}

// LayerInfo holds the occupancy grid of a single layer.
type LayerInfo struct {
	gridSpace int
	dir       geom.Dir
	nx, ny    int
	cells     []State
}

// GridSpace returns the layer's track pitch as a multiple of the base pitch.
func (l *LayerInfo) GridSpace() int { return l.gridSpace }

// Dir returns the direction wires travel on the layer.
func (l *LayerInfo) Dir() geom.Dir { return l.dir }

// State returns the contents of the cell at (tx, ty). It panics if the
// position is outside the lattice.
func (l *LayerInfo) State(tx, ty int) State {
	l.check(tx, ty)
	return l.cells[tx*l.ny+ty]
}

func (l *LayerInfo) setState(tx, ty int, s State) {
	l.check(tx, ty)
	l.cells[tx*l.ny+ty] = s
}

func (l *LayerInfo) check(tx, ty int) {
	if tx < 0 || tx >= l.nx || ty < 0 || ty >= l.ny {
		panic(fmt.Sprintf("abs: position (%d, %d) outside %dx%d lattice", tx, ty, l.nx, l.ny))
	}
}

func (l *LayerInfo) inBounds(tx, ty int) bool {
	return tx >= 0 && tx < l.nx && ty >= 0 && ty < l.ny
}

// NumTracks returns the number of tracks the layer owns. Horizontal layers
// have one track per grid-space-aligned y coordinate, vertical layers one per
// aligned x coordinate.
func (l *LayerInfo) NumTracks() int {
	if l.dir == geom.Horiz {
		return l.ny / l.gridSpace
	}
	return l.nx / l.gridSpace
}

// numParallelGridPoints returns the number of lattice points along each of
// the layer's tracks.
func (l *LayerInfo) numParallelGridPoints() int {
	if l.dir == geom.Horiz {
		return l.nx
	}
	return l.ny
}

// Router is a greedy multi-layer lattice router. It is not safe for
// concurrent use.
type Router struct {
	layers []*LayerInfo
	nets   *NetInfo
}

// NewRouter builds a router over an nx-by-ny base lattice with the given
// layer stack. It panics if the configuration is invalid.
func NewRouter(layers []LayerConfig, nx, ny int) *Router {
	if len(layers) == 0 {
		panic("abs: router needs at least one layer")
	}
	if nx <= 0 || ny <= 0 {
		panic(fmt.Sprintf("abs: invalid lattice size %dx%d", nx, ny))
	}
	r := &Router{
		layers: make([]*LayerInfo, len(layers)),
		nets:   NewNetInfo(),
	}
	for i, cfg := range layers {
		if cfg.GridSpace < 1 {
			panic(fmt.Sprintf("abs: layer %d has grid space %d, want >= 1", i, cfg.GridSpace))
		}
		r.layers[i] = &LayerInfo{
			gridSpace: cfg.GridSpace,
			dir:       cfg.Dir,
			nx:        nx,
			ny:        ny,
			cells:     make([]State, nx*ny),
		}
	}
	return r
}

// NumLayers returns the number of layers in the stack.
func (r *Router) NumLayers() int { return len(r.layers) }

// LayerInfo returns the occupancy grid of layer l. It panics if l is out of
// range.
func (r *Router) LayerInfo(l Layer) *LayerInfo {
	if int(l) < 0 || int(l) >= len(r.layers) {
		panic(fmt.Sprintf("abs: layer %d outside stack of %d", l, len(r.layers)))
	}
	return r.layers[l]
}

// Dir returns the direction wires travel on layer l.
func (r *Router) Dir(l Layer) geom.Dir { return r.LayerInfo(l).dir }

// NetInfo returns the router's net and group allocator.
func (r *Router) NetInfo() *NetInfo { return r.nets }

// GetUnusedNet allocates a fresh net identifier.
func (r *Router) GetUnusedNet() Net { return r.nets.GetUnusedNet() }

func (r *Router) stateAt(p Pos) State {
	return r.LayerInfo(p.Layer).State(p.Tx, p.Ty)
}

func (r *Router) setStateAt(p Pos, s State) {
	r.LayerInfo(p.Layer).setState(p.Tx, p.Ty, s)
}

// Block reserves the cell at pos for no net. Occupied cells are left alone;
// a cell previously blocked with a net exemption loses the exemption.
func (r *Router) Block(pos Pos) {
	switch s := r.stateAt(pos); s.Kind {
	case Empty:
		r.setStateAt(pos, BlockedState())
	case Blocked:
		if s.HasNet {
			r.setStateAt(pos, BlockedState())
		}
	case Occupied:
	}
}

// BlockForNet reserves the cell at pos for net: other nets may neither route
// through nor claim it. Occupied cells are left alone. A cell already
// blocked for a different net becomes blocked for no net at all.
func (r *Router) BlockForNet(pos Pos, net Net) {
	switch s := r.stateAt(pos); s.Kind {
	case Empty:
		r.setStateAt(pos, BlockedForState(net))
	case Blocked:
		if !s.HasNet || s.Net != net {
			r.setStateAt(pos, BlockedState())
		}
	case Occupied:
	}
}

// BlockSpan blocks every cell in span. Positions outside the lattice are
// ignored.
func (r *Router) BlockSpan(span PosSpan) {
	r.eachInSpan(span, func(p Pos) { r.Block(p) })
}

// BlockSpanForNet blocks every cell in span for net. Positions outside the
// lattice are ignored.
func (r *Router) BlockSpanForNet(span PosSpan, net Net) {
	r.eachInSpan(span, func(p Pos) { r.BlockForNet(p, net) })
}

// Occupy claims the cell at pos for net. Claiming a cell the net already
// owns is a no-op. Claiming a cell owned by another net returns
// [ErrOccupied]; claiming a cell blocked without an exemption for net
// returns [ErrBlocked].
//
// A newly claimed cell joins the connection group of any neighboring cell of
// the same net; if several neighboring groups exist they are merged.
func (r *Router) Occupy(pos Pos, net Net) error {
	switch s := r.stateAt(pos); s.Kind {
	case Occupied:
		if s.Net != net {
			return ErrOccupied
		}
		return nil
	case Blocked:
		if !s.exemptFor(net) {
			return ErrBlocked
		}
	case Empty:
	}
	r.claim(pos, net, false)
	return nil
}

// OccupySpan claims every cell in span for net. Positions outside the
// lattice are ignored. On error, cells claimed before the failing cell
// remain claimed.
func (r *Router) OccupySpan(span PosSpan, net Net) error {
	var err error
	r.eachInSpan(span, func(p Pos) {
		if err == nil {
			err = r.Occupy(p, net)
		}
	})
	return err
}

// claim marks pos occupied for net, merging the connection groups of all
// reachable same-net neighbors. The caller must have established that the
// cell is claimable.
func (r *Router) claim(pos Pos, net Net, via bool) {
	var group ConnGroup
	found := false
	r.eachNeighbor(pos, func(n Pos) {
		s := r.stateAt(n)
		if !s.occupiedBy(net) {
			return
		}
		if !found {
			group, found = s.Group, true
		} else if s.Group != group {
			r.mergeGroups(group, s.Group)
		}
	})
	if !found {
		group = r.nets.GetUnusedConnGroup()
	}
	r.setStateAt(pos, OccupiedState(net, group, via))
	r.nets.AddToGroup(pos, group)
}

// mergeGroups relabels every member of src into dst. The src group stays
// allocated but empty, so its identifier is not reused.
func (r *Router) mergeGroups(dst, src ConnGroup) {
	members, ok := r.nets.PosInGroup(src)
	if !ok {
		return
	}
	for _, m := range members {
		s := r.stateAt(m)
		s.Group = dst
		r.setStateAt(m, s)
		r.nets.DeleteFromGroup(m, src)
		r.nets.AddToGroup(m, dst)
	}
}

// eachInSpan visits the in-bounds cells of span in (tx, ty) order.
func (r *Router) eachInSpan(span PosSpan, fn func(Pos)) {
	li := r.LayerInfo(span.Layer)
	txMin, txMax := max(span.TxMin, 0), min(span.TxMax, li.nx-1)
	tyMin, tyMax := max(span.TyMin, 0), min(span.TyMax, li.ny-1)
	for tx := txMin; tx <= txMax; tx++ {
		for ty := tyMin; ty <= tyMax; ty++ {
			fn(Pos{Layer: span.Layer, Tx: tx, Ty: ty})
		}
	}
}

// eachNeighbor visits the positions one legal routing step away from pos, in
// action order.
func (r *Router) eachNeighbor(pos Pos, fn func(Pos)) {
	for _, act := range allActions {
		if r.validAction(pos, act) {
			fn(pos.apply(act))
		}
	}
}
