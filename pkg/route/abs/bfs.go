package abs

import "github.com/tracelayer/gridroute/pkg/geom"

// action is one BFS move on the lattice.
type action uint8

const (
	actUp action = iota
	actDown
	actRight
	actLeft
	actZUp
	actZDown
)

// allActions lists moves in expansion order. Planar moves come before layer
// changes so that ties favor staying on the current layer.
var allActions = [...]action{actUp, actDown, actRight, actLeft, actZUp, actZDown}

// apply returns the position one step from p. It does not validate the move.
func (p Pos) apply(act action) Pos {
	switch act {
	case actUp:
		p.Ty++
	case actDown:
		p.Ty--
	case actRight:
		p.Tx++
	case actLeft:
		p.Tx--
	case actZUp:
		p.Layer++
	case actZDown:
		p.Layer--
	}
	return p
}

// validAction reports whether act is a legal move from pos: the target must
// be on the lattice, planar moves must follow the current layer's direction,
// and the target must sit on one of its layer's tracks.
func (r *Router) validAction(pos Pos, act action) bool {
	li := r.layers[pos.Layer]
	switch act {
	case actUp:
		if li.dir == geom.Horiz || pos.Ty+1 >= li.ny {
			return false
		}
	case actDown:
		if li.dir == geom.Horiz || pos.Ty == 0 {
			return false
		}
	case actRight:
		if li.dir == geom.Vert || pos.Tx+1 >= li.nx {
			return false
		}
	case actLeft:
		if li.dir == geom.Vert || pos.Tx == 0 {
			return false
		}
	case actZUp:
		if int(pos.Layer)+1 >= len(r.layers) {
			return false
		}
	case actZDown:
		if pos.Layer == 0 {
			return false
		}
	}
	next := pos.apply(act)
	nli := r.layers[next.Layer]
	return next.Coord(nli.dir.Other())%nli.gridSpace == 0
}

// Route finds a route between src and dst for a freshly allocated net.
// Equivalent to RouteWithNet with a net no other cell belongs to.
func (r *Router) Route(src, dst PosSpan) (Route, error) {
	return r.RouteWithNet(src, dst, r.nets.GetUnusedNet())
}

// RouteWithNet finds a shortest lattice route from src to dst for net and
// marks it occupied.
//
// The search may travel through empty cells, cells already owned by net, and
// cells blocked with an exemption for net. Cells inside dst are always fair
// game, so a route can terminate on a destination that other nets have
// blocked or occupied. When the frontier reaches a cell owned by net, every
// other member of that cell's connection group becomes reachable in a single
// jump.
//
// On success every claimable cell of the path is marked occupied for net and
// all connection groups the path touches are merged into one. Returns
// [ErrNoRouteFound] if the destination is unreachable.
func (r *Router) RouteWithNet(src, dst PosSpan, net Net) (Route, error) {
	r.LayerInfo(src.Layer)
	r.LayerInfo(dst.Layer)

	type meta struct {
		prev Pos
		root bool
		jump bool
	}
	seen := make(map[Pos]meta)
	var queue []Pos

	// Every cell of the source span seeds the search, whatever its state.
	r.eachInSpan(src, func(p Pos) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = meta{root: true}
		queue = append(queue, p)
	})

	push := func(cur, next Pos, jump bool) {
		if _, ok := seen[next]; ok {
			return
		}
		seen[next] = meta{prev: cur, jump: jump}
		queue = append(queue, next)
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if dst.Contains(cur) {
			route := reconstruct(cur, func(p Pos) (Pos, bool, bool) {
				m := seen[p]
				return m.prev, m.root, m.jump
			})
			r.markRoute(route, net)
			return route, nil
		}
		for _, act := range allActions {
			if !r.validAction(cur, act) {
				continue
			}
			next := cur.apply(act)
			if s := r.stateAt(next); s.passable(net) || dst.Contains(next) {
				push(cur, next, false)
			}
		}
		if s := r.stateAt(cur); s.occupiedBy(net) {
			members, _ := r.nets.PosInGroup(s.Group)
			for _, m := range members {
				if m != cur {
					push(cur, m, true)
				}
			}
		}
	}
	return nil, ErrNoRouteFound
}

// reconstruct walks parent links from end back to a seed and returns the
// route in forward order.
func reconstruct(end Pos, lookup func(Pos) (prev Pos, root, jump bool)) Route {
	var rev Route
	for p := end; ; {
		prev, root, jump := lookup(p)
		rev = append(rev, Step{Pos: p, Jump: jump})
		if root {
			break
		}
		p = prev
	}
	route := make(Route, len(rev))
	for i, s := range rev {
		route[len(rev)-1-i] = s
	}
	return route
}

// markRoute claims the cells of route for net. Groups already owned by net
// anywhere on the path are first merged into the earliest one, then each
// claimable cell is occupied; cells owned by other nets (reachable only
// inside the destination span) are left alone.
func (r *Router) markRoute(route Route, net Net) {
	var first ConnGroup
	found := false
	for _, step := range route {
		s := r.stateAt(step.Pos)
		if !s.occupiedBy(net) {
			continue
		}
		if !found {
			first, found = s.Group, true
		} else if s.Group != first {
			r.mergeGroups(first, s.Group)
		}
	}

	vias := routeVias(route)
	for i, step := range route {
		switch s := r.stateAt(step.Pos); {
		case s.occupiedBy(net):
			if vias[i] && !s.Via {
				s.Via = true
				r.setStateAt(step.Pos, s)
			}
		case s.IsEmpty() || s.exemptFor(net):
			r.claim(step.Pos, net, vias[i])
		}
	}
}

// routeVias flags the steps where the route changes layers. Jumps reuse
// existing wiring and do not create vias.
func routeVias(route Route) []bool {
	vias := make([]bool, len(route))
	for i := 1; i < len(route); i++ {
		if route[i].Jump {
			continue
		}
		if route[i].Layer != route[i-1].Layer {
			vias[i-1] = true
			vias[i] = true
		}
	}
	return vias
}
