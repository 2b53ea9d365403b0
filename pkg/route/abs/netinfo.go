package abs

import (
	"cmp"
	"slices"
)

// NetInfo allocates net and connection group identifiers and tracks the
// membership of each group.
//
// Identifiers are handed out smallest-unused-first and are never reused: a
// group emptied by a merge stays allocated, so its identifier cannot be
// recycled for an unrelated group.
type NetInfo struct {
	nets   map[Net]struct{}
	groups map[ConnGroup]map[Pos]struct{}
}

// NewNetInfo returns an empty allocator.
func NewNetInfo() *NetInfo {
	return &NetInfo{
		nets:   make(map[Net]struct{}),
		groups: make(map[ConnGroup]map[Pos]struct{}),
	}
}

// GetUnusedNet allocates and returns the smallest unused net identifier.
func (n *NetInfo) GetUnusedNet() Net {
	for id := Net(0); ; id++ {
		if _, ok := n.nets[id]; !ok {
			n.nets[id] = struct{}{}
			return id
		}
	}
}

// GetUnusedConnGroup allocates and returns the smallest unused connection
// group identifier.
func (n *NetInfo) GetUnusedConnGroup() ConnGroup {
	for id := ConnGroup(0); ; id++ {
		if _, ok := n.groups[id]; !ok {
			n.groups[id] = make(map[Pos]struct{})
			return id
		}
	}
}

// AddToGroup records pos as a member of group, allocating the group's
// membership set if needed.
func (n *NetInfo) AddToGroup(pos Pos, group ConnGroup) {
	set, ok := n.groups[group]
	if !ok {
		set = make(map[Pos]struct{})
		n.groups[group] = set
	}
	set[pos] = struct{}{}
}

// DeleteFromGroup removes pos from group. Removing a position that is not a
// member is a no-op.
func (n *NetInfo) DeleteFromGroup(pos Pos, group ConnGroup) {
	if set, ok := n.groups[group]; ok {
		delete(set, pos)
	}
}

// PosInGroup returns the members of group in (layer, tx, ty) order. The
// second return value is false if the group has never been allocated.
func (n *NetInfo) PosInGroup(group ConnGroup) ([]Pos, bool) {
	set, ok := n.groups[group]
	if !ok {
		return nil, false
	}
	members := make([]Pos, 0, len(set))
	for pos := range set {
		members = append(members, pos)
	}
	slices.SortFunc(members, comparePos)
	return members, true
}

func comparePos(a, b Pos) int {
	if c := cmp.Compare(a.Layer, b.Layer); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Tx, b.Tx); c != 0 {
		return c
	}
	return cmp.Compare(a.Ty, b.Ty)
}
