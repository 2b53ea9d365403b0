package layout

import (
	"slices"

	"github.com/tidwall/rtree"

	"github.com/tracelayer/gridroute/pkg/geom"
)

// Kind discriminates the element variants.
type Kind uint8

const (
	// KindRect is a plain rectangle on one layer.
	KindRect Kind = iota
	// KindInstance is a named sub-group with a bounding box, used for via
	// instances.
	KindInstance
)

// Element is one drawable item. It is a closed tagged variant: Kind selects
// which fields are meaningful.
type Element struct {
	Kind  Kind
	Layer LayerKey // KindRect: the layer the rectangle is drawn on
	Rect  geom.Rect
	Name  string // KindInstance: instance identifier
	Sub   *Group // KindInstance: instance geometry
}

// RectElement returns a rectangle element.
func RectElement(layer LayerKey, r geom.Rect) Element {
	return Element{Kind: KindRect, Layer: layer, Rect: r}
}

// InstanceElement returns an instance element wrapping the given geometry.
func InstanceElement(name string, bbox geom.Rect, sub *Group) Element {
	return Element{Kind: KindInstance, Name: name, Rect: bbox, Sub: sub}
}

// Group is an append-only collection of drawable elements with an R-tree
// index over their bounding boxes. The zero value is ready to use.
type Group struct {
	elems []Element
	tree  rtree.RTreeG[int]
}

// Add appends an element.
func (g *Group) Add(e Element) {
	idx := len(g.elems)
	g.elems = append(g.elems, e)
	mn, mx := boxOf(e.Rect)
	g.tree.Insert(mn, mx, idx)
}

// AddRect appends a rectangle on the given layer.
func (g *Group) AddRect(layer LayerKey, r geom.Rect) {
	g.Add(RectElement(layer, r))
}

// Merge appends all elements of other.
func (g *Group) Merge(other *Group) {
	if other == nil {
		return
	}
	for _, e := range other.elems {
		g.Add(e)
	}
}

// Len returns the number of elements.
func (g *Group) Len() int {
	return len(g.elems)
}

// Elements returns the elements in insertion order. The returned slice is
// shared; callers must not modify it.
func (g *Group) Elements() []Element {
	return g.elems
}

// BBox returns the bounding box of all elements. ok is false for an empty
// group.
func (g *Group) BBox() (geom.Rect, bool) {
	if len(g.elems) == 0 {
		return geom.Rect{}, false
	}
	bbox := g.elems[0].Rect
	for _, e := range g.elems[1:] {
		bbox = bbox.Union(e.Rect)
	}
	return bbox, true
}

// Query returns the elements whose bounding boxes intersect r, in
// insertion order.
func (g *Group) Query(r geom.Rect) []Element {
	mn, mx := boxOf(r)
	var idxs []int
	g.tree.Search(mn, mx, func(_, _ [2]float64, idx int) bool {
		idxs = append(idxs, idx)
		return true
	})
	// The R-tree returns hits in tree order; restore insertion order so
	// callers see deterministic results.
	slices.Sort(idxs)
	out := make([]Element, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, g.elems[i])
	}
	return out
}

// QueryLayer returns the rect elements on the given layer intersecting r.
func (g *Group) QueryLayer(layer LayerKey, r geom.Rect) []Element {
	hits := g.Query(r)
	out := hits[:0]
	for _, e := range hits {
		if e.Kind == KindRect && e.Layer == layer {
			out = append(out, e)
		}
	}
	return out
}

func boxOf(r geom.Rect) (mn, mx [2]float64) {
	return [2]float64{float64(r.Min.X), float64(r.Min.Y)},
		[2]float64{float64(r.Max.X), float64(r.Max.Y)}
}
