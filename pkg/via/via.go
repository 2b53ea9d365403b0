// Package via draws via stacks connecting adjacent routing layers.
//
// A via is a small array of cut rectangles plus the metal enclosures the
// technology requires on the layers above and below. Callers describe the
// geometry they want connected with [Params]; a [Generator] loaded with the
// technology's via rules picks the largest cut array that fits and returns a
// drawable [Instance].
package via

import (
	"fmt"

	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
)

// Expansion constrains how much a via may expand beyond existing geometry.
//
// Extra metal padding is often needed around via cuts to satisfy enclosure
// rules; the expansion mode decides whether that padding may spill outside
// the rectangles the caller provided.
type Expansion uint8

const (
	// ExpandNone forbids metal beyond the provided geometry. Via creation
	// fails if the overlap cannot fully contain a via.
	ExpandNone Expansion = iota

	// ExpandMinimum allows expanding just enough to place a single cut
	// when nothing fits naturally.
	ExpandMinimum

	// ExpandLongerDirection allows a via array to repeat in the longer
	// overlap direction, producing 1xN or Nx1 arrays for long, skinny
	// overlaps.
	ExpandLongerDirection
)

func (e Expansion) String() string {
	switch e {
	case ExpandNone:
		return "none"
	case ExpandMinimum:
		return "minimum"
	case ExpandLongerDirection:
		return "longer-direction"
	default:
		return "unknown"
	}
}

// Params describes a requested via.
type Params struct {
	// Bot and Top are the layers being connected.
	Bot layout.LayerKey
	Top layout.LayerKey
	// BotRect and TopRect are the existing geometry on each layer.
	BotRect geom.Rect
	TopRect geom.Rect
	// Expand constrains expansion beyond BotRect and TopRect.
	Expand Expansion
	// TopExtension and BotExtension pin the direction of the longer metal
	// enclosure on each layer. When unset the generator is free to orient
	// enclosures however yields the most cuts.
	TopExtension    geom.Dir
	HasTopExtension bool
	BotExtension    geom.Dir
	HasBotExtension bool
}

// ParamsBuilder assembles [Params]. Layers and geometry are required; the
// expansion mode defaults to [ExpandMinimum].
type ParamsBuilder struct {
	params Params
	layers bool
	geom   bool
}

// NewParams returns a builder with default settings.
func NewParams() *ParamsBuilder {
	return &ParamsBuilder{params: Params{Expand: ExpandMinimum}}
}

// Layers selects the via by the layers it connects.
func (b *ParamsBuilder) Layers(bot, top layout.LayerKey) *ParamsBuilder {
	b.params.Bot, b.params.Top = bot, top
	b.layers = true
	return b
}

// Geometry tells the generator about the geometry on the bottom and top
// layers.
func (b *ParamsBuilder) Geometry(bot, top geom.Rect) *ParamsBuilder {
	b.params.BotRect, b.params.TopRect = bot, top
	b.geom = true
	return b
}

// Expand sets the expansion mode.
func (b *ParamsBuilder) Expand(e Expansion) *ParamsBuilder {
	b.params.Expand = e
	return b
}

// TopExtension pins the direction of the longer enclosure on the top layer.
func (b *ParamsBuilder) TopExtension(d geom.Dir) *ParamsBuilder {
	b.params.TopExtension = d
	b.params.HasTopExtension = true
	return b
}

// BotExtension pins the direction of the longer enclosure on the bottom
// layer.
func (b *ParamsBuilder) BotExtension(d geom.Dir) *ParamsBuilder {
	b.params.BotExtension = d
	b.params.HasBotExtension = true
	return b
}

// Build returns the assembled parameters. It panics if layers or geometry
// were not provided.
func (b *ParamsBuilder) Build() Params {
	if !b.layers {
		panic("via: params built without layers")
	}
	if !b.geom {
		panic("via: params built without geometry")
	}
	return b.params
}

/// Instance is a drawn via: metal enclosure rectangles on the connected
// layers plus the cut array between them.
type Instance struct {
	name   string
	bot    layout.LayerKey
	top    layout.LayerKey
	cut    layout.LayerKey
	nx, ny int
	group  *layout.Group
}

// Name returns the instance name, derived from the connected layers.
func (in *Instance) Name() string { return in.name }

// Layers returns the connected bottom and top layers.
func (in *Instance) Layers() (bot, top layout.LayerKey) { return in.bot, in.top }

// CutLayer returns the layer the via cuts are drawn on.
func (in *Instance) CutLayer() layout.LayerKey { return in.cut }

// Cuts returns the size of the cut array in each direction.
func (in *Instance) Cuts() (nx, ny int) { return in.nx, in.ny }

// BBox returns the bounding box of all geometry in the instance.
func (in *Instance) BBox() geom.Rect {
	bbox, ok := in.group.BBox()
	if !ok {
		panic(fmt.Sprintf("via: instance %s has no geometry", in.name))
	}
	return bbox
}

// LayerBBox returns the bounding box of the instance's geometry on the given
// layer. The second return value is false if the instance has no geometry on
// that layer.
func (in *Instance) LayerBBox(l layout.LayerKey) (geom.Rect, bool) {
	var bbox geom.Rect
	found := false
	for _, e := range in.group.Elements() {
		if e.Kind != layout.KindRect || e.Layer != l {
			continue
		}
		if !found {
			bbox, found = e.Rect, true
		} else {
			bbox = bbox.Union(e.Rect)
		}
	}
	return bbox, found
}

// Translate returns a copy of the instance moved by delta.
func (in *Instance) Translate(delta geom.Point) *Instance {
	group := &layout.Group{}
	for _, e := range in.group.Elements() {
		e.Rect = e.Rect.Translate(delta)
		group.Add(e)
	}
	out := *in
	out.group = group
	return &out
}

// PlaceCenter returns a copy of the instance translated so its bounding box
// is centered at p.
func (in *Instance) PlaceCenter(p geom.Point) *Instance {
	return in.Translate(p.Sub(in.BBox().Center()))
}

// Draw adds the instance to dst as a single named sub-group.
func (in *Instance) Draw(dst *layout.Group) {
	dst.Add(layout.InstanceElement(in.name, in.BBox(), in.group))
}
