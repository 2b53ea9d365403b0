package route

import (
	"context"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/via"
)

// SupplyNet names one rail of a single power supply.
type SupplyNet uint8

const (
	// Vss is the ground rail.
	Vss SupplyNet = iota
	// Vdd is the power rail.
	Vdd
)

func (n SupplyNet) String() string {
	if n == Vdd {
		return "vdd"
	}
	return "vss"
}

// netForTrack returns the rail a track carries: even tracks carry Vss, odd
// tracks carry Vdd.
func netForTrack(trackID int) SupplyNet {
	if trackID%2 == 0 {
		return Vss
	}
	return Vdd
}

// Target is an existing supply shape that straps should connect to.
type Target struct {
	rect geom.Rect
	net  SupplyNet
	hit  bool
}

// NewTarget returns a target carrying the given rail.
func NewTarget(net SupplyNet, rect geom.Rect) Target {
	return Target{rect: rect, net: net}
}

// Strap is one supply strap drawn on a routing layer.
type Strap struct {
	Rect geom.Rect
	Net  SupplyNet
	// LowerBoundary and UpperBoundary report whether the strap reaches the
	// routing-area boundary on each end.
	LowerBoundary bool
	UpperBoundary bool
}

// PlacedStraps holds the straps drawn by [RoutedStraps.Fill], keyed by
// layer.
type PlacedStraps struct {
	inner map[layout.LayerKey][]Strap
}

// OnLayer returns the straps drawn on the given layer.
func (p PlacedStraps) OnLayer(layer layout.LayerKey) []Strap {
	return p.inner[layer]
}

// Len returns the total strap count across all layers.
func (p PlacedStraps) Len() int {
	n := 0
	for _, straps := range p.inner {
		n += len(straps)
	}
	return n
}

// RoutedStraps fills the free track segments left over after routing with
// supply straps, assigning rails by track parity, and stitches the straps
// to each other and to registered supply targets with vias.
type RoutedStraps struct {
	layers  []layout.LayerKey
	targets map[layout.LayerKey][]Target
}

// NewRoutedStraps returns an empty strap filler.
func NewRoutedStraps() *RoutedStraps {
	return &RoutedStraps{targets: make(map[layout.LayerKey][]Target)}
}

// SetStrapLayers sets the routing layers to fill, bottom-up. Filling
// requires at least two.
func (s *RoutedStraps) SetStrapLayers(layers ...layout.LayerKey) *RoutedStraps {
	s.layers = append(s.layers[:0], layers...)
	return s
}

// AddTarget registers an existing supply shape. Straps on the routing layers
// directly above and below connect to targets of their rail wherever a via
// fits inside the overlap.
func (s *RoutedStraps) AddTarget(layer layout.LayerKey, t Target) *RoutedStraps {
	s.targets[layer] = append(s.targets[layer], t)
	return s
}

// Fill draws straps over the free segments of every strap layer into dst and
// returns them. It panics if fewer than two strap layers are configured.
func (s *RoutedStraps) Fill(ctx context.Context, r *Router, dst *layout.Group) (PlacedStraps, error) {
	if len(s.layers) < 2 {
		panic("route: strap filling needs at least two layers")
	}
	if r.vias == nil {
		return PlacedStraps{}, errors.New(errors.ErrCodeInternal,
			"strap filling requires a via generator")
	}

	inner := make(map[layout.LayerKey][]Strap)
	for _, layer := range s.layers {
		layerIdx := r.layerIdx(layer)

		// Targets one layer below or above can be stitched to straps on
		// this layer directly.
		type stitch struct {
			target   layout.LayerKey
			bot, top layout.LayerKey
		}
		var stitches []stitch
		if layerIdx > 0 {
			below := r.layers[layerIdx-1].layer
			stitches = append(stitches, stitch{target: below, bot: below, top: layer})
		}
		if layerIdx+1 < len(r.layers) {
			above := r.layers[layerIdx+1].layer
			stitches = append(stitches, stitch{target: above, bot: layer, top: above})
		}

		for _, seg := range r.Segments(layer) {
			dst.AddRect(layer, seg.Rect)
			inner[layer] = append(inner[layer], Strap{
				Rect:          seg.Rect,
				Net:           netForTrack(seg.TrackID),
				LowerBoundary: seg.LowerBoundary,
				UpperBoundary: seg.UpperBoundary,
			})

			for _, st := range stitches {
				targets := s.targets[st.target]
				for i := range targets {
					t := &targets[i]
					if int(t.net) != seg.TrackID%2 {
						continue
					}
					overlap, ok := t.rect.Intersection(seg.Rect)
					if !ok {
						continue
					}
					params := via.NewParams().
						Layers(st.bot, st.top).
						Geometry(t.rect, seg.Rect).
						Build()
					inst, err := r.vias.MakeVia(ctx, params)
					if err != nil {
						return PlacedStraps{}, err
					}
					// Connect only where the via fits entirely inside the
					// overlap region.
					if overlap.Union(inst.BBox()) == overlap {
						inst.Draw(dst)
						t.hit = true
					}
				}
			}
		}
	}

	// Stitch adjacent strap layers wherever same-rail straps cross. The via
	// is generated once per layer pair and stamped at every later crossing.
	for i := 0; i+1 < len(s.layers); i++ {
		bot, top := s.layers[i], s.layers[i+1]
		topSegments := r.Segments(top)
		botSegments := r.Segments(bot)

		var proto *via.Instance
		for _, t := range topSegments {
			for _, b := range botSegments {
				overlap, ok := t.Rect.Intersection(b.Rect)
				if t.TrackID%2 != b.TrackID%2 || !ok {
					continue
				}
				if proto != nil {
					proto.PlaceCenter(overlap.Center().SnapToGrid(r.grid)).Draw(dst)
					continue
				}
				params := via.NewParams().
					Layers(bot, top).
					Geometry(b.Rect, t.Rect).
					Build()
				inst, err := r.vias.MakeVia(ctx, params)
				if err != nil {
					return PlacedStraps{}, err
				}
				proto = inst
				inst.Draw(dst)
			}
		}
	}

	for layer, targets := range s.targets {
		for _, t := range targets {
			if !t.hit {
				r.log.Debug("strap target not connected", "layer", layer, "net", t.net)
			}
		}
	}

	return PlacedStraps{inner: inner}, nil
}
