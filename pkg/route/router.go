// Package route implements the physical auto-router.
//
// A [Router] owns an abstract lattice router plus per-layer track geometry.
// Callers work entirely in physical coordinates: they register blockages and
// existing wiring as rectangles, then request routes between rectangles on
// named layers. The router translates rectangles onto the integer track
// lattice, searches there, and converts discovered paths back into drawn
// rectangles with via instances at every layer transition.
//
// All drawn geometry accumulates in an internal [layout.Group]; call
// [Router.Draw] or [Router.Group] to retrieve it.
package route

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route/abs"
	"github.com/tracelayer/gridroute/pkg/track"
	"github.com/tracelayer/gridroute/pkg/via"
)

// LayerConfig describes one routing layer: the width and spacing of its
// wires, the direction they run, and the layer they are drawn on.
type LayerConfig struct {
	Line  int64
	Space int64
	Dir   geom.Dir
	Layer layout.LayerKey
}

// Pitch returns the center-to-center wire distance on this layer.
func (c LayerConfig) Pitch() int64 {
	return c.Line + c.Space
}

// ViaMaker builds the geometry connecting two adjacent routing layers.
// [via.Generator] implements it.
type ViaMaker interface {
	MakeVia(ctx context.Context, params via.Params) (*via.Instance, error)
}

// Config configures a [Router].
type Config struct {
	// Area is the routing region covered by the track grid.
	Area geom.Rect
	// Layers lists the routing layers bottom-up. Directions must strictly
	// alternate, and every pitch must be an integer multiple of the first
	// layer's pitch.
	Layers []LayerConfig

	// Vias builds layer-transition geometry. Routes that change layers
	// fail without one.
	Vias ViaMaker
	// Grid is the manufacturing grid geometry is snapped to when placed by
	// center. Defaults to 1.
	Grid int64
	// Logger receives routing progress at debug level. Defaults to a
	// silent logger.
	Logger *log.Logger
}

// TrackInfo binds a routing layer to its physical track generator.
type TrackInfo struct {
	layer  layout.LayerKey
	tracks track.UniformTracks
	dir    geom.Dir
}

// Layer returns the layer the tracks are drawn on.
func (t TrackInfo) Layer() layout.LayerKey { return t.layer }

// Tracks returns the track generator for the layer.
func (t TrackInfo) Tracks() track.UniformTracks { return t.tracks }

// Dir returns the direction wires run on the layer.
func (t TrackInfo) Dir() geom.Dir { return t.dir }

// Router routes between physical rectangles across alternating-direction
// routing layers. It is not safe for concurrent use.
type Router struct {
	inner       *abs.Router
	area        geom.Rect
	layers      []TrackInfo
	keyToIndex  map[layout.LayerKey]int
	gridVTracks track.UniformTracks
	gridHTracks track.UniformTracks
	group       layout.Group
	netMap      map[string]abs.Net
	vias        ViaMaker
	grid        int64
	log         *log.Logger
}

// New builds a router over cfg.Area. It panics if the layer stack violates
// the pitch or direction constraints, since that is a static wiring mistake
// rather than a data-dependent condition.
func New(cfg Config) *Router {
	if len(cfg.Layers) == 0 {
		panic("route: config has no layers")
	}

	layer0 := cfg.Layers[0]
	layers := make([]TrackInfo, len(cfg.Layers))
	keyToIndex := make(map[layout.LayerKey]int, len(cfg.Layers))
	absCfgs := make([]abs.LayerConfig, len(cfg.Layers))
	for i, lc := range cfg.Layers {
		if lc.Pitch()%layer0.Pitch() != 0 {
			panic("route: layer pitch must be a multiple of the base pitch")
		}
		if i > 0 && lc.Dir == cfg.Layers[i-1].Dir {
			panic("route: adjacent layers must alternate directions")
		}
		layers[i] = TrackInfo{
			layer: lc.Layer,
			tracks: track.UniformTracks{
				Line:  lc.Line,
				Space: lc.Space,
				Sign:  geom.Pos,
				Start: cfg.Area.Span(lc.Dir.Other()).Start - lc.Line/2,
			},
			dir: lc.Dir,
		}
		keyToIndex[lc.Layer] = i
		absCfgs[i] = abs.LayerConfig{
			GridSpace: int(lc.Pitch() / layer0.Pitch()),
			Dir:       lc.Dir,
		}
	}

	gridVTracks := track.UniformTracks{
		Line:  layer0.Line,
		Space: layer0.Space,
		Sign:  geom.Pos,
		Start: cfg.Area.HSpan().Start - layer0.Line/2,
	}
	gridHTracks := track.UniformTracks{
		Line:  layer0.Line,
		Space: layer0.Space,
		Sign:  geom.Pos,
		Start: cfg.Area.VSpan().Start - layer0.Line/2,
	}
	nx := gridVTracks.TrackAt(cfg.Area.Right()) + 2
	ny := gridHTracks.TrackAt(cfg.Area.Top()) + 2
	if nx < 0 || ny < 0 {
		panic("route: routing area is degenerate")
	}

	grid := cfg.Grid
	if grid == 0 {
		grid = 1
	}
	if grid < 0 {
		panic("route: manufacturing grid must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return &Router{
		inner:       abs.NewRouter(absCfgs, int(nx), int(ny)),
		area:        cfg.Area,
		layers:      layers,
		keyToIndex:  keyToIndex,
		gridVTracks: gridVTracks,
		gridHTracks: gridHTracks,
		netMap:      make(map[string]abs.Net),
		vias:        cfg.Vias,
		grid:        grid,
		log:         logger,
	}
}

// Area returns the routing region.
func (r *Router) Area() geom.Rect { return r.area }

// TrackInfo returns the track geometry for the given layer. It panics if the
// layer is not part of the router's stack.
func (r *Router) TrackInfo(layer layout.LayerKey) TrackInfo {
	return r.layers[r.layerIdx(layer)]
}

// Layers returns the routing layer stack bottom-up.
func (r *Router) Layers() []TrackInfo {
	out := make([]TrackInfo, len(r.layers))
	copy(out, r.layers)
	return out
}

// Group returns the accumulated routed geometry. The group is live: later
// routing calls keep appending to it.
func (r *Router) Group() *layout.Group { return &r.group }

// Draw adds all routed geometry to dst.
func (r *Router) Draw(dst *layout.Group) {
	dst.Merge(&r.group)
}

// GetNet resolves a net name to a stable abstract net, allocating one on
// first use.
func (r *Router) GetNet(name string) abs.Net {
	if net, ok := r.netMap[name]; ok {
		return net
	}
	net := r.inner.GetUnusedNet()
	r.netMap[name] = net
	return net
}

// Route draws a route between the two rectangles on a fresh anonymous net.
func (r *Router) Route(ctx context.Context, srcLayer layout.LayerKey, src geom.Rect, dstLayer layout.LayerKey, dst geom.Rect) error {
	net := r.inner.GetUnusedNet()
	err := r.routeInner(ctx, srcLayer, src, dstLayer, dst, net)
	return r.wrapRouteErr(err, "", srcLayer, dstLayer)
}

// RouteWithNet draws a route between the two rectangles on the named net.
// Wiring previously placed for the same name is reused: the search may
// continue from any point of it.
func (r *Router) RouteWithNet(ctx context.Context, srcLayer layout.LayerKey, src geom.Rect, dstLayer layout.LayerKey, dst geom.Rect, net string) error {
	err := r.routeInner(ctx, srcLayer, src, dstLayer, dst, r.GetNet(net))
	return r.wrapRouteErr(err, net, srcLayer, dstLayer)
}

func (r *Router) wrapRouteErr(err error, net string, srcLayer, dstLayer layout.LayerKey) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, abs.ErrNoRouteFound) {
		return &errors.RouteError{
			Net:      net,
			SrcLayer: srcLayer.String(),
			DstLayer: dstLayer.String(),
			Cause:    err,
		}
	}
	return err
}

func (r *Router) routeInner(ctx context.Context, srcLayer layout.LayerKey, src geom.Rect, dstLayer layout.LayerKey, dst geom.Rect, net abs.Net) error {
	// Endpoint geometry must be contained within the routing area; anything
	// else is a static wiring mistake by the caller.
	if got, ok := r.area.Intersection(src); !ok || got != src {
		panic("route: source geometry lies outside the routing area")
	}
	if got, ok := r.area.Intersection(dst); !ok || got != dst {
		panic("route: destination geometry lies outside the routing area")
	}

	srcSpan := r.shrinkToPosSpan(srcLayer, src)
	dstSpan := r.shrinkToPosSpan(dstLayer, dst)

	path, err := r.inner.RouteWithNet(srcSpan, dstSpan, net)
	if err != nil {
		return err
	}
	r.log.Debug("route found",
		"src", srcLayer, "dst", dstLayer, "steps", len(path))

	// Jumps teleport through existing wiring; each stretch between them is
	// drawn independently.
	for start := 0; start < len(path); {
		end := start + 1
		for end < len(path) && !path[end].Jump {
			end++
		}
		if err := r.drawSubroute(ctx, path[start:end]); err != nil {
			return err
		}
		start = end
	}
	return nil
}

// placedRect is one drawn wire of a subroute.
type placedRect struct {
	layer abs.Layer
	rect  geom.Rect
}

// drawSubroute converts one contiguous stretch of a path into rectangles,
// one per traversed layer, and inserts a via at every layer transition.
func (r *Router) drawSubroute(ctx context.Context, sub abs.Route) error {
	// Group consecutive same-layer steps into runs.
	type run struct {
		layer       abs.Layer
		first, last abs.Pos
	}
	var runs []run
	for _, s := range sub {
		if len(runs) > 0 && runs[len(runs)-1].layer == s.Layer {
			runs[len(runs)-1].last = s.Pos
		} else {
			runs = append(runs, run{layer: s.Layer, first: s.Pos, last: s.Pos})
		}
	}

	// Each run becomes a rectangle on its run track, extended to meet the
	// track of the adjacent run where the path changes layers.
	rects := make([]placedRect, len(runs))
	for i, rn := range runs {
		dir := r.inner.Dir(rn.layer)
		trackSpan := r.trackSpan(rn.layer, rn.first.Coord(dir.Other()))

		var first geom.Span
		if i > 0 && r.inner.Dir(runs[i-1].layer) != dir {
			first = r.trackSpan(runs[i-1].layer, rn.first.Coord(dir))
		} else {
			first = r.gridTrack(dir.Other()).Index(int64(rn.first.Coord(dir)))
		}
		var last geom.Span
		if i < len(runs)-1 && r.inner.Dir(runs[i+1].layer) != dir {
			last = r.trackSpan(runs[i+1].layer, rn.last.Coord(dir))
		} else {
			last = r.gridTrack(dir.Other()).Index(int64(rn.last.Coord(dir)))
		}

		rects[i] = placedRect{
			layer: rn.layer,
			rect:  geom.RectFromDirSpans(dir, first.Union(last), trackSpan),
		}
	}

	for i, pr := range rects {
		r.group.AddRect(r.layerKey(pr.layer), pr.rect)

		if i == 0 {
			continue
		}
		prev := rects[i-1]
		if prev.layer == pr.layer {
			continue
		}
		bot, top := prev, pr
		if top.layer < bot.layer {
			bot, top = top, bot
		}
		params := via.NewParams().
			Layers(r.layerKey(bot.layer), r.layerKey(top.layer)).
			Geometry(bot.rect, top.rect).
			Build()
		if r.vias == nil {
			return errors.New(errors.ErrCodeInternal,
				"route crosses from %q to %q but no via generator is configured",
				r.layerKey(bot.layer), r.layerKey(top.layer))
		}
		inst, err := r.vias.MakeVia(ctx, params)
		if err != nil {
			return err
		}
		inst.Draw(&r.group)
	}
	return nil
}

// Segment is a free stretch of one track, in physical coordinates.
type Segment struct {
	// TrackID is the ordinal of the track within its layer.
	TrackID int
	// Rect is the physical extent of the free stretch.
	Rect geom.Rect
	// LowerBoundary and UpperBoundary report whether the stretch reaches
	// the routing-area boundary on each end.
	LowerBoundary bool
	UpperBoundary bool
}

// Segments returns the unused stretches of every track on the given layer,
// rounded so each stretch can host a via to a neighboring layer.
func (r *Router) Segments(layer layout.LayerKey) []Segment {
	l := r.absLayer(layer)
	dir := r.inner.Dir(l)
	spans := r.inner.Segments(l)
	out := make([]Segment, 0, len(spans))
	for _, s := range spans {
		cross, _ := s.Span.Range(dir.Other())
		trackSpan := r.trackSpan(l, cross)
		lo, hi := s.Span.Range(dir)
		along := r.gridTrack(dir.Other()).Index(int64(lo)).
			Union(r.gridTrack(dir.Other()).Index(int64(hi)))
		out = append(out, Segment{
			TrackID:       s.TrackID,
			Rect:          geom.RectFromDirSpans(dir, along, trackSpan),
			LowerBoundary: s.LowerBoundary,
			UpperBoundary: s.UpperBoundary,
		})
	}
	return out
}

// Block marks every grid cell touching rect as unroutable.
func (r *Router) Block(layer layout.LayerKey, rect geom.Rect) {
	r.inner.BlockSpan(r.expandToPosSpan(layer, rect))
}

// BlockWithShrink marks only the grid cells entirely inside rect as
// unroutable, leaving partially covered boundary cells usable.
func (r *Router) BlockWithShrink(layer layout.LayerKey, rect geom.Rect) {
	r.inner.BlockSpan(r.shrinkToPosSpan(layer, rect))
}

// BlockForNet marks every grid cell touching rect as unroutable for all
// nets except the named one, which may still terminate there.
func (r *Router) BlockForNet(layer layout.LayerKey, rect geom.Rect, net string) {
	r.inner.BlockSpanForNet(r.expandToPosSpan(layer, rect), r.GetNet(net))
}

// Occupy claims rect for the named net: cells fully inside become routable
// wiring of the net, while cells merely touching the boundary are blocked
// for every other net to preserve physical clearance.
func (r *Router) Occupy(layer layout.LayerKey, rect geom.Rect, net string) error {
	n := r.GetNet(net)
	r.inner.BlockSpanForNet(r.expandToPosSpan(layer, rect), n)
	if err := r.inner.OccupySpan(r.shrinkToPosSpan(layer, rect), n); err != nil {
		code := errors.ErrCodeOccupied
		if stderrors.Is(err, abs.ErrBlocked) {
			code = errors.ErrCodeBlocked
		}
		return errors.Wrap(code, err, "cannot occupy %v on %q for net %q", rect, layer, net)
	}
	return nil
}

func (r *Router) layerIdx(layer layout.LayerKey) int {
	idx, ok := r.keyToIndex[layer]
	if !ok {
		panic("route: unknown routing layer " + layer.String())
	}
	return idx
}

func (r *Router) absLayer(layer layout.LayerKey) abs.Layer {
	return abs.Layer(r.layerIdx(layer))
}

func (r *Router) layerKey(layer abs.Layer) layout.LayerKey {
	return r.layers[layer].layer
}
