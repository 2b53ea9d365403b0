package problem

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route"
)

// =============================================================================
// Problem → Router Conversion
// =============================================================================

// Router builds the configured physical router for the problem: the
// technology's layers and vias over the problem area, with every obstacle
// and occupied seed applied in order. A nil tech falls back to the problem's
// inline technology. logger may be nil.
func (p *Problem) Router(t *Tech, logger *log.Logger) (*route.Router, error) {
	if t == nil {
		t = p.Tech
	}
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidProblem, "problem has no technology")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	area := p.Area.Geom()
	if area.Length(geom.Horiz) == 0 || area.Length(geom.Vert) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidProblem, "routing area is degenerate")
	}
	gen, err := t.Generator()
	if err != nil {
		return nil, err
	}

	keys := make(map[string]layout.LayerKey, len(t.Layers))
	for _, l := range t.Layers {
		keys[l.Name] = l.Key()
	}
	r := route.New(route.Config{
		Area:   area,
		Layers: t.LayerConfigs(),
		Vias:   gen,
		Grid:   t.Grid,
		Logger: logger,
	})

	for i, o := range p.Obstacles {
		key, ok := keys[o.Layer]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLayer,
				"obstacle %d: unknown routing layer %q", i, o.Layer)
		}
		if o.Net != "" {
			r.BlockForNet(key, o.Rect.Geom(), o.Net)
		} else {
			r.Block(key, o.Rect.Geom())
		}
	}
	for i, s := range p.Seeds {
		key, ok := keys[s.Layer]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidLayer,
				"occupied %d: unknown routing layer %q", i, s.Layer)
		}
		if err := r.Occupy(key, s.Rect.Geom(), s.Net); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "occupied %d (net %q)", i, s.Net)
		}
	}
	return r, nil
}

// RouteAll routes every request in order against the prepared router,
// recording per-request outcomes. A failed request does not stop the pass.
// The summary counters are filled from the router's group afterward.
func (p *Problem) RouteAll(ctx context.Context, r *route.Router) *Result {
	res := NewResult(p.Name)
	area := r.Area()
	for _, req := range p.Requests {
		srcKey, srcOK := routingLayerKey(r, req.Src.Layer)
		dstKey, dstOK := routingLayerKey(r, req.Dst.Layer)
		if !srcOK || !dstOK {
			name := req.Src.Layer
			if srcOK {
				name = req.Dst.Layer
			}
			res.AddFailed(req.Net, errors.New(errors.ErrCodeInvalidLayer,
				"unknown routing layer %q", name))
			continue
		}
		src, dst := req.Src.Rect.Geom(), req.Dst.Rect.Geom()
		if !area.Contains(src) || !area.Contains(dst) {
			res.AddFailed(req.Net, errors.New(errors.ErrCodeInvalidProblem,
				"request geometry lies outside the routing area"))
			continue
		}
		if err := r.RouteWithNet(ctx, srcKey, src, dstKey, dst, req.Net); err != nil {
			res.AddFailed(req.Net, err)
			continue
		}
		res.AddRouted(req.Net)
	}
	res.Summarize(r)
	return res
}

// FillStraps fills alternating vss/vdd supply straps over the routing stack
// and stitches them to the problem's supply geometry. With three or more
// layers the lowest is left out of the fill, since that is where the supply
// rails being tapped usually live. Obstacles and occupied seeds whose net
// names a supply rail become stitch targets. Straps draw into dst, or into
// the router's own group when dst is nil.
func (p *Problem) FillStraps(ctx context.Context, r *route.Router, dst *layout.Group) (route.PlacedStraps, error) {
	stack := r.Layers()
	if len(stack) < 2 {
		return route.PlacedStraps{}, errors.New(errors.ErrCodeInvalidProblem,
			"strap filling needs at least two routing layers")
	}
	if len(stack) > 2 {
		stack = stack[1:]
	}
	keys := make([]layout.LayerKey, len(stack))
	for i, ti := range stack {
		keys[i] = ti.Layer()
	}

	straps := route.NewRoutedStraps().SetStrapLayers(keys...)
	for _, o := range p.Obstacles {
		net, ok := supplyNet(o.Net)
		if !ok {
			continue
		}
		if key, found := routingLayerKey(r, o.Layer); found {
			straps.AddTarget(key, route.NewTarget(net, o.Rect.Geom()))
		}
	}
	for _, s := range p.Seeds {
		net, ok := supplyNet(s.Net)
		if !ok {
			continue
		}
		if key, found := routingLayerKey(r, s.Layer); found {
			straps.AddTarget(key, route.NewTarget(net, s.Rect.Geom()))
		}
	}

	if dst == nil {
		dst = r.Group()
	}
	return straps.Fill(ctx, r, dst)
}

// supplyNet maps a net name to its supply rail, if it names one.
func supplyNet(name string) (route.SupplyNet, bool) {
	switch strings.ToLower(name) {
	case "vss", "gnd":
		return route.Vss, true
	case "vdd":
		return route.Vdd, true
	}
	return route.Vss, false
}

// routingLayerKey finds the routing layer with the given name.
func routingLayerKey(r *route.Router, name string) (layout.LayerKey, bool) {
	for _, ti := range r.Layers() {
		if ti.Layer().Name == name {
			return ti.Layer(), true
		}
	}
	return layout.LayerKey{}, false
}
