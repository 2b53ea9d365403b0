package problem

import (
	stderrors "errors"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route"
)

// =============================================================================
// Result - Routing Outcome
// =============================================================================

// RequestResult is the outcome of a single routing request.
type RequestResult struct {
	Net    string      `json:"net" bson:"net"`
	Routed bool        `json:"routed" bson:"routed"`
	Error  string      `json:"error,omitempty" bson:"error,omitempty"`
	Code   errors.Code `json:"code,omitempty" bson:"code,omitempty"`
}

// LayerSummary counts the wires drawn on one layer.
type LayerSummary struct {
	Layer string `json:"layer" bson:"layer"`
	Rects int    `json:"rects" bson:"rects"`
}

// Result is the outcome of routing a whole problem. It is the unit the run
// store persists and the API returns.
type Result struct {
	Name     string          `json:"name,omitempty" bson:"name,omitempty"`
	Routed   int             `json:"routed" bson:"routed"`
	Failed   int             `json:"failed" bson:"failed"`
	Requests []RequestResult `json:"requests,omitempty" bson:"requests,omitempty"`
	Elements int             `json:"elements" bson:"elements"`
	Vias     int             `json:"vias,omitempty" bson:"vias,omitempty"`
	Layers   []LayerSummary  `json:"layers,omitempty" bson:"layers,omitempty"`
	Straps   int             `json:"straps,omitempty" bson:"straps,omitempty"`
}

// NewResult creates an empty result for the named problem.
func NewResult(name string) *Result {
	return &Result{Name: name}
}

// AddRouted records a successfully routed request.
func (r *Result) AddRouted(net string) {
	r.Requests = append(r.Requests, RequestResult{Net: net, Routed: true})
	r.Routed++
}

// AddFailed records a failed request, extracting the machine code from the
// error chain.
func (r *Result) AddFailed(net string, err error) {
	code := errors.GetCode(err)
	if code == "" {
		var rerr *errors.RouteError
		if stderrors.As(err, &rerr) {
			code = rerr.Code()
		}
	}
	r.Requests = append(r.Requests, RequestResult{
		Net:   net,
		Error: errors.UserMessage(err),
		Code:  code,
	})
	r.Failed++
}

// Summarize fills the drawn-geometry counters from the router's group.
// Wires are counted per layer in stack order; via instances are counted
// whole, not per contained rectangle.
func (r *Result) Summarize(rt *route.Router) {
	g := rt.Group()
	r.Elements = g.Len()
	r.Vias = 0
	counts := make(map[layout.LayerKey]int)
	for _, e := range g.Elements() {
		if e.Kind == layout.KindInstance {
			r.Vias++
			continue
		}
		counts[e.Layer]++
	}
	r.Layers = r.Layers[:0]
	for _, ti := range rt.Layers() {
		if n := counts[ti.Layer()]; n > 0 {
			r.Layers = append(r.Layers, LayerSummary{Layer: ti.Layer().String(), Rects: n})
		}
	}
}
