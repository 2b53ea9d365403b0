// Package jsonout serializes drawn elements and routing results as a
// stable JSON document for machine use, and rebuilds spatially indexed
// element groups from such documents for region queries.
package jsonout

import (
	"encoding/json"
	"fmt"

	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/problem"
)

// Element kinds in wire form.
const (
	KindRect = "rect"
	KindVia  = "via"
)

// Element is one drawn item in wire form.
type Element struct {
	Kind  string       `json:"kind"`
	Layer string       `json:"layer,omitempty"`
	Rect  problem.Rect `json:"rect"`
	Name  string       `json:"name,omitempty"`
}

// Document is the top-level JSON artifact: the routing area, every drawn
// element, and optionally the per-net results.
type Document struct {
	Name     string          `json:"name,omitempty"`
	Area     problem.Rect    `json:"area"`
	Elements []Element       `json:"elements"`
	Result   *problem.Result `json:"result,omitempty"`
}

// Option configures JSON rendering via [Render].
type Option func(*renderer)

type renderer struct {
	name   string
	result *problem.Result
}

// WithName records the problem name in the document.
func WithName(name string) Option { return func(r *renderer) { r.name = name } }

// WithResult includes the per-net routing results in the document.
func WithResult(res *problem.Result) Option { return func(r *renderer) { r.result = res } }

// Render exports the routing area and the drawn element group as a
// pretty-printed JSON document. The element order matches the draw order,
// so output is stable across runs of the same problem.
func Render(area geom.Rect, g *layout.Group, opts ...Option) ([]byte, error) {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}

	doc := Document{
		Name:     r.name,
		Area:     problem.RectFrom(area),
		Elements: Wire(g.Elements()),
		Result:   r.result,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Wire converts drawn elements to their wire form, preserving order.
func Wire(elems []layout.Element) []Element {
	out := make([]Element, 0, len(elems))
	for _, e := range elems {
		switch e.Kind {
		case layout.KindRect:
			out = append(out, Element{
				Kind:  KindRect,
				Layer: e.Layer.String(),
				Rect:  problem.RectFrom(e.Rect),
			})
		case layout.KindInstance:
			out = append(out, Element{
				Kind: KindVia,
				Rect: problem.RectFrom(e.Rect),
				Name: e.Name,
			})
		}
	}
	return out
}

// Unmarshal parses a document produced by [Render].
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layout document: %w", err)
	}
	return &doc, nil
}

// AreaRect returns the routing area as geometry.
func (d *Document) AreaRect() geom.Rect {
	return d.Area.Geom()
}

// Group rebuilds a spatially indexed element group from the document,
// preserving element order. Via elements come back as instance elements
// without geometry below the bounding box.
func (d *Document) Group() *layout.Group {
	g := &layout.Group{}
	for _, e := range d.Elements {
		switch e.Kind {
		case KindVia:
			g.Add(layout.InstanceElement(e.Name, e.Rect.Geom(), nil))
		default:
			g.AddRect(layout.ParseLayer(e.Layer), e.Rect.Geom())
		}
	}
	return g
}
