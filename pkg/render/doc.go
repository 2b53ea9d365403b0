// Package render turns routed layouts into visual and machine-readable
// outputs.
//
// # Overview
//
// This package contains the rendering surfaces that transform a routed
// layout into output artifacts. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Layer-colored layout drawings (in [svg] subpackage)
//   - Connectivity topology diagrams (in [dot] subpackage)
//   - Machine-readable element dumps (in [jsonout] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). They are shared by the
// layout and topology renderers.
//
//	img := svg.Render(group, svg.WithArea(area))
//	pdf, err := render.ToPDF(img)
//	png, err := render.ToPNG(img, 2.0)  // 2x scale
//
// # Layout Drawings
//
// The [svg] subpackage draws the element group a router emitted: one color
// per routing layer with translucent fills so crossings stay readable,
// hatched via markers, the routing-area frame, and optional free-segment
// overlays.
//
// # Topology Diagrams
//
// The [dot] subpackage renders the connectivity of a routing problem as a
// Graphviz DOT graph: one node per request endpoint, edges colored by
// routing outcome.
//
//	src := dot.ToDOT(prob, result, dot.Options{})
//	img, err := dot.RenderSVG(src)
//
// # Machine Output
//
// The [jsonout] subpackage serializes drawn elements and per-net results as
// a stable JSON document, and can rebuild a spatially indexed element group
// from one for region queries.
//
// [svg]: github.com/tracelayer/gridroute/pkg/render/svg
// [dot]: github.com/tracelayer/gridroute/pkg/render/dot
// [jsonout]: github.com/tracelayer/gridroute/pkg/render/jsonout
package render
