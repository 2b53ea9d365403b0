// Package dot renders the connectivity of a routing problem as a Graphviz
// DOT graph: one node per request endpoint, edges colored by routing
// outcome.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/render"
)

// Options configures topology rendering.
type Options struct {
	// Detailed includes layers, endpoint coordinates, and failure codes.
	// When false, nodes carry only net names.
	Detailed bool
}

// ToDOT converts a routing problem and its outcome to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF],
// or [RenderPNG].
//
// Every request becomes a pair of endpoint nodes joined by one edge: green
// for routed nets, red dashed for failed ones, grey while the outcome is
// unknown (nil result).
func ToDOT(p *problem.Problem, res *problem.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph routes {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	if res != nil {
		fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s: %d/%d routed", displayName(p), res.Routed, res.Routed+res.Failed))
		buf.WriteString("  labelloc=b;\n")
	}
	buf.WriteString("\n")

	for i, req := range p.Requests {
		src := fmt.Sprintf("r%d.src", i)
		dst := fmt.Sprintf("r%d.dst", i)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", src, endpointLabel(req.Net, req.Src, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [label=%q];\n", dst, endpointLabel(req.Net, req.Dst, opts.Detailed))
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", src, dst, strings.Join(edgeAttrs(outcomeFor(res, i), opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func displayName(p *problem.Problem) string {
	if p.Name == "" {
		return "routing"
	}
	return p.Name
}

func endpointLabel(net string, e problem.Endpoint, detailed bool) string {
	if !detailed {
		return net
	}
	return fmt.Sprintf("%s\n%s %s", net, e.Layer, e.Rect.Geom())
}

func outcomeFor(res *problem.Result, i int) *problem.RequestResult {
	if res == nil || i >= len(res.Requests) {
		return nil
	}
	return &res.Requests[i]
}

func edgeAttrs(rr *problem.RequestResult, detailed bool) []string {
	if rr == nil {
		return []string{`color="#444444"`}
	}
	if rr.Routed {
		return []string{`color="#2e7d32"`, "penwidth=1.5"}
	}
	attrs := []string{`color="#c62828"`, "style=dashed"}
	if detailed && rr.Code != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", string(rr.Code)))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz <svg> tag so the document scales
// cleanly: origin at zero, width/height in pixels instead of points.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI
// displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
