// Package svg draws routed layouts as SVG: one translucent color per
// routing layer, hatched via markers, the routing-area frame, and optional
// free-segment overlays.
package svg

import (
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/route"
)

// margin is the blank border around the drawing, in pixels.
const margin = 8.0

// fitSize is the target pixel length of the longer viewport side when no
// explicit scale is set.
const fitSize = 800.0

// defaultColors is the fill cycle assigned to layers without a palette
// entry, in sorted layer-name order.
var defaultColors = []string{
	"#4363d8", // blue
	"#e6194b", // red
	"#3cb44b", // green
	"#f58231", // orange
	"#911eb4", // purple
	"#0fb5ba", // teal
	"#f032e6", // magenta
	"#9a6324", // brown
}

// Option configures SVG rendering via [Render].
type Option func(*renderer)

type renderer struct {
	scale    float64
	area     geom.Rect
	hasArea  bool
	palette  map[string]string
	segments map[layout.LayerKey][]route.Segment
	title    string
}

// WithScale sets pixels per layout unit. Without it the drawing is scaled
// so its longer side is 800 pixels.
func WithScale(s float64) Option { return func(r *renderer) { r.scale = s } }

// WithArea fixes the viewport to the routing area and draws its frame.
// Without it the viewport is the bounding box of the drawn elements.
func WithArea(a geom.Rect) Option {
	return func(r *renderer) { r.area = a; r.hasArea = true }
}

// WithLayerPalette overrides fill colors per layer name. Layers missing
// from the map keep their default color.
func WithLayerPalette(p map[string]string) Option {
	return func(r *renderer) { r.palette = p }
}

// WithSegments overlays the free track stretches of one layer as outlined
// rectangles. May be given once per layer.
func WithSegments(layer layout.LayerKey, segs []route.Segment) Option {
	return func(r *renderer) {
		if r.segments == nil {
			r.segments = make(map[layout.LayerKey][]route.Segment)
		}
		r.segments[layer] = segs
	}
}

// WithTitle draws a caption above the drawing.
func WithTitle(t string) Option { return func(r *renderer) { r.title = t } }

// frame maps layout coordinates (y up) onto SVG pixels (y down).
type frame struct {
	origin geom.Rect
	scale  float64
	top    float64
}

func (f frame) x(v int64) float64 { return margin + float64(v-f.origin.Min.X)*f.scale }
func (f frame) y(v int64) float64 { return f.top + float64(f.origin.Max.Y-v)*f.scale }

func (f frame) rectAttrs(r geom.Rect) string {
	return fmt.Sprintf(`x="%.2f" y="%.2f" width="%.2f" height="%.2f"`,
		f.x(r.Min.X), f.y(r.Max.Y),
		float64(r.Width())*f.scale, float64(r.Height())*f.scale)
}

// Render draws the element group as an SVG document.
func Render(g *layout.Group, opts ...Option) []byte {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}

	origin := r.area
	if !r.hasArea {
		bbox, ok := g.BBox()
		if !ok {
			bbox = geom.NewRect(geom.Pt(0, 0), geom.Pt(1, 1))
		}
		origin = bbox
	}

	scale := r.scale
	if scale <= 0 {
		longest := max(origin.Width(), origin.Height(), 1)
		scale = fitSize / float64(longest)
	}

	f := frame{origin: origin, scale: scale, top: margin}
	if r.title != "" {
		f.top += 18
	}
	width := 2*margin + float64(origin.Width())*scale
	height := f.top + margin + float64(origin.Height())*scale

	layers := make(map[layout.LayerKey][]geom.Rect)
	var vias []layout.Element
	for _, e := range g.Elements() {
		switch e.Kind {
		case layout.KindRect:
			layers[e.Layer] = append(layers[e.Layer], e.Rect)
		case layout.KindInstance:
			vias = append(vias, e)
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	renderDefs(&buf)

	if r.title != "" {
		fmt.Fprintf(&buf, "  <text x=\"%.1f\" y=\"%.1f\" font-family=\"monospace\" font-size=\"13\" fill=\"#1a1a1a\">%s</text>\n",
			margin, margin+10, escapeText(r.title))
	}
	if r.hasArea {
		fmt.Fprintf(&buf, "  <rect class=\"area\" %s fill=\"none\" stroke=\"#999999\" stroke-width=\"1\" stroke-dasharray=\"6 3\"/>\n",
			f.rectAttrs(r.area))
	}

	colors := assignColors(layers, r.palette)
	for _, key := range sortedKeys(layers) {
		renderLayer(&buf, f, key, layers[key], colors[key.Name])
	}
	renderVias(&buf, f, vias)
	for _, key := range sortedSegmentKeys(r.segments) {
		renderSegments(&buf, f, key, r.segments[key])
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <pattern id="via-hatch" width="4" height="4" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">
      <rect width="4" height="4" fill="#f2f2f2"/>
      <line x1="0" y1="0" x2="0" y2="4" stroke="#1a1a1a" stroke-width="1.5"/>
    </pattern>
  </defs>
`)
}

func renderLayer(buf *bytes.Buffer, f frame, key layout.LayerKey, rects []geom.Rect, color string) {
	extra := ""
	if key.Purpose != "" && key.Purpose != layout.PurposeDrawing {
		extra = ` stroke-dasharray="4 2" fill-opacity="0.25"`
	}
	fmt.Fprintf(buf, "  <g id=\"layer-%s\" fill=\"%s\" fill-opacity=\"0.55\" stroke=\"%s\" stroke-width=\"1\"%s>\n",
		key, color, color, extra)
	for _, r := range rects {
		fmt.Fprintf(buf, "    <rect %s><title>%s %s</title></rect>\n", f.rectAttrs(r), key, r)
	}
	buf.WriteString("  </g>\n")
}

func renderVias(buf *bytes.Buffer, f frame, vias []layout.Element) {
	if len(vias) == 0 {
		return
	}
	buf.WriteString("  <g class=\"vias\" fill=\"url(#via-hatch)\" stroke=\"#1a1a1a\" stroke-width=\"1\">\n")
	for _, v := range vias {
		fmt.Fprintf(buf, "    <rect %s><title>%s %s</title></rect>\n", f.rectAttrs(v.Rect), v.Name, v.Rect)
	}
	buf.WriteString("  </g>\n")
}

func renderSegments(buf *bytes.Buffer, f frame, key layout.LayerKey, segs []route.Segment) {
	if len(segs) == 0 {
		return
	}
	fmt.Fprintf(buf, "  <g class=\"segments\" id=\"segments-%s\" fill=\"none\" stroke=\"#555555\" stroke-width=\"0.8\" stroke-dasharray=\"3 2\">\n", key)
	for _, s := range segs {
		fmt.Fprintf(buf, "    <rect %s><title>%s track %d</title></rect>\n", f.rectAttrs(s.Rect), key, s.TrackID)
	}
	buf.WriteString("  </g>\n")
}

// assignColors maps each bare layer name to a fill color: palette entries
// win, the rest take the default cycle in sorted name order.
func assignColors(layers map[layout.LayerKey][]geom.Rect, palette map[string]string) map[string]string {
	names := make(map[string]struct{})
	for key := range layers {
		names[key.Name] = struct{}{}
	}

	colors := make(map[string]string, len(names))
	i := 0
	for _, name := range slices.Sorted(maps.Keys(names)) {
		if c, ok := palette[name]; ok {
			colors[name] = c
			continue
		}
		colors[name] = defaultColors[i%len(defaultColors)]
		i++
	}
	return colors
}

func sortedKeys(layers map[layout.LayerKey][]geom.Rect) []layout.LayerKey {
	keys := slices.Collect(maps.Keys(layers))
	slices.SortFunc(keys, func(a, b layout.LayerKey) int {
		return cmp.Or(
			strings.Compare(a.Name, b.Name),
			strings.Compare(string(a.Purpose), string(b.Purpose)),
		)
	})
	return keys
}

func sortedSegmentKeys(segments map[layout.LayerKey][]route.Segment) []layout.LayerKey {
	keys := slices.Collect(maps.Keys(segments))
	slices.SortFunc(keys, func(a, b layout.LayerKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
