package pipeline

import (
	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/render"
	"github.com/tracelayer/gridroute/pkg/render/dot"
	"github.com/tracelayer/gridroute/pkg/render/jsonout"
	"github.com/tracelayer/gridroute/pkg/render/svg"
)

// =============================================================================
// Render Stage
// =============================================================================

// Render generates output artifacts in the requested formats. docBytes is
// the document's canonical serialization and becomes the JSON artifact
// as-is; p supplies the request topology for DOT output.
func Render(doc *jsonout.Document, docBytes []byte, p *problem.Problem, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// The SVG feeds the svg, png, and pdf formats; build it at most once.
	var svgData []byte
	layoutSVG := func() []byte {
		if svgData == nil {
			svgData = renderLayoutSVG(doc)
		}
		return svgData
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			artifacts[FormatSVG] = layoutSVG()
		case FormatPNG:
			data, err := render.ToPNG(layoutSVG(), opts.Scale)
			if err != nil {
				return nil, err
			}
			artifacts[FormatPNG] = data
		case FormatPDF:
			data, err := render.ToPDF(layoutSVG())
			if err != nil {
				return nil, err
			}
			artifacts[FormatPDF] = data
		case FormatJSON:
			artifacts[FormatJSON] = docBytes
		case FormatDOT:
			artifacts[FormatDOT] = []byte(dot.ToDOT(p, doc.Result, dot.Options{Detailed: opts.Detailed}))
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format: %s", format)
		}
	}
	return artifacts, nil
}

// renderLayoutSVG draws the routed geometry document to scale.
func renderLayoutSVG(doc *jsonout.Document) []byte {
	svgOpts := []svg.Option{svg.WithArea(doc.AreaRect())}
	if doc.Name != "" {
		svgOpts = append(svgOpts, svg.WithTitle(doc.Name))
	}
	return svg.Render(doc.Group(), svgOpts...)
}
