package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/pipeline"
	"github.com/tracelayer/gridroute/pkg/route"
)

// segmentsCommand creates the segments command for free-track reporting.
func (c *CLI) segmentsCommand() *cobra.Command {
	var (
		layerName string
		techPath  string
		output    string
		routed    bool
	)

	cmd := &cobra.Command{
		Use:   "segments [problem.json]",
		Short: "Report free track segments per layer",
		Long: `Report free track segments per layer.

A segment is an unused stretch of one routing track, rounded so it can host
a via to a neighboring layer. The report covers the problem's obstacles and
occupied seeds; with --routed the requests are routed first, so the report
shows what is left for straps or further wiring.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSegments(cmd.Context(), args[0], layerName, techPath, output, routed)
		},
	}

	cmd.Flags().StringVarP(&layerName, "layer", "l", "", "report a single routing layer")
	cmd.Flags().StringVar(&techPath, "tech", "", "tech file overriding the problem's reference")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&routed, "routed", false, "route all requests before reporting")

	return cmd
}

// runSegments builds the router for the problem and reports free segments.
func (c *CLI) runSegments(ctx context.Context, input, layerName, techPath, output string, routed bool) error {
	p, tech, err := pipeline.Load(pipeline.Options{ProblemPath: input, TechPath: techPath})
	if err != nil {
		return err
	}

	router, err := p.Router(tech, c.Logger)
	if err != nil {
		return err
	}

	if routed {
		prog := newProgress(c.Logger)
		res := p.RouteAll(ctx, router)
		prog.done(fmt.Sprintf("Routed %d of %d nets", res.Routed, len(p.Requests)))
	}

	var filter layout.LayerKey
	if layerName != "" {
		filter = layout.ParseLayer(layerName)
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	matched := false
	for _, ti := range router.Layers() {
		if layerName != "" && ti.Layer() != filter {
			continue
		}
		matched = true
		writeLayerSegments(out, ti, router.Segments(ti.Layer()))
	}
	if !matched {
		return errors.New(errors.ErrCodeInvalidLayer, "no routing layer %q in the stack", layerName)
	}
	return nil
}

// writeLayerSegments writes one layer's free segments as a plain-text block.
func writeLayerSegments(w io.Writer, ti route.TrackInfo, segs []route.Segment) {
	fmt.Fprintf(w, "%s (%s): %d free segments\n", ti.Layer(), ti.Dir(), len(segs))
	for _, s := range segs {
		fmt.Fprintf(w, "  track %-4d %-28s %s\n", s.TrackID, s.Rect, boundaryMark(s.LowerBoundary, s.UpperBoundary))
	}
}

// boundaryMark describes which routing-area edges a segment reaches.
func boundaryMark(lower, upper bool) string {
	switch {
	case lower && upper:
		return "full track"
	case lower:
		return "reaches lower edge"
	case upper:
		return "reaches upper edge"
	default:
		return "interior"
	}
}
