package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/pipeline"
	"github.com/tracelayer/gridroute/pkg/render/dot"
)

// topologyOpts holds the command-line flags for the topology command.
type topologyOpts struct {
	formats  []string // output formats: svg, png, pdf, dot
	output   string   // output file path (or base path for multiple outputs)
	tech     string   // tech file override
	detailed bool     // include endpoint geometry in node labels
	scale    float64  // PNG raster scale factor
	noCache  bool     // disable result caching
	refresh  bool     // reroute even when a cached result exists
}

// topologyFormats is the set of formats the topology command can emit.
var topologyFormats = map[string]bool{"svg": true, "png": true, "pdf": true, "dot": true}

// topologyCommand creates the topology command for connectivity diagrams.
func (c *CLI) topologyCommand() *cobra.Command {
	var formatsStr string
	opts := topologyOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "topology [problem.json]",
		Short: "Render net connectivity as a Graphviz diagram",
		Long: `Render net connectivity as a Graphviz diagram.

The topology view abstracts away geometry: nodes are request endpoints,
edges are the routed (or failed) connections between them. Graphviz lays
the graph out, which makes dense multi-net problems much easier to read
than the physical layout.

Output paths derive from the problem name with a .topology infix, e.g.
adder.topology.svg, so they never collide with 'route' artifacts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateTopologyFormats(opts.formats); err != nil {
				return err
			}
			return c.runTopology(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.tech, "tech", "", "tech file overriding the problem's reference")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include endpoint geometry in node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG raster scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reroute even when a cached result exists")

	return cmd
}

// validateTopologyFormats checks that all requested formats are renderable.
func validateTopologyFormats(formats []string) error {
	for _, f := range formats {
		if !topologyFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput,
				"invalid topology format %q (valid: svg, png, pdf, dot)", f)
		}
	}
	return nil
}

// runTopology routes the problem, then renders the connectivity graph.
func (c *CLI) runTopology(ctx context.Context, input string, o topologyOpts) error {
	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Routing %s...", input))
	restore := watchStages(spinner)
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		ProblemPath: input,
		TechPath:    o.tech,
		Formats:     []string{pipeline.FormatDOT},
		Detailed:    o.detailed,
		NoCache:     o.noCache,
		Refresh:     o.refresh,
		Logger:      c.Logger,
	})
	restore()
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	artifacts, err := renderTopology(ctx, string(result.Artifacts[pipeline.FormatDOT]), o)
	if err != nil {
		return err
	}

	printRouteSummary(result)
	if err := writeArtifacts(ctx, artifactWriteParams{
		artifacts: artifacts,
		formats:   o.formats,
		input:     input,
		output:    o.output,
		suffix:    ".topology",
	}); err != nil {
		return err
	}
	printStats(result.Routing.Routed, result.Routing.Failed, result.Routing.Vias, result.CacheInfo.RouteHit)
	return nil
}

// renderTopology runs the DOT text through Graphviz for each format.
func renderTopology(ctx context.Context, dotText string, o topologyOpts) (map[string][]byte, error) {
	logger := loggerFromContext(ctx)
	artifacts := make(map[string][]byte, len(o.formats))

	spinner := newSpinnerWithContext(ctx, "Rendering topology...")
	spinner.Start()
	defer spinner.Stop()

	for _, format := range o.formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case "dot":
			data = []byte(dotText)
		case "svg":
			logger.Debug("Rendering topology SVG")
			data, err = dot.RenderSVG(dotText)
		case "pdf":
			logger.Debug("Rendering topology PDF")
			data, err = dot.RenderPDF(dotText)
		case "png":
			logger.Debug("Rendering topology PNG")
			data, err = dot.RenderPNG(dotText, o.scale)
		}
		if err != nil {
			return nil, fmt.Errorf("render topology %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
