package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/pkg/pipeline"
)

// routeCommand creates the route command, the main entry point.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		storeSpec  string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "route [problem.json]",
		Short: "Route a problem and write the rendered artifacts",
		Long: `Route a problem and write the rendered artifacts.

The route command loads a problem file, resolves its technology (inline or
referenced tech file), routes every request, and renders the result. Output
formats: svg (default), png, pdf, json, dot.

Results are cached locally for faster subsequent runs, and every invocation
is recorded in the run store for 'gridroute runs' and the HTTP API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRoute(cmd.Context(), args[0], opts, output, storeSpec, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "reroute even when a cached result exists")
	cmd.Flags().StringVar(&storeSpec, "store", "", "run store: directory or mongodb:// URI (default ~/.config/gridroute/runs)")

	// Routing flags
	cmd.Flags().StringVar(&opts.TechPath, "tech", "", "tech file overriding the problem's reference")
	cmd.Flags().BoolVar(&opts.Straps, "straps", false, "fill leftover tracks with power straps")
	cmd.Flags().StringVar(&opts.Name, "name", "", "run name (default: problem name)")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG raster scale factor")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include endpoint geometry in dot output")

	return cmd
}

// runRoute executes the pipeline for the problem file and writes artifacts.
func (c *CLI) runRoute(ctx context.Context, input string, opts pipeline.Options, output, storeSpec string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if st, err := openStore(ctx, storeSpec); err == nil {
		runner.Store = st
	} else {
		c.Logger.Warnf("Run history disabled: %v", err)
	}

	opts.ProblemPath = input
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Routing %s...", input))
	restore := watchStages(spinner)
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	restore()
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printRouteSummary(result)

	if err := writeArtifacts(ctx, artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	}); err != nil {
		return err
	}

	printStats(result.Routing.Routed, result.Routing.Failed, result.Routing.Vias, result.CacheInfo.RouteHit)
	if result.RunID != "" {
		printNewline()
		printNextStep("Inspect", "gridroute runs show "+shortID(result.RunID))
	}
	return nil
}

// printRouteSummary prints the per-net outcome of a pipeline run.
func printRouteSummary(result *pipeline.Result) {
	res := result.Routing
	if res.Failed == 0 {
		printSuccess("Routed %d nets", res.Routed)
		return
	}

	printWarning("Routed %d of %d nets", res.Routed, res.Routed+res.Failed)
	for _, rr := range res.Requests {
		if !rr.Routed {
			printDetail("%s %s: %s", iconError, rr.Net, rr.Error)
		}
	}
}
