package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/store"
)

// runsCommand creates the runs command with list/show/delete subcommands.
func (c *CLI) runsCommand() *cobra.Command {
	var storeSpec string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded routing runs",
		Long: `Inspect recorded routing runs.

Every 'gridroute route' invocation and every API route call is recorded in
the run store together with its options, per-net outcome, and rendered
artifacts. Runs are addressed by ID; any unambiguous ID prefix works.`,
	}

	cmd.PersistentFlags().StringVar(&storeSpec, "store", "", "run store: directory or mongodb:// URI (default ~/.config/gridroute/runs)")

	cmd.AddCommand(c.runsListCommand(&storeSpec))
	cmd.AddCommand(c.runsShowCommand(&storeSpec))
	cmd.AddCommand(c.runsDeleteCommand(&storeSpec))

	return cmd
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand(storeSpec *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *storeSpec)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer st.Close()

			runs, err := st.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}

			for _, run := range runs {
				fmt.Println(runLine(run))
			}
			printNewline()
			printDetail("%d runs", len(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	return cmd
}

// runLine formats one run for the list view.
func runLine(run *store.Run) string {
	status := styleIconSuccess.Render(iconSuccess)
	outcome := ""
	if run.Result != nil {
		outcome = fmt.Sprintf("%d routed", run.Result.Routed)
		if run.Result.Failed > 0 {
			status = styleIconError.Render(iconError)
			outcome += StyleError.Render(fmt.Sprintf(", %d failed", run.Result.Failed))
		}
	}

	name := run.Name
	if name == "" {
		name = "(unnamed)"
	}

	return fmt.Sprintf("%s %s  %-20s %-12s %s",
		status,
		StyleHighlight.Render(shortID(run.ID)),
		StyleValue.Render(name),
		StyleDim.Render(formatRelativeTime(run.CreatedAt)),
		StyleDim.Render(outcome))
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand(storeSpec *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *storeSpec)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer st.Close()

			run, err := loadRun(ctx, st, args[0])
			if err != nil {
				return err
			}

			printKeyValue("ID", run.ID)
			printKeyValue("Name", run.Name)
			printKeyValue("Created", run.CreatedAt.Local().Format(time.RFC1123))
			if run.Elapsed > 0 {
				printKeyValue("Elapsed", run.Elapsed.Round(time.Millisecond).String())
			}
			printKeyValue("Problem", run.ProblemHash)
			if run.Options.Straps {
				printKeyValue("Straps", "yes")
			}

			if res := run.Result; res != nil {
				printNewline()
				printStats(res.Routed, res.Failed, res.Vias, false)
				for _, ls := range res.Layers {
					printDetail("%-8s %d wires", ls.Layer, ls.Rects)
				}
				if res.Straps > 0 {
					printDetail("%-8s %d straps", "", res.Straps)
				}
				for _, rr := range res.Requests {
					if !rr.Routed {
						printDetail("%s %s: %s", iconError, rr.Net, rr.Error)
					}
				}
			}

			if len(run.Artifacts) > 0 {
				printNewline()
				for _, format := range sortedFormats(run.Artifacts) {
					printDetail("%-6s %s", format, formatBytes(int64(len(run.Artifacts[format]))))
				}
			}
			return nil
		},
	}
}

// runsDeleteCommand creates the "runs delete" subcommand.
func (c *CLI) runsDeleteCommand(storeSpec *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *storeSpec)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer st.Close()

			id, err := resolveRunID(ctx, st, args[0])
			if err != nil {
				return describeRunErr(err, args[0])
			}
			if err := st.Delete(ctx, id); err != nil {
				return describeRunErr(err, args[0])
			}
			printSuccess("Deleted run %s", shortID(id))
			return nil
		},
	}
}

// =============================================================================
// Store Helpers
// =============================================================================

// openStore opens the run store named by spec: a mongodb:// URI selects the
// Mongo backend, anything else is a file store directory. An empty spec uses
// the default directory under ~/.config.
func openStore(ctx context.Context, spec string) (store.RunStore, error) {
	if strings.HasPrefix(spec, "mongodb://") || strings.HasPrefix(spec, "mongodb+srv://") {
		return store.NewMongoStore(ctx, spec, appName)
	}
	return store.NewFileStore(spec)
}

// loadRun fetches a run by ID or unambiguous ID prefix.
func loadRun(ctx context.Context, st store.RunStore, idOrPrefix string) (*store.Run, error) {
	id, err := resolveRunID(ctx, st, idOrPrefix)
	if err != nil {
		return nil, describeRunErr(err, idOrPrefix)
	}
	run, err := st.Get(ctx, id)
	if err != nil {
		return nil, describeRunErr(err, idOrPrefix)
	}
	return run, nil
}

// resolveRunID expands a run ID prefix to the full ID. Full UUIDs pass
// through untouched; anything else must prefix exactly one recorded run.
func resolveRunID(ctx context.Context, st store.RunStore, id string) (string, error) {
	if _, err := uuid.Parse(id); err == nil {
		return id, nil
	}
	runs, err := st.List(ctx, 0)
	if err != nil {
		return "", err
	}
	match := ""
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			if match != "" {
				return "", errors.New(errors.ErrCodeInvalidInput, "run ID prefix %q is ambiguous", id)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", store.ErrNotFound
	}
	return match, nil
}

// describeRunErr attaches the user's run reference to store errors.
func describeRunErr(err error, ref string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeRunNotFound, "no run matches %q", ref)
	}
	return err
}

// shortID abbreviates a run UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// sortedFormats returns artifact format names in stable order.
func sortedFormats(artifacts map[string][]byte) []string {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// formatRelativeTime renders t relative to now for compact listings.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
