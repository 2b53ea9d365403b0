package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/pkg/problem"
)

// techCommand creates the tech command with validate/show subcommands.
func (c *CLI) techCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tech",
		Short: "Inspect technology files",
	}

	cmd.AddCommand(c.techValidateCommand())
	cmd.AddCommand(c.techShowCommand())

	return cmd
}

// techValidateCommand creates the "tech validate" subcommand.
func (c *CLI) techValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [tech.toml]",
		Short: "Check a technology file for errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := problem.LoadTech(args[0])
			if err != nil {
				return err
			}
			printSuccess("%s is valid", args[0])
			printDetail("%d layers, %d via rules", len(t.Layers), len(t.Vias))
			return nil
		},
	}
}

// techShowCommand creates the "tech show" subcommand.
func (c *CLI) techShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [tech.toml]",
		Short: "Print a technology's layer stack and via rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := problem.LoadTech(args[0])
			if err != nil {
				return err
			}
			showTech(t)
			return nil
		},
	}
}

// showTech prints the stack bottom-up with wire dimensions and via rules.
func showTech(t *problem.Tech) {
	printKeyValue("Name", t.Name)
	grid := t.Grid
	if grid == 0 {
		grid = 1
	}
	printKeyValue("Grid", strconv.FormatInt(grid, 10))

	printNewline()
	fmt.Println(StyleTitle.Render("Layers"))
	for i, l := range t.Layers {
		fmt.Printf("  %d  %s %-6s  line %-6d space %-6d pitch %d\n",
			i,
			StyleHighlight.Render(fmt.Sprintf("%-8s", l.Name)),
			StyleDim.Render(l.Dir.String()),
			l.Line, l.Space, l.Pitch())
	}

	if len(t.Vias) == 0 {
		return
	}
	printNewline()
	fmt.Println(StyleTitle.Render("Vias"))
	for _, v := range t.Vias {
		fmt.Printf("  %s  cut %-8s size %-6d space %d\n",
			StyleHighlight.Render(fmt.Sprintf("%-9s", v.Bot+"-"+v.Top)),
			v.Cut, v.Size, v.Space)
	}
}
