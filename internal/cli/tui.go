package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tracelayer/gridroute/pkg/pipeline"
	"github.com/tracelayer/gridroute/pkg/problem"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	detailBoxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// tuiCommand creates the tui command for the interactive net browser.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		techPath string
		straps   bool
		noCache  bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "tui [problem.json]",
		Short: "Browse per-net route status interactively",
		Long: `Browse per-net route status interactively.

The problem is routed first (cached results are reused), then every request
is listed with its outcome. The detail pane shows the endpoints of the net
under the cursor and, for failed nets, the error that stopped it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0], techPath, straps, noCache, refresh)
		},
	}

	cmd.Flags().StringVar(&techPath, "tech", "", "tech file overriding the problem's reference")
	cmd.Flags().BoolVar(&straps, "straps", false, "fill leftover tracks with power straps")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reroute even when a cached result exists")

	return cmd
}

// runTUI routes the problem and opens the net browser on the result.
func (c *CLI) runTUI(ctx context.Context, input, techPath string, straps, noCache, refresh bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Routing %s...", input))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		ProblemPath: input,
		TechPath:    techPath,
		Straps:      straps,
		Formats:     []string{pipeline.FormatJSON},
		NoCache:     noCache,
		Refresh:     refresh,
		Logger:      c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(result.Routing.Requests) == 0 {
		printInfo("Problem has no routing requests")
		return nil
	}

	m := NewNetBrowserModel(result.Problem, result.Routing)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

// =============================================================================
// NetBrowserModel - Per-net route status browser
// =============================================================================

// NetBrowserModel is the bubbletea model for browsing per-net outcomes.
// The request list and the result's per-request entries share one order, so
// the cursor indexes both.
type NetBrowserModel struct {
	Problem *problem.Problem
	Result  *problem.Result
	Cursor  int
	Height  int
	Offset  int
}

// NewNetBrowserModel creates a browser over a routed problem.
func NewNetBrowserModel(p *problem.Problem, res *problem.Result) NetBrowserModel {
	return NetBrowserModel{
		Problem: p,
		Result:  res,
		Height:  15,
	}
}

func (m NetBrowserModel) Init() tea.Cmd {
	return nil
}

func (m NetBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Result.Requests)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "g", "home":
			m.Cursor = 0
			m.Offset = 0
		case "G", "end":
			m.Cursor = len(m.Result.Requests) - 1
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help, detail pane, and footer.
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NetBrowserModel) View() string {
	var b strings.Builder

	title := "Route Status"
	if m.Result.Name != "" {
		title += ": " + m.Result.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.summaryLine()))
	b.WriteString("\n\n")

	b.WriteString(m.tableView())
	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Result.Requests))))

	return b.String()
}

// summaryLine condenses the whole-problem outcome into one line.
func (m NetBrowserModel) summaryLine() string {
	parts := []string{fmt.Sprintf("%d routed", m.Result.Routed)}
	if m.Result.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.Result.Failed))
	}
	if m.Result.Vias > 0 {
		parts = append(parts, fmt.Sprintf("%d vias", m.Result.Vias))
	}
	if m.Result.Straps > 0 {
		parts = append(parts, fmt.Sprintf("%d straps", m.Result.Straps))
	}
	return strings.Join(parts, " · ")
}

// tableView renders the visible window of the net list.
func (m NetBrowserModel) tableView() string {
	end := m.Offset + m.Height
	if end > len(m.Result.Requests) {
		end = len(m.Result.Requests)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		rr := m.Result.Requests[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		status := iconSuccess + " routed"
		if !rr.Routed {
			status = iconError + " failed"
		}

		src, dst := "", ""
		if i < len(m.Problem.Requests) {
			src = m.Problem.Requests[i].Src.Layer
			dst = m.Problem.Requests[i].Dst.Layer
		}

		rows = append(rows, []string{cursor, rr.Net, status, src, dst, string(rr.Code)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Net", "Status", "Src", "Dst", "Code").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}

			idx := m.Offset + row
			if idx >= len(m.Result.Requests) {
				return lipgloss.NewStyle()
			}
			rr := m.Result.Requests[idx]

			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			switch {
			case col == 2 && rr.Routed:
				return base.Foreground(colorGreen)
			case col == 2:
				return base.Foreground(colorRed)
			case col >= 3:
				return base.Foreground(colorDim)
			case idx == m.Cursor:
				return base.Foreground(colorCyan)
			default:
				return base.Foreground(colorWhite)
			}
		})

	return t.Render()
}

// detailView renders the detail pane for the net under the cursor.
func (m NetBrowserModel) detailView() string {
	if m.Cursor >= len(m.Result.Requests) {
		return ""
	}
	rr := m.Result.Requests[m.Cursor]

	lines := []string{StyleHighlight.Render(rr.Net)}
	if m.Cursor < len(m.Problem.Requests) {
		req := m.Problem.Requests[m.Cursor]
		lines = append(lines,
			listDimStyle.Render("src ")+formatEndpoint(req.Src),
			listDimStyle.Render("dst ")+formatEndpoint(req.Dst))
	}
	if rr.Routed {
		lines = append(lines, StyleSuccess.Render(iconSuccess+" Routed"))
	} else {
		lines = append(lines, StyleError.Render(iconError+" "+rr.Error))
		if rr.Code != "" {
			lines = append(lines, listDimStyle.Render(string(rr.Code)))
		}
	}

	return detailBoxStyle.Render(strings.Join(lines, "\n"))
}

// formatEndpoint renders one request endpoint as "layer (x0, y0)-(x1, y1)".
func formatEndpoint(e problem.Endpoint) string {
	return fmt.Sprintf("%-4s %s", e.Layer, e.Rect.Geom())
}
