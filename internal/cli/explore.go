package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/io"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
)

// Explore styles
var (
	exploreKeyStyle    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	exploreLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(8)
	exploreStatusStyle = lipgloss.NewStyle().Foreground(colorGreen)
	exploreErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// exploreRows limits the rows of the data table shown under the chart.
const exploreRows = 10

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		kind   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a dataset interactively",
		Long: `Explore a dataset interactively.

Keys:
  tab      next chart kind
  x / y    next X column / next numeric Y column
  p / d    export PNG / PDF
  j        export chart data as JSON
  q        quit

Every chart built and every export is recorded in the session history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], kind, outDir)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "initial chart kind")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory exports are written to")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input, kind, outDir string) error {
	e, err := c.openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	d, err := io.ImportFile(input)
	if err != nil {
		return err
	}

	opts := e.options()
	opts.Kind = kind
	view, err := pipeline.NewView(d, e.runner(), opts)
	if err != nil {
		return err
	}

	m := newExploreModel(ctx, view, outDir)
	if err := m.refresh(); err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// exploreModel - Interactive chart view
// =============================================================================

// exploreModel is the bubbletea model of the explore command. Every key is
// handled to completion inside Update, so the view is only ever touched by
// the program's event loop.
type exploreModel struct {
	ctx    context.Context
	view   *pipeline.View
	outDir string

	status string
	err    error
}

func newExploreModel(ctx context.Context, view *pipeline.View, outDir string) *exploreModel {
	return &exploreModel{ctx: ctx, view: view, outDir: outDir}
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.status, m.err = "", nil
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.view.CycleKind()
		m.err = m.refresh()
	case "x":
		m.view.CycleX()
		m.err = m.refresh()
	case "y":
		m.view.CycleY()
		m.err = m.refresh()
	case "p":
		m.export(pipeline.FormatPNG)
	case "d":
		m.export(pipeline.FormatPDF)
	case "j":
		m.export(pipeline.FormatJSON)
	}
	return m, nil
}

func (m *exploreModel) refresh() error {
	return m.view.Refresh(m.ctx)
}

// export writes the current chart in format to the output directory.
func (m *exploreModel) export(format string) {
	art, err := m.view.Export(m.ctx, format)
	if err != nil {
		m.err = err
		return
	}
	path := filepath.Join(m.outDir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		m.err = fmt.Errorf("write %s: %w", path, err)
		return
	}
	m.status = "Exported " + path
}

func (m *exploreModel) View() string {
	var b strings.Builder

	axes := m.view.Axes()
	title := m.view.Data().Title
	if title == "" {
		title = m.view.Dataset().Name
	}

	b.WriteString(StyleTitle.Render(title) + "\n")
	b.WriteString(exploreLabelStyle.Render("kind") + exploreKeyStyle.Render(string(m.view.Kind())) + "\n")
	b.WriteString(exploreLabelStyle.Render("x") + StyleValue.Render(axes.X) + "\n")
	b.WriteString(exploreLabelStyle.Render("y") + StyleValue.Render(axes.Y) + "\n\n")

	switch {
	case m.view.Notice() != "":
		b.WriteString(StyleWarning.Render(m.view.Notice()))
	case m.view.Data().Empty:
		b.WriteString(StyleWarning.Render("No data available"))
	default:
		headers, rows := chartTable(m.view.Data())
		b.WriteString(renderTable(headers, rows, map[int]bool{}))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(exploreErrorStyle.Render(iconError+" "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(exploreStatusStyle.Render(iconSuccess+" "+m.status) + "\n")
	}
	b.WriteString(StyleDim.Render("tab kind  x/y axes  p png  d pdf  j json  q quit"))
	return b.String()
}

// chartTable renders chart data as text rows for the terminal.
func chartTable(data chart.Data) ([]string, [][]string) {
	var rows [][]string
	switch data.Kind {
	case chart.KindDoughnut:
		var total float64
		for _, s := range data.Slices {
			total += s.Value
		}
		for _, s := range data.Slices {
			share := "0%"
			if total > 0 {
				share = strconv.FormatFloat(100*s.Value/total, 'f', 1, 64) + "%"
			}
			rows = append(rows, []string{s.Label, formatValue(s.Value), share})
		}
		return []string{data.Axes.X, data.Axes.Y, "share"}, rows

	case chart.KindScatter:
		for i, p := range data.Points {
			if i == exploreRows {
				break
			}
			rows = append(rows, []string{formatValue(p.X), formatValue(p.Y)})
		}
		return []string{data.Axes.X, data.Axes.Y}, rows

	default:
		headers := []string{data.Axes.X}
		for _, s := range data.Series {
			headers = append(headers, s.Label)
		}
		for i, label := range data.Labels {
			row := []string{label}
			for _, s := range data.Series {
				row = append(row, formatValue(s.Values[i]))
			}
			rows = append(rows, row)
		}
		return headers, rows
	}
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
