package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/io"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
)

// chartFlags holds the command-line flags for the chart command. Zero
// values fall back to the configuration.
type chartFlags struct {
	kind    string
	x, y    string
	formats string
	output  string
	width   int
	height  int
	scale   float64
	view    bool
}

// chartCommand creates the chart command.
func (c *CLI) chartCommand() *cobra.Command {
	var f chartFlags

	cmd := &cobra.Command{
		Use:   "chart [file]",
		Short: "Build a chart from a dataset and export it",
		Long: `Build a chart from a dataset and export it.

The chart kind is one of bar (default), line, doughnut (alias pie) or
scatter. Unset axes default to the first column for X and the first numeric
column for Y. Bar and line charts plot the first 10 rows and up to 3 numeric
columns; doughnut charts sum Y per distinct X and keep the 6 largest;
scatter charts plot the first 50 rows and need numeric X and Y.

Artifacts are named <dataset>-<kind>.<format> in the current directory
unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(f.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if f.kind != "" {
				if err := pipeline.ValidateKind(f.kind); err != nil {
					return err
				}
			}
			return c.runChart(cmd.Context(), args[0], formats, f)
		},
	}

	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "chart kind: bar (default), line, doughnut, scatter")
	cmd.Flags().StringVarP(&f.x, "x", "x", "", "X axis column (default: first column)")
	cmd.Flags().StringVarP(&f.y, "y", "y", "", "Y axis column (default: first numeric column)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): png (default), pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVar(&f.width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "canvas height in pixels")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&f.view, "view", false, "open the PNG in the system viewer")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		kinds := make([]string, len(chart.Kinds))
		for i, k := range chart.Kinds {
			kinds[i] = string(k)
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runChart(ctx context.Context, input string, formats []string, f chartFlags) error {
	logger := loggerFromContext(ctx)

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
	opts.Kind, opts.X, opts.Y = f.kind, f.x, f.y
	opts.Formats = formats
	if f.width > 0 {
		opts.Width = f.width
	}
	if f.height > 0 {
		opts.Height = f.height
	}
	if f.scale > 0 {
		opts.Scale = f.scale
	}
	if f.view && !containsFormat(opts.Formats, pipeline.FormatPNG) {
		opts.Formats = append(opts.Formats, pipeline.FormatPNG)
	}

	dir, base := splitOutput(f.output)
	opts.BaseName = base

	prog := newProgress(logger)
	res, err := spin(ctx, fmt.Sprintf("Charting %s...", d.Name), func() (*pipeline.Result, error) {
		return e.runner().Execute(ctx, d, opts)
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s chart of %s", res.Data.Kind, res.Axes))

	if res.Data.Empty {
		printWarning("No data available")
	}
	printDetail("%d rows · %d columns · %d numeric", res.Stats.Rows, res.Stats.Columns, res.Stats.NumericColumns)
	logger.Debug("timings", "build", res.Stats.BuildTime, "render", res.Stats.RenderTime, "export", res.Stats.ExportTime)

	paths, err := writeArtifacts(res.Artifacts, formats, dir, f.output)
	if err != nil {
		return err
	}
	printSuccess("Wrote %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}

	if f.view {
		path, err := viewPath(res.Artifacts[pipeline.FormatPNG], paths, dir)
		if err != nil {
			return err
		}
		if err := openFile(path); err != nil {
			printWarning("Could not open viewer: %v", err)
		}
	}
	return nil
}

// splitOutput splits the -o flag into a directory and an artifact base
// name. A known format extension is dropped from the base.
func splitOutput(output string) (dir, base string) {
	if output == "" {
		return ".", ""
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		output = strings.TrimSuffix(output, ext)
	}
	return filepath.Dir(output), filepath.Base(output)
}

// writeArtifacts writes the requested artifacts into dir under their own
// file names. A single format with an explicit output path is written to
// exactly that path.
func writeArtifacts(artifacts map[string]*export.Artifact, formats []string, dir, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		art, ok := artifacts[strings.ToLower(strings.TrimSpace(format))]
		if !ok {
			continue
		}
		path := filepath.Join(dir, art.Filename)
		if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
			path = output
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return paths, fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// viewPath returns the written PNG, writing it into dir first when it was
// only produced for viewing.
func viewPath(art *export.Artifact, written []string, dir string) (string, error) {
	for _, p := range written {
		if strings.EqualFold(filepath.Ext(p), ".png") {
			return p, nil
		}
	}
	path := filepath.Join(dir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func containsFormat(formats []string, want string) bool {
	for _, f := range formats {
		if strings.EqualFold(strings.TrimSpace(f), want) {
			return true
		}
	}
	return false
}

// openFile hands path to the system viewer.
func openFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	target := (&url.URL{Scheme: "file", Path: abs}).String()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", abs)
	case "linux":
		cmd = exec.Command("xdg-open", abs)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
