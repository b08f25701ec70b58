package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// Runner encapsulates pipeline execution with usage notification.
// CLI, TUI and API all use this so that every entry point emits the same
// events.
//
// The Runner is stateless except for the notifier and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Notifier notify.Notifier
	Logger   *log.Logger

	// ExportOptions configure PNG and PDF encoding (page size, margin).
	// The scale set in Options takes precedence.
	ExportOptions []export.Option
}

// NewRunner creates a runner that reports usage events to n.
// If n is nil, events are dropped. Notifier failures are logged and never
// fail a pipeline operation.
func NewRunner(n notify.Notifier, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Notifier: notify.Safe(n, logger),
		Logger:   logger,
	}
}

// Build inspects d, fills unset axes and builds chart data.
//
// A ChartGenerated event is emitted once the chart data has been produced.
// The empty dataset state is a valid result but not a chart, so it emits
// nothing. User-facing conditions (errors.IsNotice) are returned unwrapped.
func (r *Runner) Build(ctx context.Context, d *dataset.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	kind := opts.ChartKind()
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnBuildStart(ctx, string(kind), d.Len())

	schema := dataset.Inspect(d)
	spec := chart.NewSpec(kind, d, opts.Axes())
	spec.Policy = opts.StalePolicy()
	data, err := chart.Build(spec)

	elapsed := time.Since(start)
	hooks.OnBuildComplete(ctx, string(kind), elapsed, err)
	if err != nil {
		opts.Logger.Debug("chart not built", "kind", kind, "reason", errors.UserMessage(err))
		return nil, err
	}

	result := &Result{
		Schema:    schema,
		Axes:      data.Axes,
		Data:      data,
		Artifacts: make(map[string]*export.Artifact),
		Stats: Stats{
			Rows:           d.Len(),
			Columns:        len(schema.Columns),
			NumericColumns: len(schema.NumericColumns),
			BuildTime:      elapsed,
		},
	}

	opts.Logger.Debug("built chart",
		"kind", kind,
		"axes", data.Axes,
		"empty", data.Empty,
		"duration", elapsed)

	if !data.Empty {
		_ = r.Notifier.Notify(ctx, notify.ChartGenerated(string(kind), datasetName(d)))
	}
	return result, nil
}

// Execute runs the complete build → draw → export pipeline on a fresh
// surface. With no formats requested it stops after drawing.
func (r *Runner) Execute(ctx context.Context, d *dataset.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Stage 1: Build
	result, err := r.Build(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("built chart data",
		"kind", result.Data.Kind,
		"rows", result.Stats.Rows,
		"duration", result.Stats.BuildTime)

	// Stage 2: Draw
	renderStart := time.Now()
	s := surface.New(opts.SurfaceOptions()...)
	if err := r.Draw(ctx, s, result.Data); err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)

	// Stage 3: Export
	exportStart := time.Now()
	enc := r.encoder(opts)
	base := BaseName(opts.BaseName, d)
	for _, format := range opts.Formats {
		art, err := r.exportFormat(ctx, enc, s, result.Data, format, base, datasetName(d))
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		result.Artifacts[format] = art
	}
	result.Stats.ExportTime = time.Since(exportStart)

	if len(opts.Formats) > 0 {
		opts.Logger.Info("exported outputs",
			"formats", opts.Formats,
			"duration", result.Stats.ExportTime)
	}
	return result, nil
}

// Draw renders data onto s and reports the render to the pipeline hooks.
func (r *Runner) Draw(ctx context.Context, s *surface.Surface, data chart.Data) error {
	start := time.Now()
	err := s.Draw(data)
	observability.Pipeline().OnRender(ctx, string(data.Kind), time.Since(start), err)
	if err == nil {
		r.Logger.Debug("drew chart", "kind", data.Kind, "duration", time.Since(start))
	}
	return err
}

func (r *Runner) encoder(opts Options) *export.Encoder {
	encOpts := append(slices.Clone(r.ExportOptions),
		export.WithScale(opts.Scale),
		export.WithNotifier(r.Notifier),
		export.WithLogger(opts.Logger),
	)
	return export.NewEncoder(encOpts...)
}

func (r *Runner) exportFormat(ctx context.Context, enc *export.Encoder, s *surface.Surface, data chart.Data, format, base, name string) (*export.Artifact, error) {
	if format == FormatJSON {
		return JSONArtifact(data, base)
	}
	return enc.Export(ctx, s, export.Format(format), base, name)
}

// JSONArtifact encodes chart data as a downloadable JSON artifact.
func JSONArtifact(data chart.Data, base string) (*export.Artifact, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode chart data")
	}
	return &export.Artifact{
		Format:      export.Format(FormatJSON),
		Filename:    fmt.Sprintf("%s-%s.json", errors.SanitizeBaseName(base, DefaultBaseName), data.Kind),
		ContentType: "application/json",
		Disposition: "attachment",
		Data:        body,
	}, nil
}

// BaseName returns the artifact base name: name when set, otherwise the
// dataset name without its extension, otherwise DefaultBaseName.
func BaseName(name string, d *dataset.Dataset) string {
	if name != "" {
		return name
	}
	if n := datasetName(d); n != "" {
		return strings.TrimSuffix(n, filepath.Ext(n))
	}
	return DefaultBaseName
}

func datasetName(d *dataset.Dataset) string {
	if d == nil {
		return ""
	}
	return d.Name
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
