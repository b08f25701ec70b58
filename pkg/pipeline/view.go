package pipeline

import (
	"context"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// View is one interactive visualization of a dataset: the current chart
// kind and axes, the surface the last chart was drawn on, and the notice
// shown in its place when no chart could be drawn.
//
// Setters only change the selection. Call Refresh to rebuild and redraw.
// A View is driven from a single event loop and is not safe for concurrent
// use; the surface it owns is.
type View struct {
	runner  *Runner
	opts    Options
	encoder *export.Encoder
	surface *surface.Surface

	dataset *dataset.Dataset
	schema  dataset.Schema
	kind    chart.Kind
	axes    axis.Selection
	data    chart.Data
	notice  string
}

// NewView creates a view over d. opts supplies the initial kind and axes,
// the canvas size, the export scale and the stale axis policy. Unset axes
// are filled from the dataset schema immediately.
func NewView(d *dataset.Dataset, runner *Runner, opts Options) (*View, error) {
	if runner == nil {
		runner = NewRunner(nil, opts.Logger)
	}
	runner.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	v := &View{
		runner:  runner,
		opts:    opts,
		surface: surface.New(opts.SurfaceOptions()...),
		encoder: runner.encoder(opts),
		kind:    opts.ChartKind(),
		axes:    opts.Axes(),
	}
	v.SetDataset(d)
	return v, nil
}

// SetDataset switches the view to d. The current axes are kept or cleared
// according to the stale axis policy, then unset axes are filled from the
// new schema. The surface keeps the previous chart until Refresh.
func (v *View) SetDataset(d *dataset.Dataset) {
	v.dataset = d
	v.schema = dataset.Inspect(d)
	v.axes = axis.SelectDefaults(v.schema, v.axes, axis.WithPolicy(v.opts.StalePolicy()))
}

// SetKind selects the chart kind.
func (v *View) SetKind(kind chart.Kind) error {
	k, err := chart.ParseKind(string(kind))
	if err != nil {
		return err
	}
	v.kind = k
	return nil
}

// SetX selects the X column. Any column may be chosen; an unknown one plots
// blank labels.
func (v *View) SetX(col string) { v.axes.X = col }

// SetY selects the Y column.
func (v *View) SetY(col string) { v.axes.Y = col }

// CycleKind advances to the next chart kind.
func (v *View) CycleKind() chart.Kind {
	v.kind = v.kind.Next()
	return v.kind
}

// CycleX advances X to the next column.
func (v *View) CycleX() string {
	v.axes.X = axis.Cycle(v.schema.Columns, v.axes.X)
	return v.axes.X
}

// CycleY advances Y to the next numeric column.
func (v *View) CycleY() string {
	v.axes.Y = axis.Cycle(v.schema.NumericColumns, v.axes.Y)
	return v.axes.Y
}

// Refresh rebuilds the chart for the current selection and draws it.
//
// When the chart cannot be built for a reason the user should see (a
// scatter over text columns, say) the surface is
// cleared, Notice reports the message and Refresh returns nil. Any other
// failure is returned and also clears the surface.
func (v *View) Refresh(ctx context.Context) error {
	v.notice = ""
	opts := v.opts
	opts.Kind = string(v.kind)
	opts.X, opts.Y = v.axes.X, v.axes.Y

	res, err := v.runner.Build(ctx, v.dataset, opts)
	if err != nil {
		v.surface.Clear()
		v.data = chart.Data{}
		if errors.IsNotice(err) {
			v.notice = errors.UserMessage(err)
			return nil
		}
		return err
	}
	v.axes = res.Axes
	v.data = res.Data
	return v.runner.Draw(ctx, v.surface, res.Data)
}

// Export encodes the current chart. PNG and PDF read the surface, JSON the
// chart data; all three fail with errors.ErrCodeRenderNotReady until a
// Refresh has drawn something.
func (v *View) Export(ctx context.Context, format string) (*export.Artifact, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	base := BaseName(v.opts.BaseName, v.dataset)
	if format == FormatJSON {
		if !v.surface.Ready() {
			return nil, errors.RenderNotReady()
		}
		return JSONArtifact(v.data, base)
	}
	return v.encoder.Export(ctx, v.surface, export.Format(format), base, datasetName(v.dataset))
}

// Dataset returns the dataset being shown.
func (v *View) Dataset() *dataset.Dataset { return v.dataset }

// Schema returns the schema of the dataset.
func (v *View) Schema() dataset.Schema { return v.schema }

// Axes returns the current axis selection.
func (v *View) Axes() axis.Selection { return v.axes }

// Kind returns the current chart kind.
func (v *View) Kind() chart.Kind { return v.kind }

// Data returns the chart data of the last successful Refresh.
func (v *View) Data() chart.Data { return v.data }

// Notice returns the message shown instead of a chart, or "".
func (v *View) Notice() string { return v.notice }

// Surface returns the surface the view draws on.
func (v *View) Surface() *surface.Surface { return v.surface }
