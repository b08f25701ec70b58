package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Build dispatches spec to the builder for its kind.
//
// The kind is normalised with [ParseKind] ("" means bar, "pie" means
// doughnut) and a non-positive RowCap falls back to the kind's cap. Unset
// axes are filled from the dataset schema on every call, so a caller may
// pass an empty selection. A nil or empty dataset yields the empty state
// (Data.Empty) for every kind and never an error.
func Build(spec Spec) (Data, error) {
	kind, err := normalizeKind(spec.Kind)
	if err != nil {
		return Data{}, err
	}
	rowCap := spec.RowCap
	if rowCap <= 0 {
		rowCap = kind.RowCap()
	}

	d := spec.Dataset
	if d.Empty() {
		return Data{Kind: kind, Title: title(d, kind), Empty: true, Axes: spec.Axes}, nil
	}

	schema := dataset.Inspect(d)
	axes := axis.SelectDefaults(schema, spec.Axes, axis.WithPolicy(spec.Policy))

	var data Data
	switch kind {
	case KindBar, KindLine:
		data = BuildSeries(kind, d, schema, axes, rowCap)
	case KindDoughnut:
		data, err = BuildAggregate(d, axes)
	case KindScatter:
		data, err = BuildScatter(d, axes, rowCap)
	}
	if err != nil {
		return Data{}, err
	}
	data.Title = title(d, kind)
	data.Axes = axes
	return data, nil
}

func normalizeKind(k Kind) (Kind, error) {
	if k == "" {
		return KindBar, nil
	}
	return ParseKind(string(k))
}

func title(d *dataset.Dataset, kind Kind) string {
	name := ""
	if d != nil {
		name = d.Name
	}
	return fmt.Sprintf("%s - %s Chart", name, kind.Title())
}

// BuildSeries builds bar or line data from the first rowCap rows (all rows
// when rowCap is not positive).
//
// Labels are the [Label] of the X column. Each of the first [MaxSeries] numeric
// columns becomes a series; a cell that is not a finite number plots as 0.
// A schema without numeric columns yields labels and no series.
func BuildSeries(kind Kind, d *dataset.Dataset, schema dataset.Schema, axes axis.Selection, rowCap int) Data {
	rows := d.Head(rowCap)
	data := Data{Kind: kind, Axes: axes, Labels: make([]string, len(rows)), Series: []Series{}}
	for i, row := range rows {
		data.Labels[i] = Label(row.Get(axes.X))
	}

	cols := schema.NumericColumns
	if len(cols) > MaxSeries {
		cols = cols[:MaxSeries]
	}
	for i, col := range cols {
		s := Series{
			Label:       col,
			Values:      make([]float64, len(rows)),
			Border:      PaletteAt(i),
			Fill:        PaletteAt(i).WithAlpha(FillAlpha),
			BorderWidth: SeriesBorderWidth,
		}
		for j, row := range rows {
			s.Values[j] = finiteOr(row.Get(col).NumberOr(0), 0)
		}
		data.Series = append(data.Series, s)
	}
	return data
}

// Aggregate groups every row of d by the [Label] of column x and sums the
// numeric coercion of column y. Values that coerce to NaN count as 0;
// infinities are kept.
// Groups are sorted by descending sum; ties keep first-encounter order.
// The result is not clipped.
func Aggregate(d *dataset.Dataset, x, y string) []Slice {
	if d.Empty() {
		return []Slice{}
	}
	index := make(map[string]int)
	var groups []Slice
	for _, row := range d.Rows {
		key := Label(row.Get(x))
		v := row.Get(y).Float()
		if math.IsNaN(v) {
			v = 0
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Slice{Label: key})
		}
		groups[i].Value += v
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value > groups[j].Value
	})
	return groups
}

// BuildAggregate builds doughnut data from the whole dataset: the
// [MaxSlices] largest groups of [Aggregate], slice i colored by [SliceColor].
// An empty aggregate is reported as errors.ErrCodeNoChartData.
func BuildAggregate(d *dataset.Dataset, axes axis.Selection) (Data, error) {
	groups := Aggregate(d, axes.X, axes.Y)
	if len(groups) == 0 {
		return Data{}, errors.NoChartData()
	}
	if len(groups) > MaxSlices {
		groups = groups[:MaxSlices]
	}
	for i := range groups {
		groups[i].Color = SliceColor(i)
	}
	return Data{Kind: KindDoughnut, Axes: axes, Slices: groups}, nil
}

// BuildScatter builds scatter data from the first rowCap rows.
//
// Only row 0 is type-checked: both selected columns must hold numbers there,
// otherwise errors.ErrCodeNonNumericAxis is returned and no points are
// produced. Later rows are coerced and may yield NaN coordinates.
func BuildScatter(d *dataset.Dataset, axes axis.Selection, rowCap int) (Data, error) {
	if d.Empty() {
		return Data{Kind: KindScatter, Empty: true, Axes: axes}, nil
	}
	first := d.Rows[0]
	if !first.Get(axes.X).IsNumber() || !first.Get(axes.Y).IsNumber() {
		return Data{}, errors.NonNumericAxis()
	}

	rows := d.Head(rowCap)
	data := Data{
		Kind:       KindScatter,
		Axes:       axes,
		Points:     make([]Point, len(rows)),
		PointLabel: fmt.Sprintf("%s vs %s", axes.Y, axes.X),
		PointColor: ScatterColor,
	}
	for i, row := range rows {
		data.Points[i] = Point{X: row.Get(axes.X).Float(), Y: row.Get(axes.Y).Float()}
	}
	return data, nil
}

// Label returns the category label of an X value. Null and missing cells
// stay distinct from the empty string: they label as "null" and
// "undefined".
func Label(v dataset.Value) string {
	switch v.Kind() {
	case dataset.KindNull:
		return "null"
	case dataset.KindAbsent:
		return "undefined"
	default:
		return v.Text()
	}
}

func finiteOr(f, def float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
