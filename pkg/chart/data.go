// Package chart turns a dataset and an axis selection into render-ready chart
// data for four chart kinds.
//
// # Chart Kinds
//
//   - bar, line: the first [SeriesRowCap] rows become category labels; up to
//     [MaxSeries] numeric columns become series
//   - doughnut: every row is grouped by the X text and Y values are summed;
//     the [MaxSlices] largest groups become slices
//   - scatter: the first [ScatterRowCap] rows become points, provided row 0
//     holds numbers in both selected columns
//
// Builders are pure functions of their inputs. Conditions a user should see
// instead of a chart come back as *errors.Error values with a short message
// (see errors.IsNotice).
//
// # Usage
//
//	spec := chart.NewSpec(chart.KindDoughnut, d, axis.Selection{X: "city", Y: "sales"})
//	data, err := chart.Build(spec)
//	if errors.IsNotice(err) {
//	    fmt.Println(errors.UserMessage(err))
//	}
package chart

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/dataset"
)

// Sampling and clipping limits.
const (
	// SeriesRowCap is the number of rows shown by bar and line charts.
	SeriesRowCap = 10

	// MaxSeries is the maximum number of series in bar and line charts.
	MaxSeries = 3

	// ScatterRowCap is the number of rows plotted by scatter charts.
	ScatterRowCap = 50

	// MaxSlices is the maximum number of doughnut slices.
	MaxSlices = 6

	// SeriesBorderWidth is the stroke width of bar and line series.
	SeriesBorderWidth = 2
)

// Spec is a request to build one chart.
type Spec struct {
	Kind    Kind
	Dataset *dataset.Dataset
	Axes    axis.Selection

	// RowCap is the number of leading rows sampled. Build uses Kind.RowCap
	// when it is not positive.
	RowCap int

	// Policy governs stale axis selections when defaults are re-applied.
	Policy axis.Policy
}

// NewSpec creates a spec with the default row cap for kind.
// An alias such as "pie" is normalised; an invalid kind is kept so that
// Build reports it.
func NewSpec(kind Kind, d *dataset.Dataset, axes axis.Selection) Spec {
	if k, err := normalizeKind(kind); err == nil {
		kind = k
	}
	return Spec{Kind: kind, Dataset: d, Axes: axes, RowCap: kind.RowCap()}
}

// Series is one named sequence of values in a bar or line chart.
type Series struct {
	Label       string    `json:"label"`
	Values      []float64 `json:"data"`
	Border      Color     `json:"borderColor"`
	Fill        Color     `json:"backgroundColor"`
	BorderWidth int       `json:"borderWidth"`
}

// Slice is one group of a doughnut chart. Value may be infinite when a
// cell held "Infinity".
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color Color   `json:"color"`
}

// MarshalJSON encodes a non-finite value as null.
func (s Slice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string   `json:"label"`
		Value *float64 `json:"value"`
		Color Color    `json:"color"`
	}{s.Label, finite(s.Value), s.Color})
}

// Point is one scatter coordinate. Coordinates may be NaN when a cell does
// not coerce to a number; renderers skip such points.
type Point struct {
	X float64
	Y float64
}

// Valid reports whether both coordinates are finite.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// MarshalJSON encodes non-finite coordinates as null.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}{finite(p.X), finite(p.Y)})
}

// UnmarshalJSON decodes null coordinates as NaN.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.X, p.Y = math.NaN(), math.NaN()
	if raw.X != nil {
		p.X = *raw.X
	}
	if raw.Y != nil {
		p.Y = *raw.Y
	}
	return nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Data is the render-ready description of one chart. Which fields are
// populated depends on Kind.
type Data struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`

	// Empty marks the empty state: the dataset had no rows.
	Empty bool `json:"empty,omitempty"`

	// Axes is the selection the chart was built with.
	Axes axis.Selection `json:"axes"`

	// Bar and line.
	Labels []string `json:"labels,omitempty"`
	Series []Series `json:"series,omitempty"`

	// Doughnut.
	Slices []Slice `json:"slices,omitempty"`

	// Scatter.
	Points     []Point `json:"points,omitempty"`
	PointLabel string  `json:"pointLabel,omitempty"`
	PointColor Color   `json:"pointColor,omitzero"`
}

// Drawable reports whether d has anything a renderer can plot.
func (d Data) Drawable() bool {
	if d.Empty {
		return false
	}
	switch d.Kind {
	case KindBar, KindLine:
		return len(d.Labels) > 0
	case KindDoughnut:
		for _, s := range d.Slices {
			if s.Value > 0 && !math.IsInf(s.Value, 0) {
				return true
			}
		}
		return false
	case KindScatter:
		for _, p := range d.Points {
			if p.Valid() {
				return true
			}
		}
		return false
	}
	return false
}
