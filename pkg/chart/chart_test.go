package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
)

func salesDataset() *dataset.Dataset {
	return dataset.New("sales.csv",
		dataset.RowOf("city", "A", "sales", 10),
		dataset.RowOf("city", "B", "sales", 30),
		dataset.RowOf("city", "A", "sales", 5),
	)
}

// numericDataset returns n rows with columns label, a, b, c, d.
func numericDataset(n int) *dataset.Dataset {
	d := dataset.New("numbers")
	for i := 0; i < n; i++ {
		d.Rows = append(d.Rows, dataset.RowOf(
			"label", fmt.Sprintf("r%d", i),
			"a", i, "b", i*2, "c", i*3, "d", i*4,
		))
	}
	return d
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"bar", KindBar, false},
		{"Line", KindLine, false},
		{"doughnut", KindDoughnut, false},
		{"pie", KindDoughnut, false},
		{"scatter", KindScatter, false},
		{"radar", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v, want %q (err %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidChartKind) {
			t.Errorf("ParseKind(%q) error code = %v", tt.in, errors.GetCode(err))
		}
	}
}

func TestKindHelpers(t *testing.T) {
	if KindBar.Title() != "Bar" || KindDoughnut.Title() != "Doughnut" {
		t.Errorf("Title() = %q, %q", KindBar.Title(), KindDoughnut.Title())
	}
	if KindScatter.Next() != KindBar || KindBar.Next() != KindLine {
		t.Error("Next() should cycle through Kinds")
	}
	if KindBar.RowCap() != 10 || KindScatter.RowCap() != 50 || KindDoughnut.RowCap() != 0 {
		t.Error("RowCap() mismatch")
	}
}

func TestAggregateExample(t *testing.T) {
	got := Aggregate(salesDataset(), "city", "sales")
	want := []Slice{{Label: "B", Value: 30}, {Label: "A", Value: 15}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}
}

func TestAggregateStableTies(t *testing.T) {
	d := dataset.New("ties",
		dataset.RowOf("k", "first", "v", 5),
		dataset.RowOf("k", "second", "v", 5),
		dataset.RowOf("k", "big", "v", 9),
		dataset.RowOf("k", "third", "v", 5),
	)
	got := Aggregate(d, "k", "v")
	var labels []string
	for _, s := range got {
		labels = append(labels, s.Label)
	}
	want := []string{"big", "first", "second", "third"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestAggregateCoercion(t *testing.T) {
	d := dataset.New("mixed",
		dataset.RowOf("k", "a", "v", "12"),
		dataset.RowOf("k", "a", "v", "oops"),
		dataset.RowOf("k", nil, "v", 3),
		dataset.RowOf("k", 1, "v", true),
		dataset.RowOf("v", 4),
	)
	got := Aggregate(d, "k", "v")
	want := []Slice{{Label: "a", Value: 12}, {Label: "undefined", Value: 4}, {Label: "null", Value: 3}, {Label: "1", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}
}

func TestAggregateBlankKeys(t *testing.T) {
	d := dataset.New("blanks",
		dataset.RowOf("city", nil, "sales", 10),
		dataset.RowOf("sales", 5),
		dataset.RowOf("city", "", "sales", 1),
	)
	got := Aggregate(d, "city", "sales")
	want := []Slice{{Label: "null", Value: 10}, {Label: "undefined", Value: 5}, {Label: "", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}

	data := BuildSeries(KindBar, d, dataset.Inspect(d), axis.Selection{X: "city", Y: "sales"}, SeriesRowCap)
	if !reflect.DeepEqual(data.Labels, []string{"null", "undefined", ""}) {
		t.Errorf("labels = %q", data.Labels)
	}
}

func TestAggregateKeepsInfinity(t *testing.T) {
	d := dataset.New("inf",
		dataset.RowOf("k", "a", "v", "Infinity"),
		dataset.RowOf("k", "b", "v", 2),
		dataset.RowOf("k", "b", "v", "oops"),
	)
	got := Aggregate(d, "k", "v")
	if len(got) != 2 || got[0].Label != "a" || !math.IsInf(got[0].Value, 1) || got[1].Value != 2 {
		t.Errorf("Aggregate() = %+v, want a=+Inf then b=2", got)
	}

	b, err := json.Marshal(got[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `"value":null`; !strings.Contains(string(b), want) {
		t.Errorf("json = %s, want %s", b, want)
	}

	data := Data{Kind: KindDoughnut, Slices: got[:1]}
	if data.Drawable() {
		t.Error("an infinite slice alone should not be drawable")
	}
}

func TestBuildNormalizesKind(t *testing.T) {
	d := dataset.New("many")
	for i := 0; i < 25; i++ {
		d.Rows = append(d.Rows, dataset.RowOf("city", fmt.Sprintf("c%d", i%3), "sales", i))
	}

	tests := []struct {
		name      string
		spec      Spec
		want      Kind
		wantRows  int
		wantSlice int
	}{
		{"pie alias", NewSpec("pie", d, axis.Selection{}), KindDoughnut, 0, 3},
		{"mixed case", NewSpec("Bar", d, axis.Selection{}), KindBar, SeriesRowCap, 0},
		{"default kind", NewSpec("", d, axis.Selection{}), KindBar, SeriesRowCap, 0},
		{"zero cap bar", Spec{Kind: KindBar, Dataset: d}, KindBar, SeriesRowCap, 0},
		{"zero cap scatter", Spec{Kind: "SCATTER", Dataset: d, Axes: axis.Selection{X: "sales", Y: "sales"}}, KindScatter, 0, 0},
		{"explicit cap", Spec{Kind: KindLine, Dataset: d, RowCap: 4}, KindLine, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Build(tt.spec)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if data.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", data.Kind, tt.want)
			}
			if len(data.Labels) != tt.wantRows {
				t.Errorf("labels = %d, want %d", len(data.Labels), tt.wantRows)
			}
			if len(data.Slices) != tt.wantSlice {
				t.Errorf("slices = %d, want %d", len(data.Slices), tt.wantSlice)
			}
			if data.Kind == KindScatter && len(data.Points) != 25 {
				t.Errorf("points = %d, want 25", len(data.Points))
			}
		})
	}

	if _, err := Build(Spec{Kind: "radar", Dataset: d}); !errors.Is(err, errors.ErrCodeInvalidChartKind) {
		t.Errorf("Build(radar) error = %v, want invalid chart kind", err)
	}
}

func TestAggregateSumsWholeDataset(t *testing.T) {
	d := dataset.New("many")
	total := 0.0
	for i := 0; i < 200; i++ {
		d.Rows = append(d.Rows, dataset.RowOf("k", fmt.Sprintf("g%d", i%9), "v", i))
		total += float64(i)
	}
	groups := Aggregate(d, "k", "v")
	if len(groups) != 9 {
		t.Fatalf("len = %d, want 9", len(groups))
	}
	sum := 0.0
	for i, g := range groups {
		sum += g.Value
		if i > 0 && groups[i-1].Value < g.Value {
			t.Errorf("groups not sorted descending at %d", i)
		}
	}
	if sum != total {
		t.Errorf("sum = %v, want %v", sum, total)
	}
}

func TestBuildAggregate(t *testing.T) {
	d := dataset.New("many")
	for i := 0; i < 40; i++ {
		d.Rows = append(d.Rows, dataset.RowOf("k", fmt.Sprintf("g%d", i%8), "v", 1+i%8))
	}
	data, err := BuildAggregate(d, axis.Selection{X: "k", Y: "v"})
	if err != nil {
		t.Fatalf("BuildAggregate: %v", err)
	}
	if len(data.Slices) != MaxSlices {
		t.Fatalf("slices = %d, want %d", len(data.Slices), MaxSlices)
	}
	if data.Slices[0].Label != "g7" || data.Slices[0].Value != 40 {
		t.Errorf("first slice = %+v, want g7=40", data.Slices[0])
	}
	for i, s := range data.Slices {
		if s.Color != SliceColor(i) {
			t.Errorf("slice %d color = %v, want %v", i, s.Color, SliceColor(i))
		}
	}
}

func TestBuildAggregateEmpty(t *testing.T) {
	_, err := BuildAggregate(dataset.New("none"), axis.Selection{X: "k", Y: "v"})
	if !errors.Is(err, errors.ErrCodeNoChartData) {
		t.Fatalf("err = %v, want NO_CHART_DATA", err)
	}
	if errors.UserMessage(err) != "No data for pie chart" {
		t.Errorf("message = %q", errors.UserMessage(err))
	}
}

func TestBuildSeries(t *testing.T) {
	d := numericDataset(25)
	schema := dataset.Inspect(d)
	data := BuildSeries(KindBar, d, schema, axis.Selection{X: "label", Y: "a"}, SeriesRowCap)

	if len(data.Labels) != SeriesRowCap {
		t.Fatalf("labels = %d, want %d", len(data.Labels), SeriesRowCap)
	}
	if data.Labels[3] != "r3" {
		t.Errorf("Labels[3] = %q, want r3", data.Labels[3])
	}
	if len(data.Series) != MaxSeries {
		t.Fatalf("series = %d, want %d", len(data.Series), MaxSeries)
	}
	wantLabels := []string{"a", "b", "c"}
	for i, s := range data.Series {
		if s.Label != wantLabels[i] {
			t.Errorf("series %d label = %q, want %q", i, s.Label, wantLabels[i])
		}
		if len(s.Values) != len(data.Labels) {
			t.Errorf("series %d has %d values for %d labels", i, len(s.Values), len(data.Labels))
		}
		if s.Border != Palette[i] || s.Fill != Palette[i].WithAlpha(0x80) || s.BorderWidth != 2 {
			t.Errorf("series %d style = %+v", i, s)
		}
	}
	if got := data.Series[1].Values[4]; got != 8 {
		t.Errorf("b[4] = %v, want 8", got)
	}
}

func TestBuildSeriesNonNumericCells(t *testing.T) {
	d := dataset.New("gaps",
		dataset.RowOf("x", "a", "n", 1),
		dataset.RowOf("x", "b", "n", "7"),
		dataset.RowOf("x", "c"),
		dataset.RowOf("x", "d", "n", math.NaN()),
	)
	data := BuildSeries(KindLine, d, dataset.Inspect(d), axis.Selection{X: "x", Y: "n"}, SeriesRowCap)
	want := []float64{1, 0, 0, 0}
	if !reflect.DeepEqual(data.Series[0].Values, want) {
		t.Errorf("values = %v, want %v", data.Series[0].Values, want)
	}
}

func TestBuildSeriesNoNumericColumns(t *testing.T) {
	d := dataset.New("names", dataset.RowOf("name", "x"), dataset.RowOf("name", "y"))
	data, err := Build(NewSpec(KindBar, d, axis.Selection{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(data.Series) != 0 {
		t.Errorf("series = %d, want 0", len(data.Series))
	}
	if !reflect.DeepEqual(data.Labels, []string{"x", "y"}) {
		t.Errorf("labels = %v", data.Labels)
	}
	if data.Axes.Y != "" {
		t.Errorf("Y = %q, want unset", data.Axes.Y)
	}
}

func TestBuildScatter(t *testing.T) {
	d := numericDataset(80)
	data, err := BuildScatter(d, axis.Selection{X: "a", Y: "b"}, ScatterRowCap)
	if err != nil {
		t.Fatalf("BuildScatter: %v", err)
	}
	if len(data.Points) != ScatterRowCap {
		t.Errorf("points = %d, want %d", len(data.Points), ScatterRowCap)
	}
	if data.Points[7] != (Point{X: 7, Y: 14}) {
		t.Errorf("Points[7] = %+v", data.Points[7])
	}
	if data.PointLabel != "b vs a" {
		t.Errorf("PointLabel = %q", data.PointLabel)
	}
	if data.PointColor != ScatterColor {
		t.Errorf("PointColor = %v", data.PointColor)
	}

	small := numericDataset(3)
	data, err = BuildScatter(small, axis.Selection{X: "a", Y: "b"}, ScatterRowCap)
	if err != nil || len(data.Points) != 3 {
		t.Errorf("small scatter = %d points, err %v", len(data.Points), err)
	}
}

func TestBuildScatterOnlyRowZeroChecked(t *testing.T) {
	d := dataset.New("loose",
		dataset.RowOf("x", 1, "y", 2),
		dataset.RowOf("x", "3", "y", "junk"),
	)
	data, err := BuildScatter(d, axis.Selection{X: "x", Y: "y"}, ScatterRowCap)
	if err != nil {
		t.Fatalf("BuildScatter: %v", err)
	}
	if data.Points[1].X != 3 || !math.IsNaN(data.Points[1].Y) {
		t.Errorf("Points[1] = %+v, want {3 NaN}", data.Points[1])
	}
	if data.Points[1].Valid() {
		t.Error("NaN point should not be valid")
	}
}

func TestBuildScatterNonNumeric(t *testing.T) {
	tests := []struct {
		name string
		d    *dataset.Dataset
		axes axis.Selection
	}{
		{"string x", salesDataset(), axis.Selection{X: "city", Y: "sales"}},
		{"numeric string y", dataset.New("s", dataset.RowOf("x", 1, "y", "2")), axis.Selection{X: "x", Y: "y"}},
		{"missing column", dataset.New("s", dataset.RowOf("x", 1)), axis.Selection{X: "x", Y: "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := BuildScatter(tt.d, tt.axes, ScatterRowCap)
			if !errors.Is(err, errors.ErrCodeNonNumericAxis) {
				t.Fatalf("err = %v, want NON_NUMERIC_AXIS", err)
			}
			if len(data.Points) != 0 {
				t.Errorf("points = %d, want 0", len(data.Points))
			}
		})
	}
}

func TestBuildEmptyDataset(t *testing.T) {
	for _, kind := range Kinds {
		for _, d := range []*dataset.Dataset{nil, dataset.New("empty")} {
			data, err := Build(NewSpec(kind, d, axis.Selection{}))
			if err != nil {
				t.Errorf("Build(%s, empty) error = %v", kind, err)
			}
			if !data.Empty {
				t.Errorf("Build(%s, empty) Empty = false", kind)
			}
			if data.Drawable() {
				t.Errorf("Build(%s, empty) should not be drawable", kind)
			}
		}
	}
}

func TestBuildDefaultsAndTitle(t *testing.T) {
	data, err := Build(NewSpec(KindDoughnut, salesDataset(), axis.Selection{}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if data.Axes != (axis.Selection{X: "city", Y: "sales"}) {
		t.Errorf("Axes = %v", data.Axes)
	}
	if data.Title != "sales.csv - Doughnut Chart" {
		t.Errorf("Title = %q", data.Title)
	}
	want := []Slice{{Label: "B", Value: 30, Color: SliceColor(0)}, {Label: "A", Value: 15, Color: SliceColor(1)}}
	if !reflect.DeepEqual(data.Slices, want) {
		t.Errorf("Slices = %+v", data.Slices)
	}

	_, err = Build(NewSpec(KindScatter, salesDataset(), axis.Selection{X: "city"}))
	if !errors.Is(err, errors.ErrCodeNonNumericAxis) {
		t.Errorf("scatter on city: err = %v", err)
	}

	if _, err := Build(Spec{Kind: "radar", Dataset: salesDataset()}); !errors.Is(err, errors.ErrCodeInvalidChartKind) {
		t.Errorf("radar: err = %v", err)
	}
}

func TestBuildCapAsymmetry(t *testing.T) {
	d := dataset.New("long")
	for i := 0; i < 30; i++ {
		d.Rows = append(d.Rows, dataset.RowOf("k", fmt.Sprintf("k%d", i), "v", 1))
	}
	d.Rows = append(d.Rows, dataset.RowOf("k", "late", "v", 1000))

	bar, _ := Build(NewSpec(KindBar, d, axis.Selection{}))
	for _, l := range bar.Labels {
		if l == "late" {
			t.Error("bar chart should not see row 30")
		}
	}
	pie, _ := Build(NewSpec(KindDoughnut, d, axis.Selection{}))
	if pie.Slices[0].Label != "late" {
		t.Errorf("doughnut should aggregate the full dataset, first slice = %q", pie.Slices[0].Label)
	}
}

func TestPaletteColors(t *testing.T) {
	tests := []struct {
		got  Color
		want Color
	}{
		{Palette[0], Color{R: 0, G: 0, B: 128, A: 255}},
		{Palette[4], Color{R: 239, G: 68, B: 68, A: 255}},
		{SliceColor(0), Color{R: 224, G: 82, B: 82, A: 255}},
		{SliceColor(6), SliceColor(0)},
	}
	for i, tt := range tests {
		if !closeColor(tt.got, tt.want) {
			t.Errorf("case %d: color = %+v, want %+v", i, tt.got, tt.want)
		}
	}
	if PaletteAt(7) != Palette[1] {
		t.Error("PaletteAt should cycle")
	}
}

func closeColor(a, b Color) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && a.A == b.A
}

func TestColorJSON(t *testing.T) {
	c := RGBA(255, 99, 132, 0.7)
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"rgba(255, 99, 132, 0.7)"` {
		t.Errorf("Marshal = %s", b)
	}
	var back Color
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != c {
		t.Errorf("round trip = %+v, want %+v", back, c)
	}
	if err := json.Unmarshal([]byte(`"#000080ff"`), &back); err != nil || back != (Color{B: 128, A: 255}) {
		t.Errorf("hex = %+v, %v", back, err)
	}
}

func TestDataJSONNonFinitePoints(t *testing.T) {
	data := Data{Kind: KindScatter, Points: []Point{{X: 1, Y: math.NaN()}}}
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Data
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Points[0].X != 1 || !math.IsNaN(back.Points[0].Y) {
		t.Errorf("Points = %+v", back.Points)
	}
}
