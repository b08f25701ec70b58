package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/chartdeck/pkg/chart"
)

// renderer is implemented by every go-chart chart type.
type renderer interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

var padding = gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}

// render paints data to PNG bytes. The bool result reports whether a
// placeholder was drawn instead of a chart.
func render(data chart.Data, width, height int) ([]byte, bool, error) {
	if !data.Drawable() {
		out, err := placeholder(data, width, height)
		return out, true, err
	}

	var r renderer
	switch data.Kind {
	case chart.KindBar:
		if len(data.Series) == 0 {
			r = axesOnly(data, width, height)
		} else {
			r = barChart(data, width, height)
		}
	case chart.KindLine:
		if len(data.Series) == 0 {
			r = axesOnly(data, width, height)
		} else {
			r = lineChart(data, width, height)
		}
	case chart.KindDoughnut:
		r = donutChart(data, width, height)
	case chart.KindScatter:
		r = scatterChart(data, width, height)
	default:
		return nil, false, fmt.Errorf("unsupported chart kind %q", data.Kind)
	}

	var buf bytes.Buffer
	if err := r.Render(gochart.PNG, &buf); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), false, nil
}

// barChart draws grouped bars: for every label, one bar per series, in
// series color. Only the first bar of a group carries the label.
func barChart(data chart.Data, width, height int) *gochart.BarChart {
	var bars []gochart.Value
	var values []float64
	for i, label := range data.Labels {
		for j, s := range data.Series {
			v := s.Values[i]
			values = append(values, v)
			name := ""
			if j == 0 {
				name = label
			}
			bars = append(bars, gochart.Value{
				Label: name,
				Value: v,
				Style: gochart.Style{
					FillColor:   toDrawing(s.Fill),
					StrokeColor: toDrawing(s.Border),
					StrokeWidth: float64(s.BorderWidth),
				},
			})
		}
	}

	lo, hi := valueRange(values)
	inner := width - padding.Left - padding.Right
	slot := max(inner/max(len(bars), 1), 4)
	return &gochart.BarChart{
		Title:        data.Title,
		Width:        width,
		Height:       height,
		Background:   gochart.Style{Padding: padding},
		BarWidth:     max(slot*7/10, 2),
		BarSpacing:   max(slot*3/10, 1),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Bars:         bars,
	}
}

// lineChart draws one continuous series per data series over label ticks.
func lineChart(data chart.Data, width, height int) *gochart.Chart {
	xs, ticks := labelTicks(data.Labels)
	var values []float64
	series := make([]gochart.Series, 0, len(data.Series))
	for _, s := range data.Series {
		values = append(values, s.Values...)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: s.Values,
			Style: gochart.Style{
				StrokeColor: toDrawing(s.Border),
				StrokeWidth: float64(s.BorderWidth),
				DotColor:    toDrawing(s.Border),
				DotWidth:    3,
			},
		})
	}

	lo, hi := valueRange(values)
	ch := &gochart.Chart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: padding},
		XAxis: gochart.XAxis{
			Name:  data.Axes.X,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(xs)) - 0.5},
		},
		YAxis:  gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch
}

// axesOnly draws label ticks and an empty value axis for bar and line data
// without numeric columns.
func axesOnly(data chart.Data, width, height int) *gochart.Chart {
	xs, ticks := labelTicks(data.Labels)
	hidden := gochart.ContinuousSeries{
		Style:   gochart.Style{Hidden: true},
		XValues: []float64{-0.5, float64(len(xs)) - 0.5},
		YValues: []float64{0, 1},
	}
	return &gochart.Chart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: padding},
		XAxis: gochart.XAxis{
			Name:  data.Axes.X,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(xs)) - 0.5},
		},
		YAxis:  gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: 1}},
		Series: []gochart.Series{hidden},
	}
}

// donutChart draws positive finite slices only; go-chart cannot draw zero,
// negative or infinite arcs.
func donutChart(data chart.Data, width, height int) *gochart.DonutChart {
	values := make([]gochart.Value, 0, len(data.Slices))
	for _, s := range data.Slices {
		if s.Value <= 0 || math.IsInf(s.Value, 0) {
			continue
		}
		values = append(values, gochart.Value{
			Label: s.Label,
			Value: s.Value,
			Style: gochart.Style{
				FillColor:   toDrawing(s.Color),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	return &gochart.DonutChart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: padding},
		Values:     values,
	}
}

// scatterChart draws the finite points as dots without connecting lines.
func scatterChart(data chart.Data, width, height int) *gochart.Chart {
	var xs, ys []float64
	for _, p := range data.Points {
		if p.Valid() {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	xlo, xhi := paddedRange(xs)
	ylo, yhi := valueRange(ys)

	ch := &gochart.Chart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: padding},
		XAxis: gochart.XAxis{
			Name:  data.Axes.X,
			Range: &gochart.ContinuousRange{Min: xlo, Max: xhi},
		},
		YAxis: gochart.YAxis{
			Name:  data.Axes.Y,
			Range: &gochart.ContinuousRange{Min: ylo, Max: yhi},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    data.PointLabel,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth: gochart.Disabled,
					StrokeColor: drawing.ColorTransparent,
					DotWidth:    4,
					DotColor:    toDrawing(data.PointColor),
				},
			},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch
}

func labelTicks(labels []string) ([]float64, []gochart.Tick) {
	xs := make([]float64, len(labels))
	ticks := make([]gochart.Tick, len(labels))
	for i, l := range labels {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: l}
	}
	return xs, ticks
}

// valueRange returns a value axis range that always includes zero and is
// never degenerate.
func valueRange(values []float64) (lo, hi float64) {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi + (hi-lo)*0.05
}

// paddedRange returns the data extent plus 5% on either side, or a unit
// range around a single value.
func paddedRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func toDrawing(c chart.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// =============================================================================
// Placeholder
// =============================================================================

// placeholder draws the title and a short message on a white canvas.
func placeholder(data chart.Data, width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ink := image.NewUniform(color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff})
	writeCentered(img, face, ink, data.Title, padding.Top/2+face.Metrics().Ascent.Ceil())
	writeCentered(img, face, ink, placeholderText(data), height/2)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func placeholderText(data chart.Data) string {
	switch {
	case data.Empty:
		return "No data loaded"
	case data.Kind == chart.KindDoughnut:
		return "No data for pie chart"
	case data.Kind == chart.KindScatter:
		return "No plottable points"
	default:
		return "Nothing to plot"
	}
}

func writeCentered(dst draw.Image, face font.Face, src image.Image, text string, y int) {
	if text == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: src, Face: face}
	w := d.MeasureString(text).Ceil()
	x := max((dst.Bounds().Dx()-w)/2, 0)
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(text)
}
