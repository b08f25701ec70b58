package export

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

func paintedSurface(t *testing.T, kind chart.Kind) *surface.Surface {
	t.Helper()
	d := dataset.New("sales",
		dataset.RowOf("city", "A", "sales", 10.0, "units", 2.0),
		dataset.RowOf("city", "B", "sales", 5.0, "units", 4.0),
	)
	var sel axis.Selection
	if kind == chart.KindScatter {
		sel = axis.Selection{X: "sales", Y: "units"}
	}
	data, err := chart.Build(chart.NewSpec(kind, d, sel))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	s := surface.New(surface.WithSize(200, 120))
	if err := s.Draw(data); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	return s
}

func quietLogger() *log.Logger { return log.New(&bytes.Buffer{}) }

func TestExportNotReady(t *testing.T) {
	var events []notify.Event
	n := notify.Func(func(_ context.Context, e notify.Event) error {
		events = append(events, e)
		return nil
	})
	enc := NewEncoder(WithNotifier(n), WithLogger(quietLogger()))
	for _, f := range Formats {
		art, err := enc.Export(context.Background(), surface.New(), f, "sales", "sales")
		if !errors.Is(err, errors.ErrCodeRenderNotReady) {
			t.Errorf("Export(%s) error = %v, want render not ready", f, err)
		}
		if got := errors.UserMessage(err); got != errors.MsgRenderNotReady {
			t.Errorf("UserMessage = %q, want %q", got, errors.MsgRenderNotReady)
		}
		if art != nil {
			t.Errorf("Export(%s) artifact = %v, want nil", f, art)
		}
	}
	if len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
}

func TestExportPNG(t *testing.T) {
	s := paintedSurface(t, chart.KindBar)
	art, err := NewEncoder(WithLogger(quietLogger())).Export(context.Background(), s, FormatPNG, "sales", "sales")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if art.Filename != "sales-bar.png" {
		t.Errorf("Filename = %q, want sales-bar.png", art.Filename)
	}
	if art.ContentType != "image/png" || art.Disposition != "inline" {
		t.Errorf("artifact = %s %s, want image/png inline", art.ContentType, art.Disposition)
	}
	img, err := png.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 120 {
		t.Errorf("image size = %dx%d, want 200x120", b.Dx(), b.Dy())
	}
}

func TestExportPNGScale(t *testing.T) {
	s := paintedSurface(t, chart.KindLine)
	enc := NewEncoder(WithScale(2), WithLogger(quietLogger()))
	art, err := enc.Export(context.Background(), s, FormatPNG, "sales", "")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 240 {
		t.Errorf("image size = %dx%d, want 400x240", b.Dx(), b.Dy())
	}
}

func TestExportPDF(t *testing.T) {
	s := paintedSurface(t, chart.KindDoughnut)
	var events []notify.Event
	n := notify.Func(func(_ context.Context, e notify.Event) error {
		events = append(events, e)
		return nil
	})
	art, err := NewEncoder(WithNotifier(n), WithLogger(quietLogger())).Export(context.Background(), s, FormatPDF, "sales", "sales")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if art.Filename != "sales-doughnut.pdf" {
		t.Errorf("Filename = %q, want sales-doughnut.pdf", art.Filename)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF")) {
		t.Errorf("PDF data starts with %q", art.Data[:min(8, len(art.Data))])
	}
	if art.Disposition != "attachment" {
		t.Errorf("Disposition = %q, want attachment", art.Disposition)
	}
	if len(events) != 1 || events[0].Action != notify.ActionExported || events[0].Name != "sales-doughnut.pdf" {
		t.Errorf("events = %+v, want one Exported event", events)
	}
}

func TestExportNotifierFailureIgnored(t *testing.T) {
	s := paintedSurface(t, chart.KindScatter)
	n := notify.Func(func(context.Context, notify.Event) error { return errors.New(errors.ErrCodeNetwork, "down") })
	art, err := NewEncoder(WithNotifier(n), WithLogger(quietLogger())).Export(context.Background(), s, FormatPNG, "", "")
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if art.Filename != "chart-scatter.png" {
		t.Errorf("Filename = %q, want chart-scatter.png", art.Filename)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"PDF", FormatPDF, false},
		{" pdf ", FormatPDF, false},
		{"svg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		base, kind string
		f          Format
		want       string
	}{
		{"sales", "bar", FormatPNG, "sales-bar.png"},
		{"", "line", FormatPDF, "chart-line.pdf"},
		{"a/b", "doughnut", FormatPNG, "a_b-doughnut.png"},
	}
	for _, tt := range tests {
		if got := Filename(tt.base, tt.kind, tt.f); got != tt.want {
			t.Errorf("Filename(%q, %q, %s) = %q, want %q", tt.base, tt.kind, tt.f, got, tt.want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	a := &Artifact{Filename: "x-bar.pdf", Disposition: "attachment"}
	if got, want := a.ContentDisposition(), `attachment; filename="x-bar.pdf"`; got != want {
		t.Errorf("ContentDisposition() = %q, want %q", got, want)
	}
}
