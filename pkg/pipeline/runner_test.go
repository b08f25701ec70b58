package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	cderrors "github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/notify"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

func sales() *dataset.Dataset {
	return dataset.New("sales.csv",
		dataset.RowOf("city", "A", "sales", 10.0, "units", 3.0),
		dataset.RowOf("city", "B", "sales", 30.0, "units", 7.0),
		dataset.RowOf("city", "A", "sales", 5.0, "units", 1.0),
	)
}

func TestRunnerBuild(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, nil)

	res, err := r.Build(context.Background(), sales(), Options{Kind: "doughnut"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Axes.X != "city" || res.Axes.Y != "sales" {
		t.Errorf("Axes = %v, want city/sales defaults", res.Axes)
	}
	if len(res.Data.Slices) != 2 || res.Data.Slices[0].Label != "B" || res.Data.Slices[1].Value != 15 {
		t.Errorf("Slices = %+v, want B=30 A=15", res.Data.Slices)
	}
	if res.Stats.Rows != 3 || res.Stats.Columns != 3 || res.Stats.NumericColumns != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := rec.actions(); len(got) != 1 || got[0] != notify.ActionGenerated {
		t.Errorf("events = %v, want one Generated", got)
	}
	if rec.events[0].Name != "doughnut chart" || rec.events[0].Dataset != "sales.csv" {
		t.Errorf("event = %+v", rec.events[0])
	}
}

func TestRunnerBuildNotices(t *testing.T) {
	tests := []struct {
		name string
		d    *dataset.Dataset
		opts Options
		code cderrors.Code
	}{
		{"scatter on text", sales(), Options{Kind: "scatter"}, cderrors.ErrCodeNonNumericAxis},
		{"scatter on text y", sales(), Options{Kind: "scatter", X: "sales", Y: "city"}, cderrors.ErrCodeNonNumericAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := NewRunner(rec, nil).Build(context.Background(), tt.d, tt.opts)
			if !cderrors.Is(err, tt.code) || !cderrors.IsNotice(err) {
				t.Errorf("Build() error = %v, want notice %s", err, tt.code)
			}
			if len(rec.actions()) != 0 {
				t.Errorf("events = %v, want none", rec.actions())
			}
		})
	}
}

func TestRunnerBuildEmptyDataset(t *testing.T) {
	rec := &recorder{}
	for _, kind := range chart.Kinds {
		res, err := NewRunner(rec, nil).Build(context.Background(), nil, Options{Kind: string(kind)})
		if err != nil {
			t.Errorf("Build(%s, nil) error: %v", kind, err)
			continue
		}
		if !res.Data.Empty || !res.Schema.Empty() {
			t.Errorf("Build(%s, nil) = %+v, want empty state", kind, res.Data)
		}
	}
	if len(rec.actions()) != 0 {
		t.Errorf("events = %v, want none for empty datasets", rec.actions())
	}
}

func TestRunnerNotifierFailureIgnored(t *testing.T) {
	failing := notify.Func(func(context.Context, notify.Event) error {
		return errors.New("unreachable")
	})
	res, err := NewRunner(failing, nil).Execute(context.Background(), sales(), Options{Formats: []string{"png"}})
	if err != nil {
		t.Fatalf("Execute() error = %v, want notifier failure swallowed", err)
	}
	if res.Artifacts["png"] == nil {
		t.Error("png artifact missing")
	}
}

func TestRunnerExecute(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, nil)

	res, err := r.Execute(context.Background(), sales(), Options{
		Kind:    "bar",
		Formats: []string{"png", "pdf", "json"},
		Width:   320,
		Height:  200,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	png := res.Artifacts["png"]
	if png == nil || !bytes.HasPrefix(png.Data, []byte("\x89PNG")) {
		t.Fatalf("png artifact = %+v", png)
	}
	if png.Filename != "sales-bar.png" {
		t.Errorf("png filename = %q, want sales-bar.png", png.Filename)
	}
	pdf := res.Artifacts["pdf"]
	if pdf == nil || !bytes.HasPrefix(pdf.Data, []byte("%PDF")) {
		t.Fatalf("pdf artifact = %+v", pdf)
	}

	js := res.Artifacts["json"]
	if js == nil || js.Filename != "sales-bar.json" {
		t.Fatalf("json artifact = %+v", js)
	}
	var data chart.Data
	if err := json.Unmarshal(js.Data, &data); err != nil {
		t.Fatalf("json artifact does not decode: %v", err)
	}
	if data.Kind != chart.KindBar || len(data.Labels) != 3 || len(data.Series) != 2 {
		t.Errorf("json chart data = %+v", data)
	}

	want := []string{notify.ActionGenerated, notify.ActionExported, notify.ActionExported}
	if got := rec.actions(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRunnerExecuteBaseName(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), sales(), Options{
		Kind:     "line",
		Formats:  []string{"png"},
		BaseName: "q3/report",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := res.Artifacts["png"].Filename; got != "q3_report-line.png" {
		t.Errorf("filename = %q, want q3_report-line.png", got)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		d    *dataset.Dataset
		want string
	}{
		{"custom", sales(), "custom"},
		{"", sales(), "sales"},
		{"", dataset.New("archive.tar.gz"), "archive.tar"},
		{"", nil, DefaultBaseName},
		{"", dataset.New(""), DefaultBaseName},
	}
	for _, tt := range tests {
		if got := BaseName(tt.name, tt.d); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
