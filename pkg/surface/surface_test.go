package surface

import (
	"bytes"
	"image/png"
	"math"
	"sync"
	"testing"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
)

func sales() *dataset.Dataset {
	return dataset.New("sales",
		dataset.RowOf("city", "A", "sales", 10.0, "units", 3.0),
		dataset.RowOf("city", "B", "sales", 5.0, "units", 7.0),
		dataset.RowOf("city", "A", "sales", 7.0, "units", 1.0),
	)
}

func TestCaptureBeforeDraw(t *testing.T) {
	s := New()
	called := false
	err := s.Capture(func(Snapshot) error {
		called = true
		return nil
	})
	if errors.GetCode(err) != errors.ErrCodeRenderNotReady {
		t.Errorf("Capture() code = %v, want %v", errors.GetCode(err), errors.ErrCodeRenderNotReady)
	}
	if called {
		t.Error("Capture() called fn on empty surface")
	}
	if s.Ready() {
		t.Error("Ready() = true on new surface")
	}
}

func TestDrawEachKind(t *testing.T) {
	for _, kind := range chart.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			var sel axis.Selection
			if kind == chart.KindScatter {
				sel = axis.Selection{X: "sales", Y: "units"}
			}
			data, err := chart.Build(chart.NewSpec(kind, sales(), sel))
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			s := New(WithSize(320, 200))
			if err := s.Draw(data); err != nil {
				t.Fatalf("Draw() error: %v", err)
			}
			if !s.Ready() {
				t.Fatal("Ready() = false after Draw")
			}
			if s.Kind() != kind {
				t.Errorf("Kind() = %q, want %q", s.Kind(), kind)
			}
			err = s.Capture(func(snap Snapshot) error {
				if snap.Width() != 320 || snap.Height() != 200 {
					t.Errorf("snapshot size = %dx%d, want 320x200", snap.Width(), snap.Height())
				}
				if snap.Placeholder {
					t.Error("snapshot is a placeholder")
				}
				if _, err := png.Decode(bytes.NewReader(snap.PNG)); err != nil {
					t.Errorf("snapshot PNG does not decode: %v", err)
				}
				return nil
			})
			if err != nil {
				t.Errorf("Capture() error: %v", err)
			}
		})
	}
}

func TestDrawPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		data chart.Data
	}{
		{"empty dataset", chart.Data{Kind: chart.KindBar, Title: " - Bar Chart", Empty: true}},
		{"zero slices", chart.Data{Kind: chart.KindDoughnut, Slices: []chart.Slice{{Label: "A"}}}},
		{"nan points", chart.Data{Kind: chart.KindScatter, Points: []chart.Point{{X: math.NaN(), Y: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithSize(200, 100))
			if err := s.Draw(tt.data); err != nil {
				t.Fatalf("Draw() error: %v", err)
			}
			err := s.Capture(func(snap Snapshot) error {
				if !snap.Placeholder {
					t.Error("snapshot is not a placeholder")
				}
				return nil
			})
			if err != nil {
				t.Errorf("Capture() error: %v", err)
			}
		})
	}
}

func TestDrawAxesOnly(t *testing.T) {
	d := dataset.New("names", dataset.RowOf("name", "x"), dataset.RowOf("name", "y"))
	data, err := chart.Build(chart.NewSpec(chart.KindLine, d, axis.Selection{}))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	s := New(WithSize(200, 100))
	if err := s.Draw(data); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if !s.Ready() {
		t.Error("Ready() = false after Draw")
	}
}

func TestClear(t *testing.T) {
	s := New(WithSize(200, 100))
	if err := s.Draw(chart.Data{Kind: chart.KindBar, Empty: true}); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	s.Clear()
	if s.Ready() {
		t.Error("Ready() = true after Clear")
	}
	if s.Kind() != "" {
		t.Errorf("Kind() = %q after Clear, want empty", s.Kind())
	}
	if err := s.Capture(func(Snapshot) error { return nil }); !errors.Is(err, errors.ErrCodeRenderNotReady) {
		t.Errorf("Capture() after Clear = %v, want render not ready", err)
	}
}

func TestWithSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{0, 0, DefaultWidth, DefaultHeight},
		{100, 50, 100, 50},
		{-1, 50, DefaultWidth, 50},
	}
	for _, tt := range tests {
		w, h := New(WithSize(tt.w, tt.h)).Size()
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("WithSize(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestConcurrentDrawCapture(t *testing.T) {
	s := New(WithSize(120, 80))
	data := chart.Data{Kind: chart.KindBar, Empty: true}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Draw(data)
		}()
		go func() {
			defer wg.Done()
			_ = s.Capture(func(snap Snapshot) error {
				if snap.Image == nil {
					t.Error("snapshot without image")
				}
				return nil
			})
		}()
	}
	wg.Wait()
}
