// Package surface holds the most recently rendered chart as a pixel snapshot.
//
// A [Surface] is the thing exports read from. It starts empty, is painted by
// [Surface.Draw] and emptied by [Surface.Clear]. While it is empty every
// [Surface.Capture] reports errors.ErrCodeRenderNotReady, which is how an
// export requested before the first render (or after a failed one) is
// refused.
//
// Drawing is delegated to go-chart. Data with nothing to plot (the empty
// dataset state, a doughnut whose slices are all zero, a scatter whose points
// are all NaN) is drawn as a neutral placeholder instead.
package surface

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// Snapshot is an immutable copy of what a surface shows.
type Snapshot struct {
	Image image.Image
	PNG   []byte
	Kind  chart.Kind
	Title string

	// Placeholder is set when the snapshot is a placeholder rather than a
	// plotted chart.
	Placeholder bool
}

// Width returns the snapshot width in pixels.
func (s Snapshot) Width() int { return s.Image.Bounds().Dx() }

// Height returns the snapshot height in pixels.
func (s Snapshot) Height() int { return s.Image.Bounds().Dy() }

// Option configures a Surface.
type Option func(*Surface)

// WithSize sets the canvas size. Non-positive values keep the default.
func WithSize(width, height int) Option {
	return func(s *Surface) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// Surface is a mutable rendering target guarded by a mutex.
// It is safe for concurrent use.
type Surface struct {
	mu     sync.Mutex
	width  int
	height int
	snap   *Snapshot
}

// New creates an empty surface.
func New(opts ...Option) *Surface {
	s := &Surface{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the canvas size in pixels.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Draw renders data and replaces the current snapshot. On failure the
// surface is left empty and the render error is returned.
func (s *Surface) Draw(data chart.Data) error {
	pngData, placeholder, err := render(data, s.width, s.height)
	var img image.Image
	if err == nil {
		img, err = png.Decode(bytes.NewReader(pngData))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap = nil
		return errors.Wrap(errors.ErrCodeInternal, err, "render %s chart", data.Kind)
	}
	s.snap = &Snapshot{
		Image:       img,
		PNG:         pngData,
		Kind:        data.Kind,
		Title:       data.Title,
		Placeholder: placeholder,
	}
	return nil
}

// Clear empties the surface.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

// Ready reports whether the surface holds a snapshot.
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap != nil
}

// Kind returns the chart kind of the current snapshot, or "" when empty.
func (s *Surface) Kind() chart.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return ""
	}
	return s.snap.Kind
}

// Capture calls fn with the current snapshot while holding the surface
// lock, so captures and draws on one surface never interleave. It returns
// errors.ErrCodeRenderNotReady without calling fn when the surface is empty.
func (s *Surface) Capture(fn func(Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return errors.RenderNotReady()
	}
	return fn(*s.snap)
}
