// Package pipeline provides the chart pipeline shared by the CLI, the TUI
// and the HTTP API.
//
// This package implements the complete inspect → select → build → draw →
// export pipeline. By centralizing this logic, every entry point applies
// the same defaults, emits the same usage events and reports the same
// user-facing conditions.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: inspect the dataset, fill unset axes and build chart data
//  2. Draw: render the chart data onto a [surface.Surface]
//  3. Export: encode the surface as PNG or PDF, or the chart data as JSON
//
// [Runner.Build] runs the first stage only; [Runner.Execute] runs all three.
// [View] keeps a surface and a selection between calls for interactive use.
//
// # Usage
//
//	runner := pipeline.NewRunner(notifier, logger)
//	opts := pipeline.Options{
//	    Kind:    "doughnut",
//	    X:       "city",
//	    Y:       "sales",
//	    Formats: []string{"png", "pdf"},
//	}
//	result, err := runner.Execute(ctx, d, opts)
//	if errors.IsNotice(err) {
//	    fmt.Println(errors.UserMessage(err))
//	}
//	png := result.Artifacts["png"].Data
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultKind is the chart kind used when none is given.
	DefaultKind = chart.KindBar

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = surface.DefaultWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = surface.DefaultHeight

	// DefaultScale is the default PNG export scale.
	DefaultScale = 1.0

	// DefaultBaseName is the artifact base name used when neither the
	// options nor the dataset provide one.
	DefaultBaseName = "chart"

	// MaxDimension bounds the canvas size in either direction.
	MaxDimension = 8192
)

// Format constants for output formats.
const (
	FormatPNG  = string(export.FormatPNG)
	FormatPDF  = string(export.FormatPDF)
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Kind   string `json:"kind,omitempty"`
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Policy string `json:"stale_axes,omitempty"`

	// Draw options
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	BaseName string   `json:"base_name,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Schema is the inspected dataset schema.
	Schema dataset.Schema

	// Axes is the selection the chart was built with.
	Axes axis.Selection

	// Data is the render-ready chart description.
	Data chart.Data

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string]*export.Artifact

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows           int
	Columns        int
	NumericColumns int
	BuildTime      time.Duration
	RenderTime     time.Duration
	ExportTime     time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateKind checks that a chart kind is valid.
func ValidateKind(kind string) error {
	_, err := chart.ParseKind(kind)
	return err
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Kind == "" {
		o.Kind = string(DefaultKind)
	}
	kind, err := chart.ParseKind(o.Kind)
	if err != nil {
		return err
	}
	o.Kind = string(kind)

	policy, err := axis.ParsePolicy(o.Policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "stale_axes")
	}
	o.Policy = string(policy)

	if err := o.setDrawDefaults(); err != nil {
		return err
	}
	if err := o.setExportDefaults(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

func (o *Options) setDrawDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 || o.Width > MaxDimension || o.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid size %dx%d (each side must be 1..%d)", o.Width, o.Height, MaxDimension)
	}
	return nil
}

func (o *Options) setExportDefaults() error {
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	o.Formats = formats
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid scale %v (must be positive)", o.Scale)
	}
	return nil
}

// ChartKind returns the validated chart kind.
func (o *Options) ChartKind() chart.Kind {
	if o.Kind == "" {
		return DefaultKind
	}
	return chart.Kind(o.Kind)
}

// Axes returns the requested axis selection.
func (o *Options) Axes() axis.Selection {
	return axis.Selection{X: o.X, Y: o.Y}
}

// StalePolicy returns the stale axis policy.
func (o *Options) StalePolicy() axis.Policy {
	return axis.Policy(o.Policy)
}

// SurfaceOptions returns the surface options for the configured size.
func (o *Options) SurfaceOptions() []surface.Option {
	return []surface.Option{surface.WithSize(o.Width, o.Height)}
}

// String summarizes the options for log output.
func (o *Options) String() string {
	return fmt.Sprintf("kind=%s %s formats=%v", o.ChartKind(), o.Axes(), o.Formats)
}
