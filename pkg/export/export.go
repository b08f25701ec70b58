// Package export encodes the current contents of a rendering surface as a
// downloadable artifact.
//
// Two formats are supported: PNG images, handed to a viewer inline, and PDF
// documents, offered as attachments. The PDF is a single landscape page with
// the chart image placed inside a fixed margin.
//
// An export never renders on its own. If the surface has not been painted
// the encoder refuses with errors.ErrCodeRenderNotReady and produces
// nothing.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"

	"github.com/matzehuels/chartdeck/pkg/buildinfo"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/notify"
	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// Format is an export file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{FormatPNG, FormatPDF}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q (supported: png, pdf)", s)
	}
	return f, nil
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Disposition returns how the artifact is handed to the user.
func (f Format) Disposition() string {
	if f == FormatPDF {
		return "attachment"
	}
	return "inline"
}

// Artifact is one encoded export.
type Artifact struct {
	Format      Format
	Filename    string
	ContentType string
	Disposition string
	Data        []byte
}

// ContentDisposition returns the Content-Disposition header value.
func (a *Artifact) ContentDisposition() string {
	return fmt.Sprintf("%s; filename=%q", a.Disposition, a.Filename)
}

// Filename returns "<base>-<kind><ext>". An empty base becomes "chart".
func Filename(base, kind string, f Format) string {
	base = errors.SanitizeBaseName(base, "chart")
	return fmt.Sprintf("%s-%s%s", base, kind, f.Ext())
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithScale resamples PNG exports by factor s. Non-positive values are
// ignored.
func WithScale(s float64) Option {
	return func(e *Encoder) {
		if s > 0 {
			e.scale = s
		}
	}
}

// WithPageSize sets the PDF page size name understood by fpdf ("A4",
// "Letter", ...).
func WithPageSize(size string) Option {
	return func(e *Encoder) {
		if size != "" {
			e.pageSize = size
		}
	}
}

// WithMargin sets the PDF page margin in millimetres.
func WithMargin(mm float64) Option {
	return func(e *Encoder) {
		if mm >= 0 {
			e.margin = mm
		}
	}
}

// WithNotifier sets the notifier that receives export events.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Encoder) { e.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Encoder) { e.logger = l }
}

// Encoder exports surfaces. The zero value is not usable; call NewEncoder.
type Encoder struct {
	scale    float64
	pageSize string
	margin   float64
	notifier notify.Notifier
	logger   *log.Logger
}

// Default PDF layout.
const (
	DefaultPageSize = "A4"
	DefaultMargin   = 10.0
)

// NewEncoder creates an encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		scale:    1,
		pageSize: DefaultPageSize,
		margin:   DefaultMargin,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.notifier = notify.Safe(e.notifier, e.logger)
	return e
}

// Export encodes the snapshot held by s. dataset names the exported data
// in the completion event and may be empty.
func (e *Encoder) Export(ctx context.Context, s *surface.Surface, format Format, baseName, dataset string) (*Artifact, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	start := time.Now()
	var art *Artifact
	err := s.Capture(func(snap surface.Snapshot) error {
		data, err := e.encode(snap, format)
		if err != nil {
			return err
		}
		art = &Artifact{
			Format:      format,
			Filename:    Filename(baseName, string(snap.Kind), format),
			ContentType: format.ContentType(),
			Disposition: format.Disposition(),
			Data:        data,
		}
		return nil
	})
	size := 0
	if art != nil {
		size = len(art.Data)
	}
	observability.Pipeline().OnExport(ctx, string(format), size, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("exported chart", "file", art.Filename, "bytes", len(art.Data))
	_ = e.notifier.Notify(ctx, notify.ExportCompleted(art.Filename, dataset))
	return art, nil
}

func (e *Encoder) encode(snap surface.Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatPNG:
		return e.encodePNG(snap)
	case FormatPDF:
		return e.encodePDF(snap)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", format)
}

func (e *Encoder) encodePNG(snap surface.Snapshot) ([]byte, error) {
	if e.scale == 1 {
		return slices.Clone(snap.PNG), nil
	}
	b := snap.Image.Bounds()
	w := max(int(float64(b.Dx())*e.scale), 1)
	h := max(int(float64(b.Dy())*e.scale), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), snap.Image, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func (e *Encoder) encodePDF(snap surface.Snapshot) ([]byte, error) {
	pdf := fpdf.New("L", "mm", e.pageSize, "")
	pdf.SetTitle(snap.Title, true)
	pdf.SetCreator(buildinfo.UserAgent(), true)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(snap.PNG))
	pdf.ImageOptions("chart", e.margin, e.margin, pageW-2*e.margin, pageH-2*e.margin, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode pdf")
	}
	return buf.Bytes(), nil
}
