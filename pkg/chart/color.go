package chart

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA color. Its text form is a CSS rgba() expression.
type Color struct {
	R, G, B, A uint8
}

// HSL converts a CSS-style hue (degrees), saturation and lightness
// (percent) to an opaque color.
func HSL(h, s, l float64) Color {
	c := colorful.Hsl(math.Mod(h, 360), s/100, l/100).Clamped()
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: 0xff}
}

// RGBA builds a color from 8-bit channels and an alpha in [0, 1].
func RGBA(r, g, b uint8, alpha float64) Color {
	return Color{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}

// WithAlpha returns c with its alpha channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// RGBA implements color.Color with non-premultiplied channels converted to
// the premultiplied form the interface expects.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// String returns the CSS form, e.g. "rgba(255, 99, 132, 0.7)".
func (c Color) String() string {
	alpha := strconv.FormatFloat(math.Round(float64(c.A)/255*100)/100, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, alpha)
}

// Hex returns the #rrggbbaa form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalJSON encodes the CSS form.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts "#rrggbb", "#rrggbbaa" and "rgba(r, g, b, a)".
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var r, g, b uint8
	var a float64
	if n, _ := fmt.Sscanf(s, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); n == 4 {
		*c = RGBA(r, g, b, a)
		return nil
	}
	switch len(s) {
	case 7:
		parsed, err := colorful.Hex(s)
		if err != nil {
			return err
		}
		r, g, b = parsed.RGB255()
		*c = Color{R: r, G: g, B: b, A: 0xff}
		return nil
	case 9:
		parsed, err := colorful.Hex(s[:7])
		if err != nil {
			return err
		}
		alpha, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		r, g, b = parsed.RGB255()
		*c = Color{R: r, G: g, B: b, A: uint8(alpha)}
		return nil
	}
	return fmt.Errorf("unrecognised color %q", s)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// Palette is the fixed ordered series palette.
var Palette = []Color{
	HSL(240, 100, 25),
	HSL(200, 100, 45),
	HSL(120, 70, 40),
	HSL(45, 100, 50),
	HSL(0, 84, 60),
	HSL(280, 100, 45),
}

// PaletteAt returns the palette color for series i, cycling past the end.
func PaletteAt(i int) Color {
	return Palette[((i%len(Palette))+len(Palette))%len(Palette)]
}

// SliceColor returns the color of doughnut slice i: hue i*60, 70%
// saturation, 60% lightness.
func SliceColor(i int) Color {
	return HSL(float64(i*60), 70, 60)
}

// Fixed colors and alpha values.
var (
	// ScatterColor is the point color of scatter plots.
	ScatterColor = RGBA(255, 99, 132, 0.7)
)

// FillAlpha is the alpha applied to a series color for its fill.
const FillAlpha = 0x80
