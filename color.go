package paint

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/paint/internal/hsv"
)

// Color is a straight-alpha RGBA color with 8-bit channels.
// Color implements color.Color.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
	Red         = Color{255, 0, 0, 255}
	Green       = Color{0, 255, 0, 255}
	Blue        = Color{0, 0, 255, 255}

	// CheckerGray is the darker cell of the transparency checkerboard.
	CheckerGray = Color{191, 191, 191, 255}
)

// NewColor creates a color from byte channels.
func NewColor(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromFloat creates a color from channels in [0, 1]. Each channel is
// scaled to 255, rounded and clamped; NaN maps to 0.
func FromFloat(r, g, b, a float64) Color {
	return Color{R: toByte(r), G: toByte(g), B: toByte(b), A: toByte(a)}
}

// FromHSV creates an opaque color from a hue in radians, a saturation and
// a value. The hue is periodic with period 2π. Saturation and value are
// not clamped; out-of-range inputs only get the byte clamp of FromFloat.
func FromHSV(hue, s, v float64) Color {
	r, g, b := hsv.ToRGB(hue, s, v)
	return FromFloat(r, g, b, 1)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Floats returns the channels scaled to [0, 1].
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// Style returns the color in the "rgba(r, g, b, a)" form used by style
// sheets. All four channels are printed as bytes.
func (c Color) Style() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Style()
}

// colorFrom converts any color.Color to a Color.
func colorFrom(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

func toByte(v float64) uint8 {
	v = math.Round(v * 255)
	switch {
	case v >= 255:
		return 255
	case v > 0:
		return uint8(v)
	default:
		// Negative values and NaN.
		return 0
	}
}

// Palette holds the main and help colors of the painting tools.
type Palette struct {
	Main, Help Color
}

// DefaultPalette returns black on white.
func DefaultPalette() Palette {
	return Palette{Main: Black, Help: White}
}

// Swap exchanges the main and help colors.
func (p *Palette) Swap() {
	p.Main, p.Help = p.Help, p.Main
}

// Reset restores the default colors.
func (p *Palette) Reset() {
	*p = DefaultPalette()
}

// Pick sets the main color.
func (p *Palette) Pick(c Color) {
	p.Main = c
}

// PointToColor maps a point in unit-disk coordinates (y down) to its color
// on the HSV wheel at full value. The hue is the angle of p from the
// positive x axis and the saturation is its distance from the origin.
//
// Points outside the disk are clamped onto the boundary along the same
// direction; the returned point is the one actually used. The origin has
// no direction and maps to white.
func PointToColor(p Vector2) (Color, Vector2) {
	dist := p.Len()
	if dist == 0 {
		return White, p
	}
	if dist > 1 {
		p = p.Mul(1 / dist)
		dist = 1
	}
	n := p.Mul(1 / dist)
	return FromHSV(hsv.Angle(n.X, n.Y), dist, 1), p
}
