// Package hsv converts between hue/saturation/value and RGB in floating
// point. It is shared by the CPU color model and the color wheel program so
// that both produce the same colors.
package hsv

import "math"

// SectorWidth is the angular width, in radians, of one of the six hue
// sectors.
const SectorWidth = math.Pi / 3

// Sector reduces a hue in radians to the sector value in [0, 6).
// The reduction is periodic, so any finite hue is accepted. A NaN or
// infinite hue yields NaN, which callers treat as the last sector.
func Sector(hue float64) float64 {
	h := math.Mod(hue/SectorWidth, 6)
	if h < 0 {
		h += 6
	}
	if h >= 6 {
		h = 0
	}
	return h
}

// ToRGB converts hue (radians), saturation and value to RGB components.
// Saturation and value are used as given; results outside [0, 1] are left
// for the caller to clamp.
func ToRGB(hue, s, v float64) (r, g, b float64) {
	h := Sector(hue)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))

	switch {
	case 0 <= h && h < 1:
		r, g, b = c, x, 0
	case 1 <= h && h < 2:
		r, g, b = x, c, 0
	case 2 <= h && h < 3:
		r, g, b = 0, c, x
	case 3 <= h && h < 4:
		r, g, b = 0, x, c
	case 4 <= h && h < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := v - c
	return r + m, g + m, b + m
}

// Angle returns the hue angle in [0, 2π] of a unit direction (nx, ny) in
// device coordinates (y grows downward).
func Angle(nx, ny float64) float64 {
	nx = math.Max(-1, math.Min(1, nx))
	if ny > 0 {
		return math.Acos(nx)
	}
	return 2*math.Pi - math.Acos(nx)
}
