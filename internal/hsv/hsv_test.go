package hsv

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestToRGBPrimaries(t *testing.T) {
	tests := []struct {
		name    string
		hue     float64
		r, g, b float64
	}{
		{"red", 0, 1, 0, 0},
		{"yellow", math.Pi / 3, 1, 1, 0},
		{"green", 2 * math.Pi / 3, 0, 1, 0},
		{"cyan", math.Pi, 0, 1, 1},
		{"blue", 4 * math.Pi / 3, 0, 0, 1},
		{"magenta", 5 * math.Pi / 3, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ToRGB(tt.hue, 1, 1)
			if !near(r, tt.r) || !near(g, tt.g) || !near(b, tt.b) {
				t.Errorf("ToRGB(%v, 1, 1) = (%v, %v, %v), want (%v, %v, %v)", tt.hue, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestToRGBZeroSaturationIsGray(t *testing.T) {
	for _, hue := range []float64{-7, 0, 0.5, 1, 2, 3, 4, 5, 6, 100} {
		r, g, b := ToRGB(hue, 0, 0.7)
		if r != g || g != b {
			t.Errorf("ToRGB(%v, 0, 0.7) = (%v, %v, %v), want equal channels", hue, r, g, b)
		}
	}
}

func TestSectorRange(t *testing.T) {
	for _, hue := range []float64{-100, -2 * math.Pi, -0.1, 0, 1, 2 * math.Pi, 1e6} {
		h := Sector(hue)
		if h < 0 || h >= 6 {
			t.Errorf("Sector(%v) = %v, want [0, 6)", hue, h)
		}
	}
	if h := Sector(math.NaN()); !math.IsNaN(h) {
		t.Errorf("Sector(NaN) = %v, want NaN", h)
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name   string
		nx, ny float64
		want   float64
	}{
		{"positive x", 1, 0, 2 * math.Pi},
		{"below", 0, 1, math.Pi / 2},
		{"negative x", -1, 0, math.Pi},
		{"above", 0, -1, 3 * math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Angle(tt.nx, tt.ny); !near(got, tt.want) {
				t.Errorf("Angle(%v, %v) = %v, want %v", tt.nx, tt.ny, got, tt.want)
			}
		})
	}
}
