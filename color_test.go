package paint

import (
	"image/color"
	"math"
	"testing"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name string
		in   [4]float64
		want Color
	}{
		{"black", [4]float64{0, 0, 0, 1}, Black},
		{"white", [4]float64{1, 1, 1, 1}, White},
		{"rounds half up", [4]float64{0.5, 0.25, 0.75, 1}, Color{128, 64, 191, 255}},
		{"clamps", [4]float64{-0.5, 1.5, 2, -1}, Color{0, 255, 255, 0}},
		{"NaN is zero", [4]float64{math.NaN(), 1, 0, 1}, Color{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFloat(tt.in[0], tt.in[1], tt.in[2], tt.in[3])
			if got != tt.want {
				t.Errorf("FromFloat(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromHSVPrimaries(t *testing.T) {
	tests := []struct {
		hue  float64
		want Color
	}{
		{0, Red},
		{math.Pi / 3, Color{255, 255, 0, 255}},
		{2 * math.Pi / 3, Green},
		{math.Pi, Color{0, 255, 255, 255}},
		{4 * math.Pi / 3, Blue},
		{5 * math.Pi / 3, Color{255, 0, 255, 255}},
		{math.Pi / 2, Color{128, 255, 0, 255}},
	}
	for _, tt := range tests {
		if got := FromHSV(tt.hue, 1, 1); got != tt.want {
			t.Errorf("FromHSV(%v, 1, 1) = %v, want %v", tt.hue, got, tt.want)
		}
	}
}

func TestFromHSVZeroSaturation(t *testing.T) {
	for _, hue := range []float64{0, 0.5, 1, 2, 3.5, 5, 6, 100, -7} {
		c := FromHSV(hue, 0, 1)
		if c != White {
			t.Errorf("FromHSV(%v, 0, 1) = %v, want white", hue, c)
		}
		g := FromHSV(hue, 0, 0.5)
		if g.R != g.G || g.G != g.B {
			t.Errorf("FromHSV(%v, 0, 0.5) = %v, want gray", hue, g)
		}
	}
}

func TestFromHSVPeriodic(t *testing.T) {
	for _, hue := range []float64{0.1, 1, 2.5, 3, 4.2, 5.9, -1.3} {
		for _, s := range []float64{0.3, 1} {
			a := FromHSV(hue, s, 1)
			b := FromHSV(hue+2*math.Pi, s, 1)
			if a != b {
				t.Errorf("FromHSV(%v) = %v but FromHSV(%v + 2π) = %v", hue, a, hue, b)
			}
		}
	}
}

func TestFromHSVNonFiniteHue(t *testing.T) {
	for _, hue := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		c := FromHSV(hue, 1, 1)
		if c.A != 255 {
			t.Errorf("FromHSV(%v) alpha = %d, want 255", hue, c.A)
		}
	}
}

func TestColorStyle(t *testing.T) {
	if got, want := NewColor(1, 2, 3, 4).Style(), "rgba(1, 2, 3, 4)"; got != want {
		t.Errorf("Style() = %q, want %q", got, want)
	}
}

func TestColorRGBA(t *testing.T) {
	var c color.Color = Color{255, 0, 0, 128}
	r, g, b, a := c.RGBA()
	if r != 0x8080 || g != 0 || b != 0 || a != 0x8080 {
		t.Errorf("RGBA() = %#x %#x %#x %#x, want premultiplied half red", r, g, b, a)
	}
	if got := colorFrom(c); got != (Color{255, 0, 0, 128}) {
		t.Errorf("colorFrom(RGBA) = %v, want round trip", got)
	}
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Main != Black || p.Help != White {
		t.Fatalf("DefaultPalette() = %+v, want black on white", p)
	}

	p.Swap()
	if p.Main != White || p.Help != Black {
		t.Errorf("after Swap = %+v", p)
	}

	p.Pick(Red)
	if p.Main != Red || p.Help != Black {
		t.Errorf("after Pick = %+v", p)
	}

	p.Reset()
	if p != DefaultPalette() {
		t.Errorf("after Reset = %+v", p)
	}
}

func TestPointToColor(t *testing.T) {
	tests := []struct {
		name      string
		in        Vector2
		wantColor Color
		wantPoint Vector2
	}{
		{"origin is white", V2(0, 0), White, V2(0, 0)},
		{"positive x is red", V2(1, 0), Red, V2(1, 0)},
		{"half saturation", V2(0.5, 0), Color{255, 128, 128, 255}, V2(0.5, 0)},
		{"down is a quarter turn", V2(0, 1), Color{128, 255, 0, 255}, V2(0, 1)},
		{"outside clamps to boundary", V2(2, 0), Red, V2(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p := PointToColor(tt.in)
			if c != tt.wantColor {
				t.Errorf("color = %v, want %v", c, tt.wantColor)
			}
			if math.Abs(p.X-tt.wantPoint.X) > 1e-12 || math.Abs(p.Y-tt.wantPoint.Y) > 1e-12 {
				t.Errorf("point = %v, want %v", p, tt.wantPoint)
			}
		})
	}
}

func TestPointToColorClampedMatchesBoundary(t *testing.T) {
	for _, dir := range []Vector2{V2(1, 1), V2(-3, 1), V2(-1, -2), V2(0.2, -1)} {
		n := dir.Norm()
		inside, _ := PointToColor(n)
		outside, p := PointToColor(n.Mul(2))
		if inside != outside {
			t.Errorf("direction %v: boundary %v, outside %v", dir, inside, outside)
		}
		if math.Abs(p.Len()-1) > 1e-12 {
			t.Errorf("direction %v: clamped point length = %v, want 1", dir, p.Len())
		}
	}
}
