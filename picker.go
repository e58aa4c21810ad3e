package paint

import (
	"fmt"
	"image"
)

const (
	// ColorWheelSize is the side of the default color wheel in pixels.
	ColorWheelSize = 150

	wheelMargin  = 5
	markerRadius = 5
)

// wheelBackground is transparent so the host background shows through.
var wheelBackground = Color{0, 255, 255, 0}

// ColorWheel is a color picker drawn as an HSV wheel with a marker at the
// picked color.
type ColorWheel struct {
	ctx    *Context
	picked Color
	marker Vector2
}

// NewColorWheel creates a square color wheel of the given size and picks
// its center.
func NewColorWheel(size int, opts ...ContextOption) (*ColorWheel, error) {
	if size <= 2*wheelMargin {
		return nil, fmt.Errorf("paint: color wheel: %w: %d", ErrInvalidSize, size)
	}
	ctx, err := NewContext(size, size, opts...)
	if err != nil {
		return nil, fmt.Errorf("paint: color wheel: %w", err)
	}
	w := &ColorWheel{ctx: ctx}
	cx, cy, _ := w.geometry()
	w.Pick(cx, cy)
	return w, nil
}

// geometry returns the wheel center and radius in pixels.
func (w *ColorWheel) geometry() (cx, cy, r float64) {
	half := w.ctx.Width() / 2
	return float64(half), float64(w.ctx.Height() / 2), float64(half - wheelMargin)
}

// Pick redraws the wheel with the marker at the pointer position (x, y)
// and returns the color under it. Positions outside the wheel pick the
// nearest boundary color.
func (w *ColorWheel) Pick(x, y float64) Color {
	cx, cy, r := w.geometry()
	w.ctx.Clear(wheelBackground)
	if err := w.ctx.HSVCircle(cx, cy, r); err != nil {
		slogger().Warn("paint: color wheel draw failed", "err", err)
	}

	c, p := PointToColor(V2((x-cx)/r, (y-cy)/r))
	m := V2(cx, cy).Add(p.Mul(r))
	w.ctx.FillCircle(m.X, m.Y, markerRadius, c)
	w.ctx.DrawCircle(m.X, m.Y, markerRadius, 1)

	w.picked, w.marker = c, m
	return c
}

// Picked returns the last picked color.
func (w *ColorWheel) Picked() Color {
	return w.picked
}

// Marker returns the marker center of the last pick in pixels.
func (w *ColorWheel) Marker() Vector2 {
	return w.marker
}

// Context returns the wheel's drawing context.
func (w *ColorWheel) Context() *Context {
	return w.ctx
}

// Surface returns the wheel pixels. ColorWheel implements Source.
func (w *ColorWheel) Surface() *image.RGBA {
	return w.ctx.Surface()
}

// Close releases the wheel's Context.
func (w *ColorWheel) Close() error {
	return w.ctx.Close()
}
