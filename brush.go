package paint

import "math"

const (
	// DefaultBrushWidth is the stroke width of a new Brush.
	DefaultBrushWidth = 50

	// ZoomFactor is the scale change of one Zoom step.
	ZoomFactor = 1.05

	// CheckerCell is the background checkerboard cell size at scale 1.
	CheckerCell = 10
)

// Brush turns pointer events into strokes on the selected layer of a
// LayerStack. Each event stamps a filled circle of diameter Width; moves
// while the pointer is down also join the previous point with a line.
//
// Pointer coordinates are in view pixels and are divided by Scale to get
// layer pixels.
type Brush struct {
	Width float64
	Scale float64

	prev Vector2
	down bool
}

// NewBrush returns a Brush with the default width at scale 1.
func NewBrush() *Brush {
	return &Brush{Width: DefaultBrushWidth, Scale: 1}
}

// Down starts a stroke at (x, y).
func (b *Brush) Down(s *LayerStack, x, y float64, c Color) {
	p := b.point(x, y)
	s.DrawInContext(func(ctx *Context) {
		ctx.FillCircle(p.X, p.Y, b.Width/2, c)
	})
	b.prev, b.down = p, true
}

// Move continues the stroke to (x, y). It does nothing unless a stroke is
// in progress.
func (b *Brush) Move(s *LayerStack, x, y float64, c Color) {
	if !b.down {
		return
	}
	p, prev := b.point(x, y), b.prev
	s.DrawInContext(func(ctx *Context) {
		ctx.FillCircle(p.X, p.Y, b.Width/2, c)
		ctx.Line(prev.X, prev.Y, p.X, p.Y, b.Width, c)
	})
	b.prev = p
}

// Up stamps the final point and ends the stroke.
func (b *Brush) Up(s *LayerStack, x, y float64, c Color) {
	p := b.point(x, y)
	s.DrawInContext(func(ctx *Context) {
		ctx.FillCircle(p.X, p.Y, b.Width/2, c)
	})
	b.down = false
}

// Drawing reports whether a stroke is in progress.
func (b *Brush) Drawing() bool {
	return b.down
}

// Zoom scales the view in or out by one ZoomFactor step.
func (b *Brush) Zoom(in bool) {
	if b.Scale <= 0 {
		b.Scale = 1
	}
	if in {
		b.Scale *= ZoomFactor
	} else {
		b.Scale /= ZoomFactor
	}
}

// CellSize returns the background checkerboard cell size in layer pixels
// for the current scale, so cells stay about CheckerCell view pixels wide.
func (b *Brush) CellSize() float64 {
	return math.Ceil(CheckerCell / b.scale())
}

func (b *Brush) scale() float64 {
	if b.Scale <= 0 {
		return 1
	}
	return b.Scale
}

func (b *Brush) point(x, y float64) Vector2 {
	s := b.scale()
	return V2(x/s, y/s)
}
