package paint

import (
	"image"
	"math"
)

// Vector2 is a 2D vector or position.
type Vector2 struct {
	X, Y float64
}

// V2 is a convenience function to create a Vector2.
func V2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Len returns the length of the vector.
func (v Vector2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Norm returns the unit vector in the direction of v.
// The zero vector yields NaN components; callers must check Len first.
func (v Vector2) Norm() Vector2 {
	l := v.Len()
	return Vector2{X: v.X / l, Y: v.Y / l}
}

// Add returns the sum of two vectors.
func (v Vector2) Add(w Vector2) Vector2 {
	return Vector2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vector2) Sub(w Vector2) Vector2 {
	return Vector2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vector2) Mul(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Coord Vector2
	Size  Vector2
}

// NewRect creates a rectangle at (x, y) with the given size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Coord: V2(x, y), Size: V2(w, h)}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return !(r.Size.X > 0 && r.Size.Y > 0)
}

// Image returns the pixel rectangle covered by r, with corners rounded to
// the nearest pixel.
func (r Rect) Image() image.Rectangle {
	x0 := int(math.Round(r.Coord.X))
	y0 := int(math.Round(r.Coord.Y))
	x1 := int(math.Round(r.Coord.X + r.Size.X))
	y1 := int(math.Round(r.Coord.Y + r.Size.Y))
	return image.Rect(x0, y0, x1, y1)
}
