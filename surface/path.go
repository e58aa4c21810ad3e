// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"math"
)

// Verb identifies one path command.
type Verb uint8

const (
	// VerbMoveTo starts a new subpath. One point.
	VerbMoveTo Verb = iota
	// VerbLineTo adds a straight line. One point.
	VerbLineTo
	// VerbQuadTo adds a quadratic Bezier. Two points.
	VerbQuadTo
	// VerbCubicTo adds a cubic Bezier. Three points.
	VerbCubicTo
	// VerbClose closes the current subpath. No points.
	VerbClose
)

// pointCount returns the number of points a verb consumes.
func (v Verb) pointCount() int {
	switch v {
	case VerbMoveTo, VerbLineTo:
		return 1
	case VerbQuadTo:
		return 2
	case VerbCubicTo:
		return 3
	default:
		return 0
	}
}

// Path represents a vector path for drawing operations.
//
// Example:
//
//	p := surface.NewPath()
//	p.MoveTo(100, 100)
//	p.LineTo(200, 100)
//	p.LineTo(150, 200)
//	p.Close()
//
//	s.Fill(p, style)
type Path struct {
	verbs  []Verb
	points []Point
	start  Point
	cur    Point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		verbs:  make([]Verb, 0, 16),
		points: make([]Point, 0, 32),
	}
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.verbs = append(p.verbs, VerbMoveTo)
	p.points = append(p.points, Pt(x, y))
	p.start = Pt(x, y)
	p.cur = p.start
}

// LineTo adds a line from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, VerbLineTo)
	p.points = append(p.points, Pt(x, y))
	p.cur = Pt(x, y)
}

// QuadTo adds a quadratic Bezier curve from the current point.
// (cx, cy) is the control point, (x, y) is the endpoint.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(cx, cy)
	}
	p.verbs = append(p.verbs, VerbQuadTo)
	p.points = append(p.points, Pt(cx, cy), Pt(x, y))
	p.cur = Pt(x, y)
}

// CubicTo adds a cubic Bezier curve from the current point.
// (c1x, c1y) and (c2x, c2y) are control points, (x, y) is the endpoint.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(c1x, c1y)
	}
	p.verbs = append(p.verbs, VerbCubicTo)
	p.points = append(p.points, Pt(c1x, c1y), Pt(c2x, c2y), Pt(x, y))
	p.cur = Pt(x, y)
}

// Close closes the current subpath by connecting to the start point.
func (p *Path) Close() {
	if len(p.verbs) == 0 {
		return
	}
	p.verbs = append(p.verbs, VerbClose)
	p.cur = p.start
}

// Clear removes all elements from the path.
func (p *Path) Clear() {
	p.verbs = p.verbs[:0]
	p.points = p.points[:0]
	p.start = Point{}
	p.cur = Point{}
}

// IsEmpty returns true if the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.verbs) == 0
}

// Verbs returns the path commands.
func (p *Path) Verbs() []Verb {
	return p.verbs
}

// Points returns the points consumed by the path commands, in order.
func (p *Path) Points() []Point {
	return p.points
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	clone := &Path{
		verbs:  make([]Verb, len(p.verbs)),
		points: make([]Point, len(p.points)),
		start:  p.start,
		cur:    p.cur,
	}
	copy(clone.verbs, p.verbs)
	copy(clone.points, p.points)
	return clone
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point {
	return p.cur
}

// Rectangle adds a rectangle to the path.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Circle adds a full circle to the path.
func (p *Path) Circle(cx, cy, r float64) {
	const k = 0.5522847498307936 // Bezier circle approximation constant
	offset := r * k

	p.MoveTo(cx+r, cy)
	p.CubicTo(cx+r, cy+offset, cx+offset, cy+r, cx, cy+r)
	p.CubicTo(cx-offset, cy+r, cx-r, cy+offset, cx-r, cy)
	p.CubicTo(cx-r, cy-offset, cx-offset, cy-r, cx, cy-r)
	p.CubicTo(cx+offset, cy-r, cx+r, cy-offset, cx+r, cy)
	p.Close()
}

// Arc adds a circular arc to the path.
// The arc goes from angle1 to angle2 (in radians) around (cx, cy).
// If the path has a current subpath, a line joins it to the arc start.
func (p *Path) Arc(cx, cy, r, angle1, angle2 float64) {
	const twoPi = 2 * math.Pi
	for angle2 < angle1 {
		angle2 += twoPi
	}

	startX := cx + r*math.Cos(angle1)
	startY := cy + r*math.Sin(angle1)
	if len(p.verbs) == 0 {
		p.MoveTo(startX, startY)
	} else {
		p.LineTo(startX, startY)
	}
	if angle2 == angle1 {
		return
	}

	const maxAngle = math.Pi / 2
	numSegments := int(math.Ceil((angle2 - angle1) / maxAngle))
	angleStep := (angle2 - angle1) / float64(numSegments)

	for i := 0; i < numSegments; i++ {
		a1 := angle1 + float64(i)*angleStep
		p.arcSegment(cx, cy, r, a1, a1+angleStep)
	}
}

// arcSegment adds a single arc segment (up to 90 degrees).
func (p *Path) arcSegment(cx, cy, r, a1, a2 float64) {
	t := math.Tan((a2 - a1) / 2)
	alpha := math.Sin(a2-a1) * (math.Sqrt(4+3*t*t) - 1) / 3

	cos1, sin1 := math.Cos(a1), math.Sin(a1)
	cos2, sin2 := math.Cos(a2), math.Sin(a2)

	x1 := cx + r*cos1
	y1 := cy + r*sin1
	x2 := cx + r*cos2
	y2 := cy + r*sin2

	p.CubicTo(
		x1-alpha*r*sin1, y1+alpha*r*cos1,
		x2+alpha*r*sin2, y2-alpha*r*cos2,
		x2, y2)
}

// Bounds returns the axis-aligned bounding box of the path's points,
// control points included. Returns zeros if the path is empty.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	if len(p.points) == 0 {
		return 0, 0, 0, 0
	}

	minX, minY = p.points[0].X, p.points[0].Y
	maxX, maxY = minX, minY
	for _, pt := range p.points[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return minX, minY, maxX, maxY
}

// polyline is one flattened subpath.
type polyline struct {
	pts    []Point
	closed bool
}

// flatten converts the path into polylines, approximating curves with
// line segments no further than tol from the true curve.
func (p *Path) flatten(tol float64) []polyline {
	var (
		out  []polyline
		cur  *polyline
		idx  int
		last Point
	)
	for _, verb := range p.verbs {
		pts := p.points[idx : idx+verb.pointCount()]
		idx += verb.pointCount()

		switch verb {
		case VerbMoveTo:
			out = append(out, polyline{pts: []Point{pts[0]}})
			cur = &out[len(out)-1]
			last = pts[0]
		case VerbLineTo:
			cur.pts = append(cur.pts, pts[0])
			last = pts[0]
		case VerbQuadTo:
			cur.pts = flattenQuad(cur.pts, last, pts[0], pts[1], tol, 0)
			last = pts[1]
		case VerbCubicTo:
			cur.pts = flattenCubic(cur.pts, last, pts[0], pts[1], pts[2], tol, 0)
			last = pts[2]
		case VerbClose:
			if cur != nil {
				cur.closed = true
				last = cur.pts[0]
			}
		}
	}
	return out
}

const maxFlattenDepth = 10

// flattenQuad appends the flattened quadratic curve (excluding p0).
func flattenQuad(dst []Point, p0, c, p1 Point, tol float64, depth int) []Point {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	cross := (c.X-p0.X)*dy - (c.Y-p0.Y)*dx
	lenSq := dx*dx + dy*dy
	if depth >= maxFlattenDepth || lenSq < 1e-12 || cross*cross/lenSq < tol*tol {
		return append(dst, p1)
	}

	q0 := mid(p0, c)
	q1 := mid(c, p1)
	m := mid(q0, q1)
	dst = flattenQuad(dst, p0, q0, m, tol, depth+1)
	return flattenQuad(dst, m, q1, p1, tol, depth+1)
}

// flattenCubic appends the flattened cubic curve (excluding p0).
func flattenCubic(dst []Point, p0, c1, c2, p1 Point, tol float64, depth int) []Point {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	lenSq := dx*dx + dy*dy
	var maxCross float64
	if lenSq >= 1e-12 {
		cross1 := math.Abs((c1.X-p0.X)*dy - (c1.Y-p0.Y)*dx)
		cross2 := math.Abs((c2.X-p0.X)*dy - (c2.Y-p0.Y)*dx)
		maxCross = math.Max(cross1, cross2)
	} else {
		// Degenerate chord: measure control point distance instead.
		lenSq = 1
		maxCross = math.Max(dist(p0, c1), dist(p0, c2))
	}
	if depth >= maxFlattenDepth || maxCross*maxCross/lenSq < tol*tol {
		return append(dst, p1)
	}

	m01 := mid(p0, c1)
	m12 := mid(c1, c2)
	m23 := mid(c2, p1)
	m012 := mid(m01, m12)
	m123 := mid(m12, m23)
	m := mid(m012, m123)
	dst = flattenCubic(dst, p0, m01, m012, m, tol, depth+1)
	return flattenCubic(dst, m, m123, m23, p1, tol, depth+1)
}

func mid(a, b Point) Point {
	return Point{X: (a.X + b.X) * 0.5, Y: (a.Y + b.Y) * 0.5}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
