// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"math"

	"golang.org/x/image/vector"
)

// stroker expands polylines into filled outlines.
//
// The outline is emitted as a union of quads (one per segment) and discs
// (round joins and caps). The rasterizer clamps accumulated coverage, so
// overlapping pieces merge cleanly as long as all of them share one
// orientation. A closed circle therefore strokes as an annulus.
type stroker struct {
	ras      *vector.Rasterizer
	hw       float64
	cap      LineCap
	polygons int
}

func (st *stroker) add(pl polyline) {
	pts := dedupe(pl.pts)
	if pl.closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	if len(pts) == 1 {
		if st.cap == LineCapRound {
			st.disc(pts[0])
		}
		return
	}

	for i := 0; i+1 < len(pts); i++ {
		st.segment(pts[i], pts[i+1])
	}
	if pl.closed && len(pts) > 2 {
		st.segment(pts[len(pts)-1], pts[0])
		for _, p := range pts {
			st.disc(p)
		}
		return
	}

	for _, p := range pts[1 : len(pts)-1] {
		st.disc(p)
	}
	if st.cap == LineCapRound {
		st.disc(pts[0])
		st.disc(pts[len(pts)-1])
	}
}

// segment emits the quad covering one segment.
func (st *stroker) segment(a, b Point) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx := -dy / length * st.hw
	ny := dx / length * st.hw
	st.polygon([]Point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	})
}

// disc emits a polygonal disc of radius hw around c.
func (st *stroker) disc(c Point) {
	n := int(math.Ceil(math.Pi * st.hw))
	n = max(12, min(n, 256))
	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{c.X + st.hw*math.Cos(a), c.Y + st.hw*math.Sin(a)}
	}
	st.polygon(pts)
}

// polygon feeds a closed polygon to the rasterizer with positive
// orientation.
func (st *stroker) polygon(pts []Point) {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	st.ras.MoveTo(f32(pts[0].X), f32(pts[0].Y))
	for _, p := range pts[1:] {
		st.ras.LineTo(f32(p.X), f32(p.Y))
	}
	st.ras.ClosePath()
	st.polygons++
}

func signedArea(pts []Point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// dedupe drops consecutive duplicate points.
func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
