// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"math"
	"testing"
)

// TestNewPath tests path creation and basic operations.
func TestNewPath(t *testing.T) {
	p := NewPath()
	if !p.IsEmpty() {
		t.Error("new path should be empty")
	}

	p.MoveTo(10, 20)
	if p.IsEmpty() {
		t.Error("path with MoveTo should not be empty")
	}

	pt := p.CurrentPoint()
	if pt.X != 10 || pt.Y != 20 {
		t.Errorf("CurrentPoint() = (%v, %v), want (10, 20)", pt.X, pt.Y)
	}
}

// TestPathShapes tests shape convenience methods.
func TestPathShapes(t *testing.T) {
	tests := []struct {
		name      string
		create    func(p *Path)
		verbs     int
		minPoints int
	}{
		{"Rectangle", func(p *Path) { p.Rectangle(0, 0, 100, 50) }, 5, 4},
		{"Circle", func(p *Path) { p.Circle(50, 50, 25) }, 6, 13},
		{"QuarterArc", func(p *Path) { p.Arc(0, 0, 10, 0, math.Pi/2) }, 2, 4},
		{"FullArc", func(p *Path) { p.Arc(0, 0, 10, 0, 2*math.Pi) }, 5, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath()
			tt.create(p)

			if len(p.Verbs()) != tt.verbs {
				t.Errorf("expected %d verbs, got %d", tt.verbs, len(p.Verbs()))
			}
			if len(p.Points()) < tt.minPoints {
				t.Errorf("expected at least %d points, got %d", tt.minPoints, len(p.Points()))
			}
		})
	}
}

// TestPathClone tests path cloning.
func TestPathClone(t *testing.T) {
	p := NewPath()
	p.Rectangle(10, 20, 100, 50)

	clone := p.Clone()
	if clone == p {
		t.Error("clone should be a different instance")
	}

	p.LineTo(200, 200)
	if len(clone.Verbs()) == len(p.Verbs()) {
		t.Error("clone should not be affected by original modifications")
	}
}

// TestPathBounds tests bounding box calculation.
func TestPathBounds(t *testing.T) {
	p := NewPath()
	p.Rectangle(10, 20, 90, 60)

	minX, minY, maxX, maxY := p.Bounds()
	if minX != 10 || minY != 20 || maxX != 100 || maxY != 80 {
		t.Errorf("Bounds() = (%v, %v, %v, %v), want (10, 20, 100, 80)", minX, minY, maxX, maxY)
	}
}

func TestPathFlattenCircle(t *testing.T) {
	p := NewPath()
	p.Circle(50, 50, 20)

	lines := p.flatten(flattenTolerance)
	if len(lines) != 1 {
		t.Fatalf("flatten produced %d polylines, want 1", len(lines))
	}
	if !lines[0].closed {
		t.Error("circle polyline should be closed")
	}
	if len(lines[0].pts) < 16 {
		t.Errorf("circle flattened to %d points, want at least 16", len(lines[0].pts))
	}
	for _, pt := range lines[0].pts {
		d := math.Hypot(pt.X-50, pt.Y-50)
		if math.Abs(d-20) > 0.5 {
			t.Fatalf("flattened point %v is %v from center, want about 20", pt, d)
		}
	}
}

func TestPathFlattenSubpaths(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.MoveTo(0, 10)
	p.LineTo(10, 10)
	p.Close()

	lines := p.flatten(flattenTolerance)
	if len(lines) != 2 {
		t.Fatalf("flatten produced %d polylines, want 2", len(lines))
	}
	if lines[0].closed {
		t.Error("first subpath should be open")
	}
	if !lines[1].closed {
		t.Error("second subpath should be closed")
	}
}

func TestStrokeStyle(t *testing.T) {
	style := DefaultStrokeStyle()
	if style.Width != 1.0 {
		t.Errorf("default width should be 1.0, got %v", style.Width)
	}
	if style.Cap != LineCapButt {
		t.Errorf("default cap should be Butt, got %v", style.Cap)
	}

	style = style.WithWidth(2.5).WithCap(LineCapRound)
	if style.Width != 2.5 {
		t.Errorf("width = %v, want 2.5", style.Width)
	}
	if style.Cap != LineCapRound {
		t.Errorf("cap = %v, want Round", style.Cap)
	}
}
