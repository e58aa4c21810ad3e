package paint

import (
	"math"
	"testing"
)

func TestBrushStroke(t *testing.T) {
	s := newTestStack(t, 200, 100, 1)
	if err := s.Select(0); err != nil {
		t.Fatal(err)
	}
	notified := 0
	s.Subscribe(func(Notification) { notified++ })

	b := NewBrush()
	b.Width = 10

	b.Down(s, 20, 50, Red)
	if !b.Drawing() {
		t.Error("Drawing() = false after Down")
	}
	b.Move(s, 80, 50, Red)
	b.Up(s, 80, 50, Red)
	if b.Drawing() {
		t.Error("Drawing() = true after Up")
	}

	c := s.Layer(0).Context()
	for _, x := range []int{20, 50, 80} {
		if got := c.Pixel(x, 50); got != Red {
			t.Errorf("Pixel(%d, 50) = %v, want red", x, got)
		}
	}
	if got := c.Pixel(50, 60); got != Transparent {
		t.Errorf("Pixel(50, 60) = %v, want transparent", got)
	}
	if notified != 3 {
		t.Errorf("notifications = %d, want 3", notified)
	}
}

func TestBrushMoveWithoutDown(t *testing.T) {
	s := newTestStack(t, 50, 50, 1)
	_ = s.Select(0)
	notified := 0
	s.Subscribe(func(Notification) { notified++ })

	b := NewBrush()
	b.Move(s, 10, 10, Red)
	if notified != 0 {
		t.Errorf("notifications = %d, want 0", notified)
	}
	if got := s.Layer(0).Context().Pixel(10, 10); got != Transparent {
		t.Errorf("Pixel(10, 10) = %v, want transparent", got)
	}
}

func TestBrushScale(t *testing.T) {
	s := newTestStack(t, 100, 100, 1)
	_ = s.Select(0)

	b := &Brush{Width: 4, Scale: 2}
	b.Down(s, 100, 100, Blue)
	b.Up(s, 100, 100, Blue)

	c := s.Layer(0).Context()
	if got := c.Pixel(50, 50); got != Blue {
		t.Errorf("Pixel(50, 50) = %v, want blue at the scaled point", got)
	}
	if got := c.Pixel(99, 99); got != Transparent {
		t.Errorf("Pixel(99, 99) = %v, want transparent", got)
	}
}

func TestBrushZoom(t *testing.T) {
	b := NewBrush()
	b.Zoom(true)
	if math.Abs(b.Scale-1.05) > 1e-12 {
		t.Errorf("Scale after zoom in = %v, want 1.05", b.Scale)
	}
	b.Zoom(false)
	if math.Abs(b.Scale-1) > 1e-12 {
		t.Errorf("Scale after zoom out = %v, want 1", b.Scale)
	}
}

func TestBrushCellSize(t *testing.T) {
	tests := []struct {
		scale float64
		want  float64
	}{
		{1, 10},
		{2, 5},
		{3, 4},
		{0.3, 34},
		{0, 10},
	}
	for _, tt := range tests {
		b := &Brush{Scale: tt.scale}
		if got := b.CellSize(); got != tt.want {
			t.Errorf("CellSize() at scale %v = %v, want %v", tt.scale, got, tt.want)
		}
	}
}
