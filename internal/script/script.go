// Package script replays drawing scripts onto a paint.LayerStack.
//
// A script is a YAML document naming the canvas size, the number of
// layers and a list of steps. Each step selects a layer and draws on it
// through LayerStack.DrawInContext, so subscribers see every step.
//
//	width: 400
//	height: 200
//	layers: 2
//	steps:
//	  - op: checkerboard
//	    layer: 0
//	    cell: 20
//	    color: [204, 204, 204]
//	    color_b: [255, 255, 255]
//	  - op: stroke
//	    layer: 1
//	    width: 12
//	    color: [255, 0, 0]
//	    points: [[20, 20], [120, 80], [200, 40]]
package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/paint"
)

// ErrInvalid reports a malformed script or step.
var ErrInvalid = errors.New("script: invalid")

// Step operations.
const (
	OpClear        = "clear"
	OpFillCircle   = "fill_circle"
	OpCircle       = "circle"
	OpLine         = "line"
	OpStroke       = "stroke"
	OpCheckerboard = "checkerboard"
	OpWheel        = "wheel"
)

// Script is a decoded drawing script.
type Script struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Layers int     `yaml:"layers"`
	Cell   float64 `yaml:"cell"`
	Steps  []Step  `yaml:"steps"`
}

// Step is one drawing operation on one layer.
type Step struct {
	Op     string       `yaml:"op"`
	Layer  int          `yaml:"layer"`
	X      float64      `yaml:"x"`
	Y      float64      `yaml:"y"`
	R      float64      `yaml:"r"`
	Width  float64      `yaml:"width"`
	Cell   float64      `yaml:"cell"`
	Color  Color        `yaml:"color"`
	ColorB Color        `yaml:"color_b"`
	Points [][2]float64 `yaml:"points"`
}

// Color is an [r, g, b] or [r, g, b, a] byte list. Alpha defaults to 255.
type Color []int

// Value converts c, returning def when c is empty.
func (c Color) Value(def paint.Color) (paint.Color, error) {
	if len(c) == 0 {
		return def, nil
	}
	if len(c) != 3 && len(c) != 4 {
		return def, fmt.Errorf("%w: color needs 3 or 4 components, got %d", ErrInvalid, len(c))
	}
	v := [4]uint8{3: 255}
	for i, n := range c {
		if n < 0 || n > 255 {
			return def, fmt.Errorf("%w: color component %d out of range", ErrInvalid, n)
		}
		v[i] = uint8(n)
	}
	return paint.NewColor(v[0], v[1], v[2], v[3]), nil
}

// Parse decodes and validates a script. Width, Height and Layers default
// to 400, 200 and 1; Cell defaults to paint.CheckerCell.
func Parse(data []byte) (*Script, error) {
	s := &Script{Width: 400, Height: 200, Layers: 1, Cell: paint.CheckerCell}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("script: parse: %w", err)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, s.Width, s.Height)
	}
	if s.Layers <= 0 {
		return nil, fmt.Errorf("%w: layers %d", ErrInvalid, s.Layers)
	}
	if s.Cell <= 0 {
		return nil, fmt.Errorf("%w: cell %g", ErrInvalid, s.Cell)
	}
	for i, st := range s.Steps {
		if err := st.validate(s.Layers); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: load: %w", err)
	}
	return Parse(data)
}

func (st Step) validate(layers int) error {
	if st.Layer < 0 || st.Layer >= layers {
		return fmt.Errorf("%w: layer %d of %d", ErrInvalid, st.Layer, layers)
	}
	if _, err := st.Color.Value(paint.Black); err != nil {
		return err
	}
	if _, err := st.ColorB.Value(paint.White); err != nil {
		return err
	}
	switch st.Op {
	case OpClear, OpWheel:
	case OpFillCircle, OpCircle:
		if st.R <= 0 {
			return fmt.Errorf("%w: %s radius %g", ErrInvalid, st.Op, st.R)
		}
	case OpLine:
		if len(st.Points) != 2 {
			return fmt.Errorf("%w: line needs 2 points, got %d", ErrInvalid, len(st.Points))
		}
	case OpStroke:
		if len(st.Points) == 0 {
			return fmt.Errorf("%w: stroke without points", ErrInvalid)
		}
	case OpCheckerboard:
		if st.Cell <= 0 {
			return fmt.Errorf("%w: checkerboard cell %g", ErrInvalid, st.Cell)
		}
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalid, st.Op)
	}
	return nil
}

// NewStack creates a stack sized for s with s.Layers layers.
func (s *Script) NewStack(opts ...paint.StackOption) (*paint.LayerStack, error) {
	stack := paint.NewLayerStack(s.Width, s.Height, opts...)
	for range s.Layers {
		if _, err := stack.PushLayer(); err != nil {
			_ = stack.Close()
			return nil, err
		}
	}
	return stack, nil
}

// Run replays every step onto stack. Layer n of the script is the n-th
// layer of the stack, bottom first. The selection is left on the layer
// of the last step.
func (s *Script) Run(stack *paint.LayerStack) error {
	ids := make([]paint.LayerID, 0, stack.Len())
	for l := range stack.Layers() {
		ids = append(ids, l.ID())
	}
	for i, st := range s.Steps {
		if st.Layer >= len(ids) {
			return fmt.Errorf("step %d: %w: layer %d of %d", i, ErrInvalid, st.Layer, len(ids))
		}
		if err := stack.Select(ids[st.Layer]); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := st.run(stack); err != nil {
			return fmt.Errorf("step %d: %s: %w", i, st.Op, err)
		}
	}
	return nil
}

func (st Step) run(stack *paint.LayerStack) error {
	// Colors were checked by Parse.
	c, _ := st.Color.Value(paint.Black)

	var err error
	switch st.Op {
	case OpClear:
		c, _ = st.Color.Value(paint.Transparent)
		stack.DrawInContext(func(ctx *paint.Context) { ctx.Clear(c) })
	case OpFillCircle:
		stack.DrawInContext(func(ctx *paint.Context) { ctx.FillCircle(st.X, st.Y, st.R, c) })
	case OpCircle:
		stack.DrawInContext(func(ctx *paint.Context) { ctx.DrawCircle(st.X, st.Y, st.R, st.width(1)) })
	case OpLine:
		p, q := st.Points[0], st.Points[1]
		stack.DrawInContext(func(ctx *paint.Context) { ctx.Line(p[0], p[1], q[0], q[1], st.width(1), c) })
	case OpStroke:
		b := paint.NewBrush()
		b.Width = st.width(paint.DefaultBrushWidth)
		first, last := st.Points[0], st.Points[len(st.Points)-1]
		b.Down(stack, first[0], first[1], c)
		for _, p := range st.Points[1:] {
			b.Move(stack, p[0], p[1], c)
		}
		b.Up(stack, last[0], last[1], c)
	case OpCheckerboard:
		c, _ = st.Color.Value(paint.CheckerGray)
		cb, _ := st.ColorB.Value(paint.White)
		stack.DrawInContext(func(ctx *paint.Context) { err = ctx.Checkerboard(st.Cell, c, cb) })
	case OpWheel:
		stack.DrawInContext(func(ctx *paint.Context) { err = ctx.HSVCircle(st.X, st.Y, st.R) })
	}
	return err
}

func (st Step) width(def float64) float64 {
	if st.Width > 0 {
		return st.Width
	}
	return def
}
