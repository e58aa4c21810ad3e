package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/internal/config"
	"github.com/gogpu/paint/surface"
)

// Sidebar layout in screen pixels.
const (
	sidebarPad   = 10
	swatchSize   = 20
	thumbWidth   = 100
	thumbSpacing = 8
	brushStep    = 5
	minBrush     = 1
)

var (
	colorSidebar  = color.RGBA{0x22, 0x22, 0x2a, 0xff}
	colorSelected = color.RGBA{0x66, 0x88, 0xff, 0xff}
	colorBorder   = color.RGBA{0x44, 0x44, 0x50, 0xff}
)

// thumb is one entry in the layer list.
type thumb struct {
	id      paint.LayerID
	preview *paint.Preview
	img     *ebiten.Image
	dirty   bool
}

// Game is the ebiten game driving the paint stack.
type Game struct {
	cfg    config.App
	filter surface.Filter

	stack   paint.Shared
	brush   *paint.Brush
	palette paint.Palette
	wheel   *paint.ColorWheel
	view    *paint.Context

	viewImg  *ebiten.Image
	wheelImg *ebiten.Image
	thumbs   []*thumb
	thumbH   int

	viewDirty bool
}

// NewGame builds the stack with cfg.Layers layers and every panel.
func NewGame(cfg config.App) (*Game, error) {
	filter, err := cfg.SurfaceFilter()
	if err != nil {
		return nil, err
	}
	g := &Game{
		cfg:       cfg,
		filter:    filter,
		brush:     paint.NewBrush(),
		palette:   paint.DefaultPalette(),
		thumbH:    max(1, thumbWidth*cfg.Height/cfg.Width),
		viewDirty: true,
	}
	g.brush.Width = cfg.BrushWidth

	stack := paint.NewLayerStack(cfg.Width, cfg.Height, paint.WithLayerFilter(filter))
	g.stack = stack.Share()
	stack.Subscribe(g.layerChanged)

	if g.view, err = paint.NewContext(cfg.Width, cfg.Height, paint.WithFilter(filter)); err != nil {
		g.Close()
		return nil, err
	}
	g.viewImg = ebiten.NewImage(cfg.Width, cfg.Height)

	if g.wheel, err = paint.NewColorWheel(cfg.WheelSize); err != nil {
		g.Close()
		return nil, err
	}
	g.wheelImg = ebiten.NewImage(cfg.WheelSize, cfg.WheelSize)
	g.wheelImg.WritePixels(g.wheel.Surface().Pix)
	g.palette.Pick(g.wheel.Picked())

	for range cfg.Layers {
		if err := g.pushLayer(); err != nil {
			g.Close()
			return nil, err
		}
	}
	if err := stack.Select(g.thumbs[0].id); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Close releases every paint context.
func (g *Game) Close() {
	for _, t := range g.thumbs {
		_ = t.preview.Close()
	}
	if g.wheel != nil {
		_ = g.wheel.Close()
	}
	if g.view != nil {
		_ = g.view.Close()
	}
	g.stack.With(func(s *paint.LayerStack) { _ = s.Close() })
}

func (g *Game) pushLayer() error {
	var (
		l   *paint.Layer
		err error
	)
	g.stack.With(func(s *paint.LayerStack) { l, err = s.PushLayer() })
	if err != nil {
		return err
	}
	p, err := paint.NewPreview(thumbWidth, g.thumbH, paint.WithFilter(g.filter))
	if err != nil {
		return err
	}
	g.thumbs = append(g.thumbs, &thumb{
		id:      l.ID(),
		preview: p,
		img:     ebiten.NewImage(thumbWidth, g.thumbH),
		dirty:   true,
	})
	g.viewDirty = true
	return nil
}

// layerChanged is the stack subscriber. It only marks panels dirty; the
// pixels are copied out once per frame in Update.
func (g *Game) layerChanged(n paint.Notification) {
	for _, t := range g.thumbs {
		if t.id == n.LayerID {
			t.dirty = true
		}
	}
	g.viewDirty = true
}

// Update handles input and refreshes dirty panels.
func (g *Game) Update() error {
	g.handleKeys()
	g.handleWheel()
	g.handlePointer()
	return g.refresh()
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.palette.Swap()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.palette.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		g.brush.Width = max(minBrush, g.brush.Width-brushStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		g.brush.Width += brushStep
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		if err := g.pushLayer(); err != nil {
			slog.Error("push layer", "err", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		g.stack.With(func(s *paint.LayerStack) {
			s.DrawInContext(func(ctx *paint.Context) { ctx.Clear(paint.Transparent) })
		})
	}
}

func (g *Game) handleWheel() {
	if !ebiten.IsKeyPressed(ebiten.KeyControl) {
		return
	}
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	g.brush.Zoom(dy > 0)
	g.viewDirty = true
}

func (g *Game) handlePointer() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	g.stack.With(func(s *paint.LayerStack) {
		switch {
		case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
			switch {
			case g.inView(mx, my):
				g.brush.Down(s, x, y, g.palette.Main)
			case g.inWheel(mx, my):
				g.pick(mx, my)
			default:
				if t := g.thumbAt(mx, my); t != nil {
					if err := s.Select(t.id); err != nil {
						slog.Warn("select layer", "err", err)
					}
				}
			}
		case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
			if g.brush.Drawing() {
				g.brush.Up(s, x, y, g.palette.Main)
			}
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
			if g.brush.Drawing() {
				g.brush.Move(s, x, y, g.palette.Main)
			} else if g.inWheel(mx, my) {
				g.pick(mx, my)
			}
		}
	})
}

func (g *Game) pick(mx, my int) {
	r := g.wheelRect()
	c := g.wheel.Pick(float64(mx-r.Min.X), float64(my-r.Min.Y))
	g.palette.Pick(c)
	g.wheelImg.WritePixels(g.wheel.Surface().Pix)
}

// refresh copies changed paint surfaces into their ebiten images.
func (g *Game) refresh() error {
	var err error
	g.stack.With(func(s *paint.LayerStack) {
		for _, t := range g.thumbs {
			if !t.dirty {
				continue
			}
			if err = t.preview.Refresh(s.Layer(t.id)); err != nil {
				return
			}
			t.img.WritePixels(t.preview.Surface().Pix)
			t.dirty = false
		}
		if g.viewDirty {
			if err = s.Render(g.view, g.brush.CellSize()); err != nil {
				return
			}
			g.viewImg.WritePixels(g.view.Surface().Pix)
			g.viewDirty = false
		}
	})
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Draw renders the canvas and the sidebar.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorSidebar)

	canvas := screen.SubImage(image.Rect(0, 0, g.cfg.Width, g.cfg.Height)).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(g.brush.Scale, g.brush.Scale)
	canvas.DrawImage(g.viewImg, op)

	g.drawPalette(screen)

	wr := g.wheelRect()
	op = &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(wr.Min.X), float64(wr.Min.Y))
	screen.DrawImage(g.wheelImg, op)

	g.drawThumbs(screen)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("brush %.0f  zoom %.2f  %s", g.brush.Width, g.brush.Scale, g.palette.Main.Style()), 4, 4)
}

func (g *Game) drawPalette(screen *ebiten.Image) {
	x, y := float64(g.sidebarX()), float64(sidebarPad)
	ebitenutil.DrawRect(screen, x+swatchSize/2, y+swatchSize/2, swatchSize, swatchSize, g.palette.Help)
	ebitenutil.DrawRect(screen, x, y, swatchSize, swatchSize, g.palette.Main)
}

func (g *Game) drawThumbs(screen *ebiten.Image) {
	var selected paint.LayerID
	hasSel := false
	g.stack.With(func(s *paint.LayerStack) {
		if l := s.Selected(); l != nil {
			selected, hasSel = l.ID(), true
		}
	})

	for i, t := range g.listOrder() {
		r := g.thumbRect(i)
		border := colorBorder
		if hasSel && t.id == selected {
			border = colorSelected
		}
		ebitenutil.DrawRect(screen, float64(r.Min.X-2), float64(r.Min.Y-2), float64(r.Dx()+4), float64(r.Dy()+4), border)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
		screen.DrawImage(t.img, op)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", t.id), r.Max.X+4, r.Min.Y)
	}
}

// Layout returns the screen size: the canvas plus a sidebar tall enough
// for the wheel and every layer thumbnail.
func (g *Game) Layout(_, _ int) (int, int) {
	w := g.sidebarX() + max(g.cfg.WheelSize, thumbWidth+swatchSize) + sidebarPad
	h := max(g.cfg.Height, g.thumbRect(len(g.thumbs)).Min.Y)
	return w, h
}

func (g *Game) sidebarX() int {
	return g.cfg.Width + sidebarPad
}

func (g *Game) wheelRect() image.Rectangle {
	y := sidebarPad + 2*swatchSize
	return image.Rect(g.sidebarX(), y, g.sidebarX()+g.cfg.WheelSize, y+g.cfg.WheelSize)
}

// thumbRect is the screen rectangle of the i-th entry of the layer list.
func (g *Game) thumbRect(i int) image.Rectangle {
	y := g.wheelRect().Max.Y + sidebarPad + i*(g.thumbH+thumbSpacing)
	return image.Rect(g.sidebarX(), y, g.sidebarX()+thumbWidth, y+g.thumbH)
}

// listOrder returns the thumbnails top-most layer first.
func (g *Game) listOrder() []*thumb {
	byID := make(map[paint.LayerID]*thumb, len(g.thumbs))
	for _, t := range g.thumbs {
		byID[t.id] = t
	}
	out := make([]*thumb, 0, len(g.thumbs))
	g.stack.With(func(s *paint.LayerStack) {
		for l := range s.LayersReversed() {
			if t := byID[l.ID()]; t != nil {
				out = append(out, t)
			}
		}
	})
	return out
}

func (g *Game) thumbAt(mx, my int) *thumb {
	p := image.Pt(mx, my)
	for i, t := range g.listOrder() {
		if p.In(g.thumbRect(i)) {
			return t
		}
	}
	return nil
}

func (g *Game) inView(mx, my int) bool {
	return mx >= 0 && my >= 0 && mx < g.cfg.Width && my < g.cfg.Height
}

func (g *Game) inWheel(mx, my int) bool {
	return image.Pt(mx, my).In(g.wheelRect())
}
