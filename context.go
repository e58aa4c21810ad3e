package paint

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/paint/shader"
	"github.com/gogpu/paint/surface"
)

// Backend names one of the two surfaces behind a Context.
type Backend uint8

const (
	// BackendRaster is the immediate-mode raster surface.
	BackendRaster Backend = iota

	// BackendAccelerated is the shader-programmable surface.
	BackendAccelerated
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendRaster:
		return "raster"
	case BackendAccelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// SyncStats counts the synchronization flushes a Context has run.
type SyncStats struct {
	// Uploads counts raster → accelerated flushes.
	Uploads int

	// Readbacks counts accelerated → raster flushes.
	Readbacks int
}

// Total returns the number of flushes in either direction.
func (s SyncStats) Total() int {
	return s.Uploads + s.Readbacks
}

// Source is anything whose raster pixels can be drawn into a Context.
type Source interface {
	Surface() *image.RGBA
}

// Context is a drawing surface backed by a raster surface and an
// accelerated surface of the same size.
//
// Raster operations (Clear, Line, FillCircle, DrawCircle, DrawImage,
// DrawImageBounded) draw on the raster surface and then upload it to the
// accelerated surface. Shader operations (Checkerboard, HSVCircle) draw
// on the accelerated surface and then read it back into the raster
// surface. Each call runs exactly one of the two flushes, chosen by which
// backend produced the latest content, so both surfaces hold the same
// pixels between calls.
//
// Context implements io.Closer.
type Context struct {
	width  int
	height int

	raster *surface.ImageSurface
	dev    *shader.Device

	checker *shader.Checkerboard
	wheel   *shader.HSVCircle
	copier  *shader.CopyImage
	swap    *shader.Texture

	// authority is the backend that produced the latest content.
	authority Backend

	// stale is set while the other backend misses that content because
	// its last flush failed.
	stale  bool
	stats  SyncStats
	filter surface.Filter

	closed bool
}

// Ensure Context implements io.Closer.
var _ io.Closer = (*Context)(nil)

// NewContext creates a Context of the given size.
// Without options both surfaces are created off-screen.
//
// Failure to build any shader program is fatal for the Context: the error
// wraps shader.ErrCompile or shader.ErrLink, everything created so far is
// released, and no Context is returned.
func NewContext(width, height int, opts ...ContextOption) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("paint: new context: %w: %dx%d", ErrInvalidSize, width, height)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	c := &Context{
		width:  width,
		height: height,
		raster: options.surface,
		dev:    options.device,
		filter: options.filter,
	}
	if err := c.init(); err != nil {
		c.release()
		return nil, fmt.Errorf("paint: new context: %w", err)
	}

	slogger().Info("paint: context created", "width", width, "height", height)
	return c, nil
}

// init creates or resizes the surfaces and builds the shader programs.
func (c *Context) init() error {
	var err error
	handed := c.raster != nil
	if c.raster == nil {
		c.raster = surface.NewImageSurface(c.width, c.height)
	} else if c.raster.Width() != c.width || c.raster.Height() != c.height {
		if err = c.raster.Resize(c.width, c.height); err != nil {
			return err
		}
	}

	if c.dev == nil {
		if c.dev, err = shader.NewDevice(c.width, c.height); err != nil {
			return err
		}
	} else if c.dev.Width() != c.width || c.dev.Height() != c.height {
		if err = c.dev.Resize(c.width, c.height); err != nil {
			return err
		}
	}

	if c.checker, err = shader.NewCheckerboard(c.dev, c.width, c.height); err != nil {
		return err
	}
	if c.wheel, err = shader.NewHSVCircle(c.dev, c.width, c.height); err != nil {
		return err
	}
	if c.copier, err = shader.NewCopyImage(c.dev, c.width, c.height); err != nil {
		return err
	}
	if c.swap, err = c.dev.CreateTexture(shader.DefaultTextureDescriptor("swap")); err != nil {
		return err
	}

	c.authority = BackendRaster
	if handed {
		// A handed-in raster surface may already hold content.
		if err := c.sync(); err != nil {
			return err
		}
		c.stats = SyncStats{}
	}
	return nil
}

// release frees every resource the Context holds. Safe on a partially
// initialized Context.
func (c *Context) release() {
	if c.dev != nil {
		if c.swap != nil {
			c.dev.DestroyTexture(c.swap)
		}
		if c.copier != nil {
			c.copier.Destroy()
		}
		if c.wheel != nil {
			c.wheel.Destroy()
		}
		if c.checker != nil {
			c.checker.Destroy()
		}
		c.dev.Destroy()
	}
	if c.raster != nil {
		_ = c.raster.Close()
	}
	c.swap, c.copier, c.wheel, c.checker = nil, nil, nil, nil
	c.dev, c.raster = nil, nil
}

// Close releases the shader programs, their buffers, the swap texture and
// both surfaces. Operations on a closed Context are no-ops.
// Close is idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.release()
	slogger().Debug("paint: context closed")
	return nil
}

// Width returns the width in pixels.
func (c *Context) Width() int {
	return c.width
}

// Height returns the height in pixels.
func (c *Context) Height() int {
	return c.height
}

// Authority returns the backend that produced the latest content.
func (c *Context) Authority() Backend {
	return c.authority
}

// Stale reports whether the last flush failed, leaving the backends
// apart until Flush or the next operation succeeds in retrying it.
func (c *Context) Stale() bool {
	return c.stale
}

// Flush retries a failed flush. It is a no-op when both backends already
// hold the same pixels.
func (c *Context) Flush() error {
	if c.closed {
		return ErrClosed
	}
	if !c.stale {
		return nil
	}
	return c.sync()
}

// Stats returns the flush counters.
func (c *Context) Stats() SyncStats {
	return c.stats
}

// Surface returns the raster pixels. The image is a live view: callers
// must not modify it or retain it across Resize. A closed Context returns
// nil.
func (c *Context) Surface() *image.RGBA {
	if c.closed {
		return nil
	}
	return c.raster.Image()
}

// Pixel returns the straight-alpha color at (x, y), or Transparent
// outside the surface.
func (c *Context) Pixel(x, y int) Color {
	if c.closed || x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Transparent
	}
	return colorFrom(c.raster.Image().RGBAAt(x, y))
}

// Clear replaces every pixel with col.
func (c *Context) Clear(col Color) {
	c.drawRaster(func(s *surface.ImageSurface) {
		s.Clear(col)
	})
}

// Line strokes a segment from (x0, y0) to (x1, y1) with butt caps.
func (c *Context) Line(x0, y0, x1, y1, width float64, col Color) {
	c.drawRaster(func(s *surface.ImageSurface) {
		p := surface.NewPath()
		p.MoveTo(x0, y0)
		p.LineTo(x1, y1)
		s.Stroke(p, surface.DefaultStrokeStyle().WithColor(col).WithWidth(width))
	})
}

// FillCircle fills a circle centered at (x, y).
func (c *Context) FillCircle(x, y, r float64, col Color) {
	c.drawRaster(func(s *surface.ImageSurface) {
		p := surface.NewPath()
		p.Circle(x, y, r)
		s.Fill(p, surface.FillStyle{Color: col})
	})
}

// DrawCircle strokes a black circle outline of the given line width
// centered at (x, y).
func (c *Context) DrawCircle(x, y, r, width float64) {
	c.drawRaster(func(s *surface.ImageSurface) {
		p := surface.NewPath()
		p.Circle(x, y, r)
		s.Stroke(p, surface.DefaultStrokeStyle().WithColor(Black).WithWidth(width))
	})
}

// DrawImage draws src over this Context with its top-left corner at the
// origin. Drawing a Context onto itself is allowed.
func (c *Context) DrawImage(src Source) {
	img := surfaceOf(src)
	if img == nil {
		return
	}
	c.drawRaster(func(s *surface.ImageSurface) {
		s.DrawImage(img, surface.Pt(0, 0), nil)
	})
}

// DrawImageBounded draws src over this Context scaled into bounds. Corners
// are rounded to whole pixels; an empty bounds draws nothing.
func (c *Context) DrawImageBounded(src Source, bounds Rect) {
	img := surfaceOf(src)
	if img == nil || bounds.Empty() {
		return
	}
	dst := bounds.Image()
	c.drawRaster(func(s *surface.ImageSurface) {
		s.DrawImage(img, surface.Pt(0, 0), &surface.DrawImageOptions{
			DstRect: &dst,
			Filter:  c.filter,
			Op:      surface.CompositeSourceOver,
		})
	})
}

// Checkerboard replaces the surface with a two-color checker pattern.
// The pixel at (x, y) gets a when ⌊x/cell⌋ + ⌊y/cell⌋ is even and b
// otherwise. Both colors are drawn opaque.
func (c *Context) Checkerboard(cell float64, a, b Color) error {
	if !(cell > 0) || math.IsInf(cell, 1) {
		return fmt.Errorf("paint: checkerboard: invalid cell size %v", cell)
	}
	return c.drawAccelerated("checkerboard", func() error {
		return c.checker.Draw(cell, cell, a, b)
	})
}

// HSVCircle blends the HSV color wheel centered at (x, y) with radius r
// over the surface. Hue follows the angle from the positive x axis and
// saturation the distance from the center; the rim fades out over 1.5
// pixels. A non-positive radius draws nothing.
func (c *Context) HSVCircle(x, y, r float64) error {
	return c.drawAccelerated("hsv circle", func() error {
		return c.wheel.Draw(x, y, r)
	})
}

// Resize changes both surfaces and all shader programs to the new size.
// Content is discarded and the surface becomes transparent. On error
// nothing changes.
func (c *Context) Resize(width, height int) error {
	if c.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("paint: resize: %w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == c.width && height == c.height {
		return nil
	}

	oldW, oldH := c.width, c.height
	if err := c.raster.Resize(width, height); err != nil {
		return fmt.Errorf("paint: resize raster surface: %w", err)
	}
	if err := c.dev.Resize(width, height); err != nil {
		// Content is discarded either way; only the size is restored.
		if rerr := c.raster.Resize(oldW, oldH); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return fmt.Errorf("paint: resize accelerated surface: %w", err)
	}

	c.checker.SetSize(width, height)
	c.wheel.SetSize(width, height)
	c.copier.SetSize(width, height)
	c.width, c.height = width, height
	c.authority = BackendRaster
	c.stale = false

	slogger().Debug("paint: context resized", "from", fmt.Sprintf("%dx%d", oldW, oldH),
		"to", fmt.Sprintf("%dx%d", width, height))
	return nil
}

// drawRaster runs a raster-backend operation and uploads the result.
func (c *Context) drawRaster(draw func(*surface.ImageSurface)) {
	if c.closed {
		return
	}
	if err := c.Flush(); err != nil {
		slogger().Warn("paint: pending flush failed", "err", err)
	}
	draw(c.raster)
	c.authority = BackendRaster
	if err := c.sync(); err != nil {
		slogger().Warn("paint: flush failed", "err", err)
	}
}

// drawAccelerated runs a shader operation and reads the result back.
// A failed draw leaves both surfaces as they were.
func (c *Context) drawAccelerated(op string, draw func() error) error {
	if c.closed {
		return ErrClosed
	}
	// Shading over a framebuffer that missed the latest raster content
	// would lose it.
	if err := c.Flush(); err != nil {
		return fmt.Errorf("paint: %s: %w", op, err)
	}
	if err := draw(); err != nil {
		// Undo any partial shading from the still-current raster pixels.
		c.authority = BackendRaster
		if serr := c.sync(); serr != nil {
			err = errors.Join(err, serr)
		}
		return fmt.Errorf("paint: %s: %w", op, err)
	}
	c.authority = BackendAccelerated
	if err := c.sync(); err != nil {
		return fmt.Errorf("paint: %s: %w", op, err)
	}
	return nil
}

// sync copies the authoritative backend's pixels to the other one. On
// failure the Context stays stale until a later sync succeeds.
func (c *Context) sync() error {
	c.stale = true
	switch c.authority {
	case BackendRaster:
		if err := c.dev.UploadTexture(c.swap, c.raster.Image()); err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		if err := c.copier.Draw(0, 0, c.width, c.height, c.swap); err != nil {
			return fmt.Errorf("copy to accelerated surface: %w", err)
		}
		c.stats.Uploads++
	case BackendAccelerated:
		img, err := c.dev.ReadPixels()
		if err != nil {
			return fmt.Errorf("readback: %w", err)
		}
		c.raster.DrawImage(img, surface.Pt(0, 0), &surface.DrawImageOptions{
			Op: surface.CompositeCopy,
		})
		c.stats.Readbacks++
	}
	c.stale = false
	slogger().Debug("paint: flush", "from", c.authority.String())
	return nil
}

func surfaceOf(src Source) *image.RGBA {
	if src == nil {
		return nil
	}
	return src.Surface()
}
