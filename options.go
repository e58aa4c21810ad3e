package paint

import (
	"github.com/gogpu/paint/shader"
	"github.com/gogpu/paint/surface"
)

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Off-screen context with its own surfaces
//	c, err := paint.NewContext(800, 600)
//
//	// Render into a buffer owned by the host window
//	screen := surface.NewImageSurfaceFromImage(frame)
//	c, err := paint.NewContext(800, 600, paint.WithSurface(screen))
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	surface *surface.ImageSurface
	device  *shader.Device
	filter  surface.Filter
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		filter: surface.FilterNearest,
	}
}

// WithSurface hands an existing raster surface to the Context, typically
// the one bound to the visible window. The Context takes ownership: the
// surface is resized to the Context dimensions and closed by
// Context.Close.
func WithSurface(s *surface.ImageSurface) ContextOption {
	return func(o *contextOptions) {
		o.surface = s
	}
}

// WithDevice hands an existing accelerated surface to the Context. The
// Context takes ownership as with WithSurface. A Device must not be
// shared between contexts.
func WithDevice(d *shader.Device) ContextOption {
	return func(o *contextOptions) {
		o.device = d
	}
}

// WithFilter sets the interpolation used when DrawImageBounded scales.
// The default is nearest-neighbor.
func WithFilter(f surface.Filter) ContextOption {
	return func(o *contextOptions) {
		o.filter = f
	}
}

// StackOption configures a LayerStack during creation.
type StackOption func(*stackOptions)

type stackOptions struct {
	context []ContextOption
}

// WithLayerFilter sets the DrawImageBounded filter of every layer
// Context created by the stack.
func WithLayerFilter(f surface.Filter) StackOption {
	return func(o *stackOptions) {
		o.context = append(o.context, WithFilter(f))
	}
}
