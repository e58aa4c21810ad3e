package paint

import (
	"fmt"
	"image"
)

// Preview thumbnail size used by layer lists.
const (
	PreviewWidth  = 200
	PreviewHeight = 100
)

// Preview is a small view of one layer over a transparency checkerboard.
type Preview struct {
	ctx *Context
}

// NewPreview creates a width×height preview showing an empty checkerboard.
func NewPreview(width, height int, opts ...ContextOption) (*Preview, error) {
	ctx, err := NewContext(width, height, opts...)
	if err != nil {
		return nil, fmt.Errorf("paint: preview: %w", err)
	}
	p := &Preview{ctx: ctx}
	if err := p.Refresh(nil); err != nil {
		_ = ctx.Close()
		return nil, err
	}
	return p, nil
}

// Refresh redraws the checkerboard and src scaled to fill the preview.
// A nil src shows the checkerboard alone.
func (p *Preview) Refresh(src Source) error {
	if err := p.ctx.Checkerboard(CheckerCell, CheckerGray, White); err != nil {
		return fmt.Errorf("paint: preview: %w", err)
	}
	if src != nil {
		p.ctx.DrawImageBounded(src, NewRect(0, 0, float64(p.ctx.Width()), float64(p.ctx.Height())))
	}
	return nil
}

// Context returns the preview's drawing context.
func (p *Preview) Context() *Context {
	return p.ctx
}

// Surface returns the preview pixels. Preview implements Source.
func (p *Preview) Surface() *image.RGBA {
	return p.ctx.Surface()
}

// Close releases the preview's Context.
func (p *Preview) Close() error {
	return p.ctx.Close()
}

// Render draws the final composite of s into dst: a checkerboard with
// the given cell size, then every layer bottom-to-top scaled to fill dst.
func (s *LayerStack) Render(dst *Context, cell float64) error {
	if err := dst.Checkerboard(cell, CheckerGray, White); err != nil {
		return fmt.Errorf("paint: render: %w", err)
	}
	s.Composite(dst, NewRect(0, 0, float64(dst.Width()), float64(dst.Height())))
	return nil
}
