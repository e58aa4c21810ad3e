// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// flattenTolerance is the maximum distance, in pixels, between a curve and
// the line segments that approximate it when stroking.
const flattenTolerance = 0.25

// ImageSurface is a CPU-based surface that renders to an *image.RGBA.
//
// Path coverage is computed by a vector.Rasterizer, which anti-aliases by
// exact area accumulation. Scaled blits use golang.org/x/image/draw.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//	path := surface.NewPath()
//	path.Circle(400, 300, 100)
//	s.Fill(path, surface.FillStyle{Color: color.RGBA{255, 0, 0, 255}})
//
//	img := s.Snapshot()
type ImageSurface struct {
	width  int
	height int
	img    *image.RGBA
	ras    *vector.Rasterizer

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
// Non-positive dimensions are clamped to 1.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return NewImageSurfaceFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface renders into the provided image directly, so a caller that
// owns an on-screen buffer can hand it in.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	if img.Rect.Min != (image.Point{}) {
		// Surface coordinates always start at the origin.
		img = &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy())}
	}
	width, height := img.Rect.Dx(), img.Rect.Dy()
	return &ImageSurface{
		width:  width,
		height: height,
		img:    img,
		ras:    vector.NewRasterizer(width, height),
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.height
}

// Clear replaces the entire surface with the given color.
func (s *ImageSurface) Clear(c color.Color) {
	if s.closed {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Fill fills the given path using the specified style.
// Overlapping subpaths are filled with the non-zero rule.
func (s *ImageSurface) Fill(path *Path, style FillStyle) {
	if s.closed || path == nil || path.IsEmpty() {
		return
	}

	s.ras.Reset(s.width, s.height)
	s.ras.DrawOp = draw.Over

	idx := 0
	open := false
	for _, verb := range path.verbs {
		pts := path.points[idx : idx+verb.pointCount()]
		idx += verb.pointCount()

		switch verb {
		case VerbMoveTo:
			if open {
				s.ras.ClosePath()
			}
			s.ras.MoveTo(f32(pts[0].X), f32(pts[0].Y))
			open = true
		case VerbLineTo:
			s.ras.LineTo(f32(pts[0].X), f32(pts[0].Y))
		case VerbQuadTo:
			s.ras.QuadTo(f32(pts[0].X), f32(pts[0].Y), f32(pts[1].X), f32(pts[1].Y))
		case VerbCubicTo:
			s.ras.CubeTo(f32(pts[0].X), f32(pts[0].Y),
				f32(pts[1].X), f32(pts[1].Y),
				f32(pts[2].X), f32(pts[2].Y))
		case VerbClose:
			s.ras.ClosePath()
			open = false
		}
	}
	if open {
		s.ras.ClosePath()
	}

	s.ras.Draw(s.img, s.img.Bounds(), image.NewUniform(resolveColor(style.Color)), image.Point{})
}

// Stroke strokes the given path using the specified style.
func (s *ImageSurface) Stroke(path *Path, style StrokeStyle) {
	if s.closed || path == nil || path.IsEmpty() || style.Width <= 0 {
		return
	}

	s.ras.Reset(s.width, s.height)
	s.ras.DrawOp = draw.Over

	st := stroker{ras: s.ras, hw: style.Width / 2, cap: style.Cap}
	for _, pl := range path.flatten(flattenTolerance) {
		st.add(pl)
	}
	if st.polygons == 0 {
		return
	}

	s.ras.Draw(s.img, s.img.Bounds(), image.NewUniform(resolveColor(style.Color)), image.Point{})
}

// DrawImage draws an image at the specified position, or scaled into
// opts.DstRect when it is set.
func (s *ImageSurface) DrawImage(img image.Image, at Point, opts *DrawImageOptions) {
	if s.closed || img == nil {
		return
	}
	if opts == nil {
		opts = DefaultDrawImageOptions()
	}

	op := draw.Over
	if opts.Op == CompositeCopy {
		op = draw.Src
	}

	// Drawing a surface onto itself must read the pixels as they were.
	if s.aliases(img) {
		img = s.Snapshot()
	}

	sr := img.Bounds()
	if opts.DstRect == nil {
		dr := sr.Sub(sr.Min).Add(image.Pt(roundInt(at.X), roundInt(at.Y)))
		draw.Draw(s.img, dr, img, sr.Min, op)
		return
	}

	dr := *opts.DstRect
	if dr.Empty() || sr.Empty() {
		return
	}
	if dr.Size() == sr.Size() {
		draw.Draw(s.img, dr, img, sr.Min, op)
		return
	}
	interpolator(opts.Filter).Scale(s.img, dr, img, sr, op, nil)
}

// Flush ensures all pending operations are complete.
// For ImageSurface, this is a no-op.
func (s *ImageSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	if s.closed {
		return nil
	}

	result := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		copy(result.Pix[y*result.Stride:y*result.Stride+4*s.width],
			s.img.Pix[y*s.img.Stride:y*s.img.Stride+4*s.width])
	}
	return result
}

// Resize changes the surface dimensions. The content is discarded and the
// surface becomes fully transparent.
func (s *ImageSurface) Resize(width, height int) error {
	if s.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s.width, s.height = width, height
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	s.ras.Reset(width, height)
	return nil
}

// Close releases resources associated with the surface.
func (s *ImageSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.img = nil
	s.ras = nil
	return nil
}

// Image returns the underlying image.RGBA.
// This is a direct reference, not a copy.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// aliases reports whether img shares pixel memory with the surface.
func (s *ImageSurface) aliases(img image.Image) bool {
	rgba, ok := img.(*image.RGBA)
	if !ok || len(rgba.Pix) == 0 || len(s.img.Pix) == 0 {
		return false
	}
	return &rgba.Pix[0] == &s.img.Pix[0]
}

// interpolator maps a Filter to its x/image/draw scaler.
func interpolator(f Filter) draw.Interpolator {
	if f == FilterBilinear {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// resolveColor returns c, or opaque black when c is nil.
func resolveColor(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}

func f32(v float64) float32 {
	return float32(v)
}

func roundInt(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}

// Verify ImageSurface implements the surface interfaces.
var (
	_ Surface          = (*ImageSurface)(nil)
	_ ResizableSurface = (*ImageSurface)(nil)
)
