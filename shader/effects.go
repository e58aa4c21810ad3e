// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"
)

// Embedded WGSL shader sources.

//go:embed shaders/checkerboard.wgsl
var checkerboardShaderSource string

//go:embed shaders/hsv_circle.wgsl
var hsvCircleShaderSource string

//go:embed shaders/copy_image.wgsl
var copyImageShaderSource string

// quadVertices are two triangles covering clip space.
var quadVertices = []float32{
	-1, -1, 1, -1, -1, 1,
	-1, 1, 1, -1, 1, 1,
}

const quadVertexCount = 6

// positionAttribute is the vertex attribute every effect declares.
var positionAttribute = Attribute{Name: "vertexPosition", Format: gputypes.VertexFormatFloat32x2}

// SourceOver returns the blend state for source-over compositing of
// straight-alpha fragments into a premultiplied framebuffer.
func SourceOver() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// effect holds what every effect program owns.
type effect struct {
	dev           *Device
	program       *Program
	quad          *Buffer
	width, height int
}

// newEffect builds an effect's program, plus a full-viewport quad when the
// program reads vertex attributes.
func newEffect(d *Device, width, height int, src ProgramSource) (effect, error) {
	p, err := d.CreateProgram(src)
	if err != nil {
		return effect{}, err
	}
	e := effect{dev: d, program: p, width: width, height: height}
	if len(src.Attributes) > 0 {
		if e.quad, err = d.CreateBuffer(quadVertices); err != nil {
			d.DestroyProgram(p)
			return effect{}, fmt.Errorf("shader: %s: quad buffer: %w", src.Label, err)
		}
	}
	return e, nil
}

func (e *effect) uniforms(names ...string) ([]Location, error) {
	locs := make([]Location, len(names))
	for i, n := range names {
		loc, err := e.program.UniformLocation(n)
		if err != nil {
			return nil, err
		}
		locs[i] = loc
	}
	return locs, nil
}

// SetSize records the framebuffer size the effect draws into.
func (e *effect) SetSize(width, height int) {
	e.width, e.height = width, height
}

// bind makes the effect's program and quad current.
func (e *effect) bind() {
	e.dev.BindBuffer(e.quad)
	e.dev.UseProgram(e.program)
}

// drawBlended issues the quad draw with source-over blending enabled for
// the duration of the call only.
func (e *effect) drawBlended() error {
	if err := e.dev.EnableBlend(SourceOver()); err != nil {
		return err
	}
	defer e.dev.DisableBlend()
	return e.dev.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, quadVertexCount)
}

// Destroy releases the program and quad buffer.
func (e *effect) Destroy() {
	if e.dev == nil {
		return
	}
	e.dev.DestroyBuffer(e.quad)
	e.dev.DestroyProgram(e.program)
	e.dev = nil
}

// checkerKey is what the cached checkerboard was rendered with.
type checkerKey struct {
	cellW, cellH   float64
	colorA, colorB color.NRGBA
	width, height  int
}

// Checkerboard fills the framebuffer with a two-color checker pattern. The
// pattern is rendered once into a texture and copied while its parameters
// stay the same.
type Checkerboard struct {
	effect
	cellSize, colorA, colorB Location

	copier *CopyImage
	cache  *Texture
	key    checkerKey
	valid  bool
}

// NewCheckerboard builds the checkerboard program for a framebuffer of the
// given size.
func NewCheckerboard(d *Device, width, height int) (*Checkerboard, error) {
	e, err := newEffect(d, width, height, ProgramSource{
		Label:      "checkerboard",
		WGSL:       checkerboardShaderSource,
		Attributes: []Attribute{positionAttribute},
		Uniforms:   []string{"cellSize", "colorA", "colorB"},
	})
	if err != nil {
		return nil, err
	}
	c := &Checkerboard{effect: e}
	locs, err := c.uniforms("cellSize", "colorA", "colorB")
	if err != nil {
		c.Destroy()
		return nil, err
	}
	c.cellSize, c.colorA, c.colorB = locs[0], locs[1], locs[2]

	if c.copier, err = NewCopyImage(d, width, height); err != nil {
		c.Destroy()
		return nil, err
	}
	if c.cache, err = d.CreateTexture(DefaultTextureDescriptor("checkerboard_cache")); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// SetSize records the framebuffer size the effect draws into.
func (c *Checkerboard) SetSize(width, height int) {
	c.effect.SetSize(width, height)
	c.copier.SetSize(width, height)
}

// Draw paints the pattern over the whole framebuffer. Pixel (x, y) takes
// colorA when ⌊x/cellW⌋ + ⌊y/cellH⌋ is even and colorB otherwise; both
// are opaque.
func (c *Checkerboard) Draw(cellW, cellH float64, colorA, colorB color.Color) error {
	if !(cellW > 0) || !(cellH > 0) {
		return fmt.Errorf("shader: checkerboard: invalid cell size %vx%v", cellW, cellH)
	}
	key := checkerKey{
		cellW: cellW, cellH: cellH,
		colorA: opaque(colorA), colorB: opaque(colorB),
		width: c.width, height: c.height,
	}
	if !c.valid || key != c.key {
		if err := c.render(key); err != nil {
			return err
		}
	}
	return c.copier.Draw(0, 0, c.width, c.height, c.cache)
}

// render draws the pattern into the cache texture.
func (c *Checkerboard) render(key checkerKey) error {
	c.valid = false
	if err := c.dev.AllocTexture(c.cache, key.width, key.height); err != nil {
		return err
	}
	prev := c.dev.RenderTarget()
	if err := c.dev.SetRenderTarget(c.cache); err != nil {
		return err
	}
	defer func() { _ = c.dev.SetRenderTarget(prev) }()

	c.dev.Viewport(0, 0, key.width, key.height)
	defer c.dev.Viewport(0, 0, c.width, c.height)
	c.bind()
	c.program.SetVec2(c.cellSize, key.cellW, key.cellH)
	c.program.SetVec4(c.colorA, exact(key.colorA.R), exact(key.colorA.G), exact(key.colorA.B), 1)
	c.program.SetVec4(c.colorB, exact(key.colorB.R), exact(key.colorB.G), exact(key.colorB.B), 1)
	c.dev.DisableBlend()
	if err := c.dev.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, quadVertexCount); err != nil {
		return err
	}
	c.key, c.valid = key, true
	return nil
}

// Destroy releases the program, quad, copy program and cache texture.
func (c *Checkerboard) Destroy() {
	if c.dev == nil {
		return
	}
	if c.copier != nil {
		c.copier.Destroy()
	}
	c.dev.DestroyTexture(c.cache)
	c.effect.Destroy()
}

// HSVCircle draws a hue/saturation wheel at full value.
type HSVCircle struct {
	effect
	center, radius Location
}

// BorderPixels is the width of the wheel's anti-aliased rim.
const BorderPixels = 1.5

// NewHSVCircle builds the color wheel program for a framebuffer of the
// given size.
func NewHSVCircle(d *Device, width, height int) (*HSVCircle, error) {
	e, err := newEffect(d, width, height, ProgramSource{
		Label:      "hsv_circle",
		WGSL:       hsvCircleShaderSource,
		Attributes: []Attribute{positionAttribute},
		Uniforms:   []string{"center", "radius"},
	})
	if err != nil {
		return nil, err
	}
	c := &HSVCircle{effect: e}
	locs, err := c.uniforms("center", "radius")
	if err != nil {
		c.Destroy()
		return nil, err
	}
	c.center, c.radius = locs[0], locs[1]
	return c, nil
}

// Draw blends the wheel centered at (x, y) with radius r over the
// framebuffer. A non-positive radius draws nothing. Only the wheel's
// bounding box is rasterized.
func (c *HSVCircle) Draw(x, y, r float64) error {
	if !(r > 0) {
		return nil
	}
	reach := r + BorderPixels
	box := image.Rect(
		int(math.Floor(x-reach)), int(math.Floor(y-reach)),
		int(math.Ceil(x+reach)), int(math.Ceil(y+reach)),
	).Intersect(image.Rect(0, 0, c.width, c.height))
	if box.Empty() {
		return nil
	}
	c.dev.Viewport(box.Min.X, box.Min.Y, box.Dx(), box.Dy())
	defer c.dev.Viewport(0, 0, c.width, c.height)
	c.bind()
	c.program.SetVec2(c.center, x, y)
	c.program.SetFloat(c.radius, r)
	return c.drawBlended()
}

// CopyImage blits a texture into a rectangle of the framebuffer.
type CopyImage struct {
	effect
	texture Location
}

// NewCopyImage builds the texture copy program for a framebuffer of the
// given size.
func NewCopyImage(d *Device, width, height int) (*CopyImage, error) {
	e, err := newEffect(d, width, height, ProgramSource{
		Label:    "copy_image",
		WGSL:     copyImageShaderSource,
		Uniforms: []string{"srcTexture"},
	})
	if err != nil {
		return nil, err
	}
	c := &CopyImage{effect: e}
	locs, err := c.uniforms("srcTexture")
	if err != nil {
		c.Destroy()
		return nil, err
	}
	c.texture = locs[0]
	return c, nil
}

// Draw replaces the pixels of the destination rectangle with tex, scaled
// to fit. Blending stays off. The viewport is narrowed to the destination
// for the draw and restored to the full framebuffer afterwards.
func (c *CopyImage) Draw(x, y, width, height int, tex *Texture) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := c.dev.BindTexture(0, tex); err != nil {
		return err
	}
	c.dev.Viewport(x, y, width, height)
	defer c.dev.Viewport(0, 0, c.width, c.height)

	c.bind()
	c.program.SetTextureUnit(c.texture, 0)
	c.dev.DisableBlend()
	return c.dev.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, 3)
}

// opaque returns the straight color of c with full alpha.
func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}

// exact returns the channel value that lands on byte b when the
// rasterizer truncates v*255.
func exact(b uint8) float64 {
	return (float64(b) + 0.5) / 255
}
