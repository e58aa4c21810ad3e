// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/software"
	"golang.org/x/image/draw"
)

// MaxTextureUnits is the number of texture units a Device exposes.
const MaxTextureUnits = 8

var (
	// ErrCompile is returned when WGSL source fails to compile.
	ErrCompile = errors.New("shader: compile failed")

	// ErrLink is returned when a program's declared attributes, uniforms or
	// entry points cannot be resolved in its source.
	ErrLink = errors.New("shader: link failed")

	// ErrDestroyed is returned when a destroyed resource is used.
	ErrDestroyed = errors.New("shader: resource destroyed")

	// ErrInvalidSize is returned for non-positive framebuffer dimensions.
	ErrInvalidSize = errors.New("shader: invalid size")

	// ErrUnsupported is returned for pipeline state the Device cannot execute.
	ErrUnsupported = errors.New("shader: unsupported")

	// ErrNotBound is returned when a draw is issued without a program,
	// vertex buffer or texture bound.
	ErrNotBound = errors.New("shader: nothing bound")
)

// ResourceStats counts the live resources created on a Device.
type ResourceStats struct {
	Buffers  int
	Textures int
	Programs int
}

// Total returns the number of live resources of every kind.
func (s ResourceStats) Total() int {
	return s.Buffers + s.Textures + s.Programs
}

// gpuTexture is an RGBA8 texture and its default view.
type gpuTexture struct {
	tex           hal.Texture
	view          hal.TextureView
	width, height int
}

func (t *gpuTexture) bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

// Device is a shader-programmable surface backed by a wgpu HAL device.
//
// Device is NOT safe for concurrent use.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	fb      *gpuTexture
	target  *Texture
	scratch *gpuTexture

	staging     hal.Buffer
	stagingSize uint64

	viewport image.Rectangle
	blend    *gputypes.BlendState
	program  *Program
	buffer   *Buffer
	units    [MaxTextureUnits]*Texture

	stats     ResourceStats
	destroyed bool
}

// NewDevice opens a software HAL device with a transparent framebuffer of
// the given size.
func NewDevice(width, height int) (*Device, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	instance, err := software.API{}.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("shader: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapter", ErrUnsupported)
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("shader: open device: %w", err)
	}

	d := &Device{instance: instance, device: open.Device, queue: open.Queue}
	if err := d.allocate(width, height); err != nil {
		d.release()
		return nil, err
	}
	slogger().Debug("shader: device created",
		"width", width, "height", height, "adapter", adapters[0].Info.Name)
	return d, nil
}

func (d *Device) allocate(width, height int) error {
	fb, err := d.newTexture("framebuffer", width, height)
	if err != nil {
		return err
	}
	d.freeTexture(d.fb)
	d.fb = fb
	d.target = nil
	d.viewport = fb.bounds()
	return nil
}

func (d *Device) newTexture(label string, width, height int) (*gpuTexture, error) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: create texture %s: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("shader: create texture view %s: %w", label, err)
	}
	return &gpuTexture{tex: tex, view: view, width: width, height: height}, nil
}

func (d *Device) freeTexture(t *gpuTexture) {
	if t == nil {
		return
	}
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
}

// scratchTexture returns an offscreen texture of the given size, reusing
// the previous one when the size matches.
func (d *Device) scratchTexture(width, height int) (*gpuTexture, error) {
	if s := d.scratch; s != nil && s.width == width && s.height == height {
		return s, nil
	}
	s, err := d.newTexture("scratch", width, height)
	if err != nil {
		return nil, err
	}
	d.freeTexture(d.scratch)
	d.scratch = s
	return s, nil
}

// renderTarget returns the texture draws currently land in.
func (d *Device) renderTarget() *gpuTexture {
	if d.target != nil {
		return d.target.gpu
	}
	return d.fb
}

// writePixels uploads the rectangle r of t from pix, where pix holds rows
// of stride bytes and offset is the byte index of r.Min within pix.
func (d *Device) writePixels(t *gpuTexture, pix []byte, stride, offset int, r image.Rectangle) error {
	if r.Empty() {
		return nil
	}
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture: t.tex,
			Origin:  hal.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y)},
			Aspect:  gputypes.TextureAspectAll,
		},
		pix,
		&hal.ImageDataLayout{Offset: uint64(offset), BytesPerRow: uint32(stride), RowsPerImage: uint32(r.Dy())},
		&hal.Extent3D{Width: uint32(r.Dx()), Height: uint32(r.Dy()), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("shader: write texture: %w", err)
	}
	return nil
}

func (d *Device) ensureStaging(size uint64) error {
	if d.staging != nil && d.stagingSize >= size {
		return nil
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("shader: create staging buffer: %w", err)
	}
	if d.staging != nil {
		d.device.DestroyBuffer(d.staging)
	}
	d.staging, d.stagingSize = buf, size
	return nil
}

// readTexture copies t into a staging buffer and returns its pixels as
// tightly packed RGBA8 rows.
func (d *Device) readTexture(t *gpuTexture) ([]byte, error) {
	size := uint64(t.width) * uint64(t.height) * 4
	if err := d.ensureStaging(size); err != nil {
		return nil, err
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "readback"})
	if err != nil {
		return nil, fmt.Errorf("shader: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("shader: begin encoding: %w", err)
	}
	encoder.CopyTextureToBuffer(t.tex, d.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: uint32(t.width * 4), RowsPerImage: uint32(t.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	}})
	if err := d.submit(encoder); err != nil {
		return nil, err
	}

	mapping, err := d.device.MapBuffer(d.staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("shader: map staging buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := d.device.UnmapBuffer(d.staging); err != nil {
		return nil, fmt.Errorf("shader: unmap staging buffer: %w", err)
	}
	return out, nil
}

// submit finishes encoder and submits its commands.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("shader: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("shader: submit: %w", err)
	}
	return nil
}

// Width returns the framebuffer width.
func (d *Device) Width() int {
	if d.fb == nil {
		return 0
	}
	return d.fb.width
}

// Height returns the framebuffer height.
func (d *Device) Height() int {
	if d.fb == nil {
		return 0
	}
	return d.fb.height
}

// Format returns the framebuffer texel format.
func (d *Device) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Resize reallocates the framebuffer. Its content is discarded, draws go
// back to the framebuffer and the viewport is reset to cover it.
func (d *Device) Resize(width, height int) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := d.allocate(width, height); err != nil {
		return err
	}
	slogger().Debug("shader: device resized", "width", width, "height", height)
	return nil
}

// SetRenderTarget redirects draws and Clear into t. A nil texture makes
// the framebuffer the target again. The viewport is left unchanged.
func (d *Device) SetRenderTarget(t *Texture) error {
	if t == nil {
		d.target = nil
		return nil
	}
	if t.destroyed {
		return ErrDestroyed
	}
	if t.gpu == nil {
		return fmt.Errorf("%w: %s: render target has no storage", ErrNotBound, t.desc.Label)
	}
	d.target = t
	return nil
}

// RenderTarget returns the texture set by SetRenderTarget, or nil when
// draws land in the framebuffer.
func (d *Device) RenderTarget() *Texture {
	return d.target
}

// Viewport sets the active viewport in render target pixels (origin
// top-left). Clip space [-1, 1] maps onto it.
func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = image.Rect(x, y, x+width, y+height)
}

// CurrentViewport returns the active viewport.
func (d *Device) CurrentViewport() image.Rectangle {
	return d.viewport
}

// EnableBlend turns on blending with the given state for subsequent draws.
func (d *Device) EnableBlend(state gputypes.BlendState) error {
	if _, err := rasterBlend(state); err != nil {
		return err
	}
	d.blend = &state
	return nil
}

// DisableBlend turns blending off; fragments overwrite the render target.
func (d *Device) DisableBlend() {
	d.blend = nil
}

// BlendEnabled reports whether blending is on.
func (d *Device) BlendEnabled() bool {
	return d.blend != nil
}

// Clear fills the whole render target with a premultiplied color,
// ignoring the viewport and blend state.
func (d *Device) Clear(c gputypes.Color) error {
	if d.destroyed {
		return ErrDestroyed
	}
	t := d.renderTarget()
	px := []byte{unorm8(c.R), unorm8(c.G), unorm8(c.B), unorm8(c.A)}
	pix := bytes.Repeat(px, t.width*t.height)
	return d.writePixels(t, pix, t.width*4, 0, t.bounds())
}

// ReadPixels reads the framebuffer back into a new image.
func (d *Device) ReadPixels() (*image.RGBA, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	pix, err := d.readTexture(d.fb)
	if err != nil {
		return nil, err
	}
	return &image.RGBA{Pix: pix, Stride: d.fb.width * 4, Rect: d.fb.bounds()}, nil
}

// Stats returns the live resource counts.
func (d *Device) Stats() ResourceStats {
	return d.stats
}

// Destroy releases the framebuffer and the HAL device. Resources created
// on the Device must be destroyed by their owners first; any still live
// are logged.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	if n := d.stats.Total(); n > 0 {
		slogger().Warn("shader: device destroyed with live resources",
			"buffers", d.stats.Buffers, "textures", d.stats.Textures, "programs", d.stats.Programs)
	}
	d.destroyed = true
	d.program = nil
	d.buffer = nil
	d.target = nil
	d.units = [MaxTextureUnits]*Texture{}
	d.release()
}

// release frees what the Device itself owns, in reverse creation order.
func (d *Device) release() {
	if d.staging != nil {
		d.device.DestroyBuffer(d.staging)
		d.staging, d.stagingSize = nil, 0
	}
	d.freeTexture(d.scratch)
	d.scratch = nil
	d.freeTexture(d.fb)
	d.fb = nil
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// Buffer is a vertex buffer of 32-bit floats.
type Buffer struct {
	data      []float32
	gpu       hal.Buffer
	destroyed bool
}

// Len returns the number of floats in the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// CreateBuffer creates a static vertex buffer holding a copy of data.
func (d *Device) CreateBuffer(data []float32) (*Buffer, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty vertex buffer", ErrInvalidSize)
	}
	gpu, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vertices",
		Size:  uint64(len(data) * 4),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: create vertex buffer: %w", err)
	}
	b := &Buffer{data: append([]float32(nil), data...), gpu: gpu}
	d.stats.Buffers++
	return b, nil
}

// BindBuffer makes b the vertex buffer for subsequent draws.
func (d *Device) BindBuffer(b *Buffer) {
	d.buffer = b
}

// DestroyBuffer releases b. Destroying twice is a no-op.
func (d *Device) DestroyBuffer(b *Buffer) {
	if b == nil || b.destroyed {
		return
	}
	b.destroyed = true
	b.data = nil
	if d.device != nil {
		d.device.DestroyBuffer(b.gpu)
	}
	b.gpu = nil
	d.stats.Buffers--
	if d.buffer == b {
		d.buffer = nil
	}
}

// TextureDescriptor describes a texture and its sampler.
type TextureDescriptor struct {
	Label        string
	Format       gputypes.TextureFormat
	MinFilter    gputypes.FilterMode
	MagFilter    gputypes.FilterMode
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
}

// DefaultTextureDescriptor returns an RGBA8 texture sampled with nearest
// filtering and clamped to its edges.
func DefaultTextureDescriptor(label string) TextureDescriptor {
	return TextureDescriptor{
		Label:        label,
		Format:       gputypes.TextureFormatRGBA8Unorm,
		MinFilter:    gputypes.FilterModeNearest,
		MagFilter:    gputypes.FilterModeNearest,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
	}
}

// Texture is a 2D RGBA8 texture with its sampler state.
type Texture struct {
	desc      TextureDescriptor
	gpu       *gpuTexture
	sampler   hal.Sampler
	destroyed bool
}

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.desc.Label }

// Size returns the texture dimensions; zero until storage is allocated.
func (t *Texture) Size() (width, height int) {
	if t.gpu == nil {
		return 0, 0
	}
	return t.gpu.width, t.gpu.height
}

// CreateTexture creates a texture without storage. UploadTexture or
// AllocTexture gives it a size.
func (d *Device) CreateTexture(desc TextureDescriptor) (*Texture, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("%w: texture format %v", ErrUnsupported, desc.Format)
	}
	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label + "_sampler",
		AddressModeU: desc.AddressModeU,
		AddressModeV: desc.AddressModeV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: create sampler %s: %w", desc.Label, err)
	}
	d.stats.Textures++
	return &Texture{desc: desc, sampler: sampler}, nil
}

// AllocTexture gives t transparent storage of the given size. Storage of
// the same size is kept with its content.
func (d *Device) AllocTexture(t *Texture, width, height int) error {
	if t == nil || t.destroyed {
		return ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if t.gpu != nil && t.gpu.width == width && t.gpu.height == height {
		return nil
	}
	gpu, err := d.newTexture(t.desc.Label, width, height)
	if err != nil {
		return err
	}
	d.freeTexture(t.gpu)
	t.gpu = gpu
	return nil
}

// UploadTexture replaces the texture content with img, resizing the texture
// to img's bounds. Premultiplied values are stored unchanged.
func (d *Device) UploadTexture(t *Texture, img image.Image) error {
	if t == nil || t.destroyed {
		return ErrDestroyed
	}
	b := img.Bounds()
	if err := d.AllocTexture(t, b.Dx(), b.Dy()); err != nil {
		return err
	}
	src, ok := img.(*image.RGBA)
	if !ok {
		src = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Rect, img, b.Min, draw.Src)
	}
	return d.writePixels(t.gpu, src.Pix, src.Stride, src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y), t.gpu.bounds())
}

// BindTexture binds t to a texture unit. A nil texture unbinds the unit.
func (d *Device) BindTexture(unit int, t *Texture) error {
	if unit < 0 || unit >= MaxTextureUnits {
		return fmt.Errorf("%w: texture unit %d", ErrUnsupported, unit)
	}
	if t != nil && t.destroyed {
		return ErrDestroyed
	}
	d.units[unit] = t
	return nil
}

// DestroyTexture releases t. Destroying twice is a no-op.
func (d *Device) DestroyTexture(t *Texture) {
	if t == nil || t.destroyed {
		return
	}
	t.destroyed = true
	if d.device != nil {
		d.freeTexture(t.gpu)
		d.device.DestroySampler(t.sampler)
	}
	t.gpu, t.sampler = nil, nil
	d.stats.Textures--
	for i, u := range d.units {
		if u == t {
			d.units[i] = nil
		}
	}
	if d.target == t {
		d.target = nil
	}
}

// UseProgram makes p the program for subsequent draws.
func (d *Device) UseProgram(p *Program) {
	d.program = p
}
