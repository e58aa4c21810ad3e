// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/software/raster"
)

// blendFactors maps the blend factors a Device accepts onto the HAL
// rasterizer's factors.
var blendFactors = map[gputypes.BlendFactor]raster.BlendFactor{
	gputypes.BlendFactorZero:              raster.BlendFactorZero,
	gputypes.BlendFactorOne:               raster.BlendFactorOne,
	gputypes.BlendFactorSrc:               raster.BlendFactorSrc,
	gputypes.BlendFactorOneMinusSrc:       raster.BlendFactorOneMinusSrc,
	gputypes.BlendFactorSrcAlpha:          raster.BlendFactorSrcAlpha,
	gputypes.BlendFactorOneMinusSrcAlpha:  raster.BlendFactorOneMinusSrcAlpha,
	gputypes.BlendFactorDst:               raster.BlendFactorDst,
	gputypes.BlendFactorOneMinusDst:       raster.BlendFactorOneMinusDst,
	gputypes.BlendFactorDstAlpha:          raster.BlendFactorDstAlpha,
	gputypes.BlendFactorOneMinusDstAlpha:  raster.BlendFactorOneMinusDstAlpha,
	gputypes.BlendFactorSrcAlphaSaturated: raster.BlendFactorSrcAlphaSaturated,
}

var blendOperations = map[gputypes.BlendOperation]raster.BlendOperation{
	gputypes.BlendOperationAdd:             raster.BlendOpAdd,
	gputypes.BlendOperationSubtract:        raster.BlendOpSubtract,
	gputypes.BlendOperationReverseSubtract: raster.BlendOpReverseSubtract,
	gputypes.BlendOperationMin:             raster.BlendOpMin,
	gputypes.BlendOperationMax:             raster.BlendOpMax,
}

// rasterBlend converts a blend state for the composite step. Pixels no
// fragment touched are skipped there, so the destination term must leave
// the target unchanged when the source is transparent black.
func rasterBlend(state gputypes.BlendState) (raster.BlendState, error) {
	out := raster.BlendState{Enabled: true}
	components := []struct {
		in       gputypes.BlendComponent
		src, dst *raster.BlendFactor
		op       *raster.BlendOperation
	}{
		{state.Color, &out.SrcColor, &out.DstColor, &out.ColorOp},
		{state.Alpha, &out.SrcAlpha, &out.DstAlpha, &out.AlphaOp},
	}
	for _, c := range components {
		src, ok := blendFactors[c.in.SrcFactor]
		if !ok {
			return out, fmt.Errorf("%w: blend factor %v", ErrUnsupported, c.in.SrcFactor)
		}
		dst, ok := blendFactors[c.in.DstFactor]
		if !ok {
			return out, fmt.Errorf("%w: blend factor %v", ErrUnsupported, c.in.DstFactor)
		}
		op, ok := blendOperations[c.in.Operation]
		if !ok {
			return out, fmt.Errorf("%w: blend operation %v", ErrUnsupported, c.in.Operation)
		}
		switch dst {
		case raster.BlendFactorOne, raster.BlendFactorOneMinusSrc, raster.BlendFactorOneMinusSrcAlpha:
		default:
			return out, fmt.Errorf("%w: destination blend factor %v", ErrUnsupported, c.in.DstFactor)
		}
		switch op {
		case raster.BlendOpAdd, raster.BlendOpReverseSubtract, raster.BlendOpMax:
		default:
			return out, fmt.Errorf("%w: blend operation %v", ErrUnsupported, c.in.Operation)
		}
		*c.src, *c.dst, *c.op = src, dst, op
	}
	return out, nil
}

// unorm8 converts a [0, 1] channel to a byte, rounding to nearest.
func unorm8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(1, v))*255 + 0.5)
}

// DrawArrays draws count vertices starting at first with the bound
// program, vertex buffer and textures, clipped to the viewport.
func (d *Device) DrawArrays(topology gputypes.PrimitiveTopology, first, count int) error {
	if d.destroyed {
		return ErrDestroyed
	}
	switch topology {
	case gputypes.PrimitiveTopologyTriangleList, gputypes.PrimitiveTopologyTriangleStrip:
	default:
		return fmt.Errorf("%w: topology %v", ErrUnsupported, topology)
	}
	p := d.program
	if p == nil || p.destroyed {
		return fmt.Errorf("%w: program", ErrNotBound)
	}
	if first < 0 || count < 0 {
		return fmt.Errorf("shader: invalid vertex range %d+%d", first, count)
	}
	if p.stride > 0 {
		if d.buffer == nil || d.buffer.destroyed {
			return fmt.Errorf("%w: vertex buffer", ErrNotBound)
		}
		if n := d.buffer.Len() / p.stride; first+count > n {
			return fmt.Errorf("shader: vertex range %d+%d exceeds %d vertices", first, count, n)
		}
	}

	target := d.renderTarget()
	clip := d.viewport.Intersect(target.bounds())
	if clip.Empty() || count == 0 {
		return nil
	}

	group, err := p.bindGroup(d)
	if err != nil {
		return err
	}
	pipeline, err := p.pipeline(d, topology)
	if err != nil {
		return err
	}
	if p.stride > 0 {
		return d.drawVertices(p, group, pipeline, target, clip, first, count)
	}
	return d.drawGenerated(p, group, pipeline, target, clip, first, count)
}

// drawVertices runs a program fed from the vertex buffer. Positions are
// mapped from the viewport onto the whole target so the pass covers the
// viewport exactly.
func (d *Device) drawVertices(p *Program, group hal.BindGroup, pipeline hal.RenderPipeline, target *gpuTexture, clip image.Rectangle, first, count int) error {
	if err := p.writeUniforms(d, target.width, target.height); err != nil {
		return err
	}
	if err := d.uploadVertices(d.buffer, p.stride, target); err != nil {
		return err
	}
	pass := renderPass{
		pipeline: pipeline,
		group:    group,
		vertices: d.buffer.gpu,
		scissor:  clip,
		first:    first,
		count:    count,
	}
	if d.blend == nil {
		pass.target, pass.load = target, gputypes.LoadOpLoad
		return d.render(pass)
	}

	scratch, err := d.scratchTexture(target.width, target.height)
	if err != nil {
		return err
	}
	pass.target, pass.load = scratch, gputypes.LoadOpClear
	if err := d.render(pass); err != nil {
		return err
	}
	return d.composite(scratch, clip.Min, target, clip)
}

// drawGenerated runs a program whose vertex stage builds its own
// geometry. Its output covers the whole attachment, so it renders into a
// viewport-sized texture which is then placed at the viewport.
func (d *Device) drawGenerated(p *Program, group hal.BindGroup, pipeline hal.RenderPipeline, target *gpuTexture, clip image.Rectangle, first, count int) error {
	vp := d.viewport
	if err := p.writeUniforms(d, vp.Dx(), vp.Dy()); err != nil {
		return err
	}
	pass := renderPass{pipeline: pipeline, group: group, first: first, count: count}
	if vp == target.bounds() && d.blend == nil {
		pass.target, pass.load = target, gputypes.LoadOpLoad
		return d.render(pass)
	}

	scratch, err := d.scratchTexture(vp.Dx(), vp.Dy())
	if err != nil {
		return err
	}
	pass.target, pass.load = scratch, gputypes.LoadOpClear
	if err := d.render(pass); err != nil {
		return err
	}
	return d.composite(scratch, clip.Min.Sub(vp.Min), target, clip)
}

// renderPass is one draw recorded into its own command buffer.
type renderPass struct {
	target   *gpuTexture
	load     gputypes.LoadOp
	pipeline hal.RenderPipeline
	group    hal.BindGroup
	vertices hal.Buffer
	scissor  image.Rectangle
	first    int
	count    int
}

func (d *Device) render(rp renderPass) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "draw"})
	if err != nil {
		return fmt.Errorf("shader: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("draw"); err != nil {
		return fmt.Errorf("shader: begin encoding: %w", err)
	}
	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "draw",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    rp.target.view,
			LoadOp:  rp.load,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	pass.SetPipeline(rp.pipeline)
	pass.SetBindGroup(0, rp.group, nil)
	if rp.vertices != nil {
		pass.SetVertexBuffer(0, rp.vertices, 0)
	}
	if !rp.scissor.Empty() {
		r := rp.scissor
		pass.SetScissorRect(uint32(r.Min.X), uint32(r.Min.Y), uint32(r.Dx()), uint32(r.Dy()))
	}
	pass.Draw(uint32(rp.count), 1, uint32(rp.first), 0)
	pass.End()
	return d.submit(encoder)
}

// uploadVertices writes b to its HAL buffer with each position moved from
// viewport clip space into target clip space.
func (d *Device) uploadVertices(b *Buffer, stride int, target *gpuTexture) error {
	vp := d.viewport
	w, h := float64(target.width), float64(target.height)
	out := make([]byte, len(b.data)*4)
	for i, v := range b.data {
		switch i % stride {
		case 0:
			x := float64(vp.Min.X) + (float64(v)+1)/2*float64(vp.Dx())
			v = float32(2*x/w - 1)
		case 1:
			y := float64(vp.Min.Y) + (1-float64(v))/2*float64(vp.Dy())
			v = float32(1 - 2*y/h)
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	if err := d.queue.WriteBuffer(b.gpu, 0, out); err != nil {
		return fmt.Errorf("shader: write vertex buffer: %w", err)
	}
	return nil
}

// composite writes the pixels of src starting at at into the rectangle r
// of dst, blending with the active state when one is set. Untouched
// source pixels are transparent black and are skipped.
func (d *Device) composite(src *gpuTexture, at image.Point, dst *gpuTexture, r image.Rectangle) error {
	spix, err := d.readTexture(src)
	if err != nil {
		return err
	}
	sstride := src.width * 4
	if d.blend == nil {
		return d.writePixels(dst, spix, sstride, at.Y*sstride+at.X*4, r)
	}

	state, err := rasterBlend(*d.blend)
	if err != nil {
		return err
	}
	dpix, err := d.readTexture(dst)
	if err != nil {
		return err
	}
	dstride := dst.width * 4
	for y := 0; y < r.Dy(); y++ {
		si := (at.Y+y)*sstride + at.X*4
		di := (r.Min.Y+y)*dstride + r.Min.X*4
		for x := 0; x < r.Dx(); x, si, di = x+1, si+4, di+4 {
			s := spix[si : si+4 : si+4]
			if s[0]|s[1]|s[2]|s[3] == 0 {
				continue
			}
			t := dpix[di : di+4 : di+4]
			out := raster.Blend(
				[4]float32{float32(s[0]) / 255, float32(s[1]) / 255, float32(s[2]) / 255, float32(s[3]) / 255},
				[4]float32{float32(t[0]) / 255, float32(t[1]) / 255, float32(t[2]) / 255, float32(t[3]) / 255},
				state,
			)
			for i, c := range out {
				t[i] = unorm8(float64(c))
			}
		}
	}
	return d.writePixels(dst, dpix, dstride, r.Min.Y*dstride+r.Min.X*4, r)
}
