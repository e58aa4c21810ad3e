// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/wgpu/hal"
)

const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"

	// targetSizeMember is a uniform block member the Device fills with the
	// size in pixels of the attachment being drawn into.
	targetSizeMember = "targetSize"
)

// Attribute declares a vertex attribute. The first attribute of a program
// is the clip-space position.
type Attribute struct {
	Name   string
	Format gputypes.VertexFormat
}

// ProgramSource describes a program to build.
type ProgramSource struct {
	Label string

	// WGSL is the shader module source. It must declare a @vertex vs_main
	// and a @fragment fs_main entry point. Resources live in bind group 0.
	WGSL string

	// Attributes are the vs_main inputs read from the vertex buffer, in
	// buffer order. A program without attributes generates its geometry
	// from the vertex index.
	Attributes []Attribute

	// Uniforms name members of the uniform block or texture variables.
	Uniforms []string
}

// Location identifies a resolved uniform within its program.
type Location int

// uniform is where a declared uniform lives: a byte range of the uniform
// block, or a texture slot.
type uniform struct {
	offset, size int
	texture      int
}

// textureSlot is a texture global and the unit it samples.
type textureSlot struct {
	binding uint32
	unit    int
}

// samplerSlot is a sampler global and the texture slot it samples with.
type samplerSlot struct {
	binding uint32
	texture int
}

type pipelineKey struct {
	topology gputypes.PrimitiveTopology
}

// Program is a compiled vertex and fragment program with its pipeline
// layout and uniform storage.
type Program struct {
	label string
	spirv []uint32

	module     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[pipelineKey]hal.RenderPipeline
	vertex     []gputypes.VertexBufferLayout
	stride     int

	attribs   map[string]int
	locations map[string]Location
	uniforms  []uniform

	block        []byte
	blockBinding uint32
	blockBuffer  hal.Buffer
	targetSize   int

	textures []textureSlot
	samplers []samplerSlot
	group    hal.BindGroup
	views    []uintptr

	destroyed bool
}

// CreateProgram compiles src and resolves its attributes and uniforms
// against the compiled module. A compile error wraps ErrCompile; a missing
// entry point, attribute or uniform wraps ErrLink. Either is fatal for the
// caller.
func (d *Device) CreateProgram(src ProgramSource) (*Program, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	module, err := lower(src.WGSL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, src.Label, err)
	}
	// Link against the IR before code generation rewrites it.
	p, err := link(module, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLink, src.Label, err)
	}
	if p.spirv, err = generate(module); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, src.Label, err)
	}
	if err := d.createProgramResources(p); err != nil {
		d.releaseProgram(p)
		return nil, err
	}

	d.stats.Programs++
	slogger().Debug("shader: program created",
		"label", src.Label, "spirv_words", len(p.spirv), "textures", len(p.textures))
	return p, nil
}

// link resolves src's entry points, attributes and uniforms in module.
func link(module *ir.Module, src ProgramSource) (*Program, error) {
	vs := entryPoint(module, vertexEntryPoint, ir.StageVertex)
	if vs == nil {
		return nil, fmt.Errorf("missing @vertex entry point %q", vertexEntryPoint)
	}
	if entryPoint(module, fragmentEntryPoint, ir.StageFragment) == nil {
		return nil, fmt.Errorf("missing @fragment entry point %q", fragmentEntryPoint)
	}

	p := &Program{
		label:      src.Label,
		pipelines:  make(map[pipelineKey]hal.RenderPipeline),
		attribs:    make(map[string]int, len(src.Attributes)),
		locations:  make(map[string]Location, len(src.Uniforms)),
		targetSize: -1,
	}

	inputs := vertexInputs(module, vs)
	attrs := make([]gputypes.VertexAttribute, 0, len(src.Attributes))
	for i, a := range src.Attributes {
		n := components(a.Format)
		if n == 0 || (i == 0 && n != 2) {
			return nil, fmt.Errorf("attribute %q has unsupported format %v", a.Name, a.Format)
		}
		in, ok := inputs[a.Name]
		if !ok {
			return nil, fmt.Errorf("attribute %q is not a vertex input", a.Name)
		}
		if floats(module, in.typ) != n {
			return nil, fmt.Errorf("attribute %q does not match its vertex input type", a.Name)
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         uint64(p.stride * 4),
			ShaderLocation: in.location,
		})
		p.attribs[a.Name] = i
		p.stride += n
	}
	if len(attrs) > 0 {
		p.vertex = []gputypes.VertexBufferLayout{{
			ArrayStride: uint64(p.stride * 4),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  attrs,
		}}
	}

	members, textures, err := p.reflectGlobals(module)
	if err != nil {
		return nil, err
	}
	for i, name := range src.Uniforms {
		u := uniform{texture: -1}
		if m, ok := members[name]; ok {
			u.offset, u.size = m.offset, m.size
		} else if t, ok := textures[name]; ok {
			u.texture = t
		} else {
			return nil, fmt.Errorf("uniform %q is not a uniform block member or texture", name)
		}
		p.uniforms = append(p.uniforms, u)
		p.locations[name] = Location(i)
	}
	if m, ok := members[targetSizeMember]; ok && m.size == 8 {
		p.targetSize = m.offset
	}
	return p, nil
}

func entryPoint(m *ir.Module, name string, stage ir.ShaderStage) *ir.EntryPoint {
	for i := range m.EntryPoints {
		if ep := &m.EntryPoints[i]; ep.Name == name && ep.Stage == stage {
			return ep
		}
	}
	return nil
}

type vertexInput struct {
	location uint32
	typ      ir.TypeHandle
}

// vertexInputs returns the @location inputs of a vertex entry point by
// name, including members of struct arguments.
func vertexInputs(m *ir.Module, ep *ir.EntryPoint) map[string]vertexInput {
	out := make(map[string]vertexInput)
	for _, arg := range ep.Function.Arguments {
		if loc, ok := location(arg.Binding); ok {
			out[arg.Name] = vertexInput{location: loc, typ: arg.Type}
			continue
		}
		st, ok := m.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, mem := range st.Members {
			if loc, ok := location(mem.Binding); ok {
				out[mem.Name] = vertexInput{location: loc, typ: mem.Type}
			}
		}
	}
	return out
}

func location(b *ir.Binding) (uint32, bool) {
	if b == nil {
		return 0, false
	}
	lb, ok := (*b).(ir.LocationBinding)
	return lb.Location, ok
}

// floats returns the number of 32-bit float components of a scalar or
// vector type, or 0 for any other type.
func floats(m *ir.Module, h ir.TypeHandle) int {
	switch t := m.Types[h].Inner.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat && t.Width == 4 {
			return 1
		}
	case ir.VectorType:
		if t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return int(t.Size)
		}
	}
	return 0
}

type blockMember struct {
	offset, size int
}

// reflectGlobals records the program's uniform block, textures and
// samplers and returns the block members and texture slots by name.
func (p *Program) reflectGlobals(m *ir.Module) (map[string]blockMember, map[string]int, error) {
	members := make(map[string]blockMember)
	textures := make(map[string]int)
	var samplers []uint32

	for _, g := range m.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		if g.Binding.Group != 0 {
			return nil, nil, fmt.Errorf("global %q uses bind group %d", g.Name, g.Binding.Group)
		}
		switch inner := m.Types[g.Type].Inner.(type) {
		case ir.StructType:
			if g.Space != ir.SpaceUniform {
				return nil, nil, fmt.Errorf("global %q is not a uniform block", g.Name)
			}
			if p.block != nil {
				return nil, nil, fmt.Errorf("global %q is a second uniform block", g.Name)
			}
			p.block = make([]byte, (inner.Span+15)&^15)
			p.blockBinding = g.Binding.Binding
			for _, mem := range inner.Members {
				members[mem.Name] = blockMember{offset: int(mem.Offset), size: 4 * floats(m, mem.Type)}
			}
		case ir.ImageType:
			textures[g.Name] = len(p.textures)
			p.textures = append(p.textures, textureSlot{binding: g.Binding.Binding})
		case ir.SamplerType:
			samplers = append(samplers, g.Binding.Binding)
		default:
			return nil, nil, fmt.Errorf("global %q has an unsupported resource type", g.Name)
		}
	}

	// A sampler samples with the texture bound just below it.
	for _, b := range samplers {
		best := -1
		for i, t := range p.textures {
			if t.binding < b && (best < 0 || t.binding > p.textures[best].binding) {
				best = i
			}
		}
		if best < 0 {
			return nil, nil, fmt.Errorf("sampler at binding %d has no texture below it", b)
		}
		p.samplers = append(p.samplers, samplerSlot{binding: b, texture: best})
	}
	return members, textures, nil
}

// createProgramResources creates the shader module, layouts and uniform
// buffer of a linked program.
func (d *Device) createProgramResources(p *Program) error {
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.label,
		Source: hal.ShaderSource{SPIRV: p.spirv},
	})
	if err != nil {
		return fmt.Errorf("shader: %s: create shader module: %w", p.label, err)
	}
	p.module = module

	stages := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	var entries []gputypes.BindGroupLayoutEntry
	if p.block != nil {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    p.blockBinding,
			Visibility: stages,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	for _, t := range p.textures {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    t.binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	for _, s := range p.samplers {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    s.binding,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		})
	}
	p.layout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.label + "_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("shader: %s: create bind group layout: %w", p.label, err)
	}

	p.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.layout},
	})
	if err != nil {
		return fmt.Errorf("shader: %s: create pipeline layout: %w", p.label, err)
	}

	if p.block != nil {
		p.blockBuffer, err = d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: p.label + "_uniforms",
			Size:  uint64(len(p.block)),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("shader: %s: create uniform buffer: %w", p.label, err)
		}
	}
	return nil
}

// pipeline returns the render pipeline for a topology, creating it on
// first use. Fragments are written unblended; blending happens when the
// Device composites the pass.
func (p *Program) pipeline(d *Device, topology gputypes.PrimitiveTopology) (hal.RenderPipeline, error) {
	key := pipelineKey{topology: topology}
	if rp, ok := p.pipelines[key]; ok {
		return rp, nil
	}
	rp, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: vertexEntryPoint,
			Buffers:    p.vertex,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: fragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    gputypes.TextureFormatRGBA8Unorm,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shader: %s: create render pipeline: %w", p.label, err)
	}
	p.pipelines[key] = rp
	return rp, nil
}

// bindGroup returns a bind group over the program's uniform buffer and
// the textures currently bound to its units, rebuilding it when a unit
// changed.
func (p *Program) bindGroup(d *Device) (hal.BindGroup, error) {
	views := make([]uintptr, len(p.textures))
	units := make([]*Texture, len(p.textures))
	for i, t := range p.textures {
		tex := d.units[t.unit]
		if tex == nil || tex.gpu == nil {
			return nil, fmt.Errorf("%w: %s: texture unit %d is empty", ErrNotBound, p.label, t.unit)
		}
		units[i] = tex
		views[i] = tex.gpu.view.NativeHandle()
	}
	if p.group != nil && slices.Equal(views, p.views) {
		return p.group, nil
	}

	var entries []gputypes.BindGroupEntry
	if p.block != nil {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  p.blockBinding,
			Resource: gputypes.BufferBinding{Buffer: p.blockBuffer.NativeHandle(), Size: uint64(len(p.block))},
		})
	}
	for i, t := range p.textures {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  t.binding,
			Resource: gputypes.TextureViewBinding{TextureView: views[i]},
		})
	}
	for _, s := range p.samplers {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  s.binding,
			Resource: gputypes.SamplerBinding{Sampler: units[s.texture].sampler.NativeHandle()},
		})
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.label + "_bind_group",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: %s: create bind group: %w", p.label, err)
	}
	if p.group != nil {
		d.device.DestroyBindGroup(p.group)
	}
	p.group, p.views = group, views
	return group, nil
}

// writeUniforms uploads the uniform block, filling targetSize first.
func (p *Program) writeUniforms(d *Device, width, height int) error {
	if p.block == nil {
		return nil
	}
	if p.targetSize >= 0 {
		binary.LittleEndian.PutUint32(p.block[p.targetSize:], math.Float32bits(float32(width)))
		binary.LittleEndian.PutUint32(p.block[p.targetSize+4:], math.Float32bits(float32(height)))
	}
	if err := d.queue.WriteBuffer(p.blockBuffer, 0, p.block); err != nil {
		return fmt.Errorf("shader: %s: write uniforms: %w", p.label, err)
	}
	return nil
}

// DestroyProgram releases p. Destroying twice is a no-op.
func (d *Device) DestroyProgram(p *Program) {
	if p == nil || p.destroyed {
		return
	}
	d.releaseProgram(p)
	p.destroyed = true
	d.stats.Programs--
	if d.program == p {
		d.program = nil
	}
}

// releaseProgram destroys p's HAL objects in reverse creation order.
func (d *Device) releaseProgram(p *Program) {
	if d.device == nil {
		return
	}
	if p.group != nil {
		d.device.DestroyBindGroup(p.group)
		p.group = nil
	}
	for key, rp := range p.pipelines {
		d.device.DestroyRenderPipeline(rp)
		delete(p.pipelines, key)
	}
	if p.blockBuffer != nil {
		d.device.DestroyBuffer(p.blockBuffer)
		p.blockBuffer = nil
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.layout != nil {
		d.device.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
	if p.module != nil {
		d.device.DestroyShaderModule(p.module)
		p.module = nil
	}
	p.spirv = nil
}

// Label returns the program's debug label.
func (p *Program) Label() string { return p.label }

// SPIRV returns the compiled module as SPIR-V words.
func (p *Program) SPIRV() []uint32 { return p.spirv }

// AttribLocation returns the index of a vertex attribute.
func (p *Program) AttribLocation(name string) (int, error) {
	i, ok := p.attribs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s: unknown attribute %q", ErrLink, p.label, name)
	}
	return i, nil
}

// UniformLocation returns the location of a declared uniform.
func (p *Program) UniformLocation(name string) (Location, error) {
	loc, ok := p.locations[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s: unknown uniform %q", ErrLink, p.label, name)
	}
	return loc, nil
}

// setFloats stores v into a block uniform, truncated to its size.
func (p *Program) setFloats(loc Location, v ...float64) {
	u := p.uniforms[loc]
	if u.texture >= 0 {
		return
	}
	for i := 0; i < len(v) && 4*i < u.size; i++ {
		binary.LittleEndian.PutUint32(p.block[u.offset+4*i:], math.Float32bits(float32(v[i])))
	}
}

// SetFloat sets a scalar uniform.
func (p *Program) SetFloat(loc Location, v float64) {
	p.setFloats(loc, v)
}

// SetVec2 sets a two-component uniform.
func (p *Program) SetVec2(loc Location, x, y float64) {
	p.setFloats(loc, x, y)
}

// SetVec3 sets a three-component uniform.
func (p *Program) SetVec3(loc Location, x, y, z float64) {
	p.setFloats(loc, x, y, z)
}

// SetVec4 sets a four-component uniform.
func (p *Program) SetVec4(loc Location, x, y, z, w float64) {
	p.setFloats(loc, x, y, z, w)
}

// SetTextureUnit points a texture uniform at a texture unit. The samplers
// paired with the texture follow it.
func (p *Program) SetTextureUnit(loc Location, unit int) {
	if u := p.uniforms[loc]; u.texture >= 0 {
		p.textures[u.texture].unit = unit
	}
}

// components returns the float count of a vertex format, or 0 when the
// format is not a float format.
func components(f gputypes.VertexFormat) int {
	switch f {
	case gputypes.VertexFormatFloat32:
		return 1
	case gputypes.VertexFormatFloat32x2:
		return 2
	case gputypes.VertexFormatFloat32x3:
		return 3
	case gputypes.VertexFormatFloat32x4:
		return 4
	default:
		return 0
	}
}

// lower parses, lowers and validates WGSL source.
func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	errs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", &errs[0])
	}
	return module, nil
}

// generate emits SPIR-V words for a validated module.
func generate(module *ir.Module) ([]uint32, error) {
	spirvBytes, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	module, err := lower(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	words, err := generate(module)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return words, nil
}
