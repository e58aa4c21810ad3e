// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

// TestShaderSourcesContainExpectedContent verifies shader sources contain key elements.
func TestShaderSourcesContainExpectedContent(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		required []string
	}{
		{"checkerboard", checkerboardShaderSource, []string{"@vertex", "@fragment", "cellSize", "colorA", "colorB"}},
		{"hsv_circle", hsvCircleShaderSource, []string{"@vertex", "@fragment", "center", "radius", "BORDER_PIXELS"}},
		{"copy_image", copyImageShaderSource, []string{"@vertex", "@fragment", "texture_2d<f32>", "sampler", "textureSample", "vertex_index"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.required {
				if !strings.Contains(tt.source, s) {
					t.Errorf("%s shader missing %q", tt.name, s)
				}
			}
		})
	}
}

func TestCreateProgramCompilesToSPIRV(t *testing.T) {
	d := newTestDevice(t, 2, 2)
	c, err := NewCheckerboard(d, 2, 2)
	if err != nil {
		t.Fatalf("NewCheckerboard() = %v", err)
	}
	defer c.Destroy()

	words := c.program.SPIRV()
	if len(words) == 0 {
		t.Fatal("SPIR-V output is empty")
	}
	// SPIR-V magic number.
	if words[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", words[0])
	}
}

func TestCreateProgramCompileError(t *testing.T) {
	d := newTestDevice(t, 2, 2)
	_, err := d.CreateProgram(ProgramSource{
		Label:      "broken",
		WGSL:       "fn vs_main( -> {",
		Attributes: []Attribute{positionAttribute},
	})
	if !errors.Is(err, ErrCompile) {
		t.Errorf("CreateProgram(broken) = %v, want ErrCompile", err)
	}
	if got := d.Stats().Programs; got != 0 {
		t.Errorf("live programs = %d, want 0", got)
	}
}

// noFragmentStage declares fs_main as a plain function.
const noFragmentStage = `
@vertex
fn vs_main(@location(0) vertexPosition: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(vertexPosition, 0.0, 1.0);
}

fn fs_main() -> vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestCreateProgramLinkErrors(t *testing.T) {
	tests := []struct {
		name string
		src  ProgramSource
	}{
		{"unknown uniform", ProgramSource{
			WGSL: checkerboardShaderSource, Attributes: []Attribute{positionAttribute},
			Uniforms: []string{"missingUniform"},
		}},
		{"local let as uniform", ProgramSource{
			WGSL: checkerboardShaderSource, Attributes: []Attribute{positionAttribute},
			Uniforms: []string{"parity"},
		}},
		{"type name as uniform", ProgramSource{
			WGSL: checkerboardShaderSource, Attributes: []Attribute{positionAttribute},
			Uniforms: []string{"f32"},
		}},
		{"struct name as uniform", ProgramSource{
			WGSL: checkerboardShaderSource, Attributes: []Attribute{positionAttribute},
			Uniforms: []string{"CheckerParams"},
		}},
		{"unknown attribute", ProgramSource{
			WGSL:       checkerboardShaderSource,
			Attributes: []Attribute{{Name: "uv", Format: gputypes.VertexFormatFloat32x2}},
		}},
		{"vertex output as attribute", ProgramSource{
			WGSL:       checkerboardShaderSource,
			Attributes: []Attribute{{Name: "pixel", Format: gputypes.VertexFormatFloat32x2}},
		}},
		{"position not vec2", ProgramSource{
			WGSL:       checkerboardShaderSource,
			Attributes: []Attribute{{Name: "vertexPosition", Format: gputypes.VertexFormatFloat32x3}},
		}},
		{"attribute wider than its input", ProgramSource{
			WGSL: checkerboardShaderSource,
			Attributes: []Attribute{
				positionAttribute,
				{Name: "vertexPosition", Format: gputypes.VertexFormatFloat32x4},
			},
		}},
		{"fs_main without @fragment", ProgramSource{
			WGSL: noFragmentStage, Attributes: []Attribute{positionAttribute},
		}},
	}

	d := newTestDevice(t, 2, 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src.Label = tt.name
			if _, err := d.CreateProgram(tt.src); !errors.Is(err, ErrLink) {
				t.Errorf("CreateProgram() = %v, want ErrLink", err)
			}
		})
	}
	if got := d.Stats().Programs; got != 0 {
		t.Errorf("live programs = %d, want 0", got)
	}
}

func TestUniformLocation(t *testing.T) {
	d := newTestDevice(t, 2, 2)
	c, err := NewCheckerboard(d, 2, 2)
	if err != nil {
		t.Fatalf("NewCheckerboard() = %v", err)
	}
	defer c.Destroy()

	if _, err := c.program.UniformLocation("colorB"); err != nil {
		t.Errorf("UniformLocation(colorB) = %v", err)
	}
	if _, err := c.program.UniformLocation("colorC"); !errors.Is(err, ErrLink) {
		t.Errorf("UniformLocation(colorC) = %v, want ErrLink", err)
	}
	if i, err := c.program.AttribLocation("vertexPosition"); err != nil || i != 0 {
		t.Errorf("AttribLocation(vertexPosition) = %d, %v, want 0", i, err)
	}
}

func TestCopyImageProgramReflection(t *testing.T) {
	d := newTestDevice(t, 2, 2)
	c, err := NewCopyImage(d, 2, 2)
	if err != nil {
		t.Fatalf("NewCopyImage() = %v", err)
	}
	defer c.Destroy()

	p := c.program
	if p.stride != 0 || p.vertex != nil {
		t.Errorf("stride = %d, want a program without vertex attributes", p.stride)
	}
	if len(p.textures) != 1 || p.textures[0].binding != 0 {
		t.Errorf("textures = %+v, want one at binding 0", p.textures)
	}
	if len(p.samplers) != 1 || p.samplers[0].binding != 1 || p.samplers[0].texture != 0 {
		t.Errorf("samplers = %+v, want one at binding 1 paired with the texture", p.samplers)
	}
	if p.block != nil {
		t.Error("copy program has a uniform block")
	}
}

func TestUniformBlockLayout(t *testing.T) {
	d := newTestDevice(t, 2, 2)
	c, err := NewCheckerboard(d, 2, 2)
	if err != nil {
		t.Fatalf("NewCheckerboard() = %v", err)
	}
	defer c.Destroy()

	p := c.program
	if p.targetSize != 0 {
		t.Errorf("targetSize offset = %d, want 0", p.targetSize)
	}
	tests := []struct {
		name         string
		offset, size int
	}{
		{"cellSize", 8, 8},
		{"colorA", 16, 16},
		{"colorB", 32, 16},
	}
	for _, tt := range tests {
		loc, err := p.UniformLocation(tt.name)
		if err != nil {
			t.Fatalf("UniformLocation(%s) = %v", tt.name, err)
		}
		if u := p.uniforms[loc]; u.offset != tt.offset || u.size != tt.size {
			t.Errorf("%s at %d+%d, want %d+%d", tt.name, u.offset, u.size, tt.offset, tt.size)
		}
	}
	if len(p.block) != 48 {
		t.Errorf("uniform block = %d bytes, want 48", len(p.block))
	}
}
