// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader implements the accelerated backend of a paint context.
//
// A Device owns an RGBA8 framebuffer texture on a wgpu HAL device and
// exposes a small, explicitly stateful pipeline in the spirit of WebGL:
// vertex buffers, textures, programs, a render target, a viewport and an
// optional blend state. Programs are written in WGSL, lowered with naga and
// linked against the IR when they are created, so a broken shader is
// reported once, at construction. The HAL device is the software backend,
// which runs the SPIR-V of both stages on the CPU and needs no GPU.
//
// Coordinates follow WebGPU: clip space has y pointing up, the framebuffer
// origin is the top-left pixel and viewports are given in framebuffer
// pixels. Triangles are rasterized with a top-left fill rule, so two
// triangles sharing an edge never touch the same pixel twice.
//
// Three effect programs build on the Device:
//
//   - Checkerboard fills the viewport with a two-color checker pattern.
//   - HSVCircle draws an anti-aliased hue/saturation wheel.
//   - CopyImage blits a texture into a destination rectangle.
//
// Each effect owns its program, a static full-viewport quad where its
// vertex stage reads one, and the locations resolved when it was built.
// Blending is enabled only while an effect draws. Blended passes render
// into an offscreen texture that the Device composites onto the target.
//
// # Framebuffer format
//
// The framebuffer stores premultiplied RGBA8 values, the same layout as
// image.RGBA. Fragment programs output straight (non-premultiplied) color;
// the source-over blend state turns it into premultiplied form.
package shader
