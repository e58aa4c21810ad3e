// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the raster backend of a paint context.
//
// A Surface is an immediate-mode 2D drawing target: paths are filled or
// stroked with a flat color and other images are blitted onto it, either at
// their natural size or scaled into a destination rectangle. Every operation
// completes before it returns, so the pixels returned by Snapshot (or held by
// ImageSurface.Image) always reflect the most recent call.
//
// # Surface Types
//
//   - ImageSurface: CPU rendering into an *image.RGBA. Path coverage is
//     computed by golang.org/x/image/vector and scaled blits go through
//     golang.org/x/image/draw.
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//
//	path := surface.NewPath()
//	path.Circle(400, 300, 100)
//	s.Fill(path, surface.FillStyle{Color: color.RGBA{255, 0, 0, 255}})
//
//	img := s.Snapshot()
//
// Pixels are stored premultiplied, as image.RGBA requires. Colors passed in
// follow the image/color conventions, so color.NRGBA values are converted on
// the way in.
package surface
