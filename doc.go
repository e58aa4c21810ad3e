// Package paint provides a layered drawing surface with CPU and shader
// backends.
//
// # Overview
//
// A [Context] presents one logical drawing surface backed by two
// surfaces of identical size: a raster surface ([surface.ImageSurface])
// for paths, fills, strokes and blits, and an accelerated surface
// ([shader.Device]) for procedural effects such as checkerboards and the
// HSV color wheel. Every drawing call targets exactly one backend and then
// runs exactly one synchronization flush, so the raster pixels returned by
// [Context.Surface] always reflect the most recent operation.
//
// A [LayerStack] owns an ordered set of layers, each with its own Context.
// Painting reaches a layer only through [LayerStack.DrawInContext], which
// draws on the selected layer and notifies subscribers synchronously.
//
// # Quick Start
//
//	stack := paint.NewLayerStack(1000, 500)
//	defer stack.Close()
//
//	layer, _ := stack.PushLayer()
//	_ = stack.Select(layer.ID())
//	stack.Subscribe(func(n paint.Notification) {
//	    log.Println("layer changed:", n.LayerID)
//	})
//	stack.DrawInContext(func(c *paint.Context) {
//	    c.FillCircle(50, 50, 10, paint.Red)
//	})
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Hue angles in radians, increasing from the positive x axis
//
// # Threading
//
// A LayerStack and its Contexts must be used from a single goroutine,
// typically the UI loop. Only [SetLogger] and [Logger] are safe for
// concurrent use.
package paint
