// Package garden renders animated 3D point clouds on [Ebitengine], redrawing
// once per display refresh.
//
// # Quick start
//
// Build a scene, a camera and a pipeline, then hand them to [Run]:
//
//	scene := garden.NewScene()
//	scene.Camera = garden.NewCamera(60, 4.0/3, 1, 100000)
//	scene.Root().AddChild(garden.NewPoints("cloud",
//		garden.RandomCube(100000, 1000, nil), 1, garden.ColorFromHex(0xAAAAAA)))
//
//	pipeline := garden.NewPipeline(
//		garden.NewScenePass(scene),
//		garden.NewBloomPass(1, 0, 0),
//	)
//	host := garden.NewHost(scene, pipeline)
//	garden.Run(ctx, host, garden.RunConfig{Title: "garden", Width: 800, Height: 600})
//
// Without a window, drive a [Scheduler] from a [Loop] and a [Refresher].
//
// # Ticks
//
// Each tick the [Scheduler] reads its [Clock], computes the time since the
// previous tick (0 on the first), advances the camera [Controls], broadcasts
// update(delta) over the scene tree and runs every pipeline [Stage]. A clock
// that moves backwards stops the scheduler with [ErrClockRegression].
//
// # Capabilities
//
// Nodes opt into broadcasts through [Node.OnUpdate] and [Node.OnResized], or
// through a [Node.Behavior] implementing [Updater] or [Resizer]. Nodes
// without a capability are skipped. The walk is pre-order, children in
// insertion order.
//
// # Resizing
//
// [ViewportTracker.HandleResize] reads the surface size and propagates it to
// the pipeline stages, the scene tree and the camera, in that order, before
// the next tick renders.
//
// # Logging
//
// garden is silent by default. Install a handler with [SetLogger].
//
// [Ebitengine]: https://ebitengine.org
package garden
