package garden

// Surface reports the current drawable size in pixels.
type Surface interface {
	Size() (w, h int)
}

// SurfaceFunc adapts a plain function to the Surface interface.
type SurfaceFunc func() (w, h int)

// Size calls f.
func (f SurfaceFunc) Size() (w, h int) { return f() }

// Viewport is the drawable size last reported by the surface.
type Viewport struct {
	Width, Height int
}

// Aspect returns Width/Height, or 0 when Height is 0.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 0
	}
	return float32(v.Width) / float32(v.Height)
}

// Empty reports whether the viewport has zero area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// ViewportTracker keeps the pipeline, the scene tree and the camera in sync
// with the surface size.
type ViewportTracker struct {
	surface    Surface
	pipeline   *Pipeline
	scene      *Scene
	camera     any
	viewport   Viewport
	dispatcher Dispatcher
}

// NewViewportTracker creates a tracker reading sizes from surface. pipeline
// may be nil.
func NewViewportTracker(surface Surface, pipeline *Pipeline) *ViewportTracker {
	return &ViewportTracker{surface: surface, pipeline: pipeline}
}

// SetScene sets the scene whose tree receives resized broadcasts.
func (t *ViewportTracker) SetScene(s *Scene) {
	t.scene = s
}

// SetCamera sets the camera notified after the tree. cam may be a *Camera, a
// *Node with OnResized or a Resizer Behavior, a Resizer, or a func(w, h int).
// When unset, the scene's Camera is used.
func (t *ViewportTracker) SetCamera(cam any) {
	t.camera = cam
}

// Viewport returns the last recorded size.
func (t *ViewportTracker) Viewport() Viewport {
	return t.viewport
}

// HandleResize reads the surface size and propagates it: pipeline stages
// first, then the scene tree, then the camera. A zero-area size is recorded
// but nothing is resized.
func (t *ViewportTracker) HandleResize() {
	w, h := t.surface.Size()
	t.viewport = Viewport{Width: w, Height: h}
	if t.viewport.Empty() {
		Logger().Debug("viewport has zero area", "width", w, "height", h)
		return
	}

	if t.pipeline != nil {
		t.pipeline.SetSize(w, h)
	}

	calls := 0
	if t.scene != nil {
		calls = t.dispatcher.Broadcast(t.scene.root, ResizedEvent(w, h))
	}

	cam := t.camera
	if cam == nil && t.scene != nil && t.scene.Camera != nil {
		cam = t.scene.Camera
	}
	if fn := resizeTarget(cam); fn != nil {
		fn(w, h)
	}

	if t.scene != nil && t.scene.sink != nil {
		t.scene.sink.EmitResize(ResizeEvent{Width: w, Height: h, Invocations: calls})
	}
	Logger().Info("viewport resized", "width", w, "height", h, "hooks", calls)
}
