package garden

// Camera is a perspective camera looking from Position at Target. It is not
// part of the scene tree; the ViewportTracker calls Resized on it directly.
type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV float32
	// Aspect is width/height of the viewport.
	Aspect    float32
	Near, Far float32

	Position Vec3
	Target   Vec3
	Up       Vec3

	projection Mat4
}

// NewCamera creates a camera at the origin looking down -Z.
func NewCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: Vec3{0, 0, -1},
		Up:     Vec3{0, 1, 0},
	}
	c.UpdateProjection()
	return c
}

// Resized adopts the new viewport aspect and recomputes the projection.
// A zero height is ignored.
func (c *Camera) Resized(w, h int) {
	if h <= 0 || w <= 0 {
		return
	}
	c.Aspect = float32(w) / float32(h)
	c.UpdateProjection()
}

// UpdateProjection recomputes the projection matrix. Call it after changing
// FOV, Aspect, Near or Far directly.
func (c *Camera) UpdateProjection() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Projection returns the cached projection matrix.
func (c *Camera) Projection() Mat4 {
	return c.projection
}

// View returns the world-to-camera matrix.
func (c *Camera) View() Mat4 {
	return LookAt(c.Position, c.Target, c.Up)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() Mat4 {
	return c.projection.Mul(c.View())
}

// WorldToScreen projects p into pixel coordinates of a w x h target.
// ok is false when p lies outside the near/far range or behind the camera.
func (c *Camera) WorldToScreen(p Vec3, w, h int) (sx, sy, clipW float32, ok bool) {
	return project(c.ViewProjection(), p, w, h)
}

// project maps p through vp into pixel coordinates, y down.
func project(vp Mat4, p Vec3, w, h int) (sx, sy, clipW float32, ok bool) {
	v := vp.MulPoint(p)
	if v.W <= 0 {
		return 0, 0, v.W, false
	}
	nz := v.Z / v.W
	if nz < -1 || nz > 1 {
		return 0, 0, v.W, false
	}
	sx, sy = toScreen(v, w, h)
	return sx, sy, v.W, true
}
