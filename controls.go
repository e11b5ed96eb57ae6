package garden

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// InputSource is the pointer state OrbitControls polls once per update.
type InputSource interface {
	CursorPosition() (x, y int)
	// Dragging reports whether the rotate button is held.
	Dragging() bool
	// Wheel returns the scroll offset since the last frame.
	Wheel() (dx, dy float64)
}

// EbitenInput reads the mouse through Ebitengine. The left button rotates.
type EbitenInput struct{}

// CursorPosition returns ebiten.CursorPosition.
func (EbitenInput) CursorPosition() (x, y int) { return ebiten.CursorPosition() }

// Dragging reports whether the left mouse button is held.
func (EbitenInput) Dragging() bool { return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) }

// Wheel returns ebiten.Wheel.
func (EbitenInput) Wheel() (dx, dy float64) { return ebiten.Wheel() }

// dollyAnim is an in-flight DollyTo tween.
type dollyAnim struct {
	tween *gween.Tween
}

// OrbitControls orbits a camera around Target on a sphere. Dragging rotates,
// the wheel zooms. Movement is damped: each update applies DampingFactor of
// the pending rotation and keeps the rest for the next one.
type OrbitControls struct {
	Camera *Camera
	Target Vec3

	EnableDamping bool
	DampingFactor float32

	MinDistance, MaxDistance     float32
	MinPolarAngle, MaxPolarAngle float32

	RotateSpeed float32
	ZoomSpeed   float32

	// AutoRotate spins around Target; AutoRotateSpeed 2 is one orbit per
	// 30 seconds.
	AutoRotate      bool
	AutoRotateSpeed float32

	// DragDeadZone is the pointer travel in pixels before a press counts as a
	// drag.
	DragDeadZone float32

	input InputSource

	deltaTheta, deltaPhi float32
	scale                float32

	height int

	pressed      bool
	dragging     bool
	startX       int
	startY       int
	lastX, lastY int

	dolly *dollyAnim
}

// NewOrbitControls creates controls for cam reading pointer state from input.
// input may be nil for programmatic control only.
func NewOrbitControls(cam *Camera, input InputSource) *OrbitControls {
	return &OrbitControls{
		Camera:          cam,
		EnableDamping:   true,
		DampingFactor:   0.25,
		MinDistance:     0,
		MaxDistance:     math32.Inf(1),
		MinPolarAngle:   0,
		MaxPolarAngle:   math32.Pi,
		RotateSpeed:     1,
		ZoomSpeed:       1,
		AutoRotateSpeed: 2,
		DragDeadZone:    4,
		input:           input,
		scale:           1,
	}
}

// Rotate queues an orbit of dTheta radians around the up axis and dPhi
// radians towards the pole.
func (o *OrbitControls) Rotate(dTheta, dPhi float32) {
	o.deltaTheta += dTheta
	o.deltaPhi += dPhi
}

// Zoom queues a distance change: factors below 1 move closer.
func (o *OrbitControls) Zoom(factor float32) {
	if factor > 0 {
		o.scale *= factor
	}
}

// DollyTo animates the camera distance to distance over seconds.
func (o *OrbitControls) DollyTo(distance, seconds float32, fn ease.TweenFunc) {
	if o.Camera == nil {
		return
	}
	if fn == nil {
		fn = ease.OutCubic
	}
	from := o.Camera.Position.Sub(o.Target).Length()
	o.dolly = &dollyAnim{tween: gween.New(from, distance, seconds, fn)}
}

// Resized records the viewport height used to scale drag distances.
func (o *OrbitControls) Resized(w, h int) {
	o.height = h
}

// Update applies pending rotation and zoom to the camera.
func (o *OrbitControls) Update(dt time.Duration) {
	if o.Camera == nil {
		return
	}
	o.pollInput()

	secs := float32(dt.Seconds())
	if o.AutoRotate {
		o.deltaTheta -= 2 * math32.Pi / 60 * o.AutoRotateSpeed * secs
	}

	offset := o.Camera.Position.Sub(o.Target)
	radius := offset.Length()
	theta := math32.Atan2(offset.X, offset.Z)
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(clampf(offset.Y/radius, -1, 1))
	}

	if o.EnableDamping {
		theta += o.deltaTheta * o.DampingFactor
		phi += o.deltaPhi * o.DampingFactor
	} else {
		theta += o.deltaTheta
		phi += o.deltaPhi
	}

	const eps = 1e-6
	phi = clampf(phi, o.MinPolarAngle, o.MaxPolarAngle)
	phi = clampf(phi, eps, math32.Pi-eps)

	radius *= o.scale
	if o.dolly != nil {
		r, done := o.dolly.tween.Update(secs)
		radius = r
		if done {
			o.dolly = nil
		}
	}
	radius = clampf(radius, o.MinDistance, o.MaxDistance)

	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	o.Camera.Position = o.Target.Add(Vec3{
		X: radius * sinPhi * sinTheta,
		Y: radius * cosPhi,
		Z: radius * sinPhi * cosTheta,
	})
	o.Camera.Target = o.Target

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
	}
	o.scale = 1
}

func (o *OrbitControls) pollInput() {
	if o.input == nil {
		return
	}
	x, y := o.input.CursorPosition()
	down := o.input.Dragging()
	switch {
	case down && !o.pressed:
		o.pressed = true
		o.dragging = false
		o.startX, o.startY = x, y
		o.lastX, o.lastY = x, y
	case down:
		if !o.dragging {
			dx, dy := float32(x-o.startX), float32(y-o.startY)
			if math32.Sqrt(dx*dx+dy*dy) > o.DragDeadZone {
				o.dragging = true
			}
		}
		if o.dragging {
			h := float32(o.height)
			if h <= 0 {
				h = 1
			}
			o.Rotate(
				-2*math32.Pi*float32(x-o.lastX)/h*o.RotateSpeed,
				-2*math32.Pi*float32(y-o.lastY)/h*o.RotateSpeed,
			)
		}
		o.lastX, o.lastY = x, y
	default:
		o.pressed = false
		o.dragging = false
	}

	if _, wy := o.input.Wheel(); wy != 0 {
		step := math32.Pow(0.95, o.ZoomSpeed)
		if wy > 0 {
			o.Zoom(step)
		} else {
			o.Zoom(1 / step)
		}
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
