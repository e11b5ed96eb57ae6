package garden

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ErrNoCamera is returned by ScenePass when neither it nor its scene has a
// camera.
var ErrNoCamera = errors.New("garden: scene pass has no camera")

// maxBatchQuads caps one DrawTriangles32 submission.
const maxBatchQuads = 16384

// ScenePass draws the scene tree from a camera into dst. It ignores src and
// is normally the first stage of a pipeline.
type ScenePass struct {
	Scene *Scene
	// Camera overrides Scene.Camera when set.
	Camera *Camera

	w, h     int
	drawn    int
	segments int

	verts []ebiten.Vertex
	inds  []uint32
}

// NewScenePass creates a scene pass for scene.
func NewScenePass(scene *Scene) *ScenePass {
	return &ScenePass{Scene: scene}
}

// Resize records the viewport size used for point attenuation.
func (p *ScenePass) Resize(w, h int) {
	p.w, p.h = w, h
}

// Drawn returns the number of points drawn by the last Render.
func (p *ScenePass) Drawn() int {
	return p.drawn
}

// DrawnSegments returns the number of line segments, whole or clipped,
// drawn by the last Render.
func (p *ScenePass) DrawnSegments() int {
	return p.segments
}

// Render clears dst to the scene's clear color and draws every visible node.
func (p *ScenePass) Render(_ Frame, _, dst *ebiten.Image) error {
	if p.Scene == nil {
		return nil
	}
	cam := p.Camera
	if cam == nil {
		cam = p.Scene.Camera
	}
	if cam == nil {
		return ErrNoCamera
	}
	dst.Fill(p.Scene.ClearColor.toRGBA())

	w, h := p.w, p.h
	if w <= 0 || h <= 0 {
		b := dst.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	p.drawn = 0
	p.segments = 0
	vp := cam.ViewProjection()
	ambient := p.Scene.ambient()
	p.drawNode(dst, p.Scene.root, Identity(), vp, ambient, w, h)
	return nil
}

func (p *ScenePass) drawNode(dst *ebiten.Image, n *Node, parent, vp Mat4, ambient Color, w, h int) {
	if !n.Visible || n.disposed {
		return
	}
	world := parent.Mul(n.LocalTransform())

	c := n.Color
	if n.Lit {
		c = c.Mul(ambient)
	}
	switch n.Type {
	case NodeTypePoints:
		p.drawPoints(dst, n, vp.Mul(world), c, w, h)
	case NodeTypeLines:
		p.drawLines(dst, n, vp.Mul(world), c, w, h)
	}

	for _, child := range n.children {
		p.drawNode(dst, child, world, vp, ambient, w, h)
	}
}

func (p *ScenePass) drawPoints(dst *ebiten.Image, n *Node, mvp Mat4, c Color, w, h int) {
	if len(n.Points) == 0 || n.PointSize <= 0 {
		return
	}
	ca := float32(c.A)
	cr, cg, cb := float32(c.R)*ca, float32(c.G)*ca, float32(c.B)*ca
	sb := whitePixel.Bounds()
	sx0, sy0, sx1, sy1 := float32(sb.Min.X), float32(sb.Min.Y), float32(sb.Max.X), float32(sb.Max.Y)
	halfH := float32(h) / 2

	p.verts = p.verts[:0]
	p.inds = p.inds[:0]
	for _, pt := range n.Points {
		x, y, clipW, ok := project(mvp, pt, w, h)
		if !ok {
			continue
		}
		size := n.PointSize
		if n.SizeAttenuation {
			size = n.PointSize * halfH / clipW
		}
		if size < 1 {
			size = 1
		}
		r := size / 2
		p.drawn++

		base := uint32(len(p.verts))
		p.verts = append(p.verts,
			ebiten.Vertex{DstX: x - r, DstY: y - r, SrcX: sx0, SrcY: sy0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: x + r, DstY: y - r, SrcX: sx1, SrcY: sy0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: x - r, DstY: y + r, SrcX: sx0, SrcY: sy1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: x + r, DstY: y + r, SrcX: sx1, SrcY: sy1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		)
		// TL-TR-BL, TR-BR-BL
		p.inds = append(p.inds, base, base+1, base+2, base+1, base+3, base+2)

		if len(p.verts) >= maxBatchQuads*4 {
			p.flush(dst, n.BlendMode)
		}
	}
	p.flush(dst, n.BlendMode)
}

func (p *ScenePass) flush(dst *ebiten.Image, blend BlendMode) {
	if len(p.verts) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = blend.EbitenBlend()
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	dst.DrawTriangles32(p.verts, p.inds, whitePixel, &op)
	p.verts = p.verts[:0]
	p.inds = p.inds[:0]
}

func (p *ScenePass) drawLines(dst *ebiten.Image, n *Node, mvp Mat4, c Color, w, h int) {
	width := n.LineWidth
	if width <= 0 {
		width = 1
	}
	clr := c.toRGBA()
	for i := 0; i+1 < len(n.Segments); i += 2 {
		a, b, ok := clipSegment(mvp.MulPoint(n.Segments[i]), mvp.MulPoint(n.Segments[i+1]))
		if !ok {
			continue
		}
		x0, y0 := toScreen(a, w, h)
		x1, y1 := toScreen(b, w, h)
		vector.StrokeLine(dst, x0, y0, x1, y1, width, clr, true)
		p.segments++
	}
}

// clipSegment clips a clip-space segment to the near (z >= -w) and far
// (z <= w) planes. Sideways overflow is left to the rasterizer.
func clipSegment(a, b Vec4) (Vec4, Vec4, bool) {
	t0, t1 := float32(0), float32(1)
	// Signed distances of a and b to each plane; inside is >= 0.
	planes := [2][2]float32{
		{a.Z + a.W, b.Z + b.W},
		{a.W - a.Z, b.W - b.Z},
	}
	for _, d := range planes {
		da, db := d[0], d[1]
		switch {
		case da < 0 && db < 0:
			return a, b, false
		case da < 0:
			t0 = max(t0, da/(da-db))
		case db < 0:
			t1 = min(t1, da/(da-db))
		}
	}
	if t0 > t1 {
		return a, b, false
	}
	return lerp4(a, b, t0), lerp4(a, b, t1), true
}

func lerp4(a, b Vec4, t float32) Vec4 {
	return Vec4{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
}

// toScreen divides a clipped point by w and maps it to pixels, y down.
func toScreen(v Vec4, w, h int) (float32, float32) {
	nx, ny := v.X/v.W, v.Y/v.W
	return (nx + 1) * 0.5 * float32(w), (1 - ny) * 0.5 * float32(h)
}
