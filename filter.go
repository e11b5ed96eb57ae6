package garden

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is a full-frame image effect.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders un-premultiply before processing
// and re-premultiply output where needed.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	// Un-premultiply alpha.
	if c.a > 0 {
		c.rgb /= c.a
	}
	// 4x5 color matrix, row-major, offsets in elements 4, 9, 14, 19.
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// --- Lazy shader compilation (no sync.Once; ticks run on one goroutine) ---

var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("garden: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix transformation using a Kage shader.
// The matrix is stored in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	Matrix      [20]float64
	uniforms    map[string]any
	matrixF32   [20]float32
	matrixSlice []float32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{
		uniforms: make(map[string]any, 1),
	}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	f.Matrix[0] = 1  // R_r
	f.Matrix[6] = 1  // G_g
	f.Matrix[12] = 1 // B_b
	f.Matrix[18] = 1 // A_a
	return f
}

// SetTone sets the matrix to a tone adjustment: saturation first (1 is
// normal, 0 is grayscale), then the colour channels scaled by exposure, then
// brightness added as an offset in [-1, 1]. SetTone(1, 0, 1) is the identity.
func (f *ColorMatrixFilter) SetTone(exposure, brightness, saturation float64) {
	sr := (1 - saturation) * 0.299
	sg := (1 - saturation) * 0.587
	sb := (1 - saturation) * 0.114
	e := exposure
	f.Matrix = [20]float64{
		e * (sr + saturation), e * sg, e * sb, 0, brightness,
		e * sr, e * (sg + saturation), e * sb, 0, brightness,
		e * sr, e * sg, e * (sb + saturation), 0, brightness,
		0, 0, 0, 1, 0,
	}
}

// SetExposure scales the color channels by e. 1 leaves the image unchanged.
func (f *ColorMatrixFilter) SetExposure(e float64) {
	f.SetTone(e, 0, 1)
}

// IsIdentity reports whether the matrix leaves every pixel unchanged.
func (f *ColorMatrixFilter) IsIdentity() bool {
	for i, v := range f.Matrix {
		want := 0.0
		if i%6 == 0 && i < 19 {
			want = 1
		}
		if v != want {
			return false
		}
	}
	return true
}

// Apply renders the color matrix transformation from src into dst. An
// identity matrix is a plain copy.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	if f.IsIdentity() {
		copyInto(src, dst)
		return
	}
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// No Kage shader needed: bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// blurPasses returns the number of halvings for radius: ceil(log2(radius)),
// minimum 1.
func blurPasses(radius int) int {
	return max(int(math.Ceil(math.Log2(float64(radius)))), 1)
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	if f.Radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := blurPasses(f.Radius)
	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	// Downscale passes, each half-size.
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		scaleInto(op, current, f.temps[i])
		current = f.temps[i]
	}

	// Upscale back through the chain.
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		scaleInto(op, current, f.temps[i])
		current = f.temps[i]
	}

	scaleInto(op, current, dst)
}

// Dispose frees the intermediate images. The filter stays usable.
func (f *BlurFilter) Dispose() {
	for _, t := range f.temps {
		if t != nil {
			t.Deallocate()
		}
	}
	f.temps = f.temps[:0]
}

// copyInto replaces dst's pixels with src's.
func copyInto(src, dst *ebiten.Image) {
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	dst.DrawImage(src, &op)
}

// scaleInto draws src stretched over dst with bilinear filtering.
func scaleInto(op *ebiten.DrawImageOptions, src, dst *ebiten.Image) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// --- CustomShaderFilter ---

// CustomShaderFilter wraps a user-provided Kage shader, exposing Ebitengine's
// shader system directly. Images[0] is auto-filled with the source texture;
// the user may set Images[1] and Images[2] for additional textures.
type CustomShaderFilter struct {
	Shader   *ebiten.Shader
	Uniforms map[string]any
	Images   [3]*ebiten.Image
	shaderOp ebiten.DrawRectShaderOptions
}

// NewCustomShaderFilter creates a custom shader filter.
func NewCustomShaderFilter(shader *ebiten.Shader) *CustomShaderFilter {
	return &CustomShaderFilter{
		Shader:   shader,
		Uniforms: make(map[string]any),
	}
}

// CompileShaderFilter compiles Kage source into a CustomShaderFilter. The
// source must use //kage:unit pixels.
func CompileShaderFilter(src []byte) (*CustomShaderFilter, error) {
	shader, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("garden: compile shader: %w", err)
	}
	return NewCustomShaderFilter(shader), nil
}

// SetTime sets the Time uniform, in seconds, for animated shaders. Shaders
// that do not declare Time ignore it.
func (f *CustomShaderFilter) SetTime(d time.Duration) {
	f.Uniforms["Time"] = float32(d.Seconds())
}

// Apply runs the user-provided Kage shader with src as Images[0].
func (f *CustomShaderFilter) Apply(src, dst *ebiten.Image) {
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Images[1] = f.Images[1]
	f.shaderOp.Images[2] = f.Images[2]
	f.shaderOp.Uniforms = f.Uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), f.Shader, &f.shaderOp)
}

// --- FilterPass ---

// errNoSource is returned by post-process stages placed first in a pipeline.
var errNoSource = errors.New("post-process stage has no source image")

// FilterPass is a pipeline stage running a filter chain over the previous
// stage's output.
type FilterPass struct {
	Filters []Filter

	pool renderTexturePool
}

// NewFilterPass creates a stage applying filters in order.
func NewFilterPass(filters ...Filter) *FilterPass {
	return &FilterPass{Filters: filters}
}

// Resize drops pooled scratch images sized for the old viewport.
func (p *FilterPass) Resize(w, h int) {
	p.pool.Drain()
}

// Render applies the chain from src into dst, ping-ponging between two
// pooled scratch images when there is more than one filter.
func (p *FilterPass) Render(_ Frame, src, dst *ebiten.Image) error {
	if src == nil {
		return errNoSource
	}
	if len(p.Filters) == 0 {
		dst.DrawImage(src, nil)
		return nil
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var scratch [2]*ebiten.Image
	defer func() {
		p.pool.Release(scratch[0])
		p.pool.Release(scratch[1])
	}()

	current := src
	last := len(p.Filters) - 1
	for i, f := range p.Filters {
		target := dst
		if i < last {
			slot := i % 2
			if scratch[slot] == nil {
				scratch[slot] = p.pool.Acquire(w, h)
			} else {
				scratch[slot].Clear()
			}
			target = scratch[slot].SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
		}
		f.Apply(current, target)
		current = target
	}
	return nil
}
