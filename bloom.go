package garden

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

const thresholdShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Knee float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	l := dot(c.rgb, vec3(0.2126, 0.7152, 0.0722))
	return c * smoothstep(Threshold, Threshold+Knee, l)
}
`

var thresholdShader *ebiten.Shader

func ensureThresholdShader() *ebiten.Shader {
	if thresholdShader == nil {
		s, err := ebiten.NewShader([]byte(thresholdShaderSrc))
		if err != nil {
			panic("garden: failed to compile bloom threshold shader: " + err.Error())
		}
		thresholdShader = s
	}
	return thresholdShader
}

// bloomKnee is the luminance band over which pixels fade into the bright pass.
const bloomKnee = 0.01

// BloomPass adds a blurred copy of the bright parts of src on top of src.
type BloomPass struct {
	// Strength scales the glow before it is added.
	Strength float64
	// Radius in [0, 1] widens the glow.
	Radius float64
	// Threshold is the luminance below which pixels do not glow.
	Threshold float64

	bright  *ebiten.Image
	blurred *ebiten.Image
	blur    *BlurFilter

	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
	imgOp    ebiten.DrawImageOptions
}

// NewBloomPass creates a bloom stage.
func NewBloomPass(strength, radius, threshold float64) *BloomPass {
	return &BloomPass{
		Strength:  strength,
		Radius:    radius,
		Threshold: threshold,
		blur:      NewBlurFilter(0),
		uniforms:  make(map[string]any, 2),
	}
}

// blurRadius maps Radius to a blur radius in pixels.
func (p *BloomPass) blurRadius() int {
	return 4 + int(clamp01(p.Radius)*28)
}

// Resize reallocates the bright-pass and blur buffers at w x h.
func (p *BloomPass) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	p.release()
	opts := &ebiten.NewImageOptions{Unmanaged: true}
	p.bright = ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), opts)
	p.blurred = ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), opts)
}

// Size returns the size of the internal buffers, (0, 0) before Resize.
func (p *BloomPass) Size() (w, h int) {
	if p.bright == nil {
		return 0, 0
	}
	b := p.bright.Bounds()
	return b.Dx(), b.Dy()
}

func (p *BloomPass) release() {
	if p.bright != nil {
		p.bright.Deallocate()
		p.bright = nil
	}
	if p.blurred != nil {
		p.blurred.Deallocate()
		p.blurred = nil
	}
	p.blur.Dispose()
}

// Render copies src into dst and adds the glow.
func (p *BloomPass) Render(_ Frame, src, dst *ebiten.Image) error {
	if src == nil {
		return errNoSource
	}
	if p.bright == nil {
		b := src.Bounds()
		p.Resize(b.Dx(), b.Dy())
	}

	op := &p.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	dst.DrawImage(src, op)

	if p.Strength <= 0 {
		return nil
	}

	b := src.Bounds()
	p.bright.Clear()
	p.uniforms["Threshold"] = float32(p.Threshold)
	p.uniforms["Knee"] = float32(bloomKnee)
	p.shaderOp.Images[0] = src
	p.shaderOp.Uniforms = p.uniforms
	p.bright.DrawRectShader(b.Dx(), b.Dy(), ensureThresholdShader(), &p.shaderOp)

	p.blurred.Clear()
	p.blur.Radius = p.blurRadius()
	p.blur.Apply(p.bright, p.blurred)

	s := float32(p.Strength)
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.ColorScale.Scale(s, s, s, 1)
	op.Blend = ebiten.BlendLighter
	dst.DrawImage(p.blurred, op)
	return nil
}
