package garden

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Stage is one unit of the render pipeline. src is the previous stage's
// output (nil for the first stage); dst is an intermediate buffer, or the
// display for the last stage.
type Stage interface {
	Render(f Frame, src, dst *ebiten.Image) error
}

// Resizable is implemented by stages that hold viewport-sized state.
type Resizable interface {
	Resize(w, h int)
}

// Pipeline is an ordered, fixed list of stages sharing one viewport size.
// Each stage except the last renders into its own intermediate buffer,
// which becomes the next stage's src.
type Pipeline struct {
	stages  []Stage
	buffers []*ebiten.Image
	w, h    int
}

// NewPipeline assembles the stages in order. The composition is fixed for the
// pipeline's lifetime.
func NewPipeline(stages ...Stage) *Pipeline {
	for i, st := range stages {
		if st == nil {
			panic(fmt.Sprintf("garden: pipeline stage %d is nil", i))
		}
	}
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Stages returns the stage list. The returned slice MUST NOT be mutated.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Size returns the current viewport size, (0, 0) before the first SetSize.
func (p *Pipeline) Size() (w, h int) {
	return p.w, p.h
}

// SetSize reallocates the intermediate buffers and resizes every Resizable
// stage in one step, so no stage renders at a stale size while another has
// already moved on. Non-positive sizes and unchanged sizes are ignored.
func (p *Pipeline) SetSize(w, h int) {
	if w <= 0 || h <= 0 || (w == p.w && h == p.h) {
		return
	}
	p.w, p.h = w, h

	for _, b := range p.buffers {
		if b != nil {
			b.Deallocate()
		}
	}
	n := max(len(p.stages)-1, 0)
	p.buffers = p.buffers[:0]
	for i := 0; i < n; i++ {
		p.buffers = append(p.buffers, ebiten.NewImageWithOptions(
			image.Rect(0, 0, w, h),
			&ebiten.NewImageOptions{Unmanaged: true},
		))
	}

	for _, st := range p.stages {
		if r, ok := st.(Resizable); ok {
			r.Resize(w, h)
		}
	}
}

// Render runs every stage once for frame f, the last one writing into
// display. If SetSize was never called the display bounds are used. The first
// failing stage aborts the frame; its error is returned wrapped with the
// stage index.
func (p *Pipeline) Render(f Frame, display *ebiten.Image) error {
	if len(p.stages) == 0 {
		return nil
	}
	if p.w == 0 && display != nil {
		b := display.Bounds()
		p.SetSize(b.Dx(), b.Dy())
	}
	if len(p.buffers) < len(p.stages)-1 {
		return fmt.Errorf("garden: pipeline has no size; call SetSize before Render")
	}

	var src *ebiten.Image
	last := len(p.stages) - 1
	for i, st := range p.stages {
		dst := display
		if i < last {
			dst = p.buffers[i]
			dst.Clear()
		}
		if err := st.Render(f, src, dst); err != nil {
			return fmt.Errorf("garden: stage %d (%T): %w", i, st, err)
		}
		src = dst
	}
	return nil
}
