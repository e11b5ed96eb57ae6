package garden

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// statsWindow is how often FrameStats refreshes its averages.
const statsWindow = 500 * time.Millisecond

// FrameStats is a PerfCounter reporting frames per second and the average
// time spent inside a tick. Figures refresh every half second.
type FrameStats struct {
	now func() time.Time

	begin      time.Time
	windowFrom time.Time
	frames     int
	busy       time.Duration

	fps     float64
	frameMS float64
}

// NewFrameStats creates a counter reading the wall clock.
func NewFrameStats() *FrameStats {
	return &FrameStats{now: time.Now}
}

// Begin marks the start of a tick.
func (s *FrameStats) Begin() {
	s.begin = s.now()
	if s.windowFrom.IsZero() {
		s.windowFrom = s.begin
	}
}

// End marks the end of a tick and refreshes the figures once per window.
func (s *FrameStats) End() {
	end := s.now()
	s.frames++
	s.busy += end.Sub(s.begin)

	elapsed := end.Sub(s.windowFrom)
	if elapsed < statsWindow {
		return
	}
	s.fps = float64(s.frames) / elapsed.Seconds()
	s.frameMS = float64(s.busy.Microseconds()) / 1000 / float64(s.frames)
	s.frames = 0
	s.busy = 0
	s.windowFrom = end
}

// FPS returns ticks per second over the last window.
func (s *FrameStats) FPS() float64 { return s.fps }

// FrameMS returns the mean tick duration in milliseconds over the last window.
func (s *FrameStats) FrameMS() float64 { return s.frameMS }

// String formats the figures for the overlay.
func (s *FrameStats) String() string {
	return fmt.Sprintf("FPS: %.1f\nMS:  %.2f", s.fps, s.frameMS)
}

// Draw prints the figures in the top-left corner of screen.
func (s *FrameStats) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, 100, 32, color.RGBA{0, 0, 0, 128}, false)
	ebitenutil.DebugPrintAt(screen, s.String(), 4, 0)
}
