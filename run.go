package garden

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS draws the FrameStats overlay in the top-left corner.
	ShowFPS      bool
	Resizable    bool
	DisableVsync bool
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Title == "" {
		c.Title = "garden"
	}
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	return c
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostControls sets the camera controller. It is updated before every
// broadcast and, if it implements Resizer, told about viewport changes.
func WithHostControls(c Controls) HostOption {
	return func(g *Host) { g.controls = c }
}

// WithHostClock replaces the system clock.
func WithHostClock(c Clock) HostOption {
	return func(g *Host) { g.clock = c }
}

// WithScaleFactor overrides the device scale factor lookup.
func WithScaleFactor(fn func() float64) HostOption {
	return func(g *Host) { g.scaleFactor = fn }
}

// WithFrameStats sets the counter bracketing each tick, shown or not.
// Without it Run creates one only when RunConfig.ShowFPS is set.
func WithFrameStats(s *FrameStats) HostOption {
	return func(g *Host) { g.stats = s }
}

// Host adapts a Scheduler and a ViewportTracker to ebiten.Game. Ebitengine
// calls Update and Draw once per display refresh; Update advances timing and
// the tree, Draw runs the pipeline.
type Host struct {
	sched   *Scheduler
	tracker *ViewportTracker
	scene   *Scene

	controls    Controls
	clock       Clock
	stats       *FrameStats
	scaleFactor func() float64

	ctx     context.Context
	showFPS bool

	width, height int
}

// NewHost wires scene and pipeline into an ebiten.Game.
func NewHost(scene *Scene, pipeline *Pipeline, opts ...HostOption) *Host {
	g := &Host{
		scene: scene,
		clock: SystemClock{},
		ctx:   context.Background(),
		scaleFactor: func() float64 {
			return ebiten.Monitor().DeviceScaleFactor()
		},
	}
	for _, opt := range opts {
		opt(g)
	}

	schedOpts := []SchedulerOption{WithClock(g.clock)}
	if g.controls != nil {
		schedOpts = append(schedOpts, WithControls(g.controls))
	}
	if g.stats != nil {
		schedOpts = append(schedOpts, WithPerfCounter(g.stats))
	}
	g.sched = NewScheduler(pipeline, schedOpts...)
	g.sched.SetScene(scene)

	g.tracker = NewViewportTracker(SurfaceFunc(func() (int, int) { return g.width, g.height }), pipeline)
	g.tracker.SetScene(scene)
	return g
}

// Scheduler returns the host's scheduler.
func (g *Host) Scheduler() *Scheduler { return g.sched }

// Tracker returns the host's viewport tracker.
func (g *Host) Tracker() *ViewportTracker { return g.tracker }

// Update implements ebiten.Game. It returns ebiten.Termination once the run
// context is done, and the scheduler's error if the clock regressed. Other
// update failures are logged and the game keeps running.
func (g *Host) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	err := g.sched.Update()
	if err == nil || errors.Is(err, ErrClockRegression) {
		return err
	}
	Logger().Warn("update failed", "frame", g.sched.Frame().Index, "err", err)
	return nil
}

// Draw implements ebiten.Game. A failing stage skips the rest of the frame
// and is logged; the next frame tries again.
func (g *Host) Draw(screen *ebiten.Image) {
	if err := g.render(screen); err != nil {
		Logger().Warn("frame failed", "frame", g.sched.Frame().Index, "err", err)
	}
	if g.showFPS && g.stats != nil {
		g.stats.Draw(screen)
	}
}

func (g *Host) render(screen *ebiten.Image) (err error) {
	defer func() {
		if r := recover(); r != nil {
			g.sched.endPerf()
			err = fmt.Errorf("garden: render panicked: %v", r)
		}
	}()
	return g.sched.Render(screen)
}

// Layout implements ebiten.Game. The drawable size is the window size times
// the device scale factor; a change triggers the resize propagation.
func (g *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := 1.0
	if g.scaleFactor != nil {
		if s := g.scaleFactor(); s > 0 {
			scale = s
		}
	}
	w := int(float64(outsideWidth) * scale)
	h := int(float64(outsideHeight) * scale)
	if w != g.width || h != g.height {
		g.width, g.height = w, h
		g.tracker.HandleResize()
		if r, ok := g.controls.(Resizer); ok && w > 0 && h > 0 {
			r.Resized(w, h)
		}
	}
	return max(w, 1), max(h, 1)
}

// configure applies the run settings to the host. Frame stats bracket ticks
// only while the overlay is shown.
func (g *Host) configure(ctx context.Context, cfg RunConfig) {
	g.ctx = ctx
	g.showFPS = cfg.ShowFPS
	if !cfg.ShowFPS {
		return
	}
	if g.stats == nil {
		g.stats = NewFrameStats()
	}
	g.sched.perf = g.stats
}

// Run opens a window and drives host until the window closes or ctx is done.
// TPS is synced to the display refresh so each refresh is one tick.
func Run(ctx context.Context, host *Host, cfg RunConfig) error {
	cfg = cfg.withDefaults()
	host.configure(ctx, cfg)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetVsyncEnabled(!cfg.DisableVsync)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	Logger().Info("starting", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	return ebiten.RunGame(host)
}
