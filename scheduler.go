package garden

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Frame is the timing of one scheduler tick. It is recreated every tick.
type Frame struct {
	Index uint64        // 0 for the first tick
	Now   time.Time     // clock reading for this tick
	Delta time.Duration // time since the previous tick; 0 on the first
}

// ErrHookPanic wraps a panic raised by the controls or an update hook. It
// fails only the tick that raised it.
var ErrHookPanic = errors.New("garden: update hook panicked")

// Controls is a camera controller advanced once per tick, before the update
// broadcast.
type Controls interface {
	Update(dt time.Duration)
}

// PerfCounter brackets each tick. It observes, it never alters control flow.
type PerfCounter interface {
	Begin()
	End()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock replaces the system clock.
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithControls sets the controller updated before each broadcast.
func WithControls(c Controls) SchedulerOption {
	return func(s *Scheduler) { s.controls = c }
}

// WithPerfCounter sets the counter bracketing each tick.
func WithPerfCounter(p PerfCounter) SchedulerOption {
	return func(s *Scheduler) { s.perf = p }
}

// Scheduler computes per-tick timing, broadcasts update(delta) over the
// active scene, and runs the render pipeline. It is not safe for concurrent
// use: ticks are driven from a single goroutine and never overlap.
type Scheduler struct {
	clock    Clock
	controls Controls
	perf     PerfCounter
	pipeline *Pipeline
	scene    *Scene

	dispatcher Dispatcher

	started bool
	prev    time.Time
	frames  uint64
	frame   Frame
	inTick  bool
	stats   tickStats

	// err is sticky: once the clock regresses every later tick fails.
	err error
}

// NewScheduler creates a scheduler driving pipeline. The scene is attached
// separately with SetScene; until then ticks only advance timing.
func NewScheduler(pipeline *Pipeline, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		clock:    SystemClock{},
		pipeline: pipeline,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetScene sets the active scene. nil deactivates update and render work.
func (s *Scheduler) SetScene(scene *Scene) {
	s.scene = scene
}

// Scene returns the active scene, or nil.
func (s *Scheduler) Scene() *Scene {
	return s.scene
}

// Pipeline returns the pipeline run by Render.
func (s *Scheduler) Pipeline() *Pipeline {
	return s.pipeline
}

// Frame returns the timing of the most recent tick.
func (s *Scheduler) Frame() Frame {
	return s.frame
}

// Err returns the fatal error that stopped the scheduler, if any.
func (s *Scheduler) Err() error {
	return s.err
}

// Tick runs one full iteration: Update followed by Render into display.
func (s *Scheduler) Tick(display *ebiten.Image) error {
	if err := s.Update(); err != nil {
		return err
	}
	return s.Render(display)
}

// Update advances the clock and broadcasts update(delta) over the scene.
//
// The first call records the baseline and uses a delta of 0. A negative
// delta stops the scheduler for good: the returned error wraps
// ErrClockRegression and every later call returns it again. A panicking
// hook is recovered and reported as ErrHookPanic; the next call runs
// normally.
func (s *Scheduler) Update() error {
	if s.err != nil {
		return s.err
	}
	if s.perf != nil {
		s.perf.Begin()
		s.inTick = true
	}

	now := s.clock.Now()
	var delta time.Duration
	if s.started {
		delta = now.Sub(s.prev)
	}
	if delta < 0 {
		s.err = fmt.Errorf("%w: delta %v at frame %d", ErrClockRegression, delta, s.frames)
		Logger().Error("clock regression", "delta", delta, "frame", s.frames)
		s.endPerf()
		return s.err
	}
	s.started = true
	s.prev = now
	s.frame = Frame{Index: s.frames, Now: now, Delta: delta}
	s.frames++

	if s.scene == nil {
		return nil
	}
	debug := s.scene.debug
	s.stats = tickStats{frame: s.frame.Index, delta: delta}

	calls, err := s.advance(delta, debug)
	if err != nil {
		s.endPerf()
		return err
	}
	if s.scene.sink != nil {
		s.scene.sink.EmitFrame(FrameEvent{Index: s.frame.Index, Delta: delta, Invocations: calls})
	}
	return nil
}

// advance runs the controls and the update broadcast for one tick.
func (s *Scheduler) advance(delta time.Duration, debug bool) (calls int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHookPanic, r)
		}
	}()

	var t0 time.Time
	if debug {
		t0 = time.Now()
	}
	if s.controls != nil {
		s.controls.Update(delta)
	}
	if debug {
		s.stats.controlsTime = time.Since(t0)
		t0 = time.Now()
	}

	calls = s.dispatcher.Broadcast(s.scene.root, UpdateEvent(delta))

	if debug {
		s.stats.dispatchTime = time.Since(t0)
		s.stats.invocations = calls
	}
	return calls, nil
}

// Render runs every pipeline stage for the current frame, the last one
// writing into display. It is a no-op without a scene. A failing stage
// aborts the rest of this frame's stages and its error is returned.
func (s *Scheduler) Render(display *ebiten.Image) error {
	defer s.endPerf()
	if s.err != nil {
		return s.err
	}
	if s.scene == nil || s.pipeline == nil {
		return nil
	}

	var t0 time.Time
	if s.scene.debug {
		t0 = time.Now()
	}
	err := s.pipeline.Render(s.frame, display)
	if s.scene.debug {
		s.stats.renderTime = time.Since(t0)
		s.scene.debugLog(s.stats)
	}
	if err != nil {
		return err
	}
	if display != nil {
		s.scene.flushScreenshots(display)
	}
	return nil
}

func (s *Scheduler) endPerf() {
	if s.perf != nil && s.inTick {
		s.perf.End()
		s.inTick = false
	}
}
