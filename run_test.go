package garden

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

type resizingControls struct {
	fakeControls
	w, h int
}

func (c *resizingControls) Resized(w, h int) { c.w, c.h = w, h }

func TestHostLayoutScalesAndResizes(t *testing.T) {
	scene := NewScene()
	scene.Camera = NewCamera(60, 1, 1, 1000)
	stage := &fakeStage{name: "s"}
	ctl := &resizingControls{}
	h := NewHost(scene, NewPipeline(stage),
		WithScaleFactor(func() float64 { return 2 }),
		WithHostControls(ctl),
	)

	w, hh := h.Layout(400, 300)
	if w != 800 || hh != 600 {
		t.Fatalf("Layout = %dx%d, want 800x600", w, hh)
	}
	if stage.w != 800 || stage.h != 600 {
		t.Errorf("stage size = %dx%d, want 800x600", stage.w, stage.h)
	}
	if !approxEqual(scene.Camera.Aspect, 800.0/600) {
		t.Errorf("camera aspect = %v", scene.Camera.Aspect)
	}
	if ctl.h != 600 {
		t.Errorf("controls height = %d, want 600", ctl.h)
	}

	h.Layout(400, 300)
	if stage.resizes != 1 {
		t.Errorf("unchanged layout resized again: %d resizes", stage.resizes)
	}
}

func TestHostLayoutMinimised(t *testing.T) {
	h := NewHost(NewScene(), NewPipeline(&fakeStage{name: "s"}), WithScaleFactor(func() float64 { return 1 }))
	w, hh := h.Layout(0, 0)
	if w != 1 || hh != 1 {
		t.Errorf("Layout(0, 0) = %dx%d, want 1x1", w, hh)
	}
	if v := h.Tracker().Viewport(); !v.Empty() {
		t.Errorf("viewport = %+v, want empty", v)
	}
}

func TestHostUpdateTerminatesOnCancel(t *testing.T) {
	h := NewHost(NewScene(), NewPipeline(&fakeStage{name: "s"}), WithHostClock(clockAt(0, 16)))
	ctx, cancel := context.WithCancel(context.Background())
	h.ctx = ctx

	if err := h.Update(); err != nil {
		t.Fatalf("Update = %v", err)
	}
	cancel()
	if err := h.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update after cancel = %v, want ebiten.Termination", err)
	}
}

func TestHostUpdateReturnsClockRegression(t *testing.T) {
	h := NewHost(NewScene(), NewPipeline(&fakeStage{name: "s"}), WithHostClock(clockAt(10, 0)))
	_ = h.Update()
	if err := h.Update(); !errors.Is(err, ErrClockRegression) {
		t.Errorf("Update = %v, want ErrClockRegression", err)
	}
}

func TestHostDrawRunsPipeline(t *testing.T) {
	scene := NewScene()
	var dt time.Duration = -1
	scene.Root().OnUpdate = func(d time.Duration) { dt = d }
	stage := &fakeStage{name: "s", err: errors.New("boom")}
	h := NewHost(scene, NewPipeline(stage), WithHostClock(clockAt(0)))

	screen := ebiten.NewImage(4, 4)
	_ = h.Update()
	h.Draw(screen)
	if dt != 0 {
		t.Errorf("first update dt = %v, want 0", dt)
	}
	if len(stage.frames) != 1 || stage.dst != screen {
		t.Error("Draw should render into the screen")
	}
}

func TestRunConfigDefaults(t *testing.T) {
	c := RunConfig{}.withDefaults()
	if c.Title != "garden" || c.Width != 800 || c.Height != 600 {
		t.Errorf("defaults = %+v", c)
	}
	c = RunConfig{Title: "x", Width: 10, Height: 20}.withDefaults()
	if c.Title != "x" || c.Width != 10 || c.Height != 20 {
		t.Errorf("explicit values overwritten: %+v", c)
	}
}

func TestHostUpdateSurvivesHookPanic(t *testing.T) {
	scene := NewScene()
	calls := 0
	scene.Root().OnUpdate = func(time.Duration) {
		calls++
		if calls == 1 {
			panic("hook failed")
		}
	}
	h := NewHost(scene, NewPipeline(&fakeStage{name: "s"}), WithHostClock(clockAt(0, 16)))
	if err := h.Update(); err != nil {
		t.Fatalf("Update = %v, want nil so the game keeps running", err)
	}
	if err := h.Update(); err != nil {
		t.Fatalf("second Update = %v", err)
	}
	if calls != 2 {
		t.Errorf("hook calls = %d, want 2", calls)
	}
}

func TestHostDrawSurvivesStagePanic(t *testing.T) {
	stage := &panicStage{at: map[uint64]bool{0: true}}
	h := NewHost(NewScene(), NewPipeline(stage), WithHostClock(clockAt(0, 16)))
	_ = h.Update()
	h.Draw(nil)
	_ = h.Update()
	h.Draw(nil)
	if stage.renders != 1 {
		t.Errorf("renders = %d, want 1", stage.renders)
	}
}

func TestHostConfigureFrameStatsFollowShowFPS(t *testing.T) {
	h := NewHost(NewScene(), NewPipeline(&fakeStage{name: "s"}))
	h.configure(context.Background(), RunConfig{ShowFPS: false}.withDefaults())
	if h.stats != nil || h.sched.perf != nil {
		t.Error("hidden overlay should leave ticks unbracketed")
	}

	h = NewHost(NewScene(), NewPipeline(&fakeStage{name: "s"}))
	h.configure(context.Background(), RunConfig{ShowFPS: true}.withDefaults())
	if h.stats == nil || h.sched.perf != PerfCounter(h.stats) {
		t.Error("shown overlay should install frame stats as the perf counter")
	}
}
