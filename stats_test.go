package garden

import (
	"strings"
	"testing"
	"time"
)

// fakeNow returns a clock function advanced by the test.
func fakeNow(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestFrameStatsWindow(t *testing.T) {
	now, advance := fakeNow(time.Unix(0, 0))
	s := &FrameStats{now: now}

	// 30 ticks, each 4ms of work in a 16ms frame: 480ms, still inside the window.
	for i := 0; i < 30; i++ {
		s.Begin()
		advance(4 * time.Millisecond)
		s.End()
		advance(12 * time.Millisecond)
	}
	if s.FPS() != 0 {
		t.Errorf("FPS before the window closes = %v, want 0", s.FPS())
	}

	// Tick 31 ends at 484ms; tick 32 ends at 500ms.
	for i := 0; i < 2; i++ {
		s.Begin()
		advance(4 * time.Millisecond)
		s.End()
		advance(12 * time.Millisecond)
	}
	if got := s.FPS(); got < 63 || got > 65 {
		t.Errorf("FPS = %v, want 64", got)
	}
	assertNear(t, "FrameMS", s.FrameMS(), 4)
	if !strings.Contains(s.String(), "FPS: 64.0") {
		t.Errorf("String = %q", s.String())
	}
}

func TestFrameStatsImplementsPerfCounter(t *testing.T) {
	var _ PerfCounter = NewFrameStats()
}
