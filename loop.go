package garden

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Refresher paces the loop. Next blocks until the next display refresh or
// until ctx is done.
type Refresher interface {
	Next(ctx context.Context) error
}

// TickerRefresher paces ticks at a fixed rate. It stands in for a display
// refresh signal when running without a window.
type TickerRefresher struct {
	t *time.Ticker
}

// NewTickerRefresher creates a refresher firing hz times per second.
// hz <= 0 defaults to 60.
func NewTickerRefresher(hz int) *TickerRefresher {
	if hz <= 0 {
		hz = 60
	}
	return &TickerRefresher{t: time.NewTicker(time.Second / time.Duration(hz))}
}

// Next waits for the next tick or for ctx to be done.
func (r *TickerRefresher) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.t.C:
		return nil
	}
}

// Stop releases the underlying ticker.
func (r *TickerRefresher) Stop() {
	r.t.Stop()
}

// Loop drives a Scheduler from a Refresher, one tick per refresh. Ticks never
// overlap: the next one is requested only after the previous returned.
type Loop struct {
	sched     *Scheduler
	refresher Refresher
	stopped   atomic.Bool
}

// NewLoop creates a loop ticking s each time r fires.
func NewLoop(s *Scheduler, r Refresher) *Loop {
	return &Loop{sched: s, refresher: r}
}

// Stop ends Run after the tick in progress. Safe to call from any goroutine.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Run ticks until ctx is done, Stop is called, or the clock regresses.
// Any other failure, including a panic inside a tick, is logged and the loop
// moves on to the next tick.
func (l *Loop) Run(ctx context.Context, display *ebiten.Image) error {
	for !l.stopped.Load() {
		if err := l.refresher.Next(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if l.stopped.Load() {
			return nil
		}
		if err := l.tick(display); err != nil {
			if errors.Is(err, ErrClockRegression) {
				return err
			}
			Logger().Warn("frame failed", "frame", l.sched.Frame().Index, "err", err)
		}
	}
	return nil
}

// tick runs one scheduler tick, turning a panic that escaped it into an
// error.
func (l *Loop) tick(display *ebiten.Image) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.sched.endPerf()
			err = fmt.Errorf("garden: tick panicked: %v", r)
		}
	}()
	return l.sched.Tick(display)
}
