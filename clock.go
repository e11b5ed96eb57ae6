package garden

import (
	"errors"
	"time"
)

// ErrClockRegression is returned when the time source moves backwards between
// two ticks. It indicates an unreliable clock and is not recoverable.
var ErrClockRegression = errors.New("garden: clock moved backwards")

// Clock is the scheduler's time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Now carries a monotonic reading, so
// deltas between its values never go negative within one process.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }
