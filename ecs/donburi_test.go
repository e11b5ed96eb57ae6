package ecs

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/phanxgames/garden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	require.NotNil(t, sink)
	assert.True(t, world.Valid(sink.Entity()))
	assert.Equal(t, FrameState{}, sink.State())
}

func TestDonburiSink_EmitFrame(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []garden.FrameEvent
	FrameEventType.Subscribe(world, func(w donburi.World, e garden.FrameEvent) {
		received = append(received, e)
	})

	sink.EmitFrame(garden.FrameEvent{Index: 0, Delta: 0, Invocations: 2})
	sink.EmitFrame(garden.FrameEvent{Index: 1, Delta: 16 * time.Millisecond, Invocations: 2})

	// Events are queued until processed.
	assert.Empty(t, received)
	FrameEventType.ProcessEvents(world)

	require.Len(t, received, 2)
	assert.Equal(t, uint64(1), received[1].Index)
	assert.Equal(t, 16*time.Millisecond, received[1].Delta)

	st := sink.State()
	assert.Equal(t, uint64(1), st.Frame)
	assert.Equal(t, 16*time.Millisecond, st.Elapsed)
}

func TestDonburiSink_EmitResize(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var got garden.ResizeEvent
	ResizeEventType.Subscribe(world, func(w donburi.World, e garden.ResizeEvent) {
		got = e
	})

	sink.EmitResize(garden.ResizeEvent{Width: 800, Height: 600, Invocations: 1})
	events.ProcessAllEvents(world)

	assert.Equal(t, 800, got.Width)
	assert.Equal(t, 600, got.Height)
	st := sink.State()
	assert.Equal(t, 800, st.Width)
	assert.Equal(t, 600, st.Height)
}

func TestDonburiSink_WithScheduler(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	scene := garden.NewScene()
	scene.SetEventSink(sink)

	base := time.Unix(0, 0)
	ticks := []time.Time{base, base.Add(10 * time.Millisecond)}
	i := 0
	clock := garden.ClockFunc(func() time.Time {
		t := ticks[min(i, len(ticks)-1)]
		i++
		return t
	})
	s := garden.NewScheduler(garden.NewPipeline(), garden.WithClock(clock))
	s.SetScene(scene)

	require.NoError(t, s.Update())
	require.NoError(t, s.Update())

	var count int
	FrameEventType.Subscribe(world, func(donburi.World, garden.FrameEvent) { count++ })
	events.ProcessAllEvents(world)
	assert.Equal(t, 2, count)
	assert.Equal(t, 10*time.Millisecond, sink.State().Elapsed)
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	ResizeEventType.Subscribe(world, func(donburi.World, garden.ResizeEvent) { count1++ })
	ResizeEventType.Subscribe(world, func(donburi.World, garden.ResizeEvent) { count2++ })

	sink.EmitResize(garden.ResizeEvent{Width: 1, Height: 1})
	events.ProcessAllEvents(world)

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestDonburiSink_ProcessDrainsQueue(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var frames int
	FrameEventType.Subscribe(world, func(donburi.World, garden.FrameEvent) { frames++ })

	for i := range 3 {
		sink.EmitFrame(garden.FrameEvent{Index: uint64(i)})
	}
	sink.Process()
	assert.Equal(t, 3, frames)

	// Already-delivered events are not delivered again.
	sink.Process()
	assert.Equal(t, 3, frames)
}

func TestSpinSystem(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	RegisterSpinSystem(world)

	node := garden.NewContainer("cloud")
	e := AddSpin(world, node, 2)

	sink.EmitFrame(garden.FrameEvent{Index: 0, Delta: 500 * time.Millisecond})
	assert.Equal(t, float32(0), node.Rotation.Y, "nothing moves before Process")
	sink.Process()
	assert.InDelta(t, 1.0, node.Rotation.Y, 1e-6)

	node.Dispose()
	sink.EmitFrame(garden.FrameEvent{Index: 1, Delta: time.Second})
	sink.Process()
	assert.False(t, world.Valid(e), "spin entity of a disposed node is removed")
}

func TestSpinSystem_WithScheduler(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	RegisterSpinSystem(world)

	scene := garden.NewScene()
	scene.SetEventSink(sink)
	node := garden.NewContainer("cloud")
	scene.Root().AddChild(node)
	AddSpin(world, node, 1)
	// Deliver the previous tick's events at the start of each broadcast.
	scene.Root().OnUpdate = func(time.Duration) { sink.Process() }

	base := time.Unix(0, 0)
	ticks := []time.Time{base, base.Add(250 * time.Millisecond), base.Add(500 * time.Millisecond)}
	i := 0
	clock := garden.ClockFunc(func() time.Time {
		t := ticks[min(i, len(ticks)-1)]
		i++
		return t
	})
	s := garden.NewScheduler(garden.NewPipeline(), garden.WithClock(clock))
	s.SetScene(scene)
	for range 3 {
		require.NoError(t, s.Update())
	}
	// Ticks 0 and 1 have been delivered; tick 2 is still queued.
	assert.InDelta(t, 0.25, node.Rotation.Y, 1e-6)
	sink.Process()
	assert.InDelta(t, 0.5, node.Rotation.Y, 1e-6)
}

func TestResizeLog(t *testing.T) {
	var buf bytes.Buffer
	garden.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { garden.SetLogger(nil) })

	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	RegisterResizeLog(world)

	sink.EmitResize(garden.ResizeEvent{Width: 640, Height: 480})
	sink.Process()
	assert.Contains(t, buf.String(), "viewport resized")
	assert.Contains(t, buf.String(), "width=640")
}
