package ecs

import (
	"time"

	"github.com/phanxgames/garden"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// FrameEventType is the Donburi event type for completed update broadcasts.
var FrameEventType = events.NewEventType[garden.FrameEvent]()

// ResizeEventType is the Donburi event type for completed resizes.
var ResizeEventType = events.NewEventType[garden.ResizeEvent]()

// FrameState is the latest tick and viewport, held by one entity.
type FrameState struct {
	Frame         uint64
	Delta         time.Duration
	Elapsed       time.Duration
	Width, Height int
}

// FrameStateComponent tags the singleton FrameState entity.
var FrameStateComponent = donburi.NewComponentType[FrameState]()

// DonburiSink is a garden.EventSink backed by a Donburi world.
type DonburiSink struct {
	world donburi.World
	state donburi.Entity
}

// NewDonburiSink creates a sink publishing into world. It creates the
// FrameState entity immediately.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{
		world: world,
		state: world.Create(FrameStateComponent),
	}
}

// Entity returns the FrameState entity.
func (s *DonburiSink) Entity() donburi.Entity {
	return s.state
}

// State returns a copy of the current FrameState.
func (s *DonburiSink) State() FrameState {
	return *FrameStateComponent.Get(s.world.Entry(s.state))
}

// EmitFrame implements garden.EventSink.
func (s *DonburiSink) EmitFrame(e garden.FrameEvent) {
	st := FrameStateComponent.Get(s.world.Entry(s.state))
	st.Frame = e.Index
	st.Delta = e.Delta
	st.Elapsed += e.Delta
	FrameEventType.Publish(s.world, e)
}

// EmitResize implements garden.EventSink.
func (s *DonburiSink) EmitResize(e garden.ResizeEvent) {
	st := FrameStateComponent.Get(s.world.Entry(s.state))
	st.Width, st.Height = e.Width, e.Height
	ResizeEventType.Publish(s.world, e)
}

// Process delivers every queued event in the world to its subscribers.
// Published events stay queued until then, so call it once per tick.
func (s *DonburiSink) Process() {
	events.ProcessAllEvents(s.world)
}

var _ garden.EventSink = (*DonburiSink)(nil)

// Spin turns Node about its Y axis at Speed radians per second.
type Spin struct {
	Node  *garden.Node
	Speed float32
}

// SpinComponent holds a Spin.
var SpinComponent = donburi.NewComponentType[Spin]()

var spinQuery = donburi.NewQuery(filter.Contains(SpinComponent))

// AddSpin creates an entity spinning node at speed.
func AddSpin(world donburi.World, node *garden.Node, speed float32) donburi.Entity {
	e := world.Create(SpinComponent)
	SpinComponent.SetValue(world.Entry(e), Spin{Node: node, Speed: speed})
	return e
}

// RegisterSpinSystem subscribes the system that advances every Spin entity
// by each frame event's delta. Entities whose node was disposed are removed.
func RegisterSpinSystem(world donburi.World) {
	FrameEventType.Subscribe(world, spinSystem)
}

func spinSystem(w donburi.World, e garden.FrameEvent) {
	var dead []donburi.Entity
	spinQuery.Each(w, func(entry *donburi.Entry) {
		sp := SpinComponent.Get(entry)
		if sp.Node == nil || sp.Node.IsDisposed() {
			dead = append(dead, entry.Entity())
			return
		}
		sp.Node.Rotation.Y += sp.Speed * float32(e.Delta.Seconds())
	})
	for _, d := range dead {
		w.Remove(d)
	}
}

// RegisterResizeLog subscribes a system logging every viewport change
// through garden's logger.
func RegisterResizeLog(world donburi.World) {
	ResizeEventType.Subscribe(world, logResize)
}

func logResize(_ donburi.World, e garden.ResizeEvent) {
	garden.Logger().Info("viewport resized", "width", e.Width, "height", e.Height, "hooks", e.Invocations)
}
