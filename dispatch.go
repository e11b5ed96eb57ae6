package garden

import "time"

// Updater is the optional per-frame capability of a Node's Behavior.
type Updater interface {
	Update(dt time.Duration)
}

// Resizer is the optional viewport-change capability of a Node's Behavior
// or of any camera handed to a ViewportTracker.
type Resizer interface {
	Resized(w, h int)
}

// EventKind identifies which capability a broadcast targets.
type EventKind uint8

const (
	EventUpdate  EventKind = iota // calls update(Delta)
	EventResized                  // calls resized(Width, Height)
)

func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventResized:
		return "resized"
	default:
		return "unknown"
	}
}

// Event is one broadcast payload. Only the fields of its Kind are meaningful.
type Event struct {
	Kind          EventKind
	Delta         time.Duration
	Width, Height int
}

// UpdateEvent returns an update broadcast carrying dt.
func UpdateEvent(dt time.Duration) Event {
	return Event{Kind: EventUpdate, Delta: dt}
}

// ResizedEvent returns a resized broadcast carrying the new viewport size.
func ResizedEvent(w, h int) Event {
	return Event{Kind: EventResized, Width: w, Height: h}
}

// updateHook returns the node's update capability, or nil if absent.
func (n *Node) updateHook() func(time.Duration) {
	if n.OnUpdate != nil {
		return n.OnUpdate
	}
	if u, ok := n.Behavior.(Updater); ok {
		return u.Update
	}
	return nil
}

// resizedHook returns the node's resized capability, or nil if absent.
func (n *Node) resizedHook() func(int, int) {
	if n.OnResized != nil {
		return n.OnResized
	}
	if r, ok := n.Behavior.(Resizer); ok {
		return r.Resized
	}
	return nil
}

// invoke calls the capability matching ev on n. Reports whether one existed.
func (n *Node) invoke(ev Event) bool {
	switch ev.Kind {
	case EventUpdate:
		if fn := n.updateHook(); fn != nil {
			fn(ev.Delta)
			return true
		}
	case EventResized:
		if fn := n.resizedHook(); fn != nil {
			fn(ev.Width, ev.Height)
			return true
		}
	}
	return false
}

// Dispatcher walks a node tree and invokes the capability named by an Event
// on every node that has it. The zero value is ready to use; reusing one
// Dispatcher keeps its traversal stack allocated across frames.
type Dispatcher struct {
	stack []*Node
}

// Broadcast visits root and its descendants in pre-order (a parent before its
// children, siblings in stored order) and invokes ev's capability on each node
// that exposes it. Nodes without it are skipped silently. Disposed nodes and
// their subtrees are not visited. Returns the number of invocations.
func (d *Dispatcher) Broadcast(root *Node, ev Event) int {
	if root == nil {
		return 0
	}
	calls := 0
	d.stack = append(d.stack[:0], root)
	for len(d.stack) > 0 {
		last := len(d.stack) - 1
		n := d.stack[last]
		d.stack[last] = nil
		d.stack = d.stack[:last]

		if n.disposed {
			continue
		}
		if n.invoke(ev) {
			calls++
		}
		// Push in reverse so the first child is popped next.
		for i := len(n.children) - 1; i >= 0; i-- {
			d.stack = append(d.stack, n.children[i])
		}
	}
	return calls
}

// Broadcast is a convenience wrapper around a throwaway Dispatcher.
func Broadcast(root *Node, ev Event) int {
	var d Dispatcher
	return d.Broadcast(root, ev)
}

// resizeTarget resolves the resized capability of an arbitrary value: a
// *Node's hook, a Resizer, or a bare func(w, h int). Returns nil if absent.
func resizeTarget(v any) func(int, int) {
	switch t := v.(type) {
	case nil:
		return nil
	case *Node:
		if t == nil {
			return nil
		}
		return t.resizedHook()
	case *Camera:
		if t == nil {
			return nil
		}
		return t.Resized
	case Resizer:
		return t.Resized
	case func(int, int):
		return t
	default:
		return nil
	}
}
