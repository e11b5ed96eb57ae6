package garden

import "time"

// EventSink is the interface for optional ECS integration.
// When set on a Scene, frame and resize events are forwarded to it after
// the matching broadcast completes.
type EventSink interface {
	EmitFrame(event FrameEvent)
	EmitResize(event ResizeEvent)
}

// FrameEvent describes one completed update broadcast.
type FrameEvent struct {
	Index       uint64
	Delta       time.Duration
	Invocations int // number of update hooks that ran
}

// ResizeEvent describes one completed resize broadcast.
type ResizeEvent struct {
	Width, Height int
	Invocations   int // number of resized hooks that ran in the tree
}

// Scene is the top-level object that owns the node tree and the camera.
// The camera is not part of the tree.
type Scene struct {
	root   *Node
	Camera *Camera

	// ClearColor fills the scene pass target before anything is drawn.
	ClearColor Color

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	sink  EventSink
	debug bool

	screenshotQueue []string
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	return &Scene{
		root:          NewContainer("root"),
		ClearColor:    Color{0, 0, 0, 1},
		ScreenshotDir: "screenshots",
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// SetEventSink sets the optional ECS bridge. Pass nil to detach.
func (s *Scene) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene.
var globalDebug bool

// ambient sums the colors of every visible light in the tree.
func (s *Scene) ambient() Color {
	var c Color
	found := false
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible || n.disposed {
			return
		}
		if n.Type == NodeTypeLight {
			c.R += n.Color.R * n.Color.A
			c.G += n.Color.G * n.Color.A
			c.B += n.Color.B * n.Color.A
			found = true
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(s.root)
	if !found {
		return ColorWhite
	}
	c.A = 1
	return c
}
