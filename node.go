package garden

import "time"

// nodeIDCounter is a plain counter (no atomic; garden is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
//
// A node takes part in update and resize broadcasts through optional
// capabilities: the OnUpdate and OnResized callbacks, or a Behavior value
// implementing Updater and/or Resizer. Nodes without a capability are skipped.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	Position Vec3
	Rotation Vec3 // XYZ Euler angles in radians
	Scale    Vec3

	// Visibility
	Visible bool

	// Appearance
	Color     Color
	BlendMode BlendMode
	// Lit nodes are tinted by the scene's ambient light.
	Lit bool

	// Points fields (NodeTypePoints)
	Points []Vec3
	// PointSize is the point diameter in world units when SizeAttenuation is
	// set, or in pixels otherwise.
	PointSize       float32
	SizeAttenuation bool

	// Lines fields (NodeTypeLines). Consecutive pairs form one segment.
	Segments  []Vec3
	LineWidth float32

	// Metadata
	UserData any

	// Capabilities (nil by default; zero cost when unused)
	OnUpdate  func(dt time.Duration)
	OnResized func(w, h int)
	// Behavior is consulted when the matching callback field is nil.
	Behavior any

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = Vec3{1, 1, 1}
	n.Color = ColorWhite
	n.Visible = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewPoints creates a point cloud node. Points are drawn as screen-aligned
// squares whose size shrinks with distance.
func NewPoints(name string, points []Vec3, size float32, c Color) *Node {
	n := &Node{
		Name:            name,
		Type:            NodeTypePoints,
		Points:          points,
		PointSize:       size,
		SizeAttenuation: true,
	}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewLines creates a line-segment node. segments must hold an even number of
// vertices; a trailing unpaired vertex is ignored.
func NewLines(name string, segments []Vec3, c Color) *Node {
	n := &Node{
		Name:      name,
		Type:      NodeTypeLines,
		Segments:  segments,
		LineWidth: 1,
	}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewAmbientLight creates a light that uniformly tints every Lit node.
func NewAmbientLight(name string, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypeLight}
	nodeDefaults(n)
	n.Color = c
	return n
}

// LocalTransform returns the node's local transform matrix.
func (n *Node) LocalTransform() Mat4 {
	return Compose(n.Position, n.Rotation, n.Scale)
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.insertChild(child, len(n.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	n.insertChild(child, index)
}

func (n *Node) insertChild(child *Node, index int) {
	if child == nil {
		panic("garden: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("garden: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("garden: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	// Re-adding an existing child shortens the list by one.
	if index > len(n.children) {
		index = len(n.children)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("garden: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindChild returns the first descendant (pre-order) with the given name, or nil.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
		if found := c.FindChild(name); found != nil {
			return found
		}
	}
	return nil
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Points = nil
	n.Segments = nil
	n.UserData = nil
	n.OnUpdate = nil
	n.OnResized = nil
	n.Behavior = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
