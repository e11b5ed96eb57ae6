package garden

import (
	"testing"
	"time"
)

// --- Constructor defaults ---

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %v, want %v", n.Type, typ)
	}
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if !n.Visible {
		t.Error("Visible should default to true")
	}
	if n.Scale != (Vec3{1, 1, 1}) {
		t.Errorf("Scale = %v, want {1 1 1}", n.Scale)
	}
	if n.OnUpdate != nil || n.OnResized != nil || n.Behavior != nil {
		t.Error("capabilities should default to nil")
	}
}

func TestNewContainerDefaults(t *testing.T) {
	n := NewContainer("test")
	assertNodeDefaults(t, n, "test", NodeTypeContainer)
	if n.Color != ColorWhite {
		t.Errorf("Color = %v, want white", n.Color)
	}
}

func TestNewPointsDefaults(t *testing.T) {
	pts := []Vec3{{1, 2, 3}}
	c := ColorFromHex(0xAAAAAA)
	n := NewPoints("cloud", pts, 2, c)
	assertNodeDefaults(t, n, "cloud", NodeTypePoints)
	if len(n.Points) != 1 || n.PointSize != 2 || !n.SizeAttenuation {
		t.Errorf("points fields = %d, %v, %v", len(n.Points), n.PointSize, n.SizeAttenuation)
	}
	if n.Color != c {
		t.Errorf("Color = %v, want %v", n.Color, c)
	}
}

func TestNewLinesDefaults(t *testing.T) {
	n := NewLines("lines", []Vec3{{}, {1, 0, 0}}, ColorWhite)
	assertNodeDefaults(t, n, "lines", NodeTypeLines)
	if n.LineWidth != 1 {
		t.Errorf("LineWidth = %v, want 1", n.LineWidth)
	}
}

func TestNewAmbientLightDefaults(t *testing.T) {
	n := NewAmbientLight("ambient", ColorFromHex(0xCCCCCC))
	assertNodeDefaults(t, n, "ambient", NodeTypeLight)
}

func TestUniqueIDs(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewPoints("c", nil, 1, ColorWhite)
	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Errorf("IDs should be unique: %d, %d, %d", a.ID, b.ID, c.ID)
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", parent.NumChildren())
	}
	if parent.ChildAt(0) != child {
		t.Error("ChildAt(0) should be child")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")

	p1.AddChild(child)
	p2.AddChild(child)
	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if p2.NumChildren() != 1 {
		t.Error("p2 should have 1 child")
	}
	if child.Parent != p2 {
		t.Error("child.Parent should be p2")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	grandchild.AddChild(parent)
}

func TestAddChildSelfPanic(t *testing.T) {
	n := NewContainer("self")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for self-add, got none")
		}
	}()
	n.AddChild(n)
}

func TestAddChildNilPanic(t *testing.T) {
	n := NewContainer("n")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	n.AddChild(nil)
}

// --- AddChildAt ---

func TestAddChildAt(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	parent.AddChild(a)
	parent.AddChild(c)
	parent.AddChildAt(b, 1)

	for i, want := range []*Node{a, b, c} {
		if parent.ChildAt(i) != want {
			t.Errorf("ChildAt(%d) = %q, want %q", i, parent.ChildAt(i).Name, want.Name)
		}
	}
}

func TestAddChildAtOutOfRangeKeepsParent(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for bad index, got none")
			}
		}()
		p2.AddChildAt(child, 5)
	}()
	if child.Parent != p1 || p1.NumChildren() != 1 {
		t.Error("failed insert should leave the child with its old parent")
	}
}

func TestAddChildAtReorderSameParent(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChildAt(a, 2)

	if parent.NumChildren() != 2 {
		t.Fatalf("NumChildren = %d, want 2", parent.NumChildren())
	}
	if parent.ChildAt(0) != b || parent.ChildAt(1) != a {
		t.Error("a should move after b")
	}
}

// --- Remove ---

func TestRemoveChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.RemoveChild(child)

	if child.Parent != nil {
		t.Error("child.Parent should be nil")
	}
	if parent.NumChildren() != 0 {
		t.Error("parent should have no children")
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveFromParentNoOp(t *testing.T) {
	n := NewContainer("n")
	n.RemoveFromParent()
	if n.Parent != nil {
		t.Error("Parent should stay nil")
	}
}

// --- FindChild ---

func TestFindChildPreOrder(t *testing.T) {
	root := NewContainer("root")
	a := NewContainer("a")
	deep := NewContainer("target")
	b := NewContainer("target")
	root.AddChild(a)
	a.AddChild(deep)
	root.AddChild(b)

	if got := root.FindChild("target"); got != deep {
		t.Error("FindChild should return the first match in pre-order")
	}
	if got := root.FindChild("missing"); got != nil {
		t.Errorf("FindChild(missing) = %v, want nil", got)
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	root := NewContainer("root")
	parent := NewContainer("parent")
	child := NewContainer("child")
	root.AddChild(parent)
	parent.AddChild(child)
	parent.OnUpdate = func(dt time.Duration) {}

	parent.Dispose()

	if !parent.IsDisposed() || !child.IsDisposed() {
		t.Error("parent and child should be disposed")
	}
	if parent.ID != 0 || child.ID != 0 {
		t.Error("disposed nodes should have ID = 0")
	}
	if parent.OnUpdate != nil {
		t.Error("disposed node should drop its capabilities")
	}
	if root.NumChildren() != 0 {
		t.Error("root should have 0 children after dispose")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	n := NewContainer("n")
	n.Dispose()
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("should still be disposed")
	}
}

// --- Transform ---

func TestLocalTransformTranslates(t *testing.T) {
	n := NewContainer("n")
	n.Position = Vec3{1, 2, 3}
	p := n.LocalTransform().MulPoint(Vec3{})
	if !approxEqual(p.X, 1) || !approxEqual(p.Y, 2) || !approxEqual(p.Z, 3) {
		t.Errorf("origin maps to %v, want {1 2 3}", p)
	}
}
