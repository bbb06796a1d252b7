package scene

import (
	"github.com/Faultbox/orrery/internal/engine/geometry"
	"github.com/Faultbox/orrery/pkg/math"
)

// Node is an element of the scene graph. A node without a Mesh is a pure transform,
// used as a pivot that carries its children around when rotated.
type Node struct {
	Name     string
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	Visible  bool

	// Mesh is drawn with this node's world transform when non-nil.
	Mesh *Mesh

	parent   *Node
	children []*Node
}

// Mesh pairs geometry with the material used to draw it.
type Mesh struct {
	Geometry *geometry.Geometry
	Material *Material
}

// NewNode creates an empty transform node at the origin.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:  true,
	}
}

// NewMesh creates a node that draws geom with mat.
func NewMesh(name string, geom *geometry.Geometry, mat *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: geom, Material: mat}
	return n
}

// Add attaches child to n, detaching it from its previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children.
func (n *Node) Children() []*Node {
	return n.children
}

// RotateX rotates the node about its local X axis by angle radians.
func (n *Node) RotateX(angle float32) {
	n.rotate(math.UnitX, angle)
}

// RotateY rotates the node about its local Y axis by angle radians.
func (n *Node) RotateY(angle float32) {
	n.rotate(math.UnitY, angle)
}

func (n *Node) rotate(axis math.Vec3, angle float32) {
	n.Rotation = n.Rotation.Mul(math.QuatFromAxisAngle(axis, angle)).Normalize()
}

// AngleY returns the accumulated rotation about Y in [0, 2π).
// Only meaningful for nodes that rotate about Y alone.
func (n *Node) AngleY() float64 {
	return n.Rotation.AngleAround(math.UnitY)
}

// LocalMatrix returns translation × rotation × scale.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the transform from local to world space.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.WorldMatrix().Translation()
}

// Traverse calls fn for n and every descendant, parents before children.
// Children of invisible nodes are skipped.
func (n *Node) Traverse(fn func(node *Node, world math.Mat4)) {
	n.traverse(math.Identity(), fn)
}

func (n *Node) traverse(parent math.Mat4, fn func(*Node, math.Mat4)) {
	if !n.Visible {
		return
	}
	world := parent.Mul(n.LocalMatrix())
	fn(n, world)
	for _, c := range n.children {
		c.traverse(world, fn)
	}
}
