// Package scene holds the explicit scene graph the visualizer mutates each
// frame and from device messages.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is one of *Group, *Mesh, *Light or *Bone.
type Node interface {
	Name() string
	Transform() *Transform
	Children() []Node
	Add(children ...Node)
}

// Transform is a position, Euler rotation (XYZ order) and scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes translation, rotation and scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	m = m.Mul4(mgl32.HomogRotate3DX(t.Rotation.X()))
	m = m.Mul4(mgl32.HomogRotate3DY(t.Rotation.Y()))
	m = m.Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z()))
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

type node struct {
	name      string
	transform Transform
	children  []Node
}

func newNode(name string) node {
	return node{name: name, transform: NewTransform()}
}

func (n *node) Name() string          { return n.name }
func (n *node) Transform() *Transform { return &n.transform }
func (n *node) Children() []Node      { return n.children }

func (n *node) Add(children ...Node) {
	n.children = append(n.children, children...)
}

// Group only holds children.
type Group struct {
	node
}

// NewGroup returns an empty group.
func NewGroup(name string) *Group {
	return &Group{node: newNode(name)}
}

// Bone is a skeleton joint. Animations move it like any other node.
type Bone struct {
	node
}

// NewBone returns a bone.
func NewBone(name string) *Bone {
	return &Bone{node: newNode(name)}
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// WalkWorld is Walk with the accumulated world matrix of each node.
func WalkWorld(n Node, parent mgl32.Mat4, fn func(Node, mgl32.Mat4)) {
	if n == nil {
		return
	}
	world := parent.Mul4(n.Transform().Matrix())
	fn(n, world)
	for _, c := range n.Children() {
		WalkWorld(c, world, fn)
	}
}

// Find returns the first node named name below root.
func Find(root Node, name string) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Meshes collects every mesh below root.
func Meshes(root Node) []*Mesh {
	var out []*Mesh
	Walk(root, func(n Node) bool {
		if m, ok := n.(*Mesh); ok {
			out = append(out, m)
		}
		return true
	})
	return out
}
