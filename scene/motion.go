package scene

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultBound is the half size of the cube moving nodes bounce in.
const DefaultBound = 5

// MovingNode drifts and spins a node at constant speed.
type MovingNode struct {
	Node          Node
	Velocity      mgl32.Vec3
	RotationSpeed mgl32.Vec3
}

// NewMovingNode jitters the start position of n and draws its velocity and
// rotation speed from rng.
func NewMovingNode(n Node, rng *rand.Rand) *MovingNode {
	jitter := func(scale float32) float32 {
		return (rng.Float32() - 0.5) * scale
	}
	p := &n.Transform().Position
	p[0] += jitter(1.2)
	p[1] += jitter(1.0)
	p[2] += jitter(0.9)
	return &MovingNode{
		Node:          n,
		Velocity:      mgl32.Vec3{jitter(0.01), jitter(0.02), jitter(0.02)},
		RotationSpeed: mgl32.Vec3{jitter(0.02), jitter(0.01), jitter(0.02)},
	}
}

// MotionController advances moving nodes one tick at a time.
type MotionController struct {
	Bound float32
	Nodes []*MovingNode
}

// NewMotionController returns a controller with the default bound.
func NewMotionController() *MotionController {
	return &MotionController{Bound: DefaultBound}
}

// Add registers nodes.
func (c *MotionController) Add(nodes ...*MovingNode) {
	c.Nodes = append(c.Nodes, nodes...)
}

// Advance moves every node by its velocity and rotation speed. A position
// component outside the bound reverses that velocity component for the next
// tick. Positions are never clamped.
func (c *MotionController) Advance() {
	for _, m := range c.Nodes {
		t := m.Node.Transform()
		t.Position = t.Position.Add(m.Velocity)
		t.Rotation = t.Rotation.Add(m.RotationSpeed)
		for i := 0; i < 3; i++ {
			if t.Position[i] > c.Bound || t.Position[i] < -c.Bound {
				m.Velocity[i] = -m.Velocity[i]
			}
		}
	}
}
