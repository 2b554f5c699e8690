package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking at Target. It usually hangs off a
// pivot group so rigs can move it.
type Camera struct {
	node
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
	Target mgl32.Vec3
}

// NewCamera returns a camera with a vertical field of view in degrees.
func NewCamera(fov, aspect, near, far float32) *Camera {
	return &Camera{
		node:   newNode("camera"),
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// SetAspect updates the aspect ratio after a resize.
func (c *Camera) SetAspect(width, height int) {
	if height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Projection is the perspective matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

// View looks from the camera's world position (given its parent's world
// matrix) toward Target.
func (c *Camera) View(parent mgl32.Mat4) mgl32.Mat4 {
	eye := parent.Mul4(c.transform.Matrix()).Col(3).Vec3()
	return mgl32.LookAtV(eye, c.Target, mgl32.Vec3{0, 1, 0})
}
