package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Orbit moves a node on an ellipse with a vertical wobble.
type Orbit struct {
	Target Node
	Radius float32
	Height float32
}

// Update places the target for elapsed time t.
func (o *Orbit) Update(t float32) {
	o.Target.Transform().Position = mgl32.Vec3{
		o.Radius * math32.Cos(t*0.2),
		o.Height + math32.Sin(t*0.8),
		o.Radius * math32.Sin(t*0.15),
	}
}

// Oscillator moves a node around a center on three sinusoids.
type Oscillator struct {
	Target    Node
	Center    mgl32.Vec3
	Amplitude float32
}

// Update places the target for elapsed time t.
func (o *Oscillator) Update(t float32) {
	o.Target.Transform().Position = mgl32.Vec3{
		o.Center.X() + o.Amplitude*math32.Sin(t*0.8),
		o.Center.Y() + o.Amplitude*math32.Cos(t*0.7),
		o.Center.Z() + o.Amplitude*math32.Sin(t*0.9),
	}
}

// Spin rotates a node about Y by a fixed amount per tick.
type Spin struct {
	Target Node
	Speed  float32
}

// Update advances the rotation by one tick.
func (s *Spin) Update() {
	s.Target.Transform().Rotation[1] += s.Speed
}
