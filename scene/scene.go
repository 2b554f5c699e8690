package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Post holds named post-processing parameters, e.g. "damp" and "bloom".
type Post struct {
	values map[string]float32
}

// NewPost returns parameters with the given defaults.
func NewPost(defaults map[string]float32) *Post {
	p := &Post{values: make(map[string]float32, len(defaults))}
	for k, v := range defaults {
		p.values[k] = v
	}
	return p
}

// Set assigns a parameter.
func (p *Post) Set(name string, v float32) {
	p.values[name] = v
}

// Get returns a parameter, or 0.
func (p *Post) Get(name string) float32 {
	return p.values[name]
}

// Scene is the state shared by the frame loop and message handlers. Hold
// the lock while touching anything reachable from it.
type Scene struct {
	sync.Mutex

	Root    *Group
	Camera  *Camera
	Pivot   *Group
	Post    *Post
	Motion  *MotionController
	Actions []*Action
	Lights  map[string]*Light
	Targets map[string]*TargetSet
	Palette *Palette
}

// New returns an empty scene with a camera on a pivot.
func New(camera *Camera) *Scene {
	root := NewGroup("scene")
	pivot := NewGroup("pivot")
	pivot.Add(camera)
	root.Add(pivot)
	return &Scene{
		Root:    root,
		Camera:  camera,
		Pivot:   pivot,
		Post:    NewPost(map[string]float32{"damp": 0.88, "bloom": 1.9}),
		Motion:  NewMotionController(),
		Lights:  make(map[string]*Light),
		Targets: make(map[string]*TargetSet),
		Palette: NewPalette(),
	}
}

// AddLight adds a light under the root and indexes it by name.
func (s *Scene) AddLight(l *Light) {
	s.Root.Add(l)
	s.Lights[l.Name()] = l
}

// MorphMeshes returns every mesh that has morph channels.
func (s *Scene) MorphMeshes() []*Mesh {
	var out []*Mesh
	Walk(s.Root, func(n Node) bool {
		if m, ok := n.(MorphTargeted); ok && m.MorphTargets() != nil {
			out = append(out, n.(*Mesh))
		}
		return true
	})
	return out
}

// ViewProjection combines the camera projection and view.
func (s *Scene) ViewProjection() mgl32.Mat4 {
	parent := s.Pivot.Transform().Matrix()
	return s.Camera.Projection().Mul4(s.Camera.View(parent))
}

// Lighting sums every light's color weighted by its intensity. Surfaces
// carry no normals, so all kinds contribute uniformly; directional and
// point lights are weighted down against ambient.
func (s *Scene) Lighting() mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, l := range s.Lights {
		w := l.Intensity
		if l.Kind != Ambient {
			w *= 0.5
		}
		sum = sum.Add(mgl32.Vec3{float32(l.Color.R), float32(l.Color.G), float32(l.Color.B)}.Mul(w))
	}
	return sum
}
