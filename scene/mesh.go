package scene

import (
	"errors"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/peragwin/vuzicscene/deform"
)

// ErrNoPositions is returned for meshes without a position attribute.
var ErrNoPositions = errors.New("mesh has no positions")

// Material is the part of a surface the pipeline drives.
type Material struct {
	Color             colorful.Color
	Emissive          colorful.Color
	EmissiveIntensity float32
	Opacity           float32
	Transparent       bool
	Wireframe         bool
}

// DefaultMaterial is an opaque white wireframe.
func DefaultMaterial() Material {
	return Material{
		Color:     colorful.Color{R: 1, G: 1, B: 1},
		Opacity:   1,
		Wireframe: true,
	}
}

// Mesh is a drawable node. Its geometry is deformed each frame.
type Mesh struct {
	node
	Geometry *deform.Mesh
	Indices  []uint32
	Material Material
	Visible  bool
	// ColorPhase offsets the mesh color on the palette. It is drawn once at
	// load time.
	ColorPhase float64

	morph *MorphTargets
}

// NewMesh returns a visible mesh over positions.
func NewMesh(name string, positions []float32, indices []uint32) (*Mesh, error) {
	if len(positions) == 0 {
		return nil, ErrNoPositions
	}
	return &Mesh{
		node:     newNode(name),
		Geometry: deform.NewMesh(positions, deform.CPU, deform.Params{}),
		Indices:  indices,
		Material: DefaultMaterial(),
		Visible:  true,
	}, nil
}

// MorphTargets returns the morph channels of the mesh, or nil.
func (m *Mesh) MorphTargets() *MorphTargets {
	return m.morph
}

// SetMorphTargets replaces the morph channels of the mesh.
func (m *Mesh) SetMorphTargets(t *MorphTargets) {
	m.morph = t
}

// LightKind is the type of a Light.
type LightKind int

// Light kinds
const (
	Ambient LightKind = iota
	Directional
	Point
)

// Light illuminates the scene. Directional lights shine from Position to
// the origin.
type Light struct {
	node
	Kind      LightKind
	Color     colorful.Color
	Intensity float32
}

// NewLight returns a light of kind.
func NewLight(name string, kind LightKind, color colorful.Color, intensity float32) *Light {
	return &Light{
		node:      newNode(name),
		Kind:      kind,
		Color:     color,
		Intensity: intensity,
	}
}
