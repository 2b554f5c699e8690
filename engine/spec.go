package engine

import (
	"fmt"
	"regexp"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/peragwin/vuzicscene/deform"
	"github.com/peragwin/vuzicscene/scene"
)

// MaterialSpec overrides a mesh material. Zero colors are left alone.
type MaterialSpec struct {
	Color             uint32  `toml:"color"`
	Emissive          uint32  `toml:"emissive"`
	EmissiveIntensity float32 `toml:"emissive_intensity"`
	Opacity           float32 `toml:"opacity"`
	Transparent       bool    `toml:"transparent"`
	Wireframe         bool    `toml:"wireframe"`
}

func (ms *MaterialSpec) apply(m *scene.Material) {
	if ms.Color != 0 {
		m.Color = scene.Hex(ms.Color)
	}
	if ms.Emissive != 0 {
		m.Emissive = scene.Hex(ms.Emissive)
	}
	m.EmissiveIntensity = ms.EmissiveIntensity
	m.Opacity = ms.Opacity
	m.Transparent = ms.Transparent
	m.Wireframe = ms.Wireframe
}

// TargetSpec names the meshes of a model a handler can select.
type TargetSpec struct {
	Set     string `toml:"set"`
	Pattern string `toml:"pattern"`
	Hidden  bool   `toml:"hidden"`
}

// Animation modes
const (
	AnimationsPaused = "paused"
	AnimationsRepeat = "repeat"
	AnimationsNone   = "none"
)

// ModelSpec describes a model to load and how it takes part in each frame.
type ModelSpec struct {
	Name string `toml:"name"`
	// Path of a .glb/.gltf file. Empty with Sphere > 0 builds a sphere.
	Path   string  `toml:"path"`
	Sphere float32 `toml:"sphere"`

	Position [3]float32 `toml:"position"`
	Rotation [3]float32 `toml:"rotation"`
	Scale    [3]float32 `toml:"scale"`

	// Deform is a strategy name, or empty to leave geometry alone.
	Deform     string  `toml:"deform"`
	Multiplier float32 `toml:"multiplier"`
	// Moving makes every direct child drift and bounce.
	Moving bool `toml:"moving"`
	// Spin rotates the model each tick.
	Spin       bool   `toml:"spin"`
	Animations string `toml:"animations"`

	Material  *MaterialSpec           `toml:"material"`
	Overrides map[string]MaterialSpec `toml:"overrides"`
	Targets   []TargetSpec            `toml:"targets"`
}

func (ms *ModelSpec) strategy() (deform.Strategy, bool, error) {
	if ms.Deform == "" {
		return 0, false, nil
	}
	st, err := deform.ParseStrategy(ms.Deform)
	return st, err == nil, err
}

func (ms *ModelSpec) transform(t *scene.Transform) {
	t.Position = mgl32.Vec3(ms.Position)
	t.Rotation = mgl32.Vec3(ms.Rotation)
	if ms.Scale != ([3]float32{}) {
		t.Scale = mgl32.Vec3(ms.Scale)
	}
}

func (ms *ModelSpec) patterns() (map[string]*regexp.Regexp, error) {
	out := make(map[string]*regexp.Regexp, len(ms.Targets))
	for _, ts := range ms.Targets {
		re, err := regexp.Compile(ts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("target set %q: %w", ts.Set, err)
		}
		out[ts.Set] = re
	}
	return out, nil
}
