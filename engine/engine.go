// Package engine runs the per-frame pipeline over the scene.
package engine

import (
	"context"
	"math/rand"

	"github.com/golang/glog"

	"github.com/peragwin/vuzicscene/audio/sensors/features"
	"github.com/peragwin/vuzicscene/contour"
	"github.com/peragwin/vuzicscene/control"
	"github.com/peragwin/vuzicscene/deform"
	"github.com/peragwin/vuzicscene/scene"
)

// Frame is what the last tick extracted from audio.
type Frame struct {
	Elapsed    float32
	Time       float32
	Amplitudes deform.Amplitudes
	Waveform   []float32
	// Bands of the primary tap, feeding A2 when there is no secondary.
	Bands []float64
}

type deformable struct {
	mesh *scene.Mesh
	// fixed meshes keep their own multiplier instead of the automated one.
	fixed bool
	// palette meshes take their colors from the scene palette.
	palette bool
}

// Engine owns the frame pipeline. Tick runs the stages in a fixed order
// under the scene lock.
type Engine struct {
	Scene      *scene.Scene
	Automation *control.Automation
	// Primary and Secondary are the taps features are read from. Either may
	// stay empty for the whole run.
	Primary   features.Slot
	Secondary features.Slot

	Contours []*contour.Contour
	Orbit    *scene.Orbit
	Camera   *scene.Oscillator

	rng        *rand.Rand
	extractor  *features.Extractor
	extractor2 *features.Extractor
	installers []scene.Installer
	deformable []deformable
	morphOnly  []*scene.Mesh
	spins      []*scene.Spin
	simplex    *deform.SimplexField
	frame      Frame
	applied    control.Parameters
	debugAt    float32
}

// New returns an engine over s. resolution is the waveform length used
// before audio is connected.
func New(s *scene.Scene, a *control.Automation, resolution int, seed int64) *Engine {
	return &Engine{
		Scene:      s,
		Automation: a,
		rng:        rand.New(rand.NewSource(seed)),
		extractor:  features.NewExtractor(resolution),
		extractor2: features.NewExtractor(resolution),
		simplex:    deform.NewSimplexField(seed),
		applied:    a.Snapshot(),
	}
}

// LoadModel starts loading spec and installs it on the first tick after it
// resolves.
func (e *Engine) LoadModel(ctx context.Context, spec ModelSpec) {
	name := spec.Path
	if name == "" {
		name = spec.Name
	}
	asset := scene.Load(ctx, name, func(ctx context.Context) (*scene.Model, error) {
		if spec.Path == "" {
			return sphereModel(spec.Name, spec.Sphere)
		}
		return scene.LoadModel(ctx, spec.Path)
	})
	e.AddInstaller(scene.Bind(asset, func(m *scene.Model) {
		if err := e.Install(m, spec); err != nil {
			glog.Warningf("installing %s: %v", name, err)
		}
	}))
}

func sphereModel(name string, radius float32) (*scene.Model, error) {
	if radius <= 0 {
		radius = 2
	}
	pos, idx := scene.SphereGeometry(radius, 128, 128)
	m, err := scene.NewMesh(name, pos, idx)
	if err != nil {
		return nil, err
	}
	root := scene.NewGroup(name)
	root.Add(m)
	return &scene.Model{Root: root}, nil
}

// AddInstaller queues an asset for installation.
func (e *Engine) AddInstaller(in scene.Installer) {
	e.Scene.Lock()
	defer e.Scene.Unlock()
	e.installers = append(e.installers, in)
}

// Pending is the number of assets not yet resolved.
func (e *Engine) Pending() int {
	e.Scene.Lock()
	defer e.Scene.Unlock()
	return len(e.installers)
}

// Install adds a loaded model to the scene. The scene lock must be held.
func (e *Engine) Install(m *scene.Model, spec ModelSpec) error {
	st, deforms, err := spec.strategy()
	if err != nil {
		return err
	}
	patterns, err := spec.patterns()
	if err != nil {
		return err
	}

	root := m.Root
	spec.transform(root.Transform())

	for _, mesh := range scene.Meshes(root) {
		if spec.Material != nil {
			spec.Material.apply(&mesh.Material)
		}
		if o, ok := spec.Overrides[mesh.Name()]; ok {
			o.apply(&mesh.Material)
		}
		if deforms {
			e.addDeformable(mesh, st, spec.Multiplier, spec.Material == nil)
		} else if mesh.MorphTargets() != nil {
			e.morphOnly = append(e.morphOnly, mesh)
		}
	}

	for _, ts := range spec.Targets {
		set := scene.NewTargetSet(root, patterns[ts.Set])
		if ts.Hidden {
			set.Each(func(_ string, m *scene.Mesh) { m.Visible = false })
		}
		e.Scene.Targets[ts.Set] = set
		glog.Infof("target set %s: %v", ts.Set, set.Names())
	}

	if spec.Moving {
		for _, c := range root.Children() {
			e.Scene.Motion.Add(scene.NewMovingNode(c, e.rng))
		}
	}
	if spec.Spin {
		e.spins = append(e.spins, &scene.Spin{Target: root})
	}

	for _, clip := range m.Clips {
		switch spec.Animations {
		case AnimationsNone:
		case AnimationsRepeat:
			e.Scene.Actions = append(e.Scene.Actions, scene.NewAction(clip, scene.LoopRepeat))
		default:
			// wait at frame zero for a trigger
			a := scene.NewAction(clip, scene.LoopOnce)
			a.Paused = true
			a.SetTime(0)
			e.Scene.Actions = append(e.Scene.Actions, a)
		}
	}

	e.Scene.Root.Add(root)
	return nil
}

func (e *Engine) addDeformable(m *scene.Mesh, st deform.Strategy, multiplier float32, palette bool) {
	p := deform.DefaultParams
	if multiplier != 0 {
		p.Multiplier = multiplier
	}
	p.Phase = e.rng.Float32() * 10
	m.Geometry.Strategy = st
	m.Geometry.Params = p
	m.Geometry.SetSimplex(e.simplex)
	m.ColorPhase = e.rng.Float64()
	if palette && m.Material.EmissiveIntensity == 0 {
		m.Material.EmissiveIntensity = 1
	}
	e.deformable = append(e.deformable, deformable{
		mesh:    m,
		fixed:   multiplier != 0,
		palette: palette,
	})
}

// Deformables lists the meshes deformed each tick.
func (e *Engine) Deformables() []*scene.Mesh {
	out := make([]*scene.Mesh, len(e.deformable))
	for i, d := range e.deformable {
		out[i] = d.mesh
	}
	return out
}

// Frame returns the features of the last tick. The scene lock must be
// held.
func (e *Engine) Frame() Frame {
	return e.frame
}

// Uniforms returns the shader inputs of a GPU deformed mesh. The scene lock
// must be held.
func (e *Engine) Uniforms(m *scene.Mesh) deform.Uniforms {
	return deform.NewUniforms(e.frame.Time, e.frame.Amplitudes, m.Geometry.Params)
}

// Tick advances the scene to elapsed seconds, dt after the previous tick.
func (e *Engine) Tick(elapsed, dt float32) {
	e.Scene.Lock()
	defer e.Scene.Unlock()

	e.install()
	p := e.Automation.Snapshot()
	e.applyAutomation(p)
	e.extract(elapsed, p)
	e.deform(p)
	e.Scene.Motion.Advance()
	for _, a := range e.Scene.Actions {
		a.Advance(dt)
	}
	e.rigs(elapsed, p)
}

func (e *Engine) install() {
	pending := e.installers[:0]
	for _, in := range e.installers {
		if !in.TryInstall() {
			pending = append(pending, in)
		}
	}
	for i := len(pending); i < len(e.installers); i++ {
		e.installers[i] = nil
	}
	e.installers = pending
}

// applyAutomation pushes post parameters that changed through the API,
// leaving values set by device messages alone otherwise.
func (e *Engine) applyAutomation(p control.Parameters) {
	if p.Damp != e.applied.Damp {
		e.Scene.Post.Set("damp", float32(p.Damp))
	}
	if p.Bloom != e.applied.Bloom {
		e.Scene.Post.Set("bloom", float32(p.Bloom))
	}
	e.applied = p
}

// extract reads each connected tap once. Without a secondary tap the
// per-axis amplitude follows the treble of the primary.
func (e *Engine) extract(elapsed float32, p control.Parameters) {
	primary := e.Primary.Load()
	secondary := e.Secondary.Load()

	e.frame.Elapsed = elapsed
	e.frame.Time = elapsed * float32(p.TimeScale)
	a, bands := e.extractor.Spectrum(primary, p.Bands)
	a2 := features.Treble(bands)
	if secondary != nil {
		a2 = e.extractor2.Amplitude(secondary)
	}
	e.frame.Amplitudes = deform.Amplitudes{A: a, A2: a2}
	e.frame.Bands = bands
	e.frame.Waveform = e.extractor.Waveform(primary)

	if p.Debug && (elapsed-e.debugAt >= 1 || elapsed < e.debugAt) {
		// at most once a second
		e.debugAt = elapsed
		glog.Infof("amplitude %.3f %.3f peak %.3f bands %.2f",
			a, a2, features.Peak(e.frame.Waveform), bands)
	} else if glog.V(3) {
		glog.Infof("amplitude %.3f %.3f peak %.3f", a, a2, features.Peak(e.frame.Waveform))
	}
}

func (e *Engine) deform(p control.Parameters) {
	t := e.frame.Time
	amps := e.frame.Amplitudes
	for _, d := range e.deformable {
		g := d.mesh.Geometry
		g.Params.AxisScale = float32(p.AxisScale)
		if !d.fixed {
			g.Params.Multiplier = float32(p.Multiplier)
		}
		mt := d.mesh.MorphTargets()
		if !g.Update(t, amps) && mt != nil {
			// displaced on the GPU from the morphed base
			g.Reset()
		}
		if mt != nil {
			mt.Apply(g.Positions())
		}
		if d.palette {
			c := e.Scene.Palette.Color(d.mesh.ColorPhase, float64(e.frame.Elapsed))
			d.mesh.Material.Color = c
			d.mesh.Material.Emissive = e.Scene.Palette.Emissive(c, float64(amps.A))
		}
	}
	for _, m := range e.morphOnly {
		m.Geometry.Reset()
		m.MorphTargets().Apply(m.Geometry.Positions())
	}
	for _, c := range e.Contours {
		c.Scale = float32(p.WaveScale)
		c.Update(e.frame.Waveform)
	}
}

func (e *Engine) rigs(elapsed float32, p control.Parameters) {
	if e.Orbit != nil {
		e.Orbit.Update(elapsed)
	}
	if e.Camera != nil {
		e.Camera.Update(elapsed)
	}
	for _, s := range e.spins {
		s.Speed = float32(p.Spin)
		s.Update()
	}
}
