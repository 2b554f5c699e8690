package scene

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Model is a loaded glTF scene.
type Model struct {
	Root  *Group
	Clips []*Clip
}

// LoadModel reads a .glb or .gltf file into a Model. It is meant to run
// inside Load.
func LoadModel(ctx context.Context, path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buildModel(doc, path)
}

type modelBuilder struct {
	doc   *gltf.Document
	nodes map[uint32]Node
	bones map[uint32]bool
}

func buildModel(doc *gltf.Document, name string) (*Model, error) {
	b := &modelBuilder{
		doc:   doc,
		nodes: make(map[uint32]Node),
		bones: make(map[uint32]bool),
	}
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			b.bones[j] = true
		}
	}

	root := NewGroup(name)
	var roots []uint32
	if len(doc.Scenes) > 0 {
		var si uint32
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			si = *doc.Scene
		}
		roots = doc.Scenes[si].Nodes
	} else {
		roots = b.orphans()
	}
	for _, i := range roots {
		n, err := b.node(i)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}

	clips := make([]*Clip, 0, len(doc.Animations))
	for i, anim := range doc.Animations {
		clip, err := b.clip(anim)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips = append(clips, clip)
	}
	return &Model{Root: root, Clips: clips}, nil
}

// orphans are nodes that are nobody's child.
func (b *modelBuilder) orphans() []uint32 {
	child := make(map[uint32]bool)
	for _, n := range b.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var out []uint32
	for i := range b.doc.Nodes {
		if !child[uint32(i)] {
			out = append(out, uint32(i))
		}
	}
	return out
}

func (b *modelBuilder) node(i uint32) (Node, error) {
	if int(i) >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", i)
	}
	gn := b.doc.Nodes[i]
	var n Node
	switch {
	case gn.Mesh != nil:
		meshes, err := b.meshes(gn.Name, *gn.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", gn.Name, err)
		}
		if len(meshes) == 1 {
			n = meshes[0]
		} else {
			g := NewGroup(gn.Name)
			for _, m := range meshes {
				g.Add(m)
			}
			n = g
		}
	case b.bones[i]:
		n = NewBone(gn.Name)
	default:
		n = NewGroup(gn.Name)
	}

	t := n.Transform()
	t.Position = mgl32.Vec3(gn.Translation)
	t.Scale = mgl32.Vec3(gn.ScaleOrDefault())
	r := gn.RotationOrDefault()
	t.Rotation = quatToEuler(mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}})

	b.nodes[i] = n
	for _, c := range gn.Children {
		cn, err := b.node(c)
		if err != nil {
			return nil, err
		}
		n.Add(cn)
	}
	return n, nil
}

func (b *modelBuilder) meshes(name string, mi uint32) ([]*Mesh, error) {
	if int(mi) >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", mi)
	}
	gm := b.doc.Meshes[mi]
	names := targetNames(gm.Extras)
	out := make([]*Mesh, 0, len(gm.Primitives))
	for pi, prim := range gm.Primitives {
		pos, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, ErrNoPositions
		}
		acr, err := b.accessor(pos)
		if err != nil {
			return nil, err
		}
		xyz, err := modeler.ReadPosition(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("reading positions: %w", err)
		}
		var indices []uint32
		if prim.Indices != nil {
			acr, err := b.accessor(*prim.Indices)
			if err != nil {
				return nil, err
			}
			indices, err = modeler.ReadIndices(b.doc, acr, nil)
			if err != nil {
				return nil, fmt.Errorf("reading indices: %w", err)
			}
		}

		mname := name
		if len(gm.Primitives) > 1 {
			mname = fmt.Sprintf("%s_%d", name, pi)
		}
		m, err := NewMesh(mname, flatten(xyz), indices)
		if err != nil {
			return nil, err
		}

		if len(prim.Targets) > 0 {
			accessors := make([]*uint32, len(prim.Targets))
			for i, t := range prim.Targets {
				if a, ok := t[gltf.POSITION]; ok {
					accessors[i] = gltf.Index(a)
				}
			}
			m.SetMorphTargets(b.morphTargets(accessors, names, gm.Weights))
		}
		out = append(out, m)
	}
	return out, nil
}

func (b *modelBuilder) accessor(i uint32) (*gltf.Accessor, error) {
	if int(i) >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", i)
	}
	return b.doc.Accessors[i], nil
}

// morphTargets reads one position delta accessor per target, nil for none.
func (b *modelBuilder) morphTargets(targets []*uint32, names []string, weights []float32) *MorphTargets {
	if len(names) != len(targets) {
		names = make([]string, len(targets))
		for i := range names {
			names[i] = fmt.Sprintf("target%d", i)
		}
	}
	mt := NewMorphTargets(names)
	mt.Deltas = make([][]float32, len(targets))
	for i, pos := range targets {
		if i < len(weights) {
			mt.Influences[i] = weights[i]
		}
		if pos == nil {
			continue
		}
		acr, err := b.accessor(*pos)
		if err != nil {
			glog.Warningf("skipping morph target %q: %v", names[i], err)
			continue
		}
		xyz, err := modeler.ReadPosition(b.doc, acr, nil)
		if err != nil {
			glog.Warningf("skipping morph target %q: %v", names[i], err)
			continue
		}
		mt.Deltas[i] = flatten(xyz)
	}
	return mt
}

// targetNames reads the conventional extras.targetNames list.
func targetNames(extras interface{}) []string {
	var m map[string]interface{}
	switch e := extras.(type) {
	case map[string]interface{}:
		m = e
	case json.RawMessage:
		if err := json.Unmarshal(e, &m); err != nil {
			return nil
		}
	default:
		return nil
	}
	list, ok := m["targetNames"].([]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(list))
	for _, v := range list {
		s, _ := v.(string)
		names = append(names, s)
	}
	return names
}

func (b *modelBuilder) clip(anim *gltf.Animation) (*Clip, error) {
	clip := &Clip{Name: anim.Name}
	for _, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Sampler == nil {
			continue
		}
		target, ok := b.nodes[*ch.Target.Node]
		if !ok {
			continue
		}
		var path Path
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			path = PathTranslation
		case gltf.TRSRotation:
			path = PathRotation
		case gltf.TRSScale:
			path = PathScale
		default:
			// morph weight animation is driven by the device instead
			continue
		}

		if int(*ch.Sampler) >= len(anim.Samplers) {
			return nil, fmt.Errorf("sampler index %d out of range", *ch.Sampler)
		}
		s := anim.Samplers[*ch.Sampler]
		acr, err := b.accessor(s.Input)
		if err != nil {
			return nil, err
		}
		in, err := modeler.ReadAccessor(b.doc, acr, nil)
		if err != nil {
			return nil, err
		}
		times, ok := in.([]float32)
		if !ok {
			return nil, fmt.Errorf("unexpected keyframe type %T", in)
		}
		if acr, err = b.accessor(s.Output); err != nil {
			return nil, err
		}
		out, err := modeler.ReadAccessor(b.doc, acr, nil)
		if err != nil {
			return nil, err
		}

		c := &Channel{Target: target, Path: path, Times: times}
		switch v := out.(type) {
		case [][3]float32:
			c.Values = make([]mgl32.Vec3, len(v))
			for i := range v {
				c.Values[i] = mgl32.Vec3(v[i])
			}
		case [][4]float32:
			c.Values = make([]mgl32.Vec3, len(v))
			for i := range v {
				c.Values[i] = quatToEuler(mgl32.Quat{W: v[i][3], V: mgl32.Vec3{v[i][0], v[i][1], v[i][2]}})
			}
		default:
			return nil, fmt.Errorf("unexpected keyframe value type %T", out)
		}
		if len(c.Values) != len(c.Times) {
			// cubic spline samplers carry tangents, keep only the values
			if len(c.Values) == 3*len(c.Times) {
				vals := make([]mgl32.Vec3, len(c.Times))
				for i := range vals {
					vals[i] = c.Values[3*i+1]
				}
				c.Values = vals
			} else {
				return nil, fmt.Errorf("keyframe count mismatch: %d times, %d values", len(c.Times), len(c.Values))
			}
		}
		if n := len(times); n > 0 && times[n-1] > clip.Duration {
			clip.Duration = times[n-1]
		}
		clip.Channels = append(clip.Channels, c)
	}
	return clip, nil
}

func flatten(xyz [][3]float32) []float32 {
	out := make([]float32, 0, 3*len(xyz))
	for _, p := range xyz {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// quatToEuler returns XYZ Euler angles for a unit quaternion.
func quatToEuler(q mgl32.Quat) mgl32.Vec3 {
	if q.Len() == 0 {
		return mgl32.Vec3{}
	}
	m := q.Normalize().Mat4()
	m13 := mgl32.Clamp(m.At(0, 2), -1, 1)
	y := math32.Asin(m13)
	if math32.Abs(m13) < 0.9999999 {
		return mgl32.Vec3{
			math32.Atan2(-m.At(1, 2), m.At(2, 2)),
			y,
			math32.Atan2(-m.At(0, 1), m.At(0, 0)),
		}
	}
	return mgl32.Vec3{math32.Atan2(m.At(2, 1), m.At(1, 1)), y, 0}
}
