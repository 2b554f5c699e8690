package scene

import (
	"regexp"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: gltf.Attribute{gltf.POSITION: pos},
		}},
		Extras: map[string]interface{}{"targetNames": []interface{}{"Key 1"}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "holder", Children: []uint32{1}},
		{Name: "3", Mesh: gltf.Index(0), Translation: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{2, 2, 2}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []uint32{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func TestBuildModel(t *testing.T) {
	doc := testDocument()
	model, err := buildModel(doc, "test.glb")
	require.NoError(t, err)

	n := Find(model.Root, "3")
	require.NotNil(t, n)
	m, ok := n.(*Mesh)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, m.Geometry.Base())
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, float32(2), m.Transform().Position.Y())
	assert.Equal(t, float32(2), m.Transform().Scale.X())

	ts := NewTargetSet(model.Root, regexp.MustCompile(`^[1-9]$`))
	assert.Equal(t, []string{"3"}, ts.Names())
	assert.Empty(t, model.Clips)

	holder := Find(model.Root, "holder")
	require.NotNil(t, holder)
	assert.Equal(t, float32(1), holder.Transform().Scale.X())
	assert.Equal(t, float32(0), holder.Transform().Rotation.Len())
}

func TestBuildModelAnimation(t *testing.T) {
	doc := testDocument()
	in := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 2})
	out := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{{0, 0, 0}, {0, 4, 0}})
	doc.Animations = []*gltf.Animation{{
		Name:     "spin",
		Samplers: []*gltf.AnimationSampler{{Input: in, Output: out}},
		Channels: []*gltf.Channel{
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(1), Path: gltf.TRSTranslation}},
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(1), Path: gltf.TRSWeights}},
			{Target: gltf.ChannelTarget{Node: gltf.Index(1), Path: gltf.TRSScale}},
		},
	}}

	model, err := buildModel(doc, "anim.glb")
	require.NoError(t, err)
	require.Len(t, model.Clips, 1)
	clip := model.Clips[0]
	assert.Equal(t, "spin", clip.Name)
	assert.Equal(t, float32(2), clip.Duration)
	require.Len(t, clip.Channels, 1)
	assert.Equal(t, PathTranslation, clip.Channels[0].Path)
	assert.Same(t, Find(model.Root, "3"), clip.Channels[0].Target)
}

func TestBuildModelBadIndices(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
	}{
		{"node", func(doc *gltf.Document) { doc.Scenes[0].Nodes = []uint32{7} }},
		{"child", func(doc *gltf.Document) { doc.Nodes[0].Children = []uint32{9} }},
		{"mesh", func(doc *gltf.Document) { doc.Nodes[1].Mesh = gltf.Index(4) }},
		{"accessor", func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 42
		}},
		{"sampler", func(doc *gltf.Document) {
			doc.Animations = []*gltf.Animation{{
				Samplers: []*gltf.AnimationSampler{{}},
				Channels: []*gltf.Channel{{
					Sampler: gltf.Index(3),
					Target:  gltf.ChannelTarget{Node: gltf.Index(1), Path: gltf.TRSTranslation},
				}},
			}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			tt.mutate(doc)
			_, err := buildModel(doc, "bad.glb")
			assert.Error(t, err)
		})
	}
}

func TestTargetNamesFromExtras(t *testing.T) {
	assert.Equal(t, []string{"Key 1"}, targetNames(map[string]interface{}{
		"targetNames": []interface{}{"Key 1"},
	}))
	assert.Nil(t, targetNames(nil))
	assert.Nil(t, targetNames("junk"))
}

func TestMorphTargetsFromAccessor(t *testing.T) {
	doc := gltf.NewDocument()
	delta := modeler.WritePosition(doc, [][3]float32{{0, 1, 0}})
	b := &modelBuilder{doc: doc}
	mt := b.morphTargets([]*uint32{gltf.Index(delta), nil}, []string{"Key 1", "Key 2"}, []float32{0.5})
	assert.Equal(t, []float32{0, 1, 0}, mt.Deltas[0])
	assert.Nil(t, mt.Deltas[1])
	assert.Equal(t, float32(0.5), mt.Influences[0])

	// mismatched names fall back to generated ones
	mt = b.morphTargets([]*uint32{gltf.Index(delta)}, nil, nil)
	assert.Equal(t, []string{"target0"}, mt.Names)
}
