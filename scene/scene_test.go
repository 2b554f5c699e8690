package scene

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectAtBound(t *testing.T) {
	g := NewGroup("obj")
	g.Transform().Position = mgl32.Vec3{5.001, 0, 0}
	m := &MovingNode{
		Node:     g,
		Velocity: mgl32.Vec3{0.01, 0.02, -0.015},
	}
	c := NewMotionController()
	c.Add(m)
	c.Advance()

	assert.Equal(t, float32(-0.01), m.Velocity.X())
	assert.Equal(t, float32(0.02), m.Velocity.Y())
	assert.Equal(t, float32(-0.015), m.Velocity.Z())
	// overshoot is not corrected
	assert.Greater(t, g.Transform().Position.X(), float32(5))

	c.Advance()
	assert.Less(t, g.Transform().Position.X(), float32(5.011))
}

func TestMotionNeverClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := NewMotionController()
	for i := 0; i < 8; i++ {
		c.Add(NewMovingNode(NewGroup("n"), rng))
	}
	for i := 0; i < 10000; i++ {
		c.Advance()
	}
	for _, m := range c.Nodes {
		for i := 0; i < 3; i++ {
			// one tick past the bound at most
			assert.LessOrEqual(t, math32.Abs(m.Node.Transform().Position[i]), c.Bound+0.02)
		}
	}
}

func TestNewMovingNodeRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		m := NewMovingNode(NewGroup("n"), rng)
		p := m.Node.Transform().Position
		assert.LessOrEqual(t, math32.Abs(p.X()), float32(0.6))
		assert.LessOrEqual(t, math32.Abs(p.Y()), float32(0.5))
		assert.LessOrEqual(t, math32.Abs(p.Z()), float32(0.45))
		assert.LessOrEqual(t, math32.Abs(m.Velocity.X()), float32(0.005))
		assert.LessOrEqual(t, math32.Abs(m.RotationSpeed.Y()), float32(0.005))
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Key 1":     "key1",
		"key1":      "key1",
		" KEY\t2 ":  "key2",
		"Laser Arm": "laserarm",
	}
	for in, exp := range cases {
		assert.Equal(t, exp, NormalizeName(in))
	}
}

func TestMorphSetClamps(t *testing.T) {
	mt := NewMorphTargets([]string{"key1", "Key 2"})
	assert.Equal(t, 1, mt.Set("Key 1", 1.5))
	v, ok := mt.Influence("key1")
	require.True(t, ok)
	assert.Equal(t, float32(1), v)

	mt.Set("Key 1", -0.2)
	v, _ = mt.Influence("key1")
	assert.Equal(t, float32(0), v)

	assert.Equal(t, 1, mt.Set("key2", 0.25))
	assert.Equal(t, float32(0.25), mt.Influences[1])
	assert.Equal(t, 0, mt.Set("key3", 1))
}

func TestMorphApply(t *testing.T) {
	mt := NewMorphTargets([]string{"a"})
	mt.Deltas = [][]float32{{1, 2, 3}}
	mt.Influences[0] = 0.5
	pos := []float32{0, 0, 0}
	mt.Apply(pos)
	assert.Equal(t, []float32{0.5, 1, 1.5}, pos)
}

func testTargets(t *testing.T, n int) (*Group, *TargetSet) {
	root := NewGroup("root")
	for i := 1; i <= n; i++ {
		m, err := NewMesh(Key(i), []float32{0, 0, 0}, nil)
		require.NoError(t, err)
		root.Add(m)
	}
	other, err := NewMesh("light", []float32{0, 0, 0}, nil)
	require.NoError(t, err)
	root.Add(other)
	return root, NewTargetSet(root, regexp.MustCompile(`^[1-9]$`))
}

func TestTargetSet(t *testing.T) {
	_, ts := testTargets(t, 9)
	assert.Equal(t, 9, ts.Len())
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, ts.Names())
	assert.Len(t, ts.Get("3"), 1)
	assert.Empty(t, ts.Get("light"))

	var nilSet *TargetSet
	assert.Equal(t, 0, nilSet.Len())
	nilSet.Each(func(string, *Mesh) { t.Fatal("nil set has no targets") })
}

func TestNewMeshRequiresPositions(t *testing.T) {
	_, err := NewMesh("empty", nil, nil)
	assert.True(t, errors.Is(err, ErrNoPositions))
}

func TestAssetStates(t *testing.T) {
	release := make(chan struct{})
	a := Load(context.Background(), "slow", func(context.Context) (int, error) {
		<-release
		return 42, nil
	})
	_, state, _ := a.Poll()
	assert.Equal(t, Pending, state)

	installed := 0
	inst := Bind(a, func(v int) { installed = v })
	assert.False(t, inst.TryInstall())

	close(release)
	v, err := a.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, inst.TryInstall())
	assert.Equal(t, 42, installed)

	boom := errors.New("boom")
	f := Load(context.Background(), "broken", func(context.Context) (int, error) {
		return 0, boom
	})
	_, err = f.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	_, state, err = f.Poll()
	assert.Equal(t, Failed, state)
	assert.ErrorIs(t, err, boom)
	assert.True(t, Bind(f, func(int) { t.Fatal("failed asset installed") }).TryInstall())
}

func TestAssetWaitCancelled(t *testing.T) {
	a := Load(context.Background(), "never", func(ctx context.Context) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActionLoopOnceClamps(t *testing.T) {
	g := NewGroup("door")
	clip := &Clip{
		Duration: 2,
		Channels: []*Channel{{
			Target: g,
			Path:   PathTranslation,
			Times:  []float32{0, 2},
			Values: []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}},
		}},
	}
	a := NewAction(clip, LoopOnce)
	a.Paused = true
	a.SetTime(0)

	a.Advance(1)
	assert.Equal(t, float32(0), g.Transform().Position.X())

	a.Play()
	a.Play()
	a.Advance(1)
	assert.InDelta(t, 1, g.Transform().Position.X(), 1e-6)
	a.Advance(5)
	assert.Equal(t, float32(2), a.Time())
	assert.InDelta(t, 2, g.Transform().Position.X(), 1e-6)

	r := NewAction(clip, LoopRepeat)
	r.Advance(2.5)
	assert.InDelta(t, 0.5, r.Time(), 1e-6)

	tiny := NewAction(&Clip{Duration: 1e-6}, LoopRepeat)
	tiny.Advance(100)
	assert.Less(t, tiny.Time(), float32(1e-6))
}

func TestRigs(t *testing.T) {
	light := NewLight("light", Point, Hex(0xffffff), 100)
	o := &Orbit{Target: light, Radius: 5, Height: 2}
	o.Update(0)
	assert.Equal(t, mgl32.Vec3{5, 2, 0}, light.Transform().Position)

	pivot := NewGroup("pivot")
	osc := &Oscillator{Target: pivot, Center: mgl32.Vec3{0, 18, -18}, Amplitude: 5.5}
	osc.Update(0)
	assert.Equal(t, mgl32.Vec3{0, 23.5, -18}, pivot.Transform().Position)

	s := &Spin{Target: pivot, Speed: 0.005}
	s.Update()
	assert.InDelta(t, 0.005, pivot.Transform().Rotation.Y(), 1e-7)
}

func TestSceneMorphMeshes(t *testing.T) {
	s := New(NewCamera(75, 1, 0.1, 1000))
	m, err := NewMesh("sat", []float32{1, 0, 0}, nil)
	require.NoError(t, err)
	m.SetMorphTargets(NewMorphTargets([]string{"key1"}))
	plain, err := NewMesh("plain", []float32{1, 0, 0}, nil)
	require.NoError(t, err)
	s.Root.Add(m, plain)

	meshes := s.MorphMeshes()
	require.Len(t, meshes, 1)
	assert.Same(t, m, meshes[0])
	assert.Equal(t, float32(0.88), s.Post.Get("damp"))
}

func TestSphereGeometry(t *testing.T) {
	pos, idx := SphereGeometry(2, 8, 6)
	assert.Len(t, pos, 3*9*7)
	for i := 0; i < len(pos); i += 3 {
		r := math32.Sqrt(pos[i]*pos[i] + pos[i+1]*pos[i+1] + pos[i+2]*pos[i+2])
		assert.InDelta(t, 2, r, 1e-5)
	}
	for _, i := range idx {
		assert.Less(t, int(i), len(pos)/3)
	}
}

func TestQuatToEuler(t *testing.T) {
	for _, e := range []mgl32.Vec3{{0, 0, 0}, {0.3, -0.2, 1.1}, {0, math32.Pi / 4, 0}} {
		q := mgl32.QuatRotate(e.X(), mgl32.Vec3{1, 0, 0}).
			Mul(mgl32.QuatRotate(e.Y(), mgl32.Vec3{0, 1, 0})).
			Mul(mgl32.QuatRotate(e.Z(), mgl32.Vec3{0, 0, 1}))
		got := quatToEuler(q)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, e[i], got[i], 1e-4)
		}
	}
}

func TestLighting(t *testing.T) {
	s := New(NewCamera(75, 1, 0.1, 100))
	assert.Equal(t, mgl32.Vec3{}, s.Lighting())

	s.AddLight(NewLight("ambient", Ambient, Hex(0xffffff), 0.1))
	s.AddLight(NewLight("lighty", Directional, Hex(0xff0000), 0))
	l := s.Lighting()
	assert.InDelta(t, 0.1, l.X(), 1e-6)
	assert.InDelta(t, 0.1, l.Z(), 1e-6)

	s.Lights["lighty"].Intensity = 2
	l = s.Lighting()
	assert.InDelta(t, 1.1, l.X(), 1e-6)
	assert.InDelta(t, 0.1, l.Y(), 1e-6)
}
