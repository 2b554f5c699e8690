package preview

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/vuzicscene/control"
	"github.com/peragwin/vuzicscene/engine"
	"github.com/peragwin/vuzicscene/scene"
)

func newScene(t *testing.T) (*engine.Engine, *scene.Mesh) {
	a, err := control.NewAutomation(control.DefaultParameters)
	require.NoError(t, err)
	s := scene.New(scene.NewCamera(60, 1, 0.1, 100))
	s.Camera.Transform().Position = mgl32.Vec3{0, 0, 10}
	s.AddLight(scene.NewLight("ambient", scene.Ambient, scene.Hex(0xffffff), 1))

	m, err := scene.NewMesh("dot", []float32{0, 0, 0}, nil)
	require.NoError(t, err)
	s.Root.Add(m)
	return engine.New(s, a, 128, 1), m
}

func lit(img *image.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			n++
		}
	}
	return n
}

func TestProject(t *testing.T) {
	x, y, ok := Project(mgl32.Ident4(), mgl32.Vec3{}, 101, 51)
	require.True(t, ok)
	assert.Equal(t, 50, x)
	assert.Equal(t, 25, y)

	x, y, ok = Project(mgl32.Ident4(), mgl32.Vec3{-1, 1, 0}, 101, 51)
	require.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	_, _, ok = Project(mgl32.Ident4(), mgl32.Vec3{2, 0, 0}, 101, 51)
	assert.False(t, ok)
}

func TestRenderVisibility(t *testing.T) {
	e, m := newScene(t)
	p := New(e, 64, 64)

	img := p.Render()
	assert.Equal(t, 1, lit(img))
	i := img.PixOffset(31, 31)
	assert.Equal(t, uint8(0xff), img.Pix[i])

	m.Visible = false
	e.Scene.Post.Set("damp", 0)
	assert.Equal(t, 0, lit(p.Render()))
}

func TestAfterimageDecays(t *testing.T) {
	e, m := newScene(t)
	p := New(e, 64, 64)
	e.Scene.Post.Set("damp", 0.5)

	p.Render()
	m.Visible = false
	i := p.frame.PixOffset(31, 31)
	for _, want := range []float64{0x7f, 0x3f, 0x1f, 0x0f} {
		img := p.Render()
		assert.InDelta(t, want, float64(img.Pix[i]), 1)
	}
	// below the cutoff
	img := p.Render()
	assert.Equal(t, uint8(0), img.Pix[i])
}

func TestTransparentZeroOpacityIsHidden(t *testing.T) {
	e, m := newScene(t)
	m.Material.Transparent = true
	m.Material.Opacity = 0
	p := New(e, 64, 64)
	assert.Equal(t, 0, lit(p.Render()))
}

func TestSnapshot(t *testing.T) {
	e, _ := newScene(t)
	p := New(e, 32, 16)
	p.Render()

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, p.Snapshot(path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
}
