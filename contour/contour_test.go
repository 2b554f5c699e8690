package contour

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var front = Edge{
	Start:  mgl32.Vec3{-4, 0, 4},
	End:    mgl32.Vec3{4, 0, 4},
	Normal: mgl32.Vec3{0, 1, 0},
}

func TestZeroSamplesLeaveEdge(t *testing.T) {
	samples := make([]float32, 128)
	out := UpdateContour([]Edge{front}, samples, DefaultScale)
	require.Len(t, out, 1)
	require.Len(t, out[0], 128)
	for i, p := range out[0] {
		x := -4 + 8*float32(i)/127
		assert.InDelta(t, x, p.X(), 1e-5)
		assert.Equal(t, float32(0), p.Y())
		assert.Equal(t, float32(4), p.Z())
	}
	assert.Equal(t, front.Start, out[0][0])
	assert.Equal(t, front.End, out[0][127])
}

func TestOffsetAlongNormal(t *testing.T) {
	samples := []float32{1, -0.5, 0}
	out := UpdateContour([]Edge{front}, samples, DefaultScale)
	assert.Equal(t, mgl32.Vec3{-4, 7, 4}, out[0][0])
	assert.Equal(t, mgl32.Vec3{0, -3.5, 4}, out[0][1])
	assert.Equal(t, mgl32.Vec3{4, 0, 4}, out[0][2])
}

func TestContourUpdateInPlace(t *testing.T) {
	c := New([]Edge{front}, 4)
	buf := c.Points[0]
	c.Update([]float32{1, 1, 1, 1})
	assert.Same(t, &buf[0], &c.Points[0][0])
	for _, p := range c.Points[0] {
		assert.Equal(t, float32(7), p.Y())
	}

	// short sample arrays count as silence
	c.Update([]float32{1})
	assert.Equal(t, float32(7), c.Points[0][0].Y())
	assert.Equal(t, float32(0), c.Points[0][3].Y())
}

func TestNestedSquares(t *testing.T) {
	rings := NestedSquares(5, 1, 128)
	require.Len(t, rings, 5)
	for i, r := range rings {
		h := 4 * (2 + float32(i))
		require.Len(t, r.Edges, 4)
		assert.Equal(t, mgl32.Vec3{-h, 0, h}, r.Edges[0].Start)
		for _, e := range r.Edges {
			assert.Equal(t, mgl32.Vec3{0, 1, 0}, e.Normal)
		}
		// each edge ends where the next starts
		for j := range r.Edges {
			assert.Equal(t, r.Edges[j].End, r.Edges[(j+1)%4].Start)
		}
		assert.Len(t, r.Points[0], 128)
	}

	rings[0].SetResolution(800, 600)
	w, h := rings[0].Resolution()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}
