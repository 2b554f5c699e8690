// Package contour bends line segments along their normals by a waveform,
// drawing oscilloscope-like rings.
package contour

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultScale is the offset of a full scale sample.
const DefaultScale = 7.0

// Edge is a fixed segment and the direction its points are pushed.
type Edge struct {
	Start  mgl32.Vec3
	End    mgl32.Vec3
	Normal mgl32.Vec3
}

// Point returns the point at parameter t along the edge, offset by off.
func (e Edge) Point(t, off float32) mgl32.Vec3 {
	base := e.Start.Add(e.End.Sub(e.Start).Mul(t))
	return base.Add(e.Normal.Mul(off))
}

// UpdateContour returns, for each edge, len(samples) evenly spaced points
// offset along the normal by sample*scale.
func UpdateContour(edges []Edge, samples []float32, scale float32) [][]mgl32.Vec3 {
	out := make([][]mgl32.Vec3, len(edges))
	for i, e := range edges {
		out[i] = make([]mgl32.Vec3, len(samples))
		fill(out[i], e, samples, scale)
	}
	return out
}

func fill(dst []mgl32.Vec3, e Edge, samples []float32, scale float32) {
	n := len(dst)
	for i := range dst {
		var t float32
		if n > 1 {
			t = float32(i) / float32(n-1)
		}
		var s float32
		if i < len(samples) {
			s = samples[i]
		}
		dst[i] = e.Point(t, s*scale)
	}
}

// Contour owns the point buffers of a set of edges.
type Contour struct {
	Edges []Edge
	Scale float32
	// Points holds one sequence per edge, rewritten by Update.
	Points [][]mgl32.Vec3

	width, height int
}

// New returns a contour with n points per edge resting on the edges.
func New(edges []Edge, n int) *Contour {
	c := &Contour{
		Edges:  edges,
		Scale:  DefaultScale,
		Points: make([][]mgl32.Vec3, len(edges)),
	}
	for i := range c.Points {
		c.Points[i] = make([]mgl32.Vec3, n)
		fill(c.Points[i], edges[i], nil, 0)
	}
	return c
}

// Update recomputes every point in place. Samples beyond the point count
// are ignored and missing samples count as zero.
func (c *Contour) Update(samples []float32) {
	for i, e := range c.Edges {
		fill(c.Points[i], e, samples, c.Scale)
	}
}

// SetResolution records the viewport size used for line widths.
func (c *Contour) SetResolution(width, height int) {
	c.width, c.height = width, height
}

// Resolution is the last size given to SetResolution.
func (c *Contour) Resolution() (width, height int) {
	return c.width, c.height
}

// Square returns the four edges of a square of half size h on the XZ plane,
// pushed along +Y.
func Square(h float32) []Edge {
	up := mgl32.Vec3{0, 1, 0}
	return []Edge{
		{Start: mgl32.Vec3{-h, 0, h}, End: mgl32.Vec3{h, 0, h}, Normal: up},
		{Start: mgl32.Vec3{h, 0, h}, End: mgl32.Vec3{h, 0, -h}, Normal: up},
		{Start: mgl32.Vec3{h, 0, -h}, End: mgl32.Vec3{-h, 0, -h}, Normal: up},
		{Start: mgl32.Vec3{-h, 0, -h}, End: mgl32.Vec3{-h, 0, h}, Normal: up},
	}
}

// NestedSquares builds n concentric square rings. Ring i has scale
// 2+i*step and half size 4*scale.
func NestedSquares(n int, step float32, points int) []*Contour {
	rings := make([]*Contour, n)
	for i := range rings {
		scale := 2 + float32(i)*step
		rings[i] = New(Square(4*scale), points)
	}
	return rings
}
