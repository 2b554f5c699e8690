// Gradient lookup adapted from https://github.com/lucasb-eyer/go-colorful/blob/master/doc/gradientgen/gradientgen.go

package util

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorMap is a table of gradient keypoints. Positions live in [0,1] and must
// be sorted.
type ColorMap []struct {
	Col colorful.Color
	Pos float64
}

// GetInterpolatedColorFor returns an HCL blend between the two keypoints
// around t.
func (g ColorMap) GetInterpolatedColorFor(t float64) colorful.Color {
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			t := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, t).Clamped()
		}
	}

	// at (or past) the last keypoint
	return g[len(g)-1].Col
}

// Cyclic looks up a phase in radians, wrapping it into the map.
func (g ColorMap) Cyclic(phase float64) colorful.Color {
	t := math.Mod(phase/(2*math.Pi), 1)
	if t < 0 {
		t++
	}
	return g.GetInterpolatedColorFor(t)
}

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("MustParseHex: " + err.Error())
	}
	return c
}

// NewColorMap returns the default wireframe palette, green through violet to
// red and back.
func NewColorMap() ColorMap {
	return ColorMap{
		{mustParseHex("#00ff8c"), 0.0},
		{mustParseHex("#00c8ff"), 0.2},
		{mustParseHex("#5432ba"), 0.4},
		{mustParseHex("#a852ff"), 0.6},
		{mustParseHex("#de002c"), 0.8},
		{mustParseHex("#00ff8c"), 1.0},
	}
}
