// Package deform displaces vertex positions from an immutable base buffer
// using audio driven noise fields.
package deform

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Strategy selects how a mesh is deformed.
type Strategy int

// Deformation strategies
const (
	// CPU scales each vertex along its radius by the combined sine noise.
	CPU Strategy = iota
	// Axis adds an independent sinusoidal offset on every axis.
	Axis
	// Simplex scales each vertex along its radius by 4D simplex noise.
	Simplex
	// GPU leaves positions alone and hands Uniforms to the vertex shader.
	GPU
)

var strategyNames = map[string]Strategy{
	"cpu":     CPU,
	"axis":    Axis,
	"simplex": Simplex,
	"gpu":     GPU,
}

// ParseStrategy maps a config name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return CPU, nil
	}
	st, ok := strategyNames[s]
	if !ok {
		return CPU, fmt.Errorf("unknown deform strategy %q", s)
	}
	return st, nil
}

func (s Strategy) String() string {
	for k, v := range strategyNames {
		if v == s {
			return k
		}
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Params are the per mesh constants chosen at load time.
type Params struct {
	// Multiplier is k in 1 + a*noise*k.
	Multiplier float32
	// Phase shifts the noise in time.
	Phase float32
	// AxisScale bounds the per-axis offset.
	AxisScale float32
}

// DefaultParams are tuned for a sphere of radius 2.
var DefaultParams = Params{
	Multiplier: 1.5,
	AxisScale:  0.1,
}

// Amplitudes are the features driving one frame. A drives the radial
// fields and A2 the per-axis offsets.
type Amplitudes struct {
	A  float32
	A2 float32
}

// CombinedNoise is the mean of three sinusoids over time and position.
func CombinedNoise(t, x, y, z float32) float32 {
	n1 := math32.Sin(t + x*1.5 + y*1.2 + z*1.8)
	n2 := math32.Cos(t*0.5 + x*2.0 + y*2.2 + z*2.5)
	n3 := math32.Sin(t*1.5 + x*0.5 + y*1.5 + z*2.0)
	return (n1 + n2 + n3) / 3
}

// Radial writes base scaled along each vertex radius into dst. With a zero
// amplitude dst equals base exactly.
func Radial(dst, base []float32, t float32, amps Amplitudes, p Params) {
	if amps.A == 0 {
		copy(dst, base)
		return
	}
	t += p.Phase
	for i := 0; i+2 < len(base); i += 3 {
		x, y, z := base[i], base[i+1], base[i+2]
		f := 1 + amps.A*CombinedNoise(t, x, y, z)*p.Multiplier
		dst[i] = x * f
		dst[i+1] = y * f
		dst[i+2] = z * f
	}
}

// AxisOffset is the per-axis displacement of one vertex.
func AxisOffset(t, x, y, z, a float32, p Params) (dx, dy, dz float32) {
	t += p.Phase
	s := a * p.AxisScale
	dx = s * math32.Sin(t*1.3+y*2)
	dy = s * math32.Cos(t*1.1+z*2)
	dz = s * math32.Sin(t*0.9+x*2)
	return
}

// PerAxis writes base plus a small independent sinusoid per axis into dst,
// scaled by the secondary amplitude.
func PerAxis(dst, base []float32, t float32, amps Amplitudes, p Params) {
	a := amps.A2
	if a == 0 {
		copy(dst, base)
		return
	}
	for i := 0; i+2 < len(base); i += 3 {
		x, y, z := base[i], base[i+1], base[i+2]
		dx, dy, dz := AxisOffset(t, x, y, z, a, p)
		dst[i] = x + dx
		dst[i+1] = y + dy
		dst[i+2] = z + dz
	}
}

// Combined is the CPU rendition of VertexShader: the radial deformation
// plus the per-axis offset of the base vertex.
func Combined(dst, base []float32, t float32, amps Amplitudes, p Params) {
	Radial(dst, base, t, amps, p)
	a := amps.A2
	if a == 0 {
		return
	}
	for i := 0; i+2 < len(base); i += 3 {
		dx, dy, dz := AxisOffset(t, base[i], base[i+1], base[i+2], a, p)
		dst[i] += dx
		dst[i+1] += dy
		dst[i+2] += dz
	}
}

// ComputeDisplacedPositions returns a new buffer holding the radial
// deformation of base.
func ComputeDisplacedPositions(base []float32, t float32, amps Amplitudes, p Params) []float32 {
	dst := make([]float32, len(base))
	Radial(dst, base, t, amps, p)
	return dst
}
