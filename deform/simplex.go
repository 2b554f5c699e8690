package deform

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// SimplexField is a radial deformation driven by 4D simplex noise, with
// time as the fourth dimension.
type SimplexField struct {
	noise opensimplex.Noise
	// Frequency scales positions before sampling.
	Frequency float64
	// Speed scales time.
	Speed float64
}

// NewSimplexField returns a field seeded with seed.
func NewSimplexField(seed int64) *SimplexField {
	return &SimplexField{
		noise:     opensimplex.New(seed),
		Frequency: 1.2,
		Speed:     0.5,
	}
}

// Deform writes base scaled along each vertex radius into dst.
func (s *SimplexField) Deform(dst, base []float32, t float32, amps Amplitudes, p Params) {
	if amps.A == 0 {
		copy(dst, base)
		return
	}
	w := (float64(t) + float64(p.Phase)) * s.Speed
	for i := 0; i+2 < len(base); i += 3 {
		x, y, z := base[i], base[i+1], base[i+2]
		n := s.noise.Eval4(float64(x)*s.Frequency, float64(y)*s.Frequency, float64(z)*s.Frequency, w)
		f := 1 + amps.A*float32(n)*p.Multiplier
		dst[i] = x * f
		dst[i+1] = y * f
		dst[i+2] = z * f
	}
}
