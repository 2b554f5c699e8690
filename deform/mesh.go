package deform

import (
	"github.com/golang/glog"
)

// Mesh pairs an immutable base position buffer with the current buffer
// rewritten each frame.
type Mesh struct {
	Strategy Strategy
	Params   Params

	base    []float32
	current []float32
	simplex *SimplexField
	dirty   bool
}

// NewMesh captures a copy of positions as the base buffer.
func NewMesh(positions []float32, strategy Strategy, p Params) *Mesh {
	if len(positions)%3 != 0 {
		glog.Warningf("position buffer length %d is not a multiple of 3", len(positions))
	}
	base := make([]float32, len(positions))
	copy(base, positions)
	current := make([]float32, len(positions))
	copy(current, positions)
	return &Mesh{
		Strategy: strategy,
		Params:   p,
		base:     base,
		current:  current,
	}
}

// SetSimplex sets the field used by the Simplex strategy.
func (m *Mesh) SetSimplex(f *SimplexField) {
	m.simplex = f
}

// Base returns a copy of the base buffer.
func (m *Mesh) Base() []float32 {
	b := make([]float32, len(m.base))
	copy(b, m.base)
	return b
}

// Positions returns the current buffer. It is rewritten by Update.
func (m *Mesh) Positions() []float32 {
	return m.current
}

// VertexCount is the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.base) / 3
}

// Update recomputes the current buffer for time t. It reports whether the
// buffer changed and needs uploading.
func (m *Mesh) Update(t float32, amps Amplitudes) bool {
	switch m.Strategy {
	case CPU:
		Radial(m.current, m.base, t, amps, m.Params)
	case Axis:
		PerAxis(m.current, m.base, t, amps, m.Params)
	case Simplex:
		if m.simplex == nil {
			m.simplex = NewSimplexField(0)
		}
		m.simplex.Deform(m.current, m.base, t, amps, m.Params)
	case GPU:
		return false
	}
	m.dirty = true
	return true
}

// Reset restores the current buffer to the base.
func (m *Mesh) Reset() {
	copy(m.current, m.base)
	m.dirty = true
}

// TakeDirty reports whether the buffer changed since the last call.
func (m *Mesh) TakeDirty() bool {
	d := m.dirty
	m.dirty = false
	return d
}
