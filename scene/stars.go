package scene

import (
	"math/rand"
)

// Points is a cloud of unconnected vertices.
type Points struct {
	node
	Positions []float32
	Size      float32
}

// NewStarField scatters n points uniformly in a cube of the given spread.
func NewStarField(rng *rand.Rand, n int, spread float32) *Points {
	pos := make([]float32, 3*n)
	for i := range pos {
		pos[i] = (rng.Float32() - 0.5) * spread
	}
	return &Points{node: newNode("stars"), Positions: pos, Size: 0.15}
}
