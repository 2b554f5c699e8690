package scene

import (
	"strings"
	"unicode"
)

// MorphTargeted is implemented by nodes that may carry morph channels.
type MorphTargeted interface {
	MorphTargets() *MorphTargets
}

// MorphTargets maps channel names to influences in [0,1].
type MorphTargets struct {
	Names      []string
	Influences []float32
	// Deltas holds one position delta buffer per channel, if known.
	Deltas [][]float32
}

// NewMorphTargets returns zero influences for names.
func NewMorphTargets(names []string) *MorphTargets {
	return &MorphTargets{
		Names:      names,
		Influences: make([]float32, len(names)),
	}
}

// NormalizeName lowercases s and strips all whitespace, so "Key 1" and
// "key1" compare equal.
func NormalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Set assigns v clamped to [0,1] to every channel whose normalized name
// matches name. It returns the number of channels set.
func (m *MorphTargets) Set(name string, v float32) int {
	key := NormalizeName(name)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	n := 0
	for i, ch := range m.Names {
		if NormalizeName(ch) == key {
			m.Influences[i] = v
			n++
		}
	}
	return n
}

// Influence returns the influence of the channel whose normalized name
// matches name.
func (m *MorphTargets) Influence(name string) (float32, bool) {
	key := NormalizeName(name)
	for i, ch := range m.Names {
		if NormalizeName(ch) == key {
			return m.Influences[i], true
		}
	}
	return 0, false
}

// Apply adds the weighted deltas to positions in place.
func (m *MorphTargets) Apply(positions []float32) {
	for i, d := range m.Deltas {
		w := m.Influences[i]
		if w == 0 || len(d) != len(positions) {
			continue
		}
		for j := range positions {
			positions[j] += w * d[j]
		}
	}
}
