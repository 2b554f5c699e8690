package util

import (
	"math"
	"testing"
)

func TestColorMapCyclic(t *testing.T) {
	cm := NewColorMap()
	a := cm.Cyclic(0)
	b := cm.Cyclic(2 * math.Pi)
	c := cm.Cyclic(-2 * math.Pi)
	if !a.AlmostEqualRgb(b) || !a.AlmostEqualRgb(c) {
		t.Fatal("cyclic lookup does not wrap", a, b, c)
	}
	if !a.AlmostEqualRgb(mustParseHex("#00ff8c")) {
		t.Fatal("unexpected start color", a.Hex())
	}
}
