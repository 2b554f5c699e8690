package util

import (
	"math"
	"testing"
)

func sine(frame []float64, amp float64) {
	for i := range frame {
		frame[i] = amp * math.Sin(float64(i)/8)
	}
}

func TestPreGainFollowsLevel(t *testing.T) {
	cases := []struct {
		name string
		amp  float64
		rise bool
	}{
		{"quiet", 0.01, true},
		{"loud", 1, false},
	}
	for _, c := range cases {
		p := NewPreGain(DefaultPreGainParams)
		frame := make([]float64, 256)
		for n := 0; n < 200; n++ {
			sine(frame, c.amp)
			p.Apply(frame)
		}
		if c.rise && p.Gain() <= 1 {
			t.Fatal(c.name, ": expected gain to rise, got", p.Gain())
		}
		if !c.rise && p.Gain() >= 1 {
			t.Fatal(c.name, ": expected gain to fall, got", p.Gain())
		}
	}
}

func TestPreGainBoundedOnSilence(t *testing.T) {
	p := NewPreGain(DefaultPreGainParams)
	frame := make([]float64, 64)
	for n := 0; n < 1000; n++ {
		for i := range frame {
			frame[i] = 0
		}
		p.Apply(frame)
	}
	g := p.Gain()
	if math.IsNaN(g) || g > DefaultPreGainParams.MaxGain*(1+1e-9) {
		t.Fatal("gain escaped its bound:", g)
	}
	p.Apply(nil)
}
