package util

import (
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
)

// PreGainParams tune the level follower of PreGain.
type PreGainParams struct {
	// Smoothing weights the running level against the newest block, in [0,1).
	Smoothing float64
	// Kp and Kd act on the level error measured in octaves.
	Kp, Kd float64
	// Target is the RMS level the gain settles on.
	Target float64
	// MaxGain bounds the gain to [1/MaxGain, MaxGain].
	MaxGain float64
}

// DefaultPreGainParams bring a patch output to a quarter of full scale over
// a few seconds of blocks.
var DefaultPreGainParams = PreGainParams{
	Smoothing: 0.95,
	Kp:        0.05,
	Kd:        0.1,
	Target:    0.25,
	MaxGain:   1000,
}

// PreGain normalizes the level of a channel before analysis so quiet and
// loud patches drive the features alike.
type PreGain struct {
	params  PreGainParams
	level   float64
	logGain float64
	err     float64
}

// NewPreGain returns a PreGain at unit gain.
func NewPreGain(params PreGainParams) *PreGain {
	return &PreGain{params: params, level: params.Target}
}

// Gain is the current gain factor.
func (p *PreGain) Gain() float64 {
	return math.Exp2(p.logGain)
}

// Apply scales frame in place and updates the gain from its level.
func (p *PreGain) Apply(frame []float64) {
	if len(frame) == 0 {
		return
	}
	floats.Scale(p.Gain(), frame)
	rms := math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
	p.level = p.params.Smoothing*p.level + (1-p.params.Smoothing)*rms

	e := math.Log2(p.params.Target) - math.Log2(p.level+1e-9)
	p.logGain += p.params.Kp*e + p.params.Kd*(e-p.err)
	lim := math.Log2(p.params.MaxGain)
	p.logGain = math.Max(-lim, math.Min(lim, p.logGain))
	p.err = e

	if glog.V(3) {
		glog.Infof("level %.3f pregain %.2f", p.level, p.Gain())
	}
}
