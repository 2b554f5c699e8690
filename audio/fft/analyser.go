package fft

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/peragwin/vuzicscene/audio/util"
)

// ErrNotPowerOf2 is returned for analyser sizes that are not a power of two.
var ErrNotPowerOf2 = errors.New("fft size is not a power of 2")

// Analyser taps one audio channel and exposes the same byte views a browser
// AnalyserNode does: smoothed decibel-scaled frequency bins and the raw time
// domain window. Its resolution is fixed at creation.
type Analyser struct {
	mu sync.Mutex

	size      int
	buffer    *util.RingBuffer
	proc      *FFTProcessor
	pregain   *util.PreGain
	frame     []float64
	mags      []float64
	smoothed  []float64
	smoothing float64
	minDB     float64
	maxDB     float64
}

// AnalyserConfig configures a new Analyser.
type AnalyserConfig struct {
	// FFTSize must be a power of 2, eg. 256.
	FFTSize    int
	SampleRate float64
	// SmoothingTimeConstant averages magnitudes over time, in [0,1).
	SmoothingTimeConstant float64
	MinDecibels           float64
	MaxDecibels           float64
	// PreGain optionally normalizes the input level before analysis.
	PreGain bool
}

// DefaultAnalyserConfig matches a browser AnalyserNode with fftSize 256.
var DefaultAnalyserConfig = AnalyserConfig{
	FFTSize:               256,
	SampleRate:            48000,
	SmoothingTimeConstant: 0.8,
	MinDecibels:           -100,
	MaxDecibels:           -30,
}

// NewAnalyser creates an Analyser.
func NewAnalyser(cfg AnalyserConfig) (*Analyser, error) {
	if !powerOf2(cfg.FFTSize) {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOf2, cfg.FFTSize)
	}
	if cfg.MaxDecibels <= cfg.MinDecibels {
		return nil, fmt.Errorf("maxDecibels %v must exceed minDecibels %v",
			cfg.MaxDecibels, cfg.MinDecibels)
	}
	if cfg.SmoothingTimeConstant < 0 || cfg.SmoothingTimeConstant >= 1 {
		return nil, fmt.Errorf("smoothing time constant %v out of range [0,1)",
			cfg.SmoothingTimeConstant)
	}
	a := &Analyser{
		size:      cfg.FFTSize,
		buffer:    util.NewRingBuffer(cfg.FFTSize),
		proc:      NewFFTProcessor(cfg.SampleRate, cfg.FFTSize),
		frame:     make([]float64, cfg.FFTSize),
		mags:      make([]float64, cfg.FFTSize/2),
		smoothed:  make([]float64, cfg.FFTSize/2),
		smoothing: cfg.SmoothingTimeConstant,
		minDB:     cfg.MinDecibels,
		maxDB:     cfg.MaxDecibels,
	}
	if cfg.PreGain {
		a.pregain = util.NewPreGain(util.DefaultPreGainParams)
	}
	return a, nil
}

// FFTSize is the number of time domain samples analysed.
func (a *Analyser) FFTSize() int {
	return a.size
}

// FrequencyBinCount is FFTSize / 2, the resolution of both byte views.
func (a *Analyser) FrequencyBinCount() int {
	return a.size / 2
}

// SampleRate of the tapped channel.
func (a *Analyser) SampleRate() float64 {
	return a.proc.SampleRate
}

// Write pushes new samples into the analysis window. Blocks larger than the
// window only keep their tail.
func (a *Analyser) Write(samples []float64) {
	if len(samples) > a.size {
		samples = samples[len(samples)-a.size:]
	}
	if a.pregain != nil {
		a.mu.Lock()
		a.pregain.Apply(samples)
		a.mu.Unlock()
	}
	a.buffer.Push(samples)
}

// Process consumes frames from in until done is closed or in is closed.
func (a *Analyser) Process(done chan struct{}, in <-chan []float64) {
	go func() {
		for {
			select {
			case <-done:
				return
			case x, ok := <-in:
				if !ok {
					return
				}
				a.Write(x)
			}
		}
	}()
}

// ByteFrequencyData writes min(len(dst), FrequencyBinCount) smoothed bin
// magnitudes scaled from [minDecibels, maxDecibels] to [0, 255].
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buffer.ReadInto(a.frame, 0)
	a.proc.Magnitudes(a.mags, a.frame)

	scale := 255 / (a.maxDB - a.minDB)
	for k := range a.smoothed {
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*a.mags[k]
		if k >= len(dst) {
			continue
		}
		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		dst[k] = clampByte(scale * (db - a.minDB))
	}
}

// ByteTimeDomainData writes the oldest min(len(dst), FFTSize) samples of the
// current window, mapping [-1, 1] to [0, 255] with 128 as silence.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buffer.ReadInto(a.frame, 0)
	n := len(dst)
	if n > a.size {
		n = a.size
	}
	for i := 0; i < n; i++ {
		dst[i] = clampByte(128 * (a.frame[i] + 1))
	}
}

func clampByte(v float64) byte {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
