package fft

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// FFTProcessor computes windowed magnitude spectra of fixed size frames.
type FFTProcessor struct {
	SampleRate float64
	Size       int

	window   []float64
	windowed []float64
}

// NewFFTProcessor uses a Blackman window, which is what browser analysers use.
func NewFFTProcessor(sampleRate float64, size int) *FFTProcessor {
	return &FFTProcessor{
		SampleRate: sampleRate,
		Size:       size,
		window:     window.Blackman(size),
		windowed:   make([]float64, size),
	}
}

// Magnitudes writes |X[k]| / Size for the first len(dst) bins of the windowed
// frame into dst. len(frame) must equal Size.
func (f *FFTProcessor) Magnitudes(dst, frame []float64) {
	for i := range frame {
		f.windowed[i] = f.window[i] * frame[i]
	}
	X := fft.FFTReal(f.windowed)
	n := float64(f.Size)
	for k := range dst {
		dst[k] = cmplx.Abs(X[k]) / n
	}
}

// BinFrequency is the center frequency in Hz of bin k.
func (f *FFTProcessor) BinFrequency(k int) float64 {
	return float64(k) * f.SampleRate / float64(f.Size)
}

func powerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
