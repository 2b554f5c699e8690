package features

import (
	"sync/atomic"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/floats"

	"github.com/peragwin/vuzicscene/audio/util"
)

// Tap is read-only access to one analysed output channel. The resolution
// is fixed when the tap is created.
type Tap interface {
	FrequencyBinCount() int
	FFTSize() int
	ByteFrequencyData(dst []uint8)
	ByteTimeDomainData(dst []uint8)
}

// Extractor turns the current contents of a tap into normalized features.
// It keeps scratch buffers between calls and is not safe for concurrent use.
type Extractor struct {
	resolution int

	freq   []uint8
	wave   []uint8
	sum    []float64
	out    []float32
	bands  []float64
	bucket *util.Bucketer
}

// NewExtractor returns an Extractor whose neutral waveform has the given
// resolution.
func NewExtractor(resolution int) *Extractor {
	return &Extractor{resolution: resolution}
}

// Amplitude returns the mean byte frequency magnitude scaled to [0,1].
// A nil tap yields 0.
func (e *Extractor) Amplitude(tap Tap) float32 {
	if !e.readFrequency(tap) {
		return 0
	}
	return e.amplitude()
}

// Spectrum reads the frequency data of tap once and returns both its
// amplitude and n bands of it. Analysers smooth across reads, so a frame
// that needs both should call Spectrum rather than Amplitude and Bands.
func (e *Extractor) Spectrum(tap Tap, n int) (float32, []float64) {
	if !e.readFrequency(tap) {
		return 0, e.zeroBands(n)
	}
	return e.amplitude(), e.bandsOf(n)
}

func (e *Extractor) readFrequency(tap Tap) bool {
	if tap == nil {
		return false
	}
	n := tap.FrequencyBinCount()
	if n == 0 {
		return false
	}
	e.freq = grow8(e.freq, n)
	tap.ByteFrequencyData(e.freq)
	e.sum = grow64(e.sum, n)
	for i, b := range e.freq {
		e.sum[i] = float64(b) / 255
	}
	return true
}

func (e *Extractor) amplitude() float32 {
	return float32(floats.Sum(e.sum) / float64(len(e.sum)))
}

// Waveform returns the time domain samples recentered to [-1,1]. The slice
// is reused by the next call. A nil tap yields zeros.
func (e *Extractor) Waveform(tap Tap) []float32 {
	if tap == nil {
		e.out = grow32(e.out, e.resolution)
		for i := range e.out {
			e.out[i] = 0
		}
		return e.out
	}
	n := tap.FFTSize()
	e.wave = grow8(e.wave, n)
	tap.ByteTimeDomainData(e.wave)
	e.out = grow32(e.out, n)
	for i, b := range e.wave {
		e.out[i] = (float32(b) - 128) / 128
	}
	return e.out
}

// Bands splits the frequency data into n log scaled bands, each the mean
// magnitude of its bins scaled to [0,1]. A nil tap yields zeros and n < 1
// yields nil.
func (e *Extractor) Bands(tap Tap, n int) []float64 {
	if !e.readFrequency(tap) {
		return e.zeroBands(n)
	}
	return e.bandsOf(n)
}

func (e *Extractor) zeroBands(n int) []float64 {
	if n < 1 {
		return nil
	}
	e.bands = grow64(e.bands, n)
	for i := range e.bands {
		e.bands[i] = 0
	}
	return e.bands
}

// bandsOf buckets the last frequency read.
func (e *Extractor) bandsOf(n int) []float64 {
	if n < 1 {
		return nil
	}
	e.bands = grow64(e.bands, n)
	size := len(e.sum)
	if e.bucket == nil || e.bucket.Buckets != n || e.bucket.Size != size {
		// frequencies in units of bins, so octaves start at bin 1
		e.bucket = util.NewBucketer(util.LogScale2, n, size, 1, float64(size))
	}
	e.bucket.BucketInto(e.bands, e.sum)
	for i := range e.bands {
		if start, stop := e.bucket.Span(i); stop > start {
			e.bands[i] /= float64(stop - start)
		}
	}
	return e.bands
}

// Treble is the mean of the upper half of bands, the high end of the
// spectrum. A single band is its own treble.
func Treble(bands []float64) float32 {
	if len(bands) == 0 {
		return 0
	}
	upper := bands[len(bands)/2:]
	return float32(floats.Sum(upper) / float64(len(upper)))
}

// Peak returns the largest absolute waveform sample, useful for meters.
func Peak(wave []float32) float32 {
	var p float32
	for _, w := range wave {
		p = math32.Max(p, math32.Abs(w))
	}
	return p
}

// Slot holds a tap that may not be connected yet. The render loop reads it
// every frame while the audio bootstrap stores it once the device is ready.
type Slot struct {
	p atomic.Pointer[slotValue]
}

type slotValue struct{ tap Tap }

// Store connects t. A nil t disconnects.
func (s *Slot) Store(t Tap) {
	if t == nil {
		s.p.Store(nil)
		return
	}
	s.p.Store(&slotValue{t})
}

// Load returns the connected tap or nil.
func (s *Slot) Load() Tap {
	v := s.p.Load()
	if v == nil {
		return nil
	}
	return v.tap
}

func grow8(b []uint8, n int) []uint8 {
	if cap(b) < n {
		return make([]uint8, n)
	}
	return b[:n]
}

func grow32(b []float32, n int) []float32 {
	if cap(b) < n {
		return make([]float32, n)
	}
	return b[:n]
}

func grow64(b []float64, n int) []float64 {
	if cap(b) < n {
		return make([]float64, n)
	}
	return b[:n]
}
