package util

import (
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
)

type Scale interface {
	To(float64) float64
	From(float64) float64
}

type melScale struct{}

var MelScale *melScale

func (s *melScale) To(val float64) float64 {
	return 1127 * math.Log(1+val/700)
}

func (s *melScale) From(val float64) float64 {
	return 700 * (math.Exp(val/1127.0) - 1)
}

type logScale2 struct{}

// LogScale2 spaces buckets by octave.
var LogScale2 *logScale2

func (s *logScale2) To(val float64) float64 {
	return math.Log2(val)
}

func (s *logScale2) From(val float64) float64 {
	return math.Exp2(val)
}

// Bucketer puts the spectrum into N buckets using a perceptual frequency scale.
type Bucketer struct {
	Buckets int
	Size    int
	Scale   Scale

	// generate N-1 indices to split a frame into N Buckets
	indices []int
}

// NewBucketer splits a frame of frameSize bins spanning [0, fMax] into buckets
// evenly spaced on scale between fMin and fMax.
func NewBucketer(scale Scale, buckets, frameSize int, fMin, fMax float64) *Bucketer {
	sMin := scale.To(fMin)
	sMax := scale.To(fMax)
	space := (sMax - sMin) / float64(buckets)
	indices := make([]int, buckets-1)
	prev := 0
	for i := range indices {
		idx := scale.From(sMin + float64(i+1)*space)
		n := int(math.Ceil(float64(frameSize) * idx / fMax))
		// every bucket covers at least one bin
		if n <= prev {
			n = prev + 1
		}
		if n > frameSize {
			n = frameSize
		}
		indices[i] = n
		prev = n
	}
	return &Bucketer{
		Buckets: buckets,
		Size:    frameSize,
		Scale:   scale,
		indices: indices,
	}
}

// Span returns the half open bin range [start, stop) of bucket i.
func (b *Bucketer) Span(i int) (start, stop int) {
	if i > 0 {
		start = b.indices[i-1]
	}
	if i == b.Buckets-1 {
		stop = b.Size
	} else {
		stop = b.indices[i]
	}
	return start, stop
}

// Bucket sums the frame into a newly allocated slice of buckets.
func (b *Bucketer) Bucket(frame []float64) []float64 {
	buckets := make([]float64, b.Buckets)
	b.BucketInto(buckets, frame)
	return buckets
}

// BucketInto sums the frame into dst, which must hold Buckets values.
func (b *Bucketer) BucketInto(dst, frame []float64) {
	if len(frame) != b.Size {
		glog.Errorf("frame size %d does not match bucket size %d", len(frame), b.Size)
		return
	}
	for i := 0; i < b.Buckets; i++ {
		start, stop := b.Span(i)
		if start >= stop {
			dst[i] = 0
			continue
		}
		dst[i] = floats.Sum(frame[start:stop])
	}
}
