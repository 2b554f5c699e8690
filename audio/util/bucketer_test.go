package util

import (
	"testing"
)

func TestBucketer(t *testing.T) {
	size := 2048
	frame := make([]float64, size)
	for i := range frame {
		frame[i] = 1
	}

	for _, scale := range []Scale{MelScale, LogScale2} {
		b := NewBucketer(scale, 16, size, 32, 16000)
		buckets := b.Bucket(frame)
		if len(buckets) != 16 {
			t.Fatal("wrong bucket count", len(buckets))
		}

		// every bin lands in exactly one bucket
		sum := 0.0
		for _, v := range buckets {
			sum += v
		}
		if sum != float64(size) {
			t.Fatal("bins lost or duplicated", sum, b.indices)
		}

		for i := 1; i < len(b.indices); i++ {
			if b.indices[i] <= b.indices[i-1] {
				t.Fatal("indices not increasing", b.indices)
			}
		}
	}
}

func TestBucketerSmallFrame(t *testing.T) {
	// more buckets than low-frequency bins still yields non-empty spans
	b := NewBucketer(LogScale2, 8, 128, 20, 24000)
	for i := 0; i < b.Buckets; i++ {
		start, stop := b.Span(i)
		if stop <= start {
			t.Fatalf("bucket %d empty: [%d, %d)", i, start, stop)
		}
	}
}
