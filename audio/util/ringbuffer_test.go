package util

import "testing"

func TestRingBufferReadInto(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Push([]float64{1, 2, 3, 4, 5, 6})
	rb.Push([]float64{7, 8, 9, 10, 11, 12})

	cases := []struct {
		size, offset int
		exp          []float64
	}{
		{10, 0, []float64{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{4, 0, []float64{9, 10, 11, 12}},
		{10, 2, []float64{11, 12, 3, 4, 5, 6, 7, 8, 9, 10}},
		{10, -2, []float64{5, 6, 7, 8, 9, 10, 11, 12, 3, 4}},
	}
	for _, c := range cases {
		dst := make([]float64, c.size)
		rb.ReadInto(dst, c.offset)
		for i := range dst {
			if dst[i] != c.exp[i] {
				t.Fatal(c.exp, dst)
			}
		}
	}
}
