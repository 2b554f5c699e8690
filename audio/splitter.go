package audio

import "github.com/golang/glog"

// Writer receives one channel of deinterleaved samples.
type Writer interface {
	Write([]float64)
}

// Split deinterleaves frames of n channels into n output streams, converting
// to float64 so they're easier to work with down the line.
// Slow consumers drop frames instead of stalling the source.
func Split(done chan struct{}, in <-chan []float32, n int) []chan []float64 {
	out := make([]chan []float64, n)
	for i := range out {
		out[i] = make(chan []float64, 4)
	}

	go func() {
		for i := range out {
			defer close(out[i])
		}

		for {
			var x []float32
			select {
			case <-done:
				return
			case x = <-in:
			}
			if x == nil {
				return
			}

			frames := len(x) / n
			for c := range out {
				y := make([]float64, frames)
				for i := range y {
					y[i] = float64(x[i*n+c])
				}
				select {
				case out[c] <- y:
				default:
					glog.V(2).Infof("channel %d overrun, frame was dropped", c)
				}
			}
		}
	}()

	return out
}

// Connect feeds every split channel that has a Writer in taps, and drains
// the rest. Channels 0 and 1 are audible and normally left untapped.
func Connect(done chan struct{}, split []chan []float64, taps map[int]Writer) {
	for c, ch := range split {
		w := taps[c]
		go func(ch chan []float64, w Writer) {
			for {
				select {
				case <-done:
					return
				case x, ok := <-ch:
					if !ok {
						return
					}
					if w != nil {
						w.Write(x)
					}
				}
			}
		}(ch, w)
	}
}
