package audio

import (
	"sync"
	"testing"
	"time"
)

func TestContextStartsSuspended(t *testing.T) {
	c := NewContext()
	if !c.Suspended() {
		t.Fatal("context should start suspended")
	}
	select {
	case <-c.Resumed():
		t.Fatal("resumed channel closed before Resume")
	default:
	}

	c.Resume()
	c.Resume()
	if c.Suspended() {
		t.Fatal("context still suspended after Resume")
	}
	<-c.Resumed()
}

func TestMixSilentWhileSuspended(t *testing.T) {
	in := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	play := make([]float32, 4)

	mix(play, in, 4, 2, false)
	exp := []float32{1, 2, 5, 6}
	for i := range exp {
		if play[i] != exp[i] {
			t.Fatal(exp, play)
		}
	}

	mix(play, in, 4, 2, true)
	for i := range play {
		if play[i] != 0 {
			t.Fatal("expected silence", play)
		}
	}
}

type recorder struct {
	sync.Mutex
	got [][]float64
}

func (r *recorder) Write(x []float64) {
	r.Lock()
	defer r.Unlock()
	r.got = append(r.got, x)
}

func TestSplitConnect(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	in := make(chan []float32)
	split := Split(done, in, 4)
	rec := &recorder{}
	Connect(done, split, map[int]Writer{2: rec})

	// two frames of four interleaved channels
	in <- []float32{0, 1, 2, 3, 10, 11, 12, 13}

	deadline := time.After(time.Second)
	for {
		rec.Lock()
		n := len(rec.got)
		rec.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("tap never received a frame")
		case <-time.After(time.Millisecond):
		}
	}

	rec.Lock()
	defer rec.Unlock()
	exp := []float64{2, 12}
	for i := range exp {
		if rec.got[0][i] != exp[i] {
			t.Fatal(exp, rec.got[0])
		}
	}
}
