package scene

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LoopMode says what an action does at the end of its clip.
type LoopMode int

// Loop modes
const (
	LoopRepeat LoopMode = iota
	// LoopOnce stops on the last frame.
	LoopOnce
)

// Path is the transform property a channel animates.
type Path int

// Animated paths
const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

// Channel samples one property of one node with linear interpolation.
type Channel struct {
	Target Node
	Path   Path
	Times  []float32
	Values []mgl32.Vec3
}

func (c *Channel) sample(t float32) mgl32.Vec3 {
	n := len(c.Times)
	if n == 0 {
		return mgl32.Vec3{}
	}
	if t <= c.Times[0] {
		return c.Values[0]
	}
	if t >= c.Times[n-1] {
		return c.Values[n-1]
	}
	i := sort.Search(n, func(i int) bool { return c.Times[i] > t })
	t0, t1 := c.Times[i-1], c.Times[i]
	f := (t - t0) / (t1 - t0)
	return c.Values[i-1].Mul(1 - f).Add(c.Values[i].Mul(f))
}

func (c *Channel) apply(t float32) {
	v := c.sample(t)
	tr := c.Target.Transform()
	switch c.Path {
	case PathTranslation:
		tr.Position = v
	case PathRotation:
		tr.Rotation = v
	case PathScale:
		tr.Scale = v
	}
}

// Clip is a named set of channels.
type Clip struct {
	Name     string
	Duration float32
	Channels []*Channel
}

// Action plays a clip.
type Action struct {
	Clip   *Clip
	Loop   LoopMode
	Paused bool
	time   float32
}

// NewAction returns a playing action at time 0.
func NewAction(clip *Clip, loop LoopMode) *Action {
	return &Action{Clip: clip, Loop: loop}
}

// Time is the position in the clip.
func (a *Action) Time() float32 { return a.time }

// SetTime seeks and applies the clip.
func (a *Action) SetTime(t float32) {
	a.time = t
	a.apply()
}

// Play unpauses the action. Playing actions are unaffected.
func (a *Action) Play() {
	a.Paused = false
}

// Advance moves a playing action forward by dt seconds.
func (a *Action) Advance(dt float32) {
	if a.Paused {
		return
	}
	a.time += dt
	if d := a.Clip.Duration; d > 0 && a.time > d {
		switch a.Loop {
		case LoopOnce:
			a.time = d
		case LoopRepeat:
			a.time = math32.Mod(a.time, d)
		}
	}
	a.apply()
}

func (a *Action) apply() {
	for _, c := range a.Clip.Channels {
		c.apply(a.time)
	}
}
