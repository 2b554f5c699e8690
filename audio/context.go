package audio

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// Context gates audio processing on a user gesture. It starts suspended, and
// the first call to Resume releases it for good.
type Context struct {
	running atomic.Bool
	once    sync.Once
	resumed chan struct{}
}

// NewContext returns a suspended Context.
func NewContext() *Context {
	return &Context{resumed: make(chan struct{})}
}

// Resume starts audio. Further calls have no effect.
func (c *Context) Resume() {
	c.once.Do(func() {
		c.running.Store(true)
		close(c.resumed)
		glog.Info("audio context resumed")
	})
}

// Suspended reports whether Resume has not been called yet.
func (c *Context) Suspended() bool {
	return !c.running.Load()
}

// Resumed is closed once the context is running.
func (c *Context) Resumed() <-chan struct{} {
	return c.resumed
}
