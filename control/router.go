// Package control routes device messages and parameter changes to the
// scene.
package control

import (
	"sync"

	"github.com/golang/glog"
)

// Message is a tagged event from the audio device.
type Message struct {
	Tag     string
	Payload float64
}

// Handler mutates the scene in response to a message payload.
type Handler func(payload float64)

// Router maps message tags to handlers.
type Router struct {
	lock     sync.Locker
	handlers map[string]Handler
}

// NewRouter returns a router whose Run holds lock while handling each
// message.
func NewRouter(lock sync.Locker) *Router {
	return &Router{lock: lock, handlers: make(map[string]Handler)}
}

// Handle registers h for tag, replacing any previous handler.
func (r *Router) Handle(tag string, h Handler) {
	r.handlers[tag] = h
}

// Tags lists the registered tags.
func (r *Router) Tags() []string {
	tags := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		tags = append(tags, t)
	}
	return tags
}

// Dispatch calls the handler for tag and reports whether one exists.
// Unknown tags are ignored. The caller must hold the scene lock.
func (r *Router) Dispatch(tag string, payload float64) bool {
	h, ok := r.handlers[tag]
	if !ok {
		glog.V(2).Infof("ignoring message %s: %v", tag, payload)
		return false
	}
	glog.V(2).Infof("message %s: %v", tag, payload)
	h(payload)
	return true
}

// Run handles messages one at a time until in closes or done is closed.
func (r *Router) Run(done <-chan struct{}, in <-chan Message) {
	for {
		select {
		case <-done:
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			r.lock.Lock()
			r.Dispatch(m.Tag, m.Payload)
			r.lock.Unlock()
		}
	}
}

// ParamChange is a device parameter that changed value.
type ParamChange struct {
	Name  string
	Value float64
}

// ParamHandler receives every parameter change not bound by name.
type ParamHandler func(name string, value float64)

// ParamRouter routes the continuous parameter stream. Named bindings win
// over the fallback.
type ParamRouter struct {
	lock     sync.Locker
	bindings map[string]Handler
	fallback ParamHandler
}

// NewParamRouter returns a router that passes unbound parameters to
// fallback.
func NewParamRouter(lock sync.Locker, fallback ParamHandler) *ParamRouter {
	return &ParamRouter{
		lock:     lock,
		bindings: make(map[string]Handler),
		fallback: fallback,
	}
}

// Bind routes parameter name to h.
func (p *ParamRouter) Bind(name string, h Handler) {
	p.bindings[name] = h
}

// Dispatch routes one change. The caller must hold the scene lock.
func (p *ParamRouter) Dispatch(name string, value float64) {
	glog.V(2).Infof("parameter %s: %v", name, value)
	if h, ok := p.bindings[name]; ok {
		h(value)
		return
	}
	if p.fallback != nil {
		p.fallback(name, value)
	}
}

// Run handles changes one at a time until in closes or done is closed.
func (p *ParamRouter) Run(done <-chan struct{}, in <-chan ParamChange) {
	for {
		select {
		case <-done:
			return
		case c, ok := <-in:
			if !ok {
				return
			}
			p.lock.Lock()
			p.Dispatch(c.Name, c.Value)
			p.lock.Unlock()
		}
	}
}
