package control

import (
	"math"

	"github.com/golang/glog"

	"github.com/peragwin/vuzicscene/scene"
)

// selectedKey returns the target name for payload, or "" when payload is
// not a positive integer.
func selectedKey(payload float64) string {
	if payload < 1 || payload != math.Trunc(payload) {
		return ""
	}
	return scene.Key(int(payload))
}

// SelectOpacity makes the target named by the payload opaque and every
// other target in set transparent. A payload of 0 or one naming no target
// leaves none opaque.
func SelectOpacity(s *scene.Scene, set string) Handler {
	return func(payload float64) {
		key := selectedKey(payload)
		s.Targets[set].Each(func(name string, m *scene.Mesh) {
			if name == key {
				m.Material.Opacity = 1
			} else {
				m.Material.Opacity = 0
			}
		})
	}
}

// SelectVisible shows the target named by the payload and hides every
// other target in set. A payload of 0 or one naming no target hides all.
func SelectVisible(s *scene.Scene, set string) Handler {
	return func(payload float64) {
		key := selectedKey(payload)
		s.Targets[set].Each(func(name string, m *scene.Mesh) {
			m.Visible = name == key
		})
	}
}

// LightIntensity sets the intensity of the named light.
func LightIntensity(s *scene.Scene, light string) Handler {
	return func(payload float64) {
		l, ok := s.Lights[light]
		if !ok {
			glog.Warningf("no light named %q", light)
			return
		}
		l.Intensity = float32(payload)
	}
}

// PostParam sets a post-processing parameter.
func PostParam(s *scene.Scene, name string) Handler {
	return func(payload float64) {
		s.Post.Set(name, float32(payload))
	}
}

// TriggerAnimations unpauses every animation action. Repeated triggers
// have no further effect.
func TriggerAnimations(s *scene.Scene) Handler {
	return func(float64) {
		for _, a := range s.Actions {
			a.Play()
		}
	}
}

// MorphTargets sets the matching morph channel of every mesh, clamped to
// [0,1]. Names compare case and whitespace insensitively.
func MorphTargets(s *scene.Scene) ParamHandler {
	return func(name string, value float64) {
		n := 0
		for _, m := range s.MorphMeshes() {
			n += m.MorphTargets().Set(name, float32(value))
		}
		if n == 0 {
			glog.V(2).Infof("no morph channel for parameter %s", name)
		}
	}
}

// Factory builds a handler by kind for config driven bindings.
func Factory(s *scene.Scene, kind, target string) (Handler, bool) {
	switch kind {
	case "opacity":
		return SelectOpacity(s, target), true
	case "visible":
		return SelectVisible(s, target), true
	case "light":
		return LightIntensity(s, target), true
	case "post":
		return PostParam(s, target), true
	case "animation":
		return TriggerAnimations(s), true
	}
	return nil, false
}
