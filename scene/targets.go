package scene

import (
	"regexp"
	"sort"
	"strconv"
)

// TargetSet names the meshes a handler can address, e.g. "1" through "9".
// It is built once after a model loads and only read afterwards.
type TargetSet struct {
	names  []string
	meshes map[string][]*Mesh
}

// NewTargetSet collects meshes below root whose names match pattern.
func NewTargetSet(root Node, pattern *regexp.Regexp) *TargetSet {
	ts := &TargetSet{meshes: make(map[string][]*Mesh)}
	Walk(root, func(n Node) bool {
		m, ok := n.(*Mesh)
		if !ok || !pattern.MatchString(m.Name()) {
			return true
		}
		if _, seen := ts.meshes[m.Name()]; !seen {
			ts.names = append(ts.names, m.Name())
		}
		ts.meshes[m.Name()] = append(ts.meshes[m.Name()], m)
		return true
	})
	sort.Strings(ts.names)
	return ts
}

// Names returns the target names in order.
func (ts *TargetSet) Names() []string {
	if ts == nil {
		return nil
	}
	return ts.names
}

// Get returns the meshes named name.
func (ts *TargetSet) Get(name string) []*Mesh {
	if ts == nil {
		return nil
	}
	return ts.meshes[name]
}

// Len is the number of distinct names.
func (ts *TargetSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.names)
}

// Each calls fn for every name and mesh.
func (ts *TargetSet) Each(fn func(name string, m *Mesh)) {
	if ts == nil {
		return
	}
	for _, name := range ts.names {
		for _, m := range ts.meshes[name] {
			fn(name, m)
		}
	}
}

// Key formats an integer selector the way targets are named.
func Key(selector int) string {
	return strconv.Itoa(selector)
}
