package rnbo

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
)

// Dependency is an auxiliary data buffer the device loads by id.
type Dependency struct {
	ID   string `json:"id"`
	File string `json:"file,omitempty"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

// LoadDependencies reads the optional manifest at loc and prefixes each
// file with base. A missing or malformed manifest yields no dependencies.
func LoadDependencies(ctx context.Context, client *http.Client, loc, base string) []Dependency {
	if loc == "" {
		return nil
	}
	data, err := fetch(ctx, client, loc)
	if err != nil {
		glog.V(1).Infof("no dependencies: %v", err)
		return nil
	}
	var deps []Dependency
	if err := json.Unmarshal(data, &deps); err != nil {
		glog.V(1).Infof("ignoring dependencies manifest: %v", err)
		return nil
	}
	return RebaseDependencies(deps, base)
}

// RebaseDependencies prefixes every file reference with base.
func RebaseDependencies(deps []Dependency, base string) []Dependency {
	out := make([]Dependency, len(deps))
	for i, d := range deps {
		if d.File != "" {
			d.File = base + d.File
		}
		out[i] = d
	}
	return out
}
