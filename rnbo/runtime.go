package rnbo

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	homedir "github.com/mitchellh/go-homedir"
)

// DefaultRuntimeBase is where published runtimes live, one directory per
// version.
const DefaultRuntimeBase = "https://c74-public.nyc3.digitaloceanspaces.com/rnbo"

const runtimeFile = "rnbo.min.js"

// RuntimeInstaller keeps runtimes for patch versions in a local cache.
type RuntimeInstaller struct {
	BaseURL  string
	CacheDir string
	fetch    func(ctx context.Context, loc string) ([]byte, error)
}

// NewRuntimeInstaller caches into dir. An empty dir means ~/.cache/rnbo.
func NewRuntimeInstaller(base, dir string) (*RuntimeInstaller, error) {
	if base == "" {
		base = DefaultRuntimeBase
	}
	if dir == "" {
		dir = "~/.cache/rnbo"
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache dir: %w", err)
	}
	return &RuntimeInstaller{
		BaseURL:  strings.TrimSuffix(base, "/"),
		CacheDir: dir,
		fetch: func(ctx context.Context, loc string) ([]byte, error) {
			return fetch(ctx, nil, loc)
		},
	}, nil
}

// RuntimeURL is where the runtime for version is published.
func (r *RuntimeInstaller) RuntimeURL(version string) string {
	return r.BaseURL + "/" + url.PathEscape(version) + "/" + runtimeFile
}

// Path is where the runtime for version is cached.
func (r *RuntimeInstaller) Path(version string) string {
	return filepath.Join(r.CacheDir, url.PathEscape(version), runtimeFile)
}

// Ensure returns the cached runtime for version, downloading it first if
// it is missing.
func (r *RuntimeInstaller) Ensure(ctx context.Context, version string) (string, error) {
	if err := CheckVersion(version); err != nil {
		return "", err
	}
	path := r.Path(version)
	if _, err := os.Stat(path); err == nil {
		glog.V(1).Infof("using cached runtime %s", path)
		return path, nil
	}

	loc := r.RuntimeURL(version)
	glog.Infof("downloading runtime %s", loc)
	data, err := r.fetch(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("loading runtime v%s: %w", version, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}
