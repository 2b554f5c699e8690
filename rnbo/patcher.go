// Package rnbo bootstraps an exported audio patch running in an external
// runner and connects its outputs to the visualizer.
package rnbo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	// ErrDebugBuild means the patch was exported by a development build
	// whose runtime is not published.
	ErrDebugBuild = errors.New("patcher exported with a debug version")
	// ErrNoPatchVersion means the patch description lacks a version.
	ErrNoPatchVersion = errors.New("patcher has no rnbo version")
)

var debugVersion = regexp.MustCompile(`^\d+\.\d+\.\d+-dev$`)

// Patcher is an exported patch description. Raw keeps the full document
// for the runner.
type Patcher struct {
	Desc struct {
		Meta struct {
			Version string `json:"rnboversion"`
		} `json:"meta"`
		NumOutputChannels int `json:"numOutputChannels"`
	} `json:"desc"`

	Raw json.RawMessage `json:"-"`
}

// Version returns the runtime version the patch was exported for.
func (p *Patcher) Version() string {
	return p.Desc.Meta.Version
}

// CheckVersion rejects missing and debug versions.
func CheckVersion(v string) error {
	if v == "" {
		return ErrNoPatchVersion
	}
	if debugVersion.MatchString(v) {
		return fmt.Errorf("%w: %s", ErrDebugBuild, v)
	}
	return nil
}

// ParsePatcher decodes a patch description.
func ParsePatcher(data []byte) (*Patcher, error) {
	p := &Patcher{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decoding patcher: %w", err)
	}
	p.Raw = append(json.RawMessage(nil), data...)
	return p, nil
}

// FetchPatcher reads a patch description from an http(s) URL or a file.
func FetchPatcher(ctx context.Context, client *http.Client, loc string) (*Patcher, error) {
	data, err := fetch(ctx, client, loc)
	if err != nil {
		return nil, err
	}
	return ParsePatcher(data)
}

func isURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// fetch reads loc from the network or disk.
func fetch(ctx context.Context, client *http.Client, loc string) ([]byte, error) {
	if !isURL(loc) {
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", loc, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", loc, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", loc, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
