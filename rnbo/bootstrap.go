package rnbo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang/glog"

	"github.com/peragwin/vuzicscene/audio"
	"github.com/peragwin/vuzicscene/audio/fft"
)

// Config configures Bootstrap.
type Config struct {
	PatchURL        string
	DependenciesURL string
	// DependencyBase prefixes every dependency file.
	DependencyBase string
	// Channels the device output is split into. 0 and 1 are audible, the
	// rest are analysed.
	Channels int
	Analyser fft.AnalyserConfig

	Installer *RuntimeInstaller
	Factory   Factory
	Client    *http.Client
}

// Session is a bootstrapped device and the analysers tapping its outputs.
type Session struct {
	Device    Device
	Analysers map[int]*fft.Analyser
	channels  int
}

// Bootstrap fetches the patch, installs its runtime, creates the device
// and builds an analyser for every channel from 2 on. Any failure aborts
// the whole setup.
func Bootstrap(ctx context.Context, cfg *Config) (*Session, error) {
	patcher, err := FetchPatcher(ctx, cfg.Client, cfg.PatchURL)
	if err != nil {
		return nil, err
	}
	version := patcher.Version()
	if err := CheckVersion(version); err != nil {
		return nil, err
	}

	var runtime string
	if cfg.Installer != nil {
		if runtime, err = cfg.Installer.Ensure(ctx, version); err != nil {
			return nil, err
		}
	}

	deps := LoadDependencies(ctx, cfg.Client, cfg.DependenciesURL, cfg.DependencyBase)

	if cfg.Factory == nil {
		return nil, fmt.Errorf("no device factory")
	}
	dev, err := cfg.Factory(ctx, DeviceOptions{
		Patcher:  patcher,
		Runtime:  runtime,
		Channels: cfg.Channels,
	})
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}
	glog.Infof("created device for patch version %s", version)

	if err := dev.LoadDependencies(ctx, deps); err != nil {
		dev.Close()
		return nil, fmt.Errorf("loading dependencies: %w", err)
	}

	channels := cfg.Channels
	if channels == 0 {
		channels = dev.OutputChannels()
	}
	s := &Session{Device: dev, Analysers: make(map[int]*fft.Analyser), channels: channels}
	for c := 2; c < channels; c++ {
		a, err := fft.NewAnalyser(cfg.Analyser)
		if err != nil {
			dev.Close()
			return nil, err
		}
		s.Analysers[c] = a
	}
	return s, nil
}

// Channels is the number of device channels.
func (s *Session) Channels() int { return s.channels }

// Tap returns the analyser of channel c, or nil.
func (s *Session) Tap(c int) *fft.Analyser {
	return s.Analysers[c]
}

// Connect routes captured frames of the device output into the analysers.
func (s *Session) Connect(done chan struct{}, frames <-chan []float32) {
	split := audio.Split(done, frames, s.channels)
	taps := make(map[int]audio.Writer, len(s.Analysers))
	for c, a := range s.Analysers {
		taps[c] = a
	}
	audio.Connect(done, split, taps)
}
