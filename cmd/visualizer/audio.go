package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/peragwin/vuzicscene/audio"
	"github.com/peragwin/vuzicscene/audio/fft"
	"github.com/peragwin/vuzicscene/engine"
	"github.com/peragwin/vuzicscene/rnbo"
)

// dialer picks the message link by the scheme of cfg.Link.
func dialer(cfg AudioConfig) func(ctx context.Context) (rnbo.Link, error) {
	return func(ctx context.Context) (rnbo.Link, error) {
		switch {
		case strings.HasPrefix(cfg.Link, "ws://"), strings.HasPrefix(cfg.Link, "wss://"):
			return rnbo.DialWebSocket(ctx, cfg.Link)
		case strings.HasPrefix(cfg.Link, "tcp://"), strings.HasPrefix(cfg.Link, "mqtt://"),
			strings.HasPrefix(cfg.Link, "ssl://"):
			broker := strings.Replace(cfg.Link, "mqtt://", "tcp://", 1)
			return rnbo.DialMQTT(ctx, broker, cfg.TopicPrefix)
		}
		return nil, fmt.Errorf("unsupported link %q", cfg.Link)
	}
}

// startAudio bootstraps the device, starts capture of its output and routes
// its events. It only logs failures; the visuals run without audio.
func startAudio(ctx context.Context, done chan struct{}, cfg AudioConfig,
	e *engine.Engine, actx *audio.Context, r *routers) {
	if err := runAudio(ctx, done, cfg, e, actx, r); err != nil {
		glog.Errorf("audio setup failed, continuing without audio: %v", err)
	}
}

func analyserConfig(cfg AudioConfig) fft.AnalyserConfig {
	a := fft.DefaultAnalyserConfig
	a.FFTSize = cfg.FFTSize
	a.SampleRate = cfg.SampleRate
	a.PreGain = cfg.PreGain
	return a
}

func runAudio(ctx context.Context, done chan struct{}, cfg AudioConfig,
	e *engine.Engine, actx *audio.Context, r *routers) error {
	installer, err := rnbo.NewRuntimeInstaller(cfg.RuntimeBase, cfg.CacheDir)
	if err != nil {
		return err
	}
	session, err := rnbo.Bootstrap(ctx, &rnbo.Config{
		PatchURL:        cfg.Patch,
		DependenciesURL: cfg.Dependencies,
		DependencyBase:  cfg.DependencyBase,
		Channels:        cfg.Channels,
		Analyser:        analyserConfig(cfg),
		Installer:       installer,
		Factory:         rnbo.NewRemoteFactory(dialer(cfg)),
		Client:          &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		return err
	}

	go r.messages.Run(done, session.Device.Messages())
	go r.params.Run(done, session.Device.Params())

	frames, errc := audio.NewSource(ctx, &audio.Config{
		BlockSize:      cfg.BlockSize,
		Channels:       session.Channels(),
		OutputChannels: 2,
		SampleRate:     cfg.SampleRate,
		Device:         cfg.Device,
	}, actx)
	session.Connect(done, frames)

	if tap := session.Tap(cfg.Primary); tap != nil {
		e.Primary.Store(tap)
	} else {
		glog.Warningf("no analyser on channel %d", cfg.Primary)
	}
	if cfg.Secondary > 0 {
		if tap := session.Tap(cfg.Secondary); tap != nil {
			e.Secondary.Store(tap)
		}
	}
	glog.Infof("audio ready: %d channels, analysing %d", session.Channels(), len(session.Analysers))

	select {
	case err := <-errc:
		e.Primary.Store(nil)
		e.Secondary.Store(nil)
		return err
	case <-done:
		return session.Device.Close()
	}
}
