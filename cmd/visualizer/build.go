package main

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"

	"github.com/peragwin/vuzicscene/contour"
	"github.com/peragwin/vuzicscene/control"
	"github.com/peragwin/vuzicscene/engine"
	"github.com/peragwin/vuzicscene/scene"
)

// routers dispatch device events onto the scene.
type routers struct {
	messages *control.Router
	params   *control.ParamRouter
}

func parseLightKind(kind string) (scene.LightKind, error) {
	switch strings.ToLower(kind) {
	case "ambient":
		return scene.Ambient, nil
	case "directional", "":
		return scene.Directional, nil
	case "point":
		return scene.Point, nil
	}
	return 0, fmt.Errorf("unknown light kind %q", kind)
}

// build creates the scene described by cfg and starts loading its models.
func build(ctx context.Context, cfg *Config, a *control.Automation) (*engine.Engine, *routers, error) {
	cc := cfg.Camera
	camera := scene.NewCamera(cc.Fov, 1, cc.Near, cc.Far)
	camera.Transform().Position = mgl32.Vec3(cc.Position)
	camera.Target = mgl32.Vec3(cc.Target)

	s := scene.New(camera)
	s.Pivot.Transform().Rotation = mgl32.Vec3(cc.PivotRotation)
	s.Post.Set("damp", float32(control.DefaultParameters.Damp))
	s.Post.Set("bloom", float32(control.DefaultParameters.Bloom))

	e := engine.New(s, a, cfg.Audio.FFTSize, cfg.Seed)
	if cc.Oscillate != nil && cc.Oscillate.Amplitude != 0 {
		e.Camera = &scene.Oscillator{
			Target:    s.Pivot,
			Center:    mgl32.Vec3(cc.Oscillate.Center),
			Amplitude: cc.Oscillate.Amplitude,
		}
	}

	for _, lc := range cfg.Lights {
		kind, err := parseLightKind(lc.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("light %s: %w", lc.Name, err)
		}
		l := scene.NewLight(lc.Name, kind, scene.Hex(lc.Color), lc.Intensity)
		l.Transform().Position = mgl32.Vec3(lc.Position)
		s.AddLight(l)
		if lc.Orbit != nil {
			e.Orbit = &scene.Orbit{Target: l, Radius: lc.Orbit.Radius, Height: lc.Orbit.Height}
		}
	}

	if cfg.Stars.Count > 0 {
		rng := rand.New(rand.NewSource(cfg.Seed))
		s.Root.Add(scene.NewStarField(rng, cfg.Stars.Count, cfg.Stars.Spread))
	}
	if cfg.Contours.Count > 0 {
		e.Contours = contour.NestedSquares(cfg.Contours.Count, cfg.Contours.Step, cfg.Contours.Points)
	}

	for _, spec := range cfg.Models {
		if spec.Path != "" && !filepath.IsAbs(spec.Path) {
			spec.Path = filepath.Join(cfg.Assets, spec.Path)
		}
		glog.Infof("loading model %s", spec.Name)
		e.LoadModel(ctx, spec)
	}

	r := &routers{
		messages: control.NewRouter(s),
		params:   control.NewParamRouter(s, control.MorphTargets(s)),
	}
	for _, b := range cfg.Messages {
		h, ok := handler(s, a, b)
		if !ok {
			return nil, nil, fmt.Errorf("message %s: unknown handler kind %q", b.Tag, b.Kind)
		}
		r.messages.Handle(b.Tag, h)
	}
	for _, b := range cfg.Params {
		h, ok := handler(s, a, b)
		if !ok {
			return nil, nil, fmt.Errorf("param %s: unknown handler kind %q", b.Tag, b.Kind)
		}
		r.params.Bind(b.Tag, h)
	}
	return e, r, nil
}

// handler resolves a binding. Kind "automation" sets the automation
// parameter named by the target.
func handler(s *scene.Scene, a *control.Automation, b BindingConfig) (control.Handler, bool) {
	if b.Kind != "automation" {
		return control.Factory(s, b.Kind, b.Target)
	}
	name := b.Target
	return func(v float64) {
		if !a.Set(name, v) {
			glog.Warningf("automation parameter %q rejected %v", name, v)
		}
	}, true
}
