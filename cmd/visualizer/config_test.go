package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/vuzicscene/control"
)

func TestMissingConfigUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOrganic(t *testing.T) {
	cfg, err := LoadConfig("organic.toml")
	require.NoError(t, err)

	require.Len(t, cfg.Models, 2)
	assert.Equal(t, "cpu", cfg.Models[0].Deform)
	assert.Equal(t, float32(2), cfg.Models[0].Sphere)
	assert.Equal(t, uint32(0x00ff8c), cfg.Models[0].Material.Color)
	assert.True(t, cfg.Models[1].Moving)

	require.Len(t, cfg.Lights, 1)
	require.NotNil(t, cfg.Lights[0].Orbit)
	assert.Equal(t, float32(8), cfg.Lights[0].Orbit.Height)
	require.Len(t, cfg.Messages, 1)

	assert.Equal(t, [3]float32{0, 0, 5}, cfg.Camera.Position)
	assert.Equal(t, "", cfg.Audio.Dependencies)
	// untouched keys keep their defaults
	assert.Equal(t, 256, cfg.Audio.FFTSize)
	assert.Equal(t, float32(75), cfg.Camera.Fov)

	assert.True(t, cfg.Audio.PreGain)
	ac := analyserConfig(cfg.Audio)
	assert.True(t, ac.PreGain)
	assert.Equal(t, 256, ac.FFTSize)
	assert.False(t, analyserConfig(DefaultConfig().Audio).PreGain)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("models = 3"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestBuildDefault(t *testing.T) {
	a, err := control.NewAutomation(control.DefaultParameters)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Assets = t.TempDir()

	e, r, err := build(context.Background(), cfg, a)
	require.NoError(t, err)
	assert.Len(t, e.Contours, 5)
	assert.NotNil(t, e.Camera)
	assert.ElementsMatch(t, []string{"six", "lighty2", "lighty", "afterimageDamp", "anim1"}, r.messages.Tags())

	// assets are still loading; selection handlers find no targets
	e.Scene.Lock()
	assert.True(t, r.messages.Dispatch("six", 3))
	assert.True(t, r.messages.Dispatch("lighty", 2))
	assert.True(t, r.messages.Dispatch("afterimageDamp", 0.5))
	e.Scene.Unlock()
	assert.Equal(t, float32(2), e.Scene.Lights["directional"].Intensity)
	assert.Equal(t, float32(0.5), e.Scene.Post.Get("damp"))

	e.Tick(0, 0)
	assert.Equal(t, mgl32.Vec3{0, 23.5, -18}, e.Scene.Pivot.Transform().Position)
}

func TestBuildAutomationBinding(t *testing.T) {
	a, err := control.NewAutomation(control.DefaultParameters)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Models = nil
	cfg.Params = []BindingConfig{{Tag: "mult", Kind: "automation", Target: "multiplier"}}

	_, r, err := build(context.Background(), cfg, a)
	require.NoError(t, err)
	r.params.Dispatch("mult", 3)
	assert.Equal(t, 3.0, a.Snapshot().Multiplier)

	cfg.Params = []BindingConfig{{Tag: "b", Kind: "automation", Target: "bands"}}
	_, r, err = build(context.Background(), cfg, a)
	require.NoError(t, err)
	r.params.Dispatch("b", -1)
	assert.Equal(t, control.DefaultParameters.Bands, a.Snapshot().Bands)

	cfg.Messages = []BindingConfig{{Tag: "x", Kind: "explode"}}
	_, _, err = build(context.Background(), cfg, a)
	assert.Error(t, err)
}

func TestBuildRejectsUnknownLight(t *testing.T) {
	a, err := control.NewAutomation(control.DefaultParameters)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Lights = []LightConfig{{Name: "l", Kind: "laser"}}
	_, _, err = build(context.Background(), cfg, a)
	assert.Error(t, err)
}
