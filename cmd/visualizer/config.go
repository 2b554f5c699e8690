package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/golang/glog"
	"github.com/pelletier/go-toml/v2"

	"github.com/peragwin/vuzicscene/engine"
)

// Config is the scene and audio setup read from a TOML file.
type Config struct {
	// Assets is prepended to relative model paths.
	Assets string `toml:"assets"`
	Seed   int64  `toml:"seed"`

	Audio    AudioConfig        `toml:"audio"`
	Camera   CameraConfig       `toml:"camera"`
	Contours ContourConfig      `toml:"contours"`
	Stars    StarsConfig        `toml:"stars"`
	Lights   []LightConfig      `toml:"lights"`
	Models   []engine.ModelSpec `toml:"models"`

	// Messages bind device outport tags to handlers.
	Messages []BindingConfig `toml:"messages"`
	// Params bind device parameters to handlers. Unbound parameters drive
	// morph targets of the same name.
	Params []BindingConfig `toml:"params"`
}

// AudioConfig locates the patch and its runner.
type AudioConfig struct {
	// Patch is a URL or path of the patch export. Empty disables audio.
	Patch          string `toml:"patch"`
	Dependencies   string `toml:"dependencies"`
	DependencyBase string `toml:"dependency_base"`
	RuntimeBase    string `toml:"runtime_base"`
	CacheDir       string `toml:"cache_dir"`

	// Link is a ws:// or wss:// runner endpoint, or an mqtt broker as
	// tcp:// or mqtt://.
	Link        string `toml:"link"`
	TopicPrefix string `toml:"topic_prefix"`

	Device     string  `toml:"device"`
	Channels   int     `toml:"channels"`
	Primary    int     `toml:"primary"`
	Secondary  int     `toml:"secondary"`
	BlockSize  int     `toml:"block_size"`
	SampleRate float64 `toml:"sample_rate"`
	FFTSize    int     `toml:"fft_size"`
	// PreGain normalizes each analysed channel to a common level.
	PreGain bool `toml:"pre_gain"`
}

// CameraConfig places the camera on its pivot.
type CameraConfig struct {
	Fov      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
	// PivotRotation is in radians.
	PivotRotation [3]float32        `toml:"pivot_rotation"`
	Oscillate     *OscillatorConfig `toml:"oscillate"`
}

// OscillatorConfig moves the camera pivot around a center.
type OscillatorConfig struct {
	Center    [3]float32 `toml:"center"`
	Amplitude float32    `toml:"amplitude"`
}

// ContourConfig describes the nested waveform squares.
type ContourConfig struct {
	Count  int     `toml:"count"`
	Step   float32 `toml:"step"`
	Points int     `toml:"points"`
}

// StarsConfig describes the background star field.
type StarsConfig struct {
	Count  int     `toml:"count"`
	Spread float32 `toml:"spread"`
}

// LightConfig describes one light.
type LightConfig struct {
	Name      string       `toml:"name"`
	Kind      string       `toml:"kind"`
	Color     uint32       `toml:"color"`
	Intensity float32      `toml:"intensity"`
	Position  [3]float32   `toml:"position"`
	Orbit     *OrbitConfig `toml:"orbit"`
}

// OrbitConfig circles a light around the origin.
type OrbitConfig struct {
	Radius float32 `toml:"radius"`
	Height float32 `toml:"height"`
}

// BindingConfig binds a tag or parameter to a handler kind and target.
type BindingConfig struct {
	Tag    string `toml:"tag"`
	Kind   string `toml:"kind"`
	Target string `toml:"target"`
}

// DefaultConfig reproduces the six-object scene.
func DefaultConfig() *Config {
	return &Config{
		Assets: ".",
		Seed:   1,
		Audio: AudioConfig{
			Patch:          "six/patch.export.json",
			Dependencies:   "six/dependencies.json",
			DependencyBase: "six/",
			Link:           "ws://localhost:5678",
			TopicPrefix:    "rnbo",
			Channels:       4,
			Primary:        2,
			BlockSize:      256,
			SampleRate:     48000,
			FFTSize:        256,
		},
		Camera: CameraConfig{
			Fov:           75,
			Near:          0.1,
			Far:           1000,
			Position:      [3]float32{8, 10, -22},
			PivotRotation: [3]float32{0, math.Pi / 1.5, 0},
			Oscillate: &OscillatorConfig{
				Center:    [3]float32{0, 18, -18},
				Amplitude: 5.5,
			},
		},
		Contours: ContourConfig{Count: 5, Step: 1, Points: 128},
		Lights: []LightConfig{
			{Name: "ambient", Kind: "ambient", Color: 0xffffff, Intensity: 0.1},
			{Name: "directional", Kind: "directional", Color: 0xffd429,
				Position: [3]float32{5, 10, -25}},
		},
		Models: []engine.ModelSpec{
			{
				Name:       "pi30",
				Path:       "pi30.glb",
				Position:   [3]float32{0, -1, 0},
				Rotation:   [3]float32{0, math.Pi, 0},
				Scale:      [3]float32{4.5, 4.5, 4.5},
				Animations: engine.AnimationsPaused,
			},
			{
				Name:  "sxx",
				Path:  "sxx.glb",
				Scale: [3]float32{5, 5, 5},
				Targets: []engine.TargetSpec{
					{Set: "six", Pattern: `^[1-9]$`},
				},
				Overrides: materialsFor(`123456789`, engine.MaterialSpec{
					Color:             0xde002c,
					Emissive:          0xffdf4f,
					EmissiveIntensity: 0.8,
					Transparent:       true,
					Wireframe:         true,
				}),
			},
			{
				Name:       "benz3",
				Path:       "benz3.glb",
				Scale:      [3]float32{8, 8, 8},
				Animations: engine.AnimationsRepeat,
				Overrides: map[string]engine.MaterialSpec{
					"light": {
						Color:             0xffd429,
						Emissive:          0xfff9e0,
						EmissiveIntensity: 6,
						Opacity:           1,
					},
				},
			},
			{
				Name:  "guiti",
				Path:  "guiti.glb",
				Scale: [3]float32{0.7, 0.7, 0.7},
				Targets: []engine.TargetSpec{
					{Set: "eight", Pattern: `^[1-8]$`, Hidden: true},
				},
			},
		},
		Messages: []BindingConfig{
			{Tag: "six", Kind: "opacity", Target: "six"},
			{Tag: "lighty2", Kind: "visible", Target: "eight"},
			{Tag: "lighty", Kind: "light", Target: "directional"},
			{Tag: "afterimageDamp", Kind: "post", Target: "damp"},
			{Tag: "anim1", Kind: "animation"},
		},
	}
}

func materialsFor(names string, m engine.MaterialSpec) map[string]engine.MaterialSpec {
	out := make(map[string]engine.MaterialSpec, len(names))
	for _, r := range names {
		out[string(r)] = m
	}
	return out
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		glog.Warningf("config %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	// lists in the file replace the default lists
	var keys map[string]interface{}
	if err := toml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	for key, list := range map[string]func(){
		"lights":   func() { cfg.Lights = nil },
		"models":   func() { cfg.Models = nil },
		"messages": func() { cfg.Messages = nil },
		"params":   func() { cfg.Params = nil },
	} {
		if _, ok := keys[key]; ok {
			list()
		}
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
