package scene

import (
	"math"

	"github.com/hsluv/hsluv-go"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/peragwin/vuzicscene/audio/util"
)

// Palette colors deformable meshes from their phase and the current
// amplitude.
type Palette struct {
	cm util.ColorMap
	// Speed is how fast hues drift per second.
	Speed float64
}

// NewPalette returns a palette over the default color map.
func NewPalette() *Palette {
	return &Palette{cm: util.NewColorMap(), Speed: 0.02}
}

// Color returns the base color for a mesh at time t.
func (p *Palette) Color(phase, t float64) colorful.Color {
	return p.cm.Cyclic(phase + t*p.Speed)
}

// Emissive brightens c in HSLuv space as amplitude rises.
func (p *Palette) Emissive(c colorful.Color, amplitude float64) colorful.Color {
	h, s, l := hsluv.HsluvFromHex(c.Hex())
	l = math.Min(100, l+amplitude*40)
	return mustParseHex(hsluv.HsluvToHex(h, s, l))
}

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// Hex parses a 0xRRGGBB color.
func Hex(v uint32) colorful.Color {
	return colorful.Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}
