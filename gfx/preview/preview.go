// Package preview renders the scene without a GPU: every vertex is
// projected to a pixel, and frames are composited with an afterimage
// trail. It backs headless runs and PNG snapshots.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/phrozen/blend"

	"github.com/peragwin/vuzicscene/deform"
	"github.com/peragwin/vuzicscene/engine"
	"github.com/peragwin/vuzicscene/scene"
)

// trailCutoff drops decayed trail pixels below this level.
const trailCutoff = 0.1 * 255

// Preview owns the software frame and the trail it accumulates into.
type Preview struct {
	engine *engine.Engine

	mu      sync.Mutex
	width   int
	height  int
	frame   *image.RGBA
	trail   *image.RGBA
	scratch []float32
}

// New returns a preview of e's scene at the given size.
func New(e *engine.Engine, width, height int) *Preview {
	p := &Preview{engine: e}
	p.Resize(width, height)
	return p
}

// Resize reallocates the images and clears the trail.
func (p *Preview) Resize(width, height int) {
	p.mu.Lock()
	p.width, p.height = width, height
	p.frame = blank(width, height)
	p.trail = blank(width, height)
	p.mu.Unlock()

	s := p.engine.Scene
	s.Lock()
	s.Camera.SetAspect(width, height)
	for _, c := range p.engine.Contours {
		c.SetResolution(width, height)
	}
	s.Unlock()
}

func blank(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// Project maps a world position through vp to a pixel. ok is false behind
// the camera or outside the frame.
func Project(vp mgl32.Mat4, pos mgl32.Vec3, width, height int) (x, y int, ok bool) {
	clip := vp.Mul4x1(pos.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, false
	}
	nx, ny := clip.X()/w, clip.Y()/w
	if nx < -1 || nx > 1 || ny < -1 || ny > 1 {
		return 0, 0, false
	}
	x = int((nx + 1) / 2 * float32(width-1))
	y = int((1 - ny) / 2 * float32(height-1))
	return x, y, true
}

// Render draws the scene and folds it into the trail. It takes the scene
// lock and returns the trail, which is only valid until the next call.
func (p *Preview) Render() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(p.frame.Pix); i += 4 {
		p.frame.Pix[i], p.frame.Pix[i+1], p.frame.Pix[i+2] = 0, 0, 0
	}

	s := p.engine.Scene
	s.Lock()
	vp := s.ViewProjection()
	light := s.Lighting()
	frame := p.engine.Frame()
	scene.WalkWorld(s.Root, mgl32.Ident4(), func(n scene.Node, world mgl32.Mat4) {
		switch n := n.(type) {
		case *scene.Mesh:
			p.drawMesh(n, vp.Mul4(world), light, frame)
		case *scene.Points:
			p.plotAll(vp.Mul4(world), n.Positions, color.RGBA{0xff, 0xff, 0xff, 0xff})
		}
	})
	for i, c := range p.engine.Contours {
		col := rgba(s.Palette.Color(float64(i)/float64(len(p.engine.Contours)), float64(frame.Elapsed)), 1)
		for _, pts := range c.Points {
			for _, pt := range pts {
				p.plot(vp, pt, col)
			}
		}
	}
	damp := s.Post.Get("damp")
	s.Unlock()

	decay(p.trail, damp)
	blend.BlendImage(p.trail, p.frame, blend.Screen)
	return p.trail
}

func (p *Preview) drawMesh(m *scene.Mesh, mvp mgl32.Mat4, light mgl32.Vec3, f engine.Frame) {
	if !m.Visible {
		return
	}
	mat := m.Material
	alpha := float32(1)
	if mat.Transparent {
		alpha = mat.Opacity
	}
	if alpha <= 0 {
		return
	}

	g := m.Geometry
	pos := g.Positions()
	if g.Strategy == deform.GPU {
		if cap(p.scratch) < len(pos) {
			p.scratch = make([]float32, len(pos))
		}
		p.scratch = p.scratch[:len(pos)]
		deform.Combined(p.scratch, pos, f.Time, f.Amplitudes, g.Params)
		pos = p.scratch
	}

	c := mgl32.Vec3{float32(mat.Color.R), float32(mat.Color.G), float32(mat.Color.B)}
	e := mgl32.Vec3{float32(mat.Emissive.R), float32(mat.Emissive.G), float32(mat.Emissive.B)}
	lit := mgl32.Vec3{c[0] * light[0], c[1] * light[1], c[2] * light[2]}.Add(e.Mul(mat.EmissiveIntensity))
	p.plotAll(mvp, pos, rgba(colorful.Color{R: float64(lit[0]), G: float64(lit[1]), B: float64(lit[2])}, alpha))
}

func rgba(c colorful.Color, alpha float32) color.RGBA {
	c = c.Clamped()
	a := float64(alpha)
	return color.RGBA{
		R: uint8(c.R * a * 255),
		G: uint8(c.G * a * 255),
		B: uint8(c.B * a * 255),
		A: 0xff,
	}
}

func (p *Preview) plotAll(mvp mgl32.Mat4, pos []float32, col color.RGBA) {
	for i := 0; i+2 < len(pos); i += 3 {
		p.plot(mvp, mgl32.Vec3{pos[i], pos[i+1], pos[i+2]}, col)
	}
}

// plot keeps the brighter of the existing and new pixel per channel.
func (p *Preview) plot(mvp mgl32.Mat4, pos mgl32.Vec3, col color.RGBA) {
	x, y, ok := Project(mvp, pos, p.width, p.height)
	if !ok {
		return
	}
	i := p.frame.PixOffset(x, y)
	px := p.frame.Pix[i : i+3 : i+3]
	px[0] = max(px[0], col.R)
	px[1] = max(px[1], col.G)
	px[2] = max(px[2], col.B)
}

// decay scales the trail by damp and drops channels that fall below the
// cutoff.
func decay(img *image.RGBA, damp float32) {
	for i := 0; i < len(img.Pix); i += 4 {
		for j := i; j < i+3; j++ {
			v := float32(img.Pix[j])
			if v < trailCutoff {
				img.Pix[j] = 0
				continue
			}
			img.Pix[j] = uint8(v * damp)
		}
	}
}

// WritePNG encodes the current trail.
func (p *Preview) WritePNG(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return png.Encode(w, p.trail)
}

// Snapshot writes the current trail to a PNG file.
func (p *Preview) Snapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := p.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	return f.Close()
}

// ServeHTTP serves the current trail as a PNG.
func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := p.WritePNG(w); err != nil {
		glog.Warningf("serving preview: %v", err)
	}
}
