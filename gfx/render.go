package gfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/peragwin/vuzicscene/deform"
	"github.com/peragwin/vuzicscene/engine"
	"github.com/peragwin/vuzicscene/scene"
)

// Renderer draws an engine's scene after each tick: surfaces and points
// into an offscreen frame, contours as line strips, then an afterimage
// pass and a bloom pass to the window.
type Renderer struct {
	ctx    *Context
	engine *engine.Engine

	surface    *Program
	deformed   *Program
	lines      *Program
	afterimage *Program
	present    *Program

	meshes   map[*scene.Mesh]*VertexArrayObject
	points   map[*scene.Points]*VertexArrayObject
	contours [][]*VertexArrayObject
	flat     []float32

	quadAfter   *VertexArrayObject
	quadPresent *VertexArrayObject

	frame  *RenderTarget
	trails [2]*RenderTarget
	cur    int

	width, height int
}

// NewRenderer compiles the programs and allocates targets at the window's
// current size.
func NewRenderer(ctx *Context, e *engine.Engine) (*Renderer, error) {
	r := &Renderer{
		ctx:    ctx,
		engine: e,
		meshes: make(map[*scene.Mesh]*VertexArrayObject),
		points: make(map[*scene.Points]*VertexArrayObject),
	}
	programs := []struct {
		name    string
		dst     **Program
		configs []*ShaderConfig
	}{
		{"surface", &r.surface, surfaceShaders},
		{"deformed", &r.deformed, deformShaders},
		{"lines", &r.lines, lineShaders},
		{"afterimage", &r.afterimage, afterimageShaders},
		{"present", &r.present, presentShaders},
	}
	for _, p := range programs {
		prog, err := ctx.AddProgram(p.name, p.configs...)
		if err != nil {
			return nil, err
		}
		*p.dst = prog
	}

	var err error
	r.quadAfter, err = r.quad(r.afterimage)
	if err != nil {
		return nil, err
	}
	r.quadPresent, err = r.quad(r.present)
	if err != nil {
		return nil, err
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	w, h := ctx.Window.FramebufferSize()
	if err := r.Resize(w, h); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) quad(p *Program) (*VertexArrayObject, error) {
	return NewVertexArrayObject(&VAOConfig{
		Vertices:   fullscreenQuad,
		VertAttr:   p.AttributeLocation("position"),
		Size:       2,
		GLDrawType: gl.TRIANGLE_STRIP,
	})
}

// Resize updates the viewport, the camera aspect and the contour line
// resolution, and reallocates the offscreen targets.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s := r.engine.Scene
	s.Lock()
	s.Camera.SetAspect(width, height)
	for _, c := range r.engine.Contours {
		c.SetResolution(width, height)
	}
	s.Unlock()

	r.width, r.height = width, height
	for _, t := range []*RenderTarget{r.frame, r.trails[0], r.trails[1]} {
		if t != nil {
			t.Delete()
		}
	}
	var err error
	if r.frame, err = NewRenderTarget(width, height); err != nil {
		return fmt.Errorf("frame target: %w", err)
	}
	for i := range r.trails {
		if r.trails[i], err = NewRenderTarget(width, height); err != nil {
			return fmt.Errorf("afterimage target: %w", err)
		}
		r.trails[i].Bind()
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	}
	BindDefault(width, height)
	glog.V(1).Infof("resized to %dx%d", width, height)
	return nil
}

// Render draws the current state of the scene. It takes the scene lock.
func (r *Renderer) Render() {
	s := r.engine.Scene
	s.Lock()
	defer s.Unlock()

	r.frame.Bind()
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)

	vp := s.ViewProjection()
	light := s.Lighting()
	scene.WalkWorld(s.Root, mgl32.Ident4(), func(n scene.Node, world mgl32.Mat4) {
		switch n := n.(type) {
		case *scene.Mesh:
			r.drawMesh(n, vp.Mul4(world), light)
		case *scene.Points:
			r.drawPoints(n, vp.Mul4(world))
		}
	})
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	r.drawContours(s, vp)
	gl.Disable(gl.DEPTH_TEST)

	prev, next := r.trails[r.cur^1], r.trails[r.cur]
	next.Bind()
	r.afterimage.Use()
	r.frame.Texture.Bind(0)
	prev.Texture.Bind(1)
	r.afterimage.SetInt("tNew", 0)
	r.afterimage.SetInt("tOld", 1)
	r.afterimage.SetFloat("damp", s.Post.Get("damp"))
	r.quadAfter.Draw()

	BindDefault(r.width, r.height)
	r.present.Use()
	next.Texture.Bind(0)
	r.present.SetInt("tex", 0)
	r.present.SetFloat("bloom", s.Post.Get("bloom"))
	r.quadPresent.Draw()

	r.cur ^= 1
}

func vec3(c colorful.Color) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}

func (r *Renderer) drawMesh(m *scene.Mesh, mvp mgl32.Mat4, light mgl32.Vec3) {
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
	gpu := g.Strategy == deform.GPU
	prog := r.surface
	if gpu {
		prog = r.deformed
	}

	vao, ok := r.meshes[m]
	if !ok {
		var err error
		vao, err = NewVertexArrayObject(&VAOConfig{
			Vertices:   g.Positions(),
			Indices:    m.Indices,
			VertAttr:   prog.AttributeLocation("position"),
			Size:       3,
			GLDrawType: gl.TRIANGLES,
			Dynamic:    true,
		})
		if err != nil {
			glog.Warningf("mesh %s: %v", m.Name(), err)
			m.Visible = false
			return
		}
		r.meshes[m] = vao
		g.TakeDirty()
	} else if g.TakeDirty() {
		vao.Update(g.Positions())
	}

	prog.Use()
	prog.SetMat4("mvp", mvp)
	if gpu {
		values := r.engine.Uniforms(m).Values()
		for i, name := range deform.UniformNames {
			prog.SetFloat(name, values[i])
		}
	}
	prog.SetVec4("color", vec3(mat.Color).Vec4(alpha))
	prog.SetVec3("emissive", vec3(mat.Emissive).Mul(mat.EmissiveIntensity))
	prog.SetVec3("light", light)
	if mat.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	vao.Draw()
}

func (r *Renderer) drawPoints(p *scene.Points, mvp mgl32.Mat4) {
	vao, ok := r.points[p]
	if !ok {
		var err error
		vao, err = NewVertexArrayObject(&VAOConfig{
			Vertices:   p.Positions,
			VertAttr:   r.lines.AttributeLocation("position"),
			Size:       3,
			GLDrawType: gl.POINTS,
		})
		if err != nil {
			glog.Warningf("points %s: %v", p.Name(), err)
			return
		}
		r.points[p] = vao
	}
	r.lines.Use()
	r.lines.SetMat4("mvp", mvp)
	r.lines.SetFloat("pointSize", p.Size*10)
	r.lines.SetVec4("color", mgl32.Vec4{1, 1, 1, 1})
	vao.Draw()
}

func (r *Renderer) drawContours(s *scene.Scene, vp mgl32.Mat4) {
	contours := r.engine.Contours
	if len(contours) == 0 {
		return
	}
	if len(r.contours) != len(contours) {
		for _, ring := range r.contours {
			for _, v := range ring {
				v.Delete()
			}
		}
		r.contours = make([][]*VertexArrayObject, len(contours))
	}

	r.lines.Use()
	r.lines.SetMat4("mvp", vp)
	r.lines.SetFloat("pointSize", 1)
	elapsed := float64(r.engine.Frame().Elapsed)
	for i, c := range contours {
		col := s.Palette.Color(float64(i)/float64(len(contours)), elapsed)
		r.lines.SetVec4("color", vec3(col).Vec4(1))
		if len(r.contours[i]) != len(c.Points) {
			r.contours[i] = make([]*VertexArrayObject, len(c.Points))
		}
		for j, pts := range c.Points {
			r.flat = flatten(r.flat[:0], pts)
			vao := r.contours[i][j]
			if vao == nil {
				var err error
				vao, err = NewVertexArrayObject(&VAOConfig{
					Vertices:   r.flat,
					VertAttr:   r.lines.AttributeLocation("position"),
					Size:       3,
					GLDrawType: gl.LINE_STRIP,
					Dynamic:    true,
				})
				if err != nil {
					glog.Warningf("contour %d: %v", i, err)
					continue
				}
				r.contours[i][j] = vao
			} else {
				vao.Update(r.flat)
			}
			vao.Draw()
		}
	}
}

func flatten(dst []float32, pts []mgl32.Vec3) []float32 {
	for _, p := range pts {
		dst = append(dst, p[0], p[1], p[2])
	}
	return dst
}
