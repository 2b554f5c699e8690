package gfx

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// VertexArrayObject binds a position buffer, and optionally an index
// buffer, to a program attribute. Dynamic buffers can be rewritten with
// Update between draws.
type VertexArrayObject struct {
	vaoID      uint32
	vbo        uint32
	ebo        uint32
	length     int32
	capacity   int
	indexed    bool
	glDrawType uint32
}

// VAOConfig represents a configuration for creating a new VAO.
type VAOConfig struct {
	Vertices []float32
	// Indices are optional. When set, Draw uses DrawElements.
	Indices    []uint32
	VertAttr   uint32
	Size       int
	GLDrawType uint32
	Dynamic    bool
}

// ErrVertexSize is returned for buffers that are not a whole number of
// vertices.
var ErrVertexSize = errors.New("invalid length for vertices must be multiple of size")

// NewVertexArrayObject uploads cfg.Vertices and creates a VertexArrayObject.
func NewVertexArrayObject(cfg *VAOConfig) (*VertexArrayObject, error) {
	if cfg.Size <= 0 || len(cfg.Vertices) == 0 || len(cfg.Vertices)%cfg.Size != 0 {
		return nil, ErrVertexSize
	}
	usage := uint32(gl.STATIC_DRAW)
	if cfg.Dynamic {
		usage = gl.DYNAMIC_DRAW
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(cfg.Vertices), gl.Ptr(cfg.Vertices), usage)

	gl.EnableVertexAttribArray(cfg.VertAttr)
	gl.VertexAttribPointer(cfg.VertAttr, int32(cfg.Size), gl.FLOAT, false, 0, gl.PtrOffset(0))

	v := &VertexArrayObject{
		vaoID:      vao,
		vbo:        vbo,
		length:     int32(len(cfg.Vertices) / cfg.Size),
		capacity:   len(cfg.Vertices),
		glDrawType: cfg.GLDrawType,
	}
	if len(cfg.Indices) > 0 {
		gl.GenBuffers(1, &v.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, v.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(cfg.Indices), gl.Ptr(cfg.Indices), gl.STATIC_DRAW)
		v.length = int32(len(cfg.Indices))
		v.indexed = true
	}

	gl.BindVertexArray(0)
	return v, nil
}

// Update rewrites the vertex buffer in place. Vertices beyond the buffer
// capacity are dropped.
func (v *VertexArrayObject) Update(vertices []float32) {
	if len(vertices) > v.capacity {
		vertices = vertices[:v.capacity]
	}
	if len(vertices) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, v.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, 4*len(vertices), gl.Ptr(vertices))
}

// Draw draws a VertexArrayObject to the current frame buffer
func (v *VertexArrayObject) Draw() {
	gl.BindVertexArray(v.vaoID)
	if v.indexed {
		gl.DrawElements(v.glDrawType, v.length, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(v.glDrawType, 0, v.length)
	}
	gl.BindVertexArray(0)
}

// Delete frees the buffers.
func (v *VertexArrayObject) Delete() {
	gl.DeleteBuffers(1, &v.vbo)
	if v.indexed {
		gl.DeleteBuffers(1, &v.ebo)
	}
	gl.DeleteVertexArrays(1, &v.vaoID)
}
