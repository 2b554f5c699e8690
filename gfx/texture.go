package gfx

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// TextureObject is an RGBA texture, optionally backed by an image that
// Update uploads.
type TextureObject struct {
	texID  uint32
	width  int32
	height int32
	image  *image.RGBA
}

// NewTextureObject allocates a texture. With a nil image the storage is
// left uninitialized for use as a render target.
func NewTextureObject(width, height int, img *image.RGBA) *TextureObject {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	t := &TextureObject{texID: texID, width: int32(width), height: int32(height), image: img}
	var pix unsafe.Pointer
	if img != nil {
		pix = gl.Ptr(img.Pix)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, t.width, t.height,
		0, gl.RGBA, gl.UNSIGNED_BYTE, pix)
	return t
}

// Bind binds the texture to a texture unit.
func (t *TextureObject) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.texID)
}

// Update writes the backing image to the texture.
func (t *TextureObject) Update() {
	if t.image == nil {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.texID)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, t.width, t.height,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(t.image.Pix))
}

// Delete frees the texture.
func (t *TextureObject) Delete() {
	gl.DeleteTextures(1, &t.texID)
}

// RenderTarget is a framebuffer with a color texture and a depth buffer.
type RenderTarget struct {
	Texture *TextureObject
	fbo     uint32
	depth   uint32
}

// NewRenderTarget creates an offscreen target of the given size.
func NewRenderTarget(width, height int) (*RenderTarget, error) {
	rt := &RenderTarget{Texture: NewTextureObject(width, height, nil)}

	gl.GenFramebuffers(1, &rt.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.Texture.texID, 0)

	gl.GenRenderbuffers(1, &rt.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rt.depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		rt.Delete()
		return nil, fmt.Errorf("incomplete framebuffer: 0x%x", status)
	}
	return rt, nil
}

// Bind directs drawing into the target.
func (rt *RenderTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.Viewport(0, 0, rt.Texture.width, rt.Texture.height)
}

// Delete frees the target.
func (rt *RenderTarget) Delete() {
	gl.DeleteFramebuffers(1, &rt.fbo)
	gl.DeleteRenderbuffers(1, &rt.depth)
	rt.Texture.Delete()
}

// BindDefault directs drawing to the window.
func BindDefault(width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
}
