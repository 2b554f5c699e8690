package gfx

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	openglVersionMajor = 4
	openglVersionMinor = 1
)

// Window represents a wrapped glfw window object.
type Window struct {
	Config     *WindowConfig
	GlfwWindow *glfw.Window
}

// WindowConfig contains a new window configuration
type WindowConfig struct {
	Width  int
	Height int
	Title  string

	// OnResize is called with the new framebuffer size.
	OnResize func(width, height int)
	// OnClick is called on any mouse button press.
	OnClick func()
}

// NewWindow initializes a new window object with glfw.
func NewWindow(cfg *WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, openglVersionMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, openglVersionMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if cfg.OnResize != nil {
		window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
			cfg.OnResize(w, h)
		})
	}
	if cfg.OnClick != nil {
		window.SetMouseButtonCallback(func(_ *glfw.Window, _ glfw.MouseButton,
			action glfw.Action, _ glfw.ModifierKey) {
			if action == glfw.Press {
				cfg.OnClick()
			}
		})
	}

	return &Window{Config: cfg, GlfwWindow: window}, nil
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.GlfwWindow.GetFramebufferSize()
}
