package gfx

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"
)

// Context is a context for doing opengl graphics. It holds any number of
// linked programs by name.
type Context struct {
	Window   *Window
	Programs map[string]*Program

	ctx context.Context
}

// NewContext opens a window and initializes opengl on it.
func NewContext(ctx context.Context, windowConfig *WindowConfig) (*Context, error) {
	// OpenGL requires that rendering functions be called from the main thread
	runtime.LockOSThread()

	window, err := NewWindow(windowConfig)
	if err != nil {
		return nil, err
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	version := gl.GoStr(gl.GetString(gl.VERSION))
	glog.Infoln("OpenGL version", version)

	return &Context{
		Window:   window,
		Programs: make(map[string]*Program),
		ctx:      ctx,
	}, nil
}

// AddProgram compiles and links a program from shaderConfigs.
func (c *Context) AddProgram(name string, shaderConfigs ...*ShaderConfig) (*Program, error) {
	program, err := NewProgram()
	if err != nil {
		return nil, err
	}
	for _, cfg := range shaderConfigs {
		if err := program.AttachShader(cfg); err != nil {
			return nil, fmt.Errorf("program %s: %w", name, err)
		}
	}
	if err := program.Link(); err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	c.Programs[name] = program
	return program, nil
}

// EventLoop executes render in a loop until the window is closed or the
// context is cancelled. render is responsible for clearing and drawing.
func (c *Context) EventLoop(render func(*Context)) {
	for !c.Window.GlfwWindow.ShouldClose() {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		render(c)

		glfw.PollEvents()
		c.Window.GlfwWindow.SwapBuffers()
	}
}

// Terminate ends the glfw session
func (c *Context) Terminate() {
	glfw.Terminate()
}
