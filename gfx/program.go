package gfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program represents an OpenGL program.
type Program struct {
	ProgramID uint32
	Shaders   []*Shader

	uniforms   map[string]int32
	attributes map[string]uint32
}

// NewProgram creates a new Program
func NewProgram() (*Program, error) {
	prog := gl.CreateProgram()
	if prog == 0 {
		return nil, fmt.Errorf("no programs available")
	}
	return &Program{
		ProgramID:  prog,
		Shaders:    []*Shader{},
		uniforms:   make(map[string]int32),
		attributes: make(map[string]uint32),
	}, nil
}

// AttachShader attaches a shader from source to a program, defering compilation
// so that calls can be chained together and finished with a call to Link()
func (p *Program) AttachShader(cfg *ShaderConfig) error {
	shader, err := NewShader(cfg)
	if err != nil {
		return err
	}
	p.Shaders = append(p.Shaders, shader)
	gl.AttachShader(p.ProgramID, shader.ShaderID)

	return nil
}

// Link links the program and retrieves all variable locations
func (p *Program) Link() error {
	gl.LinkProgram(p.ProgramID)

	var status int32
	gl.GetProgramiv(p.ProgramID, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.ProgramID, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(p.ProgramID, logLength, nil, &log[0])
		return fmt.Errorf("failed to link: %s", log)
	}

	for _, sh := range p.Shaders {
		for uname := range sh.UniformLocations {
			uloc := gl.GetUniformLocation(p.ProgramID, gl.Str(uname+"\x00"))
			if uloc == -1 {
				return fmt.Errorf("location of uniform '%s' not found", uname)
			}
			sh.UniformLocations[uname] = uloc
			p.uniforms[uname] = uloc
		}
		for aname := range sh.AttributeLocations {
			aloc := gl.GetAttribLocation(p.ProgramID, gl.Str(aname+"\x00"))
			if aloc < 0 {
				return fmt.Errorf("location of attribute '%s' not found", aname)
			}
			sh.AttributeLocations[aname] = aloc
			p.attributes[aname] = uint32(aloc)
		}
	}

	return nil
}

// Use makes p the current program.
func (p *Program) Use() {
	gl.UseProgram(p.ProgramID)
}

// UniformLocation returns the location of a uniform declared by one of the
// program's shader configs.
func (p *Program) UniformLocation(name string) int32 {
	uloc, ok := p.uniforms[name]
	if !ok {
		panic("unknown uniform name: " + name)
	}
	return uloc
}

// AttributeLocation returns the location of a declared vertex attribute.
func (p *Program) AttributeLocation(name string) uint32 {
	aloc, ok := p.attributes[name]
	if !ok {
		panic("unknown attribute name: " + name)
	}
	return aloc
}

// SetFloat sets a float uniform on the current program.
func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.UniformLocation(name), v)
}

// SetInt sets an int or sampler uniform on the current program.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.UniformLocation(name), v)
}

// SetVec3 sets a vec3 uniform on the current program.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.UniformLocation(name), v[0], v[1], v[2])
}

// SetVec4 sets a vec4 uniform on the current program.
func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(p.UniformLocation(name), v[0], v[1], v[2], v[3])
}

// SetMat4 sets a mat4 uniform on the current program.
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.UniformLocation(name), 1, false, &m[0])
}
