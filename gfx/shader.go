package gfx

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Shader represents a compiled shader and the variables it declares.
type Shader struct {
	ShaderID           uint32
	Typ                ShaderType
	UniformLocations   map[string]int32
	AttributeLocations map[string]int32
}

// ShaderConfig is used to create new shaders. Every name listed must be
// active in the linked program.
type ShaderConfig struct {
	Source         string
	Typ            ShaderType
	AttributeNames []string
	UniformNames   []string
}

// ShaderType tells NewShader what type of shader it's creating.
type ShaderType int

// Types of shaders
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
)

func (t ShaderType) String() string {
	if t == FragmentShaderType {
		return "fragment"
	}
	return "vertex"
}

func (t ShaderType) glType() uint32 {
	if t == FragmentShaderType {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

// NewShader loads and compiles a new shader, but does not attach it to a program.
func NewShader(cfg *ShaderConfig) (*Shader, error) {
	id, err := compileShader(cfg.Source, cfg.Typ)
	if err != nil {
		return nil, err
	}
	uloc := make(map[string]int32, len(cfg.UniformNames))
	for _, un := range cfg.UniformNames {
		uloc[un] = -1
	}
	aloc := make(map[string]int32, len(cfg.AttributeNames))
	for _, an := range cfg.AttributeNames {
		aloc[an] = -1
	}
	return &Shader{ShaderID: id, Typ: cfg.Typ, UniformLocations: uloc, AttributeLocations: aloc}, nil
}

func compileShader(src string, typ ShaderType) (uint32, error) {
	shaderID := gl.CreateShader(typ.glType())

	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shaderID, 1, csources, nil)
	free()
	gl.CompileShader(shaderID)

	var status int32
	gl.GetShaderiv(shaderID, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shaderID, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shaderID, logLength, nil, gl.Str(log))
		gl.DeleteShader(shaderID)

		return 0, fmt.Errorf("failed to compile %s shader: %v", typ, log)
	}

	return shaderID, nil
}
