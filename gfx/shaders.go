package gfx

import (
	"github.com/peragwin/vuzicscene/deform"
)

const (
	surfaceVertexShader = `
	#version 410
	uniform mat4 mvp;
	in vec3 position;
	out float vNoise;

	void main() {
		vNoise = 0.0;
		gl_Position = mvp * vec4(position, 1.0);
	}`

	// shared by the CPU and GPU deformed surfaces
	surfaceFragmentShader = `
	#version 410
	uniform vec4 color;
	uniform vec3 emissive;
	uniform vec3 light;
	in float vNoise;
	out vec4 frag_color;

	void main() {
		vec3 c = color.rgb * (light + 0.15 * vNoise) + emissive;
		frag_color = vec4(c, color.a);
	}`

	lineVertexShader = `
	#version 410
	uniform mat4 mvp;
	uniform float pointSize;
	in vec3 position;

	void main() {
		gl_PointSize = pointSize;
		gl_Position = mvp * vec4(position, 1.0);
	}`

	lineFragmentShader = `
	#version 410
	uniform vec4 color;
	out vec4 frag_color;

	void main() {
		frag_color = color;
	}`

	quadVertexShader = `
	#version 410
	in vec2 position;
	out vec2 uv;

	void main() {
		uv = position * 0.5 + 0.5;
		gl_Position = vec4(position, 0.0, 1.0);
	}`

	// trails: old pixels decay by damp and are dropped below 0.1
	afterimageFragmentShader = `
	#version 410
	uniform sampler2D tNew;
	uniform sampler2D tOld;
	uniform float damp;
	in vec2 uv;
	out vec4 frag_color;

	vec4 when_gt(vec4 x, float y) {
		return max(sign(x - y), 0.0);
	}

	void main() {
		vec4 texelOld = texture(tOld, uv);
		vec4 texelNew = texture(tNew, uv);
		texelOld *= damp * when_gt(texelOld, 0.1);
		frag_color = max(texelNew, texelOld);
	}`

	presentFragmentShader = `
	#version 410
	uniform sampler2D tex;
	uniform float bloom;
	in vec2 uv;
	out vec4 frag_color;

	void main() {
		vec4 c = texture(tex, uv);
		vec3 glow = max(c.rgb - vec3(0.6), 0.0) * bloom;
		frag_color = vec4(c.rgb + glow, 1.0);
	}`
)

var (
	fullscreenQuad = []float32{-1, -1, 1, -1, -1, 1, 1, 1}

	surfaceShaders = []*ShaderConfig{
		{
			Source:         surfaceVertexShader,
			Typ:            VertexShaderType,
			AttributeNames: []string{"position"},
			UniformNames:   []string{"mvp"},
		},
		{
			Source:       surfaceFragmentShader,
			Typ:          FragmentShaderType,
			UniformNames: []string{"color", "emissive", "light"},
		},
	}

	deformShaders = []*ShaderConfig{
		{
			Source:         deform.VertexShader,
			Typ:            VertexShaderType,
			AttributeNames: []string{"position"},
			UniformNames:   append([]string{"mvp"}, deform.UniformNames...),
		},
		{
			Source:       surfaceFragmentShader,
			Typ:          FragmentShaderType,
			UniformNames: []string{"color", "emissive", "light"},
		},
	}

	lineShaders = []*ShaderConfig{
		{
			Source:         lineVertexShader,
			Typ:            VertexShaderType,
			AttributeNames: []string{"position"},
			UniformNames:   []string{"mvp", "pointSize"},
		},
		{
			Source:       lineFragmentShader,
			Typ:          FragmentShaderType,
			UniformNames: []string{"color"},
		},
	}

	afterimageShaders = []*ShaderConfig{
		{
			Source:         quadVertexShader,
			Typ:            VertexShaderType,
			AttributeNames: []string{"position"},
		},
		{
			Source:       afterimageFragmentShader,
			Typ:          FragmentShaderType,
			UniformNames: []string{"tNew", "tOld", "damp"},
		},
	}

	presentShaders = []*ShaderConfig{
		{
			Source:         quadVertexShader,
			Typ:            VertexShaderType,
			AttributeNames: []string{"position"},
		},
		{
			Source:       presentFragmentShader,
			Typ:          FragmentShaderType,
			UniformNames: []string{"tex", "bloom"},
		},
	}
)
