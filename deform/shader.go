package deform

// Uniforms are the per frame values handed to VertexShader.
type Uniforms struct {
	Time       float32
	Amplitude  float32
	Amplitude2 float32
	Multiplier float32
	Phase      float32
	AxisScale  float32
}

// NewUniforms fills the uniforms for one mesh and frame.
func NewUniforms(t float32, amps Amplitudes, p Params) Uniforms {
	return Uniforms{
		Time:       t,
		Amplitude:  amps.A,
		Amplitude2: amps.A2,
		Multiplier: p.Multiplier,
		Phase:      p.Phase,
		AxisScale:  p.AxisScale,
	}
}

// Values lists the uniforms in the order of UniformNames.
func (u Uniforms) Values() []float32 {
	return []float32{u.Time, u.Amplitude, u.Amplitude2, u.Multiplier, u.Phase, u.AxisScale}
}

// UniformNames are the float uniforms declared by VertexShader.
var UniformNames = []string{
	"time",
	"amplitude",
	"amplitude2",
	"multiplier",
	"phase",
	"axisScale",
}

// VertexShader evaluates the radial and per-axis fields per vertex.
const VertexShader = `
#version 410
uniform mat4 mvp;
uniform float time;
uniform float amplitude;
uniform float amplitude2;
uniform float multiplier;
uniform float phase;
uniform float axisScale;

in vec3 position;
out float vNoise;

float combinedNoise(float t, vec3 p) {
	float n1 = sin(t + p.x * 1.5 + p.y * 1.2 + p.z * 1.8);
	float n2 = cos(t * 0.5 + p.x * 2.0 + p.y * 2.2 + p.z * 2.5);
	float n3 = sin(t * 1.5 + p.x * 0.5 + p.y * 1.5 + p.z * 2.0);
	return (n1 + n2 + n3) / 3.0;
}

void main() {
	float t = time + phase;
	float n = combinedNoise(t, position);
	vec3 p = position * (1.0 + amplitude * n * multiplier);
	float s = amplitude2 * axisScale;
	p += s * vec3(
		sin(t * 1.3 + position.y * 2.0),
		cos(t * 1.1 + position.z * 2.0),
		sin(t * 0.9 + position.x * 2.0));
	vNoise = n;
	gl_Position = mvp * vec4(p, 1.0);
}
`
