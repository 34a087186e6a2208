package glview

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Sphere vertex shader: bass-driven displacement along z.
const sphereVertSrc = `#version 410 core

layout(location = 0) in vec3 aPos;
layout(location = 1) in vec2 aUV;

uniform mat4 uMVP;
uniform float uTime;
uniform float uBass;
uniform float uDistortion;

out vec2 vUV;
out float vDistortion;

void main() {
    vUV = aUV;
    vec3 pos = aPos;
    float d = sin(pos.y * 5.0 + uTime) * uBass * uDistortion;
    pos.z += d;
    vDistortion = d;
    gl_Position = uMVP * vec4(pos, 1.0);
}
` + "\x00"

// Sphere fragment shader: fbm value noise per channel plus treble glow.
const sphereFragSrc = `#version 410 core

uniform float uTime;
uniform float uMid;
uniform float uTreble;
uniform float uGlow;
uniform vec2 uResolution;

in vec2 vUV;
in float vDistortion;
out vec4 FragColor;

float hash(vec2 p) {
    return fract(sin(dot(p, vec2(12.9898, 78.233))) * 43758.5453123);
}

float noise(vec2 st) {
    vec2 i = floor(st);
    vec2 f = fract(st);
    vec2 u = f * f * (3.0 - 2.0 * f);
    return mix(mix(hash(i), hash(i + vec2(1.0, 0.0)), u.x),
               mix(hash(i + vec2(0.0, 1.0)), hash(i + vec2(1.0, 1.0)), u.x), u.y);
}

float fbm(vec2 st) {
    float v = 0.0;
    float amp = 0.5;
    float freq = 2.0;
    for (int i = 0; i < 5; i++) {
        v += amp * noise(st * freq);
        freq *= 2.0;
        amp *= 0.5;
    }
    return v;
}

void main() {
    vec2 st = vUV * uResolution / min(uResolution.x, uResolution.y);
    vec3 c;
    c.r = fbm(st * 0.5 + uMid * 0.1);
    c.g = fbm(st + uTime * 0.2 + uMid * 0.2);
    c.b = fbm(st + uTime * 0.3 + uTreble * 0.3);
    c += vec3(uGlow) * uTreble;
    FragColor = vec4(c, 1.0);
}
` + "\x00"

// Particle shader: white points, size attenuated with distance.
const particleVertSrc = `#version 410 core

layout(location = 0) in vec3 aPos;

uniform mat4 uView;
uniform mat4 uProj;
uniform float uPointSize;
uniform float uScale;

void main() {
    vec4 mv = uView * vec4(aPos, 1.0);
    gl_PointSize = max(1.0, uPointSize * uScale / -mv.z);
    gl_Position = uProj * mv;
}
` + "\x00"

const particleFragSrc = `#version 410 core

out vec4 FragColor;

void main() {
    FragColor = vec4(1.0);
}
` + "\x00"

// Fullscreen triangle generated from gl_VertexID.
const screenVertSrc = `#version 410 core

out vec2 vUV;

void main() {
    vec2 p = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
    vUV = p;
    gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

const brightFragSrc = `#version 410 core

uniform sampler2D uTex;
uniform float uThreshold;

in vec2 vUV;
out vec4 FragColor;

void main() {
    vec3 c = texture(uTex, vUV).rgb;
    float luma = dot(c, vec3(0.299, 0.587, 0.114));
    FragColor = vec4(c * smoothstep(uThreshold, uThreshold + 0.01, luma), 1.0);
}
` + "\x00"

const blurFragSrc = `#version 410 core

#define TAPS 9

uniform sampler2D uTex;
uniform vec2 uStep;
uniform float uWeights[TAPS];

in vec2 vUV;
out vec4 FragColor;

void main() {
    vec3 sum = texture(uTex, vUV).rgb * uWeights[0];
    for (int i = 1; i < TAPS; i++) {
        vec2 o = uStep * float(i);
        sum += texture(uTex, vUV + o).rgb * uWeights[i];
        sum += texture(uTex, vUV - o).rgb * uWeights[i];
    }
    FragColor = vec4(sum, 1.0);
}
` + "\x00"

const compositeFragSrc = `#version 410 core

uniform sampler2D uScene;
uniform sampler2D uBloom;
uniform float uIntensity;

in vec2 vUV;
out vec4 FragColor;

void main() {
    vec3 c = texture(uScene, vUV).rgb + texture(uBloom, vUV).rgb * uIntensity;
    FragColor = vec4(c, 1.0);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}

func uniform(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}
