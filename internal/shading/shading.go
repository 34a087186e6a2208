// Package shading is the procedural surface stage: bass-driven vertex
// displacement and fbm value-noise coloring driven by mid and treble.
//
// Every function is pure. The GLSL program in internal/glview carries the
// same formulas; this package is the reference the CPU rasterizer uses.
package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/params"
)

const (
	fbmOctaves    = 5
	fbmAmplitude  = 0.5
	fbmFrequency  = 2.0
	fbmGain       = 0.5
	fbmLacunarity = 2.0

	// displacementFreq is how many radians of wave phase one unit of y
	// covers on the sphere surface.
	displacementFreq = 5.0
)

var hashKey = mgl64.Vec2{12.9898, 78.233}

// Vertex is one mesh vertex as the shading stage sees it.
type Vertex struct {
	Position mgl64.Vec3
	UV       mgl64.Vec2
}

// Fragment is a shaded vertex: displaced position, the displacement that
// was applied along z, and the surface color.
type Fragment struct {
	Position   mgl64.Vec3
	Distortion float64
	Color      mgl64.Vec3
}

func fract(x float64) float64 { return x - math.Floor(x) }

// Distortion returns the z offset applied at height y.
func Distortion(y, t, bass, k float64) float64 {
	return math.Sin(y*displacementFreq+t) * bass * k
}

// Displace offsets pos along z. With bass = 0 it returns pos unchanged.
func Displace(pos mgl64.Vec3, t, bass, k float64) mgl64.Vec3 {
	pos[2] += Distortion(pos.Y(), t, bass, k)
	return pos
}

// Hash maps a lattice point to a pseudo-random value in [0,1).
func Hash(p mgl64.Vec2) float64 {
	return fract(math.Sin(p.Dot(hashKey)) * 43758.5453123)
}

// Noise is smoothstep-blended value noise over the Hash lattice.
func Noise(st mgl64.Vec2) float64 {
	i := mgl64.Vec2{math.Floor(st.X()), math.Floor(st.Y())}
	fx, fy := st.X()-i.X(), st.Y()-i.Y()
	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	a := Hash(i)
	b := Hash(i.Add(mgl64.Vec2{1, 0}))
	c := Hash(i.Add(mgl64.Vec2{0, 1}))
	d := Hash(i.Add(mgl64.Vec2{1, 1}))
	return lerp(lerp(a, b, ux), lerp(c, d, ux), uy)
}

// FBM sums five octaves of Noise.
func FBM(st mgl64.Vec2) float64 {
	value := 0.0
	amp := fbmAmplitude
	freq := fbmFrequency
	for range fbmOctaves {
		value += amp * Noise(st.Mul(freq))
		freq *= fbmLacunarity
		amp *= fbmGain
	}
	return value
}

// ScreenCoord scales uv by the viewport so the pattern keeps its aspect.
func ScreenCoord(uv, res mgl64.Vec2) mgl64.Vec2 {
	m := math.Min(res.X(), res.Y())
	if m <= 0 {
		return uv
	}
	return mgl64.Vec2{uv.X() * res.X() / m, uv.Y() * res.Y() / m}
}

// Color evaluates the surface color at uv. Channels are not clamped.
func Color(uv mgl64.Vec2, u params.Uniforms) mgl64.Vec3 {
	st := ScreenCoord(uv, u.Resolution)
	r := FBM(offset(st.Mul(0.5), u.Mid*0.1))
	g := FBM(offset(st, u.Time*0.2+u.Mid*0.2))
	b := FBM(offset(st, u.Time*0.3+u.Treble*0.3))
	glow := u.GlowStrength * u.Treble
	return mgl64.Vec3{r + glow, g + glow, b + glow}
}

// Shade runs the vertex and fragment stages for one vertex.
func Shade(v Vertex, u params.Uniforms) Fragment {
	d := Distortion(v.Position.Y(), u.Time, u.Bass, u.DistortionFactor)
	pos := v.Position
	pos[2] += d
	return Fragment{
		Position:   pos,
		Distortion: d,
		Color:      Color(v.UV, u),
	}
}

func offset(v mgl64.Vec2, s float64) mgl64.Vec2 {
	return mgl64.Vec2{v.X() + s, v.Y() + s}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
