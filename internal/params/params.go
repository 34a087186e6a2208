// Package params holds the per-frame values shared between the frame loop
// and the shading stage.
package params

import "github.com/go-gl/mathgl/mgl64"

const (
	DefaultGlowStrength     = 1.5
	DefaultDistortionFactor = 1.0
)

// Uniforms is written once per frame by the scheduler and handed to the
// render surface by value, so shading never observes a half-written frame.
type Uniforms struct {
	Time       float64
	Bass       float64
	Mid        float64
	Treble     float64
	Resolution mgl64.Vec2

	GlowStrength     float64
	DistortionFactor float64
}

// Default returns uniforms at time zero with silent bands.
func Default(width, height int) Uniforms {
	return Uniforms{
		Resolution:       mgl64.Vec2{float64(width), float64(height)},
		GlowStrength:     DefaultGlowStrength,
		DistortionFactor: DefaultDistortionFactor,
	}
}

// Aspect returns width/height, or 1 for an empty resolution.
func (u Uniforms) Aspect() float64 {
	if u.Resolution.Y() <= 0 {
		return 1
	}
	return u.Resolution.X() / u.Resolution.Y()
}
