package mesh

import "github.com/go-gl/mathgl/mgl64"

// Camera is a perspective camera on the +z axis looking at the origin.
type Camera struct {
	FovY     float64 // degrees
	Near     float64
	Far      float64
	Distance float64
}

var DefaultCamera = Camera{FovY: 75, Near: 0.1, Far: 1000, Distance: 12}

// View returns the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(
		mgl64.Vec3{0, 0, c.Distance},
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{0, 1, 0},
	)
}

// Projection returns the perspective matrix for a viewport of the given
// aspect ratio (width / height).
func (c Camera) Projection(aspect float64) mgl64.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection(aspect float64) mgl64.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}
