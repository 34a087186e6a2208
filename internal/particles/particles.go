// Package particles drives the point cloud that floats around the sphere.
package particles

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultCount  = 500
	DefaultSpread = 50.0
	DefaultHeight = 5.0
)

// Set is a fixed-size cloud of points. X and Z are fixed after New; Y is
// rewritten by every Update.
type Set struct {
	Height    float64
	positions []mgl32.Vec3
}

// New scatters count points uniformly in a cube of side spread centered on
// the origin. A nil rng uses a time-seeded source.
func New(count int, spread float64, rng *rand.Rand) *Set {
	if count < 0 {
		count = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	pos := make([]mgl32.Vec3, count)
	for i := range pos {
		for c := range 3 {
			pos[i][c] = float32((rng.Float64() - 0.5) * spread)
		}
	}
	return &Set{Height: DefaultHeight, positions: pos}
}

// Len returns the particle count.
func (s *Set) Len() int { return len(s.positions) }

// Positions returns the live position slice. Callers must not modify it.
func (s *Set) Positions() []mgl32.Vec3 { return s.positions }

// Update sets every particle's height to a travelling wave scaled by amp.
func (s *Set) Update(t, amp float64) {
	for i := range s.positions {
		x := float64(s.positions[i].X())
		s.positions[i][1] = float32(math.Sin(2*t+x) * amp * s.Height)
	}
}
