// Package mesh builds the scene geometry: the UV sphere the visualization
// deforms and the camera looking at it.
package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/shading"
)

const (
	DefaultRadius   = 5.0
	DefaultSegments = 128
)

// Sphere is an indexed triangle mesh. Vertices are laid out in
// (heightSegments+1) rows of (widthSegments+1) columns, top pole first.
type Sphere struct {
	Radius         float64
	WidthSegments  int
	HeightSegments int

	Vertices []shading.Vertex
	Normals  []mgl64.Vec3
	Indices  []uint32
}

// NewSphere builds a sphere of the given radius. The seam column is
// duplicated so UVs wrap cleanly and pole rows carry half-segment UV offsets.
func NewSphere(radius float64, widthSegments, heightSegments int) (*Sphere, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive, got %v", radius)
	}
	if widthSegments < 3 || heightSegments < 2 {
		return nil, fmt.Errorf("sphere needs at least 3x2 segments, got %dx%d", widthSegments, heightSegments)
	}

	s := &Sphere{
		Radius:         radius,
		WidthSegments:  widthSegments,
		HeightSegments: heightSegments,
	}
	cols := widthSegments + 1
	n := cols * (heightSegments + 1)
	s.Vertices = make([]shading.Vertex, 0, n)
	s.Normals = make([]mgl64.Vec3, 0, n)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		uOffset := 0.0
		switch iy {
		case 0:
			uOffset = 0.5 / float64(widthSegments)
		case heightSegments:
			uOffset = -0.5 / float64(widthSegments)
		}
		theta := v * math.Pi
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi
			pos := mgl64.Vec3{
				-radius * math.Cos(phi) * math.Sin(theta),
				radius * math.Cos(theta),
				radius * math.Sin(phi) * math.Sin(theta),
			}
			s.Vertices = append(s.Vertices, shading.Vertex{
				Position: pos,
				UV:       mgl64.Vec2{u + uOffset, 1 - v},
			})
			s.Normals = append(s.Normals, pos.Normalize())
		}
	}

	idx := func(ix, iy int) uint32 { return uint32(iy*cols + ix) }
	s.Indices = make([]uint32, 0, widthSegments*(heightSegments-1)*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := idx(ix+1, iy)
			b := idx(ix, iy)
			c := idx(ix, iy+1)
			d := idx(ix+1, iy+1)
			if iy != 0 {
				s.Indices = append(s.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				s.Indices = append(s.Indices, b, c, d)
			}
		}
	}
	return s, nil
}

// Triangles returns the triangle count.
func (s *Sphere) Triangles() int { return len(s.Indices) / 3 }

// Interleaved packs each vertex as x, y, z, u, v for upload to a GPU buffer.
func (s *Sphere) Interleaved() []float32 {
	out := make([]float32, 0, len(s.Vertices)*5)
	for _, v := range s.Vertices {
		out = append(out,
			float32(v.Position.X()), float32(v.Position.Y()), float32(v.Position.Z()),
			float32(v.UV.X()), float32(v.UV.Y()),
		)
	}
	return out
}
