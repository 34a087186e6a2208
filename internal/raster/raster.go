// Package raster is the CPU render surface: it rasterizes the displaced
// sphere, shades each covered pixel, adds the particle cloud, applies bloom
// and encodes the result as half-block terminal cells.
package raster

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/mesh"
	"github.com/olivier-w/orb/internal/postfx"
	"github.com/olivier-w/orb/internal/shading"
)

// upper half block: foreground is the top pixel, background the bottom one
const halfBlock = '▀'

var densityRamp = []byte(" .:-=+*#%@")

var particleColor = mgl64.Vec3{1, 1, 1}

type projected struct {
	x, y, z float64
	ok      bool
}

// Renderer draws into a framebuffer of w x h pixels, shown as w columns by
// h/2 rows of text.
type Renderer struct {
	sphere *mesh.Sphere
	camera mesh.Camera
	bloom  *postfx.BloomPass
	fb     *postfx.Framebuffer

	depth  []float64
	uv     []mgl64.Vec2
	screen []projected

	profile colorProfile
	output  string
}

func New(sphere *mesh.Sphere) *Renderer {
	return &Renderer{
		sphere:  sphere,
		camera:  mesh.DefaultCamera,
		bloom:   postfx.NewBloomPass(),
		fb:      postfx.NewFramebuffer(0, 0),
		screen:  make([]projected, len(sphere.Vertices)),
		profile: currentColorProfile(),
	}
}

// Resize sets the framebuffer size in pixels.
func (r *Renderer) Resize(w, h int) {
	r.fb.Resize(w, h)
	r.bloom.Resize(w, h)
	if n := w * h; len(r.depth) != n {
		r.depth = make([]float64, n)
		r.uv = make([]mgl64.Vec2, n)
	}
}

// Framebuffer returns the last rendered image.
func (r *Renderer) Framebuffer() *postfx.Framebuffer { return r.fb }

// View returns the last frame as terminal text.
func (r *Renderer) View() string { return r.output }

func (r *Renderer) Render(f engine.Frame) error {
	w, h := r.fb.W, r.fb.H
	if w == 0 || h == 0 {
		r.output = ""
		return nil
	}
	r.fb.Clear()
	for i := range r.depth {
		r.depth[i] = math.Inf(1)
	}

	u := f.Uniforms
	vp := r.camera.ViewProjection(float64(w) / float64(h))
	for i, v := range r.sphere.Vertices {
		pos := shading.Displace(v.Position, u.Time, u.Bass, u.DistortionFactor)
		r.screen[i] = r.project(vp, pos)
	}
	idx := r.sphere.Indices
	for t := 0; t+2 < len(idx); t += 3 {
		r.triangle(int(idx[t]), int(idx[t+1]), int(idx[t+2]))
	}
	for i, d := range r.depth {
		if !math.IsInf(d, 1) {
			r.fb.Pix[i] = shading.Color(r.uv[i], u)
		}
	}

	for _, p := range f.Particles {
		s := r.project(vp, mgl64.Vec3{float64(p.X()), float64(p.Y()), float64(p.Z())})
		if !s.ok {
			continue
		}
		x, y := int(s.x), int(s.y)
		if x < 0 || y < 0 || x >= w || y >= h || s.z >= r.depth[y*w+x] {
			continue
		}
		r.fb.Add(x, y, particleColor)
	}

	r.bloom.Apply(r.fb, f.Bloom)
	r.output = r.encode()
	return nil
}

func (r *Renderer) project(vp mgl64.Mat4, pos mgl64.Vec3) projected {
	clip := vp.Mul4x1(pos.Vec4(1))
	if clip.W() <= r.camera.Near {
		return projected{}
	}
	inv := 1 / clip.W()
	z := clip.Z() * inv
	if z < -1 || z > 1 {
		return projected{}
	}
	return projected{
		x:  (clip.X()*inv + 1) * 0.5 * float64(r.fb.W),
		y:  (1 - clip.Y()*inv) * 0.5 * float64(r.fb.H),
		z:  z,
		ok: true,
	}
}

func edge(a, b projected, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// triangle fills one triangle into the depth and uv buffers. Both windings
// are drawn.
func (r *Renderer) triangle(ia, ib, ic int) {
	a, b, c := r.screen[ia], r.screen[ib], r.screen[ic]
	if !a.ok || !b.ok || !c.ok {
		return
	}
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	w, h := r.fb.W, r.fb.H
	minX := max(0, int(math.Floor(min(a.x, b.x, c.x))))
	maxX := min(w-1, int(math.Ceil(max(a.x, b.x, c.x))))
	minY := max(0, int(math.Floor(min(a.y, b.y, c.y))))
	maxY := min(h-1, int(math.Ceil(max(a.y, b.y, c.y))))

	uva := r.sphere.Vertices[ia].UV
	uvb := r.sphere.Vertices[ib].UV
	uvc := r.sphere.Vertices[ic].UV
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			i := y*w + x
			if z >= r.depth[i] {
				continue
			}
			r.depth[i] = z
			r.uv[i] = uva.Mul(w0).Add(uvb.Mul(w1)).Add(uvc.Mul(w2))
		}
	}
}

func (r *Renderer) encode() string {
	w, h := r.fb.W, r.fb.H
	rows := (h + 1) / 2
	var sb strings.Builder
	sb.Grow(rows * w * 4)
	state := newCellState(r.profile)
	for row := range rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for x := range w {
			top := r.fb.At(x, row*2)
			bottom := r.fb.At(x, row*2+1)
			if r.profile == colorNone {
				luma := (postfx.Luminance(top) + postfx.Luminance(bottom)) / 2
				sb.WriteByte(densityRamp[int(clamp01(luma)*float64(len(densityRamp)-1)+0.5)])
				continue
			}
			state.set(&sb, quantize(top), quantize(bottom))
			sb.WriteRune(halfBlock)
		}
		state.reset(&sb)
	}
	return sb.String()
}
