package postfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bloom settings. The defaults are the strength, radius and threshold the
// scene was tuned with.
type Bloom struct {
	Enabled   bool
	Intensity float64
	Threshold float64
	Radius    float64
}

var DefaultBloom = Bloom{Enabled: true, Intensity: 1.5, Threshold: 0.85, Radius: 0.4}

// width of the soft knee above the threshold
const smoothWidth = 0.01

var lumaWeights = mgl64.Vec3{0.299, 0.587, 0.114}

// Luminance returns perceived brightness of c.
func Luminance(c mgl64.Vec3) float64 { return c.Dot(lumaWeights) }

// Sigma is the blur standard deviation in pixels for this radius.
func (b Bloom) Sigma() float64 { return 1 + b.Radius*4 }

// BloomPass applies Bloom to framebuffers, reusing its scratch buffers
// between frames.
type BloomPass struct {
	bright *Framebuffer
	tmp    *Framebuffer
	kernel []float64
	sigma  float64
}

func NewBloomPass() *BloomPass {
	return &BloomPass{bright: NewFramebuffer(0, 0), tmp: NewFramebuffer(0, 0)}
}

// Resize preallocates scratch space for a w x h target.
func (p *BloomPass) Resize(w, h int) {
	p.bright.Resize(w, h)
	p.tmp.Resize(w, h)
}

// Apply blooms fb in place: bright-pass, separable gaussian blur, then an
// additive composite scaled by Intensity.
func (p *BloomPass) Apply(fb *Framebuffer, b Bloom) {
	if !b.Enabled || b.Intensity == 0 || fb.W == 0 || fb.H == 0 {
		return
	}
	p.Resize(fb.W, fb.H)
	p.prepareKernel(b.Sigma())

	for i, c := range fb.Pix {
		p.bright.Pix[i] = c.Mul(brightWeight(Luminance(c), b.Threshold))
	}
	p.blur(p.bright, p.tmp, 1, 0)
	p.blur(p.tmp, p.bright, 0, 1)

	for i := range fb.Pix {
		fb.Pix[i] = fb.Pix[i].Add(p.bright.Pix[i].Mul(b.Intensity))
	}
}

func brightWeight(luma, threshold float64) float64 {
	return smoothstep(threshold, threshold+smoothWidth, luma)
}

func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func (p *BloomPass) prepareKernel(sigma float64) {
	if sigma == p.sigma && p.kernel != nil {
		return
	}
	p.sigma = sigma
	r := int(math.Ceil(sigma * 3))
	p.kernel = make([]float64, 2*r+1)
	sum := 0.0
	for i := range p.kernel {
		x := float64(i - r)
		w := math.Exp(-x * x / (2 * sigma * sigma))
		p.kernel[i] = w
		sum += w
	}
	for i := range p.kernel {
		p.kernel[i] /= sum
	}
}

// blur convolves src into dst along (dx, dy), clamping at the edges.
func (p *BloomPass) blur(src, dst *Framebuffer, dx, dy int) {
	r := len(p.kernel) / 2
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var acc mgl64.Vec3
			for k, w := range p.kernel {
				sx := clampInt(x+(k-r)*dx, 0, src.W-1)
				sy := clampInt(y+(k-r)*dy, 0, src.H-1)
				acc = acc.Add(src.Pix[sy*src.W+sx].Mul(w))
			}
			dst.Pix[y*dst.W+x] = acc
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
