// Package postfx holds the CPU framebuffer and the bloom pass applied to it.
package postfx

import "github.com/go-gl/mathgl/mgl64"

// Framebuffer is a linear RGB float image. Values are not clamped until
// they are quantized for output.
type Framebuffer struct {
	W, H int
	Pix  []mgl64.Vec3
}

// NewFramebuffer allocates a w x h buffer. Non-positive sizes give an empty
// buffer.
func NewFramebuffer(w, h int) *Framebuffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Framebuffer{W: w, H: h, Pix: make([]mgl64.Vec3, w*h)}
}

// Resize reallocates the buffer if the size changed.
func (f *Framebuffer) Resize(w, h int) {
	if w == f.W && h == f.H {
		return
	}
	*f = *NewFramebuffer(w, h)
}

// Clear sets every pixel to black.
func (f *Framebuffer) Clear() {
	clear(f.Pix)
}

func (f *Framebuffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.W && y < f.H
}

// At returns the pixel at (x, y), or black outside the buffer.
func (f *Framebuffer) At(x, y int) mgl64.Vec3 {
	if !f.inside(x, y) {
		return mgl64.Vec3{}
	}
	return f.Pix[y*f.W+x]
}

// Set writes a pixel. Out of range writes are dropped.
func (f *Framebuffer) Set(x, y int, c mgl64.Vec3) {
	if f.inside(x, y) {
		f.Pix[y*f.W+x] = c
	}
}

// Add blends c additively into a pixel.
func (f *Framebuffer) Add(x, y int, c mgl64.Vec3) {
	if f.inside(x, y) {
		i := y*f.W + x
		f.Pix[i] = f.Pix[i].Add(c)
	}
}
