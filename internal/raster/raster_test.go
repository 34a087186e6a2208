package raster

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/mesh"
	"github.com/olivier-w/orb/internal/params"
	"github.com/olivier-w/orb/internal/postfx"
)

func newTestRenderer(t *testing.T, w, h int) *Renderer {
	t.Helper()
	sphere, err := mesh.NewSphere(mesh.DefaultRadius, 32, 32)
	if err != nil {
		t.Fatalf("NewSphere() error = %v", err)
	}
	r := New(sphere)
	r.profile = colorTrueColor
	r.Resize(w, h)
	return r
}

func frame(w, h int, pts ...mgl32.Vec3) engine.Frame {
	return engine.Frame{
		Uniforms:  params.Default(w, h),
		Particles: pts,
		Bloom:     postfx.Bloom{},
	}
}

func TestRenderCoversCenterOnly(t *testing.T) {
	r := newTestRenderer(t, 40, 40)
	if err := r.Render(frame(40, 40)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	fb := r.Framebuffer()
	if c := fb.At(20, 20); c == (mgl64.Vec3{}) {
		t.Fatal("expected sphere to cover the center pixel")
	}
	if c := fb.At(0, 0); c != (mgl64.Vec3{}) {
		t.Fatalf("expected black corner, got %v", c)
	}
}

func TestRenderDrawsVisibleParticles(t *testing.T) {
	r := newTestRenderer(t, 40, 40)
	above := mgl32.Vec3{0, 8, 0}
	if err := r.Render(frame(40, 40, above)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	found := false
	for _, c := range r.Framebuffer().Pix {
		if c == particleColor {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a white particle pixel above the sphere")
	}
}

func TestRenderHidesParticlesBehindSphere(t *testing.T) {
	plain := newTestRenderer(t, 40, 40)
	plain.Render(frame(40, 40))
	hidden := newTestRenderer(t, 40, 40)
	hidden.Render(frame(40, 40, mgl32.Vec3{0, 0, -10}))

	for i := range plain.Framebuffer().Pix {
		if plain.Framebuffer().Pix[i] != hidden.Framebuffer().Pix[i] {
			t.Fatalf("occluded particle changed pixel %d", i)
		}
	}
}

func TestViewUsesHalfBlocks(t *testing.T) {
	r := newTestRenderer(t, 12, 8)
	r.Render(frame(12, 8))
	lines := strings.Split(r.View(), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 text rows, got %d", len(lines))
	}
	if !strings.ContainsRune(r.View(), halfBlock) || !strings.Contains(r.View(), "\x1b[48;2;") {
		t.Fatalf("expected truecolor half blocks, got %q", r.View())
	}
}

func TestViewWithoutColorUsesRamp(t *testing.T) {
	r := newTestRenderer(t, 10, 6)
	r.profile = colorNone
	r.Render(frame(10, 6))
	for _, line := range strings.Split(r.View(), "\n") {
		if len(line) != 10 {
			t.Fatalf("expected 10 columns, got %q", line)
		}
		if strings.Contains(line, "\x1b") {
			t.Fatalf("unexpected escape sequence in %q", line)
		}
	}
}

func TestRenderWithoutSize(t *testing.T) {
	r := newTestRenderer(t, 0, 0)
	if err := r.Render(frame(0, 0)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if r.View() != "" {
		t.Fatalf("expected empty view, got %q", r.View())
	}
}

func TestDetectColorProfile(t *testing.T) {
	env := func(vars map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		}
	}
	cases := []struct {
		vars map[string]string
		want colorProfile
	}{
		{map[string]string{"TERM": "xterm-256color", "COLORTERM": "truecolor"}, colorTrueColor},
		{map[string]string{"TERM": "xterm-256color"}, colorANSI256},
		{map[string]string{"TERM": "xterm"}, colorANSI16},
		{map[string]string{"TERM": "dumb"}, colorNone},
		{map[string]string{"TERM": "xterm-256color", "NO_COLOR": ""}, colorNone},
	}
	for _, tc := range cases {
		if got := detectColorProfile(env(tc.vars)); got != tc.want {
			t.Fatalf("detectColorProfile(%v) = %v, want %v", tc.vars, got, tc.want)
		}
	}
}

func TestColorSequenceLayers(t *testing.T) {
	c := colorRGB{R: 205, G: 49, B: 49}
	if got := colorSequence(colorANSI16, c, false); got != "\x1b[31m" {
		t.Fatalf("foreground = %q", got)
	}
	if got := colorSequence(colorANSI16, c, true); got != "\x1b[41m" {
		t.Fatalf("background = %q", got)
	}
	if got := colorSequence(colorTrueColor, c, true); got != "\x1b[48;2;205;49;49m" {
		t.Fatalf("truecolor background = %q", got)
	}
}
