package bands

import (
	"errors"
	"math"
	"testing"
)

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(DefaultLayout, 0)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	return e
}

func TestExtractZeroSpectrumIsZero(t *testing.T) {
	e := newDefaultExtractor(t)
	amps, err := e.Extract(make([]uint8, 512))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if amps != (Amplitudes{}) {
		t.Fatalf("expected zero amplitudes, got %+v", amps)
	}
	p, err := e.Particle(make([]uint8, 512))
	if err != nil || p != 0 {
		t.Fatalf("expected zero particle sample, got %v (err %v)", p, err)
	}
}

func TestNormalizeUsesFixedDivisor(t *testing.T) {
	e := newDefaultExtractor(t)
	if got := e.Normalize(256); got != 1.0 {
		t.Fatalf("expected 256 to normalize to exactly 1.0, got %v", got)
	}

	spec := make([]uint8, 512)
	spec[10] = 255
	amps, _ := e.Extract(spec)
	if amps.Bass != 255.0/256.0 {
		t.Fatalf("expected full-scale byte to read 255/256, got %v", amps.Bass)
	}
}

func TestExtractReadsFixedBins(t *testing.T) {
	e := newDefaultExtractor(t)
	spec := make([]uint8, 512)
	spec[100] = 128
	spec[180] = 64
	spec[50] = 32

	amps, err := e.Extract(spec)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if amps.Bass != 0 || amps.Mid != 0.5 || amps.Treble != 0.25 {
		t.Fatalf("unexpected amplitudes %+v", amps)
	}

	p, _ := e.Particle(spec)
	if p != 0.125 {
		t.Fatalf("expected particle sample 0.125, got %v", p)
	}
}

func TestParticleBinIsIndependentOfShadingBands(t *testing.T) {
	e := newDefaultExtractor(t)
	spec := make([]uint8, 512)
	spec[50] = 200

	amps, _ := e.Extract(spec)
	if amps != (Amplitudes{}) {
		t.Fatalf("particle bin leaked into shading bands: %+v", amps)
	}
	if p, _ := e.Particle(spec); p == 0 {
		t.Fatal("expected particle bin to be read")
	}
}

func TestExtractRejectsWrongSize(t *testing.T) {
	e := newDefaultExtractor(t)
	if _, err := e.Extract(make([]uint8, 256)); !errors.Is(err, ErrSpectrumSize) {
		t.Fatalf("expected ErrSpectrumSize, got %v", err)
	}
	if _, err := e.Particle(nil); !errors.Is(err, ErrSpectrumSize) {
		t.Fatalf("expected ErrSpectrumSize, got %v", err)
	}
}

func TestLayoutScaleFollowsBinCount(t *testing.T) {
	l := DefaultLayout.Scale(256)
	want := Layout{Size: 256, Bass: 5, Mid: 50, Treble: 90, Particle: 25}
	if l != want {
		t.Fatalf("Scale(256) = %+v, want %+v", l, want)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("scaled layout invalid: %v", err)
	}
	if same := DefaultLayout.Scale(512); same != DefaultLayout {
		t.Fatalf("Scale(512) changed layout: %+v", same)
	}
}

func TestLayoutValidateRejectsOutOfRange(t *testing.T) {
	l := DefaultLayout
	l.Size = 128
	if err := l.Validate(); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("expected ErrIndexRange, got %v", err)
	}
	if _, err := NewExtractor(l, 0); err == nil {
		t.Fatal("expected NewExtractor to reject invalid layout")
	}
}

func TestSmootherConvergesToTarget(t *testing.T) {
	s := NewSmoother(60, 6, 1)
	target := Amplitudes{Bass: 1, Mid: 0.5, Treble: 0.25}

	first, _ := s.Step(target, 1)
	if first.Bass <= 0 || first.Bass >= 1 {
		t.Fatalf("expected first step strictly between 0 and 1, got %v", first.Bass)
	}

	var amps Amplitudes
	var p float64
	for range 600 {
		amps, p = s.Step(target, 1)
	}
	if math.Abs(amps.Bass-1) > 1e-3 || math.Abs(amps.Treble-0.25) > 1e-3 || math.Abs(p-1) > 1e-3 {
		t.Fatalf("expected convergence, got %+v particle %v", amps, p)
	}

	s.Reset()
	if amps, _ = s.Step(Amplitudes{}, 0); amps != (Amplitudes{}) {
		t.Fatalf("expected rest after reset, got %+v", amps)
	}
}

func TestSmootherAdvanceUsesElapsedTime(t *testing.T) {
	target := Amplitudes{Bass: 1}
	nominal := NewSmoother(60, 6, 1)
	long := NewSmoother(60, 6, 1)

	a, _ := nominal.Step(target, 0)
	b, _ := long.Advance(1.0/15, target, 0)
	if b.Bass <= a.Bass {
		t.Fatalf("expected a longer step to move further: nominal %v, long %v", a.Bass, b.Bass)
	}

	same := NewSmoother(60, 6, 1)
	c, _ := same.Advance(0, target, 0)
	if c != a {
		t.Fatalf("expected dt 0 to take one nominal frame: %+v vs %+v", c, a)
	}
}
