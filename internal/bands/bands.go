// Package bands reads fixed spectrum bins and turns them into the normalized
// amplitudes that drive shading and particles.
package bands

import (
	"errors"
	"fmt"
	"math"
)

// DefaultDivisor normalizes a byte sample. It is deliberately 256 rather than
// the true byte maximum of 255, so a full-scale bin reads as 255/256.
const DefaultDivisor = 256.0

var (
	ErrSpectrumSize = errors.New("spectrum length does not match band layout")
	ErrIndexRange   = errors.New("band index out of range")
)

// Amplitudes are the per-frame band values fed to the shading stage.
type Amplitudes struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Layout names the spectrum bins read each frame. The indices only map to
// bass, mid and treble for the Size they were chosen for.
type Layout struct {
	Size     int
	Bass     int
	Mid      int
	Treble   int
	Particle int
}

// DefaultLayout reads a 512-bin spectrum. With 48 kHz audio a bin is about
// 46.9 Hz wide, so bass sits near 470 Hz, mid near 4.7 kHz and treble near
// 8.4 kHz. Over a 256-bin spectrum the same indices land an octave higher.
var DefaultLayout = Layout{Size: 512, Bass: 10, Mid: 100, Treble: 180, Particle: 50}

// Scale rescales the indices proportionally to a spectrum of n bins.
func (l Layout) Scale(n int) Layout {
	if n == l.Size || l.Size <= 0 {
		l.Size = n
		return l
	}
	f := float64(n) / float64(l.Size)
	idx := func(i int) int {
		v := int(math.Round(float64(i) * f))
		if v >= n {
			v = n - 1
		}
		return v
	}
	return Layout{
		Size:     n,
		Bass:     idx(l.Bass),
		Mid:      idx(l.Mid),
		Treble:   idx(l.Treble),
		Particle: idx(l.Particle),
	}
}

// Validate reports indices that fall outside the spectrum.
func (l Layout) Validate() error {
	if l.Size <= 0 {
		return fmt.Errorf("%w: size %d", ErrIndexRange, l.Size)
	}
	for name, i := range map[string]int{
		"bass":     l.Bass,
		"mid":      l.Mid,
		"treble":   l.Treble,
		"particle": l.Particle,
	} {
		if i < 0 || i >= l.Size {
			return fmt.Errorf("%w: %s index %d not in [0,%d)", ErrIndexRange, name, i, l.Size)
		}
	}
	return nil
}

// Extractor maps a spectrum to Amplitudes. Values are not clamped.
type Extractor struct {
	Layout  Layout
	Divisor float64
}

// NewExtractor validates layout and uses DefaultDivisor when divisor is 0.
func NewExtractor(layout Layout, divisor float64) (*Extractor, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if divisor == 0 {
		divisor = DefaultDivisor
	}
	if divisor < 0 {
		return nil, fmt.Errorf("divisor must be positive, got %v", divisor)
	}
	return &Extractor{Layout: layout, Divisor: divisor}, nil
}

// Normalize scales one raw sample.
func (e *Extractor) Normalize(sample float64) float64 {
	return sample / e.Divisor
}

// Extract reads the bass, mid and treble bins of spectrum.
func (e *Extractor) Extract(spectrum []uint8) (Amplitudes, error) {
	if len(spectrum) != e.Layout.Size {
		return Amplitudes{}, fmt.Errorf("%w: got %d bins, want %d", ErrSpectrumSize, len(spectrum), e.Layout.Size)
	}
	return Amplitudes{
		Bass:   e.Normalize(float64(spectrum[e.Layout.Bass])),
		Mid:    e.Normalize(float64(spectrum[e.Layout.Mid])),
		Treble: e.Normalize(float64(spectrum[e.Layout.Treble])),
	}, nil
}

// Particle reads the particle bin. It is sampled on its own, separate from
// the three shading bands.
func (e *Extractor) Particle(spectrum []uint8) (float64, error) {
	if len(spectrum) != e.Layout.Size {
		return 0, fmt.Errorf("%w: got %d bins, want %d", ErrSpectrumSize, len(spectrum), e.Layout.Size)
	}
	return e.Normalize(float64(spectrum[e.Layout.Particle])), nil
}
