// Package analyzer turns the most recent block of played audio into a
// fixed-size byte spectrum, the way a browser AnalyserNode does: Blackman
// window, real FFT, optional time smoothing, decibel scaling to [0,255].
package analyzer

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	DefaultBins        = 512
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0

	// MaxSample is the largest value a spectrum bin can hold.
	MaxSample = math.MaxUint8
)

// ErrTransform reports a spectrum that could not be computed this frame.
var ErrTransform = errors.New("frequency transform failed")

// SampleSource yields the most recent interleaved stereo s16 samples,
// oldest first. It returns how many samples were written to dst.
type SampleSource interface {
	Latest(dst []int16) int
}

// Options configures an Analyzer. Zero fields take the defaults.
type Options struct {
	Bins        int
	MinDecibels float64
	MaxDecibels float64
	// Smoothing blends each magnitude with the previous frame's (0 disables).
	Smoothing float64
}

// Analyzer computes Bins magnitude samples from a window of 2*Bins frames.
type Analyzer struct {
	src  SampleSource
	opts Options

	fft      *fourier.FFT
	win      []float64
	pcm      []int16
	frame    []float64
	coeffs   []complex128
	smoothed []float64
	spectrum []uint8
}

// New creates an analyzer reading from src. src may be nil, in which case
// every spectrum is silent.
func New(src SampleSource, opts Options) (*Analyzer, error) {
	if opts.Bins == 0 {
		opts.Bins = DefaultBins
	}
	if opts.MinDecibels == 0 && opts.MaxDecibels == 0 {
		opts.MinDecibels = DefaultMinDecibels
		opts.MaxDecibels = DefaultMaxDecibels
	}
	if opts.Bins < 2 || opts.Bins&(opts.Bins-1) != 0 {
		return nil, fmt.Errorf("bin count must be a power of two, got %d", opts.Bins)
	}
	if opts.MaxDecibels <= opts.MinDecibels {
		return nil, fmt.Errorf("max decibels (%v) must exceed min decibels (%v)", opts.MaxDecibels, opts.MinDecibels)
	}
	if opts.Smoothing < 0 || opts.Smoothing >= 1 {
		return nil, fmt.Errorf("smoothing must be in [0,1), got %v", opts.Smoothing)
	}

	size := opts.Bins * 2
	win := make([]float64, size)
	for i := range win {
		win[i] = 1
	}
	return &Analyzer{
		src:      src,
		opts:     opts,
		fft:      fourier.NewFFT(size),
		win:      window.Blackman(win),
		pcm:      make([]int16, size*2),
		frame:    make([]float64, size),
		coeffs:   make([]complex128, size/2+1),
		smoothed: make([]float64, opts.Bins),
		spectrum: make([]uint8, opts.Bins),
	}, nil
}

// Bins returns the spectrum length.
func (a *Analyzer) Bins() int { return a.opts.Bins }

// Spectrum refreshes and returns the byte spectrum. The returned slice is
// reused by the next call. Without enough audio the spectrum is all zeros.
func (a *Analyzer) Spectrum() ([]uint8, error) {
	if a.src == nil || a.src.Latest(a.pcm) < len(a.pcm) {
		a.silence()
		return a.spectrum, nil
	}

	for i := range a.frame {
		l, r := float64(a.pcm[i*2]), float64(a.pcm[i*2+1])
		a.frame[i] = (l + r) / 65536.0 * a.win[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	scale := 1 / float64(len(a.frame))
	mags := a.frame[:len(a.spectrum)]
	for k := range mags {
		mag := cmplx.Abs(a.coeffs[k]) * scale
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			return a.spectrum, fmt.Errorf("%w: bin %d is %v", ErrTransform, k, mag)
		}
		mags[k] = mag
	}
	for k, mag := range mags {
		a.smoothed[k] = a.opts.Smoothing*a.smoothed[k] + (1-a.opts.Smoothing)*mag
	}

	span := a.opts.MaxDecibels - a.opts.MinDecibels
	for k, mag := range a.smoothed {
		db := math.Inf(-1)
		if mag > 0 {
			db = 20 * math.Log10(mag)
		}
		v := MaxSample * (db - a.opts.MinDecibels) / span
		switch {
		case v < 0:
			v = 0
		case v > MaxSample:
			v = MaxSample
		}
		a.spectrum[k] = uint8(v)
	}
	return a.spectrum, nil
}

func (a *Analyzer) silence() {
	for i := range a.spectrum {
		a.spectrum[i] = 0
	}
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}
