package analyzer

import (
	"math"
	"testing"
)

type stubSource struct {
	samples []int16
}

func (s *stubSource) Latest(dst []int16) int {
	n := copy(dst, s.samples)
	return n
}

func sineSource(bin, bins int, amp float64) *stubSource {
	size := bins * 2
	samples := make([]int16, size*2)
	for i := range size {
		v := int16(amp * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(size)))
		samples[i*2] = v
		samples[i*2+1] = v
	}
	return &stubSource{samples: samples}
}

func allZero(spec []uint8) bool {
	for _, v := range spec {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestSpectrumWithoutSourceIsSilent(t *testing.T) {
	a, err := New(nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	spec, err := a.Spectrum()
	if err != nil {
		t.Fatalf("Spectrum() error = %v", err)
	}
	if len(spec) != DefaultBins {
		t.Fatalf("expected %d bins, got %d", DefaultBins, len(spec))
	}
	if !allZero(spec) {
		t.Fatal("expected zero-filled spectrum without a source")
	}
}

func TestSpectrumBeforeTapFillsIsSilent(t *testing.T) {
	a, err := New(&stubSource{samples: make([]int16, 100)}, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	spec, err := a.Spectrum()
	if err != nil {
		t.Fatalf("Spectrum() error = %v", err)
	}
	if !allZero(spec) {
		t.Fatal("expected zero-filled spectrum while the tap is filling")
	}
}

func TestSpectrumPeaksAtToneBin(t *testing.T) {
	const bin = 100
	a, err := New(sineSource(bin, DefaultBins, 16000), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	spec, err := a.Spectrum()
	if err != nil {
		t.Fatalf("Spectrum() error = %v", err)
	}
	if spec[bin] != MaxSample {
		t.Fatalf("expected saturated bin %d, got %d", bin, spec[bin])
	}
	if spec[bin+100] > 64 {
		t.Fatalf("expected far bin to stay low, got %d", spec[bin+100])
	}
	if spec[10] > 64 {
		t.Fatalf("expected bass bin to stay low, got %d", spec[10])
	}
}

func TestSpectrumOfSilenceIsZero(t *testing.T) {
	a, err := New(&stubSource{samples: make([]int16, DefaultBins*4)}, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	spec, _ := a.Spectrum()
	if !allZero(spec) {
		t.Fatal("expected digital silence to map to zero")
	}
}

func TestSpectrumSmoothingCarriesPreviousFrame(t *testing.T) {
	src := sineSource(50, DefaultBins, 16000)
	a, err := New(src, Options{Smoothing: 0.5, MinDecibels: -100, MaxDecibels: 0})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	spec, _ := a.Spectrum()
	loud := spec[50]

	src.samples = make([]int16, len(src.samples))
	spec, _ = a.Spectrum()
	if spec[50] == 0 || spec[50] >= loud {
		t.Fatalf("expected decaying value below %d, got %d", loud, spec[50])
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	cases := []Options{
		{Bins: 300},
		{MinDecibels: -10, MaxDecibels: -20},
		{Smoothing: 1},
	}
	for _, opts := range cases {
		if _, err := New(nil, opts); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}
