package player

import (
	"io"
	"testing"
	"time"
)

func TestLoopReaderRewindsWhileLooping(t *testing.T) {
	src := &stubPCMDecoder{data: pcm16(1, 2), sampleRate: playbackSampleRate, channels: 2}
	wraps := 0
	r := &loopReader{src: src, onWrap: func() { wraps++ }}
	r.loop.Store(true)

	buf := make([]byte, 4)
	for i := range 5 {
		n, err := r.Read(buf)
		if err != nil || n != 4 {
			t.Fatalf("read %d: n=%d err=%v", i, n, err)
		}
	}
	if wraps != 4 {
		t.Fatalf("expected 4 wraps, got %d", wraps)
	}
}

func TestLoopReaderEndsWithoutLoop(t *testing.T) {
	src := &stubPCMDecoder{data: pcm16(1, 2), sampleRate: playbackSampleRate, channels: 2}
	ended := 0
	r := &loopReader{src: src, onEnd: func() { ended++ }}

	buf := make([]byte, 4)
	if n, _ := r.Read(buf); n != 4 {
		t.Fatalf("expected first read of 4 bytes, got %d", n)
	}
	if _, err := r.Read(buf); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if ended != 1 {
		t.Fatalf("expected onEnd once, got %d", ended)
	}
}

func TestLoopReaderStopsOnEmptyStream(t *testing.T) {
	src := &stubPCMDecoder{sampleRate: playbackSampleRate, channels: 2}
	r := &loopReader{src: src}
	r.loop.Store(true)

	if _, err := r.Read(make([]byte, 4)); err != io.EOF {
		t.Fatalf("expected EOF for empty looping stream, got %v", err)
	}
}

func TestPlayerPositionWrapsWithLoop(t *testing.T) {
	src := &stubPCMDecoder{data: make([]byte, bytesPerSec), sampleRate: playbackSampleRate, channels: 2}
	dec, err := newNormalizedDecoder(src)
	if err != nil {
		t.Fatalf("newNormalizedDecoder() error = %v", err)
	}
	p := newPlayer(dec)
	if p.Duration() != time.Second {
		t.Fatalf("expected 1s duration, got %v", p.Duration())
	}

	p.counter.SetPos(int64(bytesPerSec) + int64(bytesPerSec)/2)
	if got := p.Position(); got != 500*time.Millisecond {
		t.Fatalf("expected wrapped position 500ms, got %v", got)
	}
}

func TestPlayerEndClosesDoneAndClearsTap(t *testing.T) {
	src := &stubPCMDecoder{data: pcm16(5, 6), sampleRate: playbackSampleRate, channels: 2}
	dec, err := newNormalizedDecoder(src)
	if err != nil {
		t.Fatalf("newNormalizedDecoder() error = %v", err)
	}
	p := newPlayer(dec)
	r := &tapReader{src: p.counter, tap: p.tap}

	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	select {
	case <-p.Done():
	default:
		t.Fatal("expected Done to be closed after the track ended")
	}
	if n := p.Tap().Latest(make([]int16, 2)); n != 0 {
		t.Fatalf("expected cleared tap, got %d samples", n)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	p := &Player{}
	p.SetVolume(1.5)
	if p.Volume() != 1 {
		t.Fatalf("expected volume clamped to 1, got %v", p.Volume())
	}
	p.AdjustVolume(-3)
	if p.Volume() != 0 {
		t.Fatalf("expected volume clamped to 0, got %v", p.Volume())
	}
}
