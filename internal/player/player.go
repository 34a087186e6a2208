package player

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	bytesPerSec = playbackSampleRate * playbackFrameSize

	// tapFrames is how much recent audio the analyzer can look back over.
	tapFrames = 8192
	// readAhead bounds how far the device buffer runs ahead of the tap.
	readAhead = 40 * time.Millisecond
)

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// loopReader rewinds its decoder at end of stream while looping is enabled.
type loopReader struct {
	src    audioDecoder
	loop   atomic.Bool
	onWrap func()
	onEnd  func()
}

func (r *loopReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if err != io.EOF {
		return n, err
	}
	if n > 0 {
		return n, nil
	}
	if !r.loop.Load() {
		if r.onEnd != nil {
			r.onEnd()
		}
		return 0, io.EOF
	}
	if rerr := r.src.Rewind(); rerr != nil {
		return 0, fmt.Errorf("looping: %w", rerr)
	}
	if r.onWrap != nil {
		r.onWrap()
	}
	n, err = r.src.Read(p)
	if err == io.EOF && n > 0 {
		err = nil
	}
	// n == 0 with EOF here is an empty stream; looping would spin forever.
	return n, err
}

// Player plays one audio file through the shared audio device and exposes
// the samples it plays through a Tap.
type Player struct {
	file      *os.File
	decoder   *normalizedDecoder
	looper    *loopReader
	counter   *countingReader
	tap       *Tap
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	length    int64
	duration  time.Duration
	volume    float64
	paused    bool
	started   bool
	done      chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   readAhead,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Open prepares path for playback. Playback starts with Play.
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	dec, err := newNormalizedDecoder(src)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("initializing audio device: %w", err)
	}

	p := newPlayer(dec)
	p.file = f
	p.otoCtx = ctx
	p.otoPlayer = ctx.NewPlayer(&tapReader{src: p.counter, tap: p.tap})
	p.otoPlayer.SetBufferSize(int(readAhead.Seconds() * bytesPerSec))
	p.otoPlayer.SetVolume(p.volume)
	return p, nil
}

// newPlayer builds the reader chain decoder -> looper -> counter without
// touching the audio device.
func newPlayer(dec *normalizedDecoder) *Player {
	p := &Player{
		decoder: dec,
		tap:     NewTap(tapFrames),
		length:  dec.Length(),
		volume:  0.8,
		done:    make(chan struct{}),
	}
	p.duration = time.Duration(float64(p.length) / float64(bytesPerSec) * float64(time.Second))
	p.looper = &loopReader{src: dec}
	p.counter = &countingReader{reader: p.looper}
	p.looper.onWrap = func() { p.counter.SetPos(0) }
	p.looper.onEnd = func() {
		p.tap.Clear()
		p.doneOnce.Do(func() { close(p.done) })
	}
	return p
}

// Play starts playback. With loop set the track restarts from the beginning
// every time it ends.
func (p *Player) Play(loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.looper.loop.Store(loop)
	if p.closed || p.started {
		return
	}
	p.started = true
	p.paused = false
	p.otoPlayer.Play()
}

// Done returns a channel that closes when a non-looping track finishes.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Tap returns the buffer of recently played samples.
func (p *Player) Tap() *Tap {
	return p.tap
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.started {
		return
	}
	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
		p.tap.Clear()
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the playback position within the current pass of the track.
func (p *Player) Position() time.Duration {
	pos := p.counter.Pos()
	if p.length > 0 {
		pos %= p.length
	}
	secs := float64(pos) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(v)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v) // SetVolume handles clamping
}

// Close releases all resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		_ = p.otoPlayer.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
	p.tap.Clear()
}
