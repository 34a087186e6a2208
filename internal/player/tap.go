package player

import (
	"encoding/binary"
	"io"
	"sync"
)

// Tap is a thread-safe circular buffer of the interleaved stereo s16 samples
// most recently handed to the audio device. The analyzer reads it as a
// snapshot every frame.
type Tap struct {
	buf  []int16
	size int
	w    int // write position
	len  int // current fill level
	odd  []byte
	mu   sync.Mutex
}

// NewTap creates a tap holding up to frames stereo frames.
func NewTap(frames int) *Tap {
	size := frames * playbackChannels
	return &Tap{
		buf:  make([]int16, size),
		size: size,
	}
}

// Write appends little-endian s16 PCM, overwriting the oldest samples when full.
// A trailing odd byte is kept until the next write.
func (t *Tap) Write(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.odd) > 0 {
		p = append(t.odd, p...)
		t.odd = nil
	}
	n := len(p) / playbackBytesPerSample
	for i := range n {
		t.buf[t.w] = int16(binary.LittleEndian.Uint16(p[i*2:]))
		t.w = (t.w + 1) % t.size
	}
	if rem := len(p) % playbackBytesPerSample; rem != 0 {
		t.odd = append([]byte(nil), p[len(p)-rem:]...)
	}
	t.len += n
	if t.len > t.size {
		t.len = t.size
	}
}

// Latest copies the most recent samples into dst, oldest first, and returns
// how many were copied. Fewer than len(dst) means the tap has not filled yet.
func (t *Tap) Latest(dst []int16) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(dst)
	if n > t.len {
		n = t.len
	}
	n -= n % playbackChannels
	if n == 0 {
		return 0
	}
	start := (t.w - n + t.size) % t.size
	for i := range n {
		dst[i] = t.buf[(start+i)%t.size]
	}
	return n
}

// Clear drops all buffered samples.
func (t *Tap) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w = 0
	t.len = 0
	t.odd = nil
}

// tapReader copies everything read through it into a Tap.
type tapReader struct {
	src io.Reader
	tap *Tap
}

func (r *tapReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.tap.Write(p[:n])
	}
	return n, err
}
