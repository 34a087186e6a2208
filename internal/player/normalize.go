package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	playbackSampleRate     = 48000
	playbackChannels       = 2
	playbackBytesPerSample = 2
	playbackFrameSize      = playbackChannels * playbackBytesPerSample
)

// normalizedDecoder wraps a PCM decoder and presents a fixed 48 kHz stereo
// s16le stream. Mono is duplicated to both channels; other rates are
// linearly interpolated.
type normalizedDecoder struct {
	src         audioDecoder
	passthrough bool
	srcChannels int
	step        float64 // source frames per output frame

	raw    []byte
	frames [][playbackChannels]int16
	cur    [playbackChannels]int16
	next   [playbackChannels]int16
	frac   float64
	out    pending

	primed    bool
	srcEOF    bool
	exhausted bool // cur holds the last source frame
	finished  bool
}

func newNormalizedDecoder(src audioDecoder) (*normalizedDecoder, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > playbackChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	return &normalizedDecoder{
		src:         src,
		passthrough: rate == playbackSampleRate && channels == playbackChannels,
		srcChannels: channels,
		step:        float64(rate) / playbackSampleRate,
	}, nil
}

// Length returns the normalized stream length in bytes.
func (d *normalizedDecoder) Length() int64 {
	srcFrames := d.src.Length() / int64(d.srcChannels*playbackBytesPerSample)
	outFrames := int64(float64(srcFrames) / d.step)
	return outFrames * playbackFrameSize
}

func (d *normalizedDecoder) SampleRate() int   { return playbackSampleRate }
func (d *normalizedDecoder) ChannelCount() int { return playbackChannels }

func (d *normalizedDecoder) Rewind() error {
	if err := d.src.Rewind(); err != nil {
		return err
	}
	d.frames = d.frames[:0]
	d.frac = 0
	d.primed = false
	d.srcEOF = false
	d.exhausted = false
	d.finished = false
	d.out.reset()
	return nil
}

func (d *normalizedDecoder) Read(p []byte) (int, error) {
	if d.passthrough {
		return d.src.Read(p)
	}
	if len(d.out.buf) > 0 {
		return d.out.drain(p), nil
	}
	if d.finished {
		return 0, io.EOF
	}

	if !d.primed {
		first, err := d.pull()
		if err != nil {
			return 0, err
		}
		second, err := d.pull()
		if err == io.EOF {
			second = first
			d.exhausted = true
		} else if err != nil {
			return 0, err
		}
		d.cur, d.next = first, second
		d.primed = true
	}

	frames := len(p) / playbackFrameSize
	if frames == 0 {
		frames = 1
	}
	raw := make([]byte, 0, frames*playbackFrameSize)
	var readErr error
	for range frames {
		var frame [playbackFrameSize]byte
		for ch := range playbackChannels {
			a, b := float64(d.cur[ch]), float64(d.next[ch])
			binary.LittleEndian.PutUint16(frame[ch*2:], uint16(clamp16(int(a+(b-a)*d.frac))))
		}
		raw = append(raw, frame[:]...)

		d.frac += d.step
		for d.frac >= 1 && readErr == nil {
			d.frac--
			if d.exhausted {
				d.finished = true
				break
			}
			nxt, err := d.pull()
			switch {
			case err == io.EOF:
				d.cur = d.next
				d.exhausted = true
			case err != nil:
				readErr = err
			default:
				d.cur, d.next = d.next, nxt
			}
		}
		if d.finished || readErr != nil {
			break
		}
	}

	n := d.out.emit(p, raw)
	if readErr != nil {
		return n, readErr
	}
	if d.finished && len(d.out.buf) == 0 {
		return n, io.EOF
	}
	return n, nil
}

// pull returns the next source frame upmixed to stereo.
func (d *normalizedDecoder) pull() ([playbackChannels]int16, error) {
	for len(d.frames) == 0 {
		if d.srcEOF {
			return [playbackChannels]int16{}, io.EOF
		}
		if err := d.fill(); err != nil {
			return [playbackChannels]int16{}, err
		}
	}
	f := d.frames[0]
	d.frames = d.frames[1:]
	return f, nil
}

func (d *normalizedDecoder) fill() error {
	frameSize := d.srcChannels * playbackBytesPerSample
	if d.raw == nil {
		d.raw = make([]byte, 1024*frameSize)
	}
	n, err := io.ReadFull(d.src, d.raw)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		d.srcEOF = true
		err = nil
	}
	if err != nil {
		return err
	}

	d.frames = d.frames[:0]
	for off := 0; off+frameSize <= n; off += frameSize {
		l := int16(binary.LittleEndian.Uint16(d.raw[off:]))
		r := l
		if d.srcChannels == 2 {
			r = int16(binary.LittleEndian.Uint16(d.raw[off+2:]))
		}
		d.frames = append(d.frames, [playbackChannels]int16{l, r})
	}
	return nil
}
