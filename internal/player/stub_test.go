package player

import (
	"encoding/binary"
	"io"
)

type stubPCMDecoder struct {
	data       []byte
	pos        int64
	sampleRate int
	channels   int
	rewinds    int
}

func (d *stubPCMDecoder) Read(p []byte) (int, error) {
	if d.pos >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[d.pos:])
	d.pos += int64(n)
	if d.pos >= int64(len(d.data)) {
		return n, io.EOF
	}
	return n, nil
}

func (d *stubPCMDecoder) Rewind() error {
	d.pos = 0
	d.rewinds++
	return nil
}

func (d *stubPCMDecoder) Length() int64     { return int64(len(d.data)) }
func (d *stubPCMDecoder) SampleRate() int   { return d.sampleRate }
func (d *stubPCMDecoder) ChannelCount() int { return d.channels }

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
