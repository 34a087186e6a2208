package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/olivier-w/orb/internal/media"
)

// ErrUnsupportedFormat is returned for file extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// audioDecoder is implemented by all format-specific decoders. Read yields
// little-endian s16 PCM interleaved over ChannelCount channels.
type audioDecoder interface {
	io.Reader
	Rewind() error
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder by file extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	switch format := media.FormatOf(f.Name()); format {
	case media.MP3:
		return newMP3Decoder(f)
	case media.WAV:
		return newWAVDecoder(f)
	case media.FLAC:
		return newFLACDecoder(f)
	case media.Vorbis:
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(f.Name()))
	}
}

// pending holds converted PCM that did not fit the caller's buffer.
type pending struct {
	buf []byte
}

func (q *pending) drain(p []byte) int {
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	return n
}

func (q *pending) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		q.buf = append(q.buf[:0], raw[n:]...)
	}
	return n
}

func (q *pending) reset() { q.buf = nil }

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// shift16 rescales a sample of the given bit depth to 16 bits.
func shift16(v, bits int) int16 {
	switch {
	case bits > 16:
		v >>= bits - 16
	case bits < 16:
		v <<= 16 - bits
	}
	return clamp16(v)
}

// --- MP3 decoder ---

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Rewind() error {
	_, err := d.dec.Seek(0, io.SeekStart)
	return err
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- WAV decoder ---

type wavDecoder struct {
	file       *os.File
	dec        *wav.Decoder
	ints       *goaudio.IntBuffer
	q          pending
	sampleRate int
	channels   int
	bitDepth   int
	totalBytes int64
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	d := &wavDecoder{file: f}
	if err := d.open(); err != nil {
		return nil, err
	}
	return d, nil
}

// open positions a fresh go-audio decoder at the start of the PCM chunk.
func (d *wavDecoder) open() error {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding WAV: %w", err)
	}
	dec := wav.NewDecoder(d.file)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("reading WAV PCM data: %w", err)
	}

	d.dec = dec
	d.sampleRate = int(dec.SampleRate)
	d.channels = int(dec.NumChans)
	d.bitDepth = int(dec.BitDepth)
	if d.bitDepth == 0 || d.channels == 0 {
		return fmt.Errorf("invalid WAV format: %d channels, %d bits", d.channels, d.bitDepth)
	}
	srcFrameSize := int64(d.channels) * int64(d.bitDepth) / 8
	d.totalBytes = dec.PCMLen() / srcFrameSize * int64(d.channels) * 2
	d.ints = &goaudio.IntBuffer{Format: dec.Format(), SourceBitDepth: d.bitDepth}
	d.q.reset()
	return nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.q.buf) > 0 {
		return d.q.drain(p), nil
	}

	want := len(p) / 2
	if want == 0 {
		want = 1
	}
	if cap(d.ints.Data) < want {
		d.ints.Data = make([]int, want)
	}
	d.ints.Data = d.ints.Data[:want]

	n, err := d.dec.PCMBuffer(d.ints)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i, v := range d.ints.Data[:n] {
		var s int16
		if d.bitDepth == 8 {
			// 8-bit WAV is unsigned
			s = clamp16((v - 128) << 8)
		} else {
			s = shift16(v, d.bitDepth)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return d.q.emit(p, raw), nil
}

func (d *wavDecoder) Rewind() error     { return d.open() }
func (d *wavDecoder) Length() int64     { return d.totalBytes }
func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// --- FLAC decoder ---

type flacDecoder struct {
	stream     *flac.Stream
	q          pending
	totalBytes int64
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
		totalBytes: int64(info.NSamples) * int64(channels) * 2,
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.q.buf) > 0 {
		return d.q.drain(p), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*d.channels*2)
	for i := range nSamples {
		for ch := range d.channels {
			s := shift16(int(frame.Subframes[ch].Samples[i]), d.bps)
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(s))
		}
	}
	return d.q.emit(p, raw), nil
}

func (d *flacDecoder) Rewind() error {
	if _, err := d.stream.Seek(0); err != nil {
		return fmt.Errorf("rewinding FLAC: %w", err)
	}
	d.q.reset()
	return nil
}

func (d *flacDecoder) Length() int64     { return d.totalBytes }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	reader     *oggvorbis.Reader
	q          pending
	floats     []float32
	totalBytes int64
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{
		reader:     reader,
		totalBytes: reader.Length() * int64(reader.Channels()) * 2,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.q.buf) > 0 {
		return d.q.drain(p), nil
	}

	want := len(p) / 2
	if want == 0 {
		want = 1
	}
	if cap(d.floats) < want {
		d.floats = make([]float32, want)
	}
	samples := d.floats[:want]

	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i, s := range samples[:n] {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clamp16(int(s*32767))))
	}
	written := d.q.emit(p, raw)
	if err == io.EOF && len(d.q.buf) > 0 {
		err = nil
	}
	return written, err
}

func (d *oggDecoder) Rewind() error {
	if err := d.reader.SetPosition(0); err != nil {
		return fmt.Errorf("rewinding OGG: %w", err)
	}
	d.q.reset()
	return nil
}

func (d *oggDecoder) Length() int64     { return d.totalBytes }
func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }
