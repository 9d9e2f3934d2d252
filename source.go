package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotWavFile        = errors.New("not a valid wav file")
)

// Source is a stream of interleaved float32 samples in [-1,1].
type Source interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst with interleaved samples and returns the
	// number of values written. It returns io.EOF once the stream is
	// exhausted.
	ReadSamples(dst []float32) (int, error)
	Close() error
}

type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

type DecoderFunc func(r io.ReadSeeker) (Source, error)

func (f DecoderFunc) Decode(r io.ReadSeeker) (Source, error) {
	return f(r)
}

// DecoderRegistry maps file extensions (".wav") to decoders.
type DecoderRegistry struct {
	mu       sync.Mutex
	decoders map[string]Decoder
}

func CreateDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{
		decoders: make(map[string]Decoder),
	}
}

func DefaultDecoderRegistry() *DecoderRegistry {
	reg := CreateDecoderRegistry()
	reg.Register(".wav", DecoderFunc(decodeWav))
	reg.Register(".mp3", DecoderFunc(decodeMp3))
	reg.Register(".ogg", DecoderFunc(decodeVorbis))
	return reg
}

func (reg *DecoderRegistry) Register(ext string, d Decoder) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.decoders[strings.ToLower(ext)] = d
}

func (reg *DecoderRegistry) Get(ext string) (Decoder, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	d, ok := reg.decoders[strings.ToLower(ext)]
	return d, ok
}

// Open decodes the file at path with the decoder registered for its
// extension. Closing the returned source closes the file.
func (reg *DecoderRegistry) Open(path string) (Source, error) {
	ext := filepath.Ext(path)
	d, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := d.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &fileSource{Source: src, f: f}, nil
}

type fileSource struct {
	Source
	f *os.File
}

func (fs *fileSource) Close() error {
	err := fs.Source.Close()
	if ferr := fs.f.Close(); err == nil {
		err = ferr
	}
	return err
}

type wavSource struct {
	dec    *wav.Decoder
	intBuf *goaudio.IntBuffer

	// 8-bit wav data is unsigned with silence at 128
	offset   float32
	maxValue float32
}

func decodeWav(r io.ReadSeeker) (Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	maxValue := float32(math.Exp2(float64(bitDepth - 1)))
	var offset float32
	if bitDepth == 8 {
		offset = maxValue
	}
	return &wavSource{
		dec:      dec,
		offset:   offset,
		maxValue: maxValue,
	}, nil
}

func (s *wavSource) SampleRate() int { return int(s.dec.SampleRate) }
func (s *wavSource) Channels() int   { return int(s.dec.NumChans) }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]
	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := range n {
		dst[i] = (float32(s.intBuf.Data[i]) - s.offset) / s.maxValue
	}
	return n, nil
}

type mp3Source struct {
	dec *gomp3.Decoder
	buf []byte
}

// go-mp3 always produces 16-bit little endian stereo.
func decodeMp3(r io.ReadSeeker) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) SampleRate() int { return s.dec.SampleRate() }
func (s *mp3Source) Channels() int   { return 2 }
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]
	n, err := s.dec.Read(s.buf)
	samples := n / 2
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768.0
	}
	if samples == 0 && err == nil {
		err = io.EOF
	}
	return samples, err
}

type vorbisSource struct {
	dec *oggvorbis.Reader
}

func decodeVorbis(r io.ReadSeeker) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &vorbisSource{dec: dec}, nil
}

func (s *vorbisSource) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.dec.Channels() }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	ch := s.Channels()
	dst = dst[:len(dst)-len(dst)%ch]
	return s.dec.Read(dst)
}

// ToneSource is an endless stereo test signal: a sine on the left and a
// slightly detuned sine on the right, which draws a slowly rotating
// lissajous figure.
type ToneSource struct {
	sampleRate int
	freq       float64
	detune     float64
	phaseL     float64
	phaseR     float64
	amplitude  float32
}

func CreateToneSource(sampleRate int, freq float64) *ToneSource {
	return &ToneSource{
		sampleRate: sampleRate,
		freq:       freq,
		detune:     1.003,
		amplitude:  0.5,
	}
}

func (t *ToneSource) SampleRate() int { return t.sampleRate }
func (t *ToneSource) Channels() int   { return 2 }
func (t *ToneSource) Close() error    { return nil }

func (t *ToneSource) ReadSamples(dst []float32) (int, error) {
	incrL := t.freq / float64(t.sampleRate)
	incrR := t.freq * t.detune / float64(t.sampleRate)
	n := len(dst) - len(dst)%2
	for i := 0; i < n; i += 2 {
		dst[i] = t.amplitude * float32(math.Sin(2*math.Pi*t.phaseL))
		dst[i+1] = t.amplitude * float32(math.Sin(2*math.Pi*t.phaseR))
		t.phaseL = math.Mod(t.phaseL+incrL, 1.0)
		t.phaseR = math.Mod(t.phaseR+incrR, 1.0)
	}
	return n, nil
}
