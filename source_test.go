package main

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// sliceSource plays back fixed interleaved samples.
type sliceSource struct {
	rate     int
	channels int
	samples  []float32
	pos      int
	closed   bool
}

func (s *sliceSource) SampleRate() int { return s.rate }
func (s *sliceSource) Channels() int   { return s.channels }

func (s *sliceSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func TestToneSource(t *testing.T) {
	t.Parallel()

	tone := CreateToneSource(48000, 440)
	if tone.SampleRate() != 48000 || tone.Channels() != 2 {
		t.Fatalf("tone format = %d Hz / %d ch", tone.SampleRate(), tone.Channels())
	}
	buf := make([]float32, 4801)
	n, err := tone.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() failed: %v", err)
	}
	if n != 4800 {
		t.Errorf("ReadSamples() = %d, want whole frames only (4800)", n)
	}
	if buf[0] != 0 || buf[1] != 0 {
		t.Errorf("first frame = (%g,%g), want silence at phase 0", buf[0], buf[1])
	}
	var peak float32
	for _, v := range buf[:n] {
		peak = max(peak, float32(math.Abs(float64(v))))
	}
	if peak > 0.5 || peak < 0.49 {
		t.Errorf("peak amplitude = %g, want ~0.5", peak)
	}
	if buf[200] == buf[201] {
		t.Errorf("left and right channels are identical, want detuned")
	}
}

func TestDecoderRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultDecoderRegistry()
	for _, ext := range []string{".wav", ".WAV", ".mp3", ".ogg"} {
		if _, ok := reg.Get(ext); !ok {
			t.Errorf("Get(%q) found no decoder", ext)
		}
	}
	if _, ok := reg.Get(".flac"); ok {
		t.Errorf("Get(.flac) found a decoder")
	}
	if _, err := reg.Open("song.flac"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(song.flac) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecoderRegistry_OpenCustom(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.RAW")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	inner := &sliceSource{rate: 8000, channels: 1}
	reg := CreateDecoderRegistry()
	reg.Register(".raw", DecoderFunc(func(r io.ReadSeeker) (Source, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		for _, b := range data {
			inner.samples = append(inner.samples, float32(b))
		}
		return inner, nil
	}))

	src, err := reg.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	buf := make([]float32, 8)
	n, _ := src.ReadSamples(buf)
	if n != 3 || buf[2] != 3 {
		t.Errorf("ReadSamples() = %d %v", n, buf[:n])
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !inner.closed {
		t.Errorf("Close() did not close the decoded source")
	}
}

func TestDecoderRegistry_DecodeError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF data"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := DefaultDecoderRegistry().Open(path); !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Open(broken.wav) error = %v, want ErrNotWavFile", err)
	}
}

func writeTestWav(t *testing.T, path string, bitDepth, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 22050, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: 22050},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func readAllSamples(t *testing.T, src Source) []float32 {
	t.Helper()
	var got []float32
	buf := make([]float32, 3)
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() failed: %v", err)
		}
	}
	return got
}

func TestWavSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		channels int
		data     []int
		want     []float32
	}{
		{"16-bit stereo", 16, 2, []int{16384, -16384, 0, 8192}, []float32{0.5, -0.5, 0, 0.25}},
		{"8-bit mono silence", 8, 1, []int{128, 128, 128, 128}, []float32{0, 0, 0, 0}},
		{"8-bit mono", 8, 1, []int{192, 64, 0, 128}, []float32{0.5, -0.5, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "test.wav")
			writeTestWav(t, path, tt.bitDepth, tt.channels, tt.data)

			src, err := DefaultDecoderRegistry().Open(path)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			defer src.Close()
			if src.SampleRate() != 22050 || src.Channels() != tt.channels {
				t.Errorf("format = %d Hz / %d ch, want 22050 / %d", src.SampleRate(), src.Channels(), tt.channels)
			}
			got := readAllSamples(t, src)
			if len(got) != len(tt.want) {
				t.Fatalf("samples = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d = %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeMp3_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := decodeMp3(bytes.NewReader([]byte("nope"))); err == nil {
		t.Errorf("decodeMp3(garbage) succeeded")
	}
}

func TestDecodeVorbis_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := decodeVorbis(bytes.NewReader([]byte("nope"))); err == nil {
		t.Errorf("decodeVorbis(garbage) succeeded")
	}
}

func TestResampleSource_SameRate(t *testing.T) {
	t.Parallel()

	in := &sliceSource{rate: 44100, channels: 2}
	out, err := resampleSource(in, 44100)
	if err != nil {
		t.Fatalf("resampleSource() failed: %v", err)
	}
	if out != Source(in) {
		t.Errorf("resampleSource() wrapped a source that needs no conversion")
	}
}

func TestResampleSource_InvalidRatio(t *testing.T) {
	t.Parallel()

	in := &sliceSource{rate: 1000, channels: 2}
	if _, err := resampleSource(in, 48000); err == nil {
		t.Errorf("resampleSource(1000 -> 48000) succeeded")
	}
}

func TestIsValidRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  bool
	}{
		{1, true},
		{48000.0 / 44100, true},
		{16, true},
		{1.0 / 16, true},
		{17, false},
		{1.0 / 17, false},
	}
	for _, tt := range tests {
		if got := isValidRatio(tt.ratio); got != tt.want {
			t.Errorf("isValidRatio(%g) = %t, want %t", tt.ratio, got, tt.want)
		}
	}
}
