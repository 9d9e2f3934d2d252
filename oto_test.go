package main

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func decodeFloat32LE(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
	}
	return out
}

func TestTapReader_Stereo(t *testing.T) {
	t.Parallel()

	src := &sliceSource{rate: 44100, channels: 2, samples: []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}}
	pcm := CreatePCM(8)
	frames := &Box[int64]{}
	tr := createTapReader(src, pcm, frames)

	p := make([]byte, 4*2*2)
	n, err := tr.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if got := decodeFloat32LE(p[:n]); got[0] != 0.1 || got[3] != -0.2 {
		t.Errorf("output = %v", got)
	}
	if frames.Get() != 2 {
		t.Errorf("frames = %d, want 2", frames.Get())
	}

	n, err = tr.Read(p)
	if err != nil || n != 8 {
		t.Fatalf("second Read() = %d, %v, want one frame", n, err)
	}
	if frames.Get() != 3 {
		t.Errorf("frames = %d, want 3", frames.Get())
	}
	right := make([]float32, 3)
	pcm.GetChannelSamples(right, 1, false, 0, 0)
	if right[0] != -0.3 || right[2] != -0.1 {
		t.Errorf("PCM right = %v, want newest first", right)
	}

	if n, err = tr.Read(p); err != io.EOF || n != 0 {
		t.Errorf("Read() at end = %d, %v, want io.EOF", n, err)
	}
	if _, err = tr.Read(p); err != io.EOF {
		t.Errorf("Read() after end = %v, want io.EOF", err)
	}
}

func TestTapReader_MonoUpmix(t *testing.T) {
	t.Parallel()

	src := &sliceSource{rate: 22050, channels: 1, samples: []float32{0.5, -0.25}}
	pcm := CreatePCM(4)
	tr := createTapReader(src, pcm, &Box[int64]{})

	p := make([]byte, 64)
	n, err := tr.Read(p)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	got := decodeFloat32LE(p[:n])
	want := []float32{0.5, 0.5, -0.25, -0.25}
	if len(got) != len(want) {
		t.Fatalf("output = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("output[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	left := make([]float32, 2)
	pcm.GetChannelSamples(left, 0, false, 0, 0)
	if left[0] != -0.25 || left[1] != 0.5 {
		t.Errorf("PCM left = %v", left)
	}
}

func TestTapReader_ShortBuffer(t *testing.T) {
	t.Parallel()

	tr := createTapReader(CreateToneSource(44100, 220), CreatePCM(4), &Box[int64]{})
	if n, err := tr.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Errorf("Read(7 bytes) = %d, %v, want 0, nil", n, err)
	}
}
