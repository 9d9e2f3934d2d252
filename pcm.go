package main

import (
	"fmt"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

const DefaultPCMHistory = 2048

// PCMSource provides the most recent audio samples of a channel.
//
// GetChannelSamples fills buf with len(buf) samples of channel 0 (left) or
// 1 (right), newest first, starting offset frames back from the newest
// one. In spectrum mode buf receives frequency magnitudes instead.
type PCMSource interface {
	GetChannelSamples(buf []float32, channel int, spectrum bool, smoothing float32, offset int)
}

// PCM keeps a stereo history of the samples handed to the audio device.
// One goroutine may add samples while another reads them.
type PCM struct {
	mu      sync.Mutex
	data    [2][]float32
	start   int // index where the next frame is written
	scratch []float32
	fftIn   []float64

	// set once the short-history warning has been logged
	warnedShort bool
}

func CreatePCM(history int) *PCM {
	if history <= 0 {
		history = DefaultPCMHistory
	}
	return &PCM{
		data: [2][]float32{
			make([]float32, history),
			make([]float32, history),
		},
	}
}

func (pcm *PCM) String() string {
	return fmt.Sprintf("PCM(history=%d)", pcm.History())
}

func (pcm *PCM) History() int {
	return len(pcm.data[0])
}

// AddInterleaved appends interleaved frames of nchannels channels. Mono
// frames are copied to both channels; channels past the second are
// ignored.
func (pcm *PCM) AddInterleaved(samples []float32, nchannels int) {
	if nchannels <= 0 {
		return
	}
	pcm.mu.Lock()
	defer pcm.mu.Unlock()
	n := len(pcm.data[0])
	for i := 0; i+nchannels <= len(samples); i += nchannels {
		l := samples[i]
		r := l
		if nchannels > 1 {
			r = samples[i+1]
		}
		pcm.data[0][pcm.start] = l
		pcm.data[1][pcm.start] = r
		pcm.start++
		if pcm.start == n {
			pcm.start = 0
		}
	}
}

// Reset clears the history.
func (pcm *PCM) Reset() {
	pcm.mu.Lock()
	defer pcm.mu.Unlock()
	clear(pcm.data[0])
	clear(pcm.data[1])
	pcm.start = 0
}

func (pcm *PCM) GetChannelSamples(buf []float32, channel int, spectrum bool, smoothing float32, offset int) {
	if channel < 0 || channel > 1 {
		panic(fmt.Sprintf("PCM: invalid channel index: %d", channel))
	}
	if len(buf) == 0 {
		return
	}
	pcm.mu.Lock()
	defer pcm.mu.Unlock()
	if !spectrum {
		pcm.readSmoothed(buf, channel, smoothing, offset)
		return
	}
	n := 2 * len(buf)
	if cap(pcm.scratch) < n {
		pcm.scratch = make([]float32, n)
		pcm.fftIn = make([]float64, n)
	}
	window := pcm.scratch[:n]
	// never read the same frame twice: past the history the window is zero
	avail := min(n, pcm.History())
	if avail < n && !pcm.warnedShort {
		logger.Warn("PCM history shorter than spectrum window, zero-padding",
			"history", pcm.History(), "window", n)
		pcm.warnedShort = true
	}
	pcm.readSmoothed(window[:avail], channel, smoothing, offset)
	clear(window[avail:])
	in := pcm.fftIn[:n]
	for i, v := range window {
		in[i] = float64(v)
	}
	bins := fft.FFTReal(in)
	for i := range buf {
		buf[i] = float32(cmplx.Abs(bins[i]))
	}
}

// readSmoothed walks the history backwards from the newest frame and runs
// a one-pole smoother along the way. Must be called with mu held.
func (pcm *PCM) readSmoothed(buf []float32, channel int, smoothing float32, offset int) {
	src := pcm.data[channel]
	n := len(src)
	if offset < 0 {
		offset = 0
	}
	index := func(i int) int {
		k := (pcm.start - 1 - offset - i) % n
		if k < 0 {
			k += n
		}
		return k
	}
	buf[0] = src[index(0)]
	for i := 1; i < len(buf); i++ {
		buf[i] = (1-smoothing)*src[index(i)] + smoothing*buf[i-1]
	}
}
