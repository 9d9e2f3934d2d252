package main

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const playerChannels = 2

// tapReader converts a Source to the little endian float32 stereo stream
// oto expects and copies every block it hands out into a PCM history, so
// the history follows what the device is actually playing.
type tapReader struct {
	src     Source
	pcm     *PCM
	frames  *Box[int64]
	samples []float32
	stereo  []float32
	eof     bool
}

func createTapReader(src Source, pcm *PCM, frames *Box[int64]) *tapReader {
	return &tapReader{src: src, pcm: pcm, frames: frames}
}

func (tr *tapReader) Read(p []byte) (int, error) {
	if tr.eof {
		return 0, io.EOF
	}
	nchannels := tr.src.Channels()
	frames := len(p) / (4 * playerChannels)
	if frames == 0 {
		return 0, nil
	}
	need := frames * nchannels
	if cap(tr.samples) < need {
		tr.samples = make([]float32, need)
	}
	samples := tr.samples[:need]
	n, err := tr.src.ReadSamples(samples)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if err == io.EOF {
		tr.eof = true
	}
	frames = n / nchannels
	if frames == 0 {
		if tr.eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	stereo := tr.toStereo(samples[:frames*nchannels], nchannels)
	tr.pcm.AddInterleaved(stereo, playerChannels)
	tr.frames.Update(func(n int64) int64 { return n + int64(frames) })
	for i, v := range stereo {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return 4 * len(stereo), nil
}

func (tr *tapReader) toStereo(samples []float32, nchannels int) []float32 {
	if nchannels == playerChannels {
		return samples
	}
	frames := len(samples) / nchannels
	if cap(tr.stereo) < frames*playerChannels {
		tr.stereo = make([]float32, frames*playerChannels)
	}
	stereo := tr.stereo[:frames*playerChannels]
	for i := range frames {
		l := samples[i*nchannels]
		r := l
		if nchannels > 1 {
			r = samples[i*nchannels+1]
		}
		stereo[2*i] = l
		stereo[2*i+1] = r
	}
	return stereo
}

var (
	otoContext     *oto.Context
	otoContextRate int
	otoContextOnce sync.Once
	otoContextErr  error
)

// InitOtoContext creates the process wide oto context. oto allows a single
// context per process, so later calls return the first result.
func InitOtoContext(sampleRate int) error {
	otoContextOnce.Do(func() {
		otoContextOptions := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: playerChannels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   0,
		}
		ctx, readyChan, err := oto.NewContext(otoContextOptions)
		if err != nil {
			otoContextErr = err
			return
		}
		<-readyChan
		otoContext = ctx
		otoContextRate = sampleRate
	})
	return otoContextErr
}

var ErrPlayerClosed = errors.New("player is closed")

// Player plays one Source through oto while feeding a PCM history.
type Player struct {
	src    Source
	player *oto.Player
	frames *Box[int64]
	closed bool
}

func CreatePlayer(src Source, pcm *PCM) (*Player, error) {
	if otoContext == nil {
		return nil, errors.New("oto context is not initialized")
	}
	src, err := resampleSource(src, otoContextRate)
	if err != nil {
		return nil, err
	}
	frames := &Box[int64]{}
	player := otoContext.NewPlayer(createTapReader(src, pcm, frames))
	return &Player{
		src:    src,
		player: player,
		frames: frames,
	}, nil
}

func (p *Player) Play() error {
	if p.closed {
		return ErrPlayerClosed
	}
	p.player.Play()
	return nil
}

func (p *Player) TogglePause() {
	if p.closed {
		return
	}
	if p.player.IsPlaying() {
		p.player.Pause()
	} else {
		p.player.Play()
	}
}

func (p *Player) IsPlaying() bool {
	return !p.closed && p.player.IsPlaying()
}

// Position returns how much audio has been handed to the device.
func (p *Player) Position() time.Duration {
	frames := p.frames.Get()
	return time.Duration(frames) * time.Second / time.Duration(p.src.SampleRate())
}

// Err reports a playback error other than reaching the end of the source.
func (p *Player) Err() error {
	if p.closed {
		return nil
	}
	return p.player.Err()
}

func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.player.Close()
	if serr := p.src.Close(); err == nil {
		err = serr
	}
	return err
}
