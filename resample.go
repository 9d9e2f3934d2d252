package main

import (
	"fmt"
	"io"
	"math"

	"github.com/dh1tw/gosamplerate"
)

const (
	resampleBlockFrames = 1024
	resampleMaxRatio    = 1.0 * 16
	resampleMinRatio    = 1.0 / 16
	resampleConverter   = gosamplerate.SRC_SINC_FASTEST
)

func isValidRatio(ratio float64) bool {
	if !gosamplerate.IsValidRatio(ratio) {
		return false
	}
	if ratio < resampleMinRatio || ratio > resampleMaxRatio {
		return false
	}
	return true
}

// resampledSource converts a Source to another sample rate in blocks of
// resampleBlockFrames frames.
type resampledSource struct {
	input      Source
	sampleRate int
	ratio      float64
	src        gosamplerate.Src
	inBlock    []float32
	outBlock   []float32
	outIndex   int
	endOfInput bool
	closed     bool
}

// resampleSource returns input unchanged when it already runs at
// sampleRate.
func resampleSource(input Source, sampleRate int) (Source, error) {
	if input.SampleRate() == sampleRate {
		return input, nil
	}
	ratio := float64(sampleRate) / float64(input.SampleRate())
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("resample: invalid ratio: %f (%d Hz -> %d Hz)", ratio, input.SampleRate(), sampleRate)
	}
	nchannels := input.Channels()
	outputBufferLen := int(math.Ceil(resampleBlockFrames*resampleMaxRatio)) * nchannels
	src, err := gosamplerate.New(resampleConverter, nchannels, outputBufferLen)
	if err != nil {
		return nil, err
	}
	logger.Debug("resampling source", "from", input.SampleRate(), "to", sampleRate, "ratio", ratio)
	return &resampledSource{
		input:      input,
		sampleRate: sampleRate,
		ratio:      ratio,
		src:        src,
		inBlock:    make([]float32, resampleBlockFrames*nchannels),
	}, nil
}

func (rs *resampledSource) SampleRate() int { return rs.sampleRate }
func (rs *resampledSource) Channels() int   { return rs.input.Channels() }

func (rs *resampledSource) ReadSamples(dst []float32) (int, error) {
	written := 0
	for written < len(dst) {
		if rs.outIndex < len(rs.outBlock) {
			n := copy(dst[written:], rs.outBlock[rs.outIndex:])
			rs.outIndex += n
			written += n
			continue
		}
		if rs.endOfInput {
			break
		}
		if err := rs.fill(); err != nil {
			return written, err
		}
		if len(rs.outBlock) == 0 && !rs.endOfInput {
			break
		}
	}
	if written == 0 && rs.endOfInput {
		return 0, io.EOF
	}
	return written, nil
}

func (rs *resampledSource) fill() error {
	nchannels := rs.input.Channels()
	readIndex := 0
	for readIndex < len(rs.inBlock) {
		n, err := rs.input.ReadSamples(rs.inBlock[readIndex:])
		readIndex += n
		if err == io.EOF {
			rs.endOfInput = true
			break
		}
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	readIndex -= readIndex % nchannels
	out, err := rs.src.Process(rs.inBlock[:readIndex], rs.ratio, rs.endOfInput)
	if err != nil {
		rs.endOfInput = true
		return err
	}
	rs.outBlock = out
	rs.outIndex = 0
	return nil
}

func (rs *resampledSource) Close() error {
	if !rs.closed {
		gosamplerate.Delete(rs.src)
		rs.closed = true
	}
	return rs.input.Close()
}
