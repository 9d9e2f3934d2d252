package main

import (
	"errors"
	"fmt"
)

// spectrumScale brings spectrum magnitudes into the visual range of raw PCM.
const spectrumScale = 0.015

var (
	ErrInvalidSampleCount = errors.New("waveform sample count must be positive")
	ErrNoPerPointFunc     = errors.New("waveform needs a per-point function")
	ErrNoPCMSource        = errors.New("render context has no PCM source")
)

type WaveformConfig struct {
	Samples    int
	Spectrum   bool
	Dots       bool
	Thick      bool
	Additive   bool
	Scaling    float32
	Smoothing  float32
	Separation float32
}

func DefaultWaveformConfig() WaveformConfig {
	return WaveformConfig{
		Samples: 512,
		Scaling: 1,
	}
}

func (cfg WaveformConfig) String() string {
	return fmt.Sprintf("Waveform(samples=%d spectrum=%t dots=%t thick=%t additive=%t scaling=%g smoothing=%g sep=%g)",
		cfg.Samples, cfg.Spectrum, cfg.Dots, cfg.Thick, cfg.Additive, cfg.Scaling, cfg.Smoothing, cfg.Separation)
}

// RenderContext is what the host hands to a render item for one frame.
type RenderContext struct {
	// TexSize is the edge length of the square render target in pixels.
	TexSize     int
	PCM         PCMSource
	MasterAlpha float32
}

// SamplePoint is the input of a per-point function for one sample index.
type SamplePoint struct {
	// Sample is the index normalized to [0,1].
	Sample float32
	Index  int
	Count  int
	Left   float32
	Right  float32
}

// RenderedPoint is the visual state of one vertex. The waveform keeps one
// per sample index and feeds the previous frame's value back into the
// per-point function.
type RenderedPoint struct {
	X, Y       float32
	R, G, B, A float32
}

type PerPointFunc func(prior RenderedPoint, s SamplePoint) RenderedPoint

type VertexBuffer struct {
	Positions [][2]float32
	Colors    [][4]float32
}

func (vb *VertexBuffer) resize(n int) {
	if cap(vb.Positions) >= n {
		vb.Positions = vb.Positions[:n]
		vb.Colors = vb.Colors[:n]
		return
	}
	vb.Positions = make([][2]float32, n)
	vb.Colors = make([][4]float32, n)
}

func (vb *VertexBuffer) Len() int {
	return len(vb.Positions)
}

// Waveform renders the latest audio samples as a line strip or a point
// cloud. Draw mutates per-instance state and must not be called
// concurrently on the same Waveform.
type Waveform struct {
	cfg      WaveformConfig
	perPoint PerPointFunc
	points   []RenderedPoint
	left     []float32
	right    []float32
	vb       VertexBuffer
}

func CreateWaveform(cfg WaveformConfig, perPoint PerPointFunc) (*Waveform, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleCount, cfg.Samples)
	}
	if perPoint == nil {
		return nil, ErrNoPerPointFunc
	}
	w := &Waveform{
		cfg:      cfg,
		perPoint: perPoint,
	}
	w.alloc(cfg.Samples)
	return w, nil
}

func (w *Waveform) alloc(n int) {
	w.points = make([]RenderedPoint, n)
	w.left = make([]float32, n)
	w.right = make([]float32, n)
	w.vb.resize(n)
}

// Resize changes the sample count. Cross-frame point state is dropped
// only when the count actually changes.
func (w *Waveform) Resize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleCount, n)
	}
	if n == w.cfg.Samples {
		return nil
	}
	w.cfg.Samples = n
	w.alloc(n)
	return nil
}

func (w *Waveform) Config() WaveformConfig {
	return w.cfg
}

// SetFlags changes the style flags without touching the point state.
func (w *Waveform) SetFlags(dots, thick, additive bool) {
	w.cfg.Dots = dots
	w.cfg.Thick = thick
	w.cfg.Additive = additive
}

func (w *Waveform) Points() []RenderedPoint {
	return w.points
}

// Vertices returns the buffer packed by the last Draw. It is overwritten
// by the next Draw.
func (w *Waveform) Vertices() *VertexBuffer {
	return &w.vb
}

func (w *Waveform) Draw(g Graphics, ctx RenderContext) error {
	if ctx.PCM == nil {
		return ErrNoPCMSource
	}
	rs := renderState{
		additive: w.cfg.Additive,
		thick:    w.cfg.Thick,
		texsize:  ctx.TexSize,
	}
	return withRenderState(g, rs, func() error {
		w.sample(ctx.PCM)
		w.transform()
		w.pack(ctx.MasterAlpha)
		w.submit(g)
		return nil
	})
}

func (w *Waveform) sample(pcm PCMSource) {
	pcm.GetChannelSamples(w.left, 0, w.cfg.Spectrum, w.cfg.Smoothing, 0)
	pcm.GetChannelSamples(w.right, 1, w.cfg.Spectrum, w.cfg.Smoothing, 0)
	mult := w.cfg.Scaling
	if w.cfg.Spectrum {
		mult *= spectrumScale
	}
	for i := range w.left {
		w.left[i] *= mult
		w.right[i] *= mult
	}
}

func (w *Waveform) transform() {
	n := len(w.points)
	var denom float32
	if n > 1 {
		denom = float32(n - 1)
	}
	s := SamplePoint{Count: n}
	for x := range w.points {
		s.Index = x
		if denom > 0 {
			s.Sample = float32(x) / denom
		} else {
			s.Sample = 0
		}
		s.Left = w.left[x]
		s.Right = w.right[x]
		w.points[x] = w.perPoint(w.points[x], s)
	}
}

func (w *Waveform) pack(masterAlpha float32) {
	for x, p := range w.points {
		w.vb.Positions[x] = [2]float32{p.X, -(p.Y - 1)}
		w.vb.Colors[x] = [4]float32{p.R, p.G, p.B, p.A * masterAlpha}
	}
}

func (w *Waveform) submit(g Graphics) {
	g.EnableClientState(VertexArray)
	g.EnableClientState(ColorArray)
	g.DisableClientState(TextureCoordArray)
	g.VertexPointer(w.vb.Positions)
	g.ColorPointer(w.vb.Colors)
	mode := LineStrip
	if w.cfg.Dots {
		mode = Points
	}
	g.DrawArrays(mode, len(w.points))
}
