package main

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrUnknownPreset = errors.New("unknown preset")

// WaveSpec describes one waveform of a preset. PerPoint is a constructor
// so that every built waveform gets its own closure state.
type WaveSpec struct {
	Config   WaveformConfig
	PerPoint func(cfg WaveformConfig) PerPointFunc
}

type Preset struct {
	Name  string
	Waves []WaveSpec
}

// WaveOverrides replaces fields of every wave of a preset. Nil fields keep
// the preset value.
type WaveOverrides struct {
	Samples    *int
	Spectrum   *bool
	Dots       *bool
	Thick      *bool
	Additive   *bool
	Scaling    *float32
	Smoothing  *float32
	Separation *float32
}

func (o WaveOverrides) apply(cfg WaveformConfig) WaveformConfig {
	if o.Samples != nil {
		cfg.Samples = *o.Samples
	}
	if o.Spectrum != nil {
		cfg.Spectrum = *o.Spectrum
	}
	if o.Dots != nil {
		cfg.Dots = *o.Dots
	}
	if o.Thick != nil {
		cfg.Thick = *o.Thick
	}
	if o.Additive != nil {
		cfg.Additive = *o.Additive
	}
	if o.Scaling != nil {
		cfg.Scaling = *o.Scaling
	}
	if o.Smoothing != nil {
		cfg.Smoothing = *o.Smoothing
	}
	if o.Separation != nil {
		cfg.Separation = *o.Separation
	}
	return cfg
}

var presets = map[string]Preset{}

func RegisterPreset(p Preset) {
	presets[p.Name] = p
}

// Presets returns the names of all registered presets in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func LookupPreset(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// BuildPreset creates fresh waveforms for the named preset.
func BuildPreset(name string, overrides WaveOverrides) ([]*Waveform, error) {
	p, err := LookupPreset(name)
	if err != nil {
		return nil, err
	}
	waves := make([]*Waveform, 0, len(p.Waves))
	for i, ws := range p.Waves {
		cfg := overrides.apply(ws.Config)
		w, err := CreateWaveform(cfg, ws.PerPoint(cfg))
		if err != nil {
			return nil, fmt.Errorf("preset %s wave %d: %w", p.Name, i, err)
		}
		waves = append(waves, w)
	}
	return waves, nil
}

func white(alpha float32) RenderedPoint {
	return RenderedPoint{R: 1, G: 1, B: 1, A: alpha}
}

func scopePerPoint(cfg WaveformConfig) PerPointFunc {
	return func(prior RenderedPoint, s SamplePoint) RenderedPoint {
		p := white(0.9)
		p.X = s.Sample
		p.Y = 0.5 + s.Left
		return p
	}
}

// stereoPerPoint draws one channel, pushed up (channel 0) or down
// (channel 1) by half of the configured separation.
func stereoPerPoint(channel int) func(cfg WaveformConfig) PerPointFunc {
	return func(cfg WaveformConfig) PerPointFunc {
		offset := 0.5 + cfg.Separation/2
		r, g, b := float32(1), float32(0.4), float32(0.2)
		if channel == 1 {
			offset = 0.5 - cfg.Separation/2
			r, g, b = 0.2, 0.6, 1
		}
		return func(prior RenderedPoint, s SamplePoint) RenderedPoint {
			v := s.Left
			if channel == 1 {
				v = s.Right
			}
			return RenderedPoint{X: s.Sample, Y: offset + v, R: r, G: g, B: b, A: 0.8}
		}
	}
}

func lissajousPerPoint(cfg WaveformConfig) PerPointFunc {
	return func(prior RenderedPoint, s SamplePoint) RenderedPoint {
		c := colorful.Hsv(360*float64(s.Sample), 0.6, 1)
		return RenderedPoint{
			X: 0.5 + s.Left,
			Y: 0.5 + s.Right,
			R: float32(c.R),
			G: float32(c.G),
			B: float32(c.B),
			A: 0.7,
		}
	}
}

func spectrumPerPoint(cfg WaveformConfig) PerPointFunc {
	return func(prior RenderedPoint, s SamplePoint) RenderedPoint {
		// log-ish horizontal axis spreads the low bins
		x := float32(math.Sqrt(float64(s.Sample)))
		return RenderedPoint{X: x, Y: 1 - s.Left, R: 0.3, G: 1, B: 0.5, A: 0.6}
	}
}

// ripplePerPoint eases every point toward its new position and sweeps the
// hue along the strip over time.
func ripplePerPoint(cfg WaveformConfig) PerPointFunc {
	const keep = 0.8
	var hue float64
	return func(prior RenderedPoint, s SamplePoint) RenderedPoint {
		if s.Index == 0 {
			hue = math.Mod(hue+0.5, 360)
		}
		target := 0.5 + s.Left
		y := target
		if prior.A > 0 {
			y = keep*prior.Y + (1-keep)*target
		}
		c := colorful.Hsv(math.Mod(hue+120*float64(s.Sample), 360), 0.8, 1)
		return RenderedPoint{
			X: s.Sample,
			Y: y,
			R: float32(c.R),
			G: float32(c.G),
			B: float32(c.B),
			A: 1,
		}
	}
}

func circlePerPoint(cfg WaveformConfig) PerPointFunc {
	c, _ := colorful.Hex("#ffcc66")
	return func(prior RenderedPoint, s SamplePoint) RenderedPoint {
		angle := 2 * math.Pi * float64(s.Sample)
		radius := 0.25 + 0.5*float64(s.Left+s.Right)/2
		return RenderedPoint{
			X: 0.5 + float32(radius*math.Cos(angle)),
			Y: 0.5 + float32(radius*math.Sin(angle)),
			R: float32(c.R),
			G: float32(c.G),
			B: float32(c.B),
			A: 0.9,
		}
	}
}

func init() {
	base := DefaultWaveformConfig()

	RegisterPreset(Preset{
		Name:  "scope",
		Waves: []WaveSpec{{Config: base, PerPoint: scopePerPoint}},
	})

	stereo := base
	stereo.Separation = 0.5
	stereo.Scaling = 0.5
	RegisterPreset(Preset{
		Name: "stereo",
		Waves: []WaveSpec{
			{Config: stereo, PerPoint: stereoPerPoint(0)},
			{Config: stereo, PerPoint: stereoPerPoint(1)},
		},
	})

	lissajous := base
	lissajous.Dots = true
	lissajous.Additive = true
	lissajous.Scaling = 0.5
	RegisterPreset(Preset{
		Name:  "lissajous",
		Waves: []WaveSpec{{Config: lissajous, PerPoint: lissajousPerPoint}},
	})

	spectrum := base
	spectrum.Samples = 256
	spectrum.Spectrum = true
	spectrum.Thick = true
	spectrum.Additive = true
	spectrum.Scaling = 0.1
	RegisterPreset(Preset{
		Name:  "spectrum",
		Waves: []WaveSpec{{Config: spectrum, PerPoint: spectrumPerPoint}},
	})

	ripple := base
	ripple.Smoothing = 0.5
	ripple.Thick = true
	RegisterPreset(Preset{
		Name:  "ripple",
		Waves: []WaveSpec{{Config: ripple, PerPoint: ripplePerPoint}},
	})

	circle := base
	circle.Samples = 360
	circle.Smoothing = 0.3
	RegisterPreset(Preset{
		Name:  "circle",
		Waves: []WaveSpec{{Config: circle, PerPoint: circlePerPoint}},
	})
}
