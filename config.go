package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultConfigFile = "~/.config/waveviz/config.yaml"

type Config struct {
	ConfigFile  string
	LogLevel    string
	LogFile     string
	SampleRate  int
	Preset      string
	TexSize     int
	MasterAlpha float32
	HUD         bool
	Fullscreen  bool
	VSync       bool
	FPS         int
	Tone        float64
	History     int
	// Input is the audio file to play; empty means a test tone.
	Input string
	Waves WaveOverrides
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("loglevel", "info")
	v.SetDefault("logfile", "")
	v.SetDefault("samplerate", 44100)
	v.SetDefault("preset", "scope")
	v.SetDefault("texsize", 0)
	v.SetDefault("masteralpha", 1.0)
	v.SetDefault("hud", true)
	v.SetDefault("fullscreen", false)
	v.SetDefault("vsync", true)
	v.SetDefault("fps", 60)
	v.SetDefault("tone", 220.0)
	v.SetDefault("history", DefaultPCMHistory)
}

// wave.* keys have no defaults: an unset key leaves the preset alone.
var waveFlags = []struct {
	flag, key, usage string
	kind             string
}{
	{"samples", "wave.samples", "override the sample count of every wave", "int"},
	{"scaling", "wave.scaling", "override the amplitude scaling", "float"},
	{"smoothing", "wave.smoothing", "override the sample smoothing (0..1)", "float"},
	{"separation", "wave.separation", "override the channel separation", "float"},
	{"spectrum", "wave.spectrum", "draw spectrum instead of PCM", "bool"},
	{"dots", "wave.dots", "draw points instead of lines", "bool"},
	{"thick", "wave.thick", "draw with a thick stroke", "bool"},
	{"additive", "wave.additive", "use additive blending", "bool"},
}

func createFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("waveviz", pflag.ContinueOnError)
	flags.StringP("config", "c", defaultConfigFile, "config file")
	flags.String("loglevel", "info", "log level: none, debug, info, warn, error")
	flags.String("logfile", "", "write JSON logs to this file")
	flags.Int("samplerate", 44100, "output sample rate in Hz")
	flags.StringP("preset", "p", "scope", fmt.Sprintf("preset: %s", strings.Join(Presets(), ", ")))
	flags.Int("texsize", 0, "render target size used for stroke width (0 = framebuffer)")
	flags.Float64("masteralpha", 1.0, "global alpha multiplier (0..1)")
	flags.Bool("hud", true, "show the status overlay")
	flags.BoolP("fullscreen", "f", false, "open a fullscreen window on the primary monitor")
	flags.Bool("vsync", true, "sync buffer swaps to the display refresh")
	flags.Int("fps", 60, "frames per second")
	flags.Float64("tone", 220.0, "test tone frequency when no input file is given")
	flags.Int("history", DefaultPCMHistory, "PCM history length in frames")
	for _, wf := range waveFlags {
		switch wf.kind {
		case "int":
			flags.Int(wf.flag, 0, wf.usage)
		case "float":
			flags.Float64(wf.flag, 0, wf.usage)
		case "bool":
			flags.Bool(wf.flag, false, wf.usage)
		}
	}
	return flags
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{"loglevel", "logfile", "samplerate", "preset", "texsize", "masteralpha", "hud", "fullscreen", "vsync", "fps", "tone", "history"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return err
		}
	}
	for _, wf := range waveFlags {
		if err := v.BindPFlag(wf.key, flags.Lookup(wf.flag)); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig parses args (without the program name), reads the config file
// and returns the merged, validated configuration. Flags win over the
// config file, which wins over defaults. A missing config file is not an
// error.
func LoadConfig(v *viper.Viper, args []string) (Config, error) {
	setViperDefaults(v)
	flags := createFlagSet()
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if err := bindFlags(v, flags); err != nil {
		return Config{}, err
	}
	configFile, _ := flags.GetString("config")
	configFile, err := homedir.Expand(configFile)
	if err != nil {
		return Config{}, makeConfigErr("config", err)
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			logger.Info("no config file found", "configFile", configFile)
		} else {
			return Config{}, makeConfigErr("config", err)
		}
	}
	cfg := Config{
		ConfigFile:  configFile,
		LogLevel:    v.GetString("loglevel"),
		LogFile:     v.GetString("logfile"),
		SampleRate:  v.GetInt("samplerate"),
		Preset:      strings.ToLower(v.GetString("preset")),
		TexSize:     v.GetInt("texsize"),
		MasterAlpha: float32(v.GetFloat64("masteralpha")),
		HUD:         v.GetBool("hud"),
		Fullscreen:  v.GetBool("fullscreen"),
		VSync:       v.GetBool("vsync"),
		FPS:         v.GetInt("fps"),
		Tone:        v.GetFloat64("tone"),
		History:     v.GetInt("history"),
		Waves:       waveOverridesFromViper(v),
	}
	if flags.NArg() > 0 {
		cfg.Input, err = homedir.Expand(flags.Arg(0))
		if err != nil {
			return Config{}, makeConfigErr("input", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func waveOverridesFromViper(v *viper.Viper) WaveOverrides {
	var o WaveOverrides
	if v.IsSet("wave.samples") {
		n := v.GetInt("wave.samples")
		o.Samples = &n
	}
	getFloat := func(key string) *float32 {
		if !v.IsSet(key) {
			return nil
		}
		f := float32(v.GetFloat64(key))
		return &f
	}
	getBool := func(key string) *bool {
		if !v.IsSet(key) {
			return nil
		}
		b := v.GetBool(key)
		return &b
	}
	o.Scaling = getFloat("wave.scaling")
	o.Smoothing = getFloat("wave.smoothing")
	o.Separation = getFloat("wave.separation")
	o.Spectrum = getBool("wave.spectrum")
	o.Dots = getBool("wave.dots")
	o.Thick = getBool("wave.thick")
	o.Additive = getBool("wave.additive")
	return o
}

func (cfg Config) Validate() error {
	if cfg.LogLevel != "none" {
		if _, err := ResolveLogLevel(cfg.LogLevel); err != nil {
			return makeConfigErr("loglevel", fmt.Errorf("%w: %q", ErrInvalidValue, cfg.LogLevel))
		}
	}
	if cfg.SampleRate <= 0 {
		return makeConfigErr("samplerate", fmt.Errorf("%w: %d", ErrOutOfRange, cfg.SampleRate))
	}
	if cfg.TexSize < 0 {
		return makeConfigErr("texsize", fmt.Errorf("%w: %d", ErrOutOfRange, cfg.TexSize))
	}
	if cfg.MasterAlpha < 0 || cfg.MasterAlpha > 1 {
		return makeConfigErr("masteralpha", fmt.Errorf("%w: %g", ErrOutOfRange, cfg.MasterAlpha))
	}
	if cfg.FPS <= 0 {
		return makeConfigErr("fps", fmt.Errorf("%w: %d", ErrOutOfRange, cfg.FPS))
	}
	if cfg.Tone <= 0 || cfg.Tone >= float64(cfg.SampleRate)/2 {
		return makeConfigErr("tone", fmt.Errorf("%w: %g", ErrOutOfRange, cfg.Tone))
	}
	if cfg.History <= 0 {
		return makeConfigErr("history", fmt.Errorf("%w: %d", ErrOutOfRange, cfg.History))
	}
	if _, err := LookupPreset(cfg.Preset); err != nil {
		return makeConfigErr("preset", err)
	}
	if s := cfg.Waves.Samples; s != nil && *s <= 0 {
		return makeConfigErr("wave.samples", fmt.Errorf("%w: %d", ErrOutOfRange, *s))
	}
	// a spectrum of n bins needs 2n frames of history
	if s, sp := cfg.Waves.Samples, cfg.Waves.Spectrum; s != nil && sp != nil && *sp {
		if window := 2 * *s; window > cfg.History {
			return makeConfigErr("wave.samples", fmt.Errorf("%w: spectrum of %d bins needs history >= %d, have %d",
				ErrOutOfRange, *s, window, cfg.History))
		}
	}
	if s := cfg.Waves.Smoothing; s != nil && (*s < 0 || *s > 1) {
		return makeConfigErr("wave.smoothing", fmt.Errorf("%w: %g", ErrOutOfRange, *s))
	}
	return nil
}
