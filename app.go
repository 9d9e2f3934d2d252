package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type App struct {
	cfg         Config
	decoders    *DecoderRegistry
	pcm         *PCM
	player      *Player
	graphics    *glGraphics
	hud         *HUD
	keyMap      KeyMap
	presetNames []string
	presetIndex int
	waves       []*Waveform
	fbSize      Size
	showHUD     bool
	showHelp    bool
	shouldExit  bool
	lastError   error
	fps         float64
}

func CreateApp(cfg Config) *App {
	app := &App{
		cfg:         cfg,
		decoders:    DefaultDecoderRegistry(),
		pcm:         CreatePCM(cfg.History),
		presetNames: Presets(),
		showHUD:     cfg.HUD,
	}
	app.presetIndex = max(slices.Index(app.presetNames, cfg.Preset), 0)
	app.keyMap = app.createKeyMap()
	return app
}

func (app *App) createKeyMap() KeyMap {
	km := CreateKeyMap()
	km.Bind("Escape", "quit", app.Quit)
	km.Bind("q", "quit", app.Quit)
	km.Bind("Right", "next preset", func() { app.selectPreset(1) })
	km.Bind("Left", "previous preset", func() { app.selectPreset(-1) })
	km.Bind("h", "toggle status overlay", func() { app.showHUD = !app.showHUD })
	km.Bind("F1", "toggle key help", func() { app.showHelp = !app.showHelp })
	km.Bind("a", "toggle additive blending", app.toggleAdditive)
	km.Bind("d", "toggle dots", app.toggleDots)
	km.Bind("t", "toggle thick stroke", app.toggleThick)
	km.Bind("Space", "pause / resume", func() {
		if app.player != nil {
			app.player.TogglePause()
		}
	})
	km.Bind("C-c", "copy settings to clipboard", app.copySettings)
	return km
}

func (app *App) SetLastError(err error) {
	app.lastError = err
	if err != nil {
		logger.Warn("error", "err", err)
	}
}

func (app *App) Quit() {
	app.shouldExit = true
}

func (app *App) PresetName() string {
	return app.presetNames[app.presetIndex]
}

func (app *App) loadPreset() error {
	waves, err := BuildPreset(app.PresetName(), app.cfg.Waves)
	if err != nil {
		return err
	}
	app.waves = waves
	logger.Info("preset loaded", "preset", app.PresetName(), "waves", len(waves))
	return nil
}

func (app *App) selectPreset(delta int) {
	n := len(app.presetNames)
	app.presetIndex = ((app.presetIndex+delta)%n + n) % n
	if err := app.loadPreset(); err != nil {
		app.SetLastError(err)
	}
}

func (app *App) updateFlags(f func(cfg WaveformConfig) (dots, thick, additive bool)) {
	for _, w := range app.waves {
		w.SetFlags(f(w.Config()))
	}
}

func (app *App) toggleAdditive() {
	app.updateFlags(func(cfg WaveformConfig) (bool, bool, bool) {
		return cfg.Dots, cfg.Thick, !cfg.Additive
	})
}

func (app *App) toggleDots() {
	app.updateFlags(func(cfg WaveformConfig) (bool, bool, bool) {
		return !cfg.Dots, cfg.Thick, cfg.Additive
	})
}

func (app *App) toggleThick() {
	app.updateFlags(func(cfg WaveformConfig) (bool, bool, bool) {
		return cfg.Dots, !cfg.Thick, cfg.Additive
	})
}

// settingsText renders the active preset as a config file fragment.
func (app *App) settingsText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "preset: %s\n", app.PresetName())
	if len(app.waves) > 0 {
		cfg := app.waves[0].Config()
		fmt.Fprintf(&sb, "wave:\n")
		fmt.Fprintf(&sb, "  samples: %d\n", cfg.Samples)
		fmt.Fprintf(&sb, "  scaling: %g\n", cfg.Scaling)
		fmt.Fprintf(&sb, "  smoothing: %g\n", cfg.Smoothing)
		fmt.Fprintf(&sb, "  separation: %g\n", cfg.Separation)
		fmt.Fprintf(&sb, "  spectrum: %t\n", cfg.Spectrum)
		fmt.Fprintf(&sb, "  dots: %t\n", cfg.Dots)
		fmt.Fprintf(&sb, "  thick: %t\n", cfg.Thick)
		fmt.Fprintf(&sb, "  additive: %t\n", cfg.Additive)
	}
	return sb.String()
}

func (app *App) copySettings() {
	if err := clipboard.WriteAll(app.settingsText()); err != nil {
		app.SetLastError(fmt.Errorf("copy to clipboard: %w", err))
	}
}

// texSize is the configured render target size or the larger framebuffer
// dimension.
func (app *App) texSize() int {
	if app.cfg.TexSize > 0 {
		return app.cfg.TexSize
	}
	return max(app.fbSize.X, app.fbSize.Y)
}

func (app *App) renderContext() RenderContext {
	ctx := RenderContext{
		TexSize:     app.texSize(),
		MasterAlpha: app.cfg.MasterAlpha,
	}
	// a nil *PCM must stay a nil interface
	if app.pcm != nil {
		ctx.PCM = app.pcm
	}
	return ctx
}

func (app *App) renderWaves(g Graphics) error {
	ctx := app.renderContext()
	for i, w := range app.waves {
		if err := w.Draw(g, ctx); err != nil {
			return fmt.Errorf("wave %d: %w", i, err)
		}
	}
	return nil
}

func (app *App) openSource() (Source, error) {
	if app.cfg.Input == "" {
		logger.Info("no input file, playing test tone", "freq", app.cfg.Tone)
		return CreateToneSource(app.cfg.SampleRate, app.cfg.Tone), nil
	}
	src, err := app.decoders.Open(app.cfg.Input)
	if err != nil {
		return nil, err
	}
	logger.Info("opened input", "path", app.cfg.Input, "sampleRate", src.SampleRate(), "channels", src.Channels())
	return src, nil
}

func (app *App) Init() error {
	if err := InitOtoContext(app.cfg.SampleRate); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	src, err := app.openSource()
	if err != nil {
		return err
	}
	player, err := CreatePlayer(src, app.pcm)
	if err != nil {
		src.Close()
		return err
	}
	app.player = player
	graphics, err := CreateGLGraphics()
	if err != nil {
		return err
	}
	app.graphics = graphics
	font, err := LoadDefaultFont()
	if err != nil {
		return err
	}
	hud, err := CreateHUD(font)
	if err != nil {
		return err
	}
	app.hud = hud
	if err := app.loadPreset(); err != nil {
		return err
	}
	return app.player.Play()
}

func (app *App) IsRunning() bool {
	return !app.shouldExit
}

func (app *App) OnKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	keyName := KeyName(key, scancode, mods)
	if keyName == "" {
		return
	}
	if app.keyMap.HandleKey(keyName) {
		logger.Debug("key handled", "key", keyName)
	}
}

func (app *App) OnFramebufferSize(width, height int) {
	logger.Debug("OnFramebufferSize", "width", width, "height", height)
	app.fbSize = Size{X: width, Y: height}
}

func (app *App) hudLines() []string {
	lines := []string{
		fmt.Sprintf("%s [%d/%d]  %.0f fps  texsize %d",
			app.PresetName(), app.presetIndex+1, len(app.presetNames), app.fps, app.texSize()),
	}
	if app.player != nil {
		state := "playing"
		if !app.player.IsPlaying() {
			state = "stopped"
		}
		lines = append(lines, fmt.Sprintf("%s %s", state, app.player.Position().Truncate(time.Second)))
	}
	if app.lastError != nil {
		lines = append(lines, "error: "+app.lastError.Error())
	}
	if app.showHelp {
		lines = append(lines, "")
		lines = append(lines, app.keyMap.Help()...)
	}
	return lines
}

func (app *App) Render() error {
	app.graphics.Begin()
	err := app.renderWaves(app.graphics)
	app.graphics.End()
	if err != nil {
		return err
	}
	if app.showHUD || app.showHelp {
		app.hud.Clear()
		app.hud.DrawLines(app.hudLines())
		app.hud.Render(app.fbSize)
	}
	return nil
}

func (app *App) Update(fps float64) error {
	app.fps = fps
	if app.player == nil {
		return nil
	}
	if err := app.player.Err(); err != nil {
		app.SetLastError(fmt.Errorf("playback: %w", err))
		app.player.Close()
	}
	return nil
}

func (app *App) Close() error {
	logger.Debug("Close")
	var errs []error
	if app.player != nil {
		errs = append(errs, app.player.Close())
	}
	if app.hud != nil {
		errs = append(errs, app.hud.Close())
	}
	if app.graphics != nil {
		errs = append(errs, app.graphics.Close())
	}
	return errors.Join(errs...)
}
