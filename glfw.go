package main

import (
	"errors"
	"fmt"
	"runtime"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

type GlfwApp interface {
	Init() error
	IsRunning() bool
	OnKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey)
	OnFramebufferSize(width, height int)
	Render() error
	// Update runs after every frame with the measured frame rate.
	Update(fps float64) error
	Close() error
}

// frameClock caps the loop at a frame rate and measures the rate actually
// reached, averaged over windows of at least one second.
type frameClock struct {
	frameSeconds float64
	frameStart   float64
	windowStart  float64
	frames       int
	fps          float64
}

func createFrameClock(fps int, now float64) *frameClock {
	return &frameClock{
		frameSeconds: 1.0 / float64(fps),
		frameStart:   now,
		windowStart:  now,
	}
}

func (c *frameClock) begin(now float64) {
	c.frameStart = now
}

// end closes the current frame and returns how long to wait before the
// next one may start.
func (c *frameClock) end(now float64) float64 {
	c.frames++
	if elapsed := now - c.windowStart; elapsed >= 1 {
		c.fps = float64(c.frames) / elapsed
		c.frames = 0
		c.windowStart = now
	}
	return max(c.frameSeconds-(now-c.frameStart), 0)
}

func (c *frameClock) FPS() float64 {
	return c.fps
}

type WindowOptions struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	// VSync lets buffer swaps pace the loop; FPS is then an upper bound
	// only.
	VSync bool
	FPS   int
}

// setWindowHints asks for a double buffered GLES 2 context matching the
// monitor's video mode.
func setWindowHints(mode *glfw.VidMode) {
	glfw.WindowHint(glfw.RedBits, mode.RedBits)
	glfw.WindowHint(glfw.GreenBits, mode.GreenBits)
	glfw.WindowHint(glfw.BlueBits, mode.BlueBits)
	glfw.WindowHint(glfw.RefreshRate, mode.RefreshRate)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)
}

// initApp runs app.Init and closes whatever a failed Init left open.
func initApp(app GlfwApp) error {
	if err := app.Init(); err != nil {
		return errors.Join(err, app.Close())
	}
	return nil
}

func WithGL(opts WindowOptions, app GlfwApp) error {
	if opts.FPS <= 0 {
		return fmt.Errorf("invalid frame rate: %d", opts.FPS)
	}
	err := glfw.Init()
	if err != nil {
		return err
	}
	defer glfw.Terminate()

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return fmt.Errorf("no monitors found")
	}
	mode := monitor.GetVideoMode()
	if mode == nil {
		return fmt.Errorf("video mode cannot be determined")
	}
	setWindowHints(mode)
	width, height := opts.Width, opts.Height
	var fullscreenMonitor *glfw.Monitor
	if opts.Fullscreen {
		width, height = mode.Width, mode.Height
		fullscreenMonitor = monitor
	}
	window, err := glfw.CreateWindow(width, height, opts.Title, fullscreenMonitor, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()
	framebufferSizeCallback := func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		app.OnFramebufferSize(width, height)
	}
	window.SetFramebufferSizeCallback(framebufferSizeCallback)
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		app.OnKey(key, scancode, action, mods)
	})
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return err
	}
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	logger.Debug("GL context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"vsync", opts.VSync)
	fbWidth, fbHeight := window.GetFramebufferSize()
	framebufferSizeCallback(nil, fbWidth, fbHeight)
	if err := initApp(app); err != nil {
		return err
	}
	defer app.Close()
	clock := createFrameClock(opts.FPS, glfw.GetTime())
	for app.IsRunning() && !window.ShouldClose() {
		clock.begin(glfw.GetTime())
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		if err := app.Render(); err != nil {
			return err
		}
		window.SwapBuffers()
		if wait := clock.end(glfw.GetTime()); wait > 0 {
			glfw.WaitEventsTimeout(wait)
		} else {
			glfw.PollEvents()
		}
		if err := app.Update(clock.FPS()); err != nil {
			return err
		}
	}
	return nil
}
