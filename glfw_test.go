package main

import (
	"errors"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestFrameClock_Wait(t *testing.T) {
	t.Parallel()

	c := createFrameClock(50, 10)
	c.begin(10)
	if wait := c.end(10.005); !approxEqual(float32(wait), 0.015, 1e-6) {
		t.Errorf("end() after 5ms = %g, want 0.015", wait)
	}
	c.begin(10.02)
	if wait := c.end(10.05); wait != 0 {
		t.Errorf("end() after an overlong frame = %g, want 0", wait)
	}
}

func TestFrameClock_FPS(t *testing.T) {
	t.Parallel()

	c := createFrameClock(60, 0)
	if c.FPS() != 0 {
		t.Fatalf("FPS() before the first window = %g, want 0", c.FPS())
	}
	now := 0.0
	for range 30 {
		c.begin(now)
		now += 0.04
		c.end(now)
	}
	// 25 frames fit in the first second
	if got := c.FPS(); !approxEqual(float32(got), 25, 0.01) {
		t.Errorf("FPS() = %g, want 25", got)
	}
}

type fakeGlfwApp struct {
	initErr  error
	closeErr error
	closed   int
}

func (a *fakeGlfwApp) Init() error { return a.initErr }
func (a *fakeGlfwApp) IsRunning() bool { return false }
func (a *fakeGlfwApp) Render() error { return nil }
func (a *fakeGlfwApp) Update(float64) error { return nil }
func (a *fakeGlfwApp) OnFramebufferSize(width, height int) {}
func (a *fakeGlfwApp) OnKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
}

func (a *fakeGlfwApp) Close() error {
	a.closed++
	return a.closeErr
}

func TestInitApp(t *testing.T) {
	t.Parallel()

	errInit := errors.New("init failed")
	errClose := errors.New("close failed")
	tests := []struct {
		name       string
		app        *fakeGlfwApp
		wantErrs   []error
		wantClosed int
	}{
		{"success", &fakeGlfwApp{}, nil, 0},
		{"init fails", &fakeGlfwApp{initErr: errInit}, []error{errInit}, 1},
		{"init and close fail", &fakeGlfwApp{initErr: errInit, closeErr: errClose}, []error{errInit, errClose}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := initApp(tt.app)
			if len(tt.wantErrs) == 0 && err != nil {
				t.Errorf("initApp() error = %v, want nil", err)
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("initApp() error = %v, want it to wrap %v", err, want)
				}
			}
			if tt.app.closed != tt.wantClosed {
				t.Errorf("Close() called %d times, want %d", tt.app.closed, tt.wantClosed)
			}
		})
	}
}
