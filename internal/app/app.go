// Package app runs the viewer's event and frame loop.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitscene/internal/engine/camera"
	"github.com/Faultbox/orbitscene/internal/engine/input"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/internal/engine/scene"
	"github.com/Faultbox/orbitscene/internal/logger"
)

// IdleWait bounds how long an idle loop iteration sleeps before polling
// events again.
const IdleWait = 10 * time.Millisecond

// Window is the part of the platform window the loop drives.
type Window interface {
	PollEvents(in *input.Input)
	SwapBuffers()
}

// App ties a window, a backend and a scene together.
type App struct {
	win      Window
	backend  render.Backend
	scene    *scene.Context
	controls *camera.Controls
	input    *input.Input
	running  bool
	log      *zap.Logger

	frames   int
	fpsTimer time.Time
}

// New creates an app. The backend's GL context must be current on the
// calling thread.
func New(win Window, backend render.Backend, sc *scene.Context) *App {
	return &App{
		win:      win,
		backend:  backend,
		scene:    sc,
		controls: camera.NewControls(sc.Camera()),
		input:    input.New(),
		running:  true,
		log:      logger.Named("app"),
	}
}

// Scene returns the scene the app draws.
func (a *App) Scene() *scene.Context {
	return a.scene
}

// Running reports whether the loop should continue.
func (a *App) Running() bool {
	return a.running
}

// Run loops until a quit event, Escape, or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting main loop")
	a.fpsTimer = time.Now()

	for a.running {
		if ctx.Err() != nil {
			break
		}
		if a.Step() {
			continue
		}
		select {
		case <-ctx.Done():
		case <-a.scene.Scheduler().Wake():
		case <-time.After(IdleWait):
		}
	}

	a.log.Info("main loop stopped", zap.Uint64("frames", a.scene.Frames()))
	return nil
}

// Step processes pending events and draws a frame if one is due. It
// reports whether a frame was presented.
func (a *App) Step() bool {
	a.input.Reset()
	a.win.PollEvents(a.input)
	for _, e := range a.input.Events() {
		a.handle(e)
	}
	if !a.running {
		return false
	}

	drawn, err := a.scene.Frame(a.backend)
	if err != nil {
		a.log.Error("frame incomplete", zap.Error(err))
	}
	if !drawn {
		return false
	}
	a.win.SwapBuffers()

	a.frames++
	if time.Since(a.fpsTimer) >= time.Second {
		a.log.Debug("fps", zap.Int("count", a.frames))
		a.frames = 0
		a.fpsTimer = time.Now()
	}
	return true
}

func (a *App) handle(e input.Event) {
	switch e.Type {
	case input.EventQuit:
		a.running = false
		return
	case input.EventWindowResize:
		a.scene.Resize(e.Width, e.Height)
		return
	case input.EventKeyDown:
		switch e.Key {
		case input.KeyEscape:
			a.running = false
			return
		case input.KeyF12:
			a.scene.RequestScreenshot("")
			return
		}
	}
	a.controls.Handle(e)
}
