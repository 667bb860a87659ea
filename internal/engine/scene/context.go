// Package scene holds displayable objects together with the camera, texture
// cache and redraw scheduler they share, and drives one frame at a time.
package scene

import (
	"errors"
	"fmt"
	gomath "math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitscene/internal/engine/camera"
	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/internal/engine/screenshot"
	"github.com/Faultbox/orbitscene/internal/engine/texture"
	"github.com/Faultbox/orbitscene/internal/engine/transform"
	"github.com/Faultbox/orbitscene/internal/logger"
	"github.com/Faultbox/orbitscene/pkg/math"
)

// Config contains scene configuration options.
type Config struct {
	Width  int
	Height int

	Mode      RenderMode
	Division  geometry.Division
	DrawStyle render.DrawStyle

	Lighting   bool
	Wireframe  bool
	ShowAxes   bool
	AxesLength float32
	ShowLookAt bool

	FovDegrees float32
	Near       float32
	Far        float32

	Camera camera.Settings

	ScreenshotDir    string
	ScreenshotPrefix string
	ScreenshotFormat screenshot.Format
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		Width:            1280,
		Height:           720,
		Mode:             ModeBuffer,
		Division:         geometry.DefaultDivision,
		DrawStyle:        render.StyleFill,
		Lighting:         true,
		AxesLength:       100,
		FovDegrees:       45,
		Near:             1,
		Far:              10000,
		Camera:           camera.DefaultSettings(),
		ScreenshotDir:    "screenshots",
		ScreenshotPrefix: "orbitview",
		ScreenshotFormat: screenshot.FormatPNG,
	}
}

// Context is one independent scene: a camera, a texture cache, a redraw
// scheduler and the objects drawn with them.
type Context struct {
	sched    *render.Scheduler
	cam      *camera.Controller
	textures *texture.Cache
	capture  *screenshot.Capture
	log      *zap.Logger

	mu          sync.Mutex
	objects     []*Sphere
	released    []*Sphere
	division    geometry.Division
	mode        RenderMode
	style       render.DrawStyle
	lighting    bool
	wireframe   bool
	showAxes    bool
	axesLength  float32
	showLookAt  bool
	width       int
	height      int
	fov         float32
	near, far   float32
	screenshots []string
	frames      uint64
}

// New creates a scene context.
func New(cfg Config) (*Context, error) {
	if err := cfg.Division.Validate(); err != nil {
		return nil, err
	}
	if _, err := newStrategy(cfg.Mode); err != nil {
		return nil, err
	}

	c := &Context{
		sched:      render.NewScheduler(),
		textures:   texture.NewCache(),
		capture:    screenshot.New(cfg.ScreenshotDir, cfg.ScreenshotPrefix, cfg.ScreenshotFormat),
		log:        logger.Named("scene"),
		division:   cfg.Division,
		mode:       cfg.Mode,
		style:      cfg.DrawStyle,
		lighting:   cfg.Lighting,
		wireframe:  cfg.Wireframe,
		showAxes:   cfg.ShowAxes,
		axesLength: cfg.AxesLength,
		showLookAt: cfg.ShowLookAt,
		width:      cfg.Width,
		height:     cfg.Height,
		fov:        cfg.FovDegrees,
		near:       cfg.Near,
		far:        cfg.Far,
	}
	c.cam = camera.New(cfg.Camera, c.sched)
	return c, nil
}

// SetLogger replaces the diagnostics logger.
func (c *Context) SetLogger(l *zap.Logger) {
	c.mu.Lock()
	c.log = l
	c.mu.Unlock()
}

// Scheduler returns the redraw scheduler.
func (c *Context) Scheduler() *render.Scheduler { return c.sched }

// Camera returns the scene's camera controller.
func (c *Context) Camera() *camera.Controller { return c.cam }

// Textures returns the texture cache.
func (c *Context) Textures() *texture.Cache { return c.textures }

// RequestRedraw schedules a redraw for the next frame.
func (c *Context) RequestRedraw() { c.sched.RequestRedraw() }

// NewSphere creates a sphere of radius r centered on (cx,cy,cz) using the
// context's render mode. texPath may be empty.
func (c *Context) NewSphere(cx, cy, cz, r float64, texPath string) (*Sphere, error) {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	return c.NewSphereWithMode(mode, cx, cy, cz, r, texPath)
}

// NewSphereWithMode is NewSphere with an explicit render mode.
func (c *Context) NewSphereWithMode(mode RenderMode, cx, cy, cz, r float64, texPath string) (*Sphere, error) {
	shape, err := geometry.NewSphere(r)
	if err != nil {
		return nil, fmt.Errorf("creating sphere: %w", err)
	}
	strat, err := newStrategy(mode)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	style := c.style
	c.mu.Unlock()

	s := &Sphere{
		Transform: transform.New(c),
		ctx:       c,
		mode:      mode,
		shape:     shape,
		tex:       c.textures.Get(texPath),
		style:     style,
		version:   1,
		strategy:  strat,
	}
	s.Translate(cx, cy, cz)

	c.mu.Lock()
	c.objects = append(c.objects, s)
	c.mu.Unlock()
	c.RequestRedraw()
	return s, nil
}

// Remove detaches s. Its backend resources are released at the start of
// the next frame. Reports whether s belonged to the context.
func (c *Context) Remove(s *Sphere) bool {
	c.mu.Lock()
	found := false
	for i, o := range c.objects {
		if o == s {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			c.released = append(c.released, s)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if found {
		c.RequestRedraw()
	}
	return found
}

// Objects returns the attached objects in drawing order.
func (c *Context) Objects() []*Sphere {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Sphere(nil), c.objects...)
}

// Division returns the global tessellation resolution.
func (c *Context) Division() geometry.Division {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.division
}

// SetDivision changes the tessellation resolution of every object.
func (c *Context) SetDivision(x, y int) error {
	d := geometry.Division{X: x, Y: y}
	if err := d.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.division = d
	c.mu.Unlock()
	c.RequestRedraw()
	return nil
}

// SetLighting turns lighting on or off.
func (c *Context) SetLighting(on bool) {
	c.setOption(func() { c.lighting = on })
}

// SetAxesVisible shows or hides the coordinate axes.
func (c *Context) SetAxesVisible(on bool) {
	c.setOption(func() { c.showAxes = on })
}

// ShowAxes shows the coordinate axes with the given length.
func (c *Context) ShowAxes(length float32) {
	c.setOption(func() {
		c.showAxes = true
		c.axesLength = length
	})
}

// SetLookAtVisible shows or hides the look-at marker.
func (c *Context) SetLookAtVisible(on bool) {
	c.setOption(func() { c.showLookAt = on })
}

// SetWireframe forces line rasterization for every object.
func (c *Context) SetWireframe(on bool) {
	c.setOption(func() { c.wireframe = on })
}

// Resize updates the viewport size.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.setOption(func() {
		c.width = width
		c.height = height
	})
}

// Size returns the viewport size.
func (c *Context) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// RequestScreenshot captures the next rendered frame to a file. Failures
// are logged. An empty name generates a timestamped one.
func (c *Context) RequestScreenshot(name string) {
	c.setOption(func() { c.screenshots = append(c.screenshots, name) })
}

// Frames returns the number of frames drawn.
func (c *Context) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

func (c *Context) setOption(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
	c.RequestRedraw()
}

// Frame draws the scene if a redraw is pending and reports whether it did.
// Objects that fail to materialize are skipped; their errors are returned
// joined after the rest of the frame is drawn. Must be called on the
// rendering thread.
func (c *Context) Frame(b render.Backend) (bool, error) {
	c.mu.Lock()
	released := c.released
	c.released = nil
	c.mu.Unlock()
	for _, s := range released {
		s.strategy.release(b)
	}

	if !c.sched.TakeRedraw() {
		return false, nil
	}
	start := time.Now()

	c.mu.Lock()
	objects := append([]*Sphere(nil), c.objects...)
	div := c.division
	wireframe := c.wireframe
	shots := c.screenshots
	c.screenshots = nil
	frame := render.Frame{
		Width:      c.width,
		Height:     c.height,
		Lighting:   c.lighting,
		Wireframe:  wireframe,
		ShowLookAt: c.showLookAt,
	}
	if c.showAxes {
		frame.AxesLength = c.axesLength
	}
	fov, near, far := c.fov, c.near, c.far
	log := c.log
	c.mu.Unlock()

	state := c.cam.State()
	frame.View = math.LookAt(state.Position, state.LookAt, state.Up)
	frame.Eye = state.Position
	frame.LookAt = state.LookAt
	aspect := float32(1)
	if frame.Height > 0 {
		aspect = float32(frame.Width) / float32(frame.Height)
	}
	frame.Projection = math.Perspective(fov*gomath.Pi/180, aspect, near, far)

	b.BeginFrame(frame)
	var errs []error
	for i, s := range objects {
		if err := s.draw(b, div, wireframe); err != nil {
			log.Error("materializing object failed", zap.Int("object", i), zap.Error(err))
			errs = append(errs, err)
		}
	}
	b.UnbindTexture()
	b.EndFrame()

	for _, name := range shots {
		c.saveScreenshot(b, name, log)
	}

	c.mu.Lock()
	c.frames++
	n := c.frames
	c.mu.Unlock()
	log.Debug("frame drawn",
		zap.Uint64("frame", n),
		zap.Int("objects", len(objects)),
		zap.Duration("elapsed", time.Since(start)))

	return true, errors.Join(errs...)
}

func (c *Context) saveScreenshot(b render.Backend, name string, log *zap.Logger) {
	pixels, w, h, err := b.ReadPixels()
	if err == nil {
		name, err = c.capture.CaptureFromPixels(pixels, w, h, name)
	}
	if err != nil {
		log.Error("screenshot failed", zap.Error(err))
		return
	}
	log.Info("screenshot saved", zap.String("path", name))
}
