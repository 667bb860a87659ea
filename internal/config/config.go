// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/orbitscene/internal/engine/camera"
	"github.com/Faultbox/orbitscene/internal/engine/geometry"
	"github.com/Faultbox/orbitscene/internal/engine/render"
	"github.com/Faultbox/orbitscene/internal/engine/scene"
	"github.com/Faultbox/orbitscene/internal/engine/screenshot"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Render     RenderConfig     `yaml:"render"`
	Camera     CameraConfig     `yaml:"camera"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds scene rendering options.
type RenderConfig struct {
	Mode       string  `yaml:"mode"` // immediate, list or buffer
	DivisionX  int     `yaml:"division_x"`
	DivisionY  int     `yaml:"division_y"`
	DrawStyle  string  `yaml:"draw_style"` // fill, line or point
	Lighting   bool    `yaml:"lighting"`
	Wireframe  bool    `yaml:"wireframe"`
	ShowAxes   bool    `yaml:"show_axes"`
	AxesLength float32 `yaml:"axes_length"`
	ShowLookAt bool    `yaml:"show_look_at"`
	FovDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// CameraConfig holds input sensitivities.
type CameraConfig struct {
	WheelScale     float32 `yaml:"wheel_scale"`
	KeyMoveScale   float32 `yaml:"key_move_scale"`
	DragScale      float32 `yaml:"drag_scale"` // degrees per pixel
	DriftTolerance float32 `yaml:"drift_tolerance"`
}

// ScreenshotConfig holds capture output settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Format string `yaml:"format"` // png, jpeg, bmp or tiff
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	sc := scene.DefaultConfig()
	return &Config{
		Window: WindowConfig{
			Title:      "orbitview",
			Width:      sc.Width,
			Height:     sc.Height,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			Mode:       sc.Mode.String(),
			DivisionX:  sc.Division.X,
			DivisionY:  sc.Division.Y,
			DrawStyle:  sc.DrawStyle.String(),
			Lighting:   sc.Lighting,
			Wireframe:  sc.Wireframe,
			ShowAxes:   sc.ShowAxes,
			AxesLength: sc.AxesLength,
			ShowLookAt: sc.ShowLookAt,
			FovDegrees: sc.FovDegrees,
			Near:       sc.Near,
			Far:        sc.Far,
		},
		Camera: CameraConfig{
			WheelScale:     sc.Camera.WheelScale,
			KeyMoveScale:   sc.Camera.KeyMoveScale,
			DragScale:      sc.Camera.DragScale,
			DriftTolerance: sc.Camera.DriftTolerance,
		},
		Screenshot: ScreenshotConfig{
			Dir:    sc.ScreenshotDir,
			Prefix: sc.ScreenshotPrefix,
			Format: string(sc.ScreenshotFormat),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	_, err := c.Scene()
	return err
}

// Scene converts the file-level settings into a scene configuration.
func (c *Config) Scene() (scene.Config, error) {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}

	mode, err := scene.ParseRenderMode(c.Render.Mode)
	if err != nil {
		errs = append(errs, fmt.Errorf("render.mode: %w", err))
	}

	div := geometry.Division{X: c.Render.DivisionX, Y: c.Render.DivisionY}
	if err := div.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("render.division: %w", err))
	}

	style, err := render.ParseDrawStyle(c.Render.DrawStyle)
	if err != nil {
		errs = append(errs, fmt.Errorf("render.draw_style: %w", err))
	}

	if c.Render.Near <= 0 || c.Render.Far <= c.Render.Near {
		errs = append(errs, fmt.Errorf("render clip planes near=%g far=%g: need 0 < near < far", c.Render.Near, c.Render.Far))
	}
	if c.Render.FovDegrees <= 0 || c.Render.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("render.fov_degrees %g out of range (0, 180)", c.Render.FovDegrees))
	}

	format, err := screenshot.ParseFormat(c.Screenshot.Format)
	if err != nil {
		errs = append(errs, fmt.Errorf("screenshot.format: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return scene.Config{}, err
	}

	settings := camera.DefaultSettings()
	if c.Camera.WheelScale != 0 {
		settings.WheelScale = c.Camera.WheelScale
	}
	if c.Camera.KeyMoveScale != 0 {
		settings.KeyMoveScale = c.Camera.KeyMoveScale
	}
	if c.Camera.DragScale != 0 {
		settings.DragScale = c.Camera.DragScale
	}
	if c.Camera.DriftTolerance > 0 {
		settings.DriftTolerance = c.Camera.DriftTolerance
	}

	return scene.Config{
		Width:            c.Window.Width,
		Height:           c.Window.Height,
		Mode:             mode,
		Division:         div,
		DrawStyle:        style,
		Lighting:         c.Render.Lighting,
		Wireframe:        c.Render.Wireframe,
		ShowAxes:         c.Render.ShowAxes,
		AxesLength:       c.Render.AxesLength,
		ShowLookAt:       c.Render.ShowLookAt,
		FovDegrees:       c.Render.FovDegrees,
		Near:             c.Render.Near,
		Far:              c.Render.Far,
		Camera:           settings,
		ScreenshotDir:    c.Screenshot.Dir,
		ScreenshotPrefix: c.Screenshot.Prefix,
		ScreenshotFormat: format,
	}, nil
}
