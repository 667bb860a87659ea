// Package main is the entry point for the orbitview demo: a textured sphere
// spinning in front of an orbit camera.
//
// Usage:
//
//	orbitview [flags] [texture]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitscene/internal/app"
	"github.com/Faultbox/orbitscene/internal/config"
	"github.com/Faultbox/orbitscene/internal/engine/renderer"
	"github.com/Faultbox/orbitscene/internal/engine/scene"
	"github.com/Faultbox/orbitscene/internal/engine/window"
	"github.com/Faultbox/orbitscene/internal/logger"
)

const (
	sphereRadius = 50
	spinPeriod   = 6 // seconds per eased revolution
	spinInterval = 16 * time.Millisecond
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	sceneCfg, err := cfg.Scene()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== orbitview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg, sceneCfg, flag.Arg(0)); err != nil {
		logger.Error("orbitview failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("orbitview closed normally")
}

func run(cfg *config.Config, sceneCfg scene.Config, texturePath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Window first, the renderer needs its GL context.
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// The drawable may differ from the requested size on HiDPI displays.
	sceneCfg.Width, sceneCfg.Height = win.GetSize()

	rcfg := renderer.DefaultConfig()
	rcfg.Width, rcfg.Height = sceneCfg.Width, sceneCfg.Height
	r, err := renderer.New(rcfg)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Close()

	sc, err := scene.New(sceneCfg)
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}

	sphere, err := sc.NewSphere(0, 0, 0, sphereRadius, texturePath)
	if err != nil {
		return fmt.Errorf("failed to create sphere: %w", err)
	}
	logger.Info("sphere created",
		zap.String("texture", texturePath),
		zap.Stringer("mode", sphere.Mode()),
	)

	go spin(ctx, sphere)

	return app.New(win, r, sc).Run(ctx)
}

// spin turns the sphere about its own vertical axis, one eased revolution
// per spinPeriod, until ctx is done. Each step requests a redraw from the
// animation goroutine.
func spin(ctx context.Context, s *scene.Sphere) {
	ticker := time.NewTicker(spinInterval)
	defer ticker.Stop()

	tween := gween.New(0, 360, spinPeriod, ease.InOutSine)
	var angle float32
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			next, finished := tween.Update(float32(now.Sub(last).Seconds()))
			last = now
			s.Rotate(0, float64(next-angle), 0)
			angle = next
			if finished {
				tween.Reset()
				angle = 0
			}
		}
	}
}
