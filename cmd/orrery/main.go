// Package main is the entry point for the orrery viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/app"
	"github.com/Faultbox/orrery/internal/assets"
	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/renderer"
	"github.com/Faultbox/orrery/internal/engine/window"
	"github.com/Faultbox/orrery/internal/logger"
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

	if path := config.DumpPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config saved to %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Orrery ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("orrery failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("orrery closed normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	snapshot := cfg.Capture.Snapshot != ""

	win, err := window.New(window.Config{
		Title:      app.Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen && !snapshot,
		VSync:      cfg.Graphics.VSync,
		Hidden:     snapshot,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer win.Close()

	ratio := cfg.Graphics.PixelRatio
	if ratio <= 0 {
		ratio = win.PixelRatio()
	}
	width, height := win.Size()

	r, err := renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		PixelRatio: ratio,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer r.Close()

	mgr := assets.NewManager(cfg.Assets.Dir)
	defer mgr.Close()

	a, err := app.New(cfg, mgr, r)
	if err != nil {
		return err
	}
	a.Resize(width, height)

	if snapshot {
		// The snapshot must show real textures, not placeholders.
		cfg.Assets.WaitForTextures = true
		cfg.Assets.Watch = false
	}
	if err := a.Init(ctx); err != nil {
		return fmt.Errorf("initializing: %w", err)
	}

	if snapshot {
		return a.Snapshot(ctx, cfg.Capture.Snapshot, cfg.Capture.Frames)
	}
	return a.Run(ctx, win)
}
