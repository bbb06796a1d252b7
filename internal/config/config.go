// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Animation modes.
const (
	// ModeFrame applies each body's increment once per rendered frame.
	ModeFrame = "frame"
	// ModeTime scales increments by elapsed time so speed does not depend on refresh rate.
	ModeTime = "time"
)

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Camera    CameraConfig    `yaml:"camera"`
	Animation AnimationConfig `yaml:"animation"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Assets    AssetsConfig    `yaml:"assets"`
	Capture   CaptureConfig   `yaml:"capture"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	PixelRatio float32 `yaml:"pixel_ratio"` // 0 = ask the window
}

// CameraConfig holds the initial camera and orbit control settings.
type CameraConfig struct {
	FOV         float32    `yaml:"fov"` // degrees
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Position    [3]float32 `yaml:"position"`
	MinDistance float32    `yaml:"min_distance"`
	MaxDistance float32    `yaml:"max_distance"`
	RotateSpeed float32    `yaml:"rotate_speed"`
	ZoomSpeed   float32    `yaml:"zoom_speed"`
}

// AnimationConfig controls how rotation increments are applied.
type AnimationConfig struct {
	Mode        string  `yaml:"mode"`
	Speed       float64 `yaml:"speed"`
	ReferenceHz float64 `yaml:"reference_hz"`
}

// LightingConfig holds scene light settings. Colours are hex strings.
type LightingConfig struct {
	Ambient        string  `yaml:"ambient"`
	PointColor     string  `yaml:"point_color"`
	PointIntensity float32 `yaml:"point_intensity"`
	PointDistance  float32 `yaml:"point_distance"`
	PointDecay     float32 `yaml:"point_decay"`
}

// AssetsConfig holds texture asset settings.
type AssetsConfig struct {
	Dir             string        `yaml:"dir"`
	WaitForTextures bool          `yaml:"wait_for_textures"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	Watch           bool          `yaml:"watch"`
}

// CaptureConfig holds screenshot and snapshot settings.
type CaptureConfig struct {
	Dir      string `yaml:"dir"`
	Snapshot string `yaml:"snapshot"` // non-empty switches to headless snapshot mode
	Frames   int    `yaml:"frames"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			PixelRatio: 0,
		},
		Camera: CameraConfig{
			FOV:         45,
			Near:        0.1,
			Far:         1000,
			Position:    [3]float32{-90, 140, 140},
			MinDistance: 20,
			MaxDistance: 800,
			RotateSpeed: 0.005,
			ZoomSpeed:   0.1,
		},
		Animation: AnimationConfig{
			Mode:        ModeFrame,
			Speed:       1,
			ReferenceHz: 60,
		},
		Lighting: LightingConfig{
			Ambient:        "#333333",
			PointColor:     "#ffffff",
			PointIntensity: 13000,
			PointDistance:  50000,
			PointDecay:     2,
		},
		Assets: AssetsConfig{
			Dir:             "assets/img",
			WaitForTextures: false,
			WaitTimeout:     5 * time.Second,
			Watch:           false,
		},
		Capture: CaptureConfig{
			Dir:    "screenshots",
			Frames: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would otherwise fail deep inside the renderer.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Animation.Mode != ModeFrame && c.Animation.Mode != ModeTime {
		return fmt.Errorf("animation: unknown mode %q", c.Animation.Mode)
	}
	if c.Animation.Speed <= 0 {
		return fmt.Errorf("animation: speed must be positive, got %v", c.Animation.Speed)
	}
	if c.Animation.Mode == ModeTime && c.Animation.ReferenceHz <= 0 {
		return fmt.Errorf("animation: reference_hz must be positive in time mode")
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera: invalid clip planes near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		return fmt.Errorf("camera: invalid distance range min=%v max=%v", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Capture.Frames < 0 {
		return fmt.Errorf("capture: frames must not be negative")
	}
	return nil
}
