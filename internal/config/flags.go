package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagAssets     = flag.String("assets", "", "Texture directory")
	flagWatch      = flag.Bool("watch", false, "Reload textures when they change on disk")
	flagTimeBased  = flag.Bool("time-based", false, "Scale rotation increments by frame time")
	flagSnapshot   = flag.String("snapshot", "", "Render headlessly and write a PNG to this path")
	flagFrames     = flag.Int("frames", 0, "Animation ticks to run before a snapshot")
	flagDumpConfig = flag.String("dump-config", "", "Write the effective config to this path and exit")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// DumpPath returns the --dump-config destination, empty when not requested.
func DumpPath() string {
	return *flagDumpConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagAssets != "" {
		cfg.Assets.Dir = *flagAssets
	}
	if *flagWatch {
		cfg.Assets.Watch = true
	}
	if *flagTimeBased {
		cfg.Animation.Mode = ModeTime
	}
	if *flagSnapshot != "" {
		cfg.Capture.Snapshot = *flagSnapshot
	}
	if *flagFrames > 0 {
		cfg.Capture.Frames = *flagFrames
	}
}
