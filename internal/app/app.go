// Package app wires the solar system scene, camera, animation and renderer into
// an explicit application context with a frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/assets"
	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/camera"
	"github.com/Faultbox/orrery/internal/engine/debug"
	"github.com/Faultbox/orrery/internal/engine/input"
	"github.com/Faultbox/orrery/internal/engine/scene"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/internal/logger"
	"github.com/Faultbox/orrery/internal/solar"
	"github.com/Faultbox/orrery/pkg/math"
)

// Renderer draws the scene. *renderer.Renderer implements it.
type Renderer interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	Render(s *scene.Scene, cam *camera.PerspectiveCamera)
	Capture(s *scene.Scene, cam *camera.PerspectiveCamera) (*image.RGBA, error)
}

// Host is the platform window: an event source and a surface to present frames on.
// *window.Window implements it.
type Host interface {
	PollEvents(in *input.Input)
	Present()
	SetTitle(title string)
	PixelRatio() float32
}

// Title is the window title; a paused animation is marked in it.
const Title = "Orrery"


// App owns everything that lives for the duration of the process.
type App struct {
	cfg *config.Config

	assets   *assets.Manager
	loader   *texture.Loader
	scene    *scene.Scene
	system   *solar.System
	animator *solar.Animator

	camera   *camera.PerspectiveCamera
	controls *camera.OrbitControls
	renderer Renderer
	input    *input.Input
	host     Host

	screenshots *debug.ScreenshotCapture
	changes     <-chan string

	width, height int
	pixelRatio    float32
	now           func() time.Time
}

// New builds the scene and camera. Textures start loading immediately; call Init
// before the first frame.
func New(cfg *config.Config, mgr *assets.Manager, r Renderer) (*App, error) {
	a := &App{
		cfg:         cfg,
		assets:      mgr,
		loader:      texture.NewLoader(mgr),
		scene:       scene.New(),
		renderer:    r,
		input:       input.New(),
		screenshots: debug.NewScreenshotCapture(cfg.Capture.Dir, "orrery"),
		now:         time.Now,
	}

	var err error
	a.system, err = solar.Build(a.scene, a.loader, cfg.Lighting)
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}
	a.animator = solar.NewAnimator(a.system, cfg.Animation)

	cc := cfg.Camera
	a.camera = camera.NewPerspectiveCamera(cc.FOV, 1, cc.Near, cc.Far)
	a.camera.Position = math.Vec3{X: cc.Position[0], Y: cc.Position[1], Z: cc.Position[2]}
	a.camera.LookAt(math.Vec3{})

	a.controls = camera.NewOrbitControls(a.camera)
	a.controls.MinDistance = cc.MinDistance
	a.controls.MaxDistance = cc.MaxDistance
	a.controls.DragSensitivity = cc.RotateSpeed
	a.controls.ZoomSensitivity = cc.ZoomSpeed
	a.controls.Update()

	a.Resize(cfg.Graphics.Width, cfg.Graphics.Height)
	return a, nil
}

// Init prepares the first frame: it optionally waits for textures and starts the
// asset watcher. The watcher stops when ctx is done.
func (a *App) Init(ctx context.Context) error {
	if a.cfg.Assets.WaitForTextures {
		wctx, cancel := context.WithTimeout(ctx, a.cfg.Assets.WaitTimeout)
		err := a.loader.Wait(wctx)
		cancel()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("textures still loading, starting with placeholders",
				zap.Duration("timeout", a.cfg.Assets.WaitTimeout))
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			// Failed textures fall back to flat colors.
			logger.Warn("some textures failed to load", zap.Error(err))
		}
	}

	if a.cfg.Assets.Watch {
		changes, err := a.assets.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watching assets: %w", err)
		}
		a.changes = changes
		logger.Info("watching textures", zap.String("dir", a.assets.Root()))
	}
	return nil
}

// Resize applies a new viewport size to the camera and renderer.
// Repeating the current size changes nothing.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	// Density can change without a size change.
	a.syncPixelRatio()
	if width == a.width && height == a.height {
		return
	}
	a.width, a.height = width, height
	a.camera.SetAspect(width, height)
	a.renderer.SetSize(width, height)
	logger.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// Update advances one frame: controls, animation, then rendering.
func (a *App) Update(dt time.Duration) {
	a.reloadChanged()
	a.controls.Update()
	a.animator.Tick(dt)
	a.renderer.Render(a.scene, a.camera)
}

// Run is the frame loop. It returns nil when the host asks to quit or Escape is
// pressed, and the context error when ctx is cancelled. With VSync on, Present
// paces the loop to the display refresh.
func (a *App) Run(ctx context.Context, host Host) error {
	last := a.now()
	frames := 0
	fpsTimer := last

	a.host = host
	a.syncPixelRatio()
	host.SetTitle(a.title())

	logger.Info("starting frame loop")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		host.PollEvents(a.input)
		if quit := a.HandleEvents(); quit {
			logger.Info("quit requested")
			return nil
		}

		now := a.now()
		dt := now.Sub(last)
		last = now

		a.Update(dt)
		host.Present()

		frames++
		if now.Sub(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frames), zap.Duration("dt", dt))
			frames = 0
			fpsTimer = now
		}
	}
}

// HandleEvents applies this frame's input and reports whether the app should quit.
func (a *App) HandleEvents() bool {
	in := a.input
	if in.QuitRequested() || in.IsKeyPressed(input.KeyEscape) {
		return true
	}
	if w, h, ok := in.LastResize(); ok {
		a.Resize(w, h)
	}

	if in.IsKeyPressed(input.KeySpace) {
		paused := a.animator.TogglePause()
		if a.host != nil {
			a.host.SetTitle(a.title())
		}
		logger.Info("animation paused", zap.Bool("paused", paused))
	}
	if in.IsKeyPressed(input.KeyF12) {
		if path, err := a.Screenshot(); err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
		} else {
			logger.Info("screenshot saved", zap.String("path", path))
		}
	}

	for _, e := range in.Events() {
		switch e.Type {
		case input.EventMouseMove:
			switch {
			case e.Holding(input.ButtonLeft):
				a.controls.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			case e.Holding(input.ButtonRight), e.Holding(input.ButtonMiddle):
				a.controls.HandlePan(float32(e.DeltaX), float32(e.DeltaY))
			}

		case input.EventMouseWheel:
			a.controls.HandleZoom(e.Wheel)
		}
	}
	return false
}

// Screenshot renders the current view offscreen and saves it under the capture directory.
func (a *App) Screenshot() (string, error) {
	img, err := a.renderer.Capture(a.scene, a.camera)
	if err != nil {
		return "", fmt.Errorf("capturing frame: %w", err)
	}
	return a.screenshots.Capture(img)
}

// Snapshot advances the animation by frames ticks of one reference frame each,
// renders once offscreen and writes the PNG to path.
func (a *App) Snapshot(ctx context.Context, path string, frames int) error {
	hz := a.cfg.Animation.ReferenceHz
	if hz <= 0 {
		hz = 60
	}
	dt := time.Duration(float64(time.Second) / hz)

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.animator.Tick(dt)
	}
	a.controls.Update()

	img, err := a.renderer.Capture(a.scene, a.camera)
	if err != nil {
		return fmt.Errorf("capturing snapshot: %w", err)
	}
	if err := debug.WritePNG(path, img); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	logger.Info("snapshot written", zap.String("path", path), zap.Uint64("ticks", a.animator.Ticks()))
	return nil
}

// syncPixelRatio follows the window's pixel density unless the config pins it.
func (a *App) syncPixelRatio() {
	if a.host == nil || a.cfg.Graphics.PixelRatio > 0 {
		return
	}
	ratio := a.host.PixelRatio()
	if ratio <= 0 || ratio == a.pixelRatio {
		return
	}
	a.pixelRatio = ratio
	a.renderer.SetPixelRatio(ratio)
	logger.Debug("pixel ratio changed", zap.Float32("ratio", ratio))
}

func (a *App) title() string {
	if a.animator.Paused() {
		return Title + " (paused)"
	}
	return Title
}

// reloadChanged re-decodes textures the watcher reported since the last frame.
func (a *App) reloadChanged() {
	for {
		select {
		case name, ok := <-a.changes:
			if !ok {
				a.changes = nil
				return
			}
			if a.loader.Reload(name) {
				logger.Info("reloading texture", zap.String("name", name))
			}
		default:
			return
		}
	}
}

// Size returns the current viewport size.
func (a *App) Size() (int, int) {
	return a.width, a.height
}

// Camera returns the scene camera.
func (a *App) Camera() *camera.PerspectiveCamera {
	return a.camera
}

// Controls returns the orbit controls.
func (a *App) Controls() *camera.OrbitControls {
	return a.controls
}

// System returns the built solar system.
func (a *App) System() *solar.System {
	return a.system
}

// Animator returns the animation driver.
func (a *App) Animator() *solar.Animator {
	return a.animator
}

// Loader returns the texture loader.
func (a *App) Loader() *texture.Loader {
	return a.loader
}
