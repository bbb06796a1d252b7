package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Faultbox/orrery/internal/assets"
	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/camera"
	"github.com/Faultbox/orrery/internal/engine/input"
	"github.com/Faultbox/orrery/internal/engine/scene"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/pkg/math"
)

type fakeRenderer struct {
	sizes    [][2]int
	ratios   []float32
	renders  int
	captures int
}

func (f *fakeRenderer) SetSize(width, height int) {
	f.sizes = append(f.sizes, [2]int{width, height})
}

func (f *fakeRenderer) SetPixelRatio(ratio float32) {
	f.ratios = append(f.ratios, ratio)
}

func (f *fakeRenderer) Render(*scene.Scene, *camera.PerspectiveCamera) {
	f.renders++
}

func (f *fakeRenderer) Capture(*scene.Scene, *camera.PerspectiveCamera) (*image.RGBA, error) {
	f.captures++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (f *fakeRenderer) size() [2]int {
	if len(f.sizes) == 0 {
		return [2]int{}
	}
	return f.sizes[len(f.sizes)-1]
}

// fakeHost replays one slice of events per frame.
type fakeHost struct {
	frames    [][]input.Event
	polls     int
	presents  int
	title     string
	ratio     float32
	onPresent func(n int)
}

func (h *fakeHost) PollEvents(in *input.Input) {
	in.Begin()
	if h.polls < len(h.frames) {
		for _, e := range h.frames[h.polls] {
			in.Push(e)
		}
	}
	h.polls++
}

func (h *fakeHost) SetTitle(title string) {
	h.title = title
}

func (h *fakeHost) PixelRatio() float32 {
	if h.ratio == 0 {
		return 1
	}
	return h.ratio
}

func (h *fakeHost) Present() {
	h.presents++
	if h.onPresent != nil {
		h.onPresent(h.presents)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Graphics.Width = 800
	cfg.Graphics.Height = 600
	cfg.Capture.Dir = filepath.Join(t.TempDir(), "screenshots")
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	a, err := New(cfg, assets.NewManagerFS("mem", fstest.MapFS{}), r)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, r
}

func runCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func angleClose(got, want float64) bool {
	d := math.WrapAngle(got - want)
	return d < 1e-3 || d > math.TwoPi-1e-3
}

func orientations(a *App) []math.Quat {
	var out []math.Quat
	for _, b := range a.System().Bodies() {
		out = append(out, b.Mesh.Rotation)
		if b.Pivot != nil {
			out = append(out, b.Pivot.Rotation)
		}
	}
	return out
}

func TestNewSizesEverything(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))

	if w, h := a.Size(); w != 800 || h != 600 {
		t.Errorf("expected 800x600, got %dx%d", w, h)
	}
	if r.size() != [2]int{800, 600} {
		t.Errorf("expected renderer 800x600, got %v", r.size())
	}
	if a.Camera().Aspect != 800.0/600.0 {
		t.Errorf("expected aspect 4/3, got %v", a.Camera().Aspect)
	}
	if !a.Camera().Position.ApproxEqual(math.Vec3{X: -90, Y: 140, Z: 140}, 1e-3) {
		t.Errorf("expected initial camera position, got %+v", a.Camera().Position)
	}
}

func TestResize(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))
	for i := 0; i < 10; i++ {
		a.Update(16 * time.Millisecond)
	}
	before := orientations(a)

	a.Resize(1024, 768)

	if a.Camera().Aspect != float32(1024)/float32(768) {
		t.Errorf("expected aspect 1024/768, got %v", a.Camera().Aspect)
	}
	if r.size() != [2]int{1024, 768} {
		t.Errorf("expected renderer 1024x768, got %v", r.size())
	}
	after := orientations(a)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("resize changed orientation %d", i)
		}
	}

	// Repeating the size is a no-op.
	calls := len(r.sizes)
	proj := a.Camera().ProjectionMatrix()
	a.Resize(1024, 768)
	if len(r.sizes) != calls {
		t.Error("expected no renderer call for an unchanged size")
	}
	if a.Camera().ProjectionMatrix() != proj {
		t.Error("expected unchanged projection")
	}

	a.Resize(0, 768)
	if w, h := a.Size(); w != 1024 || h != 768 {
		t.Errorf("expected degenerate size to be ignored, got %dx%d", w, h)
	}
}

func TestUpdateAnimatesAndRenders(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))

	for i := 0; i < 100; i++ {
		a.Update(16 * time.Millisecond)
	}

	if r.renders != 100 {
		t.Errorf("expected 100 renders, got %d", r.renders)
	}
	earth := a.System().Planet("earth")
	if got := earth.Mesh.AngleY(); !angleClose(got, 2.0) {
		t.Errorf("expected earth spin 2.0, got %v", got)
	}
	if got := earth.Pivot.AngleY(); !angleClose(got, 1.0) {
		t.Errorf("expected earth revolution 1.0, got %v", got)
	}
	if got := a.System().Planet("mercury").Pivot.AngleY(); !angleClose(got, 4.0) {
		t.Errorf("expected mercury revolution 4.0, got %v", got)
	}
	if got := a.System().Sun.Mesh.WorldPosition(); got != (math.Vec3{}) {
		t.Errorf("expected sun at origin, got %+v", got)
	}
}

func TestRunQuitsOnEscape(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))
	host := &fakeHost{frames: [][]input.Event{
		nil,
		{{Type: input.EventWindowResize, Width: 1024, Height: 768}},
		nil,
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.presents != 3 {
		t.Errorf("expected 3 presented frames, got %d", host.presents)
	}
	if r.renders != 3 {
		t.Errorf("expected 3 renders, got %d", r.renders)
	}
	if r.size() != [2]int{1024, 768} {
		t.Errorf("expected resize to reach the renderer, got %v", r.size())
	}
	if a.Animator().Ticks() != 3 {
		t.Errorf("expected 3 ticks, got %d", a.Animator().Ticks())
	}
}

func TestRunQuitsOnHostQuit(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	host := &fakeHost{frames: [][]input.Event{nil, {{Type: input.EventQuit}}}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.presents != 1 {
		t.Errorf("expected 1 presented frame, got %d", host.presents)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(runCtx(t))
	host := &fakeHost{onPresent: func(n int) {
		if n == 5 {
			cancel()
		}
	}}

	err := a.Run(ctx, host)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if host.presents != 5 {
		t.Errorf("expected 5 frames, got %d", host.presents)
	}
}

func TestSpaceTogglesPause(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))
	host := &fakeHost{frames: [][]input.Event{
		{{Type: input.EventKeyDown, Key: input.KeySpace}},
		nil,
		nil,
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}
	if !a.Animator().Paused() {
		t.Error("expected animation paused")
	}
	if host.title != "Orrery (paused)" {
		t.Errorf("expected paused title, got %q", host.title)
	}
	if a.Animator().Ticks() != 0 {
		t.Errorf("expected no ticks while paused, got %d", a.Animator().Ticks())
	}
	if r.renders != 3 {
		t.Errorf("expected rendering to continue while paused, got %d renders", r.renders)
	}
}

func TestTitleShowsResume(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	host := &fakeHost{frames: [][]input.Event{
		{{Type: input.EventKeyDown, Key: input.KeySpace}},
		{{Type: input.EventKeyDown, Key: input.KeySpace}},
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}
	if a.Animator().Paused() {
		t.Error("expected animation resumed")
	}
	if host.title != Title {
		t.Errorf("expected title %q, got %q", Title, host.title)
	}
}

func TestPixelRatioFollowsHost(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))
	host := &fakeHost{ratio: 1}
	host.frames = [][]input.Event{
		nil,
		// Same logical size, denser display.
		{{Type: input.EventWindowResize, Width: 800, Height: 600}},
		{{Type: input.EventWindowResize, Width: 800, Height: 600}},
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}
	host.onPresent = func(n int) {
		if n == 1 {
			host.ratio = 2
		}
	}
	sizes := len(r.sizes)

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}
	if len(r.ratios) != 2 || r.ratios[0] != 1 || r.ratios[1] != 2 {
		t.Errorf("expected ratios [1 2], got %v", r.ratios)
	}
	if len(r.sizes) != sizes {
		t.Errorf("expected no size change, got %v", r.sizes[sizes:])
	}
}

func TestPinnedPixelRatio(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graphics.PixelRatio = 2
	a, r := newTestApp(t, cfg)
	host := &fakeHost{ratio: 3, frames: [][]input.Event{
		{{Type: input.EventWindowResize, Width: 1024, Height: 768}},
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}
	if len(r.ratios) != 0 {
		t.Errorf("expected the configured ratio to be kept, got %v", r.ratios)
	}
}

func TestF12SavesScreenshot(t *testing.T) {
	cfg := testConfig(t)
	a, r := newTestApp(t, cfg)
	host := &fakeHost{frames: [][]input.Event{
		{{Type: input.EventKeyDown, Key: input.KeyF12}},
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}
	if r.captures != 1 {
		t.Errorf("expected 1 capture, got %d", r.captures)
	}
	files, err := filepath.Glob(filepath.Join(cfg.Capture.Dir, "orrery_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected one screenshot file, got %v", files)
	}
}

func TestMouseOrbit(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	start := a.Camera().Position
	dist := a.Controls().Distance

	host := &fakeHost{frames: [][]input.Event{
		{
			{Type: input.EventMouseMove, DeltaX: 50},
			{Type: input.EventMouseDown, Button: input.ButtonLeft},
			{Type: input.EventMouseMove, DeltaX: 80, DeltaY: 20},
			{Type: input.EventMouseUp, Button: input.ButtonLeft},
		},
		{{Type: input.EventKeyDown, Key: input.KeyEscape}},
	}}
	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}

	if a.Camera().Position.ApproxEqual(start, 1e-3) {
		t.Error("expected left drag to orbit the camera")
	}
	if got := a.Camera().Position.Length(); gomath.Abs(float64(got-dist)) > 1e-2 {
		t.Errorf("expected orbit to keep distance %v, got %v", dist, got)
	}
	wantYaw := float32(gomath.Atan2(-90, 140)) - 80*config.Default().Camera.RotateSpeed
	if gomath.Abs(float64(a.Controls().Yaw-wantYaw)) > 1e-4 {
		t.Errorf("expected only the held move to rotate, yaw %v want %v", a.Controls().Yaw, wantYaw)
	}
}

func TestWheelZoomClamped(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	var events []input.Event
	for i := 0; i < 100; i++ {
		events = append(events, input.Event{Type: input.EventMouseWheel, Wheel: 1})
	}
	host := &fakeHost{frames: [][]input.Event{events, {{Type: input.EventKeyDown, Key: input.KeyEscape}}}}

	if err := a.Run(runCtx(t), host); err != nil {
		t.Fatal(err)
	}
	if got := a.Camera().Position.Length(); gomath.Abs(float64(got-20)) > 1e-2 {
		t.Errorf("expected camera clamped at min distance 20, got %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))
	path := filepath.Join(t.TempDir(), "out", "snap.png")

	if err := a.Snapshot(runCtx(t), path, 100); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if r.captures != 1 || r.renders != 0 {
		t.Errorf("expected a single offscreen capture, got %d captures and %d renders", r.captures, r.renders)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected snapshot file: %v", err)
	}
	if got := a.System().Planet("earth").Pivot.AngleY(); !angleClose(got, 1.0) {
		t.Errorf("expected earth revolution 1.0 after 100 frames, got %v", got)
	}
}

func TestSnapshotCancelled(t *testing.T) {
	a, r := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Snapshot(ctx, filepath.Join(t.TempDir(), "snap.png"), 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if r.captures != 0 {
		t.Error("expected no capture after cancellation")
	}
}

func TestInitWaitsForTextures(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assets.WaitForTextures = true
	cfg.Assets.WaitTimeout = 5 * time.Second
	a, _ := newTestApp(t, cfg)

	// Every texture is missing: Init still succeeds and the failures are settled.
	if err := a.Init(runCtx(t)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, h := range a.Loader().Handles() {
		if h.State() != texture.Failed {
			t.Errorf("%s: expected failed, got %s", h.Name(), h.State())
		}
	}
}

func encodePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.SetRGBA(i%2, i/2, c)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWatchReloadsTextures(t *testing.T) {
	dir := t.TempDir()
	earthPath := filepath.Join(dir, "earth.jpg")
	if err := os.WriteFile(earthPath, encodePNG(t, color.RGBA{0, 0, 255, 255}), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.Assets.Dir = dir
	cfg.Assets.Watch = true
	mgr := assets.NewManager(dir)
	defer mgr.Close()
	a, err := New(cfg, mgr, &fakeRenderer{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(runCtx(t))
	defer cancel()
	if err := a.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	earth := a.Loader().Load("earth.jpg")
	if err := earth.Wait(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	if err := os.WriteFile(earthPath, encodePNG(t, color.RGBA{0, 255, 0, 255}), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		a.Update(time.Millisecond)
		if img := earth.Image(); img != nil && img.RGBAAt(0, 0).G == 255 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for texture reload")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
