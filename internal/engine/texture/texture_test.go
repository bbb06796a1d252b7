package texture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"
)

// memSource serves assets from memory and can be edited between loads.
type memSource struct {
	mu    sync.Mutex
	files map[string][]byte
	gate  chan struct{} // when non-nil, Load blocks until it is closed
}

func (m *memSource) Load(name string) ([]byte, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memSource) set(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
}

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestLoadResolvesReady(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"earth.png": encodePNG(t, 8, 4, color.RGBA{0, 0, 255, 255}),
	}}
	l := NewLoader(src)

	h := l.Load("earth.png")
	if err := h.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if h.State() != Ready {
		t.Fatalf("expected ready, got %s", h.State())
	}
	img := h.Image()
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Errorf("expected 8x4 image, got %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got.B != 255 {
		t.Errorf("expected blue pixel, got %v", got)
	}
	if h.Version() != 1 {
		t.Errorf("expected version 1, got %d", h.Version())
	}
}

func TestLoadPendingUntilDecoded(t *testing.T) {
	src := &memSource{
		files: map[string][]byte{"sun.png": encodePNG(t, 2, 2, color.RGBA{255, 200, 0, 255})},
		gate:  make(chan struct{}),
	}
	l := NewLoader(src)

	h := l.Load("sun.png")
	if h.State() != Pending {
		t.Errorf("expected pending before decode, got %s", h.State())
	}
	if h.Image() != nil {
		t.Error("pending handle should have no image")
	}

	close(src.gate)
	if err := h.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if h.State() != Ready {
		t.Errorf("expected ready, got %s", h.State())
	}
}

func TestLoadFailures(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"broken.jpg": []byte("not an image"),
	}}
	l := NewLoader(src)

	for _, name := range []string{"missing.jpg", "broken.jpg"} {
		h := l.Load(name)
		if err := h.Wait(waitCtx(t)); err == nil {
			t.Errorf("%s: expected error", name)
		}
		if h.State() != Failed {
			t.Errorf("%s: expected failed, got %s", name, h.State())
		}
		if h.Image() != nil {
			t.Errorf("%s: failed handle should have no image", name)
		}
	}
}

func TestLoadDeduplicates(t *testing.T) {
	src := &memSource{files: map[string][]byte{"stars.png": encodePNG(t, 4, 4, color.RGBA{A: 255})}}
	l := NewLoader(src)

	a := l.Load("stars.png")
	b := l.Load("./stars.png")
	if a != b {
		t.Error("expected the same handle for the same cleaned name")
	}
	if n := len(l.Handles()); n != 1 {
		t.Errorf("expected 1 handle, got %d", n)
	}
}

func TestWaitTimeout(t *testing.T) {
	src := &memSource{files: map[string][]byte{}, gate: make(chan struct{})}
	defer close(src.gate)
	l := NewLoader(src)
	h := l.Load("slow.png")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := h.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if err := l.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("loader Wait: expected deadline exceeded, got %v", err)
	}
}

func TestLoaderWaitReportsFailure(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"mars.png": encodePNG(t, 2, 2, color.RGBA{200, 50, 0, 255}),
	}}
	l := NewLoader(src)
	l.Load("mars.png")
	l.Load("pluto.png")

	err := l.Wait(waitCtx(t))
	if err == nil {
		t.Fatal("expected failure for pluto.png")
	}
	for _, h := range l.Handles() {
		if h.State() == Pending {
			t.Errorf("%s still pending after Wait", h.Name())
		}
	}
}

func TestReload(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"venus.png": encodePNG(t, 2, 2, color.RGBA{255, 0, 0, 255}),
	}}
	l := NewLoader(src)
	h := l.Load("venus.png")
	if err := h.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}

	src.set("venus.png", encodePNG(t, 2, 2, color.RGBA{0, 255, 0, 255}))
	if !l.Reload("venus.png") {
		t.Fatal("expected Reload to find the handle")
	}
	waitVersion(t, h, 2)
	if got := h.Image().RGBAAt(0, 0); got.G != 255 {
		t.Errorf("expected green after reload, got %v", got)
	}

	// A broken reload keeps the last good image.
	src.set("venus.png", []byte("garbage"))
	l.Reload("venus.png")
	waitVersion(t, h, 3)
	if h.State() != Ready {
		t.Errorf("expected handle to stay ready, got %s", h.State())
	}
	if h.Err() == nil {
		t.Error("expected reload error to be recorded")
	}

	if l.Reload("unknown.png") {
		t.Error("Reload of an unrequested name should report false")
	}
}

// sequenceSource returns one fixture per call, in call order. A call whose gate is
// non-nil reports on started and blocks until the gate is closed.
type sequenceSource struct {
	mu      sync.Mutex
	calls   int
	data    [][]byte
	gates   []chan struct{}
	started chan int
}

func (s *sequenceSource) Load(string) ([]byte, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()

	if s.gates[i] != nil {
		s.started <- i
		<-s.gates[i]
	}
	return s.data[i], nil
}

func TestReloadDropsSupersededResult(t *testing.T) {
	slow := make(chan struct{})
	src := &sequenceSource{
		data: [][]byte{
			encodePNG(t, 2, 2, color.RGBA{255, 0, 0, 255}),
			encodePNG(t, 2, 2, color.RGBA{0, 255, 0, 255}),
			encodePNG(t, 2, 2, color.RGBA{0, 0, 255, 255}),
		},
		gates:   []chan struct{}{nil, slow, nil},
		started: make(chan int, 1),
	}
	l := NewLoader(src)
	h := l.Load("earth.png")
	if err := h.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}

	// The first reload reads old contents and stalls; the second finishes first.
	l.Reload("earth.png")
	select {
	case <-src.started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the first reload to start")
	}
	l.Reload("earth.png")
	waitVersion(t, h, 2)

	close(slow)
	time.Sleep(50 * time.Millisecond)

	if got := h.Image().RGBAAt(0, 0); got.B != 255 {
		t.Errorf("expected the newest reload to win, got %v", got)
	}
	if got := h.Version(); got != 2 {
		t.Errorf("expected version 2, got %d", got)
	}
}

func waitVersion(t *testing.T, h *Handle, v uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Version() < v {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for version %d, at %d", v, h.Version())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCubeMapSharesFaces(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"stars.png": encodePNG(t, 16, 8, color.RGBA{255, 255, 255, 255}),
	}}
	l := NewLoader(src)

	cube := l.LoadCube([6]string{"stars.png", "stars.png", "stars.png", "stars.png", "stars.png", "stars.png"})
	if n := len(l.Handles()); n != 1 {
		t.Errorf("expected one shared handle, got %d", n)
	}
	if err := cube.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if cube.State() != Ready {
		t.Fatalf("expected ready cube, got %s", cube.State())
	}

	faces := cube.SquareFaces()
	for i, f := range faces {
		if f == nil {
			t.Fatalf("face %d is nil", i)
		}
		if f.Bounds().Dx() != 8 || f.Bounds().Dy() != 8 {
			t.Errorf("face %d: expected 8x8, got %v", i, f.Bounds())
		}
	}
	if faces[0] != faces[5] {
		t.Error("identical sources should be scaled once")
	}
}

func TestCubeMapState(t *testing.T) {
	ready := NewReadyHandle("a", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	pending := newHandle("b")
	failed := newHandle("c")
	failed.resolve(failed.request(), nil, errors.New("boom"))

	c := &CubeMap{Faces: [6]*Handle{ready, ready, ready, ready, ready, pending}}
	if c.State() != Pending {
		t.Errorf("expected pending, got %s", c.State())
	}
	if faces := c.SquareFaces(); faces[0] != nil {
		t.Error("expected no faces while pending")
	}

	c.Faces[4] = failed
	if c.State() != Failed {
		t.Errorf("expected failed, got %s", c.State())
	}
}

func TestSquare(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	sq := Square(img, 32)
	if sq.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Errorf("expected 32x32, got %v", sq.Bounds())
	}
	same := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if Square(same, 16) != same {
		t.Error("already square image should be returned unchanged")
	}
}

func TestToRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 2, 6, 4))
	gray.SetGray(2, 2, color.Gray{Y: 128})
	rgba := ToRGBA(gray)
	if rgba.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Errorf("expected rebased 4x2 bounds, got %v", rgba.Bounds())
	}
	if got := rgba.RGBAAt(0, 0); got.R != 128 || got.A != 255 {
		t.Errorf("expected converted gray pixel, got %v", got)
	}
}
