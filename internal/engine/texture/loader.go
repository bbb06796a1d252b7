package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/orrery/internal/logger"
)

// Source provides raw asset bytes by name.
type Source interface {
	Load(name string) ([]byte, error)
}

// Loader decodes textures in the background and hands out one Handle per name.
type Loader struct {
	src Source

	mu      sync.Mutex
	handles map[string]*Handle
	order   []string
}

// NewLoader creates a loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{
		src:     src,
		handles: make(map[string]*Handle),
	}
}

// Load returns the handle for name, starting a background decode the first time
// a name is requested. It never blocks.
func (l *Loader) Load(name string) *Handle {
	name = path.Clean(name)

	l.mu.Lock()
	h, ok := l.handles[name]
	if !ok {
		h = newHandle(name)
		l.handles[name] = h
		l.order = append(l.order, name)
	}
	l.mu.Unlock()

	if !ok {
		go l.decode(h, h.request())
	}
	return h
}

// Reload decodes name again and reports whether a handle for it exists.
// The handle keeps its previous image until the new one is ready. When reloads
// overlap, only the most recent one is applied.
func (l *Loader) Reload(name string) bool {
	name = path.Clean(name)

	l.mu.Lock()
	h, ok := l.handles[name]
	l.mu.Unlock()

	if ok {
		go l.decode(h, h.request())
	}
	return ok
}

// Handles returns all handles in request order.
func (l *Loader) Handles() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Handle, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.handles[name])
	}
	return out
}

// Wait blocks until every handle requested so far has finished its first load,
// or ctx is done. It returns the first load failure; the other handles are still
// waited for so the caller sees a settled set.
func (l *Loader) Wait(ctx context.Context) error {
	var g errgroup.Group
	for _, h := range l.Handles() {
		h := h
		g.Go(func() error {
			select {
			case <-h.Done():
				if err := h.Err(); err != nil {
					return fmt.Errorf("texture %s: %w", h.Name(), err)
				}
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}

func (l *Loader) decode(h *Handle, seq uint64) {
	img, format, err := l.read(h.Name())
	if err != nil {
		logger.Warn("texture load failed", zap.String("name", h.Name()), zap.Error(err))
	} else {
		b := img.Bounds()
		logger.Debug("texture decoded",
			zap.String("name", h.Name()),
			zap.String("format", format),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
		)
	}
	if !h.resolve(seq, img, err) {
		logger.Debug("texture result superseded", zap.String("name", h.Name()), zap.Uint64("seq", seq))
	}
}

func (l *Loader) read(name string) (*image.RGBA, string, error) {
	data, err := l.src.Load(name)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return ToRGBA(img), format, nil
}

// ToRGBA converts any image to a tightly packed *image.RGBA with origin (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
