// Package texture provides asynchronous texture loading and image preparation.
//
// A Handle is a future for one decoded image. Loading never blocks the render loop:
// callers look at State each frame and draw a placeholder until the handle is Ready.
package texture

import (
	"context"
	"image"
	"sync"
)

// State is the lifecycle of a Handle.
type State int

const (
	// Pending means the image has not been decoded yet.
	Pending State = iota
	// Ready means Image returns a decoded image.
	Ready
	// Failed means loading or decoding failed; Err explains why.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle is a future for a decoded texture image.
type Handle struct {
	name string

	mu      sync.RWMutex
	state   State
	img     *image.RGBA
	err     error
	version uint64
	latest  uint64 // newest load request

	done     chan struct{}
	doneOnce sync.Once
}

func newHandle(name string) *Handle {
	return &Handle{
		name: name,
		done: make(chan struct{}),
	}
}

// NewReadyHandle wraps an already decoded image. Useful for generated textures.
func NewReadyHandle(name string, img *image.RGBA) *Handle {
	h := newHandle(name)
	h.resolve(h.request(), img, nil)
	return h
}

// Name returns the asset name the handle was loaded from.
func (h *Handle) Name() string {
	return h.name
}

// State returns the current state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Image returns the decoded image, or nil unless Ready.
func (h *Handle) Image() *image.RGBA {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.img
}

// Err returns the load error when Failed.
func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Version increases every time the handle resolves, including reloads.
// Renderers compare it against the version they uploaded.
func (h *Handle) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Done is closed once the first load attempt has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the first load attempt finishes or ctx is done.
// It returns the load error, or the context error on timeout.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// request starts a load and returns its sequence number.
func (h *Handle) request() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest++
	return h.latest
}

// resolve records the outcome of load seq and reports whether it was applied.
// Results of loads superseded by a newer request are dropped. A failed reload
// keeps the previous image.
func (h *Handle) resolve(seq uint64, img *image.RGBA, err error) bool {
	h.mu.Lock()
	if seq < h.latest {
		h.mu.Unlock()
		return false
	}
	switch {
	case err == nil:
		h.state, h.img, h.err = Ready, img, nil
	case h.img != nil:
		h.err = err
	default:
		h.state, h.err = Failed, err
	}
	h.version++
	h.mu.Unlock()

	h.doneOnce.Do(func() { close(h.done) })
	return true
}
