package solar

import (
	"time"

	"github.com/Faultbox/orrery/internal/config"
)

// Animator applies per-body rotation increments once per tick.
type Animator struct {
	system *System

	mode        string
	speed       float64
	referenceHz float64
	paused      bool
	ticks       uint64
}

// NewAnimator creates an animator for sys using cfg's mode and speed.
// Zero fields mean unset and take the defaults: frame mode, speed 1, 60 Hz.
// Non-positive speed and reference rate also fall back to the defaults.
func NewAnimator(sys *System, cfg config.AnimationConfig) *Animator {
	a := &Animator{
		system:      sys,
		mode:        cfg.Mode,
		speed:       cfg.Speed,
		referenceHz: cfg.ReferenceHz,
	}
	if a.mode == "" {
		a.mode = config.ModeFrame
	}
	if a.speed <= 0 {
		a.speed = 1
	}
	if a.referenceHz <= 0 {
		a.referenceHz = 60
	}
	return a
}

// Scale returns the factor applied to every increment for a tick of length dt.
// In frame mode each tick counts as one frame regardless of dt.
func (a *Animator) Scale(dt time.Duration) float64 {
	if a.mode == config.ModeTime {
		return dt.Seconds() * a.referenceHz * a.speed
	}
	return a.speed
}

// Tick spins every body, the sun included, and revolves every planet's pivot.
func (a *Animator) Tick(dt time.Duration) {
	if a.paused {
		return
	}
	k := a.Scale(dt)

	for _, b := range a.system.Bodies() {
		b.Mesh.RotateY(float32(b.Body.Spin * k))
		if b.Pivot != nil {
			b.Pivot.RotateY(float32(b.Body.Revolution * k))
		}
	}
	a.ticks++
}

// SetPaused stops or resumes the animation. Rendering is unaffected.
func (a *Animator) SetPaused(paused bool) {
	a.paused = paused
}

// TogglePause flips the paused state and returns the new state.
func (a *Animator) TogglePause() bool {
	a.SetPaused(!a.paused)
	return a.paused
}

// Paused reports whether ticks are ignored.
func (a *Animator) Paused() bool {
	return a.paused
}

// Ticks returns how many ticks have been applied.
func (a *Animator) Ticks() uint64 {
	return a.ticks
}
