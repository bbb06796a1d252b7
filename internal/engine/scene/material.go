package scene

import (
	"github.com/Faultbox/orrery/internal/engine/texture"
)

// MaterialKind selects the shading model.
type MaterialKind int

const (
	// Basic is unlit: texture × color.
	Basic MaterialKind = iota
	// Standard is lit by the scene's ambient and point lights.
	Standard
)

// String returns the kind name.
func (k MaterialKind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Standard:
		return "standard"
	default:
		return "unknown"
	}
}

// Material describes how a mesh surface is shaded.
type Material struct {
	Kind MaterialKind

	// Map is the diffuse texture. Nil means untextured.
	Map *texture.Handle

	// Color tints the texture.
	Color [3]float32

	// Fallback is drawn instead of the texture while it is pending or after it failed.
	Fallback [3]float32

	// DoubleSided disables back-face culling.
	DoubleSided bool
}

// NewBasicMaterial creates an unlit textured material.
func NewBasicMaterial(tex *texture.Handle, fallback [3]float32) *Material {
	return &Material{Kind: Basic, Map: tex, Color: [3]float32{1, 1, 1}, Fallback: fallback}
}

// NewStandardMaterial creates a lit textured material.
func NewStandardMaterial(tex *texture.Handle, fallback [3]float32) *Material {
	return &Material{Kind: Standard, Map: tex, Color: [3]float32{1, 1, 1}, Fallback: fallback}
}

// Surface reports whether the texture should be sampled this frame and the tint to apply.
// Without a ready texture the surface is the flat fallback color.
func (m *Material) Surface() (textured bool, tint [3]float32) {
	if m.Map != nil && m.Map.State() == texture.Ready {
		return true, m.Color
	}
	if m.Map == nil {
		return false, m.Color
	}
	return false, m.Fallback
}
