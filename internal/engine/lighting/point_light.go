// Package lighting provides ambient and point light descriptions and their GPU layout.
package lighting

import (
	gomath "math"
)

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 8

// AmbientLight lights every surface uniformly.
type AmbientLight struct {
	Color     [3]float32 // RGB color (0-1 range)
	Intensity float32
}

// Radiance returns color × intensity.
func (a AmbientLight) Radiance() [3]float32 {
	return [3]float32{a.Color[0] * a.Intensity, a.Color[1] * a.Intensity, a.Color[2] * a.Intensity}
}

// PointLight emits in all directions from a position.
type PointLight struct {
	Position  [3]float32 // World position
	Color     [3]float32 // RGB color (0-1 range)
	Intensity float32    // Luminous intensity
	Distance  float32    // Cutoff distance; 0 means unlimited
	Decay     float32    // Falloff exponent, 2 is physically based
}

// Attenuation returns the light reaching a point at distance d.
// The shader applies the same formula per fragment.
func (l PointLight) Attenuation(d float32) float32 {
	decay := float64(l.Decay)
	falloff := float32(float64(l.Intensity) / gomath.Max(gomath.Pow(float64(d), decay), 0.01))
	if l.Distance > 0 {
		r := float64(d / l.Distance)
		w := gomath.Min(gomath.Max(1-r*r*r*r, 0), 1)
		falloff *= float32(w * w)
	}
	return falloff
}

// PointLightBuffer holds lights for GPU upload.
type PointLightBuffer struct {
	Lights []PointLight
	Count  int
}

// NewPointLightBuffer creates an empty point light buffer.
func NewPointLightBuffer() *PointLightBuffer {
	return &PointLightBuffer{
		Lights: make([]PointLight, 0, MaxPointLights),
	}
}

// Clear removes all lights from the buffer.
func (b *PointLightBuffer) Clear() {
	b.Lights = b.Lights[:0]
	b.Count = 0
}

// AddLight adds a point light to the buffer.
// Returns false if buffer is full.
func (b *PointLightBuffer) AddLight(light PointLight) bool {
	if b.Count >= MaxPointLights {
		return false
	}
	b.Lights = append(b.Lights, light)
	b.Count++
	return true
}

// SetLights replaces all lights in the buffer.
// Truncates to MaxPointLights if necessary.
func (b *PointLightBuffer) SetLights(lights []PointLight) {
	b.Clear()
	for _, light := range lights {
		if !b.AddLight(light) {
			break
		}
	}
}

// GetPositions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, x1, y1, z1, ...]
func (b *PointLightBuffer) GetPositions() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range b.Lights {
		copy(result[i*3:], light.Position[:])
	}
	return result
}

// GetColors returns color × intensity as a flat float32 slice for GPU upload.
func (b *PointLightBuffer) GetColors() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range b.Lights {
		result[i*3+0] = light.Color[0] * light.Intensity
		result[i*3+1] = light.Color[1] * light.Intensity
		result[i*3+2] = light.Color[2] * light.Intensity
	}
	return result
}

// GetDistances returns cutoff distances as a flat float32 slice for GPU upload.
func (b *PointLightBuffer) GetDistances() []float32 {
	result := make([]float32, MaxPointLights)
	for i, light := range b.Lights {
		result[i] = light.Distance
	}
	return result
}

// GetDecays returns decay exponents as a flat float32 slice for GPU upload.
func (b *PointLightBuffer) GetDecays() []float32 {
	result := make([]float32, MaxPointLights)
	for i, light := range b.Lights {
		result[i] = light.Decay
	}
	return result
}
