// Package solar builds the solar system scene and animates it.
package solar

import (
	"errors"
	"fmt"
)

// Geometry detail shared by every body.
const (
	SphereSegments = 30
	RingSegments   = 32
)

// Body describes one sphere of the system.
type Body struct {
	Name     string
	Radius   float32
	Texture  string
	Distance float32 // from the sun along +X before any revolution

	// Increments in radians per frame.
	Spin       float64
	Revolution float64 // 0 for the sun

	// Fallback is the hex color drawn until the texture is ready, or if it fails.
	Fallback string

	Ring *Ring
}

// Ring is a flat annulus around a body, coplanar with its orbit.
type Ring struct {
	Inner   float32
	Outer   float32
	Texture string
}

// Sun is the central, self-lit body.
var Sun = Body{Name: "sun", Radius: 16, Texture: "sun.jpg", Spin: 0.004, Fallback: "#ffcc33"}

// Planets lists the orbiting bodies from the inside out.
var Planets = []Body{
	{Name: "mercury", Radius: 3.2, Texture: "mercury.jpg", Distance: 28, Spin: 0.004, Revolution: 0.04, Fallback: "#8c8680"},
	{Name: "venus", Radius: 5.8, Texture: "venus.jpg", Distance: 44, Spin: 0.002, Revolution: 0.015, Fallback: "#d9b77a"},
	{Name: "earth", Radius: 3.2, Texture: "earth.jpg", Distance: 62, Spin: 0.02, Revolution: 0.01, Fallback: "#2f6bb3"},
	{Name: "mars", Radius: 3.2, Texture: "mars.jpg", Distance: 78, Spin: 0.018, Revolution: 0.008, Fallback: "#b5502d"},
	{Name: "jupiter", Radius: 3.2, Texture: "jupiter.jpg", Distance: 100, Spin: 0.04, Revolution: 0.002, Fallback: "#c9a27c"},
	{Name: "saturn", Radius: 10, Texture: "saturn.jpg", Distance: 138, Spin: 0.038, Revolution: 0.0009, Fallback: "#e0c78f",
		Ring: &Ring{Inner: 10, Outer: 20, Texture: "saturn ring.png"}},
	{Name: "uranus", Radius: 7, Texture: "uranus.jpg", Distance: 176, Spin: 0.03, Revolution: 0.0004, Fallback: "#9fd9e0",
		Ring: &Ring{Inner: 7, Outer: 12, Texture: "uranus ring.png"}},
	{Name: "neptune", Radius: 7, Texture: "neptune.jpg", Distance: 200, Spin: 0.032, Revolution: 0.0001, Fallback: "#3f5fcf"},
	{Name: "pluto", Radius: 2.8, Texture: "pluto.jpg", Distance: 210, Spin: 0.008, Revolution: 0.00007, Fallback: "#c2a88a"},
}

// Background is the starfield used for all six cube faces.
const Background = "stars.jpg"

// Validate checks a body table: unique names and textures, positive radii,
// non-negative increments and well-formed rings.
func Validate(sun Body, planets []Body) error {
	var errs []error
	names := make(map[string]bool)
	textures := make(map[string]string)

	claim := func(owner, tex string) {
		if tex == "" {
			errs = append(errs, fmt.Errorf("%s: missing texture", owner))
			return
		}
		if prev, ok := textures[tex]; ok {
			errs = append(errs, fmt.Errorf("%s: texture %q already used by %s", owner, tex, prev))
			return
		}
		textures[tex] = owner
	}

	check := func(b Body, isSun bool) {
		if b.Name == "" {
			errs = append(errs, errors.New("body without a name"))
		} else if names[b.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate name", b.Name))
		}
		names[b.Name] = true

		if b.Radius <= 0 {
			errs = append(errs, fmt.Errorf("%s: radius must be positive, got %v", b.Name, b.Radius))
		}
		if b.Spin < 0 || b.Revolution < 0 {
			errs = append(errs, fmt.Errorf("%s: increments must not be negative", b.Name))
		}
		if isSun && (b.Revolution != 0 || b.Ring != nil || b.Distance != 0) {
			errs = append(errs, fmt.Errorf("%s: the sun neither orbits nor has a ring", b.Name))
		}
		claim(b.Name, b.Texture)

		if r := b.Ring; r != nil {
			if r.Inner <= 0 || r.Inner >= r.Outer {
				errs = append(errs, fmt.Errorf("%s: ring needs 0 < inner < outer, got %v..%v", b.Name, r.Inner, r.Outer))
			}
			claim(b.Name+" ring", r.Texture)
		}
	}

	check(sun, true)
	for _, p := range planets {
		check(p, false)
	}
	return errors.Join(errs...)
}
