package solar

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/geometry"
	"github.com/Faultbox/orrery/internal/engine/lighting"
	"github.com/Faultbox/orrery/internal/engine/scene"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/internal/logger"
	"github.com/Faultbox/orrery/pkg/math"
)

// Planet holds the nodes animated per frame.
type Planet struct {
	Body  Body
	Mesh  *scene.Node // spins about its own Y axis
	Pivot *scene.Node // revolves about the sun, carrying Mesh and any ring; nil for the sun
	Ring  *scene.Node
}

// System is the built scene plus handles to everything that moves.
type System struct {
	Scene   *scene.Scene
	Sun     *Planet
	Planets []*Planet
}

// Bodies returns the sun followed by the planets.
func (s *System) Bodies() []*Planet {
	return append([]*Planet{s.Sun}, s.Planets...)
}

// Planet returns the planet with the given name, or nil.
func (s *System) Planet(name string) *Planet {
	for _, p := range s.Planets {
		if p.Body.Name == name {
			return p
		}
	}
	return nil
}

// Build populates sc with the background, sun, lights and every planet.
// Textures are requested from loader and resolve in the background.
func Build(sc *scene.Scene, loader *texture.Loader, cfg config.LightingConfig) (*System, error) {
	return BuildBodies(sc, loader, cfg, Sun, Planets)
}

// BuildBodies is Build with an explicit body table.
func BuildBodies(sc *scene.Scene, loader *texture.Loader, cfg config.LightingConfig, sun Body, planets []Body) (*System, error) {
	if err := Validate(sun, planets); err != nil {
		return nil, fmt.Errorf("invalid body table: %w", err)
	}

	ambient, err := lighting.ParseColor(cfg.Ambient)
	if err != nil {
		return nil, fmt.Errorf("ambient light: %w", err)
	}
	pointColor, err := lighting.ParseColor(cfg.PointColor)
	if err != nil {
		return nil, fmt.Errorf("point light: %w", err)
	}

	sc.Background = loader.LoadCube([6]string{Background, Background, Background, Background, Background, Background})
	sc.Ambient = lighting.AmbientLight{Color: ambient, Intensity: 1}

	sunFallback, err := lighting.ParseColor(sun.Fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sun.Name, err)
	}
	sunMesh := scene.NewMesh(sun.Name,
		geometry.Sphere(sun.Radius, SphereSegments, SphereSegments),
		scene.NewBasicMaterial(loader.Load(sun.Texture), sunFallback),
	)
	sc.Add(sunMesh)

	// The light sits at the sun's center.
	sc.AddPointLight(lighting.PointLight{
		Color:     pointColor,
		Intensity: cfg.PointIntensity,
		Distance:  cfg.PointDistance,
		Decay:     cfg.PointDecay,
	})

	sys := &System{Scene: sc, Sun: &Planet{Body: sun, Mesh: sunMesh}}
	for _, b := range planets {
		p, err := NewPlanet(b, loader)
		if err != nil {
			return nil, err
		}
		sc.Add(p.Pivot)
		sys.Planets = append(sys.Planets, p)
	}

	logger.Info("solar system built",
		zap.Int("planets", len(sys.Planets)),
		zap.Int("textures", len(sc.Textures())),
		zap.String("ambient", lighting.ColorHex(ambient)),
		zap.String("light", lighting.ColorHex(pointColor)),
	)
	return sys, nil
}

// NewPlanet creates a pivot at the origin holding a lit sphere at the orbital distance
// and, when the body has one, a double-sided ring tilted into the orbital plane.
func NewPlanet(b Body, loader *texture.Loader) (*Planet, error) {
	fallback, err := lighting.ParseColor(b.Fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}

	pivot := scene.NewNode(b.Name + "-pivot")
	mesh := scene.NewMesh(b.Name,
		geometry.Sphere(b.Radius, SphereSegments, SphereSegments),
		scene.NewStandardMaterial(loader.Load(b.Texture), fallback),
	)
	mesh.Position = math.Vec3{X: b.Distance}
	pivot.Add(mesh)

	p := &Planet{Body: b, Mesh: mesh, Pivot: pivot}

	if r := b.Ring; r != nil {
		mat := scene.NewBasicMaterial(loader.Load(r.Texture), fallback)
		mat.DoubleSided = true
		ring := scene.NewMesh(b.Name+"-ring", geometry.Ring(r.Inner, r.Outer, RingSegments), mat)
		ring.Position = math.Vec3{X: b.Distance}
		ring.RotateX(-gomath.Pi / 2)
		pivot.Add(ring)
		p.Ring = ring
	}

	return p, nil
}
