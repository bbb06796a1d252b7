// Package scene provides the scene graph: transform nodes, meshes, materials and lights.
//
// The graph is built once and mutated only from the render thread. Texture handles
// referenced by materials resolve in the background; the renderer polls them.
package scene

import (
	"github.com/Faultbox/orrery/internal/engine/lighting"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/pkg/math"
)

// Scene is the root of everything drawn in a frame.
type Scene struct {
	Root *Node

	// Background is drawn behind everything when set.
	Background *texture.CubeMap

	// Lighting
	Ambient     lighting.AmbientLight
	PointLights []lighting.PointLight
}

// New creates an empty scene with no lights.
func New() *Scene {
	return &Scene{Root: NewNode("root")}
}

// Add attaches nodes to the scene root.
func (s *Scene) Add(nodes ...*Node) {
	for _, n := range nodes {
		s.Root.Add(n)
	}
}

// AddPointLight adds a point light to the scene.
func (s *Scene) AddPointLight(l lighting.PointLight) {
	s.PointLights = append(s.PointLights, l)
}

// DrawItem is a mesh with its resolved world transform.
type DrawItem struct {
	Node  *Node
	World math.Mat4
}

// DrawList returns every visible mesh with its world transform, in graph order.
func (s *Scene) DrawList() []DrawItem {
	var items []DrawItem
	s.Root.Traverse(func(n *Node, world math.Mat4) {
		if n.Mesh != nil {
			items = append(items, DrawItem{Node: n, World: world})
		}
	})
	return items
}

// Textures returns every distinct texture handle used by the scene, background faces included.
func (s *Scene) Textures() []*texture.Handle {
	seen := make(map[*texture.Handle]bool)
	var out []*texture.Handle
	add := func(h *texture.Handle) {
		if h != nil && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	s.Root.Traverse(func(n *Node, _ math.Mat4) {
		if n.Mesh != nil && n.Mesh.Material != nil {
			add(n.Mesh.Material.Map)
		}
	})
	if s.Background != nil {
		for _, f := range s.Background.Faces {
			add(f)
		}
	}
	return out
}
