// Package geometry builds CPU-side meshes for spheres, rings and the skybox cube.
package geometry

import (
	gomath "math"
)

// Vertex is one mesh vertex as uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Geometry holds indexed triangle data ready for upload.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Sphere builds a UV sphere centred at the origin. Texture V runs from the north pole (0)
// to the south pole (1), so an equirectangular image maps with its top row at +Y.
func Sphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	g := &Geometry{Bounds: emptyBounds()}
	g.Vertices = make([]Vertex, 0, (widthSegments+1)*(heightSegments+1))

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		theta := v * gomath.Pi
		sinTheta, cosTheta := gomath.Sincos(theta)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			sinPhi, cosPhi := gomath.Sincos(u * 2 * gomath.Pi)

			n := [3]float32{
				float32(-cosPhi * sinTheta),
				float32(cosTheta),
				float32(sinPhi * sinTheta),
			}
			pos := [3]float32{n[0] * radius, n[1] * radius, n[2] * radius}
			g.Bounds.extend(pos)
			g.Vertices = append(g.Vertices, Vertex{
				Position: pos,
				Normal:   n,
				TexCoord: [2]float32{float32(u), float32(v)},
			})
		}
	}

	row := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*row + uint32(ix) + 1
			b := uint32(iy)*row + uint32(ix)
			c := uint32(iy+1)*row + uint32(ix)
			d := uint32(iy+1)*row + uint32(ix) + 1

			// The pole rows collapse to a point, so each contributes one triangle per segment.
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// Ring builds a flat annulus in the XY plane facing +Z.
// Texture coordinates project the ring onto a square spanning the outer radius.
func Ring(inner, outer float32, thetaSegments int) *Geometry {
	thetaSegments = max(thetaSegments, 3)

	g := &Geometry{Bounds: emptyBounds()}
	g.Vertices = make([]Vertex, 0, 2*(thetaSegments+1))

	for _, r := range [2]float32{inner, outer} {
		for i := 0; i <= thetaSegments; i++ {
			sin, cos := gomath.Sincos(float64(i) / float64(thetaSegments) * 2 * gomath.Pi)
			x := r * float32(cos)
			y := r * float32(sin)
			pos := [3]float32{x, y, 0}
			g.Bounds.extend(pos)
			g.Vertices = append(g.Vertices, Vertex{
				Position: pos,
				Normal:   [3]float32{0, 0, 1},
				TexCoord: [2]float32{(x/outer + 1) / 2, 1 - (y/outer+1)/2},
			})
		}
	}

	next := uint32(thetaSegments + 1)
	for i := uint32(0); i < uint32(thetaSegments); i++ {
		a, d := i, i+1
		b, c := i+next, i+next+1
		g.Indices = append(g.Indices, a, b, d, b, c, d)
	}
	return g
}

// Box builds an axis-aligned cube of the given edge length. Normals point outward.
// The skybox only reads positions.
func Box(size float32) *Geometry {
	h := size / 2
	g := &Geometry{Bounds: emptyBounds()}

	for i := 0; i < 8; i++ {
		pos := [3]float32{-h, -h, -h}
		if i&1 != 0 {
			pos[0] = h
		}
		if i&2 != 0 {
			pos[1] = h
		}
		if i&4 != 0 {
			pos[2] = h
		}
		g.Bounds.extend(pos)
		g.Vertices = append(g.Vertices, Vertex{
			Position: pos,
			Normal:   normalize(pos),
		})
	}

	// Two triangles per face, counter-clockwise seen from outside.
	g.Indices = []uint32{
		1, 3, 7, 1, 7, 5, // +X
		0, 4, 6, 0, 6, 2, // -X
		2, 6, 7, 2, 7, 3, // +Y
		0, 1, 5, 0, 5, 4, // -Y
		4, 5, 7, 4, 7, 6, // +Z
		0, 2, 3, 0, 3, 1, // -Z
	}
	return g
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

func (b *Bounds) extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

func normalize(v [3]float32) [3]float32 {
	l := float32(gomath.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 1e-6 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
