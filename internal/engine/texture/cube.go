package texture

import (
	"context"
	"image"

	"golang.org/x/image/draw"
)

// MaxCubeFaceSize bounds cube-map faces; larger sources are scaled down.
const MaxCubeFaceSize = 2048

// Cube face order, matching GL_TEXTURE_CUBE_MAP_POSITIVE_X + i.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// CubeMap is six face handles forming an all-surrounding background.
type CubeMap struct {
	Faces [6]*Handle
}

// LoadCube requests the six faces in +X, -X, +Y, -Y, +Z, -Z order.
// Repeated names share one handle, so a single starfield image is decoded once.
func (l *Loader) LoadCube(names [6]string) *CubeMap {
	var c CubeMap
	for i, name := range names {
		c.Faces[i] = l.Load(name)
	}
	return &c
}

// State is Failed if any face failed, Pending while any face is pending, else Ready.
func (c *CubeMap) State() State {
	state := Ready
	for _, f := range c.Faces {
		switch f.State() {
		case Failed:
			return Failed
		case Pending:
			state = Pending
		}
	}
	return state
}

// Version is the sum of face versions; it changes whenever any face resolves.
func (c *CubeMap) Version() uint64 {
	var v uint64
	for _, f := range c.Faces {
		v += f.Version()
	}
	return v
}

// Wait blocks until every face finished loading or ctx is done.
func (c *CubeMap) Wait(ctx context.Context) error {
	for _, f := range c.Faces {
		if err := f.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SquareFaces returns the faces scaled to a common square size, as cube maps require.
// Every entry is nil unless all faces are Ready.
func (c *CubeMap) SquareFaces() [6]*image.RGBA {
	var out [6]*image.RGBA
	if c.State() != Ready {
		return out
	}

	size := MaxCubeFaceSize
	for _, f := range c.Faces {
		b := f.Image().Bounds()
		size = min(size, b.Dx(), b.Dy())
	}

	scaled := make(map[*image.RGBA]*image.RGBA, 1)
	for i, f := range c.Faces {
		src := f.Image()
		if s, ok := scaled[src]; ok {
			out[i] = s
			continue
		}
		out[i] = Square(src, size)
		scaled[src] = out[i]
	}
	return out
}

// Square scales img to size×size. Images already that size are returned as is.
func Square(img *image.RGBA, size int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
