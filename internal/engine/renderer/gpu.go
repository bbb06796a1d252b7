package renderer

import (
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/engine/geometry"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/internal/logger"
)

type gpuMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

func uploadMesh(g *geometry.Geometry) *gpuMesh {
	m := &gpuMesh{indexCount: int32(len(g.Indices))}
	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return m
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	// VBO
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(geometry.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Vertices)*vertexSize, unsafe.Pointer(&g.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	// EBO
	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m
}

func (m *gpuMesh) draw() {
	if m.vao == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (m *gpuMesh) destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

// gpuTexture tracks which handle version is on the GPU.
type gpuTexture struct {
	id      uint32
	version uint64
}

func (t *gpuTexture) destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
	}
}

// newPlaceholder uploads the 1x1 white texture bound while real textures load.
func (r *Renderer) newPlaceholder() uint32 {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return r.texture(texture.NewReadyHandle("placeholder", img))
}

// texture returns the GL texture for a ready handle, uploading it when the
// handle has resolved since the last upload.
func (r *Renderer) texture(h *texture.Handle) uint32 {
	// Version is read first so a concurrent reload is picked up next frame.
	v := h.Version()
	img := h.Image()
	if img == nil || img.Bounds().Empty() {
		return r.placeholder
	}

	t, ok := r.textures[h]
	if !ok {
		t = &gpuTexture{}
		gl.GenTextures(1, &t.id)
		r.textures[h] = t
	}
	if v != t.version {
		b := img.Bounds()
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
			int32(b.Dx()), int32(b.Dy()),
			0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

		t.version = v
		logger.Debug("texture uploaded",
			zap.String("name", h.Name()),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
			zap.Uint64("version", v),
		)
	}
	return t.id
}

// cubeTexture returns the GL cube map once every face is ready, 0 before that.
func (r *Renderer) cubeTexture(c *texture.CubeMap) uint32 {
	if c.State() != texture.Ready {
		return 0
	}
	if r.skybox == nil {
		r.skybox = &gpuTexture{}
		gl.GenTextures(1, &r.skybox.id)
	}
	if v := c.Version(); v != r.skybox.version {
		faces := c.SquareFaces()
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, r.skybox.id)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		for i, img := range faces {
			size := int32(img.Bounds().Dx())
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
				size, size, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		}
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

		r.skybox.version = v
		logger.Debug("cube map uploaded", zap.Int("size", faces[0].Bounds().Dx()), zap.Uint64("version", v))
	}
	return r.skybox.id
}
