// Package renderer draws a scene graph with OpenGL 4.1.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/engine/camera"
	"github.com/Faultbox/orrery/internal/engine/debug"
	"github.com/Faultbox/orrery/internal/engine/framebuffer"
	"github.com/Faultbox/orrery/internal/engine/geometry"
	"github.com/Faultbox/orrery/internal/engine/lighting"
	"github.com/Faultbox/orrery/internal/engine/renderer/shaders"
	"github.com/Faultbox/orrery/internal/engine/scene"
	"github.com/Faultbox/orrery/internal/engine/shader"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/internal/logger"
	"github.com/Faultbox/orrery/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int     // Logical size
	Height     int
	PixelRatio float32 // Drawable pixels per logical pixel
	ClearColor [3]float32
}

// Renderer draws scenes. All methods must be called on the thread that owns the GL context.
type Renderer struct {
	config Config

	basicProgram    *shader.Program
	standardProgram *shader.Program
	skyboxProgram   *shader.Program

	meshes      map[*geometry.Geometry]*gpuMesh
	textures    map[*texture.Handle]*gpuTexture
	skybox      *gpuTexture
	skyboxMesh  *gpuMesh
	placeholder uint32 // owned by textures

	lights *lighting.PointLightBuffer
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	r := &Renderer{
		config:   cfg,
		meshes:   make(map[*geometry.Geometry]*gpuMesh),
		textures: make(map[*texture.Handle]*gpuTexture),
		lights:   lighting.NewPointLightBuffer(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	if r.basicProgram, err = shader.New("basic", shaders.MeshVertexShader, shaders.BasicFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if r.standardProgram, err = shader.New("standard", shaders.MeshVertexShader, shaders.StandardFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if r.skyboxProgram, err = shader.New("skybox", shaders.SkyboxVertexShader, shaders.SkyboxFragmentShader); err != nil {
		r.Close()
		return nil, err
	}

	r.placeholder = r.newPlaceholder()
	r.skyboxMesh = uploadMesh(geometry.Box(2))

	r.SetSize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, m := range r.meshes {
		m.destroy()
	}
	r.meshes = nil
	for _, t := range r.textures {
		t.destroy()
	}
	r.textures = nil
	if r.skybox != nil {
		r.skybox.destroy()
	}
	if r.skyboxMesh != nil {
		r.skyboxMesh.destroy()
	}
	for _, p := range []*shader.Program{r.basicProgram, r.standardProgram, r.skyboxProgram} {
		if p != nil {
			p.Delete()
		}
	}
}

// SetSize sets the logical output size and updates the viewport.
func (r *Renderer) SetSize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	w, h := r.DrawingBufferSize()
	gl.Viewport(0, 0, int32(w), int32(h))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("drawable_width", w),
		zap.Int("drawable_height", h),
	)
}

// SetPixelRatio sets drawable pixels per logical pixel and updates the viewport.
func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	r.config.PixelRatio = ratio
	r.SetSize(r.config.Width, r.config.Height)
}

// Size returns the logical output size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// DrawingBufferSize returns the output size in pixels.
func (r *Renderer) DrawingBufferSize() (int, int) {
	return int(float32(r.config.Width) * r.config.PixelRatio), int(float32(r.config.Height) * r.config.PixelRatio)
}

// Render draws the scene to the current framebuffer.
func (r *Renderer) Render(s *scene.Scene, cam *camera.PerspectiveCamera) {
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	viewProj := cam.ViewProjection()

	r.lights.SetLights(s.PointLights)
	for _, item := range s.DrawList() {
		r.drawMesh(item, s, viewProj)
	}

	if s.Background != nil {
		r.drawSkybox(s.Background, cam)
	}
}

// RenderTo draws the scene into fb, leaving the default framebuffer and viewport unchanged.
func (r *Renderer) RenderTo(fb *framebuffer.Framebuffer, s *scene.Scene, cam *camera.PerspectiveCamera) {
	restore := fb.Bind()
	defer restore()
	r.Render(s, cam)
}

// Capture renders the scene offscreen at the drawing buffer size and returns the image.
func (r *Renderer) Capture(s *scene.Scene, cam *camera.PerspectiveCamera) (*image.RGBA, error) {
	w, h := r.DrawingBufferSize()
	fb, err := framebuffer.New(w, h)
	if err != nil {
		return nil, err
	}
	defer fb.Destroy()

	r.RenderTo(fb, s, cam)
	fw, fh := fb.Size()
	return debug.ImageFromGLPixels(fb.ReadPixels(), fw, fh)
}

func (r *Renderer) drawMesh(item scene.DrawItem, s *scene.Scene, viewProj math.Mat4) {
	mesh := item.Node.Mesh
	if mesh.Geometry == nil || mesh.Material == nil {
		return
	}
	mat := mesh.Material

	program := r.basicProgram
	if mat.Kind == scene.Standard {
		program = r.standardProgram
	}
	program.Use()
	program.SetMat4("uModel", item.World)
	program.SetMat4("uViewProj", viewProj)

	textured, tint := mat.Surface()
	program.SetBool("uUseMap", textured)
	program.SetVec3("uTint", tint)
	program.SetInt("uMap", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	if textured {
		gl.BindTexture(gl.TEXTURE_2D, r.texture(mat.Map))
	} else {
		gl.BindTexture(gl.TEXTURE_2D, r.placeholder)
	}

	if mat.Kind == scene.Standard {
		program.SetBool("uDoubleSided", mat.DoubleSided)
		program.SetVec3("uAmbient", s.Ambient.Radiance())
		program.SetInt("uPointLightCount", int32(r.lights.Count))
		program.SetVec3Array("uPointLightPositions", r.lights.GetPositions())
		program.SetVec3Array("uPointLightColors", r.lights.GetColors())
		program.SetFloatArray("uPointLightDistances", r.lights.GetDistances())
		program.SetFloatArray("uPointLightDecays", r.lights.GetDecays())
	}

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	r.mesh(mesh.Geometry).draw()
}

func (r *Renderer) drawSkybox(cube *texture.CubeMap, cam *camera.PerspectiveCamera) {
	id := r.cubeTexture(cube)
	if id == 0 {
		return
	}

	view := cam.ViewMatrix().WithoutTranslation()
	viewProj := cam.ProjectionMatrix().Mul(view)

	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)

	r.skyboxProgram.Use()
	r.skyboxProgram.SetMat4("uViewProj", viewProj)
	r.skyboxProgram.SetInt("uCube", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	r.skyboxMesh.draw()

	gl.DepthFunc(gl.LESS)
}

func (r *Renderer) mesh(g *geometry.Geometry) *gpuMesh {
	m, ok := r.meshes[g]
	if !ok {
		m = uploadMesh(g)
		r.meshes[g] = m
		logger.Debug("mesh uploaded",
			zap.Int("vertices", len(g.Vertices)),
			zap.Int("triangles", g.TriangleCount()),
		)
	}
	return m
}
