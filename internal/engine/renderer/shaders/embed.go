// Package shaders embeds the GLSL sources used by the renderer.
package shaders

import _ "embed"

// MeshVertexShader transforms lit and unlit meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// BasicFragmentShader draws texture × tint without lighting.
//
//go:embed basic.frag
var BasicFragmentShader string

// StandardFragmentShader applies ambient and point light diffuse shading.
//
//go:embed standard.frag
var StandardFragmentShader string

// SkyboxVertexShader places the background cube at the far plane.
//
//go:embed skybox.vert
var SkyboxVertexShader string

// SkyboxFragmentShader samples the background cube map.
//
//go:embed skybox.frag
var SkyboxFragmentShader string
