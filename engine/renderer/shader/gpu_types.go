package shader

import (
	_ "embed"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Attribute slots: 0 position vec4, 1 normal vec3, 2 uv vec2, 3 color vec4.
// Packed stride: 52 bytes.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPURenderUniformsSource is the canonical WGSL definition of the RenderUniforms struct
// consumed by every stock program.
// Size: 208 bytes (three mat4x4<f32> followed by a vec4<f32>).
//
//go:embed assets/render_uniforms.wgsl
var GPURenderUniformsSource string

// Uniform names shared by the stock programs.
const (
	UniformModelMatrix      = "ModelMatrix"
	UniformViewMatrix       = "ViewMatrix"
	UniformProjectionMatrix = "ProjectionMatrix"
	UniformTintColor        = "TintColor"
)
