package rendertest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
)

const vertexSource = `
//@oxy:include vertex
//@oxy:include render_uniforms
//@oxy:group 0 0 storage_uniform uniforms render_uniforms

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = uniforms.ProjectionMatrix * uniforms.ViewMatrix * uniforms.ModelMatrix * in.position;
    out.uv = in.uv;
    out.color = in.color;
    return out;
}
`

const fragmentSource = `
//@oxy:include render_uniforms
//@oxy:group 0 0 storage_uniform uniforms render_uniforms

@group(1) @binding(0) var Tex: texture_2d<f32>;
@group(1) @binding(1) var TexSampler: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>, @location(1) color: vec4<f32>) -> @location(0) vec4<f32> {
    return textureSample(Tex, TexSampler, uv) * uniforms.TintColor * color;
}
`

// NewPipeline builds a textured pipeline with the stock vertex and uniform layout.
// It panics if the embedded sources fail to compile.
func NewPipeline(key string) pipeline.Pipeline {
	p, err := pipeline.NewPipeline(key,
		pipeline.WithVertexShader(shader.MustShaderFromSource(key+"_vs", shader.ShaderTypeVertex, vertexSource)),
		pipeline.WithFragmentShader(shader.MustShaderFromSource(key+"_fs", shader.ShaderTypeFragment, fragmentSource)),
	)
	if err != nil {
		panic(fmt.Sprintf("rendertest: %v", err))
	}
	return p
}
