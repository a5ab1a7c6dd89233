package sprite

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
)

//go:embed assets/sprite_vertex.wgsl
var vertexSource string

//go:embed assets/sprite_fragment.wgsl
var fragmentSource string

// NewDefaultPipeline compiles the stock sprite program: vertex colour times the texture
// bound as Tex times TintColor, alpha blended.
//
// Parameters:
//   - key: the pipeline key, also used to name its shaders
//
// Returns:
//   - pipeline.Pipeline: the linked pipeline
//   - error: an error if either stage fails to compile or link
func NewDefaultPipeline(key string) (pipeline.Pipeline, error) {
	vs, err := shader.NewShaderFromSource(key+"_vs", shader.ShaderTypeVertex, vertexSource)
	if err != nil {
		return nil, fmt.Errorf("sprite pipeline %s: %w", key, err)
	}
	fs, err := shader.NewShaderFromSource(key+"_fs", shader.ShaderTypeFragment, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("sprite pipeline %s: %w", key, err)
	}
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBlendMode(pipeline.BlendAlpha),
	)
}
