package shader

import (
	"errors"
	"fmt"
	"log"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ErrInvalidShader is returned when WGSL source fails to parse or lower, or lacks the
// entry point its shader type requires.
var ErrInvalidShader = errors.New("invalid shader")

// validateSource runs the WGSL through naga's front end and checks that an entry point of
// the requested stage exists. Parse and lowering failures reject the shader. IR validation
// findings are logged only.
//
// Parameters:
//   - key: the shader key, used in messages
//   - source: the pre-processed WGSL source
//   - shaderType: the stage the shader must provide
//
// Returns:
//   - string: the name of the first entry point of that stage
//   - error: ErrInvalidShader wrapping the naga error
func validateSource(key, source string, shaderType ShaderType) (string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidShader, key, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidShader, key, err)
	}

	if issues, err := naga.Validate(module); err != nil {
		log.Printf("[Shader] %s: validator error: %v", key, err)
	} else {
		for i := range issues {
			log.Printf("[Shader] %s: %v", key, &issues[i])
		}
	}

	want := ir.StageVertex
	if shaderType == ShaderTypeFragment {
		want = ir.StageFragment
	}
	for _, ep := range module.EntryPoints {
		if ep.Stage == want {
			return ep.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s: no %s entry point", ErrInvalidShader, key, shaderType)
}
