package shader

import (
	"fmt"
	"os"
)

// ShaderType identifies which pipeline stage a shader provides.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage, which consumes VertexInput and writes clip-space positions.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, paired with a vertex shader in a pipeline.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

// Stage returns the visibility flag matching the shader type.
func (t ShaderType) Stage() Stage {
	if t == ShaderTypeFragment {
		return StageFragment
	}
	return StageVertex
}

// shader is the implementation of the Shader interface.
type shader struct {
	key          string
	source       string
	shaderType   ShaderType
	entryPoint   string
	bindings     []Binding
	uniforms     []UniformBlock
	vertexLayout VertexLayout
	hasVertex    bool

	pp PreProcessor
}

// Shader is a pre-processed, validated WGSL stage together with the layout metadata the
// renderer needs to build a pipeline and the uniform offsets a program needs to stage
// named uniform writes.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source with all @oxy annotations expanded
	Source() string

	// ShaderType returns the stage this shader provides.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Bindings returns every @group/@binding declaration, sorted by group then binding.
	//
	// Returns:
	//   - []Binding: the declared resources
	Bindings() []Binding

	// VertexLayout returns the packed layout of the vertex input struct.
	//
	// Returns:
	//   - VertexLayout: the layout
	//   - bool: false for fragment shaders or vertex shaders without a vertex input struct
	VertexLayout() (VertexLayout, bool)

	// UniformBlocks returns the field layout of every var<uniform> struct binding.
	//
	// Returns:
	//   - []UniformBlock: the uniform blocks in binding order
	UniformBlocks() []UniformBlock

	// Declarations returns the @oxy:group annotations found while pre-processing.
	//
	// Returns:
	//   - []Annotation: the group declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShaderFromSource pre-processes, validates and parses WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage the source must provide
//   - source: the raw WGSL source, which may contain @oxy annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: a pre-processing error or ErrInvalidShader
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, err
	}
	return s, nil
}

// NewShader reads WGSL source from a file and builds a Shader from it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the source must provide
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
//   - error: a read, pre-processing or validation error
func NewShader(key string, shaderType ShaderType, sourcePath string) (Shader, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("shader: %s has no source path", key)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", sourcePath, err)
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// MustShaderFromSource is like NewShaderFromSource but panics on error. It is meant for
// shaders embedded in the binary, where a failure is a programming error.
func MustShaderFromSource(key string, shaderType ShaderType, source string) Shader {
	s, err := NewShaderFromSource(key, shaderType, source)
	if err != nil {
		panic(fmt.Sprintf("shader: %v", err))
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) VertexLayout() (VertexLayout, bool) {
	return s.vertexLayout, s.hasVertex
}

func (s *shader) UniformBlocks() []UniformBlock {
	return s.uniforms
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource expands annotations, validates the result, then extracts the layout
// metadata for the shader's stage.
func (s *shader) parseSource(raw string) error {
	source, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("shader: failed to pre-process %s: %w", s.key, err)
	}
	s.source = source

	entry, err := validateSource(s.key, source, s.shaderType)
	if err != nil {
		return err
	}
	s.entryPoint = entry
	if declared := parseEntryPoint(source, s.shaderType); declared != "" {
		s.entryPoint = declared
	}

	if s.shaderType == ShaderTypeVertex {
		s.vertexLayout, s.hasVertex = parseVertexLayout(source)
	}
	s.bindings, s.uniforms = parseBindings(source, s.shaderType.Stage())
	return nil
}
