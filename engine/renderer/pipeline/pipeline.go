package pipeline

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
)

var (
	// ErrMissingShader is returned when a pipeline is built without a vertex or fragment shader.
	ErrMissingShader = errors.New("pipeline requires a vertex and a fragment shader")

	// ErrNoVertexLayout is returned when the vertex shader declares no vertex input struct.
	ErrNoVertexLayout = errors.New("vertex shader declares no vertex input")

	// ErrUnknownUniform is returned by the uniform setters for names the program does not declare.
	ErrUnknownUniform = errors.New("unknown uniform")

	// ErrUniformType is returned when a value does not match the declared size of a uniform.
	ErrUniformType = errors.New("uniform type mismatch")
)

// BlendMode selects the colour blend equation of a pipeline.
type BlendMode int

const (
	// BlendAlpha is straight alpha blending: src*a + dst*(1-a).
	BlendAlpha BlendMode = iota

	// BlendAdditive adds the source, weighted by its alpha, to the destination.
	BlendAdditive

	// BlendNone writes the source colour unchanged.
	BlendNone
)

// TextureSlot pairs a texture binding with the sampler declared next to it in the same group.
// Slot indices used by Renderer.BindTexture index into Pipeline.TextureSlots.
type TextureSlot struct {
	Group          uint32
	TextureBinding uint32
	SamplerBinding uint32
	Name           string
}

// pipeline is the implementation of the Pipeline interface: a linked vertex and fragment
// shader pair plus the host-side staging bytes of its uniform block.
type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	bindings     []shader.Binding
	uniformBlock shader.UniformBlock
	hasUniforms  bool
	textureSlots []TextureSlot
	blendMode    BlendMode

	// staging holds the uniform block bytes uploaded with every draw.
	staging []byte

	// handle is the backend's compiled pipeline object.
	handle any
}

// Pipeline is a linked shader program. It merges the resource declarations of both stages,
// exposes the texture slots a draw can bind, and stages named uniform writes into the byte
// layout of the program's uniform block.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Shader retrieves the shader of the given stage.
	//
	// Parameters:
	//   - shaderType: shader.ShaderTypeVertex or shader.ShaderTypeFragment
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Bindings returns the union of both stages' bindings, with visibility flags merged.
	//
	// Returns:
	//   - []shader.Binding: the bindings sorted by group then binding
	Bindings() []shader.Binding

	// VertexLayout returns the vertex buffer layout of the vertex stage.
	VertexLayout() shader.VertexLayout

	// UniformBlock returns the layout of the program's uniform block.
	//
	// Returns:
	//   - shader.UniformBlock: the block
	//   - bool: false if neither stage declares a var<uniform> struct
	UniformBlock() (shader.UniformBlock, bool)

	// TextureSlots returns the texture/sampler pairs in group order.
	TextureSlots() []TextureSlot

	// BlendMode returns the colour blend mode.
	BlendMode() BlendMode

	// HasUniform reports whether the uniform block declares a field with this name.
	HasUniform(name string) bool

	// SetMatrix4 stages a mat4x4<f32> uniform. The matrix is written column-major as given.
	//
	// Parameters:
	//   - name: the uniform field name, e.g. "ProjectionMatrix"
	//   - m: the matrix
	//
	// Returns:
	//   - error: ErrUnknownUniform or ErrUniformType
	SetMatrix4(name string, m common.Mat4) error

	// SetVec4 stages a vec4<f32> uniform.
	SetVec4(name string, v common.Vec4) error

	// SetVec3 stages a vec3<f32> uniform.
	SetVec3(name string, v common.Vec3) error

	// SetVec2 stages a vec2<f32> uniform.
	SetVec2(name string, v common.Vec2) error

	// SetFloat stages an f32 uniform.
	SetFloat(name string, v float32) error

	// SetInt stages an i32 uniform.
	SetInt(name string, v int32) error

	// Uniforms returns a copy of the staged uniform block bytes.
	//
	// Returns:
	//   - []byte: the staged bytes, or nil if the program has no uniform block
	Uniforms() []byte

	// Handle returns the backend's compiled pipeline object, or nil if not registered.
	// The caller is responsible for type asserting the returned value.
	Handle() any

	// SetHandle stores the backend's compiled pipeline object.
	SetHandle(h any)
}

var _ Pipeline = &pipeline{}

// NewPipeline links a vertex and a fragment shader into a Pipeline.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - options: functional options; WithVertexShader and WithFragmentShader are required
//
// Returns:
//   - Pipeline: the linked pipeline
//   - error: ErrMissingShader or ErrNoVertexLayout
func NewPipeline(key string, options ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		key:       key,
		blendMode: BlendAlpha,
	}
	for _, opt := range options {
		opt(p)
	}

	if p.vertexShader == nil || p.fragmentShader == nil {
		return nil, fmt.Errorf("pipeline %s: %w", key, ErrMissingShader)
	}
	if _, ok := p.vertexShader.VertexLayout(); !ok {
		return nil, fmt.Errorf("pipeline %s: %w", key, ErrNoVertexLayout)
	}

	p.bindings = mergeBindings(p.vertexShader.Bindings(), p.fragmentShader.Bindings())
	p.textureSlots = collectTextureSlots(p.bindings)

	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if blocks := s.UniformBlocks(); len(blocks) > 0 {
			p.uniformBlock = blocks[0]
			p.hasUniforms = true
			break
		}
	}
	if p.hasUniforms {
		p.staging = make([]byte, p.uniformBlock.Size)
		if p.HasUniform(shader.UniformTintColor) {
			_ = p.SetVec4(shader.UniformTintColor, common.White.Vec4())
		}
		for _, name := range []string{shader.UniformModelMatrix, shader.UniformViewMatrix, shader.UniformProjectionMatrix} {
			if p.HasUniform(name) {
				_ = p.SetMatrix4(name, common.Identity())
			}
		}
	}
	return p, nil
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Bindings() []shader.Binding {
	return p.bindings
}

func (p *pipeline) VertexLayout() shader.VertexLayout {
	layout, _ := p.vertexShader.VertexLayout()
	return layout
}

func (p *pipeline) UniformBlock() (shader.UniformBlock, bool) {
	return p.uniformBlock, p.hasUniforms
}

func (p *pipeline) TextureSlots() []TextureSlot {
	return p.textureSlots
}

func (p *pipeline) BlendMode() BlendMode {
	return p.blendMode
}

func (p *pipeline) HasUniform(name string) bool {
	_, ok := p.uniformBlock.Field(name)
	return ok
}

func (p *pipeline) SetMatrix4(name string, m common.Mat4) error {
	return p.writeFloats(name, m[:])
}

func (p *pipeline) SetVec4(name string, v common.Vec4) error {
	return p.writeFloats(name, v[:])
}

func (p *pipeline) SetVec3(name string, v common.Vec3) error {
	return p.writeFloats(name, v[:])
}

func (p *pipeline) SetVec2(name string, v common.Vec2) error {
	return p.writeFloats(name, v[:])
}

func (p *pipeline) SetFloat(name string, v float32) error {
	return p.writeFloats(name, []float32{v})
}

func (p *pipeline) SetInt(name string, v int32) error {
	f, err := p.field(name, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.staging[f.Offset:], uint32(v))
	return nil
}

func (p *pipeline) Uniforms() []byte {
	if p.staging == nil {
		return nil
	}
	out := make([]byte, len(p.staging))
	copy(out, p.staging)
	return out
}

func (p *pipeline) Handle() any {
	return p.handle
}

func (p *pipeline) SetHandle(h any) {
	p.handle = h
}

// field looks up a uniform and checks that it holds exactly size bytes.
func (p *pipeline) field(name string, size uint64) (shader.UniformField, error) {
	f, ok := p.uniformBlock.Field(name)
	if !ok {
		return shader.UniformField{}, fmt.Errorf("pipeline %s: %w %q", p.key, ErrUnknownUniform, name)
	}
	if f.Size != size {
		return shader.UniformField{}, fmt.Errorf("pipeline %s: %w: %q is %s (%d bytes), got %d bytes", p.key, ErrUniformType, name, f.TypeName, f.Size, size)
	}
	return f, nil
}

func (p *pipeline) writeFloats(name string, values []float32) error {
	f, err := p.field(name, uint64(len(values)*4))
	if err != nil {
		return err
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(p.staging[f.Offset+uint64(i*4):], math.Float32bits(v))
	}
	return nil
}

// mergeBindings unions the bindings of two stages. A binding declared by both stages keeps
// the first declaration and ORs the visibility flags.
func mergeBindings(a, b []shader.Binding) []shader.Binding {
	type slot struct{ group, binding uint32 }
	index := make(map[slot]int, len(a)+len(b))
	merged := make([]shader.Binding, 0, len(a)+len(b))

	for _, list := range [][]shader.Binding{a, b} {
		for _, bd := range list {
			k := slot{bd.Group, bd.Binding}
			if i, ok := index[k]; ok {
				merged[i].Visibility |= bd.Visibility
				if bd.MinSize > merged[i].MinSize {
					merged[i].MinSize = bd.MinSize
				}
				continue
			}
			index[k] = len(merged)
			merged = append(merged, bd)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Group != merged[j].Group {
			return merged[i].Group < merged[j].Group
		}
		return merged[i].Binding < merged[j].Binding
	})
	return merged
}

// collectTextureSlots pairs each texture binding with the first sampler in the same group.
func collectTextureSlots(bindings []shader.Binding) []TextureSlot {
	var slots []TextureSlot
	for _, tex := range bindings {
		if tex.Kind != shader.BindingTexture {
			continue
		}
		slot := TextureSlot{Group: tex.Group, TextureBinding: tex.Binding, SamplerBinding: tex.Binding + 1, Name: tex.Name}
		for _, s := range bindings {
			if s.Group == tex.Group && s.Kind == shader.BindingSampler {
				slot.SamplerBinding = s.Binding
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}
