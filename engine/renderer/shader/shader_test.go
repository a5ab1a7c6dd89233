package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testVertexSource = `
//@oxy:include vertex
//@oxy:include render_uniforms
//@oxy:group 0 0 storage_uniform uniforms render_uniforms

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = uniforms.ProjectionMatrix * uniforms.ViewMatrix * uniforms.ModelMatrix * in.position;
    out.uv = in.uv;
    return out;
}
`

const testFragmentSource = `
//@oxy:include render_uniforms
//@oxy:group 0 0 storage_uniform uniforms render_uniforms

@group(1) @binding(0) var Tex: texture_2d<f32>;
@group(1) @binding(1) var TexSampler: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(Tex, TexSampler, uv) * uniforms.TintColor;
}
`

func TestVertexShaderLayout(t *testing.T) {
	s, err := NewShaderFromSource("test_vs", ShaderTypeVertex, testVertexSource)
	if err != nil {
		t.Fatalf("NewShaderFromSource: %v", err)
	}
	if s.EntryPoint() != "vs_main" {
		t.Errorf("EntryPoint = %q", s.EntryPoint())
	}

	layout, ok := s.VertexLayout()
	if !ok {
		t.Fatal("no vertex layout parsed")
	}
	if layout.Stride != 52 {
		t.Errorf("Stride = %d, want 52", layout.Stride)
	}

	want := []VertexAttribute{
		{Location: 0, Format: VertexFormatFloat32x4, Offset: 0},
		{Location: 1, Format: VertexFormatFloat32x3, Offset: 16},
		{Location: 2, Format: VertexFormatFloat32x2, Offset: 28},
		{Location: 3, Format: VertexFormatFloat32x4, Offset: 36},
	}
	if len(layout.Attributes) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(layout.Attributes), len(want))
	}
	for i, a := range layout.Attributes {
		if a != want[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, a, want[i])
		}
	}
}

func TestUniformBlockOffsets(t *testing.T) {
	s, err := NewShaderFromSource("test_vs", ShaderTypeVertex, testVertexSource)
	if err != nil {
		t.Fatalf("NewShaderFromSource: %v", err)
	}

	blocks := s.UniformBlocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d uniform blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Size != 208 {
		t.Errorf("Size = %d, want 208", b.Size)
	}
	if b.Binding.Name != "uniforms" || b.Binding.Kind != BindingUniform {
		t.Errorf("binding = %+v", b.Binding)
	}

	tests := []struct {
		name   string
		offset uint64
		size   uint64
	}{
		{UniformModelMatrix, 0, 64},
		{UniformViewMatrix, 64, 64},
		{UniformProjectionMatrix, 128, 64},
		{UniformTintColor, 192, 16},
	}
	for _, tt := range tests {
		f, ok := b.Field(tt.name)
		if !ok {
			t.Errorf("field %s missing", tt.name)
			continue
		}
		if f.Offset != tt.offset || f.Size != tt.size {
			t.Errorf("%s = offset %d size %d, want %d/%d", tt.name, f.Offset, f.Size, tt.offset, tt.size)
		}
	}
}

func TestFragmentShaderBindings(t *testing.T) {
	s, err := NewShaderFromSource("test_fs", ShaderTypeFragment, testFragmentSource)
	if err != nil {
		t.Fatalf("NewShaderFromSource: %v", err)
	}
	if _, ok := s.VertexLayout(); ok {
		t.Error("fragment shader reported a vertex layout")
	}

	got := s.Bindings()
	want := []struct {
		group, binding uint32
		name           string
		kind           BindingKind
	}{
		{0, 0, "uniforms", BindingUniform},
		{1, 0, "Tex", BindingTexture},
		{1, 1, "TexSampler", BindingSampler},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d bindings, want %d", len(got), len(want))
	}
	for i, w := range want {
		b := got[i]
		if b.Group != w.group || b.Binding != w.binding || b.Name != w.name || b.Kind != w.kind {
			t.Errorf("binding %d = %+v", i, b)
		}
		if b.Visibility != StageFragment {
			t.Errorf("binding %d visibility = %v", i, b.Visibility)
		}
	}
	if got[0].MinSize != 208 {
		t.Errorf("uniform MinSize = %d, want 208", got[0].MinSize)
	}
}

func TestInvalidSourceRejected(t *testing.T) {
	tests := []struct {
		name       string
		shaderType ShaderType
		source     string
	}{
		{"syntax", ShaderTypeVertex, "fn broken( {"},
		{"undeclared identifier", ShaderTypeFragment, "@fragment fn fs_main() -> @location(0) vec4<f32> { return missing; }"},
		{"wrong stage", ShaderTypeFragment, testVertexSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShaderFromSource(tt.name, tt.shaderType, tt.source)
			if !errors.Is(err, ErrInvalidShader) {
				t.Errorf("err = %v, want ErrInvalidShader", err)
			}
		})
	}
}

func TestPreProcessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown include", "//@oxy:include lights"},
		{"unknown address space", "//@oxy:group 0 0 storage_push uniforms render_uniforms"},
		{"short group", "//@oxy:group 0 0 storage_uniform"},
		{"bad group number", "//@oxy:group x 0 storage_uniform uniforms render_uniforms"},
		{"unknown annotation", "//@oxy:provider 1 0 material"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPreProcessor().Process(tt.source); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include vertex\n//@oxy:include vertex\n//@oxy:group 0 0 storage_uniform u render_uniforms")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n := strings.Count(out, "struct VertexInput"); n != 1 {
		t.Errorf("VertexInput injected %d times", n)
	}
	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> u: RenderUniforms;") {
		t.Errorf("group declaration missing from output:\n%s", out)
	}
	if decls := pp.Declarations(); len(decls) != 1 || *decls[0].Group != 0 {
		t.Errorf("Declarations = %+v", decls)
	}
}

func TestNewShaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.vert.wgsl")
	if err := os.WriteFile(path, []byte(testVertexSource), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewShader("file_vs", ShaderTypeVertex, path)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.Key() != "file_vs" || s.ShaderType() != ShaderTypeVertex {
		t.Errorf("Key/Type = %q/%v", s.Key(), s.ShaderType())
	}

	if _, err := NewShader("missing", ShaderTypeVertex, filepath.Join(t.TempDir(), "nope.wgsl")); err == nil {
		t.Error("missing file did not error")
	}
}
