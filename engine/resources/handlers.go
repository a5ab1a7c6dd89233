package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/audio"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy2d/engine/text"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize is the point size fonts are rasterized at by the default font handler.
const DefaultFontSize = 16

// textureHandler decodes images off the main goroutine and uploads them in Finish.
type textureHandler struct {
	r       renderer.Renderer
	options []texture.TextureBuilderOption
}

type decodedImage struct {
	path string
	data common.ImageData
}

// NewTextureHandler loads PNG, BMP and WebP files as textures, flipped so the first row is
// at the bottom.
//
// Parameters:
//   - r: the renderer that owns the textures
//   - options: texture options applied to every loaded texture
//
// Returns:
//   - Handler: the texture handler
func NewTextureHandler(r renderer.Renderer, options ...texture.TextureBuilderOption) Handler {
	return &textureHandler{r: r, options: options}
}

func (h *textureHandler) Decode(path string) (any, error) {
	data, err := texture.Decode(path)
	if err != nil {
		return nil, err
	}
	return decodedImage{path: path, data: data}, nil
}

func (h *textureHandler) Finish(decoded any) (any, error) {
	img := decoded.(decodedImage)
	opts := append([]texture.TextureBuilderOption{texture.WithLabel(filepath.Base(img.path))}, h.options...)
	return texture.FromData(h.r, img.data, opts...)
}

// shaderDefinition is the YAML layout of a shader program. Stage paths are relative to the
// definition file.
type shaderDefinition struct {
	Name    string `yaml:"name"`
	Shaders struct {
		Vertex   string `yaml:"vertex"`
		Fragment string `yaml:"fragment"`
	} `yaml:"shaders"`
	Blend string `yaml:"blend"`
}

type decodedShader struct {
	name   string
	vertex shader.Shader
	frag   shader.Shader
	blend  pipeline.BlendMode
}

type shaderHandler struct{}

// NewShaderHandler loads shader definition files into pipelines:
//
//	name: sprite
//	shaders:
//	  vertex: sprite_vertex.wgsl
//	  fragment: sprite_fragment.wgsl
//	blend: alpha # optional: alpha, additive or none
func NewShaderHandler() Handler {
	return shaderHandler{}
}

func (shaderHandler) Decode(path string) (any, error) {
	doc, err := ReadDocument(path, "name", "shaders")
	if err != nil {
		return nil, err
	}
	var def shaderDefinition
	if err := doc.Decode(&def); err != nil {
		return nil, err
	}
	if def.Name == "" || def.Shaders.Vertex == "" || def.Shaders.Fragment == "" {
		return nil, fmt.Errorf("%w: %s needs a name and both vertex and fragment stages", ErrSchema, path)
	}
	blend, err := parseBlend(def.Blend)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	vs, err := shader.NewShader(def.Name+"_vs", shader.ShaderTypeVertex, filepath.Join(dir, def.Shaders.Vertex))
	if err != nil {
		return nil, err
	}
	fs, err := shader.NewShader(def.Name+"_fs", shader.ShaderTypeFragment, filepath.Join(dir, def.Shaders.Fragment))
	if err != nil {
		return nil, err
	}
	return decodedShader{name: def.Name, vertex: vs, frag: fs, blend: blend}, nil
}

func (shaderHandler) Finish(decoded any) (any, error) {
	d := decoded.(decodedShader)
	return pipeline.NewPipeline(d.name,
		pipeline.WithVertexShader(d.vertex),
		pipeline.WithFragmentShader(d.frag),
		pipeline.WithBlendMode(d.blend),
	)
}

func parseBlend(s string) (pipeline.BlendMode, error) {
	switch s {
	case "", "alpha":
		return pipeline.BlendAlpha, nil
	case "additive":
		return pipeline.BlendAdditive, nil
	case "none":
		return pipeline.BlendNone, nil
	default:
		return 0, fmt.Errorf("%w: unknown blend mode %q", ErrSchema, s)
	}
}

// NewYAMLHandler loads YAML files as Documents, rejecting files that lack any of the
// required top-level keys.
//
// Parameters:
//   - required: keys every document must contain
//
// Returns:
//   - Handler: the YAML handler
func NewYAMLHandler(required ...string) Handler {
	return LoaderFunc(func(path string) (any, error) {
		return ReadDocument(path, required...)
	})
}

// NewSoundHandler loads WAV and Ogg Vorbis files fully into audio clips.
func NewSoundHandler() Handler {
	return LoaderFunc(func(path string) (any, error) {
		return audio.LoadClip(path)
	})
}

// NewMusicHandler opens WAV and Ogg Vorbis files as audio streams. Cached streams are
// closed when their lifespan is cleared.
func NewMusicHandler() Handler {
	return LoaderFunc(func(path string) (any, error) {
		return audio.OpenStream(path)
	})
}

// fontHandler parses TrueType and OpenType files off the main goroutine and rasterizes the
// atlas in Finish.
type fontHandler struct {
	r    renderer.Renderer
	size float64
}

// NewFontHandler loads TrueType and OpenType files as bitmap fonts.
//
// Parameters:
//   - r: the renderer that owns the atlases
//   - size: the point size at 72 DPI, so one point is one texel
//
// Returns:
//   - Handler: the font handler
func NewFontHandler(r renderer.Renderer, size float64) Handler {
	return &fontHandler{r: r, size: size}
}

func (h *fontHandler) Decode(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    h.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	return face, nil
}

func (h *fontHandler) Finish(decoded any) (any, error) {
	face := decoded.(font.Face)
	defer face.Close()
	return text.NewBitmapFont(h.r, face)
}
