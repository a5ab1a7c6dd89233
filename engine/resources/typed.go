package resources

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/engine/audio"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/text"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
)

// As loads path and asserts the result to T.
//
// Parameters:
//   - c: the resource context
//   - kind: the resource kind
//   - path: the file path
//   - lifespan: the lifespan for a newly loaded object
//
// Returns:
//   - T: the typed object
//   - error: the load error, or ErrWrongType
func As[T any](c Context, kind Kind, path, lifespan string) (T, error) {
	var zero T
	v, err := c.Load(kind, path, lifespan)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s %s is %T, want %T", ErrWrongType, kind, path, v, zero)
	}
	return t, nil
}

// Texture loads an image file as a texture.
func Texture(c Context, path, lifespan string) (texture.Texture, error) {
	return As[texture.Texture](c, KindTexture, path, lifespan)
}

// Pipeline loads a shader definition file as a pipeline.
func Pipeline(c Context, path, lifespan string) (pipeline.Pipeline, error) {
	return As[pipeline.Pipeline](c, KindShader, path, lifespan)
}

// YAML loads a YAML file as a Document.
func YAML(c Context, path, lifespan string) (*Document, error) {
	return As[*Document](c, KindYAML, path, lifespan)
}

// Sound loads a sound file as a fully decoded clip.
func Sound(c Context, path, lifespan string) (audio.Clip, error) {
	return As[audio.Clip](c, KindSound, path, lifespan)
}

// Music opens a sound file as a stream.
func Music(c Context, path, lifespan string) (audio.Stream, error) {
	return As[audio.Stream](c, KindMusic, path, lifespan)
}

// Font loads a TrueType or OpenType file as a bitmap font.
func Font(c Context, path, lifespan string) (text.BitmapFont, error) {
	return As[text.BitmapFont](c, KindFont, path, lifespan)
}
