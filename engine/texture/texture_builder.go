package texture

import (
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// TextureBuilderOption is a functional option applied to a texture during construction via NewTexture.
type TextureBuilderOption func(*texture)

// WithPixels sets the initial RGBA contents. The slice is copied.
//
// Parameters:
//   - pixels: tightly packed RGBA, width*height*4 bytes
//
// Returns:
//   - TextureBuilderOption: a function that applies the pixel option to a texture
func WithPixels(pixels []byte) TextureBuilderOption {
	return func(t *texture) {
		t.pixels = append([]byte(nil), pixels...)
	}
}

// WithFilter sets the sampling filter. Textures default to nearest filtering.
func WithFilter(filter renderer.Filter) TextureBuilderOption {
	return func(t *texture) {
		t.filter = filter
	}
}

// WithWrap sets the addressing mode outside [0, 1]. Textures default to clamping.
func WithWrap(wrap renderer.Wrap) TextureBuilderOption {
	return func(t *texture) {
		t.wrap = wrap
	}
}

// WithMipmaps requests a mip chain.
func WithMipmaps(mipmaps bool) TextureBuilderOption {
	return func(t *texture) {
		t.mipmaps = mipmaps
	}
}

// WithLabel sets the debug label.
func WithLabel(label string) TextureBuilderOption {
	return func(t *texture) {
		t.label = label
	}
}
