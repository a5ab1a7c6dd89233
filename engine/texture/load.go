package texture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// Decode reads and decodes an image file into flipped RGBA pixels without touching the GPU.
// Supported formats are PNG, BMP and WebP; anything else returns common.ErrUnsupportedFormat.
//
// Parameters:
//   - path: the image file
//
// Returns:
//   - common.ImageData: the decoded pixels, first row at the bottom
//   - error: an error if the file cannot be read or decoded
func Decode(path string) (common.ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return common.ImageData{}, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer f.Close()
	return common.DecodeImage(f, path, true)
}

// Load decodes an image file and uploads it as a texture labelled with the file name.
//
// Parameters:
//   - r: the renderer that owns the texture
//   - path: the image file
//   - options: variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - Texture: the new texture
//   - error: an error if decoding or upload fails
func Load(r renderer.Renderer, path string, options ...TextureBuilderOption) (Texture, error) {
	data, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return FromData(r, data, append([]TextureBuilderOption{WithLabel(filepath.Base(path))}, options...)...)
}

// FromData uploads already decoded pixels as a texture.
func FromData(r renderer.Renderer, data common.ImageData, options ...TextureBuilderOption) (Texture, error) {
	return NewTexture(r, data.Width, data.Height, append([]TextureBuilderOption{WithPixels(data.Pixels)}, options...)...)
}
