// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Rect is an axis-aligned rectangle with an origin and a size.
type Rect struct {
	X, Y, W, H float32
}

// NewRect returns the rectangle (x, y, w, h).
func NewRect(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// X2 returns the right edge.
func (r Rect) X2() float32 { return r.X + r.W }

// Y2 returns the top edge.
func (r Rect) Y2() float32 { return r.Y + r.H }

// Position returns the origin corner.
func (r Rect) Position() Vec2 { return Vec2{r.X, r.Y} }

// Extent returns the corner opposite the origin.
func (r Rect) Extent() Vec2 { return Vec2{r.X2(), r.Y2()} }

// Size returns the width and height.
func (r Rect) Size() Vec2 { return Vec2{r.W, r.H} }

// IsZero reports whether every field is zero.
func (r Rect) IsZero() bool { return r == Rect{} }

// Color is a linear RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Transparent = Color{1, 1, 1, 0}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
)

// Vec4 returns the colour as a vector.
func (c Color) Vec4() Vec4 { return Vec4{c.R, c.G, c.B, c.A} }

func (c Color) String() string {
	return fmt.Sprintf("Color(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

// ErrUnsupportedFormat is returned by DecodeImage for formats without a decoder.
var ErrUnsupportedFormat = fmt.Errorf("unsupported image format")

// ImageData holds decoded RGBA pixel data ready for a texture upload.
type ImageData struct {
	// Pixels is tightly packed RGBA, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the image width in pixels.
	Width int
	// Height is the image height in pixels.
	Height int
}

// DecodeImage decodes a PNG, BMP or WebP image to RGBA and optionally flips
// it vertically so the first row of pixels is the bottom of the image.
// The format is picked from the file extension in name.
//
// Parameters:
//   - r: source of the encoded image bytes
//   - name: file name used to select the decoder
//   - flip: whether to flip rows top-to-bottom
//
// Returns:
//   - ImageData: the decoded pixels
//   - error: ErrUnsupportedFormat for unknown extensions, or the decoder error
func DecodeImage(r io.Reader, name string, flip bool) (ImageData, error) {
	var (
		img image.Image
		err error
	)
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".png"):
		img, err = png.Decode(r)
	case strings.HasSuffix(lower, ".bmp"):
		img, err = bmp.Decode(r)
	case strings.HasSuffix(lower, ".webp"):
		img, err = webp.Decode(r)
	default:
		return ImageData{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	return ImageToRGBA(img, flip), nil
}

// ImageToRGBA converts any image to tightly packed RGBA pixels.
func ImageToRGBA(img image.Image, flip bool) ImageData {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	pix := rgba.Pix
	if flip {
		pix = FlipRows(pix, w, h)
	}
	return ImageData{Pixels: pix, Width: w, Height: h}
}

// FlipRows returns a copy of RGBA pixels with the row order reversed.
func FlipRows(pix []byte, width, height int) []byte {
	stride := width * 4
	out := make([]byte, len(pix))
	for y := 0; y < height; y++ {
		src := pix[y*stride : (y+1)*stride]
		copy(out[(height-1-y)*stride:], src)
	}
	return out
}
