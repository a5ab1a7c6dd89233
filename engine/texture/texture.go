// Package texture wraps renderer textures with their size, sampling options and host pixels.
package texture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"golang.org/x/image/draw"
)

var (
	// ErrReleased is returned by operations on a released texture.
	ErrReleased = errors.New("texture has been released")

	// ErrPixelSize is returned when pixel data does not cover the texture exactly.
	ErrPixelSize = errors.New("pixel data does not match texture size")
)

// texture is the implementation of the Texture interface.
type texture struct {
	mu *sync.Mutex

	r      renderer.Renderer
	handle renderer.TextureHandle
	label  string

	width, height int
	filter        renderer.Filter
	wrap          renderer.Wrap
	mipmaps       bool

	// pixels is the host copy of the RGBA data, nil if never set.
	pixels   []byte
	released bool
}

// Texture is a 2D RGBA image on the GPU. Its Handle identifies it for batching.
type Texture interface {
	// Handle returns the renderer handle. It stays the same across Resize.
	Handle() renderer.TextureHandle

	// Label returns the debug label.
	Label() string

	// Width returns the width in pixels.
	Width() int

	// Height returns the height in pixels.
	Height() int

	// Size returns the width and height in pixels.
	Size() (int, int)

	// Filter returns the sampling filter.
	Filter() renderer.Filter

	// Wrap returns the addressing mode.
	Wrap() renderer.Wrap

	// Pixels returns the host copy of the pixel data, or nil.
	Pixels() []byte

	// Bind binds the texture to a texture slot of the renderer.
	Bind(slot int)

	// Unbind clears the texture slot.
	Unbind(slot int)

	// SetData uploads new pixels covering the whole texture.
	//
	// Parameters:
	//   - pixels: tightly packed RGBA, Width*Height*4 bytes, first row at the bottom
	//
	// Returns:
	//   - error: ErrPixelSize, ErrReleased or a renderer error
	SetData(pixels []byte) error

	// Resize reallocates the texture at a new size under the same handle. Host pixels,
	// when present, are rescaled and re-uploaded.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: ErrReleased or a renderer error
	Resize(width, height int) error

	// RegionToUVs converts a pixel rectangle of the texture to normalized texture coordinates.
	//
	// Parameters:
	//   - region: the rectangle in texels
	//
	// Returns:
	//   - common.Rect: the rectangle with u = x/W, v = y/H, w = rw/W and h = rh/H
	RegionToUVs(region common.Rect) common.Rect

	// Release frees the GPU texture. A second call returns ErrReleased.
	Release() error
}

var _ Texture = &texture{}

// NewTexture allocates a texture on the renderer.
//
// Parameters:
//   - r: the renderer that owns the texture
//   - width, height: the size in pixels
//   - options: variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - Texture: the new texture
//   - error: an error if allocation or the initial upload fails
func NewTexture(r renderer.Renderer, width, height int, options ...TextureBuilderOption) (Texture, error) {
	t := &texture{
		mu:     &sync.Mutex{},
		r:      r,
		label:  "Texture",
		width:  width,
		height: height,
		filter: renderer.FilterNearest,
		wrap:   renderer.WrapClamp,
	}
	for _, opt := range options {
		opt(t)
	}
	if t.pixels != nil && len(t.pixels) != width*height*4 {
		return nil, fmt.Errorf("texture %s: %d bytes for %dx%d: %w", t.label, len(t.pixels), width, height, ErrPixelSize)
	}

	h, err := r.CreateTexture(renderer.TextureDescriptor{
		Label:   t.label,
		Width:   width,
		Height:  height,
		Filter:  t.filter,
		Wrap:    t.wrap,
		Mipmaps: t.mipmaps,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", t.label, err)
	}
	t.handle = h

	if t.pixels != nil {
		if err := r.WriteTexture(h, t.pixels); err != nil {
			r.ReleaseTexture(h)
			return nil, fmt.Errorf("texture %s: %w", t.label, err)
		}
	}
	return t, nil
}

// FromImage creates a texture from any image, flipped so the image's top row is at v = 1.
//
// Parameters:
//   - r: the renderer that owns the texture
//   - img: the source image
//   - options: variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - Texture: the new texture
//   - error: an error if allocation or upload fails
func FromImage(r renderer.Renderer, img image.Image, options ...TextureBuilderOption) (Texture, error) {
	data := common.ImageToRGBA(img, true)
	return NewTexture(r, data.Width, data.Height, append([]TextureBuilderOption{WithPixels(data.Pixels)}, options...)...)
}

func (t *texture) Handle() renderer.TextureHandle {
	return t.handle
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

func (t *texture) Height() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.height
}

func (t *texture) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *texture) Filter() renderer.Filter {
	return t.filter
}

func (t *texture) Wrap() renderer.Wrap {
	return t.wrap
}

func (t *texture) Pixels() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pixels
}

func (t *texture) Bind(slot int) {
	t.r.BindTexture(slot, t.handle)
}

func (t *texture) Unbind(slot int) {
	t.r.UnbindTexture(slot)
}

func (t *texture) SetData(pixels []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if len(pixels) != t.width*t.height*4 {
		return fmt.Errorf("texture %s: %d bytes for %dx%d: %w", t.label, len(pixels), t.width, t.height, ErrPixelSize)
	}
	if err := t.r.WriteTexture(t.handle, pixels); err != nil {
		return fmt.Errorf("texture %s: %w", t.label, err)
	}
	t.pixels = append(t.pixels[:0], pixels...)
	return nil
}

func (t *texture) Resize(width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if width == t.width && height == t.height {
		return nil
	}
	if err := t.r.ResizeTexture(t.handle, width, height); err != nil {
		return fmt.Errorf("texture %s: %w", t.label, err)
	}

	if t.pixels != nil {
		t.pixels = scalePixels(t.pixels, t.width, t.height, width, height, t.filter)
		if err := t.r.WriteTexture(t.handle, t.pixels); err != nil {
			return fmt.Errorf("texture %s: %w", t.label, err)
		}
	}
	t.width, t.height = width, height
	return nil
}

func (t *texture) RegionToUVs(region common.Rect) common.Rect {
	t.mu.Lock()
	w, h := float32(t.width), float32(t.height)
	t.mu.Unlock()

	u := region.X / w
	v := region.Y / h
	u2 := region.X2() / w
	v2 := region.Y2() / h
	return common.Rect{X: u, Y: v, W: u2 - u, H: v2 - v}
}

func (t *texture) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return fmt.Errorf("texture %s: %w", t.label, ErrReleased)
	}
	t.r.ReleaseTexture(t.handle)
	t.released = true
	t.pixels = nil
	return nil
}

// scalePixels resamples RGBA pixels to a new size with x/image/draw.
func scalePixels(pixels []byte, w, h, newW, newH int, filter renderer.Filter) []byte {
	src := &image.RGBA{Pix: pixels, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))

	var scaler draw.Scaler = draw.NearestNeighbor
	if filter == renderer.FilterLinear {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}
