// Package framebuffer provides offscreen render targets and a low resolution surface that
// is scaled up to the window.
package framebuffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// ErrReleased is returned when using a released framebuffer.
var ErrReleased = errors.New("framebuffer released")

// framebuffer is the implementation of the Framebuffer interface.
type framebuffer struct {
	mu *sync.Mutex

	r             renderer.Renderer
	texture       renderer.TextureHandle
	width, height int
	filter        renderer.Filter

	bound        bool
	prevTarget   renderer.TextureHandle
	prevViewport renderer.Viewport

	released bool
}

// Framebuffer is an offscreen colour target that can be drawn into and then sampled as a
// texture.
type Framebuffer interface {
	// Texture returns the colour texture.
	Texture() renderer.TextureHandle

	// Size returns the size in pixels.
	Size() (int, int)

	// Resize reallocates the colour texture. Its contents are lost.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: ErrReleased or a renderer error
	Resize(width, height int) error

	// Bind redirects subsequent draws into the framebuffer and sets the viewport to cover
	// it. The previous target and viewport are kept for Unbind.
	//
	// Returns:
	//   - error: ErrReleased
	Bind() error

	// Unbind restores the target and viewport that were active at Bind.
	Unbind()

	// Bound reports whether the framebuffer is the current target.
	Bound() bool

	// Release frees the colour texture.
	Release()
}

var _ Framebuffer = &framebuffer{}

// NewFramebuffer allocates a framebuffer.
//
// Parameters:
//   - r: the renderer that owns the target
//   - width, height: the size in pixels
//   - options: variadic list of FramebufferBuilderOption functions to configure the framebuffer
//
// Returns:
//   - Framebuffer: the new framebuffer
//   - error: an error if the size is not positive or the target cannot be created
func NewFramebuffer(r renderer.Renderer, width, height int, options ...FramebufferBuilderOption) (Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer: invalid size %dx%d", width, height)
	}
	fb := &framebuffer{
		mu:     &sync.Mutex{},
		r:      r,
		width:  width,
		height: height,
		filter: renderer.FilterNearest,
	}
	for _, opt := range options {
		opt(fb)
	}
	tex, err := r.CreateRenderTarget(width, height, fb.filter)
	if err != nil {
		return nil, fmt.Errorf("framebuffer %dx%d: %w", width, height, err)
	}
	fb.texture = tex
	return fb, nil
}

func (fb *framebuffer) Texture() renderer.TextureHandle {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.texture
}

func (fb *framebuffer) Size() (int, int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.width, fb.height
}

func (fb *framebuffer) Resize(width, height int) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.released {
		return ErrReleased
	}
	if err := fb.r.ResizeTexture(fb.texture, width, height); err != nil {
		return fmt.Errorf("framebuffer resize: %w", err)
	}
	fb.width, fb.height = width, height
	if fb.bound {
		fb.r.SetViewport(fb.fullViewport())
	}
	return nil
}

func (fb *framebuffer) fullViewport() renderer.Viewport {
	return renderer.Viewport{Width: float32(fb.width), Height: float32(fb.height)}
}

func (fb *framebuffer) Bind() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.released {
		return ErrReleased
	}
	if !fb.bound {
		fb.prevTarget = fb.r.RenderTarget()
		fb.prevViewport = fb.r.Viewport()
		fb.bound = true
	}
	fb.r.SetRenderTarget(fb.texture)
	fb.r.SetViewport(fb.fullViewport())
	return nil
}

func (fb *framebuffer) Unbind() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if !fb.bound {
		return
	}
	fb.r.SetRenderTarget(fb.prevTarget)
	fb.r.SetViewport(fb.prevViewport)
	fb.bound = false
}

func (fb *framebuffer) Bound() bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.bound
}

func (fb *framebuffer) Release() {
	fb.Unbind()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.released {
		return
	}
	fb.r.ReleaseTexture(fb.texture)
	fb.released = true
}
