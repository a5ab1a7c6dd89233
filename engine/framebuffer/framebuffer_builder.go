package framebuffer

import "github.com/Carmen-Shannon/oxy2d/engine/renderer"

type FramebufferBuilderOption func(*framebuffer)

// WithFilter sets the filter used when the framebuffer is sampled. Defaults to nearest.
func WithFilter(f renderer.Filter) FramebufferBuilderOption {
	return func(fb *framebuffer) {
		fb.filter = f
	}
}
