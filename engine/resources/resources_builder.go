package resources

import (
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// ContextBuilderOption is a functional option applied to a context during construction via NewContext.
type ContextBuilderOption func(*resourceContext)

// WithWorkers sets how many files Preload decodes at once, default 4.
func WithWorkers(n int) ContextBuilderOption {
	return func(c *resourceContext) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithHandler installs a handler at construction, replacing any earlier one for the kind.
//
// Parameters:
//   - kind: the resource kind
//   - h: the handler
//
// Returns:
//   - ContextBuilderOption: a function that installs the handler
func WithHandler(kind Kind, h Handler) ContextBuilderOption {
	return func(c *resourceContext) {
		c.handlers[kind] = h
	}
}

// WithDefaultHandlers installs the stock handler for every Kind. Textures and fonts are
// uploaded to r.
//
// Parameters:
//   - r: the renderer that owns loaded textures
//
// Returns:
//   - ContextBuilderOption: a function that installs the handlers
func WithDefaultHandlers(r renderer.Renderer) ContextBuilderOption {
	return func(c *resourceContext) {
		c.handlers[KindTexture] = NewTextureHandler(r)
		c.handlers[KindShader] = NewShaderHandler()
		c.handlers[KindYAML] = NewYAMLHandler()
		c.handlers[KindSound] = NewSoundHandler()
		c.handlers[KindMusic] = NewMusicHandler()
		c.handlers[KindFont] = NewFontHandler(r, DefaultFontSize)
	}
}
