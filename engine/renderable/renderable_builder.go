package renderable

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// RenderableBuilderOption is a functional option applied to a renderable during construction via NewRenderable.
type RenderableBuilderOption func(*renderable)

// WithMesh sets the mesh to draw.
func WithMesh(m mesh.Mesh) RenderableBuilderOption {
	return func(r *renderable) {
		r.mesh = m
	}
}

// WithPipeline sets the pipeline used to draw the mesh.
func WithPipeline(p pipeline.Pipeline) RenderableBuilderOption {
	return func(r *renderable) {
		r.pipeline = p
	}
}

// WithTexture sets the texture bound to slot 0.
func WithTexture(t texture.Texture) RenderableBuilderOption {
	return func(r *renderable) {
		r.texture = t
	}
}

// WithTransform sets the model transform.
//
// Parameters:
//   - t: any transform node, e.g. transform.Transform or transform.Transform2D
//
// Returns:
//   - RenderableBuilderOption: a function that applies the transform option to a renderable
func WithTransform(t transform.Node) RenderableBuilderOption {
	return func(r *renderable) {
		r.transform = t
	}
}

// WithTint sets the TintColor uniform.
func WithTint(c common.Color) RenderableBuilderOption {
	return func(r *renderable) {
		r.tint = c
	}
}

// WithActive sets whether the renderable draws.
func WithActive(active bool) RenderableBuilderOption {
	return func(r *renderable) {
		r.active = active
	}
}

// WithTransparent marks the renderable as needing blending.
func WithTransparent(transparent bool) RenderableBuilderOption {
	return func(r *renderable) {
		r.transparent = transparent
	}
}
