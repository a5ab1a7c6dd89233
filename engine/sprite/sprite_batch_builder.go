package sprite

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// SpriteBatchBuilderOption is a functional option for configuring a SpriteBatch.
type SpriteBatchBuilderOption func(*spriteBatch)

// WithCapacity sets the number of quads the batch holds before it flushes.
//
// Parameters:
//   - quads: the capacity in quads, must be positive
//
// Returns:
//   - SpriteBatchBuilderOption: a function that sets the capacity
func WithCapacity(quads int) SpriteBatchBuilderOption {
	return func(b *spriteBatch) {
		b.capacity = quads
	}
}

// WithProjection sets a projection matrix that overrides the camera's.
//
// Parameters:
//   - m: the projection matrix
//
// Returns:
//   - SpriteBatchBuilderOption: a function that sets the projection
func WithProjection(m common.Mat4) SpriteBatchBuilderOption {
	return func(b *spriteBatch) {
		b.projection = m
		b.hasProjection = true
	}
}

// WithCamera sets the camera whose view matrix is used on flush.
func WithCamera(c camera.Camera) SpriteBatchBuilderOption {
	return func(b *spriteBatch) {
		b.camera = c
	}
}

// WithTransform sets the model transform applied to every quad of the batch.
func WithTransform(t transform.Node) SpriteBatchBuilderOption {
	return func(b *spriteBatch) {
		b.transform = t
	}
}

// WithPipeline replaces the stock sprite program. The pipeline must accept the mesh
// vertex layout and expose the ModelMatrix, ViewMatrix, ProjectionMatrix and TintColor
// uniforms and a texture slot at index 0.
//
// Parameters:
//   - p: the custom pipeline
//
// Returns:
//   - SpriteBatchBuilderOption: a function that sets the pipeline
func WithPipeline(p pipeline.Pipeline) SpriteBatchBuilderOption {
	return func(b *spriteBatch) {
		b.pipeline = p
	}
}
