package camera

import (
	"github.com/Carmen-Shannon/oxy2d/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition places the camera's transform.
//
// Parameters:
//   - x, y, z: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.transform.SetPosition(common.Vec3{x, y, z})
	}
}

// WithOrthographic selects an orthographic projection covering width x height units.
//
// Parameters:
//   - width, height: the visible extents in world units
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithOrthographic(width, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = ProjectionOrthographic
		c.width, c.height = width, height
	}
}

// WithPerspective selects a perspective projection.
//
// Parameters:
//   - fov: vertical field of view in radians
//   - aspect: width / height
//   - near, far: clipping plane distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithPerspective(fov, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = ProjectionPerspective
		c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	}
}

// WithDepthRange sets the near and far clipping planes used by both projections.
func WithDepthRange(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near, c.far = near, far
	}
}

// WithController attaches a controller to the camera.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
