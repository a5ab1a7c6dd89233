package transform

import "github.com/Carmen-Shannon/oxy2d/common"

type TransformBuilderOption func(*transformImpl)

// WithPosition sets the initial position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - TransformBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetPosition(common.Vec3{x, y, z})
	}
}

// WithScale sets the initial scale. A zero-length scale is ignored.
//
// Parameters:
//   - x, y, z: scale components
//
// Returns:
//   - TransformBuilderOption: a function that sets the scale
func WithScale(x, y, z float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetScale(common.Vec3{x, y, z})
	}
}

// WithOrientation sets the initial orientation.
func WithOrientation(q common.Quat) TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetOrientation(q)
	}
}

// WithParent attaches the transform to a parent node.
func WithParent(parent Node) TransformBuilderOption {
	return func(t *transformImpl) {
		t.parent = parent
	}
}
