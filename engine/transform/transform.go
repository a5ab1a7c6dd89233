package transform

import (
	"log"

	"github.com/Carmen-Shannon/oxy2d/common"
)

// Node is anything that can act as a transform parent.
type Node interface {
	// Matrix returns the node's world matrix.
	Matrix() common.Mat4
}

type transformImpl struct {
	position    common.Vec3
	scale       common.Vec3
	orientation common.Quat

	local common.Mat4
	dirty bool

	parent Node
}

// Transform is a position, scale and orientation with a lazily cached matrix and an optional parent.
// The local matrix is T * R * S and is only recomputed after a mutation. The world matrix is
// parent.Matrix() * local, evaluated on every call so parent changes are always reflected.
type Transform interface {
	Node

	// Position returns the local position.
	//
	// Returns:
	//   - common.Vec3: the position relative to the parent
	Position() common.Vec3

	// WorldPosition returns the position in world space, taking the parent chain into account.
	//
	// Returns:
	//   - common.Vec3: the world-space position
	WorldPosition() common.Vec3

	// SetPosition sets the local position.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p common.Vec3)

	// Scale returns the local scale.
	//
	// Returns:
	//   - common.Vec3: the scale factors
	Scale() common.Vec3

	// SetScale sets the local scale. A vector with (near) zero length is rejected and
	// leaves both the scale and the cached matrix untouched.
	//
	// Parameters:
	//   - s: the new scale
	//
	// Returns:
	//   - bool: true if the scale was applied
	SetScale(s common.Vec3) bool

	// Orientation returns the local orientation.
	//
	// Returns:
	//   - common.Quat: the orientation quaternion
	Orientation() common.Quat

	// SetOrientation replaces the local orientation.
	//
	// Parameters:
	//   - q: the new orientation
	SetOrientation(q common.Quat)

	// Translate moves the transform by v.
	//
	// Parameters:
	//   - v: the offset to add to the position
	//
	// Returns:
	//   - Transform: the receiver, for chaining
	Translate(v common.Vec3) Transform

	// Rescale multiplies the scale component-wise by s. A result with zero length is rejected.
	//
	// Parameters:
	//   - s: the factors to multiply by
	//
	// Returns:
	//   - Transform: the receiver, for chaining
	Rescale(s common.Vec3) Transform

	// Rotate applies rot to the orientation. A local rotation is applied in the transform's
	// own frame (orientation * rot), otherwise in the parent frame (rot * orientation).
	//
	// Parameters:
	//   - rot: the rotation to apply
	//   - local: whether to rotate in local space
	//
	// Returns:
	//   - Transform: the receiver, for chaining
	Rotate(rot common.Quat, local bool) Transform

	// RotateEuler applies a rotation given as pitch (x), yaw (y) and roll (z) in radians.
	RotateEuler(euler common.Vec3, local bool) Transform

	// RotateAxis applies a rotation of angle radians around axis.
	RotateAxis(angle float32, axis common.Vec3, local bool) Transform

	// Up returns the normalized world-space +Y direction of the transform.
	Up() common.Vec3

	// Forward returns the normalized world-space -Z direction of the transform.
	Forward() common.Vec3

	// Right returns the normalized world-space +X direction of the transform.
	Right() common.Vec3

	// LocalMatrix returns T * R * S without the parent.
	LocalMatrix() common.Mat4

	// ToWorld converts a point from this transform's space to world space.
	ToWorld(p common.Vec3) common.Vec3

	// ToLocal converts a world-space point into this transform's space.
	ToLocal(p common.Vec3) common.Vec3

	// Parent returns the parent node, or nil.
	Parent() Node

	// SetParent attaches the transform to parent. The parent is not owned; pass nil to detach.
	//
	// Parameters:
	//   - parent: the new parent node or nil
	SetParent(parent Node)
}

var _ Transform = &transformImpl{}

// NewTransform creates a transform at the origin with unit scale and identity orientation.
//
// Parameters:
//   - options: optional TransformBuilderOption values
//
// Returns:
//   - Transform: the new transform
func NewTransform(options ...TransformBuilderOption) Transform {
	t := &transformImpl{
		scale:       common.Vec3{1, 1, 1},
		orientation: common.QuatIdentity(),
		local:       common.Identity(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *transformImpl) Position() common.Vec3 {
	return t.position
}

func (t *transformImpl) WorldPosition() common.Vec3 {
	if t.parent == nil {
		return t.position
	}
	return t.parent.Matrix().TransformPoint(t.position)
}

func (t *transformImpl) SetPosition(p common.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *transformImpl) Scale() common.Vec3 {
	return t.scale
}

func (t *transformImpl) SetScale(s common.Vec3) bool {
	if s.Dot(s) <= common.Epsilon {
		log.Printf("[Transform] ignoring zero-length scale %v", s)
		return false
	}
	t.scale = s
	t.dirty = true
	return true
}

func (t *transformImpl) Orientation() common.Quat {
	return t.orientation
}

func (t *transformImpl) SetOrientation(q common.Quat) {
	t.orientation = q.Normalize()
	t.dirty = true
}

func (t *transformImpl) Translate(v common.Vec3) Transform {
	t.SetPosition(t.position.Add(v))
	return t
}

func (t *transformImpl) Rescale(s common.Vec3) Transform {
	t.SetScale(t.scale.Mul(s))
	return t
}

func (t *transformImpl) Rotate(rot common.Quat, local bool) Transform {
	if local {
		t.SetOrientation(t.orientation.Mul(rot))
	} else {
		t.SetOrientation(rot.Mul(t.orientation))
	}
	return t
}

func (t *transformImpl) RotateEuler(euler common.Vec3, local bool) Transform {
	return t.Rotate(common.QuatFromEuler(euler), local)
}

func (t *transformImpl) RotateAxis(angle float32, axis common.Vec3, local bool) Transform {
	return t.Rotate(common.QuatFromAxisAngle(axis, angle), local)
}

func (t *transformImpl) Up() common.Vec3 {
	return t.direction(common.Vec3{0, 1, 0})
}

func (t *transformImpl) Forward() common.Vec3 {
	return t.direction(common.Vec3{0, 0, -1})
}

func (t *transformImpl) Right() common.Vec3 {
	return t.direction(common.Vec3{1, 0, 0})
}

func (t *transformImpl) LocalMatrix() common.Mat4 {
	if t.dirty {
		t.local = common.TRS(t.position, t.orientation, t.scale)
		t.dirty = false
	}
	return t.local
}

func (t *transformImpl) Matrix() common.Mat4 {
	local := t.LocalMatrix()
	if t.parent == nil {
		return local
	}
	return t.parent.Matrix().Mul(local)
}

func (t *transformImpl) ToWorld(p common.Vec3) common.Vec3 {
	return t.Matrix().TransformPoint(p)
}

func (t *transformImpl) ToLocal(p common.Vec3) common.Vec3 {
	inv, ok := t.Matrix().Inverse()
	if !ok {
		return p
	}
	return inv.TransformPoint(p)
}

func (t *transformImpl) Parent() Node {
	return t.parent
}

func (t *transformImpl) SetParent(parent Node) {
	t.parent = parent
}

// direction transforms an axis by the world matrix without translation and normalizes it.
func (t *transformImpl) direction(axis common.Vec3) common.Vec3 {
	v := t.Matrix().MulVec4(common.Vec4{axis[0], axis[1], axis[2], 0})
	return common.Vec3{v[0], v[1], v[2]}.Normalize()
}
