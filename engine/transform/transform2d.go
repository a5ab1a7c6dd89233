package transform

import (
	"log"

	"github.com/Carmen-Shannon/oxy2d/common"
)

type transform2DImpl struct {
	t *transformImpl
}

// Transform2D is a planar transform: a 2D position, a 2D scale and a rotation around +Z.
// It shares the caching and parenting rules of Transform.
type Transform2D interface {
	Node

	// Position returns the local position.
	Position() common.Vec2

	// WorldPosition returns the position after applying the parent chain.
	WorldPosition() common.Vec2

	// SetPosition sets the local position.
	SetPosition(p common.Vec2)

	// Scale returns the local scale.
	Scale() common.Vec2

	// SetScale sets the scale, rejecting a zero-length vector.
	//
	// Parameters:
	//   - s: the new scale
	//
	// Returns:
	//   - bool: true if the scale was applied
	SetScale(s common.Vec2) bool

	// Rotation returns the rotation around +Z in radians.
	Rotation() float32

	// SetRotation sets the rotation around +Z in radians.
	SetRotation(angle float32)

	Translate(v common.Vec2) Transform2D
	Rescale(s common.Vec2) Transform2D
	Rotate(angle float32) Transform2D

	Up() common.Vec3
	Forward() common.Vec3
	Right() common.Vec3

	ToWorld(p common.Vec2) common.Vec2
	ToLocal(p common.Vec2) common.Vec2

	Parent() Node
	SetParent(parent Node)
}

var _ Transform2D = &transform2DImpl{}

// NewTransform2D creates a planar transform at (x, y) with unit scale and no rotation.
//
// Parameters:
//   - x, y: the initial position
//
// Returns:
//   - Transform2D: the new transform
func NewTransform2D(x, y float32) Transform2D {
	t := NewTransform(WithPosition(x, y, 0)).(*transformImpl)
	return &transform2DImpl{t: t}
}

func (t *transform2DImpl) Matrix() common.Mat4 { return t.t.Matrix() }

func (t *transform2DImpl) Position() common.Vec2 { return t.t.position.XY() }

func (t *transform2DImpl) WorldPosition() common.Vec2 { return t.t.WorldPosition().XY() }

func (t *transform2DImpl) SetPosition(p common.Vec2) {
	t.t.SetPosition(common.Vec3{p[0], p[1], 0})
}

func (t *transform2DImpl) Scale() common.Vec2 { return t.t.scale.XY() }

func (t *transform2DImpl) SetScale(s common.Vec2) bool {
	if s.Dot(s) <= common.Epsilon {
		log.Printf("[Transform2D] ignoring zero-length scale %v", s)
		return false
	}
	return t.t.SetScale(common.Vec3{s[0], s[1], 1})
}

func (t *transform2DImpl) Rotation() float32 { return t.t.orientation.Angle2D() }

func (t *transform2DImpl) SetRotation(angle float32) {
	t.t.SetOrientation(common.QuatFromAxisAngle(common.Vec3{0, 0, 1}, angle))
}

func (t *transform2DImpl) Translate(v common.Vec2) Transform2D {
	t.t.Translate(common.Vec3{v[0], v[1], 0})
	return t
}

func (t *transform2DImpl) Rescale(s common.Vec2) Transform2D {
	t.SetScale(t.Scale().Mul(s))
	return t
}

func (t *transform2DImpl) Rotate(angle float32) Transform2D {
	t.t.RotateAxis(angle, common.Vec3{0, 0, 1}, true)
	return t
}

func (t *transform2DImpl) Up() common.Vec3      { return t.t.Up() }
func (t *transform2DImpl) Forward() common.Vec3 { return t.t.Forward() }
func (t *transform2DImpl) Right() common.Vec3   { return t.t.Right() }

func (t *transform2DImpl) ToWorld(p common.Vec2) common.Vec2 {
	return t.t.ToWorld(common.Vec3{p[0], p[1], 0}).XY()
}

func (t *transform2DImpl) ToLocal(p common.Vec2) common.Vec2 {
	return t.t.ToLocal(common.Vec3{p[0], p[1], 0}).XY()
}

func (t *transform2DImpl) Parent() Node { return t.t.parent }

func (t *transform2DImpl) SetParent(parent Node) { t.t.SetParent(parent) }
