package transform

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
)

const eps = 1e-5

func vecNear(a, b common.Vec3) bool {
	for i := range a {
		if !common.ApproxEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func TestSetScaleRejectsZero(t *testing.T) {
	tr := NewTransform(WithScale(2, 3, 4))
	before := tr.Matrix()

	if tr.SetScale(common.Vec3{}) {
		t.Fatal("SetScale(0) reported success")
	}
	if got := tr.Scale(); got != (common.Vec3{2, 3, 4}) {
		t.Errorf("scale changed to %v", got)
	}
	if tr.Matrix() != before {
		t.Error("matrix changed after rejected scale")
	}
}

func TestTransform2DSetScaleRejectsZero(t *testing.T) {
	tr := NewTransform2D(1, 1)
	tr.SetScale(common.Vec2{2, 2})
	if tr.SetScale(common.Vec2{0, 0}) {
		t.Fatal("SetScale(0) reported success")
	}
	if got := tr.Scale(); got != (common.Vec2{2, 2}) {
		t.Errorf("scale = %v, want {2 2}", got)
	}
}

func TestMatrixComposesTRS(t *testing.T) {
	tr := NewTransform(
		WithPosition(10, 20, 0),
		WithScale(2, 2, 1),
	)
	tr.RotateAxis(math.Pi/2, common.Vec3{0, 0, 1}, true)

	// (1, 0) scaled to (2, 0), rotated to (0, 2), translated to (10, 22)
	got := tr.ToWorld(common.Vec3{1, 0, 0})
	if !vecNear(got, common.Vec3{10, 22, 0}) {
		t.Errorf("ToWorld = %v, want {10 22 0}", got)
	}
	back := tr.ToLocal(got)
	if !vecNear(back, common.Vec3{1, 0, 0}) {
		t.Errorf("ToLocal = %v, want {1 0 0}", back)
	}
}

func TestMatrixCachedUntilMutation(t *testing.T) {
	tr := NewTransform().(*transformImpl)
	tr.SetPosition(common.Vec3{1, 2, 3})
	if !tr.dirty {
		t.Fatal("mutation did not mark the matrix dirty")
	}
	m := tr.Matrix()
	if tr.dirty {
		t.Fatal("Matrix did not clear the dirty flag")
	}
	if m[12] != 1 || m[13] != 2 || m[14] != 3 {
		t.Errorf("translation column = %v", m[12:15])
	}
}

func TestParentComposition(t *testing.T) {
	parent := NewTransform(WithPosition(100, 0, 0))
	child := NewTransform(WithPosition(5, 5, 0), WithParent(parent))

	if got := child.WorldPosition(); !vecNear(got, common.Vec3{105, 5, 0}) {
		t.Errorf("WorldPosition = %v", got)
	}

	parent.Translate(common.Vec3{0, 10, 0})
	if got := child.WorldPosition(); !vecNear(got, common.Vec3{105, 15, 0}) {
		t.Errorf("WorldPosition after parent move = %v", got)
	}

	child.SetParent(nil)
	if got := child.WorldPosition(); got != (common.Vec3{5, 5, 0}) {
		t.Errorf("WorldPosition after detach = %v", got)
	}
}

func TestDirections(t *testing.T) {
	tr := NewTransform()
	if !vecNear(tr.Forward(), common.Vec3{0, 0, -1}) {
		t.Errorf("Forward = %v", tr.Forward())
	}
	if !vecNear(tr.Up(), common.Vec3{0, 1, 0}) {
		t.Errorf("Up = %v", tr.Up())
	}

	tr.RotateAxis(math.Pi/2, common.Vec3{0, 0, 1}, false)
	if !vecNear(tr.Right(), common.Vec3{0, 1, 0}) {
		t.Errorf("Right after 90deg roll = %v", tr.Right())
	}
}

func TestTranslateAndRescaleChain(t *testing.T) {
	tr := NewTransform()
	tr.Translate(common.Vec3{1, 0, 0}).Translate(common.Vec3{0, 2, 0}).Rescale(common.Vec3{3, 3, 3})

	if tr.Position() != (common.Vec3{1, 2, 0}) {
		t.Errorf("Position = %v", tr.Position())
	}
	if tr.Scale() != (common.Vec3{3, 3, 3}) {
		t.Errorf("Scale = %v", tr.Scale())
	}
}

func TestTransform2DRotation(t *testing.T) {
	tr := NewTransform2D(0, 0)
	tr.SetRotation(0.5)
	tr.Rotate(0.25)
	if got := tr.Rotation(); !common.ApproxEqual(got, 0.75, eps) {
		t.Errorf("Rotation = %v, want 0.75", got)
	}
}
