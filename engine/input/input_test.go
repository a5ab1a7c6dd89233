package input

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    State
		pressed bool
		want    State
	}{
		{Idle, true, Down},
		{Down, true, Held},
		{Held, true, Held},
		{Up, true, Down},
		{Down, false, Up},
		{Held, false, Up},
		{Up, false, Idle},
		{Idle, false, Idle},
	}
	for _, tt := range tests {
		if got := Next(tt.from, tt.pressed); got != tt.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tt.from, tt.pressed, got, tt.want)
		}
	}
}

func TestKeySequence(t *testing.T) {
	in := NewInput()
	if err := in.Add("jump", common.KeySpace); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		pressed bool
		want    State
	}{
		{true, Down},
		{true, Held},
		{true, Held},
		{false, Up},
		{false, Idle},
		{true, Down},
		{false, Up},
	}
	for i, s := range steps {
		in.KeyCallback(common.KeySpace, s.pressed)
		in.Handle()
		if !in.Check("jump", s.want) {
			t.Errorf("tick %d: state %v, want %v", i, in.State("jump"), s.want)
		}
	}
}

func TestStatesChangeOnlyInHandle(t *testing.T) {
	in := NewInput()
	in.Add("fire", common.KeyF)
	in.KeyCallback(common.KeyF, true)
	if in.State("fire") != Idle {
		t.Error("state changed before Handle")
	}
	// a tap released before the next tick is never seen
	in.KeyCallback(common.KeyF, false)
	in.Handle()
	if in.State("fire") != Idle {
		t.Errorf("state = %v", in.State("fire"))
	}
}

func TestMouseAndKeysDoNotCollide(t *testing.T) {
	in := NewInput()
	in.Add("menu", common.KeyMenu)
	in.AddMouse("click", common.MouseButtonLeft)

	in.MouseButtonCallback(common.MouseButtonLeft, true)
	in.Handle()
	if !in.Check("click", Down) || !in.Check("menu", Idle) {
		t.Errorf("click %v, menu %v", in.State("click"), in.State("menu"))
	}
}

func TestBindErrors(t *testing.T) {
	in := NewInput()
	if err := in.Add("bad", common.KeyLast+1); !errors.Is(err, ErrCode) {
		t.Errorf("Add = %v", err)
	}
	if err := in.AddMouse("bad", common.MouseButtonLast+1); !errors.Is(err, ErrCode) {
		t.Errorf("AddMouse = %v", err)
	}
	in.Add("left", common.KeyLeft)
	if err := in.AddMouse("left", common.MouseButtonLeft); !errors.Is(err, ErrDuplicateAction) {
		t.Errorf("duplicate = %v", err)
	}
	if in.Check("unknown", Idle) {
		t.Error("unknown action reported a state")
	}
}

func TestScrollLatchesPerTick(t *testing.T) {
	in := NewInput()
	in.ScrollCallback(0, 1)
	in.ScrollCallback(0.5, 2)
	if in.Scroll() != (common.Vec2{}) {
		t.Error("scroll visible before Handle")
	}
	in.Handle()
	if in.Scroll() != (common.Vec2{0.5, 3}) {
		t.Errorf("scroll = %v", in.Scroll())
	}
	in.Handle()
	if in.Scroll() != (common.Vec2{}) {
		t.Errorf("scroll not reset, %v", in.Scroll())
	}
}

// fakeWindow records the callbacks Attach installs.
type fakeWindow struct {
	keyDown, keyUp     func(uint32)
	mouseDown, mouseUp func(int, int32, int32)
	move               func(int32, int32)
	scroll             func(float32, float32)
}

func (w *fakeWindow) SetKeyDownCallback(cb func(uint32))              { w.keyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(uint32))                { w.keyUp = cb }
func (w *fakeWindow) SetMouseDownCallback(cb func(int, int32, int32)) { w.mouseDown = cb }
func (w *fakeWindow) SetMouseUpCallback(cb func(int, int32, int32))   { w.mouseUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(int32, int32))      { w.move = cb }
func (w *fakeWindow) SetScrollCallback(cb func(float32, float32))     { w.scroll = cb }

func TestAttach(t *testing.T) {
	w := &fakeWindow{}
	in := NewInput()
	in.Add("up", common.KeyW)
	in.AddMouse("drag", common.MouseButtonRight)
	in.Attach(w)

	w.keyDown(common.KeyW)
	w.mouseDown(common.MouseButtonRight, 40, 30)
	w.move(41, 35)
	w.scroll(0, -1)
	in.Handle()

	if !in.Check("up", Down) || !in.Check("drag", Down) {
		t.Errorf("up %v, drag %v", in.State("up"), in.State("drag"))
	}
	if in.MousePosition() != (common.Vec2{41, 35}) || in.Scroll()[1] != -1 {
		t.Errorf("mouse %v scroll %v", in.MousePosition(), in.Scroll())
	}

	w.keyUp(common.KeyW)
	w.mouseUp(common.MouseButtonRight, 41, 35)
	in.Handle()
	if !in.Check("up", Up) || !in.Check("drag", Up) {
		t.Errorf("after release: up %v, drag %v", in.State("up"), in.State("drag"))
	}
}
