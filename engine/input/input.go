// Package input turns raw key and mouse events into per-tick button states for named actions.
package input

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
)

var (
	// ErrCode is returned when binding a key or mouse button outside the known range.
	ErrCode = errors.New("input code out of range")

	// ErrDuplicateAction is returned when binding a name that is already bound.
	ErrDuplicateAction = errors.New("input action already bound")
)

// State is the per-tick state of a bound action.
type State int

const (
	// Idle means released for at least one tick.
	Idle State = iota
	// Down means pressed this tick.
	Down
	// Held means pressed for more than one tick.
	Held
	// Up means released this tick.
	Up
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Down:
		return "Down"
	case Held:
		return "Held"
	case Up:
		return "Up"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Next advances an action state by one tick given whether its button is pressed.
//
// Parameters:
//   - s: the state of the previous tick
//   - pressed: whether the button is down now
//
// Returns:
//   - State: Held after Down, Down after anything else but Held while pressed;
//     Up after Down or Held, Idle otherwise while released
func Next(s State, pressed bool) State {
	if pressed {
		switch s {
		case Down:
			return Held
		case Held:
			return Held
		default:
			return Down
		}
	}
	if s == Down || s == Held {
		return Up
	}
	return Idle
}

const (
	numKeys    = common.KeyLast + 1
	numButtons = common.MouseButtonLast + 1
)

// EventSource is a window that reports raw input. window.Window satisfies it.
type EventSource interface {
	SetKeyDownCallback(callback func(keyCode uint32))
	SetKeyUpCallback(callback func(keyCode uint32))
	SetMouseDownCallback(callback func(button int, x, y int32))
	SetMouseUpCallback(callback func(button int, x, y int32))
	SetMouseMoveCallback(callback func(x, y int32))
	SetScrollCallback(callback func(dx, dy float32))
}

// action is one named binding.
type action struct {
	code  int
	state State
}

// inputImpl is the implementation of the Input interface.
type inputImpl struct {
	mu *sync.Mutex

	actions map[string]*action
	pressed [numKeys + numButtons]bool

	mouse         common.Vec2
	scroll        common.Vec2
	pendingScroll common.Vec2
}

// Input maps names to keys and mouse buttons and tracks their State per tick. Callbacks
// may arrive at any time; states only change in Handle.
type Input interface {
	// Add binds name to a keyboard key.
	//
	// Parameters:
	//   - name: the action name
	//   - key: a key code, see common.Key*
	//
	// Returns:
	//   - error: ErrCode or ErrDuplicateAction
	Add(name string, key int) error

	// AddMouse binds name to a mouse button.
	//
	// Parameters:
	//   - name: the action name
	//   - button: a button index, see common.MouseButton*
	//
	// Returns:
	//   - error: ErrCode or ErrDuplicateAction
	AddMouse(name string, button int) error

	// Check reports whether the action is in state. Unknown names are never in any state.
	Check(name string, state State) bool

	// State returns the action state, Idle for unknown names.
	State(name string) State

	// Handle advances every action one tick and latches the scroll accumulated since the
	// previous Handle. Call it once per update before reading states.
	Handle()

	// KeyCallback records a key press or release.
	KeyCallback(key int, pressed bool)

	// MouseButtonCallback records a mouse button press or release.
	MouseButtonCallback(button int, pressed bool)

	// CursorCallback records the cursor position in window pixels.
	CursorCallback(x, y float64)

	// ScrollCallback accumulates scroll offsets until the next Handle.
	ScrollCallback(dx, dy float64)

	// MousePosition returns the last cursor position in window pixels, y down.
	MousePosition() common.Vec2

	// Scroll returns the scroll offset of the last tick.
	Scroll() common.Vec2

	// Attach routes a window's input callbacks into this context.
	Attach(src EventSource)
}

var _ Input = &inputImpl{}

// NewInput creates an input context with no bindings.
func NewInput() Input {
	return &inputImpl{
		mu:      &sync.Mutex{},
		actions: make(map[string]*action),
	}
}

func (in *inputImpl) bind(name string, code int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.actions[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, name)
	}
	in.actions[name] = &action{code: code}
	return nil
}

func (in *inputImpl) Add(name string, key int) error {
	if key < 0 || key >= numKeys {
		return fmt.Errorf("%w: key %d", ErrCode, key)
	}
	return in.bind(name, key)
}

func (in *inputImpl) AddMouse(name string, button int) error {
	if button < 0 || button >= numButtons {
		return fmt.Errorf("%w: mouse button %d", ErrCode, button)
	}
	return in.bind(name, numKeys+button)
}

func (in *inputImpl) Check(name string, state State) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	a, ok := in.actions[name]
	return ok && a.state == state
}

func (in *inputImpl) State(name string) State {
	in.mu.Lock()
	defer in.mu.Unlock()
	if a, ok := in.actions[name]; ok {
		return a.state
	}
	return Idle
}

func (in *inputImpl) Handle() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, a := range in.actions {
		a.state = Next(a.state, in.pressed[a.code])
	}
	in.scroll = in.pendingScroll
	in.pendingScroll = common.Vec2{}
}

func (in *inputImpl) KeyCallback(key int, pressed bool) {
	if key < 0 || key >= numKeys {
		return
	}
	in.mu.Lock()
	in.pressed[key] = pressed
	in.mu.Unlock()
}

func (in *inputImpl) MouseButtonCallback(button int, pressed bool) {
	if button < 0 || button >= numButtons {
		return
	}
	in.mu.Lock()
	in.pressed[numKeys+button] = pressed
	in.mu.Unlock()
}

func (in *inputImpl) CursorCallback(x, y float64) {
	in.mu.Lock()
	in.mouse = common.Vec2{float32(x), float32(y)}
	in.mu.Unlock()
}

func (in *inputImpl) ScrollCallback(dx, dy float64) {
	in.mu.Lock()
	in.pendingScroll[0] += float32(dx)
	in.pendingScroll[1] += float32(dy)
	in.mu.Unlock()
}

func (in *inputImpl) MousePosition() common.Vec2 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mouse
}

func (in *inputImpl) Scroll() common.Vec2 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.scroll
}

func (in *inputImpl) Attach(src EventSource) {
	src.SetKeyDownCallback(func(k uint32) { in.KeyCallback(int(k), true) })
	src.SetKeyUpCallback(func(k uint32) { in.KeyCallback(int(k), false) })
	src.SetMouseDownCallback(func(b int, x, y int32) {
		in.CursorCallback(float64(x), float64(y))
		in.MouseButtonCallback(b, true)
	})
	src.SetMouseUpCallback(func(b int, x, y int32) {
		in.CursorCallback(float64(x), float64(y))
		in.MouseButtonCallback(b, false)
	})
	src.SetMouseMoveCallback(func(x, y int32) { in.CursorCallback(float64(x), float64(y)) })
	src.SetScrollCallback(func(dx, dy float32) { in.ScrollCallback(float64(dx), float64(dy)) })
}
