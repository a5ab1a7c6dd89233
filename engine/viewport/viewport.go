// Package viewport maps the window onto a stack of drawing rectangles.
package viewport

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// Screen is a drawing rectangle in window pixels.
type Screen struct {
	X, Y          int
	Width, Height int
}

// Viewport converts the screen to the renderer's viewport state.
func (s Screen) Viewport() renderer.Viewport {
	return renderer.Viewport{
		X:      float32(s.X),
		Y:      float32(s.Y),
		Width:  float32(s.Width),
		Height: float32(s.Height),
	}
}

// Contains reports whether the window pixel (x, y) falls inside the screen.
func (s Screen) Contains(x, y float32) bool {
	return x >= float32(s.X) && x < float32(s.X+s.Width) &&
		y >= float32(s.Y) && y < float32(s.Y+s.Height)
}

// viewport is the implementation of the Viewport interface.
type viewport struct {
	mu *sync.Mutex

	r       renderer.Renderer
	screens []Screen
	clear   common.Color

	// constW and constH are the fixed logical size, zero when the viewport stretches.
	constW, constH int
}

// Viewport keeps a stack of screens. The top of the stack is the rectangle the renderer
// draws into; the bottom one tracks the window and is replaced on resize.
type Viewport interface {
	// PushScreen makes s the active screen.
	PushScreen(s Screen)

	// PopScreen restores the previous screen. The last screen is never popped.
	PopScreen()

	// SetScreen replaces the bottom screen, the one resizes update, and applies the
	// active screen again.
	SetScreen(s Screen)

	// Screen returns the active screen.
	Screen() Screen

	// Depth returns the number of screens on the stack.
	Depth() int

	// OnResize fits the bottom screen to a window of width x height pixels.
	//
	// Parameters:
	//   - width, height: the new window size in pixels
	OnResize(width, height int)

	// SetClearColor sets the background colour used by Clear.
	SetClearColor(c common.Color)

	// ClearColor returns the background colour.
	ClearColor() common.Color

	// Clear makes the background colour the renderer's clear colour for the next frame.
	Clear()

	// Apply pushes the active screen to the renderer.
	Apply()

	// ToLocal converts window pixels to pixels relative to the active screen.
	//
	// Parameters:
	//   - x, y: a window position
	//
	// Returns:
	//   - common.Vec2: the position inside the active screen
	//   - bool: false if the position lies outside it
	ToLocal(x, y float32) (common.Vec2, bool)
}

var _ Viewport = &viewport{}

// NewViewport creates a viewport that stretches over the whole window.
//
// Parameters:
//   - r: the renderer whose viewport state is driven
//   - width, height: the initial window size
//   - options: variadic list of ViewportBuilderOption functions to configure the viewport
//
// Returns:
//   - Viewport: the new viewport with a single full window screen
func NewViewport(r renderer.Renderer, width, height int, options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		mu:    &sync.Mutex{},
		r:     r,
		clear: common.Black,
	}
	for _, opt := range options {
		opt(v)
	}
	v.screens = []Screen{v.fit(width, height)}
	v.apply()
	return v
}

// NewConstantViewport creates a viewport that keeps the aspect ratio of a fixed logical
// size, letterboxing the window on resize.
//
// Parameters:
//   - r: the renderer whose viewport state is driven
//   - width, height: the initial window size
//   - constantWidth, constantHeight: the logical size whose aspect ratio is kept
//   - options: variadic list of ViewportBuilderOption functions to configure the viewport
//
// Returns:
//   - Viewport: the new viewport
func NewConstantViewport(r renderer.Renderer, width, height, constantWidth, constantHeight int, options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		mu:     &sync.Mutex{},
		r:      r,
		clear:  common.Black,
		constW: constantWidth,
		constH: constantHeight,
	}
	for _, opt := range options {
		opt(v)
	}
	v.screens = []Screen{v.fit(width, height)}
	v.apply()
	return v
}

// Letterbox returns the largest centred rectangle of the aspect ratio aw:ah that fits in
// a width x height window. Sizes are rounded half up.
func Letterbox(width, height, aw, ah int) Screen {
	if aw <= 0 || ah <= 0 {
		return Screen{Width: width, Height: height}
	}
	aspect := float64(aw) / float64(ah)
	w := width
	h := int(float64(w)/aspect + 0.5)
	if h > height {
		h = height
		w = int(float64(h)*aspect + 0.5)
	}
	return Screen{
		X:      int(float64(width)/2 - float64(w)/2),
		Y:      int(float64(height)/2 - float64(h)/2),
		Width:  w,
		Height: h,
	}
}

func (v *viewport) fit(width, height int) Screen {
	if v.constW > 0 && v.constH > 0 {
		return Letterbox(width, height, v.constW, v.constH)
	}
	return Screen{Width: width, Height: height}
}

// apply must be called with mu held or before v is shared.
func (v *viewport) apply() {
	if v.r != nil {
		v.r.SetViewport(v.screens[len(v.screens)-1].Viewport())
	}
}

func (v *viewport) PushScreen(s Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screens = append(v.screens, s)
	v.apply()
}

func (v *viewport) PopScreen() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.screens) == 1 {
		log.Printf("[Viewport] unable to pop the last screen")
		return
	}
	v.screens = v.screens[:len(v.screens)-1]
	v.apply()
}

func (v *viewport) SetScreen(s Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screens[0] = s
	v.apply()
}

func (v *viewport) Screen() Screen {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.screens[len(v.screens)-1]
}

func (v *viewport) Depth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.screens)
}

func (v *viewport) OnResize(width, height int) {
	v.SetScreen(v.fit(width, height))
}

func (v *viewport) SetClearColor(c common.Color) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clear = c
}

func (v *viewport) ClearColor() common.Color {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clear
}

func (v *viewport) Clear() {
	v.mu.Lock()
	c := v.clear
	v.mu.Unlock()
	if v.r != nil {
		v.r.SetClearColor(c)
	}
}

func (v *viewport) Apply() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.apply()
}

func (v *viewport) ToLocal(x, y float32) (common.Vec2, bool) {
	s := v.Screen()
	local := common.Vec2{x - float32(s.X), y - float32(s.Y)}
	return local, s.Contains(x, y)
}
