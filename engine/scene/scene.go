package scene

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotInitialized is returned by Update and Render of a scene that was never added to
// a Manager or initialized directly.
var ErrNotInitialized = errors.New("scene not initialized")

// Scene is one layer of the game: a menu, a level, a HUD. Active scenes are updated and
// rendered by a Manager in ascending Order.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the unique name of the scene.
	Name() string

	// Order returns the sort key; lower orders update and render first.
	Order() int

	// SetOrder changes the sort key.
	SetOrder(order int)

	// Active reports whether the scene takes part in Update and Render.
	Active() bool

	// SetActive enables or disables the scene. Activating an inactive scene runs its
	// OnActive callback.
	//
	// Parameters:
	//   - active: the new state
	SetActive(active bool)

	// Init runs the init callback. Called once by Manager.Add.
	//
	// Returns:
	//   - error: the callback's error
	Init() error

	// Update advances the scene by one tick.
	//
	// Parameters:
	//   - dt: the tick length in seconds
	//
	// Returns:
	//   - error: ErrNotInitialized or the callback's error
	Update(dt float32) error

	// Render draws the scene.
	//
	// Parameters:
	//   - dt: the time since the last render in seconds
	//
	// Returns:
	//   - error: ErrNotInitialized or the callback's error
	Render(dt float32) error
}

// scene is the implementation of the Scene interface built from callbacks.
type scene struct {
	mu *sync.RWMutex

	name        string
	order       int
	active      bool
	initialized bool

	onInit   func() error
	onUpdate func(dt float32) error
	onRender func(dt float32) error
	onActive func()
}

var _ Scene = &scene{}

// NewScene creates a scene driven by the callbacks given as options. Missing callbacks
// do nothing.
//
// Parameters:
//   - name: the unique name of the scene
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new, inactive scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:   &sync.RWMutex{},
		name: name,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Order() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order
}

func (s *scene) SetOrder(order int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	activated := active && !s.active
	s.active = active
	cb := s.onActive
	s.mu.Unlock()

	if activated && cb != nil {
		cb()
	}
}

func (s *scene) Init() error {
	s.mu.Lock()
	cb := s.onInit
	s.initialized = true
	s.mu.Unlock()

	if cb == nil {
		return nil
	}
	if err := cb(); err != nil {
		return fmt.Errorf("scene %s init: %w", s.name, err)
	}
	return nil
}

func (s *scene) Update(dt float32) error {
	s.mu.RLock()
	ok, cb := s.initialized, s.onUpdate
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("scene %s: %w", s.name, ErrNotInitialized)
	}
	if cb == nil {
		return nil
	}
	return cb(dt)
}

func (s *scene) Render(dt float32) error {
	s.mu.RLock()
	ok, cb := s.initialized, s.onRender
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("scene %s: %w", s.name, ErrNotInitialized)
	}
	if cb == nil {
		return nil
	}
	return cb(dt)
}
