package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene starts active. The OnActive callback is not run.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithOrder sets the sort key. Defaults to 0.
//
// Parameters:
//   - order: lower orders update and render first
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithOrder(order int) SceneBuilderOption {
	return func(s *scene) {
		s.order = order
	}
}

// WithInit sets the callback run once when the scene is added to a Manager.
func WithInit(fn func() error) SceneBuilderOption {
	return func(s *scene) {
		s.onInit = fn
	}
}

// WithUpdate sets the per tick callback.
func WithUpdate(fn func(dt float32) error) SceneBuilderOption {
	return func(s *scene) {
		s.onUpdate = fn
	}
}

// WithRender sets the per frame draw callback.
func WithRender(fn func(dt float32) error) SceneBuilderOption {
	return func(s *scene) {
		s.onRender = fn
	}
}

// WithOnActive sets the callback run each time the scene goes from inactive to active.
func WithOnActive(fn func()) SceneBuilderOption {
	return func(s *scene) {
		s.onActive = fn
	}
}
