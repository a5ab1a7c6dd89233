package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy2d/engine/audio"
	"github.com/Carmen-Shannon/oxy2d/engine/config"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/resources"
	"github.com/Carmen-Shannon/oxy2d/engine/scene"
)

// ApplicationBuilderOption is a functional option for configuring an Application.
// Use the With* functions to create options that are applied directly to the application instance.
type ApplicationBuilderOption func(*application)

// WithConfig replaces the default settings. Apply it before options that override
// single settings.
//
// Parameters:
//   - c: the settings, usually from config.Load
//
// Returns:
//   - ApplicationBuilderOption: option function to apply
func WithConfig(c config.Config) ApplicationBuilderOption {
	return func(a *application) {
		a.cfg = c.WithDefaults()
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - ApplicationBuilderOption: option function to apply
func WithProfiling(enabled bool) ApplicationBuilderOption {
	return func(a *application) {
		a.profilingEnabled = enabled
	}
}

// WithTickRate sets the number of fixed updates per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - ups: target updates per second (default 60)
//
// Returns:
//   - ApplicationBuilderOption: option function to apply
func WithTickRate(ups float64) ApplicationBuilderOption {
	return func(a *application) {
		if ups <= 0 {
			ups = 60.0
		}
		a.tick = time.Duration(float64(time.Second) / ups)
	}
}

// WithFrameLimit caps the number of rendered frames per second. 0 is uncapped.
func WithFrameLimit(fps float64) ApplicationBuilderOption {
	return func(a *application) {
		if fps <= 0 {
			a.frameLimit = 0
			return
		}
		a.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrameTime caps the time simulated after a stall so a long pause does not run
// hundreds of updates at once.
func WithMaxFrameTime(d time.Duration) ApplicationBuilderOption {
	return func(a *application) {
		a.maxFrameTime = d
	}
}

// WithWindow sets a custom configured window for the application to use rather than
// allowing it to create and manage one internally. A custom window needs WithRenderer.
//
// Parameters:
//   - w: a pre-configured window
//
// Returns:
//   - ApplicationBuilderOption: option function to apply
func WithWindow(w Surface) ApplicationBuilderOption {
	return func(a *application) {
		a.surface = w
	}
}

// WithRenderer sets the renderer to draw with.
func WithRenderer(r renderer.Renderer) ApplicationBuilderOption {
	return func(a *application) {
		a.renderer = r
	}
}

// WithResources sets the resource context instead of one with the default handlers.
func WithResources(c resources.Context) ApplicationBuilderOption {
	return func(a *application) {
		a.res = c
	}
}

// WithAudio sets the audio device instead of opening the speaker. The caller keeps
// ownership and closes it.
func WithAudio(d audio.Device) ApplicationBuilderOption {
	return func(a *application) {
		a.audio = d
	}
}

// WithSceneManager sets the scene manager, e.g. one with parallel updates.
func WithSceneManager(m scene.Manager) ApplicationBuilderOption {
	return func(a *application) {
		a.scenes = m
	}
}

// WithScene adds and activates a scene when Run starts, before OnStart. Scenes are
// rendered in ascending Order.
//
// Parameters:
//   - s: the Scene to register
//
// Returns:
//   - ApplicationBuilderOption: option function to apply
func WithScene(s scene.Scene) ApplicationBuilderOption {
	return func(a *application) {
		a.initial = append(a.initial, s)
	}
}

// WithOnStart sets the callback run after setup and before the first update.
// Returning an error aborts Run.
func WithOnStart(fn func(app Application) error) ApplicationBuilderOption {
	return func(a *application) {
		a.onStart = fn
	}
}

// WithOnExit sets the callback run after the loop ends and before teardown.
func WithOnExit(fn func(app Application)) ApplicationBuilderOption {
	return func(a *application) {
		a.onExit = fn
	}
}

// WithOnResize sets the callback run after the renderer follows a window resize.
func WithOnResize(fn func(width, height int)) ApplicationBuilderOption {
	return func(a *application) {
		a.onResize = fn
	}
}

// WithDataPath overrides the data directory.
func WithDataPath(path string) ApplicationBuilderOption {
	return func(a *application) {
		a.dataPath = path
	}
}

// WithClock replaces the time source and sleep used by the loop.
func WithClock(now func() time.Time, sleep func(time.Duration)) ApplicationBuilderOption {
	return func(a *application) {
		a.now = now
		a.sleep = sleep
	}
}
