package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/audio"
	"github.com/Carmen-Shannon/oxy2d/engine/config"
	"github.com/Carmen-Shannon/oxy2d/engine/input"
	"github.com/Carmen-Shannon/oxy2d/engine/profiler"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/wgpubackend"
	"github.com/Carmen-Shannon/oxy2d/engine/resources"
	"github.com/Carmen-Shannon/oxy2d/engine/scene"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
)

// ErrRunning is returned by Run when the application is already running or has run.
var ErrRunning = errors.New("application already ran")

// Surface is the window an Application drives. window.Window satisfies it.
type Surface interface {
	input.EventSource
	SetResizeCallback(callback func(width, height int))
	SetTitle(title string)
	PollEvents() bool
	IsRunning() bool
	RequestClose()
	Close() error
	Width() int
	Height() int
}

// application implements the Application interface.
// Owns the window, renderer and every per-game service and drives them from one goroutine.
type application struct {
	mu *sync.Mutex

	name     string
	dataPath string
	cfg      config.Config

	surface  Surface
	renderer renderer.Renderer
	input    input.Input
	scenes   scene.Manager
	res      resources.Context
	audio    audio.Device

	ownsSurface bool
	ownsAudio   bool

	tick         time.Duration
	maxFrameTime time.Duration
	frameLimit   time.Duration

	initial  []scene.Scene
	onStart  func(app Application) error
	onExit   func(app Application)
	onResize func(width, height int)

	profiler         *profiler.Profiler
	profilingEnabled bool

	now   func() time.Time
	sleep func(time.Duration)

	ran         bool
	quitChannel chan struct{}
	quitOnce    sync.Once
	logCloser   io.Closer
}

// Application is the main entry point of a game.
// It owns the window, renderer, input, scenes, resources and audio and runs a
// single-threaded fixed-timestep loop: input and scene updates at the tick rate, then
// one rendered frame per loop iteration.
type Application interface {
	// Name returns the application name.
	Name() string

	// DataPath returns the directory for saves and settings.
	//
	// Returns:
	//   - string: a path under the user config directory named after the application
	DataPath() string

	// Config returns the settings the application was built with.
	Config() config.Config

	// Window returns the driven surface, nil before Run when none was supplied.
	Window() Surface

	// Renderer returns the renderer, nil before Run when none was supplied.
	Renderer() renderer.Renderer

	// Input returns the input context. Its states advance once per update.
	Input() input.Input

	// Scenes returns the scene manager.
	Scenes() scene.Manager

	// Resources returns the resource context, nil before Run.
	Resources() resources.Context

	// Audio returns the audio device, nil when audio is disabled or unavailable.
	Audio() audio.Device

	// SetTickRate sets the number of fixed updates per second.
	//
	// Parameters:
	//   - ups: updates per second (defaults to 60 if <= 0)
	SetTickRate(ups float64)

	// TickDuration returns the length of one fixed update.
	TickDuration() time.Duration

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Run opens the window if needed, calls OnStart, loops until the window closes or Quit
	// is called, then calls OnExit and releases everything the application created.
	//
	// Returns:
	//   - error: ErrRunning, a setup error or the OnStart error
	Run() error

	// Quit stops the loop after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Application = &application{}

// NewApplication creates an application. Nothing is opened until Run.
//
// Parameters:
//   - name: the application name, used for the window title and the data path
//   - options: functional options for application configuration
//
// Returns:
//   - Application: the newly created application
func NewApplication(name string, options ...ApplicationBuilderOption) Application {
	a := &application{
		mu:          &sync.Mutex{},
		name:        name,
		cfg:         config.Default(),
		input:       input.NewInput(),
		now:         time.Now,
		sleep:       time.Sleep,
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(a)
	}
	if a.cfg.Window.Title == config.Default().Window.Title {
		a.cfg.Window.Title = name
	}

	a.tick = common.Coalesce(a.tick, a.cfg.TickDuration())
	a.maxFrameTime = common.Coalesce(a.maxFrameTime, time.Duration(a.cfg.MaxFrameTime*float64(time.Second)))
	a.profilingEnabled = a.profilingEnabled || a.cfg.Profiling
	if a.scenes == nil {
		a.scenes = scene.NewManager()
	}
	if a.profiler == nil {
		a.profiler = profiler.NewProfiler(profiler.WithClock(a.now))
	}
	if a.dataPath == "" {
		a.dataPath = defaultDataPath(name)
	}
	return a
}

// defaultDataPath places the data directory under the user config directory, falling back
// to the working directory.
func defaultDataPath(name string) string {
	dir := common.MakePathSafe(name + "_data")
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, dir)
	}
	return dir
}

func (a *application) Name() string                 { return a.name }
func (a *application) DataPath() string             { return a.dataPath }
func (a *application) Config() config.Config        { return a.cfg }
func (a *application) Window() Surface              { return a.surface }
func (a *application) Renderer() renderer.Renderer  { return a.renderer }
func (a *application) Input() input.Input           { return a.input }
func (a *application) Scenes() scene.Manager        { return a.scenes }
func (a *application) Resources() resources.Context { return a.res }
func (a *application) Audio() audio.Device          { return a.audio }

func (a *application) SetTickRate(ups float64) {
	if ups <= 0 {
		ups = 60
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tick = time.Duration(float64(time.Second) / ups)
}

func (a *application) TickDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick
}

func (a *application) EnableProfiler() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profilingEnabled = true
}

func (a *application) DisableProfiler() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profilingEnabled = false
}

// Quit signals the loop to stop.
// Uses sync.Once to ensure the channel is only closed once.
func (a *application) Quit() {
	a.quitOnce.Do(func() {
		close(a.quitChannel)
		if a.surface != nil {
			a.surface.RequestClose()
		}
	})
}

func (a *application) quitting() bool {
	select {
	case <-a.quitChannel:
		return true
	default:
		return false
	}
}

func (a *application) Run() error {
	a.mu.Lock()
	if a.ran {
		a.mu.Unlock()
		return ErrRunning
	}
	a.ran = true
	a.mu.Unlock()

	if err := a.setup(); err != nil {
		a.teardown()
		return err
	}
	defer a.teardown()

	for _, s := range a.initial {
		if err := a.scenes.Add(s); err != nil {
			return err
		}
		if err := a.scenes.SetActive(s.Name(), true); err != nil {
			return err
		}
	}
	if a.onStart != nil {
		if err := a.onStart(a); err != nil {
			return fmt.Errorf("%s start: %w", a.name, err)
		}
	}
	a.loop()
	if a.onExit != nil {
		a.onExit(a)
	}
	return nil
}

// setup opens every service the caller did not supply.
func (a *application) setup() error {
	closer, err := config.SetupLogging(a.cfg.Log)
	if err != nil {
		return err
	}
	a.logCloser = closer

	if a.surface == nil {
		w := window.NewWindow(a.cfg.WindowOptions()...)
		a.surface = w
		a.ownsSurface = true
		if a.renderer == nil {
			a.renderer = renderer.NewRenderer(wgpubackend.New(w.SurfaceDescriptor()), a.cfg.RendererOptions()...)
		}
	}
	if a.renderer == nil {
		return errors.New("application: a custom window needs WithRenderer")
	}

	a.input.Attach(a.surface)
	a.surface.SetResizeCallback(func(width, height int) {
		// minimized windows report a zero size
		if width <= 0 || height <= 0 {
			return
		}
		a.renderer.Resize(width, height)
		if a.onResize != nil {
			a.onResize(width, height)
		}
	})

	if a.res == nil {
		a.res = resources.NewContext(
			resources.WithWorkers(a.cfg.Resources.Workers),
			resources.WithDefaultHandlers(a.renderer),
		)
	}

	if a.audio == nil && !a.cfg.Audio.Disabled {
		d, err := audio.NewDevice(a.cfg.AudioOptions()...)
		if err != nil {
			log.Printf("[Engine] audio disabled: %v", err)
		} else {
			a.audio = d
			a.ownsAudio = true
		}
	}
	log.Printf("[Engine] %s started, %v per update", a.name, a.TickDuration())
	return nil
}

// loop runs until the surface closes or Quit is called.
func (a *application) loop() {
	last := a.now()
	var acc time.Duration

	for !a.quitting() && a.surface.IsRunning() {
		if !a.surface.PollEvents() {
			break
		}
		now := a.now()
		frame := now.Sub(last)
		last = now

		acc = a.step(frame, acc)

		if a.frameLimit > 0 {
			if remaining := a.frameLimit - a.now().Sub(now); remaining > 0 {
				a.sleep(remaining)
			}
		}
	}
}

// step runs the updates owed for frame plus the carried accumulator, then renders once.
//
// Parameters:
//   - frame: the wall time since the previous step
//   - acc: time not yet simulated by previous steps
//
// Returns:
//   - time.Duration: time still not simulated
func (a *application) step(frame, acc time.Duration) time.Duration {
	if a.maxFrameTime > 0 && frame > a.maxFrameTime {
		frame = a.maxFrameTime
	}
	acc += frame

	tick := a.TickDuration()
	dt := float32(tick.Seconds())
	for acc >= tick && !a.quitting() {
		a.input.Handle()
		if err := a.scenes.Update(dt); err != nil {
			log.Printf("[Engine] update: %v", err)
		}
		a.profiler.Update()
		acc -= tick
	}

	a.render(float32(frame.Seconds()))
	return acc
}

// render draws one frame of every active scene.
func (a *application) render(dt float32) {
	if err := a.renderer.BeginFrame(); err != nil {
		log.Printf("[Engine] begin frame: %v", err)
		return
	}
	if err := a.scenes.Render(dt); err != nil {
		log.Printf("[Engine] render: %v", err)
	}
	if err := a.renderer.EndFrame(); err != nil {
		log.Printf("[Engine] end frame: %v", err)
		return
	}
	a.renderer.Present()

	a.mu.Lock()
	profiling := a.profilingEnabled
	a.mu.Unlock()
	if profiling {
		a.profiler.Frame(a.renderer.DrawCalls())
	}
}

// teardown releases what setup created, in reverse order.
func (a *application) teardown() {
	a.scenes.Close()
	if a.res != nil {
		if err := a.res.Close(); err != nil {
			log.Printf("[Engine] releasing resources: %v", err)
		}
	}
	if a.audio != nil && a.ownsAudio {
		a.audio.Close()
	}
	if a.surface != nil && a.ownsSurface {
		if err := a.surface.Close(); err != nil {
			log.Printf("[Engine] closing window: %v", err)
		}
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}
