package engine

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/config"
	"github.com/Carmen-Shannon/oxy2d/engine/input"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/oxy2d/engine/scene"
)

// fakeSurface runs a fixed number of loop iterations, advancing a fake clock by step on
// each PollEvents and calling onPoll with the iteration index.
type fakeSurface struct {
	polls  int
	limit  int
	clock  *time.Time
	step   time.Duration
	onPoll func(i int)

	closeRequests int
	closed        bool

	keyDown, keyUp func(uint32)
	resize         func(int, int)
}

func (s *fakeSurface) SetKeyDownCallback(cb func(uint32))           { s.keyDown = cb }
func (s *fakeSurface) SetKeyUpCallback(cb func(uint32))             { s.keyUp = cb }
func (s *fakeSurface) SetMouseDownCallback(func(int, int32, int32)) {}
func (s *fakeSurface) SetMouseUpCallback(func(int, int32, int32))   {}
func (s *fakeSurface) SetMouseMoveCallback(func(int32, int32))      {}
func (s *fakeSurface) SetScrollCallback(func(float32, float32))     {}
func (s *fakeSurface) SetResizeCallback(cb func(width, height int)) { s.resize = cb }
func (s *fakeSurface) SetTitle(string)                              {}
func (s *fakeSurface) IsRunning() bool                              { return !s.closed && s.closeRequests == 0 }
func (s *fakeSurface) RequestClose()                                { s.closeRequests++ }
func (s *fakeSurface) Close() error                                 { s.closed = true; return nil }
func (s *fakeSurface) Width() int                                   { return 800 }
func (s *fakeSurface) Height() int                                  { return 600 }

func (s *fakeSurface) PollEvents() bool {
	if s.polls >= s.limit {
		return false
	}
	*s.clock = s.clock.Add(s.step)
	if s.onPoll != nil {
		s.onPoll(s.polls)
	}
	s.polls++
	return true
}

type harness struct {
	app     Application
	surface *fakeSurface
	rec     *rendertest.Recorder
}

func newHarness(t *testing.T, polls int, step time.Duration, options ...ApplicationBuilderOption) *harness {
	t.Helper()
	clock := time.Unix(1000, 0)
	surface := &fakeSurface{limit: polls, clock: &clock, step: step}
	rec := rendertest.NewRecorder()

	cfg := config.Default()
	cfg.Audio.Disabled = true
	base := []ApplicationBuilderOption{
		WithConfig(cfg),
		WithWindow(surface),
		WithRenderer(renderer.NewRenderer(rec)),
		WithDataPath(t.TempDir()),
		WithClock(func() time.Time { return clock }, func(time.Duration) {}),
	}
	app := NewApplication("Test Game", append(base, options...)...)
	return &harness{app: app, surface: surface, rec: rec}
}

func TestFixedTimestep(t *testing.T) {
	updates := 0
	h := newHarness(t, 4, 250*time.Millisecond,
		WithTickRate(10),
		WithScene(scene.NewScene("counter", scene.WithUpdate(func(dt float32) error {
			if !common.ApproxEqual(dt, 0.1, 1e-6) {
				t.Errorf("dt = %v", dt)
			}
			updates++
			return nil
		}))),
	)
	if err := h.app.Run(); err != nil {
		t.Fatal(err)
	}
	// 250ms frames at 100ms ticks: 2, 3, 2, 3 updates
	if updates != 10 {
		t.Errorf("updates = %d, want 10", updates)
	}
	if h.rec.Frames() != 4 || h.rec.Presented() != 4 {
		t.Errorf("frames %d presented %d, want 4", h.rec.Frames(), h.rec.Presented())
	}
	if h.surface.closed {
		t.Error("closed a window the caller owns")
	}
}

func TestMaxFrameTimeCapsCatchUp(t *testing.T) {
	updates := 0
	h := newHarness(t, 1, 5*time.Second,
		WithTickRate(10),
		WithMaxFrameTime(300*time.Millisecond),
		WithScene(scene.NewScene("counter", scene.WithUpdate(func(float32) error { updates++; return nil }))),
	)
	h.app.Run()
	if updates != 3 {
		t.Errorf("updates = %d, want 3", updates)
	}
}

func TestInputHandledBeforeUpdate(t *testing.T) {
	var states []input.State
	var h *harness
	h = newHarness(t, 3, 100*time.Millisecond,
		WithTickRate(10),
		WithOnStart(func(app Application) error {
			return app.Input().Add("jump", common.KeySpace)
		}),
		WithScene(scene.NewScene("player", scene.WithUpdate(func(float32) error {
			states = append(states, h.app.Input().State("jump"))
			return nil
		}))),
	)
	h.surface.onPoll = func(i int) {
		switch i {
		case 0:
			h.surface.keyDown(common.KeySpace)
		case 2:
			h.surface.keyUp(common.KeySpace)
		}
	}
	if err := h.app.Run(); err != nil {
		t.Fatal(err)
	}
	want := []input.State{input.Down, input.Held, input.Up}
	if len(states) != len(want) {
		t.Fatalf("states = %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("update %d saw %v, want %v", i, states[i], want[i])
		}
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	exited := false
	var h *harness
	h = newHarness(t, 10, 100*time.Millisecond,
		WithOnStart(func(app Application) error {
			app.Quit()
			app.Quit()
			return nil
		}),
		WithOnExit(func(Application) { exited = true }),
	)
	if err := h.app.Run(); err != nil {
		t.Fatal(err)
	}
	if h.surface.polls != 0 || !exited || h.surface.closeRequests != 1 {
		t.Errorf("polls %d exited %v close requests %d", h.surface.polls, exited, h.surface.closeRequests)
	}
	if err := h.app.Run(); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run = %v", err)
	}
}

func TestStartErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, 10, time.Millisecond, WithOnStart(func(Application) error { return boom }))
	if err := h.app.Run(); !errors.Is(err, boom) {
		t.Errorf("Run = %v", err)
	}
	if h.surface.polls != 0 {
		t.Error("loop ran after a failed start")
	}
}

func TestResizeFollowsWindow(t *testing.T) {
	var got [2]int
	var h *harness
	h = newHarness(t, 1, time.Millisecond, WithOnResize(func(w, h int) { got = [2]int{w, h} }))
	h.surface.onPoll = func(int) {
		h.surface.resize(0, 0)
		h.surface.resize(1024, 768)
	}
	h.app.Run()
	if w, hh := h.rec.SurfaceSize(); w != 1024 || hh != 768 {
		t.Errorf("surface = %dx%d", w, hh)
	}
	if got != [2]int{1024, 768} {
		t.Errorf("resize callback got %v", got)
	}
}

func TestDataPathAndDefaults(t *testing.T) {
	app := NewApplication("My Game: Deluxe!")
	if filepath.Base(app.DataPath()) != "My_Game_Deluxe_data" {
		t.Errorf("data path = %s", app.DataPath())
	}
	if app.Config().Window.Title != "My Game: Deluxe!" {
		t.Errorf("title = %q", app.Config().Window.Title)
	}
	if app.TickDuration() != time.Second/60 {
		t.Errorf("tick = %v", app.TickDuration())
	}
	app.SetTickRate(0)
	if app.TickDuration() != time.Second/60 {
		t.Errorf("tick after SetTickRate(0) = %v", app.TickDuration())
	}
}
