package scene

import (
	"errors"
	"sync"
	"testing"
)

// logScene returns a scene that appends "<name>:<phase>" to log.
func logScene(name string, order int, log *[]string, mu *sync.Mutex, options ...SceneBuilderOption) Scene {
	record := func(phase string) {
		mu.Lock()
		*log = append(*log, name+":"+phase)
		mu.Unlock()
	}
	base := []SceneBuilderOption{
		WithOrder(order),
		WithInit(func() error { record("init"); return nil }),
		WithUpdate(func(float32) error { record("update"); return nil }),
		WithRender(func(float32) error { record("render"); return nil }),
		WithOnActive(func() { record("active") }),
	}
	return NewScene(name, append(base, options...)...)
}

func TestAddRunsInitAndRejectsDuplicates(t *testing.T) {
	var log []string
	mu := &sync.Mutex{}
	m := NewManager()
	if err := m.Add(logScene("menu", 0, &log, mu)); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(logScene("menu", 1, &log, mu)); !errors.Is(err, ErrDuplicateScene) {
		t.Errorf("duplicate add = %v", err)
	}
	if len(log) != 1 || log[0] != "menu:init" {
		t.Errorf("log = %v", log)
	}
}

func TestInitFailureDoesNotAdd(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	err := m.Add(NewScene("broken", WithInit(func() error { return boom })))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if m.Scene("broken") != nil {
		t.Error("failed scene was kept")
	}
}

func TestActiveOrderAndCallbacks(t *testing.T) {
	var log []string
	mu := &sync.Mutex{}
	m := NewManager()
	m.Add(logScene("hud", 10, &log, mu))
	m.Add(logScene("level", 0, &log, mu))
	m.Add(logScene("pause", 5, &log, mu))
	log = nil

	m.SetActive("hud", true)
	m.SetActive("level", true)
	// activating twice only fires OnActive once
	m.SetActive("level", true)

	if err := m.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if err := m.Render(0); err != nil {
		t.Fatal(err)
	}
	want := []string{"hud:active", "level:active", "level:update", "hud:update", "level:render", "hud:render"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %s, want %s", i, log[i], want[i])
		}
	}

	if err := m.SetActive("missing", true); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("SetActive unknown = %v", err)
	}
	m.DeactivateAll()
	if len(m.Active()) != 0 {
		t.Errorf("active after DeactivateAll: %d", len(m.Active()))
	}
}

func TestOrderTiesBreakByName(t *testing.T) {
	m := NewManager()
	for _, n := range []string{"c", "a", "b"} {
		m.Add(NewScene(n, WithActive(true)))
	}
	active := m.Active()
	if len(active) != 3 || active[0].Name() != "a" || active[2].Name() != "c" {
		t.Errorf("order: %s %s %s", active[0].Name(), active[1].Name(), active[2].Name())
	}
}

func TestUpdateBeforeInit(t *testing.T) {
	s := NewScene("loose")
	if err := s.Update(0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Update = %v", err)
	}
	if err := s.Render(0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render = %v", err)
	}
}

func TestRenderStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	rendered := false
	m := NewManager()
	m.Add(NewScene("a", WithActive(true), WithRender(func(float32) error { return boom })))
	m.Add(NewScene("b", WithActive(true), WithOrder(1), WithRender(func(float32) error { rendered = true; return nil })))
	if err := m.Render(0); !errors.Is(err, boom) || rendered {
		t.Errorf("err = %v, second scene rendered = %v", err, rendered)
	}
}

func TestParallelUpdateJoinsErrors(t *testing.T) {
	m := NewManager(WithUpdateWorkers(4))
	defer m.Close()

	errA, errB := errors.New("a failed"), errors.New("b failed")
	var mu sync.Mutex
	updated := 0
	for i, e := range []error{errA, nil, errB, nil} {
		name := string(rune('a' + i))
		m.Add(NewScene(name, WithActive(true), WithUpdate(func(float32) error {
			mu.Lock()
			updated++
			mu.Unlock()
			return e
		})))
	}

	err := m.Update(0.5)
	if updated != 4 {
		t.Errorf("updated %d scenes, want 4", updated)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("err = %v", err)
	}
}
