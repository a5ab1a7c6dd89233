package resources

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

// asset is a cached object that counts releases.
type asset struct {
	path     string
	released int
	err      error
}

func (a *asset) Release() error {
	a.released++
	return a.err
}

// countingLoader builds assets and counts how often each path was decoded.
type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newCountingLoader() *countingLoader {
	return &countingLoader{calls: map[string]int{}, fail: map[string]bool{}}
}

func (l *countingLoader) load(path string) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[path]++
	if l.fail[path] {
		return nil, fmt.Errorf("cannot read %s", path)
	}
	return &asset{path: path}, nil
}

func TestRegisterDuplicate(t *testing.T) {
	c := NewContext()
	defer c.Close()

	h := LoaderFunc(func(string) (any, error) { return nil, nil })
	if err := c.Register(KindYAML, h); err != nil {
		t.Fatal(err)
	}
	if err := c.Register(KindYAML, h); !errors.Is(err, ErrDuplicateHandler) {
		t.Errorf("second Register = %v", err)
	}
}

func TestLoadWithoutHandler(t *testing.T) {
	c := NewContext()
	defer c.Close()
	if _, err := c.Load(KindMusic, "song.ogg", ""); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Load = %v", err)
	}
}

func TestLoadCachesByCleanPath(t *testing.T) {
	l := newCountingLoader()
	c := NewContext(WithHandler(KindTexture, LoaderFunc(l.load)))
	defer c.Close()

	a, err := c.Load(KindTexture, "art/../art/hero.png", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Load(KindTexture, "art/hero.png", "level1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("cached object not returned as-is")
	}
	if l.calls["art/hero.png"] != 1 {
		t.Errorf("decoded %d times, want 1", l.calls["art/hero.png"])
	}
	if !c.Cached(KindTexture, "./art/hero.png") || c.Cached(KindYAML, "art/hero.png") {
		t.Error("cache is not keyed by kind and clean path")
	}
}

func TestLoadErrorIsNotCached(t *testing.T) {
	l := newCountingLoader()
	l.fail["missing.png"] = true
	c := NewContext(WithHandler(KindTexture, LoaderFunc(l.load)))
	defer c.Close()

	if _, err := c.Load(KindTexture, "missing.png", ""); err == nil {
		t.Fatal("expected error")
	}
	if c.Cached(KindTexture, "missing.png") {
		t.Error("failed load was cached")
	}
}

func TestClearLifespan(t *testing.T) {
	l := newCountingLoader()
	c := NewContext(WithHandler(KindTexture, LoaderFunc(l.load)))
	defer c.Close()

	keep, _ := c.Load(KindTexture, "ui.png", "")
	lvl, _ := c.Load(KindTexture, "level.png", "level1")

	if err := c.ClearLifespan(""); !errors.Is(err, ErrDefaultLifespan) {
		t.Errorf("ClearLifespan(\"\") = %v", err)
	}
	if err := c.ClearLifespan("level1"); err != nil {
		t.Fatal(err)
	}
	if lvl.(*asset).released != 1 || keep.(*asset).released != 0 {
		t.Errorf("released: level %d, ui %d", lvl.(*asset).released, keep.(*asset).released)
	}
	if c.Cached(KindTexture, "level.png") || !c.Cached(KindTexture, "ui.png") {
		t.Error("wrong entries evicted")
	}

	// a cleared path loads again
	c.Load(KindTexture, "level.png", "level1")
	if l.calls["level.png"] != 2 {
		t.Errorf("reload decoded %d times, want 2", l.calls["level.png"])
	}
}

func TestClearLifespanJoinsReleaseErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewContext(WithHandler(KindTexture, LoaderFunc(func(p string) (any, error) {
		return &asset{path: p, err: boom}, nil
	})))
	defer c.Close()

	c.Load(KindTexture, "a.png", "tmp")
	c.Load(KindTexture, "b.png", "tmp")
	err := c.ClearLifespan("tmp")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if c.Cached(KindTexture, "a.png") || c.Cached(KindTexture, "b.png") {
		t.Error("entries kept after failed release")
	}
}

// splitHandler records on which goroutine Finish runs relative to Decode.
type splitHandler struct {
	decodes  atomic.Int32
	finishes int
	fail     string
}

func (h *splitHandler) Decode(path string) (any, error) {
	h.decodes.Add(1)
	if path == h.fail {
		return nil, errors.New("corrupt")
	}
	return path, nil
}

func (h *splitHandler) Finish(decoded any) (any, error) {
	// not synchronized: Preload must call Finish from the caller only
	h.finishes++
	return &asset{path: decoded.(string)}, nil
}

func TestPreload(t *testing.T) {
	h := &splitHandler{fail: "broken.png"}
	c := NewContext(WithWorkers(3), WithHandler(KindTexture, h))
	defer c.Close()

	c.Load(KindTexture, "cached.png", "")
	paths := []string{"a.png", "b.png", "./a.png", "cached.png", "broken.png", "c.png", "d.png"}
	err := c.Preload(KindTexture, "level1", paths...)
	if err == nil {
		t.Fatal("expected the broken file to fail")
	}

	// cached.png once by Load, then a, b, broken, c, d
	if got := h.decodes.Load(); got != 6 {
		t.Errorf("decodes = %d, want 6", got)
	}
	if h.finishes != 5 {
		t.Errorf("finishes = %d, want 5", h.finishes)
	}
	for _, p := range []string{"a.png", "b.png", "c.png", "d.png"} {
		if !c.Cached(KindTexture, p) {
			t.Errorf("%s not cached", p)
		}
	}
	if c.Cached(KindTexture, "broken.png") {
		t.Error("broken file cached")
	}

	if err := c.ClearLifespan("level1"); err != nil {
		t.Fatal(err)
	}
	if !c.Cached(KindTexture, "cached.png") {
		t.Error("preload moved an already cached file into its lifespan")
	}
}

func TestPreloadWithoutHandler(t *testing.T) {
	c := NewContext()
	defer c.Close()
	if err := c.Preload(KindSound, "", "a.wav"); !errors.Is(err, ErrNoHandler) {
		t.Errorf("err = %v", err)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	l := newCountingLoader()
	c := NewContext(WithHandler(KindTexture, LoaderFunc(l.load)))

	a, _ := c.Load(KindTexture, "a.png", "")
	b, _ := c.Load(KindTexture, "b.png", "level")
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if a.(*asset).released != 1 || b.(*asset).released != 1 {
		t.Error("Close did not release every lifespan")
	}
	if _, err := c.Load(KindTexture, "a.png", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close = %v", err)
	}
}

func TestTypedHelperWrongType(t *testing.T) {
	c := NewContext(WithHandler(KindTexture, LoaderFunc(func(string) (any, error) { return "not a texture", nil })))
	defer c.Close()
	if _, err := Texture(c, "a.png", ""); !errors.Is(err, ErrWrongType) {
		t.Errorf("err = %v", err)
	}
}
