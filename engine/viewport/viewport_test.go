package viewport

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
)

func TestLetterbox(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		aw, ah        int
		want          Screen
	}{
		{"exact", 1280, 720, 16, 9, Screen{0, 0, 1280, 720}},
		{"bars top and bottom", 1000, 600, 320, 180, Screen{0, 18, 1000, 563}},
		{"bars left and right", 1000, 500, 320, 180, Screen{55, 0, 889, 500}},
		{"square in wide", 800, 400, 1, 1, Screen{200, 0, 400, 400}},
		{"no aspect", 640, 480, 0, 0, Screen{0, 0, 640, 480}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Letterbox(tt.width, tt.height, tt.aw, tt.ah); got != tt.want {
				t.Errorf("Letterbox = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScreenStack(t *testing.T) {
	r := renderer.NewRenderer(rendertest.NewRecorder())
	v := NewViewport(r, 800, 600)
	if r.Viewport() != (renderer.Viewport{Width: 800, Height: 600}) {
		t.Fatalf("initial renderer viewport %+v", r.Viewport())
	}

	v.PushScreen(Screen{10, 20, 100, 50})
	if v.Depth() != 2 || r.Viewport() != (renderer.Viewport{X: 10, Y: 20, Width: 100, Height: 50}) {
		t.Errorf("after push: depth %d viewport %+v", v.Depth(), r.Viewport())
	}

	// resizing replaces the bottom screen and keeps the pushed one active
	v.OnResize(1024, 768)
	if v.Screen() != (Screen{10, 20, 100, 50}) {
		t.Errorf("resize changed the active screen: %+v", v.Screen())
	}

	v.PopScreen()
	if v.Screen() != (Screen{0, 0, 1024, 768}) || r.Viewport().Width != 1024 {
		t.Errorf("after pop: %+v", v.Screen())
	}

	v.PopScreen()
	if v.Depth() != 1 {
		t.Errorf("popped the last screen, depth %d", v.Depth())
	}
}

func TestConstantViewportResize(t *testing.T) {
	r := renderer.NewRenderer(rendertest.NewRecorder())
	v := NewConstantViewport(r, 320, 180, 320, 180)
	if v.Screen() != (Screen{0, 0, 320, 180}) {
		t.Fatalf("initial %+v", v.Screen())
	}
	v.OnResize(1000, 500)
	want := Screen{55, 0, 889, 500}
	if v.Screen() != want || r.Viewport() != want.Viewport() {
		t.Errorf("screen %+v, renderer %+v", v.Screen(), r.Viewport())
	}
}

func TestToLocal(t *testing.T) {
	v := NewConstantViewport(nil, 1000, 500, 16, 9)
	p, ok := v.ToLocal(60, 10)
	if !ok || p != (common.Vec2{5, 10}) {
		t.Errorf("ToLocal = %v %v", p, ok)
	}
	if _, ok := v.ToLocal(10, 10); ok {
		t.Error("point in the bar reported inside")
	}
}

func TestClear(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	blue := common.Color{R: 0, G: 0, B: 1, A: 1}
	v := NewViewport(r, 10, 10, WithClearColor(blue))
	v.Clear()
	if err := r.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	clears := rec.Clears()
	if len(clears) != 1 || clears[0] != blue {
		t.Errorf("clears = %v", clears)
	}
}
