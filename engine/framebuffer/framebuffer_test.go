package framebuffer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/oxy2d/engine/sprite"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
)

func TestFramebufferTarget(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	fb, err := NewFramebuffer(r, 320, 180)
	if err != nil {
		t.Fatal(err)
	}
	tr, ok := rec.Texture(fb.Texture())
	if !ok || !tr.Desc.RenderTarget || tr.Desc.Filter != renderer.FilterNearest {
		t.Fatalf("texture record %+v", tr.Desc)
	}

	screen := renderer.Viewport{X: 10, Width: 780, Height: 600}
	r.SetViewport(screen)
	if err := fb.Bind(); err != nil {
		t.Fatal(err)
	}
	if r.RenderTarget() != fb.Texture() || r.Viewport() != (renderer.Viewport{Width: 320, Height: 180}) {
		t.Errorf("bound: target %d viewport %+v", r.RenderTarget(), r.Viewport())
	}

	if err := fb.Resize(640, 360); err != nil {
		t.Fatal(err)
	}
	if w, h := fb.Size(); w != 640 || h != 360 || r.Viewport().Width != 640 {
		t.Errorf("resize: %dx%d viewport %+v", w, h, r.Viewport())
	}

	fb.Unbind()
	if r.RenderTarget() != renderer.ScreenTarget || r.Viewport() != screen {
		t.Errorf("unbound: target %d viewport %+v", r.RenderTarget(), r.Viewport())
	}

	fb.Release()
	if tr, _ := rec.Texture(fb.Texture()); !tr.Released {
		t.Error("texture not released")
	}
	if err := fb.Bind(); !errors.Is(err, ErrReleased) {
		t.Errorf("Bind after release = %v", err)
	}
}

func TestInvalidSize(t *testing.T) {
	r := renderer.NewRenderer(rendertest.NewRecorder())
	if _, err := NewFramebuffer(r, 0, 10); err == nil {
		t.Error("zero width accepted")
	}
}

func TestUpscaleSurface(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	surface, err := NewUpscaleSurface(r, 160, 90)
	if err != nil {
		t.Fatal(err)
	}
	defer surface.Release()

	batch, err := sprite.NewSpriteBatch(r, sprite.WithCamera(camera.NewCamera(camera.WithOrthographic(160, 90))))
	if err != nil {
		t.Fatal(err)
	}
	defer batch.Release()
	tex, err := texture.NewTexture(r, 8, 8)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := surface.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := batch.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := batch.Draw(tex, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := batch.End(); err != nil {
		t.Fatal(err)
	}
	if err := surface.End(); err != nil {
		t.Fatal(err)
	}

	draws := rec.Draws()
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(draws))
	}
	low := surface.Framebuffer().Texture()
	if draws[0].Target != low {
		t.Errorf("sprite drawn into %d, want %d", draws[0].Target, low)
	}
	up := draws[1]
	if up.Target != renderer.ScreenTarget || up.IndexCount != 6 {
		t.Errorf("upscale draw target %d indices %d", up.Target, up.IndexCount)
	}
	if up.Pipeline.Key() != upscalePipelineKey || len(up.Textures) != 1 || up.Textures[0] != low {
		t.Errorf("upscale draw pipeline %s textures %v", up.Pipeline.Key(), up.Textures)
	}
	if r.CurrentPipeline() != nil {
		t.Error("End left the upscale program bound")
	}
}
