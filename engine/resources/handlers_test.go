package resources

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"golang.org/x/image/font/gofont/goregular"
)

func newDefaultContext(t *testing.T) (*rendertest.Recorder, Context) {
	t.Helper()
	rec := rendertest.NewRecorder()
	c := NewContext(WithDefaultHandlers(renderer.NewRenderer(rec)))
	t.Cleanup(func() { c.Close() })
	return rec, c
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTextureHandler(t *testing.T) {
	rec, c := newDefaultContext(t)

	// top row red, bottom row blue
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.Set(x, 0, color.RGBA{255, 0, 0, 255})
		img.Set(x, 1, color.RGBA{0, 0, 255, 255})
	}
	path := filepath.Join(t.TempDir(), "tiny.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, img)
	f.Close()

	tex, err := Texture(c, path, "level")
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 2 || tex.Height() != 2 || tex.Label() != "tiny.png" {
		t.Errorf("texture %s %dx%d", tex.Label(), tex.Width(), tex.Height())
	}
	if px := tex.Pixels()[:4]; px[2] != 255 || px[0] != 0 {
		t.Errorf("first texel %v, want blue after the flip", px)
	}

	c.ClearLifespan("level")
	if tr, _ := rec.Texture(tex.Handle()); !tr.Released {
		t.Error("texture not released with its lifespan")
	}
}

func copyAsset(t *testing.T, dir, name string) {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "sprite", "assets", name))
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, name, string(src))
}

func TestShaderHandler(t *testing.T) {
	_, c := newDefaultContext(t)
	dir := t.TempDir()
	copyAsset(t, dir, "sprite_vertex.wgsl")
	copyAsset(t, dir, "sprite_fragment.wgsl")

	good := writeFile(t, dir, "glow.yaml", `
name: glow
shaders:
  vertex: sprite_vertex.wgsl
  fragment: sprite_fragment.wgsl
blend: additive
`)
	p, err := Pipeline(c, good, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Key() != "glow" || p.BlendMode() != pipeline.BlendAdditive {
		t.Errorf("pipeline %s blend %v", p.Key(), p.BlendMode())
	}
	if len(p.TextureSlots()) != 1 {
		t.Errorf("texture slots = %d, want 1", len(p.TextureSlots()))
	}

	tests := []struct {
		name, body string
	}{
		{"no_name.yaml", "shaders:\n  vertex: sprite_vertex.wgsl\n  fragment: sprite_fragment.wgsl\n"},
		{"no_fragment.yaml", "name: x\nshaders:\n  vertex: sprite_vertex.wgsl\n"},
		{"bad_blend.yaml", "name: x\nshaders:\n  vertex: sprite_vertex.wgsl\n  fragment: sprite_fragment.wgsl\nblend: multiply\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Pipeline(c, writeFile(t, dir, tt.name, tt.body), ""); !errors.Is(err, ErrSchema) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestYAMLDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "level.yaml", "width: 20\nheight: 15\ntiles: [1, 2, 3]\n")

	_, c := newDefaultContext(t)
	doc, err := YAML(c, path, "")
	if err != nil {
		t.Fatal(err)
	}
	var level struct {
		Width  int   `yaml:"width"`
		Height int   `yaml:"height"`
		Tiles  []int `yaml:"tiles"`
	}
	if err := doc.Decode(&level); err != nil {
		t.Fatal(err)
	}
	if level.Width != 20 || level.Height != 15 || len(level.Tiles) != 3 {
		t.Errorf("decoded %+v", level)
	}

	strict := NewContext(WithHandler(KindYAML, NewYAMLHandler("width", "height", "sheet")))
	defer strict.Close()
	if _, err := YAML(strict, path, ""); !errors.Is(err, ErrSchema) {
		t.Errorf("missing key err = %v", err)
	}
}

// tone yields n constant samples.
type tone struct{ n int }

func (s *tone) Stream(samples [][2]float64) (int, bool) {
	if s.n <= 0 {
		return 0, false
	}
	n := min(len(samples), s.n)
	for i := range samples[:n] {
		samples[i] = [2]float64{0.1, 0.1}
	}
	s.n -= n
	return n, true
}

func (s *tone) Err() error { return nil }

func TestSoundAndMusicHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beep.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, &tone{n: 2205}, format); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, c := newDefaultContext(t)
	clip, err := Sound(c, path, "")
	if err != nil {
		t.Fatal(err)
	}
	if clip.Samples() != 2205 {
		t.Errorf("clip samples = %d", clip.Samples())
	}

	stream, err := Music(c, path, "menu")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.ClearLifespan("menu"); err != nil {
		t.Fatal(err)
	}
	// a closed stream reports the end of the file
	if finished, _ := stream.FillBuffer(0); !finished {
		t.Error("stream still decoding after its lifespan was cleared")
	}
}

func TestFontHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	_, c := newDefaultContext(t)
	f, err := Font(c, path, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.Glyph('A'); !ok {
		t.Error("'A' not rasterized")
	}
	if _, h := f.CellSize(); h < DefaultFontSize {
		t.Errorf("cell height %d below the point size", h)
	}

	bad := writeFile(t, t.TempDir(), "bad.ttf", "not a font")
	if _, err := Font(c, bad, ""); err == nil {
		t.Error("expected a parse error")
	}
}
