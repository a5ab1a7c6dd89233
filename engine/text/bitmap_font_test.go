package text

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/oxy2d/engine/sprite"
)

func newFont(t *testing.T, options ...BitmapFontBuilderOption) (*rendertest.Recorder, renderer.Renderer, BitmapFont) {
	t.Helper()
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	f, err := NewBitmapFont(r, nil, options...)
	if err != nil {
		t.Fatal(err)
	}
	return rec, r, f
}

// cellHasInk reports whether any texel of region has non-zero alpha.
func cellHasInk(pix []byte, atlasW int, region common.Rect) bool {
	for y := int(region.Y); y < int(region.Y2()); y++ {
		for x := int(region.X); x < int(region.X2()); x++ {
			if pix[(y*atlasW+x)*4+3] != 0 {
				return true
			}
		}
	}
	return false
}

func TestDefaultAtlasLayout(t *testing.T) {
	_, _, f := newFont(t)

	// Face7x13 cells are 7x13, 95 runes over 16 columns make 6 rows
	if w, h := f.CellSize(); w != 7 || h != 13 {
		t.Fatalf("cell size = %dx%d", w, h)
	}
	tex := f.Texture()
	if tex.Width() != 112 || tex.Height() != 78 {
		t.Fatalf("atlas = %dx%d", tex.Width(), tex.Height())
	}

	tests := []struct {
		r    rune
		want common.Rect
	}{
		{' ', common.NewRect(0, 65, 7, 13)},
		{'A', common.NewRect(7, 39, 7, 13)},
		{'~', common.NewRect(98, 0, 7, 13)},
	}
	for _, tt := range tests {
		g, ok := f.Glyph(tt.r)
		if !ok {
			t.Errorf("%q missing", tt.r)
			continue
		}
		if g.Region != tt.want || g.Advance != 7 {
			t.Errorf("%q: region %v advance %v, want %v advance 7", tt.r, g.Region, g.Advance, tt.want)
		}
	}
	if _, ok := f.Glyph('é'); ok {
		t.Error("rune outside the range was rasterized")
	}

	space, _ := f.Glyph(' ')
	a, _ := f.Glyph('A')
	if cellHasInk(tex.Pixels(), tex.Width(), space.Region) {
		t.Error("space cell has ink")
	}
	if !cellHasInk(tex.Pixels(), tex.Width(), a.Region) {
		t.Error("'A' cell is empty")
	}
}

func TestMeasure(t *testing.T) {
	_, _, f := newFont(t)

	tests := []struct {
		s    string
		w, h float32
	}{
		{"", 0, 0},
		{"abc", 21, 13},
		{"ab\nabcd\n", 28, 39},
	}
	for _, tt := range tests {
		if w, h := f.Measure(tt.s); w != tt.w || h != tt.h {
			t.Errorf("Measure(%q) = %v, %v; want %v, %v", tt.s, w, h, tt.w, tt.h)
		}
	}
}

func TestDrawString(t *testing.T) {
	rec, r, f := newFont(t)
	batch, err := sprite.NewSpriteBatch(r, sprite.WithCamera(camera.NewCamera()))
	if err != nil {
		t.Fatal(err)
	}

	batch.Begin()
	if err := f.DrawString(batch, "H i\nAé", 10, 20, common.Red); err != nil {
		t.Fatal(err)
	}
	if batch.Pending() != 4 {
		t.Fatalf("pending = %d, want 4", batch.Pending())
	}
	if err := batch.End(); err != nil {
		t.Fatal(err)
	}

	draws := rec.Draws()
	if len(draws) != 1 || draws[0].IndexCount != 24 {
		t.Fatalf("draws = %+v", draws)
	}
	floats := rendertest.Floats(draws[0].Vertices)
	stride := mesh.VertexSize / 4

	// first vertex of each quad is its bottom-left corner
	corners := [][2]float32{{10, 20}, {24, 20}, {10, 7}, {17, 7}}
	for i, want := range corners {
		v := floats[i*4*stride:]
		if !common.ApproxEqual(v[0], want[0], 1e-4) || !common.ApproxEqual(v[1], want[1], 1e-4) {
			t.Errorf("glyph %d at (%v, %v), want %v", i, v[0], v[1], want)
		}
		if v[9] != 1 || v[10] != 0 || v[12] != 1 {
			t.Errorf("glyph %d colour = %v", i, v[9:13])
		}
	}

	// the unknown rune is drawn with the '?' cell
	q, _ := f.Glyph('?')
	uv := f.Texture().RegionToUVs(q.Region)
	last := floats[3*4*stride:]
	if !common.ApproxEqual(last[7], uv.X, 1e-5) || !common.ApproxEqual(last[8], uv.Y, 1e-5) {
		t.Errorf("fallback uv = (%v, %v), want (%v, %v)", last[7], last[8], uv.X, uv.Y)
	}
}

func TestEmptyRuneRange(t *testing.T) {
	r := renderer.NewRenderer(rendertest.NewRecorder())
	if _, err := NewBitmapFont(r, nil, WithRuneRange('z', 'a')); !errors.Is(err, ErrRuneRange) {
		t.Errorf("err = %v", err)
	}
}

func TestReleaseFreesAtlas(t *testing.T) {
	rec, _, f := newFont(t, WithRuneRange('0', '9'), WithColumns(5))
	tex := f.Texture()
	if tex.Width() != 35 || tex.Height() != 26 {
		t.Fatalf("atlas = %dx%d", tex.Width(), tex.Height())
	}
	if err := f.Release(); err != nil {
		t.Fatal(err)
	}
	if tr, _ := rec.Texture(tex.Handle()); !tr.Released {
		t.Error("atlas texture not released")
	}
}
