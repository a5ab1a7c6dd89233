package sprite

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
)

func TestSpriteSheetRegions(t *testing.T) {
	f := newFixture(t)
	sheet, err := NewSpriteSheet(f.texture(t, 64, 32), 16, 16)
	if err != nil {
		t.Fatal(err)
	}

	if cols, rows := sheet.SizeInSprites(); cols != 4 || rows != 2 {
		t.Errorf("size in sprites = %dx%d, want 4x2", cols, rows)
	}
	if sheet.SpriteCount() != 8 {
		t.Errorf("sprite count = %d", sheet.SpriteCount())
	}

	tests := []struct {
		index int
		want  common.Rect
		ok    bool
	}{
		{0, common.NewRect(0, 0, 16, 16), true},
		{3, common.NewRect(48, 0, 16, 16), true},
		{5, common.NewRect(16, 16, 16, 16), true},
		{8, common.Rect{}, false},
		{-1, common.Rect{}, false},
	}
	for _, tc := range tests {
		got, ok := sheet.Region(tc.index)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Region(%d) = %v, %v; want %v, %v", tc.index, got, ok, tc.want, tc.ok)
		}
	}

	if _, err := NewSpriteSheet(sheet.Texture(), 0, 16); !errors.Is(err, ErrSpriteSize) {
		t.Errorf("zero sprite width: %v", err)
	}
}

func TestSheetSpriteDrawsRegion(t *testing.T) {
	f := newFixture(t)
	sheet, err := NewSpriteSheet(f.texture(t, 32, 16), 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	s := sheet.Sprite(1, 50, 60)
	if s == nil {
		t.Fatal("Sprite(1) = nil")
	}
	if sheet.Sprite(2, 0, 0) != nil {
		t.Error("out of range Sprite is not nil")
	}

	f.batch.Begin()
	if err := s.Draw(f.batch); err != nil {
		t.Fatal(err)
	}
	f.batch.End()

	d := f.rec.Draws()[0]
	x, y, _, u, v := vertex(d, 0)
	if !near(x, 42) || !near(y, 52) || !near(u, 0.5) || !near(v, 0) {
		t.Errorf("vertex 0 = pos (%v, %v) uv (%v, %v)", x, y, u, v)
	}
	x, y, _, u, v = vertex(d, 2)
	if !near(x, 58) || !near(y, 68) || !near(u, 1) || !near(v, 1) {
		t.Errorf("vertex 2 = pos (%v, %v) uv (%v, %v)", x, y, u, v)
	}
}

func TestSpriteFollowsTransform(t *testing.T) {
	f := newFixture(t)
	s := NewSprite(f.texture(t, 2, 2), 0, 0)
	s.Transform.SetPosition(common.Vec2{5, 5})

	f.batch.Begin()
	s.Draw(f.batch, Tint(common.Blue))
	f.batch.End()

	x, y, _, _, _ := vertex(f.rec.Draws()[0], 0)
	if !near(x, 4) || !near(y, 4) {
		t.Errorf("vertex 0 = (%v, %v), want (4, 4)", x, y)
	}
}
