package tilemap

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/sprite"
)

// TileMapBuilderOption is a functional option applied to a map during construction via NewTileMap.
type TileMapBuilderOption func(*tileMap)

// WithPosition places tile (0, 0) at (x, y).
func WithPosition(x, y float32) TileMapBuilderOption {
	return func(m *tileMap) {
		m.position = common.Vec2{x, y}
	}
}

// WithSheets appends sheets after sheet 0, so the first one given gets SheetID 1.
func WithSheets(sheets ...sprite.SpriteSheet) TileMapBuilderOption {
	return func(m *tileMap) {
		for _, s := range sheets {
			m.AddSheet(s)
		}
	}
}

// WithLayers adds n empty layers above layer 0.
func WithLayers(n int) TileMapBuilderOption {
	return func(m *tileMap) {
		for i := 0; i < n; i++ {
			m.AddLayer()
		}
	}
}
