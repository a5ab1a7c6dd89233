package tilemap

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy2d/engine/resources"
	"github.com/Carmen-Shannon/oxy2d/engine/sprite"
)

// mapFile is the YAML layout of a tile map. Paths are relative to the map file and tile
// rows are listed top row first.
//
//	width: 4
//	height: 2
//	render: [20, 15]
//	position: [0, 0]
//	sheets:
//	  - texture: terrain.png
//	    sprite_width: 16
//	    sprite_height: 16
//	layers:
//	  - sheet: 0
//	    tiles:
//	      - [1, 1, 2, 2]
//	      - [3, 3, 0, 4]
type mapFile struct {
	Width    int         `yaml:"width"`
	Height   int         `yaml:"height"`
	Render   []int       `yaml:"render"`
	Position []float32   `yaml:"position"`
	Sheets   []sheetFile `yaml:"sheets"`
	Layers   []layerFile `yaml:"layers"`
}

type sheetFile struct {
	Texture      string `yaml:"texture"`
	SpriteWidth  int    `yaml:"sprite_width"`
	SpriteHeight int    `yaml:"sprite_height"`
}

type layerFile struct {
	Sheet int     `yaml:"sheet"`
	Tiles [][]int `yaml:"tiles"`
}

// LoadTileMapYAML builds a tile map from a YAML file read through the resource context.
// Sheet textures are loaded through the same context under the same lifespan.
//
// Parameters:
//   - c: a resource context with YAML and texture handlers
//   - path: the map file
//   - lifespan: the lifespan of the map file and its textures
//
// Returns:
//   - TileMap: the loaded map
//   - error: a load error, or resources.ErrSchema for a malformed file
func LoadTileMapYAML(c resources.Context, path, lifespan string) (TileMap, error) {
	doc, err := resources.YAML(c, path, lifespan)
	if err != nil {
		return nil, err
	}
	if err := doc.Require("width", "height", "sheets"); err != nil {
		return nil, err
	}
	var f mapFile
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	if f.Width <= 0 || f.Height <= 0 || len(f.Sheets) == 0 {
		return nil, fmt.Errorf("%w: %s needs a positive size and at least one sheet", resources.ErrSchema, path)
	}

	dir := filepath.Dir(path)
	sheets := make([]sprite.SpriteSheet, 0, len(f.Sheets))
	for i, s := range f.Sheets {
		tex, err := resources.Texture(c, filepath.Join(dir, s.Texture), lifespan)
		if err != nil {
			return nil, fmt.Errorf("tile map %s sheet %d: %w", path, i, err)
		}
		sheet, err := sprite.NewSpriteSheet(tex, s.SpriteWidth, s.SpriteHeight)
		if err != nil {
			return nil, fmt.Errorf("tile map %s sheet %d: %w", path, i, err)
		}
		sheets = append(sheets, sheet)
	}

	renderX, renderY := f.Width, f.Height
	if len(f.Render) == 2 {
		renderX, renderY = f.Render[0], f.Render[1]
	}
	opts := []TileMapBuilderOption{WithSheets(sheets[1:]...)}
	if len(f.Position) == 2 {
		opts = append(opts, WithPosition(f.Position[0], f.Position[1]))
	}
	m := NewTileMap(sheets[0], f.Width, f.Height, renderX, renderY, opts...)

	for i, lf := range f.Layers {
		if lf.Sheet < 0 || lf.Sheet >= len(sheets) {
			return nil, fmt.Errorf("%w: %s layer %d uses sheet %d", resources.ErrSchema, path, i, lf.Sheet)
		}
		layer := m.Layer(i)
		if layer == nil {
			layer = m.AddLayer()
		}
		if len(lf.Tiles) > f.Height {
			return nil, fmt.Errorf("%w: %s layer %d has %d rows, map height is %d", resources.ErrSchema, path, i, len(lf.Tiles), f.Height)
		}
		for row, ids := range lf.Tiles {
			if len(ids) > f.Width {
				return nil, fmt.Errorf("%w: %s layer %d row %d has %d tiles, map width is %d", resources.ErrSchema, path, i, row, len(ids), f.Width)
			}
			y := f.Height - 1 - row
			for x, id := range ids {
				layer.Set(x, y, Tile{ID: id, SheetID: lf.Sheet})
			}
		}
	}
	return m, nil
}
