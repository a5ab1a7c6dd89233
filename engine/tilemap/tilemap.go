package tilemap

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/sprite"
)

var (
	// ErrUnknownSheet is returned for a tile whose SheetID names no sheet of the map.
	ErrUnknownSheet = errors.New("tile references an unknown sheet")

	// ErrTileID is returned for a tile whose ID is outside its sheet.
	ErrTileID = errors.New("tile id outside its sheet")
)

// tileMap is the implementation of the TileMap interface.
type tileMap struct {
	sheets []sprite.SpriteSheet
	layers []TileLayer

	width, height int
	renderX       int
	renderY       int
	position      common.Vec2
}

// TileMap is a stack of equally sized tile layers drawn from one or more sprite sheets.
// Tile (x, y) of the map is centred on Position + (x*w, y*h), where w and h are the cell
// size of the tile's sheet.
type TileMap interface {
	// Size returns the map width and height in tiles.
	Size() (int, int)

	// RenderSize returns how many tiles Draw visits per row and per column.
	RenderSize() (int, int)

	// AddLayer appends an empty layer drawn above the existing ones.
	AddLayer() TileLayer

	// Layer returns layer i, or nil if there is none.
	Layer(i int) TileLayer

	// LayerCount returns the number of layers.
	LayerCount() int

	// AddSheet appends a sheet and returns its SheetID.
	AddSheet(sheet sprite.SpriteSheet) int

	// Sheet returns the sheet with id, or nil.
	Sheet(id int) sprite.SpriteSheet

	// At returns the tile at (x, y) of layer 0.
	At(x, y int) Tile

	// Set stores a tile at (x, y) of layer 0.
	Set(x, y int, t Tile) error

	// Fill fills layer 0 with copies of t.
	Fill(t Tile)

	// Position returns the world position of tile (0, 0).
	Position() common.Vec2

	// SetPosition moves the whole map.
	SetPosition(x, y float32)

	// Sprite creates a sprite showing tile at map coordinate (x, y).
	//
	// Parameters:
	//   - tile: the tile to show
	//   - x, y: the map coordinate
	//
	// Returns:
	//   - *sprite.Sprite: the positioned sprite
	//   - error: ErrUnknownSheet or ErrTileID
	Sprite(tile Tile, x, y int) (*sprite.Sprite, error)

	// Draw queues every non-empty tile of every layer inside the render window. The window
	// starts at the tile under the batch camera's position and runs RenderSize tiles to the
	// right and downward. Tiles outside the map are skipped.
	//
	// Parameters:
	//   - batch: a batch between Begin and End, with a camera
	//
	// Returns:
	//   - error: sprite.ErrNoCamera, a tile error, or the batch's error
	Draw(batch sprite.SpriteBatch) error
}

var _ TileMap = &tileMap{}

// NewTileMap creates a map with one empty layer over sheet.
//
// Parameters:
//   - sheet: sheet 0, whose cell size is the map's tile size
//   - width, height: the map size in tiles
//   - renderTilesX, renderTilesY: the size of the window Draw visits
//   - options: variadic list of TileMapBuilderOption functions to configure the map
//
// Returns:
//   - TileMap: the new map
func NewTileMap(sheet sprite.SpriteSheet, width, height, renderTilesX, renderTilesY int, options ...TileMapBuilderOption) TileMap {
	m := &tileMap{
		width:   width,
		height:  height,
		renderX: renderTilesX,
		renderY: renderTilesY,
	}
	m.AddSheet(sheet)
	m.AddLayer()
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *tileMap) Size() (int, int) {
	return m.width, m.height
}

func (m *tileMap) RenderSize() (int, int) {
	return m.renderX, m.renderY
}

func (m *tileMap) AddLayer() TileLayer {
	l := NewTileLayer(m.width, m.height)
	m.layers = append(m.layers, l)
	return l
}

func (m *tileMap) Layer(i int) TileLayer {
	if i < 0 || i >= len(m.layers) {
		return nil
	}
	return m.layers[i]
}

func (m *tileMap) LayerCount() int {
	return len(m.layers)
}

func (m *tileMap) AddSheet(sheet sprite.SpriteSheet) int {
	m.sheets = append(m.sheets, sheet)
	return len(m.sheets) - 1
}

func (m *tileMap) Sheet(id int) sprite.SpriteSheet {
	if id < 0 || id >= len(m.sheets) {
		return nil
	}
	return m.sheets[id]
}

func (m *tileMap) At(x, y int) Tile {
	return m.layers[0].At(x, y)
}

func (m *tileMap) Set(x, y int, t Tile) error {
	return m.layers[0].Set(x, y, t)
}

func (m *tileMap) Fill(t Tile) {
	m.layers[0].Fill(t)
}

func (m *tileMap) Position() common.Vec2 {
	return m.position
}

func (m *tileMap) SetPosition(x, y float32) {
	m.position = common.Vec2{x, y}
}

// place resolves a tile to its sheet, cell region and world centre.
func (m *tileMap) place(tile Tile, x, y int) (sprite.SpriteSheet, common.Rect, common.Vec2, error) {
	sheet := m.Sheet(tile.SheetID)
	if sheet == nil {
		return nil, common.Rect{}, common.Vec2{}, fmt.Errorf("%w: sheet %d at (%d, %d)", ErrUnknownSheet, tile.SheetID, x, y)
	}
	region, ok := sheet.Region(tile.ID - 1)
	if !ok {
		return nil, common.Rect{}, common.Vec2{}, fmt.Errorf("%w: id %d of sheet %d at (%d, %d)", ErrTileID, tile.ID, tile.SheetID, x, y)
	}
	w, h := sheet.SpriteSize()
	pos := common.Vec2{
		m.position[0] + float32(x*w),
		m.position[1] + float32(y*h),
	}
	return sheet, region, pos, nil
}

func (m *tileMap) Sprite(tile Tile, x, y int) (*sprite.Sprite, error) {
	sheet, _, pos, err := m.place(tile, x, y)
	if err != nil {
		return nil, err
	}
	return sheet.Sprite(tile.ID-1, pos[0], pos[1]), nil
}

func (m *tileMap) Draw(batch sprite.SpriteBatch) error {
	cam := batch.Camera()
	if cam == nil {
		return sprite.ErrNoCamera
	}
	camPos := cam.Transform().Position()
	tileW, tileH := m.sheets[0].SpriteSize()
	firstX := int(camPos[0] / float32(tileW))
	firstY := int(camPos[1] / float32(tileH))

	for _, layer := range m.layers {
		for y := 0; y < m.renderY; y++ {
			for x := 0; x < m.renderX; x++ {
				tileX, tileY := firstX+x, firstY-y
				if !layer.InBounds(tileX, tileY) {
					continue
				}
				tile := layer.At(tileX, tileY)
				if tile.ID == 0 {
					continue
				}
				sheet, region, pos, err := m.place(tile, tileX, tileY)
				if err != nil {
					return err
				}
				if err := batch.Draw(sheet.Texture(), pos[0], pos[1], sprite.Region(region)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
