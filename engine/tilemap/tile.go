// Package tilemap draws grids of sprite sheet cells in layers through a sprite batch.
package tilemap

import (
	"errors"
	"fmt"
	"maps"
)

// ErrOutOfBounds is returned when a tile coordinate lies outside the layer.
var ErrOutOfBounds = errors.New("tile coordinate out of bounds")

// Tile is one grid cell. ID 0 is empty, any other ID draws cell ID-1 of sheet SheetID.
type Tile struct {
	ID       int
	SheetID  int
	UserData map[string]any
}

// Clone returns a copy of t with its own UserData map.
func (t Tile) Clone() Tile {
	if t.UserData != nil {
		t.UserData = maps.Clone(t.UserData)
	}
	return t
}

// tileLayer is the implementation of the TileLayer interface.
type tileLayer struct {
	width, height int
	tiles         []Tile
}

// TileLayer is a width x height grid of tiles. (0, 0) is the bottom-left tile.
type TileLayer interface {
	// Size returns the layer width and height in tiles.
	Size() (int, int)

	// InBounds reports whether (x, y) is a tile of the layer.
	InBounds(x, y int) bool

	// At returns the tile at (x, y), or the empty tile outside the layer.
	At(x, y int) Tile

	// Set stores a tile at (x, y).
	//
	// Parameters:
	//   - x, y: the tile coordinate
	//   - t: the tile
	//
	// Returns:
	//   - error: ErrOutOfBounds outside the layer
	Set(x, y int, t Tile) error

	// Fill stores a copy of t in every cell. Each cell gets its own UserData map.
	Fill(t Tile)
}

var _ TileLayer = &tileLayer{}

// NewTileLayer creates a layer of empty tiles.
//
// Parameters:
//   - width, height: the layer size in tiles
//
// Returns:
//   - TileLayer: the new layer
func NewTileLayer(width, height int) TileLayer {
	width, height = max(width, 0), max(height, 0)
	return &tileLayer{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
	}
}

func (l *tileLayer) Size() (int, int) {
	return l.width, l.height
}

func (l *tileLayer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.width && y < l.height
}

func (l *tileLayer) At(x, y int) Tile {
	if !l.InBounds(x, y) {
		return Tile{}
	}
	return l.tiles[y*l.width+x]
}

func (l *tileLayer) Set(x, y int, t Tile) error {
	if !l.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, l.width, l.height)
	}
	l.tiles[y*l.width+x] = t
	return nil
}

func (l *tileLayer) Fill(t Tile) {
	for i := range l.tiles {
		l.tiles[i] = t.Clone()
	}
}
