package sprite

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// ErrSpriteSize is returned by NewSpriteSheet for a non-positive sprite size.
var ErrSpriteSize = errors.New("sprite sheet: sprite size must be positive")

// spriteSheet is the implementation of the SpriteSheet interface.
type spriteSheet struct {
	texture      texture.Texture
	spriteWidth  int
	spriteHeight int
}

// SpriteSheet slices a texture into a grid of equally sized sprites. Index 0 is the
// bottom-left cell of the flipped texture and indices run along rows.
type SpriteSheet interface {
	// Texture returns the sheet texture.
	Texture() texture.Texture

	// SpriteSize returns the size of one cell in texels.
	SpriteSize() (width, height int)

	// SizeInSprites returns the number of whole cells per row and per column.
	//
	// Returns:
	//   - int: cells per row
	//   - int: cells per column
	SizeInSprites() (int, int)

	// SpriteCount returns the number of cells on the sheet.
	SpriteCount() int

	// Region returns the texel rectangle of a cell.
	//
	// Parameters:
	//   - index: the cell index
	//
	// Returns:
	//   - common.Rect: the cell rectangle
	//   - bool: false if index is outside the sheet
	Region(index int) (common.Rect, bool)

	// Sprite creates a sprite showing one cell centred on (x, y).
	//
	// Parameters:
	//   - index: the cell index
	//   - x, y: the world position of the sprite centre
	//
	// Returns:
	//   - *Sprite: the sprite, or nil if index is outside the sheet
	Sprite(index int, x, y float32) *Sprite
}

var _ SpriteSheet = &spriteSheet{}

// NewSpriteSheet creates a sheet of spriteWidth x spriteHeight cells over tex.
//
// Parameters:
//   - tex: the sheet texture
//   - spriteWidth, spriteHeight: the cell size in texels
//
// Returns:
//   - SpriteSheet: the new sheet
//   - error: ErrSpriteSize if either size is not positive
func NewSpriteSheet(tex texture.Texture, spriteWidth, spriteHeight int) (SpriteSheet, error) {
	if spriteWidth <= 0 || spriteHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSpriteSize, spriteWidth, spriteHeight)
	}
	return &spriteSheet{
		texture:      tex,
		spriteWidth:  spriteWidth,
		spriteHeight: spriteHeight,
	}, nil
}

func (s *spriteSheet) Texture() texture.Texture {
	return s.texture
}

func (s *spriteSheet) SpriteSize() (int, int) {
	return s.spriteWidth, s.spriteHeight
}

func (s *spriteSheet) SizeInSprites() (int, int) {
	w, h := s.texture.Size()
	return w / s.spriteWidth, h / s.spriteHeight
}

func (s *spriteSheet) SpriteCount() int {
	cols, rows := s.SizeInSprites()
	return cols * rows
}

func (s *spriteSheet) Region(index int) (common.Rect, bool) {
	cols, rows := s.SizeInSprites()
	if index < 0 || index >= cols*rows {
		return common.Rect{}, false
	}
	row, col := index/cols, index%cols
	return common.NewRect(
		float32(col*s.spriteWidth),
		float32(row*s.spriteHeight),
		float32(s.spriteWidth),
		float32(s.spriteHeight),
	), true
}

func (s *spriteSheet) Sprite(index int, x, y float32) *Sprite {
	region, ok := s.Region(index)
	if !ok {
		return nil
	}
	return &Sprite{
		Texture:   s.texture,
		Transform: transform.NewTransform2D(x, y),
		Region:    region,
	}
}
