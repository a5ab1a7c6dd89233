package sprite

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// Sprite is a texture, or a region of one, placed by a 2D transform.
type Sprite struct {
	Texture   texture.Texture
	Transform transform.Transform2D

	// Region is the source rectangle in texels. The zero Rect means the whole texture.
	Region common.Rect
}

// NewSprite creates a sprite showing the whole texture at (x, y).
//
// Parameters:
//   - tex: the texture to draw
//   - x, y: the world position of the sprite centre
//
// Returns:
//   - *Sprite: the new sprite
func NewSprite(tex texture.Texture, x, y float32) *Sprite {
	return &Sprite{
		Texture:   tex,
		Transform: transform.NewTransform2D(x, y),
	}
}

// Draw queues the sprite on a batch. Options given here are applied after the sprite's
// own transform and region, so a Region option overrides the sprite's.
//
// Parameters:
//   - batch: the batch to draw into
//   - opts: extra draw options such as Tint or Size
//
// Returns:
//   - error: the error returned by the batch
func (s *Sprite) Draw(batch SpriteBatch, opts ...DrawOption) error {
	base := make([]DrawOption, 0, len(opts)+2)
	if s.Transform != nil {
		base = append(base, WithDrawTransform(s.Transform))
	}
	if !s.Region.IsZero() {
		base = append(base, Region(s.Region))
	}
	return batch.Draw(s.Texture, 0, 0, append(base, opts...)...)
}
