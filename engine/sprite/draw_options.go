package sprite

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// drawParams collects the per-quad settings of one SpriteBatch.Draw call.
type drawParams struct {
	scale     common.Vec2
	size      common.Vec2
	rotation  float32
	tint      common.Color
	region    common.Rect
	hasRegion bool
	transform transform.Node
}

func defaultDrawParams() drawParams {
	return drawParams{
		scale: common.Vec2{1, 1},
		size:  common.Vec2{-1, -1},
		tint:  common.White,
	}
}

// DrawOption configures a single SpriteBatch.Draw call.
type DrawOption func(*drawParams)

// Scale multiplies the quad size.
//
// Parameters:
//   - sx, sy: the scale factors
//
// Returns:
//   - DrawOption: an option that sets the scale
func Scale(sx, sy float32) DrawOption {
	return func(p *drawParams) {
		p.scale = common.Vec2{sx, sy}
	}
}

// Size sets the unscaled quad size in world units. A component of -1 resolves to the
// region size when a Region is given, otherwise the texture size.
//
// Parameters:
//   - w, h: the quad size
//
// Returns:
//   - DrawOption: an option that sets the size
func Size(w, h float32) DrawOption {
	return func(p *drawParams) {
		p.size = common.Vec2{w, h}
	}
}

// Rotation rotates the quad counter-clockwise around its centre.
func Rotation(radians float32) DrawOption {
	return func(p *drawParams) {
		p.rotation = radians
	}
}

// Tint multiplies the texture colour, written into the quad's vertex colours.
func Tint(c common.Color) DrawOption {
	return func(p *drawParams) {
		p.tint = c
	}
}

// Region draws a sub-rectangle of the texture, given in texels with the origin at the
// bottom-left of the flipped image.
//
// Parameters:
//   - r: the source rectangle
//
// Returns:
//   - DrawOption: an option that sets the source region
func Region(r common.Rect) DrawOption {
	return func(p *drawParams) {
		p.region = r
		p.hasRegion = true
	}
}

// WithDrawTransform places the quad with a transform's world matrix. The x and y passed
// to Draw and the Scale and Rotation options are then ignored.
//
// Parameters:
//   - t: the transform to use; nil restores the default placement
//
// Returns:
//   - DrawOption: an option that sets the transform
func WithDrawTransform(t transform.Node) DrawOption {
	return func(p *drawParams) {
		p.transform = t
	}
}
