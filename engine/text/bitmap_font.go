// Package text rasterizes font faces into atlas textures and draws strings through a sprite batch.
package text

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unicode"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/sprite"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrRuneRange is returned when the configured rune range is empty.
var ErrRuneRange = errors.New("bitmap font: empty rune range")

// Glyph locates one rasterized rune on the atlas.
type Glyph struct {
	// Region is the glyph cell in texels of the flipped atlas.
	Region common.Rect
	// Advance is how far the pen moves after the glyph.
	Advance float32
}

// bitmapFont is the implementation of the BitmapFont interface.
type bitmapFont struct {
	face    font.Face
	atlas   texture.Texture
	glyphs  map[rune]Glyph
	cellW   int
	cellH   int
	first   rune
	last    rune
	columns int
	filter  renderer.Filter
}

// BitmapFont is a font face rasterized into a grid of equally sized cells on one texture.
type BitmapFont interface {
	// Texture returns the glyph atlas.
	Texture() texture.Texture

	// Glyph returns the atlas cell of r.
	//
	// Parameters:
	//   - r: the rune to look up
	//
	// Returns:
	//   - Glyph: the cell and advance
	//   - bool: false if r was not rasterized
	Glyph(r rune) (Glyph, bool)

	// CellSize returns the size of one atlas cell in texels.
	CellSize() (int, int)

	// LineHeight returns the distance between baselines of consecutive lines.
	LineHeight() float32

	// Measure returns the width of the widest line and the total height of s.
	Measure(s string) (float32, float32)

	// DrawString queues one quad per visible rune of s on the batch. (x, y) is the
	// bottom-left corner of the first line. Newlines start a new line below, runes
	// missing from the atlas are drawn as '?'.
	//
	// Parameters:
	//   - batch: a batch between Begin and End
	//   - s: the text
	//   - x, y: the bottom-left corner of the first line in world units
	//   - tint: the text colour
	//
	// Returns:
	//   - error: the first error returned by the batch
	DrawString(batch sprite.SpriteBatch, s string, x, y float32, tint common.Color) error

	// Release frees the atlas texture.
	Release() error
}

var _ BitmapFont = &bitmapFont{}

// NewBitmapFont rasterizes the runes of face into a new atlas texture.
//
// Parameters:
//   - r: the renderer that owns the atlas
//   - face: the face to rasterize; nil uses basicfont.Face7x13
//   - options: variadic list of BitmapFontBuilderOption functions to configure the font
//
// Returns:
//   - BitmapFont: the new font
//   - error: ErrRuneRange or a texture error
func NewBitmapFont(r renderer.Renderer, face font.Face, options ...BitmapFontBuilderOption) (BitmapFont, error) {
	f := &bitmapFont{
		face:    common.Coalesce[font.Face](face, basicfont.Face7x13),
		first:   32,
		last:    126,
		columns: 16,
		filter:  renderer.FilterNearest,
	}
	for _, opt := range options {
		opt(f)
	}
	if f.last < f.first {
		return nil, fmt.Errorf("%w: %q..%q", ErrRuneRange, f.first, f.last)
	}
	if f.columns <= 0 {
		f.columns = 16
	}

	img := f.rasterize()
	atlas, err := texture.FromImage(r, img, texture.WithFilter(f.filter), texture.WithLabel("FontAtlas"))
	if err != nil {
		return nil, fmt.Errorf("bitmap font: %w", err)
	}
	f.atlas = atlas
	return f, nil
}

// rasterize draws every rune into its cell and records the glyph table. Cells are
// laid out top-down on the image, regions are stored for the flipped texture.
func (f *bitmapFont) rasterize() *image.RGBA {
	metrics := f.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	f.cellH = max(ascent+metrics.Descent.Ceil(), 1)

	f.cellW = 1
	for r := f.first; r <= f.last; r++ {
		if adv, ok := f.face.GlyphAdvance(r); ok {
			f.cellW = max(f.cellW, adv.Ceil())
		}
	}

	count := int(f.last-f.first) + 1
	rows := (count + f.columns - 1) / f.columns
	img := image.NewRGBA(image.Rect(0, 0, f.columns*f.cellW, rows*f.cellH))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: f.face,
	}
	f.glyphs = make(map[rune]Glyph, count)
	atlasH := img.Bounds().Dy()
	for i := 0; i < count; i++ {
		r := f.first + rune(i)
		adv, ok := f.face.GlyphAdvance(r)
		if !ok {
			continue
		}
		col, row := i%f.columns, i/f.columns
		d.Dot = fixed.P(col*f.cellW, row*f.cellH+ascent)
		d.DrawString(string(r))

		f.glyphs[r] = Glyph{
			Region:  common.NewRect(float32(col*f.cellW), float32(atlasH-(row+1)*f.cellH), float32(f.cellW), float32(f.cellH)),
			Advance: float32(adv.Ceil()),
		}
	}
	return img
}

func (f *bitmapFont) Texture() texture.Texture {
	return f.atlas
}

func (f *bitmapFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

func (f *bitmapFont) CellSize() (int, int) {
	return f.cellW, f.cellH
}

func (f *bitmapFont) LineHeight() float32 {
	return float32(f.cellH)
}

// lookup resolves r to a glyph, substituting '?' for runes outside the atlas.
func (f *bitmapFont) lookup(r rune) (Glyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	g, ok := f.glyphs['?']
	return g, ok
}

func (f *bitmapFont) Measure(s string) (float32, float32) {
	if s == "" {
		return 0, 0
	}
	var width, line float32
	lines := 1
	for _, r := range s {
		if r == '\n' {
			width = max(width, line)
			line = 0
			lines++
			continue
		}
		if g, ok := f.lookup(r); ok {
			line += g.Advance
		}
	}
	return max(width, line), float32(lines) * f.LineHeight()
}

func (f *bitmapFont) DrawString(batch sprite.SpriteBatch, s string, x, y float32, tint common.Color) error {
	penX, penY := x, y
	halfW, halfH := float32(f.cellW)/2, float32(f.cellH)/2
	for _, r := range s {
		if r == '\n' {
			penX = x
			penY -= f.LineHeight()
			continue
		}
		g, ok := f.lookup(r)
		if !ok {
			continue
		}
		if !unicode.IsSpace(r) {
			err := batch.Draw(f.atlas, penX+halfW, penY+halfH, sprite.Region(g.Region), sprite.Tint(tint))
			if err != nil {
				return err
			}
		}
		penX += g.Advance
	}
	return nil
}

func (f *bitmapFont) Release() error {
	return f.atlas.Release()
}
