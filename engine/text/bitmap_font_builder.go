package text

import (
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// BitmapFontBuilderOption is a functional option applied to a font during construction via NewBitmapFont.
type BitmapFontBuilderOption func(*bitmapFont)

// WithRuneRange sets the inclusive range of runes to rasterize. The default is printable ASCII, ' '..'~'.
//
// Parameters:
//   - first: the first rune
//   - last: the last rune
//
// Returns:
//   - BitmapFontBuilderOption: a function that sets the rune range
func WithRuneRange(first, last rune) BitmapFontBuilderOption {
	return func(f *bitmapFont) {
		f.first = first
		f.last = last
	}
}

// WithColumns sets how many cells each atlas row holds, default 16.
func WithColumns(columns int) BitmapFontBuilderOption {
	return func(f *bitmapFont) {
		f.columns = columns
	}
}

// WithFilter sets the atlas sampling filter, default nearest.
func WithFilter(filter renderer.Filter) BitmapFontBuilderOption {
	return func(f *bitmapFont) {
		f.filter = filter
	}
}
