package viewport

import "github.com/Carmen-Shannon/oxy2d/common"

type ViewportBuilderOption func(*viewport)

// WithClearColor sets the background colour.
//
// Parameters:
//   - c: the colour the window is cleared to
//
// Returns:
//   - ViewportBuilderOption: a function that sets the clear colour
func WithClearColor(c common.Color) ViewportBuilderOption {
	return func(v *viewport) {
		v.clear = c
	}
}
