package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*panZoomController)

// WithZoom sets the initial zoom level.
//
// Parameters:
//   - zoom: the starting zoom, clamped to the zoom bounds
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom
func WithZoom(zoom float32) CameraControllerOption {
	return func(pz *panZoomController) {
		pz.zoom = zoom
	}
}

// WithZoomBounds sets the minimum and maximum zoom levels.
//
// Parameters:
//   - min: smallest zoom (furthest out)
//   - max: largest zoom (furthest in)
//
// Returns:
//   - CameraControllerOption: functional option to set zoom bounds
func WithZoomBounds(min, max float32) CameraControllerOption {
	return func(pz *panZoomController) {
		pz.minZoom = min
		pz.maxZoom = max
	}
}

// WithZoomSpeed sets the zoom speed multiplier.
//
// Parameters:
//   - speed: relative zoom change per unit of input
//
// Returns:
//   - CameraControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(pz *panZoomController) {
		pz.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan speed multiplier.
//
// Parameters:
//   - speed: multiplier for pan input
//
// Returns:
//   - CameraControllerOption: functional option to set pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(pz *panZoomController) {
		pz.panSpeed = speed
	}
}
