package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
)

// CameraController accumulates pan and zoom input between camera updates. The camera drains
// it with Consume once per Update, so input from several callbacks in one frame adds up.
type CameraController interface {
	// PanRight queues a move along world +X. Negative delta moves left.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanRight(delta float32)

	// PanUp queues a move along world +Y. Negative delta moves down.
	//
	// Parameters:
	//   - delta: pan amount scaled by PanSpeed
	PanUp(delta float32)

	// Pan queues a move by an arbitrary offset, scaled by PanSpeed.
	Pan(delta common.Vec2)

	// Zoom adjusts the zoom level. Positive delta zooms in. The result is clamped to
	// [MinZoom, MaxZoom].
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// ZoomLevel returns the current zoom level.
	ZoomLevel() float32

	// SetZoomLevel sets the zoom level directly, clamped to [MinZoom, MaxZoom].
	SetZoomLevel(zoom float32)

	// MinZoom returns the smallest allowed zoom level.
	MinZoom() float32

	// MaxZoom returns the largest allowed zoom level.
	MaxZoom() float32

	// PanSpeed returns the pan speed multiplier.
	PanSpeed() float32

	// ZoomSpeed returns the zoom speed multiplier.
	ZoomSpeed() float32

	// Consume returns the pan offset queued since the last call and the current zoom level,
	// then clears the queued offset.
	//
	// Returns:
	//   - common.Vec2: the pending world-space offset
	//   - float32: the zoom level
	Consume() (common.Vec2, float32)
}

// panZoomController is the implementation of CameraController.
type panZoomController struct {
	mu *sync.Mutex

	pending common.Vec2
	zoom    float32

	minZoom float32
	maxZoom float32

	panSpeed  float32
	zoomSpeed float32
}

var _ CameraController = &panZoomController{}

// NewPanZoomController creates a controller at zoom 1 with zoom bounds [0.1, 10].
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewPanZoomController(options ...CameraControllerOption) CameraController {
	pz := &panZoomController{
		mu:        &sync.Mutex{},
		zoom:      1,
		minZoom:   0.1,
		maxZoom:   10,
		panSpeed:  1,
		zoomSpeed: 0.1,
	}
	for _, option := range options {
		option(pz)
	}
	pz.zoom = common.Clamp(pz.zoom, pz.minZoom, pz.maxZoom)
	return pz
}

func (pz *panZoomController) PanRight(delta float32) {
	pz.Pan(common.Vec2{delta, 0})
}

func (pz *panZoomController) PanUp(delta float32) {
	pz.Pan(common.Vec2{0, delta})
}

func (pz *panZoomController) Pan(delta common.Vec2) {
	pz.mu.Lock()
	defer pz.mu.Unlock()
	// pan distance shrinks as the view zooms in
	pz.pending = pz.pending.Add(delta.Scale(pz.panSpeed / pz.zoom))
}

func (pz *panZoomController) Zoom(delta float32) {
	pz.mu.Lock()
	defer pz.mu.Unlock()
	pz.zoom = common.Clamp(pz.zoom*(1+delta*pz.zoomSpeed), pz.minZoom, pz.maxZoom)
}

func (pz *panZoomController) ZoomLevel() float32 {
	pz.mu.Lock()
	defer pz.mu.Unlock()
	return pz.zoom
}

func (pz *panZoomController) SetZoomLevel(zoom float32) {
	pz.mu.Lock()
	defer pz.mu.Unlock()
	pz.zoom = common.Clamp(zoom, pz.minZoom, pz.maxZoom)
}

func (pz *panZoomController) MinZoom() float32 {
	return pz.minZoom
}

func (pz *panZoomController) MaxZoom() float32 {
	return pz.maxZoom
}

func (pz *panZoomController) PanSpeed() float32 {
	return pz.panSpeed
}

func (pz *panZoomController) ZoomSpeed() float32 {
	return pz.zoomSpeed
}

func (pz *panZoomController) Consume() (common.Vec2, float32) {
	pz.mu.Lock()
	defer pz.mu.Unlock()
	pan := pz.pending
	pz.pending = common.Vec2{}
	return pan, pz.zoom
}
