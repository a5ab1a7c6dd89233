// Package camera provides a transform-backed camera that produces view and projection
// matrices for the renderer, plus a pan and zoom controller.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// Projection selects how a camera maps view space to clip space.
type Projection int

const (
	// ProjectionOrthographic maps a width x height box to the screen. The default.
	ProjectionOrthographic Projection = iota

	// ProjectionPerspective uses a vertical field of view.
	ProjectionPerspective
)

func (p Projection) String() string {
	if p == ProjectionPerspective {
		return "perspective"
	}
	return "orthographic"
}

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	transform transform.Transform

	projection Projection
	width      float32
	height     float32
	fov        float32
	aspect     float32
	near       float32
	far        float32

	// zoom scales orthographic extents around their centre; 1 means none.
	zoom float32

	projectionMatrix common.Mat4
	controller       CameraController
}

// Camera looks down its transform's forward axis. With the default orthographic projection
// and an untransformed camera, world units map one to one onto a width x height box with its
// origin in the bottom-left corner.
type Camera interface {
	// Transform returns the camera's transform. Moving it moves the view.
	//
	// Returns:
	//   - transform.Transform: the camera transform
	Transform() transform.Transform

	// Projection returns the active projection kind.
	Projection() Projection

	// Size returns the orthographic extents before zoom.
	Size() (width, height float32)

	// Zoom returns the current orthographic zoom factor.
	Zoom() float32

	// SetZoom sets the orthographic zoom factor. Values <= 0 are ignored.
	//
	// Parameters:
	//   - zoom: the new zoom factor, 1 shows the full Size
	SetZoom(zoom float32)

	// ViewMatrix returns the world-to-view matrix, a look-at from the transform's world
	// position along its Forward axis with its Up axis.
	//
	// Returns:
	//   - common.Mat4: the view matrix
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the view-to-clip matrix.
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	//
	// Returns:
	//   - common.Mat4: the combined matrix
	ViewProjectionMatrix() common.Mat4

	// SetOrthographic switches to an orthographic projection covering width x height units.
	//
	// Parameters:
	//   - width, height: the visible extents in world units
	SetOrthographic(width, height float32)

	// SetPerspective switches to a perspective projection.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - aspect: width / height
	//   - near, far: clipping plane distances
	SetPerspective(fov, aspect, near, far float32)

	// ScreenToWorld converts a point in window pixels, origin top-left, into world space on the
	// camera's z = 0 plane of view. Only meaningful for orthographic cameras.
	//
	// Parameters:
	//   - p: the point in pixels
	//   - viewportWidth, viewportHeight: the size of the window or viewport in pixels
	//
	// Returns:
	//   - common.Vec2: the world-space point
	ScreenToWorld(p common.Vec2, viewportWidth, viewportHeight float32) common.Vec2

	// Controller returns the attached controller, or nil.
	Controller() CameraController

	// SetController attaches a controller. Pass nil to detach.
	SetController(ctrl CameraController)

	// Update applies the controller's pending pan and zoom to the camera. No-op without a controller.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orthographic camera covering 800 x 600 units.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		transform:  transform.NewTransform(),
		projection: ProjectionOrthographic,
		width:      800,
		height:     600,
		fov:        45.0 * (math.Pi / 180.0), // radians
		aspect:     800.0 / 600.0,
		near:       0.01,
		far:        100.0,
		zoom:       1,
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	return c
}

func (c *cameraImpl) Transform() transform.Transform {
	return c.transform
}

func (c *cameraImpl) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Size() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetZoom(zoom float32) {
	if zoom <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
	c.updateProjection()
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	eye := c.transform.WorldPosition()
	return common.LookAt(eye, eye.Add(c.transform.Forward()), c.transform.Up())
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	view := c.ViewMatrix()
	return c.ProjectionMatrix().Mul(view)
}

func (c *cameraImpl) SetOrthographic(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionOrthographic
	c.width, c.height = width, height
	c.updateProjection()
}

func (c *cameraImpl) SetPerspective(fov, aspect, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionPerspective
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	c.updateProjection()
}

func (c *cameraImpl) ScreenToWorld(p common.Vec2, viewportWidth, viewportHeight float32) common.Vec2 {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return common.Vec2{}
	}
	ndc := common.Vec4{
		2*p[0]/viewportWidth - 1,
		1 - 2*p[1]/viewportHeight,
		0, 1,
	}
	inv, ok := c.ViewProjectionMatrix().Inverse()
	if !ok {
		return common.Vec2{}
	}
	w := inv.MulVec4(ndc)
	if w[3] != 0 {
		return common.Vec2{w[0] / w[3], w[1] / w[3]}
	}
	return common.Vec2{w[0], w[1]}
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	ctrl := c.controller
	c.mu.Unlock()
	if ctrl == nil {
		return
	}

	pan, zoom := ctrl.Consume()
	if pan != (common.Vec2{}) {
		c.transform.Translate(common.Vec3{pan[0], pan[1], 0})
	}
	if zoom > 0 {
		c.SetZoom(zoom)
	}
}

// updateProjection recalculates the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	if c.projection == ProjectionPerspective {
		c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
		return
	}

	// zoom keeps the centre of the box fixed
	w, h := c.width/c.zoom, c.height/c.zoom
	left := (c.width - w) / 2
	bottom := (c.height - h) / 2
	c.projectionMatrix = common.Ortho(left, left+w, bottom, bottom+h, c.near, c.far)
}
