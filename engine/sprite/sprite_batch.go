// Package sprite batches textured quads into as few draw calls as possible and provides
// sprites and sprite sheets on top of the batch.
package sprite

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderable"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

// DefaultCapacity is the number of quads a batch holds when WithCapacity is not given.
const DefaultCapacity = 1024

var (
	// ErrState is the kind shared by every batch state error. Test with errors.Is.
	ErrState = errors.New("sprite batch state error")

	// ErrAlreadyDrawing is returned by Begin between Begin and End.
	ErrAlreadyDrawing = fmt.Errorf("%w: already drawing", ErrState)

	// ErrNotDrawing is returned by Draw, Flush and End outside Begin and End.
	ErrNotDrawing = fmt.Errorf("%w: not drawing", ErrState)

	// ErrNoCamera is returned when pending quads are flushed without a camera.
	ErrNoCamera = fmt.Errorf("%w: no camera set", ErrState)

	// ErrNilTexture is returned by Draw when no texture is given.
	ErrNilTexture = errors.New("sprite batch: nil texture")

	// ErrCapacity is returned by NewSpriteBatch for a capacity below one quad.
	ErrCapacity = errors.New("sprite batch: capacity must be positive")
)

// spriteBatch is the implementation of the SpriteBatch interface.
type spriteBatch struct {
	mu *sync.Mutex

	r          renderer.Renderer
	capacity   int
	renderable renderable.Renderable
	mesh       mesh.Mesh

	// vertices and indices alias the mesh's host buffers.
	vertices []mesh.Vertex
	indices  []uint32

	camera        camera.Camera
	projection    common.Mat4
	hasProjection bool

	// options consumed by NewSpriteBatch
	pipeline  pipeline.Pipeline
	transform transform.Node

	texture     texture.Texture
	vertexCount int
	indexCount  int
	drawing     bool
	renderCalls int
}

// SpriteBatch collects quads that share a texture into one dynamic mesh and draws them
// with a single call per texture run. A draw that needs a different texture, or would
// overflow the mesh, flushes the pending quads first.
type SpriteBatch interface {
	// Begin starts a batch and resets the render call counter.
	//
	// Returns:
	//   - error: ErrAlreadyDrawing if Begin was already called without End
	Begin() error

	// Draw queues one textured quad centred on (x, y).
	//
	// Parameters:
	//   - tex: the texture to sample
	//   - x, y: the world position of the quad centre
	//   - opts: per-draw options such as Size, Scale, Rotation, Tint and Region
	//
	// Returns:
	//   - error: ErrNotDrawing, ErrNilTexture, or an error from an implicit flush
	Draw(tex texture.Texture, x, y float32, opts ...DrawOption) error

	// Flush uploads the pending quads and draws them. It does nothing when no quads are
	// pending. The bound texture is kept.
	//
	// Returns:
	//   - error: ErrNotDrawing, ErrNoCamera or a renderer error
	Flush() error

	// End flushes pending quads and stops the batch. The batch is stopped even when the
	// flush fails, in which case the pending quads are dropped.
	//
	// Returns:
	//   - error: ErrNotDrawing or the flush error
	End() error

	// Camera returns the camera whose view matrix is used on flush.
	Camera() camera.Camera

	// SetCamera sets the camera used on flush.
	SetCamera(c camera.Camera)

	// Projection returns the projection used on flush: the one set with SetProjection, or
	// the camera's projection when none was set.
	Projection() common.Mat4

	// SetProjection overrides the camera's projection matrix.
	SetProjection(m common.Mat4)

	// RenderCalls returns the number of flushes that drew since Begin.
	RenderCalls() int

	// Capacity returns the maximum number of quads per flush.
	Capacity() int

	// Pending returns the number of quads waiting for a flush.
	Pending() int

	// Drawing reports whether the batch is between Begin and End.
	Drawing() bool

	// Texture returns the texture of the current or last run, or nil.
	Texture() texture.Texture

	// Renderable returns the renderable that draws the batch mesh.
	Renderable() renderable.Renderable

	// Release frees the batch mesh.
	Release() error
}

var _ SpriteBatch = &spriteBatch{}

// NewSpriteBatch creates a batch with a dynamic mesh holding Capacity quads.
//
// Parameters:
//   - r: the renderer to draw with
//   - options: variadic list of SpriteBatchBuilderOption functions to configure the batch
//
// Returns:
//   - SpriteBatch: the new batch
//   - error: ErrCapacity, a pipeline compile error, or a buffer allocation error
func NewSpriteBatch(r renderer.Renderer, options ...SpriteBatchBuilderOption) (SpriteBatch, error) {
	b := &spriteBatch{
		mu:       &sync.Mutex{},
		r:        r,
		capacity: DefaultCapacity,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, b.capacity)
	}

	if b.pipeline == nil {
		p, err := NewDefaultPipeline("sprite_batch")
		if err != nil {
			return nil, err
		}
		b.pipeline = p
	}

	indices := make([]uint32, b.capacity*6)
	for i := range indices {
		indices[i] = uint32(i)
	}
	m, err := mesh.NewMesh(r, make([]mesh.Vertex, b.capacity*4), indices,
		mesh.WithUsage(mesh.UsageDynamic),
		mesh.WithLabel("SpriteBatch"),
	)
	if err != nil {
		return nil, fmt.Errorf("sprite batch: %w", err)
	}
	b.mesh = m
	b.vertices = m.Vertices()
	b.indices = m.Indices()

	b.renderable = renderable.NewRenderable(
		renderable.WithMesh(m),
		renderable.WithPipeline(b.pipeline),
		renderable.WithTransform(b.transform),
		renderable.WithTransparent(true),
	)
	return b, nil
}

func (b *spriteBatch) Begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drawing {
		return ErrAlreadyDrawing
	}
	b.renderCalls = 0
	b.drawing = true
	return nil
}

func (b *spriteBatch) Draw(tex texture.Texture, x, y float32, opts ...DrawOption) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.drawing {
		return ErrNotDrawing
	}
	if tex == nil {
		return ErrNilTexture
	}

	// one flush covers both a texture switch and a full mesh
	if b.vertexCount > 0 && (b.texture == nil || b.texture.Handle() != tex.Handle() || b.vertexCount+4 > len(b.vertices)) {
		if err := b.flush(); err != nil {
			return err
		}
	}
	b.texture = tex

	p := defaultDrawParams()
	for _, opt := range opts {
		opt(&p)
	}
	b.writeQuad(tex, x, y, &p)
	return nil
}

// writeQuad appends the four vertices and six indices of one quad. Caller must hold the mutex.
func (b *spriteBatch) writeQuad(tex texture.Texture, x, y float32, p *drawParams) {
	texW, texH := tex.Size()
	natural := common.Vec2{float32(texW), float32(texH)}
	uv := common.NewRect(0, 0, 1, 1)
	if p.hasRegion {
		natural = p.region.Size()
		uv = tex.RegionToUVs(p.region)
	}

	w, h := p.size[0], p.size[1]
	if w == -1 {
		w = natural[0]
	}
	if h == -1 {
		h = natural[1]
	}

	var model common.Mat4
	if p.transform != nil {
		model = p.transform.Matrix()
	} else {
		rot := common.QuatIdentity()
		if p.rotation != 0 {
			rot = common.QuatFromAxisAngle(common.Vec3{0, 0, 1}, p.rotation)
		}
		model = common.TRS(common.Vec3{x, y, 0}, rot, common.Vec3{p.scale[0], p.scale[1], 1})
	}

	x1, y1 := -w/2, -h/2
	x2, y2 := x1+w, y1+h
	u1, v1 := uv.X, uv.Y
	u2, v2 := uv.X2(), uv.Y2()
	color := p.tint.Vec4()

	corners := [4][4]float32{
		{x1, y1, u1, v1},
		{x1, y2, u1, v2},
		{x2, y2, u2, v2},
		{x2, y1, u2, v1},
	}
	for i, c := range corners {
		pos := model.TransformPoint(common.Vec3{c[0], c[1], -1})
		b.vertices[b.vertexCount+i] = mesh.Vertex{
			Position: [4]float32{pos[0], pos[1], pos[2], 1},
			Normal:   [3]float32{0, 0, 1},
			UV:       [2]float32{c[2], c[3]},
			Color:    color,
		}
	}

	quad := mesh.QuadIndices(uint32(b.vertexCount))
	copy(b.indices[b.indexCount:], quad[:])
	b.vertexCount += 4
	b.indexCount += 6
}

func (b *spriteBatch) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.drawing {
		return ErrNotDrawing
	}
	return b.flush()
}

// flush must be called with mu held.
func (b *spriteBatch) flush() error {
	if b.vertexCount == 0 {
		return nil
	}
	if b.camera == nil {
		return ErrNoCamera
	}

	if err := b.mesh.Reupload(b.vertexCount, b.indexCount); err != nil {
		return fmt.Errorf("sprite batch: %w", err)
	}
	b.renderable.SetTexture(b.texture)
	if err := b.renderable.Draw(b.r, b.camera.ViewMatrix(), b.projectionLocked(), b.indexCount); err != nil {
		return fmt.Errorf("sprite batch: %w", err)
	}

	b.renderCalls++
	b.vertexCount = 0
	b.indexCount = 0
	return nil
}

func (b *spriteBatch) End() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.drawing {
		return ErrNotDrawing
	}
	err := b.flush()
	if err != nil {
		log.Printf("[SpriteBatch] dropping %d pending quads: %v", b.vertexCount/4, err)
		b.vertexCount = 0
		b.indexCount = 0
	}
	b.drawing = false
	return err
}

func (b *spriteBatch) Camera() camera.Camera {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.camera
}

func (b *spriteBatch) SetCamera(c camera.Camera) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.camera = c
}

func (b *spriteBatch) Projection() common.Mat4 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.projectionLocked()
}

// projectionLocked must be called with mu held.
func (b *spriteBatch) projectionLocked() common.Mat4 {
	if b.hasProjection || b.camera == nil {
		return b.projection
	}
	return b.camera.ProjectionMatrix()
}

func (b *spriteBatch) SetProjection(m common.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projection = m
	b.hasProjection = true
}

func (b *spriteBatch) RenderCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderCalls
}

func (b *spriteBatch) Capacity() int {
	return b.capacity
}

func (b *spriteBatch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vertexCount / 4
}

func (b *spriteBatch) Drawing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawing
}

func (b *spriteBatch) Texture() texture.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.texture
}

func (b *spriteBatch) Renderable() renderable.Renderable {
	return b.renderable
}

func (b *spriteBatch) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drawing = false
	return b.mesh.Cleanup()
}
