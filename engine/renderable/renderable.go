// Package renderable binds a mesh, a pipeline, a texture and a transform into one drawable unit.
package renderable

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

var nextID atomic.Uint64

// renderable is the implementation of the Renderable interface.
type renderable struct {
	mu *sync.Mutex

	id          uint64
	mesh        mesh.Mesh
	pipeline    pipeline.Pipeline
	texture     texture.Texture
	transform   transform.Node
	tint        common.Color
	active      bool
	transparent bool
}

// Renderable draws one mesh with one pipeline and at most one texture.
type Renderable interface {
	// ID returns a process-unique identifier.
	ID() uint64

	Mesh() mesh.Mesh
	SetMesh(m mesh.Mesh)

	Pipeline() pipeline.Pipeline
	SetPipeline(p pipeline.Pipeline)

	Texture() texture.Texture
	SetTexture(t texture.Texture)

	// Transform returns the model transform, or nil for the identity.
	Transform() transform.Node
	SetTransform(t transform.Node)

	Tint() common.Color
	SetTint(c common.Color)

	Active() bool
	SetActive(active bool)

	// Transparent reports whether the renderable needs blending. Scenes draw transparent
	// renderables after opaque ones.
	Transparent() bool

	// Draw binds the pipeline, sets the ModelMatrix, ViewMatrix, ProjectionMatrix and
	// TintColor uniforms, binds the texture to slot 0 and renders the mesh. Everything is
	// unbound again in reverse order. Inactive renderables and renderables without a mesh
	// or pipeline are skipped without an error.
	//
	// Parameters:
	//   - r: the renderer to draw with
	//   - view: the camera view matrix
	//   - projection: the projection matrix
	//   - elements: the number of indices to draw, <= 0 for the whole mesh
	//
	// Returns:
	//   - error: an error if a uniform is missing or the draw fails
	Draw(r renderer.Renderer, view, projection common.Mat4, elements int) error
}

var _ Renderable = &renderable{}

// NewRenderable creates an active, white-tinted renderable.
//
// Parameters:
//   - options: variadic list of RenderableBuilderOption functions to configure the renderable
//
// Returns:
//   - Renderable: the new renderable
func NewRenderable(options ...RenderableBuilderOption) Renderable {
	r := &renderable{
		mu:     &sync.Mutex{},
		id:     nextID.Add(1),
		tint:   common.White,
		active: true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderable) ID() uint64 {
	return r.id
}

func (r *renderable) Mesh() mesh.Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mesh
}

func (r *renderable) SetMesh(m mesh.Mesh) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mesh = m
}

func (r *renderable) Pipeline() pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipeline
}

func (r *renderable) SetPipeline(p pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipeline = p
}

func (r *renderable) Texture() texture.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.texture
}

func (r *renderable) SetTexture(t texture.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texture = t
}

func (r *renderable) Transform() transform.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transform
}

func (r *renderable) SetTransform(t transform.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transform = t
}

func (r *renderable) Tint() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tint
}

func (r *renderable) SetTint(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tint = c
}

func (r *renderable) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *renderable) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
}

func (r *renderable) Transparent() bool {
	return r.transparent
}

func (r *renderable) Draw(rend renderer.Renderer, view, projection common.Mat4, elements int) error {
	r.mu.Lock()
	active, m, p, tex, node, tint := r.active, r.mesh, r.pipeline, r.texture, r.transform, r.tint
	r.mu.Unlock()

	if !active {
		return nil
	}
	if m == nil || p == nil {
		log.Printf("[Renderable] cannot draw renderable %d with no mesh or no pipeline", r.id)
		return nil
	}

	model := common.Identity()
	if node != nil {
		model = node.Matrix()
	}

	if err := rend.UsePipeline(p); err != nil {
		return err
	}
	defer rend.ClearPipeline()

	for _, set := range []func() error{
		func() error { return p.SetMatrix4(shader.UniformModelMatrix, model) },
		func() error { return p.SetMatrix4(shader.UniformViewMatrix, view) },
		func() error { return p.SetMatrix4(shader.UniformProjectionMatrix, projection) },
		func() error { return p.SetVec4(shader.UniformTintColor, tint.Vec4()) },
	} {
		if err := set(); err != nil {
			return fmt.Errorf("renderable %d: %w", r.id, err)
		}
	}

	if tex != nil {
		tex.Bind(0)
		defer tex.Unbind(0)
	}
	return m.Render(elements)
}
