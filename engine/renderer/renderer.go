package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
)

// ErrNoPipeline is returned by DrawIndexed when no pipeline is bound.
var ErrNoPipeline = errors.New("no pipeline bound")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend       RendererBackend
	pipelineCache map[string]pipeline.Pipeline

	width, height int
	clearColor    common.Color

	// bound state consumed by DrawIndexed
	current  pipeline.Pipeline
	textures map[int]TextureHandle
	target   TextureHandle
	viewport Viewport

	drawCalls int
}

// Renderer is the frontend every drawing component talks to. It keeps a GL-style binding
// state (current pipeline, texture slots, render target, viewport) and turns each
// DrawIndexed call into a self-contained DrawCommand for the backend.
type Renderer interface {
	// Backend returns the backend this renderer drives.
	Backend() RendererBackend

	// Pipeline retrieves a registered Pipeline by key, or nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines compiles pipelines on the backend and caches them by key.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// CreateBuffer allocates a vertex or index buffer.
	CreateBuffer(desc BufferDescriptor) (BufferHandle, error)

	// WriteBuffer copies data into a buffer at a byte offset.
	WriteBuffer(h BufferHandle, offset uint64, data []byte) error

	// ReleaseBuffer frees a buffer.
	ReleaseBuffer(h BufferHandle)

	// CreateTexture allocates a texture.
	CreateTexture(desc TextureDescriptor) (TextureHandle, error)

	// WriteTexture uploads RGBA8 pixels covering the whole texture.
	WriteTexture(h TextureHandle, pixels []byte) error

	// ResizeTexture reallocates a texture at a new size under the same handle.
	ResizeTexture(h TextureHandle, width, height int) error

	// ReleaseTexture frees a texture and unbinds it from every slot.
	ReleaseTexture(h TextureHandle)

	// CreateRenderTarget allocates a texture that can be both drawn into and sampled.
	//
	// Parameters:
	//   - width, height: the target size in pixels
	//   - filter: the filter used when the target is sampled
	//
	// Returns:
	//   - TextureHandle: the new target
	//   - error: an error if allocation fails
	CreateRenderTarget(width, height int, filter Filter) (TextureHandle, error)

	// UsePipeline binds a pipeline for subsequent draws, registering it first if needed.
	//
	// Parameters:
	//   - p: the pipeline to bind
	//
	// Returns:
	//   - error: an error if registration fails
	UsePipeline(p pipeline.Pipeline) error

	// CurrentPipeline returns the bound pipeline, or nil.
	CurrentPipeline() pipeline.Pipeline

	// ClearPipeline unbinds the current pipeline.
	ClearPipeline()

	// BindTexture binds a texture to a pipeline texture slot.
	BindTexture(slot int, h TextureHandle)

	// UnbindTexture clears a texture slot.
	UnbindTexture(slot int)

	// SetRenderTarget redirects subsequent draws. ScreenTarget selects the window surface.
	SetRenderTarget(h TextureHandle)

	// RenderTarget returns the current render target.
	RenderTarget() TextureHandle

	// SetViewport limits subsequent draws to a rectangle of the render target.
	SetViewport(v Viewport)

	// Viewport returns the current viewport.
	Viewport() Viewport

	// DrawIndexed draws the first indexCount indices of ib using the bound state.
	//
	// Parameters:
	//   - vb: the vertex buffer
	//   - ib: the index buffer of uint32 indices
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: ErrNoPipeline or a backend error
	DrawIndexed(vb, ib BufferHandle, indexCount int) error

	// DrawCalls returns the number of draws issued since the last BeginFrame.
	DrawCalls() int

	// SetClearColor sets the colour used to clear targets at the start of a frame.
	SetClearColor(c common.Color)

	// BeginFrame starts a frame and resets the draw-call counter.
	BeginFrame() error

	// EndFrame submits the frame's work.
	EndFrame() error

	// Present displays the frame.
	Present()

	// Resize reconfigures the surface for a new window size.
	Resize(width, height int)

	// Size returns the current surface size.
	Size() (int, int)

	// SetPresentMode sets the present mode and reconfigures the surface.
	SetPresentMode(mode PresentMode)
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer driving the given backend.
//
// Parameters:
//   - backend: the GPU backend, e.g. wgpubackend.New(...) or rendertest.NewRecorder()
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		backend:       backend,
		pipelineCache: make(map[string]pipeline.Pipeline),
		textures:      make(map[int]TextureHandle),
		clearColor:    common.Black,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.width > 0 && r.height > 0 {
		r.backend.ConfigureSurface(r.width, r.height)
	}
	return r
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if err := r.register(p); err != nil {
			return err
		}
	}
	return nil
}

// register must be called with mu held.
func (r *renderer) register(p pipeline.Pipeline) error {
	if _, exists := r.pipelineCache[p.Key()]; exists {
		return nil
	}
	if err := r.backend.RegisterPipeline(p); err != nil {
		return fmt.Errorf("register pipeline %s: %w", p.Key(), err)
	}
	r.pipelineCache[p.Key()] = p
	return nil
}

func (r *renderer) CreateBuffer(desc BufferDescriptor) (BufferHandle, error) {
	return r.backend.CreateBuffer(desc)
}

func (r *renderer) WriteBuffer(h BufferHandle, offset uint64, data []byte) error {
	return r.backend.WriteBuffer(h, offset, data)
}

func (r *renderer) ReleaseBuffer(h BufferHandle) {
	r.backend.ReleaseBuffer(h)
}

func (r *renderer) CreateTexture(desc TextureDescriptor) (TextureHandle, error) {
	return r.backend.CreateTexture(desc)
}

func (r *renderer) WriteTexture(h TextureHandle, pixels []byte) error {
	return r.backend.WriteTexture(h, pixels)
}

func (r *renderer) ResizeTexture(h TextureHandle, width, height int) error {
	return r.backend.ResizeTexture(h, width, height)
}

func (r *renderer) ReleaseTexture(h TextureHandle) {
	r.mu.Lock()
	for slot, bound := range r.textures {
		if bound == h {
			delete(r.textures, slot)
		}
	}
	if r.target == h {
		r.target = ScreenTarget
	}
	r.mu.Unlock()
	r.backend.ReleaseTexture(h)
}

func (r *renderer) CreateRenderTarget(width, height int, filter Filter) (TextureHandle, error) {
	return r.backend.CreateTexture(TextureDescriptor{
		Label:        "render_target",
		Width:        width,
		Height:       height,
		Filter:       filter,
		Wrap:         WrapClamp,
		RenderTarget: true,
	})
}

func (r *renderer) UsePipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.register(p); err != nil {
		return err
	}
	r.current = p
	return nil
}

func (r *renderer) CurrentPipeline() pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *renderer) ClearPipeline() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

func (r *renderer) BindTexture(slot int, h TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures[slot] = h
}

func (r *renderer) UnbindTexture(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.textures, slot)
}

func (r *renderer) SetRenderTarget(h TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = h
}

func (r *renderer) RenderTarget() TextureHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

func (r *renderer) SetViewport(v Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = v
}

func (r *renderer) Viewport() Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}

func (r *renderer) DrawIndexed(vb, ib BufferHandle, indexCount int) error {
	r.mu.Lock()
	p := r.current
	if p == nil {
		r.mu.Unlock()
		return ErrNoPipeline
	}
	if indexCount <= 0 {
		r.mu.Unlock()
		return nil
	}

	slots := p.TextureSlots()
	textures := make([]TextureHandle, len(slots))
	for i := range slots {
		textures[i] = r.textures[i]
	}
	cmd := DrawCommand{
		Pipeline:     p,
		VertexBuffer: vb,
		IndexBuffer:  ib,
		IndexCount:   uint32(indexCount),
		Textures:     textures,
		Uniforms:     p.Uniforms(),
		Target:       r.target,
		Viewport:     r.viewport,
	}
	r.drawCalls++
	r.mu.Unlock()

	return r.backend.Draw(cmd)
}

func (r *renderer) DrawCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawCalls
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	r.drawCalls = 0
	clear := r.clearColor
	r.mu.Unlock()
	return r.backend.BeginFrame(clear)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
	w, h := r.Size()
	if w > 0 && h > 0 {
		r.backend.ConfigureSurface(w, h)
	}
}
