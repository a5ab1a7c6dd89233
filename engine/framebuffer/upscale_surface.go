package framebuffer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
)

//go:embed assets/upscale_vertex.wgsl
var upscaleVertexSource string

//go:embed assets/upscale_fragment.wgsl
var upscaleFragmentSource string

// upscalePipelineKey names the shared upscale program.
const upscalePipelineKey = "_upscalesurface"

// NewUpscalePipeline compiles the program that copies a framebuffer texture, bound as
// FramebufferTexture, onto a fullscreen quad.
//
// Returns:
//   - pipeline.Pipeline: the linked pipeline
//   - error: an error if either stage fails to compile or link
func NewUpscalePipeline() (pipeline.Pipeline, error) {
	vs, err := shader.NewShaderFromSource(upscalePipelineKey+"_vs", shader.ShaderTypeVertex, upscaleVertexSource)
	if err != nil {
		return nil, fmt.Errorf("upscale pipeline: %w", err)
	}
	fs, err := shader.NewShaderFromSource(upscalePipelineKey+"_fs", shader.ShaderTypeFragment, upscaleFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("upscale pipeline: %w", err)
	}
	return pipeline.NewPipeline(upscalePipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBlendMode(pipeline.BlendNone),
	)
}

// upscaleSurface is the implementation of the UpscaleSurface interface.
type upscaleSurface struct {
	mu *sync.Mutex

	r        renderer.Renderer
	fb       Framebuffer
	quad     mesh.Mesh
	pipeline pipeline.Pipeline
}

// UpscaleSurface renders a scene at a fixed low resolution and stretches the result over
// whatever viewport is active on the screen, keeping pixels sharp.
type UpscaleSurface interface {
	// Framebuffer returns the low resolution target.
	Framebuffer() Framebuffer

	// Begin redirects drawing into the low resolution target. The target is cleared by
	// its first draw of the frame.
	//
	// Returns:
	//   - error: ErrReleased
	Begin() error

	// End restores the previous target and draws the low resolution image over it.
	//
	// Returns:
	//   - error: an error if the fullscreen draw fails
	End() error

	// Release frees the target, the quad and the program.
	Release()
}

var _ UpscaleSurface = &upscaleSurface{}

// NewUpscaleSurface creates an upscale surface.
//
// Parameters:
//   - r: the renderer to draw with
//   - width, height: the low resolution size in pixels
//
// Returns:
//   - UpscaleSurface: the new surface
//   - error: an error if the target, quad or program cannot be created
func NewUpscaleSurface(r renderer.Renderer, width, height int) (UpscaleSurface, error) {
	p := r.Pipeline(upscalePipelineKey)
	if p == nil {
		var err error
		if p, err = NewUpscalePipeline(); err != nil {
			return nil, err
		}
	}
	fb, err := NewFramebuffer(r, width, height, WithFilter(renderer.FilterNearest))
	if err != nil {
		return nil, err
	}
	vertices, indices := mesh.MakeQuad(2, 2)
	quad, err := mesh.NewMesh(r, vertices, indices, mesh.WithLabel("UpscaleSurface"))
	if err != nil {
		fb.Release()
		return nil, fmt.Errorf("upscale surface quad: %w", err)
	}
	return &upscaleSurface{
		mu:       &sync.Mutex{},
		r:        r,
		fb:       fb,
		quad:     quad,
		pipeline: p,
	}, nil
}

func (u *upscaleSurface) Framebuffer() Framebuffer {
	return u.fb
}

func (u *upscaleSurface) Begin() error {
	return u.fb.Bind()
}

func (u *upscaleSurface) End() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fb.Unbind()

	prev := u.r.CurrentPipeline()
	if err := u.r.UsePipeline(u.pipeline); err != nil {
		return err
	}
	defer func() {
		if prev != nil {
			u.r.UsePipeline(prev)
		} else {
			u.r.ClearPipeline()
		}
	}()

	u.r.BindTexture(0, u.fb.Texture())
	defer u.r.UnbindTexture(0)
	return u.quad.Render(0)
}

func (u *upscaleSurface) Release() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fb.Release()
	if !u.quad.Released() {
		u.quad.Cleanup()
	}
}
