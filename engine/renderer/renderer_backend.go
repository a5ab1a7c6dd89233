package renderer

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// BufferHandle identifies a GPU buffer owned by a backend. Zero is never a valid buffer.
type BufferHandle uint64

// TextureHandle identifies a GPU texture owned by a backend. Zero is never a valid texture;
// as a render target it selects the screen.
type TextureHandle uint64

// ScreenTarget is the render target handle of the window surface.
const ScreenTarget TextureHandle = 0

// BufferUsage selects how a buffer is bound during draws.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
)

// Filter is the texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Wrap is the texture addressing mode outside [0, 1].
type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
	WrapMirror
)

// BufferDescriptor describes a buffer to allocate. Buffers are always writable from the host.
type BufferDescriptor struct {
	Label string
	Usage BufferUsage
	Size  uint64
}

// TextureDescriptor describes an RGBA8 texture to allocate.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Filter Filter
	Wrap   Wrap

	// RenderTarget textures can be passed to SetRenderTarget.
	RenderTarget bool

	// Mipmaps requests a full mip chain. Backends that cannot generate mips ignore it.
	Mipmaps bool
}

// Viewport is a pixel rectangle of the current render target. The zero value covers the whole target.
type Viewport struct {
	X, Y, Width, Height float32
}

// IsZero reports whether the viewport selects the whole target.
func (v Viewport) IsZero() bool {
	return v.Width <= 0 || v.Height <= 0
}

// DrawCommand is a single indexed draw with all of the state it needs. Backends must not
// retain Uniforms or Textures past the call.
type DrawCommand struct {
	Pipeline     pipeline.Pipeline
	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle
	IndexCount   uint32

	// Textures holds one handle per pipeline texture slot. Zero selects a 1x1 white texture.
	Textures []TextureHandle

	// Uniforms is a snapshot of the pipeline's uniform block.
	Uniforms []byte

	Target   TextureHandle
	Viewport Viewport
}

// RendererBackend is the handle-based GPU boundary used by the Renderer. Implementations
// own every GPU object they hand out a handle for.
type RendererBackend interface {
	// ConfigureSurface (re)configures the presentation surface for a new size.
	ConfigureSurface(width, height int)

	// SetPresentMode changes the present mode. Takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - desc: size, usage and label of the buffer
	//
	// Returns:
	//   - BufferHandle: the new buffer
	//   - error: an error if allocation fails
	CreateBuffer(desc BufferDescriptor) (BufferHandle, error)

	// WriteBuffer copies data into a buffer at a byte offset. Writes are ordered with
	// respect to subsequent Draw calls.
	//
	// Parameters:
	//   - h: the destination buffer
	//   - offset: the byte offset to write at
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error for unknown handles or out-of-range writes
	WriteBuffer(h BufferHandle, offset uint64, data []byte) error

	// ReleaseBuffer frees a buffer. Unknown handles are ignored.
	ReleaseBuffer(h BufferHandle)

	// CreateTexture allocates an RGBA8 texture.
	//
	// Parameters:
	//   - desc: the texture size, sampling and usage
	//
	// Returns:
	//   - TextureHandle: the new texture
	//   - error: an error if allocation fails
	CreateTexture(desc TextureDescriptor) (TextureHandle, error)

	// WriteTexture uploads tightly packed RGBA8 pixels covering the whole texture.
	WriteTexture(h TextureHandle, pixels []byte) error

	// ResizeTexture reallocates a texture's storage at a new size, keeping its handle,
	// sampling and usage. The contents are undefined until the next WriteTexture.
	//
	// Parameters:
	//   - h: the texture to resize
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an error for unknown handles or invalid sizes
	ResizeTexture(h TextureHandle, width, height int) error

	// ReleaseTexture frees a texture. Unknown handles are ignored.
	ReleaseTexture(h TextureHandle)

	// RegisterPipeline compiles a pipeline and stores the result with pipeline.SetHandle.
	RegisterPipeline(p pipeline.Pipeline) error

	// BeginFrame acquires the next surface texture. The first draw into each target during
	// the frame clears it to clear; a screen that was never drawn is cleared at EndFrame.
	BeginFrame(clear common.Color) error

	// Draw executes one indexed draw. Each draw observes every WriteBuffer issued before it.
	Draw(cmd DrawCommand) error

	// EndFrame submits all outstanding work for the frame.
	EndFrame() error

	// Present displays the frame and releases the surface texture.
	Present()
}
