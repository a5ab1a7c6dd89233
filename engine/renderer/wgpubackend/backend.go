// Package wgpubackend implements renderer.RendererBackend on WebGPU through cogentcore/webgpu.
package wgpubackend

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

type gpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

type gpuTexture struct {
	desc    renderer.TextureDescriptor
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

func (t *gpuTexture) release() {
	if t.sampler != nil {
		t.sampler.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

// backend is the implementation of renderer.RendererBackend on a wgpu device.
type backend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	deviceLabel          string

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	width, height int

	next      uint64
	buffers   map[renderer.BufferHandle]*gpuBuffer
	textures  map[renderer.TextureHandle]*gpuTexture
	white     *gpuTexture
	pipelines []*compiledPipeline

	// frame state
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	clearValue   wgpu.Color
	cleared      map[renderer.TextureHandle]bool
}

var _ renderer.RendererBackend = &backend{}

// New creates a wgpu backend presenting to the surface described by surfaceDescriptor.
// The calling goroutine is locked to its OS thread. Adapter and device failures panic.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually window.Window.SurfaceDescriptor()
//   - options: variadic list of BackendBuilderOption functions to configure the backend
//
// Returns:
//   - renderer.RendererBackend: the backend, ready for renderer.NewRenderer
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendBuilderOption) renderer.RendererBackend {
	runtime.LockOSThread()
	b := &backend{
		mu:          &sync.Mutex{},
		deviceLabel: "Main Device",
		presentMode: wgpu.PresentModeFifo,
		buffers:     make(map[renderer.BufferHandle]*gpuBuffer),
		textures:    make(map[renderer.TextureHandle]*gpuTexture),
		cleared:     make(map[renderer.TextureHandle]bool),
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = capabilities.AlphaModes[0]

	white, err := b.newTexture(renderer.TextureDescriptor{Label: "White Texture", Width: 1, Height: 1})
	if err != nil {
		panic(err)
	}
	b.writeTexture(white, []byte{0xff, 0xff, 0xff, 0xff})
	b.white = white

	return b
}

func (b *backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// minimized windows report a zero size
	if width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
}

func (b *backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case renderer.PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case renderer.PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *backend) CreateBuffer(desc renderer.BufferDescriptor) (renderer.BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if desc.Size == 0 {
		return 0, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	usage := wgpu.BufferUsageVertex
	if desc.Usage == renderer.BufferUsageIndex {
		usage = wgpu.BufferUsageIndex
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		// writes must be a multiple of 4 bytes
		Size:  alignTo(desc.Size, 4),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}

	b.next++
	h := renderer.BufferHandle(b.next)
	b.buffers[h] = &gpuBuffer{buffer: buf, size: desc.Size}
	return h, nil
}

func (b *backend) WriteBuffer(h renderer.BufferHandle, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[h]
	if !ok {
		return fmt.Errorf("write to unknown buffer %d", h)
	}
	if offset+uint64(len(data)) > buf.size {
		return fmt.Errorf("write of %d bytes at %d overflows buffer %d (%d bytes)", len(data), offset, h, buf.size)
	}
	if len(data) == 0 {
		return nil
	}
	if rem := len(data) % 4; rem != 0 {
		padded := make([]byte, len(data)+4-rem)
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(buf.buffer, offset, data)
	return nil
}

func (b *backend) ReleaseBuffer(h renderer.BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := b.buffers[h]; ok {
		buf.buffer.Release()
		delete(b.buffers, h)
	}
}

func (b *backend) CreateTexture(desc renderer.TextureDescriptor) (renderer.TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.newTexture(desc)
	if err != nil {
		return 0, err
	}
	b.next++
	h := renderer.TextureHandle(b.next)
	b.textures[h] = tex
	return h, nil
}

// newTexture must be called with mu held or during construction.
func (b *backend) newTexture(desc renderer.TextureDescriptor) (*gpuTexture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}

	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	format := wgpu.TextureFormatRGBA8UnormSrgb
	if desc.RenderTarget {
		// render targets share the surface format so every pipeline can draw into them
		usage |= wgpu.TextureUsageRenderAttachment
		format = b.surfaceFormat
	}
	if desc.Mipmaps {
		log.Printf("[Renderer] texture %q: mipmap generation is not supported, using a single level", desc.Label)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create texture view %q: %w", desc.Label, err)
	}

	filter := wgpu.FilterModeNearest
	if desc.Filter == renderer.FilterLinear {
		filter = wgpu.FilterModeLinear
	}
	address := addressMode(desc.Wrap)
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label + " Sampler",
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("create sampler %q: %w", desc.Label, err)
	}

	return &gpuTexture{desc: desc, texture: tex, view: view, sampler: samp}, nil
}

func (b *backend) WriteTexture(h renderer.TextureHandle, pixels []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("write to unknown texture %d", h)
	}
	if want := tex.desc.Width * tex.desc.Height * 4; len(pixels) != want {
		return fmt.Errorf("texture %d expects %d bytes, got %d", h, want, len(pixels))
	}
	b.writeTexture(tex, pixels)
	return nil
}

func (b *backend) writeTexture(tex *gpuTexture, pixels []byte) {
	w, h := uint32(tex.desc.Width), uint32(tex.desc.Height)
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *backend) ResizeTexture(h renderer.TextureHandle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.textures[h]
	if !ok {
		return fmt.Errorf("resize of unknown texture %d", h)
	}
	desc := old.desc
	desc.Width, desc.Height = width, height
	tex, err := b.newTexture(desc)
	if err != nil {
		return err
	}
	for _, cp := range b.pipelines {
		cp.forgetTexture(h)
	}
	old.release()
	b.textures[h] = tex
	return nil
}

func (b *backend) ReleaseTexture(h renderer.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, ok := b.textures[h]
	if !ok {
		return
	}
	for _, cp := range b.pipelines {
		cp.forgetTexture(h)
	}
	tex.release()
	delete(b.textures, h)
	delete(b.cleared, h)
}

// texture resolves a sampled texture handle, substituting the white texture for zero.
// Must be called with mu held.
func (b *backend) texture(h renderer.TextureHandle) (*gpuTexture, error) {
	if h == 0 {
		return b.white, nil
	}
	tex, ok := b.textures[h]
	if !ok {
		return nil, fmt.Errorf("unknown texture %d", h)
	}
	return tex, nil
}

func addressMode(w renderer.Wrap) wgpu.AddressMode {
	switch w {
	case renderer.WrapRepeat:
		return wgpu.AddressModeRepeat
	case renderer.WrapMirror:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

func alignTo(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}

func toWGPUColor(c common.Color) wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}
