// Package rendertest provides a renderer backend that records every call instead of
// talking to a GPU, so batching and drawing code can be tested without a window.
package rendertest

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
)

// TextureRecord is the recorded state of a texture.
type TextureRecord struct {
	Desc     renderer.TextureDescriptor
	Pixels   []byte
	Released bool
}

// DrawRecord is a recorded draw together with snapshots of the buffer contents it read.
type DrawRecord struct {
	renderer.DrawCommand

	// Vertices is a copy of the whole vertex buffer at draw time.
	Vertices []byte

	// Indices is a copy of the first IndexCount indices at draw time.
	Indices []uint32

	// Frame is the number of BeginFrame calls before this draw.
	Frame int
}

type buffer struct {
	desc     renderer.BufferDescriptor
	data     []byte
	writes   int
	released bool
}

// Recorder is an in-memory renderer.RendererBackend.
type Recorder struct {
	mu *sync.Mutex

	next      uint64
	buffers   map[renderer.BufferHandle]*buffer
	textures  map[renderer.TextureHandle]*TextureRecord
	pipelines []pipeline.Pipeline
	draws     []DrawRecord

	frames      int
	clears      []common.Color
	width       int
	height      int
	presentMode renderer.PresentMode
	presented   int
}

var _ renderer.RendererBackend = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:       &sync.Mutex{},
		buffers:  make(map[renderer.BufferHandle]*buffer),
		textures: make(map[renderer.TextureHandle]*TextureRecord),
	}
}

func (r *Recorder) ConfigureSurface(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

func (r *Recorder) SetPresentMode(mode renderer.PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
}

func (r *Recorder) CreateBuffer(desc renderer.BufferDescriptor) (renderer.BufferHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if desc.Size == 0 {
		return 0, fmt.Errorf("rendertest: zero-sized buffer %q", desc.Label)
	}
	r.next++
	h := renderer.BufferHandle(r.next)
	r.buffers[h] = &buffer{desc: desc, data: make([]byte, desc.Size)}
	return h, nil
}

func (r *Recorder) WriteBuffer(h renderer.BufferHandle, offset uint64, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[h]
	if !ok || b.released {
		return fmt.Errorf("rendertest: write to unknown buffer %d", h)
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("rendertest: write of %d bytes at %d overflows buffer %d (%d bytes)", len(data), offset, h, len(b.data))
	}
	copy(b.data[offset:], data)
	b.writes++
	return nil
}

func (r *Recorder) ReleaseBuffer(h renderer.BufferHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buffers[h]; ok {
		b.released = true
	}
}

func (r *Recorder) CreateTexture(desc renderer.TextureDescriptor) (renderer.TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("rendertest: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	r.next++
	h := renderer.TextureHandle(r.next)
	r.textures[h] = &TextureRecord{Desc: desc}
	return h, nil
}

func (r *Recorder) WriteTexture(h renderer.TextureHandle, pixels []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.textures[h]
	if !ok || t.Released {
		return fmt.Errorf("rendertest: write to unknown texture %d", h)
	}
	if want := t.Desc.Width * t.Desc.Height * 4; len(pixels) != want {
		return fmt.Errorf("rendertest: texture %d expects %d bytes, got %d", h, want, len(pixels))
	}
	t.Pixels = append(t.Pixels[:0], pixels...)
	return nil
}

func (r *Recorder) ResizeTexture(h renderer.TextureHandle, width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.textures[h]
	if !ok || t.Released {
		return fmt.Errorf("rendertest: resize of unknown texture %d", h)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("rendertest: invalid texture size %dx%d", width, height)
	}
	t.Desc.Width, t.Desc.Height = width, height
	t.Pixels = nil
	return nil
}

func (r *Recorder) ReleaseTexture(h renderer.TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.textures[h]; ok {
		t.Released = true
	}
}

func (r *Recorder) RegisterPipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.SetHandle(len(r.pipelines) + 1)
	r.pipelines = append(r.pipelines, p)
	return nil
}

func (r *Recorder) BeginFrame(clear common.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.clears = append(r.clears, clear)
	return nil
}

func (r *Recorder) Draw(cmd renderer.DrawCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cmd.Pipeline == nil || cmd.Pipeline.Handle() == nil {
		return fmt.Errorf("rendertest: draw with unregistered pipeline")
	}
	vb, ok := r.buffers[cmd.VertexBuffer]
	if !ok || vb.released {
		return fmt.Errorf("rendertest: draw with unknown vertex buffer %d", cmd.VertexBuffer)
	}
	ib, ok := r.buffers[cmd.IndexBuffer]
	if !ok || ib.released {
		return fmt.Errorf("rendertest: draw with unknown index buffer %d", cmd.IndexBuffer)
	}
	if uint64(cmd.IndexCount)*4 > uint64(len(ib.data)) {
		return fmt.Errorf("rendertest: %d indices exceed index buffer %d", cmd.IndexCount, cmd.IndexBuffer)
	}

	rec := DrawRecord{
		DrawCommand: cmd,
		Vertices:    append([]byte(nil), vb.data...),
		Indices:     Uint32s(ib.data[:cmd.IndexCount*4]),
		Frame:       r.frames,
	}
	rec.Textures = append([]renderer.TextureHandle(nil), cmd.Textures...)
	r.draws = append(r.draws, rec)
	return nil
}

func (r *Recorder) EndFrame() error {
	return nil
}

func (r *Recorder) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presented++
}

// Draws returns every recorded draw in order.
func (r *Recorder) Draws() []DrawRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DrawRecord(nil), r.draws...)
}

// DrawsForTexture returns the draws whose first texture slot was h.
func (r *Recorder) DrawsForTexture(h renderer.TextureHandle) []DrawRecord {
	var out []DrawRecord
	for _, d := range r.Draws() {
		if len(d.Textures) > 0 && d.Textures[0] == h {
			out = append(out, d)
		}
	}
	return out
}

// Reset forgets recorded draws but keeps buffers, textures and pipelines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws = nil
}

// Buffer returns a copy of a buffer's contents and whether it exists and is live.
func (r *Recorder) Buffer(h renderer.BufferHandle) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[h]
	if !ok || b.released {
		return nil, false
	}
	return append([]byte(nil), b.data...), true
}

// BufferDescriptor returns the descriptor a buffer was created with.
func (r *Recorder) BufferDescriptor(h renderer.BufferHandle) (renderer.BufferDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[h]
	if !ok {
		return renderer.BufferDescriptor{}, false
	}
	return b.desc, true
}

// BufferWrites returns how many writes a buffer received.
func (r *Recorder) BufferWrites(h renderer.BufferHandle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buffers[h]; ok {
		return b.writes
	}
	return 0
}

// BufferReleased reports whether a buffer was created and then released.
func (r *Recorder) BufferReleased(h renderer.BufferHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[h]
	return ok && b.released
}

// LiveBuffers returns the number of buffers not yet released.
func (r *Recorder) LiveBuffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.buffers {
		if !b.released {
			n++
		}
	}
	return n
}

// Texture returns the recorded state of a texture.
func (r *Recorder) Texture(h renderer.TextureHandle) (TextureRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.textures[h]
	if !ok {
		return TextureRecord{}, false
	}
	return *t, true
}

// Pipelines returns the registered pipelines in registration order.
func (r *Recorder) Pipelines() []pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pipeline.Pipeline(nil), r.pipelines...)
}

// Frames returns the number of BeginFrame calls.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Presented returns the number of Present calls.
func (r *Recorder) Presented() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presented
}

// Clears returns the clear colour passed to each BeginFrame.
func (r *Recorder) Clears() []common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]common.Color(nil), r.clears...)
}

// SurfaceSize returns the last configured surface size.
func (r *Recorder) SurfaceSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// PresentMode returns the last present mode set.
func (r *Recorder) PresentMode() renderer.PresentMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presentMode
}

// Floats decodes little-endian float32 values.
func Floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// Uint32s decodes little-endian uint32 values.
func Uint32s(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}
