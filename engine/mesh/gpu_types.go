package mesh

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
)

// VertexSize is the size of a marshaled Vertex in bytes.
const VertexSize = 52

// GPUVertexSource is the WGSL definition of the VertexInput struct matching Vertex.
// Shaders pull it in with //@oxy:include vertex.
var GPUVertexSource = shader.GPUVertexSource

// Vertex is a single mesh vertex. Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 52 bytes, tightly packed.
type Vertex struct {
	Position [4]float32 // offset  0: position in model space, w is 1 (16 bytes)
	Normal   [3]float32 // offset 16: vertex normal (12 bytes)
	UV       [2]float32 // offset 28: texture coordinate (8 bytes)
	Color    [4]float32 // offset 36: per-vertex RGBA color (16 bytes)
}

// NewVertex creates a white vertex at (x, y, z) with the given texture coordinate.
func NewVertex(x, y, z, u, v float32) Vertex {
	return Vertex{
		Position: [4]float32{x, y, z, 1},
		UV:       [2]float32{u, v},
		Color:    [4]float32{1, 1, 1, 1},
	}
}

// Marshal serializes the Vertex into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 52-byte buffer ready for GPU upload.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.MarshalTo(buf)
	return buf
}

// MarshalTo writes the Vertex into the first VertexSize bytes of buf.
func (v *Vertex) MarshalTo(buf []byte) {
	_ = buf[VertexSize-1]
	put := func(off int, f float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
	}
	for i, f := range v.Position {
		put(i*4, f)
	}
	for i, f := range v.Normal {
		put(16+i*4, f)
	}
	put(28, v.UV[0])
	put(32, v.UV[1])
	for i, f := range v.Color {
		put(36+i*4, f)
	}
}

// SetColor sets the per-vertex color.
func (v *Vertex) SetColor(c common.Color) {
	v.Color = [4]float32{c.R, c.G, c.B, c.A}
}

// MarshalVertices serializes vertices back to back into dst, growing it if needed.
func MarshalVertices(dst []byte, vertices []Vertex) []byte {
	n := len(vertices) * VertexSize
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i := range vertices {
		vertices[i].MarshalTo(dst[i*VertexSize:])
	}
	return dst
}

// MarshalIndices serializes uint32 indices into dst, growing it if needed.
func MarshalIndices(dst []byte, indices []uint32) []byte {
	n := len(indices) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(dst[i*4:], idx)
	}
	return dst
}
