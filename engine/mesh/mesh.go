package mesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

var (
	// ErrAlreadyReleased is returned by Cleanup when the mesh's buffers were already released.
	ErrAlreadyReleased = errors.New("mesh already released")

	// ErrReleased is returned by operations on a mesh whose buffers have been released.
	ErrReleased = errors.New("mesh has been released")

	// ErrEmptyMesh is returned when a mesh is created or filled without vertices or indices.
	ErrEmptyMesh = errors.New("mesh needs at least one vertex and one index")

	// ErrCapacity is returned when data does not fit a dynamic mesh's buffers.
	ErrCapacity = errors.New("data exceeds mesh capacity")

	// ErrStaticMesh is returned by Reupload on a static mesh.
	ErrStaticMesh = errors.New("partial reupload requires a dynamic mesh")
)

// Usage selects how a mesh's buffers are managed.
type Usage int

const (
	// UsageStatic meshes are uploaded once. SetData reallocates their buffers.
	UsageStatic Usage = iota

	// UsageDynamic meshes keep fixed-capacity buffers that are rewritten in place.
	UsageDynamic
)

func (u Usage) String() string {
	if u == UsageDynamic {
		return "dynamic"
	}
	return "static"
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu *sync.Mutex

	r     renderer.Renderer
	label string
	usage Usage

	vertices []Vertex
	indices  []uint32

	// indexCount is the number of valid indices drawn by Render(0).
	indexCount int

	vertexBuffer renderer.BufferHandle
	indexBuffer  renderer.BufferHandle
	released     bool

	// scratch space reused across uploads
	vertexBytes []byte
	indexBytes  []byte
}

// Mesh owns a vertex buffer and an index buffer on a Renderer and draws sub-ranges of them.
type Mesh interface {
	// Label returns the debug label of the mesh.
	Label() string

	// Usage returns whether the mesh is static or dynamic.
	Usage() Usage

	// Vertices returns the host copy of the vertex data. Dynamic meshes may be written
	// in place and then pushed to the GPU with Reupload.
	Vertices() []Vertex

	// Indices returns the host copy of the index data. Same rules as Vertices.
	Indices() []uint32

	// IndexCount returns the number of indices Render draws by default.
	IndexCount() int

	// VertexBuffer returns the GPU vertex buffer handle.
	VertexBuffer() renderer.BufferHandle

	// IndexBuffer returns the GPU index buffer handle.
	IndexBuffer() renderer.BufferHandle

	// SetData replaces the mesh geometry. Static meshes reallocate their buffers; dynamic
	// meshes copy the data into their existing buffers and fail if it does not fit.
	//
	// Parameters:
	//   - vertices: the new vertices
	//   - indices: the new uint32 indices
	//
	// Returns:
	//   - error: ErrEmptyMesh, ErrCapacity, ErrReleased or a renderer error
	SetData(vertices []Vertex, indices []uint32) error

	// Reupload pushes the first vertexCount vertices and indexCount indices of the host
	// data to the GPU without reallocating. Dynamic meshes only.
	//
	// Parameters:
	//   - vertexCount: the number of leading vertices to upload
	//   - indexCount: the number of leading indices to upload
	//
	// Returns:
	//   - error: ErrStaticMesh, ErrCapacity, ErrReleased or a renderer error
	Reupload(vertexCount, indexCount int) error

	// Render draws the first elementCount indices with the renderer's bound pipeline and
	// textures. elementCount <= 0 draws IndexCount indices.
	//
	// Parameters:
	//   - elementCount: the number of indices to draw
	//
	// Returns:
	//   - error: ErrReleased or a renderer error
	Render(elementCount int) error

	// Cleanup releases both GPU buffers. A second call returns ErrAlreadyReleased.
	Cleanup() error

	// Released reports whether Cleanup has run.
	Released() bool
}

var _ Mesh = &mesh{}

// NewMesh creates a mesh and uploads its geometry. For dynamic meshes the lengths of
// vertices and indices fix the buffer capacity.
//
// Parameters:
//   - r: the renderer that owns the buffers
//   - vertices: the initial vertices
//   - indices: the initial uint32 indices
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: the new mesh
//   - error: ErrEmptyMesh or an error if buffer creation fails
func NewMesh(r renderer.Renderer, vertices []Vertex, indices []uint32, options ...MeshBuilderOption) (Mesh, error) {
	m := &mesh{
		mu:    &sync.Mutex{},
		r:     r,
		label: "Mesh",
		usage: UsageStatic,
	}
	for _, opt := range options {
		opt(m)
	}
	if err := m.allocate(vertices, indices); err != nil {
		return nil, err
	}
	return m, nil
}

// allocate creates buffers sized to vertices and indices and uploads them.
// Must be called with mu held or during construction.
func (m *mesh) allocate(vertices []Vertex, indices []uint32) error {
	if len(vertices) == 0 || len(indices) == 0 {
		return ErrEmptyMesh
	}

	vb, err := m.r.CreateBuffer(renderer.BufferDescriptor{
		Label: m.label + " Vertex Buffer",
		Usage: renderer.BufferUsageVertex,
		Size:  uint64(len(vertices) * VertexSize),
	})
	if err != nil {
		return fmt.Errorf("mesh %s: %w", m.label, err)
	}
	ib, err := m.r.CreateBuffer(renderer.BufferDescriptor{
		Label: m.label + " Index Buffer",
		Usage: renderer.BufferUsageIndex,
		Size:  uint64(len(indices) * 4),
	})
	if err != nil {
		m.r.ReleaseBuffer(vb)
		return fmt.Errorf("mesh %s: %w", m.label, err)
	}

	m.vertices = append(make([]Vertex, 0, len(vertices)), vertices...)
	m.indices = append(make([]uint32, 0, len(indices)), indices...)
	m.vertexBuffer, m.indexBuffer = vb, ib
	m.indexCount = len(indices)

	if err := m.upload(len(vertices), len(indices)); err != nil {
		m.r.ReleaseBuffer(vb)
		m.r.ReleaseBuffer(ib)
		m.vertexBuffer, m.indexBuffer = 0, 0
		return err
	}
	return nil
}

// upload must be called with mu held.
func (m *mesh) upload(vertexCount, indexCount int) error {
	if vertexCount > 0 {
		m.vertexBytes = MarshalVertices(m.vertexBytes, m.vertices[:vertexCount])
		if err := m.r.WriteBuffer(m.vertexBuffer, 0, m.vertexBytes); err != nil {
			return fmt.Errorf("mesh %s: upload vertices: %w", m.label, err)
		}
	}
	if indexCount > 0 {
		m.indexBytes = MarshalIndices(m.indexBytes, m.indices[:indexCount])
		if err := m.r.WriteBuffer(m.indexBuffer, 0, m.indexBytes); err != nil {
			return fmt.Errorf("mesh %s: upload indices: %w", m.label, err)
		}
	}
	return nil
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) Usage() Usage {
	return m.usage
}

func (m *mesh) Vertices() []Vertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) IndexCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexCount
}

func (m *mesh) VertexBuffer() renderer.BufferHandle {
	return m.vertexBuffer
}

func (m *mesh) IndexBuffer() renderer.BufferHandle {
	return m.indexBuffer
}

func (m *mesh) SetData(vertices []Vertex, indices []uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return ErrReleased
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return ErrEmptyMesh
	}

	if m.usage == UsageStatic {
		oldVB, oldIB := m.vertexBuffer, m.indexBuffer
		if err := m.allocate(vertices, indices); err != nil {
			return err
		}
		m.r.ReleaseBuffer(oldVB)
		m.r.ReleaseBuffer(oldIB)
		return nil
	}

	if len(vertices) > len(m.vertices) || len(indices) > len(m.indices) {
		return fmt.Errorf("mesh %s: %d vertices / %d indices into %d / %d: %w",
			m.label, len(vertices), len(indices), len(m.vertices), len(m.indices), ErrCapacity)
	}
	copy(m.vertices, vertices)
	copy(m.indices, indices)
	m.indexCount = len(indices)
	return m.upload(len(vertices), len(indices))
}

func (m *mesh) Reupload(vertexCount, indexCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return ErrReleased
	}
	if m.usage != UsageDynamic {
		return ErrStaticMesh
	}
	if vertexCount < 0 || indexCount < 0 || vertexCount > len(m.vertices) || indexCount > len(m.indices) {
		return fmt.Errorf("mesh %s: reupload %d vertices / %d indices: %w", m.label, vertexCount, indexCount, ErrCapacity)
	}
	return m.upload(vertexCount, indexCount)
}

func (m *mesh) Render(elementCount int) error {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return ErrReleased
	}
	switch {
	case elementCount <= 0:
		elementCount = m.indexCount
	case elementCount > len(m.indices):
		elementCount = len(m.indices)
	}
	vb, ib := m.vertexBuffer, m.indexBuffer
	m.mu.Unlock()

	return m.r.DrawIndexed(vb, ib, elementCount)
}

func (m *mesh) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return fmt.Errorf("mesh %s: %w", m.label, ErrAlreadyReleased)
	}
	m.r.ReleaseBuffer(m.vertexBuffer)
	m.r.ReleaseBuffer(m.indexBuffer)
	m.released = true
	return nil
}

func (m *mesh) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}
