package mesh

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
)

func TestVertexMarshalLayout(t *testing.T) {
	v := Vertex{
		Position: [4]float32{1, 2, 3, 1},
		Normal:   [3]float32{0, 0, 1},
		UV:       [2]float32{0.25, 0.75},
		Color:    [4]float32{0.1, 0.2, 0.3, 0.4},
	}
	got := rendertest.Floats(v.Marshal())
	want := []float32{1, 2, 3, 1, 0, 0, 1, 0.25, 0.75, 0.1, 0.2, 0.3, 0.4}
	if len(got) != len(want) {
		t.Fatalf("marshaled %d floats, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("float %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestQuadIndicesWinding(t *testing.T) {
	got := QuadIndices(8)
	want := [6]uint32{8, 10, 9, 8, 11, 10}
	if got != want {
		t.Errorf("QuadIndices(8) = %v, want %v", got, want)
	}
}

func TestMakeQuadCorners(t *testing.T) {
	vertices, indices := MakeQuad(4, 2)
	if len(vertices) != 4 || len(indices) != 6 {
		t.Fatalf("quad has %d vertices, %d indices", len(vertices), len(indices))
	}
	corners := [][4]float32{{-2, -1, 0, 0}, {-2, 1, 0, 1}, {2, 1, 1, 1}, {2, -1, 1, 0}}
	for i, c := range corners {
		v := vertices[i]
		if v.Position[0] != c[0] || v.Position[1] != c[1] || v.UV[0] != c[2] || v.UV[1] != c[3] {
			t.Errorf("vertex %d = %+v, want pos (%v, %v) uv (%v, %v)", i, v, c[0], c[1], c[2], c[3])
		}
		if v.Position[2] != -1 || v.Position[3] != 1 {
			t.Errorf("vertex %d z/w = %v/%v", i, v.Position[2], v.Position[3])
		}
	}
}

func TestStaticMeshUploadsOnCreate(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	vertices, indices := MakeQuad(1, 1)

	m, err := NewMesh(r, vertices, indices, WithLabel("quad"))
	if err != nil {
		t.Fatal(err)
	}
	desc, ok := rec.BufferDescriptor(m.VertexBuffer())
	if !ok || desc.Size != 4*VertexSize || desc.Usage != renderer.BufferUsageVertex {
		t.Errorf("vertex buffer = %+v", desc)
	}
	data, _ := rec.Buffer(m.IndexBuffer())
	if idx := rendertest.Uint32s(data); idx[1] != 2 || idx[4] != 3 {
		t.Errorf("uploaded indices = %v", idx)
	}
	if err := m.Reupload(4, 6); !errors.Is(err, ErrStaticMesh) {
		t.Errorf("Reupload on static mesh: %v", err)
	}
}

func TestEmptyMeshRejected(t *testing.T) {
	r := renderer.NewRenderer(rendertest.NewRecorder())
	if _, err := NewMesh(r, nil, []uint32{0}); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("err = %v, want ErrEmptyMesh", err)
	}
}

func TestDynamicReuploadIsPartial(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	m, err := NewMesh(r, make([]Vertex, 8), make([]uint32, 12), WithUsage(UsageDynamic))
	if err != nil {
		t.Fatal(err)
	}

	verts := m.Vertices()
	verts[0] = NewVertex(5, 6, -1, 0, 0)
	verts[7] = NewVertex(9, 9, -1, 0, 0)
	idx := QuadIndices(0)
	copy(m.Indices(), idx[:])

	if err := m.Reupload(4, 6); err != nil {
		t.Fatal(err)
	}
	data, _ := rec.Buffer(m.VertexBuffer())
	floats := rendertest.Floats(data)
	if floats[0] != 5 || floats[1] != 6 {
		t.Errorf("first vertex not uploaded: %v", floats[:4])
	}
	if last := floats[7*13]; last != 0 {
		t.Errorf("vertex beyond the reuploaded range was written: x = %v", last)
	}

	if err := m.Reupload(9, 0); !errors.Is(err, ErrCapacity) {
		t.Errorf("overflowing Reupload: %v", err)
	}
	if err := m.SetData(make([]Vertex, 9), []uint32{0}); !errors.Is(err, ErrCapacity) {
		t.Errorf("overflowing SetData: %v", err)
	}
}

func TestRenderDrawsRequestedRange(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	m, err := NewMesh(r, make([]Vertex, 8), make([]uint32, 12), WithUsage(UsageDynamic))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.UsePipeline(rendertest.NewPipeline("mesh")); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		elements int
		want     uint32
	}{
		{elements: 6, want: 6},
		{elements: 0, want: 12},
		{elements: -1, want: 12},
		{elements: 100, want: 12},
	} {
		rec.Reset()
		if err := m.Render(tc.elements); err != nil {
			t.Fatal(err)
		}
		if d := rec.Draws(); len(d) != 1 || d[0].IndexCount != tc.want {
			t.Errorf("Render(%d) drew %+v, want %d indices", tc.elements, d, tc.want)
		}
	}
}

func TestCleanupTwiceFails(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	vertices, indices := MakeQuad(1, 1)
	m, err := NewMesh(r, vertices, indices)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if !rec.BufferReleased(m.VertexBuffer()) || !rec.BufferReleased(m.IndexBuffer()) {
		t.Error("buffers were not released")
	}
	if err := m.Cleanup(); !errors.Is(err, ErrAlreadyReleased) {
		t.Errorf("second Cleanup: %v", err)
	}
	if err := m.Render(0); !errors.Is(err, ErrReleased) {
		t.Errorf("Render after Cleanup: %v", err)
	}
}

func TestStaticSetDataReallocates(t *testing.T) {
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	vertices, indices := MakeQuad(1, 1)
	m, err := NewMesh(r, vertices, indices)
	if err != nil {
		t.Fatal(err)
	}
	oldVB := m.VertexBuffer()

	bigger := append(append([]Vertex(nil), vertices...), vertices...)
	if err := m.SetData(bigger, indices); err != nil {
		t.Fatal(err)
	}
	if m.VertexBuffer() == oldVB || !rec.BufferReleased(oldVB) {
		t.Error("static SetData did not replace the vertex buffer")
	}
	if rec.LiveBuffers() != 2 {
		t.Errorf("live buffers = %d, want 2", rec.LiveBuffers())
	}
}
