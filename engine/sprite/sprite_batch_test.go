package sprite

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

const floatsPerVertex = mesh.VertexSize / 4

type fixture struct {
	rec   *rendertest.Recorder
	r     renderer.Renderer
	batch SpriteBatch
}

func newFixture(t *testing.T, options ...SpriteBatchBuilderOption) *fixture {
	t.Helper()
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	b, err := NewSpriteBatch(r, append([]SpriteBatchBuilderOption{WithCamera(camera.NewCamera())}, options...)...)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{rec: rec, r: r, batch: b}
}

func (f *fixture) texture(t *testing.T, w, h int) texture.Texture {
	t.Helper()
	tex, err := texture.NewTexture(f.r, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

// vertex returns position and uv of vertex i from a draw's vertex snapshot.
func vertex(d rendertest.DrawRecord, i int) (x, y, z, u, v float32) {
	f := rendertest.Floats(d.Vertices)[i*floatsPerVertex:]
	return f[0], f[1], f[2], f[7], f[8]
}

func near(a, b float32) bool {
	return common.ApproxEqual(a, b, 1e-4)
}

func TestFlushCountsWithOverflow(t *testing.T) {
	f := newFixture(t, WithCapacity(2))
	tex := f.texture(t, 8, 8)

	if err := f.batch.Begin(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := f.batch.Draw(tex, float32(i*10), 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.batch.RenderCalls(); got != 1 {
		t.Errorf("render calls before End = %d, want 1", got)
	}
	if err := f.batch.End(); err != nil {
		t.Fatal(err)
	}

	draws := f.rec.Draws()
	if len(draws) != 2 || f.batch.RenderCalls() != 2 {
		t.Fatalf("draws = %d, render calls = %d, want 2", len(draws), f.batch.RenderCalls())
	}
	if draws[0].IndexCount != 12 || draws[1].IndexCount != 6 {
		t.Errorf("index counts = %d, %d", draws[0].IndexCount, draws[1].IndexCount)
	}
	want := []uint32{0, 2, 1, 0, 3, 2, 4, 6, 5, 4, 7, 6}
	for i, idx := range draws[0].Indices {
		if idx != want[i] {
			t.Errorf("index %d = %d, want %d", i, idx, want[i])
		}
	}
}

func TestTextureSwitchFlushes(t *testing.T) {
	f := newFixture(t)
	a := f.texture(t, 4, 4)
	b := f.texture(t, 4, 4)

	f.batch.Begin()
	for _, tex := range []texture.Texture{a, a, b, a} {
		if err := f.batch.Draw(tex, 0, 0); err != nil {
			t.Fatal(err)
		}
	}
	f.batch.End()

	draws := f.rec.Draws()
	if len(draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(draws))
	}
	wantTex := []renderer.TextureHandle{a.Handle(), b.Handle(), a.Handle()}
	wantIdx := []uint32{12, 6, 6}
	for i, d := range draws {
		if d.Textures[0] != wantTex[i] || d.IndexCount != wantIdx[i] {
			t.Errorf("draw %d: texture %d, %d indices; want %d, %d", i, d.Textures[0], d.IndexCount, wantTex[i], wantIdx[i])
		}
	}
	if f.batch.Texture() != a {
		t.Error("texture does not persist after End")
	}
}

func TestOverflowAndSwitchFlushOnce(t *testing.T) {
	f := newFixture(t, WithCapacity(1))
	a := f.texture(t, 4, 4)
	b := f.texture(t, 4, 4)

	f.batch.Begin()
	f.batch.Draw(a, 0, 0)
	if err := f.batch.Draw(b, 0, 0); err != nil {
		t.Fatal(err)
	}
	if got := f.batch.RenderCalls(); got != 1 {
		t.Errorf("render calls = %d, want 1", got)
	}
	if f.batch.Pending() != 1 {
		t.Errorf("pending = %d, want 1", f.batch.Pending())
	}
	f.batch.End()
	if got := len(f.rec.Draws()); got != 2 {
		t.Errorf("draws = %d, want 2", got)
	}
}

func TestStateErrors(t *testing.T) {
	f := newFixture(t)
	tex := f.texture(t, 4, 4)

	if err := f.batch.Draw(tex, 0, 0); !errors.Is(err, ErrNotDrawing) || !errors.Is(err, ErrState) {
		t.Errorf("Draw before Begin: %v", err)
	}
	if err := f.batch.Flush(); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("Flush before Begin: %v", err)
	}
	if err := f.batch.End(); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("End before Begin: %v", err)
	}

	if err := f.batch.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := f.batch.Begin(); !errors.Is(err, ErrAlreadyDrawing) {
		t.Errorf("second Begin: %v", err)
	}
	if err := f.batch.Draw(nil, 0, 0); !errors.Is(err, ErrNilTexture) {
		t.Errorf("Draw(nil): %v", err)
	}
	// empty flush is a no-op even without a camera
	f.batch.SetCamera(nil)
	if err := f.batch.Flush(); err != nil {
		t.Errorf("empty Flush: %v", err)
	}

	f.batch.Draw(tex, 0, 0)
	if err := f.batch.Flush(); !errors.Is(err, ErrNoCamera) {
		t.Errorf("Flush without camera: %v", err)
	}
	if err := f.batch.End(); !errors.Is(err, ErrNoCamera) {
		t.Errorf("End without camera: %v", err)
	}
	if f.batch.Drawing() || f.batch.Pending() != 0 {
		t.Error("End did not stop the batch")
	}
}

func TestBeginResetsRenderCalls(t *testing.T) {
	f := newFixture(t)
	tex := f.texture(t, 4, 4)

	f.batch.Begin()
	f.batch.Draw(tex, 0, 0)
	f.batch.End()
	if f.batch.RenderCalls() != 1 {
		t.Fatalf("render calls = %d", f.batch.RenderCalls())
	}
	f.batch.Begin()
	if f.batch.RenderCalls() != 0 {
		t.Errorf("render calls after Begin = %d", f.batch.RenderCalls())
	}
	f.batch.End()
}

func TestQuadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		opts   []DrawOption
		corner [4][2]float32
	}{
		{
			name:   "texture size",
			corner: [4][2]float32{{92, 46}, {92, 54}, {108, 54}, {108, 46}},
		},
		{
			name:   "explicit size",
			opts:   []DrawOption{Size(4, -1)},
			corner: [4][2]float32{{98, 46}, {98, 54}, {102, 54}, {102, 46}},
		},
		{
			name:   "scaled",
			opts:   []DrawOption{Scale(2, 0.5)},
			corner: [4][2]float32{{84, 48}, {84, 52}, {116, 52}, {116, 48}},
		},
		{
			name:   "rotated quarter turn",
			opts:   []DrawOption{Rotation(math.Pi / 2)},
			corner: [4][2]float32{{104, 42}, {96, 42}, {96, 58}, {104, 58}},
		},
		{
			name:   "draw transform",
			opts:   []DrawOption{WithDrawTransform(transform.NewTransform2D(10, 20))},
			corner: [4][2]float32{{2, 16}, {2, 24}, {18, 24}, {18, 16}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tex := f.texture(t, 16, 8)
			f.batch.Begin()
			if err := f.batch.Draw(tex, 100, 50, tc.opts...); err != nil {
				t.Fatal(err)
			}
			f.batch.End()

			d := f.rec.Draws()[0]
			for i, c := range tc.corner {
				x, y, z, _, _ := vertex(d, i)
				if !near(x, c[0]) || !near(y, c[1]) || z != -1 {
					t.Errorf("vertex %d = (%v, %v, %v), want (%v, %v, -1)", i, x, y, z, c[0], c[1])
				}
			}
		})
	}
}

func TestRegionUVsAndSize(t *testing.T) {
	f := newFixture(t)
	tex := f.texture(t, 16, 8)

	f.batch.Begin()
	f.batch.Draw(tex, 0, 0, Region(common.NewRect(8, 0, 8, 8)), Tint(common.Red))
	f.batch.End()

	d := f.rec.Draws()[0]
	want := [4][4]float32{
		{-4, -4, 0.5, 0},
		{-4, 4, 0.5, 1},
		{4, 4, 1, 1},
		{4, -4, 1, 0},
	}
	for i, w := range want {
		x, y, _, u, v := vertex(d, i)
		if !near(x, w[0]) || !near(y, w[1]) || !near(u, w[2]) || !near(v, w[3]) {
			t.Errorf("vertex %d = pos (%v, %v) uv (%v, %v), want %v", i, x, y, u, v, w)
		}
	}
	color := rendertest.Floats(d.Vertices)[9:13]
	if color[0] != 1 || color[1] != 0 || color[3] != 1 {
		t.Errorf("vertex colour = %v, want red", color)
	}
}

func TestFlushUploadsOnlyWrittenRange(t *testing.T) {
	f := newFixture(t, WithCapacity(8))
	tex := f.texture(t, 4, 4)
	vb := f.batch.Renderable().Mesh().VertexBuffer()
	before := f.rec.BufferWrites(vb)

	f.batch.Begin()
	f.batch.Draw(tex, 1, 1)
	f.batch.Draw(tex, 2, 2)
	f.batch.End()

	if got := f.rec.BufferWrites(vb) - before; got != 1 {
		t.Errorf("vertex buffer writes = %d, want 1", got)
	}
	d := f.rec.Draws()[0]
	if d.IndexCount != 12 {
		t.Errorf("index count = %d, want 12", d.IndexCount)
	}
	// the untouched tail of the buffer is still zero
	if x, _, _, _, _ := vertex(d, 8); x != 0 {
		t.Errorf("vertex 8 x = %v, want 0", x)
	}
}

func TestProjectionOverride(t *testing.T) {
	cam := camera.NewCamera(camera.WithOrthographic(320, 240))
	f := newFixture(t, WithCamera(cam))
	if f.batch.Projection() != cam.ProjectionMatrix() {
		t.Error("batch does not use the camera projection by default")
	}
	m := common.Ortho(0, 10, 0, 10, 0.01, 100)
	f.batch.SetProjection(m)
	if f.batch.Projection() != m {
		t.Error("SetProjection did not override the camera projection")
	}
}

func TestInvalidCapacity(t *testing.T) {
	r := renderer.NewRenderer(rendertest.NewRecorder())
	if _, err := NewSpriteBatch(r, WithCapacity(0)); !errors.Is(err, ErrCapacity) {
		t.Errorf("err = %v, want ErrCapacity", err)
	}
}
