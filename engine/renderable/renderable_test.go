package renderable

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/oxy2d/engine/texture"
	"github.com/Carmen-Shannon/oxy2d/engine/transform"
)

func setup(t *testing.T) (*rendertest.Recorder, renderer.Renderer, mesh.Mesh, texture.Texture) {
	t.Helper()
	rec := rendertest.NewRecorder()
	r := renderer.NewRenderer(rec)
	vertices, indices := mesh.MakeQuad(2, 2)
	m, err := mesh.NewMesh(r, vertices, indices)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := texture.NewTexture(r, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	return rec, r, m, tex
}

func TestDrawSetsUniformsAndUnbinds(t *testing.T) {
	rec, r, m, tex := setup(t)
	tr := transform.NewTransform2D(3, 4)
	rd := NewRenderable(
		WithMesh(m),
		WithPipeline(rendertest.NewPipeline("quad")),
		WithTexture(tex),
		WithTransform(tr),
		WithTint(common.Red),
	)

	view := common.Translation(common.Vec3{-1, 0, 0})
	proj := common.Ortho(0, 100, 0, 100, -10, 10)
	if err := rd.Draw(r, view, proj, -1); err != nil {
		t.Fatal(err)
	}

	draws := rec.Draws()
	if len(draws) != 1 {
		t.Fatalf("got %d draws", len(draws))
	}
	d := draws[0]
	if d.IndexCount != 6 || d.Textures[0] != tex.Handle() {
		t.Errorf("draw = %+v", d.DrawCommand)
	}
	u := rendertest.Floats(d.Uniforms)
	if u[12] != 3 || u[13] != 4 {
		t.Errorf("ModelMatrix translation = (%v, %v)", u[12], u[13])
	}
	if u[16+12] != -1 {
		t.Errorf("ViewMatrix translation x = %v", u[16+12])
	}
	if u[32] != proj[0] {
		t.Errorf("ProjectionMatrix[0] = %v, want %v", u[32], proj[0])
	}
	if tint := u[48:52]; tint[0] != 1 || tint[1] != 0 || tint[3] != 1 {
		t.Errorf("TintColor = %v", tint)
	}

	if r.CurrentPipeline() != nil {
		t.Error("pipeline still bound after Draw")
	}
	vb, ib := m.VertexBuffer(), m.IndexBuffer()
	if err := r.DrawIndexed(vb, ib, 6); err != renderer.ErrNoPipeline {
		t.Errorf("expected no bound pipeline, got %v", err)
	}
}

func TestDrawSkipsIncomplete(t *testing.T) {
	rec, r, m, _ := setup(t)
	tests := []struct {
		name string
		rd   Renderable
	}{
		{"inactive", NewRenderable(WithMesh(m), WithPipeline(rendertest.NewPipeline("a")), WithActive(false))},
		{"no mesh", NewRenderable(WithPipeline(rendertest.NewPipeline("b")))},
		{"no pipeline", NewRenderable(WithMesh(m))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.rd.Draw(r, common.Identity(), common.Identity(), 0); err != nil {
				t.Errorf("Draw: %v", err)
			}
		})
	}
	if n := len(rec.Draws()); n != 0 {
		t.Errorf("%d draws reached the backend", n)
	}
}

func TestIDsAreUnique(t *testing.T) {
	a, b := NewRenderable(), NewRenderable()
	if a.ID() == b.ID() {
		t.Error("two renderables share an ID")
	}
}
