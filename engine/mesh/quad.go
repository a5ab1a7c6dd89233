package mesh

// QuadIndices returns the six indices of the quad whose first vertex is base.
// Triangles are (0, 2, 1) and (0, 3, 2) relative to base.
func QuadIndices(base uint32) [6]uint32 {
	return [6]uint32{base, base + 2, base + 1, base, base + 3, base + 2}
}

// MakeQuad returns a w by h quad centred on the origin at z = -1 with UVs covering the
// whole texture. Vertex order is bottom-left, top-left, top-right, bottom-right.
func MakeQuad(w, h float32) ([]Vertex, []uint32) {
	x, y := -w/2, -h/2
	x2, y2 := x+w, y+h
	vertices := []Vertex{
		NewVertex(x, y, -1, 0, 0),
		NewVertex(x, y2, -1, 0, 1),
		NewVertex(x2, y2, -1, 1, 1),
		NewVertex(x2, y, -1, 1, 0),
	}
	indices := QuadIndices(0)
	return vertices, indices[:]
}
