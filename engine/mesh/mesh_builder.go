package mesh

// MeshBuilderOption is a functional option applied to a mesh during construction via NewMesh.
type MeshBuilderOption func(*mesh)

// WithUsage selects static or dynamic buffer management.
//
// Parameters:
//   - usage: UsageStatic or UsageDynamic
//
// Returns:
//   - MeshBuilderOption: a function that applies the usage option to a mesh
func WithUsage(usage Usage) MeshBuilderOption {
	return func(m *mesh) {
		m.usage = usage
	}
}

// WithLabel sets the debug label used for the mesh's buffers.
func WithLabel(label string) MeshBuilderOption {
	return func(m *mesh) {
		m.label = label
	}
}
