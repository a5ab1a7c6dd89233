package shader

// VertexFormat identifies the data format of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatUndefined VertexFormat = iota
	VertexFormatFloat32
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatSint32
	VertexFormatSint32x2
	VertexFormatSint32x3
	VertexFormatSint32x4
	VertexFormatUint32
	VertexFormatUint32x2
	VertexFormatUint32x3
	VertexFormatUint32x4
)

// VertexAttribute describes one @location input of a vertex shader.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint64
}

// VertexLayout describes a tightly packed, per-vertex buffer layout.
type VertexLayout struct {
	// Stride is the byte distance between consecutive vertices.
	Stride uint64
	// Attributes are listed in declaration order.
	Attributes []VertexAttribute
}

// BindingKind classifies a @group/@binding resource declaration.
type BindingKind int

const (
	BindingUnknown BindingKind = iota
	BindingUniform
	BindingStorage
	BindingReadOnlyStorage
	BindingTexture
	BindingSampler
)

// Stage is a bit set of shader stages a binding is visible to.
type Stage uint32

const (
	StageVertex Stage = 1 << iota
	StageFragment
)

// Binding is a resource declared with @group(N) @binding(M) in WGSL source.
type Binding struct {
	Group      uint32
	Binding    uint32
	Name       string
	TypeName   string
	Kind       BindingKind
	MinSize    uint64
	Visibility Stage
}

// UniformField is a single member of a uniform struct with its WGSL-rule offset.
type UniformField struct {
	Name     string
	TypeName string
	Offset   uint64
	Size     uint64
}

// UniformBlock is a var<uniform> binding together with the resolved layout of its struct.
type UniformBlock struct {
	Binding Binding
	Fields  []UniformField
	Size    uint64
}

// Field looks up a member by name.
func (u UniformBlock) Field(name string) (UniformField, bool) {
	for _, f := range u.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return UniformField{}, false
}

// vertexFormatInfo holds the vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to compute MinSize for buffer bindings and field offsets for uniform structs.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
