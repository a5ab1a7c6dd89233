package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// wgslVertexFormatMap maps WGSL type names to their vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {VertexFormatFloat32, 4},
	"vec2f":     {VertexFormatFloat32x2, 8},
	"vec2<f32>": {VertexFormatFloat32x2, 8},
	"vec3f":     {VertexFormatFloat32x3, 12},
	"vec3<f32>": {VertexFormatFloat32x3, 12},
	"vec4f":     {VertexFormatFloat32x4, 16},
	"vec4<f32>": {VertexFormatFloat32x4, 16},
	"i32":       {VertexFormatSint32, 4},
	"vec2i":     {VertexFormatSint32x2, 8},
	"vec2<i32>": {VertexFormatSint32x2, 8},
	"vec3i":     {VertexFormatSint32x3, 12},
	"vec3<i32>": {VertexFormatSint32x3, 12},
	"vec4i":     {VertexFormatSint32x4, 16},
	"vec4<i32>": {VertexFormatSint32x4, 16},
	"u32":       {VertexFormatUint32, 4},
	"vec2u":     {VertexFormatUint32x2, 8},
	"vec2<u32>": {VertexFormatUint32x2, 8},
	"vec3u":     {VertexFormatUint32x3, 12},
	"vec3<u32>": {VertexFormatUint32x3, 12},
	"vec4u":     {VertexFormatUint32x4, 16},
	"vec4<u32>": {VertexFormatUint32x4, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> uniforms: RenderUniforms;
	// or handle types: @group(1) @binding(0) var Tex: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexLayout extracts the vertex buffer layout from WGSL source. The first struct
// that is a pure vertex input (has @location attributes but no @builtin fields) wins.
//
// Parameters:
//   - source: the pre-processed WGSL source code string
//
// Returns:
//   - VertexLayout: the packed layout of the vertex input struct
//   - bool: false if the source declares no usable vertex input struct
func parseVertexLayout(source string) (VertexLayout, bool) {
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexLayout(ps); ok {
			return layout, true
		}
	}
	return VertexLayout{}, false
}

// parseBindings extracts all @group(N) @binding(M) resource declarations from WGSL source,
// sorted by group and then binding. Buffer bindings have MinSize set from the resolved size
// of their struct type. Uniform bindings whose struct resolves also get a UniformBlock.
//
// Parameters:
//   - source: the pre-processed WGSL source code string
//   - visibility: the stage that declared the bindings
//
// Returns:
//   - []Binding: the declared bindings
//   - []UniformBlock: the resolved layouts of every var<uniform> struct
func parseBindings(source string, visibility Stage) ([]Binding, []UniformBlock) {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)

	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	var bindings []Binding
	var blocks []UniformBlock
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.ParseUint(match[1], 10, 32)
		binding, _ := strconv.ParseUint(match[2], 10, 32)
		addressSpace := strings.Join(strings.Fields(match[3]), " ")
		typeName := strings.TrimSpace(match[5])

		b := Binding{
			Group:      uint32(group),
			Binding:    uint32(binding),
			Name:       strings.TrimSpace(match[4]),
			TypeName:   typeName,
			Kind:       classifyResource(addressSpace, typeName),
			Visibility: visibility,
		}

		switch b.Kind {
		case BindingUniform, BindingStorage, BindingReadOnlyStorage:
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
				b.MinSize = layout.size
			}
		}

		if b.Kind == BindingUniform {
			if ps, ok := byName[typeName]; ok {
				if fields, layout, ok := computeStructFields(ps, structSizes); ok {
					blocks = append(blocks, UniformBlock{Binding: b, Fields: fields, Size: layout.size})
				}
			}
		}

		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Binding < bindings[j].Binding
	})
	return bindings, blocks
}

// parseEntryPoint extracts the entry point function name for the given shader type
// from WGSL source. Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - shaderType: ShaderTypeVertex or ShaderTypeFragment
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		field.isBuiltin = builtinRegex.MatchString(line)

		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}
