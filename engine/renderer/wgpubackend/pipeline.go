package wgpubackend

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type slotKey struct {
	slot    int
	texture renderer.TextureHandle
}

// compiledPipeline is what RegisterPipeline stores in pipeline.SetHandle.
type compiledPipeline struct {
	render  *wgpu.RenderPipeline
	layouts []*wgpu.BindGroupLayout

	// static groups hold the uniform buffer, or nothing when a group index is unused
	staticGroups map[uint32]*wgpu.BindGroup
	uniform      *wgpu.Buffer
	uniformSize  uint64

	slots      []pipeline.TextureSlot
	slotGroups map[slotKey]*wgpu.BindGroup
}

func (cp *compiledPipeline) forgetTexture(h renderer.TextureHandle) {
	for key, bg := range cp.slotGroups {
		if key.texture == h {
			bg.Release()
			delete(cp.slotGroups, key)
		}
	}
}

func (b *backend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return pipeline.ErrMissingShader
	}

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return err
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Source(),
		},
	})
	if err != nil {
		return err
	}

	cp := &compiledPipeline{
		staticGroups: make(map[uint32]*wgpu.BindGroup),
		slots:        p.TextureSlots(),
		slotGroups:   make(map[slotKey]*wgpu.BindGroup),
	}

	groups := groupLayoutDescriptors(p.Key(), p.Bindings())
	maxGroup := -1
	for g := range groups {
		if int(g) > maxGroup {
			maxGroup = int(g)
		}
	}
	cp.layouts = make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range cp.layouts {
		desc := groups[uint32(g)]
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		cp.layouts[g] = layout
	}

	if err := b.initStaticGroups(p, cp); err != nil {
		return err
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: cp.layouts,
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout(p.VertexLayout())},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					Blend:     blendState(p.BlendMode()),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// sprites may be mirrored with negative scale
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}
	cp.render = created

	p.SetHandle(cp)
	b.pipelines = append(b.pipelines, cp)
	return nil
}

// initStaticGroups creates the uniform buffer and the bind groups that do not depend on a
// bound texture. Must be called with mu held.
func (b *backend) initStaticGroups(p pipeline.Pipeline, cp *compiledPipeline) error {
	slotGroups := make(map[uint32]bool, len(cp.slots))
	for _, s := range cp.slots {
		slotGroups[s.Group] = true
	}

	block, hasBlock := p.UniformBlock()
	if hasBlock {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: p.Key() + " Uniform Buffer",
			Size:  alignTo(block.Size, 16),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		cp.uniform = buf
		cp.uniformSize = block.Size
	}

	for g, layout := range cp.layouts {
		group := uint32(g)
		if slotGroups[group] {
			continue
		}
		var entries []wgpu.BindGroupEntry
		for _, binding := range p.Bindings() {
			if binding.Group != group {
				continue
			}
			if !hasBlock || binding.Binding != block.Binding.Binding || binding.Group != block.Binding.Group {
				return fmt.Errorf("pipeline %s: binding %s (group %d, binding %d) is not supported", p.Key(), binding.Name, binding.Group, binding.Binding)
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: binding.Binding,
				Buffer:  cp.uniform,
				Offset:  0,
				Size:    wgpu.WholeSize,
			})
		}
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s Group %d", p.Key(), g),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			return err
		}
		cp.staticGroups[group] = bg
	}
	return nil
}

// slotGroup returns the bind group pairing a texture with its sampler for one slot,
// creating and caching it on first use. Must be called with mu held.
func (b *backend) slotGroup(cp *compiledPipeline, slot int, h renderer.TextureHandle) (*wgpu.BindGroup, error) {
	key := slotKey{slot: slot, texture: h}
	if bg, ok := cp.slotGroups[key]; ok {
		return bg, nil
	}
	tex, err := b.texture(h)
	if err != nil {
		return nil, err
	}
	s := cp.slots[slot]
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  s.Name + " Bind Group",
		Layout: cp.layouts[s.Group],
		Entries: []wgpu.BindGroupEntry{
			{Binding: s.TextureBinding, TextureView: tex.view},
			{Binding: s.SamplerBinding, Sampler: tex.sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	cp.slotGroups[key] = bg
	return bg, nil
}

// groupLayoutDescriptors converts merged shader bindings into one layout descriptor per group.
func groupLayoutDescriptors(label string, bindings []shader.Binding) map[uint32]wgpu.BindGroupLayoutDescriptor {
	groups := make(map[uint32]wgpu.BindGroupLayoutDescriptor)
	for _, binding := range bindings {
		desc := groups[binding.Group]
		desc.Label = fmt.Sprintf("%s Group %d Layout", label, binding.Group)
		desc.Entries = append(desc.Entries, layoutEntry(binding))
		groups[binding.Group] = desc
	}
	for g, desc := range groups {
		sort.Slice(desc.Entries, func(i, j int) bool {
			return desc.Entries[i].Binding < desc.Entries[j].Binding
		})
		groups[g] = desc
	}
	return groups
}

func layoutEntry(binding shader.Binding) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding.Binding,
		Visibility: shaderStage(binding.Visibility),
	}
	switch binding.Kind {
	case shader.BindingUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = binding.MinSize
	case shader.BindingStorage:
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		entry.Buffer.MinBindingSize = binding.MinSize
	case shader.BindingReadOnlyStorage:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		entry.Buffer.MinBindingSize = binding.MinSize
	case shader.BindingTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case shader.BindingSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	}
	return entry
}

func shaderStage(s shader.Stage) wgpu.ShaderStage {
	stage := wgpu.ShaderStageNone
	if s&shader.StageVertex != 0 {
		stage |= wgpu.ShaderStageVertex
	}
	if s&shader.StageFragment != 0 {
		stage |= wgpu.ShaderStageFragment
	}
	return stage
}

var vertexFormatMap = map[shader.VertexFormat]wgpu.VertexFormat{
	shader.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	shader.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	shader.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	shader.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	shader.VertexFormatSint32:    wgpu.VertexFormatSint32,
	shader.VertexFormatSint32x2:  wgpu.VertexFormatSint32x2,
	shader.VertexFormatSint32x3:  wgpu.VertexFormatSint32x3,
	shader.VertexFormatSint32x4:  wgpu.VertexFormatSint32x4,
	shader.VertexFormatUint32:    wgpu.VertexFormatUint32,
	shader.VertexFormatUint32x2:  wgpu.VertexFormatUint32x2,
	shader.VertexFormatUint32x3:  wgpu.VertexFormatUint32x3,
	shader.VertexFormatUint32x4:  wgpu.VertexFormatUint32x4,
}

func vertexBufferLayout(layout shader.VertexLayout) wgpu.VertexBufferLayout {
	attributes := make([]wgpu.VertexAttribute, len(layout.Attributes))
	for i, a := range layout.Attributes {
		attributes[i] = wgpu.VertexAttribute{
			Format:         vertexFormatMap[a.Format],
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: layout.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

func blendState(mode pipeline.BlendMode) *wgpu.BlendState {
	switch mode {
	case pipeline.BlendNone:
		return nil
	case pipeline.BlendAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	default:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}
}
