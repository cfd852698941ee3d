package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gtext/gpu"
)

// uniformBlockSize is the byte size of the text uniform block.
// Layout (std140-compatible):
//
//	screen_position (vec2<f32>) offset  0
//	scale           (vec2<f32>) offset  8
//	fill_color      (vec4<f32>) offset 16
//	stroke_color    (vec4<f32>) offset 32
//	background_color(vec4<f32>) offset 48
//
// Total = 64 bytes.
const uniformBlockSize = 64

// uniformOffsets resolves uniform names to byte offsets in the block.
// The sampler uniform is absent: texture and sampler are bound through
// the bind group, not the block.
var uniformOffsets = map[string]int{
	gpu.UniformScreenPosition: 0,
	gpu.UniformScale:          8,
	gpu.UniformFill:           16,
	gpu.UniformStroke:         32,
	gpu.UniformBackground:     48,
}

// attribLocations resolves attribute names to WGSL shader locations.
var attribLocations = map[string]uint32{
	gpu.AttribPosition:  0,
	gpu.AttribTexCoords: 1,
}

// program holds the GPU objects behind one gpu.ProgramID. Render
// pipelines are created lazily per blend mode, bind groups lazily per
// atlas texture.
type program struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[gpu.BlendMode]hal.RenderPipeline

	uniformBuf hal.Buffer
	shadow     [uniformBlockSize]byte
	dirty      bool

	bindGroups map[gpu.TextureID]hal.BindGroup
}

// buffer holds one uploaded vertex buffer.
type buffer struct {
	buf  hal.Buffer
	size uint64
}

// texture holds one atlas texture with its view and sampler.
type texture struct {
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

func (t *texture) destroy(device hal.Device) {
	device.DestroySampler(t.sampler)
	device.DestroyTextureView(t.view)
	device.DestroyTexture(t.tex)
}

func (p *program) destroy(device hal.Device) {
	for _, bg := range p.bindGroups {
		device.DestroyBindGroup(bg)
	}
	p.bindGroups = nil
	for _, pl := range p.pipelines {
		device.DestroyRenderPipeline(pl)
	}
	p.pipelines = nil
	if p.uniformBuf != nil {
		device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// CreateProgram implements gpu.Device. This backend compiles the WGSL
// dialect and ignores the GLSL pair.
func (d *Device) CreateProgram(spec gpu.ProgramSpec) (gpu.ProgramID, error) {
	if d.closed {
		return gpu.InvalidID, ErrClosed
	}
	if spec.WGSL == "" {
		return gpu.InvalidID, fmt.Errorf("wgpu: program %q has no WGSL source", spec.Label)
	}
	spirv, err := compileWGSL(spec.WGSL)
	if err != nil {
		return gpu.InvalidID, err
	}

	p := &program{
		pipelines:  make(map[gpu.BlendMode]hal.RenderPipeline),
		bindGroups: make(map[gpu.TextureID]hal.BindGroup),
	}

	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  spec.Label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: create shader module: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: uniform block (vertex+fragment)
	//   Binding 1: atlas texture (fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: spec.Label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.destroy(d.device)
		return gpu.InvalidID, fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(d.device)
		return gpu.InvalidID, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	uniformBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: spec.Label + "_uniforms",
		Size:  uniformBlockSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.destroy(d.device)
		return gpu.InvalidID, fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf
	p.dirty = true

	id := gpu.ProgramID(d.id())
	d.programs[id] = p
	return id, nil
}

// ensurePipeline returns the render pipeline for the given blend mode,
// creating it on first use.
func (d *Device) ensurePipeline(p *program, mode gpu.BlendMode) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[mode]; ok {
		return pl, nil
	}

	var blend *gputypes.BlendState
	if mode == gpu.BlendAlphaSeparate {
		blend = &gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	}

	pl, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "gtext_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    textVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	p.pipelines[mode] = pl
	return pl, nil
}

// textVertexLayout returns the two-slot vertex layout. Positions and
// texture coordinates live in one buffer at different offsets, so each
// attribute gets its own slot with an 8-byte stride.
func textVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // relativePosition
			},
		},
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // textureCoords
			},
		},
	}
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(id gpu.ProgramID) error {
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("wgpu: unknown program %d", id)
	}
	d.boundProgram = p
	return nil
}

// DestroyProgram implements gpu.Device.
func (d *Device) DestroyProgram(id gpu.ProgramID) error {
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("wgpu: destroy unknown program %d", id)
	}
	if d.boundProgram == p {
		d.boundProgram = nil
	}
	p.destroy(d.device)
	delete(d.programs, id)
	return nil
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(data []float32) (gpu.BufferID, error) {
	if d.closed {
		return gpu.InvalidID, ErrClosed
	}
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	// Zero-size buffers are rejected by most backends; keep one word.
	size := uint64(len(raw))
	if size == 0 {
		size = 4
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gtext_vertices",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: create vertex buffer: %w", err)
	}
	if len(raw) > 0 {
		d.queue.WriteBuffer(buf, 0, raw)
	}

	id := gpu.BufferID(d.id())
	d.buffers[id] = &buffer{buf: buf, size: size}
	return id, nil
}

// BindBuffer implements gpu.Device.
func (d *Device) BindBuffer(id gpu.BufferID) error {
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("wgpu: unknown buffer %d", id)
	}
	d.boundBuffer = b
	return nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(id gpu.BufferID) error {
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("wgpu: destroy unknown buffer %d", id)
	}
	if d.boundBuffer == b {
		d.boundBuffer = nil
	}
	d.device.DestroyBuffer(b.buf)
	delete(d.buffers, id)
	return nil
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(img *image.RGBA, opts gpu.SamplerOptions) (gpu.TextureID, error) {
	if d.closed {
		return gpu.InvalidID, ErrClosed
	}
	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gtext_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("wgpu: create atlas texture: %w", err)
	}

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		tightPixels(img),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "gtext_atlas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return gpu.InvalidID, fmt.Errorf("wgpu: create atlas view: %w", err)
	}

	sampler, err := d.device.CreateSampler(samplerDescriptor(opts))
	if err != nil {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
		return gpu.InvalidID, fmt.Errorf("wgpu: create sampler: %w", err)
	}

	id := gpu.TextureID(d.id())
	d.textures[id] = &texture{tex: tex, view: view, sampler: sampler}
	return id, nil
}

// samplerDescriptor maps gpu.SamplerOptions to a hal descriptor.
func samplerDescriptor(opts gpu.SamplerOptions) *hal.SamplerDescriptor {
	address := gputypes.AddressModeClampToEdge
	if opts.Wrap == gpu.WrapRepeat {
		address = gputypes.AddressModeRepeat
	}
	filter := gputypes.FilterModeLinear
	if opts.Filter == gpu.FilterNearest {
		filter = gputypes.FilterModeNearest
	}
	return &hal.SamplerDescriptor{
		Label:        "gtext_sampler",
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	}
}

// tightPixels returns the image data with rows packed to width*4
// bytes. image.RGBA strides usually are tight already; sub-images are
// repacked.
func tightPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if img.Stride == w*4 && b.Min == (image.Point{}) {
		return img.Pix[:w*h*4]
	}
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(out[y*w*4:(y+1)*w*4], src[:w*4])
	}
	return out
}

// BindTexture implements gpu.Device.
func (d *Device) BindTexture(unit int, id gpu.TextureID) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("wgpu: unknown texture %d", id)
	}
	d.boundTextures[unit] = t
	d.boundTextureIDs[unit] = id
	return nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("wgpu: destroy unknown texture %d", id)
	}
	for unit, bound := range d.boundTextures {
		if bound == t {
			delete(d.boundTextures, unit)
			delete(d.boundTextureIDs, unit)
		}
	}
	// Bind groups referencing this texture are stale; drop them.
	for _, p := range d.programs {
		if bg, ok := p.bindGroups[id]; ok {
			d.device.DestroyBindGroup(bg)
			delete(p.bindGroups, id)
		}
	}
	t.destroy(d.device)
	delete(d.textures, id)
	return nil
}
