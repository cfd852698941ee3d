package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gtext/gpu"
)

// atlasUnit is the only texture unit the text shader samples from.
const atlasUnit = 0

// VertexAttribPointer implements gpu.Device. The offset is remembered
// and applied as the vertex buffer offset for the attribute's slot at
// draw time.
func (d *Device) VertexAttribPointer(id gpu.ProgramID, attrib string, offset int) error {
	if _, ok := d.programs[id]; !ok {
		return fmt.Errorf("wgpu: unknown program %d", id)
	}
	if _, ok := attribLocations[attrib]; !ok {
		return fmt.Errorf("wgpu: unknown attribute %q", attrib)
	}
	d.attribOffsets[attrib] = offset
	return nil
}

// SetUniformInt implements gpu.Device. The only integer uniform is the
// sampler unit, and the binding model fixes it to unit 0; anything else
// is rejected.
func (d *Device) SetUniformInt(id gpu.ProgramID, name string, v int) error {
	if _, ok := d.programs[id]; !ok {
		return fmt.Errorf("wgpu: unknown program %d", id)
	}
	if name != gpu.UniformSampler {
		return fmt.Errorf("wgpu: unknown int uniform %q", name)
	}
	if v != atlasUnit {
		return fmt.Errorf("wgpu: sampler unit %d not supported, only unit 0", v)
	}
	return nil
}

// SetUniformVec2 implements gpu.Device.
func (d *Device) SetUniformVec2(id gpu.ProgramID, name string, x, y float32) error {
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("wgpu: unknown program %d", id)
	}
	off, ok := uniformOffsets[name]
	if !ok {
		return fmt.Errorf("wgpu: unknown uniform %q", name)
	}
	binary.LittleEndian.PutUint32(p.shadow[off:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(p.shadow[off+4:], math.Float32bits(y))
	p.dirty = true
	return nil
}

// SetUniformVec4 implements gpu.Device.
func (d *Device) SetUniformVec4(id gpu.ProgramID, name string, v [4]float32) error {
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("wgpu: unknown program %d", id)
	}
	off, ok := uniformOffsets[name]
	if !ok {
		return fmt.Errorf("wgpu: unknown uniform %q", name)
	}
	for i, c := range v {
		binary.LittleEndian.PutUint32(p.shadow[off+i*4:], math.Float32bits(c))
	}
	p.dirty = true
	return nil
}

// SetBlend implements gpu.Device.
func (d *Device) SetBlend(mode gpu.BlendMode) error {
	d.blend = mode
	return nil
}

// ensureBindGroup returns the bind group joining the program's uniform
// buffer with the given atlas texture, creating it on first use.
func (d *Device) ensureBindGroup(p *program, id gpu.TextureID, t *texture) (hal.BindGroup, error) {
	if bg, ok := p.bindGroups[id]; ok {
		return bg, nil
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "gtext_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: p.uniformBuf.NativeHandle(),
					Offset: 0,
					Size:   uniformBlockSize,
				},
			},
			{
				Binding: 1,
				Resource: gputypes.TextureViewBinding{
					TextureView: t.view.NativeHandle(),
				},
			},
			{
				Binding: 2,
				Resource: gputypes.SamplerBinding{
					Sampler: t.sampler.NativeHandle(),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	p.bindGroups[id] = bg
	return bg, nil
}

// DrawTriangles implements gpu.Device. Each call encodes one render
// pass against the current target and waits for the GPU to finish.
func (d *Device) DrawTriangles(first, count int) error {
	if d.closed {
		return ErrClosed
	}
	if d.target == nil {
		return ErrNoTarget
	}
	p := d.boundProgram
	if p == nil {
		return fmt.Errorf("wgpu: draw with no program bound")
	}
	b := d.boundBuffer
	if b == nil {
		return fmt.Errorf("wgpu: draw with no vertex buffer bound")
	}
	t, ok := d.boundTextures[atlasUnit]
	if !ok {
		return fmt.Errorf("wgpu: draw with no texture bound to unit %d", atlasUnit)
	}
	if count == 0 {
		return nil
	}

	if p.dirty {
		d.queue.WriteBuffer(p.uniformBuf, 0, p.shadow[:])
		p.dirty = false
	}

	pipeline, err := d.ensurePipeline(p, d.blend)
	if err != nil {
		return err
	}
	bindGroup, err := d.ensureBindGroup(p, d.boundTextureIDs[atlasUnit], t)
	if err != nil {
		return err
	}

	loadOp := gputypes.LoadOpLoad
	if d.clearPending {
		loadOp = gputypes.LoadOpClear
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "gtext_draw_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gtext_draw"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "gtext_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       d.target.view,
				LoadOp:     loadOp,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: d.clearValue,
			},
		},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, b.buf, uint64(d.attribOffsets[gpu.AttribPosition]))
	rp.SetVertexBuffer(1, b.buf, uint64(d.attribOffsets[gpu.AttribTexCoords]))
	rp.Draw(uint32(count), 1, uint32(first), 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return err
	}
	d.clearPending = false
	return nil
}
