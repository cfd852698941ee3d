// Package gputest provides an in-memory gpu.Device that records every
// call made to it. Tests use it to observe what the renderer actually
// pushed to the device: which uniforms were written, how often textures
// were bound, what vertex data was uploaded.
package gputest

import (
	"fmt"
	"image"

	"github.com/gogpu/gtext/gpu"
)

// DrawCall records one DrawTriangles invocation.
type DrawCall struct {
	First, Count int
}

// UniformWrite records one uniform write that reached the device.
type UniformWrite struct {
	Program gpu.ProgramID
	Name    string
	Value   any
}

// Device is a recording gpu.Device. The zero value is not usable; call
// NewDevice.
//
// All state is exported for direct inspection in tests.
type Device struct {
	nextID uint64

	Programs map[gpu.ProgramID]gpu.ProgramSpec
	Buffers  map[gpu.BufferID][]float32
	Textures map[gpu.TextureID]*image.RGBA
	Samplers map[gpu.TextureID]gpu.SamplerOptions

	BoundProgram  gpu.ProgramID
	BoundBuffer   gpu.BufferID
	BoundTextures map[int]gpu.TextureID

	// AttribPointers maps attribute name to the byte offset of its last
	// VertexAttribPointer call.
	AttribPointers map[string]int

	UniformWrites []UniformWrite
	TextureBinds  int
	Draws         []DrawCall
	Blend         gpu.BlendMode

	// CreateProgramErr, when set, is returned by the next CreateProgram
	// call. Used to exercise construction failure paths.
	CreateProgramErr error
}

var _ gpu.Device = (*Device)(nil)

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{
		Programs:       make(map[gpu.ProgramID]gpu.ProgramSpec),
		Buffers:        make(map[gpu.BufferID][]float32),
		Textures:       make(map[gpu.TextureID]*image.RGBA),
		Samplers:       make(map[gpu.TextureID]gpu.SamplerOptions),
		BoundTextures:  make(map[int]gpu.TextureID),
		AttribPointers: make(map[string]int),
	}
}

// UniformWriteCount returns how many writes reached the named uniform.
// An empty name counts all writes.
func (d *Device) UniformWriteCount(name string) int {
	n := 0
	for _, w := range d.UniformWrites {
		if name == "" || w.Name == name {
			n++
		}
	}
	return n
}

// ResetCounters clears the recorded writes, binds and draws while
// keeping all live resources. Tests call it after setup so assertions
// see only the calls under test.
func (d *Device) ResetCounters() {
	d.UniformWrites = nil
	d.TextureBinds = 0
	d.Draws = nil
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// CreateProgram implements gpu.Device.
func (d *Device) CreateProgram(spec gpu.ProgramSpec) (gpu.ProgramID, error) {
	if d.CreateProgramErr != nil {
		err := d.CreateProgramErr
		d.CreateProgramErr = nil
		return gpu.InvalidID, err
	}
	id := gpu.ProgramID(d.id())
	d.Programs[id] = spec
	return id, nil
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(id gpu.ProgramID) error {
	if _, ok := d.Programs[id]; !ok {
		return fmt.Errorf("gputest: unknown program %d", id)
	}
	d.BoundProgram = id
	return nil
}

// DestroyProgram implements gpu.Device.
func (d *Device) DestroyProgram(id gpu.ProgramID) error {
	if _, ok := d.Programs[id]; !ok {
		return fmt.Errorf("gputest: destroy unknown program %d", id)
	}
	delete(d.Programs, id)
	return nil
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(data []float32) (gpu.BufferID, error) {
	id := gpu.BufferID(d.id())
	cp := make([]float32, len(data))
	copy(cp, data)
	d.Buffers[id] = cp
	return id, nil
}

// BindBuffer implements gpu.Device.
func (d *Device) BindBuffer(id gpu.BufferID) error {
	if _, ok := d.Buffers[id]; !ok {
		return fmt.Errorf("gputest: unknown buffer %d", id)
	}
	d.BoundBuffer = id
	return nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(id gpu.BufferID) error {
	if _, ok := d.Buffers[id]; !ok {
		return fmt.Errorf("gputest: destroy unknown buffer %d", id)
	}
	delete(d.Buffers, id)
	return nil
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(img *image.RGBA, opts gpu.SamplerOptions) (gpu.TextureID, error) {
	id := gpu.TextureID(d.id())
	d.Textures[id] = img
	d.Samplers[id] = opts
	return id, nil
}

// BindTexture implements gpu.Device.
func (d *Device) BindTexture(unit int, id gpu.TextureID) error {
	if _, ok := d.Textures[id]; !ok {
		return fmt.Errorf("gputest: unknown texture %d", id)
	}
	d.BoundTextures[unit] = id
	d.TextureBinds++
	return nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) error {
	if _, ok := d.Textures[id]; !ok {
		return fmt.Errorf("gputest: destroy unknown texture %d", id)
	}
	delete(d.Textures, id)
	return nil
}

// VertexAttribPointer implements gpu.Device.
func (d *Device) VertexAttribPointer(program gpu.ProgramID, attrib string, offset int) error {
	if _, ok := d.Programs[program]; !ok {
		return fmt.Errorf("gputest: unknown program %d", program)
	}
	if d.BoundBuffer == gpu.InvalidID {
		return fmt.Errorf("gputest: no buffer bound")
	}
	d.AttribPointers[attrib] = offset
	return nil
}

// SetUniformInt implements gpu.Device.
func (d *Device) SetUniformInt(program gpu.ProgramID, name string, v int) error {
	return d.recordUniform(program, name, v)
}

// SetUniformVec2 implements gpu.Device.
func (d *Device) SetUniformVec2(program gpu.ProgramID, name string, x, y float32) error {
	return d.recordUniform(program, name, [2]float32{x, y})
}

// SetUniformVec4 implements gpu.Device.
func (d *Device) SetUniformVec4(program gpu.ProgramID, name string, v [4]float32) error {
	return d.recordUniform(program, name, v)
}

func (d *Device) recordUniform(program gpu.ProgramID, name string, v any) error {
	if _, ok := d.Programs[program]; !ok {
		return fmt.Errorf("gputest: unknown program %d", program)
	}
	d.UniformWrites = append(d.UniformWrites, UniformWrite{
		Program: program,
		Name:    name,
		Value:   v,
	})
	return nil
}

// SetBlend implements gpu.Device.
func (d *Device) SetBlend(mode gpu.BlendMode) error {
	d.Blend = mode
	return nil
}

// DrawTriangles implements gpu.Device.
func (d *Device) DrawTriangles(first, count int) error {
	if d.BoundBuffer == gpu.InvalidID {
		return fmt.Errorf("gputest: draw with no buffer bound")
	}
	if need := (first + count) * 2; len(d.Buffers[d.BoundBuffer]) < need {
		return fmt.Errorf("gputest: draw past buffer end: need %d floats, have %d",
			need, len(d.Buffers[d.BoundBuffer]))
	}
	d.Draws = append(d.Draws, DrawCall{First: first, Count: count})
	return nil
}
