package gtext

import (
	"fmt"

	"github.com/gogpu/gtext/gpu"
)

// Program wraps the compiled text shader program together with its
// render state cache. Every uniform write goes through a cached slot;
// writing the value the device already holds is elided entirely.
//
// The cache survives across frames. GPU uniform state persists until
// overwritten, so there is no reason to invalidate it at frame
// boundaries.
type Program struct {
	device gpu.Device
	id     gpu.ProgramID

	screenPos  cachedVec2
	scale      cachedVec2
	fill       cachedVec4
	stroke     cachedVec4
	background cachedVec4
	sampler    cachedInt
}

// newProgram compiles and links the text program. Compile or link
// failure is fatal and reported synchronously.
func newProgram(device gpu.Device) (*Program, error) {
	id, err := device.CreateProgram(textProgramSpec())
	if err != nil {
		return nil, fmt.Errorf("gtext: compile text program: %w", err)
	}
	return &Program{device: device, id: id}, nil
}

func (p *Program) setScreenPosition(x, y float32) error {
	if !p.screenPos.update(x, y) {
		return nil
	}
	return p.device.SetUniformVec2(p.id, gpu.UniformScreenPosition, x, y)
}

func (p *Program) setScale(x, y float32) error {
	if !p.scale.update(x, y) {
		return nil
	}
	return p.device.SetUniformVec2(p.id, gpu.UniformScale, x, y)
}

func (p *Program) setFill(c Color) error {
	v := c.vec4()
	if !p.fill.update(v) {
		return nil
	}
	return p.device.SetUniformVec4(p.id, gpu.UniformFill, v)
}

func (p *Program) setStroke(c Color) error {
	v := c.vec4()
	if !p.stroke.update(v) {
		return nil
	}
	return p.device.SetUniformVec4(p.id, gpu.UniformStroke, v)
}

func (p *Program) setBackground(c Color) error {
	v := c.vec4()
	if !p.background.update(v) {
		return nil
	}
	return p.device.SetUniformVec4(p.id, gpu.UniformBackground, v)
}

func (p *Program) setSamplerUnit(unit int) error {
	if !p.sampler.update(unit) {
		return nil
	}
	return p.device.SetUniformInt(p.id, gpu.UniformSampler, unit)
}

// release destroys the program and its shaders.
func (p *Program) release() error {
	return p.device.DestroyProgram(p.id)
}
