package gtext

import (
	"fmt"

	"github.com/gogpu/gtext/atlas"
	"github.com/gogpu/gtext/gpu"
)

// atlasTextureUnit is the texture unit every font atlas binds to. Only
// one font is ever bound at a time, so a single unit suffices.
const atlasTextureUnit = 0

// Renderer draws compiled text through a gpu.Device. It owns the shader
// program and a registry of fonts, and tracks which font's atlas is
// currently bound so consecutive draws from one font bind the texture
// once.
//
// Renderer is NOT safe for concurrent use.
type Renderer struct {
	device  gpu.Device
	program *Program
	fonts   []*Font

	// current is the font whose atlas texture is bound, or nil.
	// BeginFrame resets it because other code may have touched the
	// texture unit between frames.
	current *Font

	// aspect is viewport width over height, distributed to draws so
	// glyphs keep their shape regardless of viewport proportions.
	aspect float64

	closed bool
}

// New creates a Renderer on the given device and compiles the text
// program. The device must remain valid for the Renderer's lifetime.
func New(device gpu.Device) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	program, err := newProgram(device)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		device:  device,
		program: program,
		aspect:  1,
	}, nil
}

// AddFont registers a prebuilt atlas under the given style name and
// uploads its image as a texture. The returned Font stays valid until
// released or until the Renderer closes.
func (r *Renderer) AddFont(style string, a *atlas.Atlas) (*Font, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	tex, err := r.device.CreateTexture(a.Image(), gpu.SamplerOptions{
		Wrap:   gpu.WrapClampToEdge,
		Filter: gpu.FilterLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("gtext: upload atlas for %q: %w", style, err)
	}
	f := &Font{
		renderer: r,
		style:    style,
		atlas:    a,
		texture:  tex,
	}
	r.fonts = append(r.fonts, f)
	return f, nil
}

// FontSpec pairs a style name with a prebuilt atlas for AddFonts.
type FontSpec struct {
	Style string
	Atlas *atlas.Atlas
}

// AddFonts registers several atlases at once, in order. On error the
// fonts registered before the failure stay valid and are returned
// alongside the error.
func (r *Renderer) AddFonts(specs []FontSpec) ([]*Font, error) {
	fonts := make([]*Font, 0, len(specs))
	for _, spec := range specs {
		f, err := r.AddFont(spec.Style, spec.Atlas)
		if err != nil {
			return fonts, err
		}
		fonts = append(fonts, f)
	}
	return fonts, nil
}

// LoadFont builds an atlas from TTF or OTF font data and registers it.
// It is a convenience wrapper around atlas.NewFaceSurface, atlas.Build
// and AddFont.
func (r *Renderer) LoadFont(style string, fontData []byte, cfg atlas.Config) (*Font, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	surf, err := atlas.NewFaceSurface(fontData, cfg.PointSize)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = surf.Close()
	}()
	a, err := atlas.Build(surf, cfg)
	if err != nil {
		return nil, err
	}
	return r.AddFont(style, a)
}

// FontByStyle returns the first registered font with the given style
// name. Released fonts are skipped.
func (r *Renderer) FontByStyle(style string) (*Font, bool) {
	for _, f := range r.fonts {
		if !f.released && f.style == style {
			return f, true
		}
	}
	return nil, false
}

// BeginFrame prepares the device for a frame of text drawing: binds the
// program, enables alpha blending and records the viewport aspect
// ratio. It also forgets the currently bound font, since state outside
// the Renderer may have changed between frames.
//
// Call BeginFrame once per frame before any Draw.
func (r *Renderer) BeginFrame(viewportWidth, viewportHeight int) error {
	if r.closed {
		return ErrRendererClosed
	}
	if err := r.device.UseProgram(r.program.id); err != nil {
		return err
	}
	if err := r.device.SetBlend(gpu.BlendAlphaSeparate); err != nil {
		return err
	}
	if viewportHeight > 0 {
		r.aspect = float64(viewportWidth) / float64(viewportHeight)
	}
	r.current = nil
	return nil
}

// selectFont binds the font's atlas texture unless it is already the
// bound one.
func (r *Renderer) selectFont(f *Font) error {
	if r.current == f {
		return nil
	}
	if err := r.device.BindTexture(atlasTextureUnit, f.texture); err != nil {
		return err
	}
	if err := r.program.setSamplerUnit(atlasTextureUnit); err != nil {
		return err
	}
	r.current = f
	return nil
}

// Close releases the shader program. Fonts and texts must be released
// by their owners; using them after Close returns ErrRendererClosed.
func (r *Renderer) Close() error {
	if r.closed {
		return ErrRendererClosed
	}
	r.closed = true
	return r.program.release()
}
